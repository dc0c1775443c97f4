package service

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/sangkips/investify-pos/internal/domain/entity"
	"github.com/sangkips/investify-pos/internal/domain/enum"
	"github.com/sangkips/investify-pos/internal/domain/repository"
	"github.com/sangkips/investify-pos/pkg/pagination"
)

// memStore backs every fake repository with maps guarded by one mutex.
type memStore struct {
	mu        sync.Mutex
	sales     map[uuid.UUID]*entity.Sale
	items     map[uuid.UUID][]entity.SaleItem
	sequences map[string]int64
	products  map[uuid.UUID]*entity.Product
	movements map[string]entity.StockMovement
	customers map[uuid.UUID]*entity.Customer
	suppliers []entity.Supplier
	category  []entity.Category
	users     map[uuid.UUID]*entity.User
	cash      []entity.CashBoxEntry
	credits   map[uuid.UUID]*entity.CreditRecord
}

func newMemStore() *memStore {
	return &memStore{
		sales:     map[uuid.UUID]*entity.Sale{},
		items:     map[uuid.UUID][]entity.SaleItem{},
		sequences: map[string]int64{},
		products:  map[uuid.UUID]*entity.Product{},
		movements: map[string]entity.StockMovement{},
		customers: map[uuid.UUID]*entity.Customer{},
		users:     map[uuid.UUID]*entity.User{},
		credits:   map[uuid.UUID]*entity.CreditRecord{},
	}
}

func page[T any](all []T, p *pagination.PaginationParams) ([]T, int64) {
	p.Validate()
	total := int64(len(all))
	start := p.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + p.PerPage
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total
}

type fakeSaleRepo struct{ *memStore }

func (r fakeSaleRepo) Create(_ context.Context, sale *entity.Sale) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sales {
		if s.IdempotencyKey == sale.IdempotencyKey {
			return false, nil
		}
		if s.ReceiptNumber == sale.ReceiptNumber {
			return false, repository.ErrConflict
		}
	}
	if sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}
	cp := *sale
	r.sales[sale.ID] = &cp
	return true, nil
}

func (r fakeSaleRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sales[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r fakeSaleRepo) GetByIdempotencyKey(_ context.Context, key string) (*entity.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sales {
		if s.IdempotencyKey == key {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r fakeSaleRepo) List(_ context.Context, params *repository.SaleFilterParams) ([]entity.Sale, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []entity.Sale
	for _, s := range r.sales {
		if params.Status != nil && s.Status != *params.Status {
			continue
		}
		all = append(all, *s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ReceiptNumber < all[j].ReceiptNumber })
	items, total := page(all, params.Pagination)
	return items, total, nil
}

func (r fakeSaleRepo) UpdateStatus(_ context.Context, id uuid.UUID, status enum.SaleStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sales[id]; ok {
		s.Status = status
	}
	return nil
}

type fakeSaleItemRepo struct{ *memStore }

func (r fakeSaleItemRepo) CreateBatch(_ context.Context, saleID uuid.UUID, items []entity.SaleItem) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sales[saleID]; !ok {
		return false, repository.ErrNotFound
	}
	if len(r.items[saleID]) > 0 {
		return false, nil
	}
	for i := range items {
		items[i].ID = uuid.New()
		items[i].SaleID = saleID
	}
	r.items[saleID] = append([]entity.SaleItem(nil), items...)
	return true, nil
}

func (r fakeSaleItemRepo) GetBySaleID(_ context.Context, saleID uuid.UUID) ([]entity.SaleItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entity.SaleItem(nil), r.items[saleID]...), nil
}

type fakeSequenceRepo struct{ *memStore }

func (r fakeSequenceRepo) Next(_ context.Context, day string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sequences[day]++
	return r.sequences[day], nil
}

type fakeProductRepo struct{ *memStore }

func (r fakeProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r fakeProductRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r fakeProductRepo) ListAll(_ context.Context) ([]entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Product
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, nil
}

func (r fakeProductRepo) ApplyStockMovement(_ context.Context, m *entity.StockMovement) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, seen := r.movements[m.Reference]; seen {
		return false, nil
	}
	p, ok := r.products[m.ProductID]
	if !ok {
		return false, repository.ErrNotFound
	}
	p.Quantity += m.Delta
	r.movements[m.Reference] = *m
	return true, nil
}

type fakeCustomerRepo struct{ *memStore }

func (r fakeCustomerRepo) Create(_ context.Context, c *entity.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cp := *c
	r.customers[c.ID] = &cp
	return nil
}

func (r fakeCustomerRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r fakeCustomerRepo) ListAll(_ context.Context) ([]entity.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Customer
	for _, c := range r.customers {
		out = append(out, *c)
	}
	return out, nil
}

type fakeSupplierRepo struct{ *memStore }

func (r fakeSupplierRepo) Create(_ context.Context, sup *entity.Supplier) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sup.ID == uuid.Nil {
		sup.ID = uuid.New()
	}
	r.suppliers = append(r.suppliers, *sup)
	return nil
}

func (r fakeSupplierRepo) ListAll(_ context.Context) ([]entity.Supplier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entity.Supplier(nil), r.suppliers...), nil
}

type fakeCategoryRepo struct{ *memStore }

func (r fakeCategoryRepo) Create(_ context.Context, c *entity.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.category = append(r.category, *c)
	return nil
}

func (r fakeCategoryRepo) ListAll(_ context.Context) ([]entity.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entity.Category(nil), r.category...), nil
}

type fakeUserRepo struct{ *memStore }

func (r fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r fakeUserRepo) GetWithRoles(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.GetByID(ctx, id)
}

func (r fakeUserRepo) ListAll(_ context.Context) ([]entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.User
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

type fakeCashRepo struct{ *memStore }

func (r fakeCashRepo) Create(_ context.Context, e *entity.CashBoxEntry) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.Reference != nil {
		for _, existing := range r.cash {
			if existing.Reference != nil && *existing.Reference == *e.Reference {
				return false, nil
			}
		}
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	r.cash = append(r.cash, *e)
	return true, nil
}

func (r fakeCashRepo) List(_ context.Context, params *pagination.PaginationParams) ([]entity.CashBoxEntry, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items, total := page(append([]entity.CashBoxEntry(nil), r.cash...), params)
	return items, total, nil
}

type fakeCreditRepo struct{ *memStore }

func (r fakeCreditRepo) Create(_ context.Context, c *entity.CreditRecord) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.credits {
		if existing.SaleID == c.SaleID {
			return false, nil
		}
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cp := *c
	r.credits[c.ID] = &cp
	return true, nil
}

func (r fakeCreditRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.CreditRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.credits[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r fakeCreditRepo) GetBySaleID(_ context.Context, saleID uuid.UUID) (*entity.CreditRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.credits {
		if c.SaleID == saleID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r fakeCreditRepo) Update(_ context.Context, c *entity.CreditRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.credits[c.ID] = &cp
	return nil
}

func (r fakeCreditRepo) List(_ context.Context, params *repository.CreditFilterParams) ([]entity.CreditRecord, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []entity.CreditRecord
	for _, c := range r.credits {
		if params.Status != nil && c.Status != *params.Status {
			continue
		}
		all = append(all, *c)
	}
	items, total := page(all, params.Pagination)
	return items, total, nil
}
