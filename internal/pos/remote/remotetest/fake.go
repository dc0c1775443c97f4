// Package remotetest provides an in-memory store of record for tests.
package remotetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/investify-pos/internal/contract"
	"github.com/sangkips/investify-pos/internal/domain/enum"
	"github.com/sangkips/investify-pos/internal/pos/remote"
	"github.com/sangkips/investify-pos/pkg/apperror"
)

type Op string

const (
	OpPing               Op = "ping"
	OpReceiptNumber      Op = "generateReceiptNumber"
	OpCurrentActor       Op = "getCurrentActor"
	OpCreateSale         Op = "createSale"
	OpCreateSaleItems    Op = "createSaleItems"
	OpAdjustStock        Op = "adjustStock"
	OpPostCashEntry      Op = "postCashEntry"
	OpPostCreditRecord   Op = "postCreditRecord"
	OpGetCreditRecord    Op = "getCreditRecord"
	OpUpdateCreditRecord Op = "updateCreditRecord"
	OpUpdateSaleStatus   Op = "updateSaleStatus"
	OpListSaleItems      Op = "listSaleItems"
	OpListProducts       Op = "listProducts"
	OpListCategories     Op = "listCategories"
	OpListCustomers      Op = "listCustomers"
	OpListSuppliers      Op = "listSuppliers"
	OpListProfiles       Op = "listProfiles"
	OpListSales          Op = "listSales"
	OpListCashEntries    Op = "listCashEntries"
	OpListCreditRecords  Op = "listCreditRecords"
)

// ErrInjected is the default failure returned by FailOn and FailAlways.
var ErrInjected = errors.New("injected failure")

// Fake behaves like the store of record: it dedups sales on their
// idempotency key, stock and cash writes on their reference and credit
// records on their sale. Failures can be injected per operation.
type Fake struct {
	mu sync.Mutex

	actor      *contract.Profile
	profiles   []contract.Profile
	products   []contract.Product
	categories []contract.Category
	customers  []contract.Customer
	suppliers  []contract.Supplier
	sales      []contract.Sale
	items      map[uuid.UUID][]contract.SaleItem
	cash       []contract.CashEntry
	credits    []contract.CreditRecord
	refs       map[string]bool
	seq        int

	calls    map[Op]int
	log      []Op
	failOn   map[Op]map[int]error
	failures map[Op]error
	hooks    map[Op]func()
}

var _ remote.Store = (*Fake)(nil)

// New returns a fake authenticated as actor.
func New(actor contract.Profile) *Fake {
	return &Fake{
		actor:    &actor,
		profiles: []contract.Profile{actor},
		items:    make(map[uuid.UUID][]contract.SaleItem),
		refs:     make(map[string]bool),
		calls:    make(map[Op]int),
		failOn:   make(map[Op]map[int]error),
		failures: make(map[Op]error),
		hooks:    make(map[Op]func()),
	}
}

// FailOn makes the nth (1-based) call of op fail. A nil err means ErrInjected.
func (f *Fake) FailOn(op Op, call int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		err = ErrInjected
	}
	if f.failOn[op] == nil {
		f.failOn[op] = make(map[int]error)
	}
	f.failOn[op][call] = err
}

// FailAlways makes every call of op fail until Heal is called.
func (f *Fake) FailAlways(op Op, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		err = ErrInjected
	}
	f.failures[op] = err
}

func (f *Fake) Heal(op Op) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.failures, op)
}

// OnCall runs fn, without the lock held, every time op is entered.
func (f *Fake) OnCall(op Op, fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hooks[op] = fn
}

// Logout removes the authenticated actor.
func (f *Fake) Logout() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actor = nil
}

func (f *Fake) enter(op Op) error {
	f.mu.Lock()
	hook := f.hooks[op]
	f.mu.Unlock()
	if hook != nil {
		hook()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	f.log = append(f.log, op)
	if err, ok := f.failures[op]; ok {
		return apperror.NewRemoteError(string(op), err)
	}
	if err, ok := f.failOn[op][f.calls[op]]; ok {
		return apperror.NewRemoteError(string(op), err)
	}
	return nil
}

func (f *Fake) Calls(op Op) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// Log returns every operation entered, in order.
func (f *Fake) Log() []Op {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Op, len(f.log))
	copy(out, f.log)
	return out
}

func (f *Fake) AddProduct(p contract.Product) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products = append(f.products, p)
}

func (f *Fake) AddCustomer(c contract.Customer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.customers = append(f.customers, c)
}

func (f *Fake) AddCategory(c contract.Category) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.categories = append(f.categories, c)
}

// Product returns the current state of product id.
func (f *Fake) Product(id uuid.UUID) (contract.Product, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.products {
		if p.ID == id {
			return p, true
		}
	}
	return contract.Product{}, false
}

func (f *Fake) Sales() []contract.Sale {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]contract.Sale(nil), f.sales...)
}

func (f *Fake) Sale(id uuid.UUID) (contract.Sale, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sales {
		if s.ID == id {
			return s, true
		}
	}
	return contract.Sale{}, false
}

func (f *Fake) Items(saleID uuid.UUID) []contract.SaleItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]contract.SaleItem(nil), f.items[saleID]...)
}

func (f *Fake) CashEntries() []contract.CashEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]contract.CashEntry(nil), f.cash...)
}

func (f *Fake) CreditRecords() []contract.CreditRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]contract.CreditRecord(nil), f.credits...)
}

func (f *Fake) Ping(ctx context.Context) error {
	return f.enter(OpPing)
}

func (f *Fake) GenerateReceiptNumber(ctx context.Context) (string, error) {
	if err := f.enter(OpReceiptNumber); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	return fmt.Sprintf("RCP-%s-%04d", time.Now().UTC().Format("20060102"), f.seq), nil
}

func (f *Fake) CurrentActor(ctx context.Context) (contract.Profile, error) {
	if err := f.enter(OpCurrentActor); err != nil {
		return contract.Profile{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.actor == nil {
		return contract.Profile{}, &apperror.RemoteError{Op: string(OpCurrentActor), StatusCode: 401, Message: "Unauthorized"}
	}
	return *f.actor, nil
}

func (f *Fake) CreateSale(ctx context.Context, in contract.SaleInput) (contract.Sale, error) {
	if err := f.enter(OpCreateSale); err != nil {
		return contract.Sale{}, err
	}
	if err := in.Validate(); err != nil {
		return contract.Sale{}, &apperror.RemoteError{Op: string(OpCreateSale), StatusCode: 422, Err: err}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sales {
		if s.IdempotencyKey == in.IdempotencyKey {
			return s, nil
		}
	}
	sale := contract.Sale{
		ID:             uuid.New(),
		ReceiptNumber:  in.ReceiptNumber,
		IdempotencyKey: in.IdempotencyKey,
		ActorID:        in.ActorID,
		CustomerID:     in.CustomerID,
		CustomerName:   in.CustomerName,
		Subtotal:       in.Subtotal,
		TaxRate:        in.TaxRate,
		TaxAmount:      in.TaxAmount,
		Discount:       in.Discount,
		Total:          in.Total,
		Profit:         in.Profit,
		PaymentMethod:  in.PaymentMethod,
		Status:         in.Status,
		Attribution:    in.Attribution,
		CreatedAt:      time.Now().UTC(),
	}
	f.sales = append(f.sales, sale)
	return sale, nil
}

func (f *Fake) CreateSaleItems(ctx context.Context, saleID uuid.UUID, items []contract.SaleItemInput) error {
	if err := f.enter(OpCreateSaleItems); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.items[saleID]) > 0 {
		return nil
	}
	for _, in := range items {
		in.SaleID = saleID
		f.items[saleID] = append(f.items[saleID], contract.SaleItem{ID: uuid.New(), SaleItemInput: in})
	}
	return nil
}

func (f *Fake) AdjustStock(ctx context.Context, adj contract.StockAdjustment) error {
	if err := f.enter(OpAdjustStock); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if adj.Reference != "" {
		if f.refs[adj.Reference] {
			return nil
		}
		f.refs[adj.Reference] = true
	}
	for i := range f.products {
		if f.products[i].ID == adj.ProductID {
			f.products[i].Quantity += adj.Delta
			return nil
		}
	}
	return &apperror.RemoteError{Op: string(OpAdjustStock), StatusCode: 404, Message: "Product not found"}
}

func (f *Fake) PostCashEntry(ctx context.Context, in contract.CashEntryInput) error {
	if err := f.enter(OpPostCashEntry); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if in.Reference != "" {
		if f.refs[in.Reference] {
			return nil
		}
		f.refs[in.Reference] = true
	}
	f.cash = append(f.cash, contract.CashEntry{
		ID:        uuid.New(),
		SaleID:    in.SaleID,
		ActorID:   in.ActorID,
		Amount:    in.Amount,
		Type:      in.Type,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

func (f *Fake) PostCreditRecord(ctx context.Context, in contract.CreditRecordInput) (contract.CreditRecord, error) {
	if err := f.enter(OpPostCreditRecord); err != nil {
		return contract.CreditRecord{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.credits {
		if c.SaleID == in.SaleID {
			return c, nil
		}
	}
	rec := contract.CreditRecord{
		ID:           uuid.New(),
		SaleID:       in.SaleID,
		CustomerName: in.CustomerName,
		TotalOwed:    in.TotalOwed,
		Balance:      in.TotalOwed,
		Status:       enum.CreditStatusPending,
		CreatedAt:    time.Now().UTC(),
	}
	f.credits = append(f.credits, rec)
	return rec, nil
}

func (f *Fake) GetCreditRecord(ctx context.Context, id uuid.UUID) (contract.CreditRecord, error) {
	if err := f.enter(OpGetCreditRecord); err != nil {
		return contract.CreditRecord{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.credits {
		if c.ID == id {
			return c, nil
		}
	}
	return contract.CreditRecord{}, &apperror.RemoteError{Op: string(OpGetCreditRecord), StatusCode: 404, Message: "Credit record not found"}
}

func (f *Fake) UpdateCreditRecord(ctx context.Context, id uuid.UUID, update contract.CreditUpdate) (contract.CreditRecord, error) {
	if err := f.enter(OpUpdateCreditRecord); err != nil {
		return contract.CreditRecord{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.credits {
		if f.credits[i].ID != id {
			continue
		}
		if f.credits[i].Status.IsTerminal() {
			return contract.CreditRecord{}, &apperror.RemoteError{Op: string(OpUpdateCreditRecord), StatusCode: 409, Message: "Credit record is settled"}
		}
		f.credits[i].AmountPaid = update.AmountPaid
		f.credits[i].Balance = update.Balance
		f.credits[i].Status = update.Status
		f.credits[i].PaidAt = update.PaidAt
		return f.credits[i], nil
	}
	return contract.CreditRecord{}, &apperror.RemoteError{Op: string(OpUpdateCreditRecord), StatusCode: 404, Message: "Credit record not found"}
}

func (f *Fake) UpdateSaleStatus(ctx context.Context, saleID uuid.UUID, status enum.SaleStatus) error {
	if err := f.enter(OpUpdateSaleStatus); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.sales {
		if f.sales[i].ID == saleID {
			if !f.sales[i].Status.CanTransitionTo(status) {
				return &apperror.RemoteError{Op: string(OpUpdateSaleStatus), StatusCode: 409, Message: "invalid status transition"}
			}
			f.sales[i].Status = status
			return nil
		}
	}
	return &apperror.RemoteError{Op: string(OpUpdateSaleStatus), StatusCode: 404, Message: "Sale not found"}
}

func (f *Fake) ListSaleItems(ctx context.Context, saleID uuid.UUID) ([]contract.SaleItem, error) {
	if err := f.enter(OpListSaleItems); err != nil {
		return nil, err
	}
	return f.Items(saleID), nil
}

func (f *Fake) ListProducts(ctx context.Context) ([]contract.Product, error) {
	if err := f.enter(OpListProducts); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]contract.Product(nil), f.products...), nil
}

func (f *Fake) ListCategories(ctx context.Context) ([]contract.Category, error) {
	if err := f.enter(OpListCategories); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]contract.Category(nil), f.categories...), nil
}

func (f *Fake) ListCustomers(ctx context.Context) ([]contract.Customer, error) {
	if err := f.enter(OpListCustomers); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]contract.Customer(nil), f.customers...), nil
}

func (f *Fake) ListSuppliers(ctx context.Context) ([]contract.Supplier, error) {
	if err := f.enter(OpListSuppliers); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]contract.Supplier(nil), f.suppliers...), nil
}

func (f *Fake) ListProfiles(ctx context.Context) ([]contract.Profile, error) {
	if err := f.enter(OpListProfiles); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]contract.Profile(nil), f.profiles...), nil
}

func (f *Fake) ListSales(ctx context.Context) ([]contract.Sale, error) {
	if err := f.enter(OpListSales); err != nil {
		return nil, err
	}
	return f.Sales(), nil
}

func (f *Fake) ListCashEntries(ctx context.Context) ([]contract.CashEntry, error) {
	if err := f.enter(OpListCashEntries); err != nil {
		return nil, err
	}
	return f.CashEntries(), nil
}

func (f *Fake) ListCreditRecords(ctx context.Context) ([]contract.CreditRecord, error) {
	if err := f.enter(OpListCreditRecords); err != nil {
		return nil, err
	}
	return f.CreditRecords(), nil
}
