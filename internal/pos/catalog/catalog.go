package catalog

import (
	"context"

	"github.com/sangkips/investify-pos/internal/contract"
	"github.com/sangkips/investify-pos/internal/pos/localstore"
	"github.com/sangkips/investify-pos/internal/pos/remote"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Catalog bundles the hooks of every cached entity.
type Catalog struct {
	Products       *Hook[contract.Product]
	Categories     *Hook[contract.Category]
	Customers      *Hook[contract.Customer]
	Suppliers      *Hook[contract.Supplier]
	Profiles       *Hook[contract.Profile]
	Sales          *Hook[contract.Sale]
	CashBoxEntries *Hook[contract.CashEntry]
	CreditRecords  *Hook[contract.CreditRecord]
}

func New(store *localstore.Store, r remote.Catalog, log *zap.Logger) *Catalog {
	return &Catalog{
		Products:       NewHook(store, localstore.Products, r.ListProducts, log),
		Categories:     NewHook(store, localstore.Categories, r.ListCategories, log),
		Customers:      NewHook(store, localstore.Customers, r.ListCustomers, log),
		Suppliers:      NewHook(store, localstore.Suppliers, r.ListSuppliers, log),
		Profiles:       NewHook(store, localstore.Profiles, r.ListProfiles, log),
		Sales:          NewHook(store, localstore.Sales, r.ListSales, log),
		CashBoxEntries: NewHook(store, localstore.CashBoxEntries, r.ListCashEntries, log),
		CreditRecords:  NewHook(store, localstore.CreditRecords, r.ListCreditRecords, log),
	}
}

type refresher interface {
	Entity() localstore.Entity
	refreshCount(ctx context.Context) (int, error)
	Wait()
}

func (h *Hook[T]) refreshCount(ctx context.Context) (int, error) {
	rows, err := h.Refresh(ctx)
	return len(rows), err
}

func (c *Catalog) hooks() []refresher {
	return []refresher{c.Products, c.Categories, c.Customers, c.Suppliers, c.Profiles, c.Sales, c.CashBoxEntries, c.CreditRecords}
}

// RefreshAll refreshes every entity and returns the row count of those that
// succeeded. A failing entity does not stop the others.
func (c *Catalog) RefreshAll(ctx context.Context) (map[localstore.Entity]int, error) {
	counts := make(map[localstore.Entity]int)
	var errs error
	for _, h := range c.hooks() {
		n, err := h.refreshCount(ctx)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		counts[h.Entity()] = n
	}
	return counts, errs
}

// Wait blocks until every background refresh has finished.
func (c *Catalog) Wait() {
	for _, h := range c.hooks() {
		h.Wait()
	}
}
