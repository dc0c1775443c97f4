// Package remote is the terminal's view of the store of record.
package remote

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/investify-pos/internal/contract"
	"github.com/sangkips/investify-pos/internal/domain/enum"
)

// SaleWriter is the contract used to commit a sale.
type SaleWriter interface {
	GenerateReceiptNumber(ctx context.Context) (string, error)
	CurrentActor(ctx context.Context) (contract.Profile, error)
	CreateSale(ctx context.Context, in contract.SaleInput) (contract.Sale, error)
	CreateSaleItems(ctx context.Context, saleID uuid.UUID, items []contract.SaleItemInput) error
	AdjustStock(ctx context.Context, adj contract.StockAdjustment) error
	PostCashEntry(ctx context.Context, in contract.CashEntryInput) error
	PostCreditRecord(ctx context.Context, in contract.CreditRecordInput) (contract.CreditRecord, error)
}

// LedgerStore is the contract used to settle or return credit sales.
type LedgerStore interface {
	CurrentActor(ctx context.Context) (contract.Profile, error)
	GetCreditRecord(ctx context.Context, id uuid.UUID) (contract.CreditRecord, error)
	UpdateCreditRecord(ctx context.Context, id uuid.UUID, update contract.CreditUpdate) (contract.CreditRecord, error)
	UpdateSaleStatus(ctx context.Context, saleID uuid.UUID, status enum.SaleStatus) error
	ListSaleItems(ctx context.Context, saleID uuid.UUID) ([]contract.SaleItem, error)
	AdjustStock(ctx context.Context, adj contract.StockAdjustment) error
	PostCashEntry(ctx context.Context, in contract.CashEntryInput) error
}

// Catalog lists the reference data a terminal caches.
type Catalog interface {
	ListProducts(ctx context.Context) ([]contract.Product, error)
	ListCategories(ctx context.Context) ([]contract.Category, error)
	ListCustomers(ctx context.Context) ([]contract.Customer, error)
	ListSuppliers(ctx context.Context) ([]contract.Supplier, error)
	ListProfiles(ctx context.Context) ([]contract.Profile, error)
	ListSales(ctx context.Context) ([]contract.Sale, error)
	ListCashEntries(ctx context.Context) ([]contract.CashEntry, error)
	ListCreditRecords(ctx context.Context) ([]contract.CreditRecord, error)
}

type Store interface {
	SaleWriter
	LedgerStore
	Catalog
	Ping(ctx context.Context) error
}
