package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/investify-pos/internal/domain/entity"
	"github.com/sangkips/investify-pos/internal/domain/enum"
	"github.com/sangkips/investify-pos/pkg/pagination"
)

// CashBoxRepository defines the interface for cash box operations
type CashBoxRepository interface {
	// Create inserts the entry. An entry whose reference was already recorded
	// is skipped and Create reports false.
	Create(ctx context.Context, entry *entity.CashBoxEntry) (bool, error)
	List(ctx context.Context, params *pagination.PaginationParams) ([]entity.CashBoxEntry, int64, error)
}

// CreditRecordRepository defines the interface for credit record operations
type CreditRecordRepository interface {
	// Create inserts the record unless the sale already has one, and reports
	// whether a row was inserted.
	Create(ctx context.Context, record *entity.CreditRecord) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.CreditRecord, error)
	GetBySaleID(ctx context.Context, saleID uuid.UUID) (*entity.CreditRecord, error)
	Update(ctx context.Context, record *entity.CreditRecord) error
	List(ctx context.Context, params *CreditFilterParams) ([]entity.CreditRecord, int64, error)
}

// CreditFilterParams contains filtering parameters for credit record queries
type CreditFilterParams struct {
	Pagination *pagination.PaginationParams
	Status     *enum.CreditStatus
}
