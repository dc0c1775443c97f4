package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/investify-pos/internal/domain/entity"
	"github.com/sangkips/investify-pos/internal/domain/enum"
	"github.com/sangkips/investify-pos/pkg/pagination"
)

// SaleRepository defines the interface for sale header operations
type SaleRepository interface {
	// Create inserts the sale unless one with the same idempotency key exists.
	// It reports whether a row was inserted.
	Create(ctx context.Context, sale *entity.Sale) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Sale, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*entity.Sale, error)
	List(ctx context.Context, params *SaleFilterParams) ([]entity.Sale, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enum.SaleStatus) error
}

// SaleFilterParams contains filtering parameters for sale queries
type SaleFilterParams struct {
	Pagination *pagination.PaginationParams
	Status     *enum.SaleStatus
	ActorID    *uuid.UUID
}

// SaleItemRepository defines the interface for sale line operations
type SaleItemRepository interface {
	// CreateBatch writes the lines of a sale that has none yet. It reports
	// false, writing nothing, when the sale already has lines.
	CreateBatch(ctx context.Context, saleID uuid.UUID, items []entity.SaleItem) (bool, error)
	GetBySaleID(ctx context.Context, saleID uuid.UUID) ([]entity.SaleItem, error)
}

// ReceiptSequenceRepository hands out receipt sequence values.
type ReceiptSequenceRepository interface {
	// Next atomically increments and returns the counter for day (YYYYMMDD),
	// starting at 1.
	Next(ctx context.Context, day string) (int64, error)
}
