package repository

import (
	"context"

	"github.com/sangkips/investify-pos/internal/domain/entity"
)

// ProductRepository defines the interface for product data operations
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	ListAll(ctx context.Context) ([]entity.Product, error)
	// ApplyStockMovement records the movement and adds its delta to the
	// product quantity in one transaction. It returns false without touching
	// the quantity when a movement with the same reference already exists.
	ApplyStockMovement(ctx context.Context, movement *entity.StockMovement) (bool, error)
}

// CategoryRepository defines the interface for category data operations
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	ListAll(ctx context.Context) ([]entity.Category, error)
}
