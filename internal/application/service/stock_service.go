package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/investify-pos/internal/contract"
	"github.com/sangkips/investify-pos/internal/domain/entity"
	"github.com/sangkips/investify-pos/internal/domain/repository"
	"github.com/sangkips/investify-pos/pkg/apperror"
	"go.uber.org/zap"
)

// StockService applies stock adjustments
type StockService struct {
	productRepo repository.ProductRepository
	log         *zap.Logger
}

// NewStockService creates a new stock service
func NewStockService(productRepo repository.ProductRepository, log *zap.Logger) *StockService {
	return &StockService{productRepo: productRepo, log: log}
}

// Adjust adds adj.Delta to the product quantity. An adjustment whose
// reference was already applied changes nothing and Adjust reports false.
func (s *StockService) Adjust(ctx context.Context, adj contract.StockAdjustment) (bool, error) {
	var fieldErrs []apperror.FieldError
	if adj.ProductID == uuid.Nil {
		fieldErrs = append(fieldErrs, apperror.FieldError{Field: "product_id", Message: "is required"})
	}
	if adj.Delta == 0 {
		fieldErrs = append(fieldErrs, apperror.FieldError{Field: "delta", Message: "must not be zero"})
	}
	if adj.Reference == "" {
		fieldErrs = append(fieldErrs, apperror.FieldError{Field: "reference", Message: "is required"})
	}
	if len(fieldErrs) > 0 {
		return false, apperror.NewValidationError(fieldErrs)
	}

	applied, err := s.productRepo.ApplyStockMovement(ctx, &entity.StockMovement{
		ProductID: adj.ProductID,
		Delta:     adj.Delta,
		Reference: adj.Reference,
	})
	if errors.Is(err, repository.ErrNotFound) {
		return false, apperror.NewNotFoundError("Product")
	}
	if err != nil {
		return false, err
	}

	if applied {
		s.log.Info("stock adjusted",
			zap.String("product_id", adj.ProductID.String()),
			zap.Int("delta", adj.Delta),
			zap.String("reference", adj.Reference),
		)
	} else {
		s.log.Debug("stock adjustment already applied", zap.String("reference", adj.Reference))
	}
	return applied, nil
}
