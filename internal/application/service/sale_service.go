package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/investify-pos/internal/contract"
	"github.com/sangkips/investify-pos/internal/domain/entity"
	"github.com/sangkips/investify-pos/internal/domain/enum"
	"github.com/sangkips/investify-pos/internal/domain/repository"
	"github.com/sangkips/investify-pos/pkg/apperror"
	"github.com/sangkips/investify-pos/pkg/pagination"
	"github.com/sangkips/investify-pos/pkg/utils"
	"go.uber.org/zap"
)

// SaleService handles sale headers, sale lines and receipt numbers
type SaleService struct {
	saleRepo     repository.SaleRepository
	itemRepo     repository.SaleItemRepository
	sequenceRepo repository.ReceiptSequenceRepository
	customerRepo repository.CustomerRepository
	log          *zap.Logger
	now          func() time.Time
}

// NewSaleService creates a new sale service. Receipt days follow loc.
func NewSaleService(
	saleRepo repository.SaleRepository,
	itemRepo repository.SaleItemRepository,
	sequenceRepo repository.ReceiptSequenceRepository,
	customerRepo repository.CustomerRepository,
	loc *time.Location,
	log *zap.Logger,
) *SaleService {
	if loc == nil {
		loc = time.UTC
	}
	return &SaleService{
		saleRepo:     saleRepo,
		itemRepo:     itemRepo,
		sequenceRepo: sequenceRepo,
		customerRepo: customerRepo,
		log:          log,
		now:          func() time.Time { return time.Now().In(loc) },
	}
}

// NextReceiptNumber issues the next receipt number of the current day.
func (s *SaleService) NextReceiptNumber(ctx context.Context) (string, error) {
	day := utils.ReceiptDay(s.now())
	seq, err := s.sequenceRepo.Next(ctx, day)
	if err != nil {
		return "", fmt.Errorf("next receipt sequence: %w", err)
	}
	return utils.FormatReceiptNumber(day, seq), nil
}

// CreateSale stores the sale header. A header whose idempotency key was
// already stored returns the original sale and false.
func (s *SaleService) CreateSale(ctx context.Context, actorID uuid.UUID, in contract.SaleInput) (*entity.Sale, bool, error) {
	if in.ActorID == uuid.Nil {
		in.ActorID = actorID
	}
	if err := in.Validate(); err != nil {
		return nil, false, err
	}

	existing, err := s.saleRepo.GetByIdempotencyKey(ctx, in.IdempotencyKey)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		s.log.Info("duplicate sale header ignored",
			zap.String("idempotency_key", in.IdempotencyKey),
			zap.String("receipt_number", existing.ReceiptNumber),
		)
		return existing, false, nil
	}

	if in.CustomerID != nil {
		customer, err := s.customerRepo.GetByID(ctx, *in.CustomerID)
		if err != nil {
			return nil, false, err
		}
		if customer == nil {
			return nil, false, apperror.NewFieldError("customer_id", "unknown customer")
		}
	}

	sale := &entity.Sale{
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
	}
	if a := in.Attribution; a != nil {
		profileID := a.ProfileID
		sale.AttributedTo = &profileID
		sale.AttributedName = a.Name
		sale.CommissionRate = a.CommissionRate
		sale.Commission = a.Commission
	}

	created, err := s.saleRepo.Create(ctx, sale)
	if errors.Is(err, repository.ErrConflict) {
		return nil, false, apperror.NewConflictError("Receipt number already used")
	}
	if err != nil {
		return nil, false, err
	}
	if !created {
		// Another request with the same key won the insert.
		existing, err := s.saleRepo.GetByIdempotencyKey(ctx, in.IdempotencyKey)
		if err != nil {
			return nil, false, err
		}
		if existing == nil {
			return nil, false, apperror.ErrInternalServer
		}
		return existing, false, nil
	}

	s.log.Info("sale created",
		zap.String("sale_id", sale.ID.String()),
		zap.String("receipt_number", sale.ReceiptNumber),
		zap.String("payment_method", sale.PaymentMethod.String()),
		zap.Int64("total", sale.Total),
	)
	return sale, true, nil
}

// GetSale retrieves a sale by ID
func (s *SaleService) GetSale(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	sale, err := s.saleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, apperror.NewNotFoundError("Sale")
	}
	return sale, nil
}

// ListSales lists sales with pagination
func (s *SaleService) ListSales(ctx context.Context, params *repository.SaleFilterParams) (*pagination.PaginatedResult[entity.Sale], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	sales, total, err := s.saleRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(sales, pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)), nil
}

// UpdateStatus moves a sale to status. Setting the current status is a no-op.
func (s *SaleService) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.SaleStatus) (*entity.Sale, error) {
	sale, err := s.GetSale(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale.Status == status {
		return sale, nil
	}
	if !sale.Status.CanTransitionTo(status) {
		return nil, apperror.NewFieldError("status", fmt.Sprintf("cannot change from %s to %s", sale.Status, status))
	}
	if err := s.saleRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	s.log.Info("sale status changed",
		zap.String("sale_id", id.String()),
		zap.String("from", sale.Status.String()),
		zap.String("to", status.String()),
	)
	sale.Status = status
	return sale, nil
}

// AddItems writes the lines of a sale. Lines sent for a sale that already
// has lines are ignored and AddItems reports false.
func (s *SaleService) AddItems(ctx context.Context, saleID uuid.UUID, inputs []contract.SaleItemInput) (bool, error) {
	if len(inputs) == 0 {
		return false, apperror.NewFieldError("items", "at least one item is required")
	}
	if _, err := s.GetSale(ctx, saleID); err != nil {
		return false, err
	}

	var fieldErrs []apperror.FieldError
	items := make([]entity.SaleItem, 0, len(inputs))
	for i, in := range inputs {
		if in.SaleID != uuid.Nil && in.SaleID != saleID {
			fieldErrs = append(fieldErrs, apperror.FieldError{Field: fmt.Sprintf("items.%d.sale_id", i), Message: "does not match the sale"})
			continue
		}
		if err := in.Validate(); err != nil {
			for _, fe := range apperror.GetAppError(err).Errors {
				fieldErrs = append(fieldErrs, apperror.FieldError{Field: fmt.Sprintf("items.%d.%s", i, fe.Field), Message: fe.Message})
			}
			continue
		}
		items = append(items, entity.SaleItem{
			SaleID:      saleID,
			ProductID:   in.ProductID,
			ProductName: in.ProductName,
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
			BuyingPrice: in.BuyingPrice,
			Total:       in.Total,
			Profit:      in.Profit,
		})
	}
	if len(fieldErrs) > 0 {
		return false, apperror.NewValidationError(fieldErrs)
	}

	created, err := s.itemRepo.CreateBatch(ctx, saleID, items)
	if errors.Is(err, repository.ErrNotFound) {
		return false, apperror.NewNotFoundError("Sale")
	}
	if err != nil {
		return false, err
	}
	if !created {
		s.log.Info("sale already has items", zap.String("sale_id", saleID.String()))
	}
	return created, nil
}

// ListItems returns the lines of a sale
func (s *SaleService) ListItems(ctx context.Context, saleID uuid.UUID) ([]entity.SaleItem, error) {
	if _, err := s.GetSale(ctx, saleID); err != nil {
		return nil, err
	}
	return s.itemRepo.GetBySaleID(ctx, saleID)
}
