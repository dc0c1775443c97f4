package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/investify-pos/internal/contract"
	"github.com/sangkips/investify-pos/internal/domain/entity"
	"github.com/sangkips/investify-pos/internal/domain/enum"
	"github.com/sangkips/investify-pos/internal/domain/repository"
	"github.com/sangkips/investify-pos/pkg/apperror"
	"github.com/sangkips/investify-pos/pkg/pagination"
	"go.uber.org/zap"
)

// LedgerService handles cash box entries and credit records
type LedgerService struct {
	cashRepo   repository.CashBoxRepository
	creditRepo repository.CreditRecordRepository
	saleRepo   repository.SaleRepository
	log        *zap.Logger
	now        func() time.Time
}

// NewLedgerService creates a new ledger service
func NewLedgerService(
	cashRepo repository.CashBoxRepository,
	creditRepo repository.CreditRecordRepository,
	saleRepo repository.SaleRepository,
	log *zap.Logger,
) *LedgerService {
	return &LedgerService{
		cashRepo:   cashRepo,
		creditRepo: creditRepo,
		saleRepo:   saleRepo,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *LedgerService) requireSale(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	sale, err := s.saleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, apperror.NewFieldError("sale_id", "unknown sale")
	}
	return sale, nil
}

// PostCashEntry records money entering the till. An entry whose reference
// was already recorded is skipped and PostCashEntry reports false.
func (s *LedgerService) PostCashEntry(ctx context.Context, actorID uuid.UUID, in contract.CashEntryInput) (*entity.CashBoxEntry, bool, error) {
	if err := in.Validate(); err != nil {
		return nil, false, err
	}
	if in.ActorID == uuid.Nil {
		in.ActorID = actorID
	}
	if _, err := s.requireSale(ctx, in.SaleID); err != nil {
		return nil, false, err
	}

	entry := &entity.CashBoxEntry{
		SaleID:  in.SaleID,
		ActorID: in.ActorID,
		Amount:  in.Amount,
		Type:    in.Type,
	}
	if in.Reference != "" {
		ref := in.Reference
		entry.Reference = &ref
	}

	created, err := s.cashRepo.Create(ctx, entry)
	if err != nil {
		return nil, false, err
	}
	if created {
		s.log.Info("cash entry posted",
			zap.String("sale_id", in.SaleID.String()),
			zap.String("type", in.Type.String()),
			zap.Int64("amount", in.Amount),
		)
	}
	return entry, created, nil
}

// ListCashEntries lists cash box entries with pagination
func (s *LedgerService) ListCashEntries(ctx context.Context, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.CashBoxEntry], error) {
	if params == nil {
		params = pagination.DefaultPagination()
	}
	entries, total, err := s.cashRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(entries, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}

// CreateCreditRecord opens the credit record of a credit sale. A sale that
// already has one gets the existing record back and false.
func (s *LedgerService) CreateCreditRecord(ctx context.Context, in contract.CreditRecordInput) (*entity.CreditRecord, bool, error) {
	if err := in.Validate(); err != nil {
		return nil, false, err
	}
	sale, err := s.requireSale(ctx, in.SaleID)
	if err != nil {
		return nil, false, err
	}
	if sale.PaymentMethod != enum.PaymentMethodCredit {
		return nil, false, apperror.NewFieldError("sale_id", "is not a credit sale")
	}

	record := &entity.CreditRecord{
		SaleID:       in.SaleID,
		CustomerName: in.CustomerName,
		TotalOwed:    in.TotalOwed,
		Balance:      in.TotalOwed,
		Status:       enum.CreditStatusPending,
	}
	created, err := s.creditRepo.Create(ctx, record)
	if err != nil {
		return nil, false, err
	}
	if !created {
		existing, err := s.creditRepo.GetBySaleID(ctx, in.SaleID)
		if err != nil {
			return nil, false, err
		}
		if existing == nil {
			return nil, false, apperror.ErrInternalServer
		}
		return existing, false, nil
	}

	s.log.Info("credit record opened",
		zap.String("credit_id", record.ID.String()),
		zap.String("sale_id", in.SaleID.String()),
		zap.Int64("total_owed", in.TotalOwed),
	)
	return record, true, nil
}

// GetCreditRecord retrieves a credit record by ID
func (s *LedgerService) GetCreditRecord(ctx context.Context, id uuid.UUID) (*entity.CreditRecord, error) {
	record, err := s.creditRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, apperror.NewNotFoundError("Credit record")
	}
	return record, nil
}

// UpdateCreditRecord replaces the payment state of a pending record.
// Paid and returned records are final.
func (s *LedgerService) UpdateCreditRecord(ctx context.Context, id uuid.UUID, upd contract.CreditUpdate) (*entity.CreditRecord, error) {
	record, err := s.GetCreditRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.Status.IsTerminal() {
		return nil, apperror.NewFieldError("status", "credit record is already "+record.Status.String())
	}
	if upd.AmountPaid < record.AmountPaid {
		return nil, apperror.NewFieldError("amount_paid", "must not decrease")
	}
	if err := upd.Validate(record.TotalOwed); err != nil {
		return nil, err
	}

	record.AmountPaid = upd.AmountPaid
	record.Balance = upd.Balance
	record.Status = upd.Status
	record.PaidAt = upd.PaidAt
	if record.Status == enum.CreditStatusPaid && record.PaidAt == nil {
		paidAt := s.now()
		record.PaidAt = &paidAt
	}
	if record.Status != enum.CreditStatusPaid {
		record.PaidAt = nil
	}

	if err := s.creditRepo.Update(ctx, record); err != nil {
		return nil, err
	}

	s.log.Info("credit record updated",
		zap.String("credit_id", id.String()),
		zap.Int64("amount_paid", record.AmountPaid),
		zap.Int64("balance", record.Balance),
		zap.String("status", record.Status.String()),
	)
	return record, nil
}

// ListCreditRecords lists credit records with pagination
func (s *LedgerService) ListCreditRecords(ctx context.Context, params *repository.CreditFilterParams) (*pagination.PaginatedResult[entity.CreditRecord], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	records, total, err := s.creditRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(records, pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)), nil
}
