// Package ledger settles and returns credit sales.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/investify-pos/internal/contract"
	"github.com/sangkips/investify-pos/internal/domain/enum"
	"github.com/sangkips/investify-pos/internal/pos/remote"
	"github.com/sangkips/investify-pos/pkg/apperror"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Settle applies a payment of amount to rec. Paying the balance or more
// settles the record with a zero balance.
func Settle(rec contract.CreditRecord, amount int64, now time.Time) (contract.CreditUpdate, error) {
	if rec.Status.IsTerminal() {
		return contract.CreditUpdate{}, apperror.NewFieldError("status", "credit record is already "+rec.Status.String())
	}
	if amount <= 0 {
		return contract.CreditUpdate{}, apperror.NewFieldError("amount", "must be positive")
	}

	upd := contract.CreditUpdate{
		AmountPaid: rec.AmountPaid + amount,
		Status:     enum.CreditStatusPending,
	}
	upd.Balance = rec.TotalOwed - upd.AmountPaid
	if upd.Balance <= 0 {
		upd.Balance = 0
		upd.Status = enum.CreditStatusPaid
		paidAt := now
		upd.PaidAt = &paidAt
	}
	return upd, nil
}

// Return marks rec returned. Payments already made are kept on the record.
func Return(rec contract.CreditRecord) (contract.CreditUpdate, error) {
	if rec.Status.IsTerminal() {
		return contract.CreditUpdate{}, apperror.NewFieldError("status", "credit record is already "+rec.Status.String())
	}
	return contract.CreditUpdate{
		AmountPaid: rec.AmountPaid,
		Balance:    rec.Balance,
		Status:     enum.CreditStatusReturned,
	}, nil
}

// PaymentReference identifies the cash entry of the payment that brought
// record id to amountPaid.
func PaymentReference(id uuid.UUID, amountPaid int64) string {
	return fmt.Sprintf("%s:payment:%d", id, amountPaid)
}

// ReturnReference identifies the restock of one returned sale item.
func ReturnReference(id, itemID uuid.UUID) string {
	return id.String() + ":return:" + itemID.String()
}

type Service struct {
	remote remote.LedgerStore
	log    *zap.Logger
	now    func() time.Time
}

func NewService(r remote.LedgerStore, log *zap.Logger) *Service {
	return &Service{remote: r, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// ApplyPayment records a payment of amount against credit record id and
// posts it to the cash box. A payment that settles the record completes the
// linked sale. Errors after the record was updated are PartialWriteErrors
// and come with the updated record.
func (s *Service) ApplyPayment(ctx context.Context, id uuid.UUID, amount int64, actorID uuid.UUID) (contract.CreditRecord, error) {
	rec, err := s.remote.GetCreditRecord(ctx, id)
	if err != nil {
		return contract.CreditRecord{}, fmt.Errorf("load credit record: %w", err)
	}
	upd, err := Settle(rec, amount, s.now())
	if err != nil {
		return contract.CreditRecord{}, err
	}
	if err := upd.Validate(rec.TotalOwed); err != nil {
		return contract.CreditRecord{}, err
	}
	updated, err := s.remote.UpdateCreditRecord(ctx, id, upd)
	if err != nil {
		return contract.CreditRecord{}, fmt.Errorf("update credit record: %w", err)
	}

	var errs error
	if updated.Status == enum.CreditStatusPaid {
		if err := s.remote.UpdateSaleStatus(ctx, rec.SaleID, enum.SaleStatusCompleted); err != nil {
			errs = multierr.Append(errs, s.partial(rec.SaleID, "sale status", err))
		}
	}
	entry := contract.CashEntryInput{
		SaleID:    rec.SaleID,
		ActorID:   actorID,
		Amount:    amount,
		Type:      enum.CashEntryCreditPayment,
		Reference: PaymentReference(id, upd.AmountPaid),
	}
	if err := s.remote.PostCashEntry(ctx, entry); err != nil {
		errs = multierr.Append(errs, s.partial(rec.SaleID, "cash entry", err))
	}

	s.log.Info("credit payment applied",
		zap.String("credit_id", id.String()),
		zap.Int64("amount", amount),
		zap.Int64("balance", updated.Balance),
		zap.String("status", updated.Status.String()),
	)
	return updated, errs
}

// MarkReturned returns the goods of credit record id: the record becomes
// returned, the sale is voided and every item is restocked one line at a
// time. Calling it again for a record already returned repeats the void and
// the restock, both of which the store of record ignores when already done.
func (s *Service) MarkReturned(ctx context.Context, id uuid.UUID) (contract.CreditRecord, error) {
	rec, err := s.remote.GetCreditRecord(ctx, id)
	if err != nil {
		return contract.CreditRecord{}, fmt.Errorf("load credit record: %w", err)
	}
	items, err := s.remote.ListSaleItems(ctx, rec.SaleID)
	if err != nil {
		return contract.CreditRecord{}, fmt.Errorf("load sale items: %w", err)
	}

	if rec.Status != enum.CreditStatusReturned {
		upd, err := Return(rec)
		if err != nil {
			return contract.CreditRecord{}, err
		}
		if rec, err = s.remote.UpdateCreditRecord(ctx, id, upd); err != nil {
			return contract.CreditRecord{}, fmt.Errorf("update credit record: %w", err)
		}
	}

	var errs error
	if err := s.remote.UpdateSaleStatus(ctx, rec.SaleID, enum.SaleStatusVoided); err != nil {
		errs = multierr.Append(errs, s.partial(rec.SaleID, "sale status", err))
	}
	for _, it := range items {
		adj := contract.StockAdjustment{
			ProductID: it.ProductID,
			Delta:     it.Quantity,
			Reference: ReturnReference(id, it.ID),
		}
		if err := s.remote.AdjustStock(ctx, adj); err != nil {
			errs = multierr.Append(errs, s.partial(rec.SaleID, "restock "+it.ProductName, err))
		}
	}

	s.log.Info("credit sale returned",
		zap.String("credit_id", id.String()),
		zap.Int("items", len(items)),
		zap.Error(errs),
	)
	return rec, errs
}

func (s *Service) partial(saleID uuid.UUID, effect string, err error) error {
	return &apperror.PartialWriteError{SaleID: saleID.String(), Effect: effect, Err: err}
}
