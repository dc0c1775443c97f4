package contract

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/investify-pos/internal/domain/enum"
	"github.com/sangkips/investify-pos/pkg/apperror"
)

type CashEntryInput struct {
	SaleID    uuid.UUID          `json:"sale_id"`
	ActorID   uuid.UUID          `json:"actor_id"`
	Amount    int64              `json:"amount"`
	Type      enum.CashEntryType `json:"type"`
	Reference string             `json:"reference,omitempty"`
}

func (in CashEntryInput) Validate() error {
	var errs []apperror.FieldError
	if in.SaleID == uuid.Nil {
		errs = append(errs, apperror.FieldError{Field: "sale_id", Message: "is required"})
	}
	if in.Amount <= 0 {
		errs = append(errs, apperror.FieldError{Field: "amount", Message: "must be positive"})
	}
	if len(errs) > 0 {
		return apperror.NewValidationError(errs)
	}
	return nil
}

type CashEntry struct {
	ID        uuid.UUID          `json:"id"`
	SaleID    uuid.UUID          `json:"sale_id"`
	ActorID   uuid.UUID          `json:"actor_id"`
	Amount    int64              `json:"amount"`
	Type      enum.CashEntryType `json:"type"`
	CreatedAt time.Time          `json:"created_at"`
}

func (c CashEntry) Key() string { return c.ID.String() }

func (c CashEntry) Validate() error {
	if c.ID == uuid.Nil {
		return apperror.NewFieldError("id", "is required")
	}
	return nil
}

type CreditRecordInput struct {
	SaleID       uuid.UUID `json:"sale_id"`
	CustomerName string    `json:"customer_name"`
	TotalOwed    int64     `json:"total_owed"`
}

func (in CreditRecordInput) Validate() error {
	var errs []apperror.FieldError
	if in.SaleID == uuid.Nil {
		errs = append(errs, apperror.FieldError{Field: "sale_id", Message: "is required"})
	}
	if in.CustomerName == "" {
		errs = append(errs, apperror.FieldError{Field: "customer_name", Message: "is required"})
	}
	if in.TotalOwed < 0 {
		errs = append(errs, apperror.FieldError{Field: "total_owed", Message: "must not be negative"})
	}
	if len(errs) > 0 {
		return apperror.NewValidationError(errs)
	}
	return nil
}

type CreditRecord struct {
	ID           uuid.UUID         `json:"id"`
	SaleID       uuid.UUID         `json:"sale_id"`
	CustomerName string            `json:"customer_name"`
	TotalOwed    int64             `json:"total_owed"`
	AmountPaid   int64             `json:"amount_paid"`
	Balance      int64             `json:"balance"`
	Status       enum.CreditStatus `json:"status"`
	PaidAt       *time.Time        `json:"paid_at,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

func (c CreditRecord) Key() string { return c.ID.String() }

func (c CreditRecord) Validate() error {
	var errs []apperror.FieldError
	if c.ID == uuid.Nil {
		errs = append(errs, apperror.FieldError{Field: "id", Message: "is required"})
	}
	if c.Balance < 0 {
		errs = append(errs, apperror.FieldError{Field: "balance", Message: "must not be negative"})
	}
	if len(errs) > 0 {
		return apperror.NewValidationError(errs)
	}
	return nil
}

// CreditUpdate is the full post-transition state sent by updateCreditRecord.
type CreditUpdate struct {
	AmountPaid int64             `json:"amount_paid"`
	Balance    int64             `json:"balance"`
	Status     enum.CreditStatus `json:"status"`
	PaidAt     *time.Time        `json:"paid_at,omitempty"`
}

// Validate checks the update is internally consistent for a record owing totalOwed.
func (u CreditUpdate) Validate(totalOwed int64) error {
	var errs []apperror.FieldError
	expected := totalOwed - u.AmountPaid
	if expected < 0 {
		expected = 0
	}
	if u.AmountPaid < 0 {
		errs = append(errs, apperror.FieldError{Field: "amount_paid", Message: "must not be negative"})
	}
	if u.Balance != expected {
		errs = append(errs, apperror.FieldError{Field: "balance", Message: "must equal total owed minus amount paid"})
	}
	if u.Status == enum.CreditStatusPaid && u.Balance != 0 {
		errs = append(errs, apperror.FieldError{Field: "status", Message: "paid requires a zero balance"})
	}
	if len(errs) > 0 {
		return apperror.NewValidationError(errs)
	}
	return nil
}
