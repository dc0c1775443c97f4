package contract

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/investify-pos/internal/domain/enum"
	"github.com/sangkips/investify-pos/pkg/apperror"
	"github.com/shopspring/decimal"
)

// Attribution credits a sale to a staff member other than the cashier.
type Attribution struct {
	ProfileID      uuid.UUID       `json:"profile_id" yaml:"profile_id"`
	Name           string          `json:"name" yaml:"name"`
	CommissionRate decimal.Decimal `json:"commission_rate" yaml:"commission_rate"`
	Commission     int64           `json:"commission" yaml:"commission"`
}

// SaleInput is the header written by createSale.
type SaleInput struct {
	IdempotencyKey string             `json:"idempotency_key"`
	ReceiptNumber  string             `json:"receipt_number"`
	ActorID        uuid.UUID          `json:"actor_id"`
	CustomerID     *uuid.UUID         `json:"customer_id,omitempty"`
	CustomerName   string             `json:"customer_name,omitempty"`
	Subtotal       int64              `json:"subtotal"`
	TaxRate        decimal.Decimal    `json:"tax_rate"`
	TaxAmount      int64              `json:"tax_amount"`
	Discount       int64              `json:"discount"`
	Total          int64              `json:"total"`
	Profit         int64              `json:"profit"`
	PaymentMethod  enum.PaymentMethod `json:"payment_method"`
	Status         enum.SaleStatus    `json:"status"`
	Attribution    *Attribution       `json:"attribution,omitempty"`
}

// Validate checks the header is complete and its totals add up.
func (in SaleInput) Validate() error {
	var errs []apperror.FieldError
	if in.IdempotencyKey == "" {
		errs = append(errs, apperror.FieldError{Field: "idempotency_key", Message: "is required"})
	}
	if in.ReceiptNumber == "" {
		errs = append(errs, apperror.FieldError{Field: "receipt_number", Message: "is required"})
	}
	if in.ActorID == uuid.Nil {
		errs = append(errs, apperror.FieldError{Field: "actor_id", Message: "is required"})
	}
	if in.Total != in.Subtotal+in.TaxAmount-in.Discount {
		errs = append(errs, apperror.FieldError{Field: "total", Message: "must equal subtotal + tax_amount - discount"})
	}
	if in.Status != in.PaymentMethod.SaleStatus() {
		errs = append(errs, apperror.FieldError{Field: "status", Message: "does not match payment method"})
	}
	if in.PaymentMethod == enum.PaymentMethodCredit && in.CustomerName == "" {
		errs = append(errs, apperror.FieldError{Field: "customer_name", Message: "is required for credit sales"})
	}
	if len(errs) > 0 {
		return apperror.NewValidationError(errs)
	}
	return nil
}

type Sale struct {
	ID             uuid.UUID          `json:"id"`
	ReceiptNumber  string             `json:"receipt_number"`
	IdempotencyKey string             `json:"idempotency_key"`
	ActorID        uuid.UUID          `json:"actor_id"`
	CustomerID     *uuid.UUID         `json:"customer_id,omitempty"`
	CustomerName   string             `json:"customer_name,omitempty"`
	Subtotal       int64              `json:"subtotal"`
	TaxRate        decimal.Decimal    `json:"tax_rate"`
	TaxAmount      int64              `json:"tax_amount"`
	Discount       int64              `json:"discount"`
	Total          int64              `json:"total"`
	Profit         int64              `json:"profit"`
	PaymentMethod  enum.PaymentMethod `json:"payment_method"`
	Status         enum.SaleStatus    `json:"status"`
	Attribution    *Attribution       `json:"attribution,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
}

func (s Sale) Key() string { return s.ID.String() }

func (s Sale) Validate() error {
	var errs []apperror.FieldError
	if s.ID == uuid.Nil {
		errs = append(errs, apperror.FieldError{Field: "id", Message: "is required"})
	}
	if s.ReceiptNumber == "" {
		errs = append(errs, apperror.FieldError{Field: "receipt_number", Message: "is required"})
	}
	if len(errs) > 0 {
		return apperror.NewValidationError(errs)
	}
	return nil
}

// SaleItemInput is one row written by createSaleItems.
type SaleItemInput struct {
	SaleID      uuid.UUID `json:"sale_id"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	UnitPrice   int64     `json:"unit_price"`
	BuyingPrice int64     `json:"buying_price"`
	Total       int64     `json:"total"`
	Profit      int64     `json:"profit"`
}

func (in SaleItemInput) Validate() error {
	var errs []apperror.FieldError
	if in.ProductID == uuid.Nil {
		errs = append(errs, apperror.FieldError{Field: "product_id", Message: "is required"})
	}
	if in.Quantity <= 0 {
		errs = append(errs, apperror.FieldError{Field: "quantity", Message: "must be positive"})
	}
	if in.Total != in.UnitPrice*int64(in.Quantity) {
		errs = append(errs, apperror.FieldError{Field: "total", Message: "must equal unit_price * quantity"})
	}
	if len(errs) > 0 {
		return apperror.NewValidationError(errs)
	}
	return nil
}

type SaleItem struct {
	ID uuid.UUID `json:"id"`
	SaleItemInput
}

// StockAdjustment changes on-hand quantity by Delta. Reference identifies the
// adjustment so that a replay is applied once.
type StockAdjustment struct {
	ProductID uuid.UUID `json:"product_id"`
	Delta     int       `json:"delta"`
	Reference string    `json:"reference"`
}

type SaleStatusUpdate struct {
	Status enum.SaleStatus `json:"status"`
}

type ReceiptNumber struct {
	ReceiptNumber string `json:"receipt_number"`
}

// StockReference is the adjustment reference for one line of a sale.
func StockReference(idempotencyKey string, productID uuid.UUID) string {
	return idempotencyKey + ":stock:" + productID.String()
}

// CashReference is the cash entry reference for a sale's payment.
func CashReference(idempotencyKey string) string {
	return idempotencyKey + ":cash"
}
