package cart

import (
	"github.com/google/uuid"
	"github.com/sangkips/investify-pos/internal/contract"
	"github.com/sangkips/investify-pos/internal/domain/enum"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Totals are derived sale amounts in cents.
type Totals struct {
	Subtotal   int64 `json:"subtotal" yaml:"subtotal"`
	TaxAmount  int64 `json:"tax_amount" yaml:"tax_amount"`
	Discount   int64 `json:"discount" yaml:"discount"`
	Total      int64 `json:"total" yaml:"total"`
	Profit     int64 `json:"profit" yaml:"profit"`
	Commission int64 `json:"commission" yaml:"commission"`
}

// SnapshotLine is a cart line frozen at checkout time.
type SnapshotLine struct {
	ProductID   uuid.UUID `json:"product_id" yaml:"product_id"`
	SKU         string    `json:"sku" yaml:"sku"`
	Name        string    `json:"name" yaml:"name"`
	Quantity    int       `json:"quantity" yaml:"quantity"`
	UnitPrice   int64     `json:"unit_price" yaml:"unit_price"`
	BuyingPrice int64     `json:"buying_price" yaml:"buying_price"`
}

func (l SnapshotLine) Total() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

func (l SnapshotLine) Profit() int64 {
	return (l.UnitPrice - l.BuyingPrice) * int64(l.Quantity)
}

// Snapshot is everything needed to rebuild a sale without the live cart.
type Snapshot struct {
	Lines        []SnapshotLine        `json:"lines" yaml:"lines"`
	TaxRate      decimal.Decimal       `json:"tax_rate" yaml:"tax_rate"`
	Discount     int64                 `json:"discount" yaml:"discount"`
	CustomerID   *uuid.UUID            `json:"customer_id,omitempty" yaml:"customer_id,omitempty"`
	CustomerName string                `json:"customer_name,omitempty" yaml:"customer_name,omitempty"`
	Attribution  *contract.Attribution `json:"attribution,omitempty" yaml:"attribution,omitempty"`
}

func (s Snapshot) Totals() Totals {
	rate := decimal.Zero
	if s.Attribution != nil {
		rate = s.Attribution.CommissionRate
	}
	return ComputeTotals(s.Lines, s.TaxRate, s.Discount, rate)
}

// Items converts the lines into sale item rows for saleID.
func (s Snapshot) Items(saleID uuid.UUID) []contract.SaleItemInput {
	items := make([]contract.SaleItemInput, 0, len(s.Lines))
	for _, l := range s.Lines {
		items = append(items, contract.SaleItemInput{
			SaleID:      saleID,
			ProductID:   l.ProductID,
			ProductName: l.Name,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			BuyingPrice: l.BuyingPrice,
			Total:       l.Total(),
			Profit:      l.Profit(),
		})
	}
	return items
}

// ComputeTotals derives all sale amounts from the lines. Tax and commission
// are rounded half up to whole cents and total is always
// subtotal + tax - discount.
func ComputeTotals(lines []SnapshotLine, taxRate decimal.Decimal, discount int64, commissionRate decimal.Decimal) Totals {
	var t Totals
	for _, l := range lines {
		t.Subtotal += l.Total()
		t.Profit += l.Profit()
	}
	if discount < 0 {
		discount = 0
	}
	t.Discount = discount
	t.TaxAmount = percentOf(t.Subtotal, taxRate)
	t.Total = t.Subtotal + t.TaxAmount - t.Discount
	t.Profit -= t.Discount
	t.Commission = percentOf(t.Subtotal, commissionRate)
	return t
}

func percentOf(amount int64, rate decimal.Decimal) int64 {
	if rate.IsZero() {
		return 0
	}
	return decimal.NewFromInt(amount).Mul(rate).Div(hundred).Round(0).IntPart()
}

// Header builds the sale header for the snapshot. Totals are recomputed from
// the lines, never taken from a stored value.
func (s Snapshot) Header(idempotencyKey, receiptNumber string, actorID uuid.UUID, method enum.PaymentMethod) contract.SaleInput {
	t := s.Totals()
	in := contract.SaleInput{
		IdempotencyKey: idempotencyKey,
		ReceiptNumber:  receiptNumber,
		ActorID:        actorID,
		CustomerID:     s.CustomerID,
		CustomerName:   s.CustomerName,
		Subtotal:       t.Subtotal,
		TaxRate:        s.TaxRate,
		TaxAmount:      t.TaxAmount,
		Discount:       t.Discount,
		Total:          t.Total,
		Profit:         t.Profit,
		PaymentMethod:  method,
		Status:         method.SaleStatus(),
	}
	if s.Attribution != nil {
		a := *s.Attribution
		a.Commission = t.Commission
		in.Attribution = &a
	}
	return in
}
