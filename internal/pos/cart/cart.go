// Package cart holds the in-progress sale on a terminal.
package cart

import (
	"github.com/google/uuid"
	"github.com/sangkips/investify-pos/internal/contract"
	"github.com/shopspring/decimal"
)

// Line is one product in the cart.
type Line struct {
	Product   contract.Product
	Quantity  int
	UnitPrice int64
}

func (l Line) Total() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

func (l Line) Profit() int64 {
	return (l.UnitPrice - l.Product.BuyingPrice) * int64(l.Quantity)
}

// Cart is not safe for concurrent use; a checkout session owns one cart.
type Cart struct {
	lines          []Line
	taxRate        decimal.Decimal
	discount       int64
	customerID     *uuid.UUID
	customerName   string
	attribution    *contract.Attribution
	idempotencyKey string
}

func New(taxRate decimal.Decimal) *Cart {
	return &Cart{taxRate: taxRate}
}

func (c *Cart) find(productID uuid.UUID) int {
	for i := range c.lines {
		if c.lines[i].Product.ID == productID {
			return i
		}
	}
	return -1
}

// AddLine adds one unit of product. Adding a product already in the cart
// increments its quantity. It returns false when no stock is left to add.
func (c *Cart) AddLine(product contract.Product) bool {
	if i := c.find(product.ID); i >= 0 {
		if c.lines[i].Quantity >= c.lines[i].Product.Quantity {
			return false
		}
		c.lines[i].Quantity++
		return true
	}
	if product.Quantity <= 0 {
		return false
	}
	c.lines = append(c.lines, Line{Product: product, Quantity: 1, UnitPrice: product.SellingPrice})
	return true
}

func (c *Cart) RemoveLine(productID uuid.UUID) {
	if i := c.find(productID); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
}

// SetQuantity clamps qty to [0, on-hand] and returns the quantity applied.
// Zero removes the line.
func (c *Cart) SetQuantity(productID uuid.UUID, qty int) int {
	i := c.find(productID)
	if i < 0 {
		return 0
	}
	if qty > c.lines[i].Product.Quantity {
		qty = c.lines[i].Product.Quantity
	}
	if qty <= 0 {
		c.RemoveLine(productID)
		return 0
	}
	c.lines[i].Quantity = qty
	return qty
}

// SetUnitPrice overrides the line price. Prices at or below the buying price
// are rejected and leave the line unchanged.
func (c *Cart) SetUnitPrice(productID uuid.UUID, price int64) bool {
	i := c.find(productID)
	if i < 0 || price <= c.lines[i].Product.BuyingPrice {
		return false
	}
	c.lines[i].UnitPrice = price
	return true
}

func (c *Cart) SetDiscount(amount int64) {
	if amount < 0 {
		amount = 0
	}
	c.discount = amount
}

func (c *Cart) SetTaxRate(percent decimal.Decimal) {
	if percent.IsNegative() {
		percent = decimal.Zero
	}
	c.taxRate = percent
}

func (c *Cart) SetCustomer(id *uuid.UUID, name string) {
	c.customerID = id
	c.customerName = name
}

// SetAttribution records that the sale is made on behalf of profile.
func (c *Cart) SetAttribution(profile contract.Profile, commissionRate decimal.Decimal) {
	c.attribution = &contract.Attribution{
		ProfileID:      profile.ID,
		Name:           profile.Name,
		CommissionRate: commissionRate,
	}
}

func (c *Cart) ClearAttribution() {
	c.attribution = nil
}

// Clear empties the cart and starts a new checkout session. The tax rate is kept.
func (c *Cart) Clear() {
	c.lines = nil
	c.discount = 0
	c.customerID = nil
	c.customerName = ""
	c.attribution = nil
	c.idempotencyKey = ""
}

// IdempotencyKey identifies this checkout attempt. It is stable until Clear,
// so retrying a failed checkout reuses it.
func (c *Cart) IdempotencyKey() string {
	if c.idempotencyKey == "" {
		c.idempotencyKey = uuid.NewString()
	}
	return c.idempotencyKey
}

func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) IsEmpty() bool { return len(c.lines) == 0 }
func (c *Cart) TaxRate() decimal.Decimal { return c.taxRate }
func (c *Cart) CustomerName() string { return c.customerName }

func (c *Cart) Totals() Totals {
	return c.Snapshot().Totals()
}

func (c *Cart) Subtotal() int64 { return c.Totals().Subtotal }
func (c *Cart) TaxAmount() int64 { return c.Totals().TaxAmount }
func (c *Cart) Discount() int64 { return c.discount }
func (c *Cart) Total() int64 { return c.Totals().Total }
func (c *Cart) Profit() int64 { return c.Totals().Profit }
func (c *Cart) Commission() int64 { return c.Totals().Commission }

// Snapshot freezes the cart. The attribution commission is filled in.
func (c *Cart) Snapshot() Snapshot {
	s := Snapshot{
		Lines:        make([]SnapshotLine, 0, len(c.lines)),
		TaxRate:      c.taxRate,
		Discount:     c.discount,
		CustomerName: c.customerName,
	}
	if c.customerID != nil {
		id := *c.customerID
		s.CustomerID = &id
	}
	for _, l := range c.lines {
		s.Lines = append(s.Lines, SnapshotLine{
			ProductID:   l.Product.ID,
			SKU:         l.Product.SKU,
			Name:        l.Product.Name,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			BuyingPrice: l.Product.BuyingPrice,
		})
	}
	if c.attribution != nil {
		a := *c.attribution
		a.Commission = ComputeTotals(s.Lines, s.TaxRate, s.Discount, a.CommissionRate).Commission
		s.Attribution = &a
	}
	return s
}
