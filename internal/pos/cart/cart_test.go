package cart

import (
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/investify-pos/internal/contract"
	"github.com/sangkips/investify-pos/internal/domain/enum"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(name string, stock int, buying, selling int64) contract.Product {
	return contract.Product{
		ID:           uuid.New(),
		SKU:          name,
		Name:         name,
		Quantity:     stock,
		BuyingPrice:  buying,
		SellingPrice: selling,
	}
}

func TestAddLineIncrementsWithinStock(t *testing.T) {
	c := New(decimal.Zero)
	p := product("sugar", 2, 100, 150)

	require.True(t, c.AddLine(p))
	require.True(t, c.AddLine(p))
	assert.False(t, c.AddLine(p), "third unit exceeds stock")

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, int64(150), lines[0].UnitPrice)
}

func TestAddLineOutOfStock(t *testing.T) {
	c := New(decimal.Zero)
	assert.False(t, c.AddLine(product("salt", 0, 10, 20)))
	assert.True(t, c.IsEmpty())
}

func TestSetQuantityClamps(t *testing.T) {
	c := New(decimal.Zero)
	p := product("rice", 5, 100, 120)
	c.AddLine(p)

	assert.Equal(t, 5, c.SetQuantity(p.ID, 9))
	assert.Equal(t, 3, c.SetQuantity(p.ID, 3))
	assert.Equal(t, 0, c.SetQuantity(p.ID, -2))
	assert.True(t, c.IsEmpty(), "zero quantity removes the line")
}

func TestSetUnitPriceRejectsAtOrBelowCost(t *testing.T) {
	c := New(decimal.Zero)
	p := product("oil", 3, 500, 650)
	c.AddLine(p)

	assert.False(t, c.SetUnitPrice(p.ID, 500))
	assert.False(t, c.SetUnitPrice(p.ID, 499))
	assert.Equal(t, int64(650), c.Lines()[0].UnitPrice)

	assert.True(t, c.SetUnitPrice(p.ID, 501))
	assert.Equal(t, int64(501), c.Lines()[0].UnitPrice)

	assert.False(t, c.SetUnitPrice(uuid.New(), 900), "unknown line")
}

func TestTotalsIdentity(t *testing.T) {
	c := New(decimal.NewFromInt(16))
	p := product("flour", 10, 1000, 1250)
	c.AddLine(p)
	c.SetQuantity(p.ID, 2)
	c.SetDiscount(100)

	assert.Equal(t, int64(2500), c.Subtotal())
	assert.Equal(t, int64(400), c.TaxAmount())
	assert.Equal(t, int64(2800), c.Total())
	assert.Equal(t, int64(400), c.Profit())
	assert.Equal(t, c.Subtotal()+c.TaxAmount()-c.Discount(), c.Total())
}

func TestTaxRoundsHalfUp(t *testing.T) {
	c := New(decimal.RequireFromString("16.5"))
	p := product("tea", 1, 1000, 1999)
	c.AddLine(p)

	// 1999 * 16.5% = 329.835
	assert.Equal(t, int64(330), c.TaxAmount())
	assert.Equal(t, int64(2329), c.Total())
}

func TestDerivedValuesFollowMutations(t *testing.T) {
	c := New(decimal.NewFromInt(10))
	a := product("a", 4, 50, 100)
	b := product("b", 4, 50, 200)
	c.AddLine(a)
	c.AddLine(b)
	assert.Equal(t, int64(330), c.Total())

	c.RemoveLine(a.ID)
	assert.Equal(t, int64(220), c.Total())

	c.SetTaxRate(decimal.Zero)
	assert.Equal(t, int64(200), c.Total())
}

func TestAttributionCommission(t *testing.T) {
	c := New(decimal.Zero)
	p := product("soap", 5, 100, 300)
	c.AddLine(p)
	c.SetQuantity(p.ID, 3)
	c.SetAttribution(contract.Profile{ID: uuid.New(), Name: "Achieng"}, decimal.RequireFromString("2.5"))

	assert.Equal(t, int64(23), c.Commission()) // 900 * 2.5% = 22.5
	snap := c.Snapshot()
	require.NotNil(t, snap.Attribution)
	assert.Equal(t, int64(23), snap.Attribution.Commission)

	c.ClearAttribution()
	assert.Zero(t, c.Commission())
}

func TestClearResetsSession(t *testing.T) {
	c := New(decimal.NewFromInt(16))
	c.AddLine(product("milk", 2, 40, 60))
	c.SetDiscount(10)
	c.SetCustomer(nil, "Otieno")
	key := c.IdempotencyKey()
	assert.Equal(t, key, c.IdempotencyKey())

	c.Clear()

	assert.True(t, c.IsEmpty())
	assert.Zero(t, c.Discount())
	assert.Empty(t, c.CustomerName())
	assert.NotEqual(t, key, c.IdempotencyKey())
	assert.Equal(t, "16", c.TaxRate().String())
}

func TestSnapshotItems(t *testing.T) {
	c := New(decimal.Zero)
	p := product("beans", 3, 70, 90)
	c.AddLine(p)
	c.SetQuantity(p.ID, 3)

	saleID := uuid.New()
	items := c.Snapshot().Items(saleID)
	require.Len(t, items, 1)
	assert.Equal(t, saleID, items[0].SaleID)
	assert.Equal(t, int64(270), items[0].Total)
	assert.Equal(t, int64(60), items[0].Profit)
	assert.NoError(t, items[0].Validate())
}

func TestSnapshotHeader(t *testing.T) {
	c := New(decimal.NewFromInt(16))
	p := product("cooker", 1, 10000, 12500)
	c.AddLine(p)
	c.SetDiscount(500)
	c.SetCustomer(nil, "Kamau")

	in := c.Snapshot().Header("key", "RCP-1", uuid.New(), enum.PaymentMethodCredit)

	assert.Equal(t, enum.SaleStatusCredit, in.Status)
	assert.Equal(t, int64(12500), in.Subtotal)
	assert.Equal(t, int64(2000), in.TaxAmount)
	assert.Equal(t, int64(14000), in.Total)
	assert.Equal(t, "Kamau", in.CustomerName)
	assert.NoError(t, in.Validate())
}
