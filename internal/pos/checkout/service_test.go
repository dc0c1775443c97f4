package checkout

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/investify-pos/internal/contract"
	"github.com/sangkips/investify-pos/internal/domain/enum"
	"github.com/sangkips/investify-pos/internal/pos/cart"
	"github.com/sangkips/investify-pos/internal/pos/connectivity"
	"github.com/sangkips/investify-pos/internal/pos/localstore"
	"github.com/sangkips/investify-pos/internal/pos/receipt"
	"github.com/sangkips/investify-pos/internal/pos/remote/remotetest"
	"github.com/sangkips/investify-pos/pkg/apperror"
	"github.com/sangkips/investify-pos/pkg/printer"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	svc     *Service
	fake    *remotetest.Fake
	store   *localstore.Store
	signal  *connectivity.Static
	printer *printer.Recorder
	actor   contract.Profile
	flour   contract.Product
	oil     contract.Product
}

func newFixture(t *testing.T, online bool) *fixture {
	t.Helper()
	store, err := localstore.Open(filepath.Join(t.TempDir(), "pos.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	f := &fixture{
		store:   store,
		signal:  connectivity.NewStatic(online),
		printer: &printer.Recorder{},
		actor:   contract.Profile{ID: uuid.New(), Name: "Amina"},
		flour:   contract.Product{ID: uuid.New(), Name: "Maize flour", Quantity: 20, BuyingPrice: 150, SellingPrice: 200},
		oil:     contract.Product{ID: uuid.New(), Name: "Cooking oil", Quantity: 5, BuyingPrice: 300, SellingPrice: 350},
	}
	f.fake = remotetest.New(f.actor)
	f.fake.AddProduct(f.flour)
	f.fake.AddProduct(f.oil)
	f.svc = NewService(f.fake, store, f.signal, f.printer, receipt.Header{StoreName: "Investify Store"}, printer.Width58mm, zap.NewNop())
	return f
}

func (f *fixture) cart(t *testing.T) *cart.Cart {
	t.Helper()
	c := cart.New(decimal.NewFromInt(16))
	require.True(t, c.AddLine(f.flour))
	require.True(t, c.AddLine(f.oil))
	require.Equal(t, 3, c.SetQuantity(f.flour.ID, 3))
	return c
}

func TestValidateRejectsBeforeAnyWrite(t *testing.T) {
	f := newFixture(t, true)

	below := contract.Product{ID: uuid.New(), Name: "Salt", Quantity: 10, BuyingPrice: 80, SellingPrice: 80}

	tests := []struct {
		name   string
		build  func(c *cart.Cart)
		method enum.PaymentMethod
		field  string
	}{
		{"empty cart", func(c *cart.Cart) {}, enum.PaymentMethodCash, "lines"},
		{"price at cost", func(c *cart.Cart) { c.AddLine(below) }, enum.PaymentMethodCash, "lines.Salt"},
		{"credit without customer", func(c *cart.Cart) { c.AddLine(f.flour) }, enum.PaymentMethodCredit, "customer_name"},
		{"discount above gross", func(c *cart.Cart) {
			c.AddLine(f.flour)
			c.SetDiscount(233)
		}, enum.PaymentMethodCash, "discount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cart.New(decimal.NewFromInt(16))
			tt.build(c)

			out, err := f.svc.Checkout(context.Background(), c, tt.method, f.actor.ID)
			require.Error(t, err)
			assert.Nil(t, out)
			assert.True(t, apperror.IsValidation(err))
			assert.Equal(t, tt.field, apperror.GetAppError(err).Errors[0].Field)
		})
	}
	assert.Empty(t, f.fake.Log())
	assert.Empty(t, f.printer.Jobs())
}

func TestValidateAllowsDiscountEqualToGross(t *testing.T) {
	c := cart.New(decimal.NewFromInt(16))
	c.AddLine(contract.Product{ID: uuid.New(), Name: "Bread", Quantity: 1, BuyingPrice: 50, SellingPrice: 100})
	c.SetDiscount(116)
	assert.NoError(t, Validate(c, enum.PaymentMethodCash))
}

func TestOnlineCashCheckout(t *testing.T) {
	f := newFixture(t, true)
	c := f.cart(t)
	key := c.IdempotencyKey()

	out, err := f.svc.Checkout(context.Background(), c, enum.PaymentMethodCash, f.actor.ID)
	require.NoError(t, err)

	assert.Equal(t, PathOnline, out.Path)
	require.NotNil(t, out.Sale)
	assert.Equal(t, key, out.Sale.IdempotencyKey)
	assert.Equal(t, int64(950), out.Sale.Subtotal)
	assert.Equal(t, int64(152), out.Sale.TaxAmount)
	assert.Equal(t, int64(1102), out.Sale.Total)
	assert.Equal(t, enum.SaleStatusCompleted, out.Sale.Status)
	assert.Equal(t, out.Sale.ReceiptNumber, out.Receipt.Number)
	assert.Equal(t, "Amina", out.Receipt.Cashier)
	assert.Empty(t, out.Pending)

	assert.Equal(t, []remotetest.Op{
		remotetest.OpReceiptNumber,
		remotetest.OpCurrentActor,
		remotetest.OpCreateSale,
		remotetest.OpCreateSaleItems,
		remotetest.OpAdjustStock,
		remotetest.OpAdjustStock,
		remotetest.OpPostCashEntry,
	}, f.fake.Log())

	flour, _ := f.fake.Product(f.flour.ID)
	oil, _ := f.fake.Product(f.oil.ID)
	assert.Equal(t, 17, flour.Quantity)
	assert.Equal(t, 4, oil.Quantity)
	require.Len(t, f.fake.CashEntries(), 1)
	assert.Equal(t, int64(1102), f.fake.CashEntries()[0].Amount)
	assert.Len(t, f.fake.Items(out.Sale.ID), 2)

	assert.True(t, c.IsEmpty())
	assert.NotEqual(t, key, c.IdempotencyKey())
	assert.Len(t, f.printer.Jobs(), 1)
}

func TestOnlineCreditCheckoutOpensCreditRecord(t *testing.T) {
	f := newFixture(t, true)
	c := f.cart(t)
	c.SetCustomer(nil, "Kamau")

	out, err := f.svc.Checkout(context.Background(), c, enum.PaymentMethodCredit, f.actor.ID)
	require.NoError(t, err)

	assert.Equal(t, enum.SaleStatusCredit, out.Sale.Status)
	credits := f.fake.CreditRecords()
	require.Len(t, credits, 1)
	assert.Equal(t, out.Sale.ID, credits[0].SaleID)
	assert.Equal(t, out.Sale.Total, credits[0].TotalOwed)
	assert.Empty(t, f.fake.CashEntries())
}

func TestOnlineMobileCheckoutPostsNoLedgerEntry(t *testing.T) {
	f := newFixture(t, true)

	_, err := f.svc.Checkout(context.Background(), f.cart(t), enum.PaymentMethodMobile, f.actor.ID)
	require.NoError(t, err)

	assert.Empty(t, f.fake.CashEntries())
	assert.Empty(t, f.fake.CreditRecords())
}

func TestOnlineFailureKeepsCartForRetry(t *testing.T) {
	f := newFixture(t, true)
	c := f.cart(t)
	key := c.IdempotencyKey()
	f.fake.FailOn(remotetest.OpCreateSaleItems, 1, nil)

	_, err := f.svc.Checkout(context.Background(), c, enum.PaymentMethodCash, f.actor.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, remotetest.ErrInjected)
	assert.True(t, apperror.IsRemote(err))

	assert.False(t, c.IsEmpty())
	assert.Equal(t, key, c.IdempotencyKey())
	assert.Empty(t, f.printer.Jobs())

	out, err := f.svc.Checkout(context.Background(), c, enum.PaymentMethodCash, f.actor.ID)
	require.NoError(t, err)
	assert.Len(t, f.fake.Sales(), 1, "retry reuses the committed header")
	assert.Len(t, f.fake.Items(out.Sale.ID), 2)
}

func TestStockFailureIsNotAppliedTwiceOnRetry(t *testing.T) {
	f := newFixture(t, true)
	c := f.cart(t)
	f.fake.FailOn(remotetest.OpAdjustStock, 2, nil)

	_, err := f.svc.Checkout(context.Background(), c, enum.PaymentMethodCash, f.actor.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decrement stock")
	assert.Empty(t, f.fake.CashEntries())

	_, err = f.svc.Checkout(context.Background(), c, enum.PaymentMethodCash, f.actor.ID)
	require.NoError(t, err)

	flour, _ := f.fake.Product(f.flour.ID)
	oil, _ := f.fake.Product(f.oil.ID)
	assert.Equal(t, 17, flour.Quantity)
	assert.Equal(t, 4, oil.Quantity)
}

func TestLedgerFailureLeavesEffectInOutbox(t *testing.T) {
	f := newFixture(t, true)
	c := f.cart(t)
	f.fake.FailAlways(remotetest.OpPostCashEntry, nil)

	out, err := f.svc.Checkout(context.Background(), c, enum.PaymentMethodCash, f.actor.ID)
	require.NoError(t, err)

	require.Len(t, out.Pending, 1)
	assert.Equal(t, localstore.EffectCash, out.Pending[0].Kind)
	assert.True(t, c.IsEmpty())

	outbox, err := f.store.Effects(context.Background())
	require.NoError(t, err)
	require.Len(t, outbox, 1)
	assert.Equal(t, contract.CashReference(out.Sale.IdempotencyKey), outbox[0].Reference)
}

func TestOfflineCheckoutQueuesSale(t *testing.T) {
	f := newFixture(t, false)
	c := f.cart(t)
	c.SetDiscount(2)
	key := c.IdempotencyKey()

	out, err := f.svc.Checkout(context.Background(), c, enum.PaymentMethodCash, f.actor.ID)
	require.NoError(t, err)

	assert.Equal(t, PathOffline, out.Path)
	assert.Nil(t, out.Sale)
	assert.NotZero(t, out.QueueID)
	assert.True(t, out.Receipt.Provisional)
	assert.Equal(t, int64(1100), out.Receipt.Total)
	assert.Empty(t, f.fake.Log())

	queued, err := f.store.Get(context.Background(), out.QueueID)
	require.NoError(t, err)
	require.NotNil(t, queued)
	assert.Equal(t, key, queued.IdempotencyKey)
	assert.Equal(t, f.actor.ID, queued.ActorID)
	assert.Equal(t, int64(1100), queued.QueuedTotal)
	assert.Len(t, queued.Snapshot.Lines, 2)

	assert.True(t, c.IsEmpty())
	assert.Len(t, f.printer.Jobs(), 1)
}

func TestPrinterFailureDoesNotFailCheckout(t *testing.T) {
	f := newFixture(t, false)
	f.printer.Err = assert.AnError

	out, err := f.svc.Checkout(context.Background(), f.cart(t), enum.PaymentMethodCash, f.actor.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, out.PrintErr, assert.AnError)
}
