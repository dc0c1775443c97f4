package syncer

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/investify-pos/internal/contract"
	"github.com/sangkips/investify-pos/internal/domain/enum"
	"github.com/sangkips/investify-pos/internal/pos/cart"
	"github.com/sangkips/investify-pos/internal/pos/connectivity"
	"github.com/sangkips/investify-pos/internal/pos/localstore"
	"github.com/sangkips/investify-pos/internal/pos/remote/remotetest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(_ context.Context, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

func (n *recordingNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

type harness struct {
	store    *localstore.Store
	fake     *remotetest.Fake
	notifier *recordingNotifier
	engine   *Engine
	product  contract.Product
	actor    contract.Profile
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store, err := localstore.Open(filepath.Join(t.TempDir(), "pos.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	actor := contract.Profile{ID: uuid.New(), Name: "Cashier One"}
	fake := remotetest.New(actor)
	product := contract.Product{ID: uuid.New(), Name: "maize flour", Quantity: 100, BuyingPrice: 150, SellingPrice: 200}
	fake.AddProduct(product)

	n := &recordingNotifier{}
	return &harness{
		store:    store,
		fake:     fake,
		notifier: n,
		engine:   New(store, fake, n, zap.NewNop()),
		product:  product,
		actor:    actor,
	}
}

func (h *harness) enqueue(t *testing.T, qty int, method enum.PaymentMethod, customer string) localstore.PendingSale {
	t.Helper()
	p := localstore.PendingSale{
		IdempotencyKey: uuid.NewString(),
		ActorID:        h.actor.ID,
		PaymentMethod:  method,
		Snapshot: cart.Snapshot{
			Lines: []cart.SnapshotLine{{
				ProductID:   h.product.ID,
				Name:        h.product.Name,
				Quantity:    qty,
				UnitPrice:   h.product.SellingPrice,
				BuyingPrice: h.product.BuyingPrice,
			}},
			TaxRate:      decimal.NewFromInt(16),
			CustomerName: customer,
		},
	}
	id, err := h.store.Enqueue(context.Background(), p)
	require.NoError(t, err)
	p.ID = id
	return p
}

func (h *harness) queued(t *testing.T) []localstore.PendingSale {
	t.Helper()
	all, err := h.store.ListAll(context.Background())
	require.NoError(t, err)
	return all
}

func TestDrainSyncsInStorageOrder(t *testing.T) {
	h := newHarness(t)
	first := h.enqueue(t, 1, enum.PaymentMethodCash, "")
	second := h.enqueue(t, 2, enum.PaymentMethodCash, "")
	third := h.enqueue(t, 3, enum.PaymentMethodCash, "")

	res, err := h.engine.Drain(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Result{Attempted: 3, Synced: 3}, res)
	assert.Empty(t, h.queued(t))

	sales := h.fake.Sales()
	require.Len(t, sales, 3)
	assert.Equal(t, first.IdempotencyKey, sales[0].IdempotencyKey)
	assert.Equal(t, second.IdempotencyKey, sales[1].IdempotencyKey)
	assert.Equal(t, third.IdempotencyKey, sales[2].IdempotencyKey)
	assert.Less(t, sales[0].ReceiptNumber, sales[1].ReceiptNumber)
	assert.Less(t, sales[1].ReceiptNumber, sales[2].ReceiptNumber)

	assert.Equal(t, []string{"3 offline sales synced"}, h.notifier.Messages())

	got, _ := h.fake.Product(h.product.ID)
	assert.Equal(t, 94, got.Quantity)
	assert.Len(t, h.fake.CashEntries(), 3)
}

func TestDrainContinuesPastFailedSale(t *testing.T) {
	h := newHarness(t)
	first := h.enqueue(t, 1, enum.PaymentMethodCash, "")
	h.enqueue(t, 1, enum.PaymentMethodCash, "")
	h.fake.FailOn(remotetest.OpReceiptNumber, 1, nil)

	res, err := h.engine.Drain(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Attempted)
	assert.Equal(t, 1, res.Synced)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 1, res.Remaining)

	queued := h.queued(t)
	require.Len(t, queued, 1)
	assert.Equal(t, first.ID, queued[0].ID)
	assert.Len(t, h.fake.Sales(), 1)
	assert.Equal(t, []string{"1 offline sale synced"}, h.notifier.Messages())
}

func TestDrainWithoutActorLeavesSaleQueued(t *testing.T) {
	h := newHarness(t)
	h.enqueue(t, 1, enum.PaymentMethodCash, "")
	h.fake.Logout()

	res, err := h.engine.Drain(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Failed)
	assert.Len(t, h.queued(t), 1)
	assert.Empty(t, h.fake.Sales())
	assert.Empty(t, h.notifier.Messages())
}

func TestDrainRecomputesTotals(t *testing.T) {
	h := newHarness(t)
	p := localstore.PendingSale{
		IdempotencyKey: uuid.NewString(),
		PaymentMethod:  enum.PaymentMethodCash,
		QueuedTotal:    1,
		Snapshot: cart.Snapshot{
			Lines:    []cart.SnapshotLine{{ProductID: h.product.ID, Name: "flour", Quantity: 5, UnitPrice: 200, BuyingPrice: 150}},
			TaxRate:  decimal.NewFromInt(16),
			Discount: 60,
		},
	}
	_, err := h.store.Enqueue(context.Background(), p)
	require.NoError(t, err)

	_, err = h.engine.Drain(context.Background())
	require.NoError(t, err)

	sales := h.fake.Sales()
	require.Len(t, sales, 1)
	assert.Equal(t, int64(1000), sales[0].Subtotal)
	assert.Equal(t, int64(160), sales[0].TaxAmount)
	assert.Equal(t, int64(1100), sales[0].Total)
	assert.Equal(t, int64(190), sales[0].Profit)
	assert.Equal(t, h.actor.ID, sales[0].ActorID)
}

func TestConcurrentDrainIsSkipped(t *testing.T) {
	h := newHarness(t)
	h.enqueue(t, 1, enum.PaymentMethodCash, "")

	var inner Result
	h.fake.OnCall(remotetest.OpReceiptNumber, func() {
		assert.True(t, h.engine.Draining())
		inner, _ = h.engine.Drain(context.Background())
	})

	outer, err := h.engine.Drain(context.Background())
	require.NoError(t, err)

	assert.True(t, inner.Skipped)
	assert.Equal(t, 1, outer.Synced)
	assert.Equal(t, 1, h.fake.Calls(remotetest.OpReceiptNumber))
	assert.False(t, h.engine.Draining())
}

func TestFailedEffectsGoToOutboxAndReplay(t *testing.T) {
	h := newHarness(t)
	h.enqueue(t, 2, enum.PaymentMethodCash, "")
	h.fake.FailAlways(remotetest.OpPostCashEntry, nil)

	res, err := h.engine.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Synced)
	assert.Equal(t, 1, res.PartialWrites)
	assert.Empty(t, h.queued(t), "a committed sale leaves the queue even when an effect fails")

	outbox, err := h.store.Effects(context.Background())
	require.NoError(t, err)
	require.Len(t, outbox, 1)
	assert.Equal(t, localstore.EffectCash, outbox[0].Kind)
	assert.Contains(t, outbox[0].LastError, "postCashEntry")

	got, _ := h.fake.Product(h.product.ID)
	assert.Equal(t, 98, got.Quantity, "stock effect still applied")

	h.fake.Heal(remotetest.OpPostCashEntry)
	res, err = h.engine.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.EffectsReplayed)
	assert.Zero(t, res.Attempted)

	outbox, _ = h.store.Effects(context.Background())
	assert.Empty(t, outbox)
	require.Len(t, h.fake.CashEntries(), 1)
	assert.Equal(t, h.fake.Sales()[0].Total, h.fake.CashEntries()[0].Amount)
}

func TestOutboxFailureIsCounted(t *testing.T) {
	h := newHarness(t)
	h.enqueue(t, 1, enum.PaymentMethodCash, "")
	h.fake.FailAlways(remotetest.OpAdjustStock, nil)

	_, err := h.engine.Drain(context.Background())
	require.NoError(t, err)
	_, err = h.engine.Drain(context.Background())
	require.NoError(t, err)

	outbox, err := h.store.Effects(context.Background())
	require.NoError(t, err)
	require.Len(t, outbox, 1)
	assert.Equal(t, 1, outbox[0].Attempts)
}

func TestResubmitAfterItemsFailureDoesNotDuplicate(t *testing.T) {
	h := newHarness(t)
	h.enqueue(t, 3, enum.PaymentMethodCredit, "Chebet")
	h.fake.FailOn(remotetest.OpCreateSaleItems, 1, nil)

	res, err := h.engine.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, h.fake.Sales(), 1, "header committed before items failed")

	res, err = h.engine.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Synced)

	sales := h.fake.Sales()
	require.Len(t, sales, 1)
	assert.Equal(t, enum.SaleStatusCredit, sales[0].Status)
	assert.Len(t, h.fake.Items(sales[0].ID), 1)

	credits := h.fake.CreditRecords()
	require.Len(t, credits, 1)
	assert.Equal(t, "Chebet", credits[0].CustomerName)
	assert.Equal(t, sales[0].Total, credits[0].Balance)
	assert.Empty(t, h.fake.CashEntries())
}

func TestRunDrainsOnTransitionToOnline(t *testing.T) {
	h := newHarness(t)
	h.enqueue(t, 1, enum.PaymentMethodCash, "")
	signal := connectivity.NewStatic(false)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.engine.Run(ctx, signal)
		close(done)
	}()

	// Give Run time to subscribe, then confirm nothing drained while offline.
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, h.fake.Calls(remotetest.OpReceiptNumber))

	signal.Set(true)
	require.Eventually(t, func() bool {
		n, err := h.store.Count(context.Background())
		return err == nil && n == 0
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestRunDrainsAtStartWhenOnline(t *testing.T) {
	h := newHarness(t)
	h.enqueue(t, 1, enum.PaymentMethodCash, "")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.engine.Run(ctx, connectivity.NewStatic(true))

	require.Eventually(t, func() bool {
		return len(h.fake.Sales()) == 1
	}, 2*time.Second, 10*time.Millisecond)
}
