// Package syncer drains the offline sale queue into the store of record.
package syncer

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sangkips/investify-pos/internal/pos/connectivity"
	"github.com/sangkips/investify-pos/internal/pos/effects"
	"github.com/sangkips/investify-pos/internal/pos/localstore"
	"github.com/sangkips/investify-pos/internal/pos/metrics"
	"github.com/sangkips/investify-pos/internal/pos/remote"
	"github.com/sangkips/investify-pos/pkg/apperror"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Queue is the local state a drain reads and updates.
type Queue interface {
	ListAll(ctx context.Context) ([]localstore.PendingSale, error)
	CompleteSale(ctx context.Context, id int64, failed []localstore.Effect) error
	Count(ctx context.Context) (int, error)
	Effects(ctx context.Context) ([]localstore.Effect, error)
	RemoveEffect(ctx context.Context, id int64) error
	MarkEffectFailed(ctx context.Context, id int64, cause error) error
	CountEffects(ctx context.Context) (int, error)
}

// Notifier tells the operator about recovered sales.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

type NotifierFunc func(ctx context.Context, message string)

func (f NotifierFunc) Notify(ctx context.Context, message string) { f(ctx, message) }

// Result summarises one drain.
type Result struct {
	Skipped         bool `json:"skipped"`
	Attempted       int  `json:"attempted"`
	Synced          int  `json:"synced"`
	Failed          int  `json:"failed"`
	PartialWrites   int  `json:"partial_writes"`
	EffectsReplayed int  `json:"effects_replayed"`
	Remaining       int  `json:"remaining"`
}

// Engine runs at most one drain at a time.
type Engine struct {
	queue    Queue
	remote   remote.SaleWriter
	notifier Notifier
	log      *zap.Logger

	draining atomic.Bool
	wg       sync.WaitGroup
}

func New(queue Queue, w remote.SaleWriter, notifier Notifier, log *zap.Logger) *Engine {
	if notifier == nil {
		notifier = NotifierFunc(func(context.Context, string) {})
	}
	return &Engine{queue: queue, remote: w, notifier: notifier, log: log}
}

// Draining reports whether a drain is in progress.
func (e *Engine) Draining() bool {
	return e.draining.Load()
}

// Drain replays the outbox, then submits every pending sale in storage order.
// A sale that fails stays queued and the drain moves on to the next one.
// Calling Drain while another drain runs returns at once with Skipped set.
func (e *Engine) Drain(ctx context.Context) (Result, error) {
	if !e.draining.CompareAndSwap(false, true) {
		metrics.DrainsTotal.WithLabelValues("skipped").Inc()
		return Result{Skipped: true}, nil
	}
	defer e.draining.Store(false)

	var res Result
	res.EffectsReplayed = e.replayOutbox(ctx)

	pending, err := e.queue.ListAll(ctx)
	if err != nil {
		metrics.DrainsTotal.WithLabelValues("failed").Inc()
		return res, fmt.Errorf("list pending sales: %w", err)
	}

	for _, p := range pending {
		if ctx.Err() != nil {
			break
		}
		res.Attempted++
		partial, err := e.syncOne(ctx, p)
		if err != nil {
			res.Failed++
			metrics.SalesTotal.WithLabelValues("failed").Inc()
			e.log.Warn("pending sale not synced, left in queue",
				zap.Int64("queue_id", p.ID),
				zap.String("idempotency_key", p.IdempotencyKey),
				zap.Error(err),
			)
			continue
		}
		res.Synced++
		res.PartialWrites += partial
		metrics.SalesTotal.WithLabelValues("synced").Inc()
	}

	e.updateGauges(ctx, &res)
	metrics.DrainsTotal.WithLabelValues("completed").Inc()

	if res.Synced > 0 {
		e.notifier.Notify(ctx, fmt.Sprintf("%d offline %s synced", res.Synced, plural(res.Synced, "sale", "sales")))
	}
	e.log.Info("drain finished",
		zap.Int("attempted", res.Attempted),
		zap.Int("synced", res.Synced),
		zap.Int("failed", res.Failed),
		zap.Int("partial_writes", res.PartialWrites),
		zap.Int("remaining", res.Remaining),
	)
	return res, nil
}

// syncOne commits one pending sale. It returns the number of trailing
// effects that failed and were moved to the outbox.
func (e *Engine) syncOne(ctx context.Context, p localstore.PendingSale) (int, error) {
	receipt, err := e.remote.GenerateReceiptNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("receipt number: %w", err)
	}
	actor, err := e.remote.CurrentActor(ctx)
	if err != nil {
		return 0, fmt.Errorf("current actor: %w", err)
	}

	header := p.Snapshot.Header(p.IdempotencyKey, receipt, actor.ID, p.PaymentMethod)
	sale, err := e.remote.CreateSale(ctx, header)
	if err != nil {
		return 0, fmt.Errorf("create sale: %w", err)
	}
	if err := e.remote.CreateSaleItems(ctx, sale.ID, p.Snapshot.Items(sale.ID)); err != nil {
		return 0, fmt.Errorf("create sale items for %s: %w", sale.ReceiptNumber, err)
	}

	failed := e.applyConcurrently(ctx, sale.ID.String(), effects.PlanFor(sale, p.Snapshot, actor.ID).All())

	// The sale is committed remotely from here on; a failure below leaves it
	// queued and the next drain resubmits it under the same idempotency key.
	if err := e.queue.CompleteSale(ctx, p.ID, failed); err != nil {
		return 0, fmt.Errorf("dequeue %s: %w", sale.ReceiptNumber, err)
	}
	e.log.Info("pending sale synced",
		zap.Int64("queue_id", p.ID),
		zap.String("receipt_number", sale.ReceiptNumber),
		zap.Int("failed_effects", len(failed)),
	)
	return len(failed), nil
}

// applyConcurrently runs effs in parallel and returns the ones that failed,
// in plan order, with their error recorded.
func (e *Engine) applyConcurrently(ctx context.Context, saleID string, effs []localstore.Effect) []localstore.Effect {
	errs := make([]error, len(effs))
	var wg sync.WaitGroup
	for i := range effs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = effects.Apply(ctx, e.remote, effs[i])
		}(i)
	}
	wg.Wait()

	var failed []localstore.Effect
	var combined error
	for i, err := range errs {
		if err == nil {
			continue
		}
		eff := effs[i]
		eff.LastError = err.Error()
		failed = append(failed, eff)
		combined = multierr.Append(combined, &apperror.PartialWriteError{SaleID: saleID, Effect: string(eff.Kind), Err: err})
		metrics.PartialWritesTotal.WithLabelValues(string(eff.Kind)).Inc()
	}
	if combined != nil {
		e.log.Warn("sale committed with failed side effects",
			zap.String("sale_id", saleID),
			zap.Int("failed", len(failed)),
			zap.Error(combined),
		)
	}
	return failed
}

// replayOutbox retries stored effects sequentially and returns how many succeeded.
func (e *Engine) replayOutbox(ctx context.Context) int {
	pending, err := e.queue.Effects(ctx)
	if err != nil {
		e.log.Warn("outbox unavailable", zap.Error(err))
		return 0
	}
	replayed := 0
	for _, eff := range pending {
		if ctx.Err() != nil {
			break
		}
		if err := effects.Apply(ctx, e.remote, eff); err != nil {
			e.log.Warn("outbox effect failed again",
				zap.String("kind", string(eff.Kind)),
				zap.String("reference", eff.Reference),
				zap.Int("attempts", eff.Attempts+1),
				zap.Error(err),
			)
			if err := e.queue.MarkEffectFailed(ctx, eff.ID, err); err != nil {
				e.log.Warn("record effect failure", zap.Error(err))
			}
			continue
		}
		if err := e.queue.RemoveEffect(ctx, eff.ID); err != nil {
			e.log.Warn("remove replayed effect", zap.String("reference", eff.Reference), zap.Error(err))
			continue
		}
		replayed++
	}
	return replayed
}

func (e *Engine) updateGauges(ctx context.Context, res *Result) {
	if n, err := e.queue.Count(ctx); err == nil {
		res.Remaining = n
		metrics.QueueDepth.Set(float64(n))
	}
	if n, err := e.queue.CountEffects(ctx); err == nil {
		metrics.OutboxDepth.Set(float64(n))
	}
}

// Run drains once if already online, then on every transition to online,
// until ctx is done. It waits for a running drain before returning.
func (e *Engine) Run(ctx context.Context, signal connectivity.Signal) {
	edges, unsubscribe := signal.Subscribe()
	defer unsubscribe()
	defer e.wg.Wait()

	if signal.Online() {
		e.trigger(ctx)
	}
	for {
		select {
		case <-ctx.Done():
			return
		case online, ok := <-edges:
			if !ok {
				return
			}
			if online {
				e.trigger(ctx)
			}
		}
	}
}

func (e *Engine) trigger(ctx context.Context) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		if _, err := e.Drain(ctx); err != nil {
			e.log.Error("drain failed", zap.Error(err))
		}
	}()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
