// Package checkout commits a cart, directly when the store of record is
// reachable and through the offline queue otherwise.
package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/investify-pos/internal/contract"
	"github.com/sangkips/investify-pos/internal/domain/enum"
	"github.com/sangkips/investify-pos/internal/pos/cart"
	"github.com/sangkips/investify-pos/internal/pos/connectivity"
	"github.com/sangkips/investify-pos/internal/pos/effects"
	"github.com/sangkips/investify-pos/internal/pos/localstore"
	"github.com/sangkips/investify-pos/internal/pos/metrics"
	"github.com/sangkips/investify-pos/internal/pos/receipt"
	"github.com/sangkips/investify-pos/internal/pos/remote"
	"github.com/sangkips/investify-pos/pkg/apperror"
	"github.com/sangkips/investify-pos/pkg/printer"
	"go.uber.org/zap"
)

type Path string

const (
	PathOnline  Path = "online"
	PathOffline Path = "offline"
)

// Queue is the local state checkout writes to.
type Queue interface {
	Enqueue(ctx context.Context, sale localstore.PendingSale) (int64, error)
	AddEffects(ctx context.Context, effects []localstore.Effect) error
}

// Outcome describes a successful checkout.
type Outcome struct {
	Path    Path
	Sale    *contract.Sale // nil when queued
	QueueID int64          // set when queued
	Receipt receipt.Receipt
	// Pending lists effects of a committed sale that failed and were left in
	// the outbox for the next drain.
	Pending  []localstore.Effect
	PrintErr error
}

type Service struct {
	remote  remote.SaleWriter
	queue   Queue
	signal  connectivity.Signal
	printer printer.Printer
	header  receipt.Header
	width   int
	log     *zap.Logger
}

func NewService(
	w remote.SaleWriter,
	queue Queue,
	signal connectivity.Signal,
	p printer.Printer,
	header receipt.Header,
	paperWidth int,
	log *zap.Logger,
) *Service {
	return &Service{
		remote:  w,
		queue:   queue,
		signal:  signal,
		printer: p,
		header:  header,
		width:   paperWidth,
		log:     log,
	}
}

// Validate checks c before anything is written: the cart must not be empty,
// every line must sell above cost, credit sales need a customer name and the
// discount may not exceed subtotal plus tax.
func Validate(c *cart.Cart, method enum.PaymentMethod) error {
	if c.IsEmpty() {
		return apperror.NewFieldError("lines", "cart is empty")
	}

	var errs []apperror.FieldError
	for _, l := range c.Lines() {
		if l.UnitPrice <= l.Product.BuyingPrice {
			errs = append(errs, apperror.FieldError{
				Field:   "lines." + l.Product.Name,
				Message: "price must be above cost",
			})
		}
	}
	if method == enum.PaymentMethodCredit && strings.TrimSpace(c.CustomerName()) == "" {
		errs = append(errs, apperror.FieldError{Field: "customer_name", Message: "is required for credit sales"})
	}
	t := c.Totals()
	if t.Discount > t.Subtotal+t.TaxAmount {
		errs = append(errs, apperror.FieldError{Field: "discount", Message: "exceeds the sale amount"})
	}

	if len(errs) > 0 {
		return apperror.NewValidationError(errs)
	}
	return nil
}

// Checkout commits c. On success the cart is cleared and a receipt printed;
// on error the cart is left as it was so the cashier can retry, and a retry
// reuses the cart's idempotency key.
func (s *Service) Checkout(ctx context.Context, c *cart.Cart, method enum.PaymentMethod, actorID uuid.UUID) (*Outcome, error) {
	if err := Validate(c, method); err != nil {
		return nil, err
	}

	var (
		out *Outcome
		err error
	)
	if s.signal.Online() {
		out, err = s.online(ctx, c, method)
	} else {
		out, err = s.offline(ctx, c, method, actorID)
	}
	if err != nil {
		return nil, err
	}

	metrics.CheckoutsTotal.WithLabelValues(string(out.Path)).Inc()
	c.Clear()
	out.PrintErr = s.print(out.Receipt)
	return out, nil
}

// online writes the header, the items and each stock decrement in turn,
// then the ledger entry.
func (s *Service) online(ctx context.Context, c *cart.Cart, method enum.PaymentMethod) (*Outcome, error) {
	snap := c.Snapshot()

	number, err := s.remote.GenerateReceiptNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("receipt number: %w", err)
	}
	actor, err := s.remote.CurrentActor(ctx)
	if err != nil {
		return nil, fmt.Errorf("current actor: %w", err)
	}
	sale, err := s.remote.CreateSale(ctx, snap.Header(c.IdempotencyKey(), number, actor.ID, method))
	if err != nil {
		return nil, fmt.Errorf("create sale: %w", err)
	}
	items := snap.Items(sale.ID)
	if err := s.remote.CreateSaleItems(ctx, sale.ID, items); err != nil {
		return nil, fmt.Errorf("create sale items: %w", err)
	}

	plan := effects.PlanFor(sale, snap, actor.ID)
	for _, eff := range plan.Stock {
		if err := effects.Apply(ctx, s.remote, eff); err != nil {
			return nil, fmt.Errorf("decrement stock: %w", err)
		}
	}

	out := &Outcome{Path: PathOnline, Sale: &sale, Receipt: receipt.Build(s.header, sale, items)}
	out.Receipt.Cashier = actor.Name

	if plan.Ledger == nil {
		return out, nil
	}
	if err := effects.Apply(ctx, s.remote, *plan.Ledger); err != nil {
		pending := *plan.Ledger
		pending.LastError = err.Error()
		partial := &apperror.PartialWriteError{SaleID: sale.ID.String(), Effect: string(pending.Kind), Err: err}
		if qerr := s.queue.AddEffects(ctx, []localstore.Effect{pending}); qerr != nil {
			// Nothing holds the effect; a retry of the same cart replays every write.
			return nil, fmt.Errorf("%w; keeping it for replay failed: %v", partial, qerr)
		}
		metrics.PartialWritesTotal.WithLabelValues(string(pending.Kind)).Inc()
		s.log.Warn("sale committed, ledger entry left for replay",
			zap.String("receipt_number", sale.ReceiptNumber),
			zap.Error(partial),
		)
		out.Pending = []localstore.Effect{pending}
	}
	return out, nil
}

func (s *Service) offline(ctx context.Context, c *cart.Cart, method enum.PaymentMethod, actorID uuid.UUID) (*Outcome, error) {
	snap := c.Snapshot()
	p := localstore.PendingSale{
		IdempotencyKey: c.IdempotencyKey(),
		ActorID:        actorID,
		PaymentMethod:  method,
		Snapshot:       snap,
		QueuedTotal:    snap.Totals().Total,
		CreatedAt:      time.Now().UTC(),
	}
	id, err := s.queue.Enqueue(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("queue sale: %w", err)
	}
	p.ID = id
	metrics.QueueDepth.Inc()
	s.log.Info("sale queued offline",
		zap.Int64("queue_id", id),
		zap.String("idempotency_key", p.IdempotencyKey),
		zap.Int64("total", p.QueuedTotal),
	)
	return &Outcome{Path: PathOffline, QueueID: id, Receipt: receipt.Provisional(s.header, p)}, nil
}

func (s *Service) print(r receipt.Receipt) error {
	if s.printer == nil {
		return nil
	}
	if err := s.printer.Print(r.ESCPOS(s.width)); err != nil {
		s.log.Warn("receipt not printed", zap.String("receipt_number", r.Number), zap.Error(err))
		return err
	}
	return nil
}
