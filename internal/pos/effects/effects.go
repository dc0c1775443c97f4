// Package effects plans and applies the writes that follow a committed sale
// header and its items: stock decrements and the ledger post.
package effects

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sangkips/investify-pos/internal/contract"
	"github.com/sangkips/investify-pos/internal/domain/enum"
	"github.com/sangkips/investify-pos/internal/pos/cart"
	"github.com/sangkips/investify-pos/internal/pos/localstore"
)

// Writer is the subset of the remote contract effects are applied through.
type Writer interface {
	AdjustStock(ctx context.Context, adj contract.StockAdjustment) error
	PostCashEntry(ctx context.Context, in contract.CashEntryInput) error
	PostCreditRecord(ctx context.Context, in contract.CreditRecordInput) (contract.CreditRecord, error)
}

// Plan is the ordered effects of one sale.
type Plan struct {
	Stock  []localstore.Effect
	Ledger *localstore.Effect
}

// All returns stock effects followed by the ledger effect.
func (p Plan) All() []localstore.Effect {
	all := append([]localstore.Effect(nil), p.Stock...)
	if p.Ledger != nil {
		all = append(all, *p.Ledger)
	}
	return all
}

// PlanFor lists the effects of sale: one stock decrement per line, then a
// cash entry for cash sales or a credit record for credit sales naming a
// customer. Other payment methods post nothing to the ledger.
func PlanFor(sale contract.Sale, snap cart.Snapshot, actorID uuid.UUID) Plan {
	saleID := sale.ID.String()
	var plan Plan
	for _, l := range snap.Lines {
		plan.Stock = append(plan.Stock, localstore.StockEffect(saleID, contract.StockAdjustment{
			ProductID: l.ProductID,
			Delta:     -l.Quantity,
			Reference: contract.StockReference(sale.IdempotencyKey, l.ProductID),
		}))
	}

	switch {
	case sale.PaymentMethod == enum.PaymentMethodCash:
		eff := localstore.CashEffect(saleID, contract.CashEntryInput{
			SaleID:    sale.ID,
			ActorID:   actorID,
			Amount:    sale.Total,
			Type:      enum.CashEntrySale,
			Reference: contract.CashReference(sale.IdempotencyKey),
		})
		plan.Ledger = &eff
	case sale.PaymentMethod == enum.PaymentMethodCredit && snap.CustomerName != "":
		eff := localstore.CreditEffect(contract.CreditRecordInput{
			SaleID:       sale.ID,
			CustomerName: snap.CustomerName,
			TotalOwed:    sale.Total,
		})
		plan.Ledger = &eff
	}
	return plan
}

// Apply performs one effect against w.
func Apply(ctx context.Context, w Writer, eff localstore.Effect) error {
	switch eff.Kind {
	case localstore.EffectStock:
		adj, err := eff.Stock()
		if err != nil {
			return err
		}
		return w.AdjustStock(ctx, adj)
	case localstore.EffectCash:
		in, err := eff.Cash()
		if err != nil {
			return err
		}
		return w.PostCashEntry(ctx, in)
	case localstore.EffectCredit:
		in, err := eff.Credit()
		if err != nil {
			return err
		}
		_, err = w.PostCreditRecord(ctx, in)
		return err
	}
	return fmt.Errorf("unknown effect kind %q", eff.Kind)
}
