package localstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/sangkips/investify-pos/internal/contract"
)

type EffectKind string

const (
	EffectStock  EffectKind = "stock"
	EffectCash   EffectKind = "cash"
	EffectCredit EffectKind = "credit"
)

// Effect is a side effect of a committed sale that has not reached the store
// of record yet. Reference is unique per effect and is what the server uses
// to recognise a replay.
type Effect struct {
	ID        int64           `json:"id"`
	Kind      EffectKind      `json:"kind"`
	Reference string          `json:"reference"`
	SaleID    string          `json:"sale_id"`
	Payload   json.RawMessage `json:"payload"`
	Attempts  int             `json:"attempts"`
	LastError string          `json:"last_error,omitempty"`
}

func newEffect(kind EffectKind, saleID, reference string, payload any) Effect {
	// The payloads are plain structs of numbers, strings and uuids.
	data, _ := json.Marshal(payload)
	return Effect{Kind: kind, Reference: reference, SaleID: saleID, Payload: data}
}

func StockEffect(saleID string, adj contract.StockAdjustment) Effect {
	return newEffect(EffectStock, saleID, adj.Reference, adj)
}

func CashEffect(saleID string, in contract.CashEntryInput) Effect {
	return newEffect(EffectCash, saleID, in.Reference, in)
}

// CreditEffect keys the credit record by sale since there is one per sale.
func CreditEffect(in contract.CreditRecordInput) Effect {
	return newEffect(EffectCredit, in.SaleID.String(), in.SaleID.String()+":credit", in)
}

func (e Effect) Stock() (contract.StockAdjustment, error) {
	var adj contract.StockAdjustment
	err := e.decode(EffectStock, &adj)
	return adj, err
}

func (e Effect) Cash() (contract.CashEntryInput, error) {
	var in contract.CashEntryInput
	err := e.decode(EffectCash, &in)
	return in, err
}

func (e Effect) Credit() (contract.CreditRecordInput, error) {
	var in contract.CreditRecordInput
	err := e.decode(EffectCredit, &in)
	return in, err
}

func (e Effect) decode(kind EffectKind, v any) error {
	if e.Kind != kind {
		return fmt.Errorf("effect %d is %s, not %s", e.ID, e.Kind, kind)
	}
	return json.Unmarshal(e.Payload, v)
}

type effectRow struct {
	ID        int64  `db:"id"`
	Kind      string `db:"kind"`
	Reference string `db:"reference"`
	SaleID    string `db:"sale_id"`
	Payload   string `db:"payload"`
	Attempts  int    `db:"attempts"`
	LastError string `db:"last_error"`
}

const insertEffect = `INSERT INTO pending_effects (kind, reference, sale_id, payload, last_error)
	VALUES (?, ?, ?, ?, ?) ON CONFLICT(reference) DO NOTHING`

func addEffects(ctx context.Context, ex sqlx.ExecerContext, effects []Effect) error {
	for _, e := range effects {
		if _, err := ex.ExecContext(ctx, insertEffect, string(e.Kind), e.Reference, e.SaleID, string(e.Payload), e.LastError); err != nil {
			return fmt.Errorf("record %s effect %s: %w", e.Kind, e.Reference, err)
		}
	}
	return nil
}

// AddEffects records effects in the outbox. A reference already present is kept as is.
func (s *Store) AddEffects(ctx context.Context, effects []Effect) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	return addEffects(ctx, db, effects)
}

// CompleteSale removes pending sale id and records its failed effects in one
// transaction, so a sale never leaves the queue without its outstanding effects.
func (s *Store) CompleteSale(ctx context.Context, id int64, failed []Effect) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := addEffects(ctx, tx, failed); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM pending_sales WHERE id = ?", id); err != nil {
		return fmt.Errorf("remove pending sale %d: %w", id, err)
	}
	return tx.Commit()
}

// Effects lists the outbox in insertion order.
func (s *Store) Effects(ctx context.Context) ([]Effect, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	var rows []effectRow
	if err := db.SelectContext(ctx, &rows,
		"SELECT id, kind, reference, sale_id, payload, attempts, last_error FROM pending_effects ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list effects: %w", err)
	}
	effects := make([]Effect, 0, len(rows))
	for _, r := range rows {
		effects = append(effects, Effect{
			ID:        r.ID,
			Kind:      EffectKind(r.Kind),
			Reference: r.Reference,
			SaleID:    r.SaleID,
			Payload:   json.RawMessage(r.Payload),
			Attempts:  r.Attempts,
			LastError: r.LastError,
		})
	}
	return effects, nil
}

func (s *Store) RemoveEffect(ctx context.Context, id int64) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, "DELETE FROM pending_effects WHERE id = ?", id)
	return err
}

// MarkEffectFailed bumps the attempt count of effect id.
func (s *Store) MarkEffectFailed(ctx context.Context, id int64, cause error) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx,
		"UPDATE pending_effects SET attempts = attempts + 1, last_error = ? WHERE id = ?", cause.Error(), id)
	return err
}

func (s *Store) CountEffects(ctx context.Context) (int, error) {
	db, err := s.conn()
	if err != nil {
		return 0, err
	}
	var n int
	if err := db.GetContext(ctx, &n, "SELECT COUNT(*) FROM pending_effects"); err != nil {
		return 0, err
	}
	return n, nil
}
