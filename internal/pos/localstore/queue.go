package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/investify-pos/internal/domain/enum"
	"github.com/sangkips/investify-pos/internal/pos/cart"
)

// PendingSale is a sale taken while offline, waiting for the Sync Engine.
type PendingSale struct {
	ID             int64              `json:"id" yaml:"id"`
	IdempotencyKey string             `json:"idempotency_key" yaml:"idempotency_key"`
	ActorID        uuid.UUID          `json:"actor_id" yaml:"actor_id"`
	PaymentMethod  enum.PaymentMethod `json:"payment_method" yaml:"payment_method"`
	Snapshot       cart.Snapshot      `json:"snapshot" yaml:"snapshot"`
	QueuedTotal    int64              `json:"queued_total" yaml:"queued_total"`
	CreatedAt      time.Time          `json:"created_at" yaml:"created_at"`
}

type pendingRow struct {
	ID             int64  `db:"id"`
	IdempotencyKey string `db:"idempotency_key"`
	Payload        string `db:"payload"`
}

func (r pendingRow) decode() (PendingSale, error) {
	var p PendingSale
	if err := json.Unmarshal([]byte(r.Payload), &p); err != nil {
		return p, fmt.Errorf("decode pending sale %d: %w", r.ID, err)
	}
	p.ID = r.ID
	p.IdempotencyKey = r.IdempotencyKey
	return p, nil
}

// Enqueue stores sale and returns its queue id. Enqueueing the same
// idempotency key twice returns the id of the first entry.
func (s *Store) Enqueue(ctx context.Context, sale PendingSale) (int64, error) {
	db, err := s.conn()
	if err != nil {
		return 0, err
	}
	if sale.IdempotencyKey == "" {
		return 0, errors.New("pending sale has no idempotency key")
	}
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(sale)
	if err != nil {
		return 0, err
	}

	res, err := db.ExecContext(ctx,
		`INSERT INTO pending_sales (idempotency_key, payload) VALUES (?, ?)
		 ON CONFLICT(idempotency_key) DO NOTHING`, sale.IdempotencyKey, string(payload))
	if err != nil {
		return 0, fmt.Errorf("enqueue sale: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return res.LastInsertId()
	}

	var id int64
	if err := db.GetContext(ctx, &id, "SELECT id FROM pending_sales WHERE idempotency_key = ?", sale.IdempotencyKey); err != nil {
		return 0, fmt.Errorf("enqueue sale: %w", err)
	}
	return id, nil
}

// ListAll returns every pending sale in storage order.
func (s *Store) ListAll(ctx context.Context) ([]PendingSale, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	var rows []pendingRow
	if err := db.SelectContext(ctx, &rows, "SELECT id, idempotency_key, payload FROM pending_sales ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list pending sales: %w", err)
	}
	sales := make([]PendingSale, 0, len(rows))
	for _, r := range rows {
		p, err := r.decode()
		if err != nil {
			return nil, err
		}
		sales = append(sales, p)
	}
	return sales, nil
}

// Get returns the pending sale with id, or nil when there is none.
func (s *Store) Get(ctx context.Context, id int64) (*PendingSale, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	var row pendingRow
	err = db.GetContext(ctx, &row, "SELECT id, idempotency_key, payload FROM pending_sales WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p, err := row.decode()
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) Remove(ctx context.Context, id int64) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, "DELETE FROM pending_sales WHERE id = ?", id); err != nil {
		return fmt.Errorf("remove pending sale %d: %w", id, err)
	}
	return nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	db, err := s.conn()
	if err != nil {
		return 0, err
	}
	var n int
	if err := db.GetContext(ctx, &n, "SELECT COUNT(*) FROM pending_sales"); err != nil {
		return 0, err
	}
	return n, nil
}
