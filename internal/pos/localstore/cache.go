package localstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sangkips/investify-pos/internal/contract"
)

// Entity names one cached collection.
type Entity string

const (
	Products       Entity = "products"
	Categories     Entity = "categories"
	Customers      Entity = "customers"
	Suppliers      Entity = "suppliers"
	Profiles       Entity = "profiles"
	Sales          Entity = "sales"
	CashBoxEntries Entity = "cash_box_entries"
	CreditRecords  Entity = "credit_records"
)

var Entities = []Entity{Products, Categories, Customers, Suppliers, Profiles, Sales, CashBoxEntries, CreditRecords}

func (e Entity) table() string {
	return "cache_" + string(e)
}

type cacheRow struct {
	ID       string `db:"id"`
	Position int    `db:"position"`
	Payload  string `db:"payload"`
}

// ReplaceAll swaps the whole cached set of e for rows in one transaction.
// Every row is validated first; an invalid row leaves the cache untouched.
func ReplaceAll[T contract.Record](ctx context.Context, s *Store, e Entity, rows []T) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	encoded := make([]cacheRow, 0, len(rows))
	for i, r := range rows {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("cache %s row %d: %w", e, i, err)
		}
		payload, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("cache %s row %d: %w", e, i, err)
		}
		encoded = append(encoded, cacheRow{ID: r.Key(), Position: i, Payload: string(payload)})
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+e.table()); err != nil {
		return fmt.Errorf("clear %s cache: %w", e, err)
	}
	for _, row := range encoded {
		if _, err := tx.NamedExecContext(ctx,
			"INSERT OR REPLACE INTO "+e.table()+" (id, position, payload) VALUES (:id, :position, :payload)", row); err != nil {
			return fmt.Errorf("write %s cache: %w", e, err)
		}
	}
	return tx.Commit()
}

// ReadAll returns the cached set of e in the order it was written.
func ReadAll[T contract.Record](ctx context.Context, s *Store, e Entity) ([]T, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	var rows []cacheRow
	if err := db.SelectContext(ctx, &rows, "SELECT id, position, payload FROM "+e.table()+" ORDER BY position"); err != nil {
		return nil, fmt.Errorf("read %s cache: %w", e, err)
	}

	out := make([]T, 0, len(rows))
	for _, row := range rows {
		var rec T
		if err := json.Unmarshal([]byte(row.Payload), &rec); err != nil {
			return nil, fmt.Errorf("decode %s %s: %w", e, row.ID, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// CountCached returns the number of cached rows of e.
func (s *Store) CountCached(ctx context.Context, e Entity) (int, error) {
	db, err := s.conn()
	if err != nil {
		return 0, err
	}
	var n int
	if err := db.GetContext(ctx, &n, "SELECT COUNT(*) FROM "+e.table()); err != nil {
		return 0, err
	}
	return n, nil
}
