package localstore

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

const schemaVersion = 1

func schema() []string {
	stmts := make([]string, 0, len(Entities)+2)
	for _, e := range Entities {
		stmts = append(stmts, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
            id TEXT PRIMARY KEY,
            position INTEGER NOT NULL,
            payload TEXT NOT NULL
        );`, e.table()))
	}
	stmts = append(stmts,
		`CREATE TABLE IF NOT EXISTS pending_sales (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            idempotency_key TEXT NOT NULL UNIQUE,
            payload TEXT NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS pending_effects (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            kind TEXT NOT NULL,
            reference TEXT NOT NULL UNIQUE,
            sale_id TEXT NOT NULL,
            payload TEXT NOT NULL,
            attempts INTEGER NOT NULL DEFAULT 0,
            last_error TEXT NOT NULL DEFAULT ''
        );`,
	)
	return stmts
}

func migrate(db *sqlx.DB) error {
	var version int
	if err := db.Get(&version, "PRAGMA user_version"); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version >= schemaVersion {
		return nil
	}
	for _, stmt := range schema() {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}
