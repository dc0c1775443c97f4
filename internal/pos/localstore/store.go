// Package localstore is the terminal's durable store: a replace-on-write cache
// per catalog entity, the queue of sales taken offline and the outbox of
// side effects that still have to reach the store of record.
//
// A Store that could not be opened is still usable: every call returns
// apperror.ErrCacheUnavailable so callers can carry on as if nothing is cached.
package localstore

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/sangkips/investify-pos/pkg/apperror"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

type Store struct {
	db  *sqlx.DB
	log *zap.Logger
}

// Open opens or creates the SQLite file at path and applies the schema.
func Open(path string, log *zap.Logger) (*Store, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open local store %s: %w", path, err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, log: log}, nil
}

// OpenOrDegrade is Open that logs the failure and returns a degraded store.
func OpenOrDegrade(path string, log *zap.Logger) *Store {
	s, err := Open(path, log)
	if err != nil {
		log.Warn("local store unavailable, running without cache", zap.String("path", path), zap.Error(err))
		return Degraded(log)
	}
	return s
}

// Degraded returns a store whose every operation fails with ErrCacheUnavailable.
func Degraded(log *zap.Logger) *Store {
	return &Store{log: log}
}

func (s *Store) Available() bool {
	return s != nil && s.db != nil
}

func (s *Store) Close() error {
	if !s.Available() {
		return nil
	}
	return s.db.Close()
}

func (s *Store) conn() (*sqlx.DB, error) {
	if !s.Available() {
		return nil, apperror.ErrCacheUnavailable
	}
	return s.db, nil
}

func applyPragmas(db *sqlx.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}
