// Package catalog serves reference data from the local cache and keeps it
// fresh from the store of record.
package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/sangkips/investify-pos/internal/contract"
	"github.com/sangkips/investify-pos/internal/pos/localstore"
	"github.com/sangkips/investify-pos/pkg/apperror"
	"go.uber.org/zap"
)

// Hook is the read-through cache of one entity. fetch lists every row of
// the entity from the store of record.
type Hook[T contract.Record] struct {
	store  *localstore.Store
	entity localstore.Entity
	fetch  func(ctx context.Context) ([]T, error)
	log    *zap.Logger

	mu         sync.Mutex
	refreshing bool
	wg         sync.WaitGroup
}

func NewHook[T contract.Record](store *localstore.Store, entity localstore.Entity, fetch func(ctx context.Context) ([]T, error), log *zap.Logger) *Hook[T] {
	return &Hook[T]{store: store, entity: entity, fetch: fetch, log: log.With(zap.String("entity", string(entity)))}
}

func (h *Hook[T]) Entity() localstore.Entity { return h.entity }

// Load returns the cached rows at once and refreshes them in the background.
// With nothing cached it refreshes first and fails only if that refresh does.
// An unavailable cache counts as an empty one.
func (h *Hook[T]) Load(ctx context.Context) ([]T, error) {
	rows, err := localstore.ReadAll[T](ctx, h.store, h.entity)
	if err != nil && !apperror.IsCacheUnavailable(err) {
		h.log.Warn("cached rows unreadable", zap.Error(err))
	}
	if len(rows) > 0 {
		h.refreshInBackground(ctx)
		return rows, nil
	}
	return h.Refresh(ctx)
}

// Refresh fetches every row and replaces the cache with them.
func (h *Hook[T]) Refresh(ctx context.Context) ([]T, error) {
	rows, err := h.fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh %s: %w", h.entity, err)
	}
	if err := localstore.ReplaceAll(ctx, h.store, h.entity, rows); err != nil {
		if !apperror.IsCacheUnavailable(err) {
			return nil, err
		}
		h.log.Debug("cache unavailable, serving fetched rows uncached")
	}
	return rows, nil
}

// Wait blocks until background refreshes have finished.
func (h *Hook[T]) Wait() {
	h.wg.Wait()
}

func (h *Hook[T]) refreshInBackground(ctx context.Context) {
	h.mu.Lock()
	if h.refreshing {
		h.mu.Unlock()
		return
	}
	h.refreshing = true
	h.wg.Add(1)
	h.mu.Unlock()

	ctx = context.WithoutCancel(ctx)
	go func() {
		defer h.wg.Done()
		defer func() {
			h.mu.Lock()
			h.refreshing = false
			h.mu.Unlock()
		}()
		if _, err := h.Refresh(ctx); err != nil {
			h.log.Warn("background refresh failed, keeping cached rows", zap.Error(err))
		}
	}()
}
