package statusapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/investify-pos/internal/domain/enum"
	"github.com/sangkips/investify-pos/internal/pos/connectivity"
	"github.com/sangkips/investify-pos/internal/pos/localstore"
	"github.com/sangkips/investify-pos/internal/pos/syncer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubDrainer struct {
	result syncer.Result
	err    error
	calls  int
}

func (d *stubDrainer) Drain(context.Context) (syncer.Result, error) {
	d.calls++
	return d.result, d.err
}

func (d *stubDrainer) Draining() bool { return false }

func newTestServer(t *testing.T, online bool) (*Server, *localstore.Store, *stubDrainer) {
	t.Helper()
	store, err := localstore.Open(filepath.Join(t.TempDir(), "pos.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	d := &stubDrainer{}
	return NewServer("till-1", store, d, connectivity.NewStatic(online), zap.NewNop()), store, d
}

func serve(s *Server, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s, store, _ := newTestServer(t, true)
	_, err := store.Enqueue(context.Background(), localstore.PendingSale{IdempotencyKey: uuid.NewString(), PaymentMethod: enum.PaymentMethodCash})
	require.NoError(t, err)

	w := serve(s, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, w.Code)

	var h Health
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &h))
	assert.Equal(t, Health{Status: "ok", Terminal: "till-1", Online: true, Queued: 1}, h)
}

func TestHealthDegradedStore(t *testing.T) {
	s := NewServer("till-1", localstore.Degraded(zap.NewNop()), &stubDrainer{}, connectivity.NewStatic(false), zap.NewNop())

	w := serve(s, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"degraded"`)

	w = serve(s, http.MethodGet, "/queue")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestQueueListsPendingSales(t *testing.T) {
	s, store, _ := newTestServer(t, false)
	key := uuid.NewString()
	_, err := store.Enqueue(context.Background(), localstore.PendingSale{IdempotencyKey: key, PaymentMethod: enum.PaymentMethodCash})
	require.NoError(t, err)

	w := serve(s, http.MethodGet, "/queue")
	require.Equal(t, http.StatusOK, w.Code)

	var sales []localstore.PendingSale
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sales))
	require.Len(t, sales, 1)
	assert.Equal(t, key, sales[0].IdempotencyKey)
}

func TestSync(t *testing.T) {
	s, _, d := newTestServer(t, true)
	d.result = syncer.Result{Attempted: 2, Synced: 2}

	w := serve(s, http.MethodPost, "/sync")
	require.Equal(t, http.StatusOK, w.Code)

	var res syncer.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, d.result, res)

	d.result = syncer.Result{Skipped: true}
	w = serve(s, http.MethodPost, "/sync")
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, 2, d.calls)
}

func TestSyncWhileOffline(t *testing.T) {
	s, _, d := newTestServer(t, false)

	w := serve(s, http.MethodPost, "/sync")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Zero(t, d.calls)
}

func TestMetricsEndpoint(t *testing.T) {
	s, _, _ := newTestServer(t, true)

	w := serve(s, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
