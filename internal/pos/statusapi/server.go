// Package statusapi serves the local status endpoints of a terminal.
package statusapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sangkips/investify-pos/internal/pos/connectivity"
	"github.com/sangkips/investify-pos/internal/pos/localstore"
	"github.com/sangkips/investify-pos/internal/pos/syncer"
)

type Queue interface {
	ListAll(ctx context.Context) ([]localstore.PendingSale, error)
	Count(ctx context.Context) (int, error)
	CountEffects(ctx context.Context) (int, error)
}

type Drainer interface {
	Drain(ctx context.Context) (syncer.Result, error)
	Draining() bool
}

// Server is the status API of one terminal.
type Server struct {
	terminalID string
	queue      Queue
	drainer    Drainer
	signal     connectivity.Signal
	log        *zap.Logger
}

func NewServer(terminalID string, queue Queue, drainer Drainer, signal connectivity.Signal, log *zap.Logger) *Server {
	return &Server{terminalID: terminalID, queue: queue, drainer: drainer, signal: signal, log: log}
}

// Health is the body of GET /health.
type Health struct {
	Status   string `json:"status"`
	Terminal string `json:"terminal"`
	Online   bool   `json:"online"`
	Draining bool   `json:"draining"`
	Queued   int    `json:"queued"`
	Outbox   int    `json:"outbox"`
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Minute))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/queue", s.handleQueue)
	r.Post("/sync", s.handleSync)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	h := Health{
		Status:   "ok",
		Terminal: s.terminalID,
		Online:   s.signal.Online(),
		Draining: s.drainer.Draining(),
	}
	var err error
	if h.Queued, err = s.queue.Count(r.Context()); err != nil {
		h.Status = "degraded"
	}
	if h.Outbox, err = s.queue.CountEffects(r.Context()); err != nil {
		h.Status = "degraded"
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) handleQueue(w http.ResponseWriter, r *http.Request) {
	sales, err := s.queue.ListAll(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sales)
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if !s.signal.Online() {
		writeError(w, http.StatusConflict, "store of record is unreachable")
		return
	}
	res, err := s.drainer.Drain(r.Context())
	if err != nil {
		s.log.Error("manual drain failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	status := http.StatusOK
	if res.Skipped {
		status = http.StatusAccepted
	}
	writeJSON(w, status, res)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
		},
	})
}
