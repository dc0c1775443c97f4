package connectivity

import (
	"context"
	"time"

	"github.com/sangkips/investify-pos/internal/pos/metrics"
	"go.uber.org/zap"
)

// Prober checks that the store of record answers.
type Prober interface {
	Ping(ctx context.Context) error
}

// Monitor probes the store of record on an interval and publishes the
// resulting transitions. It starts offline until the first probe succeeds.
type Monitor struct {
	*broadcaster
	prober   Prober
	interval time.Duration
	timeout  time.Duration
	log      *zap.Logger
}

var _ Signal = (*Monitor)(nil)

func NewMonitor(prober Prober, interval, timeout time.Duration, log *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if timeout <= 0 || timeout > interval {
		timeout = interval
	}
	return &Monitor{
		broadcaster: newBroadcaster(false),
		prober:      prober,
		interval:    interval,
		timeout:     timeout,
		log:         log,
	}
}

// Probe runs one check and applies its result.
func (m *Monitor) Probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	err := m.prober.Ping(ctx)
	online := err == nil
	if m.set(online) {
		if online {
			m.log.Info("store of record reachable")
		} else {
			m.log.Warn("store of record unreachable", zap.Error(err))
		}
		metrics.SetOnline(online)
	}
	return online
}

// Run probes until ctx is done.
func (m *Monitor) Run(ctx context.Context) {
	m.Probe(ctx)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Probe(ctx)
		}
	}
}

// Set forces the state until the next probe.
func (m *Monitor) Set(online bool) {
	if m.set(online) {
		metrics.SetOnline(online)
	}
}
