// Package metrics holds the prometheus collectors of a terminal.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CheckoutsTotal counts committed checkouts by path (online, offline).
var CheckoutsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "pos",
	Subsystem: "checkout",
	Name:      "total",
	Help:      "Checkouts completed, by path.",
}, []string{"path"})

// DrainsTotal counts drains by result (completed, skipped, failed).
var DrainsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "pos",
	Subsystem: "sync",
	Name:      "drains_total",
	Help:      "Queue drains attempted, by result.",
}, []string{"result"})

// SalesTotal counts pending sales processed by a drain, by outcome (synced, failed).
var SalesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "pos",
	Subsystem: "sync",
	Name:      "sales_total",
	Help:      "Pending sales processed by drains, by outcome.",
}, []string{"outcome"})

var PartialWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "pos",
	Subsystem: "sync",
	Name:      "partial_writes_total",
	Help:      "Side effects that failed after a sale was committed, by effect.",
}, []string{"effect"})

var QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "pos",
	Subsystem: "queue",
	Name:      "depth",
	Help:      "Sales waiting in the offline queue.",
})

var OutboxDepth = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "pos",
	Name:      "outbox_depth",
	Help:      "Side effects waiting to be replayed.",
})

var ConnectivityOnline = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "pos",
	Subsystem: "connectivity",
	Name:      "online",
	Help:      "1 when the store of record is reachable.",
})

func SetOnline(online bool) {
	if online {
		ConnectivityOnline.Set(1)
		return
	}
	ConnectivityOnline.Set(0)
}
