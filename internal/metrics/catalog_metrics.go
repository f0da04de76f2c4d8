package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MutationsTotal counts terminal mutation outcomes by kind (create, update, delete) and outcome.
	MutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_mutations_total",
		Help: "The total number of optimistic catalog mutations by kind and outcome",
	}, []string{"kind", "outcome"})

	// MutationsInFlight tracks mutations applied locally but not yet settled.
	MutationsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_mutations_in_flight",
		Help: "The number of optimistic mutations waiting for the remote catalog",
	})

	// RemoteCallDuration observes remote catalog call latency by operation.
	RemoteCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_remote_call_duration_seconds",
		Help:    "Latency of remote catalog calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})

	// CatalogProducts reports the number of products currently held by the store.
	CatalogProducts = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_products",
		Help: "The number of products in the local catalog",
	})

	// RecordsSkipped counts malformed remote records skipped during loads.
	RecordsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_records_skipped_total",
		Help: "The total number of malformed remote records skipped during loads",
	})

	// JournalEventsTotal counts journal events by status: recorded (pending), published or failed.
	JournalEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "journal_events_total",
		Help: "The total number of journal events by status",
	}, []string{"status"})
)
