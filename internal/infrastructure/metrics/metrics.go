package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Funding metrics
	FundsReceived         prometheus.Counter
	FundAmount            prometheus.Histogram
	FundDuration          prometheus.Histogram
	ContributionsRejected *prometheus.CounterVec

	// Withdraw metrics
	Withdrawals      *prometheus.CounterVec
	WithdrawnAmount  prometheus.Counter
	WithdrawDuration prometheus.Histogram
	WithdrawErrors   *prometheus.CounterVec

	// Oracle metrics
	OracleErrors  prometheus.Counter
	QuoteCacheHit *prometheus.CounterVec

	// Outbox metrics
	EventsPublished *prometheus.CounterVec
	PublishErrors   prometheus.Counter

	// Rate limiting metrics
	RateLimitHits prometheus.Counter
}

// New creates all metrics and registers them with the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates all metrics and registers them with reg.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Funding metrics
		FundsReceived: factory.NewCounter(prometheus.CounterOpts{
			Name: "fundledger_funds_received_total",
			Help: "Total number of accepted deposits",
		}),
		FundAmount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fundledger_fund_amount",
			Help:    "Deposit amounts in whole native units",
			Buckets: []float64{0.001, 0.01, 0.1, 1, 10, 100, 1000},
		}),
		FundDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fundledger_fund_duration_seconds",
			Help:    "Duration of fund operations",
			Buckets: prometheus.DefBuckets,
		}),
		ContributionsRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fundledger_contributions_rejected_total",
				Help: "Total number of rejected deposits by reason",
			},
			[]string{"reason"},
		),

		// Withdraw metrics
		Withdrawals: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fundledger_withdrawals_total",
				Help: "Total number of successful withdrawals by variant",
			},
			[]string{"variant"},
		),
		WithdrawnAmount: factory.NewCounter(prometheus.CounterOpts{
			Name: "fundledger_withdrawn_amount_total",
			Help: "Total withdrawn amount in whole native units",
		}),
		WithdrawDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fundledger_withdraw_duration_seconds",
			Help:    "Duration of withdraw operations",
			Buckets: prometheus.DefBuckets,
		}),
		WithdrawErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fundledger_withdraw_errors_total",
				Help: "Total number of failed withdrawals by reason",
			},
			[]string{"reason"},
		),

		// Oracle metrics
		OracleErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "fundledger_oracle_errors_total",
			Help: "Total number of failed price feed reads",
		}),
		QuoteCacheHit: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fundledger_quote_cache_total",
				Help: "Quote cache lookups by result",
			},
			[]string{"result"},
		),

		// Outbox metrics
		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fundledger_events_published_total",
				Help: "Total outbox events published by type",
			},
			[]string{"event_type"},
		),
		PublishErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "fundledger_event_publish_errors_total",
			Help: "Total outbox publish failures",
		}),

		// Rate limiting metrics
		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "fundledger_rate_limit_hits_total",
			Help: "Total rate limit hits",
		}),
	}
}
