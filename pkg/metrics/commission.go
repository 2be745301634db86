package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of one plan-vs-sale resolution, cache load included
	CommissionResolveLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "commission_resolve_latency_seconds",
		Help:    "Latency of commission resolution on sale intake",
		Buckets: prometheus.DefBuckets,
	})

	CommissionResolvedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "commission_resolved_total",
		Help: "Total commissions resolved, by resulting status",
	}, []string{"status"})

	CommissionClawbackTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "commission_clawback_total",
		Help: "Total commissions clawed back on refund",
	})

	CommissionReleasedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "commission_released_total",
		Help: "Total held commissions released to payable by the sweep",
	})
)

func Init() {
	prometheus.MustRegister(
		CommissionResolveLatency,
		CommissionResolvedTotal,
		CommissionClawbackTotal,
		CommissionReleasedTotal,
	)
}
