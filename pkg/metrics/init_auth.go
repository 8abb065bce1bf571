package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initAuthMetrics() {
	r.AuthFailuresTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "rangecore_auth_failures_total",
			Help: "Total number of failed authentication attempts",
		},
	)

	r.AccessDeniedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "rangecore_access_denied_total",
			Help: "Total number of authorization denials by caller role",
		},
		[]string{"role", "resource"},
	)

	r.TokensIssuedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "rangecore_tokens_issued_total",
			Help: "Total number of JWT tokens issued",
		},
	)

	r.ActiveSessionsOpen = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "rangecore_active_sessions_open",
			Help: "Current number of authenticated sessions",
		},
	)
}
