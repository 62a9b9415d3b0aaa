package authcore

import (
	"github.com/prometheus/client_golang/prometheus"
)

// metrics holds the engine's Prometheus collectors. Outcome labels keep
// storage outages distinguishable from credential failures in dashboards.
type metrics struct {
	logins  *prometheus.CounterVec
	authn   *prometheus.CounterVec
	refresh *prometheus.CounterVec
	enabled bool
}

const (
	outcomeSuccess          = "success"
	outcomeInvalid          = "invalid_credentials"
	outcomeExpired          = "expired"
	outcomeNoToken          = "no_token"
	outcomeUserNotFound     = "user_not_found"
	outcomeInactive         = "inactive_user"
	outcomeForbidden        = "forbidden"
	outcomeStoreUnavailable = "store_unavailable"
	outcomeError            = "error"
	outcomeRefreshed        = "refreshed"
	outcomeNotNeeded        = "not_needed"
	outcomeSkipped          = "skipped"
)

func newMetrics(cfg MetricsConfig, reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{enabled: cfg.Enabled}
	if !cfg.Enabled {
		return m, nil
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m.logins = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "authcore",
		Name:      "login_total",
		Help:      "Login attempts by outcome.",
	}, []string{"outcome"})
	m.authn = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "authcore",
		Name:      "authenticate_total",
		Help:      "Token authentication attempts by outcome.",
	}, []string{"outcome"})
	m.refresh = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "authcore",
		Name:      "session_refresh_total",
		Help:      "Session refresh decisions by outcome.",
	}, []string{"outcome"})

	for _, c := range []prometheus.Collector{m.logins, m.authn, m.refresh} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *metrics) loginOutcome(outcome string) {
	if m == nil || !m.enabled {
		return
	}
	m.logins.WithLabelValues(outcome).Inc()
}

func (m *metrics) authnOutcome(outcome string) {
	if m == nil || !m.enabled {
		return
	}
	m.authn.WithLabelValues(outcome).Inc()
}

func (m *metrics) refreshOutcome(outcome string) {
	if m == nil || !m.enabled {
		return
	}
	m.refresh.WithLabelValues(outcome).Inc()
}
