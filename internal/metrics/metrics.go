// Package metrics expone las métricas Prometheus del login: transiciones del
// coordinador (admitidos, rechazados, resueltos, en vuelo) y requests HTTP.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dropDatabas3/hellojohn-login/internal/loginflow"
)

// Metrics agrupa los collectors. Implementa loginflow.Observer.
type Metrics struct {
	gatherer prometheus.Gatherer

	admitted  *prometheus.CounterVec
	rejected  *prometheus.CounterVec
	resolved  *prometheus.CounterVec
	abandoned *prometheus.CounterVec
	inflight  prometheus.Gauge

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpInflight prometheus.Gauge
}

var _ loginflow.Observer = (*Metrics)(nil)

// New registra los collectors en reg. Con reg nil usa un registry propio.
// Registrar dos veces sobre el mismo registry reutiliza los collectors existentes.
func New(reg *prometheus.Registry) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{gatherer: reg}

	var err error
	if m.admitted, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "login_attempts_admitted_total",
		Help: "Intentos de login admitidos por origen",
	}, []string{"origin"})); err != nil {
		return nil, err
	}
	if m.rejected, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "login_attempts_rejected_total",
		Help: "Intentos de login rechazados porque otro estaba en vuelo",
	}, []string{"origin"})); err != nil {
		return nil, err
	}
	if m.resolved, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "login_attempts_resolved_total",
		Help: "Intentos de login resueltos por origen y resultado",
	}, []string{"origin", "status"})); err != nil {
		return nil, err
	}
	if m.abandoned, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "login_attempts_abandoned_total",
		Help: "Intentos en vuelo descartados con su controller (redirect o sesión expirada)",
	}, []string{"origin"})); err != nil {
		return nil, err
	}
	if m.inflight, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "login_attempts_inflight",
		Help: "Intentos de login en vuelo",
	})); err != nil {
		return nil, err
	}
	if m.httpRequests, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Número total de requests procesadas",
	}, []string{"method", "route", "status"})); err != nil {
		return nil, err
	}
	if m.httpDuration, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Latencia de los requests HTTP",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})); err != nil {
		return nil, err
	}
	if m.httpInflight, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_inflight_requests",
		Help: "Requests HTTP en vuelo",
	})); err != nil {
		return nil, err
	}
	return m, nil
}

// Handler sirve /metrics para el registry de estas métricas.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) Admitted(a loginflow.Attempt) {
	m.admitted.WithLabelValues(a.Origin.String()).Inc()
	m.inflight.Inc()
}

func (m *Metrics) Rejected(origin, _ loginflow.Origin) {
	m.rejected.WithLabelValues(origin.String()).Inc()
}

func (m *Metrics) Resolved(a loginflow.Attempt) {
	m.resolved.WithLabelValues(a.Origin.String(), a.Status.String()).Inc()
	m.inflight.Dec()
}

// Abandoned descuenta un intento que nunca se va a resolver: el controller se
// descartó tras el redirect a un provider o al expirar la sesión.
func (m *Metrics) Abandoned(a loginflow.Attempt) {
	m.abandoned.WithLabelValues(a.Origin.String()).Inc()
	m.inflight.Dec()
}

// register registra el collector; si ya existía uno igual devuelve el existente.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}
