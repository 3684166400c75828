// Package metrics exposes Prometheus counters for the voicemail service.
//
// All methods are safe on a nil *Metrics, so components can run without
// instrumentation in tests.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "voicemail"

// Metrics holds the service collectors and the registry they live in
type Metrics struct {
	registry *prometheus.Registry

	AccountsCreated    prometheus.Counter
	IdentityFallbacks  prometheus.Counter
	VoicemailsCreated  *prometheus.CounterVec
	VoicemailsReturned prometheus.Counter
	VoicemailsDeleted  prometheus.Counter
	StoreErrors        *prometheus.CounterVec
}

// New creates a Metrics set registered on its own registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		AccountsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "accounts_created_total",
			Help:      "Accounts created, either explicitly or by identity resolution.",
		}),
		IdentityFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "identity_lookup_fallbacks_total",
			Help:      "Account lookups that failed and fell back to creating a new account.",
		}),
		VoicemailsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "voicemails_created_total",
			Help:      "Voicemails recorded, by intake source.",
		}, []string{"source"}),
		VoicemailsReturned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "voicemails_returned_total",
			Help:      "Voicemails marked returned.",
		}),
		VoicemailsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "voicemails_deleted_total",
			Help:      "Voicemails deleted.",
		}),
		StoreErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_errors_total",
			Help:      "Storage failures, by operation.",
		}, []string{"operation"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.AccountsCreated,
		m.IdentityFallbacks,
		m.VoicemailsCreated,
		m.VoicemailsReturned,
		m.VoicemailsDeleted,
		m.StoreErrors,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) AccountCreated() {
	if m == nil {
		return
	}
	m.AccountsCreated.Inc()
}

func (m *Metrics) IdentityFallback() {
	if m == nil {
		return
	}
	m.IdentityFallbacks.Inc()
}

func (m *Metrics) VoicemailCreated(source string) {
	if m == nil {
		return
	}
	m.VoicemailsCreated.WithLabelValues(source).Inc()
}

func (m *Metrics) VoicemailReturned() {
	if m == nil {
		return
	}
	m.VoicemailsReturned.Inc()
}

func (m *Metrics) VoicemailDeleted() {
	if m == nil {
		return
	}
	m.VoicemailsDeleted.Inc()
}

func (m *Metrics) StoreError(operation string) {
	if m == nil {
		return
	}
	m.StoreErrors.WithLabelValues(operation).Inc()
}
