// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package metrics exposes Prometheus counters for the content store, the rate limiter and
// contact form submissions. All methods are safe to call on a nil *Metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const DefaultNamespace = "folio"

// Resolution tiers of the content fallback chain.
const (
	TierCache          = "cache"
	TierLanguage       = "language"
	TierDefaultLang    = "default_language"
	TierStaticDefault  = "static_default"
	TierUnavailable    = "unavailable"
	DecisionAllowed    = "allowed"
	DecisionDenied     = "denied"
	SubmissionSent     = "sent"
	SubmissionInvalid  = "invalid"
	SubmissionLimited  = "rate_limited"
	SubmissionSpam     = "spam"
	SubmissionFailed   = "failed"
	fetchLabelDocument = "document"
)

type Metrics struct {
	registry *prometheus.Registry

	resolutions    *prometheus.CounterVec
	fetchFailures  *prometheus.CounterVec
	rateDecisions  *prometheus.CounterVec
	submissions    *prometheus.CounterVec
	cacheClearings prometheus.Counter
}

// New creates the collectors and registers them, together with the Go and process
// collectors, on a private registry.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "content",
				Name:      "resolutions_total",
				Help:      "Content document requests by the tier that answered them",
			},
			[]string{fetchLabelDocument, "tier"},
		),
		fetchFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "content",
				Name:      "fetch_failures_total",
				Help:      "Failed content document fetches",
			},
			[]string{fetchLabelDocument, "language"},
		),
		rateDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ratelimit",
				Name:      "decisions_total",
				Help:      "Rate limiter decisions",
			},
			[]string{"decision"},
		),
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "contact",
				Name:      "submissions_total",
				Help:      "Contact form submissions by outcome",
			},
			[]string{"result"},
		),
		cacheClearings: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "content",
				Name:      "cache_clearings_total",
				Help:      "Explicit clearings of the content cache",
			},
		),
	}
	registry.MustRegister(m.resolutions, m.fetchFailures, m.rateDecisions, m.submissions, m.cacheClearings)

	return m
}

func (m *Metrics) Resolved(document, tier string) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(document, tier).Inc()
}

func (m *Metrics) FetchFailed(document, language string) {
	if m == nil {
		return
	}
	m.fetchFailures.WithLabelValues(document, language).Inc()
}

func (m *Metrics) RateLimitDecision(allowed bool) {
	if m == nil {
		return
	}
	decision := DecisionAllowed
	if !allowed {
		decision = DecisionDenied
	}
	m.rateDecisions.WithLabelValues(decision).Inc()
}

func (m *Metrics) Submission(result string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(result).Inc()
}

func (m *Metrics) CacheCleared() {
	if m == nil {
		return
	}
	m.cacheClearings.Inc()
}

// Handler returns the HTTP handler serving the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("metrics not enabled"))
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
