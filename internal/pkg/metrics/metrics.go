// Package metrics exposes Prometheus counters for session and key events.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the session store and key panel report to.
type Recorder interface {
	RecordSignIn(provider string)
	RecordSignOut()
	RecordRestore(outcome string)
	RecordRegenerate()
}

// Restore outcomes.
const (
	RestoreSignedIn  = "signed_in"
	RestoreEmpty     = "empty"
	RestoreDiscarded = "discarded"
)

type Collector struct {
	signIns       *prometheus.CounterVec
	signOuts      prometheus.Counter
	restores      *prometheus.CounterVec
	regenerations prometheus.Counter
}

// NewCollector registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		signIns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "keyportal_sign_ins_total",
			Help: "Completed sign-ins by provider.",
		}, []string{"provider"}),
		signOuts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "keyportal_sign_outs_total",
			Help: "Sign-out calls.",
		}),
		restores: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "keyportal_session_restores_total",
			Help: "Session restores from the persisted store by outcome.",
		}, []string{"outcome"}),
		regenerations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "keyportal_api_key_regenerations_total",
			Help: "Completed API key regenerations.",
		}),
	}

	reg.MustRegister(c.signIns, c.signOuts, c.restores, c.regenerations)
	return c
}

func (c *Collector) RecordSignIn(provider string) {
	c.signIns.WithLabelValues(provider).Inc()
}

func (c *Collector) RecordSignOut() {
	c.signOuts.Inc()
}

func (c *Collector) RecordRestore(outcome string) {
	c.restores.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordRegenerate() {
	c.regenerations.Inc()
}

// Handler serves the scrape endpoint for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards every event.
type Nop struct{}

func (Nop) RecordSignIn(string)  {}
func (Nop) RecordSignOut()       {}
func (Nop) RecordRestore(string) {}
func (Nop) RecordRegenerate()    {}
