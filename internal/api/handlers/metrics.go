package handlers

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"keyportal/internal/pkg/metrics"
)

type MetricsHandler struct {
	handler http.Handler
}

func NewMetricsHandler(gatherer prometheus.Gatherer) *MetricsHandler {
	return &MetricsHandler{handler: metrics.Handler(gatherer)}
}

func (h *MetricsHandler) Export(w http.ResponseWriter, r *http.Request) {
	h.handler.ServeHTTP(w, r)
}
