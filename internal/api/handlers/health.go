package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

// Pinger is a storage backend that can report whether it is reachable.
type Pinger interface {
	Ping() error
}

type HealthHandler struct {
	storage Pinger
}

// NewHealthHandler takes a nil storage for backends with nothing to ping.
func NewHealthHandler(storage Pinger) *HealthHandler {
	return &HealthHandler{storage: storage}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)

	if h.storage == nil {
		checks["storage"] = "healthy"
	} else if err := h.storage.Ping(); err != nil {
		checks["storage"] = "unhealthy: " + err.Error()
	} else {
		checks["storage"] = "healthy"
	}

	status := "healthy"
	for _, check := range checks {
		if len(check) >= 9 && check[:9] == "unhealthy" {
			status = "degraded"
			break
		}
	}

	response := struct {
		Status    string            `json:"status"`
		Timestamp int64             `json:"timestamp"`
		Checks    map[string]string `json:"checks"`
	}{
		Status:    status,
		Timestamp: time.Now().Unix(),
		Checks:    checks,
	}

	statusCode := http.StatusOK
	if status == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}
