package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rithick-11/food-recommendation-system/internal/core/services"
)

// Pinger is satisfied by *sql.DB
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler handles health check endpoints
// OpenShift compatible: /health, /health/ready, /health/live
type HealthHandler struct {
	db         Pinger
	generation services.BackendConfig
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db Pinger, generation services.BackendConfig) *HealthHandler {
	return &HealthHandler{
		db:         db,
		generation: generation,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// GenerationStatusResponse reports which path meal plan generation takes
type GenerationStatusResponse struct {
	Mode             string    `json:"mode"`
	BackendAvailable bool      `json:"backend_available"`
	MockForced       bool      `json:"mock_forced"`
	Timestamp        time.Time `json:"timestamp"`
}

func writeHealth(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Log error but don't fail health check
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

// Health handles GET /health - general health check
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeHealth(w, http.StatusOK, HealthResponse{Status: "ok", Timestamp: time.Now()})
}

// Ready handles GET /health/ready - readiness probe
// Checks database connectivity
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		writeHealth(w, http.StatusServiceUnavailable, HealthResponse{Status: "not ready", Timestamp: time.Now()})
		return
	}

	writeHealth(w, http.StatusOK, HealthResponse{Status: "ready", Timestamp: time.Now()})
}

// Live handles GET /health/live - liveness probe
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeHealth(w, http.StatusOK, HealthResponse{Status: "alive", Timestamp: time.Now()})
}

// Generation handles GET /health/generation
// Mode is "backend", "mock" or "unavailable"; the service stays usable in all three
func (h *HealthHandler) Generation(w http.ResponseWriter, r *http.Request) {
	writeHealth(w, http.StatusOK, GenerationStatusResponse{
		Mode:             h.generation.Mode(),
		BackendAvailable: h.generation.Available,
		MockForced:       h.generation.MockForced,
		Timestamp:        time.Now(),
	})
}

// Metrics handles GET /metrics - Prometheus metrics endpoint
func Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}
