package handler

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rithick-11/food-recommendation-system/internal/adapters/middleware"
	"github.com/rithick-11/food-recommendation-system/internal/core/domain"
	"github.com/rithick-11/food-recommendation-system/internal/core/services"
)

// generateRequestID generates a unique request ID for tracing
func generateRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		// Fallback to timestamp-based ID if random generation fails
		return hex.EncodeToString([]byte(time.Now().Format(time.RFC3339Nano)))
	}
	return hex.EncodeToString(b)
}

// logStructured logs structured JSON with request metadata
// Includes: request_id, user_id, role, endpoint, status_code, duration
func logStructured(requestID, userID, role, method, endpoint string, statusCode int, duration time.Duration) {
	logEntry := map[string]interface{}{
		"request_id":  requestID,
		"user_id":     userID,
		"role":        role,
		"method":      method,
		"endpoint":    endpoint,
		"status_code": statusCode,
		"duration_ms": duration.Milliseconds(),
	}

	jsonBytes, err := json.Marshal(logEntry)
	if err != nil {
		log.Printf("[%s] Failed to marshal log entry: %v", requestID, err)
		return
	}

	log.Printf("%s", string(jsonBytes))
}

// requestUser returns the caller's ID and role, writing 401 when the context has none
func requestUser(w http.ResponseWriter, r *http.Request, requestID string) (uuid.UUID, string, bool) {
	userID, err := middleware.GetUserUUID(r.Context())
	if err != nil {
		log.Printf("[%s] Failed to get user ID from context: %v", requestID, err)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return uuid.Nil, "", false
	}
	role, _ := middleware.GetRole(r.Context())
	return userID, role, true
}

// pathUUID parses a UUID path value, writing 400 when it is malformed
func pathUUID(w http.ResponseWriter, r *http.Request, requestID, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		log.Printf("[%s] Invalid %s: %v", requestID, name, err)
		http.Error(w, "invalid "+name, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// queryInt reads a positive integer query parameter, or def when absent or malformed
func queryInt(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || v < 1 {
		return def
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// ValidationErrorResponse lists every problem of a rejected profile
type ValidationErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details"`
}

// writeServiceError maps service errors to status codes and returns the status written
func writeServiceError(w http.ResponseWriter, requestID string, err error) int {
	var profileErr *services.ProfileValidationError
	switch {
	case errors.As(err, &profileErr):
		writeJSON(w, http.StatusBadRequest, ValidationErrorResponse{Error: "validation failed", Details: profileErr.Problems})
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidDayCount):
		http.Error(w, domain.ErrInvalidDayCount.Error(), http.StatusBadRequest)
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrProfileNotFound):
		http.Error(w, "patient profile not found", http.StatusNotFound)
		return http.StatusNotFound
	case errors.Is(err, domain.ErrMealPlanNotFound):
		http.Error(w, "meal plan not found", http.StatusNotFound)
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAccountNotFound):
		http.Error(w, "account not found", http.StatusNotFound)
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNotAPatient), errors.Is(err, domain.ErrNotADoctor):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
		return http.StatusForbidden
	default:
		log.Printf("[%s] Internal error: %v", requestID, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return http.StatusInternalServerError
	}
}
