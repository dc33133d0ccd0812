package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rithick-11/food-recommendation-system/internal/core/domain"
	"github.com/rithick-11/food-recommendation-system/internal/core/ports"
	"github.com/rithick-11/food-recommendation-system/internal/core/services"
)

// MealPlanHandler handles HTTP requests for meal plan operations
type MealPlanHandler struct {
	mealPlanService ports.MealPlanService
	now             func() time.Time
}

// NewMealPlanHandler creates a new meal plan handler
func NewMealPlanHandler(mealPlanService ports.MealPlanService) *MealPlanHandler {
	return &MealPlanHandler{
		mealPlanService: mealPlanService,
		now:             time.Now,
	}
}

// GenerateMealPlanRequest is the optional body of the generate endpoints
type GenerateMealPlanRequest struct {
	DayCount json.RawMessage `json:"dayCount"`
}

// MealPlanResponse is a stored plan plus its age in whole days
type MealPlanResponse struct {
	*domain.MealPlan
	DaysAgo int `json:"daysAgo"`
}

// decodeDayCount reads dayCount from the body; an empty body or a missing
// field means one day. Integral numbers such as 3.0 are accepted, null is not.
func decodeDayCount(r *http.Request) (int, error) {
	var req GenerateMealPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("invalid request body: %w", err)
	}
	if len(req.DayCount) == 0 {
		return domain.MinDayCount, nil
	}

	var value *float64
	if err := json.Unmarshal(req.DayCount, &value); err != nil || value == nil {
		return 0, domain.ErrInvalidDayCount
	}
	v := *value
	if math.Trunc(v) != v || v < domain.MinDayCount || v > domain.MaxDayCount {
		return 0, domain.ErrInvalidDayCount
	}
	return int(v), nil
}

// GenerateMyMealPlan handles POST /api/mealplan/generate
// PATIENT only - generates a plan from the caller's own profile
func (h *MealPlanHandler) GenerateMyMealPlan(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	requestID := generateRequestID()

	userID, role, ok := requestUser(w, r, requestID)
	if !ok {
		return
	}

	h.generate(w, r, requestID, userID, userID, role, startTime)
}

// GenerateMealPlanForPatient handles POST /api/mealplan/generate/{patient_id}
// Approved DOCTOR only
func (h *MealPlanHandler) GenerateMealPlanForPatient(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	requestID := generateRequestID()

	doctorID, role, ok := requestUser(w, r, requestID)
	if !ok {
		return
	}
	patientID, ok := pathUUID(w, r, requestID, "patient_id")
	if !ok {
		return
	}

	h.generate(w, r, requestID, patientID, doctorID, role, startTime)
}

func (h *MealPlanHandler) generate(w http.ResponseWriter, r *http.Request, requestID string, patientID, requestedBy uuid.UUID, role string, startTime time.Time) {
	dayCount, err := decodeDayCount(r)
	if err != nil {
		log.Printf("[%s] Invalid generate request: %v", requestID, err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		logStructured(requestID, requestedBy.String(), role, r.Method, r.URL.Path, http.StatusBadRequest, time.Since(startTime))
		return
	}

	plan, err := h.mealPlanService.GeneratePlan(r.Context(), patientID, requestedBy, dayCount)
	if err != nil {
		log.Printf("[%s] Failed to generate meal plan: patient_id=%s, error=%v", requestID, patientID, err)
		status := writeServiceError(w, requestID, err)
		logStructured(requestID, requestedBy.String(), role, r.Method, r.URL.Path, status, time.Since(startTime))
		return
	}

	logStructured(requestID, requestedBy.String(), role, r.Method, r.URL.Path, http.StatusCreated, time.Since(startTime))
	writeJSON(w, http.StatusCreated, MealPlanResponse{MealPlan: plan, DaysAgo: 0})
}

// GetMyMealPlan handles GET /api/mealplan/me
func (h *MealPlanHandler) GetMyMealPlan(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	requestID := generateRequestID()

	userID, role, ok := requestUser(w, r, requestID)
	if !ok {
		return
	}

	h.latest(w, r, requestID, userID, userID, role, startTime)
}

// GetPatientMealPlan handles GET /api/mealplan/{patient_id}
// Approved DOCTOR only
func (h *MealPlanHandler) GetPatientMealPlan(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	requestID := generateRequestID()

	doctorID, role, ok := requestUser(w, r, requestID)
	if !ok {
		return
	}
	patientID, ok := pathUUID(w, r, requestID, "patient_id")
	if !ok {
		return
	}

	h.latest(w, r, requestID, patientID, doctorID, role, startTime)
}

func (h *MealPlanHandler) latest(w http.ResponseWriter, r *http.Request, requestID string, patientID, callerID uuid.UUID, role string, startTime time.Time) {
	plan, err := h.mealPlanService.GetLatestPlan(r.Context(), patientID)
	if err != nil {
		status := writeServiceError(w, requestID, err)
		logStructured(requestID, callerID.String(), role, r.Method, r.URL.Path, status, time.Since(startTime))
		return
	}

	logStructured(requestID, callerID.String(), role, r.Method, r.URL.Path, http.StatusOK, time.Since(startTime))
	writeJSON(w, http.StatusOK, MealPlanResponse{MealPlan: plan, DaysAgo: plan.DaysAgo(h.now())})
}

// GetMyMealPlanHistory handles GET /api/mealplan/me/history?page=&limit=
func (h *MealPlanHandler) GetMyMealPlanHistory(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	requestID := generateRequestID()

	userID, role, ok := requestUser(w, r, requestID)
	if !ok {
		return
	}

	h.history(w, r, requestID, userID, userID, role, startTime)
}

// GetPatientMealPlanHistory handles GET /api/mealplan/{patient_id}/history?page=&limit=
// Approved DOCTOR only
func (h *MealPlanHandler) GetPatientMealPlanHistory(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	requestID := generateRequestID()

	doctorID, role, ok := requestUser(w, r, requestID)
	if !ok {
		return
	}
	patientID, ok := pathUUID(w, r, requestID, "patient_id")
	if !ok {
		return
	}

	h.history(w, r, requestID, patientID, doctorID, role, startTime)
}

func (h *MealPlanHandler) history(w http.ResponseWriter, r *http.Request, requestID string, patientID, callerID uuid.UUID, role string, startTime time.Time) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", services.DefaultHistoryLimit)

	result, err := h.mealPlanService.GetPlanHistory(r.Context(), patientID, page, limit)
	if err != nil {
		status := writeServiceError(w, requestID, err)
		logStructured(requestID, callerID.String(), role, r.Method, r.URL.Path, status, time.Since(startTime))
		return
	}

	logStructured(requestID, callerID.String(), role, r.Method, r.URL.Path, http.StatusOK, time.Since(startTime))
	writeJSON(w, http.StatusOK, result)
}

// DownloadMyMealPlanPDF handles GET /api/mealplan/me/pdf
func (h *MealPlanHandler) DownloadMyMealPlanPDF(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	requestID := generateRequestID()

	userID, role, ok := requestUser(w, r, requestID)
	if !ok {
		return
	}

	h.pdf(w, r, requestID, userID, userID, role, startTime)
}

// DownloadPatientMealPlanPDF handles GET /api/mealplan/{patient_id}/pdf
// Approved DOCTOR only
func (h *MealPlanHandler) DownloadPatientMealPlanPDF(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	requestID := generateRequestID()

	doctorID, role, ok := requestUser(w, r, requestID)
	if !ok {
		return
	}
	patientID, ok := pathUUID(w, r, requestID, "patient_id")
	if !ok {
		return
	}

	h.pdf(w, r, requestID, patientID, doctorID, role, startTime)
}

func (h *MealPlanHandler) pdf(w http.ResponseWriter, r *http.Request, requestID string, patientID, callerID uuid.UUID, role string, startTime time.Time) {
	doc, err := h.mealPlanService.RenderLatestPlan(r.Context(), patientID)
	if err != nil {
		status := writeServiceError(w, requestID, err)
		logStructured(requestID, callerID.String(), role, r.Method, r.URL.Path, status, time.Since(startTime))
		return
	}

	logStructured(requestID, callerID.String(), role, r.Method, r.URL.Path, http.StatusOK, time.Since(startTime))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="meal-plan-%s.pdf"`, patientID))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc); err != nil {
		log.Printf("[%s] Failed to write PDF: %v", requestID, err)
	}
}
