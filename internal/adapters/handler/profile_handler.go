package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rithick-11/food-recommendation-system/internal/core/domain"
	"github.com/rithick-11/food-recommendation-system/internal/core/ports"
)

// ProfileHandler handles HTTP requests for patient health profiles
type ProfileHandler struct {
	profileService ports.ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService ports.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
	}
}

// GetMyProfile handles GET /api/profile/me
func (h *ProfileHandler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	requestID := generateRequestID()

	userID, role, ok := requestUser(w, r, requestID)
	if !ok {
		return
	}

	h.get(w, r, requestID, userID, userID, role, startTime)
}

// SaveMyProfile handles POST /api/profile/me
// PATIENT only - creates or replaces the caller's profile
func (h *ProfileHandler) SaveMyProfile(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	requestID := generateRequestID()

	userID, role, ok := requestUser(w, r, requestID)
	if !ok {
		return
	}

	h.save(w, r, requestID, userID, userID, role, startTime)
}

// GetPatientProfile handles GET /api/doctor/profile/{patient_id}
// Approved DOCTOR only
func (h *ProfileHandler) GetPatientProfile(w http.ResponseWriter, r *http.Request) {
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

	h.get(w, r, requestID, patientID, doctorID, role, startTime)
}

// UpdatePatientProfile handles PUT /api/doctor/profile/{patient_id}
// Approved DOCTOR only
func (h *ProfileHandler) UpdatePatientProfile(w http.ResponseWriter, r *http.Request) {
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

	h.save(w, r, requestID, patientID, doctorID, role, startTime)
}

// ListPatients handles GET /api/doctor/patients
// Approved DOCTOR only
func (h *ProfileHandler) ListPatients(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	requestID := generateRequestID()

	doctorID, role, ok := requestUser(w, r, requestID)
	if !ok {
		return
	}

	patients, err := h.profileService.ListPatients(r.Context())
	if err != nil {
		status := writeServiceError(w, requestID, err)
		logStructured(requestID, doctorID.String(), role, r.Method, r.URL.Path, status, time.Since(startTime))
		return
	}

	logStructured(requestID, doctorID.String(), role, r.Method, r.URL.Path, http.StatusOK, time.Since(startTime))
	writeJSON(w, http.StatusOK, patients)
}

func (h *ProfileHandler) get(w http.ResponseWriter, r *http.Request, requestID string, patientID, callerID uuid.UUID, role string, startTime time.Time) {
	profile, err := h.profileService.GetProfile(r.Context(), patientID)
	if err != nil {
		status := writeServiceError(w, requestID, err)
		logStructured(requestID, callerID.String(), role, r.Method, r.URL.Path, status, time.Since(startTime))
		return
	}

	logStructured(requestID, callerID.String(), role, r.Method, r.URL.Path, http.StatusOK, time.Since(startTime))
	writeJSON(w, http.StatusOK, profile)
}

func (h *ProfileHandler) save(w http.ResponseWriter, r *http.Request, requestID string, patientID, callerID uuid.UUID, role string, startTime time.Time) {
	var descriptor domain.ProfileDescriptor
	if err := json.NewDecoder(r.Body).Decode(&descriptor); err != nil {
		log.Printf("[%s] Failed to decode profile: %v", requestID, err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	profile, err := h.profileService.SaveProfile(r.Context(), patientID, descriptor)
	if err != nil {
		log.Printf("[%s] Failed to save profile: patient_id=%s, error=%v", requestID, patientID, err)
		status := writeServiceError(w, requestID, err)
		logStructured(requestID, callerID.String(), role, r.Method, r.URL.Path, status, time.Since(startTime))
		return
	}

	logStructured(requestID, callerID.String(), role, r.Method, r.URL.Path, http.StatusOK, time.Since(startTime))
	writeJSON(w, http.StatusOK, profile)
}
