package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/rithick-11/food-recommendation-system/internal/core/ports"
)

// AdminHandler handles the doctor approval workflow
type AdminHandler struct {
	accountService ports.AccountService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(accountService ports.AccountService) *AdminHandler {
	return &AdminHandler{
		accountService: accountService,
	}
}

// RejectDoctorRequest carries an optional rejection reason
type RejectDoctorRequest struct {
	Reason string `json:"reason"`
}

// ListPendingDoctors handles GET /api/admin/doctors/pending
func (h *AdminHandler) ListPendingDoctors(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	requestID := generateRequestID()

	adminID, role, ok := requestUser(w, r, requestID)
	if !ok {
		return
	}

	doctors, err := h.accountService.ListPendingDoctors(r.Context())
	if err != nil {
		status := writeServiceError(w, requestID, err)
		logStructured(requestID, adminID.String(), role, r.Method, r.URL.Path, status, time.Since(startTime))
		return
	}

	logStructured(requestID, adminID.String(), role, r.Method, r.URL.Path, http.StatusOK, time.Since(startTime))
	writeJSON(w, http.StatusOK, doctors)
}

// ListDoctors handles GET /api/admin/doctors
func (h *AdminHandler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	requestID := generateRequestID()

	adminID, role, ok := requestUser(w, r, requestID)
	if !ok {
		return
	}

	doctors, err := h.accountService.ListDoctors(r.Context())
	if err != nil {
		status := writeServiceError(w, requestID, err)
		logStructured(requestID, adminID.String(), role, r.Method, r.URL.Path, status, time.Since(startTime))
		return
	}

	logStructured(requestID, adminID.String(), role, r.Method, r.URL.Path, http.StatusOK, time.Since(startTime))
	writeJSON(w, http.StatusOK, doctors)
}

// ApproveDoctor handles PUT /api/admin/doctors/{doctor_id}/approve
func (h *AdminHandler) ApproveDoctor(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	requestID := generateRequestID()

	adminID, role, ok := requestUser(w, r, requestID)
	if !ok {
		return
	}
	doctorID, ok := pathUUID(w, r, requestID, "doctor_id")
	if !ok {
		return
	}

	account, err := h.accountService.ApproveDoctor(r.Context(), doctorID, adminID)
	if err != nil {
		log.Printf("[%s] Failed to approve doctor %s: %v", requestID, doctorID, err)
		status := writeServiceError(w, requestID, err)
		logStructured(requestID, adminID.String(), role, r.Method, r.URL.Path, status, time.Since(startTime))
		return
	}

	logStructured(requestID, adminID.String(), role, r.Method, r.URL.Path, http.StatusOK, time.Since(startTime))
	writeJSON(w, http.StatusOK, account)
}

// RejectDoctor handles PUT /api/admin/doctors/{doctor_id}/reject
func (h *AdminHandler) RejectDoctor(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	requestID := generateRequestID()

	adminID, role, ok := requestUser(w, r, requestID)
	if !ok {
		return
	}
	doctorID, ok := pathUUID(w, r, requestID, "doctor_id")
	if !ok {
		return
	}

	var req RejectDoctorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		log.Printf("[%s] Failed to decode request: %v", requestID, err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	account, err := h.accountService.RejectDoctor(r.Context(), doctorID, adminID, req.Reason)
	if err != nil {
		log.Printf("[%s] Failed to reject doctor %s: %v", requestID, doctorID, err)
		status := writeServiceError(w, requestID, err)
		logStructured(requestID, adminID.String(), role, r.Method, r.URL.Path, status, time.Since(startTime))
		return
	}

	logStructured(requestID, adminID.String(), role, r.Method, r.URL.Path, http.StatusOK, time.Since(startTime))
	writeJSON(w, http.StatusOK, account)
}
