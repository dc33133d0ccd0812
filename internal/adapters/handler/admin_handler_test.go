package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rithick-11/food-recommendation-system/internal/adapters/handler"
	"github.com/rithick-11/food-recommendation-system/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAdminHandler_ListPendingDoctors(t *testing.T) {
	adminID := uuid.New()

	mockService := new(MockAccountService)
	h := handler.NewAdminHandler(mockService)

	pending := []*domain.Account{
		{ID: uuid.New(), Email: "dr.a@example.com", Role: domain.RoleDoctor, ApprovalStatus: domain.ApprovalPending},
	}
	mockService.On("ListPendingDoctors", mock.Anything).Return(pending, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/doctors/pending", nil)
	req = asUser(req, adminID, domain.RoleAdmin)
	w := httptest.NewRecorder()

	h.ListPendingDoctors(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var got []domain.Account
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, domain.ApprovalPending, got[0].ApprovalStatus)
}

func TestAdminHandler_ApproveDoctor(t *testing.T) {
	adminID := uuid.New()
	doctorID := uuid.New()

	tests := []struct {
		name       string
		account    *domain.Account
		err        error
		wantStatus int
	}{
		{
			name:       "approved",
			account:    &domain.Account{ID: doctorID, Role: domain.RoleDoctor, ApprovalStatus: domain.ApprovalApproved},
			wantStatus: http.StatusOK,
		},
		{name: "unknown account", err: domain.ErrAccountNotFound, wantStatus: http.StatusNotFound},
		{name: "not a doctor", err: domain.ErrNotADoctor, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockAccountService)
			h := handler.NewAdminHandler(mockService)

			if tt.err != nil {
				mockService.On("ApproveDoctor", mock.Anything, doctorID, adminID).Return(nil, tt.err)
			} else {
				now := time.Now()
				tt.account.ApprovedBy = &adminID
				tt.account.ApprovedAt = &now
				mockService.On("ApproveDoctor", mock.Anything, doctorID, adminID).Return(tt.account, nil)
			}

			req := httptest.NewRequest(http.MethodPut, "/api/admin/doctors/"+doctorID.String()+"/approve", nil)
			req = withPath(asUser(req, adminID, domain.RoleAdmin), "doctor_id", doctorID.String())
			w := httptest.NewRecorder()

			h.ApproveDoctor(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestAdminHandler_RejectDoctor(t *testing.T) {
	adminID := uuid.New()
	doctorID := uuid.New()

	tests := []struct {
		name       string
		body       string
		wantReason string
	}{
		{name: "with reason", body: `{"reason": "license could not be verified"}`, wantReason: "license could not be verified"},
		{name: "without body", body: "", wantReason: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockAccountService)
			h := handler.NewAdminHandler(mockService)

			rejected := &domain.Account{
				ID:              doctorID,
				Role:            domain.RoleDoctor,
				ApprovalStatus:  domain.ApprovalRejected,
				RejectionReason: tt.wantReason,
			}
			mockService.On("RejectDoctor", mock.Anything, doctorID, adminID, tt.wantReason).Return(rejected, nil)

			req := httptest.NewRequest(http.MethodPut, "/api/admin/doctors/"+doctorID.String()+"/reject", bytes.NewBufferString(tt.body))
			req = withPath(asUser(req, adminID, domain.RoleAdmin), "doctor_id", doctorID.String())
			w := httptest.NewRecorder()

			h.RejectDoctor(w, req)

			assert.Equal(t, http.StatusOK, w.Code)

			var got domain.Account
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.Equal(t, domain.ApprovalRejected, got.ApprovalStatus)
			mockService.AssertExpectations(t)
		})
	}
}

func TestAdminHandler_RejectDoctor_InvalidInput(t *testing.T) {
	adminID := uuid.New()

	t.Run("malformed body", func(t *testing.T) {
		mockService := new(MockAccountService)
		h := handler.NewAdminHandler(mockService)

		doctorID := uuid.New()
		req := httptest.NewRequest(http.MethodPut, "/api/admin/doctors/x/reject", bytes.NewBufferString(`{"reason":`))
		req = withPath(asUser(req, adminID, domain.RoleAdmin), "doctor_id", doctorID.String())
		w := httptest.NewRecorder()

		h.RejectDoctor(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "RejectDoctor", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("malformed doctor id", func(t *testing.T) {
		mockService := new(MockAccountService)
		h := handler.NewAdminHandler(mockService)

		req := httptest.NewRequest(http.MethodPut, "/api/admin/doctors/42/reject", nil)
		req = withPath(asUser(req, adminID, domain.RoleAdmin), "doctor_id", "42")
		w := httptest.NewRecorder()

		h.RejectDoctor(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
