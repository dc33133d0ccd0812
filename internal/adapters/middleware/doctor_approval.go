package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/rithick-11/food-recommendation-system/internal/core/domain"
)

// DoctorNotApprovedCode is returned to doctors whose account is not approved yet
const DoctorNotApprovedCode = "DOCTOR_NOT_APPROVED"

// AccountLookup resolves the local account of an authenticated user
type AccountLookup interface {
	GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error)
}

// RequireApprovedDoctor allows DOCTOR tokens whose account an admin has approved
func (m *AuthMiddleware) RequireApprovedDoctor(accounts AccountLookup, next http.HandlerFunc) http.HandlerFunc {
	return m.RequireRole(domain.RoleDoctor, func(w http.ResponseWriter, r *http.Request) {
		doctorID, err := GetUserUUID(r.Context())
		if err != nil {
			http.Error(w, "invalid user ID", http.StatusUnauthorized)
			return
		}

		account, err := accounts.GetAccount(r.Context(), doctorID)
		if err != nil {
			if errors.Is(err, domain.ErrAccountNotFound) {
				log.Printf("Doctor %s has no local account", doctorID)
				http.Error(w, DoctorNotApprovedCode+": account not registered", http.StatusForbidden)
				return
			}
			log.Printf("Failed to load doctor account %s: %v", doctorID, err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		if !account.IsApprovedDoctor() {
			log.Printf("Doctor %s is not approved (status: %s)", doctorID, account.ApprovalStatus)
			http.Error(w, DoctorNotApprovedCode+": account status is "+string(account.ApprovalStatus), http.StatusForbidden)
			return
		}

		next(w, r)
	})
}
