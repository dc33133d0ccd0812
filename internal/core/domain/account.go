package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role names as carried in the JWT "role" claim
const (
	RolePatient = "PATIENT"
	RoleDoctor  = "DOCTOR"
	RoleAdmin   = "ADMIN"
)

// ApprovalStatus gates doctor accounts
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Account mirrors a user registered with the identity service
type Account struct {
	ID              uuid.UUID      `json:"id"`
	Email           string         `json:"email"`
	Name            string         `json:"name"`
	Role            string         `json:"role"`
	ApprovalStatus  ApprovalStatus `json:"approval_status"`
	RejectionReason string         `json:"rejection_reason,omitempty"`
	ApprovedBy      *uuid.UUID     `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time     `json:"approved_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

// IsApprovedDoctor reports whether the account may use doctor endpoints
func (a *Account) IsApprovedDoctor() bool {
	return a.Role == RoleDoctor && a.ApprovalStatus == ApprovalApproved
}

// ValidRole reports whether role is one of the known roles
func ValidRole(role string) bool {
	switch role {
	case RolePatient, RoleDoctor, RoleAdmin:
		return true
	}
	return false
}
