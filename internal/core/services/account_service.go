package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rithick-11/food-recommendation-system/internal/core/domain"
	"github.com/rithick-11/food-recommendation-system/internal/core/ports"
)

// AccountService provisions accounts and runs the doctor approval workflow
type AccountService struct {
	accounts ports.AccountRepository
	now      func() time.Time
}

// NewAccountService creates a new account service
func NewAccountService(accounts ports.AccountRepository) *AccountService {
	return &AccountService{
		accounts: accounts,
		now:      time.Now,
	}
}

// RegisterAccount creates the account announced by the identity service.
// Doctors start pending; other roles are approved immediately. Registering
// an existing ID returns the stored account unchanged.
func (s *AccountService) RegisterAccount(ctx context.Context, id uuid.UUID, email, name, role string) (*domain.Account, error) {
	role = strings.ToUpper(strings.TrimSpace(role))
	if !domain.ValidRole(role) {
		return nil, fmt.Errorf("invalid role %q", role)
	}
	if id == uuid.Nil {
		return nil, fmt.Errorf("account id cannot be empty")
	}

	status := domain.ApprovalApproved
	if role == domain.RoleDoctor {
		status = domain.ApprovalPending
	}

	account := &domain.Account{
		ID:             id,
		Email:          strings.TrimSpace(email),
		Name:           strings.TrimSpace(name),
		Role:           role,
		ApprovalStatus: status,
		CreatedAt:      s.now().UTC(),
	}

	created, err := s.accounts.CreateAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	if !created {
		return s.GetAccount(ctx, id)
	}
	return account, nil
}

// GetAccount returns an account by ID
func (s *AccountService) GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	account, err := s.accounts.GetAccount(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

// ListPendingDoctors returns doctors awaiting approval
func (s *AccountService) ListPendingDoctors(ctx context.Context) ([]*domain.Account, error) {
	doctors, err := s.accounts.ListAccounts(ctx, domain.RoleDoctor, domain.ApprovalPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending doctors: %w", err)
	}
	return doctors, nil
}

// ListDoctors returns all doctors regardless of status
func (s *AccountService) ListDoctors(ctx context.Context) ([]*domain.Account, error) {
	doctors, err := s.accounts.ListAccounts(ctx, domain.RoleDoctor, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, nil
}

// ApproveDoctor marks a doctor account approved
func (s *AccountService) ApproveDoctor(ctx context.Context, doctorID uuid.UUID, adminID uuid.UUID) (*domain.Account, error) {
	return s.decide(ctx, doctorID, adminID, domain.ApprovalApproved, "")
}

// RejectDoctor marks a doctor account rejected with an optional reason
func (s *AccountService) RejectDoctor(ctx context.Context, doctorID uuid.UUID, adminID uuid.UUID, reason string) (*domain.Account, error) {
	return s.decide(ctx, doctorID, adminID, domain.ApprovalRejected, strings.TrimSpace(reason))
}

func (s *AccountService) decide(ctx context.Context, doctorID, adminID uuid.UUID, status domain.ApprovalStatus, reason string) (*domain.Account, error) {
	account, err := s.GetAccount(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if account.Role != domain.RoleDoctor {
		return nil, domain.ErrNotADoctor
	}

	decidedAt := s.now().UTC()
	account.ApprovalStatus = status
	account.RejectionReason = reason
	account.ApprovedBy = &adminID
	account.ApprovedAt = &decidedAt

	if err := s.accounts.UpdateApproval(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to update approval status: %w", err)
	}

	logEvent("doctor_approval_updated", map[string]interface{}{
		"doctor_id": doctorID.String(),
		"admin_id":  adminID.String(),
		"status":    string(status),
	})
	return account, nil
}

var _ ports.AccountService = (*AccountService)(nil)
