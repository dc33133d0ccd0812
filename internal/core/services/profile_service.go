package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rithick-11/food-recommendation-system/internal/core/domain"
	"github.com/rithick-11/food-recommendation-system/internal/core/ports"
)

// ProfileService manages patient health profiles
type ProfileService struct {
	profiles ports.ProfileRepository
	accounts ports.AccountRepository
	now      func() time.Time
}

// NewProfileService creates a new profile service
func NewProfileService(profiles ports.ProfileRepository, accounts ports.AccountRepository) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		accounts: accounts,
		now:      time.Now,
	}
}

// GetProfile returns the profile of a patient
func (s *ProfileService) GetProfile(ctx context.Context, patientID uuid.UUID) (*domain.PatientProfile, error) {
	profile, err := s.profiles.GetProfile(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

// SaveProfile validates and creates or replaces a patient's profile
func (s *ProfileService) SaveProfile(ctx context.Context, patientID uuid.UUID, descriptor domain.ProfileDescriptor) (*domain.PatientProfile, error) {
	account, err := s.accounts.GetAccount(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account.Role != domain.RolePatient {
		return nil, domain.ErrNotAPatient
	}

	descriptor = normalizeProfile(descriptor)
	if err := ValidateProfile(descriptor); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	profile := &domain.PatientProfile{
		PatientID:  patientID,
		Descriptor: descriptor,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	existing, err := s.profiles.GetProfile(ctx, patientID)
	switch {
	case err == nil:
		profile.CreatedAt = existing.CreatedAt
	case !errors.Is(err, domain.ErrProfileNotFound):
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	if err := s.profiles.UpsertProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	return profile, nil
}

// ListPatients returns every patient account with its profile, if one exists
func (s *ProfileService) ListPatients(ctx context.Context) ([]*ports.PatientSummary, error) {
	accounts, err := s.accounts.ListAccounts(ctx, domain.RolePatient, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}

	summaries := make([]*ports.PatientSummary, 0, len(accounts))
	for _, account := range accounts {
		summary := &ports.PatientSummary{Account: account}
		profile, err := s.profiles.GetProfile(ctx, account.ID)
		switch {
		case err == nil:
			summary.Profile = profile
		case !errors.Is(err, domain.ErrProfileNotFound):
			return nil, fmt.Errorf("failed to get profile of %s: %w", account.ID, err)
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

var _ ports.ProfileService = (*ProfileService)(nil)
