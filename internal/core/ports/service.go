package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/rithick-11/food-recommendation-system/internal/core/domain"
)

// MealPlanGenerator produces a plan for a profile; the sole entry point of the generation pipeline
type MealPlanGenerator interface {
	GenerateMealPlan(ctx context.Context, profile domain.ProfileDescriptor, dayCount int) (*domain.MealPlanResult, error)
}

// MealPlanService defines the business logic interface for meal plan operations
type MealPlanService interface {
	// GeneratePlan generates and stores a plan for patientID
	// requestedBy is the patient themself or the doctor acting for them
	GeneratePlan(ctx context.Context, patientID uuid.UUID, requestedBy uuid.UUID, dayCount int) (*domain.MealPlan, error)

	// GetLatestPlan returns the newest stored plan of a patient
	GetLatestPlan(ctx context.Context, patientID uuid.UUID) (*domain.MealPlan, error)

	// GetPlanHistory returns one page of a patient's plans, newest first
	GetPlanHistory(ctx context.Context, patientID uuid.UUID, page, limit int) (*MealPlanPage, error)

	// RenderLatestPlan renders the newest plan of a patient as a PDF document
	RenderLatestPlan(ctx context.Context, patientID uuid.UUID) ([]byte, error)
}

// ProfileService defines the business logic interface for patient profiles
type ProfileService interface {
	GetProfile(ctx context.Context, patientID uuid.UUID) (*domain.PatientProfile, error)

	// SaveProfile validates and upserts the profile; patientID must be a patient account
	SaveProfile(ctx context.Context, patientID uuid.UUID, descriptor domain.ProfileDescriptor) (*domain.PatientProfile, error)

	// ListPatients returns all patient accounts with their profile, if any
	ListPatients(ctx context.Context) ([]*PatientSummary, error)
}

// AccountService defines the business logic interface for accounts and doctor approval
type AccountService interface {
	// RegisterAccount provisions an account from an identity event (idempotent)
	RegisterAccount(ctx context.Context, id uuid.UUID, email, name, role string) (*domain.Account, error)

	GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	ListPendingDoctors(ctx context.Context) ([]*domain.Account, error)
	ListDoctors(ctx context.Context) ([]*domain.Account, error)
	ApproveDoctor(ctx context.Context, doctorID uuid.UUID, adminID uuid.UUID) (*domain.Account, error)
	RejectDoctor(ctx context.Context, doctorID uuid.UUID, adminID uuid.UUID, reason string) (*domain.Account, error)
}

// MealPlanPage is one page of plan history
type MealPlanPage struct {
	MealPlans  []*domain.MealPlan `json:"mealPlans"`
	Pagination Pagination         `json:"pagination"`
}

// Pagination describes the position of a page within a listing
type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalCount  int  `json:"totalCount"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// PatientSummary pairs a patient account with its profile
type PatientSummary struct {
	Account *domain.Account        `json:"account"`
	Profile *domain.PatientProfile `json:"profile,omitempty"`
}
