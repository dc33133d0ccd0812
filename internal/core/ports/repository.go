package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/rithick-11/food-recommendation-system/internal/core/domain"
)

// MealPlanRepository defines the interface for meal plan persistence
type MealPlanRepository interface {
	// SaveMealPlan stores a generated plan; ID and GeneratedAt are set by the caller
	SaveMealPlan(ctx context.Context, plan *domain.MealPlan) error

	// GetLatestMealPlan returns the most recent plan of a patient
	// Returns domain.ErrMealPlanNotFound if the patient has none
	GetLatestMealPlan(ctx context.Context, patientID uuid.UUID) (*domain.MealPlan, error)

	// ListMealPlans returns one page of a patient's plans, newest first, and the total count
	ListMealPlans(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*domain.MealPlan, int, error)
}

// ProfileRepository defines the interface for patient profile persistence
type ProfileRepository interface {
	// UpsertProfile creates or replaces the profile of profile.PatientID
	UpsertProfile(ctx context.Context, profile *domain.PatientProfile) error

	// GetProfile returns domain.ErrProfileNotFound if the patient has no profile
	GetProfile(ctx context.Context, patientID uuid.UUID) (*domain.PatientProfile, error)
}

// AccountRepository defines the interface for account persistence
type AccountRepository interface {
	// CreateAccount inserts the account; an existing ID is left untouched
	// The returned bool reports whether a row was created
	CreateAccount(ctx context.Context, account *domain.Account) (bool, error)

	// GetAccount returns domain.ErrAccountNotFound for unknown IDs
	GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error)

	// ListAccounts filters by role, and by approval status when status is non-empty
	ListAccounts(ctx context.Context, role string, status domain.ApprovalStatus) ([]*domain.Account, error)

	// UpdateApproval persists ApprovalStatus, RejectionReason, ApprovedBy and ApprovedAt
	UpdateApproval(ctx context.Context, account *domain.Account) error
}

// GenerationBackend invokes the external generative model
// Implementations return the raw response text or an error
type GenerationBackend interface {
	Invoke(ctx context.Context, prompt string) (string, error)
}

// MealPlanEventPublisher publishes plan lifecycle events to the message broker
type MealPlanEventPublisher interface {
	PublishMealPlanGenerated(ctx context.Context, plan *domain.MealPlan) error
}

// MealPlanRenderer renders a stored plan into a downloadable document
type MealPlanRenderer interface {
	Render(plan *domain.MealPlan, profile *domain.PatientProfile) ([]byte, error)
}
