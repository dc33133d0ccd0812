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

const (
	DefaultHistoryLimit = 10
	MaxHistoryLimit     = 50
)

// MealPlanService generates, stores and serves patient meal plans
type MealPlanService struct {
	generator ports.MealPlanGenerator
	plans     ports.MealPlanRepository
	profiles  ports.ProfileRepository
	publisher ports.MealPlanEventPublisher
	renderer  ports.MealPlanRenderer
	now       func() time.Time
}

// NewMealPlanService creates a new meal plan service; publisher and renderer may be nil
func NewMealPlanService(generator ports.MealPlanGenerator, plans ports.MealPlanRepository, profiles ports.ProfileRepository, publisher ports.MealPlanEventPublisher, renderer ports.MealPlanRenderer) *MealPlanService {
	return &MealPlanService{
		generator: generator,
		plans:     plans,
		profiles:  profiles,
		publisher: publisher,
		renderer:  renderer,
		now:       time.Now,
	}
}

// GeneratePlan generates a plan from the patient's stored profile and saves it
func (s *MealPlanService) GeneratePlan(ctx context.Context, patientID uuid.UUID, requestedBy uuid.UUID, dayCount int) (*domain.MealPlan, error) {
	if !domain.ValidDayCount(dayCount) {
		return nil, domain.ErrInvalidDayCount
	}

	profile, err := s.profiles.GetProfile(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	result, err := s.generator.GenerateMealPlan(ctx, profile.Descriptor, dayCount)
	if err != nil {
		return nil, fmt.Errorf("failed to generate meal plan: %w", err)
	}

	plan := &domain.MealPlan{
		ID:             uuid.New(),
		PatientID:      patientID,
		GeneratedBy:    requestedBy,
		GeneratedAt:    s.now().UTC(),
		MealPlanResult: *result,
	}

	if err := s.plans.SaveMealPlan(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to save meal plan: %w", err)
	}

	logEvent("mealplan_generated", map[string]interface{}{
		"plan_id":      plan.ID.String(),
		"patient_id":   patientID.String(),
		"generated_by": requestedBy.String(),
		"day_count":    plan.DayCount,
		"source":       string(plan.Source),
	})

	// Event publishing must not fail the request
	if s.publisher != nil {
		if err := s.publisher.PublishMealPlanGenerated(ctx, plan); err != nil {
			logEvent("mealplan_event_publish_failed", map[string]interface{}{
				"plan_id": plan.ID.String(),
				"error":   err.Error(),
			})
		}
	}

	return plan, nil
}

// GetLatestPlan returns the newest plan of a patient
func (s *MealPlanService) GetLatestPlan(ctx context.Context, patientID uuid.UUID) (*domain.MealPlan, error) {
	plan, err := s.plans.GetLatestMealPlan(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest meal plan: %w", err)
	}
	return plan, nil
}

// GetPlanHistory returns one page of plans, newest first.
// page defaults to 1; limit defaults to 10 and is capped at 50.
func (s *MealPlanService) GetPlanHistory(ctx context.Context, patientID uuid.UUID, page, limit int) (*ports.MealPlanPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	plans, total, err := s.plans.ListMealPlans(ctx, patientID, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list meal plans: %w", err)
	}
	if plans == nil {
		plans = []*domain.MealPlan{}
	}

	totalPages := (total + limit - 1) / limit
	return &ports.MealPlanPage{
		MealPlans: plans,
		Pagination: ports.Pagination{
			CurrentPage: page,
			TotalPages:  totalPages,
			TotalCount:  total,
			HasNextPage: page < totalPages,
			HasPrevPage: page > 1,
		},
	}, nil
}

// RenderLatestPlan renders the newest plan together with the patient's profile
func (s *MealPlanService) RenderLatestPlan(ctx context.Context, patientID uuid.UUID) ([]byte, error) {
	if s.renderer == nil {
		return nil, errors.New("meal plan rendering is not configured")
	}

	plan, err := s.GetLatestPlan(ctx, patientID)
	if err != nil {
		return nil, err
	}

	profile, err := s.profiles.GetProfile(ctx, patientID)
	if err != nil && !errors.Is(err, domain.ErrProfileNotFound) {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	doc, err := s.renderer.Render(plan, profile)
	if err != nil {
		return nil, fmt.Errorf("failed to render meal plan: %w", err)
	}
	return doc, nil
}

var _ ports.MealPlanService = (*MealPlanService)(nil)
