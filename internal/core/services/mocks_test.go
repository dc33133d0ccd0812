package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rithick-11/food-recommendation-system/internal/core/domain"
	"github.com/rithick-11/food-recommendation-system/internal/core/services"
	"github.com/stretchr/testify/mock"
)

// MockGenerationBackend is a mock implementation of GenerationBackend
type MockGenerationBackend struct {
	mock.Mock
}

func (m *MockGenerationBackend) Invoke(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// MockMealPlanGenerator is a mock implementation of MealPlanGenerator
type MockMealPlanGenerator struct {
	mock.Mock
}

func (m *MockMealPlanGenerator) GenerateMealPlan(ctx context.Context, profile domain.ProfileDescriptor, dayCount int) (*domain.MealPlanResult, error) {
	args := m.Called(ctx, profile, dayCount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MealPlanResult), args.Error(1)
}

// MockMealPlanRepository is a mock implementation of MealPlanRepository
type MockMealPlanRepository struct {
	mock.Mock
}

func (m *MockMealPlanRepository) SaveMealPlan(ctx context.Context, plan *domain.MealPlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockMealPlanRepository) GetLatestMealPlan(ctx context.Context, patientID uuid.UUID) (*domain.MealPlan, error) {
	args := m.Called(ctx, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MealPlan), args.Error(1)
}

func (m *MockMealPlanRepository) ListMealPlans(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*domain.MealPlan, int, error) {
	args := m.Called(ctx, patientID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.MealPlan), args.Int(1), args.Error(2)
}

// MockProfileRepository is a mock implementation of ProfileRepository
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) UpsertProfile(ctx context.Context, profile *domain.PatientProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileRepository) GetProfile(ctx context.Context, patientID uuid.UUID) (*domain.PatientProfile, error) {
	args := m.Called(ctx, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PatientProfile), args.Error(1)
}

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) CreateAccount(ctx context.Context, account *domain.Account) (bool, error) {
	args := m.Called(ctx, account)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, role string, status domain.ApprovalStatus) ([]*domain.Account, error) {
	args := m.Called(ctx, role, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateApproval(ctx context.Context, account *domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of MealPlanEventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishMealPlanGenerated(ctx context.Context, plan *domain.MealPlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

// MockRenderer is a mock implementation of MealPlanRenderer
type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) Render(plan *domain.MealPlan, profile *domain.PatientProfile) ([]byte, error) {
	args := m.Called(plan, profile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// recordingObserver collects pipeline observations
type recordingObserver struct {
	mu         sync.Mutex
	generated  []domain.Source
	failures   []services.FailureStage
	backend    int
	mismatches []services.SummaryMismatch
}

func (o *recordingObserver) PlanGenerated(source domain.Source, _ int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.generated = append(o.generated, source)
}

func (o *recordingObserver) GenerationFailed(stage services.FailureStage) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failures = append(o.failures, stage)
}

func (o *recordingObserver) BackendCompleted(time.Duration, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.backend++
}

func (o *recordingObserver) SummaryMismatch(m services.SummaryMismatch) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.mismatches = append(o.mismatches, m)
}

// testProfile is the reference profile used across pipeline tests
func testProfile() domain.ProfileDescriptor {
	return domain.ProfileDescriptor{
		Age:              30,
		HeightCM:         175,
		WeightKG:         70,
		DiseaseCondition: "Diabetes",
		MealPreference:   domain.MealPreferenceVegetarian,
		ActivityLevel:    domain.ActivityModeratelyActive,
		HealthGoal:       domain.GoalWeightLoss,
		Location:         domain.Location{Country: "India"},
	}
}
