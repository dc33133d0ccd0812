package handler_test

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/rithick-11/food-recommendation-system/internal/adapters/middleware"
	"github.com/rithick-11/food-recommendation-system/internal/core/domain"
	"github.com/rithick-11/food-recommendation-system/internal/core/ports"
	"github.com/stretchr/testify/mock"
)

// MockMealPlanService is a mock implementation of MealPlanService
type MockMealPlanService struct {
	mock.Mock
}

func (m *MockMealPlanService) GeneratePlan(ctx context.Context, patientID uuid.UUID, requestedBy uuid.UUID, dayCount int) (*domain.MealPlan, error) {
	args := m.Called(ctx, patientID, requestedBy, dayCount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MealPlan), args.Error(1)
}

func (m *MockMealPlanService) GetLatestPlan(ctx context.Context, patientID uuid.UUID) (*domain.MealPlan, error) {
	args := m.Called(ctx, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MealPlan), args.Error(1)
}

func (m *MockMealPlanService) GetPlanHistory(ctx context.Context, patientID uuid.UUID, page, limit int) (*ports.MealPlanPage, error) {
	args := m.Called(ctx, patientID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.MealPlanPage), args.Error(1)
}

func (m *MockMealPlanService) RenderLatestPlan(ctx context.Context, patientID uuid.UUID) ([]byte, error) {
	args := m.Called(ctx, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockProfileService is a mock implementation of ProfileService
type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) GetProfile(ctx context.Context, patientID uuid.UUID) (*domain.PatientProfile, error) {
	args := m.Called(ctx, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PatientProfile), args.Error(1)
}

func (m *MockProfileService) SaveProfile(ctx context.Context, patientID uuid.UUID, descriptor domain.ProfileDescriptor) (*domain.PatientProfile, error) {
	args := m.Called(ctx, patientID, descriptor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PatientProfile), args.Error(1)
}

func (m *MockProfileService) ListPatients(ctx context.Context) ([]*ports.PatientSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ports.PatientSummary), args.Error(1)
}

// MockAccountService is a mock implementation of AccountService
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) RegisterAccount(ctx context.Context, id uuid.UUID, email, name, role string) (*domain.Account, error) {
	args := m.Called(ctx, id, email, name, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) ListPendingDoctors(ctx context.Context) ([]*domain.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Account), args.Error(1)
}

func (m *MockAccountService) ListDoctors(ctx context.Context) ([]*domain.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Account), args.Error(1)
}

func (m *MockAccountService) ApproveDoctor(ctx context.Context, doctorID uuid.UUID, adminID uuid.UUID) (*domain.Account, error) {
	args := m.Called(ctx, doctorID, adminID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) RejectDoctor(ctx context.Context, doctorID uuid.UUID, adminID uuid.UUID, reason string) (*domain.Account, error) {
	args := m.Called(ctx, doctorID, adminID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

// asUser attaches an authenticated identity the way RequireAuth does
func asUser(req *http.Request, userID uuid.UUID, role string) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, userID.String())
	ctx = context.WithValue(ctx, middleware.RoleKey, role)
	return req.WithContext(ctx)
}

// withPath sets a path value the way ServeMux does for {name} segments
func withPath(req *http.Request, name, value string) *http.Request {
	req.SetPathValue(name, value)
	return req
}
