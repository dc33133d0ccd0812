package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rithick-11/food-recommendation-system/internal/core/domain"
	"github.com/rithick-11/food-recommendation-system/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func encodeDoc(t *testing.T, doc map[string]interface{}) string {
	t.Helper()
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	return string(raw)
}

func expectedFallback(t *testing.T, profile domain.ProfileDescriptor, dayCount int) *domain.MealPlanResult {
	t.Helper()
	result, err := services.NewFallbackGenerator().Generate(profile, dayCount)
	require.NoError(t, err)
	return result
}

func TestOrchestrator_MockForcedSkipsBackend(t *testing.T) {
	backend := new(MockGenerationBackend)
	observer := &recordingObserver{}
	orch := services.NewOrchestrator(backend, services.BackendConfig{Available: true, MockForced: true}, nil, observer)

	result, err := orch.GenerateMealPlan(context.Background(), testProfile(), 2)

	require.NoError(t, err)
	assert.Equal(t, expectedFallback(t, testProfile(), 2), result)
	assert.Equal(t, []domain.Source{domain.SourceFallback}, observer.generated)
	backend.AssertNotCalled(t, "Invoke", mock.Anything, mock.Anything)
}

func TestOrchestrator_UnavailableSkipsBackend(t *testing.T) {
	backend := new(MockGenerationBackend)
	orch := services.NewOrchestrator(backend, services.BackendConfig{Available: false}, nil, nil)

	result, err := orch.GenerateMealPlan(context.Background(), testProfile(), 1)

	require.NoError(t, err)
	assert.Equal(t, domain.SourceFallback, result.Source)
	backend.AssertNotCalled(t, "Invoke", mock.Anything, mock.Anything)
}

func TestOrchestrator_NilBackendIsUnavailable(t *testing.T) {
	orch := services.NewOrchestrator(nil, services.BackendConfig{Available: true}, nil, nil)

	assert.Equal(t, "unavailable", orch.Config().Mode())
	result, err := orch.GenerateMealPlan(context.Background(), testProfile(), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceFallback, result.Source)
}

func TestOrchestrator_BackendSuccess(t *testing.T) {
	backend := new(MockGenerationBackend)
	observer := &recordingObserver{}
	profile := testProfile()
	backend.On("Invoke", mock.Anything, services.BuildPrompt(profile, 1)).
		Return(encodeDoc(t, singleDayDoc()), nil)

	orch := services.NewOrchestrator(backend, services.BackendConfig{Available: true}, nil, observer)
	result, err := orch.GenerateMealPlan(context.Background(), profile, 1)

	require.NoError(t, err)
	assert.Equal(t, domain.SourceBackend, result.Source)
	assert.Equal(t, "test meal", result.Meals.Lunch.Items)
	assert.Equal(t, 500.0, result.Summary.TotalCaloriesKcal)
	assert.Equal(t, []domain.Source{domain.SourceBackend}, observer.generated)
	assert.Equal(t, 1, observer.backend)
	assert.Empty(t, observer.failures)
	backend.AssertExpectations(t)
}

func TestOrchestrator_FencedMultiDayResponse(t *testing.T) {
	backend := new(MockGenerationBackend)
	backend.On("Invoke", mock.Anything, mock.AnythingOfType("string")).
		Return("```json\n"+encodeDoc(t, threeDayDoc(1800))+"\n```", nil)

	orch := services.NewOrchestrator(backend, services.BackendConfig{Available: true}, nil, nil)
	result, err := orch.GenerateMealPlan(context.Background(), testProfile(), 3)

	require.NoError(t, err)
	assert.Equal(t, domain.SourceBackend, result.Source)
	assert.Equal(t, 3, result.DayCount)
	assert.Len(t, result.DailyMeals, 3)
}

func TestOrchestrator_FallsBackOnFailure(t *testing.T) {
	missingDinner := singleDayDoc()
	delete(missingDinner["meals"].(map[string]interface{}), "dinner")

	tests := []struct {
		name  string
		raw   string
		err   error
		stage services.FailureStage
	}{
		{"backend error", "", errors.New("connection refused"), services.StageBackend},
		{"unparseable response", "no json here", nil, services.StageParse},
		{"missing dinner", encodeDoc(t, missingDinner), nil, services.StageValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := new(MockGenerationBackend)
			observer := &recordingObserver{}
			backend.On("Invoke", mock.Anything, mock.AnythingOfType("string")).Return(tt.raw, tt.err)

			orch := services.NewOrchestrator(backend, services.BackendConfig{Available: true}, nil, observer)
			result, err := orch.GenerateMealPlan(context.Background(), testProfile(), 1)

			require.NoError(t, err)
			assert.Equal(t, expectedFallback(t, testProfile(), 1), result)
			assert.Equal(t, []services.FailureStage{tt.stage}, observer.failures)
			assert.Equal(t, []domain.Source{domain.SourceFallback}, observer.generated)
			backend.AssertExpectations(t)
		})
	}
}

func TestOrchestrator_InvalidDayCount(t *testing.T) {
	backend := new(MockGenerationBackend)
	observer := &recordingObserver{}
	orch := services.NewOrchestrator(backend, services.BackendConfig{Available: true}, nil, observer)

	for _, days := range []int{0, 8} {
		result, err := orch.GenerateMealPlan(context.Background(), testProfile(), days)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, domain.ErrInvalidDayCount)
	}
	assert.Empty(t, observer.generated)
	backend.AssertNotCalled(t, "Invoke", mock.Anything, mock.Anything)
}

func TestBackendConfig_Mode(t *testing.T) {
	assert.Equal(t, "backend", services.BackendConfig{Available: true}.Mode())
	assert.Equal(t, "unavailable", services.BackendConfig{}.Mode())
	assert.Equal(t, "mock", services.BackendConfig{Available: true, MockForced: true}.Mode())
	assert.Equal(t, "mock", services.BackendConfig{MockForced: true}.Mode())
}
