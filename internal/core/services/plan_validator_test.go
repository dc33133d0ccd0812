package services_test

import (
	"errors"
	"testing"

	"github.com/rithick-11/food-recommendation-system/internal/core/domain"
	"github.com/rithick-11/food-recommendation-system/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mealDoc returns a decoded meal object; protein, carbs and fat are 10g each
func mealDoc(calories float64) map[string]interface{} {
	return map[string]interface{}{
		"items":         "test meal",
		"carbs_g":       10.0,
		"protein_g":     10.0,
		"fat_g":         10.0,
		"fiber_g":       2.0,
		"calories_kcal": calories,
	}
}

func dayDoc(caloriesPerMeal float64) map[string]interface{} {
	return map[string]interface{}{
		"breakfast": mealDoc(caloriesPerMeal),
		"lunch":     mealDoc(caloriesPerMeal),
		"snacks":    mealDoc(caloriesPerMeal),
		"dinner":    mealDoc(caloriesPerMeal),
	}
}

func summaryDoc(calories, protein, carbs, fat float64) map[string]interface{} {
	return map[string]interface{}{
		"total_calories_kcal": calories,
		"total_protein_g":     protein,
		"total_carbs_g":       carbs,
		"total_fat_g":         fat,
	}
}

func singleDayDoc() map[string]interface{} {
	return map[string]interface{}{
		"meals":   dayDoc(125),
		"summary": summaryDoc(500, 40, 40, 40),
	}
}

// threeDayDoc builds day totals of 500, 600 and 700 kcal with the given overall calories
func threeDayDoc(overallCalories float64) map[string]interface{} {
	return map[string]interface{}{
		"dailyMeals": map[string]interface{}{
			"day1": dayDoc(125),
			"day2": dayDoc(150),
			"day3": dayDoc(175),
		},
		"dailySummaries": map[string]interface{}{
			"day1": summaryDoc(500, 40, 40, 40),
			"day2": summaryDoc(600, 40, 40, 40),
			"day3": summaryDoc(700, 40, 40, 40),
		},
		"summary": summaryDoc(overallCalories, 120, 120, 120),
	}
}

func requireValidationError(t *testing.T, err error, reason string) {
	t.Helper()
	var validationErr *services.ValidationError
	require.True(t, errors.As(err, &validationErr), "expected ValidationError, got %v", err)
	assert.Contains(t, validationErr.Reason, reason)
}

func TestPlanValidator_SingleDayValid(t *testing.T) {
	observer := &recordingObserver{}
	validator := services.NewPlanValidator(observer)

	result, err := validator.Validate(singleDayDoc(), 1)

	require.NoError(t, err)
	assert.Equal(t, 1, result.DayCount)
	assert.False(t, result.IsMultiDay())
	assert.Equal(t, domain.SourceBackend, result.Source)
	require.NotNil(t, result.Meals)
	assert.Equal(t, "test meal", result.Meals.Dinner.Items)
	assert.Equal(t, 125.0, result.Meals.Breakfast.CaloriesKcal)
	assert.Equal(t, 500.0, result.Summary.TotalCaloriesKcal)
	assert.Empty(t, observer.mismatches)
}

func TestPlanValidator_MissingTopLevel(t *testing.T) {
	doc := singleDayDoc()
	delete(doc, "summary")

	_, err := services.NewPlanValidator(nil).Validate(doc, 1)

	requireValidationError(t, err, "missing meals or summary")
}

func TestPlanValidator_MissingDinner(t *testing.T) {
	doc := singleDayDoc()
	delete(doc["meals"].(map[string]interface{}), "dinner")

	_, err := services.NewPlanValidator(nil).Validate(doc, 1)

	requireValidationError(t, err, "missing required meal: dinner")
}

func TestPlanValidator_FieldErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(meal map[string]interface{})
		reason string
	}{
		{"missing items", func(m map[string]interface{}) { delete(m, "items") }, "missing required field items in lunch"},
		{"null fat", func(m map[string]interface{}) { m["fat_g"] = nil }, "missing required field fat_g in lunch"},
		{"negative fiber", func(m map[string]interface{}) { m["fiber_g"] = -1.0 }, "invalid fiber_g value in lunch"},
		{"string calories", func(m map[string]interface{}) { m["calories_kcal"] = "250" }, "invalid calories_kcal value in lunch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := singleDayDoc()
			tt.mutate(doc["meals"].(map[string]interface{})["lunch"].(map[string]interface{}))

			_, err := services.NewPlanValidator(nil).Validate(doc, 1)

			requireValidationError(t, err, tt.reason)
		})
	}
}

func TestPlanValidator_SummaryFieldErrors(t *testing.T) {
	doc := singleDayDoc()
	delete(doc["summary"].(map[string]interface{}), "total_fat_g")
	_, err := services.NewPlanValidator(nil).Validate(doc, 1)
	requireValidationError(t, err, "missing required summary field: total_fat_g")

	doc = singleDayDoc()
	doc["summary"].(map[string]interface{})["total_protein_g"] = -5.0
	_, err = services.NewPlanValidator(nil).Validate(doc, 1)
	requireValidationError(t, err, "invalid total_protein_g value in summary")
}

func TestPlanValidator_ToleranceIsLogOnly(t *testing.T) {
	// within tolerance: 10 off
	observer := &recordingObserver{}
	doc := singleDayDoc()
	doc["summary"].(map[string]interface{})["total_calories_kcal"] = 510.0

	result, err := services.NewPlanValidator(observer).Validate(doc, 1)
	require.NoError(t, err)
	assert.Empty(t, observer.mismatches)
	assert.Equal(t, 510.0, result.Summary.TotalCaloriesKcal)

	// beyond tolerance: 11 off, reported but accepted as-is
	observer = &recordingObserver{}
	doc = singleDayDoc()
	doc["summary"].(map[string]interface{})["total_calories_kcal"] = 511.0

	result, err = services.NewPlanValidator(observer).Validate(doc, 1)
	require.NoError(t, err)
	assert.Equal(t, 511.0, result.Summary.TotalCaloriesKcal)
	require.Len(t, observer.mismatches, 1)
	assert.Equal(t, services.SummaryMismatch{
		Scope:      "day",
		Field:      "total_calories_kcal",
		Calculated: 500,
		Reported:   511,
	}, observer.mismatches[0])
}

func TestPlanValidator_MultiDayRollup(t *testing.T) {
	observer := &recordingObserver{}

	result, err := services.NewPlanValidator(observer).Validate(threeDayDoc(1800), 3)

	require.NoError(t, err)
	assert.True(t, result.IsMultiDay())
	assert.Equal(t, 3, result.DayCount)
	assert.Nil(t, result.Meals)
	assert.Len(t, result.DailyMeals, 3)
	assert.Len(t, result.DailySummaries, 3)
	assert.Equal(t, 600.0, result.DailySummaries["day2"].TotalCaloriesKcal)
	assert.Equal(t, 1800.0, result.Summary.TotalCaloriesKcal)
	assert.Empty(t, observer.mismatches)

	meals, summary, ok := result.Day(3)
	require.True(t, ok)
	assert.Equal(t, 175.0, meals.Snacks.CaloriesKcal)
	assert.Equal(t, 700.0, summary.TotalCaloriesKcal)
}

func TestPlanValidator_MultiDayRollupMismatch(t *testing.T) {
	observer := &recordingObserver{}

	result, err := services.NewPlanValidator(observer).Validate(threeDayDoc(1750), 3)

	require.NoError(t, err)
	assert.Equal(t, 1750.0, result.Summary.TotalCaloriesKcal)
	require.Len(t, observer.mismatches, 1)
	assert.Equal(t, "overall", observer.mismatches[0].Scope)
	assert.Equal(t, 1800.0, observer.mismatches[0].Calculated)
}

func TestPlanValidator_MultiDayStructure(t *testing.T) {
	doc := threeDayDoc(1800)
	delete(doc["dailyMeals"].(map[string]interface{}), "day2")
	_, err := services.NewPlanValidator(nil).Validate(doc, 3)
	requireValidationError(t, err, "missing meals for day2")

	doc = threeDayDoc(1800)
	delete(doc["dailySummaries"].(map[string]interface{}), "day3")
	_, err = services.NewPlanValidator(nil).Validate(doc, 3)
	requireValidationError(t, err, "missing summary for day3")

	doc = threeDayDoc(1800)
	delete(doc["dailyMeals"].(map[string]interface{})["day1"].(map[string]interface{}), "snacks")
	_, err = services.NewPlanValidator(nil).Validate(doc, 3)
	requireValidationError(t, err, "missing required meal snacks for day1")

	doc = threeDayDoc(1800)
	doc["dailyMeals"].(map[string]interface{})["day2"].(map[string]interface{})["lunch"].(map[string]interface{})["protein_g"] = -3.0
	_, err = services.NewPlanValidator(nil).Validate(doc, 3)
	requireValidationError(t, err, "invalid protein_g value in day2-lunch")

	doc = threeDayDoc(1800)
	delete(doc, "dailySummaries")
	_, err = services.NewPlanValidator(nil).Validate(doc, 3)
	requireValidationError(t, err, "missing dailyMeals, dailySummaries, or summary")
}

func TestPlanValidator_DayCountMustMatchShape(t *testing.T) {
	// a single-day document cannot satisfy a two-day request
	_, err := services.NewPlanValidator(nil).Validate(singleDayDoc(), 2)
	requireValidationError(t, err, "missing dailyMeals")

	_, err = services.NewPlanValidator(nil).Validate(singleDayDoc(), 9)
	assert.ErrorIs(t, err, domain.ErrInvalidDayCount)
}
