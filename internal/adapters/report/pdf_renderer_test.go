package report_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rithick-11/food-recommendation-system/internal/adapters/report"
	"github.com/rithick-11/food-recommendation-system/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dayMeals(breakfast string) domain.DayMeals {
	return domain.DayMeals{
		Breakfast: domain.MealEntry{Items: breakfast, CarbsG: 66, ProteinG: 25, FatG: 21, FiberG: 14, CaloriesKcal: 552},
		Lunch:     domain.MealEntry{Items: "1 cup brown rice, 1 cup dal, mixed vegetable sabzi", CarbsG: 92, ProteinG: 35, FatG: 29, FiberG: 19, CaloriesKcal: 772},
		Snacks:    domain.MealEntry{Items: "1 apple with a handful of almonds", CarbsG: 40, ProteinG: 15, FatG: 12, FiberG: 8, CaloriesKcal: 331},
		Dinner:    domain.MealEntry{Items: "2 rotis with paneer curry", CarbsG: 66, ProteinG: 25, FatG: 21, FiberG: 14, CaloriesKcal: 552},
	}
}

func TestPDFRenderer_SingleDay(t *testing.T) {
	meals := dayMeals("Oatmeal with banana")
	plan := &domain.MealPlan{
		ID:             uuid.New(),
		PatientID:      uuid.New(),
		GeneratedAt:    time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC),
		MealPlanResult: *domain.NewSingleDayResult(meals, meals.Totals(), domain.SourceFallback),
	}
	profile := &domain.PatientProfile{
		PatientID: plan.PatientID,
		Descriptor: domain.ProfileDescriptor{
			Age:              52,
			HeightCM:         165,
			WeightKG:         70,
			BloodPressure:    "140/90",
			DiseaseCondition: "Hypertension",
			MealPreference:   domain.MealPreferenceVegetarian,
			Allergies:        []string{"shellfish"},
			ActivityLevel:    domain.ActivitySedentary,
			HealthGoal:       domain.GoalManageCondition,
			Location:         domain.Location{Country: "India", City: "Chennai"},
		},
	}

	renderer := report.NewPDFRenderer()
	doc, err := renderer.Render(plan, profile)

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))
}

func TestPDFRenderer_MultiDayWithoutProfile(t *testing.T) {
	days := []domain.DayMeals{dayMeals("Crêpes with berries"), dayMeals("Upma"), dayMeals("Idli and sambar")}
	summaries := make([]domain.NutritionSummary, len(days))
	var overall domain.NutritionSummary
	for i, d := range days {
		summaries[i] = d.Totals()
		overall = overall.Add(summaries[i])
	}
	plan := &domain.MealPlan{
		ID:             uuid.New(),
		PatientID:      uuid.New(),
		GeneratedAt:    time.Now(),
		MealPlanResult: *domain.NewMultiDayResult(days, summaries, overall, domain.SourceBackend),
	}

	doc, err := report.NewPDFRenderer().Render(plan, nil)

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))
}

func TestPDFRenderer_Errors(t *testing.T) {
	renderer := report.NewPDFRenderer()

	t.Run("nil plan", func(t *testing.T) {
		_, err := renderer.Render(nil, nil)
		assert.Error(t, err)
	})

	t.Run("missing day", func(t *testing.T) {
		days := []domain.DayMeals{dayMeals("Poha"), dayMeals("Upma")}
		summaries := []domain.NutritionSummary{days[0].Totals(), days[1].Totals()}
		plan := &domain.MealPlan{
			MealPlanResult: *domain.NewMultiDayResult(days, summaries, summaries[0].Add(summaries[1]), domain.SourceFallback),
		}
		delete(plan.DailyMeals, domain.DayKey(2))

		_, err := renderer.Render(plan, nil)
		assert.Error(t, err)
	})
}
