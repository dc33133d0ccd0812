package services

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/rithick-11/food-recommendation-system/internal/core/domain"
)

// SummaryTolerance is the largest per-field gap between a stated total and
// the computed sum that is not reported as a mismatch
const SummaryTolerance = 10.0

var mealNumericFields = []string{"carbs_g", "protein_g", "fat_g", "fiber_g", "calories_kcal"}

var summaryFields = []string{"total_calories_kcal", "total_protein_g", "total_carbs_g", "total_fat_g"}

// ValidationError reports the first structural defect found in a parsed plan
type ValidationError struct {
	Path   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid meal plan at %s: %s", e.Path, e.Reason)
}

func invalid(path, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Path: path, Reason: fmt.Sprintf(format, args...)}
}

// SummaryMismatch is a stated total that differs from the computed sum by
// more than SummaryTolerance. Scope is "day" for a single-day plan, the day
// key for a day of a multi-day plan, or "overall".
type SummaryMismatch struct {
	Scope      string  `json:"scope"`
	Field      string  `json:"field"`
	Calculated float64 `json:"calculated"`
	Reported   float64 `json:"reported"`
}

// PlanValidator checks parsed backend output against the plan schema
type PlanValidator struct {
	observer GenerationObserver
}

// NewPlanValidator creates a validator reporting mismatches to observer (may be nil)
func NewPlanValidator(observer GenerationObserver) *PlanValidator {
	if observer == nil {
		observer = NopObserver{}
	}
	return &PlanValidator{observer: observer}
}

// Validate checks presence, types and signs of every meal and summary field,
// failing on the first defect. Totals that disagree with the meals are
// logged and reported but never rejected; the stated values are kept.
func (v *PlanValidator) Validate(parsed map[string]interface{}, dayCount int) (*domain.MealPlanResult, error) {
	if !domain.ValidDayCount(dayCount) {
		return nil, domain.ErrInvalidDayCount
	}
	if dayCount == 1 {
		return v.validateSingleDay(parsed)
	}
	return v.validateMultiDay(parsed, dayCount)
}

func (v *PlanValidator) validateSingleDay(parsed map[string]interface{}) (*domain.MealPlanResult, error) {
	mealsObj, okMeals := object(parsed["meals"])
	summaryObj, okSummary := object(parsed["summary"])
	if !okMeals || !okSummary {
		return nil, invalid("$", "missing meals or summary")
	}

	meals, err := readDayMeals(mealsObj, "meals", "")
	if err != nil {
		return nil, err
	}
	summary, err := readSummary(summaryObj, "summary")
	if err != nil {
		return nil, err
	}

	v.reconcile("day", meals.Totals(), summary)
	return domain.NewSingleDayResult(meals, summary, domain.SourceBackend), nil
}

func (v *PlanValidator) validateMultiDay(parsed map[string]interface{}, dayCount int) (*domain.MealPlanResult, error) {
	dailyMealsObj, okMeals := object(parsed["dailyMeals"])
	dailySummariesObj, okSummaries := object(parsed["dailySummaries"])
	summaryObj, okSummary := object(parsed["summary"])
	if !okMeals || !okSummaries || !okSummary {
		return nil, invalid("$", "missing dailyMeals, dailySummaries, or summary")
	}

	days := make([]domain.DayMeals, 0, dayCount)
	daySummaries := make([]domain.NutritionSummary, 0, dayCount)
	var rollup domain.NutritionSummary

	for day := 1; day <= dayCount; day++ {
		key := domain.DayKey(day)

		dayObj, ok := object(dailyMealsObj[key])
		if !ok {
			return nil, invalid("dailyMeals."+key, "missing meals for %s", key)
		}
		daySummaryObj, ok := object(dailySummariesObj[key])
		if !ok {
			return nil, invalid("dailySummaries."+key, "missing summary for %s", key)
		}

		meals, err := readDayMeals(dayObj, "dailyMeals."+key, key)
		if err != nil {
			return nil, err
		}
		summary, err := readSummary(daySummaryObj, "dailySummaries."+key)
		if err != nil {
			return nil, err
		}

		v.reconcile(key, meals.Totals(), summary)

		days = append(days, meals)
		daySummaries = append(daySummaries, summary)
		rollup = rollup.Add(summary)
	}

	summary, err := readSummary(summaryObj, "summary")
	if err != nil {
		return nil, err
	}
	v.reconcile("overall", rollup, summary)

	return domain.NewMultiDayResult(days, daySummaries, summary, domain.SourceBackend), nil
}

// reconcile reports every field whose stated value is off by more than the tolerance
func (v *PlanValidator) reconcile(scope string, calculated, reported domain.NutritionSummary) {
	for _, m := range compareTotals(scope, calculated, reported) {
		logEvent("mealplan_summary_mismatch", map[string]interface{}{
			"scope":      m.Scope,
			"field":      m.Field,
			"calculated": m.Calculated,
			"reported":   m.Reported,
		})
		v.observer.SummaryMismatch(m)
	}
}

func compareTotals(scope string, calculated, reported domain.NutritionSummary) []SummaryMismatch {
	pairs := []struct {
		field      string
		calculated float64
		reported   float64
	}{
		{"total_calories_kcal", calculated.TotalCaloriesKcal, reported.TotalCaloriesKcal},
		{"total_protein_g", calculated.TotalProteinG, reported.TotalProteinG},
		{"total_carbs_g", calculated.TotalCarbsG, reported.TotalCarbsG},
		{"total_fat_g", calculated.TotalFatG, reported.TotalFatG},
	}

	var mismatches []SummaryMismatch
	for _, p := range pairs {
		if math.Abs(p.calculated-p.reported) > SummaryTolerance {
			mismatches = append(mismatches, SummaryMismatch{
				Scope:      scope,
				Field:      p.field,
				Calculated: p.calculated,
				Reported:   p.reported,
			})
		}
	}
	return mismatches
}

// readDayMeals converts the four meal objects of a day; dayKey is empty for single-day plans
func readDayMeals(obj map[string]interface{}, path, dayKey string) (domain.DayMeals, error) {
	var meals domain.DayMeals
	for _, slot := range domain.MealSlots {
		mealObj, ok := object(obj[slot])
		if !ok {
			if dayKey == "" {
				return meals, invalid(path+"."+slot, "missing required meal: %s", slot)
			}
			return meals, invalid(path+"."+slot, "missing required meal %s for %s", slot, dayKey)
		}

		name := slot
		if dayKey != "" {
			name = dayKey + "-" + slot
		}
		entry, err := readMeal(mealObj, path+"."+slot, name)
		if err != nil {
			return meals, err
		}
		target, _ := meals.Meal(slot)
		*target = entry
	}
	return meals, nil
}

func readMeal(obj map[string]interface{}, path, name string) (domain.MealEntry, error) {
	var entry domain.MealEntry

	items, present := obj["items"]
	if !present || items == nil {
		return entry, invalid(path+".items", "missing required field items in %s", name)
	}
	entry.Items = itemsText(items)

	values := make(map[string]float64, len(mealNumericFields))
	for _, field := range mealNumericFields {
		raw, present := obj[field]
		if !present || raw == nil {
			return entry, invalid(path+"."+field, "missing required field %s in %s", field, name)
		}
		n, ok := raw.(float64)
		if !ok || n < 0 {
			return entry, invalid(path+"."+field, "invalid %s value in %s: must be a non-negative number", field, name)
		}
		values[field] = n
	}

	entry.CarbsG = values["carbs_g"]
	entry.ProteinG = values["protein_g"]
	entry.FatG = values["fat_g"]
	entry.FiberG = values["fiber_g"]
	entry.CaloriesKcal = values["calories_kcal"]
	return entry, nil
}

func readSummary(obj map[string]interface{}, path string) (domain.NutritionSummary, error) {
	values := make(map[string]float64, len(summaryFields))
	for _, field := range summaryFields {
		raw, present := obj[field]
		if !present || raw == nil {
			return domain.NutritionSummary{}, invalid(path+"."+field, "missing required summary field: %s", field)
		}
		n, ok := raw.(float64)
		if !ok || n < 0 {
			return domain.NutritionSummary{}, invalid(path+"."+field, "invalid %s value in summary: must be a non-negative number", field)
		}
		values[field] = n
	}

	return domain.NutritionSummary{
		TotalCaloriesKcal: values["total_calories_kcal"],
		TotalProteinG:     values["total_protein_g"],
		TotalCarbsG:       values["total_carbs_g"],
		TotalFatG:         values["total_fat_g"],
	}, nil
}

func object(v interface{}) (map[string]interface{}, bool) {
	m, ok := v.(map[string]interface{})
	return m, ok
}

// itemsText keeps string items verbatim and re-encodes anything else
func itemsText(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
