package services

import (
	"math"
	"strings"

	"github.com/rithick-11/food-recommendation-system/internal/core/domain"
)

// averageHeightCM stands in for height in the calorie estimate
const averageHeightCM = 170.0

var activityMultipliers = map[domain.ActivityLevel]float64{
	domain.ActivitySedentary:        1.2,
	domain.ActivityLightlyActive:    1.375,
	domain.ActivityModeratelyActive: 1.55,
	domain.ActivityVeryActive:       1.725,
}

const defaultActivityMultiplier = 1.375

var goalAdjustments = map[domain.HealthGoal]float64{
	domain.GoalWeightLoss:        -300,
	domain.GoalWeightMaintenance: 0,
	domain.GoalMuscleGain:        300,
	domain.GoalManageCondition:   0,
}

// mealCalorieShares splits the daily target across the slots
var mealCalorieShares = map[string]float64{
	domain.MealBreakfast: 0.25,
	domain.MealLunch:     0.35,
	domain.MealSnacks:    0.15,
	domain.MealDinner:    0.25,
}

// ConditionRule adjusts a template meal when the patient's condition
// contains Keyword (case-insensitive)
type ConditionRule struct {
	Keyword string
	Apply   func(domain.MealEntry) domain.MealEntry
}

// DefaultConditionRules returns the built-in condition adjustments, applied in order
func DefaultConditionRules() []ConditionRule {
	return []ConditionRule{
		{
			Keyword: "diabetes",
			Apply: func(m domain.MealEntry) domain.MealEntry {
				m.Items += " (low glycemic index options)"
				m.CarbsG = math.Round(m.CarbsG * 0.8)
				m.FiberG = math.Round(m.FiberG * 1.2)
				return m
			},
		},
		{
			Keyword: "hypertension",
			Apply: func(m domain.MealEntry) domain.MealEntry {
				m.Items += " (low sodium preparation)"
				return m
			},
		},
	}
}

// FallbackGenerator synthesizes meal plans from fixed templates. It has no
// external dependencies and the same input always yields the same plan.
type FallbackGenerator struct {
	rules []ConditionRule
}

// NewFallbackGenerator creates a generator; with no rules the defaults are used
func NewFallbackGenerator(rules ...ConditionRule) *FallbackGenerator {
	if len(rules) == 0 {
		rules = DefaultConditionRules()
	}
	return &FallbackGenerator{rules: rules}
}

// Generate builds a single- or multi-day plan whose summaries are exact sums of its meals
func (g *FallbackGenerator) Generate(profile domain.ProfileDescriptor, dayCount int) (*domain.MealPlanResult, error) {
	if !domain.ValidDayCount(dayCount) {
		return nil, domain.ErrInvalidDayCount
	}

	target := TargetCalories(profile)

	if dayCount == 1 {
		meals := g.generateDay(profile, target, 1)
		return domain.NewSingleDayResult(meals, meals.Totals(), domain.SourceFallback), nil
	}

	days := make([]domain.DayMeals, 0, dayCount)
	summaries := make([]domain.NutritionSummary, 0, dayCount)
	var overall domain.NutritionSummary
	for day := 1; day <= dayCount; day++ {
		meals := g.generateDay(profile, target, day)
		daySummary := meals.Totals()
		days = append(days, meals)
		summaries = append(summaries, daySummary)
		overall = overall.Add(daySummary)
	}
	return domain.NewMultiDayResult(days, summaries, overall, domain.SourceFallback), nil
}

// TargetCalories is the goal-adjusted daily calorie target of a profile
func TargetCalories(profile domain.ProfileDescriptor) float64 {
	bmr := 10*profile.WeightKG + 6.25*averageHeightCM - 5*float64(profile.Age) + 5

	multiplier, ok := activityMultipliers[profile.ActivityLevel]
	if !ok {
		multiplier = defaultActivityMultiplier
	}

	return math.Round(bmr*multiplier) + goalAdjustments[profile.HealthGoal]
}

func (g *FallbackGenerator) generateDay(profile domain.ProfileDescriptor, target float64, day int) domain.DayMeals {
	family := selectTemplateFamily(profile.Location)

	var meals domain.DayMeals
	for _, slot := range domain.MealSlots {
		variations := mealVariations(family.baseMeal(slot, profile.MealPreference))
		meal := variations[(day-1)%len(variations)]

		meal = g.applyConditionRules(meal, profile.DiseaseCondition)
		meal = scaleToCalories(meal, math.Round(target*mealCalorieShares[slot]))

		entry, _ := meals.Meal(slot)
		*entry = meal
	}
	return meals
}

func (g *FallbackGenerator) applyConditionRules(meal domain.MealEntry, condition string) domain.MealEntry {
	condition = strings.ToLower(condition)
	for _, rule := range g.rules {
		if strings.Contains(condition, strings.ToLower(rule.Keyword)) {
			meal = rule.Apply(meal)
		}
	}
	return meal
}

// scaleToCalories scales the macros so they imply roughly calories; the
// calorie figure itself is set to the target exactly
func scaleToCalories(meal domain.MealEntry, calories float64) domain.MealEntry {
	implied := meal.CarbsG*4 + meal.ProteinG*4 + meal.FatG*9
	scale := 0.0
	if implied > 0 {
		scale = calories / implied
	}

	return domain.MealEntry{
		Items:        meal.Items,
		CarbsG:       math.Round(meal.CarbsG * scale),
		ProteinG:     math.Round(meal.ProteinG * scale),
		FatG:         math.Round(meal.FatG * scale),
		FiberG:       math.Round(meal.FiberG * scale),
		CaloriesKcal: calories,
	}
}
