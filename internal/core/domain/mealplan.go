package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	MinDayCount = 1
	MaxDayCount = 7
)

// Meal slot names, in the order they are rendered and validated
const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealSnacks    = "snacks"
	MealDinner    = "dinner"
)

// MealSlots is the fixed set of meals making up one day
var MealSlots = []string{MealBreakfast, MealLunch, MealSnacks, MealDinner}

// Source tags where a meal plan came from
type Source string

const (
	SourceBackend  Source = "backend"  // generative backend, validated
	SourceFallback Source = "fallback" // deterministic generator
)

// DayKey returns the key of the given 1-based day ("day1".."dayN")
func DayKey(day int) string {
	return fmt.Sprintf("day%d", day)
}

// ValidDayCount reports whether n is an accepted plan length
func ValidDayCount(n int) bool {
	return n >= MinDayCount && n <= MaxDayCount
}

// MealEntry is one meal's description and macro breakdown
type MealEntry struct {
	Items        string  `json:"items"`
	CarbsG       float64 `json:"carbs_g"`
	ProteinG     float64 `json:"protein_g"`
	FatG         float64 `json:"fat_g"`
	FiberG       float64 `json:"fiber_g"`
	CaloriesKcal float64 `json:"calories_kcal"`
}

// DayMeals holds the four meals of a single day
type DayMeals struct {
	Breakfast MealEntry `json:"breakfast"`
	Lunch     MealEntry `json:"lunch"`
	Snacks    MealEntry `json:"snacks"`
	Dinner    MealEntry `json:"dinner"`
}

// Meal returns the entry for a slot name
func (d *DayMeals) Meal(slot string) (*MealEntry, bool) {
	switch slot {
	case MealBreakfast:
		return &d.Breakfast, true
	case MealLunch:
		return &d.Lunch, true
	case MealSnacks:
		return &d.Snacks, true
	case MealDinner:
		return &d.Dinner, true
	}
	return nil, false
}

// Entries returns the four meals in slot order
func (d DayMeals) Entries() []MealEntry {
	return []MealEntry{d.Breakfast, d.Lunch, d.Snacks, d.Dinner}
}

// Totals sums the day's meals into a summary
func (d DayMeals) Totals() NutritionSummary {
	var s NutritionSummary
	for _, m := range d.Entries() {
		s.TotalCaloriesKcal += m.CaloriesKcal
		s.TotalProteinG += m.ProteinG
		s.TotalCarbsG += m.CarbsG
		s.TotalFatG += m.FatG
	}
	return s
}

// NutritionSummary totals the meals of one or more days
type NutritionSummary struct {
	TotalCaloriesKcal float64 `json:"total_calories_kcal"`
	TotalProteinG     float64 `json:"total_protein_g"`
	TotalCarbsG       float64 `json:"total_carbs_g"`
	TotalFatG         float64 `json:"total_fat_g"`
}

// Add returns the field-wise sum of two summaries
func (s NutritionSummary) Add(o NutritionSummary) NutritionSummary {
	return NutritionSummary{
		TotalCaloriesKcal: s.TotalCaloriesKcal + o.TotalCaloriesKcal,
		TotalProteinG:     s.TotalProteinG + o.TotalProteinG,
		TotalCarbsG:       s.TotalCarbsG + o.TotalCarbsG,
		TotalFatG:         s.TotalFatG + o.TotalFatG,
	}
}

// MealPlanResult is the output of one generation call.
//
// A single-day plan carries Meals and Summary; a multi-day plan carries
// DailyMeals, DailySummaries (keyed day1..dayN) and an overall Summary.
// Build it with NewSingleDayResult or NewMultiDayResult so the shape always
// matches DayCount.
type MealPlanResult struct {
	DayCount       int                         `json:"dayCount"`
	Meals          *DayMeals                   `json:"meals,omitempty"`
	DailyMeals     map[string]DayMeals         `json:"dailyMeals,omitempty"`
	DailySummaries map[string]NutritionSummary `json:"dailySummaries,omitempty"`
	Summary        NutritionSummary            `json:"summary"`
	Source         Source                      `json:"source"`
}

// NewSingleDayResult builds a one-day plan
func NewSingleDayResult(meals DayMeals, summary NutritionSummary, source Source) *MealPlanResult {
	return &MealPlanResult{
		DayCount: 1,
		Meals:    &meals,
		Summary:  summary,
		Source:   source,
	}
}

// NewMultiDayResult builds an N-day plan from per-day slices (index 0 is day1)
func NewMultiDayResult(days []DayMeals, daySummaries []NutritionSummary, summary NutritionSummary, source Source) *MealPlanResult {
	r := &MealPlanResult{
		DayCount:       len(days),
		DailyMeals:     make(map[string]DayMeals, len(days)),
		DailySummaries: make(map[string]NutritionSummary, len(days)),
		Summary:        summary,
		Source:         source,
	}
	for i := range days {
		key := DayKey(i + 1)
		r.DailyMeals[key] = days[i]
		r.DailySummaries[key] = daySummaries[i]
	}
	return r
}

// IsMultiDay reports whether the plan uses the day-keyed shape
func (r *MealPlanResult) IsMultiDay() bool {
	return r.DayCount > 1
}

// Day returns the meals and summary of a 1-based day. A single-day plan
// answers for day 1 only.
func (r *MealPlanResult) Day(day int) (DayMeals, NutritionSummary, bool) {
	if !r.IsMultiDay() {
		if day != 1 || r.Meals == nil {
			return DayMeals{}, NutritionSummary{}, false
		}
		return *r.Meals, r.Summary, true
	}
	key := DayKey(day)
	meals, ok := r.DailyMeals[key]
	if !ok {
		return DayMeals{}, NutritionSummary{}, false
	}
	return meals, r.DailySummaries[key], true
}

// MealPlan is a stored generation result linked to a patient
type MealPlan struct {
	ID          uuid.UUID `json:"id"`
	PatientID   uuid.UUID `json:"patient_id"`
	GeneratedBy uuid.UUID `json:"generated_by"`
	GeneratedAt time.Time `json:"generatedAt"`
	MealPlanResult
}

// DaysAgo returns the whole days elapsed since generation
func (p *MealPlan) DaysAgo(now time.Time) int {
	return int(now.Sub(p.GeneratedAt) / (24 * time.Hour))
}
