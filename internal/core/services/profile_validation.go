package services

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rithick-11/food-recommendation-system/internal/core/domain"
)

var bloodPressureRe = regexp.MustCompile(`^\d{2,3}/\d{2,3}$`)

// ProfileValidationError lists every problem found in a submitted profile
type ProfileValidationError struct {
	Problems []string
}

func (e *ProfileValidationError) Error() string {
	return "invalid profile: " + strings.Join(e.Problems, "; ")
}

// ValidateProfile checks ranges, enums and lengths of a profile before it is stored
func ValidateProfile(p domain.ProfileDescriptor) error {
	var problems []string
	add := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if p.Age < 1 || p.Age > 120 {
		add("age must be between 1 and 120")
	}
	if p.HeightCM < 50 || p.HeightCM > 300 {
		add("height_cm must be between 50 and 300")
	}
	if p.WeightKG < 10 || p.WeightKG > 500 {
		add("weight_kg must be between 10 and 500")
	}

	if strings.TrimSpace(p.DiseaseCondition) == "" {
		add("diseaseCondition is required")
	} else if utf8.RuneCountInString(p.DiseaseCondition) > 200 {
		add("diseaseCondition cannot exceed 200 characters")
	}

	switch p.MealPreference {
	case domain.MealPreferenceVegetarian, domain.MealPreferenceNonVegetarian, domain.MealPreferenceMixed:
	default:
		add("mealPreference must be one of Vegetarian, Non-Vegetarian, Mixed")
	}
	switch p.ActivityLevel {
	case domain.ActivitySedentary, domain.ActivityLightlyActive, domain.ActivityModeratelyActive, domain.ActivityVeryActive:
	default:
		add("activityLevel must be one of Sedentary, Lightly Active, Moderately Active, Very Active")
	}
	switch p.HealthGoal {
	case domain.GoalWeightLoss, domain.GoalWeightMaintenance, domain.GoalMuscleGain, domain.GoalManageCondition:
	default:
		add("healthGoal must be one of Weight Loss, Weight Maintenance, Muscle Gain, Manage Condition")
	}

	if p.BloodPressure != "" && !bloodPressureRe.MatchString(p.BloodPressure) {
		add("bloodPressure must be in format like 120/80")
	}
	if p.BloodGroup != "" && !contains(domain.BloodGroups, p.BloodGroup) {
		add("bloodGroup must be one of %s", strings.Join(domain.BloodGroups, ", "))
	}
	if utf8.RuneCountInString(p.MedicalSummary) > 1000 {
		add("medicalSummary cannot exceed 1000 characters")
	}

	for _, item := range p.Allergies {
		if utf8.RuneCountInString(item) > 100 {
			add("each allergy cannot exceed 100 characters")
			break
		}
	}
	for _, item := range p.DislikedItems {
		if utf8.RuneCountInString(item) > 100 {
			add("each disliked item cannot exceed 100 characters")
			break
		}
	}

	locationFields := []struct{ name, value string }{
		{"country", p.Location.Country},
		{"state", p.Location.State},
		{"city", p.Location.City},
	}
	for _, f := range locationFields {
		if utf8.RuneCountInString(f.value) > 100 {
			add("location %s cannot exceed 100 characters", f.name)
		}
	}

	if len(problems) > 0 {
		return &ProfileValidationError{Problems: problems}
	}
	return nil
}

// normalizeProfile trims free text and drops blank list entries
func normalizeProfile(p domain.ProfileDescriptor) domain.ProfileDescriptor {
	p.DiseaseCondition = strings.TrimSpace(p.DiseaseCondition)
	p.MedicalSummary = strings.TrimSpace(p.MedicalSummary)
	p.BloodPressure = strings.TrimSpace(p.BloodPressure)
	p.Location.Country = strings.TrimSpace(p.Location.Country)
	p.Location.State = strings.TrimSpace(p.Location.State)
	p.Location.City = strings.TrimSpace(p.Location.City)
	p.Allergies = compact(p.Allergies)
	p.DislikedItems = compact(p.DislikedItems)
	return p
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
