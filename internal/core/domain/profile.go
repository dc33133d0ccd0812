package domain

import (
	"time"

	"github.com/google/uuid"
)

// MealPreference is the patient's dietary preference
type MealPreference string

const (
	MealPreferenceVegetarian    MealPreference = "Vegetarian"
	MealPreferenceNonVegetarian MealPreference = "Non-Vegetarian"
	MealPreferenceMixed         MealPreference = "Mixed"
)

// ActivityLevel drives the calorie multiplier of the fallback generator
type ActivityLevel string

const (
	ActivitySedentary        ActivityLevel = "Sedentary"
	ActivityLightlyActive    ActivityLevel = "Lightly Active"
	ActivityModeratelyActive ActivityLevel = "Moderately Active"
	ActivityVeryActive       ActivityLevel = "Very Active"
)

// HealthGoal drives the per-goal calorie delta of the fallback generator
type HealthGoal string

const (
	GoalWeightLoss        HealthGoal = "Weight Loss"
	GoalWeightMaintenance HealthGoal = "Weight Maintenance"
	GoalMuscleGain        HealthGoal = "Muscle Gain"
	GoalManageCondition   HealthGoal = "Manage Condition"
)

// BloodGroups lists the accepted blood group values
var BloodGroups = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

// Location is used to pick a template family and to populate prompt text only
type Location struct {
	Country string `json:"country,omitempty"`
	State   string `json:"state,omitempty"`
	City    string `json:"city,omitempty"`
}

// IsEmpty reports whether no location field is set
func (l Location) IsEmpty() bool {
	return l.Country == "" && l.State == "" && l.City == ""
}

// ProfileDescriptor holds the health attributes consumed by meal plan generation
type ProfileDescriptor struct {
	Age              int            `json:"age"`
	HeightCM         float64        `json:"height_cm"`
	WeightKG         float64        `json:"weight_kg"`
	BloodPressure    string         `json:"bloodPressure,omitempty"` // "systolic/diastolic"
	BloodGroup       string         `json:"bloodGroup,omitempty"`
	MedicalSummary   string         `json:"medicalSummary,omitempty"`
	DiseaseCondition string         `json:"diseaseCondition"`
	MealPreference   MealPreference `json:"mealPreference"`
	Allergies        []string       `json:"allergies"`
	DislikedItems    []string       `json:"dislikedItems"`
	ActivityLevel    ActivityLevel  `json:"activityLevel"`
	HealthGoal       HealthGoal     `json:"healthGoal"`
	Location         Location       `json:"location"`
}

// PatientProfile is the stored profile of one patient account
type PatientProfile struct {
	PatientID  uuid.UUID         `json:"patient_id"`
	Descriptor ProfileDescriptor `json:"profile"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}
