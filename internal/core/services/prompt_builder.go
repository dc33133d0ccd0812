package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rithick-11/food-recommendation-system/internal/core/domain"
)

const (
	notSpecified = "Not specified"

	singleDayInstruction = "You are an expert dietitian and nutritionist. Generate a personalized daily meal plan based on the patient's health profile."
	multiDayInstruction  = "You are an expert dietitian and nutritionist. Generate a personalized %d-day meal plan based on the patient's health profile. Ensure variety across days while maintaining nutritional consistency."

	formatInstruction = "IMPORTANT: You must respond with ONLY a valid JSON object in the exact format specified below. Do not include any explanations, markdown formatting, or additional text."
)

var singleDayGoals = []string{
	"Addresses the specific disease condition and health goal",
	"Respects dietary preferences and restrictions",
	"Avoids all listed allergies and disliked items",
	"Matches the activity level and caloric needs",
	"Incorporates regional/local cuisines and ingredients based on the location",
	"Uses locally available and culturally appropriate foods",
	"Provides detailed food items with specific portions",
	"Includes accurate nutritional calculations",
}

var multiDayGoals = []string{
	"Addresses the specific disease condition and health goal",
	"Respects dietary preferences and restrictions",
	"Avoids all listed allergies and disliked items",
	"Matches the activity level and caloric needs",
	"Incorporates regional/local cuisines and ingredients based on the location",
	"Uses locally available and culturally appropriate foods",
	"Provides variety across days while maintaining nutritional consistency",
	"Ensures each day has balanced nutrition appropriate for the health goal",
	"Provides detailed food items with specific portions for each day",
	"Includes accurate nutritional calculations for each day and overall totals",
}

// BuildPrompt renders the generation request for a profile and plan length.
// The output is a pure function of its inputs.
func BuildPrompt(profile domain.ProfileDescriptor, dayCount int) string {
	var b strings.Builder

	if dayCount == 1 {
		b.WriteString(singleDayInstruction)
	} else {
		fmt.Fprintf(&b, multiDayInstruction, dayCount)
	}
	b.WriteString("\n\n")
	b.WriteString(formatInstruction)
	b.WriteString("\n\nRequired JSON format:\n")
	b.WriteString(responseSchema(dayCount))
	b.WriteString("\n\n")

	writeProfile(&b, profile)

	if dayCount == 1 {
		b.WriteString("\n\nGenerate a balanced daily meal plan that:\n")
		writeNumbered(&b, singleDayGoals)
		b.WriteString("\n\nEnsure the summary totals match the sum of individual meal nutrients.")
	} else {
		fmt.Fprintf(&b, "\n\nGenerate a balanced %d-day meal plan that:\n", dayCount)
		writeNumbered(&b, multiDayGoals)
		b.WriteString("\n\nEnsure:\n")
		b.WriteString("- Each daily summary matches the sum of that day's individual meal nutrients\n")
		b.WriteString("- The overall summary matches the sum of all daily summaries\n")
		b.WriteString("- There is variety in meals across different days\n")
		b.WriteString("- Nutritional consistency is maintained throughout the plan")
	}

	return b.String()
}

func writeProfile(b *strings.Builder, p domain.ProfileDescriptor) {
	b.WriteString("Patient Profile:\n")
	fmt.Fprintf(b, "- Age: %d years\n", p.Age)
	fmt.Fprintf(b, "- Height: %s cm\n", formatNumber(p.HeightCM))
	fmt.Fprintf(b, "- Weight: %s kg\n", formatNumber(p.WeightKG))
	fmt.Fprintf(b, "- Blood Pressure: %s\n", orDefault(p.BloodPressure, notSpecified))
	fmt.Fprintf(b, "- Blood Group: %s\n", orDefault(p.BloodGroup, notSpecified))
	fmt.Fprintf(b, "- Medical Summary: %s\n", orDefault(p.MedicalSummary, "None provided"))
	fmt.Fprintf(b, "- Disease/Condition: %s\n", p.DiseaseCondition)
	fmt.Fprintf(b, "- Meal Preference: %s\n", p.MealPreference)
	fmt.Fprintf(b, "- Allergies: %s\n", joinOrNone(p.Allergies))
	fmt.Fprintf(b, "- Disliked Items: %s\n", joinOrNone(p.DislikedItems))
	fmt.Fprintf(b, "- Activity Level: %s\n", p.ActivityLevel)
	fmt.Fprintf(b, "- Health Goal: %s\n", p.HealthGoal)
	fmt.Fprintf(b, "- Location: %s", formatLocation(p.Location))
}

func writeNumbered(b *strings.Builder, lines []string) {
	for i, line := range lines {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(b, "%d. %s", i+1, line)
	}
}

func formatLocation(l domain.Location) string {
	if l.IsEmpty() {
		return notSpecified
	}
	return strings.Join([]string{
		orDefault(l.Country, notSpecified),
		orDefault(l.State, notSpecified),
		orDefault(l.City, notSpecified),
	}, ", ")
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "None"
	}
	return strings.Join(values, ", ")
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// responseSchema describes the exact JSON document the backend must return
func responseSchema(dayCount int) string {
	if dayCount == 1 {
		var b strings.Builder
		b.WriteString("{\n  \"meals\": {\n")
		for i, slot := range domain.MealSlots {
			fmt.Fprintf(&b, "    %q: {\n", slot)
			fmt.Fprintf(&b, "      \"items\": \"detailed %s items with portions\",\n", mealNoun(slot))
			b.WriteString("      \"carbs_g\": number,\n")
			b.WriteString("      \"protein_g\": number,\n")
			b.WriteString("      \"fat_g\": number,\n")
			b.WriteString("      \"fiber_g\": number,\n")
			b.WriteString("      \"calories_kcal\": number\n")
			b.WriteString("    }")
			if i < len(domain.MealSlots)-1 {
				b.WriteString(",")
			}
			b.WriteString("\n")
		}
		b.WriteString("  },\n")
		b.WriteString(summarySchema)
		b.WriteString("\n}")
		return b.String()
	}

	days := make([]string, 0, dayCount)
	summaries := make([]string, 0, dayCount)
	for day := 1; day <= dayCount; day++ {
		var d strings.Builder
		fmt.Fprintf(&d, "    %q: {\n", domain.DayKey(day))
		for i, slot := range domain.MealSlots {
			fmt.Fprintf(&d, "      %q: { \"items\": \"detailed %s items with portions\", \"carbs_g\": number, \"protein_g\": number, \"fat_g\": number, \"fiber_g\": number, \"calories_kcal\": number }", slot, mealNoun(slot))
			if i < len(domain.MealSlots)-1 {
				d.WriteString(",")
			}
			d.WriteString("\n")
		}
		d.WriteString("    }")
		days = append(days, d.String())

		summaries = append(summaries, fmt.Sprintf("    %q: {\n"+
			"      \"total_calories_kcal\": number,\n"+
			"      \"total_protein_g\": number,\n"+
			"      \"total_carbs_g\": number,\n"+
			"      \"total_fat_g\": number\n"+
			"    }", domain.DayKey(day)))
	}

	return "{\n  \"dailyMeals\": {\n" + strings.Join(days, ",\n") +
		"\n  },\n  \"dailySummaries\": {\n" + strings.Join(summaries, ",\n") +
		"\n  },\n" + summarySchema + "\n}"
}

const summarySchema = `  "summary": {
    "total_calories_kcal": number,
    "total_protein_g": number,
    "total_carbs_g": number,
    "total_fat_g": number
  }`

// mealNoun is the word used for a slot inside schema placeholders
func mealNoun(slot string) string {
	if slot == domain.MealSnacks {
		return "snack"
	}
	return slot
}
