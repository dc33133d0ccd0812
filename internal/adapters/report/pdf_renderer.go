package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/rithick-11/food-recommendation-system/internal/core/domain"
	"github.com/rithick-11/food-recommendation-system/internal/core/ports"
)

const fontName = "Arial"

var mealTitles = map[string]string{
	domain.MealBreakfast: "Breakfast",
	domain.MealLunch:     "Lunch",
	domain.MealSnacks:    "Snacks",
	domain.MealDinner:    "Dinner",
}

// PDFRenderer renders meal plans as A4 documents
type PDFRenderer struct{}

// NewPDFRenderer creates a new PDF renderer
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Render writes the plan, preceded by the patient's profile when one is given
func (r *PDFRenderer) Render(plan *domain.MealPlan, profile *domain.PatientProfile) ([]byte, error) {
	if plan == nil {
		return nil, fmt.Errorf("no meal plan to render")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	// Core fonts are cp1252; translate so accented food names survive
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Meal Plan", true)
	pdf.AddPage()

	pdf.SetFont(fontName, "B", 16)
	pdf.Cell(0, 10, "Personalized Meal Plan")
	pdf.Ln(10)

	pdf.SetFont(fontName, "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", plan.GeneratedAt.Format("2006-01-02 15:04 MST")))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Days: %d", plan.DayCount))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Source: %s", sourceLabel(plan.Source)))
	pdf.Ln(10)

	if profile != nil {
		drawProfile(pdf, tr, profile.Descriptor)
	}

	for day := 1; day <= plan.DayCount; day++ {
		meals, summary, ok := plan.Day(day)
		if !ok {
			return nil, fmt.Errorf("meal plan is missing day %d", day)
		}
		if plan.IsMultiDay() {
			pdf.SetFont(fontName, "B", 14)
			pdf.Cell(0, 8, fmt.Sprintf("Day %d", day))
			pdf.Ln(9)
		}
		drawDay(pdf, tr, meals)
		drawSummary(pdf, "Daily total", summary)
	}

	if plan.IsMultiDay() {
		drawSummary(pdf, fmt.Sprintf("Overall total (%d days)", plan.DayCount), plan.Summary)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return buf.Bytes(), nil
}

func drawProfile(pdf *gofpdf.Fpdf, tr func(string) string, p domain.ProfileDescriptor) {
	pdf.SetFont(fontName, "B", 13)
	pdf.Cell(0, 8, "Patient Profile")
	pdf.Ln(8)

	pdf.SetFont(fontName, "", 10)
	lines := []string{
		fmt.Sprintf("Age: %d   Height: %.0f cm   Weight: %.1f kg", p.Age, p.HeightCM, p.WeightKG),
		"Condition: " + p.DiseaseCondition,
		fmt.Sprintf("Preference: %s   Activity: %s   Goal: %s", p.MealPreference, p.ActivityLevel, p.HealthGoal),
	}
	if p.BloodPressure != "" {
		lines = append(lines, "Blood pressure: "+p.BloodPressure)
	}
	if len(p.Allergies) > 0 {
		lines = append(lines, "Allergies: "+strings.Join(p.Allergies, ", "))
	}
	if len(p.DislikedItems) > 0 {
		lines = append(lines, "Dislikes: "+strings.Join(p.DislikedItems, ", "))
	}
	if loc := locationText(p.Location); loc != "" {
		lines = append(lines, "Location: "+loc)
	}

	for _, line := range lines {
		pdf.MultiCell(0, 5, tr(line), "", "L", false)
	}
	pdf.Ln(6)
}

func drawDay(pdf *gofpdf.Fpdf, tr func(string) string, meals domain.DayMeals) {
	for _, slot := range domain.MealSlots {
		entry, _ := meals.Meal(slot)

		pdf.SetFont(fontName, "B", 11)
		pdf.Cell(0, 6, mealTitles[slot])
		pdf.Ln(6)

		pdf.SetFont(fontName, "", 10)
		pdf.MultiCell(0, 5, tr(entry.Items), "", "L", false)

		pdf.SetFont(fontName, "", 8)
		pdf.CellFormat(30, 5, fmt.Sprintf("%.0f kcal", entry.CaloriesKcal), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 5, fmt.Sprintf("Carbs %.0f g", entry.CarbsG), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 5, fmt.Sprintf("Protein %.0f g", entry.ProteinG), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 5, fmt.Sprintf("Fat %.0f g", entry.FatG), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 5, fmt.Sprintf("Fiber %.0f g", entry.FiberG), "1", 1, "C", false, 0, "")
		pdf.Ln(3)
	}
}

func drawSummary(pdf *gofpdf.Fpdf, title string, s domain.NutritionSummary) {
	pdf.SetFont(fontName, "B", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("%s: %.0f kcal, protein %.0f g, carbs %.0f g, fat %.0f g",
		title, s.TotalCaloriesKcal, s.TotalProteinG, s.TotalCarbsG, s.TotalFatG), "T", 1, "L", false, 0, "")
	pdf.Ln(6)
}

func sourceLabel(source domain.Source) string {
	if source == domain.SourceBackend {
		return "AI generated"
	}
	return "Standard template"
}

func locationText(l domain.Location) string {
	var parts []string
	for _, p := range []string{l.City, l.State, l.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

var _ ports.MealPlanRenderer = (*PDFRenderer)(nil)
