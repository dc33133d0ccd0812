package services

import (
	"strings"

	"github.com/rithick-11/food-recommendation-system/internal/core/domain"
)

// templateFamily maps meal slot -> preference -> base meal (calories unset)
type templateFamily map[string]map[domain.MealPreference]domain.MealEntry

func tmpl(items string, carbs, protein, fat, fiber float64) domain.MealEntry {
	return domain.MealEntry{Items: items, CarbsG: carbs, ProteinG: protein, FatG: fat, FiberG: fiber}
}

var indianTemplates = templateFamily{
	domain.MealBreakfast: {
		domain.MealPreferenceVegetarian:    tmpl("2 whole wheat parathas with 1 cup curd, 1 tbsp pickle, 1 glass buttermilk", 60, 18, 15, 8),
		domain.MealPreferenceNonVegetarian: tmpl("2 egg parathas with mint chutney, 1 cup masala chai, 1 banana", 55, 22, 18, 6),
		domain.MealPreferenceMixed:         tmpl("1 bowl upma with vegetables, 1 cup sambar, 1 coconut chutney", 50, 15, 12, 7),
	},
	domain.MealLunch: {
		domain.MealPreferenceVegetarian:    tmpl("2 rotis, 1 cup dal, mixed vegetable curry, rice, pickle, curd", 75, 20, 18, 12),
		domain.MealPreferenceNonVegetarian: tmpl("2 rotis, chicken curry, jeera rice, mixed vegetables, raita", 70, 35, 20, 8),
		domain.MealPreferenceMixed:         tmpl("Vegetable biryani with raita, boiled egg, papad, pickle", 80, 25, 15, 10),
	},
	domain.MealSnacks: {
		domain.MealPreferenceVegetarian:    tmpl("1 cup masala chai with 2 whole wheat biscuits, handful of nuts", 25, 8, 16, 4),
		domain.MealPreferenceNonVegetarian: tmpl("Chicken tikka (3 pieces) with mint chutney, 1 cup green tea", 15, 20, 12, 2),
		domain.MealPreferenceMixed:         tmpl("1 bowl sprouts chaat with chutneys, 1 glass fresh lime water", 30, 12, 8, 6),
	},
	domain.MealDinner: {
		domain.MealPreferenceVegetarian:    tmpl("2 rotis, palak paneer, dal, rice, cucumber salad", 65, 22, 18, 12),
		domain.MealPreferenceNonVegetarian: tmpl("2 rotis, fish curry, rice, mixed vegetables, onion salad", 60, 30, 20, 8),
		domain.MealPreferenceMixed:         tmpl("Khichdi with ghee, curd, pickle, roasted papad", 55, 18, 15, 8),
	},
}

var mediterraneanTemplates = templateFamily{
	domain.MealBreakfast: {
		domain.MealPreferenceVegetarian:    tmpl("Greek yogurt with honey, walnuts, fresh figs, whole grain toast", 45, 20, 18, 8),
		domain.MealPreferenceNonVegetarian: tmpl("Mediterranean omelet with feta, tomatoes, olives, whole grain bread", 35, 25, 22, 6),
		domain.MealPreferenceMixed:         tmpl("Avocado toast with tomatoes, olive oil, balsamic, fresh herbs", 40, 12, 20, 10),
	},
	domain.MealLunch: {
		domain.MealPreferenceVegetarian:    tmpl("Greek salad with chickpeas, whole wheat pita, hummus, olive tapenade", 60, 18, 25, 12),
		domain.MealPreferenceNonVegetarian: tmpl("Grilled fish with quinoa, roasted vegetables, tzatziki sauce", 45, 35, 18, 8),
		domain.MealPreferenceMixed:         tmpl("Mediterranean bowl with falafel, tabbouleh, hummus, pita", 65, 20, 22, 10),
	},
	domain.MealSnacks: {
		domain.MealPreferenceVegetarian:    tmpl("Mixed olives, feta cheese, whole grain crackers, herbal tea", 20, 8, 15, 4),
		domain.MealPreferenceNonVegetarian: tmpl("Prosciutto with melon, handful of almonds, sparkling water", 15, 12, 10, 3),
		domain.MealPreferenceMixed:         tmpl("Hummus with vegetable sticks, whole grain pita, green tea", 25, 8, 12, 6),
	},
	domain.MealDinner: {
		domain.MealPreferenceVegetarian:    tmpl("Ratatouille with quinoa, fresh herbs, olive oil, mixed greens", 50, 15, 18, 12),
		domain.MealPreferenceNonVegetarian: tmpl("Grilled chicken with Mediterranean vegetables, brown rice, olive oil", 45, 35, 20, 8),
		domain.MealPreferenceMixed:         tmpl("Seafood paella with vegetables, saffron, olive oil, lemon", 55, 28, 15, 6),
	},
}

var internationalTemplates = templateFamily{
	domain.MealBreakfast: {
		domain.MealPreferenceVegetarian:    tmpl("1 cup oatmeal with banana, walnuts, low-fat milk, honey", 65, 15, 12, 8),
		domain.MealPreferenceNonVegetarian: tmpl("2 scrambled eggs, whole wheat toast, fresh berries, low-fat yogurt", 45, 25, 15, 6),
		domain.MealPreferenceMixed:         tmpl("Greek yogurt with granola, sliced apple, almond butter", 55, 20, 18, 7),
	},
	domain.MealLunch: {
		domain.MealPreferenceVegetarian:    tmpl("Mixed salad with chickpeas, quinoa, vegetables, olive oil dressing, whole wheat pita", 75, 20, 18, 12),
		domain.MealPreferenceNonVegetarian: tmpl("Grilled chicken breast, brown rice, steamed broccoli, mixed vegetables", 65, 35, 12, 8),
		domain.MealPreferenceMixed:         tmpl("Turkey and avocado wrap with whole wheat tortilla, side salad with vinaigrette", 55, 28, 16, 9),
	},
	domain.MealSnacks: {
		domain.MealPreferenceVegetarian:    tmpl("Apple with peanut butter, herbal tea", 25, 8, 16, 5),
		domain.MealPreferenceNonVegetarian: tmpl("Hard-boiled egg, whole grain toast, vegetable juice", 20, 10, 8, 3),
		domain.MealPreferenceMixed:         tmpl("Mixed nuts and dried fruits, string cheese", 22, 9, 14, 4),
	},
	domain.MealDinner: {
		domain.MealPreferenceVegetarian:    tmpl("Lentil curry, brown rice, sautéed spinach, whole grain bread", 70, 22, 15, 14),
		domain.MealPreferenceNonVegetarian: tmpl("Baked salmon, roasted sweet potato, steamed asparagus, mixed green salad", 45, 40, 20, 8),
		domain.MealPreferenceMixed:         tmpl("Lean beef stir-fry with vegetables, quinoa, steamed edamame", 55, 35, 18, 10),
	},
}

var (
	indianStateKeywords       = []string{"maharashtra", "gujarat", "punjab"}
	mediterraneanCountryWords = []string{"italy", "greece", "spain"}
)

// selectTemplateFamily picks the cuisine family by a coarse location match
func selectTemplateFamily(loc domain.Location) templateFamily {
	country := strings.ToLower(loc.Country)
	state := strings.ToLower(loc.State)

	if strings.Contains(country, "india") || containsAny(state, indianStateKeywords) {
		return indianTemplates
	}
	if containsAny(country, mediterraneanCountryWords) {
		return mediterraneanTemplates
	}
	return internationalTemplates
}

// baseMeal returns the template of a slot for a preference, defaulting to Mixed
func (f templateFamily) baseMeal(slot string, pref domain.MealPreference) domain.MealEntry {
	bySlot := f[slot]
	if meal, ok := bySlot[pref]; ok {
		return meal
	}
	return bySlot[domain.MealPreferenceMixed]
}

// mealVariations returns the textual variants cycled across the days of a plan
func mealVariations(base domain.MealEntry) []domain.MealEntry {
	portioned := base
	portioned.Items = strings.ReplaceAll(strings.ReplaceAll(base.Items, "1 cup", "1.5 cups"), "2 ", "1 ")

	seasoned := base
	seasoned.Items = base.Items + " with herbs and spices"

	return []domain.MealEntry{base, portioned, seasoned}
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
