package kitchen

import (
	"fmt"
	"strings"
)

// NutritionFacts are per-100 units facts for one ingredient.
type NutritionFacts struct {
	Key           string
	Calories      int
	Unit          string // "100g" or "100ml"
	Proteins      string
	Fats          string
	Carbs         string
	Allergens     []string
	SuitableFor   []string
	UnsuitableFor []string
}

var nutrition = []NutritionFacts{
	{
		Key: "oeufs", Calories: 155, Unit: "100g",
		Proteins: "13g", Fats: "11g", Carbs: "1g",
		Allergens:     []string{"œufs"},
		SuitableFor:   []string{"régime protéiné"},
		UnsuitableFor: []string{"végan", "végétalien"},
	},
	{
		Key: "lait", Calories: 61, Unit: "100ml",
		Proteins: "3.2g", Fats: "3.3g", Carbs: "4.8g",
		Allergens:     []string{"lactose", "protéines laitières"},
		SuitableFor:   []string{"végétarien"},
		UnsuitableFor: []string{"végan", "intolérant au lactose"},
	},
	{
		Key: "poulet", Calories: 165, Unit: "100g",
		Proteins: "31g", Fats: "3.6g", Carbs: "0g",
		SuitableFor:   []string{"régime protéiné", "sans gluten"},
		UnsuitableFor: []string{"végan", "végétarien"},
	},
	{
		Key: "champignons", Calories: 22, Unit: "100g",
		Proteins: "3.1g", Fats: "0.3g", Carbs: "3.3g",
		SuitableFor: []string{"végan", "végétarien", "sans gluten", "régime faible en calories"},
	},
	{
		Key: "fromage", Calories: 402, Unit: "100g",
		Proteins: "25g", Fats: "33g", Carbs: "1.3g",
		Allergens:     []string{"lactose", "protéines laitières"},
		SuitableFor:   []string{"végétarien"},
		UnsuitableFor: []string{"végan", "intolérant au lactose"},
	},
	{
		Key: "courgettes", Calories: 17, Unit: "100g",
		Proteins: "1.2g", Fats: "0.3g", Carbs: "3.1g",
		SuitableFor: []string{"végan", "végétarien", "sans gluten", "régime faible en calories"},
	},
}

// FindNutrition returns the facts of the first known ingredient whose key appears in the
// lowercased ingredient name, so fridge lines such as "fromage râpé (150g)" resolve.
func FindNutrition(ingredient string) (NutritionFacts, bool) {
	lower := strings.ToLower(ingredient)
	for _, n := range nutrition {
		if strings.Contains(lower, n.Key) {
			return n, true
		}
	}
	return NutritionFacts{}, false
}

// DietaryInfo returns the nutrition block for ingredient, or the "no info" message.
func DietaryInfo(ingredient string) string {
	n, ok := FindNutrition(ingredient)
	if !ok {
		return fmt.Sprintf("Pas d'informations disponibles pour '%s'", ingredient)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\nInformations nutritionnelles pour %s:\n", ingredient)
	fmt.Fprintf(&sb, "- Calories: %d kcal/%s\n", n.Calories, n.Unit)
	fmt.Fprintf(&sb, "- Protéines: %s\n", n.Proteins)
	fmt.Fprintf(&sb, "- Lipides: %s\n", n.Fats)
	fmt.Fprintf(&sb, "- Glucides: %s\n", n.Carbs)
	fmt.Fprintf(&sb, "- Allergènes: %s\n", joinOr(n.Allergens, "Aucun"))
	fmt.Fprintf(&sb, "- Convient pour: %s\n", strings.Join(n.SuitableFor, ", "))
	fmt.Fprintf(&sb, "- Ne convient pas pour: %s\n", joinOr(n.UnsuitableFor, "Tout le monde"))
	return sb.String()
}

func joinOr(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	return strings.Join(items, ", ")
}
