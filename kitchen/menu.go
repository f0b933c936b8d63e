package kitchen

import "strings"

// Dish is one item of the restaurant menu.
type Dish struct {
	Name      string   `json:"name"`
	Price     float64  `json:"price"`
	PrepTime  int      `json:"prep_time"`
	Allergens []string `json:"allergens"`
	Category  string   `json:"category"`
	Tags      []string `json:"tags"`
}

// MenuFilter narrows a menu search. Zero values disable a criterion.
type MenuFilter struct {
	// Category matches case-insensitively ("Entrée", "Plat", "Dessert").
	Category string

	// MaxPrice is the highest accepted price in euros; nil means no limit.
	MaxPrice *float64

	// DietaryRestriction is free text such as "vegetarien", "vegan" or "sans gluten".
	DietaryRestriction string
}

var menu = []Dish{
	{Name: "Salade César", Price: 12, PrepTime: 10, Allergens: []string{"gluten", "lait", "oeuf"}, Category: "Entrée", Tags: []string{}},
	{Name: "Soupe à l'oignon", Price: 10, PrepTime: 15, Allergens: []string{"gluten", "lait"}, Category: "Entrée", Tags: []string{"vegetarien"}},
	{Name: "Carpaccio de Boeuf", Price: 14, PrepTime: 10, Allergens: []string{}, Category: "Entrée", Tags: []string{"sans gluten"}},
	{Name: "Escargots de Bourgogne", Price: 16, PrepTime: 15, Allergens: []string{"beurre"}, Category: "Entrée", Tags: []string{}},

	{Name: "Boeuf Bourguignon", Price: 22, PrepTime: 120, Allergens: []string{"sulfites"}, Category: "Plat", Tags: []string{"sans gluten"}},
	{Name: "Filet de Saumon", Price: 20, PrepTime: 20, Allergens: []string{"poisson"}, Category: "Plat", Tags: []string{"sans gluten"}},
	{Name: "Risotto aux Champignons", Price: 18, PrepTime: 25, Allergens: []string{"lait"}, Category: "Plat", Tags: []string{"vegetarien", "sans gluten"}},
	{Name: "Ratatouille Provencale", Price: 16, PrepTime: 30, Allergens: []string{}, Category: "Plat", Tags: []string{"vegetarien", "vegan", "sans gluten"}},
	{Name: "Poulet Rôti", Price: 19, PrepTime: 40, Allergens: []string{}, Category: "Plat", Tags: []string{"sans gluten"}},

	{Name: "Mousse au Chocolat", Price: 8, PrepTime: 10, Allergens: []string{"oeuf", "lait"}, Category: "Dessert", Tags: []string{"vegetarien", "sans gluten"}},
	{Name: "Tarte Tatin", Price: 9, PrepTime: 45, Allergens: []string{"gluten", "lait"}, Category: "Dessert", Tags: []string{"vegetarien"}},
	{Name: "Salade de Fruits", Price: 7, PrepTime: 10, Allergens: []string{}, Category: "Dessert", Tags: []string{"vegetarien", "vegan", "sans gluten"}},
	{Name: "Crème Brûlée", Price: 9, PrepTime: 60, Allergens: []string{"lait", "oeuf"}, Category: "Dessert", Tags: []string{"vegetarien", "sans gluten"}},
}

// NoDishMessage is returned to the model when a menu search has no result.
const NoDishMessage = "Aucun plat trouvé correspondant exactement aux critères. Essayez d'élargir la recherche."

// Menu returns the whole restaurant menu in card order.
func Menu() []Dish {
	return FindDishes(MenuFilter{})
}

// FindDishes returns the dishes matching every criterion of f, in card order.
//
// Dietary restrictions are matched on substrings: "vegetarien" accepts vegetarian or vegan
// dishes, "vegan" requires the vegan tag, and a gluten-free request ("sans gluten",
// "gluten free") excludes dishes listing gluten as an allergen.
func FindDishes(f MenuFilter) []Dish {
	var out []Dish
	for _, d := range menu {
		if f.Category != "" && !strings.EqualFold(d.Category, f.Category) {
			continue
		}
		if f.MaxPrice != nil && d.Price > *f.MaxPrice {
			continue
		}
		if f.DietaryRestriction != "" && !d.suits(strings.ToLower(f.DietaryRestriction)) {
			continue
		}
		out = append(out, d.clone())
	}
	return out
}

func (d Dish) suits(req string) bool {
	if strings.Contains(req, "vegetarien") || strings.Contains(req, "végétarien") {
		if !d.hasTag("vegetarien") && !d.hasTag("vegan") {
			return false
		}
	}
	if strings.Contains(req, "vegan") || strings.Contains(req, "végan") {
		if !d.hasTag("vegan") {
			return false
		}
	}
	if strings.Contains(req, "gluten") && (strings.Contains(req, "sans") || strings.Contains(req, "free")) {
		for _, a := range d.Allergens {
			if strings.EqualFold(a, "gluten") {
				return false
			}
		}
	}
	return true
}

func (d Dish) hasTag(tag string) bool {
	for _, t := range d.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

func (d Dish) clone() Dish {
	d.Allergens = append([]string{}, d.Allergens...)
	d.Tags = append([]string{}, d.Tags...)
	return d
}
