package toolchain

import (
	"context"

	"github.com/rickchristie/chefbot/kitchen"
	"github.com/rickchristie/chefbot/schema"
)

type recipeInput struct {
	DishName string `json:"dish_name"`
}

type dietaryInput struct {
	Ingredient string `json:"ingredient"`
}

type menuInput struct {
	Category           *string  `json:"category"`
	MaxPrice           *float64 `json:"max_price"`
	DietaryRestriction *string  `json:"dietary_restriction"`
}

type calculateInput struct {
	Expression string `json:"expression"`
}

// CheckFridgeTool lists the fridge contents.
func CheckFridgeTool() *Tool {
	return NewTool(
		CheckFridge,
		"Consulte le contenu du frigo et retourne la liste des ingrédients disponibles",
		schema.Object(nil),
		func(context.Context, struct{}) ([]string, error) {
			return kitchen.Fridge(), nil
		},
	)
}

// GetRecipeTool returns a recipe by dish name.
func GetRecipeTool() *Tool {
	return NewTool(
		GetRecipe,
		"Retourne une recette détaillée pour un plat spécifique",
		schema.Object(map[string]*schema.Property{
			"dish_name": schema.String("Le nom du plat pour lequel obtenir la recette"),
		}, "dish_name"),
		func(_ context.Context, in recipeInput) (string, error) {
			return kitchen.RecipeText(in.DishName), nil
		},
	)
}

// CheckDietaryInfoTool returns nutrition facts and allergens of an ingredient.
func CheckDietaryInfoTool() *Tool {
	return NewTool(
		CheckDietaryInfo,
		"Retourne les informations nutritionnelles et allergéniques d'un ingrédient",
		schema.Object(map[string]*schema.Property{
			"ingredient": schema.String("Le nom de l'ingrédient à analyser"),
		}, "ingredient"),
		func(_ context.Context, in dietaryInput) (string, error) {
			return kitchen.DietaryInfo(in.Ingredient), nil
		},
	)
}

// MenuDBTool searches the restaurant menu.
func MenuDBTool() *Tool {
	return NewTool(
		MenuDB,
		"Consulte la base de données des plats du restaurant pour trouver des plats selon des "+
			"critères (catégorie, prix maximum, restrictions alimentaires).",
		schema.Object(map[string]*schema.Property{
			"category": schema.String("La catégorie du plat recherché (ex: 'Entrée', 'Plat', " +
				"'Dessert'). Si non spécifié, cherche dans tout.").Nullable(),
			"max_price": schema.Number("Le prix maximum toléré pour le plat (en euros).").Nullable().Min(0),
			"dietary_restriction": schema.String("Restriction alimentaire (ex: 'vegetarien', " +
				"'sans gluten', 'vegan').").Nullable(),
		}),
		func(_ context.Context, in menuInput) (any, error) {
			f := kitchen.MenuFilter{MaxPrice: in.MaxPrice}
			if in.Category != nil {
				f.Category = *in.Category
			}
			if in.DietaryRestriction != nil {
				f.DietaryRestriction = *in.DietaryRestriction
			}
			dishes := kitchen.FindDishes(f)
			if len(dishes) == 0 {
				return kitchen.NoDishMessage, nil
			}
			return dishes, nil
		},
	)
}

// CalculateTool evaluates simple price arithmetic.
func CalculateTool() *Tool {
	return NewTool(
		Calculate,
		"Calcule le résultat d'une expression mathématique simple. Utile pour additionner les prix.",
		schema.Object(map[string]*schema.Property{
			"expression": schema.String("L'expression mathématique (ex: '20 + 15 + 8')."),
		}, "expression"),
		func(_ context.Context, in calculateInput) (string, error) {
			return kitchen.Calculate(in.Expression), nil
		},
	)
}

// Fridge returns the registry of the three fridge tools used by the manual tool loop:
// check_fridge, get_recipe and check_dietary_info.
func Fridge() *Registry {
	return MustRegistry(CheckFridgeTool(), GetRecipeTool(), CheckDietaryInfoTool())
}

// Restaurant returns the registry used by the maître d'hôtel: menu_db and calculate.
func Restaurant() *Registry {
	return MustRegistry(MenuDBTool(), CalculateTool())
}

// Kitchen returns every kitchen tool: the fridge tools followed by the restaurant tools.
func Kitchen() *Registry {
	r, err := Fridge().Merge(Restaurant())
	if err != nil {
		panic(err)
	}
	return r
}
