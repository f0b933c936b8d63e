package kitchen

import (
	"fmt"
	"strings"
	"unicode"
)

// Recipe is one entry of the recipe book.
type Recipe struct {
	Key          string
	Title        string
	Ingredients  []string
	Instructions []string
}

// Text renders the recipe as the block returned to the model.
func (r Recipe) Text() string {
	var sb strings.Builder
	sb.WriteString(r.Title)
	sb.WriteString("\n\nIngrédients:\n")
	for _, ing := range r.Ingredients {
		sb.WriteString("- ")
		sb.WriteString(ing)
		sb.WriteByte('\n')
	}
	sb.WriteString("\nInstructions:\n")
	for i, step := range r.Instructions {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, step)
	}
	return sb.String()
}

var recipes = []Recipe{
	{
		Key:   "omelette",
		Title: "Omelette aux champignons et fromage",
		Ingredients: []string{
			"3 œufs",
			"100g de champignons",
			"50g de fromage râpé",
			"20g de beurre",
			"Sel, poivre",
		},
		Instructions: []string{
			"Émincer les champignons et les faire revenir dans du beurre",
			"Battre les œufs avec sel et poivre",
			"Verser les œufs dans la poêle avec les champignons",
			"Parsemer de fromage râpé",
			"Cuire 3-4 minutes, plier et servir",
		},
	},
	{
		Key:   "poulet",
		Title: "Poulet à la crème et champignons",
		Ingredients: []string{
			"600g de poulet",
			"200g de champignons",
			"200ml de crème fraîche",
			"1 oignon",
			"2 gousses d'ail",
			"30g de beurre",
			"Sel, poivre, herbes de Provence",
		},
		Instructions: []string{
			"Couper le poulet en morceaux",
			"Faire revenir l'oignon et l'ail dans le beurre",
			"Ajouter le poulet et faire dorer",
			"Ajouter les champignons émincés",
			"Verser la crème, assaisonner",
			"Mijoter 20 minutes",
		},
	},
	{
		Key:   "gratin",
		Title: "Gratin de courgettes",
		Ingredients: []string{
			"2 courgettes",
			"200ml de crème fraîche",
			"100g de fromage râpé",
			"2 gousses d'ail",
			"Sel, poivre, muscade",
		},
		Instructions: []string{
			"Couper les courgettes en rondelles",
			"Disposer dans un plat à gratin",
			"Mélanger crème, ail haché, sel, poivre, muscade",
			"Verser sur les courgettes",
			"Parsemer de fromage",
			"Cuire 30 min à 180°C",
		},
	},
}

// FindRecipe looks up a recipe by dish name, ignoring case. A recipe matches when the name
// appears in its key or title ("omelette", "Poulet à la crème"), or when its key is a word of the
// name and every word after it is also in the title ("je veux du poulet", "une omelette aux
// champignons"). A word after the key that the title lacks names another dish, so "Omelette
// surprise" is not matched.
func FindRecipe(dish string) (Recipe, bool) {
	needle := strings.ToLower(strings.TrimSpace(dish))
	if needle == "" {
		return Recipe{}, false
	}
	for _, r := range recipes {
		if strings.Contains(r.Key, needle) || strings.Contains(strings.ToLower(r.Title), needle) {
			return r, true
		}
	}

	words := splitWords(needle)
	for _, r := range recipes {
		if namesRecipe(words, r) {
			return r, true
		}
	}
	return Recipe{}, false
}

func namesRecipe(words []string, r Recipe) bool {
	title := make(map[string]bool)
	for _, w := range splitWords(strings.ToLower(r.Title)) {
		title[w] = true
	}
	for i, w := range words {
		if w != r.Key {
			continue
		}
		qualified := true
		for _, rest := range words[i+1:] {
			if !title[rest] {
				qualified = false
				break
			}
		}
		if qualified {
			return true
		}
	}
	return false
}

func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(c rune) bool {
		return !unicode.IsLetter(c) && !unicode.IsDigit(c)
	})
}

// RecipeText returns the recipe block for dish, or the "no recipe" message naming dish verbatim.
func RecipeText(dish string) string {
	if r, ok := FindRecipe(dish); ok {
		return r.Text()
	}
	return fmt.Sprintf("Désolé, je n'ai pas de recette pour '%s' dans ma base de données.", dish)
}
