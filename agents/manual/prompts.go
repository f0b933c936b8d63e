package manual

// DefaultSystemPrompt is the cooking assistant persona of the fridge loop.
const DefaultSystemPrompt = "Tu es ChefBot, un assistant culinaire intelligent. Tu as accès à des outils " +
	"pour consulter le frigo, obtenir des recettes, et vérifier les informations nutritionnelles. " +
	"Utilise-les judicieusement."

// RestaurantSystemPrompt is the maître d'hôtel persona used with toolchain.Restaurant.
const RestaurantSystemPrompt = "Tu es un maître d'hôtel expérimenté dans un restaurant gastronomique. " +
	"Ton rôle est de conseiller les clients, de prendre leur commande et de vérifier qu'elle " +
	"correspond à leurs besoins (budget, allergies). Utilise les outils à ta disposition pour " +
	"vérifier le menu et calculer les prix. Sois courtois, professionnel et précis."

// FallbackAnswer is returned when the iteration budget runs out.
const FallbackAnswer = "Désolé, je n'ai pas pu compléter la requête dans le nombre d'itérations autorisé."

// DemoQuestion is the fixed question of the command-line demonstration.
const DemoQuestion = "J'ai faim. Qu'est-ce que je peux cuisiner avec ce que j'ai dans mon frigo ? " +
	"Propose-moi une recette et dis-moi si elle convient pour un végétarien."

// RestaurantDialogue is the scripted multi-turn conversation with the maître d'hôtel.
var RestaurantDialogue = []string{
	"Bonjour, avez-vous des suggestions pour un plat à base de poisson ?",
	"Je vois, mais finalement je n'aime pas trop le saumon. Avez-vous autre chose ou sinon une " +
		"viande sans sulfites ?",
	"Parfait, je prends ça. Combien cela coûtera avec une mousse au chocolat en dessert ?",
}
