// Package toolchain is ChefBot's Tool Registry.
//
// # Overview
//
// A Registry is a closed set of tools built at startup. It is responsible for:
//  1. Describing its tools to the model ([Registry.LLMTools])
//  2. Decoding and validating the JSON argument string of each tool call
//  3. Invoking the tool body with typed input
//  4. Formatting the output as the text the model receives
//
// # Error Degradation
//
// [Registry.Dispatch] never returns an error. Every failure becomes the text of the
// [ToolResult], so the loop driving the model can feed it back as a tool message:
//
//   - unknown tool name: "Erreur: outil 'teleport_food' inconnu"
//   - malformed JSON, unknown or missing keys, wrong types, a failing or panicking tool body:
//     "Erreur lors de l'exécution de get_recipe: <message>"
//
// [ToolResult.Err] keeps the typed error ([chefbot.ErrUnknownTool] or
// [chefbot.ErrToolExecution]) for callers that inspect it with errors.Is.
//
// # Output Formatting
//
// String outputs are returned as-is. Slices and other values are JSON encoded without
// escaping non-ASCII characters, so ["oeufs (6)", "épinards frais (300g)"] reaches the model
// verbatim.
//
// # Example Usage
//
//	type recipeInput struct {
//	    DishName string `json:"dish_name"`
//	}
//
//	tool := toolchain.NewTool(
//	    toolchain.GetRecipe,
//	    "Retourne une recette détaillée pour un plat spécifique",
//	    schema.Object(map[string]*schema.Property{
//	        "dish_name": schema.String("Le nom du plat pour lequel obtenir la recette"),
//	    }, "dish_name"),
//	    func(ctx context.Context, in recipeInput) (string, error) {
//	        return kitchen.RecipeText(in.DishName), nil
//	    },
//	)
//
//	reg := toolchain.MustRegistry(tool)
//	res := reg.Dispatch(ctx, toolchain.Call{ID: "call_1", Name: "get_recipe",
//	    Arguments: `{"dish_name": "omelette"}`})
package toolchain
