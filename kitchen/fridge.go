package kitchen

var fridge = []string{
	"oeufs (6)",
	"lait (1L)",
	"beurre (200g)",
	"fromage râpé (150g)",
	"tomates (4)",
	"courgettes (2)",
	"carottes (5)",
	"oignons (3)",
	"ail (1 tête)",
	"poulet (600g)",
	"crème fraîche (200ml)",
	"champignons (250g)",
	"épinards frais (300g)",
}

// Fridge returns the ingredients currently in the fridge, with quantities, in shelf order.
// The returned slice is a copy.
func Fridge() []string {
	out := make([]string, len(fridge))
	copy(out, fridge)
	return out
}
