package toolchain

// ID names a tool. The set is closed: every tool ChefBot can expose is listed here.
type ID string

// Kitchen tools.
const (
	CheckFridge      ID = "check_fridge"
	GetRecipe        ID = "get_recipe"
	CheckDietaryInfo ID = "check_dietary_info"
	MenuDB           ID = "menu_db"
	Calculate        ID = "calculate"
)

// Delegation tools, exposed to the crew manager only.
const (
	AskNutritionist ID = "ask_nutritionist"
	AskChef         ID = "ask_chef"
	AskBudget       ID = "ask_budget"
)

// String returns the wire name of the tool.
func (id ID) String() string { return string(id) }
