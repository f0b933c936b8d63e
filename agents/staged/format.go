package staged

// MenuFormat selects the shape the synthesis stage asks for.
type MenuFormat struct {
	// Name identifies the format and prefixes its synthesis templates.
	Name string

	// Kind describes the task in trace metadata.
	Kind string

	// Part is the trace tag of the format.
	Part string

	task   string
	taskOf string
}

var (
	// WeeklyMenu asks for {"week_menu": {"lundi": {"dejeuner": ..., "diner": ...}, ...}}.
	WeeklyMenu = MenuFormat{
		Name:   "weekly_menu",
		Kind:   "planifier le menu hebdomadaire",
		Part:   "Partie 2",
		task:   "un menu hebdomadaire",
		taskOf: "d'un menu hebdomadaire",
	}

	// EventMenu asks for {"services": [...], "menu": {...}} for a single event.
	EventMenu = MenuFormat{
		Name:   "event_menu",
		Kind:   "generate_menu",
		Part:   "Partie 7",
		task:   "un menu pour l'événement",
		taskOf: "d'un menu pour l'événement",
	}
)

// FormatByName returns the format called name ("weekly_menu" or "event_menu").
func FormatByName(name string) (MenuFormat, bool) {
	switch name {
	case WeeklyMenu.Name, "weekly", "week":
		return WeeklyMenu, true
	case EventMenu.Name, "event":
		return EventMenu, true
	}
	return MenuFormat{}, false
}

func (f MenuFormat) systemTemplate() string { return f.Name + "_system" }
func (f MenuFormat) userTemplate() string   { return f.Name + "_user" }
