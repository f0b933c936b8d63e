// Package crew composes ChefBot's manager and specialist agents.
//
// Each specialist is a manual tool loop over a subset of the kitchen tools. The manager is a
// manual tool loop whose only tools are the delegation tools ask_nutritionist, ask_chef and
// ask_budget; calling one runs the matching specialist on the given task and returns its answer
// as the tool result. A specialist that fails returns its error text instead, and the manager
// carries on.
//
//	c, err := crew.New(model)
//	answer, err := c.Run(ctx, crew.ComplexQuery)
package crew

import (
	"context"
	"fmt"

	"github.com/rickchristie/chefbot"
	"github.com/rickchristie/chefbot/agents/manual"
	"github.com/rickchristie/chefbot/toolchain"
	"github.com/rs/zerolog"
)

const (
	// SpecialistMaxIterations bounds each specialist run.
	SpecialistMaxIterations = 5

	// ManagerMaxIterations bounds the manager run.
	ManagerMaxIterations = 10
)

// Specialist is one delegate of the manager.
type Specialist struct {
	// Tool is the delegation tool the manager calls to reach this specialist.
	Tool toolchain.ID

	// Name identifies the specialist in traces.
	Name string

	// Description is sent to the manager as the delegation tool description.
	Description string

	Agent *manual.Agent
}

// Crew is a manager agent plus its specialists.
type Crew struct {
	manager     *manual.Agent
	specialists []*Specialist
	sink        chefbot.Sink
}

// New wires the three specialists and the manager over model.
func New(model chefbot.Model) (*Crew, error) {
	kitchen := toolchain.Kitchen()

	specs := []struct {
		tool        toolchain.ID
		name        string
		description string
		prompt      string
		tools       []toolchain.ID
	}{
		{
			tool: toolchain.AskNutritionist,
			name: "nutritionist",
			description: "Nutritionniste expert qui vérifie l'équilibre nutritionnel et les allergènes. " +
				"Peut recommander des alternatives pour les allergies et intolérances.",
			prompt: nutritionistPrompt,
			tools:  []toolchain.ID{toolchain.CheckDietaryInfo},
		},
		{
			tool:        toolchain.AskChef,
			name:        "chef_agent",
			description: "Chef cuisinier expert qui propose des recettes et consulte le frigo.",
			prompt:      chefPrompt,
			tools:       []toolchain.ID{toolchain.CheckFridge, toolchain.GetRecipe},
		},
		{
			tool:        toolchain.AskBudget,
			name:        "budget_agent",
			description: "Expert en gestion de budget qui calcule les coûts et consulte le menu du restaurant.",
			prompt:      budgetPrompt,
			tools:       []toolchain.ID{toolchain.Calculate, toolchain.MenuDB},
		},
	}

	c := &Crew{}
	delegations := make([]*toolchain.Tool, 0, len(specs))
	for _, s := range specs {
		registry, err := kitchen.Subset(s.tools...)
		if err != nil {
			return nil, fmt.Errorf("crew: %s registry: %w", s.name, err)
		}
		agent := manual.NewAgent(model, registry).
			WithSystemPrompt(s.prompt).
			WithMaxIterations(SpecialistMaxIterations).
			WithTrace(s.name)
		sp := &Specialist{Tool: s.tool, Name: s.name, Description: s.description, Agent: agent}
		c.specialists = append(c.specialists, sp)
		delegations = append(delegations, toolchain.DelegationTool(s.tool, s.description,
			func(ctx context.Context, task string) (string, error) {
				return sp.Agent.Run(ctx, task)
			}))
	}

	registry, err := toolchain.NewRegistry(delegations...)
	if err != nil {
		return nil, fmt.Errorf("crew: manager registry: %w", err)
	}
	c.manager = manual.NewAgent(model, registry).
		WithSystemPrompt(ManagerPrompt).
		WithMaxIterations(ManagerMaxIterations).
		WithTrace("chefbot_manager", chefbot.TagChefBot, "Partie 6")
	return c, nil
}

// WithSink sets the sink of the manager and every specialist.
func (c *Crew) WithSink(sink chefbot.Sink) *Crew {
	c.sink = sink
	c.manager.WithSink(sink)
	for _, s := range c.specialists {
		s.Agent.WithSink(sink)
	}
	return c
}

// WithLogger sets the logger of the manager and every specialist, tagged with the agent name.
func (c *Crew) WithLogger(logger zerolog.Logger) *Crew {
	c.manager.WithLogger(logger.With().Str("agent", "chefbot_manager").Logger())
	for _, s := range c.specialists {
		s.Agent.WithLogger(logger.With().Str("agent", s.Name).Logger())
	}
	return c
}

// Manager returns the manager agent.
func (c *Crew) Manager() *manual.Agent {
	return c.manager
}

// Specialists returns the specialists in delegation order.
func (c *Crew) Specialists() []*Specialist {
	return c.specialists
}

// Run sends query to the manager and returns its final answer.
func (c *Crew) Run(ctx context.Context, query string) (string, error) {
	res, err := c.RunDetailed(ctx, query)
	if err != nil {
		return "", err
	}
	return res.Answer, nil
}

// RunDetailed is Run returning the manager's full Result; its ToolCalls are the delegations.
func (c *Crew) RunDetailed(ctx context.Context, query string) (*manual.Result, error) {
	names := make([]string, len(c.specialists))
	for i, s := range c.specialists {
		names[i] = s.Name
	}

	ctx, info := chefbot.WithTrace(ctx, "multi_agent_system", chefbot.TagChefBot, "Partie 6")
	chefbot.Emit(ctx, c.sink, chefbot.TraceStart{
		Name: info.Name,
		Tags: info.Tags,
		Metadata: map[string]any{
			"type":    "multi_agent_system",
			"partie":  "Partie 6",
			"agents":  names,
			"manager": "chefbot_manager",
			"query":   query,
		},
	})

	res, err := c.manager.RunDetailed(ctx, query)
	if err != nil {
		chefbot.Logf(ctx, c.sink, chefbot.LogLevelError, "crew run failed: %v", err)
		return res, fmt.Errorf("crew: %w", err)
	}
	return res, nil
}
