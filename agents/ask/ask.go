// Package ask answers one-shot cooking questions with ChefBot's seasonal chef persona.
//
// No tools are involved: one system message, one user message, one model call.
//
//	chef := ask.NewAgent(model)
//	answer, err := chef.Ask(ctx, ask.ExampleQuestion(chefbot.SeasonSpring), "", -1)
package ask

import (
	"context"
	"fmt"

	"github.com/rickchristie/chefbot"
	"github.com/rs/zerolog"
	"github.com/tmc/langchaingo/llms"
)

// DefaultTemperature is used when Ask receives a negative temperature.
const DefaultTemperature = 0.5

// SystemPrompt is the seasonal chef persona.
const SystemPrompt = "Tu es ChefBot, un chef cuisinier français spécialisé en cuisine de saison. " +
	"Réponds en français, propose des ingrédients de saison, techniques de cuisson, " +
	"variantes et suggestions de présentation. Sois clair, pratique et concis."

// ExampleQuestion is the demonstration question for season.
func ExampleQuestion(season chefbot.Season) string {
	return fmt.Sprintf("Que proposerais-tu pour un dîner de %s avec des asperges et du saumon ?", season)
}

// Agent is the seasonal chef. It is safe for concurrent use once configured.
type Agent struct {
	model        chefbot.Model
	timeProvider chefbot.TimeProvider
	systemPrompt string
	tags         []string
	sink         chefbot.Sink
	logger       zerolog.Logger
}

// NewAgent creates an Agent reading the current season from the system clock.
func NewAgent(model chefbot.Model) *Agent {
	return &Agent{
		model:        model,
		timeProvider: chefbot.NewDefaultTimeProvider(),
		systemPrompt: SystemPrompt,
		tags:         []string{chefbot.TagChefBot, "Partie 1"},
		logger:       zerolog.Nop(),
	}
}

// WithTimeProvider replaces the clock used to pick the default season.
func (a *Agent) WithTimeProvider(tp chefbot.TimeProvider) *Agent {
	a.timeProvider = tp
	return a
}

// WithSystemPrompt replaces the persona.
func (a *Agent) WithSystemPrompt(prompt string) *Agent {
	a.systemPrompt = prompt
	return a
}

// WithSink sets the observability sink.
func (a *Agent) WithSink(sink chefbot.Sink) *Agent {
	a.sink = sink
	return a
}

// WithLogger sets the logger.
func (a *Agent) WithLogger(logger zerolog.Logger) *Agent {
	a.logger = logger
	return a
}

// Ask sends question to the model. An empty season means the current one; a negative
// temperature means DefaultTemperature. The season is appended to the persona.
func (a *Agent) Ask(
	ctx context.Context,
	question string,
	season chefbot.Season,
	temperature float64,
) (string, error) {
	if season == "" {
		season = a.timeProvider.Season()
	}
	if temperature < 0 {
		temperature = DefaultTemperature
	}

	ctx, info := chefbot.WithTrace(ctx, "ask_chef", a.tags...)
	chefbot.Emit(ctx, a.sink, chefbot.TraceStart{
		Name: info.Name,
		Tags: info.Tags,
		Metadata: map[string]any{
			"type":        "ask_chef",
			"season":      string(season),
			"temperature": temperature,
		},
	})

	system := fmt.Sprintf("%s Saison actuelle : %s.", a.systemPrompt, season)
	answer, err := chefbot.GenerateText(ctx, a.model, system, question, llms.WithTemperature(temperature))
	if err != nil {
		a.logger.Warn().Err(err).Str("season", string(season)).Msg("ask failed")
		chefbot.Logf(ctx, a.sink, chefbot.LogLevelError, "ask_chef failed: %v", err)
		return "", fmt.Errorf("ask: %w", err)
	}
	a.logger.Debug().Str("season", string(season)).Float64("temperature", temperature).Msg("ask answered")
	return answer, nil
}
