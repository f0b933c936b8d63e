package evaluation

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/rickchristie/chefbot"
	"github.com/rickchristie/chefbot/extract"
	"github.com/rs/zerolog"
	"github.com/tmc/langchaingo/llms"
)

// JudgeSystemPrompt is the persona of every judge call.
const JudgeSystemPrompt = "Tu es un évaluateur objectif qui ne répond qu'en JSON."

// NoConstraints replaces an empty question in judge prompts.
const NoConstraints = "No constraints provided"

//go:embed judge_*.tmpl
var judgeFS embed.FS

var judgeTemplates = template.Must(template.ParseFS(judgeFS, "judge_*.tmpl"))

// Rubric is a set of criteria the judge scores from 0 to 1.
type Rubric struct {
	Name     string
	Criteria []string
	template string
}

var (
	// MenuRubric scores a weekly menu.
	MenuRubric = Rubric{
		Name:     "menu",
		Criteria: []string{"pertinence", "creativite", "praticite"},
		template: "judge_menu.tmpl",
	}

	// MultiAgentRubric scores an event menu.
	MultiAgentRubric = Rubric{
		Name:     "multiagent",
		Criteria: []string{"respect_contraintes", "completude", "budget", "coherence", "faisabilite"},
		template: "judge_multiagent.tmpl",
	}
)

// Verdict is a parsed judge reply.
type Verdict struct {
	Scores  map[string]float64
	Comment string
}

// Judge asks a model to grade an output against a Rubric.
type Judge struct {
	model  chefbot.Model
	rubric Rubric
	sink   chefbot.Sink
	logger zerolog.Logger
}

// NewJudge creates a Judge.
func NewJudge(model chefbot.Model, rubric Rubric) *Judge {
	return &Judge{model: model, rubric: rubric, logger: zerolog.Nop()}
}

// WithSink sets the observability sink.
func (j *Judge) WithSink(sink chefbot.Sink) *Judge {
	j.sink = sink
	return j
}

// WithLogger sets the logger.
func (j *Judge) WithLogger(logger zerolog.Logger) *Judge {
	j.logger = logger
	return j
}

// Rubric returns the rubric the judge scores.
func (j *Judge) Rubric() Rubric {
	return j.rubric
}

// Score grades output. A reply that is not a JSON object gives zero on every criterion and the
// comment "parse_error: <err>"; only a failed model call returns an error.
func (j *Judge) Score(
	ctx context.Context,
	question, output string,
	expected map[string]any,
) (Verdict, error) {
	if strings.TrimSpace(question) == "" {
		question = NoConstraints
	}
	expectedJSON, err := marshalCompact(expected)
	if err != nil {
		return Verdict{}, err
	}

	var buf bytes.Buffer
	err = judgeTemplates.ExecuteTemplate(&buf, j.rubric.template, map[string]string{
		"Question": question,
		"Expected": expectedJSON,
		"Output":   output,
	})
	if err != nil {
		return Verdict{}, fmt.Errorf("evaluation: judge prompt: %w", err)
	}

	reply, err := chefbot.GenerateText(ctx, j.model, JudgeSystemPrompt, buf.String(), llms.WithTemperature(0))
	if err != nil {
		return Verdict{}, fmt.Errorf("evaluation: judge: %w", err)
	}
	return j.parse(ctx, reply), nil
}

func (j *Judge) parse(ctx context.Context, reply string) Verdict {
	v := Verdict{Scores: make(map[string]float64, len(j.rubric.Criteria))}
	for _, c := range j.rubric.Criteria {
		v.Scores[c] = 0
	}

	obj, err := extract.Object(reply)
	if err != nil {
		j.logger.Warn().Err(err).Str("rubric", j.rubric.Name).Msg("judge reply not parsed")
		chefbot.Logf(ctx, j.sink, chefbot.LogLevelWarning, "judge reply not parsed: %v", err)
		v.Comment = "parse_error: " + err.Error()
		return v
	}
	for _, c := range j.rubric.Criteria {
		v.Scores[c] = toScore(obj[c])
	}
	if comment, ok := obj["comment"]; ok && comment != nil {
		v.Comment = fmt.Sprint(comment)
	}
	return v
}

// Name implements Evaluator.
func (j *Judge) Name() string { return "judge_" + j.rubric.Name }

// Evaluate implements Evaluator: one Evaluation per criterion, the verdict comment on each.
func (j *Judge) Evaluate(ctx context.Context, item Item, output string) ([]Evaluation, error) {
	v, err := j.Score(ctx, item.Input.Constraints, output, item.ExpectedOutput)
	if err != nil {
		return nil, err
	}
	out := make([]Evaluation, 0, len(j.rubric.Criteria))
	for _, c := range j.rubric.Criteria {
		out = append(out, Evaluation{Name: c, Value: v.Scores[c], Comment: v.Comment})
	}
	return out, nil
}

func toScore(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err == nil {
			return f
		}
	case bool:
		if n {
			return 1
		}
	}
	return 0
}

func marshalCompact(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
