package staged

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// DefaultStepTitle replaces an empty step title in prompts.
const DefaultStepTitle = "Étape"

// PlanStep is one abstract step of a plan.
type PlanStep struct {
	Step        int    `json:"step"`
	Title       string `json:"title"`
	Instruction string `json:"instruction"`
}

// UnmarshalJSON accepts the loose shapes models produce: a numeric or numeric-string step,
// missing fields, and non-string titles.
func (s *PlanStep) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("plan step must be an object: %w", err)
	}
	*s = PlanStep{
		Step:        ordinal(raw["step"]),
		Title:       text(raw["title"]),
		Instruction: text(raw["instruction"]),
	}
	return nil
}

func ordinal(v any) int {
	switch n := v.(type) {
	case float64:
		if n == math.Trunc(n) {
			return int(n)
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i
		}
	}
	return 0
}

func text(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}

// ExecutionResult is the raw output of one executed step.
type ExecutionResult struct {
	Step   PlanStep `json:"step"`
	Output string   `json:"output"`
}

// StepContext accumulates intermediate outputs. It is seeded with "constraints" and gains
// exactly one "step_<n>" key per executed step.
type StepContext map[string]string

// Keys returns the keys in sorted order.
func (c StepContext) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// keyFor returns a key for the step at position index that is not yet in c.
// The step's own ordinal is preferred, then its position.
func (c StepContext) keyFor(step PlanStep, index int) string {
	n := step.Step
	if n <= 0 {
		n = index + 1
	}
	key := "step_" + strconv.Itoa(n)
	if _, taken := c[key]; !taken {
		return key
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s_%d", key, i)
		if _, taken := c[candidate]; !taken {
			return candidate
		}
	}
}

// Menu is the synthesized JSON value as decoded by encoding/json: usually a map[string]any,
// but any value the model replies with (an array of days, for instance) is kept.
type Menu = any

// Run is everything a pipeline call produced.
type Run struct {
	Constraints string
	Plan        []PlanStep
	Results     []ExecutionResult
	Context     StepContext
	Menu        Menu
}

// Stage names, as reported in StageTrace events and StageError.
const (
	StagePlanning  = "planning"
	StageExecution = "execution"
	StageSynthesis = "synthese"
)

// StageError reports a plan or synthesis stage that failed on every attempt.
type StageError struct {
	Stage    string
	Attempts int

	// Raw is the model text of the last attempt, empty when the model call itself failed.
	Raw string

	Err error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("staged: %s failed after %d attempts: %v", e.Stage, e.Attempts, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// FallbackMenu turns a synthesis failure that still produced model text into
// {"menu_text": <raw text>}. It reports false for any other error.
func FallbackMenu(err error) (Menu, bool) {
	var se *StageError
	if !errors.As(err, &se) || se.Stage != StageSynthesis || se.Raw == "" {
		return nil, false
	}
	return map[string]any{"menu_text": se.Raw}, true
}
