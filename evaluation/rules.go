package evaluation

import (
	"context"
	"strings"
)

// RuleScores is the outcome of the keyword rules on one output.
type RuleScores struct {
	// AvoidScore is 0 when any must_avoid term appears in the output, 1 otherwise.
	AvoidScore      float64  `json:"avoid_score"`
	AvoidViolations []string `json:"avoid_violations,omitempty"`

	// IncludeRatio is the fraction of must_include terms present, 1 when none are listed.
	IncludeRatio  float64  `json:"include_ratio"`
	IncludedItems []string `json:"included_items,omitempty"`

	// Overall is the mean of AvoidScore and IncludeRatio.
	Overall float64 `json:"overall"`
}

// ScoreRules matches the must_avoid and must_include terms of expected against output,
// case-insensitively, as substrings.
func ScoreRules(output string, expected map[string]any) RuleScores {
	item := Item{ExpectedOutput: expected}
	text := strings.ToLower(output)

	scores := RuleScores{AvoidScore: 1, IncludeRatio: 1}

	for _, term := range item.Strings("must_avoid") {
		if strings.Contains(text, strings.ToLower(term)) {
			scores.AvoidViolations = append(scores.AvoidViolations, term)
		}
	}
	if len(scores.AvoidViolations) > 0 {
		scores.AvoidScore = 0
	}

	if include := item.Strings("must_include"); len(include) > 0 {
		for _, term := range include {
			if strings.Contains(text, strings.ToLower(term)) {
				scores.IncludedItems = append(scores.IncludedItems, term)
			}
		}
		scores.IncludeRatio = float64(len(scores.IncludedItems)) / float64(len(include))
	}

	scores.Overall = (scores.AvoidScore + scores.IncludeRatio) / 2
	return scores
}

// RuleEvaluator reports avoid_score, include_ratio and overall_rule.
type RuleEvaluator struct{}

// Name implements Evaluator.
func (RuleEvaluator) Name() string { return "rules" }

// Evaluate implements Evaluator.
func (RuleEvaluator) Evaluate(_ context.Context, item Item, output string) ([]Evaluation, error) {
	s := ScoreRules(output, item.ExpectedOutput)
	return []Evaluation{
		{Name: "avoid_score", Value: s.AvoidScore, Comment: strings.Join(s.AvoidViolations, ", ")},
		{Name: "include_ratio", Value: s.IncludeRatio, Comment: strings.Join(s.IncludedItems, ", ")},
		{Name: "overall_rule", Value: s.Overall},
	}, nil
}
