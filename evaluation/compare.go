package evaluation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
)

// Aggregates maps a criterion to its mean over the items of one run.
type Aggregates map[string]float64

// Aggregate averages each criterion over res.Items, rounded to 4 decimals. Every item counts,
// including those whose task or evaluator failed, so missing scores weigh as 0.
func Aggregate(res *ExperimentResult, criteria []string) Aggregates {
	agg := make(Aggregates, len(criteria))
	for _, c := range criteria {
		agg[c] = 0
	}
	if res == nil || len(res.Items) == 0 {
		return agg
	}
	for _, item := range res.Items {
		for _, c := range criteria {
			if v, ok := item.Value(c); ok {
				agg[c] += v
			}
		}
	}
	n := float64(len(res.Items))
	for _, c := range criteria {
		agg[c] = round4(agg[c] / n)
	}
	return agg
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

// ModelRun is the experiment result of one model.
type ModelRun struct {
	Model  string
	Result *ExperimentResult

	// Err is set when the experiment could not run; its aggregates are all 0.
	Err error
}

// Comparison ranks models criterion by criterion.
type Comparison struct {
	Criteria   []string
	Models     []string
	Aggregates map[string]Aggregates

	// Wins counts, for the first two models, the criteria each scored strictly higher on.
	Wins map[string]int

	// Analysis is a one-line summary of the first two models.
	Analysis string
}

var errNoRuns = errors.New("evaluation: nothing to compare")

// ErrDuplicateModel is returned when the same model is compared twice.
var ErrDuplicateModel = errors.New("evaluation: model listed twice")

// Compare aggregates runs over criteria. Model names must be unique.
func Compare(criteria []string, runs ...ModelRun) (*Comparison, error) {
	if len(runs) == 0 {
		return nil, errNoRuns
	}
	names := make([]string, len(runs))
	for i, r := range runs {
		names[i] = r.Model
	}
	if err := checkUnique(names); err != nil {
		return nil, err
	}
	c := &Comparison{
		Criteria:   criteria,
		Aggregates: make(map[string]Aggregates, len(runs)),
	}
	for _, r := range runs {
		c.Models = append(c.Models, r.Model)
		c.Aggregates[r.Model] = Aggregate(r.Result, criteria)
	}
	if len(runs) < 2 {
		return c, nil
	}

	m0, m1 := runs[0].Model, runs[1].Model
	a0, a1 := c.Aggregates[m0], c.Aggregates[m1]
	c.Wins = map[string]int{m0: 0, m1: 0}
	for _, crit := range criteria {
		switch {
		case a0[crit] > a1[crit]:
			c.Wins[m0]++
		case a1[crit] > a0[crit]:
			c.Wins[m1]++
		}
	}
	c.Analysis = fmt.Sprintf("Comparaison %s vs %s: scores agrégés %s=%s, %s=%s. Victoires par critère: {%s: %d, %s: %d}.",
		m0, m1, m0, c.format(a0), m1, c.format(a1), m0, c.Wins[m0], m1, c.Wins[m1])
	return c, nil
}

func checkUnique(models []string) error {
	seen := make(map[string]bool, len(models))
	for _, m := range models {
		if seen[m] {
			return fmt.Errorf("%w: %s", ErrDuplicateModel, m)
		}
		seen[m] = true
	}
	return nil
}

func (c *Comparison) format(a Aggregates) string {
	parts := make([]string, len(c.Criteria))
	for i, crit := range c.Criteria {
		parts[i] = fmt.Sprintf("%s: %g", crit, a[crit])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// ExperimentFactory builds the experiment run for model.
type ExperimentFactory func(model string) (*Experiment, error)

// CompareModels runs one experiment per model over ds, sequentially, and compares them on
// criteria. A model whose experiment cannot be built is compared with zero scores. The error
// is non-nil only when a model is listed twice, before anything runs, or when ctx is done.
func CompareModels(
	ctx context.Context,
	ds *Dataset,
	models []string,
	criteria []string,
	factory ExperimentFactory,
) (*Comparison, []ModelRun, error) {
	if err := checkUnique(models); err != nil {
		return nil, nil, err
	}
	runs := make([]ModelRun, 0, len(models))
	for _, m := range models {
		run := ModelRun{Model: m}
		exp, err := factory(m)
		if err != nil {
			run.Err = err
			runs = append(runs, run)
			continue
		}
		res, err := exp.Run(ctx, ds)
		run.Result = res
		if err != nil {
			return nil, runs, err
		}
		runs = append(runs, run)
	}
	cmp, err := Compare(criteria, runs...)
	return cmp, runs, err
}

// ShortModelName drops the provider prefix: "meta-llama/llama-4-scout" gives "llama-4-scout".
func ShortModelName(model string) string {
	if i := strings.LastIndexByte(model, '/'); i >= 0 {
		return model[i+1:]
	}
	return model
}
