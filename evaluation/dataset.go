package evaluation

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Embedded dataset names.
const (
	MenuDatasetName       = "chefbot-menu-eval"
	MultiAgentDatasetName = "chefbot-multiagent-eval"
)

//go:embed datasets/*.yaml
var datasetFS embed.FS

// ErrUnknownDataset is returned by LoadDataset for a name that is not embedded.
var ErrUnknownDataset = errors.New("evaluation: unknown dataset")

// Dataset is a named list of evaluation items.
type Dataset struct {
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Tags        []string `yaml:"tags,omitempty" json:"tags,omitempty"`
	Items       []Item   `yaml:"items" json:"items"`
}

// Item is one evaluation case. ExpectedOutput is free-form; evaluators read the keys they know
// (must_avoid, must_include, must_respect, max_budget, ...).
type Item struct {
	ID             string         `yaml:"id" json:"id"`
	Input          Input          `yaml:"input" json:"input"`
	ExpectedOutput map[string]any `yaml:"expected_output" json:"expected_output"`
	Metadata       map[string]any `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}

// Input is what the system under test receives.
type Input struct {
	Constraints string `yaml:"constraints" json:"constraints"`
}

// ParseDataset decodes and validates a YAML dataset. Items without an id get "<name>-<n>".
func ParseDataset(data []byte) (*Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("evaluation: parse dataset: %w", err)
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	for i := range ds.Items {
		if ds.Items[i].ID == "" {
			ds.Items[i].ID = fmt.Sprintf("%s-%d", ds.Name, i+1)
		}
		if ds.Items[i].ExpectedOutput == nil {
			ds.Items[i].ExpectedOutput = map[string]any{}
		}
	}
	return &ds, nil
}

// Validate checks that the dataset is named and every item has constraints and a unique id.
func (d *Dataset) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return errors.New("evaluation: dataset name is required")
	}
	if len(d.Items) == 0 {
		return fmt.Errorf("evaluation: dataset %s has no items", d.Name)
	}
	seen := make(map[string]bool, len(d.Items))
	for i, it := range d.Items {
		if strings.TrimSpace(it.Input.Constraints) == "" {
			return fmt.Errorf("evaluation: dataset %s item %d has no constraints", d.Name, i+1)
		}
		if it.ID == "" {
			continue
		}
		if seen[it.ID] {
			return fmt.Errorf("evaluation: dataset %s has duplicate item id %q", d.Name, it.ID)
		}
		seen[it.ID] = true
	}
	return nil
}

// LoadDataset returns the embedded dataset called name.
func LoadDataset(name string) (*Dataset, error) {
	entries, err := datasetFS.ReadDir("datasets")
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		data, err := datasetFS.ReadFile(path.Join("datasets", e.Name()))
		if err != nil {
			return nil, err
		}
		ds, err := ParseDataset(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		if ds.Name == name {
			return ds, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownDataset, name)
}

// LoadDatasetFile reads a dataset from a YAML file on disk.
func LoadDatasetFile(filename string) (*Dataset, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ParseDataset(data)
}

// DatasetNames lists the embedded datasets, sorted.
func DatasetNames() []string {
	entries, err := datasetFS.ReadDir("datasets")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		data, err := datasetFS.ReadFile(path.Join("datasets", e.Name()))
		if err != nil {
			continue
		}
		ds, err := ParseDataset(data)
		if err != nil {
			continue
		}
		names = append(names, ds.Name)
	}
	sort.Strings(names)
	return names
}

// Strings returns ExpectedOutput[key] as a string list. Missing or non-list values give nil.
func (it Item) Strings(key string) []string {
	raw, ok := it.ExpectedOutput[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		} else if v != nil {
			out = append(out, fmt.Sprint(v))
		}
	}
	return out
}
