package evaluation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDataset_Menu(t *testing.T) {
	ds, err := LoadDataset(MenuDatasetName)
	require.NoError(t, err)

	assert.Equal(t, "Dataset d'évaluation pour ChefBot", ds.Description)
	require.Len(t, ds.Items, 5)

	first := ds.Items[0]
	assert.Equal(t, "diabete", first.ID)
	assert.Equal(t, "repas pour diabetique, sans sucre ajouté, portion individuelle", first.Input.Constraints)
	assert.Equal(t, []string{"sucre", "miel", "sirop"}, first.Strings("must_avoid"))
	assert.Equal(t, []string{"légumes", "protéine maigre"}, first.Strings("must_include"))
	assert.Equal(t, 600, first.ExpectedOutput["max_calories_per_meal"])
	assert.Equal(t, "diabete", first.Metadata["case"])

	last := ds.Items[4]
	assert.Equal(t, "préférences culturelles: cuisine méditerranéenne, saison: été, 2 personnes", last.Input.Constraints)
	assert.Empty(t, last.Strings("must_avoid"))
	assert.Equal(t, []string{"huile d'olive", "légumes frais", "poisson"}, last.Strings("must_include"))
}

func TestLoadDataset_MultiAgent(t *testing.T) {
	ds, err := LoadDataset(MultiAgentDatasetName)
	require.NoError(t, err)

	require.Len(t, ds.Items, 4)
	assert.Equal(t, []string{"ChefBot", "Partie 7"}, ds.Tags)
	assert.Equal(t, []string{"halal", "pas de fruits à coque"}, ds.Items[3].Strings("must_respect"))
	assert.Equal(t, 360, ds.Items[3].ExpectedOutput["max_budget"])
	assert.Equal(t, "extreme", ds.Items[3].Metadata["difficulty"])
}

func TestLoadDataset_Unknown(t *testing.T) {
	_, err := LoadDataset("brunch")
	assert.ErrorIs(t, err, ErrUnknownDataset)
}

func TestDatasetNames(t *testing.T) {
	assert.Equal(t, []string{MenuDatasetName, MultiAgentDatasetName}, DatasetNames())
}

func TestParseDataset(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing name",
			yaml:    "items:\n  - input: {constraints: a}\n",
			wantErr: "name is required",
		},
		{
			name:    "no items",
			yaml:    "name: x\n",
			wantErr: "has no items",
		},
		{
			name:    "missing constraints",
			yaml:    "name: x\nitems:\n  - id: a\n",
			wantErr: "item 1 has no constraints",
		},
		{
			name:    "duplicate ids",
			yaml:    "name: x\nitems:\n  - {id: a, input: {constraints: c}}\n  - {id: a, input: {constraints: d}}\n",
			wantErr: "duplicate item id",
		},
		{
			name:    "invalid yaml",
			yaml:    "name: [",
			wantErr: "parse dataset",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseDataset([]byte(tc.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestParseDataset_Defaults(t *testing.T) {
	ds, err := ParseDataset([]byte("name: custom\nitems:\n  - input: {constraints: sans lactose}\n"))
	require.NoError(t, err)

	require.Len(t, ds.Items, 1)
	assert.Equal(t, "custom-1", ds.Items[0].ID)
	assert.NotNil(t, ds.Items[0].ExpectedOutput)
	assert.Nil(t, ds.Items[0].Strings("must_avoid"))
}

func TestLoadDatasetFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ds.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: file\nitems:\n  - input: {constraints: c}\n"), 0o600))

	ds, err := LoadDatasetFile(path)
	require.NoError(t, err)
	assert.Equal(t, "file", ds.Name)

	_, err = LoadDatasetFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
