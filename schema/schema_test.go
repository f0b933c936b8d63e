package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile(t *testing.T) {
	t.Run("nil schema returns nil", func(t *testing.T) {
		s, err := Compile(nil)
		assert.NoError(t, err)
		assert.Nil(t, s)
		assert.Nil(t, s.Raw())
	})

	t.Run("valid schema compiles", func(t *testing.T) {
		s, err := Compile(Object(map[string]*Property{
			"ingredient": String("Le nom de l'ingrédient à analyser"),
		}, "ingredient"))
		require.NoError(t, err)
		require.NotNil(t, s)
		assert.Equal(t, "object", s.Raw()["type"])
	})

	t.Run("invalid schema fails", func(t *testing.T) {
		_, err := Compile(map[string]any{"type": 42})
		assert.Error(t, err)
	})
}

func TestMustCompile(t *testing.T) {
	assert.NotPanics(t, func() {
		MustCompile(Object(nil))
	})
	assert.Panics(t, func() {
		MustCompile(map[string]any{"type": "not-a-type"})
	})
}

func TestSchema_Validate(t *testing.T) {
	recipe := MustCompile(Object(map[string]*Property{
		"dish_name": String("Le nom du plat"),
	}, "dish_name"))

	menu := MustCompile(Object(map[string]*Property{
		"category":  String("Catégorie"),
		"max_price": Number("Prix maximum").Min(0),
	}))

	empty := MustCompile(Object(nil))

	nullable := MustCompile(Object(map[string]*Property{
		"category": String("Catégorie").Nullable(),
	}))

	tests := []struct {
		name    string
		schema  *Schema
		data    map[string]any
		wantErr bool
	}{
		{name: "required present", schema: recipe, data: map[string]any{"dish_name": "omelette"}},
		{name: "required missing", schema: recipe, data: map[string]any{}, wantErr: true},
		{name: "wrong type", schema: recipe, data: map[string]any{"dish_name": 3}, wantErr: true},
		{
			name:    "extra key rejected",
			schema:  recipe,
			data:    map[string]any{"dish_name": "omelette", "servings": 2},
			wantErr: true,
		},
		{name: "all optional omitted", schema: menu, data: map[string]any{}},
		{name: "number accepts int", schema: menu, data: map[string]any{"max_price": 15}},
		{name: "number below minimum", schema: menu, data: map[string]any{"max_price": -1.5}, wantErr: true},
		{name: "nullable accepts null", schema: nullable, data: map[string]any{"category": nil}},
		{name: "nullable accepts value", schema: nullable, data: map[string]any{"category": "Plat"}},
		{name: "nullable still typed", schema: nullable, data: map[string]any{"category": 1}, wantErr: true},
		{name: "empty object", schema: empty, data: map[string]any{}},
		{name: "empty object rejects keys", schema: empty, data: map[string]any{"x": 1}, wantErr: true},
		{name: "nil schema accepts all", schema: nil, data: map[string]any{"anything": true}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.schema.Validate(tc.data)
			if !tc.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var vErr *ValidationError
			assert.True(t, errors.As(err, &vErr))
			assert.Contains(t, err.Error(), "schema validation failed")
		})
	}
}

func TestObject(t *testing.T) {
	obj := Object(map[string]*Property{
		"task": String("La tâche à déléguer"),
	}, "task")

	assert.Equal(t, "object", obj["type"])
	assert.Equal(t, false, obj["additionalProperties"])
	assert.Equal(t, []string{"task"}, obj["required"])

	props, ok := obj["properties"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, map[string]any{
		"type":        "string",
		"description": "La tâche à déléguer",
	}, props["task"])

	_, hasRequired := Object(nil)["required"]
	assert.False(t, hasRequired)
}

func TestProperty_Builders(t *testing.T) {
	assert.Equal(t, map[string]any{
		"type":        "number",
		"description": "Prix",
		"minimum":     0.0,
	}, Number("Prix").Min(0).build())

	assert.Equal(t, map[string]any{
		"type":        []any{"number", "null"},
		"description": "Prix",
		"minimum":     0.0,
	}, Number("Prix").Nullable().Min(0).build())
	assert.Equal(t, []any{"string", "null"}, String("Catégorie").Nullable().build()["type"])
}
