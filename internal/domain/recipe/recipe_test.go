package recipe

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	r := &Recipe{
		Title:       "  Tarte Tatin ",
		Description: " caramelized apples ",
		Instructions: []Instruction{
			{Step: " peel apples "},
			{Step: "   "},
			{Step: "bake"},
		},
		Ingredients: []Ingredient{
			{Name: " Apple "},
			{Name: "BUTTER"},
			{Name: "apple"},
			{Name: ""},
			{Name: "brown   sugar"},
		},
	}

	r.Normalize()

	assert.Equal(t, "Tarte Tatin", r.Title)
	assert.Equal(t, "caramelized apples", r.Description)
	assert.Equal(t, []string{"peel apples", "bake"}, r.Steps())
	assert.Equal(t, []string{"apple", "butter", "brown sugar"}, r.IngredientNames())
	for i, in := range r.Instructions {
		assert.Equal(t, i, in.Position)
	}
	for i, in := range r.Ingredients {
		assert.Equal(t, i, in.Position)
	}
}

func TestTidyKeepsIngredientSpelling(t *testing.T) {
	r := &Recipe{
		Title:        " Salsa ",
		Instructions: []Instruction{{Step: ""}, {Step: " chop "}},
		Ingredients: []Ingredient{
			{Name: " Roma Tomato "},
			{Name: "  "},
			{Name: "Lime"},
			{Name: "lime"},
		},
	}

	r.Tidy()

	assert.Equal(t, "Salsa", r.Title)
	assert.Equal(t, []string{"chop"}, r.Steps())
	assert.Equal(t, []string{"Roma Tomato", "Lime", "lime"}, r.IngredientNames())
	for i, in := range r.Ingredients {
		assert.Equal(t, i, in.Position)
	}
}

func TestAssignIDsKeepsRecipeID(t *testing.T) {
	id := uuid.New()
	r := &Recipe{ID: id, Instructions: []Instruction{{Step: "a"}}, Ingredients: []Ingredient{{Name: "b"}}}

	r.AssignIDs()

	assert.Equal(t, id, r.ID)
	assert.NotEqual(t, uuid.Nil, r.Instructions[0].ID)
	assert.Equal(t, id, r.Instructions[0].RecipeID)
	assert.Equal(t, id, r.Ingredients[0].RecipeID)
}

func TestUnmarshalAcceptsStringsAndObjects(t *testing.T) {
	payload := `{
		"title": "Soup",
		"instructions": ["boil", {"step": "season"}],
		"ingredients": [{"name": "leek"}, "potato"]
	}`

	var r Recipe
	require.NoError(t, json.Unmarshal([]byte(payload), &r))

	assert.Equal(t, []string{"boil", "season"}, r.Steps())
	assert.Equal(t, []string{"leek", "potato"}, r.IngredientNames())
}

func TestUnmarshalRejectsWrongTypes(t *testing.T) {
	var r Recipe
	err := json.Unmarshal([]byte(`{"ingredients": [42]}`), &r)
	assert.Error(t, err)
}

func TestNormalizeIngredientName(t *testing.T) {
	assert.Equal(t, "olive oil", NormalizeIngredientName("  Olive\tOIL "))
	assert.Equal(t, "", NormalizeIngredientName("   "))
}

func TestSortMatches(t *testing.T) {
	ms := []*Match{
		{Title: "b", Ingredients: []string{"x"}},
		{Title: "c", Ingredients: []string{"x", "y"}},
		{Title: "a", Ingredients: []string{"y"}},
	}

	SortMatches(ms)

	assert.Equal(t, "c", ms[0].Title)
	assert.Equal(t, "a", ms[1].Title)
	assert.Equal(t, "b", ms[2].Title)
}
