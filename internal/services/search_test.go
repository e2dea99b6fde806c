package services

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIngredients(t *testing.T) {
	got := ParseIngredients([]string{" Egg, butter ", "EGG", "", "olive   oil,,"})
	assert.Equal(t, []string{"egg", "butter", "olive oil"}, got)
	assert.Empty(t, ParseIngredients([]string{" , "}))
}

func TestSearchByIngredients(t *testing.T) {
	f := newFixture(t)
	owner := f.register(t, "chef", "chef@example.com").User
	for _, in := range []struct {
		title       string
		ingredients []string
	}{
		{"Omelette", []string{"egg", "butter", "chives"}},
		{"Cake", []string{"egg", "flour", "sugar", "butter"}},
		{"Bread", []string{"flour", "yeast"}},
	} {
		_, err := f.recipes.CreateRecipe(callerCtx(owner.ID), recipeInput(in.title, in.ingredients...))
		require.NoError(t, err)
	}

	hits, err := f.search.SearchByIngredients(anon(), []string{"Egg,flour"}, "")
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "Cake", hits[0].Title)
	assert.Equal(t, []string{"egg", "flour"}, hits[0].Ingredients)
	assert.Equal(t, "Bread", hits[1].Title)
	assert.Equal(t, "Omelette", hits[2].Title)

	all, err := f.search.SearchByIngredients(anon(), []string{"egg", "butter"}, "ALL")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Cake", all[0].Title)

	_, err = f.search.SearchByIngredients(anon(), []string{"egg", "yeast"}, "all")
	requireAPIError(t, err, http.StatusNotFound, "no_recipes_found")

	_, err = f.search.SearchByIngredients(anon(), []string{" , "}, "any")
	requireAPIError(t, err, http.StatusBadRequest, "ingredients_required")

	_, err = f.search.SearchByIngredients(anon(), []string{"egg"}, "some")
	requireAPIError(t, err, http.StatusBadRequest, "invalid_mode")
}
