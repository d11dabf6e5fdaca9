package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pantrychef/backend/internal/domain/recipe"
)

func TestFallback(t *testing.T) {
	home := Fallback(recipe.ModeHome)
	require.Len(t, home.Recipes, 2)
	assert.Equal(t, "Simple Home-Style Skillet", home.Recipes[0].Title)
	assert.Equal(t, "Easy Comfort Bowl", home.Recipes[1].Title)
	assert.Len(t, home.ShoppingList, 4)

	pro := Fallback(recipe.ModeProfessional)
	require.Len(t, pro.Recipes, 1)
	assert.Equal(t, "pan-searing with basting", pro.Recipes[0].Technique)
	assert.Len(t, pro.ShoppingList, 3)

	// Mutating one result must not leak into the next call
	home.Recipes[0].Title = "changed"
	assert.Equal(t, "Simple Home-Style Skillet", Fallback(recipe.ModeHome).Recipes[0].Title)
}

func TestMockMealPlan(t *testing.T) {
	t.Run("cycles names when fewer than three", func(t *testing.T) {
		plan := MockMealPlan([]string{"tofu", "rice"}, recipe.ModeHome)

		require.Len(t, plan.Meals, 3)
		assert.Equal(t, "Simple tofu Skillet", plan.Meals[0].Title)
		assert.Equal(t, "Easy rice Curry", plan.Meals[1].Title)
		assert.Equal(t, "Hearty tofu Soup", plan.Meals[2].Title)
		assert.Equal(t, []string{"rice"}, plan.Meals[1].IngredientsUsed)
	})

	t.Run("professional titles", func(t *testing.T) {
		plan := MockMealPlan([]string{"salmon", "leek", "potato", "dill"}, recipe.ModeProfessional)

		require.Len(t, plan.Meals, 3)
		assert.Equal(t, "Pan-Seared salmon with Herb Oil", plan.Meals[0].Title)
		assert.Equal(t, "Confit leek with Wine Reduction", plan.Meals[1].Title)
		assert.Equal(t, "Deconstructed potato Composition", plan.Meals[2].Title)
		assert.Equal(t, []string{"salmon", "leek", "potato"}, plan.Meals[0].IngredientsUsed)
	})

	t.Run("shopping list is a deduplicated union", func(t *testing.T) {
		plan := MockMealPlan([]string{"beans"}, recipe.ModeHome)

		items := make([]string, 0, len(plan.ShoppingList))
		for _, e := range plan.ShoppingList {
			items = append(items, e.Item)
			assert.Equal(t, 1.0, e.Quantity)
			assert.Equal(t, "unit", e.Unit)
		}
		assert.Equal(t, []string{
			"olive oil", "salt", "pepper", "onion",
			"curry powder", "coconut milk", "ginger",
			"vegetable broth", "herbs", "lemon",
		}, items)
	})

	t.Run("empty pantry still plans", func(t *testing.T) {
		plan := MockMealPlan(nil, recipe.ModeHome)
		require.Len(t, plan.Meals, 3)
		assert.Equal(t, "Simple Pantry Skillet", plan.Meals[0].Title)
	})

	t.Run("steps mention the ingredient", func(t *testing.T) {
		plan := MockMealPlan([]string{"duck"}, recipe.ModeProfessional)
		assert.Contains(t, plan.Meals[1].Steps[0], "duck")
		assert.Equal(t, "Season with 1% salt by weight", plan.Meals[0].Steps[1])
	})
}

func TestMockPlanMeal(t *testing.T) {
	meal := MockPlanMeal([]string{"a", "b", "c", "d", "e", "f", "g"})
	assert.Equal(t, "Pantry Surprise", meal.Title)
	assert.Equal(t, "Use these items: a, b, c, d, e, f. Suggest a simple stir-fry: saute items, add salt, serve. Missing: none (demo).", meal.Body)
	assert.Empty(t, meal.Missing)

	empty := MockPlanMeal(nil)
	assert.Contains(t, empty.Body, "Use these items: nothing.")
}

func TestHeuristic(t *testing.T) {
	t.Run("caps steps", func(t *testing.T) {
		text := ""
		for i := 0; i < 20; i++ {
			text += "step\n"
		}
		s, ok := Heuristic(text, recipe.ModeHome, nil)
		require.True(t, ok)
		assert.Len(t, s.Recipes[0].Steps, 15)
		assert.Equal(t, "AI Generated Home Recipe", s.Recipes[0].Title)
	})

	t.Run("no usable lines", func(t *testing.T) {
		_, ok := Heuristic("# heading\n\n   \n", recipe.ModeHome, nil)
		assert.False(t, ok)
	})
}
