package generator

import (
	"strings"

	"github.com/pantrychef/backend/internal/domain/recipe"
)

const maxHeuristicSteps = 15

var heuristicMissing = []string{"sea salt", "black pepper", "olive oil"}

// Heuristic turns free-form model output into a single recipe by treating
// each non-empty line as a step. It reports false when no line was usable.
func Heuristic(text string, mode recipe.Mode, pantryNames []string) (recipe.Suggestion, bool) {
	steps := make([]string, 0, maxHeuristicSteps)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "```") {
			continue
		}
		steps = append(steps, line)
		if len(steps) == maxHeuristicSteps {
			break
		}
	}

	if len(steps) == 0 {
		return recipe.Suggestion{}, false
	}

	title := "AI Generated Home Recipe"
	description := "A home-style recipe written from your pantry"
	if mode.IsProfessional() {
		title = "AI Generated Professional Recipe"
		description = "A professional-style recipe written from your pantry"
	}

	s := recipe.Suggestion{
		Recipes: []recipe.Recipe{
			{
				Title:              title,
				Description:        description,
				CookTime:           "35-45 minutes",
				Servings:           recipe.DefaultServings,
				IngredientsUsed:    append([]string{}, pantryNames...),
				MissingIngredients: append([]string{}, heuristicMissing...),
				Nutrition:          recipe.Nutrition{Calories: 380, Protein: "25g", Carbs: "28g", Fat: "16g"},
				Steps:              steps,
			},
		},
		ShoppingList: []recipe.ShoppingListEntry{},
	}
	s.Reconcile(pantryNames)

	return s, true
}
