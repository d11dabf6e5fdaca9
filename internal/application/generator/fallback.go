package generator

import (
	"fmt"
	"strings"

	"github.com/pantrychef/backend/internal/domain/recipe"
)

// Fallback returns the static suggestion served when the model is
// unavailable or its output cannot be used. Every call returns a fresh value.
func Fallback(mode recipe.Mode) recipe.Suggestion {
	if mode.IsProfessional() {
		return professionalFallback()
	}
	return homeFallback()
}

func professionalFallback() recipe.Suggestion {
	return recipe.Suggestion{
		Recipes: []recipe.Recipe{
			{
				Title:              "Professional Pan-Seared Creation",
				Description:        "A restaurant-quality dish showcasing advanced culinary techniques with precise execution",
				CookTime:           "35-45 minutes",
				Servings:           2,
				IngredientsUsed:    []string{"pantry selections"},
				MissingIngredients: []string{"flaky sea salt", "extra virgin olive oil", "fresh thyme", "garlic"},
				Nutrition:          recipe.Nutrition{Calories: 420, Protein: "28g", Carbs: "25g", Fat: "18g"},
				Steps: []string{
					"Mise en place: prepare and organize all ingredients with precision",
					"Bring proteins to room temperature and season with 1% salt by weight",
					"Heat a 12-inch stainless steel skillet over medium-high heat until oil shimmers (~190°C/375°F)",
					"Sear the main ingredient without moving it until a deep golden crust forms (3-4 minutes)",
					"Flip and add butter, garlic and thyme to the pan",
					"Baste continuously with the foaming butter for 2-3 minutes",
					"Check internal temperature and rest on a warm plate for 5 minutes",
					"Deglaze the pan and reduce by 70% to nappe consistency (3-5 minutes)",
					"Mount the sauce with cold butter off the heat and adjust seasoning",
					"Plate with precision and artistic presentation",
				},
				Technique: "pan-searing with basting",
			},
		},
		ShoppingList: []recipe.ShoppingListEntry{
			{Item: "flaky sea salt", Quantity: 1, Unit: "container"},
			{Item: "extra virgin olive oil", Quantity: 1, Unit: "bottle"},
			{Item: "fresh thyme", Quantity: 1, Unit: "bunch"},
		},
	}
}

func homeFallback() recipe.Suggestion {
	return recipe.Suggestion{
		Recipes: []recipe.Recipe{
			{
				Title:              "Simple Home-Style Skillet",
				Description:        "An easy one-pan meal using your pantry staples",
				CookTime:           "20-25 minutes",
				Servings:           2,
				IngredientsUsed:    []string{"pantry selections"},
				MissingIngredients: []string{"olive oil", "salt", "pepper", "onion"},
				Nutrition:          recipe.Nutrition{Calories: 300, Protein: "20g", Carbs: "30g", Fat: "15g"},
				Steps: []string{
					"Chop your pantry ingredients into bite-sized pieces",
					"Heat 1 tbsp olive oil in a large skillet over medium heat",
					"Cook the diced onion until translucent (3-4 minutes)",
					"Add the remaining ingredients and cook, stirring occasionally, for 10-12 minutes",
					"Season with 1/4 tsp salt and a pinch of pepper, then adjust to taste",
					"Serve hot straight from the skillet",
				},
				Technique: "one-pan cooking",
			},
			{
				Title:              "Easy Comfort Bowl",
				Description:        "A warm, comforting bowl that comes together quickly",
				CookTime:           "15-20 minutes",
				Servings:           2,
				IngredientsUsed:    []string{"pantry selections"},
				MissingIngredients: []string{"broth", "herbs", "lemon"},
				Nutrition:          recipe.Nutrition{Calories: 280, Protein: "15g", Carbs: "32g", Fat: "8g"},
				Steps: []string{
					"Bring 500 ml broth to a simmer in a medium pot",
					"Add the heartier pantry ingredients first and simmer for 8 minutes",
					"Add quicker-cooking ingredients and simmer 3-5 minutes more",
					"Stir in chopped herbs",
					"Finish with a squeeze of lemon and season to taste",
					"Ladle into bowls and serve",
				},
				Technique: "simmering",
			},
		},
		ShoppingList: []recipe.ShoppingListEntry{
			{Item: "olive oil", Quantity: 1, Unit: "bottle"},
			{Item: "salt", Quantity: 1, Unit: "container"},
			{Item: "pepper", Quantity: 1, Unit: "container"},
			{Item: "onion", Quantity: 2, Unit: "pieces"},
		},
	}
}

type mealTemplate struct {
	title     string
	technique string
	steps     []string
	missing   []string
	nutrition recipe.Nutrition
	cookTime  string
}

var homeMeals = []mealTemplate{
	{
		title:     "Simple %s Skillet",
		technique: "one-pan cooking",
		cookTime:  "20-25 minutes",
		missing:   []string{"olive oil", "salt", "pepper", "onion"},
		nutrition: recipe.Nutrition{Calories: 320, Protein: "22g", Carbs: "28g", Fat: "14g"},
		steps: []string{
			"Chop the %s into bite-sized pieces",
			"Heat 1 tbsp olive oil in a skillet over medium heat",
			"Soften the onion for 3-4 minutes",
			"Add the %s and cook for 8-10 minutes, stirring occasionally",
			"Season with salt and pepper to taste and serve",
		},
	},
	{
		title:     "Easy %s Curry",
		technique: "simmering",
		cookTime:  "25-30 minutes",
		missing:   []string{"curry powder", "coconut milk", "ginger"},
		nutrition: recipe.Nutrition{Calories: 380, Protein: "18g", Carbs: "35g", Fat: "18g"},
		steps: []string{
			"Grate 1 tbsp ginger and prepare the %s",
			"Toast 1 tbsp curry powder in a pot for 30 seconds",
			"Add the %s and stir to coat",
			"Pour in the coconut milk and simmer for 15 minutes",
			"Adjust seasoning and serve",
		},
	},
	{
		title:     "Hearty %s Soup",
		technique: "simmering",
		cookTime:  "30-35 minutes",
		missing:   []string{"vegetable broth", "herbs", "lemon"},
		nutrition: recipe.Nutrition{Calories: 260, Protein: "14g", Carbs: "30g", Fat: "8g"},
		steps: []string{
			"Dice the %s",
			"Bring 1 litre vegetable broth to a simmer",
			"Add the %s and simmer for 20 minutes",
			"Stir in chopped herbs",
			"Finish with lemon juice and serve",
		},
	},
}

var professionalMeals = []mealTemplate{
	{
		title:     "Pan-Seared %s with Herb Oil",
		technique: "pan-searing with basting",
		cookTime:  "35-45 minutes",
		missing:   []string{"extra virgin olive oil", "fresh thyme", "garlic", "sea salt", "cracked black pepper"},
		nutrition: recipe.Nutrition{Calories: 450, Protein: "32g", Carbs: "18g", Fat: "26g"},
		steps: []string{
			"Mise en place: portion the %s and bring to room temperature",
			"Season with 1% salt by weight",
			"Blend olive oil and thyme into a bright herb oil",
			"Heat a 12-inch skillet until the oil shimmers (~190°C/375°F)",
			"Sear the %s for 3-4 minutes until a golden crust forms",
			"Baste with butter, garlic and thyme for 2 minutes",
			"Rest for 5 minutes",
			"Slice and finish with herb oil and cracked black pepper",
			"Plate with precision",
			"Serve immediately",
		},
	},
	{
		title:     "Confit %s with Wine Reduction",
		technique: "confit",
		cookTime:  "2-3 hours",
		missing:   []string{"duck fat", "bay leaves", "white wine", "shallots"},
		nutrition: recipe.Nutrition{Calories: 520, Protein: "30g", Carbs: "12g", Fat: "38g"},
		steps: []string{
			"Season the %s and cure for 30 minutes",
			"Warm duck fat to 90°C/195°F with bay leaves",
			"Submerge the %s and confit gently for 2 hours",
			"Sweat the shallots until soft",
			"Deglaze with white wine",
			"Reduce by 70% to nappe consistency",
			"Mount the sauce with cold butter",
			"Crisp the confit skin-side down in a hot pan",
			"Rest for 5 minutes",
			"Plate over the reduction",
		},
	},
	{
		title:     "Deconstructed %s Composition",
		technique: "modern plating",
		cookTime:  "40-50 minutes",
		missing:   []string{"aged balsamic", "truffle oil", "edible flowers"},
		nutrition: recipe.Nutrition{Calories: 400, Protein: "24g", Carbs: "30g", Fat: "20g"},
		steps: []string{
			"Prepare the %s in three textures: raw, roasted and puréed",
			"Roast one portion at 200°C/400°F for 20 minutes",
			"Purée one portion until silky",
			"Shave the remaining %s thinly",
			"Reduce the aged balsamic to a glaze",
			"Swoosh the purée across a warm plate",
			"Arrange the roasted and raw elements",
			"Dot with balsamic glaze",
			"Finish with truffle oil",
			"Garnish with edible flowers",
		},
	},
}

const mealPlanUnit = "unit"

// MockMealPlan builds three meals around the pantry, cycling names when fewer than three exist
func MockMealPlan(names []string, mode recipe.Mode) recipe.MealPlan {
	templates := homeMeals
	if mode.IsProfessional() {
		templates = professionalMeals
	}

	if len(names) == 0 {
		names = []string{"Pantry"}
	}

	firstThree := names
	if len(firstThree) > 3 {
		firstThree = firstThree[:3]
	}

	plan := recipe.MealPlan{
		Meals:        make([]recipe.Recipe, 0, len(templates)),
		ShoppingList: make([]recipe.ShoppingListEntry, 0),
	}

	for i, t := range templates {
		name := names[i%len(names)]

		used := firstThree
		if i == 1 && len(firstThree) > 1 {
			used = firstThree[1:]
		}

		steps := make([]string, 0, len(t.steps))
		for _, s := range t.steps {
			if strings.Contains(s, "%s") {
				s = fmt.Sprintf(s, name)
			}
			steps = append(steps, s)
		}

		plan.Meals = append(plan.Meals, recipe.Recipe{
			Title:              fmt.Sprintf(t.title, name),
			Description:        fmt.Sprintf("A %s built around %s", t.technique, name),
			CookTime:           t.cookTime,
			Servings:           recipe.DefaultServings,
			IngredientsUsed:    append([]string{}, used...),
			MissingIngredients: append([]string{}, t.missing...),
			Nutrition:          t.nutrition,
			Steps:              steps,
			Technique:          t.technique,
		})

		for _, m := range t.missing {
			plan.ShoppingList = append(plan.ShoppingList, recipe.ShoppingListEntry{Item: m, Quantity: 1, Unit: mealPlanUnit})
		}
	}

	plan.ShoppingList = recipe.DedupeShoppingList(plan.ShoppingList)
	return plan
}

const (
	planMealTitle   = "Pantry Surprise"
	planMealMaxUsed = 6
)

// MockPlanMeal returns the canned single-recipe answer
func MockPlanMeal(names []string) recipe.PlannedMeal {
	used := names
	if len(used) > planMealMaxUsed {
		used = used[:planMealMaxUsed]
	}

	items := strings.Join(used, ", ")
	if items == "" {
		items = "nothing"
	}

	return recipe.PlannedMeal{
		Title:   planMealTitle,
		Body:    fmt.Sprintf("Use these items: %s. Suggest a simple stir-fry: saute items, add salt, serve. Missing: none (demo).", items),
		Missing: []string{},
	}
}
