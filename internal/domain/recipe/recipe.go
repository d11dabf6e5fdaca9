// Package recipe holds the recipe suggestion model returned to clients
// and the helpers that keep shopping lists consistent with the pantry
package recipe

// Nutrition is an approximate per-serving estimate
type Nutrition struct {
	Calories int    `json:"calories"`
	Protein  string `json:"protein"`
	Carbs    string `json:"carbs"`
	Fat      string `json:"fat"`
}

// Recipe is one suggested dish
type Recipe struct {
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	CookTime           string    `json:"cookTime"`
	Servings           int       `json:"servings,omitempty"`
	IngredientsUsed    []string  `json:"ingredientsUsed"`
	MissingIngredients []string  `json:"missingIngredients"`
	Nutrition          Nutrition `json:"nutrition"`
	Steps              []string  `json:"steps"`
	Technique          string    `json:"technique,omitempty"`
	WinePairing        string    `json:"winePairing,omitempty"`
}

// ShoppingListEntry is an ingredient to buy
type ShoppingListEntry struct {
	Item     string  `json:"item"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// Suggestion is the {recipes, shoppingList} envelope produced per generation
type Suggestion struct {
	Recipes      []Recipe            `json:"recipes"`
	ShoppingList []ShoppingListEntry `json:"shoppingList"`
}

// Titles lists the recipe titles in order
func (s Suggestion) Titles() []string {
	titles := make([]string, 0, len(s.Recipes))
	for _, r := range s.Recipes {
		titles = append(titles, r.Title)
	}
	return titles
}

// MealPlan is a set of meals with their aggregated shopping list. It is never persisted.
type MealPlan struct {
	Meals        []Recipe            `json:"meals"`
	ShoppingList []ShoppingListEntry `json:"shoppingList"`
}

// PlannedMeal is the single free-text recipe produced by the plan-meal flow
type PlannedMeal struct {
	Title   string   `json:"title"`
	Body    string   `json:"body"`
	Missing []string `json:"missing"`
}
