// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the interfaces that the application exposes to the outside world
package inbound

import (
	"context"

	"github.com/pantrychef/backend/internal/domain/pantry"
	"github.com/pantrychef/backend/internal/domain/recipe"
)

// PantryService defines the use cases for pantry management
type PantryService interface {
	List(ctx context.Context) ([]pantry.Item, error)
	Add(ctx context.Context, cmd AddItemCommand) (*AddItemResult, error)
	Update(ctx context.Context, id string, patch pantry.Patch) (*pantry.Item, error)
	Delete(ctx context.Context, id string) (*DeleteItemResult, error)
	ShoppingList(ctx context.Context, ingredients []string) ([]string, error)
}

// AddItemCommand carries a new pantry item
type AddItemCommand struct {
	Name     string
	Quantity float64
	Unit     string
	Category string
}

// AddItemResult reports whether the item was inserted or merged into an existing one
type AddItemResult struct {
	Item    pantry.Item
	Created bool
}

// DeleteItemResult reports whether anything was removed
type DeleteItemResult struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// KitchenService defines the recipe generation use cases
type KitchenService interface {
	GenerateRecipes(ctx context.Context, cmd GenerateRecipesCommand) (*RecipeResult, error)
	MealPlan(ctx context.Context, cmd MealPlanCommand) (*MealPlanResult, error)
	PlanMeal(ctx context.Context, cmd PlanMealCommand) (*recipe.PlannedMeal, error)
	LLMStatus(ctx context.Context) LLMStatus
}

// GenerateRecipesCommand requests recipe suggestions. A non-nil Pantry
// replaces the stored pantry for this request only.
type GenerateRecipesCommand struct {
	Mode        recipe.Mode
	Preferences recipe.Preferences
	Pantry      []pantry.Item
}

// RecipeResult is the response of a recipe generation
type RecipeResult struct {
	Mode   recipe.Mode   `json:"mode"`
	Source recipe.Source `json:"source"`
	recipe.Suggestion
}

// MealPlanCommand requests a three-meal plan
type MealPlanCommand struct {
	Mode   recipe.Mode
	Pantry []pantry.Item
}

// MealPlanResult is the response of a meal plan request
type MealPlanResult struct {
	Mode   recipe.Mode   `json:"mode"`
	Source recipe.Source `json:"source"`
	recipe.MealPlan
}

// PlanMealCommand requests a single free-text recipe. Empty Names means "use the pantry".
type PlanMealCommand struct {
	Names []string
}

// LLMStatus describes the configured text generator
type LLMStatus struct {
	Provider   string `json:"provider"`
	Configured bool   `json:"configured"`
}
