// Package testutils provides test data factories for consistent test data generation
package testutils

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/pantrychef/backend/internal/domain/pantry"
	"github.com/pantrychef/backend/internal/domain/recipe"
)

var pantryUnits = []string{"g", "kg", "ml", "l", "pieces", "cups", "tbsp", "units"}

var pantryCategories = []string{"produce", "dairy", "grains", "spices", "protein", "baking"}

// PantryItemFactory provides methods to create test pantry items
type PantryItemFactory struct {
	faker *gofakeit.Faker
}

// NewPantryItemFactory creates a new pantry item factory with seeded faker
func NewPantryItemFactory(seed int64) *PantryItemFactory {
	return &PantryItemFactory{
		faker: gofakeit.New(seed),
	}
}

// PantryItemBuilder provides a fluent interface for building test pantry items
type PantryItemBuilder struct {
	id       string
	name     string
	quantity float64
	unit     string
	category string
	now      time.Time
}

// NewPantryItemBuilder creates a new pantry item builder with random values
func NewPantryItemBuilder() *PantryItemBuilder {
	faker := gofakeit.New(time.Now().UnixNano())

	return &PantryItemBuilder{
		name:     faker.Vegetable(),
		quantity: float64(faker.Number(1, 20)),
		unit:     faker.RandomString(pantryUnits),
		category: faker.RandomString(pantryCategories),
		now:      time.Now().UTC(),
	}
}

// WithID sets the item ID
func (b *PantryItemBuilder) WithID(id string) *PantryItemBuilder {
	b.id = id
	return b
}

// WithName sets the item name
func (b *PantryItemBuilder) WithName(name string) *PantryItemBuilder {
	b.name = name
	return b
}

// WithQuantity sets the item quantity
func (b *PantryItemBuilder) WithQuantity(quantity float64, unit string) *PantryItemBuilder {
	b.quantity = quantity
	b.unit = unit
	return b
}

// WithCategory sets the item category
func (b *PantryItemBuilder) WithCategory(category string) *PantryItemBuilder {
	b.category = category
	return b
}

// Build constructs the item, returning validation errors
func (b *PantryItemBuilder) Build() (*pantry.Item, error) {
	item, err := pantry.NewItem(b.name, b.quantity, b.unit, b.category, b.now)
	if err != nil {
		return nil, err
	}
	item.ID = b.id
	return item, nil
}

// MustBuild constructs the item and panics on invalid input
func (b *PantryItemBuilder) MustBuild() pantry.Item {
	item, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("invalid pantry item fixture: %v", err))
	}
	return *item
}

// CreateItem creates a random valid item with the given ID
func (f *PantryItemFactory) CreateItem(id string) pantry.Item {
	return NewPantryItemBuilder().
		WithID(id).
		WithName(f.faker.Vegetable()).
		WithQuantity(float64(f.faker.Number(1, 20)), f.faker.RandomString(pantryUnits)).
		WithCategory(f.faker.RandomString(pantryCategories)).
		MustBuild()
}

// CreateItems creates n items with distinct names and sequential IDs
func (f *PantryItemFactory) CreateItems(n int) []pantry.Item {
	items := make([]pantry.Item, 0, n)
	seen := make(map[string]struct{}, n)

	for len(items) < n {
		item := f.CreateItem(fmt.Sprintf("%d", len(items)+1))
		key := pantry.NormalizeName(item.Name)
		if _, dup := seen[key]; dup {
			item.Name = fmt.Sprintf("%s %d", item.Name, len(items)+1)
			key = pantry.NormalizeName(item.Name)
		}
		seen[key] = struct{}{}
		items = append(items, item)
	}

	return items
}

// CreateSuggestion creates a parsed-looking suggestion that uses the given pantry names
func (f *PantryItemFactory) CreateSuggestion(pantryNames []string) recipe.Suggestion {
	return recipe.Suggestion{
		Recipes: []recipe.Recipe{
			{
				Title:              f.faker.Dessert(),
				Description:        f.faker.Sentence(8),
				CookTime:           fmt.Sprintf("%d minutes", f.faker.Number(10, 60)),
				Servings:           recipe.DefaultServings,
				IngredientsUsed:    append([]string{}, pantryNames...),
				MissingIngredients: []string{},
				Nutrition:          recipe.Nutrition{Calories: f.faker.Number(200, 700), Protein: "20g", Carbs: "30g", Fat: "12g"},
				Steps:              []string{f.faker.Sentence(6), f.faker.Sentence(6)},
			},
		},
		ShoppingList: []recipe.ShoppingListEntry{},
	}
}
