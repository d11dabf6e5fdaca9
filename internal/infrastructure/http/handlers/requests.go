package handlers

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"strconv"
	"strings"

	"github.com/pantrychef/backend/internal/domain/pantry"
	"github.com/pantrychef/backend/internal/domain/recipe"
)

var errInvalidNumber = stderrors.New("quantity must be a valid number")

// Quantity accepts a JSON number or a numeric string
type Quantity float64

// UnmarshalJSON implements json.Unmarshaler
func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return errInvalidNumber
		}
		data = []byte(strings.TrimSpace(s))
	}

	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return errInvalidNumber
	}
	*q = Quantity(v)
	return nil
}

// AddItemRequest is the body of POST /api/pantry. A missing quantity means 1.
type AddItemRequest struct {
	Name     string    `json:"name" validate:"required,max=200"`
	Quantity *Quantity `json:"quantity" validate:"omitempty,gt=0"`
	Unit     string    `json:"unit" validate:"max=50"`
	Category string    `json:"category" validate:"max=100"`
}

// QuantityOrDefault returns the submitted quantity or 1
func (r AddItemRequest) QuantityOrDefault() float64 {
	if r.Quantity == nil {
		return 1
	}
	return float64(*r.Quantity)
}

// UpdateItemRequest is the body of PUT /api/pantry/{id}; omitted fields are unchanged
type UpdateItemRequest struct {
	Name     *string   `json:"name" validate:"omitempty,max=200"`
	Quantity *Quantity `json:"quantity" validate:"omitempty,gt=0"`
	Unit     *string   `json:"unit" validate:"omitempty,max=50"`
	Category *string   `json:"category" validate:"omitempty,max=100"`
	Notes    *string   `json:"notes"`
}

// Patch converts the request into a domain patch
func (r UpdateItemRequest) Patch() pantry.Patch {
	patch := pantry.Patch{
		Name:     r.Name,
		Unit:     r.Unit,
		Category: r.Category,
		Notes:    r.Notes,
	}
	if r.Quantity != nil {
		q := float64(*r.Quantity)
		patch.Quantity = &q
	}
	return patch
}

// PantryEntry is one element of a pantry override. Clients send either an
// item object or a bare ingredient name.
type PantryEntry struct {
	Name     string   `json:"name"`
	Quantity Quantity `json:"quantity"`
	Unit     string   `json:"unit"`
	Category string   `json:"category"`
}

// UnmarshalJSON implements json.Unmarshaler
func (e *PantryEntry) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*e = PantryEntry{Name: name}
		return nil
	}

	type entry PantryEntry
	var v entry
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*e = PantryEntry(v)
	return nil
}

// toItems converts an override into pantry items. nil stays nil so the stored
// pantry is used; entries without a name are skipped.
func toItems(entries []PantryEntry) []pantry.Item {
	if entries == nil {
		return nil
	}

	items := make([]pantry.Item, 0, len(entries))
	for _, e := range entries {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			continue
		}
		quantity := float64(e.Quantity)
		if quantity <= 0 {
			quantity = 1
		}
		unit := strings.TrimSpace(e.Unit)
		if unit == "" {
			unit = pantry.DefaultUnit
		}
		items = append(items, pantry.Item{
			Name:     name,
			Quantity: quantity,
			Unit:     unit,
			Category: strings.TrimSpace(e.Category),
		})
	}
	return items
}

// GenerateRecipeRequest is the body of POST /api/generate_recipe
type GenerateRecipeRequest struct {
	Mode        string        `json:"mode"`
	CookingMode string        `json:"cookingMode"`
	Servings    int           `json:"servings" validate:"gte=0,lte=50"`
	Dietary     string        `json:"dietary" validate:"max=200"`
	Cuisine     string        `json:"cuisine" validate:"max=100"`
	Budget      string        `json:"budget" validate:"max=100"`
	Appliances  string        `json:"appliances" validate:"max=200"`
	SkillLevel  string        `json:"skill_level" validate:"max=50"`
	Pantry      []PantryEntry `json:"pantry"`
}

// Preferences extracts the generation preferences
func (r GenerateRecipeRequest) Preferences() recipe.Preferences {
	return recipe.Preferences{
		Servings:   r.Servings,
		Dietary:    strings.TrimSpace(r.Dietary),
		Cuisine:    strings.TrimSpace(r.Cuisine),
		Budget:     strings.TrimSpace(r.Budget),
		Appliances: strings.TrimSpace(r.Appliances),
		SkillLevel: strings.TrimSpace(r.SkillLevel),
	}.WithDefaults()
}

// MealPlanRequest is the body of POST /api/meal-plan
type MealPlanRequest struct {
	CookingMode string        `json:"cookingMode"`
	Mode        string        `json:"mode"`
	Pantry      []PantryEntry `json:"pantry"`
}

// PlanMealRequest is the body of POST /api/plan-meal
type PlanMealRequest struct {
	Pantry []string `json:"pantry"`
}

// ShoppingListRequest is the body of POST /api/shopping-list
type ShoppingListRequest struct {
	Ingredients []string `json:"ingredients" validate:"required"`
}

// ShoppingListResponse lists the ingredients not in the pantry
type ShoppingListResponse struct {
	Missing []string `json:"missing"`
}

// resolveMode accepts mode or cookingMode; unknown values mean home
func resolveMode(mode, cookingMode string) recipe.Mode {
	if strings.TrimSpace(mode) == "" {
		mode = cookingMode
	}
	return recipe.ParseMode(mode)
}
