// Package pantry contains the pantry item entity and its validation rules
package pantry

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultUnit is applied when an item is stored without a unit
const DefaultUnit = "units"

// Item is a single ingredient the user has on hand
type Item struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Quantity  float64   `json:"quantity"`
	Unit      string    `json:"unit"`
	Category  string    `json:"category,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewItem validates the input and returns an item without an ID.
// Stores assign IDs on insert.
func NewItem(name string, quantity float64, unit, category string, now time.Time) (*Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	return &Item{
		Name:      name,
		Quantity:  quantity,
		Unit:      normalizeUnit(unit),
		Category:  strings.TrimSpace(category),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Patch holds a partial update; nil fields are left untouched
type Patch struct {
	Name     *string
	Quantity *float64
	Unit     *string
	Category *string
	Notes    *string
}

// IsEmpty reports whether the patch changes nothing
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Quantity == nil && p.Unit == nil && p.Category == nil && p.Notes == nil
}

// Validate checks the provided fields without applying them
func (p Patch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return ErrNameRequired
	}
	if p.Quantity != nil && *p.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	return nil
}

// Apply validates and applies the patch, bumping UpdatedAt
func (i *Item) Apply(p Patch, now time.Time) error {
	if err := p.Validate(); err != nil {
		return err
	}

	if p.Name != nil {
		i.Name = strings.TrimSpace(*p.Name)
	}
	if p.Quantity != nil {
		i.Quantity = *p.Quantity
	}
	if p.Unit != nil {
		i.Unit = normalizeUnit(*p.Unit)
	}
	if p.Category != nil {
		i.Category = strings.TrimSpace(*p.Category)
	}
	if p.Notes != nil {
		i.Notes = *p.Notes
	}
	i.UpdatedAt = now

	return nil
}

// Label renders the item as "name (quantity unit)"
func (i Item) Label() string {
	return fmt.Sprintf("%s (%s %s)", i.Name, FormatQuantity(i.Quantity), i.Unit)
}

// Matches reports whether the item has the given name, ignoring case
func (i Item) Matches(name string) bool {
	return NormalizeName(i.Name) == NormalizeName(name)
}

// NormalizeName is the key used for case-insensitive name comparisons
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Names returns the item names in pantry order
func Names(items []Item) []string {
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Name)
	}
	return names
}

// FormatQuantity uses the shortest decimal form, so 2.0 renders as "2"
func FormatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}

func normalizeUnit(unit string) string {
	unit = strings.TrimSpace(unit)
	if unit == "" {
		return DefaultUnit
	}
	return unit
}
