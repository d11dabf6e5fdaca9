package gorm

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/pantrychef/backend/internal/domain/pantry"
	"github.com/pantrychef/backend/internal/ports/outbound"
)

// ItemToModel converts a domain pantry item to a GORM model.
// An empty or non-numeric ID maps to zero so the database assigns one.
func ItemToModel(item *pantry.Item) *PantryItemModel {
	id, _ := parseID(item.ID)

	return &PantryItemModel{
		ID:        id,
		Name:      item.Name,
		Quantity:  item.Quantity,
		Unit:      item.Unit,
		Category:  item.Category,
		Notes:     item.Notes,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}

// ModelToItem converts a GORM model to a domain pantry item
func ModelToItem(model *PantryItemModel) pantry.Item {
	return pantry.Item{
		ID:        strconv.FormatUint(uint64(model.ID), 10),
		Name:      model.Name,
		Quantity:  model.Quantity,
		Unit:      model.Unit,
		Category:  model.Category,
		Notes:     model.Notes,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// EntryToModel converts a recipe log entry, encoding its payload as JSON
func EntryToModel(entry outbound.RecipeLogEntry) (*RecipeLogModel, error) {
	payload, err := json.Marshal(entry.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode recipe payload: %w", err)
	}

	return &RecipeLogModel{
		Mode:      entry.Mode.String(),
		Source:    string(entry.Source),
		Title:     entry.Title,
		Body:      entry.Body,
		Payload:   JSONField(payload),
		CreatedAt: entry.CreatedAt,
	}, nil
}

func parseID(id string) (uint, bool) {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}
