package gorm

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/pantrychef/backend/internal/domain/pantry"
	"github.com/pantrychef/backend/internal/ports/outbound"
)

// PantryRepository implements the pantry repository interface using GORM
type PantryRepository struct {
	db *gorm.DB
}

// NewPantryRepository creates a new pantry repository
func NewPantryRepository(db *gorm.DB) *PantryRepository {
	return &PantryRepository{db: db}
}

var _ outbound.PantryRepository = (*PantryRepository)(nil)

// List returns every pantry item in insertion order
func (r *PantryRepository) List(ctx context.Context) ([]pantry.Item, error) {
	var models []PantryItemModel

	result := r.db.WithContext(ctx).Order("id ASC").Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	items := make([]pantry.Item, len(models))
	for i := range models {
		items[i] = ModelToItem(&models[i])
	}

	return items, nil
}

// FindByID finds a pantry item by ID
func (r *PantryRepository) FindByID(ctx context.Context, id string) (*pantry.Item, error) {
	key, ok := parseID(id)
	if !ok {
		return nil, pantry.ErrItemNotFound
	}

	var model PantryItemModel
	result := r.db.WithContext(ctx).First(&model, "id = ?", key)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, pantry.ErrItemNotFound
		}
		return nil, result.Error
	}

	item := ModelToItem(&model)
	return &item, nil
}

// FindByName finds a pantry item by name, ignoring case
func (r *PantryRepository) FindByName(ctx context.Context, name string) (*pantry.Item, error) {
	var model PantryItemModel

	result := r.db.WithContext(ctx).First(&model, "LOWER(name) = ?", pantry.NormalizeName(name))
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, pantry.ErrItemNotFound
		}
		return nil, result.Error
	}

	item := ModelToItem(&model)
	return &item, nil
}

// Create inserts a pantry item and assigns its ID
func (r *PantryRepository) Create(ctx context.Context, item *pantry.Item) error {
	model := ItemToModel(item)
	model.ID = 0

	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return pantry.ErrDuplicateName
		}
		return result.Error
	}

	*item = ModelToItem(model)
	return nil
}

// Update overwrites the stored item's mutable fields
func (r *PantryRepository) Update(ctx context.Context, item *pantry.Item) error {
	key, ok := parseID(item.ID)
	if !ok {
		return pantry.ErrItemNotFound
	}

	updatedAt := item.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	result := r.db.WithContext(ctx).Model(&PantryItemModel{}).
		Where("id = ?", key).
		Updates(map[string]interface{}{
			"name":       item.Name,
			"quantity":   item.Quantity,
			"unit":       item.Unit,
			"category":   item.Category,
			"notes":      item.Notes,
			"updated_at": updatedAt,
		})

	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return pantry.ErrDuplicateName
		}
		return result.Error
	}

	if result.RowsAffected == 0 {
		return pantry.ErrItemNotFound
	}

	item.UpdatedAt = updatedAt
	return nil
}

// Delete removes a pantry item by ID. Unknown IDs are reported as not found.
func (r *PantryRepository) Delete(ctx context.Context, id string) (bool, error) {
	key, ok := parseID(id)
	if !ok {
		return false, pantry.ErrItemNotFound
	}

	result := r.db.WithContext(ctx).Delete(&PantryItemModel{}, "id = ?", key)
	if result.Error != nil {
		return false, result.Error
	}

	if result.RowsAffected == 0 {
		return false, pantry.ErrItemNotFound
	}

	return true, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key")
}
