package gorm

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/pantrychef/backend/internal/ports/outbound"
)

// RecipeLogRepository appends generated recipes to the recipes table
type RecipeLogRepository struct {
	db *gorm.DB
}

// NewRecipeLogRepository creates a new recipe log repository
func NewRecipeLogRepository(db *gorm.DB) *RecipeLogRepository {
	return &RecipeLogRepository{db: db}
}

var _ outbound.RecipeLog = (*RecipeLogRepository)(nil)

// Append stores one entry
func (r *RecipeLogRepository) Append(ctx context.Context, entry outbound.RecipeLogEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	model, err := EntryToModel(entry)
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Create(model).Error
}
