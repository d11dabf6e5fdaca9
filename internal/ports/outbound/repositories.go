// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"
	"errors"
	"time"

	"github.com/pantrychef/backend/internal/domain/pantry"
	"github.com/pantrychef/backend/internal/domain/recipe"
)

// PantryRepository defines the interface for pantry persistence.
// Lookups of unknown IDs or names return pantry.ErrItemNotFound; stores that
// enforce unique names return pantry.ErrDuplicateName from Create and Update.
type PantryRepository interface {
	List(ctx context.Context) ([]pantry.Item, error)
	FindByID(ctx context.Context, id string) (*pantry.Item, error)
	FindByName(ctx context.Context, name string) (*pantry.Item, error)

	// Create assigns the item ID
	Create(ctx context.Context, item *pantry.Item) error
	Update(ctx context.Context, item *pantry.Item) error

	// Delete reports whether an item was removed. Stores that treat an
	// unknown ID as an error return pantry.ErrItemNotFound instead of false.
	Delete(ctx context.Context, id string) (bool, error)
}

// RecipeLogEntry is one generated result appended to the recipe log
type RecipeLogEntry struct {
	Mode      recipe.Mode
	Source    recipe.Source
	Title     string
	Body      string
	Payload   interface{}
	CreatedAt time.Time
}

// RecipeLog is the append-only record of generated recipes
type RecipeLog interface {
	Append(ctx context.Context, entry RecipeLogEntry) error
}

// ErrCacheMiss is returned by CacheRepository.Get for absent or expired keys
var ErrCacheMiss = errors.New("cache miss")

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
