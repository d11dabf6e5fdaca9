// Package pantry provides the application layer for pantry management
// This implements the pantry use cases defined in the inbound ports
package pantry

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pantrychef/backend/internal/domain/pantry"
	"github.com/pantrychef/backend/internal/domain/recipe"
	"github.com/pantrychef/backend/internal/ports/inbound"
	"github.com/pantrychef/backend/internal/ports/outbound"
	"github.com/pantrychef/backend/pkg/errors"
)

// Config controls how adds are merged into the pantry
type Config struct {
	// UpsertByName merges an add into an existing item with the same name
	UpsertByName bool
}

// Service implements the pantry use cases
type Service struct {
	repo   outbound.PantryRepository
	config Config
	now    func() time.Time
	logger *zap.Logger

	// writeMu serializes read-modify-write sequences such as the name upsert
	writeMu sync.Mutex
}

// NewService creates a new pantry service
func NewService(repo outbound.PantryRepository, config Config, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		config: config,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger.Named("pantry-service"),
	}
}

var _ inbound.PantryService = (*Service)(nil)

// List returns every pantry item
func (s *Service) List(ctx context.Context) ([]pantry.Item, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, errors.NewDatabaseError("list pantry items", err)
	}
	if items == nil {
		items = []pantry.Item{}
	}
	return items, nil
}

// Add stores a new item, or merges it into an existing one when upserting by name
func (s *Service) Add(ctx context.Context, cmd inbound.AddItemCommand) (*inbound.AddItemResult, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	now := s.now()

	item, err := pantry.NewItem(cmd.Name, cmd.Quantity, cmd.Unit, cmd.Category, now)
	if err != nil {
		return nil, validationError(err)
	}

	if s.config.UpsertByName {
		existing, err := s.repo.FindByName(ctx, item.Name)
		switch {
		case err == nil:
			existing.Quantity = item.Quantity
			existing.Unit = item.Unit
			if item.Category != "" {
				existing.Category = item.Category
			}
			existing.UpdatedAt = now

			if err := s.repo.Update(ctx, existing); err != nil {
				return nil, errors.NewDatabaseError("update pantry item", err)
			}

			s.logger.Info("Pantry item updated",
				zap.String("item_id", existing.ID),
				zap.String("name", existing.Name))
			return &inbound.AddItemResult{Item: *existing, Created: false}, nil
		case !stderrors.Is(err, pantry.ErrItemNotFound):
			return nil, errors.NewDatabaseError("find pantry item", err)
		}
	}

	if err := s.repo.Create(ctx, item); err != nil {
		if stderrors.Is(err, pantry.ErrDuplicateName) {
			return nil, errors.NewConflictError(item.Name + " is already in the pantry").WithCause(err)
		}
		return nil, errors.NewDatabaseError("create pantry item", err)
	}

	s.logger.Info("Pantry item added",
		zap.String("item_id", item.ID),
		zap.String("name", item.Name),
		zap.Float64("quantity", item.Quantity))

	return &inbound.AddItemResult{Item: *item, Created: true}, nil
}

// Update applies a partial update to an existing item
func (s *Service) Update(ctx context.Context, id string, patch pantry.Patch) (*pantry.Item, error) {
	if err := patch.Validate(); err != nil {
		return nil, validationError(err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, pantry.ErrItemNotFound) {
			return nil, errors.NewPantryItemNotFoundError(id)
		}
		return nil, errors.NewDatabaseError("find pantry item", err)
	}

	if patch.IsEmpty() {
		return item, nil
	}

	if err := item.Apply(patch, s.now()); err != nil {
		return nil, validationError(err)
	}

	if err := s.repo.Update(ctx, item); err != nil {
		if stderrors.Is(err, pantry.ErrItemNotFound) {
			return nil, errors.NewPantryItemNotFoundError(id)
		}
		if stderrors.Is(err, pantry.ErrDuplicateName) {
			return nil, errors.NewConflictError(item.Name + " is already in the pantry").WithCause(err)
		}
		return nil, errors.NewDatabaseError("update pantry item", err)
	}

	s.logger.Info("Pantry item updated", zap.String("item_id", id))
	return item, nil
}

// Delete removes an item. Whether an unknown ID is an error depends on the store.
func (s *Service) Delete(ctx context.Context, id string) (*inbound.DeleteItemResult, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		if stderrors.Is(err, pantry.ErrItemNotFound) {
			return nil, errors.NewPantryItemNotFoundError(id)
		}
		return nil, errors.NewDatabaseError("delete pantry item", err)
	}

	s.logger.Info("Pantry item delete processed",
		zap.String("item_id", id),
		zap.Bool("deleted", deleted))

	return &inbound.DeleteItemResult{ID: id, Deleted: deleted}, nil
}

// ShoppingList returns the ingredients the pantry does not have
func (s *Service) ShoppingList(ctx context.Context, ingredients []string) ([]string, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, errors.NewDatabaseError("list pantry items", err)
	}
	return recipe.MissingFrom(ingredients, pantry.Names(items)), nil
}

func validationError(err error) error {
	switch {
	case stderrors.Is(err, pantry.ErrNameRequired):
		return errors.NewValidationError("Item name is required").WithCause(err)
	case stderrors.Is(err, pantry.ErrInvalidQuantity):
		return errors.NewValidationError("Quantity must be greater than 0").WithCause(err)
	default:
		return errors.NewBadRequestError(err.Error()).WithCause(err)
	}
}
