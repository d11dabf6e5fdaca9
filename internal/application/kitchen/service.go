// Package kitchen provides the recipe generation use cases: recipe
// suggestions, meal plans and single free-text meals, all built from the pantry
package kitchen

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pantrychef/backend/internal/application/generator"
	"github.com/pantrychef/backend/internal/application/prompt"
	"github.com/pantrychef/backend/internal/domain/pantry"
	"github.com/pantrychef/backend/internal/domain/recipe"
	"github.com/pantrychef/backend/internal/ports/inbound"
	"github.com/pantrychef/backend/internal/ports/outbound"
	"github.com/pantrychef/backend/pkg/errors"
)

// Service implements the kitchen use cases
type Service struct {
	pantryRepo outbound.PantryRepository
	recipeLog  outbound.RecipeLog
	builder    *prompt.Builder
	generator  *generator.Generator
	now        func() time.Time
	logger     *zap.Logger
}

// NewService creates a new kitchen service
func NewService(
	pantryRepo outbound.PantryRepository,
	recipeLog outbound.RecipeLog,
	builder *prompt.Builder,
	gen *generator.Generator,
	logger *zap.Logger,
) *Service {
	return &Service{
		pantryRepo: pantryRepo,
		recipeLog:  recipeLog,
		builder:    builder,
		generator:  gen,
		now:        func() time.Time { return time.Now().UTC() },
		logger:     logger.Named("kitchen-service"),
	}
}

var _ inbound.KitchenService = (*Service)(nil)

// GenerateRecipes suggests recipes for the pantry
func (s *Service) GenerateRecipes(ctx context.Context, cmd inbound.GenerateRecipesCommand) (*inbound.RecipeResult, error) {
	items, err := s.loadPantry(ctx, cmd.Pantry)
	if err != nil {
		return nil, err
	}

	mode := cmd.Mode
	if mode == "" {
		mode = recipe.ModeHome
	}
	prefs := cmd.Preferences.WithDefaults()

	s.logger.Info("Generating recipes",
		zap.String("mode", mode.String()),
		zap.Int("pantry_items", len(items)),
		zap.Int("servings", prefs.Servings))

	p := s.builder.Build(prompt.Snapshot(items), mode, prefs)
	gen := s.generator.Suggest(ctx, p, mode, pantry.Names(items), prefs.Servings)

	if gen.Degraded() {
		s.logger.Warn("Recipe generation degraded",
			zap.String("source", string(gen.Source)),
			zap.Error(gen.Cause))
	}

	s.appendLog(ctx, outbound.RecipeLogEntry{
		Mode:    mode,
		Source:  gen.Source,
		Title:   strings.Join(gen.Suggestion.Titles(), ", "),
		Payload: gen.Suggestion,
	})

	return &inbound.RecipeResult{
		Mode:       mode,
		Source:     gen.Source,
		Suggestion: gen.Suggestion,
	}, nil
}

// MealPlan plans three meals around the pantry. Plans are returned, never logged.
func (s *Service) MealPlan(ctx context.Context, cmd inbound.MealPlanCommand) (*inbound.MealPlanResult, error) {
	items, err := s.loadPantry(ctx, cmd.Pantry)
	if err != nil {
		return nil, err
	}

	mode := cmd.Mode
	if mode == "" {
		mode = recipe.ModeHome
	}

	s.logger.Info("Planning meals",
		zap.String("mode", mode.String()),
		zap.Int("pantry_items", len(items)))

	p := s.builder.BuildMealPlan(prompt.Snapshot(items), mode)
	plan, source := s.generator.SuggestMealPlan(ctx, p, mode, pantry.Names(items))
	plan.ShoppingList = recipe.DedupeShoppingList(plan.ShoppingList)

	if source != recipe.SourceParsed {
		s.logger.Warn("Meal plan degraded to mock planner", zap.String("source", string(source)))
	}

	return &inbound.MealPlanResult{
		Mode:     mode,
		Source:   source,
		MealPlan: plan,
	}, nil
}

// PlanMeal produces one free-text recipe from the given names, or from the pantry
func (s *Service) PlanMeal(ctx context.Context, cmd inbound.PlanMealCommand) (*recipe.PlannedMeal, error) {
	names := recipe.DedupeStrings(cmd.Names)
	if len(names) == 0 {
		items, err := s.pantryRepo.List(ctx)
		if err != nil {
			return nil, errors.NewDatabaseError("list pantry items", err)
		}
		names = pantry.Names(items)
	}

	s.logger.Info("Planning single meal", zap.Strings("ingredients", names))

	meal, source := s.generator.PlanMeal(ctx, s.builder.BuildPlanMeal(names), names)

	s.appendLog(ctx, outbound.RecipeLogEntry{
		Mode:    recipe.ModeHome,
		Source:  source,
		Title:   meal.Title,
		Body:    meal.Body,
		Payload: meal,
	})

	return &meal, nil
}

// LLMStatus reports the wired text generator
func (s *Service) LLMStatus(ctx context.Context) inbound.LLMStatus {
	return inbound.LLMStatus{
		Provider:   s.generator.Provider(),
		Configured: s.generator.Available(),
	}
}

// loadPantry prefers the request's pantry and falls back to the store
func (s *Service) loadPantry(ctx context.Context, override []pantry.Item) ([]pantry.Item, error) {
	items := override
	if items == nil {
		stored, err := s.pantryRepo.List(ctx)
		if err != nil {
			return nil, errors.NewDatabaseError("list pantry items", err)
		}
		items = stored
	}

	if len(items) == 0 {
		return nil, errors.NewEmptyPantryError()
	}
	return items, nil
}

func (s *Service) appendLog(ctx context.Context, entry outbound.RecipeLogEntry) {
	if s.recipeLog == nil {
		return
	}
	entry.CreatedAt = s.now()

	if err := s.recipeLog.Append(ctx, entry); err != nil {
		s.logger.Error("Failed to append to recipe log",
			zap.String("title", entry.Title),
			zap.Error(err))
	}
}
