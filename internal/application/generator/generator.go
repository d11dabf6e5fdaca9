// Package generator turns prompts into recipe suggestions. It calls the
// configured text generator and degrades to heuristic parsing or static
// fallbacks so callers always receive a usable result.
package generator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pantrychef/backend/internal/domain/recipe"
	"github.com/pantrychef/backend/internal/ports/outbound"
)

// ErrUnavailable is recorded as the cause when no text generator is configured
var ErrUnavailable = errors.New("text generator not configured")

const (
	// DefaultTimeout bounds a single model call
	DefaultTimeout = 30 * time.Second
	// DefaultCacheTTL is how long parsed results stay cached
	DefaultCacheTTL = time.Hour

	cacheKeyPrefix       = "generation:"
	planMealTitleDefault = "AI-Generated Recipe"
)

// Config controls model calls and result caching
type Config struct {
	Timeout     time.Duration
	EnableCache bool
	CacheTTL    time.Duration
}

// Generator produces suggestions from prompts
type Generator struct {
	client  outbound.TextGenerator
	cache   outbound.CacheRepository
	metrics outbound.GenerationMetrics
	config  Config
	logger  *zap.Logger
}

// NewGenerator creates a generator. client, cache and metrics may be nil.
func NewGenerator(
	client outbound.TextGenerator,
	cache outbound.CacheRepository,
	metrics outbound.GenerationMetrics,
	config Config,
	logger *zap.Logger,
) *Generator {
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = DefaultCacheTTL
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}

	return &Generator{
		client:  client,
		cache:   cache,
		metrics: metrics,
		config:  config,
		logger:  logger.Named("recipe-generator"),
	}
}

// ParamsFor returns the decoding parameters for a mode
func ParamsFor(mode recipe.Mode) outbound.GenerationParams {
	if mode.IsProfessional() {
		return outbound.GenerationParams{
			DecodingMethod:    "greedy",
			MaxNewTokens:      2800,
			Temperature:       0.15,
			TopP:              0.9,
			RepetitionPenalty: 1.0,
		}
	}
	return outbound.GenerationParams{
		DecodingMethod:    "greedy",
		MaxNewTokens:      2500,
		Temperature:       0.2,
		TopP:              0.9,
		RepetitionPenalty: 1.0,
	}
}

// Available reports whether a configured text generator is wired
func (g *Generator) Available() bool {
	return g.client != nil && g.client.Configured()
}

// Provider names the wired text generator, or "mock"
func (g *Generator) Provider() string {
	if g.client == nil {
		return "mock"
	}
	return g.client.Name()
}

// Suggest runs the prompt and returns parsed, heuristic or fallback recipes
func (g *Generator) Suggest(ctx context.Context, prompt string, mode recipe.Mode, pantryNames []string, servings int) recipe.Generation {
	if servings <= 0 {
		servings = recipe.DefaultServings
	}

	suggestion, raw, err := g.attempt(ctx, prompt, mode, pantryNames, servings)
	if err == nil {
		return g.record(mode, recipe.Generation{Source: recipe.SourceParsed, Suggestion: suggestion, Raw: raw})
	}

	if raw != "" && !errors.Is(err, recipe.ErrNoRecipes) && !containsJSON(raw) {
		if h, ok := Heuristic(raw, mode, pantryNames); ok {
			g.logger.Warn("Model output was not JSON, using heuristic parse",
				zap.String("mode", mode.String()),
				zap.Error(err))
			return g.record(mode, recipe.Generation{Source: recipe.SourceHeuristic, Suggestion: h, Raw: raw, Cause: err})
		}
	}

	g.logger.Warn("Serving fallback recipes",
		zap.String("mode", mode.String()),
		zap.Error(err))
	return g.record(mode, recipe.Generation{Source: recipe.SourceFallback, Suggestion: Fallback(mode), Raw: raw, Cause: err})
}

// SuggestMealPlan runs a meal-plan prompt, falling back to MockMealPlan
// whenever the model output cannot be parsed
func (g *Generator) SuggestMealPlan(ctx context.Context, prompt string, mode recipe.Mode, pantryNames []string) (recipe.MealPlan, recipe.Source) {
	suggestion, _, err := g.attempt(ctx, prompt, mode, pantryNames, recipe.DefaultServings)
	if err == nil {
		g.metrics.ObserveGeneration(mode.String(), string(recipe.SourceParsed))
		return recipe.MealPlan{Meals: suggestion.Recipes, ShoppingList: suggestion.ShoppingList}, recipe.SourceParsed
	}

	g.logger.Warn("Serving mock meal plan",
		zap.String("mode", mode.String()),
		zap.Error(err))
	g.metrics.ObserveGeneration(mode.String(), string(recipe.SourceFallback))
	return MockMealPlan(pantryNames, mode), recipe.SourceFallback
}

type wirePlannedMeal struct {
	Title        flexString  `json:"title"`
	Instructions flexStrings `json:"instructions"`
	Missing      flexStrings `json:"missing_ingredients"`
}

// PlanMeal runs the single-recipe prompt. Unparseable output is returned
// verbatim as the body; an unavailable or failing model yields MockPlanMeal.
func (g *Generator) PlanMeal(ctx context.Context, prompt string, names []string) (recipe.PlannedMeal, recipe.Source) {
	const mode = "plan-meal"

	if !g.Available() {
		g.metrics.ObserveGeneration(mode, string(recipe.SourceFallback))
		return MockPlanMeal(names), recipe.SourceFallback
	}

	raw, err := g.complete(ctx, prompt, ParamsFor(recipe.ModeHome))
	if err != nil {
		g.logger.Warn("Plan meal generation failed, serving mock", zap.Error(err))
		g.metrics.ObserveGeneration(mode, string(recipe.SourceFallback))
		return MockPlanMeal(names), recipe.SourceFallback
	}

	if doc, ok := ExtractJSON(raw); ok {
		var w wirePlannedMeal
		if err := json.Unmarshal([]byte(doc), &w); err == nil && len(w.Instructions) > 0 {
			g.metrics.ObserveGeneration(mode, string(recipe.SourceParsed))
			return recipe.PlannedMeal{
				Title:   string(firstNonEmpty(w.Title, planMealTitleDefault)),
				Body:    strings.Join(w.Instructions, "\n"),
				Missing: recipe.MissingFrom(w.Missing, names),
			}, recipe.SourceParsed
		}
	}

	g.metrics.ObserveGeneration(mode, string(recipe.SourceHeuristic))
	return recipe.PlannedMeal{
		Title:   planMealTitleDefault,
		Body:    strings.TrimSpace(raw),
		Missing: []string{},
	}, recipe.SourceHeuristic
}

// attempt returns a parsed suggestion, or the raw output (if any) with the
// reason it could not be used
func (g *Generator) attempt(ctx context.Context, prompt string, mode recipe.Mode, pantryNames []string, servings int) (recipe.Suggestion, string, error) {
	if !g.Available() {
		return recipe.Suggestion{}, "", ErrUnavailable
	}

	key := cacheKey(g.Provider(), prompt)
	if s, ok := g.cached(ctx, key); ok {
		return s, "", nil
	}

	raw, err := g.complete(ctx, prompt, ParamsFor(mode))
	if err != nil {
		return recipe.Suggestion{}, "", err
	}

	s, err := DecodeSuggestion(raw, servings)
	if err != nil {
		return recipe.Suggestion{}, raw, err
	}
	s.Reconcile(pantryNames)

	g.store(ctx, key, s)
	return s, raw, nil
}

func (g *Generator) complete(ctx context.Context, prompt string, params outbound.GenerationParams) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.config.Timeout)
	defer cancel()

	start := time.Now()
	text, err := g.client.Generate(ctx, prompt, params)
	duration := time.Since(start)

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	g.metrics.ObserveLLMRequest(g.client.Name(), outcome, duration)

	if err != nil {
		return "", err
	}

	g.logger.Debug("Model call completed",
		zap.String("provider", g.client.Name()),
		zap.Duration("duration", duration),
		zap.Int("response_length", len(text)))

	return text, nil
}

func (g *Generator) cached(ctx context.Context, key string) (recipe.Suggestion, bool) {
	if !g.config.EnableCache || g.cache == nil {
		return recipe.Suggestion{}, false
	}

	data, err := g.cache.Get(ctx, key)
	if err != nil || data == nil {
		return recipe.Suggestion{}, false
	}

	var s recipe.Suggestion
	if err := json.Unmarshal(data, &s); err != nil {
		g.logger.Warn("Discarding unreadable cache entry", zap.String("key", key), zap.Error(err))
		return recipe.Suggestion{}, false
	}

	g.logger.Debug("Generation served from cache", zap.String("key", key))
	return s, true
}

func (g *Generator) store(ctx context.Context, key string, s recipe.Suggestion) {
	if !g.config.EnableCache || g.cache == nil {
		return
	}

	data, err := json.Marshal(s)
	if err != nil {
		return
	}
	if err := g.cache.Set(ctx, key, data, g.config.CacheTTL); err != nil {
		g.logger.Warn("Failed to cache generation", zap.String("key", key), zap.Error(err))
	}
}

func (g *Generator) record(mode recipe.Mode, gen recipe.Generation) recipe.Generation {
	g.metrics.ObserveGeneration(mode.String(), string(gen.Source))
	return gen
}

// containsJSON reports whether the output held a JSON document. Such output
// is never shown to users as free-text steps.
func containsJSON(raw string) bool {
	_, ok := ExtractJSON(raw)
	return ok
}

func cacheKey(provider, prompt string) string {
	sum := sha256.Sum256([]byte(provider + "\x00" + prompt))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

type nopMetrics struct{}

func (nopMetrics) ObserveGeneration(string, string) {}

func (nopMetrics) ObserveLLMRequest(string, string, time.Duration) {}
