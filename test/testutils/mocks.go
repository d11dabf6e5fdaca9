// Package testutils provides mock implementations for testing
package testutils

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/pantrychef/backend/internal/domain/pantry"
	"github.com/pantrychef/backend/internal/ports/outbound"
)

// MockPantryRepository provides a mock implementation of PantryRepository
type MockPantryRepository struct {
	mock.Mock
}

// List lists all items
func (m *MockPantryRepository) List(ctx context.Context) ([]pantry.Item, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]pantry.Item), args.Error(1)
}

// FindByID finds an item by ID
func (m *MockPantryRepository) FindByID(ctx context.Context, id string) (*pantry.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pantry.Item), args.Error(1)
}

// FindByName finds an item by name
func (m *MockPantryRepository) FindByName(ctx context.Context, name string) (*pantry.Item, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pantry.Item), args.Error(1)
}

// Create stores an item
func (m *MockPantryRepository) Create(ctx context.Context, item *pantry.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

// Update updates an item
func (m *MockPantryRepository) Update(ctx context.Context, item *pantry.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

// Delete deletes an item
func (m *MockPantryRepository) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockRecipeLog provides a mock implementation of RecipeLog
type MockRecipeLog struct {
	mock.Mock
}

// Append appends a log entry
func (m *MockRecipeLog) Append(ctx context.Context, entry outbound.RecipeLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// MockTextGenerator provides a mock implementation of TextGenerator
type MockTextGenerator struct {
	mock.Mock
}

// Name returns the provider name
func (m *MockTextGenerator) Name() string {
	args := m.Called()
	return args.String(0)
}

// Configured reports whether credentials are present
func (m *MockTextGenerator) Configured() bool {
	args := m.Called()
	return args.Bool(0)
}

// Generate completes a prompt
func (m *MockTextGenerator) Generate(ctx context.Context, prompt string, params outbound.GenerationParams) (string, error) {
	args := m.Called(ctx, prompt, params)
	return args.String(0), args.Error(1)
}

// HealthCheck checks provider reachability
func (m *MockTextGenerator) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockCacheRepository provides a mock implementation of CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

// Get gets a value
func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// Set sets a value
func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

// Delete deletes a value
func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// Exists checks for a key
func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// MockGenerationMetrics provides a mock implementation of GenerationMetrics
type MockGenerationMetrics struct {
	mock.Mock
}

// ObserveGeneration records a generation outcome
func (m *MockGenerationMetrics) ObserveGeneration(mode, source string) {
	m.Called(mode, source)
}

// ObserveLLMRequest records a model call
func (m *MockGenerationMetrics) ObserveLLMRequest(provider, outcome string, duration time.Duration) {
	m.Called(provider, outcome, duration)
}
