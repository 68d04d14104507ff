// Package testutils provides mock implementations for testing
package testutils

import (
	"context"
	"sync"

	"github.com/alchemorsel/mealplan/internal/domain/mealplan"
	"github.com/alchemorsel/mealplan/internal/ports/outbound"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockIngredientScaler provides a mock implementation of IngredientScaler
type MockIngredientScaler struct {
	mock.Mock
}

// Ready reports readiness
func (m *MockIngredientScaler) Ready() error {
	args := m.Called()
	return args.Error(0)
}

// ScaleIngredients scales ingredient lines
func (m *MockIngredientScaler) ScaleIngredients(ctx context.Context, req outbound.ScaleRequest) ([]string, error) {
	args := m.Called(ctx, req)
	lines, _ := args.Get(0).([]string)
	return lines, args.Error(1)
}

// MockShoppingListGenerator provides a mock implementation of ShoppingListGenerator
type MockShoppingListGenerator struct {
	mock.Mock
}

// Ready reports readiness
func (m *MockShoppingListGenerator) Ready() error {
	args := m.Called()
	return args.Error(0)
}

// GenerateShoppingList aggregates shopping items
func (m *MockShoppingListGenerator) GenerateShoppingList(ctx context.Context, days map[int][]mealplan.PseudoRecipe) ([]mealplan.ShoppingItem, error) {
	args := m.Called(ctx, days)
	items, _ := args.Get(0).([]mealplan.ShoppingItem)
	return items, args.Error(1)
}

// MockTextGenerator provides a mock implementation of TextGenerator
type MockTextGenerator struct {
	mock.Mock
}

// Provider returns the mocked provider
func (m *MockTextGenerator) Provider() outbound.AIProvider {
	return outbound.AIProviderOllama
}

// Model returns the mocked model name
func (m *MockTextGenerator) Model() string {
	return "mock-model"
}

// GenerateJSON returns the mocked reply
func (m *MockTextGenerator) GenerateJSON(ctx context.Context, system, prompt string) (string, error) {
	args := m.Called(ctx, system, prompt)
	return args.String(0), args.Error(1)
}

// MockPlanLocker provides a mock implementation of PlanLocker
type MockPlanLocker struct {
	mock.Mock
}

// Acquire takes the plan lock
func (m *MockPlanLocker) Acquire(ctx context.Context, planID uuid.UUID) (func(), error) {
	args := m.Called(ctx, planID)
	if err := args.Error(0); err != nil {
		return nil, err
	}
	return func() {}, nil
}

// RecordingMetrics records business metrics in memory
type RecordingMetrics struct {
	mu         sync.Mutex
	Added      int
	Shortfalls map[string]int
	Snapshots  map[string]int
	Factors    []float64
	AICalls    map[string]int
}

// NewRecordingMetrics creates an empty recorder
func NewRecordingMetrics() *RecordingMetrics {
	return &RecordingMetrics{
		Shortfalls: make(map[string]int),
		Snapshots:  make(map[string]int),
		AICalls:    make(map[string]int),
	}
}

func (r *RecordingMetrics) RecipesAdded(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Added += n
}

func (r *RecordingMetrics) Shortfall(category string, missing int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Shortfalls[category] += missing
}

func (r *RecordingMetrics) Snapshot(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Snapshots[outcome]++
}

func (r *RecordingMetrics) ScalingFactor(factor float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Factors = append(r.Factors, factor)
}

func (r *RecordingMetrics) AICall(operation, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.AICalls[operation+"/"+outcome]++
}
