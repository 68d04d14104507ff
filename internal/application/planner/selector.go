// Package planner fills meal plan days with recipes drawn from the catalog,
// either at random or greedily toward a calorie target.
package planner

import (
	"context"

	"github.com/alchemorsel/mealplan/internal/domain/recipe"
	"github.com/alchemorsel/mealplan/internal/ports/outbound"
	"github.com/google/uuid"
)

// CandidateSelector draws recipe candidates for a meal category.
// Results are unordered; only membership and cardinality are meaningful.
type CandidateSelector struct {
	recipes outbound.RecipeRepository
}

// NewCandidateSelector creates a selector over the recipe store
func NewCandidateSelector(recipes outbound.RecipeRepository) *CandidateSelector {
	return &CandidateSelector{recipes: recipes}
}

// ByCategory returns up to count random recipes of category
func (s *CandidateSelector) ByCategory(ctx context.Context, category recipe.Category, count int, exclude []uuid.UUID) ([]*recipe.Recipe, error) {
	if count <= 0 {
		return nil, nil
	}
	return s.recipes.RandomByCategory(ctx, category, count, exclude)
}

// ByCategoryAndCalorieRange returns every recipe of category with calories in [minCal, maxCal]
func (s *CandidateSelector) ByCategoryAndCalorieRange(ctx context.Context, category recipe.Category, minCal, maxCal int, exclude []uuid.UUID) ([]*recipe.Recipe, error) {
	if minCal < 0 {
		minCal = 0
	}
	if maxCal < minCal {
		return nil, nil
	}
	return s.recipes.FindByCategoryAndCalorieRange(ctx, category, minCal, maxCal, exclude)
}

// UsedSet tracks recipe ids already placed during one generation run
type UsedSet map[uuid.UUID]struct{}

// NewUsedSet seeds a set with ids
func NewUsedSet(ids ...uuid.UUID) UsedSet {
	set := make(UsedSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Add marks id as used
func (u UsedSet) Add(id uuid.UUID) {
	u[id] = struct{}{}
}

// Contains reports whether id was used
func (u UsedSet) Contains(id uuid.UUID) bool {
	_, ok := u[id]
	return ok
}

// IDs returns the set as a slice for store queries
func (u UsedSet) IDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(u))
	for id := range u {
		ids = append(ids, id)
	}
	return ids
}
