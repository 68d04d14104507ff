// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"

	"github.com/alchemorsel/mealplan/internal/domain/mealplan"
	"github.com/alchemorsel/mealplan/internal/domain/recipe"
	"github.com/google/uuid"
)

// RecipeRepository defines the interface for recipe persistence.
// Lookups of missing recipes return recipe.ErrRecipeNotFound.
type RecipeRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, recipe *recipe.Recipe) error
	FindByID(ctx context.Context, id uuid.UUID) (*recipe.Recipe, error)
	// Delete removes the recipe together with the entries and snapshots referencing it
	Delete(ctx context.Context, id uuid.UUID) error

	// Candidate queries. Category matches the recipe's category or its
	// alternate category; ids in exclude are never returned.

	// RandomByCategory returns up to count recipes sampled at random without replacement
	RandomByCategory(ctx context.Context, category recipe.Category, count int, exclude []uuid.UUID) ([]*recipe.Recipe, error)
	// FindByCategoryAndCalorieRange returns every recipe with calories in [minCal, maxCal]
	FindByCategoryAndCalorieRange(ctx context.Context, category recipe.Category, minCal, maxCal int, exclude []uuid.UUID) ([]*recipe.Recipe, error)
}

// MealPlanRepository defines the interface for meal plan persistence.
// FindByID returns days ordered by date and entries ordered by sort order,
// with their recipes loaded.
type MealPlanRepository interface {
	Create(ctx context.Context, plan *mealplan.MealPlan) error
	FindByID(ctx context.Context, id uuid.UUID) (*mealplan.MealPlan, error)
	AddEntry(ctx context.Context, entry *mealplan.Entry) error
	// DeleteEntry removes the entry and its scaled snapshots
	DeleteEntry(ctx context.Context, planID, entryID uuid.UUID) error
}

// PersonRepository defines the interface for plan person persistence
type PersonRepository interface {
	// ListForPlan returns persons in creation order
	ListForPlan(ctx context.Context, planID uuid.UUID) ([]mealplan.Person, error)
	Create(ctx context.Context, person *mealplan.Person) error
	// Delete removes the person and its scaled snapshots
	Delete(ctx context.Context, planID, personID uuid.UUID) error
}

// SnapshotRepository stores person-specific scaled recipes.
// Create returns mealplan.ErrDuplicateSnapshot when the (entry, person) pair exists.
type SnapshotRepository interface {
	Create(ctx context.Context, snapshot *mealplan.ScaledRecipe) error
	DeleteAllForPlan(ctx context.Context, planID uuid.UUID) (int64, error)
	ListForPlan(ctx context.Context, planID uuid.UUID) ([]mealplan.ScaledRecipe, error)
}

// ShoppingListRepository stores the single shopping list of each plan
type ShoppingListRepository interface {
	// Upsert replaces any previous list of the same plan
	Upsert(ctx context.Context, list *mealplan.ShoppingList) error
	FindByPlanID(ctx context.Context, planID uuid.UUID) (*mealplan.ShoppingList, error)
}
