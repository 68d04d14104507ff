package mealplan

import (
	"time"

	"github.com/alchemorsel/mealplan/internal/domain/recipe"
	"github.com/google/uuid"
)

// PairKey identifies the (entry, person) pair a snapshot belongs to
type PairKey struct {
	EntryID  uuid.UUID
	PersonID uuid.UUID
}

// ScaledRecipe is the persisted, person-specific version of one entry's recipe.
// Ingredient lines are stored verbatim.
type ScaledRecipe struct {
	ID          uuid.UUID
	PlanID      uuid.UUID
	EntryID     uuid.UUID
	PersonID    uuid.UUID
	Factor      float64
	Nutrition   recipe.NutritionInfo
	Ingredients []string
	CreatedAt   time.Time
}

// NewScaledRecipe builds a snapshot, scaling base nutrition linearly by factor
func NewScaledRecipe(planID uuid.UUID, entry Entry, person Person, factor float64, ingredients []string) *ScaledRecipe {
	return &ScaledRecipe{
		ID:          uuid.New(),
		PlanID:      planID,
		EntryID:     entry.ID,
		PersonID:    person.ID,
		Factor:      factor,
		Nutrition:   entry.Recipe.Nutrition().Scale(factor),
		Ingredients: ingredients,
		CreatedAt:   time.Now(),
	}
}

// Key returns the snapshot's (entry, person) pair
func (s *ScaledRecipe) Key() PairKey {
	return PairKey{EntryID: s.EntryID, PersonID: s.PersonID}
}

// ShoppingItem is one aggregated line of a shopping list
type ShoppingItem struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Category string `json:"category"`
}

// ShoppingList is the single shopping list of a plan
type ShoppingList struct {
	ID          uuid.UUID
	PlanID      uuid.UUID
	Items       []ShoppingItem
	GeneratedAt time.Time
}

// NewShoppingList wraps generated items for a plan
func NewShoppingList(planID uuid.UUID, items []ShoppingItem) *ShoppingList {
	return &ShoppingList{
		ID:          uuid.New(),
		PlanID:      planID,
		Items:       items,
		GeneratedAt: time.Now(),
	}
}

// PseudoRecipe is an entry flattened for shopping-list generation. When the
// plan has persons, Ingredients holds every person's scaled lines.
type PseudoRecipe struct {
	Name        string          `json:"name"`
	Calories    int             `json:"calories"`
	Category    recipe.Category `json:"category"`
	Ingredients string          `json:"ingredients"`
}
