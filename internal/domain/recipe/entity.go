// Package recipe contains the core domain logic for recipes used by meal plans.
// Recipes are immutable once a plan entry references them.
package recipe

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Recipe represents the core recipe entity in our domain.
type Recipe struct {
	id uuid.UUID

	name              string
	category          Category
	alternateCategory Category

	// Per serving
	nutrition NutritionInfo

	// Free-form, one ingredient per line
	ingredients string

	// Fixed-portion recipes (whole loaves, bottles) are never resized
	doNotScale bool

	createdAt time.Time
	updatedAt time.Time
}

// NewRecipe creates a new Recipe with validation
func NewRecipe(name string, category Category, nutrition NutritionInfo, ingredients string) (*Recipe, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}

	if !category.IsValid() {
		return nil, ErrInvalidCategory
	}

	if err := nutrition.Validate(); err != nil {
		return nil, err
	}

	if len(IngredientLines(ingredients)) == 0 {
		return nil, ErrNoIngredients
	}

	now := time.Now()
	return &Recipe{
		id:          uuid.New(),
		name:        name,
		category:    category,
		nutrition:   nutrition,
		ingredients: ingredients,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// Snapshot holds the persisted state of a recipe
type Snapshot struct {
	ID                uuid.UUID
	Name              string
	Category          Category
	AlternateCategory Category
	Nutrition         NutritionInfo
	Ingredients       string
	DoNotScale        bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Reconstitute rebuilds a recipe from storage without re-running validation
func Reconstitute(s Snapshot) *Recipe {
	return &Recipe{
		id:                s.ID,
		name:              s.Name,
		category:          s.Category,
		alternateCategory: s.AlternateCategory,
		nutrition:         s.Nutrition,
		ingredients:       s.Ingredients,
		doNotScale:        s.DoNotScale,
		createdAt:         s.CreatedAt,
		updatedAt:         s.UpdatedAt,
	}
}

// ID returns the recipe's unique identifier
func (r *Recipe) ID() uuid.UUID {
	return r.id
}

// Name returns the recipe's name
func (r *Recipe) Name() string {
	return r.name
}

// Category returns the recipe's default category
func (r *Recipe) Category() Category {
	return r.category
}

// AlternateCategory returns the secondary category, or "" if none
func (r *Recipe) AlternateCategory() Category {
	return r.alternateCategory
}

// Nutrition returns the per-serving nutrition
func (r *Recipe) Nutrition() NutritionInfo {
	return r.nutrition
}

// Calories returns the per-serving calories
func (r *Recipe) Calories() int {
	return r.nutrition.Calories
}

// Ingredients returns the raw ingredient text
func (r *Recipe) Ingredients() string {
	return r.ingredients
}

// IngredientLines returns the ingredient text split into lines
func (r *Recipe) IngredientLines() []string {
	return IngredientLines(r.ingredients)
}

// DoNotScale reports whether the recipe has a fixed portion
func (r *Recipe) DoNotScale() bool {
	return r.doNotScale
}

// CreatedAt returns when the recipe was created
func (r *Recipe) CreatedAt() time.Time {
	return r.createdAt
}

// UpdatedAt returns when the recipe was last updated
func (r *Recipe) UpdatedAt() time.Time {
	return r.updatedAt
}

// MatchesCategory reports whether the recipe can fill a slot of category c
func (r *Recipe) MatchesCategory(c Category) bool {
	return r.category == c || (r.alternateCategory != "" && r.alternateCategory == c)
}

// MarkDoNotScale flags the recipe as a fixed portion
func (r *Recipe) MarkDoNotScale() {
	r.doNotScale = true
	r.updatedAt = time.Now()
}

// SetAlternateCategory sets the secondary category the recipe may fill
func (r *Recipe) SetAlternateCategory(c Category) error {
	if c != "" && !c.IsValid() {
		return ErrInvalidCategory
	}
	r.alternateCategory = c
	r.updatedAt = time.Now()
	return nil
}

// ToSnapshot exports the recipe state for persistence
func (r *Recipe) ToSnapshot() Snapshot {
	return Snapshot{
		ID:                r.id,
		Name:              r.name,
		Category:          r.category,
		AlternateCategory: r.alternateCategory,
		Nutrition:         r.nutrition,
		Ingredients:       r.ingredients,
		DoNotScale:        r.doNotScale,
		CreatedAt:         r.createdAt,
		UpdatedAt:         r.updatedAt,
	}
}

func validateName(name string) error {
	if len(name) < 2 {
		return ErrNameTooShort
	}
	if len(name) > 200 {
		return ErrNameTooLong
	}
	return nil
}
