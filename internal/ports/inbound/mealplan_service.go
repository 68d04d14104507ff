package inbound

import (
	"context"

	"github.com/alchemorsel/mealplan/internal/domain/recipe"
	"github.com/google/uuid"
)

// MealPlanService defines the meal plan use cases: manual editing, persons,
// auto-generation, per-person scaling and shopping lists
type MealPlanService interface {
	// Plan editing
	CreatePlan(ctx context.Context, cmd CreatePlanCommand) (*MealPlanDTO, error)
	GetPlan(ctx context.Context, planID uuid.UUID) (*MealPlanDTO, error)
	AddEntry(ctx context.Context, cmd AddEntryCommand) (*MealPlanDTO, error)
	RemoveEntry(ctx context.Context, planID, entryID uuid.UUID) error

	// Persons sharing the plan
	AddPerson(ctx context.Context, cmd AddPersonCommand) (*PersonDTO, error)
	RemovePerson(ctx context.Context, planID, personID uuid.UUID) error

	// Engine operations, serialized per plan
	AutoGenerate(ctx context.Context, cmd AutoGenerateCommand) (*AutoGenerateResult, error)
	Scale(ctx context.Context, cmd ScaleCommand) (*ScaleResult, error)
	GenerateShoppingList(ctx context.Context, planID uuid.UUID) (*ShoppingListDTO, error)
	GetShoppingList(ctx context.Context, planID uuid.UUID) (*ShoppingListDTO, error)
}

// ScaleMode selects how existing snapshots are treated
type ScaleMode string

const (
	// ScaleModeReset deletes every snapshot of the plan and recomputes them
	ScaleModeReset ScaleMode = "reset"
	// ScaleModeFillMissing keeps existing snapshots and only creates missing pairs
	ScaleModeFillMissing ScaleMode = "fill_missing"
)

// Commands

// CreatePlanCommand contains data for creating a plan. Dates use YYYY-MM-DD.
type CreatePlanCommand struct {
	Name      string `json:"name" validate:"required,max=200"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

// AddEntryCommand adds a recipe to a day manually. An empty Category uses the recipe's own.
type AddEntryCommand struct {
	PlanID   uuid.UUID       `json:"-" validate:"required"`
	DayID    uuid.UUID       `json:"day_id" validate:"required"`
	RecipeID uuid.UUID       `json:"recipe_id" validate:"required"`
	Category recipe.Category `json:"category,omitempty" validate:"omitempty,oneof=breakfast lunch dinner dessert drink"`
}

// AddPersonCommand registers a person on a plan
type AddPersonCommand struct {
	PlanID         uuid.UUID `json:"-" validate:"required"`
	Name           string    `json:"name" validate:"required,max=100"`
	TargetCalories int       `json:"target_calories" validate:"required,min=1000,max=5000"`
}

// AutoGenerateCommand fills the plan's empty slots. Zero values select the
// configured defaults.
type AutoGenerateCommand struct {
	PlanID           uuid.UUID         `json:"-" validate:"required"`
	Categories       []recipe.Category `json:"categories" validate:"omitempty,dive,oneof=breakfast lunch dinner dessert drink"`
	PerDay           int               `json:"per_day" validate:"min=0,max=5"`
	TargetCalories   int               `json:"target_calories" validate:"omitempty,min=500,max=10000"`
	CalorieMargin    int               `json:"calorie_margin" validate:"min=0,max=2000"`
	OptimizeCalories bool              `json:"optimize_calories"`
	SkipScaling      bool              `json:"skip_scaling"`
}

// ScaleCommand computes per-person snapshots for a plan
type ScaleCommand struct {
	PlanID uuid.UUID `json:"-" validate:"required"`
	Mode   ScaleMode `json:"mode" validate:"required,oneof=reset fill_missing"`
}

// Results

// ShortfallDTO reports a category the candidate pool could not fill on a day
type ShortfallDTO struct {
	Date     string          `json:"date"`
	Category recipe.Category `json:"category"`
	Missing  int             `json:"missing"`
}

// AutoGenerateResult carries counts and non-fatal warnings. A non-empty
// Warnings list does not mean the generation failed.
type AutoGenerateResult struct {
	Added      int            `json:"added"`
	Optimized  bool           `json:"optimized"`
	Target     int            `json:"target_calories,omitempty"`
	Shortfalls []ShortfallDTO `json:"shortfalls,omitempty"`
	Warnings   []string       `json:"warnings,omitempty"`
	Scaling    *ScaleResult   `json:"scaling,omitempty"`
	Plan       *MealPlanDTO   `json:"plan"`
}

// ScaleResult carries scaling counts and non-fatal warnings
type ScaleResult struct {
	Mode     ScaleMode    `json:"mode"`
	Deleted  int64        `json:"deleted,omitempty"`
	Scaled   int          `json:"scaled"`
	Skipped  int          `json:"skipped"`
	Failed   int          `json:"failed"`
	Warnings []string     `json:"warnings,omitempty"`
	Plan     *MealPlanDTO `json:"plan,omitempty"`
}

// DTOs

// MealPlanDTO is the data transfer object for plans
type MealPlanDTO struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	StartDate string      `json:"start_date"`
	EndDate   string      `json:"end_date"`
	Days      []DayDTO    `json:"days"`
	Persons   []PersonDTO `json:"persons"`
}

// DayDTO for a plan day
type DayDTO struct {
	ID      uuid.UUID  `json:"id"`
	Date    string     `json:"date"`
	Weekday int        `json:"weekday"`
	Entries []EntryDTO `json:"entries"`
}

// EntryDTO for a plan entry with its per-person snapshots
type EntryDTO struct {
	ID        uuid.UUID         `json:"id"`
	RecipeID  uuid.UUID         `json:"recipe_id"`
	Name      string            `json:"name"`
	Category  recipe.Category   `json:"category"`
	SortOrder int               `json:"sort_order"`
	Calories  int               `json:"calories"`
	Scaled    []ScaledRecipeDTO `json:"scaled,omitempty"`
}

// ScaledRecipeDTO for one person's snapshot of an entry
type ScaledRecipeDTO struct {
	PersonID    uuid.UUID    `json:"person_id"`
	Factor      float64      `json:"factor"`
	Nutrition   NutritionDTO `json:"nutrition"`
	Ingredients []string     `json:"ingredients"`
}

// PersonDTO for a plan person
type PersonDTO struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	TargetCalories int       `json:"target_calories"`
}

// ShoppingListDTO for a plan's shopping list
type ShoppingListDTO struct {
	PlanID      uuid.UUID         `json:"plan_id"`
	Items       []ShoppingItemDTO `json:"items"`
	GeneratedAt string            `json:"generated_at"`
}

// ShoppingItemDTO for one shopping line
type ShoppingItemDTO struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Category string `json:"category"`
}
