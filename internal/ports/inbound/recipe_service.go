// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the interfaces that the application exposes to the outside world
package inbound

import (
	"context"

	"github.com/alchemorsel/mealplan/internal/domain/recipe"
	"github.com/google/uuid"
)

// RecipeService defines the use cases for the recipe catalog that meal plans draw from
type RecipeService interface {
	CreateRecipe(ctx context.Context, cmd CreateRecipeCommand) (*RecipeDTO, error)
	GetRecipe(ctx context.Context, recipeID uuid.UUID) (*RecipeDTO, error)
	// DeleteRecipe also removes the plan entries and snapshots referencing it
	DeleteRecipe(ctx context.Context, recipeID uuid.UUID) error
}

// CreateRecipeCommand contains data for creating a new recipe
type CreateRecipeCommand struct {
	Name              string          `json:"name" validate:"required,min=2,max=200"`
	Category          recipe.Category `json:"category" validate:"required,oneof=breakfast lunch dinner dessert drink"`
	AlternateCategory recipe.Category `json:"alternate_category,omitempty" validate:"omitempty,oneof=breakfast lunch dinner dessert drink"`
	Calories          int             `json:"calories" validate:"min=0,max=10000"`
	Protein           float64         `json:"protein" validate:"min=0"`
	Carbohydrates     float64         `json:"carbohydrates" validate:"min=0"`
	Fat               float64         `json:"fat" validate:"min=0"`
	Ingredients       string          `json:"ingredients" validate:"required"`
	DoNotScale        bool            `json:"do_not_scale"`
}

// RecipeDTO is the data transfer object for recipes
type RecipeDTO struct {
	ID                uuid.UUID       `json:"id"`
	Name              string          `json:"name"`
	Category          recipe.Category `json:"category"`
	AlternateCategory recipe.Category `json:"alternate_category,omitempty"`
	Nutrition         NutritionDTO    `json:"nutrition"`
	Ingredients       []string        `json:"ingredients"`
	DoNotScale        bool            `json:"do_not_scale"`
	CreatedAt         string          `json:"created_at"`
}

// NutritionDTO for nutrition information
type NutritionDTO struct {
	Calories      int     `json:"calories"`
	Protein       float64 `json:"protein"`
	Carbohydrates float64 `json:"carbohydrates"`
	Fat           float64 `json:"fat"`
}

// NewNutritionDTO converts domain nutrition for transport
func NewNutritionDTO(n recipe.NutritionInfo) NutritionDTO {
	return NutritionDTO{
		Calories:      n.Calories,
		Protein:       n.Protein,
		Carbohydrates: n.Carbohydrates,
		Fat:           n.Fat,
	}
}
