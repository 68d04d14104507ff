package recipe

import "errors"

// Domain errors for recipe operations

var (
	// Entity validation errors
	ErrNameTooShort      = errors.New("recipe name must be at least 2 characters")
	ErrNameTooLong       = errors.New("recipe name must not exceed 200 characters")
	ErrInvalidCategory   = errors.New("recipe category must be one of breakfast, lunch, dinner, dessert, drink")
	ErrNegativeNutrition = errors.New("recipe nutrition values cannot be negative")
	ErrNoIngredients     = errors.New("recipe must have at least one ingredient line")

	// Lookup errors
	ErrRecipeNotFound = errors.New("recipe not found")
)
