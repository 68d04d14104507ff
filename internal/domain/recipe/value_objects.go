package recipe

import (
	"math"
	"strings"
)

// Value Objects - Immutable objects that describe aspects of the domain

// Category represents the meal slot a recipe is meant for
type Category string

const (
	CategoryBreakfast Category = "breakfast"
	CategoryLunch     Category = "lunch"
	CategoryDinner    Category = "dinner"
	CategoryDessert   Category = "dessert"
	CategoryDrink     Category = "drink"
)

// Categories lists every category in display order
var Categories = []Category{
	CategoryBreakfast,
	CategoryLunch,
	CategoryDinner,
	CategoryDessert,
	CategoryDrink,
}

// IsValid reports whether c is a known category
func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory normalizes and validates a category name
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", ErrInvalidCategory
	}
	return c, nil
}

// NutritionInfo contains nutritional information for one serving
type NutritionInfo struct {
	Calories      int
	Protein       float64 // in grams
	Carbohydrates float64 // in grams
	Fat           float64 // in grams
}

// Validate validates the nutrition values
func (n NutritionInfo) Validate() error {
	if n.Calories < 0 || n.Protein < 0 || n.Carbohydrates < 0 || n.Fat < 0 {
		return ErrNegativeNutrition
	}
	return nil
}

// Scale returns the nutrition multiplied by factor. Calories are rounded
// to the nearest integer, macros are left unrounded.
func (n NutritionInfo) Scale(factor float64) NutritionInfo {
	return NutritionInfo{
		Calories:      int(math.Round(float64(n.Calories) * factor)),
		Protein:       n.Protein * factor,
		Carbohydrates: n.Carbohydrates * factor,
		Fat:           n.Fat * factor,
	}
}

// IngredientLines splits free-form ingredient text into trimmed, non-empty lines
func IngredientLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}
