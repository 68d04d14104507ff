// Package testutils provides test data factories for consistent test data generation
package testutils

import (
	"fmt"
	"strings"
	"time"

	"github.com/alchemorsel/mealplan/internal/domain/mealplan"
	"github.com/alchemorsel/mealplan/internal/domain/recipe"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

// RecipeBuilder provides a fluent interface for building test recipes
type RecipeBuilder struct {
	faker       *gofakeit.Faker
	name        string
	named       bool
	category    recipe.Category
	alternate   recipe.Category
	nutrition   recipe.NutritionInfo
	ingredients string
	doNotScale  bool
}

// NewRecipeBuilder creates a new recipe builder with random values
func NewRecipeBuilder() *RecipeBuilder {
	return NewSeededRecipeBuilder(time.Now().UnixNano())
}

// NewSeededRecipeBuilder creates a builder whose random values are reproducible
func NewSeededRecipeBuilder(seed int64) *RecipeBuilder {
	faker := gofakeit.New(seed)

	lines := make([]string, 0, 4)
	for i := 0; i < faker.Number(2, 4); i++ {
		lines = append(lines, fmt.Sprintf("%d g %s", faker.Number(10, 400), strings.ToLower(faker.Vegetable())))
	}

	return &RecipeBuilder{
		faker:    faker,
		name:     faker.Lunch(),
		category: recipe.CategoryLunch,
		nutrition: recipe.NutritionInfo{
			Calories:      faker.Number(200, 900),
			Protein:       faker.Float64Range(5, 60),
			Carbohydrates: faker.Float64Range(10, 120),
			Fat:           faker.Float64Range(2, 40),
		},
		ingredients: strings.Join(lines, "\n"),
	}
}

// WithName sets the recipe name
func (b *RecipeBuilder) WithName(name string) *RecipeBuilder {
	b.name = name
	b.named = true
	return b
}

// WithCategory sets the category. Unless WithName was called it also picks
// a matching random name.
func (b *RecipeBuilder) WithCategory(c recipe.Category) *RecipeBuilder {
	b.category = c
	if b.named {
		return b
	}
	switch c {
	case recipe.CategoryBreakfast:
		b.name = b.faker.Breakfast()
	case recipe.CategoryDinner:
		b.name = b.faker.Dinner()
	case recipe.CategoryDessert:
		b.name = b.faker.Dessert()
	case recipe.CategoryDrink:
		b.name = b.faker.Drink()
	default:
		b.name = b.faker.Lunch()
	}
	return b
}

// WithAlternateCategory sets the secondary category
func (b *RecipeBuilder) WithAlternateCategory(c recipe.Category) *RecipeBuilder {
	b.alternate = c
	return b
}

// WithCalories sets the base calories
func (b *RecipeBuilder) WithCalories(kcal int) *RecipeBuilder {
	b.nutrition.Calories = kcal
	return b
}

// WithNutrition sets all base nutrition values
func (b *RecipeBuilder) WithNutrition(n recipe.NutritionInfo) *RecipeBuilder {
	b.nutrition = n
	return b
}

// WithIngredients sets the ingredient lines
func (b *RecipeBuilder) WithIngredients(lines ...string) *RecipeBuilder {
	b.ingredients = strings.Join(lines, "\n")
	return b
}

// Fixed marks the recipe as doNotScale
func (b *RecipeBuilder) Fixed() *RecipeBuilder {
	b.doNotScale = true
	return b
}

// Build creates the recipe, panicking on invalid builder input
func (b *RecipeBuilder) Build() *recipe.Recipe {
	r, err := recipe.NewRecipe(b.name, b.category, b.nutrition, b.ingredients)
	if err != nil {
		panic(fmt.Sprintf("testutils: invalid recipe: %v", err))
	}
	if b.alternate != "" {
		if err := r.SetAlternateCategory(b.alternate); err != nil {
			panic(fmt.Sprintf("testutils: invalid alternate category: %v", err))
		}
	}
	if b.doNotScale {
		r.MarkDoNotScale()
	}
	return r
}

// NewPlan creates a plan of n days starting on Monday 2024-01-01
func NewPlan(days int) *mealplan.MealPlan {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	plan, err := mealplan.NewMealPlan(gofakeit.Sentence(2), start, start.AddDate(0, 0, days-1))
	if err != nil {
		panic(fmt.Sprintf("testutils: invalid plan: %v", err))
	}
	return plan
}

// NewPerson creates a person with the given target for a plan
func NewPerson(planID uuid.UUID, name string, target int) mealplan.Person {
	p, err := mealplan.NewPerson(planID, name, target)
	if err != nil {
		panic(fmt.Sprintf("testutils: invalid person: %v", err))
	}
	return *p
}

// NewEntry creates an entry of r in its own category
func NewEntry(day mealplan.Day, r *recipe.Recipe) mealplan.Entry {
	entry, err := mealplan.NewEntry(day.ID, r, r.Category(), day.NextSortOrder())
	if err != nil {
		panic(fmt.Sprintf("testutils: invalid entry: %v", err))
	}
	return entry
}
