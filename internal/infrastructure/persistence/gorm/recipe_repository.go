// Package gorm provides GORM-based repository implementations
package gorm

import (
	"context"
	"errors"

	"github.com/alchemorsel/mealplan/internal/domain/recipe"
	"github.com/alchemorsel/mealplan/internal/ports/outbound"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RecipeRepository implements the recipe repository interface using GORM
type RecipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository creates a new recipe repository
func NewRecipeRepository(db *gorm.DB) outbound.RecipeRepository {
	return &RecipeRepository{db: db}
}

// Create creates a new recipe
func (r *RecipeRepository) Create(ctx context.Context, rec *recipe.Recipe) error {
	return r.db.WithContext(ctx).Create(RecipeToModel(rec)).Error
}

// FindByID finds a recipe by ID
func (r *RecipeRepository) FindByID(ctx context.Context, id uuid.UUID) (*recipe.Recipe, error) {
	var model RecipeModel

	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, recipe.ErrRecipeNotFound
		}
		return nil, result.Error
	}

	return ModelToRecipe(&model), nil
}

// Delete removes a recipe together with the plan entries using it and their snapshots
func (r *RecipeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entryIDs := tx.Model(&MealPlanEntryModel{}).Select("id").Where("recipe_id = ?", id)

		if err := tx.Where("entry_id IN (?)", entryIDs).Delete(&ScaledRecipeModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&MealPlanEntryModel{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&RecipeModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return recipe.ErrRecipeNotFound
		}
		return nil
	})
}

// RandomByCategory returns up to count random recipes whose category or
// alternate category matches
func (r *RecipeRepository) RandomByCategory(ctx context.Context, category recipe.Category, count int, exclude []uuid.UUID) ([]*recipe.Recipe, error) {
	var models []RecipeModel

	query := r.byCategory(ctx, category, exclude).
		Order("RANDOM()").
		Limit(count)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	return toRecipes(models), nil
}

// FindByCategoryAndCalorieRange returns every matching recipe with calories in [minCal, maxCal]
func (r *RecipeRepository) FindByCategoryAndCalorieRange(ctx context.Context, category recipe.Category, minCal, maxCal int, exclude []uuid.UUID) ([]*recipe.Recipe, error) {
	var models []RecipeModel

	query := r.byCategory(ctx, category, exclude).
		Where("calories BETWEEN ? AND ?", minCal, maxCal).
		Order("calories ASC")
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	return toRecipes(models), nil
}

func (r *RecipeRepository) byCategory(ctx context.Context, category recipe.Category, exclude []uuid.UUID) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&RecipeModel{}).
		Where("(category = ? OR alternate_category = ?)", string(category), string(category))
	if len(exclude) > 0 {
		query = query.Where("id NOT IN ?", exclude)
	}
	return query
}

func toRecipes(models []RecipeModel) []*recipe.Recipe {
	recipes := make([]*recipe.Recipe, len(models))
	for i := range models {
		recipes[i] = ModelToRecipe(&models[i])
	}
	return recipes
}
