// Package recipe provides the application layer for the recipe catalog
// This implements the use cases defined in the inbound ports
package recipe

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/alchemorsel/mealplan/internal/domain/recipe"
	"github.com/alchemorsel/mealplan/internal/ports/inbound"
	"github.com/alchemorsel/mealplan/internal/ports/outbound"
	"github.com/alchemorsel/mealplan/pkg/errors"
	"github.com/alchemorsel/mealplan/pkg/validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RecipeService implements the recipe use cases
type RecipeService struct {
	recipeRepo outbound.RecipeRepository
	validator  *validation.Validator
	logger     *zap.Logger
}

// NewRecipeService creates a new recipe service
func NewRecipeService(recipeRepo outbound.RecipeRepository, logger *zap.Logger) inbound.RecipeService {
	return &RecipeService{
		recipeRepo: recipeRepo,
		validator:  validation.New(),
		logger:     logger.Named("recipe-service"),
	}
}

// CreateRecipe creates a new recipe
func (s *RecipeService) CreateRecipe(ctx context.Context, cmd inbound.CreateRecipeCommand) (*inbound.RecipeDTO, error) {
	if err := s.validator.Struct(cmd); err != nil {
		return nil, err
	}

	s.logger.Info("Creating new recipe",
		zap.String("name", cmd.Name),
		zap.String("category", string(cmd.Category)),
	)

	r, err := recipe.NewRecipe(cmd.Name, cmd.Category, recipe.NutritionInfo{
		Calories:      cmd.Calories,
		Protein:       cmd.Protein,
		Carbohydrates: cmd.Carbohydrates,
		Fat:           cmd.Fat,
	}, cmd.Ingredients)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	if cmd.AlternateCategory != "" {
		if err := r.SetAlternateCategory(cmd.AlternateCategory); err != nil {
			return nil, errors.NewValidationError(err.Error())
		}
	}
	if cmd.DoNotScale {
		r.MarkDoNotScale()
	}

	if err := s.recipeRepo.Create(ctx, r); err != nil {
		s.logger.Error("Failed to save recipe", zap.Error(err))
		return nil, errors.NewDatabaseError("create recipe", err)
	}

	return toRecipeDTO(r), nil
}

// GetRecipe returns a recipe by id
func (s *RecipeService) GetRecipe(ctx context.Context, recipeID uuid.UUID) (*inbound.RecipeDTO, error) {
	r, err := s.recipeRepo.FindByID(ctx, recipeID)
	if err != nil {
		return nil, s.lookupError(recipeID, err)
	}
	return toRecipeDTO(r), nil
}

// DeleteRecipe deletes a recipe and everything referencing it
func (s *RecipeService) DeleteRecipe(ctx context.Context, recipeID uuid.UUID) error {
	if err := s.recipeRepo.Delete(ctx, recipeID); err != nil {
		return s.lookupError(recipeID, err)
	}

	s.logger.Info("Recipe deleted", zap.String("recipe_id", recipeID.String()))
	return nil
}

func (s *RecipeService) lookupError(recipeID uuid.UUID, err error) error {
	if stderrors.Is(err, recipe.ErrRecipeNotFound) {
		return errors.NewAppError(errors.CodeNotFound, "Recipe not found",
			"Recipe with ID "+recipeID.String()+" does not exist").
			WithMetadata("recipe_id", recipeID.String())
	}
	return errors.NewDatabaseError("access recipe", err)
}

func toRecipeDTO(r *recipe.Recipe) *inbound.RecipeDTO {
	return &inbound.RecipeDTO{
		ID:                r.ID(),
		Name:              r.Name(),
		Category:          r.Category(),
		AlternateCategory: r.AlternateCategory(),
		Nutrition:         inbound.NewNutritionDTO(r.Nutrition()),
		Ingredients:       r.IngredientLines(),
		DoNotScale:        r.DoNotScale(),
		CreatedAt:         r.CreatedAt().Format(time.RFC3339),
	}
}
