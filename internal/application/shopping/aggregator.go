// Package shopping builds a plan's shopping list from its entries, using each
// person's scaled ingredients where they exist.
package shopping

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/alchemorsel/mealplan/internal/domain/mealplan"
	"github.com/alchemorsel/mealplan/internal/ports/outbound"
	"github.com/alchemorsel/mealplan/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Aggregator groups plan entries by day ordinal and hands them to the
// shopping list generator. The result replaces the plan's previous list.
type Aggregator struct {
	plans     outbound.MealPlanRepository
	persons   outbound.PersonRepository
	snapshots outbound.SnapshotRepository
	lists     outbound.ShoppingListRepository
	generator outbound.ShoppingListGenerator
	logger    *zap.Logger
}

// NewAggregator creates a shopping list aggregator
func NewAggregator(
	plans outbound.MealPlanRepository,
	persons outbound.PersonRepository,
	snapshots outbound.SnapshotRepository,
	lists outbound.ShoppingListRepository,
	generator outbound.ShoppingListGenerator,
	logger *zap.Logger,
) *Aggregator {
	return &Aggregator{
		plans:     plans,
		persons:   persons,
		snapshots: snapshots,
		lists:     lists,
		generator: generator,
		logger:    logger.Named("shopping-aggregator"),
	}
}

// Generate builds and stores the shopping list of a plan
func (a *Aggregator) Generate(ctx context.Context, planID uuid.UUID) (*mealplan.ShoppingList, error) {
	plan, err := a.plans.FindByID(ctx, planID)
	if err != nil {
		if stderrors.Is(err, mealplan.ErrPlanNotFound) {
			return nil, errors.NewMealPlanNotFoundError(planID.String())
		}
		return nil, errors.NewDatabaseError("load meal plan", err)
	}
	if len(plan.Days) == 0 {
		return nil, errors.NewNoDaysError(planID.String())
	}
	if len(plan.Entries()) == 0 {
		return nil, errors.NewBadRequestError("Meal plan has no recipes to shop for")
	}
	if err := a.generator.Ready(); err != nil {
		return nil, errors.NewAIProviderUnavailableError(err)
	}

	persons, err := a.persons.ListForPlan(ctx, planID)
	if err != nil {
		return nil, errors.NewDatabaseError("list plan persons", err)
	}

	var snapshots []mealplan.ScaledRecipe
	if len(persons) > 0 {
		snapshots, err = a.snapshots.ListForPlan(ctx, planID)
		if err != nil {
			return nil, errors.NewDatabaseError("list scaled recipes", err)
		}
	}

	days := a.BuildInput(plan, persons, snapshots)

	items, err := a.generator.GenerateShoppingList(ctx, days)
	if err != nil {
		return nil, errors.NewExternalServiceError("shopping list generator", err)
	}
	if items == nil {
		return nil, errors.NewExternalServiceError("shopping list generator", stderrors.New("no shopping list returned"))
	}

	list := mealplan.NewShoppingList(planID, items)
	if err := a.lists.Upsert(ctx, list); err != nil {
		return nil, errors.NewDatabaseError("save shopping list", err)
	}

	a.logger.Info("Shopping list generated",
		zap.String("plan_id", planID.String()),
		zap.Int("days", len(days)),
		zap.Int("items", len(items)),
	)

	return list, nil
}

// BuildInput maps day ordinals (1-based, in date order) to pseudo-recipes.
// With persons, an entry's ingredients are every person's scaled lines
// concatenated in person order; an entry without snapshots keeps its base
// ingredients.
func (a *Aggregator) BuildInput(plan *mealplan.MealPlan, persons []mealplan.Person, snapshots []mealplan.ScaledRecipe) map[int][]mealplan.PseudoRecipe {
	byPair := make(map[mealplan.PairKey]mealplan.ScaledRecipe, len(snapshots))
	for _, s := range snapshots {
		byPair[s.Key()] = s
	}

	days := make(map[int][]mealplan.PseudoRecipe)
	for i, day := range plan.Days {
		ordinal := i + 1
		for _, entry := range day.Entries {
			if entry.Recipe == nil {
				continue
			}

			pseudo := mealplan.PseudoRecipe{
				Name:        entry.Recipe.Name(),
				Calories:    entry.Recipe.Calories(),
				Category:    entry.Category,
				Ingredients: entry.Recipe.Ingredients(),
			}

			if len(persons) > 0 {
				var lines []string
				for _, person := range persons {
					if s, ok := byPair[mealplan.PairKey{EntryID: entry.ID, PersonID: person.ID}]; ok {
						lines = append(lines, s.Ingredients...)
					}
				}
				if len(lines) > 0 {
					pseudo.Ingredients = strings.Join(lines, "\n")
				} else {
					a.logger.Warn("Entry has no scaled recipes, using base ingredients",
						zap.String("date", day.Label()),
						zap.String("recipe", entry.Recipe.Name()),
					)
				}
			}

			days[ordinal] = append(days[ordinal], pseudo)
		}
	}

	return days
}

// Find returns the stored shopping list of a plan
func (a *Aggregator) Find(ctx context.Context, planID uuid.UUID) (*mealplan.ShoppingList, error) {
	list, err := a.lists.FindByPlanID(ctx, planID)
	if err != nil {
		if stderrors.Is(err, mealplan.ErrShoppingListNotFound) {
			return nil, errors.NewAppError(errors.CodeNotFound, "Shopping list not found",
				"No shopping list has been generated for this meal plan")
		}
		return nil, errors.NewDatabaseError("load shopping list", err)
	}
	return list, nil
}
