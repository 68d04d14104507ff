//go:build integration

package gorm

import (
	"context"
	"testing"

	"github.com/alchemorsel/mealplan/internal/domain/mealplan"
	"github.com/alchemorsel/mealplan/internal/domain/recipe"
	"github.com/alchemorsel/mealplan/test/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositoriesOnMigratedPostgres(t *testing.T) {
	ctx := context.Background()
	td := testutils.SetupPostgres(t)

	recipes := NewRecipeRepository(td.DB)
	plans := NewMealPlanRepository(td.DB)
	persons := NewPersonRepository(td.DB)
	snapshots := NewSnapshotRepository(td.DB)
	lists := NewShoppingListRepository(td.DB)

	stew := testutils.NewRecipeBuilder().WithName("Stew").WithCategory(recipe.CategoryDinner).WithCalories(600).Build()
	mousse := testutils.NewRecipeBuilder().WithName("Mousse").WithCategory(recipe.CategoryDessert).
		WithAlternateCategory(recipe.CategoryDinner).WithCalories(350).Build()
	require.NoError(t, recipes.Create(ctx, stew))
	require.NoError(t, recipes.Create(ctx, mousse))

	got, err := recipes.RandomByCategory(ctx, recipe.CategoryDinner, 5, []uuid.UUID{stew.ID()})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Mousse", got[0].Name())

	inRange, err := recipes.FindByCategoryAndCalorieRange(ctx, recipe.CategoryDinner, 500, 700, nil)
	require.NoError(t, err)
	require.Len(t, inRange, 1)
	assert.Equal(t, "Stew", inRange[0].Name())

	plan := testutils.NewPlan(2)
	require.NoError(t, plans.Create(ctx, plan))
	entry := testutils.NewEntry(plan.Days[1], stew)
	require.NoError(t, plans.AddEntry(ctx, &entry))

	loaded, err := plans.FindByID(ctx, plan.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Days, 2)
	require.Len(t, loaded.Days[1].Entries, 1)
	assert.Equal(t, "Stew", loaded.Days[1].Entries[0].Recipe.Name())

	ana := testutils.NewPerson(plan.ID, "Ana", 2200)
	require.NoError(t, persons.Create(ctx, &ana))
	// Names are unique per plan regardless of case
	dup := testutils.NewPerson(plan.ID, "ANA", 1800)
	assert.Error(t, persons.Create(ctx, &dup))

	require.NoError(t, snapshots.Create(ctx, mealplan.NewScaledRecipe(plan.ID, entry, ana, 1.1, []string{"220 g beef"})))
	assert.ErrorIs(t,
		snapshots.Create(ctx, mealplan.NewScaledRecipe(plan.ID, entry, ana, 1.3, []string{"x"})),
		mealplan.ErrDuplicateSnapshot)

	require.NoError(t, lists.Upsert(ctx, mealplan.NewShoppingList(plan.ID, []mealplan.ShoppingItem{{Name: "Beef"}})))
	latest := mealplan.NewShoppingList(plan.ID, []mealplan.ShoppingItem{{Name: "Carrots", Quantity: "3"}})
	require.NoError(t, lists.Upsert(ctx, latest))
	list, err := lists.FindByPlanID(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, latest.Items, list.Items)

	require.NoError(t, recipes.Delete(ctx, stew.ID()))
	remaining, err := snapshots.ListForPlan(ctx, plan.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	td.TruncateAll(t)
	_, err = plans.FindByID(ctx, plan.ID)
	assert.ErrorIs(t, err, mealplan.ErrPlanNotFound)
}
