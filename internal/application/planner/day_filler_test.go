package planner

import (
	"context"
	"math/rand"
	"testing"

	"github.com/alchemorsel/mealplan/internal/domain/mealplan"
	"github.com/alchemorsel/mealplan/internal/domain/recipe"
	"github.com/alchemorsel/mealplan/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"
)

type DayFillerTestSuite struct {
	suite.Suite
	store  *testutils.MemoryStore
	filler *DayFiller
	plan   *mealplan.MealPlan
	ctx    context.Context
}

func (suite *DayFillerTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.store = testutils.NewMemoryStore(7)
	suite.filler = NewDayFiller(
		NewCandidateSelector(suite.store.Recipes()),
		suite.store.Plans(),
		rand.New(rand.NewSource(1)),
		zaptest.NewLogger(suite.T()),
	)
	// Always take the closest candidate
	suite.filler.SetSampling(20, 1)
	suite.plan = testutils.NewPlan(2)
	suite.store.SavePlan(suite.plan)
}

func (suite *DayFillerTestSuite) recipe(c recipe.Category, kcal int) *recipe.Recipe {
	r := testutils.NewSeededRecipeBuilder(int64(kcal)).WithCategory(c).WithCalories(kcal).Build()
	suite.store.AddRecipes(r)
	return r
}

func (suite *DayFillerTestSuite) TestStandardFill() {
	suite.Run("FillsPerDaySlots", func() {
		suite.recipe(recipe.CategoryBreakfast, 300)
		suite.recipe(recipe.CategoryBreakfast, 350)
		suite.recipe(recipe.CategoryLunch, 600)

		day := &suite.plan.Days[0]
		res, err := suite.filler.Fill(suite.ctx, day, FillOptions{
			Categories: []recipe.Category{recipe.CategoryBreakfast, recipe.CategoryLunch},
			PerDay:     2,
		}, NewUsedSet())

		require.NoError(suite.T(), err)
		assert.Len(suite.T(), res.Added, 3)
		assert.Equal(suite.T(), 2, day.CountCategory(recipe.CategoryBreakfast))
		require.Len(suite.T(), res.Shortfalls, 1)
		assert.Equal(suite.T(), Shortfall{Date: "2024-01-01", Category: recipe.CategoryLunch, Missing: 1}, res.Shortfalls[0])

		stored, err := suite.store.Plans().FindByID(suite.ctx, suite.plan.ID)
		require.NoError(suite.T(), err)
		assert.Len(suite.T(), stored.Days[0].Entries, 3)
	})
}

func (suite *DayFillerTestSuite) TestStandardFillCountsExistingEntries() {
	existing := suite.recipe(recipe.CategoryDinner, 700)
	suite.recipe(recipe.CategoryDinner, 650)

	day := &suite.plan.Days[0]
	entry := testutils.NewEntry(*day, existing)
	require.NoError(suite.T(), suite.store.Plans().AddEntry(suite.ctx, &entry))
	day.Entries = append(day.Entries, entry)

	res, err := suite.filler.Fill(suite.ctx, day, FillOptions{
		Categories: []recipe.Category{recipe.CategoryDinner},
		PerDay:     1,
	}, NewUsedSet())

	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), res.Added)
	assert.Empty(suite.T(), res.Shortfalls)
}

func (suite *DayFillerTestSuite) TestOptimizedFillPicksNearBudget() {
	suite.recipe(recipe.CategoryBreakfast, 580)
	suite.recipe(recipe.CategoryBreakfast, 900)
	suite.recipe(recipe.CategoryLunch, 610)
	suite.recipe(recipe.CategoryLunch, 200)
	suite.recipe(recipe.CategoryDinner, 640)

	day := &suite.plan.Days[0]
	used := NewUsedSet()
	res, err := suite.filler.Fill(suite.ctx, day, FillOptions{
		Categories: []recipe.Category{recipe.CategoryBreakfast, recipe.CategoryLunch, recipe.CategoryDinner},
		PerDay:     1,
		Target:     1800,
		Margin:     200,
		Optimize:   true,
	}, used)

	require.NoError(suite.T(), err)
	require.Len(suite.T(), res.Added, 3)
	assert.Equal(suite.T(), 1830, day.Calories())
	assert.Empty(suite.T(), res.Warnings)
	for _, e := range res.Added {
		assert.True(suite.T(), used.Contains(e.Recipe.ID()))
	}
}

func (suite *DayFillerTestSuite) TestOptimizedFillSkipsPlannedCategory() {
	// Breakfast is already planned at 400 kcal; lunch and dinner get 600 each
	planned := suite.recipe(recipe.CategoryBreakfast, 400)
	suite.recipe(recipe.CategoryLunch, 600)
	suite.recipe(recipe.CategoryDinner, 600)

	day := &suite.plan.Days[0]
	entry := testutils.NewEntry(*day, planned)
	require.NoError(suite.T(), suite.store.Plans().AddEntry(suite.ctx, &entry))
	day.Entries = append(day.Entries, entry)

	res, err := suite.filler.Fill(suite.ctx, day, FillOptions{
		Categories: []recipe.Category{recipe.CategoryBreakfast, recipe.CategoryLunch, recipe.CategoryDinner},
		PerDay:     1,
		Target:     1800,
		Margin:     200,
		Optimize:   true,
	}, NewUsedSet(planned.ID()))

	require.NoError(suite.T(), err)
	assert.Len(suite.T(), res.Added, 2)
	assert.Equal(suite.T(), 1600, day.Calories())
	assert.Empty(suite.T(), res.Warnings)
}

func (suite *DayFillerTestSuite) TestOptimizedFillFallsBackAndWarns() {
	suite.recipe(recipe.CategoryLunch, 1500)

	day := &suite.plan.Days[0]
	res, err := suite.filler.Fill(suite.ctx, day, FillOptions{
		Categories: []recipe.Category{recipe.CategoryLunch, recipe.CategoryDinner},
		PerDay:     1,
		Target:     1200,
		Margin:     100,
		Optimize:   true,
	}, NewUsedSet())

	require.NoError(suite.T(), err)
	require.Len(suite.T(), res.Added, 1)
	assert.Equal(suite.T(), 1500, res.Added[0].Recipe.Calories())
	require.Len(suite.T(), res.Warnings, 2)
	assert.Equal(suite.T(), "2024-01-01: no dinner recipe available near 600 kcal, category skipped", res.Warnings[0])
	assert.Equal(suite.T(), "2024-01-01: total 1500 kcal deviates from target 1200 kcal by +300 kcal", res.Warnings[1])
}

func (suite *DayFillerTestSuite) TestOptimizedFillNeverReusesRecipes() {
	suite.recipe(recipe.CategoryDinner, 600)

	used := NewUsedSet()
	opts := FillOptions{
		Categories: []recipe.Category{recipe.CategoryDinner},
		PerDay:     1,
		Target:     600,
		Margin:     50,
		Optimize:   true,
	}

	first, err := suite.filler.Fill(suite.ctx, &suite.plan.Days[0], opts, used)
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), first.Added, 1)

	second, err := suite.filler.Fill(suite.ctx, &suite.plan.Days[1], opts, used)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), second.Added)
	assert.Len(suite.T(), second.Warnings, 1)
}

func TestDayFillerTestSuite(t *testing.T) {
	suite.Run(t, new(DayFillerTestSuite))
}

func TestPickClosestStaysInTopK(t *testing.T) {
	filler := NewDayFiller(nil, nil, rand.New(rand.NewSource(42)), zaptest.NewLogger(t))

	var candidates []*recipe.Recipe
	for _, kcal := range []int{100, 590, 610, 620, 1000} {
		candidates = append(candidates, testutils.NewRecipeBuilder().WithCalories(kcal).Build())
	}

	for i := 0; i < 50; i++ {
		picked := filler.pickClosest(candidates, 600)
		assert.Contains(t, []int{590, 610, 620}, picked.Calories())
	}
}

func TestCandidateSelectorBounds(t *testing.T) {
	store := testutils.NewMemoryStore(1)
	store.AddRecipes(testutils.NewRecipeBuilder().WithCategory(recipe.CategoryLunch).WithCalories(0).Build())
	selector := NewCandidateSelector(store.Recipes())
	ctx := context.Background()

	got, err := selector.ByCategory(ctx, recipe.CategoryLunch, 0, nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = selector.ByCategoryAndCalorieRange(ctx, recipe.CategoryLunch, -200, 100, nil)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = selector.ByCategoryAndCalorieRange(ctx, recipe.CategoryLunch, 500, 100, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
