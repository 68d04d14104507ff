package scaling

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/alchemorsel/mealplan/internal/domain/mealplan"
	"github.com/alchemorsel/mealplan/internal/domain/recipe"
	"github.com/alchemorsel/mealplan/internal/ports/outbound"
	"github.com/alchemorsel/mealplan/pkg/errors"
	"github.com/alchemorsel/mealplan/test/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"
)

type OrchestratorTestSuite struct {
	suite.Suite
	ctx      context.Context
	store    *testutils.MemoryStore
	scaler   *testutils.MockIngredientScaler
	metrics  *testutils.RecordingMetrics
	orch     *Orchestrator
	plan     *mealplan.MealPlan
	stew     *recipe.Recipe
	bread    *recipe.Recipe
	ana, ben mealplan.Person
}

func (suite *OrchestratorTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.store = testutils.NewMemoryStore(1)
	suite.scaler = &testutils.MockIngredientScaler{}
	suite.scaler.On("Ready").Return(nil).Maybe()
	suite.metrics = testutils.NewRecordingMetrics()
	suite.orch = NewOrchestrator(
		suite.store.Plans(),
		suite.store.Persons(),
		suite.store.Snapshots(),
		suite.scaler,
		mealplan.NewScalingCalculator(mealplan.DefaultToleranceKcal),
		suite.metrics,
		zaptest.NewLogger(suite.T()),
	)

	// One day of 1500 kcal stew plus a fixed 600 kcal loaf
	suite.stew = testutils.NewRecipeBuilder().WithName("Beef Stew").WithCalories(1500).WithIngredients("500 g beef", "2 carrots").Build()
	suite.bread = testutils.NewRecipeBuilder().WithName("Sourdough").WithCalories(600).WithIngredients("1 loaf").Fixed().Build()
	suite.store.AddRecipes(suite.stew, suite.bread)

	suite.plan = testutils.NewPlan(1)
	day := &suite.plan.Days[0]
	day.Entries = append(day.Entries, testutils.NewEntry(*day, suite.stew))
	day.Entries = append(day.Entries, testutils.NewEntry(*day, suite.bread))
	suite.store.SavePlan(suite.plan)

	// Ana is within tolerance, Ben needs 1.2x
	suite.ana = testutils.NewPerson(suite.plan.ID, "Ana", 2120)
	suite.ben = testutils.NewPerson(suite.plan.ID, "Ben", 2400)
	suite.store.SavePersons(suite.ana, suite.ben)
}

func (suite *OrchestratorTestSuite) expectStewScaled() {
	suite.scaler.On("ScaleIngredients", mock.Anything, mock.MatchedBy(func(req outbound.ScaleRequest) bool {
		return req.Recipe.ID() == suite.stew.ID() && req.Factor > 1.19 && req.Factor < 1.21
	})).Return([]string{"600 g beef", "2.4 carrots"}, nil)
}

func (suite *OrchestratorTestSuite) snapshotFor(entryRecipe *recipe.Recipe, person mealplan.Person) mealplan.ScaledRecipe {
	snaps, err := suite.store.Snapshots().ListForPlan(suite.ctx, suite.plan.ID)
	require.NoError(suite.T(), err)
	for _, s := range snaps {
		entry, ok := suite.plan.FindEntry(s.EntryID)
		if ok && entry.Recipe.ID() == entryRecipe.ID() && s.PersonID == person.ID {
			return s
		}
	}
	suite.T().Fatalf("no snapshot of %s for %s", entryRecipe.Name(), person.Name)
	return mealplan.ScaledRecipe{}
}

func (suite *OrchestratorTestSuite) TestFillMissingCreatesEverySnapshot() {
	suite.expectStewScaled()

	res, err := suite.orch.Scale(suite.ctx, suite.plan.ID, ModeFillMissing)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 4, res.Scaled)
	assert.Zero(suite.T(), res.Skipped)
	assert.Empty(suite.T(), res.Warnings)

	snaps, err := suite.store.Snapshots().ListForPlan(suite.ctx, suite.plan.ID)
	require.NoError(suite.T(), err)
	testutils.AssertSnapshotCoverage(suite.T(), suite.plan, []mealplan.Person{suite.ana, suite.ben}, snaps)

	benStew := suite.snapshotFor(suite.stew, suite.ben)
	assert.InDelta(suite.T(), 1.2, benStew.Factor, 1e-9)
	assert.Equal(suite.T(), 1800, benStew.Nutrition.Calories)
	assert.Equal(suite.T(), []string{"600 g beef", "2.4 carrots"}, benStew.Ingredients)

	benBread := suite.snapshotFor(suite.bread, suite.ben)
	assert.Equal(suite.T(), 1.0, benBread.Factor)
	assert.Equal(suite.T(), 600, benBread.Nutrition.Calories)
	assert.Equal(suite.T(), []string{"1 loaf"}, benBread.Ingredients)

	anaStew := suite.snapshotFor(suite.stew, suite.ana)
	assert.Equal(suite.T(), 1.0, anaStew.Factor)
	assert.Equal(suite.T(), []string{"500 g beef", "2 carrots"}, anaStew.Ingredients)

	// Only Ben's stew needed the scaler
	suite.scaler.AssertNumberOfCalls(suite.T(), "ScaleIngredients", 1)
	assert.Equal(suite.T(), 1, suite.metrics.Snapshots[outbound.OutcomeScaled])
	assert.Equal(suite.T(), 3, suite.metrics.Snapshots[outbound.OutcomeVerbatim])
}

func (suite *OrchestratorTestSuite) TestFillMissingIsIdempotent() {
	suite.expectStewScaled()

	_, err := suite.orch.Scale(suite.ctx, suite.plan.ID, ModeFillMissing)
	require.NoError(suite.T(), err)
	writes := suite.store.SnapshotWrites()

	res, err := suite.orch.Scale(suite.ctx, suite.plan.ID, ModeFillMissing)

	require.NoError(suite.T(), err)
	assert.Zero(suite.T(), res.Scaled)
	assert.Equal(suite.T(), 4, res.Skipped)
	assert.Equal(suite.T(), writes, suite.store.SnapshotWrites())
	suite.scaler.AssertNumberOfCalls(suite.T(), "ScaleIngredients", 1)
}

func (suite *OrchestratorTestSuite) TestFillMissingOnlyAddsNewPerson() {
	suite.expectStewScaled()
	_, err := suite.orch.Scale(suite.ctx, suite.plan.ID, ModeFillMissing)
	require.NoError(suite.T(), err)

	cleo := testutils.NewPerson(suite.plan.ID, "Cleo", 2100)
	suite.store.SavePersons(cleo)

	res, err := suite.orch.Scale(suite.ctx, suite.plan.ID, ModeFillMissing)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, res.Scaled)
	assert.Equal(suite.T(), 4, res.Skipped)
}

func (suite *OrchestratorTestSuite) TestResetRecomputesEverything() {
	suite.expectStewScaled()
	_, err := suite.orch.Scale(suite.ctx, suite.plan.ID, ModeFillMissing)
	require.NoError(suite.T(), err)

	res, err := suite.orch.Scale(suite.ctx, suite.plan.ID, ModeReset)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(4), res.Deleted)
	assert.Equal(suite.T(), 4, res.Scaled)
	assert.Zero(suite.T(), res.Skipped)

	snaps, err := suite.store.Snapshots().ListForPlan(suite.ctx, suite.plan.ID)
	require.NoError(suite.T(), err)
	testutils.AssertSnapshotCoverage(suite.T(), suite.plan, []mealplan.Person{suite.ana, suite.ben}, snaps)
}

func (suite *OrchestratorTestSuite) TestScalerFailureFallsBackToBase() {
	suite.scaler.On("ScaleIngredients", mock.Anything, mock.Anything).
		Return(nil, &outbound.ScaleError{Reason: outbound.ScaleReasonParse, Recipe: "Beef Stew"})

	res, err := suite.orch.Scale(suite.ctx, suite.plan.ID, ModeFillMissing)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 4, res.Scaled)
	require.Len(suite.T(), res.Warnings, 1)
	assert.Contains(suite.T(), res.Warnings[0], `Scaling "Beef Stew" for Ben failed, base ingredients used`)

	benStew := suite.snapshotFor(suite.stew, suite.ben)
	assert.InDelta(suite.T(), 1.2, benStew.Factor, 1e-9)
	assert.Equal(suite.T(), 1800, benStew.Nutrition.Calories)
	assert.Equal(suite.T(), []string{"500 g beef", "2 carrots"}, benStew.Ingredients)
	assert.Equal(suite.T(), 1, suite.metrics.Snapshots[outbound.OutcomeFallback])
}

func (suite *OrchestratorTestSuite) TestEmptyScalerResultFallsBack() {
	suite.scaler.On("ScaleIngredients", mock.Anything, mock.Anything).Return([]string{}, nil)

	res, err := suite.orch.Scale(suite.ctx, suite.plan.ID, ModeFillMissing)

	require.NoError(suite.T(), err)
	require.Len(suite.T(), res.Warnings, 1)
	assert.Contains(suite.T(), res.Warnings[0], "(empty)")
}

func (suite *OrchestratorTestSuite) TestPersistFailureIsCounted() {
	suite.expectStewScaled()
	suite.store.FailSnapshot = func(s *mealplan.ScaledRecipe) error {
		if s.PersonID == suite.ana.ID {
			return stderrors.New("disk full")
		}
		return nil
	}

	res, err := suite.orch.Scale(suite.ctx, suite.plan.ID, ModeFillMissing)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, res.Scaled)
	assert.Equal(suite.T(), 2, res.Failed)
	assert.Len(suite.T(), res.Warnings, 2)
}

func (suite *OrchestratorTestSuite) TestDegenerateDayWarns() {
	ovenPlan := testutils.NewPlan(1)
	day := &ovenPlan.Days[0]
	day.Entries = append(day.Entries, testutils.NewEntry(*day, suite.bread))
	suite.store.SavePlan(ovenPlan)
	suite.store.SavePersons(testutils.NewPerson(ovenPlan.ID, "Dee", 2500))

	res, err := suite.orch.Scale(suite.ctx, ovenPlan.ID, ModeFillMissing)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, res.Scaled)
	require.Len(suite.T(), res.Warnings, 1)
	assert.Contains(suite.T(), res.Warnings[0], "cannot be reached by scaling")
	suite.scaler.AssertNotCalled(suite.T(), "ScaleIngredients", mock.Anything, mock.Anything)
}

func (suite *OrchestratorTestSuite) TestDegenerateDayQuietWhenNothingToScale() {
	ovenPlan := testutils.NewPlan(1)
	day := &ovenPlan.Days[0]
	day.Entries = append(day.Entries, testutils.NewEntry(*day, suite.bread))
	suite.store.SavePlan(ovenPlan)
	suite.store.SavePersons(testutils.NewPerson(ovenPlan.ID, "Dee", 2500))

	_, err := suite.orch.Scale(suite.ctx, ovenPlan.ID, ModeFillMissing)
	require.NoError(suite.T(), err)

	res, err := suite.orch.Scale(suite.ctx, ovenPlan.ID, ModeFillMissing)

	require.NoError(suite.T(), err)
	assert.Zero(suite.T(), res.Scaled)
	assert.Equal(suite.T(), 1, res.Skipped)
	assert.Empty(suite.T(), res.Warnings)
}

func (suite *OrchestratorTestSuite) TestPreconditions() {
	suite.Run("UnknownMode", func() {
		_, err := suite.orch.Scale(suite.ctx, suite.plan.ID, Mode("partial"))
		testutils.AssertAppError(suite.T(), err, errors.CodeValidationFailed)
	})

	suite.Run("MissingPlan", func() {
		_, err := suite.orch.Scale(suite.ctx, uuid.New(), ModeReset)
		testutils.AssertAppError(suite.T(), err, errors.CodeMealPlanNotFound)
	})

	suite.Run("NoDays", func() {
		empty := &mealplan.MealPlan{ID: uuid.New(), Name: "empty"}
		suite.store.SavePlan(empty)
		_, err := suite.orch.Scale(suite.ctx, empty.ID, ModeReset)
		testutils.AssertAppError(suite.T(), err, errors.CodeNoDays)
	})

	suite.Run("NoPersons", func() {
		lonely := testutils.NewPlan(2)
		suite.store.SavePlan(lonely)
		_, err := suite.orch.Scale(suite.ctx, lonely.ID, ModeReset)
		testutils.AssertAppError(suite.T(), err, errors.CodeNoPersons)
	})
}

func (suite *OrchestratorTestSuite) TestUnavailableProviderWritesNothing() {
	scaler := &testutils.MockIngredientScaler{}
	scaler.On("Ready").Return(outbound.ErrNoAIProvider)
	orch := NewOrchestrator(suite.store.Plans(), suite.store.Persons(), suite.store.Snapshots(), scaler,
		mealplan.NewScalingCalculator(-1), nil, zaptest.NewLogger(suite.T()))

	_, err := orch.Scale(suite.ctx, suite.plan.ID, ModeReset)

	testutils.AssertAppError(suite.T(), err, errors.CodeAIProviderUnavailable)
	assert.Zero(suite.T(), suite.store.SnapshotWrites())
}

func TestOrchestratorTestSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}
