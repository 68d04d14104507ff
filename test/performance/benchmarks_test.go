//go:build performance

// Package performance holds benchmarks and load tests for the planning engine
package performance

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appmealplan "github.com/alchemorsel/mealplan/internal/application/mealplan"
	"github.com/alchemorsel/mealplan/internal/application/planner"
	"github.com/alchemorsel/mealplan/internal/application/scaling"
	"github.com/alchemorsel/mealplan/internal/application/shopping"
	"github.com/alchemorsel/mealplan/internal/domain/mealplan"
	"github.com/alchemorsel/mealplan/internal/domain/recipe"
	"github.com/alchemorsel/mealplan/internal/infrastructure/persistence/memory"
	"github.com/alchemorsel/mealplan/internal/ports/inbound"
	"github.com/alchemorsel/mealplan/pkg/errors"
	"github.com/alchemorsel/mealplan/test/testutils"
)

var categories = []recipe.Category{recipe.CategoryBreakfast, recipe.CategoryLunch, recipe.CategoryDinner}

func seededStore(perCategory int) *testutils.MemoryStore {
	store := testutils.NewMemoryStore(1)
	builder := testutils.NewSeededRecipeBuilder(1)
	for _, c := range categories {
		for i := 0; i < perCategory; i++ {
			store.AddRecipes(builder.WithCategory(c).WithCalories(350 + (i*37)%500).Build())
		}
	}
	return store
}

func newPlanner(store *testutils.MemoryStore, scaler *testutils.MockIngredientScaler) (*planner.Generator, *scaling.Orchestrator) {
	logger := zap.NewNop()
	orchestrator := scaling.NewOrchestrator(store.Plans(), store.Persons(), store.Snapshots(), scaler,
		mealplan.NewScalingCalculator(mealplan.DefaultToleranceKcal), nil, logger)
	filler := planner.NewDayFiller(planner.NewCandidateSelector(store.Recipes()), store.Plans(), rand.New(rand.NewSource(1)), logger)
	return planner.NewGenerator(store.Persons(), filler, orchestrator, planner.DefaultDefaults(), nil, logger), orchestrator
}

func newScaler() *testutils.MockIngredientScaler {
	scaler := &testutils.MockIngredientScaler{}
	scaler.On("Ready").Return(nil).Maybe()
	scaler.On("ScaleIngredients", mock.Anything, mock.Anything).Return([]string{"scaled"}, nil).Maybe()
	return scaler
}

func BenchmarkScalingCalculator(b *testing.B) {
	plan := testutils.NewPlan(1)
	day := plan.Days[0]
	for _, kcal := range []int{420, 650, 780, 240} {
		day.Entries = append(day.Entries, testutils.NewEntry(day, testutils.NewRecipeBuilder().WithCalories(kcal).Build()))
	}
	day.Entries = append(day.Entries, testutils.NewEntry(day, testutils.NewRecipeBuilder().WithCalories(300).Fixed().Build()))
	calc := mealplan.NewScalingCalculator(mealplan.DefaultToleranceKcal)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = calc.ForDay(day, 1500+i%1500)
	}
}

func BenchmarkAutoGenerate(b *testing.B) {
	for _, optimize := range []bool{false, true} {
		name := "Standard"
		if optimize {
			name = "Optimized"
		}
		b.Run(name, func(b *testing.B) {
			store := seededStore(200)
			generator, _ := newPlanner(store, newScaler())
			ctx := context.Background()

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				b.StopTimer()
				plan := testutils.NewPlan(7)
				store.SavePlan(plan)
				b.StartTimer()

				result, err := generator.Generate(ctx, plan, planner.Request{
					OptimizeCalories: optimize,
					SkipScaling:      true,
				})
				if err != nil {
					b.Fatal(err)
				}
				if result.Added == 0 {
					b.Fatal("nothing added")
				}
			}
		})
	}
}

func BenchmarkShoppingInput(b *testing.B) {
	store := seededStore(20)
	plan := testutils.NewPlan(7)
	persons := []mealplan.Person{
		testutils.NewPerson(plan.ID, "Ana", 2200),
		testutils.NewPerson(plan.ID, "Ben", 1700),
		testutils.NewPerson(plan.ID, "Caro", 1900),
	}

	var snapshots []mealplan.ScaledRecipe
	builder := testutils.NewSeededRecipeBuilder(3)
	for d := range plan.Days {
		for _, c := range categories {
			entry := testutils.NewEntry(plan.Days[d], builder.WithCategory(c).WithIngredients("200 g rice", "1 onion").Build())
			plan.Days[d].Entries = append(plan.Days[d].Entries, entry)
			// The last person has no snapshots and falls back to base lines
			for _, p := range persons[:2] {
				snapshots = append(snapshots, *mealplan.NewScaledRecipe(plan.ID, entry, p, 1.1, []string{"220 g rice", "1 onion"}))
			}
		}
	}

	aggregator := shopping.NewAggregator(store.Plans(), store.Persons(), store.Snapshots(), store.ShoppingLists(), nil, zap.NewNop())

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		input := aggregator.BuildInput(plan, persons, snapshots)
		if len(input) != 7 {
			b.Fatalf("got %d days", len(input))
		}
	}
}

// TestConcurrentScaleIsSerialized runs many scales on one plan at once. Calls
// that find the plan locked are rejected, and the survivors leave exactly one
// snapshot per entry and person.
func TestConcurrentScaleIsSerialized(t *testing.T) {
	ctx := context.Background()
	store := seededStore(10)
	generator, orchestrator := newPlanner(store, newScaler())

	service := appmealplan.NewService(appmealplan.Repositories{
		Recipes:   store.Recipes(),
		Plans:     store.Plans(),
		Persons:   store.Persons(),
		Snapshots: store.Snapshots(),
	}, memory.NewPlanLocker(), generator, orchestrator,
		shopping.NewAggregator(store.Plans(), store.Persons(), store.Snapshots(), store.ShoppingLists(), nil, zap.NewNop()),
		zap.NewNop())

	plan, err := service.CreatePlan(ctx, inbound.CreatePlanCommand{Name: "Load", StartDate: "2024-01-01", EndDate: "2024-01-07"})
	require.NoError(t, err)
	for _, p := range []inbound.AddPersonCommand{{Name: "Ana", TargetCalories: 2400}, {Name: "Ben", TargetCalories: 1500}} {
		p.PlanID = plan.ID
		_, err := service.AddPerson(ctx, p)
		require.NoError(t, err)
	}
	generated, err := service.AutoGenerate(ctx, inbound.AutoGenerateCommand{PlanID: plan.ID, SkipScaling: true})
	require.NoError(t, err)
	require.Equal(t, 21, generated.Added)

	const workers = 16
	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
	)
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			mode := inbound.ScaleModeReset
			if i%2 == 1 {
				mode = inbound.ScaleModeFillMissing
			}
			if _, err := service.Scale(ctx, inbound.ScaleCommand{PlanID: plan.ID, Mode: mode}); err != nil {
				errs <- err
				return
			}
			succeeded.Add(1)
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.True(t, errors.Is(err, errors.CodeResourceLocked), "unexpected error: %v", err)
	}

	if succeeded.Load() == 0 {
		// Every call collided; one more uncontended run must go through
		_, err := service.Scale(ctx, inbound.ScaleCommand{PlanID: plan.ID, Mode: inbound.ScaleModeFillMissing})
		require.NoError(t, err)
	}

	snapshots, err := store.Snapshots().ListForPlan(ctx, plan.ID)
	require.NoError(t, err)
	assert.Len(t, snapshots, 42)

	loaded, err := store.Plans().FindByID(ctx, plan.ID)
	require.NoError(t, err)
	persons, err := store.Persons().ListForPlan(ctx, plan.ID)
	require.NoError(t, err)
	testutils.AssertSnapshotCoverage(t, loaded, persons, snapshots)
}
