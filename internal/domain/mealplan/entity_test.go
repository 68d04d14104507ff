package mealplan

import (
	"strings"
	"testing"
	"time"

	"github.com/alchemorsel/mealplan/internal/domain/recipe"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMealPlan_BuildsOneDayPerDate(t *testing.T) {
	// 2024-01-01 is a Monday
	start := time.Date(2024, 1, 1, 15, 30, 0, 0, time.UTC)
	end := time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)

	plan, err := NewMealPlan("Week 1", start, end)
	require.NoError(t, err)

	require.Len(t, plan.Days, 7)
	for i, day := range plan.Days {
		assert.Equal(t, i, day.Weekday)
		assert.Equal(t, plan.ID, day.PlanID)
	}
	assert.Equal(t, "2024-01-01", plan.Days[0].Label())
	assert.Equal(t, "2024-01-07", plan.Days[6].Label())
}

func TestNewMealPlan_Validation(t *testing.T) {
	start := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	_, err := NewMealPlan(" ", start, start)
	assert.ErrorIs(t, err, ErrPlanNameRequired)

	_, err = NewMealPlan("Backwards", start, start.AddDate(0, 0, -1))
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	_, err = NewMealPlan("Too long", start, start.AddDate(0, 0, MaxPlanDays))
	assert.ErrorIs(t, err, ErrPlanTooLong)
}

func TestMealPlan_RecipeIDsAreUnique(t *testing.T) {
	soup := newTestRecipe(t, "Soup", 300, false)
	bread := newTestRecipe(t, "Bread", 200, true)
	plan := &MealPlan{Days: []Day{dayWith(soup, bread), dayWith(soup)}}

	ids := plan.RecipeIDs()

	assert.ElementsMatch(t, []uuid.UUID{soup.ID(), bread.ID()}, ids)
	assert.Len(t, plan.Entries(), 3)

	found, ok := plan.FindEntry(plan.Days[1].Entries[0].ID)
	require.True(t, ok)
	assert.Equal(t, soup.ID(), found.Recipe.ID())
}

func TestDay_Helpers(t *testing.T) {
	day := dayWith(newTestRecipe(t, "Soup", 300, false), newTestRecipe(t, "Salad", 250, false))

	assert.Equal(t, 2, day.CountCategory(recipe.CategoryLunch))
	assert.Equal(t, 0, day.CountCategory(recipe.CategoryDinner))
	assert.Equal(t, 550, day.Calories())
	assert.Equal(t, 2, day.NextSortOrder())
}

func TestNewPerson(t *testing.T) {
	planID := uuid.New()

	p, err := NewPerson(planID, " Alice ", 2200)
	require.NoError(t, err)
	assert.Equal(t, "Alice", p.Name)

	cases := []struct {
		name   string
		target int
		want   error
	}{
		{"", 2000, ErrPersonNameRequired},
		{strings.Repeat("a", 101), 2000, ErrPersonNameTooLong},
		{"Bob", 999, ErrTargetCaloriesOutOfRange},
		{"Bob", 5001, ErrTargetCaloriesOutOfRange},
	}
	for _, tc := range cases {
		_, err := NewPerson(planID, tc.name, tc.target)
		assert.ErrorIs(t, err, tc.want)
	}
}

func TestPerson_CheckCanJoin(t *testing.T) {
	planID := uuid.New()
	existing := []Person{{Name: "Alice", TargetCalories: 2000}}

	dup, err := NewPerson(planID, "ALICE", 1800)
	require.NoError(t, err)
	assert.ErrorIs(t, dup.CheckCanJoin(existing), ErrDuplicatePersonName)

	for _, name := range []string{"B", "C", "D", "E"} {
		existing = append(existing, Person{Name: name, TargetCalories: 1500})
	}
	sixth, err := NewPerson(planID, "Frank", 1800)
	require.NoError(t, err)
	assert.ErrorIs(t, sixth.CheckCanJoin(existing), ErrTooManyPersons)

	assert.Equal(t, 2000, MaxTarget(existing))
	assert.Equal(t, 0, MaxTarget(nil))
}

func TestNewScaledRecipe_ScalesNutrition(t *testing.T) {
	stew := newTestRecipe(t, "Stew", 500, false)
	entry := Entry{ID: uuid.New(), Recipe: stew}
	person := Person{ID: uuid.New()}

	snap := NewScaledRecipe(uuid.New(), entry, person, 1.2, []string{"240 g beef"})

	assert.Equal(t, 600, snap.Nutrition.Calories)
	assert.InDelta(t, 12.0, snap.Nutrition.Protein, 1e-9)
	assert.Equal(t, PairKey{EntryID: entry.ID, PersonID: person.ID}, snap.Key())
}
