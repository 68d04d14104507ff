// Package testutils provides custom assertions and testing utilities
package testutils

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/alchemorsel/mealplan/internal/domain/mealplan"
	"github.com/alchemorsel/mealplan/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertNoDuplicateRecipes asserts that no recipe appears twice in plan
func AssertNoDuplicateRecipes(t *testing.T, plan *mealplan.MealPlan) {
	t.Helper()
	seen := make(map[uuid.UUID]string)
	for _, day := range plan.Days {
		for _, e := range day.Entries {
			if e.Recipe == nil {
				continue
			}
			if first, ok := seen[e.Recipe.ID()]; ok {
				assert.Failf(t, "duplicate recipe", "%q planned on %s and %s", e.Recipe.Name(), first, day.Label())
				continue
			}
			seen[e.Recipe.ID()] = day.Label()
		}
	}
}

// AssertSnapshotCoverage asserts one snapshot per (entry, person) pair
func AssertSnapshotCoverage(t *testing.T, plan *mealplan.MealPlan, persons []mealplan.Person, snapshots []mealplan.ScaledRecipe) {
	t.Helper()
	have := make(map[mealplan.PairKey]int, len(snapshots))
	for _, s := range snapshots {
		have[s.Key()]++
	}
	for _, e := range plan.Entries() {
		for _, p := range persons {
			assert.Equalf(t, 1, have[mealplan.PairKey{EntryID: e.ID, PersonID: p.ID}],
				"snapshots for entry %s and person %s", e.ID, p.Name)
		}
	}
	assert.Len(t, snapshots, len(plan.Entries())*len(persons))
}

// AssertAppError asserts that err carries the given application error code
func AssertAppError(t *testing.T, err error, code errors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	assert.Equalf(t, code, errors.GetCode(err), "unexpected error: %v", err)
}

// AssertErrorResponse asserts status and error code of a JSON error response
func AssertErrorResponse(t *testing.T, rec *httptest.ResponseRecorder, status int, code errors.ErrorCode) {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())

	var body errors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, code, body.Error.Code)
}

// DecodeJSON decodes a recorded response body into v
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}
