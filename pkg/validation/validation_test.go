package validation

import (
	"testing"

	"github.com/alchemorsel/mealplan/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type addPerson struct {
	Name           string `validate:"required,max=100"`
	TargetCalories int    `validate:"required,min=1000,max=5000"`
	Mode           string `validate:"omitempty,oneof=reset fill_missing"`
}

func TestStruct_Valid(t *testing.T) {
	v := New()

	assert.NoError(t, v.Struct(addPerson{Name: "Alice", TargetCalories: 2000}))
}

func TestStruct_ReportsEveryField(t *testing.T) {
	v := New()

	err := v.Struct(addPerson{TargetCalories: 999, Mode: "sometimes"})
	require.Error(t, err)

	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.CodeValidationFailed, appErr.Code)
	assert.Contains(t, appErr.Details, "Name is required")
	assert.Contains(t, appErr.Details, "TargetCalories must be at least 1000")
	assert.Contains(t, appErr.Details, "Mode must be one of: reset fill_missing")
}
