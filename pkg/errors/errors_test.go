package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorStatusCodes(t *testing.T) {
	cases := []struct {
		err  *AppError
		want int
	}{
		{NewMealPlanNotFoundError("p1"), http.StatusNotFound},
		{NewPersonNotFoundError("x"), http.StatusNotFound},
		{NewNoPersonsError("p1"), http.StatusBadRequest},
		{NewNoDaysError("p1"), http.StatusBadRequest},
		{NewAIProviderUnavailableError(nil), http.StatusServiceUnavailable},
		{NewResourceLockedError("meal plan"), http.StatusConflict},
		{NewExternalServiceError("scaler", stderrors.New("boom")), http.StatusBadGateway},
		{NewDatabaseError("load plan", stderrors.New("boom")), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(string(tc.err.Code), func(t *testing.T) {
			assert.Equal(t, tc.want, tc.err.StatusCode())
		})
	}
}

func TestWrapKeepsAppError(t *testing.T) {
	original := NewNoDaysError("p1")
	wrapped := fmt.Errorf("generate: %w", original)

	got := Wrap(wrapped, "should not be used")
	require.NotNil(t, got)
	assert.Equal(t, CodeNoDays, got.Code)
	assert.True(t, Is(wrapped, CodeNoDays))
	assert.Equal(t, CodeNoDays, GetCode(wrapped))
}

func TestWrapPlainError(t *testing.T) {
	cause := stderrors.New("disk full")

	got := Wrap(cause, "persist snapshot")
	require.NotNil(t, got)
	assert.Equal(t, CodeInternal, got.Code)
	assert.ErrorIs(t, got, cause)
	assert.Nil(t, Wrap(nil, "nothing"))
}

func TestValidationErrorsMessage(t *testing.T) {
	err := NewValidationErrors([]ValidationError{
		{Field: "Name", Tag: "required", Message: "Name is required"},
		{Field: "TargetCalories", Tag: "min", Message: "TargetCalories must be at least 1000"},
	})

	assert.Equal(t, CodeValidationFailed, err.Code)
	assert.Contains(t, err.Details, "Name is required; TargetCalories must be at least 1000")

	resp := ToErrorResponse(err, "req-1")
	assert.Equal(t, "req-1", resp.Error.RequestID)
	assert.NotEmpty(t, resp.Error.Timestamp)
}
