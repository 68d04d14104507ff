package mealplan

import "errors"

// Domain errors for meal plan operations

var (
	// Plan validation errors
	ErrPlanNameRequired = errors.New("meal plan name is required")
	ErrInvalidDateRange = errors.New("meal plan end date must not be before its start date")
	ErrPlanTooLong      = errors.New("meal plan cannot span more than 31 days")

	// Person validation errors
	ErrPersonNameRequired       = errors.New("person name is required")
	ErrPersonNameTooLong        = errors.New("person name must not exceed 100 characters")
	ErrTargetCaloriesOutOfRange = errors.New("target calories must be between 1000 and 5000")
	ErrTooManyPersons           = errors.New("a meal plan can have at most 5 persons")
	ErrDuplicatePersonName      = errors.New("a person with this name already exists in the meal plan")

	// Lookup errors
	ErrPlanNotFound         = errors.New("meal plan not found")
	ErrDayNotFound          = errors.New("meal plan day not found")
	ErrEntryNotFound        = errors.New("meal plan entry not found")
	ErrPersonNotFound       = errors.New("person not found")
	ErrShoppingListNotFound = errors.New("shopping list not found")

	// Snapshot errors
	ErrDuplicateSnapshot = errors.New("a scaled recipe already exists for this entry and person")
)
