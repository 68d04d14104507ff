// Package validation validates command structs with go-playground/validator
// and reports failures as structured application errors
package validation

import (
	stderrors "errors"
	"fmt"

	"github.com/alchemorsel/mealplan/pkg/errors"
	"github.com/go-playground/validator/v10"
)

// Validator validates structs using their `validate` tags
type Validator struct {
	validate *validator.Validate
}

// New creates a validator
func New() *Validator {
	return &Validator{validate: validator.New()}
}

// Struct validates s and returns a VALIDATION_FAILED AppError on failure
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !stderrors.As(err, &fieldErrors) {
		return errors.NewValidationError(err.Error())
	}

	details := make([]errors.ValidationError, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		details = append(details, errors.ValidationError{
			Field:   fe.Field(),
			Value:   fe.Value(),
			Tag:     fe.Tag(),
			Message: message(fe),
		})
	}
	return errors.NewValidationErrors(details)
}

func message(fe validator.FieldError) string {
	field := fe.Field()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if isNumeric(fe) {
			return fmt.Sprintf("%s must be at least %s", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		if isNumeric(fe) {
			return fmt.Sprintf("%s must be at most %s", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must be a date formatted as %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func isNumeric(fe validator.FieldError) bool {
	switch fe.Kind().String() {
	case "int", "int8", "int16", "int32", "int64",
		"uint", "uint8", "uint16", "uint32", "uint64",
		"float32", "float64":
		return true
	}
	return false
}
