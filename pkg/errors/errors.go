// Package errors provides structured error handling for the application
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"
)

// ErrorCode represents an error code
type ErrorCode string

// Common error codes following RESTful API conventions
const (
	// Client errors (4xx)
	CodeBadRequest       ErrorCode = "BAD_REQUEST"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeConflict         ErrorCode = "CONFLICT"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	// Server errors (5xx)
	CodeInternal             ErrorCode = "INTERNAL_ERROR"
	CodeServiceUnavailable   ErrorCode = "SERVICE_UNAVAILABLE"
	CodeDatabaseError        ErrorCode = "DATABASE_ERROR"
	CodeExternalServiceError ErrorCode = "EXTERNAL_SERVICE_ERROR"

	// Meal plan preconditions
	CodeMealPlanNotFound      ErrorCode = "MEAL_PLAN_NOT_FOUND"
	CodePersonNotFound        ErrorCode = "PERSON_NOT_FOUND"
	CodeEntryNotFound         ErrorCode = "ENTRY_NOT_FOUND"
	CodeNoPersons             ErrorCode = "NO_PERSONS"
	CodeNoDays                ErrorCode = "NO_DAYS"
	CodeAIProviderUnavailable ErrorCode = "AI_PROVIDER_UNAVAILABLE"
	CodeResourceLocked        ErrorCode = "RESOURCE_LOCKED"
	CodeQuotaExceeded         ErrorCode = "QUOTA_EXCEEDED"
	CodeRateLimited           ErrorCode = "RATE_LIMITED"
)

// AppError represents an application error with structured information
type AppError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace string                 `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// StatusCode returns the appropriate HTTP status code
func (e *AppError) StatusCode() int {
	switch e.Code {
	case CodeBadRequest, CodeValidationFailed, CodeNoPersons, CodeNoDays:
		return http.StatusBadRequest
	case CodeNotFound, CodeMealPlanNotFound, CodePersonNotFound, CodeEntryNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeResourceLocked, CodeQuotaExceeded:
		return http.StatusConflict
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeServiceUnavailable, CodeAIProviderUnavailable:
		return http.StatusServiceUnavailable
	case CodeExternalServiceError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WithMetadata adds metadata to the error
func (e *AppError) WithMetadata(key string, value interface{}) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// WithCause adds a cause error
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message, details string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		Details:    details,
		StackTrace: getStackTrace(),
	}
}

// NewBadRequestError creates a bad request error
func NewBadRequestError(message string) *AppError {
	return NewAppError(CodeBadRequest, message, "")
}

// NewValidationError creates a validation error
func NewValidationError(details string) *AppError {
	return NewAppError(CodeValidationFailed, "Validation failed", details)
}

// NewConflictError creates a conflict error
func NewConflictError(message string) *AppError {
	return NewAppError(CodeConflict, message, "")
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *AppError {
	if message == "" {
		message = "An unexpected error occurred"
	}
	return NewAppError(CodeInternal, message, "")
}

// NewDatabaseError creates a database error
func NewDatabaseError(operation string, cause error) *AppError {
	return NewAppError(
		CodeDatabaseError,
		"Database operation failed",
		fmt.Sprintf("Failed to %s", operation),
	).WithCause(cause)
}

// NewExternalServiceError creates an external service error
func NewExternalServiceError(service string, cause error) *AppError {
	return NewAppError(
		CodeExternalServiceError,
		"External service error",
		fmt.Sprintf("Failed to communicate with %s", service),
	).WithCause(cause)
}

// NewMealPlanNotFoundError creates a meal plan not found error
func NewMealPlanNotFoundError(planID string) *AppError {
	return NewAppError(
		CodeMealPlanNotFound,
		"Meal plan not found",
		fmt.Sprintf("Meal plan with ID %s does not exist", planID),
	).WithMetadata("plan_id", planID)
}

// NewPersonNotFoundError creates a person not found error
func NewPersonNotFoundError(personID string) *AppError {
	return NewAppError(
		CodePersonNotFound,
		"Person not found",
		fmt.Sprintf("Person with ID %s does not exist in this plan", personID),
	).WithMetadata("person_id", personID)
}

// NewEntryNotFoundError creates an entry not found error
func NewEntryNotFoundError(entryID string) *AppError {
	return NewAppError(
		CodeEntryNotFound,
		"Meal plan entry not found",
		fmt.Sprintf("Entry with ID %s does not exist in this plan", entryID),
	).WithMetadata("entry_id", entryID)
}

// NewNoPersonsError is returned when an operation needs registered persons
func NewNoPersonsError(planID string) *AppError {
	return NewAppError(
		CodeNoPersons,
		"Meal plan has no persons",
		"Add at least one person before scaling",
	).WithMetadata("plan_id", planID)
}

// NewNoDaysError is returned when a plan has no days to operate on
func NewNoDaysError(planID string) *AppError {
	return NewAppError(
		CodeNoDays,
		"Meal plan has no days",
		"The plan's date range produced no days",
	).WithMetadata("plan_id", planID)
}

// NewAIProviderUnavailableError is returned when no usable AI provider is configured
func NewAIProviderUnavailableError(cause error) *AppError {
	return NewAppError(
		CodeAIProviderUnavailable,
		"AI provider unavailable",
		"No active AI provider with a valid API key is configured",
	).WithCause(cause)
}

// NewResourceLockedError creates a resource locked error
func NewResourceLockedError(resource string) *AppError {
	return NewAppError(
		CodeResourceLocked,
		"Resource locked",
		fmt.Sprintf("The %s is currently locked by another operation", resource),
	).WithMetadata("resource", resource)
}

// NewQuotaExceededError creates a quota exceeded error
func NewQuotaExceededError(quotaType string, limit int) *AppError {
	return NewAppError(
		CodeQuotaExceeded,
		"Quota exceeded",
		fmt.Sprintf("You have exceeded your %s quota of %d", quotaType, limit),
	).WithMetadata("quota_type", quotaType).WithMetadata("limit", limit)
}

// NewRateLimitedError creates a rate limit error
func NewRateLimitedError(retryAfter time.Duration) *AppError {
	return NewAppError(
		CodeRateLimited,
		"Rate limit exceeded",
		fmt.Sprintf("Retry after %s", retryAfter.Round(time.Second)),
	).WithMetadata("retry_after_seconds", int(retryAfter.Round(time.Second).Seconds()))
}

// Wrap wraps an error as an internal error if it's not already an AppError
func Wrap(err error, message string) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	return NewInternalError(message).WithCause(err)
}

// Is checks if an error is of a specific error code
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// getStackTrace captures the current stack trace
func getStackTrace() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var builder strings.Builder
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "pkg/errors") {
			builder.WriteString(fmt.Sprintf("%s:%d %s\n", frame.File, frame.Line, frame.Function))
		}
		if !more {
			break
		}
	}

	return builder.String()
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Value   interface{} `json:"value"`
	Tag     string      `json:"tag"`
	Message string      `json:"message"`
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}

	if len(v) == 1 {
		return v[0].Message
	}

	var messages []string
	for _, err := range v {
		messages = append(messages, err.Message)
	}

	return strings.Join(messages, "; ")
}

// NewValidationErrors creates validation errors from validator errors
func NewValidationErrors(errors []ValidationError) *AppError {
	validationErrs := ValidationErrors(errors)

	return NewAppError(
		CodeValidationFailed,
		"Validation failed",
		validationErrs.Error(),
	).WithMetadata("validation_errors", validationErrs)
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error ErrorDetails `json:"error"`
}

// ErrorDetails represents the error details in API responses
type ErrorDetails struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

// ToErrorResponse converts an AppError to an API error response
func ToErrorResponse(err *AppError, requestID string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorDetails{
			Code:      err.Code,
			Message:   err.Message,
			Details:   err.Details,
			Metadata:  err.Metadata,
			RequestID: requestID,
			Timestamp: fmt.Sprintf("%d", time.Now().Unix()),
		},
	}
}
