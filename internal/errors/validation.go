package errors

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/SAP-F-2025/intervention-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

func (pe *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", pe.Field, pe.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// ToValidationErrors converts validator.ValidationErrors to our custom type
func ToValidationErrors(err error) ValidationErrors {
	var errors ValidationErrors

	var validatorErr validator.ValidationErrors
	if stderrors.As(err, &validatorErr) {
		for _, err := range validatorErr {
			errors = append(errors, ValidationError{
				Field:   err.Field(),
				Message: getErrorMessage(err),
				Value:   err.Value(),
				Rule:    err.Tag(),
			})
		}
	}

	return errors
}

// getErrorMessage phrases a failed rule for API clients. Bounds read as
// characters on text, entries on lists, and plain values on numbers.
func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "required_without":
		return fmt.Sprintf("is required when %s is not set", err.Param())
	case "min", "gte":
		return bound("at least", err)
	case "max":
		return bound("at most", err)
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(err.Param()), ", ")
	case "dive":
		return "contains an invalid entry"

	case "category":
		return "must be one of: " + joinValues(models.Categories())
	case "assessment_type":
		return "must be one of: " + joinValues([]models.AssessmentType{
			models.AssessmentPre, models.AssessmentPost, models.AssessmentIntervention,
		})
	case "reading_level":
		return "must be one of: " + joinValues(models.ReadingLevels())
	case "plan_status":
		return "must be one of: " + joinValues([]models.PlanStatus{
			models.PlanStatusDraft, models.PlanStatusActive, models.PlanStatusCompleted, models.PlanStatusArchived,
		})

	default:
		return fmt.Sprintf("failed the %s rule", err.Tag())
	}
}

func bound(relation string, err validator.FieldError) string {
	switch err.Kind() {
	case reflect.String:
		return fmt.Sprintf("must be %s %s characters", relation, err.Param())
	case reflect.Slice, reflect.Array, reflect.Map:
		return fmt.Sprintf("must have %s %s entries", relation, err.Param())
	default:
		return fmt.Sprintf("must be %s %s", relation, err.Param())
	}
}

func joinValues[T ~string](values []T) string {
	names := make([]string, len(values))
	for i, v := range values {
		names[i] = string(v)
	}
	return strings.Join(names, ", ")
}
