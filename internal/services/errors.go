package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/intervention-service/internal/errors"
	"github.com/SAP-F-2025/intervention-service/internal/repositories"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrConflict         = errors.New("resource conflict")
	ErrStoreFailure     = errors.New("record store failure")

	// Lookup errors
	ErrStudentNotFound        = errors.New("student not found")
	ErrPlanNotFound           = errors.New("intervention plan not found")
	ErrProgressNotFound       = errors.New("intervention progress not found")
	ErrAnalysisNotFound       = errors.New("prescriptive analysis not found")
	ErrCategoryResultNotFound = errors.New("category result not found")

	// Plan lifecycle errors
	ErrPlanArchived     = errors.New("intervention plan is archived")
	ErrActivePlanExists = errors.New("a non-archived plan already exists for this student and category")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// StoreError wraps a persistence failure. Callers treat it as retryable.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store failure during %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return target == ErrStoreFailure
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

// validationFailed builds a single-field ValidationErrors value.
func validationFailed(field, message string, value interface{}) error {
	return ValidationErrors{*NewValidationError(field, message, value)}
}

// storeErr wraps err as a StoreError unless it already carries a service error.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsNotFound(err) || IsValidation(err) || IsConflict(err) || IsStoreFailure(err) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// lookupErr maps a missing row onto notFound and anything else onto a StoreError.
func lookupErr(op string, err error, notFound error) error {
	if repositories.IsNotFoundError(err) {
		return notFound
	}
	return storeErr(op, err)
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrStudentNotFound) ||
		errors.Is(err, ErrPlanNotFound) ||
		errors.Is(err, ErrProgressNotFound) ||
		errors.Is(err, ErrAnalysisNotFound) ||
		errors.Is(err, ErrCategoryResultNotFound)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve ValidationErrors
	return errors.As(err, &ve)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrPlanArchived) ||
		errors.Is(err, ErrActivePlanExists)
}

// IsStoreFailure checks if error came from the record store
func IsStoreFailure(err error) bool {
	return errors.Is(err, ErrStoreFailure)
}

// IsPermanent reports errors that a retry cannot fix. Message consumers
// acknowledge these instead of asking for redelivery.
func IsPermanent(err error) bool {
	return IsValidation(err) || IsNotFound(err) || IsConflict(err)
}
