package validator

import (
	"reflect"
	"strings"

	apperrors "github.com/SAP-F-2025/intervention-service/internal/errors"
	"github.com/SAP-F-2025/intervention-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// Validator wraps a go-playground validator with the domain tags registered.
type Validator struct {
	structValidator *validator.Validate
}

// New creates a new validator instance
func New() *Validator {
	structValidator := validator.New()
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator: structValidator,
	}
}

// Validate checks struct tags and returns field-level ValidationErrors on failure.
func (v *Validator) Validate(s interface{}) error {
	err := v.structValidator.Struct(s)
	if err == nil {
		return nil
	}
	if errs := apperrors.ToValidationErrors(err); len(errs) > 0 {
		return errs
	}
	return err
}

// Var validates a single value against a tag string.
func (v *Validator) Var(field interface{}, tag string) error {
	err := v.structValidator.Var(field, tag)
	if err == nil {
		return nil
	}
	if errs := apperrors.ToValidationErrors(err); len(errs) > 0 {
		return errs
	}
	return err
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("category", validateCategory)
	validate.RegisterValidation("assessment_type", validateAssessmentType)
	validate.RegisterValidation("reading_level", validateReadingLevel)
	validate.RegisterValidation("plan_status", validatePlanStatus)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// validateCategory accepts any spelling that normalizes onto the taxonomy.
func validateCategory(fl validator.FieldLevel) bool {
	_, ok := models.NormalizeCategory(fl.Field().String())
	return ok
}

func validateAssessmentType(fl validator.FieldLevel) bool {
	return models.AssessmentType(fl.Field().String()).IsValid()
}

// validateReadingLevel lets empty values through; pair with required when needed.
func validateReadingLevel(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || models.ReadingLevel(value).IsValid()
}

func validatePlanStatus(fl validator.FieldLevel) bool {
	return models.PlanStatus(fl.Field().String()).IsValid()
}
