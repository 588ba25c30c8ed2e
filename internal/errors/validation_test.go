package errors

import (
	"fmt"
	"strings"
	"testing"

	"github.com/SAP-F-2025/intervention-service/internal/models"
	"github.com/go-playground/validator/v10"
)

func TestValidationError(t *testing.T) {
	// Test NewValidationError
	err := NewValidationError("student_id", "test message", "test_value")

	if err.Field != "student_id" {
		t.Errorf("Expected field to be 'student_id', got '%s'", err.Field)
	}

	if err.Message != "test message" {
		t.Errorf("Expected message to be 'test message', got '%s'", err.Message)
	}

	if err.Value != "test_value" {
		t.Errorf("Expected value to be 'test_value', got '%v'", err.Value)
	}

	// Test Error method
	expected := "validation error on field 'student_id': test message"
	if err.Error() != expected {
		t.Errorf("Expected error message to be '%s', got '%s'", expected, err.Error())
	}
}

func TestValidationErrors(t *testing.T) {
	// Test empty ValidationErrors
	var errs ValidationErrors
	if errs.Error() != "validation failed" {
		t.Errorf("Expected 'validation failed' for empty errors, got '%s'", errs.Error())
	}

	// Test single ValidationError
	errs = append(errs, *NewValidationError("field1", "message1", nil))
	expected := "validation failed: field1 message1"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for single error, got '%s'", expected, errs.Error())
	}

	// Test multiple ValidationErrors
	errs = append(errs, *NewValidationError("field2", "message2", nil))
	expected = "validation failed: 2 field errors"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for multiple errors, got '%s'", expected, errs.Error())
	}
}

type samplePlanRequest struct {
	StudentID     uint     `validate:"required"`
	Category      string   `validate:"required"`
	PassThreshold int      `validate:"min=0,max=100"`
	Name          string   `validate:"max=5"`
	Questions     []string `validate:"min=1"`
	Status        string   `validate:"omitempty,oneof=draft active"`
	Level         string   `validate:"reading_level"`
}

func TestToValidationErrors(t *testing.T) {
	v := validator.New()
	if err := v.RegisterValidation("reading_level", func(fl validator.FieldLevel) bool {
		return models.ReadingLevel(fl.Field().String()).IsValid()
	}); err != nil {
		t.Fatal(err)
	}
	err := v.Struct(samplePlanRequest{
		PassThreshold: 120,
		Name:          "Decoding plan",
		Status:        "paused",
		Level:         "Fluent",
	})
	if err == nil {
		t.Fatal("Expected validation to fail")
	}

	errs := ToValidationErrors(fmt.Errorf("create plan: %w", err))
	if len(errs) != 7 {
		t.Fatalf("Expected 7 field errors, got %d", len(errs))
	}

	messages := map[string]string{}
	for _, e := range errs {
		messages[e.Field] = e.Message
	}
	expected := map[string]string{
		"StudentID":     "is required",
		"Category":      "is required",
		"PassThreshold": "must be at most 100",
		"Name":          "must be at most 5 characters",
		"Questions":     "must have at least 1 entries",
		"Status":        "must be one of: draft, active",
	}
	for field, want := range expected {
		if messages[field] != want {
			t.Errorf("Expected %s message '%s', got '%s'", field, want, messages[field])
		}
	}
	if !strings.Contains(messages["Level"], string(models.ReadingLevelAtGradeLevel)) {
		t.Errorf("Expected Level message to list the reading levels, got '%s'", messages["Level"])
	}
}

func TestToValidationErrors_IgnoresOtherErrors(t *testing.T) {
	if errs := ToValidationErrors(fmt.Errorf("boom")); len(errs) != 0 {
		t.Errorf("Expected no validation errors, got %d", len(errs))
	}
}
