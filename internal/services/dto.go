package services

import (
	"github.com/SAP-F-2025/intervention-service/internal/models"
)

// ===== PLAN REQUESTS =====

type ChoiceRequest struct {
	OptionText  string `json:"option_text" validate:"required,max=500"`
	IsCorrect   bool   `json:"is_correct"`
	Description string `json:"description,omitempty" validate:"max=1000"`
}

type QuestionRequest struct {
	ID            string          `json:"id,omitempty" validate:"max=64"`
	QuestionType  string          `json:"question_type" validate:"max=50"`
	QuestionText  string          `json:"question_text" validate:"required"`
	QuestionImage *string         `json:"question_image,omitempty"`
	QuestionValue *string         `json:"question_value,omitempty"`
	Choices       []ChoiceRequest `json:"choices" validate:"dive"`
}

// CreatePlanRequest requires questions to be present; an empty list is allowed.
type CreatePlanRequest struct {
	StudentID              uint               `json:"student_id" validate:"required"`
	Category               string             `json:"category" validate:"required,category"`
	Name                   string             `json:"name" validate:"max=200"`
	Description            string             `json:"description"`
	ReadingLevel           string             `json:"reading_level" validate:"reading_level"`
	PassThreshold          *int               `json:"pass_threshold" validate:"omitempty,min=0,max=100"`
	Status                 string             `json:"status" validate:"omitempty,oneof=draft active"`
	PrescriptiveAnalysisID *uint              `json:"prescriptive_analysis_id"`
	CategoryResultID       *uint              `json:"category_result_id"`
	Questions              *[]QuestionRequest `json:"questions" validate:"required,dive"`
}

// UpdatePlanRequest is a patch; nil fields are left unchanged.
type UpdatePlanRequest struct {
	Name                   *string            `json:"name" validate:"omitempty,max=200"`
	Description            *string            `json:"description"`
	ReadingLevel           *string            `json:"reading_level" validate:"omitempty,reading_level"`
	PassThreshold          *int               `json:"pass_threshold" validate:"omitempty,min=0,max=100"`
	PrescriptiveAnalysisID *uint              `json:"prescriptive_analysis_id"`
	CategoryResultID       *uint              `json:"category_result_id"`
	Questions              *[]QuestionRequest `json:"questions" validate:"omitempty,dive"`
}

// LinkReport summarizes one ReconcileLinks pass.
type LinkReport struct {
	PlansScanned    int `json:"plans_scanned"`
	LinksBackfilled int `json:"links_backfilled"`
	FeedbackFilled  int `json:"feedback_filled"`
}

// ===== RESPONSE REQUESTS =====

// RecordResponseRequest records one answer. When IsCorrect is omitted it is
// taken from the matching plan choice.
type RecordResponseRequest struct {
	StudentID          uint    `json:"student_id" validate:"required"`
	InterventionPlanID uint    `json:"intervention_plan_id" validate:"required"`
	QuestionID         string  `json:"question_id" validate:"required,max=64"`
	SelectedChoice     string  `json:"selected_choice" validate:"required"`
	IsCorrect          *bool   `json:"is_correct"`
	ResponseTime       float64 `json:"response_time" validate:"gte=0"`
}

type RecordResponseResult struct {
	Response   *models.InterventionResponse `json:"response"`
	Progress   *models.InterventionProgress `json:"progress"`
	PlanStatus models.PlanStatus            `json:"plan_status"`
}

// ===== CATEGORY RESULT REQUESTS =====

type CategoryScoreRequest struct {
	CategoryName     string `json:"category_name" validate:"required,category"`
	TotalQuestions   int    `json:"total_questions" validate:"gte=0"`
	CorrectAnswers   int    `json:"correct_answers" validate:"gte=0"`
	PassingThreshold *int   `json:"passing_threshold" validate:"omitempty,min=1,max=100"`
}

// RecordCategoryResultRequest identifies the student by id or by the
// external numeric id of the student directory.
type RecordCategoryResultRequest struct {
	StudentID         uint                   `json:"student_id" validate:"required_without=ExternalStudentID"`
	ExternalStudentID *int64                 `json:"external_student_id"`
	AssessmentType    string                 `json:"assessment_type" validate:"required,assessment_type"`
	ReadingLevel      string                 `json:"reading_level" validate:"reading_level"`
	Categories        []CategoryScoreRequest `json:"categories" validate:"required,min=1,dive"`
}

type RecordCategoryResultResult struct {
	Result  *models.CategoryResult `json:"result"`
	Cascade *CascadeReport         `json:"cascade"`
}

// ===== ANALYSIS TYPES =====

// GenerationMode selects how targeted generation writes content.
type GenerationMode int

const (
	// FillEmpty only fills lists that are still empty. Used by the cascade.
	FillEmpty GenerationMode = iota
	// Replace overwrites all three lists. Only for explicit regeneration.
	Replace
)

type CascadeReport struct {
	StudentID        uint                           `json:"student_id"`
	CategoryResultID uint                           `json:"category_result_id"`
	Analyses         []*models.PrescriptiveAnalysis `json:"analyses"`
	Populated        int                            `json:"populated"`
	FailedSteps      []string                       `json:"failed_steps,omitempty"`
}

// ===== BOOTSTRAP TYPES =====

type StudentFailure struct {
	StudentID uint   `json:"student_id"`
	Error     string `json:"error"`
}

type BootstrapReport struct {
	StudentsScanned int              `json:"students_scanned"`
	ResultsCreated  int              `json:"results_created"`
	AnalysesCreated int              `json:"analyses_created"`
	PlansCreated    int              `json:"plans_created"`
	ProgressHealed  int              `json:"progress_healed"`
	PlansArchived   int              `json:"plans_archived"`
	Links           *LinkReport      `json:"links,omitempty"`
	LinkError       string           `json:"link_error,omitempty"`
	Failures        []StudentFailure `json:"failures"`
}
