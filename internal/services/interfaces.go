package services

import (
	"context"

	"github.com/SAP-F-2025/intervention-service/internal/events"
	"github.com/SAP-F-2025/intervention-service/internal/models"
)

// PlanService creates, supersedes, updates and deletes intervention plans.
// At most one non-archived plan exists per (student, category).
type PlanService interface {
	// Core plan lifecycle
	CreatePlan(ctx context.Context, req *CreatePlanRequest) (*models.InterventionPlan, error)
	UpdatePlan(ctx context.Context, id uint, req *UpdatePlanRequest) (*models.InterventionPlan, error)
	DeletePlan(ctx context.Context, id uint) error
	Activate(ctx context.Context, id uint) (*models.InterventionPlan, error)

	// Maintenance
	ReconcileLinks(ctx context.Context) (*LinkReport, error)

	// Queries
	GetPlan(ctx context.Context, id uint) (*models.InterventionPlan, error)
	GetCurrentPlan(ctx context.Context, studentID uint, category string) (*models.InterventionPlan, error)
	ListStudentPlans(ctx context.Context, studentID uint, includeArchived bool) ([]*models.InterventionPlan, error)
}

// ProgressService owns the derived counters of every plan.
type ProgressService interface {
	// Recompute is the only path that derives percentages and completion.
	Recompute(ctx context.Context, planID uint) (*models.InterventionProgress, error)
	EnsureProgressExists(ctx context.Context, planID uint) (*models.InterventionProgress, error)
	GetProgress(ctx context.Context, planID uint) (*models.InterventionProgress, error)

	// Variants for callers that already hold the plan. RecomputePlan updates
	// plan.Status when it completes the plan.
	RecomputePlan(ctx context.Context, plan *models.InterventionPlan) (*models.InterventionProgress, error)
	EnsureProgressForPlan(ctx context.Context, plan *models.InterventionPlan) (*models.InterventionProgress, error)
}

// ResponseService records answered questions.
type ResponseService interface {
	RecordResponse(ctx context.Context, req *RecordResponseRequest) (*RecordResponseResult, error)
	ListResponses(ctx context.Context, planID uint) ([]*models.InterventionResponse, error)
}

// AnalysisService keeps one populated prescriptive analysis per student and category.
type AnalysisService interface {
	// Cascade steps, in the order RunCascade applies them
	EnsureStudentHasAllAnalyses(ctx context.Context, studentID uint, level models.ReadingLevel) ([]*models.PrescriptiveAnalysis, error)
	GenerateAnalysesFromCategoryResults(ctx context.Context, studentID uint, result *models.CategoryResult, mode GenerationMode) ([]*models.PrescriptiveAnalysis, error)
	RegenerateEmptyAnalyses(ctx context.Context, studentID uint) ([]*models.PrescriptiveAnalysis, error)

	RunCascade(ctx context.Context, result *models.CategoryResult) (*CascadeReport, error)

	// Caller-requested operations
	RegenerateFromLatest(ctx context.Context, studentID uint) ([]*models.PrescriptiveAnalysis, error)
	ListAnalyses(ctx context.Context, studentID uint) ([]*models.PrescriptiveAnalysis, error)
}

// CategoryResultService persists assessment results and triggers the cascade.
type CategoryResultService interface {
	events.CategoryResultRecorder

	Record(ctx context.Context, req *RecordCategoryResultRequest) (*RecordCategoryResultResult, error)
	GetResult(ctx context.Context, id uint) (*models.CategoryResult, error)
	ListStudentResults(ctx context.Context, studentID uint) ([]*models.CategoryResult, error)
	MarkReadingLevelUpdated(ctx context.Context, id uint) (*models.CategoryResult, error)
}

// BootstrapService reconciles shell records for every graded student.
type BootstrapService interface {
	ReconcileAllStudents(ctx context.Context) (*BootstrapReport, error)
}

// QuestionSource supplies seed questions for default plans.
type QuestionSource interface {
	QuestionsFor(category models.Category) []models.Question
}
