package repositories

import (
	"context"

	"github.com/SAP-F-2025/intervention-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type PlanFilters struct {
	Category        *models.Category   `json:"category"`
	Status          *models.PlanStatus `json:"status"`
	IncludeArchived bool               `json:"include_archived"`
	Limit           int                `json:"limit"`
	Offset          int                `json:"offset"`
}

type ResponseFilters struct {
	QuestionID *string `json:"question_id"`
	Limit      int     `json:"limit"`
	Offset     int     `json:"offset"`
}

type CategoryResultFilters struct {
	AssessmentType *models.AssessmentType `json:"assessment_type"`
	Limit          int                    `json:"limit"`
	Offset         int                    `json:"offset"`
}

// ===== REPOSITORY MANAGER =====

// Repository groups the per-collection repositories. Calls made through the
// value passed to WithTransaction share one database transaction.
type Repository interface {
	Student() StudentRepository
	CategoryResult() CategoryResultRepository
	PrescriptiveAnalysis() PrescriptiveAnalysisRepository
	InterventionPlan() InterventionPlanRepository
	InterventionProgress() InterventionProgressRepository
	InterventionResponse() InterventionResponseRepository

	WithTransaction(ctx context.Context, fn func(repo Repository) error) error
	Ping(ctx context.Context) error
	Close() error
}
