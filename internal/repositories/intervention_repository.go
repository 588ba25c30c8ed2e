package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/intervention-service/internal/models"
)

// InterventionPlanRepository interface for intervention plan operations
type InterventionPlanRepository interface {
	// Core CRUD operations
	Create(ctx context.Context, plan *models.InterventionPlan) error
	GetByID(ctx context.Context, id uint) (*models.InterventionPlan, error)
	// Update writes the editable columns. Status is never written here.
	Update(ctx context.Context, plan *models.InterventionPlan) error
	Delete(ctx context.Context, id uint) error

	// Status and link updates touch single columns only
	UpdateStatus(ctx context.Context, id uint, status models.PlanStatus) error
	UpdateLinks(ctx context.Context, id uint, analysisID, categoryResultID *uint) error
	// MarkCompleted moves a draft or active plan to completed and reports
	// whether this call made the transition.
	MarkCompleted(ctx context.Context, id uint) (bool, error)

	// ListNonArchived returns the non-archived plans of a (student, category)
	// pair, newest first. Under normal operation it holds at most one plan.
	ListNonArchived(ctx context.Context, studentID uint, category models.Category) ([]*models.InterventionPlan, error)
	// ArchiveNonArchived archives every non-archived plan of the pair except
	// exceptID and returns the archived ids.
	ArchiveNonArchived(ctx context.Context, studentID uint, category models.Category, exceptID uint) ([]uint, error)
	CountNonArchivedByStudent(ctx context.Context, studentID uint) (int64, error)

	ListByStudent(ctx context.Context, studentID uint, filters PlanFilters) ([]*models.InterventionPlan, error)
	// ListAfter walks every plan by id; used by maintenance passes.
	ListAfter(ctx context.Context, afterID uint, limit int) ([]*models.InterventionPlan, error)
}

// InterventionProgressRepository interface for plan progress operations
type InterventionProgressRepository interface {
	Create(ctx context.Context, progress *models.InterventionProgress) error
	GetByPlanID(ctx context.Context, planID uint) (*models.InterventionProgress, error)
	DeleteByPlanID(ctx context.Context, planID uint) error

	// IncrementCounters adds one completed activity and one correct or
	// incorrect answer in a single UPDATE statement.
	IncrementCounters(ctx context.Context, planID uint, correct bool, at time.Time) error
	SetTotalActivities(ctx context.Context, planID uint, total int) error
	// Recalculate derives percent_complete, percent_correct and
	// passed_threshold from the row's stored counters and the plan's stored
	// threshold in a single UPDATE statement.
	Recalculate(ctx context.Context, planID uint) error
}

// InterventionResponseRepository interface for the append-only response log
type InterventionResponseRepository interface {
	Create(ctx context.Context, response *models.InterventionResponse) error
	ListByPlan(ctx context.Context, planID uint, filters ResponseFilters) ([]*models.InterventionResponse, error)
	CountByPlan(ctx context.Context, planID uint) (int64, error)
	DeleteByPlanID(ctx context.Context, planID uint) error
}
