package postgres

import (
	"context"

	"github.com/SAP-F-2025/intervention-service/internal/models"
	"github.com/SAP-F-2025/intervention-service/internal/repositories"
	"gorm.io/gorm"
)

type InterventionPlanPostgreSQL struct {
	db *gorm.DB
}

func NewInterventionPlanPostgreSQL(db *gorm.DB) repositories.InterventionPlanRepository {
	return &InterventionPlanPostgreSQL{db: db}
}

// ===== CORE CRUD OPERATIONS =====

func (i *InterventionPlanPostgreSQL) Create(ctx context.Context, plan *models.InterventionPlan) error {
	return i.db.WithContext(ctx).Create(plan).Error
}

func (i *InterventionPlanPostgreSQL) GetByID(ctx context.Context, id uint) (*models.InterventionPlan, error) {
	var plan models.InterventionPlan
	if err := i.db.WithContext(ctx).First(&plan, id).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

// editableColumns excludes status and the (student, category) pair. Status
// moves only through UpdateStatus, MarkCompleted and ArchiveNonArchived.
var editableColumns = []interface{}{
	"description", "reading_level", "pass_threshold", "questions",
	"prescriptive_analysis_id", "category_result_id", "updated_at",
}

func (i *InterventionPlanPostgreSQL) Update(ctx context.Context, plan *models.InterventionPlan) error {
	return requireAffected(i.db.WithContext(ctx).
		Model(plan).
		Select("name", editableColumns...).
		Updates(plan))
}

func (i *InterventionPlanPostgreSQL) Delete(ctx context.Context, id uint) error {
	return requireAffected(i.db.WithContext(ctx).Delete(&models.InterventionPlan{}, id))
}

// ===== FIELD UPDATES =====

func (i *InterventionPlanPostgreSQL) UpdateStatus(ctx context.Context, id uint, status models.PlanStatus) error {
	return requireAffected(i.db.WithContext(ctx).
		Model(&models.InterventionPlan{}).
		Where("id = ?", id).
		Update("status", status))
}

// UpdateLinks sets the non-nil back-references and leaves the others alone.
func (i *InterventionPlanPostgreSQL) UpdateLinks(ctx context.Context, id uint, analysisID, categoryResultID *uint) error {
	updates := map[string]interface{}{}
	if analysisID != nil {
		updates["prescriptive_analysis_id"] = *analysisID
	}
	if categoryResultID != nil {
		updates["category_result_id"] = *categoryResultID
	}
	if len(updates) == 0 {
		return nil
	}
	return requireAffected(i.db.WithContext(ctx).
		Model(&models.InterventionPlan{}).
		Where("id = ?", id).
		Updates(updates))
}

func (i *InterventionPlanPostgreSQL) MarkCompleted(ctx context.Context, id uint) (bool, error) {
	result := i.db.WithContext(ctx).
		Model(&models.InterventionPlan{}).
		Where("id = ? AND status IN ?", id, []models.PlanStatus{models.PlanStatusDraft, models.PlanStatusActive}).
		Update("status", models.PlanStatusCompleted)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ===== SUPERSESSION QUERIES =====

func (i *InterventionPlanPostgreSQL) ListNonArchived(ctx context.Context, studentID uint, category models.Category) ([]*models.InterventionPlan, error) {
	var plans []*models.InterventionPlan
	if err := i.db.WithContext(ctx).
		Where("student_id = ? AND category = ? AND status <> ?", studentID, category, models.PlanStatusArchived).
		Order("id DESC").
		Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

func (i *InterventionPlanPostgreSQL) ArchiveNonArchived(ctx context.Context, studentID uint, category models.Category, exceptID uint) ([]uint, error) {
	var ids []uint
	if err := i.db.WithContext(ctx).
		Model(&models.InterventionPlan{}).
		Where("student_id = ? AND category = ? AND status <> ? AND id <> ?",
			studentID, category, models.PlanStatusArchived, exceptID).
		Order("id ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	if err := i.db.WithContext(ctx).
		Model(&models.InterventionPlan{}).
		Where("id IN ?", ids).
		Update("status", models.PlanStatusArchived).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (i *InterventionPlanPostgreSQL) CountNonArchivedByStudent(ctx context.Context, studentID uint) (int64, error) {
	var count int64
	if err := i.db.WithContext(ctx).
		Model(&models.InterventionPlan{}).
		Where("student_id = ? AND status <> ?", studentID, models.PlanStatusArchived).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ===== LISTING =====

func (i *InterventionPlanPostgreSQL) ListByStudent(ctx context.Context, studentID uint, filters repositories.PlanFilters) ([]*models.InterventionPlan, error) {
	var plans []*models.InterventionPlan

	query := i.db.WithContext(ctx).Where("student_id = ?", studentID)
	switch {
	case filters.Status != nil:
		query = query.Where("status = ?", *filters.Status)
	case !filters.IncludeArchived:
		query = query.Where("status <> ?", models.PlanStatusArchived)
	}
	if filters.Category != nil {
		query = query.Where("category = ?", *filters.Category)
	}
	query = applyPagination(query.Order("created_at DESC, id DESC"), filters.Limit, filters.Offset)

	if err := query.Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

func (i *InterventionPlanPostgreSQL) ListAfter(ctx context.Context, afterID uint, limit int) ([]*models.InterventionPlan, error) {
	var plans []*models.InterventionPlan
	query := i.db.WithContext(ctx).Where("id > ?", afterID).Order("id ASC")
	if err := applyPagination(query, limit, 0).Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}
