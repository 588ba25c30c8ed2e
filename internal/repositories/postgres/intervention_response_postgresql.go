package postgres

import (
	"context"

	"github.com/SAP-F-2025/intervention-service/internal/models"
	"github.com/SAP-F-2025/intervention-service/internal/repositories"
	"gorm.io/gorm"
)

type InterventionResponsePostgreSQL struct {
	db *gorm.DB
}

func NewInterventionResponsePostgreSQL(db *gorm.DB) repositories.InterventionResponseRepository {
	return &InterventionResponsePostgreSQL{db: db}
}

func (i *InterventionResponsePostgreSQL) Create(ctx context.Context, response *models.InterventionResponse) error {
	return i.db.WithContext(ctx).Create(response).Error
}

func (i *InterventionResponsePostgreSQL) ListByPlan(ctx context.Context, planID uint, filters repositories.ResponseFilters) ([]*models.InterventionResponse, error) {
	var responses []*models.InterventionResponse

	query := i.db.WithContext(ctx).Where("intervention_plan_id = ?", planID)
	if filters.QuestionID != nil {
		query = query.Where("question_id = ?", *filters.QuestionID)
	}
	query = applyPagination(query.Order("created_at ASC, id ASC"), filters.Limit, filters.Offset)

	if err := query.Find(&responses).Error; err != nil {
		return nil, err
	}
	return responses, nil
}

func (i *InterventionResponsePostgreSQL) CountByPlan(ctx context.Context, planID uint) (int64, error) {
	var count int64
	if err := i.db.WithContext(ctx).Model(&models.InterventionResponse{}).
		Where("intervention_plan_id = ?", planID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (i *InterventionResponsePostgreSQL) DeleteByPlanID(ctx context.Context, planID uint) error {
	return i.db.WithContext(ctx).
		Where("intervention_plan_id = ?", planID).
		Delete(&models.InterventionResponse{}).Error
}
