package postgres

import (
	"context"

	"github.com/SAP-F-2025/intervention-service/internal/models"
	"github.com/SAP-F-2025/intervention-service/internal/repositories"
	"gorm.io/gorm"
)

type CategoryResultPostgreSQL struct {
	db *gorm.DB
}

func NewCategoryResultPostgreSQL(db *gorm.DB) repositories.CategoryResultRepository {
	return &CategoryResultPostgreSQL{db: db}
}

func (c *CategoryResultPostgreSQL) Create(ctx context.Context, result *models.CategoryResult) error {
	return c.db.WithContext(ctx).Create(result).Error
}

func (c *CategoryResultPostgreSQL) GetByID(ctx context.Context, id uint) (*models.CategoryResult, error) {
	var result models.CategoryResult
	if err := c.db.WithContext(ctx).First(&result, id).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *CategoryResultPostgreSQL) GetLatestByStudent(ctx context.Context, studentID uint) (*models.CategoryResult, error) {
	var result models.CategoryResult
	if err := c.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC, id DESC").
		First(&result).Error; err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (c *CategoryResultPostgreSQL) ListByStudent(ctx context.Context, studentID uint, filters repositories.CategoryResultFilters) ([]*models.CategoryResult, error) {
	var results []*models.CategoryResult

	query := c.db.WithContext(ctx).Where("student_id = ?", studentID)
	if filters.AssessmentType != nil {
		query = query.Where("assessment_type = ?", *filters.AssessmentType)
	}
	query = applyPagination(query.Order("created_at DESC, id DESC"), filters.Limit, filters.Offset)

	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (c *CategoryResultPostgreSQL) CountByStudent(ctx context.Context, studentID uint) (int64, error) {
	var count int64
	if err := c.db.WithContext(ctx).Model(&models.CategoryResult{}).
		Where("student_id = ?", studentID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// MarkReadingLevelUpdated is the only mutation allowed on a stored result.
func (c *CategoryResultPostgreSQL) MarkReadingLevelUpdated(ctx context.Context, id uint) error {
	return requireAffected(c.db.WithContext(ctx).
		Model(&models.CategoryResult{}).
		Where("id = ?", id).
		Update("reading_level_updated", true))
}
