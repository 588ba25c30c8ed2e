package repositories

import (
	"context"

	"github.com/SAP-F-2025/intervention-service/internal/models"
)

// CategoryResultRepository interface for assessment result operations
type CategoryResultRepository interface {
	Create(ctx context.Context, result *models.CategoryResult) error
	GetByID(ctx context.Context, id uint) (*models.CategoryResult, error)

	// GetLatestByStudent returns nil, nil when the student has no results.
	GetLatestByStudent(ctx context.Context, studentID uint) (*models.CategoryResult, error)
	ListByStudent(ctx context.Context, studentID uint, filters CategoryResultFilters) ([]*models.CategoryResult, error)
	CountByStudent(ctx context.Context, studentID uint) (int64, error)

	MarkReadingLevelUpdated(ctx context.Context, id uint) error
}
