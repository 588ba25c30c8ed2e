package repositories

import (
	"context"

	"github.com/SAP-F-2025/intervention-service/internal/models"
)

// PrescriptiveAnalysisRepository interface for prescriptive analysis operations
type PrescriptiveAnalysisRepository interface {
	Create(ctx context.Context, analysis *models.PrescriptiveAnalysis) error
	GetByID(ctx context.Context, id uint) (*models.PrescriptiveAnalysis, error)
	Update(ctx context.Context, analysis *models.PrescriptiveAnalysis) error
	UpdateReadingLevel(ctx context.Context, id uint, level models.ReadingLevel) error

	// ListByStudent returns every analysis of the student ordered by id.
	ListByStudent(ctx context.Context, studentID uint) ([]*models.PrescriptiveAnalysis, error)
	CountByStudent(ctx context.Context, studentID uint) (int64, error)
}
