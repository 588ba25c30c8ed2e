package repositories

import (
	"context"

	"github.com/SAP-F-2025/intervention-service/internal/models"
)

// StudentRepository is a read-mostly view of the student directory
type StudentRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Student, error)
	GetByExternalID(ctx context.Context, externalID int64) (*models.Student, error)
	ExistsByID(ctx context.Context, id uint) (bool, error)

	// LockByID loads the student with a row lock held until the surrounding
	// transaction ends. Only meaningful inside WithTransaction.
	LockByID(ctx context.Context, id uint) (*models.Student, error)

	// ListWithGradeLevel returns up to limit students with a grade level and
	// id > afterID, ordered by id.
	ListWithGradeLevel(ctx context.Context, afterID uint, limit int) ([]*models.Student, error)

	Create(ctx context.Context, student *models.Student) error
}
