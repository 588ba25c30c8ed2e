package postgres

import (
	"context"

	"github.com/SAP-F-2025/intervention-service/internal/models"
	"github.com/SAP-F-2025/intervention-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StudentPostgreSQL struct {
	db *gorm.DB
}

func NewStudentPostgreSQL(db *gorm.DB) repositories.StudentRepository {
	return &StudentPostgreSQL{db: db}
}

func (s *StudentPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Student, error) {
	var student models.Student
	if err := s.db.WithContext(ctx).First(&student, id).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

func (s *StudentPostgreSQL) GetByExternalID(ctx context.Context, externalID int64) (*models.Student, error) {
	var student models.Student
	if err := s.db.WithContext(ctx).Where("external_id = ?", externalID).First(&student).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

func (s *StudentPostgreSQL) ExistsByID(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Student{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *StudentPostgreSQL) LockByID(ctx context.Context, id uint) (*models.Student, error) {
	var student models.Student
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&student, id).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (s *StudentPostgreSQL) ListWithGradeLevel(ctx context.Context, afterID uint, limit int) ([]*models.Student, error) {
	var students []*models.Student
	query := s.db.WithContext(ctx).
		Where("id > ?", afterID).
		Where("grade_level IS NOT NULL AND TRIM(grade_level) <> ''").
		Order("id ASC")
	if err := applyPagination(query, limit, 0).Find(&students).Error; err != nil {
		return nil, err
	}
	return students, nil
}

func (s *StudentPostgreSQL) Create(ctx context.Context, student *models.Student) error {
	return s.db.WithContext(ctx).Create(student).Error
}
