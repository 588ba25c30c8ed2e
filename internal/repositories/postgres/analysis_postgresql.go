package postgres

import (
	"context"

	"github.com/SAP-F-2025/intervention-service/internal/models"
	"github.com/SAP-F-2025/intervention-service/internal/repositories"
	"gorm.io/gorm"
)

type PrescriptiveAnalysisPostgreSQL struct {
	db *gorm.DB
}

func NewPrescriptiveAnalysisPostgreSQL(db *gorm.DB) repositories.PrescriptiveAnalysisRepository {
	return &PrescriptiveAnalysisPostgreSQL{db: db}
}

func (p *PrescriptiveAnalysisPostgreSQL) Create(ctx context.Context, analysis *models.PrescriptiveAnalysis) error {
	return p.db.WithContext(ctx).Create(analysis).Error
}

func (p *PrescriptiveAnalysisPostgreSQL) GetByID(ctx context.Context, id uint) (*models.PrescriptiveAnalysis, error) {
	var analysis models.PrescriptiveAnalysis
	if err := p.db.WithContext(ctx).First(&analysis, id).Error; err != nil {
		return nil, err
	}
	return &analysis, nil
}

// Update writes the content lists and the reading level of one document.
func (p *PrescriptiveAnalysisPostgreSQL) Update(ctx context.Context, analysis *models.PrescriptiveAnalysis) error {
	return requireAffected(p.db.WithContext(ctx).
		Model(analysis).
		Select("reading_level", "strengths", "weaknesses", "recommendations", "updated_at").
		Updates(analysis))
}

func (p *PrescriptiveAnalysisPostgreSQL) UpdateReadingLevel(ctx context.Context, id uint, level models.ReadingLevel) error {
	return requireAffected(p.db.WithContext(ctx).
		Model(&models.PrescriptiveAnalysis{}).
		Where("id = ?", id).
		Update("reading_level", level))
}

func (p *PrescriptiveAnalysisPostgreSQL) ListByStudent(ctx context.Context, studentID uint) ([]*models.PrescriptiveAnalysis, error) {
	var analyses []*models.PrescriptiveAnalysis
	if err := p.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("id ASC").
		Find(&analyses).Error; err != nil {
		return nil, err
	}
	return analyses, nil
}

func (p *PrescriptiveAnalysisPostgreSQL) CountByStudent(ctx context.Context, studentID uint) (int64, error) {
	var count int64
	if err := p.db.WithContext(ctx).Model(&models.PrescriptiveAnalysis{}).
		Where("student_id = ?", studentID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
