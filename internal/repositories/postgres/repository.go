package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/intervention-service/internal/models"
	"github.com/SAP-F-2025/intervention-service/internal/repositories"
	"gorm.io/gorm"
)

type repositoryManager struct {
	db *gorm.DB

	student  repositories.StudentRepository
	result   repositories.CategoryResultRepository
	analysis repositories.PrescriptiveAnalysisRepository
	plan     repositories.InterventionPlanRepository
	progress repositories.InterventionProgressRepository
	response repositories.InterventionResponseRepository
}

// NewRepository builds the gorm-backed repository set over db.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &repositoryManager{
		db:       db,
		student:  NewStudentPostgreSQL(db),
		result:   NewCategoryResultPostgreSQL(db),
		analysis: NewPrescriptiveAnalysisPostgreSQL(db),
		plan:     NewInterventionPlanPostgreSQL(db),
		progress: NewInterventionProgressPostgreSQL(db),
		response: NewInterventionResponsePostgreSQL(db),
	}
}

// Migrate creates or updates the tables of every model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func (m *repositoryManager) Student() repositories.StudentRepository { return m.student }

func (m *repositoryManager) CategoryResult() repositories.CategoryResultRepository { return m.result }

func (m *repositoryManager) PrescriptiveAnalysis() repositories.PrescriptiveAnalysisRepository {
	return m.analysis
}

func (m *repositoryManager) InterventionPlan() repositories.InterventionPlanRepository { return m.plan }

func (m *repositoryManager) InterventionProgress() repositories.InterventionProgressRepository {
	return m.progress
}

func (m *repositoryManager) InterventionResponse() repositories.InterventionResponseRepository {
	return m.response
}

func (m *repositoryManager) WithTransaction(ctx context.Context, fn func(repo repositories.Repository) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

func (m *repositoryManager) Ping(ctx context.Context) error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (m *repositoryManager) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// applyPagination applies limit and offset when they are set.
func applyPagination(query *gorm.DB, limit, offset int) *gorm.DB {
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}

// requireAffected turns a zero-row update into gorm.ErrRecordNotFound.
func requireAffected(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
