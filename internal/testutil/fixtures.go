package testutil

import (
	"context"
	"testing"

	"github.com/SAP-F-2025/intervention-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func SeedStudent(tb testing.TB, ctx context.Context, db *gorm.DB, gradeLevel string, level models.ReadingLevel) *models.Student {
	tb.Helper()
	s := &models.Student{
		FirstName:    "Juan",
		LastName:     "Dela Cruz",
		ReadingLevel: level,
	}
	if gradeLevel != "" {
		s.GradeLevel = &gradeLevel
	}
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed student: %v", err)
	}
	return s
}

func SeedCategoryResult(tb testing.TB, ctx context.Context, db *gorm.DB, studentID uint, scores ...models.CategoryScore) *models.CategoryResult {
	tb.Helper()
	r := &models.CategoryResult{
		StudentID:      studentID,
		AssessmentType: models.AssessmentPre,
		ReadingLevel:   models.ReadingLevelDeveloping,
		Categories:     scores,
	}
	r.ComputeDerived()
	if err := db.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed category result: %v", err)
	}
	return r
}

func SeedAnalysis(tb testing.TB, ctx context.Context, db *gorm.DB, studentID uint, categoryID string, content models.AnalysisContent) *models.PrescriptiveAnalysis {
	tb.Helper()
	a := &models.PrescriptiveAnalysis{
		StudentID:    studentID,
		CategoryID:   categoryID,
		ReadingLevel: models.ReadingLevelDeveloping,
	}
	a.FillEmpty(content)
	if err := db.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed analysis: %v", err)
	}
	return a
}

// SeedPlan inserts a plan without its progress row.
func SeedPlan(tb testing.TB, ctx context.Context, db *gorm.DB, studentID uint, category models.Category, status models.PlanStatus, questions ...models.Question) *models.InterventionPlan {
	tb.Helper()
	p := &models.InterventionPlan{
		StudentID:     studentID,
		Name:          string(category) + " plan",
		Category:      category,
		ReadingLevel:  models.ReadingLevelDeveloping,
		PassThreshold: models.DefaultPassThreshold,
		Questions:     questions,
		Status:        status,
	}
	if err := db.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed plan: %v", err)
	}
	return p
}

func SeedProgress(tb testing.TB, ctx context.Context, db *gorm.DB, plan *models.InterventionPlan) *models.InterventionProgress {
	tb.Helper()
	p := models.NewProgressForPlan(plan)
	if err := db.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed progress: %v", err)
	}
	return p
}

// Question builds a two-choice question whose first choice is correct.
func Question(qt models.QuestionType, correct, wrong string) models.Question {
	return models.Question{
		ID:           uuid.NewString(),
		QuestionType: qt,
		QuestionText: "Piliin ang tamang sagot",
		Choices: []models.Choice{
			{OptionText: correct, IsCorrect: true},
			{OptionText: wrong},
		},
	}
}
