package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/intervention-service/internal/contentbank"
	"github.com/SAP-F-2025/intervention-service/internal/events"
	"github.com/SAP-F-2025/intervention-service/internal/metrics"
	"github.com/SAP-F-2025/intervention-service/internal/models"
	"github.com/SAP-F-2025/intervention-service/internal/repositories"
	"gorm.io/datatypes"
)

type analysisService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	opLogger  *ServiceLogger
	bank      contentbank.Bank
	publisher events.EventPublisher
}

func NewAnalysisService(repo repositories.Repository, logger *slog.Logger, bank contentbank.Bank, publisher events.EventPublisher) AnalysisService {
	return &analysisService{
		repo:      repo,
		logger:    logger,
		opLogger:  newOpLogger(logger, "analysis"),
		bank:      bank,
		publisher: publisher,
	}
}

// ===== CASCADE STEPS =====

// EnsureStudentHasAllAnalyses creates an empty analysis for every taxonomy
// category the student is missing and refreshes the reading level of the
// others. Existing rows match through name normalization, so repeated calls
// never add rows. Per-category failures are joined; the rest still run.
func (s *analysisService) EnsureStudentHasAllAnalyses(ctx context.Context, studentID uint, level models.ReadingLevel) ([]*models.PrescriptiveAnalysis, error) {
	if err := s.requireStudent(ctx, studentID); err != nil {
		return nil, err
	}

	existing, err := s.repo.PrescriptiveAnalysis().ListByStudent(ctx, studentID)
	if err != nil {
		return nil, storeErr("list analyses", err)
	}

	var errs []error
	created := 0
	for _, category := range models.Categories() {
		if a := findAnalysis(existing, category); a != nil {
			if level != "" && a.ReadingLevel != level {
				if err := s.repo.PrescriptiveAnalysis().UpdateReadingLevel(ctx, a.ID, level); err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", category, storeErr("update reading level", err)))
					continue
				}
				a.ReadingLevel = level
			}
			continue
		}

		stub := newAnalysisStub(studentID, category, level)
		if err := s.repo.PrescriptiveAnalysis().Create(ctx, stub); err != nil {
			if repositories.IsDuplicateError(err) {
				// Created concurrently under the canonical id.
				continue
			}
			errs = append(errs, fmt.Errorf("%s: %w", category, storeErr("create analysis stub", err)))
			continue
		}
		created++
	}

	if created > 0 {
		s.logger.Info("Created analysis stubs", "student_id", studentID, "created", created)
	}

	all, err := s.repo.PrescriptiveAnalysis().ListByStudent(ctx, studentID)
	if err != nil {
		errs = append(errs, storeErr("list analyses", err))
		return existing, errors.Join(errs...)
	}
	return all, errors.Join(errs...)
}

// GenerateAnalysesFromCategoryResults writes score-derived content into the
// analysis of every category present in result. FillEmpty never touches a
// populated list; Replace overwrites all three. Missing stubs are created on
// the way. Returns the analyses it touched.
func (s *analysisService) GenerateAnalysesFromCategoryResults(ctx context.Context, studentID uint, result *models.CategoryResult, mode GenerationMode) ([]*models.PrescriptiveAnalysis, error) {
	if result == nil {
		return nil, validationFailed("category_result", "category result is required", nil)
	}

	analyses, err := s.repo.PrescriptiveAnalysis().ListByStudent(ctx, studentID)
	if err != nil {
		return nil, storeErr("list analyses", err)
	}

	var (
		errs    []error
		touched []*models.PrescriptiveAnalysis
	)
	for _, score := range result.Categories {
		category, ok := models.NormalizeCategory(score.CategoryName)
		if !ok {
			s.logger.Warn("Skipping unknown category in result",
				"student_id", studentID,
				"category_result_id", result.ID,
				"category_name", score.CategoryName)
			continue
		}

		analysis := findAnalysis(analyses, category)
		if analysis == nil {
			analysis = newAnalysisStub(studentID, category, result.ReadingLevel)
			if err := s.repo.PrescriptiveAnalysis().Create(ctx, analysis); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", category, storeErr("create analysis stub", err)))
				continue
			}
			analyses = append(analyses, analysis)
		}

		content := s.bank.Analysis(category, contentbank.BandForScore(score.Score, score.Assessed()))
		changed := true
		if mode == Replace {
			analysis.Replace(content)
		} else {
			changed = analysis.FillEmpty(content)
		}
		if changed {
			if err := s.repo.PrescriptiveAnalysis().Update(ctx, analysis); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", category, lookupErr("update analysis", err, ErrAnalysisNotFound)))
				continue
			}
		}
		touched = append(touched, analysis)
	}
	return touched, errors.Join(errs...)
}

// RegenerateEmptyAnalyses fills every still-empty analysis of the student from
// the content bank and returns the full set. Populated lists are left as they
// are. Category ids outside the taxonomy get the generic content.
func (s *analysisService) RegenerateEmptyAnalyses(ctx context.Context, studentID uint) ([]*models.PrescriptiveAnalysis, error) {
	analyses, err := s.repo.PrescriptiveAnalysis().ListByStudent(ctx, studentID)
	if err != nil {
		return nil, storeErr("list analyses", err)
	}

	var latest *models.CategoryResult
	var errs []error
	needsContent := false
	for _, a := range analyses {
		if a.IsEmpty() {
			needsContent = true
			break
		}
	}
	if needsContent {
		latest, err = s.repo.CategoryResult().GetLatestByStudent(ctx, studentID)
		if err != nil {
			// Fall back to unscored content rather than leave rows empty.
			errs = append(errs, storeErr("get latest category result", err))
			latest = nil
		}
	}

	filled := 0
	for _, a := range analyses {
		if !a.IsEmpty() {
			continue
		}
		a.FillEmpty(s.contentFor(a, latest))
		if err := s.repo.PrescriptiveAnalysis().Update(ctx, a); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", a.CategoryID, lookupErr("update analysis", err, ErrAnalysisNotFound)))
			continue
		}
		filled++
	}

	if filled > 0 {
		s.logger.Info("Backfilled empty analyses", "student_id", studentID, "filled", filled)
	}
	return analyses, errors.Join(errs...)
}

func (s *analysisService) contentFor(a *models.PrescriptiveAnalysis, latest *models.CategoryResult) models.AnalysisContent {
	category, ok := a.Category()
	if !ok {
		return s.bank.GenericAnalysis(contentbank.BandUnscored)
	}
	band := contentbank.BandUnscored
	if latest != nil {
		if score, found := latest.ScoreFor(category); found {
			band = contentbank.BandForScore(score.Score, score.Assessed())
		}
	}
	return s.bank.Analysis(category, band)
}

// ===== CASCADE =====

// RunCascade applies ensure, generate and backfill in that order for a newly
// stored result. A failed step is recorded and the remaining steps still run,
// so the backfill can repair what an earlier step left behind.
func (s *analysisService) RunCascade(ctx context.Context, result *models.CategoryResult) (report *CascadeReport, err error) {
	if result == nil {
		return nil, validationFailed("category_result", "category result is required", nil)
	}
	op := s.opLogger.WithOperation(ctx, "run_cascade", result.StudentID)
	defer func() { op.LogResult(result.ID, "category_result", err) }()

	start := time.Now()
	report = &CascadeReport{
		StudentID:        result.StudentID,
		CategoryResultID: result.ID,
	}

	var errs []error
	fail := func(step string, stepErr error) {
		metrics.CascadeStepFailed(step)
		report.FailedSteps = append(report.FailedSteps, step)
		errs = append(errs, fmt.Errorf("%s: %w", step, stepErr))
		s.logger.Error("Cascade step failed",
			"step", step,
			"student_id", result.StudentID,
			"category_result_id", result.ID,
			"error", stepErr)
	}

	if _, err := s.EnsureStudentHasAllAnalyses(ctx, result.StudentID, result.ReadingLevel); err != nil {
		fail(metrics.StepEnsureStubs, err)
	}
	if _, err := s.GenerateAnalysesFromCategoryResults(ctx, result.StudentID, result, FillEmpty); err != nil {
		fail(metrics.StepGenerate, err)
	}
	analyses, err := s.RegenerateEmptyAnalyses(ctx, result.StudentID)
	if err != nil {
		fail(metrics.StepBackfill, err)
	}

	report.Analyses = analyses
	for _, a := range analyses {
		if !a.IsEmpty() {
			report.Populated++
		}
	}
	metrics.ObserveCascade(time.Since(start).Seconds())

	publish(ctx, s.publisher, s.logger, events.NewCascadeCompletedEvent(result.StudentID, events.CascadeCompletedEvent{
		CategoryResultID: result.ID,
		Analyses:         len(analyses),
		Populated:        report.Populated,
		FailedSteps:      report.FailedSteps,
	}))

	s.logger.Info("Analysis cascade finished",
		"student_id", result.StudentID,
		"category_result_id", result.ID,
		"analyses", len(analyses),
		"populated", report.Populated,
		"failed_steps", len(report.FailedSteps))
	return report, errors.Join(errs...)
}

// ===== CALLER-REQUESTED OPERATIONS =====

// RegenerateFromLatest rewrites every analysis of the student from the latest
// result. This is the only path that overwrites populated content.
func (s *analysisService) RegenerateFromLatest(ctx context.Context, studentID uint) (analyses []*models.PrescriptiveAnalysis, err error) {
	op := s.opLogger.WithOperation(ctx, "regenerate_analyses", studentID)
	defer func() { op.LogResult(0, "prescriptive_analysis", err) }()

	student, err := s.repo.Student().GetByID(ctx, studentID)
	if err != nil {
		return nil, lookupErr("get student", err, ErrStudentNotFound)
	}
	latest, err := s.repo.CategoryResult().GetLatestByStudent(ctx, studentID)
	if err != nil {
		return nil, storeErr("get latest category result", err)
	}
	if latest == nil {
		return nil, ErrCategoryResultNotFound
	}

	var errs []error
	if _, err := s.EnsureStudentHasAllAnalyses(ctx, studentID, student.CurrentReadingLevel()); err != nil {
		errs = append(errs, err)
	}
	if _, err := s.GenerateAnalysesFromCategoryResults(ctx, studentID, latest, Replace); err != nil {
		errs = append(errs, err)
	}
	analyses, err = s.RegenerateEmptyAnalyses(ctx, studentID)
	if err != nil {
		errs = append(errs, err)
	}
	return analyses, errors.Join(errs...)
}

func (s *analysisService) ListAnalyses(ctx context.Context, studentID uint) ([]*models.PrescriptiveAnalysis, error) {
	if err := s.requireStudent(ctx, studentID); err != nil {
		return nil, err
	}
	analyses, err := s.repo.PrescriptiveAnalysis().ListByStudent(ctx, studentID)
	if err != nil {
		return nil, storeErr("list analyses", err)
	}
	return analyses, nil
}

// ===== HELPERS =====

func (s *analysisService) requireStudent(ctx context.Context, studentID uint) error {
	if studentID == 0 {
		return validationFailed("student_id", "student_id is required", studentID)
	}
	exists, err := s.repo.Student().ExistsByID(ctx, studentID)
	if err != nil {
		return storeErr("check student", err)
	}
	if !exists {
		return ErrStudentNotFound
	}
	return nil
}

// newAnalysisStub builds an empty analysis keyed by the canonical category name.
func newAnalysisStub(studentID uint, category models.Category, level models.ReadingLevel) *models.PrescriptiveAnalysis {
	if level == "" {
		level = models.ReadingLevelNotAssessed
	}
	return &models.PrescriptiveAnalysis{
		StudentID:       studentID,
		CategoryID:      string(category),
		ReadingLevel:    level,
		Strengths:       datatypes.JSONSlice[string]{},
		Weaknesses:      datatypes.JSONSlice[string]{},
		Recommendations: datatypes.JSONSlice[string]{},
	}
}
