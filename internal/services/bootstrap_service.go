package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/intervention-service/internal/cache"
	"github.com/SAP-F-2025/intervention-service/internal/metrics"
	"github.com/SAP-F-2025/intervention-service/internal/models"
	"github.com/SAP-F-2025/intervention-service/internal/repositories"
)

type bootstrapService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	opLogger  *ServiceLogger
	plans     PlanService
	analyses  AnalysisService
	questions QuestionSource
	cache     *cache.PlanCache
	batchSize int
}

func NewBootstrapService(
	repo repositories.Repository,
	logger *slog.Logger,
	plans PlanService,
	analyses AnalysisService,
	questions QuestionSource,
	planCache *cache.PlanCache,
	batchSize int,
) BootstrapService {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &bootstrapService{
		repo:      repo,
		logger:    logger,
		opLogger:  newOpLogger(logger, "bootstrap"),
		plans:     plans,
		analyses:  analyses,
		questions: questions,
		cache:     planCache,
		batchSize: batchSize,
	}
}

// ReconcileAllStudents walks every student with a grade level in id order and
// creates whatever shell records are missing. Every check reads current
// counts first, so an interrupted run can simply be started again. One
// student's failure is recorded and the scan moves on.
func (s *bootstrapService) ReconcileAllStudents(ctx context.Context) (report *BootstrapReport, err error) {
	op := s.opLogger.WithOperation(ctx, "reconcile_all_students", 0)
	defer func() { op.LogResult(0, "student", err) }()

	report = &BootstrapReport{Failures: []StudentFailure{}}
	s.logger.Info("Starting bootstrap reconciliation", "batch_size", s.batchSize)

	var afterID uint
	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		students, err := s.repo.Student().ListWithGradeLevel(ctx, afterID, s.batchSize)
		if err != nil {
			return report, storeErr("list students", err)
		}

		for _, student := range students {
			afterID = student.ID
			report.StudentsScanned++

			changed, err := s.reconcileStudent(ctx, student, report)
			switch {
			case err != nil:
				metrics.BootstrapStudent(metrics.OutcomeFailed)
				report.Failures = append(report.Failures, StudentFailure{StudentID: student.ID, Error: err.Error()})
				s.logger.Warn("Bootstrap failed for student", "student_id", student.ID, "error", err)
			case changed:
				metrics.BootstrapStudent(metrics.OutcomeReconciled)
			default:
				metrics.BootstrapStudent(metrics.OutcomeUnchanged)
			}
		}

		if len(students) < s.batchSize {
			break
		}
	}

	links, linkErr := s.plans.ReconcileLinks(ctx)
	report.Links = links
	if linkErr != nil {
		report.LinkError = linkErr.Error()
		s.logger.Warn("Link reconciliation incomplete", "error", linkErr)
	}
	if err := s.cache.Flush(ctx); err != nil {
		s.logger.Warn("Failed to flush plan cache", "error", err)
	}

	s.logger.Info("Bootstrap reconciliation finished",
		"students_scanned", report.StudentsScanned,
		"results_created", report.ResultsCreated,
		"analyses_created", report.AnalysesCreated,
		"plans_created", report.PlansCreated,
		"progress_healed", report.ProgressHealed,
		"plans_archived", report.PlansArchived,
		"failures", len(report.Failures))
	return report, nil
}

func (s *bootstrapService) reconcileStudent(ctx context.Context, student *models.Student, report *BootstrapReport) (bool, error) {
	changed := false
	level := student.CurrentReadingLevel()

	// Shell category result
	results, err := s.repo.CategoryResult().CountByStudent(ctx, student.ID)
	if err != nil {
		return changed, storeErr("count category results", err)
	}
	if results == 0 {
		shell := models.NewShellCategoryResult(student.ID, level)
		shell.ComputeDerived()
		if err := s.repo.CategoryResult().Create(ctx, shell); err != nil {
			return changed, storeErr("create shell category result", err)
		}
		report.ResultsCreated++
		changed = true
	}

	// Analysis stubs
	before, err := s.repo.PrescriptiveAnalysis().CountByStudent(ctx, student.ID)
	if err != nil {
		return changed, storeErr("count analyses", err)
	}
	analyses, err := s.analyses.EnsureStudentHasAllAnalyses(ctx, student.ID, level)
	if err != nil {
		return changed, fmt.Errorf("ensure analyses: %w", err)
	}
	if created := len(analyses) - int(before); created > 0 {
		report.AnalysesCreated += created
		changed = true
	}

	// Plans and progress
	healed, err := s.healPlans(ctx, student, report)
	if err != nil {
		return changed || healed, err
	}
	changed = changed || healed

	live, err := s.repo.InterventionPlan().CountNonArchivedByStudent(ctx, student.ID)
	if err != nil {
		return changed, storeErr("count plans", err)
	}
	if live > 0 {
		return changed, nil
	}
	if err := s.createDefaultPlan(ctx, student, analyses); err != nil {
		return changed, fmt.Errorf("create default plan: %w", err)
	}
	report.PlansCreated++
	return true, nil
}

// healPlans keeps the newest non-archived plan of each category, archives the
// rest, and recreates missing progress rows.
func (s *bootstrapService) healPlans(ctx context.Context, student *models.Student, report *BootstrapReport) (bool, error) {
	plans, err := s.repo.InterventionPlan().ListByStudent(ctx, student.ID, repositories.PlanFilters{})
	if err != nil {
		return false, storeErr("list plans", err)
	}

	changed := false
	newest := map[models.Category]*models.InterventionPlan{}
	duplicated := map[models.Category]bool{}
	for _, plan := range plans {
		current, ok := newest[plan.Category]
		if ok {
			duplicated[plan.Category] = true
		}
		if !ok || plan.ID > current.ID {
			newest[plan.Category] = plan
		}
	}

	for category := range duplicated {
		keep := newest[category]
		archived, err := s.repo.InterventionPlan().ArchiveNonArchived(ctx, student.ID, category, keep.ID)
		if err != nil {
			return changed, storeErr("archive duplicate plans", err)
		}
		if len(archived) > 0 {
			s.cache.InvalidatePlan(ctx, archived...)
			report.PlansArchived += len(archived)
			changed = true
			s.logger.Warn("Archived duplicate plans",
				"student_id", student.ID,
				"category", category,
				"kept_plan_id", keep.ID,
				"archived", len(archived))
		}
	}

	for _, plan := range newest {
		_, err := s.repo.InterventionProgress().GetByPlanID(ctx, plan.ID)
		if err == nil {
			continue
		}
		if !repositories.IsNotFoundError(err) {
			return changed, storeErr("get progress", err)
		}
		if err := s.healProgress(ctx, plan); err != nil {
			return changed, err
		}
		report.ProgressHealed++
		changed = true
	}
	return changed, nil
}

func (s *bootstrapService) healProgress(ctx context.Context, plan *models.InterventionPlan) error {
	progress := models.NewProgressForPlan(plan)
	if err := s.repo.InterventionProgress().Create(ctx, progress); err != nil && !repositories.IsDuplicateError(err) {
		return storeErr("create progress", err)
	}
	return nil
}

// createDefaultPlan targets the weakest scored category of the latest result,
// or the first taxonomy category when nothing is scored yet.
func (s *bootstrapService) createDefaultPlan(ctx context.Context, student *models.Student, analyses []*models.PrescriptiveAnalysis) error {
	latest, err := s.repo.CategoryResult().GetLatestByStudent(ctx, student.ID)
	if err != nil {
		return storeErr("get latest category result", err)
	}

	target := models.Categories()[0]
	var resultID *uint
	if latest != nil {
		if weakest, ok := latest.WeakestCategory(); ok {
			target = weakest
		}
		id := latest.ID
		resultID = &id
	}

	var analysisID *uint
	if a := findAnalysis(analyses, target); a != nil {
		id := a.ID
		analysisID = &id
	}

	questions := questionRequests(s.questions.QuestionsFor(target))
	_, err = s.plans.CreatePlan(ctx, &CreatePlanRequest{
		StudentID:              student.ID,
		Category:               string(target),
		Name:                   fmt.Sprintf("%s Intervention", target),
		Description:            fmt.Sprintf("Starter intervention plan for %s.", target),
		ReadingLevel:           string(student.CurrentReadingLevel()),
		Status:                 string(models.PlanStatusActive),
		PrescriptiveAnalysisID: analysisID,
		CategoryResultID:       resultID,
		Questions:              &questions,
	})
	return err
}
