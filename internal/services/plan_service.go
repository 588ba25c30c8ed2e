package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/intervention-service/internal/cache"
	"github.com/SAP-F-2025/intervention-service/internal/contentbank"
	"github.com/SAP-F-2025/intervention-service/internal/events"
	"github.com/SAP-F-2025/intervention-service/internal/metrics"
	"github.com/SAP-F-2025/intervention-service/internal/models"
	"github.com/SAP-F-2025/intervention-service/internal/repositories"
	"github.com/SAP-F-2025/intervention-service/internal/validator"
)

type planService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	opLogger  *ServiceLogger
	validator *validator.Validator
	bank      contentbank.Bank
	progress  ProgressService
	cache     *cache.PlanCache
	publisher events.EventPublisher
	batchSize int
}

func NewPlanService(
	repo repositories.Repository,
	logger *slog.Logger,
	validator *validator.Validator,
	bank contentbank.Bank,
	progress ProgressService,
	planCache *cache.PlanCache,
	publisher events.EventPublisher,
	batchSize int,
) PlanService {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &planService{
		repo:      repo,
		logger:    logger,
		opLogger:  newOpLogger(logger, "plan"),
		validator: validator,
		bank:      bank,
		progress:  progress,
		cache:     planCache,
		publisher: publisher,
		batchSize: batchSize,
	}
}

// ===== CORE PLAN LIFECYCLE =====

// CreatePlan archives any non-archived plan of the same student and category,
// then inserts the new plan together with its zeroed progress row. The student
// row lock serializes concurrent creates for one student.
func (s *planService) CreatePlan(ctx context.Context, req *CreatePlanRequest) (plan *models.InterventionPlan, err error) {
	if req == nil {
		return nil, validationFailed("request", "request body is required", nil)
	}
	op := s.opLogger.WithOperation(ctx, "create_plan", req.StudentID)
	defer func() { op.LogResult(planID(plan), "intervention_plan", err) }()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	s.logger.Info("Creating intervention plan", "student_id", req.StudentID, "category", req.Category)

	category, _ := models.NormalizeCategory(req.Category)
	questions, err := buildQuestions(*req.Questions)
	if err != nil {
		return nil, err
	}
	fillChoiceFeedback(s.bank, questions)

	threshold := models.DefaultPassThreshold
	if req.PassThreshold != nil {
		threshold = *req.PassThreshold
	}
	status := models.PlanStatusActive
	if req.Status != "" {
		status = models.PlanStatus(req.Status)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = fmt.Sprintf("%s Intervention", category)
	}

	plan = &models.InterventionPlan{
		StudentID:              req.StudentID,
		PrescriptiveAnalysisID: req.PrescriptiveAnalysisID,
		CategoryResultID:       req.CategoryResultID,
		Name:                   name,
		Category:               category,
		Description:            req.Description,
		ReadingLevel:           models.ReadingLevel(req.ReadingLevel),
		PassThreshold:          threshold,
		Questions:              questions,
		Status:                 status,
	}

	var superseded []uint
	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		student, err := tx.Student().LockByID(ctx, req.StudentID)
		if err != nil {
			return lookupErr("lock student", err, ErrStudentNotFound)
		}
		if plan.ReadingLevel == "" {
			plan.ReadingLevel = student.CurrentReadingLevel()
		}

		superseded, err = tx.InterventionPlan().ArchiveNonArchived(ctx, req.StudentID, category, 0)
		if err != nil {
			return storeErr("archive previous plans", err)
		}
		if err := tx.InterventionPlan().Create(ctx, plan); err != nil {
			return storeErr("create plan", err)
		}
		if err := tx.InterventionProgress().Create(ctx, models.NewProgressForPlan(plan)); err != nil {
			return storeErr("create progress", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterSupersede(ctx, plan, superseded)
	publish(ctx, s.publisher, s.logger, events.NewPlanCreatedEvent(plan.StudentID, events.PlanCreatedEvent{
		PlanID:            plan.ID,
		Category:          string(plan.Category),
		Status:            string(plan.Status),
		TotalActivities:   plan.TotalActivities(),
		SupersededPlanIDs: superseded,
	}))

	s.logger.Info("Intervention plan created",
		"plan_id", plan.ID,
		"student_id", plan.StudentID,
		"category", plan.Category,
		"superseded", len(superseded))
	return plan, nil
}

func (s *planService) afterSupersede(ctx context.Context, plan *models.InterventionPlan, superseded []uint) {
	if len(superseded) == 0 {
		return
	}
	s.cache.InvalidatePlan(ctx, superseded...)
	metrics.PlansSuperseded(len(superseded))
	for _, id := range superseded {
		publish(ctx, s.publisher, s.logger, events.NewPlanSupersededEvent(plan.StudentID, events.PlanSupersededEvent{
			PlanID:       id,
			Category:     string(plan.Category),
			SupersededBy: plan.ID,
		}))
	}
}

// UpdatePlan applies a patch. A new question list or threshold re-syncs the
// progress totals and recomputes progress.
func (s *planService) UpdatePlan(ctx context.Context, id uint, req *UpdatePlanRequest) (plan *models.InterventionPlan, err error) {
	if req == nil {
		return nil, validationFailed("request", "request body is required", nil)
	}
	op := s.opLogger.WithOperation(ctx, "update_plan", 0)
	defer func() { op.LogResult(id, "intervention_plan", err) }()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	plan, err = s.GetPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	op.ForStudent(plan.StudentID)

	resync := false
	if req.Name != nil {
		plan.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		plan.Description = *req.Description
	}
	if req.ReadingLevel != nil {
		plan.ReadingLevel = models.ReadingLevel(*req.ReadingLevel)
	}
	if req.PrescriptiveAnalysisID != nil {
		plan.PrescriptiveAnalysisID = req.PrescriptiveAnalysisID
	}
	if req.CategoryResultID != nil {
		plan.CategoryResultID = req.CategoryResultID
	}
	if req.PassThreshold != nil && *req.PassThreshold != plan.PassThreshold {
		plan.PassThreshold = *req.PassThreshold
		resync = true
	}
	if req.Questions != nil {
		questions, err := buildQuestions(*req.Questions)
		if err != nil {
			return nil, err
		}
		fillChoiceFeedback(s.bank, questions)
		plan.Questions = questions
		resync = true
	}

	if err := s.repo.InterventionPlan().Update(ctx, plan); err != nil {
		return nil, lookupErr("update plan", err, ErrPlanNotFound)
	}
	s.cache.InvalidatePlan(ctx, plan.ID)

	if resync {
		err := s.repo.InterventionProgress().SetTotalActivities(ctx, plan.ID, plan.TotalActivities())
		if err != nil && !repositories.IsNotFoundError(err) {
			return nil, storeErr("sync progress totals", err)
		}
		// A missing row is recreated with the new total.
		if _, err := s.progress.RecomputePlan(ctx, plan); err != nil {
			return nil, err
		}
	}

	s.logger.Info("Intervention plan updated", "plan_id", plan.ID, "progress_resynced", resync)
	return plan, nil
}

// DeletePlan removes the plan with its progress and responses.
func (s *planService) DeletePlan(ctx context.Context, id uint) (err error) {
	op := s.opLogger.WithOperation(ctx, "delete_plan", 0)
	defer func() { op.LogResult(id, "intervention_plan", err) }()

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		plan, err := tx.InterventionPlan().GetByID(ctx, id)
		if err != nil {
			return lookupErr("get plan", err, ErrPlanNotFound)
		}
		op.ForStudent(plan.StudentID)
		if err := tx.InterventionResponse().DeleteByPlanID(ctx, id); err != nil {
			return storeErr("delete responses", err)
		}
		if err := tx.InterventionProgress().DeleteByPlanID(ctx, id); err != nil {
			return storeErr("delete progress", err)
		}
		if err := tx.InterventionPlan().Delete(ctx, id); err != nil {
			return lookupErr("delete plan", err, ErrPlanNotFound)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.cache.InvalidatePlan(ctx, id)
	s.logger.Info("Intervention plan deleted", "plan_id", id)
	return nil
}

// Activate publishes a draft. Active and completed plans are left as they are.
// An archived plan is restored only when its pair has no other live plan.
func (s *planService) Activate(ctx context.Context, id uint) (plan *models.InterventionPlan, err error) {
	op := s.opLogger.WithOperation(ctx, "activate_plan", 0)
	defer func() { op.LogResult(id, "intervention_plan", err) }()

	plan, err = s.GetPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	op.ForStudent(plan.StudentID)

	switch plan.Status {
	case models.PlanStatusActive, models.PlanStatusCompleted:
		return plan, nil
	case models.PlanStatusDraft:
		if err := s.repo.InterventionPlan().UpdateStatus(ctx, id, models.PlanStatusActive); err != nil {
			return nil, lookupErr("activate plan", err, ErrPlanNotFound)
		}
	case models.PlanStatusArchived:
		err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
			if _, err := tx.Student().LockByID(ctx, plan.StudentID); err != nil {
				return lookupErr("lock student", err, ErrStudentNotFound)
			}
			live, err := tx.InterventionPlan().ListNonArchived(ctx, plan.StudentID, plan.Category)
			if err != nil {
				return storeErr("list live plans", err)
			}
			if len(live) > 0 {
				return fmt.Errorf("plan %d conflicts with plan %d: %w", id, live[0].ID, ErrActivePlanExists)
			}
			return lookupErr("activate plan", tx.InterventionPlan().UpdateStatus(ctx, id, models.PlanStatusActive), ErrPlanNotFound)
		})
		if err != nil {
			return nil, err
		}
	}

	plan.Status = models.PlanStatusActive
	s.cache.InvalidatePlan(ctx, id)
	s.logger.Info("Intervention plan activated", "plan_id", id, "student_id", plan.StudentID)
	return plan, nil
}

// ===== MAINTENANCE =====

// ReconcileLinks backfills missing analysis and category result references
// and missing choice feedback on every plan. One plan's failure does not stop
// the pass; failures are joined into the returned error.
func (s *planService) ReconcileLinks(ctx context.Context) (report *LinkReport, err error) {
	op := s.opLogger.WithOperation(ctx, "reconcile_links", 0)
	defer func() { op.LogResult(0, "intervention_plan", err) }()

	report = &LinkReport{}
	analysesByStudent := map[uint][]*models.PrescriptiveAnalysis{}
	latestByStudent := map[uint]*models.CategoryResult{}

	var (
		afterID uint
		errs    []error
	)
	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		plans, err := s.repo.InterventionPlan().ListAfter(ctx, afterID, s.batchSize)
		if err != nil {
			return report, storeErr("list plans", err)
		}
		for _, plan := range plans {
			afterID = plan.ID
			report.PlansScanned++
			if err := s.reconcilePlan(ctx, plan, report, analysesByStudent, latestByStudent); err != nil {
				errs = append(errs, fmt.Errorf("plan %d: %w", plan.ID, err))
			}
		}
		if len(plans) < s.batchSize {
			break
		}
	}

	s.logger.Info("Plan links reconciled",
		"plans_scanned", report.PlansScanned,
		"links_backfilled", report.LinksBackfilled,
		"feedback_filled", report.FeedbackFilled,
		"failures", len(errs))
	return report, errors.Join(errs...)
}

func (s *planService) reconcilePlan(
	ctx context.Context,
	plan *models.InterventionPlan,
	report *LinkReport,
	analysesByStudent map[uint][]*models.PrescriptiveAnalysis,
	latestByStudent map[uint]*models.CategoryResult,
) error {
	var analysisID, resultID *uint

	if plan.PrescriptiveAnalysisID == nil {
		analyses, ok := analysesByStudent[plan.StudentID]
		if !ok {
			list, err := s.repo.PrescriptiveAnalysis().ListByStudent(ctx, plan.StudentID)
			if err != nil {
				return storeErr("list analyses", err)
			}
			analyses = list
			analysesByStudent[plan.StudentID] = list
		}
		if a := findAnalysis(analyses, plan.Category); a != nil {
			id := a.ID
			analysisID = &id
		}
	}

	if plan.CategoryResultID == nil {
		latest, ok := latestByStudent[plan.StudentID]
		if !ok {
			result, err := s.repo.CategoryResult().GetLatestByStudent(ctx, plan.StudentID)
			if err != nil {
				return storeErr("get latest category result", err)
			}
			latest = result
			latestByStudent[plan.StudentID] = result
		}
		if latest != nil {
			id := latest.ID
			resultID = &id
		}
	}

	questions := cloneQuestions(plan.Questions)
	filled := fillChoiceFeedback(s.bank, questions)

	switch {
	case filled > 0:
		if analysisID != nil {
			plan.PrescriptiveAnalysisID = analysisID
		}
		if resultID != nil {
			plan.CategoryResultID = resultID
		}
		plan.Questions = questions
		if err := s.repo.InterventionPlan().Update(ctx, plan); err != nil {
			return lookupErr("update plan", err, ErrPlanNotFound)
		}
	case analysisID != nil || resultID != nil:
		if err := s.repo.InterventionPlan().UpdateLinks(ctx, plan.ID, analysisID, resultID); err != nil {
			return lookupErr("update plan links", err, ErrPlanNotFound)
		}
	default:
		return nil
	}

	if analysisID != nil || resultID != nil {
		report.LinksBackfilled++
	}
	report.FeedbackFilled += filled
	s.cache.InvalidatePlan(ctx, plan.ID)
	return nil
}

// ===== QUERIES =====

func (s *planService) GetPlan(ctx context.Context, id uint) (*models.InterventionPlan, error) {
	if id == 0 {
		return nil, validationFailed("id", "plan id is required", id)
	}
	plan, err := s.repo.InterventionPlan().GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr("get plan", err, ErrPlanNotFound)
	}
	return plan, nil
}

// GetCurrentPlan returns the non-archived plan of the pair.
func (s *planService) GetCurrentPlan(ctx context.Context, studentID uint, category string) (*models.InterventionPlan, error) {
	c, ok := models.NormalizeCategory(category)
	if !ok {
		return nil, validationFailed("category", "unknown category", category)
	}
	plans, err := s.repo.InterventionPlan().ListNonArchived(ctx, studentID, c)
	if err != nil {
		return nil, storeErr("list live plans", err)
	}
	if len(plans) == 0 {
		return nil, ErrPlanNotFound
	}
	return plans[0], nil
}

func (s *planService) ListStudentPlans(ctx context.Context, studentID uint, includeArchived bool) ([]*models.InterventionPlan, error) {
	exists, err := s.repo.Student().ExistsByID(ctx, studentID)
	if err != nil {
		return nil, storeErr("check student", err)
	}
	if !exists {
		return nil, ErrStudentNotFound
	}
	plans, err := s.repo.InterventionPlan().ListByStudent(ctx, studentID, repositories.PlanFilters{
		IncludeArchived: includeArchived,
	})
	if err != nil {
		return nil, storeErr("list plans", err)
	}
	return plans, nil
}

// ===== HELPERS =====

func planID(plan *models.InterventionPlan) uint {
	if plan == nil {
		return 0
	}
	return plan.ID
}

// findAnalysis matches an analysis to category through name normalization.
func findAnalysis(analyses []*models.PrescriptiveAnalysis, category models.Category) *models.PrescriptiveAnalysis {
	for _, a := range analyses {
		if c, ok := a.Category(); ok && c == category {
			return a
		}
	}
	return nil
}
