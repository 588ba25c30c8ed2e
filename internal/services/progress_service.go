package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/intervention-service/internal/cache"
	"github.com/SAP-F-2025/intervention-service/internal/events"
	"github.com/SAP-F-2025/intervention-service/internal/metrics"
	"github.com/SAP-F-2025/intervention-service/internal/models"
	"github.com/SAP-F-2025/intervention-service/internal/repositories"
)

type progressService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	opLogger  *ServiceLogger
	cache     *cache.PlanCache
	publisher events.EventPublisher
}

func NewProgressService(repo repositories.Repository, logger *slog.Logger, planCache *cache.PlanCache, publisher events.EventPublisher) ProgressService {
	return &progressService{
		repo:      repo,
		logger:    logger,
		opLogger:  newOpLogger(logger, "progress"),
		cache:     planCache,
		publisher: publisher,
	}
}

func (s *progressService) loadPlan(ctx context.Context, planID uint) (*models.InterventionPlan, error) {
	if planID == 0 {
		return nil, validationFailed("intervention_plan_id", "intervention_plan_id is required", planID)
	}
	plan, err := s.repo.InterventionPlan().GetByID(ctx, planID)
	if err != nil {
		return nil, lookupErr("get plan", err, ErrPlanNotFound)
	}
	return plan, nil
}

func (s *progressService) Recompute(ctx context.Context, planID uint) (*models.InterventionProgress, error) {
	plan, err := s.loadPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	return s.RecomputePlan(ctx, plan)
}

// RecomputePlan derives percentComplete, percentCorrect and passedThreshold
// from the stored counters and completes the plan once every activity has a
// response. The derivation runs in the store against the current counters.
// Archived plans keep their status.
func (s *progressService) RecomputePlan(ctx context.Context, plan *models.InterventionPlan) (progress *models.InterventionProgress, err error) {
	if plan == nil {
		return nil, validationFailed("intervention_plan_id", "plan is required", nil)
	}
	op := s.opLogger.WithOperation(ctx, "recompute_progress", plan.StudentID)
	defer func() { op.LogResult(plan.ID, "intervention_progress", err) }()

	if _, err = s.EnsureProgressForPlan(ctx, plan); err != nil {
		return nil, err
	}

	if err := s.repo.InterventionProgress().Recalculate(ctx, plan.ID); err != nil {
		return nil, lookupErr("recalculate progress", err, ErrProgressNotFound)
	}
	progress, err = s.repo.InterventionProgress().GetByPlanID(ctx, plan.ID)
	if err != nil {
		return nil, lookupErr("get progress", err, ErrProgressNotFound)
	}

	if progress.IsComplete() && plan.Status != models.PlanStatusCompleted && !plan.IsArchived() {
		if err := s.completePlan(ctx, plan, progress); err != nil {
			return nil, err
		}
	}
	return progress, nil
}

func (s *progressService) completePlan(ctx context.Context, plan *models.InterventionPlan, progress *models.InterventionProgress) error {
	changed, err := s.repo.InterventionPlan().MarkCompleted(ctx, plan.ID)
	if err != nil {
		return storeErr("complete plan", err)
	}
	plan.Status = models.PlanStatusCompleted
	s.cache.InvalidatePlan(ctx, plan.ID)
	if !changed {
		// Completed concurrently, or archived since the plan was read.
		return nil
	}

	s.logger.Info("Intervention plan completed",
		"plan_id", plan.ID,
		"student_id", plan.StudentID,
		"percent_correct", progress.PercentCorrect,
		"passed_threshold", progress.PassedThreshold)
	metrics.PlanCompleted()
	publish(ctx, s.publisher, s.logger, events.NewPlanCompletedEvent(plan.StudentID, events.PlanCompletedEvent{
		PlanID:          plan.ID,
		Category:        string(plan.Category),
		PercentCorrect:  progress.PercentCorrect,
		PassedThreshold: progress.PassedThreshold,
		CompletedAt:     time.Now(),
	}))
	return nil
}

func (s *progressService) EnsureProgressExists(ctx context.Context, planID uint) (*models.InterventionProgress, error) {
	plan, err := s.loadPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	return s.EnsureProgressForPlan(ctx, plan)
}

// EnsureProgressForPlan returns the progress row of plan, creating a zeroed
// one sized to the plan when a partial failure left it missing.
func (s *progressService) EnsureProgressForPlan(ctx context.Context, plan *models.InterventionPlan) (*models.InterventionProgress, error) {
	if plan == nil {
		return nil, validationFailed("intervention_plan_id", "plan is required", nil)
	}
	progress, err := s.repo.InterventionProgress().GetByPlanID(ctx, plan.ID)
	if err == nil {
		return progress, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, storeErr("get progress", err)
	}

	s.logger.Warn("Progress missing for plan, recreating",
		"plan_id", plan.ID,
		"student_id", plan.StudentID,
		"total_activities", plan.TotalActivities())

	progress = models.NewProgressForPlan(plan)
	if err := s.repo.InterventionProgress().Create(ctx, progress); err != nil {
		if !repositories.IsDuplicateError(err) {
			return nil, storeErr("create progress", err)
		}
		// Another caller healed it first.
		existing, getErr := s.repo.InterventionProgress().GetByPlanID(ctx, plan.ID)
		if getErr != nil {
			return nil, lookupErr("get progress", getErr, ErrProgressNotFound)
		}
		return existing, nil
	}
	return progress, nil
}

func (s *progressService) GetProgress(ctx context.Context, planID uint) (*models.InterventionProgress, error) {
	return s.EnsureProgressExists(ctx, planID)
}
