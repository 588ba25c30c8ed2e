package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/intervention-service/internal/cache"
	"github.com/SAP-F-2025/intervention-service/internal/contentbank"
	"github.com/SAP-F-2025/intervention-service/internal/metrics"
	"github.com/SAP-F-2025/intervention-service/internal/models"
	"github.com/SAP-F-2025/intervention-service/internal/repositories"
	"github.com/SAP-F-2025/intervention-service/internal/validator"
)

type responseService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	opLogger  *ServiceLogger
	validator *validator.Validator
	bank      contentbank.Bank
	progress  ProgressService
	cache     *cache.PlanCache
	now       func() time.Time
}

func NewResponseService(
	repo repositories.Repository,
	logger *slog.Logger,
	validator *validator.Validator,
	bank contentbank.Bank,
	progress ProgressService,
	planCache *cache.PlanCache,
) ResponseService {
	return &responseService{
		repo:      repo,
		logger:    logger,
		opLogger:  newOpLogger(logger, "response"),
		validator: validator,
		bank:      bank,
		progress:  progress,
		cache:     planCache,
		now:       time.Now,
	}
}

// ===== RESPONSE SAGA =====

// recording carries the state shared by the steps of one RecordResponse call.
type recording struct {
	req       *RecordResponseRequest
	plan      *models.InterventionPlan
	isCorrect bool
	feedback  *string
	response  *models.InterventionResponse
	progress  *models.InterventionProgress
}

type recordStep struct {
	name string
	run  func(ctx context.Context, r *recording) error
}

// steps lists the saga in order. Each step is its own store write; a failure
// stops the saga and earlier writes stay in place.
func (s *responseService) steps() []recordStep {
	return []recordStep{
		{"load_plan", s.loadPlan},
		{"resolve_answer", s.resolveAnswer},
		{"ensure_progress", s.ensureProgress},
		{"append_response", s.appendResponse},
		{"increment_counters", s.incrementCounters},
		{"recompute_progress", s.recompute},
	}
}

// RecordResponse appends one answer and advances the plan's progress.
func (s *responseService) RecordResponse(ctx context.Context, req *RecordResponseRequest) (result *RecordResponseResult, err error) {
	if req == nil {
		return nil, validationFailed("request", "request body is required", nil)
	}
	op := s.opLogger.WithOperation(ctx, "record_response", req.StudentID)
	defer func() {
		var id uint
		if result != nil && result.Response != nil {
			id = result.Response.ID
		}
		op.LogResult(id, "intervention_response", err)
	}()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	r := &recording{req: req}
	for _, step := range s.steps() {
		if err := step.run(ctx, r); err != nil {
			s.logger.Warn("Response saga stopped",
				"step", step.name,
				"student_id", req.StudentID,
				"plan_id", req.InterventionPlanID,
				"question_id", req.QuestionID,
				"error", err)
			return nil, fmt.Errorf("%s: %w", step.name, err)
		}
	}

	metrics.ResponseRecorded(r.isCorrect)
	return &RecordResponseResult{
		Response:   r.response,
		Progress:   r.progress,
		PlanStatus: r.plan.Status,
	}, nil
}

func (s *responseService) loadPlan(ctx context.Context, r *recording) error {
	plan := s.cache.GetPlan(ctx, r.req.InterventionPlanID)
	if plan == nil {
		stored, err := s.repo.InterventionPlan().GetByID(ctx, r.req.InterventionPlanID)
		if err != nil {
			return lookupErr("get plan", err, ErrPlanNotFound)
		}
		plan = stored
		s.cache.SetPlan(ctx, plan)
	}

	if plan.StudentID != r.req.StudentID {
		return validationFailed("student_id", "plan belongs to a different student", r.req.StudentID)
	}
	if plan.IsArchived() {
		return ErrPlanArchived
	}
	r.plan = plan
	return nil
}

// resolveAnswer copies the matching choice's feedback and derives correctness
// when the caller left it out. Feedback lookup is best-effort; plans written
// before feedback synthesis get the default text.
func (s *responseService) resolveAnswer(_ context.Context, r *recording) error {
	var choice *models.Choice
	question, ok := r.plan.FindQuestion(r.req.QuestionID)
	if ok {
		if c, found := question.FindChoice(r.req.SelectedChoice); found {
			choice = c
		}
	}

	if choice != nil {
		feedback := choice.Description
		if feedback == "" {
			feedback = s.bank.ChoiceFeedback(models.ParseQuestionType(string(question.QuestionType)), choice.OptionText, choice.IsCorrect)
		}
		r.feedback = &feedback
	}

	switch {
	case r.req.IsCorrect != nil:
		r.isCorrect = *r.req.IsCorrect
	case choice != nil:
		r.isCorrect = choice.IsCorrect
	default:
		return validationFailed("is_correct", "is_correct is required when the choice is not part of the plan", r.req.SelectedChoice)
	}
	return nil
}

func (s *responseService) ensureProgress(ctx context.Context, r *recording) error {
	_, err := s.progress.EnsureProgressForPlan(ctx, r.plan)
	return err
}

func (s *responseService) appendResponse(ctx context.Context, r *recording) error {
	response := &models.InterventionResponse{
		StudentID:           r.req.StudentID,
		InterventionPlanID:  r.plan.ID,
		QuestionID:          r.req.QuestionID,
		SelectedChoice:      r.req.SelectedChoice,
		IsCorrect:           r.isCorrect,
		ResponseTime:        r.req.ResponseTime,
		FeedbackDescription: r.feedback,
	}
	if err := s.repo.InterventionResponse().Create(ctx, response); err != nil {
		return storeErr("append response", err)
	}
	r.response = response
	return nil
}

// incrementCounters is a single atomic UPDATE so concurrent responses on one
// plan cannot lose a count.
func (s *responseService) incrementCounters(ctx context.Context, r *recording) error {
	err := s.repo.InterventionProgress().IncrementCounters(ctx, r.plan.ID, r.isCorrect, s.now())
	if err != nil {
		return lookupErr("increment counters", err, ErrProgressNotFound)
	}
	return nil
}

func (s *responseService) recompute(ctx context.Context, r *recording) error {
	progress, err := s.progress.RecomputePlan(ctx, r.plan)
	if err != nil {
		return err
	}
	r.progress = progress
	return nil
}

// ===== QUERIES =====

func (s *responseService) ListResponses(ctx context.Context, planID uint) ([]*models.InterventionResponse, error) {
	if _, err := s.repo.InterventionPlan().GetByID(ctx, planID); err != nil {
		return nil, lookupErr("get plan", err, ErrPlanNotFound)
	}
	responses, err := s.repo.InterventionResponse().ListByPlan(ctx, planID, repositories.ResponseFilters{})
	if err != nil {
		return nil, storeErr("list responses", err)
	}
	return responses, nil
}
