package services

import (
	"context"
	"log/slog"

	"github.com/SAP-F-2025/intervention-service/internal/cache"
	"github.com/SAP-F-2025/intervention-service/internal/contentbank"
	"github.com/SAP-F-2025/intervention-service/internal/events"
	"github.com/SAP-F-2025/intervention-service/internal/repositories"
	"github.com/SAP-F-2025/intervention-service/internal/sourcematerial"
	"github.com/SAP-F-2025/intervention-service/internal/validator"
)

const serviceName = "intervention-service"

// Dependencies are shared by every service. Only Repo is required.
type Dependencies struct {
	Repo      repositories.Repository
	Logger    *slog.Logger
	Validator *validator.Validator
	Bank      contentbank.Bank
	PlanCache *cache.PlanCache
	Publisher events.EventPublisher
	Questions QuestionSource

	// BatchSize bounds the pages read by maintenance passes.
	BatchSize   int
	EnableDebug bool
}

// Services is the assembled engine.
type Services struct {
	Plans           PlanService
	Progress        ProgressService
	Responses       ResponseService
	Analyses        AnalysisService
	CategoryResults CategoryResultService
	Bootstrap       BootstrapService
}

func New(deps Dependencies) *Services {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}
	if deps.Bank == nil {
		deps.Bank = contentbank.Default()
	}
	if deps.Questions == nil {
		deps.Questions = sourcematerial.Empty()
	}
	if deps.BatchSize <= 0 {
		deps.BatchSize = defaultBatchSize
	}

	progress := NewProgressService(deps.Repo, deps.Logger, deps.PlanCache, deps.Publisher)
	plans := NewPlanService(deps.Repo, deps.Logger, deps.Validator, deps.Bank, progress, deps.PlanCache, deps.Publisher, deps.BatchSize)
	analyses := NewAnalysisService(deps.Repo, deps.Logger, deps.Bank, deps.Publisher)

	return &Services{
		Plans:           plans,
		Progress:        progress,
		Responses:       NewResponseService(deps.Repo, deps.Logger, deps.Validator, deps.Bank, progress, deps.PlanCache),
		Analyses:        analyses,
		CategoryResults: NewCategoryResultService(deps.Repo, deps.Logger, deps.Validator, analyses, deps.Publisher),
		Bootstrap:       NewBootstrapService(deps.Repo, deps.Logger, plans, analyses, deps.Questions, deps.PlanCache, deps.BatchSize),
	}
}

const defaultBatchSize = 100

func newOpLogger(logger *slog.Logger, component string) *ServiceLogger {
	return NewServiceLogger(logger, LogConfig{Service: serviceName, Component: component})
}

// publish sends event and logs failures. Events are notifications; a broker
// outage never fails the operation that produced them.
func publish(ctx context.Context, publisher events.EventPublisher, logger *slog.Logger, event *events.Event) {
	if publisher == nil || event == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Warn("Failed to publish event",
			"event_type", event.Type,
			"event_id", event.ID,
			"student_id", event.StudentID,
			"error", err)
	}
}
