// Package app assembles the intervention engine from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/SAP-F-2025/intervention-service/internal/cache"
	"github.com/SAP-F-2025/intervention-service/internal/config"
	"github.com/SAP-F-2025/intervention-service/internal/events"
	"github.com/SAP-F-2025/intervention-service/internal/handlers"
	"github.com/SAP-F-2025/intervention-service/internal/repositories"
	"github.com/SAP-F-2025/intervention-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/intervention-service/internal/services"
	"github.com/SAP-F-2025/intervention-service/internal/sourcematerial"
	"github.com/SAP-F-2025/intervention-service/internal/utils"
	"github.com/SAP-F-2025/intervention-service/pkg"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// App owns every long-lived resource of the process.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Repo     repositories.Repository
	Services *services.Services

	publisher events.EventPublisher
	redis     *redis.Client
	zap       *zap.Logger
}

// New connects to the record store, the cache and the broker and builds the
// services. Close releases whatever New opened, also after a partial failure.
func New(ctx context.Context, cfg *config.Config) (a *App, err error) {
	logger := utils.NewLogger(cfg.Environment, os.Stdout)
	a = &App{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			_ = a.Close()
			a = nil
		}
	}()

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return a, err
	}
	a.Repo = postgres.NewRepository(db)
	if err := postgres.Migrate(db); err != nil {
		return a, err
	}

	planCache, err := a.initCache(ctx)
	if err != nil {
		return a, err
	}

	a.publisher, err = cfg.Events.CreateEventPublisher(logger)
	if err != nil {
		return a, fmt.Errorf("failed to create event publisher: %w", err)
	}

	questions := sourcematerial.Empty()
	if cfg.SourceMaterialPath != "" {
		questions, err = sourcematerial.LoadFile(cfg.SourceMaterialPath)
		if err != nil {
			return a, fmt.Errorf("failed to load source material: %w", err)
		}
		logger.Info("Source material loaded",
			"path", cfg.SourceMaterialPath,
			"questions", questions.Count())
	}

	a.Services = services.New(services.Dependencies{
		Repo:        a.Repo,
		Logger:      logger,
		PlanCache:   planCache,
		Publisher:   a.publisher,
		Questions:   questions,
		BatchSize:   cfg.BootstrapBatchSize,
		EnableDebug: !cfg.IsProduction(),
	})
	return a, nil
}

func (a *App) initCache(ctx context.Context) (*cache.PlanCache, error) {
	client, err := pkg.NewRedisClient(ctx, a.Config)
	if err != nil {
		return nil, err
	}
	if client == nil {
		a.Logger.Info("REDIS_URL not set, plan cache disabled")
		return nil, nil
	}
	a.redis = client

	if a.Config.IsProduction() {
		a.zap, err = zap.NewProduction()
	} else {
		a.zap, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create cache logger: %w", err)
	}
	return cache.NewPlanCache(cache.NewRedisCache(client, a.zap), a.Config.PlanCacheTTL), nil
}

// Router builds the HTTP surface over the services.
func (a *App) Router() *gin.Engine {
	if a.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	return handlers.NewHandlerManager(a.Services, a.Repo, utils.NewSlogLogger(a.Logger)).NewRouter()
}

// Consumer subscribes the category result recorder to the result topic.
func (a *App) Consumer() (*events.CategoryResultConsumer, error) {
	subscriber, err := a.Config.Events.CreateCategoryResultSubscriber(a.Logger)
	if err != nil {
		return nil, err
	}
	return events.NewCategoryResultConsumer(events.ConsumerConfig{
		Subscriber:  subscriber,
		Topic:       a.Config.Events.CategoryResultTopic,
		Recorder:    a.Services.CategoryResults,
		IsPermanent: services.IsPermanent,
		MaxRetries:  a.Config.Events.ConsumerMaxRetries,
		Logger:      a.Logger,
	})
}

// Serve runs the HTTP server and, when events are enabled, the category
// result consumer until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	server := &http.Server{
		Addr:              ":" + a.Config.Port,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)

	var consumer *events.CategoryResultConsumer
	if a.Config.Events.Enabled {
		var err error
		consumer, err = a.Consumer()
		if err != nil {
			return fmt.Errorf("failed to create category result consumer: %w", err)
		}
		go func() {
			if err := consumer.Run(ctx); err != nil {
				errCh <- fmt.Errorf("category result consumer stopped: %w", err)
			}
		}()
	}

	go func() {
		a.Logger.Info("HTTP server listening", "port", a.Config.Port, "environment", a.Config.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server failed: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.Logger.Info("Shutting down")
	case runErr = <-errCh:
		a.Logger.Error("Server stopped unexpectedly", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("http shutdown: %w", err))
	}
	if consumer != nil {
		if err := consumer.Close(); err != nil {
			runErr = errors.Join(runErr, fmt.Errorf("consumer close: %w", err))
		}
	}
	return runErr
}

// Close releases the publisher, the cache and the record store.
func (a *App) Close() error {
	var errs []error
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publisher: %w", err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if a.zap != nil {
		_ = a.zap.Sync()
	}
	if a.Repo != nil {
		if err := a.Repo.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}
