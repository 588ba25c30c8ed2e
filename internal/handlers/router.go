package handlers

import (
	"github.com/SAP-F-2025/intervention-service/internal/metrics"
	"github.com/SAP-F-2025/intervention-service/internal/services"
	"github.com/SAP-F-2025/intervention-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	planHandler        *PlanHandler
	responseHandler    *ResponseHandler
	analysisHandler    *AnalysisHandler
	maintenanceHandler *MaintenanceHandler
	logger             utils.Logger
}

func NewHandlerManager(svc *services.Services, store Pinger, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		planHandler:        NewPlanHandler(svc.Plans, svc.Progress, svc.Responses, logger),
		responseHandler:    NewResponseHandler(svc.Responses, logger),
		analysisHandler:    NewAnalysisHandler(svc.Analyses, svc.CategoryResults, logger),
		maintenanceHandler: NewMaintenanceHandler(svc.Bootstrap, store, logger),
		logger:             logger,
	}
}

// NewRouter builds a gin engine with the request middleware and every route.
func (hm *HandlerManager) NewRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), utils.RequestID(), utils.LoggerMiddleware(hm.logger))
	hm.SetupRoutes(router)
	return router
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.maintenanceHandler.HealthCheck)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Plan routes
		plans := v1.Group("/plans")
		{
			plans.POST("", hm.planHandler.CreatePlan)
			plans.GET("/:id", hm.planHandler.GetPlan)
			plans.PUT("/:id", hm.planHandler.UpdatePlan)
			plans.DELETE("/:id", hm.planHandler.DeletePlan)
			plans.POST("/:id/activate", hm.planHandler.ActivatePlan)

			// Progress and responses of one plan
			plans.GET("/:id/progress", hm.planHandler.GetProgress)
			plans.POST("/:id/progress/recompute", hm.planHandler.RecomputeProgress)
			plans.GET("/:id/responses", hm.planHandler.ListPlanResponses)
		}

		v1.POST("/responses", hm.responseHandler.RecordResponse)

		// Category result routes
		results := v1.Group("/category-results")
		{
			results.POST("", hm.analysisHandler.RecordCategoryResult)
			results.GET("/:id", hm.analysisHandler.GetCategoryResult)
			results.POST("/:id/reading-level-updated", hm.analysisHandler.MarkReadingLevelUpdated)
		}

		// Student-specific routes
		students := v1.Group("/students")
		{
			students.GET("/:id/plans", hm.planHandler.ListStudentPlans)
			students.GET("/:id/plans/current", hm.planHandler.GetCurrentPlan)
			students.GET("/:id/category-results", hm.analysisHandler.ListStudentResults)
			students.GET("/:id/analyses", hm.analysisHandler.ListAnalyses)
			students.POST("/:id/analyses/regenerate", hm.analysisHandler.RegenerateAnalyses)
		}

		maintenance := v1.Group("/maintenance")
		{
			maintenance.POST("/reconcile", hm.maintenanceHandler.ReconcileStudents)
			maintenance.POST("/links", hm.planHandler.ReconcileLinks)
		}
	}
}
