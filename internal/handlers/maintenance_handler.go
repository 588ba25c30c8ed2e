package handlers

import (
	"context"
	"net/http"

	"github.com/SAP-F-2025/intervention-service/internal/services"
	"github.com/SAP-F-2025/intervention-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// Pinger reports whether the record store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type MaintenanceHandler struct {
	BaseHandler
	bootstrapService services.BootstrapService
	store            Pinger
}

func NewMaintenanceHandler(bootstrapService services.BootstrapService, store Pinger, logger utils.Logger) *MaintenanceHandler {
	return &MaintenanceHandler{
		BaseHandler:      NewBaseHandler(logger),
		bootstrapService: bootstrapService,
		store:            store,
	}
}

// ReconcileStudents runs the bootstrap reconciliation over every graded student.
// Per-student failures are reported in the body, not as an error status.
func (h *MaintenanceHandler) ReconcileStudents(c *gin.Context) {
	h.LogRequest(c, "Reconciling student records")

	report, err := h.bootstrapService.ReconcileAllStudents(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// HealthCheck answers 503 when the record store cannot be reached
func (h *MaintenanceHandler) HealthCheck(c *gin.Context) {
	if h.store != nil {
		if err := h.store.Ping(c.Request.Context()); err != nil {
			h.requestLogger(c).LogError(err, "Health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"service": "intervention-service",
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "intervention-service",
	})
}
