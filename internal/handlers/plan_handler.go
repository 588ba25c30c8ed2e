package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/intervention-service/internal/services"
	"github.com/SAP-F-2025/intervention-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type PlanHandler struct {
	BaseHandler
	planService     services.PlanService
	progressService services.ProgressService
	responseService services.ResponseService
}

func NewPlanHandler(
	planService services.PlanService,
	progressService services.ProgressService,
	responseService services.ResponseService,
	logger utils.Logger,
) *PlanHandler {
	return &PlanHandler{
		BaseHandler:     NewBaseHandler(logger),
		planService:     planService,
		progressService: progressService,
		responseService: responseService,
	}
}

// ===== PLAN LIFECYCLE =====

// CreatePlan creates a plan and supersedes the student's live plan in the same category
// @Summary Create intervention plan
// @Tags plans
// @Accept json
// @Produce json
// @Param plan body services.CreatePlanRequest true "Plan data"
// @Success 201 {object} models.InterventionPlan
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /plans [post]
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req services.CreatePlanRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Creating intervention plan", "student_id", req.StudentID, "category", req.Category)

	plan, err := h.planService.CreatePlan(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, plan)
}

// GetPlan retrieves a plan by ID
// @Summary Get intervention plan
// @Tags plans
// @Produce json
// @Param id path uint true "Plan ID"
// @Success 200 {object} models.InterventionPlan
// @Failure 404 {object} ErrorResponse
// @Router /plans/{id} [get]
func (h *PlanHandler) GetPlan(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	plan, err := h.planService.GetPlan(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

// UpdatePlan patches a plan and resynchronizes its progress
// @Summary Update intervention plan
// @Tags plans
// @Accept json
// @Produce json
// @Param id path uint true "Plan ID"
// @Param plan body services.UpdatePlanRequest true "Plan changes"
// @Success 200 {object} models.InterventionPlan
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /plans/{id} [put]
func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdatePlanRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Updating intervention plan", "plan_id", id)

	plan, err := h.planService.UpdatePlan(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

// DeletePlan removes a plan together with its progress and responses
// @Summary Delete intervention plan
// @Tags plans
// @Param id path uint true "Plan ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /plans/{id} [delete]
func (h *PlanHandler) DeletePlan(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting intervention plan", "plan_id", id)

	if err := h.planService.DeletePlan(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ActivatePlan moves a draft plan to active. Archived plans answer 409.
func (h *PlanHandler) ActivatePlan(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Activating intervention plan", "plan_id", id)

	plan, err := h.planService.Activate(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

// ===== PROGRESS =====

// GetProgress returns the progress row of a plan, creating it when missing
func (h *PlanHandler) GetProgress(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	progress, err := h.progressService.EnsureProgressExists(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

func (h *PlanHandler) RecomputeProgress(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Recomputing intervention progress", "plan_id", id)

	progress, err := h.progressService.Recompute(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

func (h *PlanHandler) ListPlanResponses(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	responses, err := h.responseService.ListResponses(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, responses)
}

// ===== STUDENT QUERIES =====

// ListStudentPlans lists a student's plans, newest first
// @Summary List student plans
// @Tags plans
// @Produce json
// @Param id path uint true "Student ID"
// @Param include_archived query bool false "Include archived plans"
// @Success 200 {array} models.InterventionPlan
// @Router /students/{id}/plans [get]
func (h *PlanHandler) ListStudentPlans(c *gin.Context) {
	studentID := h.parseIDParam(c, "id")
	if studentID == 0 {
		return
	}

	plans, err := h.planService.ListStudentPlans(c.Request.Context(), studentID, parseBoolQuery(c, "include_archived"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, plans)
}

// GetCurrentPlan returns the live plan of a student in one category
func (h *PlanHandler) GetCurrentPlan(c *gin.Context) {
	studentID := h.parseIDParam(c, "id")
	if studentID == 0 {
		return
	}

	plan, err := h.planService.GetCurrentPlan(c.Request.Context(), studentID, c.Query("category"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

// ===== MAINTENANCE =====

// ReconcileLinks backfills analysis and result links on existing plans
func (h *PlanHandler) ReconcileLinks(c *gin.Context) {
	h.LogRequest(c, "Reconciling plan links")

	report, err := h.planService.ReconcileLinks(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
