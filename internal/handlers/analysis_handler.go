package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/intervention-service/internal/services"
	"github.com/SAP-F-2025/intervention-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type AnalysisHandler struct {
	BaseHandler
	analysisService services.AnalysisService
	resultService   services.CategoryResultService
}

func NewAnalysisHandler(
	analysisService services.AnalysisService,
	resultService services.CategoryResultService,
	logger utils.Logger,
) *AnalysisHandler {
	return &AnalysisHandler{
		BaseHandler:     NewBaseHandler(logger),
		analysisService: analysisService,
		resultService:   resultService,
	}
}

// ===== CATEGORY RESULTS =====

// RecordCategoryResult stores a scored assessment and runs the analysis cascade
// @Summary Record category result
// @Tags category-results
// @Accept json
// @Produce json
// @Param result body services.RecordCategoryResultRequest true "Category scores"
// @Success 201 {object} services.RecordCategoryResultResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /category-results [post]
func (h *AnalysisHandler) RecordCategoryResult(c *gin.Context) {
	var req services.RecordCategoryResultRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Recording category result",
		"student_id", req.StudentID,
		"assessment_type", req.AssessmentType)

	result, err := h.resultService.Record(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *AnalysisHandler) GetCategoryResult(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	result, err := h.resultService.GetResult(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// MarkReadingLevelUpdated flags a result once the student's reading level was
// recalculated from it.
func (h *AnalysisHandler) MarkReadingLevelUpdated(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Marking reading level updated", "category_result_id", id)

	result, err := h.resultService.MarkReadingLevelUpdated(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *AnalysisHandler) ListStudentResults(c *gin.Context) {
	studentID := h.parseIDParam(c, "id")
	if studentID == 0 {
		return
	}

	results, err := h.resultService.ListStudentResults(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}

// ===== PRESCRIPTIVE ANALYSES =====

// ListAnalyses returns one analysis per category for a student
// @Summary List prescriptive analyses
// @Tags analyses
// @Produce json
// @Param id path uint true "Student ID"
// @Success 200 {array} models.PrescriptiveAnalysis
// @Router /students/{id}/analyses [get]
func (h *AnalysisHandler) ListAnalyses(c *gin.Context) {
	studentID := h.parseIDParam(c, "id")
	if studentID == 0 {
		return
	}

	analyses, err := h.analysisService.ListAnalyses(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, analyses)
}

// RegenerateAnalyses rewrites every analysis from the student's latest result
func (h *AnalysisHandler) RegenerateAnalyses(c *gin.Context) {
	studentID := h.parseIDParam(c, "id")
	if studentID == 0 {
		return
	}

	h.LogRequest(c, "Regenerating prescriptive analyses", "student_id", studentID)

	analyses, err := h.analysisService.RegenerateFromLatest(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, analyses)
}
