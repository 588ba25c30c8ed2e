package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/intervention-service/internal/services"
	"github.com/SAP-F-2025/intervention-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type ResponseHandler struct {
	BaseHandler
	responseService services.ResponseService
}

func NewResponseHandler(responseService services.ResponseService, logger utils.Logger) *ResponseHandler {
	return &ResponseHandler{
		BaseHandler:     NewBaseHandler(logger),
		responseService: responseService,
	}
}

// RecordResponse records one answered question and returns the recomputed progress
// @Summary Record intervention response
// @Tags responses
// @Accept json
// @Produce json
// @Param response body services.RecordResponseRequest true "Response data"
// @Success 201 {object} services.RecordResponseResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /responses [post]
func (h *ResponseHandler) RecordResponse(c *gin.Context) {
	var req services.RecordResponseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Recording intervention response",
		"plan_id", req.InterventionPlanID,
		"question_id", req.QuestionID)

	result, err := h.responseService.RecordResponse(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}
