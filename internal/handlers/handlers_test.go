package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/SAP-F-2025/intervention-service/internal/models"
	"github.com/SAP-F-2025/intervention-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/intervention-service/internal/services"
	"github.com/SAP-F-2025/intervention-service/internal/testutil"
	"github.com/SAP-F-2025/intervention-service/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testServer struct {
	ctx    context.Context
	db     *gorm.DB
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.DB(t)
	repo := postgres.NewRepository(db)
	svc := services.New(services.Dependencies{
		Repo:   repo,
		Logger: testutil.Logger(t),
	})
	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	return &testServer{
		ctx:    context.Background(),
		db:     db,
		router: NewHandlerManager(svc, repo, logger).NewRouter(),
	}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (s *testServer) student(t *testing.T) *models.Student {
	t.Helper()
	return testutil.SeedStudent(t, s.ctx, s.db, "Grade 1", models.ReadingLevelDeveloping)
}

func planBody(studentID uint, category string) gin.H {
	return gin.H{
		"student_id": studentID,
		"category":   category,
		"questions": []gin.H{{
			"id":            "q1",
			"question_type": "word",
			"question_text": "Piliin ang tamang sagot",
			"choices": []gin.H{
				{"option_text": "aso", "is_correct": true},
				{"option_text": "pusa"},
			},
		}},
	}
}

func TestPlanRoutes_Lifecycle(t *testing.T) {
	s := newTestServer(t)
	student := s.student(t)

	w := s.do(t, http.MethodPost, "/api/v1/plans", planBody(student.ID, "decoding"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	plan := decode[models.InterventionPlan](t, w)
	assert.Equal(t, models.CategoryDecoding, plan.Category)
	assert.Equal(t, models.PlanStatusActive, plan.Status)

	w = s.do(t, http.MethodGet, "/api/v1/plans/"+itoa(plan.ID)+"/progress", nil)
	require.Equal(t, http.StatusOK, w.Code)
	progress := decode[models.InterventionProgress](t, w)
	assert.Equal(t, 1, progress.TotalActivities)

	w = s.do(t, http.MethodPost, "/api/v1/responses", gin.H{
		"student_id":           student.ID,
		"intervention_plan_id": plan.ID,
		"question_id":          "q1",
		"selected_choice":      "aso",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	recorded := decode[services.RecordResponseResult](t, w)
	assert.True(t, recorded.Response.IsCorrect)
	assert.Equal(t, 100, recorded.Progress.PercentComplete)
	assert.Equal(t, models.PlanStatusCompleted, recorded.PlanStatus)

	w = s.do(t, http.MethodGet, "/api/v1/plans/"+itoa(plan.ID)+"/responses", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.InterventionResponse](t, w), 1)

	w = s.do(t, http.MethodGet, "/api/v1/students/"+itoa(student.ID)+"/plans/current?category=Decoding", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, plan.ID, decode[models.InterventionPlan](t, w).ID)

	w = s.do(t, http.MethodDelete, "/api/v1/plans/"+itoa(plan.ID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/plans/"+itoa(plan.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPlanRoutes_ErrorMapping(t *testing.T) {
	s := newTestServer(t)
	student := s.student(t)

	t.Run("invalid id", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/plans/abc", nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, CodeValidation, decode[ErrorResponse](t, w).Code)
	})

	t.Run("unknown plan", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/plans/999", nil)
		require.Equal(t, http.StatusNotFound, w.Code)
		resp := decode[ErrorResponse](t, w)
		assert.Equal(t, CodeNotFound, resp.Code)
		assert.Equal(t, "Intervention plan not found", resp.Message)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/plans", bytes.NewBufferString("{"))
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown category", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/plans", planBody(student.ID, "Spelling"))
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, CodeValidation, decode[ErrorResponse](t, w).Code)
	})

	t.Run("unknown student", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/plans", planBody(999, "Decoding"))
		require.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Student not found", decode[ErrorResponse](t, w).Message)
	})

	t.Run("response to superseded plan", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/plans", planBody(student.ID, "Word Recognition"))
		require.Equal(t, http.StatusCreated, w.Code)
		old := decode[models.InterventionPlan](t, w)
		w = s.do(t, http.MethodPost, "/api/v1/plans", planBody(student.ID, "Word Recognition"))
		require.Equal(t, http.StatusCreated, w.Code)

		w = s.do(t, http.MethodPost, "/api/v1/responses", gin.H{
			"student_id":           student.ID,
			"intervention_plan_id": old.ID,
			"question_id":          "q1",
			"selected_choice":      "aso",
		})
		require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
		assert.Equal(t, CodeConflict, decode[ErrorResponse](t, w).Code)

		w = s.do(t, http.MethodPost, "/api/v1/plans/"+itoa(old.ID)+"/activate", nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestCategoryResultRoutes_RunCascade(t *testing.T) {
	s := newTestServer(t)
	student := s.student(t)

	w := s.do(t, http.MethodPost, "/api/v1/category-results", gin.H{
		"student_id":      student.ID,
		"assessment_type": "pre-assessment",
		"categories": []gin.H{
			{"category_name": "Decoding", "total_questions": 4, "correct_answers": 2},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	recorded := decode[services.RecordCategoryResultResult](t, w)
	require.NotNil(t, recorded.Cascade)
	assert.Equal(t, len(models.Categories()), recorded.Cascade.Populated)

	w = s.do(t, http.MethodGet, "/api/v1/category-results/"+itoa(recorded.Result.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/category-results/"+itoa(recorded.Result.ID)+"/reading-level-updated", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[models.CategoryResult](t, w).ReadingLevelUpdated)

	w = s.do(t, http.MethodGet, "/api/v1/students/"+itoa(student.ID)+"/analyses", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.PrescriptiveAnalysis](t, w), len(models.Categories()))

	w = s.do(t, http.MethodGet, "/api/v1/students/"+itoa(student.ID)+"/category-results", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.CategoryResult](t, w), 1)

	w = s.do(t, http.MethodPost, "/api/v1/category-results/999/reading-level-updated", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMaintenanceRoutes(t *testing.T) {
	s := newTestServer(t)
	s.student(t)

	w := s.do(t, http.MethodPost, "/api/v1/maintenance/reconcile", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	report := decode[services.BootstrapReport](t, w)
	assert.Equal(t, 1, report.StudentsScanned)
	assert.Equal(t, 1, report.PlansCreated)

	w = s.do(t, http.MethodPost, "/api/v1/maintenance/links", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "intervention_")
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealthCheck_StoreDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	h := NewMaintenanceHandler(nil, failingPinger{}, logger)

	router := gin.New()
	router.GET("/health", h.HealthCheck)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHandleServiceError_StoreFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	h := NewBaseHandler(logger)

	router := gin.New()
	router.GET("/x", func(c *gin.Context) {
		h.handleServiceError(c, &services.StoreError{Op: "get plan", Err: errors.New("timeout")})
	})
	router.GET("/y", func(c *gin.Context) {
		h.handleServiceError(c, errors.New("boom"))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/y", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
