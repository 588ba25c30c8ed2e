package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/SAP-F-2025/intervention-service/internal/cache"
	"github.com/SAP-F-2025/intervention-service/internal/contentbank"
	"github.com/SAP-F-2025/intervention-service/internal/events"
	"github.com/SAP-F-2025/intervention-service/internal/models"
	"github.com/SAP-F-2025/intervention-service/internal/repositories"
	"github.com/SAP-F-2025/intervention-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/intervention-service/internal/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	ctx       context.Context
	db        *gorm.DB
	repo      repositories.Repository
	publisher *events.MockEventPublisher
	bank      contentbank.Bank
	svc       *Services
}

type envOption func(*Dependencies)

func withPlanCache(c *cache.PlanCache) envOption {
	return func(d *Dependencies) { d.PlanCache = c }
}

func withQuestions(q QuestionSource) envOption {
	return func(d *Dependencies) { d.Questions = q }
}

func withBatchSize(n int) envOption {
	return func(d *Dependencies) { d.BatchSize = n }
}

func withLogger(l *slog.Logger) envOption {
	return func(d *Dependencies) { d.Logger = l }
}

func withRepo(wrap func(repositories.Repository) repositories.Repository) envOption {
	return func(d *Dependencies) { d.Repo = wrap(d.Repo) }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	db := testutil.DB(t)
	logger := testutil.Logger(t)
	publisher := events.NewMockEventPublisher(logger)

	deps := Dependencies{
		Repo:      postgres.NewRepository(db),
		Logger:    logger,
		Bank:      contentbank.Default(),
		Publisher: publisher,
	}
	for _, opt := range opts {
		opt(&deps)
	}

	return &testEnv{
		ctx:       context.Background(),
		db:        db,
		repo:      deps.Repo,
		publisher: publisher,
		bank:      deps.Bank,
		svc:       New(deps),
	}
}

func (e *testEnv) student(t *testing.T) *models.Student {
	t.Helper()
	return testutil.SeedStudent(t, e.ctx, e.db, "Grade 1", models.ReadingLevelDeveloping)
}

func choice(text string, correct bool) ChoiceRequest {
	return ChoiceRequest{OptionText: text, IsCorrect: correct}
}

func question(id, questionType string, choices ...ChoiceRequest) QuestionRequest {
	return QuestionRequest{
		ID:           id,
		QuestionType: questionType,
		QuestionText: "Piliin ang tamang sagot",
		Choices:      choices,
	}
}

// wordQuestions builds n word questions q1..qn whose correct answer is "aso".
func wordQuestions(n int) []QuestionRequest {
	out := make([]QuestionRequest, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, question(questionID(i), "word", choice("aso", true), choice("pusa", false)))
	}
	return out
}

func questionID(i int) string {
	return fmt.Sprintf("q%d", i)
}

func (e *testEnv) createPlan(t *testing.T, studentID uint, category string, questions []QuestionRequest) *models.InterventionPlan {
	t.Helper()
	if questions == nil {
		questions = []QuestionRequest{}
	}
	plan, err := e.svc.Plans.CreatePlan(e.ctx, &CreatePlanRequest{
		StudentID: studentID,
		Category:  category,
		Questions: &questions,
	})
	require.NoError(t, err)
	return plan
}

func (e *testEnv) answer(t *testing.T, plan *models.InterventionPlan, questionID string, correct bool) *RecordResponseResult {
	t.Helper()
	selected := "pusa"
	if correct {
		selected = "aso"
	}
	result, err := e.svc.Responses.RecordResponse(e.ctx, &RecordResponseRequest{
		StudentID:          plan.StudentID,
		InterventionPlanID: plan.ID,
		QuestionID:         questionID,
		SelectedChoice:     selected,
		IsCorrect:          &correct,
		ResponseTime:       2.5,
	})
	require.NoError(t, err)
	return result
}

func (e *testEnv) reloadPlan(t *testing.T, id uint) *models.InterventionPlan {
	t.Helper()
	plan, err := e.repo.InterventionPlan().GetByID(e.ctx, id)
	require.NoError(t, err)
	return plan
}

func (e *testEnv) progressOf(t *testing.T, planID uint) *models.InterventionProgress {
	t.Helper()
	progress, err := e.repo.InterventionProgress().GetByPlanID(e.ctx, planID)
	require.NoError(t, err)
	return progress
}

func boolPtr(b bool) *bool { return &b }

func intPtr(i int) *int { return &i }

// memoryCache stores JSON like the redis cache does.
type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}}
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = b
	return nil
}

func (m *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	b, ok := m.data[key]
	m.mu.Unlock()
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(b, dest)
}

func (m *memoryCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memoryCache) DeletePattern(_ context.Context, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = map[string][]byte{}
	return nil
}

func (m *memoryCache) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

// staticQuestions serves fixed seed questions per category.
type staticQuestions map[models.Category][]models.Question

func (s staticQuestions) QuestionsFor(category models.Category) []models.Question {
	return s[category]
}
