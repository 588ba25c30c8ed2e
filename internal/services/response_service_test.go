package services

import (
	"sync"
	"testing"
	"time"

	"github.com/SAP-F-2025/intervention-service/internal/cache"
	"github.com/SAP-F-2025/intervention-service/internal/models"
	"github.com/SAP-F-2025/intervention-service/internal/repositories"
	"github.com/SAP-F-2025/intervention-service/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordResponse_CopiesChoiceFeedback(t *testing.T) {
	env := newTestEnv(t)
	student := env.student(t)
	plan := env.createPlan(t, student.ID, "Decoding", []QuestionRequest{
		question("q1", "word", choice("aso", true), ChoiceRequest{OptionText: "pusa", Description: "Tingnan muli ang unang titik."}),
	})

	result := env.answer(t, plan, "q1", false)

	require.NotNil(t, result.Response.FeedbackDescription)
	assert.Equal(t, "Tingnan muli ang unang titik.", *result.Response.FeedbackDescription)
	assert.Equal(t, plan.ID, result.Response.InterventionPlanID)
	assert.Equal(t, "pusa", result.Response.SelectedChoice)
	assert.False(t, result.Response.IsCorrect)
	assert.Equal(t, 2.5, result.Response.ResponseTime)

	responses, err := env.svc.Responses.ListResponses(env.ctx, plan.ID)
	require.NoError(t, err)
	require.Len(t, responses, 1)
	assert.Equal(t, result.Response.ID, responses[0].ID)
}

func TestRecordResponse_DerivesCorrectnessFromChoice(t *testing.T) {
	env := newTestEnv(t)
	student := env.student(t)
	plan := env.createPlan(t, student.ID, "Decoding", wordQuestions(2))

	result, err := env.svc.Responses.RecordResponse(env.ctx, &RecordResponseRequest{
		StudentID:          student.ID,
		InterventionPlanID: plan.ID,
		QuestionID:         "q1",
		SelectedChoice:     "  ASO ",
	})
	require.NoError(t, err)
	assert.True(t, result.Response.IsCorrect)
	assert.Equal(t, 1, result.Progress.CorrectAnswers)
	require.NotNil(t, result.Response.FeedbackDescription)
	assert.Equal(t, `Correct! "aso" is the right answer.`, *result.Response.FeedbackDescription)
}

func TestRecordResponse_ExplicitCorrectnessWins(t *testing.T) {
	env := newTestEnv(t)
	student := env.student(t)
	plan := env.createPlan(t, student.ID, "Decoding", wordQuestions(1))

	result, err := env.svc.Responses.RecordResponse(env.ctx, &RecordResponseRequest{
		StudentID:          student.ID,
		InterventionPlanID: plan.ID,
		QuestionID:         "q1",
		SelectedChoice:     "aso",
		IsCorrect:          boolPtr(false),
	})
	require.NoError(t, err)
	assert.False(t, result.Response.IsCorrect)
	assert.Equal(t, 1, result.Progress.IncorrectAnswers)
}

func TestRecordResponse_UnknownQuestionNeedsCorrectness(t *testing.T) {
	env := newTestEnv(t)
	student := env.student(t)
	plan := env.createPlan(t, student.ID, "Decoding", wordQuestions(2))

	_, err := env.svc.Responses.RecordResponse(env.ctx, &RecordResponseRequest{
		StudentID:          student.ID,
		InterventionPlanID: plan.ID,
		QuestionID:         "missing",
		SelectedChoice:     "aso",
	})
	assert.True(t, IsValidation(err))

	result, err := env.svc.Responses.RecordResponse(env.ctx, &RecordResponseRequest{
		StudentID:          student.ID,
		InterventionPlanID: plan.ID,
		QuestionID:         "missing",
		SelectedChoice:     "aso",
		IsCorrect:          boolPtr(true),
	})
	require.NoError(t, err)
	assert.Nil(t, result.Response.FeedbackDescription)
	assert.Equal(t, 1, result.Progress.CompletedActivities)
}

func TestRecordResponse_LegacyChoiceGetsDefaultFeedback(t *testing.T) {
	env := newTestEnv(t)
	student := env.student(t)
	legacy := testutil.Question(models.QuestionTypeKatinig, "ba", "da")
	legacy.ID = "legacy"
	plan := testutil.SeedPlan(t, env.ctx, env.db, student.ID, models.CategoryDecoding, models.PlanStatusActive, legacy)

	result, err := env.svc.Responses.RecordResponse(env.ctx, &RecordResponseRequest{
		StudentID:          student.ID,
		InterventionPlanID: plan.ID,
		QuestionID:         "legacy",
		SelectedChoice:     "da",
	})
	require.NoError(t, err)
	require.NotNil(t, result.Response.FeedbackDescription)
	assert.Equal(t, env.bank.ChoiceFeedback(models.QuestionTypeKatinig, "da", false), *result.Response.FeedbackDescription)

	// The missing progress row was recreated on the way.
	assert.Equal(t, 1, result.Progress.TotalActivities)
	assert.Equal(t, 1, result.Progress.CompletedActivities)
	assert.Equal(t, models.PlanStatusCompleted, result.PlanStatus)
}

func TestRecordResponse_Rejections(t *testing.T) {
	env := newTestEnv(t)
	student := env.student(t)
	other := env.student(t)
	plan := env.createPlan(t, student.ID, "Decoding", wordQuestions(1))
	archived := testutil.SeedPlan(t, env.ctx, env.db, student.ID, models.CategoryDecoding, models.PlanStatusArchived,
		testutil.Question(models.QuestionTypeWord, "aso", "pusa"))

	t.Run("wrong student", func(t *testing.T) {
		_, err := env.svc.Responses.RecordResponse(env.ctx, &RecordResponseRequest{
			StudentID: other.ID, InterventionPlanID: plan.ID, QuestionID: "q1", SelectedChoice: "aso",
		})
		assert.True(t, IsValidation(err))
	})

	t.Run("archived plan", func(t *testing.T) {
		_, err := env.svc.Responses.RecordResponse(env.ctx, &RecordResponseRequest{
			StudentID: student.ID, InterventionPlanID: archived.ID, QuestionID: archived.Questions[0].ID, SelectedChoice: "aso",
		})
		assert.ErrorIs(t, err, ErrPlanArchived)
		assert.True(t, IsConflict(err))
	})

	t.Run("unknown plan", func(t *testing.T) {
		_, err := env.svc.Responses.RecordResponse(env.ctx, &RecordResponseRequest{
			StudentID: student.ID, InterventionPlanID: 999, QuestionID: "q1", SelectedChoice: "aso",
		})
		assert.ErrorIs(t, err, ErrPlanNotFound)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := env.svc.Responses.RecordResponse(env.ctx, &RecordResponseRequest{StudentID: student.ID})
		assert.True(t, IsValidation(err))
		_, err = env.svc.Responses.RecordResponse(env.ctx, nil)
		assert.True(t, IsValidation(err))
	})

	count, err := env.repo.InterventionResponse().CountByPlan(env.ctx, plan.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
	count, err = env.repo.InterventionResponse().CountByPlan(env.ctx, archived.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = env.svc.Responses.ListResponses(env.ctx, 999)
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestRecordResponse_CachedPlanInvalidatedBySupersede(t *testing.T) {
	mem := newMemoryCache()
	env := newTestEnv(t, withPlanCache(cache.NewPlanCache(mem, time.Minute)))
	student := env.student(t)

	first := env.createPlan(t, student.ID, "Decoding", wordQuestions(3))
	env.answer(t, first, "q1", true)
	assert.Equal(t, 1, mem.len(), "plan is cached after the first answer")

	env.createPlan(t, student.ID, "Decoding", wordQuestions(3))
	assert.Zero(t, mem.len())

	_, err := env.svc.Responses.RecordResponse(env.ctx, &RecordResponseRequest{
		StudentID: student.ID, InterventionPlanID: first.ID, QuestionID: "q2", SelectedChoice: "aso",
	})
	assert.ErrorIs(t, err, ErrPlanArchived)
}

func TestRecordResponse_ConcurrentAnswersKeepEveryCount(t *testing.T) {
	env := newTestEnv(t)
	student := env.student(t)
	plan := env.createPlan(t, student.ID, "Decoding", wordQuestions(20))

	const workers = 10
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			correct := i%2 == 0
			_, err := env.svc.Responses.RecordResponse(env.ctx, &RecordResponseRequest{
				StudentID:          student.ID,
				InterventionPlanID: plan.ID,
				QuestionID:         questionID(i + 1),
				SelectedChoice:     "aso",
				IsCorrect:          &correct,
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	count, err := env.repo.InterventionResponse().CountByPlan(env.ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(workers), count)

	progress := env.progressOf(t, plan.ID)
	assert.Equal(t, workers, progress.CompletedActivities)
	assert.Equal(t, workers/2, progress.CorrectAnswers)
	assert.Equal(t, workers/2, progress.IncorrectAnswers)
	assert.Equal(t, 50, progress.PercentComplete)
	assert.Equal(t, 50, progress.PercentCorrect)
}

func TestListResponses_FiltersByPlan(t *testing.T) {
	env := newTestEnv(t)
	student := env.student(t)
	a := env.createPlan(t, student.ID, "Decoding", wordQuestions(2))
	b := env.createPlan(t, student.ID, "Word Recognition", wordQuestions(2))
	env.answer(t, a, "q1", true)
	env.answer(t, b, "q1", true)
	env.answer(t, b, "q2", false)

	responses, err := env.svc.Responses.ListResponses(env.ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, responses, 2)
	for _, r := range responses {
		assert.Equal(t, b.ID, r.InterventionPlanID)
	}

	_, err = env.repo.InterventionProgress().GetByPlanID(env.ctx, a.ID)
	assert.False(t, repositories.IsNotFoundError(err))
}
