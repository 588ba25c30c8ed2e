package services

import (
	"testing"

	"github.com/SAP-F-2025/intervention-service/internal/contentbank"
	"github.com/SAP-F-2025/intervention-service/internal/events"
	"github.com/SAP-F-2025/intervention-service/internal/models"
	"github.com/SAP-F-2025/intervention-service/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analysisFor(t *testing.T, analyses []*models.PrescriptiveAnalysis, category models.Category) *models.PrescriptiveAnalysis {
	t.Helper()
	a := findAnalysis(analyses, category)
	require.NotNil(t, a, "no analysis for %s", category)
	return a
}

func assertContent(t *testing.T, want models.AnalysisContent, a *models.PrescriptiveAnalysis) {
	t.Helper()
	assert.Equal(t, want.Strengths, []string(a.Strengths))
	assert.Equal(t, want.Weaknesses, []string(a.Weaknesses))
	assert.Equal(t, want.Recommendations, []string(a.Recommendations))
}

func TestEnsureStudentHasAllAnalyses_IsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	student := env.student(t)
	legacy := testutil.SeedAnalysis(t, env.ctx, env.db, student.ID, "alphabet_knowledge", models.AnalysisContent{})

	first, err := env.svc.Analyses.EnsureStudentHasAllAnalyses(env.ctx, student.ID, models.ReadingLevelDeveloping)
	require.NoError(t, err)
	require.Len(t, first, len(models.Categories()))
	assert.Equal(t, legacy.ID, analysisFor(t, first, models.CategoryAlphabetKnowledge).ID,
		"the legacy underscored id counts for its category")

	for _, c := range models.Categories() {
		a := analysisFor(t, first, c)
		assert.True(t, a.IsEmpty())
		assert.Equal(t, models.ReadingLevelDeveloping, a.ReadingLevel)
	}

	second, err := env.svc.Analyses.EnsureStudentHasAllAnalyses(env.ctx, student.ID, models.ReadingLevelDeveloping)
	require.NoError(t, err)
	assert.Equal(t, first, second, "a repeated call changes nothing")

	count, err := env.repo.PrescriptiveAnalysis().CountByStudent(env.ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(len(models.Categories())), count)
}

func TestEnsureStudentHasAllAnalyses_RefreshesReadingLevel(t *testing.T) {
	env := newTestEnv(t)
	student := env.student(t)
	custom := models.AnalysisContent{Strengths: []string{"s"}, Weaknesses: []string{"w"}, Recommendations: []string{"r"}}
	testutil.SeedAnalysis(t, env.ctx, env.db, student.ID, "Decoding", custom)

	analyses, err := env.svc.Analyses.EnsureStudentHasAllAnalyses(env.ctx, student.ID, models.ReadingLevelTransitioning)
	require.NoError(t, err)
	for _, a := range analyses {
		assert.Equal(t, models.ReadingLevelTransitioning, a.ReadingLevel)
	}
	assertContent(t, custom, analysisFor(t, analyses, models.CategoryDecoding))

	// An empty level leaves stored levels alone.
	analyses, err = env.svc.Analyses.EnsureStudentHasAllAnalyses(env.ctx, student.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.ReadingLevelTransitioning, analysisFor(t, analyses, models.CategoryDecoding).ReadingLevel)
}

func TestEnsureStudentHasAllAnalyses_UnknownStudent(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Analyses.EnsureStudentHasAllAnalyses(env.ctx, 999, models.ReadingLevelDeveloping)
	assert.ErrorIs(t, err, ErrStudentNotFound)

	_, err = env.svc.Analyses.EnsureStudentHasAllAnalyses(env.ctx, 0, models.ReadingLevelDeveloping)
	assert.True(t, IsValidation(err))
}

func TestRunCascade_PopulatesEveryCategory(t *testing.T) {
	env := newTestEnv(t)
	student := env.student(t)
	result := testutil.SeedCategoryResult(t, env.ctx, env.db, student.ID,
		models.CategoryScore{CategoryName: "decoding", TotalQuestions: 4, CorrectAnswers: 2},
		models.CategoryScore{CategoryName: "Word Recognition", TotalQuestions: 4, CorrectAnswers: 4},
	)

	report, err := env.svc.Analyses.RunCascade(env.ctx, result)
	require.NoError(t, err)
	assert.Empty(t, report.FailedSteps)
	assert.Equal(t, len(models.Categories()), report.Populated)
	require.Len(t, report.Analyses, len(models.Categories()))

	for _, a := range report.Analyses {
		assert.False(t, a.IsEmpty(), "%s is empty", a.CategoryID)
	}
	assertContent(t, env.bank.Analysis(models.CategoryDecoding, contentbank.BandDeveloping),
		analysisFor(t, report.Analyses, models.CategoryDecoding))
	assertContent(t, env.bank.Analysis(models.CategoryWordRecognition, contentbank.BandProficient),
		analysisFor(t, report.Analyses, models.CategoryWordRecognition))
	assertContent(t, env.bank.Analysis(models.CategoryReadingComprehension, contentbank.BandUnscored),
		analysisFor(t, report.Analyses, models.CategoryReadingComprehension))

	cascades := env.publisher.EventsOfType(events.EventCascadeCompleted)
	require.Len(t, cascades, 1)
	payload := cascades[0].Data.(events.CascadeCompletedEvent)
	assert.Equal(t, result.ID, payload.CategoryResultID)
	assert.Equal(t, len(models.Categories()), payload.Populated)
}

func TestRunCascade_KeepsPopulatedContent(t *testing.T) {
	env := newTestEnv(t)
	student := env.student(t)
	custom := models.AnalysisContent{
		Strengths:       []string{"Reads CVC words fluently."},
		Weaknesses:      []string{"Struggles with blends."},
		Recommendations: []string{"Practice consonant blends daily."},
	}
	testutil.SeedAnalysis(t, env.ctx, env.db, student.ID, "Decoding", custom)
	partial := testutil.SeedAnalysis(t, env.ctx, env.db, student.ID, "Word Recognition",
		models.AnalysisContent{Strengths: []string{"Knows sight words."}})

	result := testutil.SeedCategoryResult(t, env.ctx, env.db, student.ID,
		models.CategoryScore{CategoryName: "Decoding", TotalQuestions: 10, CorrectAnswers: 1},
		models.CategoryScore{CategoryName: "Word Recognition", TotalQuestions: 10, CorrectAnswers: 1},
	)

	report, err := env.svc.Analyses.RunCascade(env.ctx, result)
	require.NoError(t, err)

	assertContent(t, custom, analysisFor(t, report.Analyses, models.CategoryDecoding))

	got := analysisFor(t, report.Analyses, models.CategoryWordRecognition)
	assert.Equal(t, partial.ID, got.ID)
	assert.Equal(t, []string{"Knows sight words."}, []string(got.Strengths))
	want := env.bank.Analysis(models.CategoryWordRecognition, contentbank.BandEmerging)
	assert.Equal(t, want.Weaknesses, []string(got.Weaknesses))
	assert.Equal(t, want.Recommendations, []string(got.Recommendations))
}

func TestRunCascade_RecordsFailedStepsAndContinues(t *testing.T) {
	env := newTestEnv(t)
	result := &models.CategoryResult{
		StudentID:      999,
		AssessmentType: models.AssessmentPre,
		ReadingLevel:   models.ReadingLevelDeveloping,
		Categories: []models.CategoryScore{
			{CategoryName: "Decoding", TotalQuestions: 4, CorrectAnswers: 3},
		},
	}
	result.ComputeDerived()

	report, err := env.svc.Analyses.RunCascade(env.ctx, result)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStudentNotFound)
	assert.Equal(t, []string{"ensure_stubs"}, report.FailedSteps)

	// The generate step still wrote the scored category.
	require.Len(t, report.Analyses, 1)
	assert.False(t, report.Analyses[0].IsEmpty())
	assert.Equal(t, 1, report.Populated)

	cascades := env.publisher.EventsOfType(events.EventCascadeCompleted)
	require.Len(t, cascades, 1)
	assert.Equal(t, []string{"ensure_stubs"}, cascades[0].Data.(events.CascadeCompletedEvent).FailedSteps)

	_, err = env.svc.Analyses.RunCascade(env.ctx, nil)
	assert.True(t, IsValidation(err))
}

func TestGenerateAnalyses_ReplaceOverwrites(t *testing.T) {
	env := newTestEnv(t)
	student := env.student(t)
	testutil.SeedAnalysis(t, env.ctx, env.db, student.ID, "Decoding", models.AnalysisContent{
		Strengths: []string{"old"}, Weaknesses: []string{"old"}, Recommendations: []string{"old"},
	})
	result := testutil.SeedCategoryResult(t, env.ctx, env.db, student.ID,
		models.CategoryScore{CategoryName: "Decoding", TotalQuestions: 4, CorrectAnswers: 4},
		models.CategoryScore{CategoryName: "Spelling", TotalQuestions: 4, CorrectAnswers: 4},
	)

	touched, err := env.svc.Analyses.GenerateAnalysesFromCategoryResults(env.ctx, student.ID, result, FillEmpty)
	require.NoError(t, err)
	require.Len(t, touched, 1, "unknown categories are skipped")
	assert.Equal(t, []string{"old"}, []string(touched[0].Strengths))

	touched, err = env.svc.Analyses.GenerateAnalysesFromCategoryResults(env.ctx, student.ID, result, Replace)
	require.NoError(t, err)
	require.Len(t, touched, 1)
	assertContent(t, env.bank.Analysis(models.CategoryDecoding, contentbank.BandProficient), touched[0])
}

func TestRegenerateEmptyAnalyses_UsesGenericContentForUnknownIDs(t *testing.T) {
	env := newTestEnv(t)
	student := env.student(t)
	testutil.SeedAnalysis(t, env.ctx, env.db, student.ID, "Phonics", models.AnalysisContent{})

	analyses, err := env.svc.Analyses.RegenerateEmptyAnalyses(env.ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, analyses, 1)
	assertContent(t, env.bank.GenericAnalysis(contentbank.BandUnscored), analyses[0])
}

func TestRegenerateFromLatest(t *testing.T) {
	env := newTestEnv(t)
	student := env.student(t)

	_, err := env.svc.Analyses.RegenerateFromLatest(env.ctx, student.ID)
	assert.ErrorIs(t, err, ErrCategoryResultNotFound)
	_, err = env.svc.Analyses.RegenerateFromLatest(env.ctx, 999)
	assert.ErrorIs(t, err, ErrStudentNotFound)

	testutil.SeedAnalysis(t, env.ctx, env.db, student.ID, "Decoding", models.AnalysisContent{
		Strengths: []string{"stale"}, Weaknesses: []string{"stale"}, Recommendations: []string{"stale"},
	})
	testutil.SeedCategoryResult(t, env.ctx, env.db, student.ID,
		models.CategoryScore{CategoryName: "Decoding", TotalQuestions: 4, CorrectAnswers: 1})

	analyses, err := env.svc.Analyses.RegenerateFromLatest(env.ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, analyses, len(models.Categories()))
	assertContent(t, env.bank.Analysis(models.CategoryDecoding, contentbank.BandEmerging),
		analysisFor(t, analyses, models.CategoryDecoding))
	for _, a := range analyses {
		assert.False(t, a.IsEmpty())
	}

	listed, err := env.svc.Analyses.ListAnalyses(env.ctx, student.ID)
	require.NoError(t, err)
	assert.Len(t, listed, len(models.Categories()))
}
