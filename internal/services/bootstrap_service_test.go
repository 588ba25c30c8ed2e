package services

import (
	"testing"

	"github.com/SAP-F-2025/intervention-service/internal/models"
	"github.com/SAP-F-2025/intervention-service/internal/repositories"
	"github.com/SAP-F-2025/intervention-service/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func livePlans(t *testing.T, env *testEnv, studentID uint) []*models.InterventionPlan {
	t.Helper()
	plans, err := env.repo.InterventionPlan().ListByStudent(env.ctx, studentID, repositories.PlanFilters{})
	require.NoError(t, err)
	return plans
}

func TestBootstrap_CreatesShellRecordsForGradedStudents(t *testing.T) {
	env := newTestEnv(t)
	graded := env.student(t)
	ungraded := testutil.SeedStudent(t, env.ctx, env.db, "", models.ReadingLevelDeveloping)

	report, err := env.svc.Bootstrap.ReconcileAllStudents(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.StudentsScanned)
	assert.Equal(t, 1, report.ResultsCreated)
	assert.Equal(t, len(models.Categories()), report.AnalysesCreated)
	assert.Equal(t, 1, report.PlansCreated)
	assert.Empty(t, report.Failures)
	require.NotNil(t, report.Links)
	assert.Equal(t, 1, report.Links.PlansScanned)

	results, err := env.repo.CategoryResult().ListByStudent(env.ctx, graded.ID, repositories.CategoryResultFilters{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	shell := results[0]
	assert.Equal(t, models.AssessmentPre, shell.AssessmentType)
	assert.Len(t, shell.Categories, len(models.Categories()))
	assert.Zero(t, shell.OverallScore)
	assert.False(t, shell.AllCategoriesPassed)

	analyses, err := env.repo.PrescriptiveAnalysis().ListByStudent(env.ctx, graded.ID)
	require.NoError(t, err)
	require.Len(t, analyses, len(models.Categories()))
	for _, a := range analyses {
		assert.True(t, a.IsEmpty(), "bootstrap leaves analysis content empty")
	}

	plans := livePlans(t, env, graded.ID)
	require.Len(t, plans, 1)
	plan := plans[0]
	assert.Equal(t, models.CategoryAlphabetKnowledge, plan.Category, "unscored students start with the first category")
	assert.Equal(t, models.PlanStatusActive, plan.Status)
	assert.Equal(t, "Alphabet Knowledge Intervention", plan.Name)
	require.NotNil(t, plan.CategoryResultID)
	assert.Equal(t, shell.ID, *plan.CategoryResultID)
	require.NotNil(t, plan.PrescriptiveAnalysisID)
	assert.Equal(t, findAnalysis(analyses, models.CategoryAlphabetKnowledge).ID, *plan.PrescriptiveAnalysisID)
	env.progressOf(t, plan.ID)

	count, err := env.repo.CategoryResult().CountByStudent(env.ctx, ungraded.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, livePlans(t, env, ungraded.ID))
}

func TestBootstrap_RerunChangesNothing(t *testing.T) {
	env := newTestEnv(t)
	student := env.student(t)

	_, err := env.svc.Bootstrap.ReconcileAllStudents(env.ctx)
	require.NoError(t, err)
	before := livePlans(t, env, student.ID)

	report, err := env.svc.Bootstrap.ReconcileAllStudents(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.StudentsScanned)
	assert.Zero(t, report.ResultsCreated)
	assert.Zero(t, report.AnalysesCreated)
	assert.Zero(t, report.PlansCreated)
	assert.Zero(t, report.ProgressHealed)
	assert.Zero(t, report.PlansArchived)
	assert.Zero(t, report.Links.LinksBackfilled)

	after := livePlans(t, env, student.ID)
	require.Len(t, after, 1)
	assert.Equal(t, before[0].ID, after[0].ID)
}

func TestBootstrap_TargetsWeakestCategoryWithSeedQuestions(t *testing.T) {
	seed := staticQuestions{
		models.CategoryDecoding: {
			testutil.Question(models.QuestionTypeMalapantig, "ba-ha-y", "ba-hay"),
			testutil.Question(models.QuestionTypeWord, "bahay", "buhay"),
		},
	}
	env := newTestEnv(t, withQuestions(seed))
	student := env.student(t)
	result := testutil.SeedCategoryResult(t, env.ctx, env.db, student.ID,
		models.CategoryScore{CategoryName: "Word Recognition", TotalQuestions: 4, CorrectAnswers: 3},
		models.CategoryScore{CategoryName: "Decoding", TotalQuestions: 4, CorrectAnswers: 1},
	)

	report, err := env.svc.Bootstrap.ReconcileAllStudents(env.ctx)
	require.NoError(t, err)
	assert.Zero(t, report.ResultsCreated, "an existing result is kept")
	assert.Equal(t, 1, report.PlansCreated)

	plans := livePlans(t, env, student.ID)
	require.Len(t, plans, 1)
	plan := plans[0]
	assert.Equal(t, models.CategoryDecoding, plan.Category)
	require.NotNil(t, plan.CategoryResultID)
	assert.Equal(t, result.ID, *plan.CategoryResultID)
	require.Len(t, plan.Questions, 2)
	for _, q := range plan.Questions {
		for _, c := range q.Choices {
			assert.NotEmpty(t, c.Description)
		}
	}
	assert.Equal(t, 2, env.progressOf(t, plan.ID).TotalActivities)

	// The seed questions are copied, not shared.
	assert.Empty(t, seed[models.CategoryDecoding][0].Choices[0].Description)
}

func TestBootstrap_HealsDuplicatePlansAndMissingProgress(t *testing.T) {
	env := newTestEnv(t)
	student := env.student(t)
	older := testutil.SeedPlan(t, env.ctx, env.db, student.ID, models.CategoryDecoding, models.PlanStatusActive)
	newer := testutil.SeedPlan(t, env.ctx, env.db, student.ID, models.CategoryDecoding, models.PlanStatusDraft,
		testutil.Question(models.QuestionTypeWord, "aso", "pusa"))
	testutil.SeedProgress(t, env.ctx, env.db, older)

	report, err := env.svc.Bootstrap.ReconcileAllStudents(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.PlansArchived)
	assert.Equal(t, 1, report.ProgressHealed)
	assert.Zero(t, report.PlansCreated, "a live plan already exists")

	plans := livePlans(t, env, student.ID)
	require.Len(t, plans, 1)
	assert.Equal(t, newer.ID, plans[0].ID)
	assert.Equal(t, models.PlanStatusArchived, env.reloadPlan(t, older.ID).Status)
	assert.Equal(t, 1, env.progressOf(t, newer.ID).TotalActivities)
}

func TestBootstrap_PagesThroughStudents(t *testing.T) {
	env := newTestEnv(t, withBatchSize(1))
	for i := 0; i < 3; i++ {
		env.student(t)
	}

	report, err := env.svc.Bootstrap.ReconcileAllStudents(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, report.StudentsScanned)
	assert.Equal(t, 3, report.ResultsCreated)
	assert.Equal(t, 3, report.PlansCreated)
}

func TestBootstrap_IsolatesStudentFailures(t *testing.T) {
	env := newTestEnv(t)
	first := env.student(t)
	broken := testutil.SeedStudent(t, env.ctx, env.db, "Grade 2", models.ReadingLevel("Fluent"))
	last := env.student(t)

	report, err := env.svc.Bootstrap.ReconcileAllStudents(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, report.StudentsScanned)
	assert.Equal(t, 2, report.PlansCreated)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, broken.ID, report.Failures[0].StudentID)
	assert.NotEmpty(t, report.Failures[0].Error)

	assert.Len(t, livePlans(t, env, first.ID), 1)
	assert.Len(t, livePlans(t, env, last.ID), 1)
	assert.Empty(t, livePlans(t, env, broken.ID))
}
