package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/intervention-service/internal/events"
	"github.com/SAP-F-2025/intervention-service/internal/models"
	"github.com/SAP-F-2025/intervention-service/internal/repositories"
	"github.com/SAP-F-2025/intervention-service/internal/validator"
)

type categoryResultService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	opLogger  *ServiceLogger
	validator *validator.Validator
	analyses  AnalysisService
	publisher events.EventPublisher
}

func NewCategoryResultService(
	repo repositories.Repository,
	logger *slog.Logger,
	validator *validator.Validator,
	analyses AnalysisService,
	publisher events.EventPublisher,
) CategoryResultService {
	return &categoryResultService{
		repo:      repo,
		logger:    logger,
		opLogger:  newOpLogger(logger, "category_result"),
		validator: validator,
		analyses:  analyses,
		publisher: publisher,
	}
}

// Record stores a scored assessment and runs the analysis cascade for it.
// The stored result is never rolled back: cascade failures are logged and
// reported in the result, not returned.
func (s *categoryResultService) Record(ctx context.Context, req *RecordCategoryResultRequest) (out *RecordCategoryResultResult, err error) {
	if req == nil {
		return nil, validationFailed("request", "request body is required", nil)
	}
	op := s.opLogger.WithOperation(ctx, "record_category_result", req.StudentID)
	defer func() {
		var id uint
		if out != nil && out.Result != nil {
			id = out.Result.ID
		}
		op.LogResult(id, "category_result", err)
	}()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	student, err := s.resolveStudent(ctx, req)
	if err != nil {
		return nil, err
	}

	scores, err := buildCategoryScores(req.Categories)
	if err != nil {
		return nil, err
	}

	level := models.ReadingLevel(req.ReadingLevel)
	if level == "" {
		level = student.CurrentReadingLevel()
	}

	result := &models.CategoryResult{
		StudentID:      student.ID,
		AssessmentType: models.AssessmentType(req.AssessmentType),
		ReadingLevel:   level,
		Categories:     scores,
	}
	result.ComputeDerived()

	if err := s.repo.CategoryResult().Create(ctx, result); err != nil {
		return nil, storeErr("create category result", err)
	}
	s.logger.Info("Category result recorded",
		"category_result_id", result.ID,
		"student_id", result.StudentID,
		"assessment_type", result.AssessmentType,
		"overall_score", result.OverallScore)

	publish(ctx, s.publisher, s.logger, events.NewCategoryResultRecordedEvent(result.StudentID, events.CategoryResultRecordedEvent{
		CategoryResultID:    result.ID,
		AssessmentType:      string(result.AssessmentType),
		OverallScore:        result.OverallScore,
		AllCategoriesPassed: result.AllCategoriesPassed,
	}))

	report, cascadeErr := s.analyses.RunCascade(ctx, result)
	if cascadeErr != nil {
		s.logger.Error("Analysis cascade incomplete",
			"category_result_id", result.ID,
			"student_id", result.StudentID,
			"error", cascadeErr)
	}

	return &RecordCategoryResultResult{Result: result, Cascade: report}, nil
}

// RecordCategoryResult adapts a broker message to Record.
func (s *categoryResultService) RecordCategoryResult(ctx context.Context, msg *events.CategoryResultMessage) error {
	if msg == nil {
		return validationFailed("message", "message is empty", nil)
	}
	req := &RecordCategoryResultRequest{
		StudentID:         msg.StudentID,
		ExternalStudentID: msg.ExternalStudentID,
		AssessmentType:    msg.AssessmentType,
		ReadingLevel:      msg.ReadingLevel,
		Categories:        make([]CategoryScoreRequest, 0, len(msg.Categories)),
	}
	for _, c := range msg.Categories {
		score := CategoryScoreRequest{
			CategoryName:   c.CategoryName,
			TotalQuestions: c.TotalQuestions,
			CorrectAnswers: c.CorrectAnswers,
		}
		if c.PassingThreshold > 0 {
			threshold := c.PassingThreshold
			score.PassingThreshold = &threshold
		}
		req.Categories = append(req.Categories, score)
	}
	_, err := s.Record(ctx, req)
	return err
}

func (s *categoryResultService) GetResult(ctx context.Context, id uint) (*models.CategoryResult, error) {
	result, err := s.repo.CategoryResult().GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr("get category result", err, ErrCategoryResultNotFound)
	}
	return result, nil
}

func (s *categoryResultService) ListStudentResults(ctx context.Context, studentID uint) ([]*models.CategoryResult, error) {
	exists, err := s.repo.Student().ExistsByID(ctx, studentID)
	if err != nil {
		return nil, storeErr("check student", err)
	}
	if !exists {
		return nil, ErrStudentNotFound
	}
	results, err := s.repo.CategoryResult().ListByStudent(ctx, studentID, repositories.CategoryResultFilters{})
	if err != nil {
		return nil, storeErr("list category results", err)
	}
	return results, nil
}

// MarkReadingLevelUpdated records that the student directory applied this
// result's reading level. It is the only mutation a stored result allows.
func (s *categoryResultService) MarkReadingLevelUpdated(ctx context.Context, id uint) (*models.CategoryResult, error) {
	if err := s.repo.CategoryResult().MarkReadingLevelUpdated(ctx, id); err != nil {
		return nil, lookupErr("mark reading level updated", err, ErrCategoryResultNotFound)
	}
	return s.GetResult(ctx, id)
}

// ===== HELPERS =====

func (s *categoryResultService) resolveStudent(ctx context.Context, req *RecordCategoryResultRequest) (*models.Student, error) {
	if req.StudentID == 0 {
		student, err := s.repo.Student().GetByExternalID(ctx, *req.ExternalStudentID)
		if err != nil {
			return nil, lookupErr("get student by external id", err, ErrStudentNotFound)
		}
		return student, nil
	}

	student, err := s.repo.Student().GetByID(ctx, req.StudentID)
	if err != nil {
		return nil, lookupErr("get student", err, ErrStudentNotFound)
	}
	if req.ExternalStudentID != nil && (student.ExternalID == nil || *student.ExternalID != *req.ExternalStudentID) {
		return nil, validationFailed("external_student_id", "external_student_id does not match student_id", *req.ExternalStudentID)
	}
	return student, nil
}

// buildCategoryScores canonicalizes category names and rejects duplicates and
// impossible counts.
func buildCategoryScores(reqs []CategoryScoreRequest) ([]models.CategoryScore, error) {
	scores := make([]models.CategoryScore, 0, len(reqs))
	seen := make(map[models.Category]bool, len(reqs))

	for i, r := range reqs {
		category, _ := models.NormalizeCategory(r.CategoryName)
		if seen[category] {
			return nil, validationFailed(fmt.Sprintf("categories[%d].category_name", i), "category appears more than once", r.CategoryName)
		}
		seen[category] = true

		if r.CorrectAnswers > r.TotalQuestions {
			return nil, validationFailed(fmt.Sprintf("categories[%d].correct_answers", i), "correct_answers cannot exceed total_questions", r.CorrectAnswers)
		}

		score := models.CategoryScore{
			CategoryName:   string(category),
			TotalQuestions: r.TotalQuestions,
			CorrectAnswers: r.CorrectAnswers,
		}
		if r.PassingThreshold != nil {
			score.PassingThreshold = *r.PassingThreshold
		}
		scores = append(scores, score)
	}
	return scores, nil
}
