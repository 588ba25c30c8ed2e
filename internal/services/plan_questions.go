package services

import (
	"fmt"
	"strings"

	"github.com/SAP-F-2025/intervention-service/internal/contentbank"
	"github.com/SAP-F-2025/intervention-service/internal/models"
	"github.com/google/uuid"
)

// buildQuestions turns request questions into plan questions. Missing ids are
// generated; duplicate ids are rejected because responses address questions by id.
func buildQuestions(reqs []QuestionRequest) ([]models.Question, error) {
	questions := make([]models.Question, 0, len(reqs))
	seen := make(map[string]int, len(reqs))

	for i, r := range reqs {
		id := strings.TrimSpace(r.ID)
		if id == "" {
			id = uuid.NewString()
		}
		if prev, dup := seen[id]; dup {
			return nil, validationFailed(
				fmt.Sprintf("questions[%d].id", i),
				fmt.Sprintf("question id duplicates questions[%d]", prev),
				id)
		}
		seen[id] = i

		choices := make([]models.Choice, 0, len(r.Choices))
		for _, c := range r.Choices {
			choices = append(choices, models.Choice{
				OptionText:  strings.TrimSpace(c.OptionText),
				IsCorrect:   c.IsCorrect,
				Description: strings.TrimSpace(c.Description),
			})
		}

		questions = append(questions, models.Question{
			ID:            id,
			QuestionType:  models.QuestionType(strings.ToLower(strings.TrimSpace(r.QuestionType))),
			QuestionText:  r.QuestionText,
			QuestionImage: r.QuestionImage,
			QuestionValue: r.QuestionValue,
			Choices:       choices,
		})
	}
	return questions, nil
}

// questionRequests is the inverse of buildQuestions, used to seed plans from
// stored questions.
func questionRequests(questions []models.Question) []QuestionRequest {
	reqs := make([]QuestionRequest, 0, len(questions))
	for _, q := range questions {
		choices := make([]ChoiceRequest, 0, len(q.Choices))
		for _, c := range q.Choices {
			choices = append(choices, ChoiceRequest{
				OptionText:  c.OptionText,
				IsCorrect:   c.IsCorrect,
				Description: c.Description,
			})
		}
		reqs = append(reqs, QuestionRequest{
			ID:            q.ID,
			QuestionType:  string(q.QuestionType),
			QuestionText:  q.QuestionText,
			QuestionImage: q.QuestionImage,
			QuestionValue: q.QuestionValue,
			Choices:       choices,
		})
	}
	return reqs
}

// fillChoiceFeedback writes the default feedback into every choice that has
// no description and returns how many it filled.
func fillChoiceFeedback(bank contentbank.Bank, questions []models.Question) int {
	filled := 0
	for qi := range questions {
		q := &questions[qi]
		questionType := models.ParseQuestionType(string(q.QuestionType))
		for ci := range q.Choices {
			c := &q.Choices[ci]
			if strings.TrimSpace(c.Description) != "" {
				continue
			}
			c.Description = bank.ChoiceFeedback(questionType, c.OptionText, c.IsCorrect)
			filled++
		}
	}
	return filled
}

// cloneQuestions deep-copies questions so feedback can be filled without
// mutating a shared slice.
func cloneQuestions(questions []models.Question) []models.Question {
	out := make([]models.Question, len(questions))
	for i, q := range questions {
		q.Choices = append([]models.Choice(nil), q.Choices...)
		out[i] = q
	}
	return out
}
