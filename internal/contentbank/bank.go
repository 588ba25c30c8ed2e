// Package contentbank holds the static text used to populate prescriptive
// analyses and default answer-choice feedback. Engine code depends only on
// the Bank interface so the tables can be swapped without touching it.
package contentbank

import (
	"fmt"

	"github.com/SAP-F-2025/intervention-service/internal/models"
)

// Band is a coarse score bucket used to select analysis text.
type Band string

const (
	BandUnscored   Band = "unscored"
	BandEmerging   Band = "emerging"
	BandDeveloping Band = "developing"
	BandProficient Band = "proficient"
)

const (
	proficientFrom = 75.0
	developingFrom = 50.0
)

// BandForScore buckets a 0-100 score. Unassessed scores map to BandUnscored.
func BandForScore(score float64, assessed bool) Band {
	switch {
	case !assessed:
		return BandUnscored
	case score >= proficientFrom:
		return BandProficient
	case score >= developingFrom:
		return BandDeveloping
	default:
		return BandEmerging
	}
}

// Bank supplies analysis content and choice feedback.
type Bank interface {
	// Analysis returns content for a known category and score band.
	Analysis(category models.Category, band Band) models.AnalysisContent
	// GenericAnalysis is used for category ids outside the taxonomy.
	GenericAnalysis(band Band) models.AnalysisContent
	// ChoiceFeedback returns the default description of an answer choice.
	ChoiceFeedback(questionType models.QuestionType, optionText string, isCorrect bool) string
}

type staticBank struct {
	analyses map[models.Category]map[Band]models.AnalysisContent
	generic  map[Band]models.AnalysisContent
	hints    map[models.QuestionType]string
}

// Default returns the built-in tables.
func Default() Bank {
	return &staticBank{
		analyses: categoryAnalyses,
		generic:  genericAnalyses,
		hints:    incorrectHints,
	}
}

func (b *staticBank) Analysis(category models.Category, band Band) models.AnalysisContent {
	if byBand, ok := b.analyses[category]; ok {
		if content, ok := byBand[band]; ok {
			return cloneContent(content)
		}
	}
	return b.GenericAnalysis(band)
}

func (b *staticBank) GenericAnalysis(band Band) models.AnalysisContent {
	if content, ok := b.generic[band]; ok {
		return cloneContent(content)
	}
	return cloneContent(b.generic[BandUnscored])
}

func (b *staticBank) ChoiceFeedback(questionType models.QuestionType, optionText string, isCorrect bool) string {
	if isCorrect {
		return fmt.Sprintf("Correct! \"%s\" is the right answer.", optionText)
	}
	switch questionType {
	case models.QuestionTypePatinig,
		models.QuestionTypeKatinig,
		models.QuestionTypeMalapantig,
		models.QuestionTypeWord,
		models.QuestionTypeSentence:
		return b.hints[questionType]
	default:
		return b.hints[models.QuestionTypeOther]
	}
}

func cloneContent(c models.AnalysisContent) models.AnalysisContent {
	return models.AnalysisContent{
		Strengths:       append([]string(nil), c.Strengths...),
		Weaknesses:      append([]string(nil), c.Weaknesses...),
		Recommendations: append([]string(nil), c.Recommendations...),
	}
}
