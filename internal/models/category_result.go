package models

import (
	"time"

	"gorm.io/datatypes"
)

// CategoryScore is one category's slice of an assessment result.
type CategoryScore struct {
	CategoryName     string  `json:"category_name"`
	TotalQuestions   int     `json:"total_questions"`
	CorrectAnswers   int     `json:"correct_answers"`
	Score            float64 `json:"score"`
	IsPassed         bool    `json:"is_passed"`
	PassingThreshold int     `json:"passing_threshold"`
}

// Assessed reports whether the score comes from real answers rather than a
// zeroed placeholder.
func (c CategoryScore) Assessed() bool {
	return c.TotalQuestions > 0
}

// CategoryResult is one assessment event for a student. Rows are immutable
// after creation apart from ReadingLevelUpdated.
type CategoryResult struct {
	ID                  uint                               `json:"id" gorm:"primaryKey"`
	StudentID           uint                               `json:"student_id" gorm:"not null;index"`
	AssessmentType      AssessmentType                     `json:"assessment_type" gorm:"size:30;not null;index"`
	ReadingLevel        ReadingLevel                       `json:"reading_level" gorm:"size:50"`
	Categories          datatypes.JSONSlice[CategoryScore] `json:"categories"`
	OverallScore        float64                            `json:"overall_score"`
	AllCategoriesPassed bool                               `json:"all_categories_passed" gorm:"default:false"`
	ReadingLevelUpdated bool                               `json:"reading_level_updated" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CategoryResult) TableName() string {
	return "category_results"
}

// ComputeDerived fills per-category score/isPassed and the overall fields
// from the raw answer counts.
func (r *CategoryResult) ComputeDerived() {
	totalQuestions, totalCorrect := 0, 0
	allPassed := len(r.Categories) > 0
	for i := range r.Categories {
		c := &r.Categories[i]
		if c.PassingThreshold <= 0 {
			c.PassingThreshold = DefaultPassThreshold
		}
		c.Score = float64(RoundPercent(c.CorrectAnswers, c.TotalQuestions))
		c.IsPassed = c.Assessed() && c.Score >= float64(c.PassingThreshold)
		if !c.IsPassed {
			allPassed = false
		}
		totalQuestions += c.TotalQuestions
		totalCorrect += c.CorrectAnswers
	}
	r.OverallScore = float64(RoundPercent(totalCorrect, totalQuestions))
	r.AllCategoriesPassed = allPassed
}

// ScoreFor returns the score recorded for category, matching names loosely.
func (r *CategoryResult) ScoreFor(category Category) (CategoryScore, bool) {
	for _, c := range r.Categories {
		if got, ok := NormalizeCategory(c.CategoryName); ok && got == category {
			return c, true
		}
	}
	return CategoryScore{}, false
}

// WeakestCategory returns the assessed category with the lowest score.
func (r *CategoryResult) WeakestCategory() (Category, bool) {
	var (
		weakest Category
		best    = -1.0
	)
	for _, c := range r.Categories {
		cat, ok := NormalizeCategory(c.CategoryName)
		if !ok || !c.Assessed() {
			continue
		}
		if best < 0 || c.Score < best {
			weakest, best = cat, c.Score
		}
	}
	return weakest, best >= 0
}

// NewShellCategoryResult builds the zeroed placeholder result used when a
// student has never been assessed.
func NewShellCategoryResult(studentID uint, level ReadingLevel) *CategoryResult {
	scores := make([]CategoryScore, 0, len(Categories()))
	for _, c := range Categories() {
		scores = append(scores, CategoryScore{
			CategoryName:     string(c),
			PassingThreshold: DefaultPassThreshold,
		})
	}
	return &CategoryResult{
		StudentID:           studentID,
		AssessmentType:      AssessmentPre,
		ReadingLevel:        level,
		Categories:          scores,
		AllCategoriesPassed: false,
	}
}
