package models

import (
	"time"

	"gorm.io/datatypes"
)

// PrescriptiveAnalysis holds the educator-facing strengths, weaknesses and
// recommendations for one (student, category) pair. CategoryID is free text;
// compare it through NormalizeCategory.
type PrescriptiveAnalysis struct {
	ID              uint                        `json:"id" gorm:"primaryKey"`
	StudentID       uint                        `json:"student_id" gorm:"not null;uniqueIndex:idx_analysis_student_category"`
	CategoryID      string                      `json:"category_id" gorm:"size:100;not null;uniqueIndex:idx_analysis_student_category"`
	ReadingLevel    ReadingLevel                `json:"reading_level" gorm:"size:50"`
	Strengths       datatypes.JSONSlice[string] `json:"strengths"`
	Weaknesses      datatypes.JSONSlice[string] `json:"weaknesses"`
	Recommendations datatypes.JSONSlice[string] `json:"recommendations"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PrescriptiveAnalysis) TableName() string {
	return "prescriptive_analyses"
}

// IsEmpty reports whether any of the three lists is missing or empty.
func (a *PrescriptiveAnalysis) IsEmpty() bool {
	return len(a.Strengths) == 0 || len(a.Weaknesses) == 0 || len(a.Recommendations) == 0
}

// Category resolves CategoryID against the taxonomy.
func (a *PrescriptiveAnalysis) Category() (Category, bool) {
	return NormalizeCategory(a.CategoryID)
}

// AnalysisContent is the text derived for one analysis.
type AnalysisContent struct {
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	Recommendations []string `json:"recommendations"`
}

// FillEmpty copies content into the lists that are still empty and reports
// whether anything changed. Non-empty lists are never touched.
func (a *PrescriptiveAnalysis) FillEmpty(content AnalysisContent) bool {
	changed := false
	if len(a.Strengths) == 0 && len(content.Strengths) > 0 {
		a.Strengths = append(datatypes.JSONSlice[string]{}, content.Strengths...)
		changed = true
	}
	if len(a.Weaknesses) == 0 && len(content.Weaknesses) > 0 {
		a.Weaknesses = append(datatypes.JSONSlice[string]{}, content.Weaknesses...)
		changed = true
	}
	if len(a.Recommendations) == 0 && len(content.Recommendations) > 0 {
		a.Recommendations = append(datatypes.JSONSlice[string]{}, content.Recommendations...)
		changed = true
	}
	return changed
}

// Replace overwrites all three lists.
func (a *PrescriptiveAnalysis) Replace(content AnalysisContent) {
	a.Strengths = append(datatypes.JSONSlice[string]{}, content.Strengths...)
	a.Weaknesses = append(datatypes.JSONSlice[string]{}, content.Weaknesses...)
	a.Recommendations = append(datatypes.JSONSlice[string]{}, content.Recommendations...)
}
