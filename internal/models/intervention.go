package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

type PlanStatus string

const (
	PlanStatusDraft     PlanStatus = "draft"
	PlanStatusActive    PlanStatus = "active"
	PlanStatusCompleted PlanStatus = "completed"
	PlanStatusArchived  PlanStatus = "archived"
)

func (s PlanStatus) IsValid() bool {
	switch s {
	case PlanStatusDraft, PlanStatusActive, PlanStatusCompleted, PlanStatusArchived:
		return true
	}
	return false
}

// Choice is one answer option of a plan question.
type Choice struct {
	OptionText  string `json:"option_text"`
	IsCorrect   bool   `json:"is_correct"`
	Description string `json:"description,omitempty"`
}

// Question is one remediation activity inside a plan.
type Question struct {
	ID            string       `json:"id"`
	QuestionType  QuestionType `json:"question_type"`
	QuestionText  string       `json:"question_text"`
	QuestionImage *string      `json:"question_image,omitempty"`
	QuestionValue *string      `json:"question_value,omitempty"`
	Choices       []Choice     `json:"choices"`
}

// FindChoice matches selected against the option texts, ignoring surrounding
// whitespace and case.
func (q *Question) FindChoice(selected string) (*Choice, bool) {
	want := strings.TrimSpace(selected)
	for i := range q.Choices {
		if strings.EqualFold(strings.TrimSpace(q.Choices[i].OptionText), want) {
			return &q.Choices[i], true
		}
	}
	return nil, false
}

// InterventionPlan is an ordered set of remediation questions for one
// student and category. At most one non-archived plan exists per pair.
type InterventionPlan struct {
	ID                     uint                          `json:"id" gorm:"primaryKey"`
	StudentID              uint                          `json:"student_id" gorm:"not null;index:idx_plan_student_category"`
	PrescriptiveAnalysisID *uint                         `json:"prescriptive_analysis_id" gorm:"index"`
	CategoryResultID       *uint                         `json:"category_result_id" gorm:"index"`
	Name                   string                        `json:"name" gorm:"size:200"`
	Category               Category                      `json:"category" gorm:"size:100;not null;index:idx_plan_student_category"`
	Description            string                        `json:"description" gorm:"type:text"`
	ReadingLevel           ReadingLevel                  `json:"reading_level" gorm:"size:50"`
	PassThreshold          int                           `json:"pass_threshold" gorm:"not null"`
	Questions              datatypes.JSONSlice[Question] `json:"questions"`
	Status                 PlanStatus                    `json:"status" gorm:"size:20;not null;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (InterventionPlan) TableName() string {
	return "intervention_plans"
}

// TotalActivities is fixed by the question list; response history never changes it.
func (p *InterventionPlan) TotalActivities() int {
	return len(p.Questions)
}

func (p *InterventionPlan) IsArchived() bool {
	return p.Status == PlanStatusArchived
}

func (p *InterventionPlan) FindQuestion(id string) (*Question, bool) {
	for i := range p.Questions {
		if p.Questions[i].ID == id {
			return &p.Questions[i], true
		}
	}
	return nil, false
}

// InterventionProgress holds the derived counters of exactly one plan.
type InterventionProgress struct {
	ID                  uint       `json:"id" gorm:"primaryKey"`
	StudentID           uint       `json:"student_id" gorm:"not null;index"`
	InterventionPlanID  uint       `json:"intervention_plan_id" gorm:"not null;uniqueIndex"`
	CompletedActivities int        `json:"completed_activities" gorm:"not null;default:0"`
	TotalActivities     int        `json:"total_activities" gorm:"not null;default:0"`
	PercentComplete     int        `json:"percent_complete" gorm:"not null;default:0"`
	CorrectAnswers      int        `json:"correct_answers" gorm:"not null;default:0"`
	IncorrectAnswers    int        `json:"incorrect_answers" gorm:"not null;default:0"`
	PercentCorrect      int        `json:"percent_correct" gorm:"not null;default:0"`
	PassedThreshold     bool       `json:"passed_threshold" gorm:"not null;default:false"`
	LastActivity        *time.Time `json:"last_activity"`
	Notes               string     `json:"notes" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (InterventionProgress) TableName() string {
	return "intervention_progress"
}

// IsComplete is true once every activity has a recorded response. Re-answers
// are counted, so the percentage can overshoot 100.
func (p *InterventionProgress) IsComplete() bool {
	return p.TotalActivities > 0 && p.PercentComplete >= 100
}

// NewProgressForPlan seeds a zeroed progress row sized to the plan.
func NewProgressForPlan(plan *InterventionPlan) *InterventionProgress {
	return &InterventionProgress{
		StudentID:          plan.StudentID,
		InterventionPlanID: plan.ID,
		TotalActivities:    plan.TotalActivities(),
	}
}

// InterventionResponse is an append-only record of one answered question.
type InterventionResponse struct {
	ID                  uint    `json:"id" gorm:"primaryKey"`
	StudentID           uint    `json:"student_id" gorm:"not null;index"`
	InterventionPlanID  uint    `json:"intervention_plan_id" gorm:"not null;index"`
	QuestionID          string  `json:"question_id" gorm:"size:64;not null"`
	SelectedChoice      string  `json:"selected_choice" gorm:"type:text"`
	IsCorrect           bool    `json:"is_correct"`
	ResponseTime        float64 `json:"response_time"`
	FeedbackDescription *string `json:"feedback_description,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
}

func (InterventionResponse) TableName() string {
	return "intervention_responses"
}

// All lists every model owned by this service, in migration order.
func All() []interface{} {
	return []interface{}{
		&Student{},
		&CategoryResult{},
		&PrescriptiveAnalysis{},
		&InterventionPlan{},
		&InterventionProgress{},
		&InterventionResponse{},
	}
}
