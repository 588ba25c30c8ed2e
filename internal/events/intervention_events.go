package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the intervention events published by this service
type EventType string

const (
	// Plan lifecycle events
	EventPlanCreated    EventType = "intervention_plan.created"
	EventPlanSuperseded EventType = "intervention_plan.superseded"
	EventPlanCompleted  EventType = "intervention_plan.completed"

	// Assessment and analysis events
	EventCategoryResultRecorded EventType = "category_result.recorded"
	EventCascadeCompleted       EventType = "prescriptive_analysis.cascade_completed"
)

const (
	eventSource  = "intervention-service"
	eventVersion = "1.0"
)

// Event is the envelope of every published event
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	StudentID uint                   `json:"student_id"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Event payloads

type PlanCreatedEvent struct {
	PlanID            uint   `json:"plan_id"`
	Category          string `json:"category"`
	Status            string `json:"status"`
	TotalActivities   int    `json:"total_activities"`
	SupersededPlanIDs []uint `json:"superseded_plan_ids,omitempty"`
}

type PlanSupersededEvent struct {
	PlanID       uint   `json:"plan_id"`
	Category     string `json:"category"`
	SupersededBy uint   `json:"superseded_by,omitempty"`
}

type PlanCompletedEvent struct {
	PlanID          uint      `json:"plan_id"`
	Category        string    `json:"category"`
	PercentCorrect  int       `json:"percent_correct"`
	PassedThreshold bool      `json:"passed_threshold"`
	CompletedAt     time.Time `json:"completed_at"`
}

type CategoryResultRecordedEvent struct {
	CategoryResultID    uint    `json:"category_result_id"`
	AssessmentType      string  `json:"assessment_type"`
	OverallScore        float64 `json:"overall_score"`
	AllCategoriesPassed bool    `json:"all_categories_passed"`
}

type CascadeCompletedEvent struct {
	CategoryResultID uint     `json:"category_result_id"`
	Analyses         int      `json:"analyses"`
	Populated        int      `json:"populated"`
	FailedSteps      []string `json:"failed_steps,omitempty"`
}

// Event constructors

func newEvent(eventType EventType, studentID uint, data interface{}) *Event {
	return &Event{
		ID:        GenerateEventID(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		StudentID: studentID,
		Data:      data,
	}
}

func NewPlanCreatedEvent(studentID uint, payload PlanCreatedEvent) *Event {
	return newEvent(EventPlanCreated, studentID, payload)
}

func NewPlanSupersededEvent(studentID uint, payload PlanSupersededEvent) *Event {
	return newEvent(EventPlanSuperseded, studentID, payload)
}

func NewPlanCompletedEvent(studentID uint, payload PlanCompletedEvent) *Event {
	return newEvent(EventPlanCompleted, studentID, payload)
}

func NewCategoryResultRecordedEvent(studentID uint, payload CategoryResultRecordedEvent) *Event {
	return newEvent(EventCategoryResultRecorded, studentID, payload)
}

func NewCascadeCompletedEvent(studentID uint, payload CascadeCompletedEvent) *Event {
	return newEvent(EventCascadeCompleted, studentID, payload)
}

// GenerateEventID returns a random event id
func GenerateEventID() string {
	return uuid.NewString()
}
