package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
)

// CategoryResultMessage is the payload produced by the assessment scoring
// subsystem for every scored assessment.
type CategoryResultMessage struct {
	StudentID         uint                   `json:"student_id"`
	ExternalStudentID *int64                 `json:"external_student_id,omitempty"`
	AssessmentType    string                 `json:"assessment_type"`
	ReadingLevel      string                 `json:"reading_level,omitempty"`
	Categories        []CategoryScoreMessage `json:"categories"`
}

type CategoryScoreMessage struct {
	CategoryName     string `json:"category_name"`
	TotalQuestions   int    `json:"total_questions"`
	CorrectAnswers   int    `json:"correct_answers"`
	PassingThreshold int    `json:"passing_threshold,omitempty"`
}

// CategoryResultRecorder persists a result and runs the analysis cascade.
type CategoryResultRecorder interface {
	RecordCategoryResult(ctx context.Context, msg *CategoryResultMessage) error
}

// ConsumerConfig holds the dependencies of the category result consumer
type ConsumerConfig struct {
	Subscriber message.Subscriber
	Topic      string
	Recorder   CategoryResultRecorder
	// IsPermanent reports errors that redelivery cannot fix. Such messages
	// are acknowledged and dropped.
	IsPermanent func(error) bool
	MaxRetries  int
	Logger      *slog.Logger
}

// CategoryResultConsumer feeds category result messages into the recorder
type CategoryResultConsumer struct {
	router *message.Router
	config ConsumerConfig
	logger *slog.Logger
}

const categoryResultHandlerName = "category_result_cascade"

// NewCategoryResultConsumer builds a router with a single handler on the
// category result topic.
func NewCategoryResultConsumer(config ConsumerConfig) (*CategoryResultConsumer, error) {
	if config.IsPermanent == nil {
		config.IsPermanent = func(error) bool { return false }
	}

	router, err := message.NewRouter(message.RouterConfig{}, watermill.NewSlogLogger(config.Logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create message router: %w", err)
	}

	c := &CategoryResultConsumer{
		router: router,
		config: config,
		logger: config.Logger,
	}

	router.AddMiddleware(middleware.Recoverer)
	if config.MaxRetries > 0 {
		router.AddMiddleware(middleware.Retry{
			MaxRetries:      config.MaxRetries,
			InitialInterval: 100 * time.Millisecond,
			Multiplier:      2,
			Logger:          watermill.NewSlogLogger(config.Logger),
		}.Middleware)
	}

	router.AddNoPublisherHandler(categoryResultHandlerName, config.Topic, config.Subscriber, c.Handle)
	return c, nil
}

// Handle processes one message. Malformed payloads and permanent failures are
// acknowledged; anything else is returned so the message is redelivered.
func (c *CategoryResultConsumer) Handle(msg *message.Message) error {
	var payload CategoryResultMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		c.logger.Warn("Dropping malformed category result message",
			"message_uuid", msg.UUID,
			"error", err)
		return nil
	}

	if err := c.config.Recorder.RecordCategoryResult(msg.Context(), &payload); err != nil {
		if c.config.IsPermanent(err) {
			c.logger.Warn("Dropping rejected category result message",
				"message_uuid", msg.UUID,
				"student_id", payload.StudentID,
				"error", err)
			return nil
		}
		return fmt.Errorf("failed to record category result: %w", err)
	}

	c.logger.Info("Consumed category result message",
		"message_uuid", msg.UUID,
		"student_id", payload.StudentID)
	return nil
}

// Run blocks until ctx is cancelled or the router stops.
func (c *CategoryResultConsumer) Run(ctx context.Context) error {
	return c.router.Run(ctx)
}

// Running is closed once the router has started its handlers.
func (c *CategoryResultConsumer) Running() chan struct{} {
	return c.router.Running()
}

func (c *CategoryResultConsumer) Close() error {
	return c.router.Close()
}
