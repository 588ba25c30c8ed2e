package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/intervention-service/internal/events"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// EventConfig holds configuration for event publishing and consumption
type EventConfig struct {
	Enabled             bool   `env:"EVENTS_ENABLED" envDefault:"true"`
	Publisher           string `env:"EVENTS_PUBLISHER" envDefault:"kafka"` // kafka or mock
	KafkaBrokers        string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	InterventionTopic   string `env:"INTERVENTION_TOPIC" envDefault:"intervention-events"`
	CategoryResultTopic string `env:"CATEGORY_RESULT_TOPIC" envDefault:"category-results"`
	ConsumerGroup       string `env:"KAFKA_CONSUMER_GROUP" envDefault:"intervention-service"`
	ConsumerMaxRetries  int    `env:"CONSUMER_MAX_RETRIES" envDefault:"3"`
}

func loadEventConfig() (EventConfig, error) {
	enabled, err := getBool("EVENTS_ENABLED", true)
	if err != nil {
		return EventConfig{}, err
	}
	retries, err := getInt("CONSUMER_MAX_RETRIES", 3)
	if err != nil {
		return EventConfig{}, err
	}
	return EventConfig{
		Enabled:             enabled,
		Publisher:           getEnv("EVENTS_PUBLISHER", "kafka"),
		KafkaBrokers:        getEnv("KAFKA_BROKERS", "localhost:9092"),
		InterventionTopic:   getEnv("INTERVENTION_TOPIC", "intervention-events"),
		CategoryResultTopic: getEnv("CATEGORY_RESULT_TOPIC", "category-results"),
		ConsumerGroup:       getEnv("KAFKA_CONSUMER_GROUP", "intervention-service"),
		ConsumerMaxRetries:  retries,
	}, nil
}

// GetKafkaBrokers returns Kafka brokers as a slice
func (c *EventConfig) GetKafkaBrokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func (c *EventConfig) usesKafka() bool {
	return c.Enabled && c.Publisher == "kafka"
}

// CreateEventPublisher creates an event publisher based on configuration
func (c *EventConfig) CreateEventPublisher(logger *slog.Logger) (events.EventPublisher, error) {
	if !c.Enabled {
		logger.Info("Event publishing disabled, using mock publisher")
		return events.NewMockEventPublisher(logger), nil
	}

	switch c.Publisher {
	case "kafka":
		logger.Info("Creating Kafka event publisher",
			"brokers", c.KafkaBrokers,
			"topic", c.InterventionTopic)

		return events.NewKafkaEventPublisher(events.PublisherConfig{
			KafkaBrokers: c.GetKafkaBrokers(),
			TopicName:    c.InterventionTopic,
			Logger:       logger,
		})
	case "mock":
		logger.Info("Using mock event publisher")
		return events.NewMockEventPublisher(logger), nil
	default:
		logger.Warn("Unknown event publisher type, falling back to mock", "publisher", c.Publisher)
		return events.NewMockEventPublisher(logger), nil
	}
}

// CreateCategoryResultSubscriber subscribes to the category result topic.
// Without Kafka an in-process channel is returned, which other components
// in the same process can publish to.
func (c *EventConfig) CreateCategoryResultSubscriber(logger *slog.Logger) (message.Subscriber, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	if !c.usesKafka() {
		logger.Info("Using in-process category result channel", "topic", c.CategoryResultTopic)
		return gochannel.NewGoChannel(gochannel.Config{}, wmLogger), nil
	}

	logger.Info("Creating Kafka category result subscriber",
		"brokers", c.KafkaBrokers,
		"topic", c.CategoryResultTopic,
		"consumer_group", c.ConsumerGroup)

	subscriber, err := kafka.NewSubscriber(kafka.SubscriberConfig{
		Brokers:               c.GetKafkaBrokers(),
		Unmarshaler:           kafka.DefaultMarshaler{},
		OverwriteSaramaConfig: kafka.DefaultSaramaSubscriberConfig(),
		ConsumerGroup:         c.ConsumerGroup,
	}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka subscriber: %w", err)
	}
	return subscriber, nil
}
