package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/abhisek/quizmaster/internal/quiz"
)

// Publisher publishes AttemptSubmitted events. It satisfies the session
// package's AttemptSubmitter.
type Publisher struct {
	pub   message.Publisher
	topic string
	log   logrus.FieldLogger
	now   func() time.Time
}

// NewPublisher publishes to topic on pub.
func NewPublisher(pub message.Publisher, topic string, log logrus.FieldLogger) *Publisher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if topic == "" {
		topic = DefaultTopic
	}
	return &Publisher{pub: pub, topic: topic, log: log, now: time.Now}
}

// SubmitAttempt publishes a. The attempt ID doubles as the idempotency
// key downstream, so one is assigned here when missing.
func (p *Publisher) SubmitAttempt(ctx context.Context, a quiz.Attempt) error {
	_, err := p.publish(ctx, a)
	return err
}

// publish sends a and returns the ID of the message carrying it.
func (p *Publisher) publish(ctx context.Context, a quiz.Attempt) (string, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	event := AttemptSubmitted{
		ID:        uuid.NewString(),
		Type:      TypeAttemptSubmitted,
		Version:   EventVersion,
		Timestamp: p.now().UTC(),
		Attempt:   a,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal attempt event: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("event_type", event.Type)
	msg.Metadata.Set("version", event.Version)
	msg.Metadata.Set("quiz_id", a.QuizID)
	msg.Metadata.Set("timestamp", event.Timestamp.Format(time.RFC3339))
	msg.SetContext(ctx)

	log := p.log.WithFields(logrus.Fields{
		"event_id":   event.ID,
		"attempt_id": a.ID,
		"topic":      p.topic,
	})
	if err := p.pub.Publish(p.topic, msg); err != nil {
		log.WithError(err).Error("failed to publish attempt")
		return "", fmt.Errorf("publish attempt: %w", err)
	}
	log.Debug("published attempt")
	return event.ID, nil
}

// NewGoChannel returns an in-process pub/sub. Publish blocks until the
// subscriber has acked, so a returned SubmitAttempt means the attempt was
// either recorded or dead-lettered.
func NewGoChannel(log logrus.FieldLogger) *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer:            16,
		BlockPublishUntilSubscriberAck: true,
	}, NewLoggerAdapter(log))
}

// NewKafkaPublisher connects a publisher to brokers.
func NewKafkaPublisher(brokers []string, log logrus.FieldLogger) (message.Publisher, error) {
	pub, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   brokers,
		Marshaler: kafka.DefaultMarshaler{},
	}, NewLoggerAdapter(log))
	if err != nil {
		return nil, fmt.Errorf("create kafka publisher: %w", err)
	}
	return pub, nil
}

// NewKafkaSubscriber joins consumerGroup on brokers.
func NewKafkaSubscriber(brokers []string, consumerGroup string, log logrus.FieldLogger) (message.Subscriber, error) {
	sub, err := kafka.NewSubscriber(kafka.SubscriberConfig{
		Brokers:               brokers,
		Unmarshaler:           kafka.DefaultMarshaler{},
		OverwriteSaramaConfig: kafka.DefaultSaramaSubscriberConfig(),
		ConsumerGroup:         consumerGroup,
	}, NewLoggerAdapter(log))
	if err != nil {
		return nil, fmt.Errorf("create kafka subscriber: %w", err)
	}
	return sub, nil
}
