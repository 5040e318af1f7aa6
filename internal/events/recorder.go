package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/sirupsen/logrus"

	"github.com/abhisek/quizmaster/internal/quiz"
)

// AttemptStore persists attempts. Implementations must treat a repeated
// attempt ID as a no-op, since delivery is at least once.
type AttemptStore interface {
	SubmitAttempt(ctx context.Context, a quiz.Attempt) error
}

// Recorder consumes AttemptSubmitted events and writes them to a store.
type Recorder struct {
	store AttemptStore
	log   logrus.FieldLogger
}

// NewRecorder returns a Recorder writing to store.
func NewRecorder(store AttemptStore, log logrus.FieldLogger) *Recorder {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Recorder{store: store, log: log}
}

// Handle records one message. Malformed payloads are logged and acked so
// they are not redelivered forever; store failures are returned for retry.
func (r *Recorder) Handle(msg *message.Message) error {
	log := r.log.WithField("message_uuid", msg.UUID)

	var event AttemptSubmitted
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		log.WithError(err).Error("dropping malformed attempt event")
		return nil
	}
	if event.Type != TypeAttemptSubmitted {
		log.WithField("type", event.Type).Warn("dropping event of unexpected type")
		return nil
	}

	if err := r.store.SubmitAttempt(msg.Context(), event.Attempt); err != nil {
		return fmt.Errorf("record attempt %s: %w", event.Attempt.ID, err)
	}
	log.WithFields(logrus.Fields{
		"attempt_id": event.Attempt.ID,
		"quiz_id":    event.Attempt.QuizID,
		"missed":     len(event.Attempt.Missed),
	}).Info("recorded attempt")
	return nil
}

// PoisonTopic is where attempts that still fail after retries are
// published for topic.
func PoisonTopic(topic string) string {
	if topic == "" {
		topic = DefaultTopic
	}
	return topic + ".poison"
}

// NewRouter returns a router that feeds topic on sub to rec. Failed
// handlers are retried with backoff. A message that still fails is
// published to PoisonTopic on poison and acked, so it is never
// redelivered forever. With a nil poison publisher it is nacked instead.
func NewRouter(sub message.Subscriber, topic string, rec *Recorder, poison message.Publisher, log logrus.FieldLogger) (*message.Router, error) {
	if topic == "" {
		topic = DefaultTopic
	}
	logger := NewLoggerAdapter(log)

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 5 * time.Second}, logger)
	if err != nil {
		return nil, fmt.Errorf("create router: %w", err)
	}
	if poison != nil {
		pq, err := middleware.PoisonQueue(poison, PoisonTopic(topic))
		if err != nil {
			return nil, fmt.Errorf("create poison queue: %w", err)
		}
		router.AddMiddleware(pq)
	}
	router.AddMiddleware(
		middleware.Retry{
			MaxRetries:      3,
			InitialInterval: 100 * time.Millisecond,
			MaxInterval:     time.Second,
			Multiplier:      2,
			Logger:          logger,
		}.Middleware,
		middleware.Recoverer,
	)
	router.AddNoPublisherHandler("record_attempt", topic, sub, rec.Handle)
	return router, nil
}
