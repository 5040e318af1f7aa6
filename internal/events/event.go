// Package events carries submitted attempts from the quiz runner to the
// store over a watermill pub/sub.
package events

import (
	"time"

	"github.com/abhisek/quizmaster/internal/quiz"
)

// TypeAttemptSubmitted is the event type of an AttemptSubmitted.
const TypeAttemptSubmitted = "attempt.submitted"

// EventVersion is the payload version of every event published here.
const EventVersion = "1"

// DefaultTopic is the topic attempts are published to when none is
// configured.
const DefaultTopic = "quizmaster.attempts"

// AttemptSubmitted is published once per submitted session.
type AttemptSubmitted struct {
	ID        string       `json:"id"`
	Type      string       `json:"type"`
	Version   string       `json:"version"`
	Timestamp time.Time    `json:"timestamp"`
	Attempt   quiz.Attempt `json:"attempt"`
}
