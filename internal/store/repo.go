package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/quizmaster/internal/quiz"
	"github.com/abhisek/quizmaster/internal/spacedrep"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrQuizNotFound is returned when no quiz matches an id.
	ErrQuizNotFound = fmt.Errorf("quiz %w", ErrNotFound)
)

// Backend is the collaborator contract the quiz runner and review flow
// depend on. *Store satisfies it locally.
type Backend interface {
	FetchQuiz(ctx context.Context, id string) (*quiz.Quiz, error)
	SaveQuiz(ctx context.Context, req quiz.SaveRequest) (string, error)
	SubmitAttempt(ctx context.Context, a quiz.Attempt) error
	SubmitReview(ctx context.Context, cardID string, rating spacedrep.Rating) error
	DueCards(ctx context.Context, now time.Time, limit int) ([]spacedrep.Card, error)
}

var _ Backend = (*Store)(nil)

// QuizSummary is one row of the quiz library listing.
type QuizSummary struct {
	ID            string
	Title         string
	Description   string
	QuestionCount int
	IsPublic      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLM request event.
type LLMRequestEvent struct {
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To

	// Purpose keeps only events recorded for this purpose.
	Purpose string
}

// EventRepo provides append access to domain events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMRequests returns recorded LLM calls, newest first.
	QueryLLMRequests(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)
}
