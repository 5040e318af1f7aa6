package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/abhisek/quizmaster/internal/quiz"
)

// ErrProgressExists is returned by Start when a resumable snapshot exists
// and the caller chose neither resume nor restart.
var ErrProgressExists = errors.New("resumable progress exists for this quiz")

// ProgressStore persists session snapshots keyed by quiz id.
type ProgressStore interface {
	Save(ctx context.Context, s *Session) error
	Load(ctx context.Context, quizID string) (*Session, error)
	Clear(ctx context.Context, quizID string) error
}

// AttemptSubmitter receives the record of a submitted session.
type AttemptSubmitter interface {
	SubmitAttempt(ctx context.Context, a quiz.Attempt) error
}

// StartPolicy decides what happens when a snapshot already exists.
type StartPolicy int

const (
	// StartFresh refuses to start over an existing snapshot.
	StartFresh StartPolicy = iota

	// StartResume continues the existing snapshot, or starts fresh when
	// there is nothing to resume.
	StartResume

	// StartRestart discards the existing snapshot first.
	StartRestart
)

// Outcome reports what a dispatched action did beyond changing state.
type Outcome struct {
	// Submitted is set on the single dispatch that moved the session into
	// the submitted state.
	Submitted bool

	// Attempt is the record handed to the AttemptSubmitter.
	Attempt *quiz.Attempt

	// Warning carries a non-fatal failure, such as an attempt that could
	// not be submitted. The state transition stands regardless.
	Warning error
}

// Machine owns one live session. It runs actions through Reduce and
// performs the side effects: every change is written through to the
// progress store, and submission clears the snapshot and hands the
// attempt to the submitter exactly once.
//
// A Machine is not safe for concurrent use; the UI event loop is its
// only caller.
type Machine struct {
	state    Session
	store    ProgressStore
	attempts AttemptSubmitter
	log      logrus.FieldLogger
	now      func() time.Time
}

// MachineOption configures a Machine.
type MachineOption func(*Machine)

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) MachineOption {
	return func(m *Machine) { m.now = now }
}

// WithLogger sets the logger used for warnings.
func WithLogger(log logrus.FieldLogger) MachineOption {
	return func(m *Machine) { m.log = log }
}

// NewMachine wraps s. attempts may be nil when attempts are not recorded.
func NewMachine(s Session, store ProgressStore, attempts AttemptSubmitter, opts ...MachineOption) *Machine {
	m := &Machine{
		state:    s,
		store:    store,
		attempts: attempts,
		log:      logrus.StandardLogger(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Start creates or resumes the session for q according to policy and
// persists it. The store reports corrupt or expired snapshots as absent,
// so those always start fresh.
func Start(ctx context.Context, store ProgressStore, q *quiz.Quiz, opts Options, policy StartPolicy, now time.Time) (Session, error) {
	existing, err := store.Load(ctx, q.ID)
	if err != nil {
		return Session{}, fmt.Errorf("load progress: %w", err)
	}

	if existing != nil {
		switch policy {
		case StartResume:
			s := Resume(*existing)
			if err := store.Save(ctx, &s); err != nil {
				return Session{}, fmt.Errorf("save progress: %w", err)
			}
			return s, nil
		case StartRestart:
			if err := store.Clear(ctx, q.ID); err != nil {
				return Session{}, fmt.Errorf("clear progress: %w", err)
			}
		default:
			return Session{}, ErrProgressExists
		}
	}

	s := New(q, opts, now)
	if err := store.Save(ctx, &s); err != nil {
		return Session{}, fmt.Errorf("save progress: %w", err)
	}
	return s, nil
}

// State returns the current session value.
func (m *Machine) State() Session {
	return m.state
}

// Dispatch applies a. The returned error reports a persistence failure;
// the in-memory transition has happened even then.
func (m *Machine) Dispatch(ctx context.Context, a Action) (Outcome, error) {
	prev := m.state
	a = m.stamp(a)
	m.state = Reduce(prev, a)

	if prev.Status != StatusInProgress {
		return Outcome{}, nil
	}

	if m.state.Status == StatusSubmitted {
		return m.finish(ctx)
	}

	if err := m.store.Save(ctx, &m.state); err != nil {
		return Outcome{}, fmt.Errorf("save progress: %w", err)
	}
	return Outcome{}, nil
}

// finish runs the submission side effects. Clearing the snapshot and
// recording the attempt are both best effort.
func (m *Machine) finish(ctx context.Context) (Outcome, error) {
	s := m.state
	out := Outcome{Submitted: true}

	var err error
	if cerr := m.store.Clear(ctx, s.QuizID); cerr != nil {
		err = fmt.Errorf("clear progress: %w", cerr)
	}

	attempt := AttemptFor(s, uuid.NewString(), m.now())
	out.Attempt = &attempt

	if m.attempts != nil {
		if serr := m.attempts.SubmitAttempt(ctx, attempt); serr != nil {
			m.log.WithError(serr).WithFields(logrus.Fields{
				"quiz_id":    s.QuizID,
				"attempt_id": attempt.ID,
			}).Warn("attempt submission failed")
			out.Warning = fmt.Errorf("attempt was not recorded: %w", serr)
		}
	}
	return out, err
}

func (m *Machine) stamp(a Action) Action {
	switch a := a.(type) {
	case Tick:
		if a.At.IsZero() {
			a.At = m.now()
		}
		return a
	case Submit:
		if a.At.IsZero() {
			a.At = m.now()
		}
		return a
	}
	return a
}

// AttemptFor builds the attempt record of a submitted session.
func AttemptFor(s Session, id string, at time.Time) quiz.Attempt {
	a := quiz.Attempt{
		ID:        id,
		QuizID:    s.QuizID,
		Answers:   s.Answers,
		StudyMode: s.StudyMode,
		Timed:     s.Timer.Enabled,
		MaxStreak: s.MaxStreak,
		CreatedAt: at,
	}
	for i := range s.Questions {
		if !quiz.IsCorrect(&s.Questions[i], s.Answers[i]) {
			a.Missed = append(a.Missed, s.Questions[i])
		}
	}
	if s.Result != nil {
		a.Score = s.Result.Score
		a.Total = s.Result.Total
		a.Percentage = s.Result.Percentage
		a.TimeTakenSeconds = s.Result.TimeTakenSeconds
	}
	return a
}
