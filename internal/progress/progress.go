// Package progress persists resumable quiz sessions.
//
// Snapshots are stored as JSON blobs keyed by quiz id in a swappable
// Backend. The Store adapter owns the lifecycle rules: a snapshot expires
// RetentionWindow after its session started, and any entry that is
// expired, unparsable or structurally invalid is deleted the moment it is
// read, so it can never be resurrected.
package progress

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/quizmaster/internal/session"
)

// RetentionWindow is how long a snapshot stays resumable, measured from
// the session's start.
const RetentionWindow = 7 * 24 * time.Hour

// Backend stores raw snapshot blobs keyed by quiz id.
type Backend interface {
	// Put stores data under quizID, replacing any previous entry.
	Put(ctx context.Context, quizID string, data []byte) error

	// Get returns the blob for quizID, or nil if there is none.
	Get(ctx context.Context, quizID string) ([]byte, error)

	// All returns every stored blob keyed by quiz id.
	All(ctx context.Context) (map[string][]byte, error)

	// Delete removes the entry for quizID. Deleting a missing entry is not
	// an error.
	Delete(ctx context.Context, quizID string) error
}

// Store is the progress store adapter. It is safe for concurrent use.
type Store struct {
	backend   Backend
	log       logrus.FieldLogger
	now       func() time.Time
	retention time.Duration

	mu     sync.Mutex
	active string
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the wall clock used for expiry and SavedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger used to report discarded snapshots.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Store) { s.log = log }
}

// New returns a Store over backend.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend:   backend,
		log:       logrus.StandardLogger(),
		now:       time.Now,
		retention: RetentionWindow,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Save stamps SavedAt and writes the snapshot. The saved quiz becomes the
// active one.
func (s *Store) Save(ctx context.Context, sess *session.Session) error {
	if sess.QuizID == "" {
		return fmt.Errorf("save progress: session has no quiz id")
	}
	sess.SavedAt = s.now()

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}
	if err := s.backend.Put(ctx, sess.QuizID, data); err != nil {
		return fmt.Errorf("put progress: %w", err)
	}

	s.mu.Lock()
	s.active = sess.QuizID
	s.mu.Unlock()
	return nil
}

// Load returns the snapshot for quizID, or nil if there is no usable one.
// Corrupt, invalid and expired entries are deleted and reported as absent.
func (s *Store) Load(ctx context.Context, quizID string) (*session.Session, error) {
	data, err := s.backend.Get(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("get progress: %w", err)
	}
	if data == nil {
		return nil, nil
	}
	return s.decode(ctx, quizID, data)
}

// LoadAll returns every usable snapshot, most recently saved first.
func (s *Store) LoadAll(ctx context.Context) ([]session.Session, error) {
	blobs, err := s.backend.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}

	var out []session.Session
	for id, data := range blobs {
		sess, err := s.decode(ctx, id, data)
		if err != nil {
			return nil, err
		}
		if sess != nil {
			out = append(out, *sess)
		}
	}
	slices.SortFunc(out, func(a, b session.Session) int {
		if c := b.SavedAt.Compare(a.SavedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.QuizID, b.QuizID)
	})
	return out, nil
}

// Clear deletes the snapshot for quizID. An empty quizID clears the active
// quiz, and is a no-op when no quiz is active.
func (s *Store) Clear(ctx context.Context, quizID string) error {
	s.mu.Lock()
	if quizID == "" {
		quizID = s.active
	}
	if quizID != "" && quizID == s.active {
		s.active = ""
	}
	s.mu.Unlock()

	if quizID == "" {
		return nil
	}
	if err := s.backend.Delete(ctx, quizID); err != nil {
		return fmt.Errorf("delete progress: %w", err)
	}
	return nil
}

// Active returns the quiz id of the most recently saved snapshot in this
// process, or "".
func (s *Store) Active() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// decode parses and checks one blob, deleting it when it is unusable.
func (s *Store) decode(ctx context.Context, quizID string, data []byte) (*session.Session, error) {
	var sess session.Session
	reason := ""
	if err := json.Unmarshal(data, &sess); err != nil {
		reason = "unparsable: " + err.Error()
	} else if err := Check(&sess, quizID); err != nil {
		reason = err.Error()
	} else if s.Expired(&sess) {
		reason = "expired"
	}

	if reason == "" {
		return &sess, nil
	}

	s.log.WithFields(logrus.Fields{
		"quiz_id": quizID,
		"reason":  reason,
	}).Info("discarding stored progress")
	if err := s.backend.Delete(ctx, quizID); err != nil {
		return nil, fmt.Errorf("delete progress: %w", err)
	}
	return nil, nil
}

// Expired reports whether sess is past the retention window.
func (s *Store) Expired(sess *session.Session) bool {
	return s.now().Sub(sess.StartedAt) > s.retention
}

// Check validates the structure of a stored snapshot.
func Check(sess *session.Session, quizID string) error {
	n := len(sess.Questions)
	switch {
	case n == 0:
		return fmt.Errorf("snapshot has no questions")
	case sess.QuizID != quizID:
		return fmt.Errorf("snapshot belongs to quiz %q", sess.QuizID)
	case len(sess.Answers) != n:
		return fmt.Errorf("snapshot has %d answers for %d questions", len(sess.Answers), n)
	case sess.CurrentIndex < 0 || sess.CurrentIndex >= n:
		return fmt.Errorf("snapshot index %d out of range", sess.CurrentIndex)
	case len(sess.Arrangements) != 0 && len(sess.Arrangements) != n:
		return fmt.Errorf("snapshot has %d arrangements for %d questions", len(sess.Arrangements), n)
	case sess.StartedAt.IsZero():
		return fmt.Errorf("snapshot has no start time")
	case sess.Status != session.StatusInProgress && sess.Status != session.StatusAbandoned:
		return fmt.Errorf("snapshot status %q is not resumable", sess.Status)
	}
	return nil
}
