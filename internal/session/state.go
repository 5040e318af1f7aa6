package session

import (
	"math/rand/v2"
	"slices"
	"time"

	"github.com/abhisek/quizmaster/internal/quiz"
)

// Status is the lifecycle state of a session.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusSubmitted  Status = "submitted"
	StatusAbandoned  Status = "abandoned"
)

// Timer tracks the countdown of a timed session.
type Timer struct {
	Enabled          bool `json:"enabled"`
	TotalSeconds     int  `json:"totalSeconds"`
	RemainingSeconds int  `json:"remainingSeconds"`
}

// Result is the outcome of a submitted session.
type Result struct {
	Score            int `json:"score"`
	Total            int `json:"total"`
	Percentage       int `json:"percentage"`
	TimeTakenSeconds int `json:"timeTakenSeconds"`
}

// Session is one attempt at a quiz. It is a plain value: every change goes
// through Reduce, which returns a new Session.
type Session struct {
	QuizID    string `json:"quizId"`
	QuizTitle string `json:"quizTitle"`

	// Questions is the snapshot taken when the attempt started, already in
	// display order. Edits to the source quiz do not reach it.
	Questions []quiz.Question `json:"questions"`

	// CurrentIndex is always within [0, len(Questions)).
	CurrentIndex int `json:"currentIndex"`

	// Answers is index-aligned with Questions. A nil entry is unanswered.
	Answers []*quiz.Answer `json:"answers"`

	// Arrangements holds the initial display order of ordering items and of
	// matching right-hand values, index-aligned with Questions. Entries for
	// other question types are nil.
	Arrangements [][]int `json:"arrangements,omitempty"`

	// Flags holds the question indices marked for review, sorted.
	Flags []int `json:"flags"`

	StudyMode bool  `json:"studyMode"`
	Timer     Timer `json:"timer"`

	// Streak and MaxStreak count consecutive correct checks in study mode.
	Streak    int `json:"streak"`
	MaxStreak int `json:"maxStreak"`

	// Revealed is set after a study-mode check until the learner moves to
	// another question.
	Revealed bool `json:"revealed"`

	// LastCheckCorrect records the outcome of the most recent check.
	LastCheckCorrect bool `json:"lastCheckCorrect"`

	StartedAt time.Time `json:"startedAt"`
	SavedAt   time.Time `json:"savedAt"`
	Status    Status    `json:"status"`

	// Seed is the shuffle seed used when the session was created.
	Seed uint64 `json:"seed"`

	// Result is set once the session is submitted.
	Result *Result `json:"result,omitempty"`
}

// Options configure a new session.
type Options struct {
	StudyMode bool

	// TimerSeconds enables the countdown when positive.
	TimerSeconds int

	// ShuffleQuestions randomizes question order once at creation.
	ShuffleQuestions bool

	// Seed drives every shuffle. The same seed reproduces the same order.
	Seed uint64
}

// New creates an in-progress session for q. Shuffling happens here and
// only here; the result is frozen into the returned value.
func New(q *quiz.Quiz, opts Options, now time.Time) Session {
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))

	questions := slices.Clone(q.Questions)
	if opts.ShuffleQuestions {
		rng.Shuffle(len(questions), func(i, j int) {
			questions[i], questions[j] = questions[j], questions[i]
		})
	}

	arrangements := make([][]int, len(questions))
	for i := range questions {
		switch questions[i].Type {
		case quiz.TypeOrdering:
			arrangements[i] = scramble(rng, len(questions[i].Options))
		case quiz.TypeMatching:
			arrangements[i] = scramble(rng, len(questions[i].Pairs))
		}
	}

	s := Session{
		QuizID:       q.ID,
		QuizTitle:    q.Title,
		Questions:    questions,
		Answers:      make([]*quiz.Answer, len(questions)),
		Arrangements: arrangements,
		Flags:        []int{},
		StudyMode:    opts.StudyMode,
		StartedAt:    now,
		SavedAt:      now,
		Status:       StatusInProgress,
		Seed:         opts.Seed,
	}
	if opts.TimerSeconds > 0 {
		s.Timer = Timer{Enabled: true, TotalSeconds: opts.TimerSeconds, RemainingSeconds: opts.TimerSeconds}
	}
	return s
}

// Resume prepares a persisted snapshot to continue. The stored order,
// answers and timer are kept as they were.
func Resume(s Session) Session {
	s = s.clone()
	s.Status = StatusInProgress
	s.Revealed = false
	if s.Flags == nil {
		s.Flags = []int{}
	}
	return s
}

// Current returns the question at CurrentIndex.
func (s Session) Current() *quiz.Question {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Questions) {
		return nil
	}
	return &s.Questions[s.CurrentIndex]
}

// CurrentAnswer returns the answer recorded for the current question.
func (s Session) CurrentAnswer() *quiz.Answer {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Answers) {
		return nil
	}
	return s.Answers[s.CurrentIndex]
}

// Arrangement returns the display order for question i: the learner's
// arrangement once answered, otherwise the order frozen at creation.
func (s Session) Arrangement(i int) []int {
	if i < 0 || i >= len(s.Questions) {
		return nil
	}
	if a := s.Answers[i]; a != nil && a.Kind == quiz.KindArrangement {
		return a.Order
	}
	if i < len(s.Arrangements) && s.Arrangements[i] != nil {
		return s.Arrangements[i]
	}
	n := len(s.Questions[i].Options)
	if s.Questions[i].Type == quiz.TypeMatching {
		n = len(s.Questions[i].Pairs)
	}
	order := make([]int, n)
	for k := range order {
		order[k] = k
	}
	return order
}

// IsFlagged reports whether question i is flagged.
func (s Session) IsFlagged(i int) bool {
	_, found := slices.BinarySearch(s.Flags, i)
	return found
}

// Answered counts questions with a non-empty answer.
func (s Session) Answered() int {
	n := 0
	for _, a := range s.Answers {
		if !a.Empty() {
			n++
		}
	}
	return n
}

// Live reports whether the session can still receive actions.
func (s Session) Live() bool {
	return s.Status == StatusInProgress
}

// clone copies the slices Reduce may replace so the previous value is
// left untouched. Answers are never mutated in place, so the pointers are
// shared.
func (s Session) clone() Session {
	s.Answers = slices.Clone(s.Answers)
	s.Flags = slices.Clone(s.Flags)
	return s
}

// scramble returns a random permutation of [0, n) that differs from the
// identity whenever n > 1.
func scramble(rng *rand.Rand, n int) []int {
	order := rng.Perm(n)
	if n < 2 {
		return order
	}
	for isIdentity(order) {
		rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
	}
	return order
}

func isIdentity(order []int) bool {
	for i, v := range order {
		if v != i {
			return false
		}
	}
	return true
}
