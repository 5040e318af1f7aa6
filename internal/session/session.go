package session

import (
	"slices"
	"time"

	"github.com/abhisek/quizmaster/internal/quiz"
)

// Action is a transition request for Reduce. The concrete types below are
// the only implementations.
type Action interface {
	action()
}

// SelectOption picks option Index on a choice or truefalse question.
// Select-all questions toggle the option; single-answer questions replace
// the selection and, in study mode, reveal the result immediately.
type SelectOption struct{ Index int }

// Arrange records the learner's arrangement of an ordering question. Order
// must be a permutation of the question's option indices.
type Arrange struct{ Order []int }

// MatchPair assigns right value Right to left prompt Left on a matching
// question. A negative Right clears the assignment. A right value is
// assigned to at most one left.
type MatchPair struct{ Left, Right int }

// ToggleFlag flips the review flag on the current question.
type ToggleFlag struct{}

// Next moves to the following question.
type Next struct{}

// Prev moves to the preceding question.
type Prev struct{}

// GoTo jumps to question Index, clamped to the valid range.
type GoTo struct{ Index int }

// CheckAnswer evaluates the current question in study mode.
type CheckAnswer struct{}

// Tick advances the countdown by one second. At is the wall time of the
// tick and is used if the tick forces submission.
type Tick struct{ At time.Time }

// Submit scores the session and ends it.
type Submit struct{ At time.Time }

// Abandon ends the active view while keeping the session resumable.
type Abandon struct{}

func (SelectOption) action() {}
func (Arrange) action()      {}
func (MatchPair) action()    {}
func (ToggleFlag) action()   {}
func (Next) action()         {}
func (Prev) action()         {}
func (GoTo) action()         {}
func (CheckAnswer) action()  {}
func (Tick) action()         {}
func (Submit) action()       {}
func (Abandon) action()      {}

// Reduce applies a to s and returns the resulting session. It has no side
// effects and never modifies s. Every action is a no-op unless the session
// is in progress, which makes late timer ticks harmless.
func Reduce(s Session, a Action) Session {
	if !s.Live() || len(s.Questions) == 0 {
		return s
	}
	s = s.clone()

	switch a := a.(type) {
	case SelectOption:
		return selectOption(s, a.Index)
	case Arrange:
		return arrange(s, a.Order)
	case MatchPair:
		return matchPair(s, a.Left, a.Right)
	case ToggleFlag:
		return toggleFlag(s)
	case Next:
		return goTo(s, s.CurrentIndex+1)
	case Prev:
		return goTo(s, s.CurrentIndex-1)
	case GoTo:
		return goTo(s, a.Index)
	case CheckAnswer:
		return check(s)
	case Tick:
		return tick(s, a.At)
	case Submit:
		return submit(s, a.At)
	case Abandon:
		s.Status = StatusAbandoned
		s.Revealed = false
		return s
	}
	return s
}

func selectOption(s Session, idx int) Session {
	q := s.Current()
	if q.Type != quiz.TypeChoice && q.Type != quiz.TypeTrueFalse {
		return s
	}
	if idx < 0 || idx >= len(q.Options) {
		return s
	}
	if s.StudyMode && s.Revealed {
		return s
	}

	if q.IsMultiSelect() {
		var selected []int
		if cur := s.CurrentAnswer(); cur != nil {
			selected = slices.Clone(cur.Selected)
		}
		if i := slices.Index(selected, idx); i >= 0 {
			selected = slices.Delete(selected, i, i+1)
		} else {
			selected = append(selected, idx)
			slices.Sort(selected)
		}
		if len(selected) == 0 {
			s.Answers[s.CurrentIndex] = nil
		} else {
			s.Answers[s.CurrentIndex] = quiz.Select(selected...)
		}
		return s
	}

	s.Answers[s.CurrentIndex] = quiz.Select(idx)
	if s.StudyMode {
		return check(s)
	}
	return s
}

func arrange(s Session, order []int) Session {
	q := s.Current()
	if q.Type != quiz.TypeOrdering || !isPermutation(order, len(q.Options)) {
		return s
	}
	if s.StudyMode && s.Revealed {
		return s
	}
	s.Answers[s.CurrentIndex] = quiz.Arrange(slices.Clone(order)...)
	return s
}

func matchPair(s Session, left, right int) Session {
	q := s.Current()
	n := len(q.Pairs)
	if q.Type != quiz.TypeMatching || left < 0 || left >= n || right >= n {
		return s
	}
	if s.StudyMode && s.Revealed {
		return s
	}

	m := make(map[int]int, n)
	if cur := s.CurrentAnswer(); cur != nil && cur.Kind == quiz.KindMatching {
		for k, v := range cur.Matches {
			m[k] = v
		}
	}
	if right < 0 {
		delete(m, left)
	} else {
		for k, v := range m {
			if v == right {
				delete(m, k)
			}
		}
		m[left] = right
	}

	if len(m) == 0 {
		s.Answers[s.CurrentIndex] = nil
	} else {
		s.Answers[s.CurrentIndex] = quiz.Match(m)
	}
	return s
}

func toggleFlag(s Session) Session {
	i, found := slices.BinarySearch(s.Flags, s.CurrentIndex)
	if found {
		s.Flags = slices.Delete(s.Flags, i, i+1)
	} else {
		s.Flags = slices.Insert(s.Flags, i, s.CurrentIndex)
	}
	return s
}

func goTo(s Session, idx int) Session {
	s.CurrentIndex = max(0, min(idx, len(s.Questions)-1))
	s.Revealed = false
	return s
}

func check(s Session) Session {
	if !s.StudyMode || s.Revealed {
		return s
	}
	correct := quiz.IsCorrect(s.Current(), s.CurrentAnswer())
	if correct {
		s.Streak++
		s.MaxStreak = max(s.MaxStreak, s.Streak)
	} else {
		s.Streak = 0
	}
	s.LastCheckCorrect = correct
	s.Revealed = true
	return s
}

func tick(s Session, at time.Time) Session {
	if !s.Timer.Enabled {
		return s
	}
	if s.Timer.RemainingSeconds > 0 {
		s.Timer.RemainingSeconds--
	}
	if s.Timer.RemainingSeconds == 0 {
		return submit(s, at)
	}
	return s
}

func submit(s Session, at time.Time) Session {
	score, total, pct := quiz.Score(s.Questions, s.Answers)

	var taken int
	switch {
	case s.Timer.Enabled:
		taken = s.Timer.TotalSeconds - s.Timer.RemainingSeconds
	case !at.IsZero() && at.After(s.StartedAt):
		taken = int(at.Sub(s.StartedAt).Seconds())
	}

	s.Result = &Result{Score: score, Total: total, Percentage: pct, TimeTakenSeconds: taken}
	s.Status = StatusSubmitted
	s.Revealed = false
	return s
}

func isPermutation(order []int, n int) bool {
	if len(order) != n {
		return false
	}
	seen := make([]bool, n)
	for _, v := range order {
		if v < 0 || v >= n || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}
