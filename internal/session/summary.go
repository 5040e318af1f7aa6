package session

import (
	"time"

	"github.com/abhisek/quizmaster/internal/quiz"
)

// Summary holds the data displayed on the results screen.
type Summary struct {
	Score      int
	Total      int
	Percentage int
	Duration   time.Duration
	MaxStreak  int

	// Missed, Unanswered and Flagged hold question indices.
	Missed     []int
	Unanswered []int
	Flagged    []int

	// ByType counts correct and total questions per question type.
	ByType map[quiz.Type]TypeResult
}

// TypeResult is the per-type breakdown of a summary.
type TypeResult struct {
	Correct int
	Total   int
}

// BuildSummary creates a Summary from a session. It scores the answers
// directly, so it also works for sessions that were never submitted.
func BuildSummary(s *Session) *Summary {
	sum := &Summary{
		MaxStreak: s.MaxStreak,
		Flagged:   append([]int(nil), s.Flags...),
		ByType:    make(map[quiz.Type]TypeResult),
	}
	sum.Score, sum.Total, sum.Percentage = quiz.Score(s.Questions, s.Answers)
	if s.Result != nil {
		sum.Duration = time.Duration(s.Result.TimeTakenSeconds) * time.Second
	}

	for i := range s.Questions {
		q := &s.Questions[i]
		tr := sum.ByType[q.Type]
		tr.Total++
		switch {
		case s.Answers[i].Empty():
			sum.Unanswered = append(sum.Unanswered, i)
		case quiz.IsCorrect(q, s.Answers[i]):
			tr.Correct++
		default:
			sum.Missed = append(sum.Missed, i)
		}
		sum.ByType[q.Type] = tr
	}
	return sum
}
