package spacedrep

import (
	"fmt"
	"math"
	"time"

	"github.com/abhisek/quizmaster/internal/quiz"
)

// Card is one missed question scheduled for review.
type Card struct {
	ID              string        `json:"id"`
	QuizID          string        `json:"quiz_id"`
	Question        quiz.Question `json:"question"`
	Stage           int           `json:"stage"`
	NextReviewDate  time.Time     `json:"next_review_date"`
	ConsecutiveHits int           `json:"consecutive_hits"`
	Lapses          int           `json:"lapses"`
	Graduated       bool          `json:"graduated"`
	LastReviewDate  time.Time     `json:"last_review_date"`
}

// IsDue reports whether the card should come up in a review at now.
func (c *Card) IsDue(now time.Time) bool {
	return !now.Before(c.NextReviewDate)
}

// CurrentIntervalDays is the gap, in days, the card's stage schedules
// between reviews.
func (c *Card) CurrentIntervalDays() int {
	switch {
	case c.Graduated:
		return GraduatedIntervalDays
	case c.Stage >= len(BaseIntervals):
		return BaseIntervals[len(BaseIntervals)-1]
	}
	return BaseIntervals[c.Stage]
}

// ReviewStatus groups cards in the review queue listing.
type ReviewStatus string

const (
	ReviewNotDue    ReviewStatus = "not_due"
	ReviewDue       ReviewStatus = "due"
	ReviewOverdue   ReviewStatus = "overdue"
	ReviewGraduated ReviewStatus = "graduated"
)

// Status places the card in the queue at now. A due card counts as
// overdue once it has waited more than half its interval.
func (c *Card) Status(now time.Time) ReviewStatus {
	late := now.Sub(c.NextReviewDate)
	interval := time.Duration(c.CurrentIntervalDays()) * 24 * time.Hour
	switch {
	case late < 0 && c.Graduated:
		return ReviewGraduated
	case late < 0:
		return ReviewNotDue
	case 2*late > interval:
		return ReviewOverdue
	}
	return ReviewDue
}

// DueLabel says when the card comes up relative to now, such as "in 3d",
// "in 2h", "today" or "4d late".
func (c *Card) DueLabel(now time.Time) string {
	wait := c.NextReviewDate.Sub(now)
	switch {
	case wait >= 24*time.Hour:
		return fmt.Sprintf("in %dd", int(math.Ceil(wait.Hours()/24)))
	case wait > 0:
		return fmt.Sprintf("in %dh", int(math.Ceil(wait.Hours())))
	case wait > -24*time.Hour:
		return "today"
	}
	return fmt.Sprintf("%dd late", int(-wait.Hours()/24))
}
