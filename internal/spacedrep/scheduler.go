package spacedrep

import (
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/quizmaster/internal/quiz"
)

// cardNamespace scopes card ids so the same question in the same quiz
// always maps to the same card.
var cardNamespace = uuid.MustParse("6f1c2a0e-3f0b-4b8e-9d59-2f7f5a0c9e41")

// CardID returns the stable id of the card for q in quizID.
func CardID(quizID string, q *quiz.Question) string {
	return uuid.NewSHA1(cardNamespace, []byte(quizID+"\x00"+string(q.Type)+"\x00"+q.Question)).String()
}

// NewCard schedules a freshly missed question for its first review.
func NewCard(quizID string, q quiz.Question, missedAt time.Time) Card {
	return Card{
		ID:             CardID(quizID, &q),
		QuizID:         quizID,
		Question:       q,
		Stage:          0,
		NextReviewDate: missedAt.AddDate(0, 0, BaseIntervals[0]),
		LastReviewDate: missedAt,
	}
}

// Miss records that the card's question was missed again in a quiz
// attempt. The card drops back to stage 0 and keeps its lapse history.
func Miss(c Card, q quiz.Question, missedAt time.Time) Card {
	c.Question = q
	c.Stage = 0
	c.ConsecutiveHits = 0
	c.Graduated = false
	c.Lapses++
	c.LastReviewDate = missedAt
	c.NextReviewDate = missedAt.AddDate(0, 0, BaseIntervals[0])
	return c
}

// Schedule returns c updated for a review rated r at now.
//
// Good advances one stage and easy advances two. Hard repeats the current
// stage at half its interval. Again resets the card and brings it back
// after AgainDelay.
func Schedule(c Card, r Rating, now time.Time) Card {
	c.LastReviewDate = now

	switch r {
	case RatingAgain:
		c.Stage = 0
		c.ConsecutiveHits = 0
		c.Graduated = false
		c.Lapses++
		c.NextReviewDate = now.Add(AgainDelay)

	case RatingHard:
		days := max(1, c.CurrentIntervalDays()/2)
		c.NextReviewDate = now.AddDate(0, 0, days)

	case RatingGood, RatingEasy:
		c.ConsecutiveHits++
		if !c.Graduated {
			step := 1
			if r == RatingEasy {
				step = 2
			}
			c.Stage = min(c.Stage+step, GraduationStage)
			if c.ConsecutiveHits >= GraduationStage || c.Stage >= GraduationStage {
				c.Graduated = true
			}
		}
		c.NextReviewDate = now.AddDate(0, 0, c.CurrentIntervalDays())
	}
	return c
}
