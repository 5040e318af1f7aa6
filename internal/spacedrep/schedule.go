package spacedrep

import (
	"fmt"
	"strings"
	"time"
)

// BaseIntervals defines the expanding interval schedule in days.
// Stage 0 = first review after a question is missed.
var BaseIntervals = []int{1, 3, 7, 14, 30, 60}

// MaxStage is the highest stage index in BaseIntervals.
const MaxStage = 5

// GraduationStage is the number of consecutive successful reviews after
// which a card graduates.
const GraduationStage = 6

// GraduatedIntervalDays is the review interval for graduated cards.
const GraduatedIntervalDays = 90

// AgainDelay is how soon a card rated "again" comes back.
const AgainDelay = 10 * time.Minute

// Rating is the learner's self-assessment of one review.
type Rating string

const (
	RatingAgain Rating = "again"
	RatingHard  Rating = "hard"
	RatingGood  Rating = "good"
	RatingEasy  Rating = "easy"
)

// Ratings lists the valid ratings from worst to best.
var Ratings = []Rating{RatingAgain, RatingHard, RatingGood, RatingEasy}

// ParseRating accepts a rating name or its 1-4 shortcut.
func ParseRating(s string) (Rating, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "again", "1":
		return RatingAgain, nil
	case "hard", "2":
		return RatingHard, nil
	case "good", "3":
		return RatingGood, nil
	case "easy", "4":
		return RatingEasy, nil
	}
	return "", fmt.Errorf("unknown rating %q (want again, hard, good or easy)", s)
}
