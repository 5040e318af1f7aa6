package spacedrep

import (
	"testing"
	"time"
)

var day0 = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func daysAfter(d float64) time.Time {
	return day0.Add(time.Duration(d * 24 * float64(time.Hour)))
}

func TestIsDue(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"before", daysAfter(-1), false},
		{"on date", day0, true},
		{"after", daysAfter(2), true},
	}
	for _, tt := range tests {
		c := &Card{NextReviewDate: day0}
		if got := c.IsDue(tt.now); got != tt.want {
			t.Errorf("%s: IsDue() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestCardStatus(t *testing.T) {
	tests := []struct {
		name string
		card Card
		now  time.Time
		want ReviewStatus
	}{
		{"not due", Card{Stage: 2, NextReviewDate: daysAfter(5)}, day0, ReviewNotDue},
		{"due", Card{Stage: 2, NextReviewDate: day0}, daysAfter(1), ReviewDue},
		{"overdue", Card{Stage: 2, NextReviewDate: day0}, daysAfter(5), ReviewOverdue},
		{"graduated", Card{Stage: 6, Graduated: true, NextReviewDate: daysAfter(30)}, day0, ReviewGraduated},
		{"graduated but due", Card{Stage: 6, Graduated: true, NextReviewDate: day0}, daysAfter(10), ReviewDue},

		// A card is overdue after waiting more than half its interval.
		{"stage 2 within grace", Card{Stage: 2, NextReviewDate: day0}, daysAfter(2), ReviewDue},
		{"stage 2 past grace", Card{Stage: 2, NextReviewDate: day0}, daysAfter(4), ReviewOverdue},
		{"stage 0 past grace", Card{Stage: 0, NextReviewDate: day0}, daysAfter(1), ReviewOverdue},
		{"graduated within grace", Card{Stage: 6, Graduated: true, NextReviewDate: day0}, daysAfter(30), ReviewDue},
		{"graduated past grace", Card{Stage: 6, Graduated: true, NextReviewDate: day0}, daysAfter(50), ReviewOverdue},
	}
	for _, tt := range tests {
		if got := tt.card.Status(tt.now); got != tt.want {
			t.Errorf("%s: Status() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestDueLabel(t *testing.T) {
	tests := []struct {
		next time.Time
		want string
	}{
		{day0.Add(108 * time.Hour), "in 5d"},
		{day0.Add(24 * time.Hour), "in 1d"},
		{day0.Add(10 * time.Minute), "in 1h"},
		{day0, "today"},
		{daysAfter(-0.5), "today"},
		{daysAfter(-3.2), "3d late"},
	}
	for _, tt := range tests {
		c := &Card{NextReviewDate: tt.next}
		if got := c.DueLabel(day0); got != tt.want {
			t.Errorf("DueLabel(next=%v) = %q, want %q", tt.next, got, tt.want)
		}
	}
}
