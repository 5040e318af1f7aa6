package spacedrep

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Backend is the card store the review flow reads from and reports to.
type Backend interface {
	// DueCards returns up to limit cards due at now, most overdue first.
	// A limit of 0 means no limit.
	DueCards(ctx context.Context, now time.Time, limit int) ([]Card, error)

	// SubmitReview records a rating for the card and reschedules it.
	SubmitReview(ctx context.Context, cardID string, rating Rating) error
}

// Flow walks the learner through the cards due at the time it was
// created. It holds no scheduling logic; ratings are forwarded to the
// backend as they are given.
type Flow struct {
	backend Backend
	log     logrus.FieldLogger

	cards   []Card
	pos     int
	ratings map[Rating]int
}

// NewFlow loads the due cards.
func NewFlow(ctx context.Context, backend Backend, now time.Time, limit int, log logrus.FieldLogger) (*Flow, error) {
	cards, err := backend.DueCards(ctx, now, limit)
	if err != nil {
		return nil, fmt.Errorf("load due cards: %w", err)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Flow{
		backend: backend,
		log:     log,
		cards:   cards,
		ratings: make(map[Rating]int),
	}, nil
}

// Len returns the number of cards in the flow.
func (f *Flow) Len() int { return len(f.cards) }

// Position returns the zero-based index of the current card.
func (f *Flow) Position() int { return f.pos }

// Done reports whether every card has been rated.
func (f *Flow) Done() bool { return f.pos >= len(f.cards) }

// Current returns the card awaiting a rating, or nil when done.
func (f *Flow) Current() *Card {
	if f.Done() {
		return nil
	}
	return &f.cards[f.pos]
}

// Rate forwards r for the current card and advances. On error the flow
// stays on the same card so the rating can be retried.
func (f *Flow) Rate(ctx context.Context, r Rating) error {
	c := f.Current()
	if c == nil {
		return fmt.Errorf("no card to rate")
	}
	if err := f.backend.SubmitReview(ctx, c.ID, r); err != nil {
		f.log.WithError(err).WithField("card_id", c.ID).Warn("review submission failed")
		return fmt.Errorf("submit review: %w", err)
	}
	f.ratings[r]++
	f.pos++
	return nil
}

// Skip moves past the current card without rating it.
func (f *Flow) Skip() {
	if !f.Done() {
		f.pos++
	}
}

// Tally returns how many cards received each rating.
func (f *Flow) Tally() map[Rating]int {
	out := make(map[Rating]int, len(f.ratings))
	for r, n := range f.ratings {
		out[r] = n
	}
	return out
}
