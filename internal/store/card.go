package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/quizmaster/internal/quiz"
	"github.com/abhisek/quizmaster/internal/spacedrep"
)

var cardColumns = []string{"id", "quiz_id", "question", "stage", "consecutive_hits",
	"lapses", "graduated", "next_review_at", "last_review_at"}

// querier is the subset of *sql.DB and *sql.Tx the card helpers need.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DueCards returns up to limit cards due at now, most overdue first.
func (s *Store) DueCards(ctx context.Context, now time.Time, limit int) ([]spacedrep.Card, error) {
	sel := builder.Select(cardColumns...).
		From(builder.Table("review_cards")).
		Where(entsql.LTE("next_review_at", toMillis(now))).
		OrderBy("next_review_at", "id")
	if limit > 0 {
		sel.Limit(limit)
	}
	return queryCards(ctx, s.db, sel)
}

// Cards returns every review card for quizID, or for all quizzes when
// quizID is empty, soonest due first.
func (s *Store) Cards(ctx context.Context, quizID string) ([]spacedrep.Card, error) {
	sel := builder.Select(cardColumns...).
		From(builder.Table("review_cards")).
		OrderBy("next_review_at", "id")
	if quizID != "" {
		sel.Where(entsql.EQ("quiz_id", quizID))
	}
	return queryCards(ctx, s.db, sel)
}

// SubmitReview applies a rating to a card and stores its new schedule.
func (s *Store) SubmitReview(ctx context.Context, cardID string, rating spacedrep.Rating) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		c, err := loadCard(ctx, tx, cardID)
		if err != nil {
			return err
		}
		if c == nil {
			return fmt.Errorf("review card %s: %w", cardID, ErrNotFound)
		}
		return putCard(ctx, tx, spacedrep.Schedule(*c, rating, s.now()))
	})
}

// enqueueMissed creates the card for a missed question, or lapses the
// existing one.
func enqueueMissed(ctx context.Context, q querier, quizID string, question quiz.Question, at time.Time) error {
	existing, err := loadCard(ctx, q, spacedrep.CardID(quizID, &question))
	if err != nil {
		return err
	}
	c := spacedrep.NewCard(quizID, question, at)
	if existing != nil {
		c = spacedrep.Miss(*existing, question, at)
	}
	return putCard(ctx, q, c)
}

func loadCard(ctx context.Context, q querier, id string) (*spacedrep.Card, error) {
	cards, err := queryCards(ctx, q, builder.Select(cardColumns...).
		From(builder.Table("review_cards")).
		Where(entsql.EQ("id", id)))
	if err != nil || len(cards) == 0 {
		return nil, err
	}
	return &cards[0], nil
}

func putCard(ctx context.Context, q querier, c spacedrep.Card) error {
	question, err := json.Marshal(c.Question)
	if err != nil {
		return fmt.Errorf("marshal card question: %w", err)
	}
	query, args := builder.Insert("review_cards").
		Columns(cardColumns...).
		Values(c.ID, c.QuizID, string(question), c.Stage, c.ConsecutiveHits,
			c.Lapses, c.Graduated, toMillis(c.NextReviewDate), toMillis(c.LastReviewDate)).
		OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues()).
		Query()
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save review card: %w", err)
	}
	return nil
}

func queryCards(ctx context.Context, q querier, sel *entsql.Selector) ([]spacedrep.Card, error) {
	query, args := sel.Query()
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query review cards: %w", err)
	}
	defer rows.Close()

	var out []spacedrep.Card
	for rows.Next() {
		var (
			c          spacedrep.Card
			question   string
			next, last int64
		)
		if err := rows.Scan(&c.ID, &c.QuizID, &question, &c.Stage, &c.ConsecutiveHits,
			&c.Lapses, &c.Graduated, &next, &last); err != nil {
			return nil, fmt.Errorf("scan review card: %w", err)
		}
		if err := json.Unmarshal([]byte(question), &c.Question); err != nil {
			return nil, fmt.Errorf("decode question of card %s: %w", c.ID, err)
		}
		c.NextReviewDate = fromMillis(next)
		c.LastReviewDate = fromMillis(last)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review cards: %w", err)
	}
	return out, nil
}
