package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/quizmaster/internal/quiz"
)

// SubmitAttempt records a submitted attempt and schedules each missed
// question for review, in one transaction.
func (s *Store) SubmitAttempt(ctx context.Context, a quiz.Attempt) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now()
	}
	answers, err := json.Marshal(a.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}

	seqNum, err := s.seq.Next(ctx)
	if err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		query, args := builder.Insert("attempts").
			Columns("id", "sequence", "quiz_id", "score", "total", "percentage", "answers",
				"study_mode", "timed", "max_streak", "time_taken_seconds", "created_at").
			Values(a.ID, seqNum, a.QuizID, a.Score, a.Total, a.Percentage, string(answers),
				a.StudyMode, a.Timed, a.MaxStreak, a.TimeTakenSeconds, toMillis(a.CreatedAt)).
			OnConflict(entsql.ConflictColumns("id"), entsql.DoNothing()).
			Query()
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("insert attempt: %w", err)
		}
		// A redelivered attempt must not lapse its cards twice.
		if n, _ := res.RowsAffected(); n == 0 {
			return nil
		}

		for _, q := range a.Missed {
			if err := enqueueMissed(ctx, tx, a.QuizID, q, a.CreatedAt); err != nil {
				return err
			}
		}
		return nil
	})
}

// Attempts returns the attempts recorded for quizID, newest first. An
// empty quizID returns attempts for every quiz. A limit of 0 means no
// limit.
func (s *Store) Attempts(ctx context.Context, quizID string, limit int) ([]quiz.Attempt, error) {
	sel := builder.Select("id", "quiz_id", "score", "total", "percentage", "answers",
		"study_mode", "timed", "max_streak", "time_taken_seconds", "created_at").
		From(builder.Table("attempts")).
		OrderBy(entsql.Desc("sequence"))
	if quizID != "" {
		sel.Where(entsql.EQ("quiz_id", quizID))
	}
	if limit > 0 {
		sel.Limit(limit)
	}

	query, args := sel.Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var out []quiz.Attempt
	for rows.Next() {
		var (
			a       quiz.Attempt
			answers string
			created int64
		)
		if err := rows.Scan(&a.ID, &a.QuizID, &a.Score, &a.Total, &a.Percentage, &answers,
			&a.StudyMode, &a.Timed, &a.MaxStreak, &a.TimeTakenSeconds, &created); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		if err := json.Unmarshal([]byte(answers), &a.Answers); err != nil {
			return nil, fmt.Errorf("decode answers of attempt %s: %w", a.ID, err)
		}
		a.CreatedAt = fromMillis(created)
		out = append(out, a)
	}
	return out, rows.Err()
}
