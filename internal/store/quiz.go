package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/quizmaster/internal/quiz"
)

var quizColumns = []string{"id", "title", "description", "questions", "is_public", "created_at", "updated_at"}

// SaveQuiz validates req and stores it as a new quiz, returning its id.
func (s *Store) SaveQuiz(ctx context.Context, req quiz.SaveRequest) (string, error) {
	if err := req.Check(); err != nil {
		return "", err
	}
	questions, err := json.Marshal(req.Questions)
	if err != nil {
		return "", fmt.Errorf("marshal questions: %w", err)
	}

	id := uuid.NewString()
	now := toMillis(s.now())
	query, args := builder.Insert("quizzes").
		Columns("id", "title", "description", "questions", "question_count", "is_public", "created_at", "updated_at").
		Values(id, req.Title, req.Description, string(questions), len(req.Questions), req.IsPublic, now, now).
		Query()
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return "", fmt.Errorf("insert quiz: %w", err)
	}
	return id, nil
}

// UpdateQuiz validates req and replaces the stored quiz id with it.
func (s *Store) UpdateQuiz(ctx context.Context, id string, req quiz.SaveRequest) error {
	if err := req.Check(); err != nil {
		return err
	}
	questions, err := json.Marshal(req.Questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}

	query, args := builder.Update("quizzes").
		Set("title", req.Title).
		Set("description", req.Description).
		Set("questions", string(questions)).
		Set("question_count", len(req.Questions)).
		Set("is_public", req.IsPublic).
		Set("updated_at", toMillis(s.now())).
		Where(entsql.EQ("id", id)).
		Query()
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update quiz: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrQuizNotFound
	}
	return nil
}

// FetchQuiz returns the quiz with the given id. A unique id prefix is
// accepted as well, so short ids printed by the CLI can be used.
func (s *Store) FetchQuiz(ctx context.Context, id string) (*quiz.Quiz, error) {
	q, err := s.fetchQuiz(ctx, entsql.EQ("id", id))
	if !errors.Is(err, ErrQuizNotFound) || id == "" {
		return q, err
	}

	query, args := builder.Select("id").
		From(builder.Table("quizzes")).
		Where(entsql.HasPrefix("id", id)).
		Limit(2).
		Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query quiz ids: %w", err)
	}
	var ids []string
	for rows.Next() {
		var match string
		if err := rows.Scan(&match); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan quiz id: %w", err)
		}
		ids = append(ids, match)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query quiz ids: %w", err)
	}

	switch len(ids) {
	case 0:
		return nil, ErrQuizNotFound
	case 1:
		return s.fetchQuiz(ctx, entsql.EQ("id", ids[0]))
	default:
		return nil, fmt.Errorf("quiz id prefix %q is ambiguous", id)
	}
}

func (s *Store) fetchQuiz(ctx context.Context, where *entsql.Predicate) (*quiz.Quiz, error) {
	query, args := builder.Select(quizColumns...).
		From(builder.Table("quizzes")).
		Where(where).
		Query()

	var (
		q                quiz.Quiz
		questions        string
		created, updated int64
	)
	err := s.db.QueryRowContext(ctx, query, args...).
		Scan(&q.ID, &q.Title, &q.Description, &questions, &q.IsPublic, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrQuizNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query quiz: %w", err)
	}
	if err := json.Unmarshal([]byte(questions), &q.Questions); err != nil {
		return nil, fmt.Errorf("decode questions of quiz %s: %w", q.ID, err)
	}
	q.CreatedAt = fromMillis(created)
	q.UpdatedAt = fromMillis(updated)
	return &q, nil
}

// ListQuizzes returns every stored quiz, most recently updated first.
func (s *Store) ListQuizzes(ctx context.Context) ([]QuizSummary, error) {
	query, args := builder.Select("id", "title", "description", "question_count", "is_public", "created_at", "updated_at").
		From(builder.Table("quizzes")).
		OrderBy(entsql.Desc("updated_at"), "title").
		Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	var out []QuizSummary
	for rows.Next() {
		var (
			qs               QuizSummary
			created, updated int64
		)
		if err := rows.Scan(&qs.ID, &qs.Title, &qs.Description, &qs.QuestionCount, &qs.IsPublic, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		qs.CreatedAt = fromMillis(created)
		qs.UpdatedAt = fromMillis(updated)
		out = append(out, qs)
	}
	return out, rows.Err()
}

// DeleteQuiz removes a quiz together with its attempts, review cards and
// saved progress.
func (s *Store) DeleteQuiz(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		query, args := builder.Delete("quizzes").Where(entsql.EQ("id", id)).Query()
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("delete quiz: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrQuizNotFound
		}

		for _, table := range []string{"attempts", "review_cards", "progress"} {
			query, args := builder.Delete(table).Where(entsql.EQ("quiz_id", id)).Query()
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("delete %s: %w", table, err)
			}
		}
		return nil
	})
}
