package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

// ProgressBackend stores session snapshots in the progress table. It
// satisfies progress.Backend.
type ProgressBackend struct {
	store *Store
}

func (b *ProgressBackend) Put(ctx context.Context, quizID string, data []byte) error {
	query, args := builder.Insert("progress").
		Columns("quiz_id", "data", "saved_at").
		Values(quizID, data, toMillis(b.store.now())).
		OnConflict(entsql.ConflictColumns("quiz_id"), entsql.ResolveWithNewValues()).
		Query()
	if _, err := b.store.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

func (b *ProgressBackend) Get(ctx context.Context, quizID string) ([]byte, error) {
	query, args := builder.Select("data").
		From(builder.Table("progress")).
		Where(entsql.EQ("quiz_id", quizID)).
		Query()
	var data []byte
	err := b.store.db.QueryRowContext(ctx, query, args...).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	return data, nil
}

func (b *ProgressBackend) All(ctx context.Context) (map[string][]byte, error) {
	query, args := builder.Select("quiz_id", "data").
		From(builder.Table("progress")).
		Query()
	rows, err := b.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]byte)
	for rows.Next() {
		var (
			id   string
			data []byte
		)
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scan progress: %w", err)
		}
		out[id] = data
	}
	return out, rows.Err()
}

func (b *ProgressBackend) Delete(ctx context.Context, quizID string) error {
	query, args := builder.Delete("progress").Where(entsql.EQ("quiz_id", quizID)).Query()
	if _, err := b.store.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete progress: %w", err)
	}
	return nil
}
