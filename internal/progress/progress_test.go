package progress

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizmaster/internal/quiz"
	"github.com/abhisek/quizmaster/internal/session"
)

var start = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

func sampleQuiz(id string) *quiz.Quiz {
	return &quiz.Quiz{
		ID:    id,
		Title: "Sample " + id,
		Questions: []quiz.Question{
			{Question: "Capital of France?", Type: quiz.TypeChoice, Options: []string{"Berlin", "Paris"}, Correct: []int{1}},
			{Question: "Water is wet", Type: quiz.TypeTrueFalse, Options: []string{"True", "False"}, Correct: []int{0}},
			{Question: "Sort", Type: quiz.TypeOrdering, Options: []string{"one", "two", "three"}, Correct: []int{0, 1, 2}},
		},
	}
}

func newStore(now *time.Time) (*Store, *MemoryBackend) {
	backend := NewMemoryBackend()
	logger, _ := test.NewNullLogger()
	return New(backend, WithClock(func() time.Time { return *now }), WithLogger(logger)), backend
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	now := start
	store, _ := newStore(&now)

	s := session.New(sampleQuiz("a"), session.Options{}, start)
	s = session.Reduce(s, session.SelectOption{Index: 1})
	s = session.Reduce(s, session.Next{})
	s = session.Reduce(s, session.ToggleFlag{})

	now = start.Add(time.Hour)
	require.NoError(t, store.Save(ctx, &s))
	assert.Equal(t, now, s.SavedAt)
	assert.Equal(t, "a", store.Active())

	got, err := store.Load(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 1, got.CurrentIndex)
	assert.Equal(t, []int{1}, got.Flags)
	assert.True(t, got.Answers[0].Has(1))
	assert.Nil(t, got.Answers[1])
}

func TestResumeAfterPartialAnswers(t *testing.T) {
	ctx := context.Background()
	now := start
	store, _ := newStore(&now)
	q := sampleQuiz("a")

	s, err := session.Start(ctx, store, q, session.Options{}, session.StartFresh, start)
	require.NoError(t, err)
	m := session.NewMachine(s, store, nil, session.WithClock(func() time.Time { return now }))

	_, err = m.Dispatch(ctx, session.SelectOption{Index: 1})
	require.NoError(t, err)
	_, err = m.Dispatch(ctx, session.Next{})
	require.NoError(t, err)
	_, err = m.Dispatch(ctx, session.Abandon{})
	require.NoError(t, err)

	now = start.Add(48 * time.Hour)
	resumed, err := session.Start(ctx, store, q, session.Options{}, session.StartResume, now)
	require.NoError(t, err)

	assert.Equal(t, session.StatusInProgress, resumed.Status)
	assert.Equal(t, 1, resumed.CurrentIndex)
	assert.True(t, resumed.Answers[0].Has(1))
	assert.Equal(t, start, resumed.StartedAt)
}

func TestExpiredSnapshotIsDeleted(t *testing.T) {
	ctx := context.Background()
	now := start
	store, backend := newStore(&now)

	s := session.New(sampleQuiz("a"), session.Options{}, start)
	require.NoError(t, store.Save(ctx, &s))

	now = start.Add(8 * 24 * time.Hour)
	got, err := store.Load(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, got)

	blob, _ := backend.Get(ctx, "a")
	assert.Nil(t, blob, "expired snapshot should be removed from the backend")
}

func TestSnapshotInsideWindowSurvives(t *testing.T) {
	ctx := context.Background()
	now := start
	store, _ := newStore(&now)

	s := session.New(sampleQuiz("a"), session.Options{}, start)
	require.NoError(t, store.Save(ctx, &s))

	now = start.Add(6 * 24 * time.Hour)
	got, err := store.Load(ctx, "a")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestCorruptSnapshotIsDeleted(t *testing.T) {
	ctx := context.Background()
	now := start
	backend := NewMemoryBackend()
	logger, hook := test.NewNullLogger()
	store := New(backend, WithClock(func() time.Time { return now }), WithLogger(logger))

	require.NoError(t, backend.Put(ctx, "bad", []byte("{not json")))
	got, err := store.Load(ctx, "bad")
	require.NoError(t, err)
	assert.Nil(t, got)

	blob, _ := backend.Get(ctx, "bad")
	assert.Nil(t, blob)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "bad", hook.LastEntry().Data["quiz_id"])
}

func TestStructurallyInvalidSnapshotIsDeleted(t *testing.T) {
	ctx := context.Background()
	now := start
	store, backend := newStore(&now)

	s := session.New(sampleQuiz("a"), session.Options{}, start)
	s.CurrentIndex = 7
	require.NoError(t, store.Save(ctx, &s))

	got, err := store.Load(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, got)
	blob, _ := backend.Get(ctx, "a")
	assert.Nil(t, blob)
}

func TestLoadAllOrdersBySavedAt(t *testing.T) {
	ctx := context.Background()
	now := start
	store, backend := newStore(&now)

	for i, id := range []string{"a", "b", "c"} {
		now = start.Add(time.Duration(i) * time.Hour)
		s := session.New(sampleQuiz(id), session.Options{}, start)
		require.NoError(t, store.Save(ctx, &s))
	}
	require.NoError(t, backend.Put(ctx, "junk", []byte("[]")))

	all, err := store.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].QuizID)
	assert.Equal(t, "b", all[1].QuizID)
	assert.Equal(t, "a", all[2].QuizID)

	blob, _ := backend.Get(ctx, "junk")
	assert.Nil(t, blob)
}

func TestClearActive(t *testing.T) {
	ctx := context.Background()
	now := start
	store, backend := newStore(&now)

	a := session.New(sampleQuiz("a"), session.Options{}, start)
	b := session.New(sampleQuiz("b"), session.Options{}, start)
	require.NoError(t, store.Save(ctx, &a))
	require.NoError(t, store.Save(ctx, &b))

	require.NoError(t, store.Clear(ctx, ""))
	assert.Equal(t, "", store.Active())

	blob, _ := backend.Get(ctx, "b")
	assert.Nil(t, blob)
	blob, _ = backend.Get(ctx, "a")
	assert.NotNil(t, blob)

	// Nothing active: no-op.
	require.NoError(t, store.Clear(ctx, ""))
	blob, _ = backend.Get(ctx, "a")
	assert.NotNil(t, blob)
}

func TestSaveRequiresQuizID(t *testing.T) {
	now := start
	store, _ := newStore(&now)
	s := session.New(sampleQuiz(""), session.Options{}, start)
	assert.Error(t, store.Save(context.Background(), &s))
}
