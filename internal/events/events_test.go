package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizmaster/internal/quiz"
)

type memoryAttempts struct {
	mu       sync.Mutex
	attempts []quiz.Attempt
	failures int
}

func (m *memoryAttempts) SubmitAttempt(_ context.Context, a quiz.Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failures > 0 {
		m.failures--
		return errors.New("database is locked")
	}
	m.attempts = append(m.attempts, a)
	return nil
}

func (m *memoryAttempts) recorded() []quiz.Attempt {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]quiz.Attempt(nil), m.attempts...)
}

func openBus(t *testing.T, store AttemptStore) *Bus {
	t.Helper()
	logger, _ := test.NewNullLogger()
	bus, err := Open(context.Background(), Config{Transport: TransportGoChannel}, store, logger)
	require.NoError(t, err)
	t.Cleanup(func() { bus.Close() })
	return bus
}

func TestGoChannelBusRecordsAttempt(t *testing.T) {
	store := &memoryAttempts{}
	bus := openBus(t, store)

	attempt := quiz.Attempt{
		QuizID:     "q-1",
		Score:      2,
		Total:      3,
		Percentage: 67,
		Missed:     []quiz.Question{{Question: "Capital of France?", Type: quiz.TypeChoice}},
	}
	require.NoError(t, bus.SubmitAttempt(context.Background(), attempt))

	got := store.recorded()
	require.Len(t, got, 1)
	assert.NotEmpty(t, got[0].ID, "an attempt ID is assigned before publishing")
	assert.Equal(t, "q-1", got[0].QuizID)
	assert.Equal(t, 67, got[0].Percentage)
	assert.Len(t, got[0].Missed, 1)
}

func TestGoChannelBusRetriesStoreFailures(t *testing.T) {
	store := &memoryAttempts{failures: 2}
	bus := openBus(t, store)

	require.NoError(t, bus.SubmitAttempt(context.Background(), quiz.Attempt{ID: "a-1", QuizID: "q-1"}))

	got := store.recorded()
	require.Len(t, got, 1)
	assert.Equal(t, "a-1", got[0].ID)
}

func TestGoChannelBusGivesUpOnPersistentFailure(t *testing.T) {
	store := &memoryAttempts{failures: 1000}
	bus := openBus(t, store)

	done := make(chan error, 1)
	go func() { done <- bus.SubmitAttempt(context.Background(), quiz.Attempt{ID: "a-1", QuizID: "q-1"}) }()

	select {
	case err := <-done:
		require.ErrorIs(t, err, ErrNotRecorded)
		assert.Contains(t, err.Error(), "database is locked")
	case <-time.After(5 * time.Second):
		t.Fatal("SubmitAttempt did not return while the store kept failing")
	}
	assert.Empty(t, store.recorded())

	store.mu.Lock()
	store.failures = 0
	store.mu.Unlock()
	require.NoError(t, bus.SubmitAttempt(context.Background(), quiz.Attempt{ID: "a-2", QuizID: "q-1"}))
	assert.Len(t, store.recorded(), 1)
}

func TestRecorderDropsMalformedPayload(t *testing.T) {
	store := &memoryAttempts{}
	logger, hook := test.NewNullLogger()
	rec := NewRecorder(store, logger)

	err := rec.Handle(message.NewMessage("m-1", []byte("{not json")))
	require.NoError(t, err)
	assert.Empty(t, store.recorded())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)

	err = rec.Handle(message.NewMessage("m-2", []byte(`{"type":"quiz.deleted"}`)))
	require.NoError(t, err)
	assert.Empty(t, store.recorded())
}

func TestRecorderReturnsStoreError(t *testing.T) {
	store := &memoryAttempts{failures: 1}
	logger, _ := test.NewNullLogger()
	rec := NewRecorder(store, logger)

	payload := []byte(`{"id":"e-1","type":"attempt.submitted","attempt":{"id":"a-1","quizId":"q-1"}}`)
	assert.Error(t, rec.Handle(message.NewMessage("m-1", payload)))
	assert.NoError(t, rec.Handle(message.NewMessage("m-1", payload)))
	assert.Len(t, store.recorded(), 1)
}

func TestPublisherSetsMetadata(t *testing.T) {
	logger, _ := test.NewNullLogger()
	gc := NewGoChannel(logger)
	defer gc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	msgs, err := gc.Subscribe(ctx, "custom.topic")
	require.NoError(t, err)

	pub := NewPublisher(gc, "custom.topic", logger)
	pub.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	done := make(chan error, 1)
	go func() { done <- pub.SubmitAttempt(ctx, quiz.Attempt{ID: "a-9", QuizID: "q-7"}) }()

	select {
	case msg := <-msgs:
		assert.Equal(t, TypeAttemptSubmitted, msg.Metadata.Get("event_type"))
		assert.Equal(t, "q-7", msg.Metadata.Get("quiz_id"))
		assert.Equal(t, "2026-01-02T03:04:05Z", msg.Metadata.Get("timestamp"))
		msg.Ack()
	case <-time.After(5 * time.Second):
		t.Fatal("no message received")
	}
	require.NoError(t, <-done)
}

func TestOpenUnknownTransport(t *testing.T) {
	_, err := Open(context.Background(), Config{Transport: "carrier-pigeon"}, &memoryAttempts{}, nil)
	assert.Error(t, err)
}

func TestRunWorkerNeedsKafka(t *testing.T) {
	err := RunWorker(context.Background(), Config{Transport: TransportGoChannel}, &memoryAttempts{}, nil)
	assert.Error(t, err)
}
