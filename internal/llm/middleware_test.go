package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/abhisek/quizmaster/internal/store"
)

type eventSink struct {
	events []store.LLMRequestEventData
	err    error
}

func (s *eventSink) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	s.events = append(s.events, data)
	return s.err
}

func (s *eventSink) QueryLLMRequests(context.Context, store.QueryOpts) ([]store.LLMRequestEvent, error) {
	return nil, nil
}

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts: attempts,
		InitialWait: time.Millisecond,
		MaxWait:     5 * time.Millisecond,
		Multiplier:  2,
	}
}

func replyWith(content string) MockResponse {
	return MockResponse{Content: json.RawMessage(content)}
}

func fail(k Kind) MockResponse {
	return MockResponse{Err: &Error{Kind: k, Err: errors.New(k.String())}}
}

func TestRetry(t *testing.T) {
	tests := []struct {
		name      string
		script    []MockResponse
		wantCalls int
		wantKind  Kind
		wantErr   bool
	}{
		{"first try", []MockResponse{replyWith(`1`)}, 1, 0, false},
		{"transient then ok", []MockResponse{fail(KindUnavailable), fail(KindRateLimited), replyWith(`1`)}, 3, 0, false},
		{"gives up", []MockResponse{fail(KindUnavailable), fail(KindUnavailable), fail(KindUnavailable), replyWith(`1`)}, 3, KindUnavailable, true},
		{"rejected is final", []MockResponse{fail(KindRejected), replyWith(`1`)}, 1, KindRejected, true},
		{"truncated is final", []MockResponse{fail(KindTruncated), replyWith(`1`)}, 1, KindTruncated, true},
		{"invalid retried once", []MockResponse{fail(KindInvalidResponse), replyWith(`1`)}, 2, 0, false},
		{"invalid twice", []MockResponse{fail(KindInvalidResponse), fail(KindInvalidResponse), replyWith(`1`)}, 2, KindInvalidResponse, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider(tt.script...)
			_, err := WithRetry(mock, fastRetry(3)).Generate(context.Background(), Request{})

			if mock.CallCount() != tt.wantCalls {
				t.Errorf("calls = %d, want %d", mock.CallCount(), tt.wantCalls)
			}
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if k, _ := KindOf(err); k != tt.wantKind {
					t.Errorf("kind = %s, want %s", k, tt.wantKind)
				}
			}
		})
	}
}

func TestRetryHonoursRetryAfter(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &Error{Kind: KindRateLimited, RetryAfter: 30 * time.Millisecond}},
		replyWith(`1`),
	)
	start := time.Now()
	if _, err := WithRetry(mock, fastRetry(2)).Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if waited := time.Since(start); waited < 30*time.Millisecond {
		t.Errorf("waited %v, want at least the 30ms RetryAfter", waited)
	}
}

func TestRetryStopsOnCancel(t *testing.T) {
	mock := NewMockProvider(fail(KindUnavailable), replyWith(`1`))
	cfg := fastRetry(2)
	cfg.InitialWait = time.Hour
	cfg.MaxWait = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := WithRetry(mock, cfg).Generate(ctx, Request{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
	if mock.CallCount() != 1 {
		t.Errorf("calls = %d, want 1", mock.CallCount())
	}
}

type blockingProvider struct{}

func (blockingProvider) Generate(ctx context.Context, _ Request) (*Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingProvider) ModelID() string { return "blocking" }

func TestTimeout(t *testing.T) {
	_, err := WithTimeout(blockingProvider{}, 10*time.Millisecond).Generate(context.Background(), Request{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
	if WithTimeout(blockingProvider{}, 0) != (blockingProvider{}) {
		t.Error("a zero timeout should leave the provider unwrapped")
	}
}

func TestRecordingStoresEvent(t *testing.T) {
	sink := &eventSink{}
	logger, _ := test.NewNullLogger()
	mock := NewMockProvider(MockResponse{
		Content: json.RawMessage(`{"explanation":"Paris has been the capital since 987."}`),
		Usage:   Usage{InputTokens: 120, OutputTokens: 14},
	})
	p := WithRecording(mock, "gemini", sink, logger)

	ctx := WithPurpose(context.Background(), PurposeExplain)
	_, err := p.Generate(ctx, Request{
		System:   "explain briefly",
		Messages: []Message{{Role: RoleUser, Content: "Why is Paris the answer?"}},
		Schema:   &Schema{Name: "explanation", Definition: map[string]any{"type": "object"}},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if len(sink.events) != 1 {
		t.Fatalf("events = %d, want 1", len(sink.events))
	}
	ev := sink.events[0]
	if ev.Provider != "gemini" || ev.Model != "mock" || ev.Purpose != "explain" {
		t.Errorf("event = %s/%s purpose %s", ev.Provider, ev.Model, ev.Purpose)
	}
	if !ev.Success || ev.InputTokens != 120 || ev.OutputTokens != 14 {
		t.Errorf("event = %+v", ev)
	}
	for _, want := range []string{"[system]\nexplain briefly", "[user]\nWhy is Paris", "[schema explanation]"} {
		if !strings.Contains(ev.RequestBody, want) {
			t.Errorf("RequestBody missing %q:\n%s", want, ev.RequestBody)
		}
	}
	if !strings.Contains(ev.ResponseBody, "since 987") {
		t.Errorf("ResponseBody = %q", ev.ResponseBody)
	}
}

func TestRecordingFailures(t *testing.T) {
	sink := &eventSink{err: errors.New("disk full")}
	logger, hook := test.NewNullLogger()
	mock := NewMockProvider(fail(KindUnavailable))

	_, err := WithRecording(mock, "openai", sink, logger).Generate(context.Background(), Request{})
	if k, _ := KindOf(err); err == nil || k != KindUnavailable {
		t.Fatalf("err = %v, want the provider's error", err)
	}
	if len(sink.events) != 1 || sink.events[0].Success || sink.events[0].ErrorMessage == "" {
		t.Errorf("events = %+v", sink.events)
	}
	if sink.events[0].Purpose != "unknown" {
		t.Errorf("Purpose = %q, want unknown", sink.events[0].Purpose)
	}

	warnings := 0
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warnings++
		}
	}
	if warnings != 2 {
		t.Errorf("warnings = %d, want one for the request and one for the sink", warnings)
	}
}
