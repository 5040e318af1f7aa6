package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/quizmaster/internal/store"
)

// NewProvider builds the provider named by cfg. Requests pass through
// timeout, then retry, then recording before reaching the vendor, so
// every attempt is recorded and the timeout covers all of them.
func NewProvider(ctx context.Context, cfg Config, events store.EventRepo, log logrus.FieldLogger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Provider == "mock" {
		return NewMockProvider(), nil
	}

	v, _ := lookupVendor(cfg.Provider)
	cfg = cfg.resolved(v)
	s, err := v.dial(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s provider: %w", cfg.Provider, err)
	}

	var p Provider = &sdkProvider{model: cfg.Model, sender: s}
	p = WithRecording(p, v.name, events, log)
	p = WithRetry(p, cfg.Retry)
	return WithTimeout(p, cfg.Timeout), nil
}

type timeoutProvider struct {
	Provider
	d time.Duration
}

// WithTimeout cancels each Generate call after d. A non-positive d
// returns p unchanged.
func WithTimeout(p Provider, d time.Duration) Provider {
	if d <= 0 {
		return p
	}
	return &timeoutProvider{Provider: p, d: d}
}

func (t *timeoutProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.Provider.Generate(ctx, req)
}

type retryProvider struct {
	Provider
	cfg RetryConfig
}

// WithRetry retries failed requests with jittered exponential backoff.
// Rejected and truncated requests are not retried, and an invalid
// response is retried once.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	return &retryProvider{Provider: p, cfg: cfg}
}

func (r *retryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	attempts := max(1, r.cfg.MaxAttempts)
	invalidSeen := false

	var err error
	for i := range attempts {
		var resp *Response
		resp, err = r.Provider.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}

		kind, _ := KindOf(err)
		switch kind {
		case KindRejected, KindTruncated:
			return nil, err
		case KindInvalidResponse:
			if invalidSeen {
				return nil, err
			}
			invalidSeen = true
		}
		if i == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.wait(i, err)):
		}
	}
	return nil, err
}

func (r *retryProvider) wait(attempt int, err error) time.Duration {
	var e *Error
	if errors.As(err, &e) && e.RetryAfter > 0 {
		return e.RetryAfter
	}
	d := float64(r.cfg.InitialWait) * math.Pow(r.cfg.Multiplier, float64(attempt))
	d = min(d, float64(r.cfg.MaxWait))
	// ±20% jitter
	d *= 0.8 + 0.4*rand.Float64()
	return time.Duration(d)
}

type recordingProvider struct {
	Provider
	vendor string
	events store.EventRepo
	log    logrus.FieldLogger
}

// WithRecording logs every request and appends it to the LLM event log.
// A nil events repo only logs. Failing to record never fails the request.
func WithRecording(p Provider, vendor string, events store.EventRepo, log logrus.FieldLogger) Provider {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &recordingProvider{Provider: p, vendor: vendor, events: events, log: log}
}

func (r *recordingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := r.Provider.Generate(ctx, req)

	ev := store.LLMRequestEventData{
		Provider:    r.vendor,
		Model:       r.ModelID(),
		Purpose:     string(PurposeFrom(ctx)),
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: transcript(req),
	}
	if resp != nil {
		ev.Model = resp.Model
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		ev.ResponseBody = string(resp.Content)
	}

	entry := r.log.WithFields(logrus.Fields{
		"provider":      ev.Provider,
		"model":         ev.Model,
		"purpose":       ev.Purpose,
		"latency_ms":    ev.LatencyMs,
		"input_tokens":  ev.InputTokens,
		"output_tokens": ev.OutputTokens,
	})
	if err != nil {
		ev.ErrorMessage = err.Error()
		entry.WithError(err).Warn("llm request failed")
	} else {
		entry.Debug("llm request")
	}

	if r.events != nil {
		if rerr := r.events.AppendLLMRequest(ctx, ev); rerr != nil {
			r.log.WithError(rerr).Warn("failed to record llm request")
		}
	}
	return resp, err
}

// transcript renders req the way it is shown by `quizmaster llm view`.
func transcript(req Request) string {
	var b strings.Builder
	if req.System != "" {
		fmt.Fprintf(&b, "[system]\n%s\n\n", req.System)
	}
	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema %s]\n%s\n", req.Schema.Name, def)
		}
	}
	return b.String()
}
