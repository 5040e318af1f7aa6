// Package explain produces explanations for quiz answers, preferring the
// LLM and falling back to what the quiz author wrote.
package explain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/quizmaster/internal/llm"
	"github.com/abhisek/quizmaster/internal/quiz"
)

// Source says where an explanation came from.
type Source string

const (
	SourceLLM      Source = "llm"
	SourceAuthored Source = "authored"
	SourceAnswer   Source = "answer"
)

// Explanation is the text shown to the learner.
type Explanation struct {
	Text          string
	Misconception string
	Source        Source
}

// Config holds explanation generation settings.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns the recommended settings.
func DefaultConfig() Config {
	return Config{MaxTokens: 400, Temperature: 0.2}
}

// Service explains answers. A nil provider always falls back.
type Service struct {
	provider llm.Provider
	cfg      Config
	log      logrus.FieldLogger
}

// NewService creates an explanation service.
func NewService(provider llm.Provider, cfg Config, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{provider: provider, cfg: cfg, log: log}
}

type explanationOutput struct {
	Explanation   string `json:"explanation"`
	Misconception string `json:"misconception"`
}

// Explain returns an explanation for q given the learner's answer a, which
// may be nil. It never fails: any LLM error falls back to the authored
// explanation, then to the correct answer text.
func (s *Service) Explain(ctx context.Context, q *quiz.Question, a *quiz.Answer) Explanation {
	if s.provider != nil {
		exp, err := s.generate(ctx, q, a)
		if err == nil {
			return exp
		}
		s.log.WithError(err).Warn("explanation generation failed, using fallback")
	}
	return Fallback(q)
}

// Fallback returns the explanation available without an LLM.
func Fallback(q *quiz.Question) Explanation {
	if strings.TrimSpace(q.Explanation) != "" {
		return Explanation{Text: q.Explanation, Source: SourceAuthored}
	}
	return Explanation{Text: "Correct answer: " + q.CorrectText(), Source: SourceAnswer}
}

func (s *Service) generate(ctx context.Context, q *quiz.Question, a *quiz.Answer) (Explanation, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeExplain)

	resp, err := s.provider.Generate(ctx, llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(q, a)},
		},
		Schema:      ExplanationSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return Explanation{}, fmt.Errorf("explanation generation: %w", err)
	}

	var out explanationOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return Explanation{}, fmt.Errorf("parse explanation response: %w", err)
	}
	if strings.TrimSpace(out.Explanation) == "" {
		return Explanation{}, fmt.Errorf("empty explanation")
	}

	return Explanation{
		Text:          strings.TrimSpace(out.Explanation),
		Misconception: strings.TrimSpace(out.Misconception),
		Source:        SourceLLM,
	}, nil
}
