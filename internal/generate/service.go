// Package generate drafts new quizzes with an LLM.
package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/quizmaster/internal/llm"
	"github.com/abhisek/quizmaster/internal/markup"
	"github.com/abhisek/quizmaster/internal/quiz"
)

// Request describes the quiz to draft.
type Request struct {
	Topic      string
	Count      int
	Types      []quiz.Type
	Difficulty string

	// Notes is optional source material the questions should be based on.
	Notes string
}

// Draft is a generated quiz that has passed validation.
type Draft struct {
	quiz.SaveRequest

	// Markup is the canonical markup of the questions.
	Markup string
}

// Config holds generation settings.
type Config struct {
	MaxTokens   int
	Temperature float64

	// MaxAttempts is how many times a draft that fails parsing or
	// validation is sent back to the model for repair.
	MaxAttempts int

	// MaxQuestions caps Request.Count.
	MaxQuestions int
}

// DefaultConfig returns the recommended settings.
func DefaultConfig() Config {
	return Config{
		MaxTokens:    4096,
		Temperature:  0.7,
		MaxAttempts:  2,
		MaxQuestions: 30,
	}
}

// Service drafts quizzes.
type Service struct {
	provider llm.Provider
	cfg      Config
	log      logrus.FieldLogger
}

// NewService creates a generation service.
func NewService(provider llm.Provider, cfg Config, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{provider: provider, cfg: cfg, log: log}
}

type draftOutput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Markup      string `json:"markup"`
}

// Generate asks the model for a quiz and returns it once it parses into
// the requested number of questions and validates.
func (s *Service) Generate(ctx context.Context, req Request) (*Draft, error) {
	if strings.TrimSpace(req.Topic) == "" {
		return nil, fmt.Errorf("topic is required")
	}
	if req.Count <= 0 {
		req.Count = 5
	}
	if req.Count > s.cfg.MaxQuestions {
		return nil, fmt.Errorf("at most %d questions can be generated at once", s.cfg.MaxQuestions)
	}
	for _, t := range req.Types {
		if !t.Valid() {
			return nil, fmt.Errorf("unknown question type %q", t)
		}
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeGenerate)
	messages := []llm.Message{{Role: llm.RoleUser, Content: buildUserMessage(req)}}

	var lastErr error
	for attempt := range max(1, s.cfg.MaxAttempts) {
		resp, err := s.provider.Generate(ctx, llm.Request{
			System:      systemPrompt,
			Messages:    messages,
			Schema:      DraftSchema,
			MaxTokens:   s.cfg.MaxTokens,
			Temperature: s.cfg.Temperature,
		})
		if err != nil {
			return nil, fmt.Errorf("quiz generation: %w", err)
		}

		var out draftOutput
		if err := json.Unmarshal(resp.Content, &out); err != nil {
			return nil, fmt.Errorf("parse generation response: %w", err)
		}

		draft, parsed, verr := check(out, req.Count)
		if draft != nil {
			return draft, nil
		}

		lastErr = verr
		if lastErr == nil {
			lastErr = fmt.Errorf("parsed %d of %d questions", parsed, req.Count)
		}
		s.log.WithFields(logrus.Fields{
			"attempt": attempt + 1,
			"topic":   req.Topic,
		}).WithError(lastErr).Warn("generated quiz rejected")

		messages = append(messages,
			llm.Message{Role: llm.RoleAssistant, Content: string(resp.Content)},
			llm.Message{Role: llm.RoleUser, Content: buildRetryMessage(out.Markup, lastErr)},
		)
	}
	return nil, fmt.Errorf("generated quiz is unusable: %w", lastErr)
}

// check parses and validates a model draft. It returns the number of
// questions parsed, and the draft when it is usable. A draft that parses
// but fails validation is returned as the error.
func check(out draftOutput, want int) (*Draft, int, error) {
	questions := markup.Parse(out.Markup)
	if len(questions) < want {
		return nil, len(questions), nil
	}
	questions = questions[:want]

	save := quiz.SaveRequest{
		Title:       out.Title,
		Description: strings.TrimSpace(out.Description),
		Questions:   questions,
	}
	if err := save.Check(); err != nil {
		return nil, len(questions), err
	}
	return &Draft{SaveRequest: save, Markup: markup.Serialize(questions)}, len(questions), nil
}
