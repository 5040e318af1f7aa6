package generate

import "github.com/abhisek/quizmaster/internal/llm"

// DraftSchema defines the JSON schema for a generated quiz draft. The
// questions travel as quiz markup so they go through the same parser as
// hand-written quizzes.
var DraftSchema = &llm.Schema{
	Name:        "quiz-draft",
	Description: "A quiz written in quizmaster markup",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "Short quiz title (3-10 words)",
			},
			"description": map[string]any{
				"type":        "string",
				"description": "One sentence describing what the quiz covers",
			},
			"markup": map[string]any{
				"type":        "string",
				"description": "The questions in quizmaster markup, numbered from 1",
			},
		},
		"required":             []any{"title", "description", "markup"},
		"additionalProperties": false,
	},
}
