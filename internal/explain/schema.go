package explain

import "github.com/abhisek/quizmaster/internal/llm"

// ExplanationSchema defines the JSON schema for answer explanations.
var ExplanationSchema = &llm.Schema{
	Name:        "answer-explanation",
	Description: "Why the correct answer to a quiz question is correct",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"explanation": map[string]any{
				"type":        "string",
				"description": "2-4 sentence explanation of why the correct answer is right",
			},
			"misconception": map[string]any{
				"type":        "string",
				"description": "If the learner answered wrongly, the likely misunderstanding behind their choice in one sentence; otherwise empty",
			},
		},
		"required":             []any{"explanation", "misconception"},
		"additionalProperties": false,
	},
}
