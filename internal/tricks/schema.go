package tricks

import "github.com/abhisek/mathemmita/internal/llm"

// TrickSchema is the structure a generated trick must follow.
var TrickSchema = &llm.Schema{
	Name:        "math-trick",
	Description: "A short hint that helps a child solve one multiplication or division fact",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "Playful title in Spanish (2-6 words, may end with one emoji)",
			},
			"steps": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "1-4 short steps in Spanish that lead to the answer without stating it",
			},
			"spoken": map[string]any{
				"type":        "string",
				"description": "The same hint as one paragraph to be read aloud in Spanish",
			},
			"answer": map[string]any{
				"type":        "integer",
				"description": "The correct answer of the problem",
			},
		},
		"required":             []any{"title", "steps", "spoken", "answer"},
		"additionalProperties": false,
	},
}
