package llm

// ModelCost is the USD price per million tokens of a model.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Cost returns the USD cost of the given token counts.
func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return (float64(inputTokens)*c.InputPerMTok + float64(outputTokens)*c.OutputPerMTok) / 1_000_000
}

// LookupCost returns the price of a model id, or nil if unknown. Aliases
// are resolved first.
func LookupCost(model string) *ModelCost {
	for _, aliases := range []map[string]string{anthropicModels, geminiModels} {
		model = resolveModel(model, aliases)
	}
	if c, ok := modelCosts[model]; ok {
		return &c
	}
	return nil
}

// Published list prices of the models a trick request is likely to use.
var modelCosts = map[string]ModelCost{
	"claude-haiku-4-5-20251001":   {1, 5},
	"claude-sonnet-4-5-20250929":  {3, 15},
	"gpt-4o-mini":                 {0.15, 0.6},
	"gpt-4.1-mini":                {0.4, 1.6},
	"gpt-4.1-nano":                {0.1, 0.4},
	"gemini-2.5-flash":            {0.3, 2.5},
	"gemini-2.5-flash-lite":       {0.1, 0.4},
	"google/gemini-2.0-flash-001": {0.1, 0.4},
}
