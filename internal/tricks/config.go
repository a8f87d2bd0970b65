package tricks

// Config tunes generated tricks.
type Config struct {
	// Generate enables the language model; the static trick is used
	// otherwise and whenever generation fails.
	Generate    bool    `yaml:"generate"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

// DefaultConfig returns the defaults for trick generation.
func DefaultConfig() Config {
	return Config{
		Generate:    true,
		MaxTokens:   400,
		Temperature: 0.4,
	}
}
