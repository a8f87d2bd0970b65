package tutor

import "fmt"

// Default tuning values.
const (
	DefaultRepeatProbability   = 0.3
	DefaultRecentFailures      = 5
	DefaultScaffoldProbability = 0.5

	MinRecentFailures = 5
	MaxRecentFailures = 10
)

// Config tunes how often the tutor repeats failures and scaffolds divisions.
type Config struct {
	// RepeatProbability is the chance of serving a pending failure again.
	RepeatProbability float64 `yaml:"repeat_probability"`

	// RecentFailures is how many recent incorrect attempts are considered.
	// Clamped to [5,10].
	RecentFailures int `yaml:"recent_failures"`

	// ScaffoldProbability is the chance of following a multiplication with
	// its inverse division.
	ScaffoldProbability float64 `yaml:"scaffold_probability"`
}

// DefaultConfig returns the standard tuning.
func DefaultConfig() Config {
	return Config{
		RepeatProbability:   DefaultRepeatProbability,
		RecentFailures:      DefaultRecentFailures,
		ScaffoldProbability: DefaultScaffoldProbability,
	}
}

// Validate checks that probabilities are in [0,1] and the failure window
// is within bounds.
func (c Config) Validate() error {
	if c.RepeatProbability < 0 || c.RepeatProbability > 1 {
		return fmt.Errorf("repeat_probability must be in [0,1], got %v", c.RepeatProbability)
	}
	if c.ScaffoldProbability < 0 || c.ScaffoldProbability > 1 {
		return fmt.Errorf("scaffold_probability must be in [0,1], got %v", c.ScaffoldProbability)
	}
	if c.RecentFailures < MinRecentFailures || c.RecentFailures > MaxRecentFailures {
		return fmt.Errorf("recent_failures must be between %d and %d, got %d",
			MinRecentFailures, MaxRecentFailures, c.RecentFailures)
	}
	return nil
}

func (c Config) failureWindow() int {
	n := c.RecentFailures
	if n < MinRecentFailures {
		return MinRecentFailures
	}
	if n > MaxRecentFailures {
		return MaxRecentFailures
	}
	return n
}
