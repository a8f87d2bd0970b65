package rewards

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxPrizeLength is the longest prize name accepted, in characters.
const MaxPrizeLength = 50

// Milestone is a daily points threshold that unlocks a prize.
type Milestone struct {
	Level  int
	Points int
	Medal  string
}

// Milestones returns the three milestones in ascending order.
func Milestones() []Milestone {
	return []Milestone{
		{Level: 1, Points: 1000, Medal: "🥉"},
		{Level: 2, Points: 2000, Medal: "🥈"},
		{Level: 3, Points: 3000, Medal: "🥇"},
	}
}

// MaxPoints is the points value at which progress is full.
const MaxPoints = 3000

// Config holds the prize names chosen by the parent, one per milestone.
type Config struct {
	Level1 string `json:"level1"`
	Level2 string `json:"level2"`
	Level3 string `json:"level3"`
}

// ValidationError reports an invalid prize name.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Validate checks every prize name is 1..50 characters.
func (c Config) Validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"level1", c.Level1},
		{"level2", c.Level2},
		{"level3", c.Level3},
	}
	for _, f := range fields {
		v := strings.TrimSpace(f.value)
		if v == "" {
			return &ValidationError{Field: f.name, Reason: "El premio no puede estar vacío."}
		}
		if utf8.RuneCountInString(v) > MaxPrizeLength {
			return &ValidationError{Field: f.name, Reason: "Máximo 50 caracteres."}
		}
	}
	return nil
}

// Prize returns the prize name for a milestone, falling back to
// "Premio <points>" when none is configured.
func (c Config) Prize(m Milestone) string {
	var name string
	switch m.Level {
	case 1:
		name = c.Level1
	case 2:
		name = c.Level2
	case 3:
		name = c.Level3
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Sprintf("Premio %d", m.Points)
	}
	return name
}

// Label renders a milestone with its medal and prize, e.g. "🥉 Helado".
func (c Config) Label(m Milestone) string {
	return m.Medal + " " + c.Prize(m)
}
