package problemgen

import (
	"fmt"
	"strconv"
)

// Operator is the arithmetic operation of a problem.
type Operator string

const (
	OpMultiply Operator = "×"
	OpDivide   Operator = "÷"
)

// Spoken returns the Spanish word used when reading the operator aloud.
func (o Operator) Spoken() string {
	switch o {
	case OpMultiply:
		return "por"
	case OpDivide:
		return "dividido por"
	default:
		return string(o)
	}
}

// Theme is a presentation hint: multiplication cards are orange, division cards blue.
type Theme string

const (
	ThemeOrange Theme = "orange"
	ThemeBlue   Theme = "blue"
)

// Label returns the short family label shown next to the card (A or B).
func (t Theme) Label() string {
	if t == ThemeBlue {
		return "B"
	}
	return "A"
}

// ThemeFor returns the color theme for an operator.
func ThemeFor(op Operator) Theme {
	if op == OpDivide {
		return ThemeBlue
	}
	return ThemeOrange
}

// Level selects the division divisor range.
type Level int

const (
	Level1 Level = 1 // divisors 4..9
	Level2 Level = 2 // divisors 10..15
)

// Toggle returns the other level.
func (l Level) Toggle() Level {
	if l == Level2 {
		return Level1
	}
	return Level2
}

// ParseLevel converts user input into a Level.
func ParseLevel(s string) (Level, error) {
	n, err := strconv.Atoi(s)
	if err != nil || (n != int(Level1) && n != int(Level2)) {
		return 0, fmt.Errorf("invalid level %q: must be 1 or 2", s)
	}
	return Level(n), nil
}

// Problem is a single arithmetic prompt. Values are immutable once built.
type Problem struct {
	Operand1 int      `json:"operand1"`
	Operand2 int      `json:"operand2"`
	Operator Operator `json:"operator"`
	Answer   int      `json:"answer"`
	Text     string   `json:"question"`
	Theme    Theme    `json:"color_theme"`

	// IsRetry marks a problem re-served from the learner's recent failures.
	// It is never persisted with an attempt.
	IsRetry bool `json:"is_retry,omitempty"`
}

// Pair fixes the operands of a division problem.
type Pair struct {
	Dividend int
	Divisor  int
}

// DisplayText renders the canonical display text for a pair of operands.
func DisplayText(op1, op2 int, op Operator) string {
	return fmt.Sprintf("%d %s %d", op1, op, op2)
}

// New builds a problem from its operands, computing the answer.
// Division operands must divide exactly.
func New(op1, op2 int, op Operator) Problem {
	answer := op1 * op2
	if op == OpDivide {
		answer = op1 / op2
	}
	return Problem{
		Operand1: op1,
		Operand2: op2,
		Operator: op,
		Answer:   answer,
		Text:     DisplayText(op1, op2, op),
		Theme:    ThemeFor(op),
	}
}

// WithoutRetry returns a copy with the retry flag cleared.
func (p Problem) WithoutRetry() Problem {
	p.IsRetry = false
	return p
}

// IsZero reports whether p is the zero Problem.
func (p Problem) IsZero() bool {
	return p.Text == ""
}

// SpokenQuestion is the phrase read aloud when presenting the problem,
// e.g. "¿Cuánto es 7 por 8?".
func (p Problem) SpokenQuestion() string {
	return fmt.Sprintf("¿Cuánto es %d %s %d?", p.Operand1, p.Operator.Spoken(), p.Operand2)
}
