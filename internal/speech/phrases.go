package speech

import "fmt"

// DefaultChildName is used in praise when no name is configured.
const DefaultChildName = "Emmita"

// Feedback phrases.
const (
	Correct  = "¡Correcto!"
	TryAgain = "Oh, intenta de nuevo."
)

// HardWon is the praise for solving a problem that had been failed before.
func HardWon(name string) string {
	if name == "" {
		name = DefaultChildName
	}
	return fmt.Sprintf("¡Guau! ¡Has superado un reto difícil! Eres una campeona, %s.", name)
}
