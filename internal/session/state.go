package session

// Phase is the state of the current round.
type Phase int

const (
	PhaseIdle      Phase = iota // No problem presented yet
	PhasePresented              // Waiting for an answer
	PhaseCorrect                // Answered correctly, waiting for the next problem
	PhaseIncorrect              // Wrong answer shown, input resets next
	PhaseRevealed               // Solution shown, waiting for the next problem
	PhaseVictory                // Medal shown for a hard-won victory
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePresented:
		return "presented"
	case PhaseCorrect:
		return "correct"
	case PhaseIncorrect:
		return "incorrect"
	case PhaseRevealed:
		return "revealed"
	case PhaseVictory:
		return "victory"
	default:
		return "unknown"
	}
}

// AcceptsInput reports whether key input is processed in this phase.
func (p Phase) AcceptsInput() bool {
	return p == PhasePresented || p == PhaseIncorrect
}

// Outcome classifies the result of a submission or reveal.
type Outcome int

const (
	OutcomeCorrect Outcome = iota
	OutcomeHardWon
	OutcomeIncorrect
	OutcomeRevealed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCorrect:
		return "correct"
	case OutcomeHardWon:
		return "hard_won"
	case OutcomeIncorrect:
		return "incorrect"
	case OutcomeRevealed:
		return "revealed"
	default:
		return "unknown"
	}
}
