package session

import (
	"github.com/abhisek/mathemmita/internal/rewards"
)

// sessionInitMsg is sent when the player's points and prizes are loaded.
type sessionInitMsg struct {
	Balance rewards.Balance
	Prizes  rewards.Config
	Err     error
}

// feedbackDoneMsg is sent when the praise after a correct answer has been
// shown long enough.
type feedbackDoneMsg struct {
	Round int
}

// retryMsg is sent when the wrong-answer message should clear so the child
// can try again.
type retryMsg struct {
	Round int
}

// trickReadyMsg carries a rendered trick for the problem of a round.
type trickReadyMsg struct {
	Round int
	Text  string
	Err   error
}

// sessionEndMsg is sent to trigger the session end flow.
type sessionEndMsg struct{}
