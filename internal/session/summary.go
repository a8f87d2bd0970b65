package session

import "time"

// Summary holds the totals of a play session.
type Summary struct {
	Started    time.Time
	Duration   time.Duration
	Served     int
	Answered   int
	Correct    int // includes hard-won victories
	Incorrect  int
	RetriesWon int
	Revealed   int
	Points     int
}

// Accuracy returns correct answers over submitted answers, in [0,1].
func (s Summary) Accuracy() float64 {
	if s.Answered == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Answered)
}

func (s *Summary) record(o Outcome, points int) {
	switch o {
	case OutcomeCorrect:
		s.Answered++
		s.Correct++
	case OutcomeHardWon:
		s.Answered++
		s.Correct++
		s.RetriesWon++
	case OutcomeIncorrect:
		s.Answered++
		s.Incorrect++
	case OutcomeRevealed:
		s.Revealed++
	}
	s.Points += points
}
