package tutor

import (
	"sync"

	"github.com/abhisek/mathemmita/internal/problemgen"
)

// Session is the per-player selection context. It owns the factory whose
// last-problem memory drives scaffolding, so two players never share it.
type Session struct {
	mu      sync.Mutex
	factory *problemgen.Factory
}

// NewSession creates a session drawing from rng. A nil rng uses the
// process-wide generator.
func NewSession(rng problemgen.Rand) *Session {
	return &Session{factory: problemgen.NewFactory(rng)}
}

// Last returns the most recently generated problem of this session.
func (s *Session) Last() (problemgen.Problem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.factory.Last()
}

// Restore seeds the last generated problem, e.g. from a saved snapshot.
func (s *Session) Restore(p problemgen.Problem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.factory.Restore(p)
}
