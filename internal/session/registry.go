package session

import (
	"sync"
	"time"
)

// Registry holds one Game per key (browser session, chat) and serializes
// access to each of them.
type Registry struct {
	mu    sync.Mutex
	slots map[string]*slot
	now   func() time.Time
}

type slot struct {
	mu   sync.Mutex
	game *Game
	seen time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{slots: make(map[string]*slot), now: time.Now}
}

// With runs fn with the game stored under key, creating it with create
// when missing. Calls for the same key never overlap.
func (r *Registry) With(key string, create func() *Game, fn func(g *Game)) {
	s := r.slot(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.game == nil {
		s.game = create()
	}
	fn(s.game)
}

// Replace installs g under key, closing the game it replaces.
func (r *Registry) Replace(key string, g *Game) {
	s := r.slot(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.game != nil && s.game != g {
		s.game.Close()
	}
	s.game = g
}

func (r *Registry) slot(key string) *slot {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[key]
	if !ok {
		s = &slot{}
		r.slots[key] = s
	}
	s.seen = r.now()
	return s
}

// Evict closes and drops games not used for longer than idle. It returns
// the number of games removed.
func (r *Registry) Evict(idle time.Duration) int {
	cutoff := r.now().Add(-idle)
	var stale []*slot

	r.mu.Lock()
	for k, s := range r.slots {
		if s.seen.Before(cutoff) {
			stale = append(stale, s)
			delete(r.slots, k)
		}
	}
	r.mu.Unlock()

	for _, s := range stale {
		s.mu.Lock()
		if s.game != nil {
			s.game.Close()
		}
		s.mu.Unlock()
	}
	return len(stale)
}

// Len returns the number of live games.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.slots)
}

// Close closes every game and empties the registry.
func (r *Registry) Close() {
	r.mu.Lock()
	slots := r.slots
	r.slots = make(map[string]*slot)
	r.mu.Unlock()

	for _, s := range slots {
		s.mu.Lock()
		if s.game != nil {
			s.game.Close()
		}
		s.mu.Unlock()
	}
}
