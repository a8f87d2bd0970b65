package tutor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/mathemmita/internal/problemgen"
	"github.com/abhisek/mathemmita/internal/store"
)

// History is the read-only view of the attempt log the tutor needs.
// store.AttemptRepo satisfies it.
type History interface {
	RecentIncorrect(ctx context.Context, userID string, limit int) ([]store.AttemptRecord, error)
	HasLaterCorrect(ctx context.Context, userID, displayText string, after time.Time) (bool, error)
}

// Selector picks the next problem: a pending failure, the inverse of the
// last multiplication, or a fresh problem.
//
// The selector holds no per-player state and is safe for concurrent use.
type Selector struct {
	history History
	logger  *zap.Logger

	mu  sync.RWMutex
	cfg Config
}

// Option configures a Selector.
type Option func(*Selector)

// WithLogger sets the logger used to report history failures.
func WithLogger(l *zap.Logger) Option {
	return func(s *Selector) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithConfig overrides the default tuning.
func WithConfig(cfg Config) Option {
	return func(s *Selector) { s.cfg = cfg }
}

// NewSelector creates a selector. A nil history disables repetition of
// failures (offline play).
func NewSelector(history History, opts ...Option) *Selector {
	s := &Selector{
		history: history,
		logger:  zap.NewNop(),
		cfg:     DefaultConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the current tuning.
func (s *Selector) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// SetConfig swaps the tuning at runtime.
func (s *Selector) SetConfig(cfg Config) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}

// Next returns the next problem for the player.
func (s *Selector) Next(ctx context.Context, sess *Session, userID string, level problemgen.Level) problemgen.Problem {
	cfg := s.Config()

	sess.mu.Lock()
	defer sess.mu.Unlock()

	f := sess.factory
	rng := f.Rand()

	if s.history != nil && rng.Float64() < cfg.RepeatProbability {
		if p, ok := s.pendingFailure(ctx, rng, userID, cfg.failureWindow()); ok {
			return p
		}
	}

	if last, ok := f.Last(); ok && last.Operator == problemgen.OpMultiply && rng.Float64() < cfg.ScaffoldProbability {
		divisor := last.Operand1
		if rng.Float64() >= 0.5 {
			divisor = last.Operand2
		}
		return f.Division(level, &problemgen.Pair{Dividend: last.Answer, Divisor: divisor})
	}

	if rng.Float64() < 0.5 {
		return f.Multiplication()
	}
	return f.Division(level, nil)
}

// pendingFailure picks one recent failure that has not been answered
// correctly since. Any history error drops back to generation.
func (s *Selector) pendingFailure(ctx context.Context, rng problemgen.Rand, userID string, window int) (problemgen.Problem, bool) {
	failures, err := s.history.RecentIncorrect(ctx, userID, window)
	if err != nil {
		s.logger.Warn("load recent failures", zap.String("user_id", userID), zap.Error(err))
		return problemgen.Problem{}, false
	}

	pending := make([]store.AttemptRecord, 0, len(failures))
	seen := make(map[string]bool, len(failures))
	for _, rec := range failures {
		// Newest first, so the first occurrence of a text is its latest failure.
		if seen[rec.DisplayText] {
			continue
		}
		seen[rec.DisplayText] = true

		solved, err := s.history.HasLaterCorrect(ctx, userID, rec.DisplayText, rec.Timestamp)
		if err != nil {
			s.logger.Warn("check later correct",
				zap.String("user_id", userID),
				zap.String("problem", rec.DisplayText),
				zap.Error(err))
			return problemgen.Problem{}, false
		}
		if !solved {
			pending = append(pending, rec)
		}
	}
	if len(pending) == 0 {
		return problemgen.Problem{}, false
	}

	rec := pending[rng.IntN(len(pending))]
	p := problemgen.New(rec.Operand1, rec.Operand2, problemgen.Operator(rec.Operator))
	p.IsRetry = true
	s.logger.Debug("repeating failure", zap.String("user_id", userID), zap.String("problem", p.Text))
	return p, true
}
