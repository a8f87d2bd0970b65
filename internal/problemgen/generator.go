package problemgen

// Operand ranges for generated problems.
const (
	FactorMin = 4
	FactorMax = 9

	QuotientMin = 2
	QuotientMax = 9

	Level1DivisorMin = 4
	Level1DivisorMax = 9
	Level2DivisorMin = 10
	Level2DivisorMax = 15
)

// Factory builds multiplication and division problems and remembers the
// most recently generated one so the tutor can scaffold from it.
//
// A Factory belongs to one play session and is not safe for concurrent use.
type Factory struct {
	rng  Rand
	last *Problem
}

// NewFactory creates a Factory drawing from rng. A nil rng uses DefaultRand.
func NewFactory(rng Rand) *Factory {
	if rng == nil {
		rng = DefaultRand
	}
	return &Factory{rng: rng}
}

// Multiplication returns a product of two factors in [4,9].
func (f *Factory) Multiplication() Problem {
	a := RandomInt(f.rng, FactorMin, FactorMax)
	b := RandomInt(f.rng, FactorMin, FactorMax)
	return f.remember(New(a, b, OpMultiply))
}

// Division returns an exact division. With a fixed pair the operands are used
// as given and the caller guarantees divisibility; otherwise the divisor comes
// from the level's range and the quotient from [2,9].
func (f *Factory) Division(level Level, fixed *Pair) Problem {
	if fixed != nil {
		return f.remember(New(fixed.Dividend, fixed.Divisor, OpDivide))
	}

	lo, hi := divisorRange(level)
	divisor := RandomInt(f.rng, float64(lo), float64(hi))
	quotient := RandomInt(f.rng, QuotientMin, QuotientMax)
	return f.remember(New(divisor*quotient, divisor, OpDivide))
}

// Last returns the most recently generated problem.
func (f *Factory) Last() (Problem, bool) {
	if f.last == nil {
		return Problem{}, false
	}
	return *f.last, true
}

// Restore seeds the last-problem memory, used when resuming a saved session.
func (f *Factory) Restore(p Problem) {
	if p.IsZero() {
		f.last = nil
		return
	}
	f.remember(p.WithoutRetry())
}

// Rand exposes the factory's random source.
func (f *Factory) Rand() Rand {
	return f.rng
}

func (f *Factory) remember(p Problem) Problem {
	f.last = &p
	return p
}

func divisorRange(level Level) (int, int) {
	if level == Level2 {
		return Level2DivisorMin, Level2DivisorMax
	}
	return Level1DivisorMin, Level1DivisorMax
}
