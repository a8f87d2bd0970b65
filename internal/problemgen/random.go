package problemgen

import (
	"math"
	"math/rand/v2"
)

// Rand is the source of randomness used by the factory and the tutor.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

// DefaultRand draws from the process-wide math/rand/v2 generator and is safe
// for concurrent use.
var DefaultRand Rand = globalRand{}

type globalRand struct{}

func (globalRand) IntN(n int) int    { return rand.IntN(n) }
func (globalRand) Float64() float64 { return rand.Float64() }

// NewSeededRand returns a deterministic source, mostly useful in tests.
func NewSeededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// RandomInt returns a uniformly distributed integer in [min, max].
// min is rounded up and max rounded down first. Panics if the normalized
// range is empty.
func RandomInt(r Rand, min, max float64) int {
	lo := int(math.Ceil(min))
	hi := int(math.Floor(max))
	return lo + r.IntN(hi-lo+1)
}

// ScriptedRand replays fixed IntN results and Float64 draws, then returns
// zeros. It makes selection paths reproducible in tests.
type ScriptedRand struct {
	ints   []int
	floats []float64
}

// NewScriptedRand returns a Rand that replays ints and floats in order.
func NewScriptedRand(ints []int, floats []float64) *ScriptedRand {
	return &ScriptedRand{ints: ints, floats: floats}
}

func (s *ScriptedRand) IntN(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	if v >= n {
		panic("scripted value out of range")
	}
	return v
}

func (s *ScriptedRand) Float64() float64 {
	if len(s.floats) == 0 {
		return 0
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}
