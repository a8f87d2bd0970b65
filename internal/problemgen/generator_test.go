package problemgen

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRandomInt_Normalizes(t *testing.T) {
	r := NewSeededRand(1)
	for i := 0; i < 500; i++ {
		got := RandomInt(r, 3.2, 5.9)
		if got < 4 || got > 5 {
			t.Fatalf("RandomInt(3.2, 5.9) = %d, want in [4,5]", got)
		}
	}
}

func TestRandomInt_SinglePoint(t *testing.T) {
	r := NewSeededRand(2)
	for i := 0; i < 20; i++ {
		if got := RandomInt(r, 7, 7); got != 7 {
			t.Fatalf("RandomInt(7, 7) = %d, want 7", got)
		}
	}
}

func TestRandomInt_CoversRange(t *testing.T) {
	r := NewSeededRand(3)
	seen := map[int]bool{}
	for i := 0; i < 2000; i++ {
		seen[RandomInt(r, 4, 9)] = true
	}
	for v := 4; v <= 9; v++ {
		if !seen[v] {
			t.Errorf("value %d never drawn", v)
		}
	}
}

func TestMultiplication_Bounds(t *testing.T) {
	f := NewFactory(NewSeededRand(4))
	for i := 0; i < 500; i++ {
		p := f.Multiplication()
		if p.Operand1 < 4 || p.Operand1 > 9 || p.Operand2 < 4 || p.Operand2 > 9 {
			t.Fatalf("operands out of range: %+v", p)
		}
		if p.Answer != p.Operand1*p.Operand2 {
			t.Fatalf("answer mismatch: %+v", p)
		}
		if p.Answer < 16 || p.Answer > 81 {
			t.Fatalf("answer out of range: %+v", p)
		}
		if p.Operator != OpMultiply || p.Theme != ThemeOrange {
			t.Fatalf("unexpected operator/theme: %+v", p)
		}
		if p.IsRetry {
			t.Fatal("fresh problem must not be a retry")
		}
	}
}

func TestDivision_LevelRanges(t *testing.T) {
	tests := []struct {
		level  Level
		lo, hi int
	}{
		{Level1, 4, 9},
		{Level2, 10, 15},
	}
	for _, tt := range tests {
		f := NewFactory(NewSeededRand(5))
		for i := 0; i < 500; i++ {
			p := f.Division(tt.level, nil)
			if p.Operand2 < tt.lo || p.Operand2 > tt.hi {
				t.Fatalf("level %d divisor %d out of [%d,%d]", tt.level, p.Operand2, tt.lo, tt.hi)
			}
			if p.Answer < 2 || p.Answer > 9 {
				t.Fatalf("quotient %d out of [2,9]", p.Answer)
			}
			if p.Operand1%p.Operand2 != 0 || p.Operand1 != p.Operand2*p.Answer {
				t.Fatalf("inexact division: %+v", p)
			}
			if p.Theme != ThemeBlue {
				t.Fatalf("theme = %s, want blue", p.Theme)
			}
		}
	}
}

func TestDivision_Scripted(t *testing.T) {
	// divisor = 4 + 2, quotient = 2 + 5
	f := NewFactory(NewScriptedRand([]int{2, 5}, nil))
	got := f.Division(Level1, nil)
	want := Problem{
		Operand1: 42,
		Operand2: 6,
		Operator: OpDivide,
		Answer:   7,
		Text:     "42 ÷ 6",
		Theme:    ThemeBlue,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Division mismatch (-want +got):\n%s", diff)
	}
}

func TestDivision_FixedPair(t *testing.T) {
	f := NewFactory(NewScriptedRand(nil, nil))
	got := f.Division(Level2, &Pair{Dividend: 56, Divisor: 8})
	if got.Text != "56 ÷ 8" || got.Answer != 7 {
		t.Errorf("fixed pair = %+v, want 56 ÷ 8 = 7", got)
	}
}

func TestFactory_RemembersLast(t *testing.T) {
	f := NewFactory(NewSeededRand(6))
	if _, ok := f.Last(); ok {
		t.Fatal("fresh factory should have no last problem")
	}
	m := f.Multiplication()
	if last, _ := f.Last(); last != m {
		t.Errorf("last = %+v, want %+v", last, m)
	}
	d := f.Division(Level1, nil)
	if last, _ := f.Last(); last != d {
		t.Errorf("last = %+v, want %+v", last, d)
	}
}

func TestFactories_AreIndependent(t *testing.T) {
	a := NewFactory(NewSeededRand(7))
	b := NewFactory(NewSeededRand(8))
	a.Multiplication()
	if _, ok := b.Last(); ok {
		t.Error("generating on one factory must not affect another")
	}
}

func TestRestore_ClearsRetry(t *testing.T) {
	f := NewFactory(nil)
	p := New(7, 8, OpMultiply)
	p.IsRetry = true
	f.Restore(p)
	last, ok := f.Last()
	if !ok || last.IsRetry || last.Text != "7 × 8" {
		t.Errorf("restored last = %+v", last)
	}
}

func TestDisplayText(t *testing.T) {
	tests := []struct {
		a, b int
		op   Operator
		want string
	}{
		{7, 8, OpMultiply, "7 × 8"},
		{42, 6, OpDivide, "42 ÷ 6"},
		{120, 15, OpDivide, "120 ÷ 15"},
	}
	for _, tt := range tests {
		if got := DisplayText(tt.a, tt.b, tt.op); got != tt.want {
			t.Errorf("DisplayText(%d, %d, %s) = %q, want %q", tt.a, tt.b, tt.op, got, tt.want)
		}
		if got := New(tt.a, tt.b, tt.op).Text; got != tt.want {
			t.Errorf("New(...).Text = %q, want %q", got, tt.want)
		}
	}
}

func TestSpokenQuestion(t *testing.T) {
	if got := New(7, 8, OpMultiply).SpokenQuestion(); got != "¿Cuánto es 7 por 8?" {
		t.Errorf("got %q", got)
	}
	if got := New(42, 6, OpDivide).SpokenQuestion(); got != "¿Cuánto es 42 dividido por 6?" {
		t.Errorf("got %q", got)
	}
}

func TestLevel(t *testing.T) {
	if Level1.Toggle() != Level2 || Level2.Toggle() != Level1 {
		t.Error("toggle should swap levels")
	}
	if _, err := ParseLevel("3"); err == nil {
		t.Error("expected error for level 3")
	}
	if l, err := ParseLevel("2"); err != nil || l != Level2 {
		t.Errorf("ParseLevel(2) = %v, %v", l, err)
	}
}
