package problemgen

import (
	"errors"
	"testing"
)

func TestCheckAnswer(t *testing.T) {
	p := New(6, 7, OpMultiply)

	tests := []struct {
		input string
		want  bool
	}{
		{"42", true},
		{" 42 ", true},
		{"042", true},
		{"43", false},
		{"", false},
		{"abc", false},
	}

	for _, tc := range tests {
		got := CheckAnswer(tc.input, p)
		if got != tc.want {
			t.Errorf("CheckAnswer(%q, 6 × 7) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		expr     string
		wantText string
		answer   int
	}{
		{"4*9", "4 × 9", 36},
		{"4 x 9", "4 × 9", 36},
		{"4×9", "4 × 9", 36},
		{"56/7", "56 ÷ 7", 8},
		{" 56 ÷ 7 ", "56 ÷ 7", 8},
		{"07 x 8", "7 × 8", 56},
		{"99 x 99", "99 × 99", 9801},
		{"999 / 1", "999 ÷ 1", 999},
	}
	for _, tt := range tests {
		p, err := Parse(tt.expr)
		if err != nil {
			t.Errorf("Parse(%q): %v", tt.expr, err)
			continue
		}
		if p.Text != tt.wantText || p.Answer != tt.answer {
			t.Errorf("Parse(%q) = %q = %d, want %q = %d", tt.expr, p.Text, p.Answer, tt.wantText, tt.answer)
		}
		if p.Theme != ThemeFor(p.Operator) {
			t.Errorf("Parse(%q) theme = %s", tt.expr, p.Theme)
		}
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		expr string
		want error
	}{
		{"seven times eight", ErrBadExpression},
		{"4 + 9", ErrBadExpression},
		{"", ErrBadExpression},
		{"10/3", ErrInexactDivision},
		{"10/0", ErrOutOfRange},
		{"0 x 7", ErrOutOfRange},
		{"0 / 5", ErrOutOfRange},
		{"000 x 7", ErrOutOfRange},
		{"1000 x 2", ErrOutOfRange},
		{"99999 x 99999", ErrOutOfRange},
		{"9999999999 x 9999999999", ErrOutOfRange},
		{"99999999999999999999999 / 3", ErrOutOfRange},
		{"999 x 999", ErrOutOfRange},
	}
	for _, tt := range tests {
		_, err := Parse(tt.expr)
		if !errors.Is(err, tt.want) {
			t.Errorf("Parse(%q) error = %v, want %v", tt.expr, err, tt.want)
		}
	}
}
