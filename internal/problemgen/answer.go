package problemgen

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrBadExpression is returned when a typed problem cannot be parsed.
	ErrBadExpression = errors.New("formato inválido, usa 'a * b' o 'a / b'")

	// ErrInexactDivision is returned for divisions that leave a remainder.
	ErrInexactDivision = errors.New("la división debe ser exacta para este juego")

	// ErrOutOfRange is returned when an operand or the answer does not fit
	// what a learner can type.
	ErrOutOfRange = errors.New("los números deben ir de 1 a 999 y la respuesta tener como mucho 4 cifras")
)

// MaxAnswerDigits bounds how many digits a learner may type.
const MaxAnswerDigits = 4

// MaxOperand is the largest operand a typed problem may use.
const MaxOperand = 999

// maxAnswer is the largest answer that fits in MaxAnswerDigits digits.
const maxAnswer = 9999

// CheckAnswer compares the learner's typed digits against the answer.
// Whitespace and leading zeros are ignored; anything non-numeric is wrong.
func CheckAnswer(learnerAnswer string, p Problem) bool {
	learnerAnswer = strings.TrimSpace(learnerAnswer)
	if learnerAnswer == "" {
		return false
	}
	n, err := strconv.Atoi(learnerAnswer)
	if err != nil {
		return false
	}
	return n == p.Answer
}

var expressionRe = regexp.MustCompile(`^\s*(\d+)\s*([*xX×/÷:])\s*(\d+)\s*$`)

// Parse turns a typed expression such as "7*8", "7 x 8", "56/7" or "56 ÷ 7"
// into a problem. Operands are in 1..MaxOperand, division must be exact and
// the answer must fit in MaxAnswerDigits digits.
func Parse(expr string) (Problem, error) {
	m := expressionRe.FindStringSubmatch(expr)
	if m == nil {
		return Problem{}, fmt.Errorf("%w: %q", ErrBadExpression, expr)
	}

	a, okA := operand(m[1])
	b, okB := operand(m[3])
	if !okA || !okB {
		return Problem{}, fmt.Errorf("%w: %q", ErrOutOfRange, expr)
	}

	op := OpMultiply
	switch m[2] {
	case "/", "÷", ":":
		op = OpDivide
	}

	if op == OpDivide && (b == 0 || a%b != 0) {
		return Problem{}, fmt.Errorf("%w: %d ÷ %d", ErrInexactDivision, a, b)
	}
	p := New(a, b, op)
	if p.Answer > maxAnswer {
		return Problem{}, fmt.Errorf("%w: %s = %d", ErrOutOfRange, p.Text, p.Answer)
	}
	return p, nil
}

// operand parses one side of an expression. Long digit strings are
// rejected before conversion so they cannot overflow.
func operand(digits string) (int, bool) {
	digits = strings.TrimLeft(digits, "0")
	if digits == "" || len(digits) > len(strconv.Itoa(MaxOperand)) {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 || n > MaxOperand {
		return 0, false
	}
	return n, true
}
