package tricks

import (
	"fmt"
	"strings"

	"github.com/abhisek/mathemmita/internal/problemgen"
	"github.com/abhisek/mathemmita/internal/speech"
)

// maxFigureSide bounds the rows and columns of a drawn figure. Bigger
// problems get the steps without a drawing.
const maxFigureSide = 20

// Static returns the built-in explanation for p. It never fails.
func Static(p problemgen.Problem, name string) Trick {
	if name == "" {
		name = speech.DefaultChildName
	}
	var t Trick
	switch {
	case p.Operator == problemgen.OpDivide && p.Operand2 == 1:
		t = divideByOne(p, name)
	case p.Operator == problemgen.OpDivide:
		t = sharing(p, name)
	case nineFingersApplies(p):
		t = nineFingers(p, name)
	default:
		t = dotGrid(p, name)
	}
	t.Problem = p.WithoutRetry()
	t.Heading = fmt.Sprintf("¡%s, aquí tienes un truco!", name)
	t.Answer = p.Answer
	return t
}

// nineFingersApplies reports whether p is a ×9 product with both factors
// in 1..10, the range two hands can show.
func nineFingersApplies(p problemgen.Problem) bool {
	in := func(n int) bool { return n > 0 && n < 11 }
	return (p.Operand1 == 9 || p.Operand2 == 9) && in(p.Operand1) && in(p.Operand2)
}

func nineFingers(p problemgen.Problem, name string) Trick {
	n := p.Operand1
	if n == 9 {
		n = p.Operand2
	}
	tens, ones := n-1, 10-n
	return Trick{
		Kind:  KindNineFingers,
		Title: fmt.Sprintf("¡%s, el truco del 9! ✨", name),
		Steps: []string{
			fmt.Sprintf("Para multiplicar %d × 9, ¡baja tu dedo número %d!", n, n),
			fmt.Sprintf("Dedos a la izquierda: %d (decenas)", tens),
			fmt.Sprintf("Dedos a la derecha: %d (unidades)", ones),
		},
		Figure: hands(n),
		Spoken: fmt.Sprintf("¡%s, el truco del 9!. Para multiplicar %d por 9, ¡baja tu dedo número %d!. "+
			"Los dedos a la izquierda del que bajaste son las decenas, y los de la derecha son las unidades. ¡Inténtalo!",
			name, n, n),
	}
}

// hands draws ten fingers with finger down lowered, a gap between the hands.
func hands(down int) string {
	var tips, nums strings.Builder
	for f := 1; f <= 10; f++ {
		tip := " | "
		if f == down {
			tip = " _ "
		}
		tips.WriteString(tip)
		fmt.Fprintf(&nums, "%3d", f)
		if f == 5 {
			tips.WriteString("   ")
			nums.WriteString("   ")
		}
	}
	return tips.String() + "\n" + nums.String()
}

func dotGrid(p problemgen.Problem, name string) Trick {
	rows, cols := min(p.Operand1, p.Operand2), max(p.Operand1, p.Operand2)
	return Trick{
		Kind:  KindDotGrid,
		Title: "¡A dibujar para resolver! ✏️",
		Steps: []string{
			fmt.Sprintf("Dibuja %d filas de %d puntos.", rows, cols),
			"¡Excelente! Ahora cuenta todos los puntos que dibujaste.",
		},
		Figure: grid(rows, cols),
		Spoken: fmt.Sprintf("¡A dibujar para resolver! %s, para resolver %s, tienes que dibujar una cuadrícula con %d filas y %d columnas. "+
			"¡Rellena todos los puntos y luego cuéntalos!", name, p.Text, rows, cols),
	}
}

func grid(rows, cols int) string {
	if rows > maxFigureSide || cols > maxFigureSide {
		return ""
	}
	var b strings.Builder
	b.WriteString("   ")
	for c := 1; c <= cols; c++ {
		fmt.Fprintf(&b, "%3d", c)
	}
	for r := 1; r <= rows; r++ {
		fmt.Fprintf(&b, "\n%3d", r)
		b.WriteString(strings.Repeat("  ●", cols))
	}
	return b.String()
}

func sharing(p problemgen.Problem, name string) Trick {
	boxes, each := p.Operand2, p.Answer
	var fig strings.Builder
	if boxes <= maxFigureSide && each <= maxFigureSide {
		for i := 1; i <= boxes; i++ {
			if i > 1 {
				fig.WriteString("\n")
			}
			fmt.Fprintf(&fig, "Caja %2d: %s", i, strings.Repeat("🍪", each))
		}
	}
	return Trick{
		Kind:  KindSharing,
		Title: "Repartir en partes iguales 🎁",
		Steps: []string{
			fmt.Sprintf("Repartimos %d galletas 🍪 en %d cajas...", p.Operand1, boxes),
			fmt.Sprintf("En cada caja hay %d galletas. ¡Esa es la respuesta!", each),
		},
		Figure: fig.String(),
		Spoken: fmt.Sprintf("¡Repartir en partes iguales! %s, dividir %d entre %d es como repartir %d galletas en %d cajas. "+
			"¿Cuántas galletas hay en cada caja?", name, p.Operand1, p.Operand2, p.Operand1, p.Operand2),
	}
}

func divideByOne(p problemgen.Problem, name string) Trick {
	return Trick{
		Kind:  KindDivideByOne,
		Title: "¡Dividir por 1 es fácil! 🪞",
		Steps: []string{
			fmt.Sprintf("%s, cualquier número dividido por 1 es... ¡el mismo número!", name),
			fmt.Sprintf("Así que %d ÷ 1 = %d.", p.Operand1, p.Operand1),
		},
		Spoken: fmt.Sprintf("¡Dividir por 1 es fácil!. %s, cualquier número dividido por 1 es... ¡el mismo número! "+
			"Así que %d dividido por 1 es igual a %d.", name, p.Operand1, p.Operand1),
	}
}
