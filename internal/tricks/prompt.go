package tricks

import (
	"fmt"
	"strings"

	"github.com/abhisek/mathemmita/internal/problemgen"
)

const systemPrompt = `You are a warm, playful math tutor for a Spanish-speaking child of about seven who is learning the multiplication tables and exact division. You write short hints, never lectures.`

func buildUserMessage(p problemgen.Problem, name string, base Trick) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Child's name: %s\n", name)
	fmt.Fprintf(&b, "Problem: %s\n", p.Text)
	if p.IsRetry {
		b.WriteString("The child got this problem wrong recently.\n")
	}
	fmt.Fprintf(&b, "\nA hint that already works for this problem (%s):\n", base.Kind)
	for _, s := range base.Steps {
		fmt.Fprintf(&b, "- %s\n", s)
	}

	b.WriteString(`
Instructions:
1. Write a fresh hint in Spanish for exactly this problem. You may reuse the idea above or pick another concrete one (fingers, grids of dots, sharing cookies, doubling, skip counting).
2. Use at most four short steps. Do not give the final answer in the title or the steps.
3. The spoken text repeats the hint as a paragraph for text-to-speech. Address the child by name.
4. Write numbers as digits and use × and ÷ for the operators.
5. Put the correct answer in the answer field.`)

	return b.String()
}
