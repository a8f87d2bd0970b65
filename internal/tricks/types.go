package tricks

import (
	"fmt"
	"strings"

	"github.com/abhisek/mathemmita/internal/problemgen"
)

// Kind identifies how a trick explains a problem.
type Kind string

const (
	KindNineFingers Kind = "nine-fingers"
	KindDotGrid     Kind = "dot-grid"
	KindSharing     Kind = "sharing"
	KindDivideByOne Kind = "divide-by-one"
	KindGenerated   Kind = "generated"
)

// Subtitle is shown under every trick heading.
const Subtitle = "A veces, ¡solo necesitamos una pequeña pista!"

// Trick is a hint for one problem. The answer is kept apart from the steps
// so it can be revealed on request.
type Trick struct {
	Kind    Kind               `json:"kind"`
	Problem problemgen.Problem `json:"problem"`
	Heading string             `json:"heading"`
	Title   string             `json:"title"`
	Steps   []string           `json:"steps"`
	Figure  string             `json:"figure,omitempty"`
	Spoken  string             `json:"spoken"`
	Answer  int                `json:"answer"`
}

// Markdown renders the trick. The answer line is only included when
// withAnswer is set.
func (t Trick) Markdown(withAnswer bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# 💡 %s 💡\n\n_%s_\n\n## %s\n\n", t.Heading, Subtitle, t.Title)
	for _, s := range t.Steps {
		fmt.Fprintf(&b, "- %s\n", s)
	}
	if t.Figure != "" {
		fmt.Fprintf(&b, "\n```\n%s\n```\n", strings.TrimRight(t.Figure, "\n"))
	}
	if withAnswer {
		fmt.Fprintf(&b, "\n**¡La respuesta es... %d!**\n", t.Answer)
	}
	return b.String()
}

// Plain renders the trick as unformatted text for chat clients.
func (t Trick) Plain(withAnswer bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "💡 %s\n%s\n\n", t.Heading, t.Title)
	for _, s := range t.Steps {
		fmt.Fprintf(&b, "• %s\n", s)
	}
	if t.Figure != "" {
		fmt.Fprintf(&b, "\n%s\n", strings.TrimRight(t.Figure, "\n"))
	}
	if withAnswer {
		fmt.Fprintf(&b, "\n¡La respuesta es... %d!\n", t.Answer)
	}
	return b.String()
}
