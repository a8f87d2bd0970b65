package tricks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/abhisek/mathemmita/internal/llm"
	"github.com/abhisek/mathemmita/internal/problemgen"
	"github.com/abhisek/mathemmita/internal/speech"
)

// ErrWrongAnswer is returned when a generated trick disagrees with the
// problem's answer.
var ErrWrongAnswer = errors.New("generated trick has the wrong answer")

// Explainer produces tricks, asking the language model first when one is
// configured.
type Explainer struct {
	provider llm.Provider
	cfg      Config
	logger   *zap.Logger
}

// NewExplainer creates an Explainer. A nil provider only serves static
// tricks.
func NewExplainer(provider llm.Provider, cfg Config, logger *zap.Logger) *Explainer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Explainer{provider: provider, cfg: cfg, logger: logger}
}

// Explain returns a trick for p, falling back to the static trick when
// generation is disabled or fails.
func (e *Explainer) Explain(ctx context.Context, p problemgen.Problem, name string) Trick {
	static := Static(p, name)
	if e == nil || e.provider == nil || !e.cfg.Generate {
		return static
	}
	t, err := e.Generate(ctx, p, name)
	if err != nil {
		e.logger.Warn("generate trick",
			zap.String("problem", p.Text),
			zap.String("fallback", string(static.Kind)),
			zap.Error(err))
		return static
	}
	return t
}

type trickOutput struct {
	Title  string   `json:"title"`
	Steps  []string `json:"steps"`
	Spoken string   `json:"spoken"`
	Answer int      `json:"answer"`
}

// Generate asks the language model for a trick. The static figure is kept
// as the illustration.
func (e *Explainer) Generate(ctx context.Context, p problemgen.Problem, name string) (Trick, error) {
	if e.provider == nil {
		return Trick{}, llm.ErrDisabled
	}
	if name == "" {
		name = speech.DefaultChildName
	}
	if llm.PurposeFrom(ctx) == "unknown" {
		ctx = llm.WithPurpose(ctx, llm.PurposeTrick)
	}
	base := Static(p, name)

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(p, name, base)},
		},
		Schema:      TrickSchema,
		MaxTokens:   e.cfg.MaxTokens,
		Temperature: e.cfg.Temperature,
	}

	resp, err := e.provider.Generate(ctx, req)
	if err != nil {
		return Trick{}, fmt.Errorf("trick generation: %w", err)
	}

	var out trickOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return Trick{}, fmt.Errorf("parse trick response: %w", err)
	}
	if out.Answer != p.Answer {
		return Trick{}, fmt.Errorf("%w: got %d for %s", ErrWrongAnswer, out.Answer, p.Text)
	}

	steps := make([]string, 0, len(out.Steps))
	for _, s := range out.Steps {
		if s = strings.TrimSpace(s); s != "" {
			steps = append(steps, s)
		}
	}
	title, spoken := strings.TrimSpace(out.Title), strings.TrimSpace(out.Spoken)
	if title == "" || spoken == "" || len(steps) == 0 || len(steps) > 4 {
		return Trick{}, &llm.ErrInvalidResponse{Content: resp.Content, Err: errors.New("empty or oversized trick")}
	}

	return Trick{
		Kind:    KindGenerated,
		Problem: base.Problem,
		Heading: base.Heading,
		Title:   title,
		Steps:   steps,
		Figure:  base.Figure,
		Spoken:  spoken,
		Answer:  p.Answer,
	}, nil
}
