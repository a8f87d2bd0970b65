package web

import (
	"github.com/abhisek/mathemmita/internal/rewards"
	"github.com/abhisek/mathemmita/internal/session"
	"github.com/abhisek/mathemmita/internal/tricks"
)

// problemView is a problem as shown to the child. The answer is withheld
// until the round is closed.
type problemView struct {
	Question string `json:"question"`
	Operator string `json:"operator"`
	Theme    string `json:"color_theme"`
	IsRetry  bool   `json:"is_retry"`
	Phase    string `json:"phase"`
	Level    int    `json:"level"`
	Answer   *int   `json:"answer,omitempty"`
}

func newProblemView(g *session.Game) problemView {
	p := g.Problem()
	v := problemView{
		Question: p.Text,
		Operator: string(p.Operator),
		Theme:    string(p.Theme),
		IsRetry:  p.IsRetry,
		Phase:    g.Phase().String(),
		Level:    int(g.Level()),
	}
	if !g.Phase().AcceptsInput() && !p.IsZero() {
		answer := p.Answer
		v.Answer = &answer
	}
	return v
}

type awardView struct {
	Today    int      `json:"today"`
	Total    int      `json:"total"`
	Unlocked []string `json:"unlocked,omitempty"`
}

type resultView struct {
	Outcome      string      `json:"outcome"`
	Message      string      `json:"message"`
	Points       int         `json:"points"`
	LevelChanged bool        `json:"level_changed,omitempty"`
	Problem      problemView `json:"problem"`
	Award        *awardView  `json:"award,omitempty"`
}

func newResultView(g *session.Game, res *session.Result) resultView {
	v := resultView{
		Outcome:      res.Outcome.String(),
		Message:      res.Message,
		Points:       res.Points,
		LevelChanged: res.LevelChanged,
		Problem:      newProblemView(g),
	}
	if a := res.Award; a != nil {
		v.Award = &awardView{Today: a.Today, Total: a.Total}
		for _, m := range a.Unlocked {
			v.Award.Unlocked = append(v.Award.Unlocked, m.Medal)
		}
	}
	return v
}

type trickView struct {
	Kind     tricks.Kind `json:"kind"`
	Heading  string      `json:"heading"`
	Subtitle string      `json:"subtitle"`
	Title    string      `json:"title"`
	Steps    []string    `json:"steps"`
	Figure   string      `json:"figure,omitempty"`
	Spoken   string      `json:"spoken"`
	Markdown string      `json:"markdown"`
}

func newTrickView(t tricks.Trick) trickView {
	return trickView{
		Kind:     t.Kind,
		Heading:  t.Heading,
		Subtitle: tricks.Subtitle,
		Title:    t.Title,
		Steps:    t.Steps,
		Figure:   t.Figure,
		Spoken:   t.Spoken,
		Markdown: t.Markdown(false),
	}
}

type milestoneView struct {
	Level    int    `json:"level"`
	Points   int    `json:"points"`
	Medal    string `json:"medal"`
	Prize    string `json:"prize"`
	Unlocked bool   `json:"unlocked"`
}

type rewardsView struct {
	Prizes     rewards.Config  `json:"prizes"`
	Today      int             `json:"today"`
	Total      int             `json:"total"`
	Progress   float64         `json:"progress"`
	Milestones []milestoneView `json:"milestones"`
}

func newRewardsView(cfg rewards.Config, bal rewards.Balance) rewardsView {
	v := rewardsView{
		Prizes:   cfg,
		Today:    bal.Today,
		Total:    bal.Total,
		Progress: rewards.Progress(bal.Today),
	}
	for _, m := range rewards.Milestones() {
		v.Milestones = append(v.Milestones, milestoneView{
			Level:    m.Level,
			Points:   m.Points,
			Medal:    m.Medal,
			Prize:    cfg.Prize(m),
			Unlocked: bal.Today >= m.Points,
		})
	}
	return v
}
