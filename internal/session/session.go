package session

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/mathemmita/internal/problemgen"
	"github.com/abhisek/mathemmita/internal/rewards"
	"github.com/abhisek/mathemmita/internal/speech"
	"github.com/abhisek/mathemmita/internal/store"
	"github.com/abhisek/mathemmita/internal/tutor"
)

// DefaultLevelChangeProbability is the chance that a correct division
// switches the division level.
const DefaultLevelChangeProbability = 0.3

// snapshotVersion is the version of the persisted player state.
const snapshotVersion = 1

// ErrorHandler receives background failures (attempt log, rewards) that
// must not interrupt play.
type ErrorHandler func(err error)

// Options configures a Game.
type Options struct {
	// UserID identifies the player. Empty means anonymous: nothing is logged
	// and failures are never repeated.
	UserID    string
	ChildName string

	Selector *tutor.Selector
	Attempts store.AttemptRepo
	Rewards  *rewards.Service
	Speaker  speech.Speaker

	// Rand drives problem generation and the level policy. Nil uses the
	// process-wide generator.
	Rand problemgen.Rand

	Level                  problemgen.Level
	LevelChangeProbability float64
	Points                 rewards.Points

	OnError ErrorHandler
	Logger  *zap.Logger
}

// Result describes what a submission or reveal did.
type Result struct {
	Outcome Outcome
	Problem problemgen.Problem
	Given   string
	Message string
	Points  int

	// Award is set when points were credited to a stored profile.
	Award *rewards.Award

	// LevelChanged reports a level switch; Level is the level now in effect.
	LevelChanged bool
	Level        problemgen.Level
}

// Game runs the rounds of one player. It is not safe for concurrent use.
type Game struct {
	userID    string
	childName string
	selector  *tutor.Selector
	tutor     *tutor.Session
	attempts  store.AttemptRepo
	rewards   *rewards.Service
	speaker   speech.Speaker
	rng       problemgen.Rand
	points    rewards.Points
	levelProb float64
	onError   ErrorHandler
	logger    *zap.Logger
	now       func() time.Time

	level   problemgen.Level
	problem problemgen.Problem
	input   string
	phase   Phase
	summary Summary
}

// New creates a game. A nil Selector plays without history.
func New(opts Options) *Game {
	if opts.Rand == nil {
		opts.Rand = problemgen.DefaultRand
	}
	switch {
	case opts.Selector == nil:
		opts.Selector = tutor.NewSelector(nil)
	case opts.UserID == "":
		// Anonymous players have no history to repeat from.
		opts.Selector = tutor.NewSelector(nil, tutor.WithConfig(opts.Selector.Config()))
	}
	if opts.Speaker == nil {
		opts.Speaker = speech.Nop{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Level != problemgen.Level2 {
		opts.Level = problemgen.Level1
	}
	if opts.Points == (rewards.Points{}) {
		opts.Points = rewards.DefaultPoints()
	}
	if opts.ChildName == "" {
		opts.ChildName = speech.DefaultChildName
	}

	g := &Game{
		userID:    opts.UserID,
		childName: opts.ChildName,
		selector:  opts.Selector,
		tutor:     tutor.NewSession(opts.Rand),
		attempts:  opts.Attempts,
		rewards:   opts.Rewards,
		speaker:   opts.Speaker,
		rng:       opts.Rand,
		points:    opts.Points,
		levelProb: opts.LevelChangeProbability,
		onError:   opts.OnError,
		logger:    opts.Logger,
		now:       time.Now,
		level:     opts.Level,
	}
	g.summary.Started = g.now()
	return g
}

// UserID returns the player id, empty when anonymous.
func (g *Game) UserID() string { return g.userID }

// ChildName returns the name used in praise.
func (g *Game) ChildName() string { return g.childName }

// Problem returns the problem in play.
func (g *Game) Problem() problemgen.Problem { return g.problem }

// Input returns the digits typed so far.
func (g *Game) Input() string { return g.input }

// Phase returns the state of the current round.
func (g *Game) Phase() Phase { return g.phase }

// Level returns the current division level.
func (g *Game) Level() problemgen.Level { return g.level }

// Summary returns the session totals so far.
func (g *Game) Summary() Summary {
	s := g.summary
	s.Duration = g.now().Sub(s.Started)
	return s
}

// Next selects and presents a new problem, reading it aloud.
func (g *Game) Next(ctx context.Context) problemgen.Problem {
	p := g.selector.Next(ctx, g.tutor, g.userID, g.level)
	g.present(ctx, p)
	return p
}

// Custom presents a problem typed by a parent, e.g. "7 x 8" or "42 / 6".
func (g *Game) Custom(ctx context.Context, expr string) (problemgen.Problem, error) {
	p, err := problemgen.Parse(expr)
	if err != nil {
		return problemgen.Problem{}, err
	}
	g.present(ctx, p)
	return p, nil
}

func (g *Game) present(ctx context.Context, p problemgen.Problem) {
	g.problem = p
	g.input = ""
	g.phase = PhasePresented
	g.summary.Served++
	g.say(ctx, p.SpokenQuestion())
}

// Key handles one key: a digit, "backspace" or "enter". It returns the
// result when the key submitted an answer.
func (g *Game) Key(ctx context.Context, key string) *Result {
	if !g.phase.AcceptsInput() {
		return nil
	}
	switch key {
	case "backspace":
		g.Backspace()
	case "enter":
		return g.Submit(ctx)
	default:
		if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
			g.Type(key[0])
		}
	}
	return nil
}

// Type appends a digit, up to the maximum answer length.
func (g *Game) Type(digit byte) {
	if !g.phase.AcceptsInput() || digit < '0' || digit > '9' {
		return
	}
	if len(g.input) >= problemgen.MaxAnswerDigits {
		return
	}
	g.input += string(digit)
}

// Backspace deletes the last typed digit.
func (g *Game) Backspace() {
	if !g.phase.AcceptsInput() || g.input == "" {
		return
	}
	g.input = g.input[:len(g.input)-1]
}

// SetInput replaces the typed answer, keeping only the leading digits.
func (g *Game) SetInput(s string) {
	if !g.phase.AcceptsInput() {
		return
	}
	g.input = ""
	for i := 0; i < len(s); i++ {
		g.Type(s[i])
	}
}

// ResetInput clears the answer after a wrong attempt so the same problem
// can be tried again.
func (g *Game) ResetInput() {
	if g.phase != PhaseIncorrect {
		return
	}
	g.input = ""
	g.phase = PhasePresented
}

// Submit checks the typed answer. Empty input and input while the round is
// closed are ignored (nil result).
func (g *Game) Submit(ctx context.Context) *Result {
	if !g.phase.AcceptsInput() || g.input == "" {
		return nil
	}

	p := g.problem
	correct := problemgen.CheckAnswer(g.input, p)
	g.logAttempt(ctx, p, correct)

	res := &Result{Problem: p, Given: g.input, Level: g.level}
	switch {
	case correct && p.IsRetry:
		res.Outcome = OutcomeHardWon
		res.Message = speech.HardWon(g.childName)
		g.phase = PhaseVictory
	case correct:
		res.Outcome = OutcomeCorrect
		res.Message = speech.Correct
		g.phase = PhaseCorrect
		if p.Operator == problemgen.OpDivide && g.rng.Float64() < g.levelProb {
			g.level = g.level.Toggle()
			res.LevelChanged = true
			res.Level = g.level
			g.logger.Debug("division level changed", zap.Int("level", int(g.level)))
		}
	default:
		res.Outcome = OutcomeIncorrect
		res.Message = speech.TryAgain
		g.phase = PhaseIncorrect
	}

	if res.Outcome != OutcomeIncorrect {
		res.Points, res.Award = g.award(ctx, res.Outcome)
	}
	g.summary.record(res.Outcome, res.Points)
	g.say(ctx, res.Message)
	return res
}

// Reveal shows the solution. Nothing is logged and no points are earned.
func (g *Game) Reveal(ctx context.Context) *Result {
	if !g.phase.AcceptsInput() {
		return nil
	}
	g.input = strconv.Itoa(g.problem.Answer)
	g.phase = PhaseRevealed
	g.summary.record(OutcomeRevealed, 0)
	return &Result{
		Outcome: OutcomeRevealed,
		Problem: g.problem,
		Message: "La respuesta es " + g.input + ".",
		Level:   g.level,
	}
}

// Snapshot captures the state needed to resume play later.
func (g *Game) Snapshot() store.SnapshotData {
	data := store.SnapshotData{Version: snapshotVersion, Level: int(g.level)}
	if last, ok := g.tutor.Last(); ok {
		data.LastProblem = &store.ProblemState{
			Operand1: last.Operand1,
			Operand2: last.Operand2,
			Operator: string(last.Operator),
		}
	}
	return data
}

// Resume restores level and scaffolding context from a snapshot.
func (g *Game) Resume(data *store.SnapshotData) {
	if data == nil {
		return
	}
	if lvl := problemgen.Level(data.Level); lvl == problemgen.Level1 || lvl == problemgen.Level2 {
		g.level = lvl
	}
	if lp := data.LastProblem; lp != nil && lp.Operand2 != 0 {
		op := problemgen.Operator(lp.Operator)
		if op == problemgen.OpMultiply || (op == problemgen.OpDivide && lp.Operand1%lp.Operand2 == 0) {
			g.tutor.Restore(problemgen.New(lp.Operand1, lp.Operand2, op))
		}
	}
}

// Close stops any speech in progress.
func (g *Game) Close() {
	g.speaker.Stop()
}

func (g *Game) logAttempt(ctx context.Context, p problemgen.Problem, correct bool) {
	if g.attempts == nil || g.userID == "" {
		return
	}
	p = p.WithoutRetry()
	err := g.attempts.Append(ctx, store.AttemptData{
		UserID:      g.userID,
		Operand1:    p.Operand1,
		Operand2:    p.Operand2,
		Operator:    string(p.Operator),
		Answer:      p.Answer,
		DisplayText: p.Text,
		Theme:       string(p.Theme),
		Correct:     correct,
	})
	if err != nil {
		g.fail("log attempt", err)
	}
}

func (g *Game) award(ctx context.Context, o Outcome) (int, *rewards.Award) {
	kind := rewards.OutcomeCorrect
	if o == OutcomeHardWon {
		kind = rewards.OutcomeHardWon
	}
	pts := g.points.For(kind)
	if g.rewards == nil || g.userID == "" {
		return pts, nil
	}
	a, err := g.rewards.Award(ctx, g.userID, kind)
	if err != nil {
		g.fail("award points", err)
		return pts, nil
	}
	return a.Points, a
}

func (g *Game) fail(op string, err error) {
	g.logger.Warn(op, zap.String("user_id", g.userID), zap.Error(err))
	if g.onError != nil {
		g.onError(err)
	}
}

func (g *Game) say(ctx context.Context, text string) {
	_ = g.speaker.Speak(ctx, text)
}
