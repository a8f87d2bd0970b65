package session

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/abhisek/mathemmita/internal/problemgen"
	"github.com/abhisek/mathemmita/internal/rewards"
	"github.com/abhisek/mathemmita/internal/store"
	"github.com/abhisek/mathemmita/internal/tutor"
)

// recordSpeaker remembers everything it was asked to say.
type recordSpeaker struct {
	said    []string
	stopped int
}

func (r *recordSpeaker) Speak(_ context.Context, text string) error {
	r.said = append(r.said, text)
	return nil
}

func (r *recordSpeaker) Stop() { r.stopped++ }

// memAttempts is an in-memory store.AttemptRepo.
type memAttempts struct {
	data []store.AttemptData
	err  error
}

func (m *memAttempts) Append(_ context.Context, data store.AttemptData) error {
	if m.err != nil {
		return m.err
	}
	m.data = append(m.data, data)
	return nil
}

func (m *memAttempts) RecentIncorrect(_ context.Context, userID string, limit int) ([]store.AttemptRecord, error) {
	var out []store.AttemptRecord
	for i := len(m.data) - 1; i >= 0 && len(out) < limit; i-- {
		d := m.data[i]
		if d.UserID != userID || d.Correct {
			continue
		}
		out = append(out, store.AttemptRecord{
			ID:          int64(i + 1),
			UserID:      d.UserID,
			Operand1:    d.Operand1,
			Operand2:    d.Operand2,
			Operator:    d.Operator,
			Answer:      d.Answer,
			DisplayText: d.DisplayText,
			Theme:       d.Theme,
			Timestamp:   time.Unix(int64(i), 0),
		})
	}
	return out, nil
}

func (m *memAttempts) HasLaterCorrect(_ context.Context, userID, text string, after time.Time) (bool, error) {
	for i, d := range m.data {
		if d.UserID == userID && d.DisplayText == text && d.Correct && time.Unix(int64(i), 0).After(after) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memAttempts) Query(context.Context, string, store.QueryOpts) ([]store.AttemptRecord, error) {
	return nil, nil
}

func (m *memAttempts) Stats(context.Context, string) (*store.AttemptStats, error) {
	return &store.AttemptStats{}, nil
}

func (m *memAttempts) DeleteUser(context.Context, string) error { return nil }

// memProfiles is an in-memory store.ProfileRepo.
type memProfiles struct {
	today, total int
}

func (m *memProfiles) Get(_ context.Context, userID string) (*store.Profile, error) {
	return &store.Profile{UserID: userID, PointsToday: m.today, TotalPoints: m.total}, nil
}

func (m *memProfiles) SaveRewards(context.Context, string, store.PrizeNames) error { return nil }

func (m *memProfiles) AddPoints(_ context.Context, userID string, delta int, day string) (*store.Profile, error) {
	m.today += delta
	m.total += delta
	return &store.Profile{UserID: userID, PointsToday: m.today, TotalPoints: m.total, PointsDay: day}, nil
}

func (m *memProfiles) ResetDaily(context.Context, string) (int64, error) { return 0, nil }
func (m *memProfiles) DeleteUser(context.Context, string) error          { return nil }

func newTestGame(t *testing.T, opts Options) (*Game, *recordSpeaker) {
	t.Helper()
	sp := &recordSpeaker{}
	opts.Speaker = sp
	if opts.Rand == nil {
		opts.Rand = problemgen.NewSeededRand(42)
	}
	return New(opts), sp
}

func typeAnswer(g *Game, answer string) {
	for _, r := range answer {
		g.Key(context.Background(), string(r))
	}
}

func TestNext_PresentsAndSpeaks(t *testing.T) {
	g, sp := newTestGame(t, Options{})
	p := g.Next(context.Background())

	if g.Phase() != PhasePresented {
		t.Errorf("phase = %v, want presented", g.Phase())
	}
	if len(sp.said) != 1 || sp.said[0] != p.SpokenQuestion() {
		t.Errorf("spoken = %v, want question", sp.said)
	}
	if g.Summary().Served != 1 {
		t.Errorf("served = %d, want 1", g.Summary().Served)
	}
}

func TestKeyInput(t *testing.T) {
	g, _ := newTestGame(t, Options{})
	ctx := context.Background()

	// Ignored before any problem is presented.
	g.Key(ctx, "5")
	if g.Input() != "" {
		t.Fatalf("input before presenting = %q", g.Input())
	}

	if _, err := g.Custom(ctx, "7 x 8"); err != nil {
		t.Fatalf("custom: %v", err)
	}
	typeAnswer(g, "12345")
	if g.Input() != "1234" {
		t.Errorf("input = %q, want max 4 digits", g.Input())
	}
	g.Key(ctx, "backspace")
	g.Key(ctx, "a")
	if g.Input() != "123" {
		t.Errorf("input = %q, want 123", g.Input())
	}
	g.SetInput("5x6")
	if g.Input() != "5" {
		t.Errorf("SetInput kept %q, want leading digits", g.Input())
	}
}

func TestSubmit_EmptyIgnored(t *testing.T) {
	attempts := &memAttempts{}
	g, _ := newTestGame(t, Options{UserID: "emma", Attempts: attempts})
	g.Custom(context.Background(), "7 x 8")

	if res := g.Key(context.Background(), "enter"); res != nil {
		t.Errorf("empty submit returned %+v", res)
	}
	if len(attempts.data) != 0 {
		t.Error("empty submit must not be logged")
	}
}

func TestSubmit_Correct(t *testing.T) {
	attempts := &memAttempts{}
	profiles := &memProfiles{}
	g, sp := newTestGame(t, Options{
		UserID:   "emma",
		Attempts: attempts,
		Rewards:  rewards.NewService(profiles, rewards.Points{}, nil),
	})
	ctx := context.Background()
	g.Custom(ctx, "7 × 8")
	typeAnswer(g, "56")

	res := g.Key(ctx, "enter")
	if res == nil || res.Outcome != OutcomeCorrect {
		t.Fatalf("result = %+v, want correct", res)
	}
	if res.Message != "¡Correcto!" || sp.said[len(sp.said)-1] != "¡Correcto!" {
		t.Errorf("message = %q", res.Message)
	}
	if g.Phase() != PhaseCorrect {
		t.Errorf("phase = %v", g.Phase())
	}
	if res.Points != 10 || res.Award == nil || res.Award.Today != 10 {
		t.Errorf("points = %d award = %+v", res.Points, res.Award)
	}
	if len(attempts.data) != 1 || !attempts.data[0].Correct || attempts.data[0].DisplayText != "7 × 8" {
		t.Errorf("logged = %+v", attempts.data)
	}

	// Closed round ignores input.
	g.Key(ctx, "1")
	if g.Input() != "56" {
		t.Errorf("input changed after correct answer: %q", g.Input())
	}
	if res := g.Submit(ctx); res != nil {
		t.Error("second submit should be ignored")
	}
}

func TestSubmit_IncorrectKeepsProblem(t *testing.T) {
	attempts := &memAttempts{}
	g, sp := newTestGame(t, Options{UserID: "emma", Attempts: attempts})
	ctx := context.Background()
	g.Custom(ctx, "42 / 6")
	typeAnswer(g, "6")

	res := g.Submit(ctx)
	if res.Outcome != OutcomeIncorrect || res.Message != "Oh, intenta de nuevo." {
		t.Fatalf("result = %+v", res)
	}
	if res.Points != 0 {
		t.Errorf("incorrect answer earned %d points", res.Points)
	}
	if sp.said[len(sp.said)-1] != "Oh, intenta de nuevo." {
		t.Errorf("spoken = %v", sp.said)
	}

	g.ResetInput()
	if g.Phase() != PhasePresented || g.Input() != "" {
		t.Errorf("after reset: phase %v input %q", g.Phase(), g.Input())
	}
	if g.Problem().Text != "42 ÷ 6" {
		t.Errorf("problem changed to %q", g.Problem().Text)
	}

	typeAnswer(g, "7")
	if res := g.Submit(ctx); res.Outcome != OutcomeCorrect {
		t.Errorf("second try = %v", res.Outcome)
	}
	if len(attempts.data) != 2 || attempts.data[0].Correct || !attempts.data[1].Correct {
		t.Errorf("logged = %+v", attempts.data)
	}
}

func TestSubmit_HardWonVictory(t *testing.T) {
	attempts := &memAttempts{data: []store.AttemptData{{
		UserID: "emma", Operand1: 7, Operand2: 8, Operator: "×", Answer: 56,
		DisplayText: "7 × 8", Theme: "orange",
	}}}
	cfg := tutor.DefaultConfig()
	cfg.RepeatProbability = 1
	sel := tutor.NewSelector(attempts, tutor.WithConfig(cfg))
	profiles := &memProfiles{}

	g, sp := newTestGame(t, Options{
		UserID:                 "emma",
		ChildName:              "Emmita",
		Selector:               sel,
		Attempts:               attempts,
		Rewards:                rewards.NewService(profiles, rewards.Points{}, nil),
		LevelChangeProbability: 1,
	})
	ctx := context.Background()

	p := g.Next(ctx)
	if !p.IsRetry || p.Text != "7 × 8" {
		t.Fatalf("expected the pending failure, got %+v", p)
	}
	typeAnswer(g, "56")
	res := g.Submit(ctx)

	if res.Outcome != OutcomeHardWon {
		t.Fatalf("outcome = %v, want hard-won", res.Outcome)
	}
	want := "¡Guau! ¡Has superado un reto difícil! Eres una campeona, Emmita."
	if res.Message != want || sp.said[len(sp.said)-1] != want {
		t.Errorf("message = %q", res.Message)
	}
	if g.Phase() != PhaseVictory {
		t.Errorf("phase = %v, want victory", g.Phase())
	}
	if res.Points != 25 {
		t.Errorf("points = %d, want 25", res.Points)
	}
	if res.LevelChanged {
		t.Error("a hard-won victory must not change the level")
	}

	logged := attempts.data[len(attempts.data)-1]
	if !logged.Correct || logged.DisplayText != "7 × 8" {
		t.Errorf("logged = %+v", logged)
	}

	// Input is ignored while the medal shows.
	g.Key(ctx, "1")
	if g.Input() != "56" {
		t.Errorf("input changed during victory: %q", g.Input())
	}

	s := g.Summary()
	if s.RetriesWon != 1 || s.Correct != 1 || s.Points != 25 {
		t.Errorf("summary = %+v", s)
	}
}

func TestSubmit_DivisionLevelPolicy(t *testing.T) {
	tests := []struct {
		name      string
		expr      string
		prob      float64
		wantLevel problemgen.Level
	}{
		{"division toggles", "42 / 6", 1, problemgen.Level2},
		{"division keeps level", "42 / 6", 0, problemgen.Level1},
		{"multiplication never toggles", "7 x 8", 1, problemgen.Level1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := newTestGame(t, Options{LevelChangeProbability: tt.prob})
			ctx := context.Background()
			p, _ := g.Custom(ctx, tt.expr)
			g.SetInput(strconv.Itoa(p.Answer))
			res := g.Submit(ctx)
			if g.Level() != tt.wantLevel {
				t.Errorf("level = %d, want %d", g.Level(), tt.wantLevel)
			}
			if res.LevelChanged != (tt.wantLevel != problemgen.Level1) {
				t.Errorf("LevelChanged = %v", res.LevelChanged)
			}
		})
	}
}

func TestReveal(t *testing.T) {
	attempts := &memAttempts{}
	profiles := &memProfiles{}
	g, _ := newTestGame(t, Options{
		UserID:   "emma",
		Attempts: attempts,
		Rewards:  rewards.NewService(profiles, rewards.Points{}, nil),
	})
	ctx := context.Background()
	g.Custom(ctx, "9 x 6")
	typeAnswer(g, "5")

	res := g.Reveal(ctx)
	if res.Outcome != OutcomeRevealed || g.Input() != "54" || g.Phase() != PhaseRevealed {
		t.Fatalf("reveal = %+v input %q phase %v", res, g.Input(), g.Phase())
	}
	if len(attempts.data) != 0 {
		t.Error("reveal must not log an attempt")
	}
	if profiles.total != 0 || res.Points != 0 {
		t.Error("reveal must not award points")
	}
	if g.Reveal(ctx) != nil {
		t.Error("second reveal should be ignored")
	}
	if g.Summary().Revealed != 1 {
		t.Errorf("revealed = %d", g.Summary().Revealed)
	}
}

func TestAttemptLogFailureIsReported(t *testing.T) {
	attempts := &memAttempts{err: &store.WriteError{Collection: "users/emma/attempts", Operation: "create", Err: errors.New("denied")}}
	var reported []error
	g, _ := newTestGame(t, Options{
		UserID:   "emma",
		Attempts: attempts,
		OnError:  func(err error) { reported = append(reported, err) },
	})
	ctx := context.Background()
	g.Custom(ctx, "7 x 8")
	typeAnswer(g, "56")

	res := g.Submit(ctx)
	if res == nil || res.Outcome != OutcomeCorrect {
		t.Fatalf("round should continue after a log failure, got %+v", res)
	}
	if len(reported) != 1 {
		t.Fatalf("reported = %d errors, want 1", len(reported))
	}
	var we *store.WriteError
	if !errors.As(reported[0], &we) {
		t.Errorf("reported %T, want *store.WriteError", reported[0])
	}
}

func TestAnonymousGameLogsNothing(t *testing.T) {
	attempts := &memAttempts{}
	g, _ := newTestGame(t, Options{Attempts: attempts})
	ctx := context.Background()
	g.Custom(ctx, "7 x 8")
	typeAnswer(g, "50")
	g.Submit(ctx)

	if len(attempts.data) != 0 {
		t.Error("anonymous attempts must not be logged")
	}
}

func TestCustom_Rejects(t *testing.T) {
	g, _ := newTestGame(t, Options{})
	if _, err := g.Custom(context.Background(), "43 / 6"); !errors.Is(err, problemgen.ErrInexactDivision) {
		t.Errorf("err = %v, want ErrInexactDivision", err)
	}
	if _, err := g.Custom(context.Background(), "hola"); !errors.Is(err, problemgen.ErrBadExpression) {
		t.Errorf("err = %v, want ErrBadExpression", err)
	}
	if _, err := g.Custom(context.Background(), "0 x 7"); !errors.Is(err, problemgen.ErrOutOfRange) {
		t.Errorf("err = %v, want ErrOutOfRange", err)
	}
	if g.Phase() != PhaseIdle {
		t.Errorf("phase = %v, want idle after rejected input", g.Phase())
	}
}

func TestSnapshotResume(t *testing.T) {
	g, _ := newTestGame(t, Options{Level: problemgen.Level2})
	ctx := context.Background()
	g.Next(ctx)
	snap := g.Snapshot()
	if snap.Level != 2 || snap.LastProblem == nil {
		t.Fatalf("snapshot = %+v", snap)
	}

	other, _ := newTestGame(t, Options{})
	other.Resume(&snap)
	if other.Level() != problemgen.Level2 {
		t.Errorf("resumed level = %d", other.Level())
	}
	if got := other.Snapshot(); got.LastProblem == nil || *got.LastProblem != *snap.LastProblem {
		t.Errorf("resumed last problem = %+v, want %+v", got.LastProblem, snap.LastProblem)
	}

	other.Resume(&store.SnapshotData{Level: 7, LastProblem: &store.ProblemState{Operand1: 43, Operand2: 6, Operator: "÷"}})
	if other.Level() != problemgen.Level2 {
		t.Error("invalid level should be ignored")
	}
}

func TestSummaryAccuracy(t *testing.T) {
	s := Summary{}
	s.record(OutcomeCorrect, 10)
	s.record(OutcomeIncorrect, 0)
	s.record(OutcomeHardWon, 25)
	s.record(OutcomeRevealed, 0)

	if s.Answered != 3 || s.Correct != 2 || s.Points != 35 {
		t.Errorf("summary = %+v", s)
	}
	if got := s.Accuracy(); got < 0.66 || got > 0.67 {
		t.Errorf("accuracy = %v", got)
	}
	if (Summary{}).Accuracy() != 0 {
		t.Error("empty summary accuracy should be 0")
	}
}

func TestClose_StopsSpeech(t *testing.T) {
	g, sp := newTestGame(t, Options{})
	g.Close()
	if sp.stopped != 1 {
		t.Errorf("stopped = %d", sp.stopped)
	}
}
