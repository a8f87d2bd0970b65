package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/abhisek/mathemmita/internal/problemgen"
	"github.com/abhisek/mathemmita/internal/rewards"
	"github.com/abhisek/mathemmita/internal/session"
	"github.com/abhisek/mathemmita/internal/store"
	"github.com/abhisek/mathemmita/internal/tricks"
	"github.com/abhisek/mathemmita/internal/tutor"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// database/sql keeps an opener goroutine per open *sql.DB until Close.
		goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"),
	)
}

var testKey = []byte("0123456789abcdef0123456789abcdef")

type harness struct {
	srv    *Server
	http   *httptest.Server
	client *http.Client
	store  *store.Store
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	st, err := store.Open(fmt.Sprintf("file:web_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	rw := rewards.NewService(st.ProfileRepo(), rewards.Points{}, nil)
	selector := tutor.NewSelector(st.AttemptRepo())
	srv, err := New(Options{
		SessionKey: testKey,
		NewGame: func(userID string) *session.Game {
			return session.New(session.Options{
				UserID:   userID,
				Selector: selector,
				Attempts: st.AttemptRepo(),
				Rewards:  rw,
				Rand:     problemgen.NewSeededRand(7),
			})
		},
		Rewards:   rw,
		Explainer: tricks.NewExplainer(nil, tricks.DefaultConfig(), nil),
		Snapshots: st.SnapshotRepo(),
	})
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &harness{srv: srv, http: ts, client: &http.Client{Jar: jar}, store: st}
}

func (h *harness) do(t *testing.T, method, path string, body any, out any) int {
	t.Helper()
	var raw []byte
	switch b := body.(type) {
	case nil:
	case string:
		raw = []byte(b)
	default:
		var err error
		raw, err = json.Marshal(b)
		require.NoError(t, err)
	}
	req, err := http.NewRequest(method, h.http.URL+path, bytes.NewReader(raw))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := h.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestNew_Validates(t *testing.T) {
	_, err := New(Options{SessionKey: []byte("short"), NewGame: func(string) *session.Game { return nil }})
	assert.Error(t, err)
	_, err = New(Options{SessionKey: testKey})
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	h := newHarness(t)
	var got map[string]any
	assert.Equal(t, http.StatusOK, h.do(t, http.MethodGet, "/healthz", nil, &got))
	assert.Equal(t, "ok", got["status"])
}

func TestAnonymousRound(t *testing.T) {
	h := newHarness(t)

	var p problemView
	require.Equal(t, http.StatusOK, h.do(t, http.MethodPost, "/api/custom", customRequest{Expr: "7 x 8"}, &p))
	assert.Equal(t, "7 × 8", p.Question)
	assert.Equal(t, "presented", p.Phase)
	assert.Nil(t, p.Answer, "answer hidden while the round is open")

	var res resultView
	require.Equal(t, http.StatusOK, h.do(t, http.MethodPost, "/api/answer", answerRequest{Answer: "54"}, &res))
	assert.Equal(t, "incorrect", res.Outcome)
	assert.Nil(t, res.Problem.Answer)

	require.Equal(t, http.StatusOK, h.do(t, http.MethodPost, "/api/answer", answerRequest{Answer: "56"}, &res))
	assert.Equal(t, "correct", res.Outcome)
	assert.Equal(t, 10, res.Points)
	assert.Nil(t, res.Award, "anonymous players have no profile")
	require.NotNil(t, res.Problem.Answer)
	assert.Equal(t, 56, *res.Problem.Answer)

	var conflict map[string]string
	assert.Equal(t, http.StatusConflict, h.do(t, http.MethodPost, "/api/answer", answerRequest{Answer: "56"}, &conflict))

	require.Equal(t, http.StatusOK, h.do(t, http.MethodGet, "/api/problem", nil, &p))
	assert.Equal(t, "presented", p.Phase)
	assert.NotEmpty(t, p.Question)

	var again problemView
	require.Equal(t, http.StatusOK, h.do(t, http.MethodGet, "/api/problem", nil, &again))
	assert.Equal(t, p.Question, again.Question, "open round is not replaced")

	assert.Equal(t, 1, h.srv.games.Len())
}

func TestBadRequests(t *testing.T) {
	h := newHarness(t)
	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"malformed json", http.MethodPost, "/api/custom", `{"expr":`, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/api/custom", `{"expression":"7x8"}`, http.StatusBadRequest},
		{"bad expression", http.MethodPost, "/api/custom", customRequest{Expr: "7 + 8"}, http.StatusBadRequest},
		{"inexact division", http.MethodPost, "/api/custom", customRequest{Expr: "10 / 3"}, http.StatusBadRequest},
		{"huge operands", http.MethodPost, "/api/custom", customRequest{Expr: "99999 x 99999"}, http.StatusBadRequest},
		{"zero operand", http.MethodPost, "/api/custom", customRequest{Expr: "0 x 7"}, http.StatusBadRequest},
		{"answer without problem", http.MethodPost, "/api/answer", answerRequest{Answer: "4"}, http.StatusConflict},
		{"reveal without problem", http.MethodPost, "/api/reveal", nil, http.StatusConflict},
		{"trick without problem", http.MethodGet, "/api/trick", nil, http.StatusConflict},
		{"empty login", http.MethodPost, "/api/login", loginRequest{UserID: "  "}, http.StatusBadRequest},
		{"rewards while anonymous", http.MethodGet, "/api/rewards", nil, http.StatusUnauthorized},
		{"wrong method", http.MethodDelete, "/api/rewards", nil, http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, h.do(t, tt.method, tt.path, tt.body, nil))
		})
	}
}

func TestNonDigitAnswer(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, http.StatusOK, h.do(t, http.MethodPost, "/api/custom", customRequest{Expr: "6 x 6"}, nil))
	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodPost, "/api/answer", answerRequest{Answer: "treinta"}, nil))
}

func TestRevealAndTrick(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, http.StatusOK, h.do(t, http.MethodPost, "/api/custom", customRequest{Expr: "7 x 9"}, nil))

	var tr trickView
	require.Equal(t, http.StatusOK, h.do(t, http.MethodGet, "/api/trick", nil, &tr))
	assert.Equal(t, tricks.KindNineFingers, tr.Kind)
	assert.Equal(t, tricks.Subtitle, tr.Subtitle)
	assert.NotContains(t, tr.Markdown, "La respuesta es")

	var res resultView
	require.Equal(t, http.StatusOK, h.do(t, http.MethodPost, "/api/reveal", nil, &res))
	assert.Equal(t, "revealed", res.Outcome)
	assert.Zero(t, res.Points)
	require.NotNil(t, res.Problem.Answer)
	assert.Equal(t, 63, *res.Problem.Answer)
}

func TestSignedInRewards(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	var login map[string]any
	require.Equal(t, http.StatusOK, h.do(t, http.MethodPost, "/api/login", loginRequest{UserID: "emma"}, &login))
	assert.Equal(t, "emma", login["user_id"])

	var invalid map[string]string
	status := h.do(t, http.MethodPut, "/api/rewards", rewards.Config{Level1: "", Level2: "Cine", Level3: "Parque"}, &invalid)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "level1", invalid["field"])

	var view rewardsView
	status = h.do(t, http.MethodPut, "/api/rewards", rewards.Config{Level1: "Helado", Level2: "Cine", Level3: "Parque"}, &view)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Helado", view.Prizes.Level1)
	require.Len(t, view.Milestones, 3)
	assert.Equal(t, "Cine", view.Milestones[1].Prize)

	require.Equal(t, http.StatusOK, h.do(t, http.MethodPost, "/api/custom", customRequest{Expr: "42 / 6"}, nil))
	var res resultView
	require.Equal(t, http.StatusOK, h.do(t, http.MethodPost, "/api/answer", answerRequest{Answer: "7"}, &res))
	require.NotNil(t, res.Award)
	assert.Equal(t, 10, res.Award.Today)

	require.Equal(t, http.StatusOK, h.do(t, http.MethodGet, "/api/rewards", nil, &view))
	assert.Equal(t, 10, view.Today)
	assert.Equal(t, 10, view.Total)

	stats, err := h.store.AttemptRepo().Stats(ctx, "emma")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
}

func TestLoginResumesSnapshot(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.store.SnapshotRepo().Save(ctx, &store.Snapshot{
		UserID: "leo",
		Data:   store.SnapshotData{Version: 1, Level: 2},
	}))

	var login map[string]any
	require.Equal(t, http.StatusOK, h.do(t, http.MethodPost, "/api/login", loginRequest{UserID: "leo"}, &login))
	assert.EqualValues(t, 2, login["level"])

	var p problemView
	require.Equal(t, http.StatusOK, h.do(t, http.MethodGet, "/api/problem", nil, &p))
	assert.Equal(t, 2, p.Level)
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	srv, err := New(Options{
		SessionKey:  testKey,
		NewGame:     func(userID string) *session.Game { return session.New(session.Options{UserID: userID}) },
		IdleTimeout: time.Minute,
	})
	require.NoError(t, err)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, addr) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
