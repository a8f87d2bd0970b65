// Package web serves the game as a JSON API for browser clients.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"github.com/abhisek/mathemmita/internal/rewards"
	"github.com/abhisek/mathemmita/internal/session"
	"github.com/abhisek/mathemmita/internal/store"
	"github.com/abhisek/mathemmita/internal/tricks"
)

const (
	cookieName = "mathemmita"
	keySession = "sid"
	keyUser    = "uid"

	maxUserIDLength = 64
	maxBodyBytes    = 4 << 10
)

// GameFactory creates a game for a user id; empty means anonymous.
type GameFactory func(userID string) *session.Game

// Options configures a Server.
type Options struct {
	// SessionKey signs the session cookie. It must be at least 32 bytes.
	SessionKey []byte

	NewGame   GameFactory
	Rewards   *rewards.Service
	Explainer *tricks.Explainer
	Snapshots store.SnapshotRepo

	// IdleTimeout evicts games of inactive browsers. Zero keeps them.
	IdleTimeout time.Duration
	Logger      *zap.Logger
}

// Server holds one game per browser session.
type Server struct {
	cookies   *sessions.CookieStore
	newGame   GameFactory
	rewards   *rewards.Service
	explainer *tricks.Explainer
	snapshots store.SnapshotRepo
	games     *session.Registry
	idle      time.Duration
	logger    *zap.Logger
}

// New creates a Server.
func New(opts Options) (*Server, error) {
	if len(opts.SessionKey) < 32 {
		return nil, errors.New("session key must be at least 32 bytes")
	}
	if opts.NewGame == nil {
		return nil, errors.New("game factory is required")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	cookies := sessions.NewCookieStore(opts.SessionKey)
	cookies.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   30 * 24 * 3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &Server{
		cookies:   cookies,
		newGame:   opts.NewGame,
		rewards:   opts.Rewards,
		explainer: opts.Explainer,
		snapshots: opts.Snapshots,
		games:     session.NewRegistry(),
		idle:      opts.IdleTimeout,
		logger:    opts.Logger,
	}, nil
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("GET /api/problem", s.handleProblem)
	mux.HandleFunc("POST /api/answer", s.handleAnswer)
	mux.HandleFunc("POST /api/reveal", s.handleReveal)
	mux.HandleFunc("POST /api/custom", s.handleCustom)
	mux.HandleFunc("GET /api/trick", s.handleTrick)
	mux.HandleFunc("GET /api/rewards", s.handleGetRewards)
	mux.HandleFunc("PUT /api/rewards", s.handlePutRewards)
	return s.logRequests(mux)
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	var sweep <-chan time.Time
	if s.idle > 0 {
		t := time.NewTicker(s.idle / 2)
		defer t.Stop()
		sweep = t.C
	}

	for {
		select {
		case err := <-errc:
			s.games.Close()
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("http server: %w", err)
		case <-sweep:
			if n := s.games.Evict(s.idle); n > 0 {
				s.logger.Debug("evicted idle games", zap.Int("count", n))
			}
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := srv.Shutdown(shutdownCtx)
			cancel()
			<-errc
			s.games.Close()
			return err
		}
	}
}

// visitor is the browser behind a request.
type visitor struct {
	sid    string
	userID string
}

// identify loads the cookie session, issuing a new session id when needed.
func (s *Server) identify(w http.ResponseWriter, r *http.Request) (visitor, *sessions.Session, error) {
	// A cookie that fails to decode yields a fresh session, not an error.
	sess, _ := s.cookies.Get(r, cookieName)
	sid, _ := sess.Values[keySession].(string)
	uid, _ := sess.Values[keyUser].(string)
	if sid == "" {
		sid = uuid.NewString()
		sess.Values[keySession] = sid
		if err := sess.Save(r, w); err != nil {
			return visitor{}, nil, fmt.Errorf("save session: %w", err)
		}
	}
	return visitor{sid: sid, userID: uid}, sess, nil
}

// withGame runs fn on the visitor's game, resuming it from the latest
// snapshot when it is created.
func (s *Server) withGame(w http.ResponseWriter, r *http.Request, fn func(v visitor, g *session.Game)) {
	v, _, err := s.identify(w, r)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	create := func() *session.Game {
		g := s.newGame(v.userID)
		if err := session.LoadSnapshot(r.Context(), s.snapshots, g); err != nil {
			s.logger.Warn("resume game", zap.String("user_id", v.userID), zap.Error(err))
		}
		return g
	}
	s.games.With(v.sid, create, func(g *session.Game) { fn(v, g) })
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "games": s.games.Len()})
}

type loginRequest struct {
	UserID string `json:"user_id"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decode(w, r, &req) {
		return
	}
	uid := strings.TrimSpace(req.UserID)
	if uid == "" || len(uid) > maxUserIDLength {
		writeError(w, http.StatusBadRequest, "user_id must be 1 to 64 characters")
		return
	}

	v, sess, err := s.identify(w, r)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	sess.Values[keyUser] = uid
	if err := sess.Save(r, w); err != nil {
		s.fail(w, http.StatusInternalServerError, fmt.Errorf("save session: %w", err))
		return
	}

	g := s.newGame(uid)
	if err := session.LoadSnapshot(r.Context(), s.snapshots, g); err != nil {
		s.logger.Warn("resume game", zap.String("user_id", uid), zap.Error(err))
	}
	s.games.Replace(v.sid, g)
	s.logger.Info("browser signed in", zap.String("user_id", uid))
	writeJSON(w, http.StatusOK, map[string]any{"user_id": uid, "level": int(g.Level())})
}

func (s *Server) handleProblem(w http.ResponseWriter, r *http.Request) {
	s.withGame(w, r, func(_ visitor, g *session.Game) {
		if !g.Phase().AcceptsInput() {
			g.Next(r.Context())
			s.persist(r.Context(), g)
		}
		writeJSON(w, http.StatusOK, newProblemView(g))
	})
}

type answerRequest struct {
	Answer string `json:"answer"`
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.withGame(w, r, func(_ visitor, g *session.Game) {
		if !g.Phase().AcceptsInput() {
			writeError(w, http.StatusConflict, "no problem waiting for an answer")
			return
		}
		g.SetInput(strings.TrimSpace(req.Answer))
		res := g.Submit(r.Context())
		if res == nil {
			writeError(w, http.StatusBadRequest, "answer must contain digits")
			return
		}
		if res.LevelChanged {
			s.persist(r.Context(), g)
		}
		writeJSON(w, http.StatusOK, newResultView(g, res))
	})
}

func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	s.withGame(w, r, func(_ visitor, g *session.Game) {
		res := g.Reveal(r.Context())
		if res == nil {
			writeError(w, http.StatusConflict, "no problem waiting for an answer")
			return
		}
		writeJSON(w, http.StatusOK, newResultView(g, res))
	})
}

type customRequest struct {
	Expr string `json:"expr"`
}

func (s *Server) handleCustom(w http.ResponseWriter, r *http.Request) {
	var req customRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.withGame(w, r, func(_ visitor, g *session.Game) {
		if _, err := g.Custom(r.Context(), req.Expr); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, newProblemView(g))
	})
}

func (s *Server) handleTrick(w http.ResponseWriter, r *http.Request) {
	s.withGame(w, r, func(_ visitor, g *session.Game) {
		if g.Problem().IsZero() {
			writeError(w, http.StatusConflict, "no problem in play")
			return
		}
		t := s.explainer.Explain(r.Context(), g.Problem(), g.ChildName())
		writeJSON(w, http.StatusOK, newTrickView(t))
	})
}

func (s *Server) handleGetRewards(w http.ResponseWriter, r *http.Request) {
	v, ok := s.signedIn(w, r)
	if !ok {
		return
	}
	view, err := s.rewardsView(r.Context(), v.userID)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handlePutRewards(w http.ResponseWriter, r *http.Request) {
	v, ok := s.signedIn(w, r)
	if !ok {
		return
	}
	var cfg rewards.Config
	if !s.decode(w, r, &cfg) {
		return
	}
	if err := s.rewards.SavePrizes(r.Context(), v.userID, cfg); err != nil {
		var ve *rewards.ValidationError
		if errors.As(err, &ve) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"field": ve.Field, "error": ve.Reason})
			return
		}
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	view, err := s.rewardsView(r.Context(), v.userID)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) signedIn(w http.ResponseWriter, r *http.Request) (visitor, bool) {
	if s.rewards == nil {
		writeError(w, http.StatusNotFound, "rewards are not available")
		return visitor{}, false
	}
	v, _, err := s.identify(w, r)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return visitor{}, false
	}
	if v.userID == "" {
		writeError(w, http.StatusUnauthorized, "sign in first")
		return visitor{}, false
	}
	return v, true
}

func (s *Server) rewardsView(ctx context.Context, userID string) (rewardsView, error) {
	prizes, err := s.rewards.Prizes(ctx, userID)
	if err != nil {
		return rewardsView{}, err
	}
	bal, err := s.rewards.Balance(ctx, userID)
	if err != nil {
		return rewardsView{}, err
	}
	return newRewardsView(prizes, bal), nil
}

func (s *Server) persist(ctx context.Context, g *session.Game) {
	if err := session.SaveSnapshot(ctx, s.snapshots, g); err != nil {
		s.logger.Warn("save game", zap.String("user_id", g.UserID()), zap.Error(err))
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func (s *Server) fail(w http.ResponseWriter, status int, err error) {
	s.logger.Error("request failed", zap.Int("status", status), zap.Error(err))
	writeError(w, status, http.StatusText(status))
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("latency", time.Since(start)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
