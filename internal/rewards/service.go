package rewards

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/mathemmita/internal/store"
)

// Outcome is the kind of round result that earns points.
type Outcome int

const (
	OutcomeCorrect Outcome = iota
	OutcomeHardWon
	OutcomeRevealed
)

// Points configures how many points each outcome earns.
type Points struct {
	Correct int `yaml:"correct"`
	HardWon int `yaml:"hard_won"`
}

// DefaultPoints returns the standard scoring.
func DefaultPoints() Points {
	return Points{Correct: 10, HardWon: 25}
}

// For returns the points earned by an outcome. Revealing earns nothing.
func (p Points) For(o Outcome) int {
	switch o {
	case OutcomeCorrect:
		return p.Correct
	case OutcomeHardWon:
		return p.HardWon
	default:
		return 0
	}
}

// Award is the result of crediting an outcome.
type Award struct {
	Points   int
	Today    int
	Total    int
	Unlocked []Milestone
}

// Balance is a user's current points.
type Balance struct {
	Today int
	Total int
}

// Service credits points and manages prize names on top of the profile store.
type Service struct {
	profiles store.ProfileRepo
	points   Points
	now      func() time.Time
	logger   *zap.Logger
}

// NewService creates a rewards service. Points default to DefaultPoints
// when zero.
func NewService(profiles store.ProfileRepo, points Points, logger *zap.Logger) *Service {
	if points == (Points{}) {
		points = DefaultPoints()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{profiles: profiles, points: points, now: time.Now, logger: logger}
}

// DayKey formats t as the calendar day key used for daily points.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// Day returns the local calendar day key used for daily points.
func (s *Service) Day() string {
	return DayKey(s.now())
}

// Award credits the points of an outcome to the user and reports the
// milestones it unlocked today.
func (s *Service) Award(ctx context.Context, userID string, o Outcome) (*Award, error) {
	delta := s.points.For(o)
	if delta == 0 {
		bal, err := s.Balance(ctx, userID)
		if err != nil {
			return nil, err
		}
		return &Award{Today: bal.Today, Total: bal.Total}, nil
	}

	p, err := s.profiles.AddPoints(ctx, userID, delta, s.Day())
	if err != nil {
		return nil, fmt.Errorf("award points: %w", err)
	}

	award := &Award{
		Points:   delta,
		Today:    p.PointsToday,
		Total:    p.TotalPoints,
		Unlocked: crossed(p.PointsToday-delta, p.PointsToday),
	}
	for _, m := range award.Unlocked {
		s.logger.Info("milestone unlocked",
			zap.String("user_id", userID),
			zap.Int("level", m.Level),
			zap.Int("points_today", p.PointsToday))
	}
	return award, nil
}

// Balance returns the user's points. Daily points from a previous day
// read as zero.
func (s *Service) Balance(ctx context.Context, userID string) (Balance, error) {
	p, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return Balance{}, fmt.Errorf("load profile: %w", err)
	}
	if p == nil {
		return Balance{}, nil
	}
	bal := Balance{Today: p.PointsToday, Total: p.TotalPoints}
	if p.PointsDay != s.Day() {
		bal.Today = 0
	}
	return bal, nil
}

// Prizes returns the configured prize names. Missing names are empty.
func (s *Service) Prizes(ctx context.Context, userID string) (Config, error) {
	p, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return Config{}, fmt.Errorf("load profile: %w", err)
	}
	if p == nil {
		return Config{}, nil
	}
	return Config{Level1: p.PrizeLevel1, Level2: p.PrizeLevel2, Level3: p.PrizeLevel3}, nil
}

// SavePrizes validates and stores the prize names.
func (s *Service) SavePrizes(ctx context.Context, userID string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	return s.profiles.SaveRewards(ctx, userID, store.PrizeNames{
		Level1: strings.TrimSpace(cfg.Level1),
		Level2: strings.TrimSpace(cfg.Level2),
		Level3: strings.TrimSpace(cfg.Level3),
	})
}
