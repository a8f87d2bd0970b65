// Package scheduler runs the nightly maintenance jobs of the server.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/abhisek/mathemmita/internal/rewards"
	"github.com/abhisek/mathemmita/internal/store"
)

// DefaultAt is the local time the maintenance job runs.
const DefaultAt = "00:00"

// Profiles is the part of the profile store the nightly job needs.
type Profiles interface {
	ResetDaily(ctx context.Context, day string) (int64, error)
}

// Snapshots is the part of the snapshot store the nightly job needs.
type Snapshots interface {
	Prune(ctx context.Context, keep int) error
}

// Options configures a Scheduler.
type Options struct {
	Profiles  Profiles
	Snapshots Snapshots

	// Keep is the number of snapshots kept per user; zero skips pruning.
	Keep int

	// At is the "HH:MM" run time in Location. Defaults to midnight.
	At       string
	Location *time.Location
	Logger   *zap.Logger
}

// Scheduler resets daily points and prunes old snapshots once a day.
type Scheduler struct {
	cron      *gocron.Scheduler
	profiles  Profiles
	snapshots Snapshots
	keep      int
	at        string
	loc       *time.Location
	logger    *zap.Logger
	now       func() time.Time
}

// New creates a scheduler. Call Start or Run to begin.
func New(opts Options) *Scheduler {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.At == "" {
		opts.At = DefaultAt
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Scheduler{
		cron:      gocron.NewScheduler(opts.Location),
		profiles:  opts.Profiles,
		snapshots: opts.Snapshots,
		keep:      opts.Keep,
		at:        opts.At,
		loc:       opts.Location,
		logger:    opts.Logger,
		now:       time.Now,
	}
}

// Start registers the daily job and runs the scheduler in the background.
func (s *Scheduler) Start() error {
	_, err := s.cron.Every(1).Day().At(s.at).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := s.RunNow(ctx); err != nil {
			s.logger.Error("nightly maintenance", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule maintenance at %s: %w", s.at, err)
	}
	s.cron.StartAsync()
	s.logger.Info("scheduler started", zap.String("at", s.at), zap.String("location", s.loc.String()))
	return nil
}

// Run starts the scheduler and blocks until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}

// Stop halts the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// RunNow performs the maintenance immediately: daily points of every
// profile not already on today's day are zeroed, then snapshots are pruned.
func (s *Scheduler) RunNow(ctx context.Context) error {
	day := rewards.DayKey(s.now().In(s.loc))
	if s.profiles != nil {
		n, err := s.profiles.ResetDaily(ctx, day)
		if err != nil {
			return fmt.Errorf("reset daily points: %w", err)
		}
		s.logger.Info("daily points reset", zap.String("day", day), zap.Int64("profiles", n))
	}
	if s.snapshots != nil && s.keep > 0 {
		if err := s.snapshots.Prune(ctx, s.keep); err != nil {
			return fmt.Errorf("prune snapshots: %w", err)
		}
		s.logger.Debug("snapshots pruned", zap.Int("keep", s.keep))
	}
	return nil
}

var (
	_ Profiles  = (store.ProfileRepo)(nil)
	_ Snapshots = (store.SnapshotRepo)(nil)
)
