package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
child_name: Lucía
tutor:
  repeat_probability: 0.5
  recent_failures: 8
game:
  start_level: 2
  points:
    correct: 5
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Lucía", cfg.ChildName)
	assert.Equal(t, 0.5, cfg.Tutor.RepeatProbability)
	assert.Equal(t, 8, cfg.Tutor.RecentFailures)
	assert.Equal(t, 0.5, cfg.Tutor.ScaffoldProbability, "unset keys keep defaults")
	assert.Equal(t, 2, cfg.Game.StartLevel)
	assert.Equal(t, 5, cfg.Game.Points.Correct)
	assert.Equal(t, 25, cfg.Game.Points.HardWon)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("MATHEMMITA_CHILD_NAME", "Emma")
	t.Setenv("MATHEMMITA_USER", "emma")
	t.Setenv("MATHEMMITA_DB", "postgres://localhost/mathemmita")
	t.Setenv("MATHEMMITA_TELEGRAM_TOKEN", "123:abc")
	t.Setenv("MATHEMMITA_SPEECH", "false")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "Emma", cfg.ChildName)
	assert.Equal(t, "emma", cfg.UserID)
	assert.Equal(t, "postgres://localhost/mathemmita", cfg.Database)
	assert.Equal(t, "123:abc", cfg.Telegram.Token)
	assert.False(t, cfg.Speech.Enabled)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tutor: [oops"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"repeat probability", func(c *Config) { c.Tutor.RepeatProbability = 2 }},
		{"failure window", func(c *Config) { c.Tutor.RecentFailures = 3 }},
		{"level change", func(c *Config) { c.Game.LevelChangeProbability = -1 }},
		{"start level", func(c *Config) { c.Game.StartLevel = 3 }},
		{"negative points", func(c *Config) { c.Game.Points.HardWon = -5 }},
		{"snapshots", func(c *Config) { c.Game.SnapshotsKept = 0 }},
		{"user", func(c *Config) { c.UserID = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := DefaultConfig()
	cfg.ChildName = "Lucía"
	cfg.Tutor.RecentFailures = 10
	require.NoError(t, cfg.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestWatch_ReloadsValidChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, DefaultConfig().Save(path))

	ctx, cancel := context.WithCancel(context.Background())
	reloaded := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, nil, func(c *Config) { reloaded <- c })
	}()
	defer func() {
		cancel()
		require.NoError(t, <-done)
	}()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	// An invalid edit is skipped.
	require.NoError(t, os.WriteFile(path, []byte("tutor:\n  recent_failures: 99\n"), 0o644))
	time.Sleep(400 * time.Millisecond)
	select {
	case c := <-reloaded:
		t.Fatalf("invalid config delivered: %+v", c.Tutor)
	default:
	}

	require.NoError(t, os.WriteFile(path, []byte("tutor:\n  repeat_probability: 0.9\n  recent_failures: 6\n"), 0o644))
	select {
	case c := <-reloaded:
		assert.Equal(t, 0.9, c.Tutor.RepeatProbability)
		assert.Equal(t, 6, c.Tutor.RecentFailures)
	case <-time.After(5 * time.Second):
		t.Fatal("config change not delivered")
	}
}
