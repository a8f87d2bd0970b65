package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/abhisek/mathemmita/internal/problemgen"
	"github.com/abhisek/mathemmita/internal/store"
)

func TestRegistry_CreatesOncePerKey(t *testing.T) {
	r := NewRegistry()
	created := 0
	create := func() *Game {
		created++
		return New(Options{Rand: problemgen.NewSeededRand(1)})
	}

	var first, second *Game
	r.With("a", create, func(g *Game) { first = g })
	r.With("a", create, func(g *Game) { second = g })
	r.With("b", create, func(*Game) {})

	if created != 2 {
		t.Errorf("created = %d, want 2", created)
	}
	if first != second {
		t.Error("same key returned different games")
	}
	if r.Len() != 2 {
		t.Errorf("Len = %d", r.Len())
	}
}

func TestRegistry_SerializesPerKey(t *testing.T) {
	r := NewRegistry()
	create := func() *Game { return New(Options{Rand: problemgen.NewSeededRand(1)}) }

	var wg sync.WaitGroup
	var inside, maxInside int
	var mu sync.Mutex
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.With("chat", create, func(g *Game) {
				mu.Lock()
				inside++
				if inside > maxInside {
					maxInside = inside
				}
				mu.Unlock()
				g.Next(context.Background())
				mu.Lock()
				inside--
				mu.Unlock()
			})
		}()
	}
	wg.Wait()
	if maxInside != 1 {
		t.Errorf("concurrent access to one game: %d", maxInside)
	}
}

func TestRegistry_ReplaceClosesOld(t *testing.T) {
	r := NewRegistry()
	old, sp := newTestGame(t, Options{})
	r.Replace("k", old)

	fresh, _ := newTestGame(t, Options{UserID: "emma"})
	r.Replace("k", fresh)

	if sp.stopped != 1 {
		t.Errorf("old game stopped %d times", sp.stopped)
	}
	r.With("k", nil, func(g *Game) {
		if g != fresh {
			t.Error("replacement not installed")
		}
	})
}

func TestRegistry_Evict(t *testing.T) {
	r := NewRegistry()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	idle, sp := newTestGame(t, Options{})
	r.Replace("idle", idle)
	now = now.Add(2 * time.Hour)
	busy, _ := newTestGame(t, Options{})
	r.Replace("busy", busy)

	if n := r.Evict(time.Hour); n != 1 {
		t.Fatalf("evicted %d, want 1", n)
	}
	if sp.stopped != 1 {
		t.Error("evicted game was not closed")
	}
	if r.Len() != 1 {
		t.Errorf("Len = %d", r.Len())
	}

	r.Close()
	if r.Len() != 0 {
		t.Errorf("Len after Close = %d", r.Len())
	}
}

// memSnapshots is an in-memory store.SnapshotRepo.
type memSnapshots struct {
	store.SnapshotRepo
	saved []store.Snapshot
	err   error
}

func (m *memSnapshots) Save(_ context.Context, snap *store.Snapshot) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, *snap)
	return nil
}

func (m *memSnapshots) Latest(_ context.Context, userID string) (*store.Snapshot, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := len(m.saved) - 1; i >= 0; i-- {
		if m.saved[i].UserID == userID {
			s := m.saved[i]
			return &s, nil
		}
	}
	return nil, nil
}

func TestSaveLoadSnapshot(t *testing.T) {
	repo := &memSnapshots{}
	ctx := context.Background()

	g, _ := newTestGame(t, Options{UserID: "emma", Level: problemgen.Level2})
	if _, err := g.Custom(ctx, "7 x 8"); err != nil {
		t.Fatal(err)
	}
	g.Next(ctx)
	if err := SaveSnapshot(ctx, repo, g); err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(repo.saved) != 1 || repo.saved[0].UserID != "emma" {
		t.Fatalf("saved = %+v", repo.saved)
	}

	resumed, _ := newTestGame(t, Options{UserID: "emma"})
	if err := LoadSnapshot(ctx, repo, resumed); err != nil {
		t.Fatalf("load: %v", err)
	}
	if resumed.Level() != problemgen.Level2 {
		t.Errorf("level = %d, want 2", resumed.Level())
	}
}

func TestSnapshot_AnonymousAndErrors(t *testing.T) {
	repo := &memSnapshots{}
	anon, _ := newTestGame(t, Options{})
	if err := SaveSnapshot(context.Background(), repo, anon); err != nil || len(repo.saved) != 0 {
		t.Errorf("anonymous game saved: %v %v", err, repo.saved)
	}

	repo.err = errors.New("disk full")
	g, _ := newTestGame(t, Options{UserID: "emma"})
	if err := SaveSnapshot(context.Background(), repo, g); err == nil {
		t.Error("expected save error")
	}
	if err := LoadSnapshot(context.Background(), repo, g); err == nil {
		t.Error("expected load error")
	}
}
