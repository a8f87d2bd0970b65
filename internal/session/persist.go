package session

import (
	"context"
	"fmt"

	"github.com/abhisek/mathemmita/internal/store"
)

// SaveSnapshot stores the game state of a signed-in player. Anonymous games
// are not saved.
func SaveSnapshot(ctx context.Context, repo store.SnapshotRepo, g *Game) error {
	if repo == nil || g.UserID() == "" {
		return nil
	}
	data := g.Snapshot()
	if err := repo.Save(ctx, &store.Snapshot{UserID: g.UserID(), Data: data}); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot resumes g from the player's latest snapshot, if any.
func LoadSnapshot(ctx context.Context, repo store.SnapshotRepo, g *Game) error {
	if repo == nil || g.UserID() == "" {
		return nil
	}
	snap, err := repo.Latest(ctx, g.UserID())
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if snap != nil {
		g.Resume(&snap.Data)
	}
	return nil
}
