package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/jmoiron/sqlx"
)

// snapshotRepo implements SnapshotRepo storing JSON-encoded data.
type snapshotRepo struct {
	x       *sqlx.DB
	dialect string
	now     func() time.Time
}

type snapshotRow struct {
	ID        int       `db:"id"`
	UserID    string    `db:"user_id"`
	Timestamp time.Time `db:"timestamp"`
	Data      string    `db:"data"`
}

func (r *snapshotRepo) Save(ctx context.Context, snap *Snapshot) error {
	data, err := json.Marshal(snap.Data)
	if err != nil {
		return fmt.Errorf("marshal snapshot data: %w", err)
	}
	ts := snap.Timestamp
	if ts.IsZero() {
		ts = r.now()
	}

	query, args := entsql.Dialect(r.dialect).
		Insert(tableSnapshots).
		Columns("user_id", "timestamp", "data").
		Values(snap.UserID, ts.UTC(), string(data)).
		Query()
	if _, err := r.x.ExecContext(ctx, query, args...); err != nil {
		return &WriteError{Collection: tableSnapshots, Operation: "create", Data: snap.Data, Err: err}
	}
	return nil
}

func (r *snapshotRepo) Latest(ctx context.Context, userID string) (*Snapshot, error) {
	b := entsql.Dialect(r.dialect)
	query, args := b.Select("id", "user_id", "timestamp", "data").
		From(b.Table(tableSnapshots)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("timestamp"), entsql.Desc("id")).
		Limit(1).
		Query()

	var rows []snapshotRow
	if err := r.x.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query latest snapshot: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rowToSnapshot(rows[0])
}

func (r *snapshotRepo) Prune(ctx context.Context, keep int) error {
	b := entsql.Dialect(r.dialect)
	query, args := b.Select("id", "user_id").
		From(b.Table(tableSnapshots)).
		OrderBy(entsql.Asc("user_id"), entsql.Desc("timestamp"), entsql.Desc("id")).
		Query()

	var rows []struct {
		ID     int    `db:"id"`
		UserID string `db:"user_id"`
	}
	if err := r.x.SelectContext(ctx, &rows, query, args...); err != nil {
		return fmt.Errorf("query snapshots for prune: %w", err)
	}

	var stale []any
	seen := map[string]int{}
	for _, row := range rows {
		seen[row.UserID]++
		if seen[row.UserID] > keep {
			stale = append(stale, row.ID)
		}
	}
	if len(stale) == 0 {
		return nil // fewer than keep snapshots per user
	}

	del, delArgs := entsql.Dialect(r.dialect).
		Delete(tableSnapshots).
		Where(entsql.In("id", stale...)).
		Query()
	if _, err := r.x.ExecContext(ctx, del, delArgs...); err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	return nil
}

func (r *snapshotRepo) DeleteUser(ctx context.Context, userID string) error {
	query, args := entsql.Dialect(r.dialect).
		Delete(tableSnapshots).
		Where(entsql.EQ("user_id", userID)).
		Query()
	if _, err := r.x.ExecContext(ctx, query, args...); err != nil {
		return &WriteError{Collection: tableSnapshots, Operation: "delete", Data: userID, Err: err}
	}
	return nil
}

func rowToSnapshot(row snapshotRow) (*Snapshot, error) {
	var data SnapshotData
	if err := json.Unmarshal([]byte(row.Data), &data); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot data: %w", err)
	}
	return &Snapshot{
		ID:        row.ID,
		UserID:    row.UserID,
		Timestamp: row.Timestamp.UTC(),
		Data:      data,
	}, nil
}
