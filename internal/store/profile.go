package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/jmoiron/sqlx"
)

var profileColumns = []string{
	"user_id", "prize_level1", "prize_level2", "prize_level3",
	"points_today", "points_day", "total_points", "updated_at",
}

// profileRepo implements ProfileRepo.
type profileRepo struct {
	x       *sqlx.DB
	dialect string
	now     func() time.Time
}

// queryer is satisfied by both *sqlx.DB and *sqlx.Tx.
type queryer interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *profileRepo) Get(ctx context.Context, userID string) (*Profile, error) {
	return r.get(ctx, r.x, userID)
}

func (r *profileRepo) get(ctx context.Context, q queryer, userID string) (*Profile, error) {
	b := entsql.Dialect(r.dialect)
	query, args := b.Select(profileColumns...).
		From(b.Table(tableProfiles)).
		Where(entsql.EQ("user_id", userID)).
		Limit(1).
		Query()

	var p Profile
	if err := q.GetContext(ctx, &p, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query profile: %w", err)
	}
	return &p, nil
}

func (r *profileRepo) SaveRewards(ctx context.Context, userID string, prizes PrizeNames) error {
	return r.inTx(ctx, "update", prizes, func(tx *sqlx.Tx) error {
		if err := r.ensure(ctx, tx, userID); err != nil {
			return err
		}
		query, args := entsql.Dialect(r.dialect).
			Update(tableProfiles).
			Set("prize_level1", prizes.Level1).
			Set("prize_level2", prizes.Level2).
			Set("prize_level3", prizes.Level3).
			Set("updated_at", r.now().UTC()).
			Where(entsql.EQ("user_id", userID)).
			Query()
		_, err := tx.ExecContext(ctx, query, args...)
		return err
	})
}

// AddPoints adds delta in a single UPDATE so concurrent awards for the same
// player serialize on the row lock instead of overwriting each other.
func (r *profileRepo) AddPoints(ctx context.Context, userID string, delta int, day string) (*Profile, error) {
	var updated *Profile
	err := r.inTx(ctx, "update", delta, func(tx *sqlx.Tx) error {
		if err := r.ensure(ctx, tx, userID); err != nil {
			return err
		}

		// Right-hand sides see the row before the update.
		today := entsql.ExprFunc(func(b *entsql.Builder) {
			b.WriteString("CASE WHEN ").Ident("points_day").WriteOp(entsql.OpEQ).Arg(day).
				WriteString(" THEN ").Ident("points_today").WriteOp(entsql.OpAdd).Arg(delta).
				WriteString(" ELSE ").Arg(delta).
				WriteString(" END")
		})
		query, args := entsql.Dialect(r.dialect).
			Update(tableProfiles).
			Set("points_today", today).
			Set("points_day", day).
			Add("total_points", delta).
			Set("updated_at", r.now().UTC()).
			Where(entsql.EQ("user_id", userID)).
			Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}

		p, err := r.get(ctx, tx, userID)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("profile %q vanished during update", userID)
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *profileRepo) ResetDaily(ctx context.Context, day string) (int64, error) {
	query, args := entsql.Dialect(r.dialect).
		Update(tableProfiles).
		Set("points_today", 0).
		Set("points_day", day).
		Where(entsql.NEQ("points_day", day)).
		Query()
	res, err := r.x.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, &WriteError{Collection: tableProfiles, Operation: "update", Data: day, Err: err}
	}
	return res.RowsAffected()
}

func (r *profileRepo) DeleteUser(ctx context.Context, userID string) error {
	query, args := entsql.Dialect(r.dialect).
		Delete(tableProfiles).
		Where(entsql.EQ("user_id", userID)).
		Query()
	if _, err := r.x.ExecContext(ctx, query, args...); err != nil {
		return &WriteError{Collection: tableProfiles, Operation: "delete", Data: userID, Err: err}
	}
	return nil
}

// ensure creates an empty profile row for userID unless one exists.
func (r *profileRepo) ensure(ctx context.Context, q queryer, userID string) error {
	query, args := entsql.Dialect(r.dialect).
		Insert(tableProfiles).
		Columns(profileColumns...).
		Values(userID, "", "", "", 0, "", 0, r.now().UTC()).
		OnConflict(entsql.ConflictColumns("user_id"), entsql.DoNothing()).
		Query()
	_, err := q.ExecContext(ctx, query, args...)
	return err
}

// inTx runs fn in a transaction, wrapping failures as WriteError.
func (r *profileRepo) inTx(ctx context.Context, op string, data any, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.x.BeginTxx(ctx, nil)
	if err != nil {
		return &WriteError{Collection: tableProfiles, Operation: op, Data: data, Err: err}
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return &WriteError{Collection: tableProfiles, Operation: op, Data: data, Err: err}
	}
	if err := tx.Commit(); err != nil {
		return &WriteError{Collection: tableProfiles, Operation: op, Data: data, Err: err}
	}
	return nil
}
