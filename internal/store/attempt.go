package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect/sql"
	"github.com/jmoiron/sqlx"
)

var attemptColumns = []string{
	"id", "user_id", "operand1", "operand2", "operator", "answer",
	"display_text", "theme", "correct", "timestamp",
}

// attemptRepo implements AttemptRepo with ent's SQL builder and sqlx scanning.
type attemptRepo struct {
	x       *sqlx.DB
	dialect string
	now     func() time.Time
}

func (r *attemptRepo) Append(ctx context.Context, data AttemptData) error {
	query, args := sql.Dialect(r.dialect).
		Insert(tableAttempts).
		Columns("user_id", "operand1", "operand2", "operator", "answer", "display_text", "theme", "correct", "timestamp").
		Values(data.UserID, data.Operand1, data.Operand2, data.Operator, data.Answer, data.DisplayText, data.Theme, data.Correct, r.now().UTC()).
		Query()

	if _, err := r.x.ExecContext(ctx, query, args...); err != nil {
		return &WriteError{
			Collection: "users/" + data.UserID + "/" + tableAttempts,
			Operation:  "create",
			Data:       data,
			Err:        err,
		}
	}
	return nil
}

func (r *attemptRepo) RecentIncorrect(ctx context.Context, userID string, limit int) ([]AttemptRecord, error) {
	return r.Query(ctx, userID, QueryOpts{Limit: limit, OnlyIncorrect: true})
}

func (r *attemptRepo) HasLaterCorrect(ctx context.Context, userID, displayText string, after time.Time) (bool, error) {
	b := sql.Dialect(r.dialect)
	query, args := b.Select("id").
		From(b.Table(tableAttempts)).
		Where(sql.And(
			sql.EQ("user_id", userID),
			sql.EQ("display_text", displayText),
			sql.EQ("correct", true),
			sql.GT("timestamp", after.UTC()),
		)).
		Limit(1).
		Query()

	var ids []int64
	if err := r.x.SelectContext(ctx, &ids, query, args...); err != nil {
		return false, fmt.Errorf("query later correct: %w", err)
	}
	return len(ids) > 0, nil
}

func (r *attemptRepo) Query(ctx context.Context, userID string, opts QueryOpts) ([]AttemptRecord, error) {
	b := sql.Dialect(r.dialect)
	preds := []*sql.Predicate{sql.EQ("user_id", userID)}
	if opts.OnlyIncorrect {
		preds = append(preds, sql.EQ("correct", false))
	}
	if !opts.From.IsZero() {
		preds = append(preds, sql.GTE("timestamp", opts.From.UTC()))
	}
	if !opts.To.IsZero() {
		preds = append(preds, sql.LTE("timestamp", opts.To.UTC()))
	}

	sel := b.Select(attemptColumns...).
		From(b.Table(tableAttempts)).
		Where(sql.And(preds...)).
		OrderBy(sql.Desc("timestamp"), sql.Desc("id"))
	if opts.Limit > 0 {
		sel = sel.Limit(opts.Limit)
	}
	query, args := sel.Query()

	var records []AttemptRecord
	if err := r.x.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	for i := range records {
		records[i].Timestamp = records[i].Timestamp.UTC()
	}
	return records, nil
}

func (r *attemptRepo) Stats(ctx context.Context, userID string) (*AttemptStats, error) {
	records, err := r.Query(ctx, userID, QueryOpts{})
	if err != nil {
		return nil, err
	}

	stats := &AttemptStats{}
	byOp := map[string]*OperatorStats{}
	var order []string
	for _, rec := range records {
		stats.Total++
		if rec.Correct {
			stats.Correct++
		}
		opStats, ok := byOp[rec.Operator]
		if !ok {
			opStats = &OperatorStats{Operator: rec.Operator}
			byOp[rec.Operator] = opStats
			order = append(order, rec.Operator)
		}
		opStats.Total++
		if rec.Correct {
			opStats.Correct++
		}
		if stats.Last.IsZero() || rec.Timestamp.After(stats.Last) {
			stats.Last = rec.Timestamp
		}
		if stats.First.IsZero() || rec.Timestamp.Before(stats.First) {
			stats.First = rec.Timestamp
		}
	}
	for _, op := range order {
		stats.ByOperator = append(stats.ByOperator, *byOp[op])
	}
	return stats, nil
}

func (r *attemptRepo) DeleteUser(ctx context.Context, userID string) error {
	query, args := sql.Dialect(r.dialect).
		Delete(tableAttempts).
		Where(sql.EQ("user_id", userID)).
		Query()
	if _, err := r.x.ExecContext(ctx, query, args...); err != nil {
		return &WriteError{Collection: tableAttempts, Operation: "delete", Data: userID, Err: err}
	}
	return nil
}
