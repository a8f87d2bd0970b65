package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/jmoiron/sqlx"
)

var llmColumns = []string{
	"id", "timestamp", "provider", "model", "purpose", "input_tokens", "output_tokens",
	"latency_ms", "success", "error_message", "request_body", "response_body",
}

// eventRepo implements EventRepo for LLM request events.
type eventRepo struct {
	x       *sqlx.DB
	dialect string
	now     func() time.Time
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	query, args := entsql.Dialect(r.dialect).
		Insert(tableLLMRequests).
		Columns(llmColumns[1:]...).
		Values(
			r.now().UTC(),
			data.Provider,
			data.Model,
			data.Purpose,
			data.InputTokens,
			data.OutputTokens,
			data.LatencyMs,
			data.Success,
			data.ErrorMessage,
			data.RequestBody,
			data.ResponseBody,
		).
		Query()
	if _, err := r.x.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestRecord, error) {
	b := entsql.Dialect(r.dialect)
	sel := b.Select(llmColumns...).
		From(b.Table(tableLLMRequests)).
		OrderBy(entsql.Desc("id"))
	if !opts.From.IsZero() {
		sel = sel.Where(entsql.GTE("timestamp", opts.From.UTC()))
	}
	if !opts.To.IsZero() {
		sel = sel.Where(entsql.LTE("timestamp", opts.To.UTC()))
	}
	if opts.Limit > 0 {
		sel = sel.Limit(opts.Limit)
	}
	query, args := sel.Query()

	var records []LLMRequestRecord
	if err := r.x.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	return records, nil
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int) (*LLMRequestRecord, error) {
	b := entsql.Dialect(r.dialect)
	query, args := b.Select(llmColumns...).
		From(b.Table(tableLLMRequests)).
		Where(entsql.EQ("id", id)).
		Query()

	var rec LLMRequestRecord
	if err := r.x.GetContext(ctx, &rec, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get LLM event: %w", err)
	}
	return &rec, nil
}

func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error) {
	return r.usageBy(ctx, func(rec LLMRequestRecord) string { return rec.Purpose })
}

func (r *eventRepo) LLMUsageByModel(ctx context.Context) ([]LLMUsage, error) {
	return r.usageBy(ctx, func(rec LLMRequestRecord) string { return rec.Model })
}

// usageBy aggregates in Go so the same code serves SQLite and Postgres.
func (r *eventRepo) usageBy(ctx context.Context, key func(LLMRequestRecord) string) ([]LLMUsage, error) {
	records, err := r.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		return nil, err
	}

	byKey := map[string]*LLMUsage{}
	latency := map[string]int64{}
	for _, rec := range records {
		k := key(rec)
		u, ok := byKey[k]
		if !ok {
			u = &LLMUsage{Key: k}
			byKey[k] = u
		}
		u.Calls++
		u.InputTokens += rec.InputTokens
		u.OutputTokens += rec.OutputTokens
		latency[k] += rec.LatencyMs
	}

	out := make([]LLMUsage, 0, len(byKey))
	for k, u := range byKey {
		u.AvgLatencyMs = latency[k] / int64(u.Calls)
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
