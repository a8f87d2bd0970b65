package store

import (
	"context"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	tableAttempts    = "attempts"
	tableProfiles    = "profiles"
	tableSnapshots   = "snapshots"
	tableLLMRequests = "llm_requests"
)

// attemptsTable is the append-only attempt log. One row per submitted answer.
func attemptsTable() *schema.Table {
	id := &schema.Column{Name: "id", Type: field.TypeInt, Increment: true}
	return schema.NewTable(tableAttempts).
		AddPrimary(id).
		AddColumn(&schema.Column{Name: "user_id", Type: field.TypeString, Size: 128}).
		AddColumn(&schema.Column{Name: "operand1", Type: field.TypeInt}).
		AddColumn(&schema.Column{Name: "operand2", Type: field.TypeInt}).
		AddColumn(&schema.Column{Name: "operator", Type: field.TypeString, Size: 8}).
		AddColumn(&schema.Column{Name: "answer", Type: field.TypeInt}).
		AddColumn(&schema.Column{Name: "display_text", Type: field.TypeString, Size: 32}).
		AddColumn(&schema.Column{Name: "theme", Type: field.TypeString, Size: 16}).
		AddColumn(&schema.Column{Name: "correct", Type: field.TypeBool}).
		AddColumn(&schema.Column{Name: "timestamp", Type: field.TypeTime}).
		AddIndex("attempt_user_correct_timestamp", false, []string{"user_id", "correct", "timestamp"}).
		AddIndex("attempt_user_text_timestamp", false, []string{"user_id", "display_text", "timestamp"})
}

// profilesTable holds per-user prize names and point counters.
func profilesTable() *schema.Table {
	id := &schema.Column{Name: "id", Type: field.TypeInt, Increment: true}
	return schema.NewTable(tableProfiles).
		AddPrimary(id).
		AddColumn(&schema.Column{Name: "user_id", Type: field.TypeString, Size: 128, Unique: true}).
		AddColumn(&schema.Column{Name: "prize_level1", Type: field.TypeString, Size: 64, Default: ""}).
		AddColumn(&schema.Column{Name: "prize_level2", Type: field.TypeString, Size: 64, Default: ""}).
		AddColumn(&schema.Column{Name: "prize_level3", Type: field.TypeString, Size: 64, Default: ""}).
		AddColumn(&schema.Column{Name: "points_today", Type: field.TypeInt, Default: 0}).
		AddColumn(&schema.Column{Name: "points_day", Type: field.TypeString, Size: 10, Default: ""}).
		AddColumn(&schema.Column{Name: "total_points", Type: field.TypeInt, Default: 0}).
		AddColumn(&schema.Column{Name: "updated_at", Type: field.TypeTime})
}

// snapshotsTable stores serialized player state per user.
func snapshotsTable() *schema.Table {
	id := &schema.Column{Name: "id", Type: field.TypeInt, Increment: true}
	return schema.NewTable(tableSnapshots).
		AddPrimary(id).
		AddColumn(&schema.Column{Name: "user_id", Type: field.TypeString, Size: 128}).
		AddColumn(&schema.Column{Name: "timestamp", Type: field.TypeTime}).
		AddColumn(&schema.Column{Name: "data", Type: field.TypeString, Size: 1 << 16}).
		AddIndex("snapshot_user_timestamp", false, []string{"user_id", "timestamp"})
}

// llmRequestsTable records every LLM call made for trick explanations.
func llmRequestsTable() *schema.Table {
	id := &schema.Column{Name: "id", Type: field.TypeInt, Increment: true}
	return schema.NewTable(tableLLMRequests).
		AddPrimary(id).
		AddColumn(&schema.Column{Name: "timestamp", Type: field.TypeTime}).
		AddColumn(&schema.Column{Name: "provider", Type: field.TypeString, Size: 64}).
		AddColumn(&schema.Column{Name: "model", Type: field.TypeString, Size: 128}).
		AddColumn(&schema.Column{Name: "purpose", Type: field.TypeString, Size: 64}).
		AddColumn(&schema.Column{Name: "input_tokens", Type: field.TypeInt}).
		AddColumn(&schema.Column{Name: "output_tokens", Type: field.TypeInt}).
		AddColumn(&schema.Column{Name: "latency_ms", Type: field.TypeInt64}).
		AddColumn(&schema.Column{Name: "success", Type: field.TypeBool}).
		AddColumn(&schema.Column{Name: "error_message", Type: field.TypeString, Size: 1 << 12, Default: ""}).
		AddColumn(&schema.Column{Name: "request_body", Type: field.TypeString, Size: 1 << 16, Default: ""}).
		AddColumn(&schema.Column{Name: "response_body", Type: field.TypeString, Size: 1 << 16, Default: ""})
}

// migrate creates or upgrades all tables.
func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return err
	}
	return m.Create(ctx, attemptsTable(), profilesTable(), snapshotsTable(), llmRequestsTable())
}
