package store

import (
	"context"
	"time"
)

// QueryOpts configures attempt queries with filtering and pagination.
type QueryOpts struct {
	Limit int       // max results (0 = unlimited)
	From  time.Time // timestamp >= From
	To    time.Time // timestamp <= To

	// OnlyIncorrect restricts results to failed attempts.
	OnlyIncorrect bool
}

// AttemptData is one submitted answer. The retry flag of the served problem
// is deliberately absent: attempts log what was asked, not why.
type AttemptData struct {
	UserID      string
	Operand1    int
	Operand2    int
	Operator    string
	Answer      int
	DisplayText string
	Theme       string
	Correct     bool
}

// AttemptRecord is a stored attempt with its server-assigned id and time.
type AttemptRecord struct {
	ID          int64     `db:"id"`
	UserID      string    `db:"user_id"`
	Operand1    int       `db:"operand1"`
	Operand2    int       `db:"operand2"`
	Operator    string    `db:"operator"`
	Answer      int       `db:"answer"`
	DisplayText string    `db:"display_text"`
	Theme       string    `db:"theme"`
	Correct     bool      `db:"correct"`
	Timestamp   time.Time `db:"timestamp"`
}

// OperatorStats aggregates attempts for one operator.
type OperatorStats struct {
	Operator string
	Total    int
	Correct  int
}

// Accuracy returns the share of correct attempts in [0,1].
func (s OperatorStats) Accuracy() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Total)
}

// AttemptStats aggregates a user's attempt log.
type AttemptStats struct {
	Total      int
	Correct    int
	ByOperator []OperatorStats
	First      time.Time
	Last       time.Time
}

// AttemptRepo is the append-only log of answers.
type AttemptRepo interface {
	// Append records an attempt. The timestamp is assigned by the store.
	Append(ctx context.Context, data AttemptData) error

	// RecentIncorrect returns up to limit failed attempts, newest first.
	RecentIncorrect(ctx context.Context, userID string, limit int) ([]AttemptRecord, error)

	// HasLaterCorrect reports whether a correct attempt with the same display
	// text exists strictly after the given time.
	HasLaterCorrect(ctx context.Context, userID, displayText string, after time.Time) (bool, error)

	// Query lists attempts newest first.
	Query(ctx context.Context, userID string, opts QueryOpts) ([]AttemptRecord, error)

	// Stats aggregates all attempts of a user.
	Stats(ctx context.Context, userID string) (*AttemptStats, error)

	// DeleteUser removes every attempt of a user.
	DeleteUser(ctx context.Context, userID string) error
}

// Profile holds a user's prizes and points.
type Profile struct {
	UserID      string    `db:"user_id"`
	PrizeLevel1 string    `db:"prize_level1"`
	PrizeLevel2 string    `db:"prize_level2"`
	PrizeLevel3 string    `db:"prize_level3"`
	PointsToday int       `db:"points_today"`
	PointsDay   string    `db:"points_day"`
	TotalPoints int       `db:"total_points"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// PrizeNames holds the three prize names in milestone order.
type PrizeNames struct {
	Level1 string
	Level2 string
	Level3 string
}

// ProfileRepo manages rewards profiles.
type ProfileRepo interface {
	// Get returns the profile, or nil if the user has none yet.
	Get(ctx context.Context, userID string) (*Profile, error)

	// SaveRewards stores the prize names, creating the profile if needed.
	SaveRewards(ctx context.Context, userID string, prizes PrizeNames) error

	// AddPoints adds delta to the day's and the lifetime counters inside a
	// single transaction. When day differs from the stored day the daily
	// counter restarts from zero. Returns the updated profile.
	AddPoints(ctx context.Context, userID string, delta int, day string) (*Profile, error)

	// ResetDaily zeroes the daily counter of every profile not already on day.
	ResetDaily(ctx context.Context, day string) (int64, error)

	// DeleteUser removes the profile.
	DeleteUser(ctx context.Context, userID string) error
}

// ProblemState is a serialized problem in a snapshot.
type ProblemState struct {
	Operand1 int    `json:"operand1"`
	Operand2 int    `json:"operand2"`
	Operator string `json:"operator"`
}

// SnapshotData captures the player state needed to resume play.
type SnapshotData struct {
	Version     int           `json:"version"`
	Level       int           `json:"level"`
	LastProblem *ProblemState `json:"last_problem,omitempty"`
}

// Snapshot represents a point-in-time capture of player state.
type Snapshot struct {
	ID        int
	UserID    string
	Timestamp time.Time
	Data      SnapshotData
}

// SnapshotRepo manages player state snapshots.
type SnapshotRepo interface {
	// Save stores a new snapshot.
	Save(ctx context.Context, snap *Snapshot) error

	// Latest returns the most recent snapshot of a user, or nil if none exist.
	Latest(ctx context.Context, userID string) (*Snapshot, error)

	// Prune deletes all but the N most recent snapshots of every user.
	Prune(ctx context.Context, keep int) error

	// DeleteUser removes all snapshots of a user.
	DeleteUser(ctx context.Context, userID string) error
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestRecord is a stored LLM request event.
type LLMRequestRecord struct {
	ID           int       `db:"id"`
	Timestamp    time.Time `db:"timestamp"`
	Provider     string    `db:"provider"`
	Model        string    `db:"model"`
	Purpose      string    `db:"purpose"`
	InputTokens  int       `db:"input_tokens"`
	OutputTokens int       `db:"output_tokens"`
	LatencyMs    int64     `db:"latency_ms"`
	Success      bool      `db:"success"`
	ErrorMessage string    `db:"error_message"`
	RequestBody  string    `db:"request_body"`
	ResponseBody string    `db:"response_body"`
}

// LLMUsage aggregates token usage for a purpose or model.
type LLMUsage struct {
	Key          string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo provides access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents lists LLM events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestRecord, error)

	// GetLLMEvent returns one event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestRecord, error)

	// LLMUsageByPurpose aggregates usage per purpose label.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)

	// LLMUsageByModel aggregates usage per model.
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)
}
