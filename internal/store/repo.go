package store

import (
	"context"
	"math"
	"time"

	"github.com/abhisek/secprep/internal/exam"
)

// Session lifecycle actions recorded in session_events.
const (
	ActionStart   = "start"
	ActionResume  = "resume"
	ActionRestart = "restart"
	ActionSubmit  = "submit"
	ActionExpire  = "expire"
	ActionAbandon = "abandon"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit    int    // max results (0 = unlimited)
	TestType string // exact match ("" = any)
	After    int64  // sequence > After
}

// SessionEventData captures one session lifecycle transition.
type SessionEventData struct {
	SessionID     string
	TestType      string
	Action        string
	Attempt       int
	Answered      int
	Score         int
	Total         int
	RemainingSecs int
}

// AnswerEventData captures one answer selection.
type AnswerEventData struct {
	SessionID     string
	TestType      string
	QuestionID    int
	QuestionIndex int
	Option        int
	Correct       bool
}

// ResultEventData captures one delivery attempt of a result.
type ResultEventData struct {
	SessionID string
	TestType  string
	Name      string
	Email     string
	Score     int
	Total     int
	TimeTaken int
	Reporter  string
	Success   bool
	Message   string
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
}

// SessionEvent is a stored session lifecycle event.
type SessionEvent struct {
	Sequence  int64
	Timestamp time.Time
	SessionEventData
}

// ResultEvent is a stored result delivery.
type ResultEvent struct {
	Sequence  int64
	Timestamp time.Time
	ResultEventData
}

// LLMRequestEvent is a stored LLM call.
type LLMRequestEvent struct {
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// BestScore is the highest-percentage finished attempt for a test type.
type BestScore struct {
	TestType string
	Score    int
	Total    int
	Attempts int
	At       time.Time
}

// Percentage returns round(100 * score / total).
func (b BestScore) Percentage() int {
	if b.Total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(b.Score) / float64(b.Total)))
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	AppendSessionEvent(ctx context.Context, data SessionEventData) error
	AppendAnswerEvent(ctx context.Context, data AnswerEventData) error
	AppendResultEvent(ctx context.Context, data ResultEventData) error

	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QuerySessionEvents returns events for one session in sequence order.
	QuerySessionEvents(ctx context.Context, sessionID string) ([]SessionEvent, error)

	// QueryResults returns result deliveries, newest first.
	QueryResults(ctx context.Context, opts QueryOpts) ([]ResultEvent, error)

	// QueryLLMEvents returns LLM calls, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// BestScores returns the best finished attempt per test type.
	BestScores(ctx context.Context) (map[string]BestScore, error)
}

// SnapshotData is the persisted form of an in-progress attempt.
type SnapshotData struct {
	Version int        `json:"version"`
	Session exam.State `json:"session"`
}

// SnapshotVersion is the current SnapshotData layout.
const SnapshotVersion = 1

// Snapshot is the saved progress of one test type. There is at most one
// per test type; saving again replaces it.
type Snapshot struct {
	TestType  string
	SessionID string
	Sequence  int64
	Timestamp time.Time
	Data      SnapshotData
}

// SnapshotRepo manages resumable attempts.
type SnapshotRepo interface {
	// Save stores snap, replacing any snapshot for the same test type.
	Save(ctx context.Context, snap *Snapshot) error

	// Latest returns the snapshot for testType, or nil if none exists.
	Latest(ctx context.Context, testType string) (*Snapshot, error)

	// List returns all snapshots, newest first.
	List(ctx context.Context) ([]*Snapshot, error)

	// Delete removes the snapshot for testType. Missing is not an error.
	Delete(ctx context.Context, testType string) error
}
