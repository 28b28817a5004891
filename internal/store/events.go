package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// eventRepo implements EventRepo on top of the shared sequence counter.
type eventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

// insert assigns the next sequence number and the current time, then
// inserts the row into table.
func (r *eventRepo) insert(ctx context.Context, table string, columns []string, values []any) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}
	query, args := builder().Insert(table).
		Columns(append([]string{"sequence", "timestamp"}, columns...)...).
		Values(append([]any{seqNum, time.Now().UnixMilli()}, values...)...).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	err := r.insert(ctx, SessionEventsTable.Name,
		[]string{"session_id", "test_type", "action", "attempt", "answered", "score", "total", "remaining_secs"},
		[]any{data.SessionID, data.TestType, data.Action, data.Attempt, data.Answered, data.Score, data.Total, data.RemainingSecs},
	)
	if err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendAnswerEvent(ctx context.Context, data AnswerEventData) error {
	err := r.insert(ctx, AnswerEventsTable.Name,
		[]string{"session_id", "test_type", "question_id", "question_index", "selected_option", "correct"},
		[]any{data.SessionID, data.TestType, data.QuestionID, data.QuestionIndex, data.Option, data.Correct},
	)
	if err != nil {
		return fmt.Errorf("save answer event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendResultEvent(ctx context.Context, data ResultEventData) error {
	err := r.insert(ctx, ResultEventsTable.Name,
		[]string{"session_id", "test_type", "name", "email", "score", "total", "time_taken", "reporter", "success", "message"},
		[]any{data.SessionID, data.TestType, data.Name, data.Email, data.Score, data.Total, data.TimeTaken, data.Reporter, data.Success, data.Message},
	)
	if err != nil {
		return fmt.Errorf("save result event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	err := r.insert(ctx, LlmRequestEventsTable.Name,
		[]string{"provider", "model", "purpose", "input_tokens", "output_tokens", "latency_ms", "success", "error_message"},
		[]any{data.Provider, data.Model, data.Purpose, data.InputTokens, data.OutputTokens, data.LatencyMs, data.Success, data.ErrorMessage},
	)
	if err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func (r *eventRepo) QuerySessionEvents(ctx context.Context, sessionID string) ([]SessionEvent, error) {
	query, args := builder().
		Select("sequence", "timestamp", "session_id", "test_type", "action", "attempt", "answered", "score", "total", "remaining_secs").
		From(entsql.Table(SessionEventsTable.Name)).
		Where(entsql.EQ("session_id", sessionID)).
		OrderBy("sequence").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query session events: %w", err)
	}
	defer rows.Close()

	var out []SessionEvent
	for rows.Next() {
		var e SessionEvent
		var ts int64
		if err := rows.Scan(&e.Sequence, &ts, &e.SessionID, &e.TestType, &e.Action,
			&e.Attempt, &e.Answered, &e.Score, &e.Total, &e.RemainingSecs); err != nil {
			return nil, fmt.Errorf("scan session event: %w", err)
		}
		e.Timestamp = time.UnixMilli(ts)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *eventRepo) QueryResults(ctx context.Context, opts QueryOpts) ([]ResultEvent, error) {
	sel := builder().
		Select("sequence", "timestamp", "session_id", "test_type", "name", "email", "score", "total", "time_taken", "reporter", "success", "message").
		From(entsql.Table(ResultEventsTable.Name))
	applyOpts(sel, opts)

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var out []ResultEvent
	for rows.Next() {
		var e ResultEvent
		var ts int64
		if err := rows.Scan(&e.Sequence, &ts, &e.SessionID, &e.TestType, &e.Name, &e.Email,
			&e.Score, &e.Total, &e.TimeTaken, &e.Reporter, &e.Success, &e.Message); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		e.Timestamp = time.UnixMilli(ts)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error) {
	sel := builder().
		Select("sequence", "timestamp", "provider", "model", "purpose", "input_tokens", "output_tokens", "latency_ms", "success", "error_message").
		From(entsql.Table(LlmRequestEventsTable.Name))
	opts.TestType = ""
	applyOpts(sel, opts)

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	defer rows.Close()

	var out []LLMRequestEvent
	for rows.Next() {
		var e LLMRequestEvent
		var ts int64
		if err := rows.Scan(&e.Sequence, &ts, &e.Provider, &e.Model, &e.Purpose,
			&e.InputTokens, &e.OutputTokens, &e.LatencyMs, &e.Success, &e.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scan LLM event: %w", err)
		}
		e.Timestamp = time.UnixMilli(ts)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *eventRepo) BestScores(ctx context.Context) (map[string]BestScore, error) {
	query, args := builder().
		Select("test_type", "score", "total", "timestamp").
		From(entsql.Table(SessionEventsTable.Name)).
		Where(entsql.And(
			entsql.In("action", ActionSubmit, ActionExpire),
			entsql.GT("total", 0),
		)).
		OrderBy("sequence").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query best scores: %w", err)
	}
	defer rows.Close()

	best := make(map[string]BestScore)
	for rows.Next() {
		var c BestScore
		var ts int64
		if err := rows.Scan(&c.TestType, &c.Score, &c.Total, &ts); err != nil {
			return nil, fmt.Errorf("scan best score: %w", err)
		}
		c.At = time.UnixMilli(ts)

		cur, ok := best[c.TestType]
		c.Attempts = cur.Attempts + 1
		if !ok || c.Score*cur.Total > cur.Score*c.Total {
			best[c.TestType] = c
			continue
		}
		cur.Attempts = c.Attempts
		best[c.TestType] = cur
	}
	return best, rows.Err()
}

// applyOpts adds the QueryOpts filters and newest-first ordering.
func applyOpts(sel *entsql.Selector, opts QueryOpts) {
	var preds []*entsql.Predicate
	if opts.TestType != "" {
		preds = append(preds, entsql.EQ("test_type", opts.TestType))
	}
	if opts.After > 0 {
		preds = append(preds, entsql.GT("sequence", opts.After))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	sel.OrderBy(entsql.Desc("sequence"))
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
}
