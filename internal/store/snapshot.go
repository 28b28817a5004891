package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// snapshotRepo implements SnapshotRepo. Rows are keyed by test type.
type snapshotRepo struct {
	db *sql.DB
}

var snapshotColumns = []string{"test_type", "session_id", "sequence", "timestamp", "data"}

func (r *snapshotRepo) Save(ctx context.Context, snap *Snapshot) error {
	data, err := json.Marshal(snap.Data)
	if err != nil {
		return fmt.Errorf("marshal snapshot data: %w", err)
	}
	ts := snap.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	query, args := builder().Insert(SnapshotsTable.Name).
		Columns(snapshotColumns...).
		Values(snap.TestType, snap.SessionID, snap.Sequence, ts.UnixMilli(), string(data)).
		OnConflict(entsql.ConflictColumns("test_type"), entsql.ResolveWithNewValues()).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (r *snapshotRepo) Latest(ctx context.Context, testType string) (*Snapshot, error) {
	query, args := builder().Select(snapshotColumns...).
		From(entsql.Table(SnapshotsTable.Name)).
		Where(entsql.EQ("test_type", testType)).
		Limit(1).
		Query()

	snap, err := scanSnapshot(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest snapshot: %w", err)
	}
	return snap, nil
}

func (r *snapshotRepo) List(ctx context.Context) ([]*Snapshot, error) {
	query, args := builder().Select(snapshotColumns...).
		From(entsql.Table(SnapshotsTable.Name)).
		OrderBy(entsql.Desc("timestamp")).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var out []*Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

func (r *snapshotRepo) Delete(ctx context.Context, testType string) error {
	query, args := builder().Delete(SnapshotsTable.Name).
		Where(entsql.EQ("test_type", testType)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (*Snapshot, error) {
	var (
		snap Snapshot
		ts   int64
		raw  []byte
	)
	if err := row.Scan(&snap.TestType, &snap.SessionID, &snap.Sequence, &ts, &raw); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &snap.Data); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot data: %w", err)
	}
	snap.Timestamp = time.UnixMilli(ts)
	return &snap, nil
}
