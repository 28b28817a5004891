package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/abhisek/secprep/internal/exam"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
		{"busy_timeout", "5000"},
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestWithPragmas(t *testing.T) {
	got := withPragmas("file:x.db?mode=rwc")
	want := "file:x.db?mode=rwc&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=synchronous(NORMAL)"
	if got != want {
		t.Errorf("withPragmas = %q, want %q", got, want)
	}
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	for _, table := range Tables {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table.Name,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s: %v", table.Name, err)
		}
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.EventRepo().AppendSessionEvent(ctx, SessionEventData{SessionID: "a", TestType: "x", Action: ActionStart}); err != nil {
		t.Fatalf("append: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	if err := s.EventRepo().AppendSessionEvent(ctx, SessionEventData{SessionID: "a", TestType: "x", Action: ActionSubmit}); err != nil {
		t.Fatalf("append after reopen: %v", err)
	}
	events, err := s.EventRepo().QuerySessionEvents(ctx, "a")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 2 || events[0].Sequence != 1 || events[1].Sequence != 2 {
		t.Errorf("events = %+v, want sequences 1 and 2", events)
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var seqs []int64
	for i := 0; i < 5; i++ {
		seq, err := s.seq.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		seqs = append(seqs, seq)
	}

	for i, seq := range seqs {
		expected := int64(i + 1)
		if seq != expected {
			t.Errorf("seq[%d] = %d, want %d", i, seq, expected)
		}
	}
}

func TestEventsShareSequence(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	if err := repo.AppendSessionEvent(ctx, SessionEventData{SessionID: "s1", TestType: "cybersecurity", Action: ActionStart, Total: 3}); err != nil {
		t.Fatal(err)
	}
	if err := repo.AppendAnswerEvent(ctx, AnswerEventData{SessionID: "s1", TestType: "cybersecurity", QuestionID: 4, Option: 1, Correct: true}); err != nil {
		t.Fatal(err)
	}
	if err := repo.AppendSessionEvent(ctx, SessionEventData{SessionID: "s1", TestType: "cybersecurity", Action: ActionSubmit, Score: 2, Total: 3}); err != nil {
		t.Fatal(err)
	}

	events, err := repo.QuerySessionEvents(ctx, "s1")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d session events, want 2", len(events))
	}
	if events[0].Sequence != 1 || events[1].Sequence != 3 {
		t.Errorf("sequences = %d, %d; want 1, 3", events[0].Sequence, events[1].Sequence)
	}
	if events[1].Action != ActionSubmit || events[1].Score != 2 {
		t.Errorf("unexpected event: %+v", events[1])
	}
	if time.Since(events[0].Timestamp) > time.Minute {
		t.Errorf("timestamp not set: %v", events[0].Timestamp)
	}
}

func TestQueryResults(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for i, tt := range []string{"cybersecurity", "it-fundamentals", "cybersecurity"} {
		err := repo.AppendResultEvent(ctx, ResultEventData{
			SessionID: "s", TestType: tt, Name: "Ada", Email: "ada@example.com",
			Score: i, Total: 10, TimeTaken: 100 + i, Reporter: "local", Success: true,
		})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	all, err := repo.QueryResults(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 3 || all[0].Score != 2 {
		t.Fatalf("want 3 results newest first, got %+v", all)
	}

	cyber, err := repo.QueryResults(ctx, QueryOpts{TestType: "cybersecurity", Limit: 1})
	if err != nil {
		t.Fatalf("query filtered: %v", err)
	}
	if len(cyber) != 1 || cyber[0].Score != 2 || cyber[0].TimeTaken != 102 || !cyber[0].Success {
		t.Errorf("filtered = %+v", cyber)
	}
}

func TestQueryLLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	err := repo.AppendLLMRequest(ctx, LLMRequestEventData{
		Provider: "mock", Model: "m1", Purpose: "bank-draft",
		InputTokens: 10, OutputTokens: 20, LatencyMs: 5, Success: false, ErrorMessage: "boom",
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	events, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 10})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events", len(events))
	}
	e := events[0]
	if e.Purpose != "bank-draft" || e.OutputTokens != 20 || e.Success || e.ErrorMessage != "boom" {
		t.Errorf("unexpected event: %+v", e)
	}
}

func TestBestScores(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	add := func(tt, action string, score, total int) {
		t.Helper()
		if err := repo.AppendSessionEvent(ctx, SessionEventData{SessionID: "s", TestType: tt, Action: action, Score: score, Total: total}); err != nil {
			t.Fatal(err)
		}
	}
	add("cybersecurity", ActionStart, 0, 12)
	add("cybersecurity", ActionSubmit, 6, 12)
	add("cybersecurity", ActionExpire, 9, 12)
	add("cybersecurity", ActionSubmit, 7, 12)
	add("it-fundamentals", ActionAbandon, 12, 12)

	best, err := repo.BestScores(ctx)
	if err != nil {
		t.Fatalf("best scores: %v", err)
	}
	if _, ok := best["it-fundamentals"]; ok {
		t.Error("abandoned attempts must not count")
	}
	b := best["cybersecurity"]
	if b.Score != 9 || b.Attempts != 3 || b.Percentage() != 75 {
		t.Errorf("best = %+v (pct %d), want score 9 of 3 attempts, 75%%", b, b.Percentage())
	}
}

func testSnapshot(testType string, current int) *Snapshot {
	return &Snapshot{
		TestType:  testType,
		SessionID: "session-" + testType,
		Sequence:  int64(current),
		Data: SnapshotData{
			Version: SnapshotVersion,
			Session: exam.State{
				TestType:  testType,
				Budget:    60,
				Current:   current,
				Answers:   []int{1, exam.Unanswered, 0},
				Remaining: 30,
				Attempt:   1,
			},
		},
	}
}

func TestSnapshotSaveAndLatest(t *testing.T) {
	s := openTestStore(t)
	repo := s.SnapshotRepo()
	ctx := context.Background()

	snap, err := repo.Latest(ctx, "cybersecurity")
	if err != nil {
		t.Fatalf("latest (empty): %v", err)
	}
	if snap != nil {
		t.Fatal("expected nil snapshot when none exist")
	}

	if err := repo.Save(ctx, testSnapshot("cybersecurity", 1)); err != nil {
		t.Fatalf("save: %v", err)
	}

	snap, err = repo.Latest(ctx, "cybersecurity")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if snap == nil {
		t.Fatal("expected non-nil snapshot")
	}
	if snap.Data.Version != SnapshotVersion {
		t.Errorf("data.version = %d, want %d", snap.Data.Version, SnapshotVersion)
	}
	st := snap.Data.Session
	if st.Current != 1 || st.Remaining != 30 || len(st.Answers) != 3 || st.Answers[1] != exam.Unanswered {
		t.Errorf("session state = %+v", st)
	}
}

func TestSnapshotSaveReplaces(t *testing.T) {
	s := openTestStore(t)
	repo := s.SnapshotRepo()
	ctx := context.Background()

	if err := repo.Save(ctx, testSnapshot("cybersecurity", 0)); err != nil {
		t.Fatal(err)
	}
	if err := repo.Save(ctx, testSnapshot("cybersecurity", 2)); err != nil {
		t.Fatal(err)
	}
	if err := repo.Save(ctx, testSnapshot("it-fundamentals", 1)); err != nil {
		t.Fatal(err)
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d snapshots, want 2", len(all))
	}

	snap, err := repo.Latest(ctx, "cybersecurity")
	if err != nil {
		t.Fatal(err)
	}
	if snap.Data.Session.Current != 2 {
		t.Errorf("current = %d, want 2", snap.Data.Session.Current)
	}

	if err := repo.Delete(ctx, "cybersecurity"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, "cybersecurity"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	snap, err = repo.Latest(ctx, "cybersecurity")
	if err != nil || snap != nil {
		t.Errorf("after delete: snap=%v err=%v", snap, err)
	}
}

func TestReset(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	events := s.EventRepo()

	if err := events.AppendResultEvent(ctx, ResultEventData{TestType: "x", Total: 1}); err != nil {
		t.Fatal(err)
	}
	if err := s.SnapshotRepo().Save(ctx, testSnapshot("x", 0)); err != nil {
		t.Fatal(err)
	}

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}

	results, err := events.QueryResults(ctx, QueryOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("results after reset = %d", len(results))
	}
	if snaps, _ := s.SnapshotRepo().List(ctx); len(snaps) != 0 {
		t.Errorf("snapshots after reset = %d", len(snaps))
	}
	seq, err := s.seq.Next(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if seq != 1 {
		t.Errorf("sequence after reset = %d, want 1", seq)
	}
}
