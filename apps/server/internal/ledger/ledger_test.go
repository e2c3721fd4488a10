package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"gossip-lite/gossip"
)

func newTestSQLite(t *testing.T) *SQLiteService {
	t.Helper()
	svc, err := NewSQLiteService(":memory:", 50)
	if err != nil {
		t.Fatalf("NewSQLiteService err: %v", err)
	}
	t.Cleanup(func() { svc.Close() })
	return svc
}

func TestRebindNumbered(t *testing.T) {
	got := rebindNumbered(`INSERT INTO t (a, b) VALUES (?, ?) -- ?`)
	want := `INSERT INTO t (a, b) VALUES ($1, $2) -- $3`
	if got != want {
		t.Fatalf("rebind = %q, want %q", got, want)
	}
}

func TestSQLite_AppendAndGetStatements(t *testing.T) {
	svc := newTestSQLite(t)
	ctx := context.Background()

	batch := []gossip.Statement{
		{Seq: 0, Turn: 0, Speaker: 0, Listener: 1, Source: 0, Predicate: 2, Level: 7},
		{Seq: 1, Turn: 0, Speaker: 1, Listener: 0, Source: 2, Predicate: 0, Level: 3},
	}
	if err := svc.AppendStatements(ctx, "g1", batch); err != nil {
		t.Fatalf("AppendStatements err: %v", err)
	}
	// re-sending an already stored seq is ignored
	if err := svc.AppendStatements(ctx, "g1", batch[1:]); err != nil {
		t.Fatalf("AppendStatements (dup) err: %v", err)
	}

	got, err := svc.GetStatements(ctx, "g1")
	if err != nil {
		t.Fatalf("GetStatements err: %v", err)
	}
	want := []StatementItem{
		{Seq: 0, Speaker: 0, Listener: 1, Source: 0, Predicate: 2, Level: 7, Direct: true},
		{Seq: 1, Speaker: 1, Listener: 0, Source: 2, Predicate: 0, Level: 3, Direct: false},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("statements mismatch (-want +got):\n%s", diff)
	}
}

func TestSQLite_GetStatementsUnknownGame(t *testing.T) {
	svc := newTestSQLite(t)
	if _, err := svc.GetStatements(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLite_RecordResultAndListRecent(t *testing.T) {
	svc := newTestSQLite(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	met := true

	older := GameResult{GameID: "old", PlayedAt: base, Characters: 4, Turns: 3, PlayerRank: 2,
		Ranking: []RankItem{{Character: 1, Name: "Owen", Delta: 0.2, Level: 5}, {Character: 0, Name: "Bara", Delta: 0.1, Level: 4}}}
	newer := GameResult{GameID: "new", ScenarioID: "first_week", PlayedAt: base.Add(time.Hour), Characters: 4, Turns: 3, PlayerRank: 1, Objective: &met,
		Ranking: []RankItem{{Character: 0, Name: "Bara", Delta: 0.4, Level: 6}}}
	for _, r := range []GameResult{older, newer} {
		if err := svc.RecordResult(ctx, r); err != nil {
			t.Fatalf("RecordResult %s err: %v", r.GameID, err)
		}
	}
	if err := svc.AppendStatements(ctx, "new", []gossip.Statement{{Seq: 0, Speaker: 0, Source: 0, Listener: 1, Predicate: 2, Level: 4}}); err != nil {
		t.Fatalf("AppendStatements err: %v", err)
	}

	items, err := svc.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecent err: %v", err)
	}
	want := []HistoryItem{
		{GameResult: newer, Statements: 1},
		{GameResult: older, Statements: 0},
	}
	if diff := cmp.Diff(want, items); diff != "" {
		t.Fatalf("history mismatch (-want +got):\n%s", diff)
	}

	// a finished game with no statements is found but empty
	got, err := svc.GetStatements(ctx, "old")
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty statements for old, got %v err=%v", got, err)
	}
}

func TestResultFromSnapshot(t *testing.T) {
	snap := gossip.Snapshot{
		Turn:       3,
		Player:     0,
		Characters: make([]gossip.CharacterSnapshot, 3),
		Ranking: []gossip.RankEntry{
			{Character: 2, Name: "Max", Delta: 0.3, Level: 6},
			{Character: 0, Name: "Bara", Delta: 0.1, Level: 5},
			{Character: 1, Name: "Owen", Delta: -0.2, Level: 3},
		},
	}
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	res := ResultFromSnapshot("g", snap, gossip.DifficultyHard, at)
	if res.PlayerRank != 2 || res.Difficulty != 2 || res.Characters != 3 || len(res.Ranking) != 3 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestNoopService(t *testing.T) {
	var svc Service = noopService{}
	if _, err := svc.GetStatements(context.Background(), "g"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("noop GetStatements should report not found, got %v", err)
	}
	items, err := svc.ListRecent(context.Background(), 5)
	if err != nil || len(items) != 0 {
		t.Fatalf("noop ListRecent = %v, %v", items, err)
	}
}
