package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"gossip-lite/apps/server/internal/ledger"
	"gossip-lite/gossip"
	"gossip-lite/gossip/npc"
	"gossip-lite/internal/logging"
)

type recordingLedger struct {
	mu         sync.Mutex
	statements map[string][]gossip.Statement
	results    []ledger.GameResult
}

func newRecordingLedger() *recordingLedger {
	return &recordingLedger{statements: make(map[string][]gossip.Statement)}
}

func (r *recordingLedger) Close() error { return nil }

func (r *recordingLedger) AppendStatements(_ context.Context, gameID string, statements []gossip.Statement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statements[gameID] = append(r.statements[gameID], statements...)
	return nil
}

func (r *recordingLedger) RecordResult(_ context.Context, result ledger.GameResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
	return nil
}

func (r *recordingLedger) ListRecent(context.Context, int) ([]ledger.HistoryItem, error) {
	return nil, nil
}

func (r *recordingLedger) GetStatements(_ context.Context, gameID string) ([]ledger.StatementItem, error) {
	return nil, nil
}

func (r *recordingLedger) counts(gameID string) (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.statements[gameID]), len(r.results)
}

func fastTiming() Timing {
	d := time.Millisecond
	return Timing{Ring: d, NpcCalls: d, HangUp: d, NpcHangUp: d, NpcTurn: d, Reaction: d, ReactionEasy: d, ReactionMedium: d}
}

func newTestSession(t *testing.T, cfg gossip.Config, timing Timing, led ledger.Service, onFinish FinishHook) *Session {
	t.Helper()
	reg, err := npc.NewDefaultRegistry()
	if err != nil {
		t.Fatalf("NewDefaultRegistry err: %v", err)
	}
	n := cfg.Characters
	if n == 0 {
		n = 4
	}
	cast, err := reg.Cast(n)
	if err != nil {
		t.Fatalf("Cast err: %v", err)
	}
	cfg.Characters = n
	cfg.Cast = npc.Characters(cast)
	if cfg.Seed == 0 {
		cfg.Seed = gossip.DefaultSeed
	}
	s, err := New(Options{
		ID:       "game-1",
		Game:     cfg,
		Cast:     cast,
		Timing:   timing,
		Ledger:   led,
		Logger:   logging.Discard(),
		OnFinish: onFinish,
	})
	if err != nil {
		t.Fatalf("New err: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestSession_TimerAdvancesRinging(t *testing.T) {
	s := newTestSession(t, gossip.Config{}, fastTiming(), newRecordingLedger(), nil)

	frames := make(chan []byte, 256)
	if err := s.Subscribe("c1", func(b []byte) { frames <- b }); err != nil {
		t.Fatalf("Subscribe err: %v", err)
	}
	if len(frames) != 1 {
		t.Fatalf("expected the initial snapshot on subscribe, got %d frames", len(frames))
	}

	if err := s.Command(gossip.Event{Kind: gossip.EventTypeSelect, Arg: 1}); err != nil {
		t.Fatalf("select err: %v", err)
	}
	waitFor(t, "select_predicate", func() bool { return s.Snapshot().Phase == gossip.PhaseTypeSelectPredicate })
	if len(frames) < 3 {
		t.Fatalf("expected frames for the call and the timed resume, got %d", len(frames))
	}
}

func TestSession_RejectedCommandReturnsError(t *testing.T) {
	s := newTestSession(t, gossip.Config{}, fastTiming(), newRecordingLedger(), nil)
	if err := s.Command(gossip.Event{Kind: gossip.EventTypeSelect, Arg: 0}); err == nil {
		t.Fatalf("calling yourself should be rejected")
	}
	if err := s.Command(gossip.Event{Kind: gossip.EventTypeResume}); err == nil {
		t.Fatalf("resume from select_callee should be rejected")
	}
}

func TestSession_StaleResumeIsDropped(t *testing.T) {
	timing := fastTiming()
	timing.Ring = time.Hour
	s := newTestSession(t, gossip.Config{}, timing, newRecordingLedger(), nil)

	if err := s.Command(gossip.Event{Kind: gossip.EventTypeSelect, Arg: 1}); err != nil {
		t.Fatalf("select err: %v", err)
	}
	if err := s.SubmitEvent(Event{Type: EventResume, Generation: 0}); err != nil {
		t.Fatalf("stale resume err: %v", err)
	}
	if got := s.Snapshot().Phase; got != gossip.PhaseTypeRinging {
		t.Fatalf("stale resume advanced the game to %s", got)
	}

	s.mu.RLock()
	gen := s.generation
	s.mu.RUnlock()
	if err := s.SubmitEvent(Event{Type: EventResume, Generation: gen}); err != nil {
		t.Fatalf("current resume err: %v", err)
	}
	if got := s.Snapshot().Phase; got != gossip.PhaseTypeSelectPredicate {
		t.Fatalf("expected select_predicate, got %s", got)
	}
}

func TestSession_AutopilotPlaysToGameOver(t *testing.T) {
	led := newRecordingLedger()
	finished := make(chan gossip.Snapshot, 1)
	s := newTestSession(t, gossip.Config{Characters: 3, MaxTurns: 1}, fastTiming(), led,
		func(_ string, snap gossip.Snapshot, _ *npc.Narrator) { finished <- snap })

	ap := npc.NewRuleAutopilot(npc.PlayStyle{Flattery: 0.5}, 1)
	deadline := time.Now().Add(10 * time.Second)
	for {
		snap := s.Snapshot()
		if snap.Ended {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("game did not finish, stuck in %s", snap.Phase)
		}
		if snap.AwaitingResume {
			time.Sleep(time.Millisecond)
			continue
		}
		d := ap.Decide(npc.BuildView(snap))
		if d.Done {
			break
		}
		if err := s.Command(d.Event); err != nil {
			t.Fatalf("%s in %s: %v", d.Event.Kind, snap.Phase, err)
		}
	}

	var final gossip.Snapshot
	select {
	case final = <-finished:
	case <-time.After(5 * time.Second):
		t.Fatalf("finish hook not called")
	}
	stored, results := led.counts("game-1")
	if results != 1 {
		t.Fatalf("expected one recorded result, got %d", results)
	}
	if stored != final.Statements || stored == 0 {
		t.Fatalf("ledger has %d statements, game has %d", stored, final.Statements)
	}
}

func TestSession_CloseRejectsFurtherEvents(t *testing.T) {
	s := newTestSession(t, gossip.Config{}, fastTiming(), newRecordingLedger(), nil)
	s.Close()
	if !s.IsClosed() || !s.IsIdleFor(time.Hour) {
		t.Fatalf("closed session should report closed and idle")
	}
	if err := s.Command(gossip.Event{Kind: gossip.EventTypeSelect, Arg: 1}); err != ErrSessionClosed {
		t.Fatalf("expected ErrSessionClosed, got %v", err)
	}
	if err := s.Subscribe("c1", func([]byte) {}); err != ErrSessionClosed {
		t.Fatalf("expected ErrSessionClosed on subscribe, got %v", err)
	}
}

func TestSession_IdleTracking(t *testing.T) {
	s := newTestSession(t, gossip.Config{}, fastTiming(), newRecordingLedger(), nil)
	if err := s.Subscribe("c1", func([]byte) {}); err != nil {
		t.Fatalf("Subscribe err: %v", err)
	}
	if s.IsIdleFor(0) {
		t.Fatalf("a watched session is never idle")
	}
	s.Unsubscribe("c1")
	if !s.IsIdleFor(0) {
		t.Fatalf("an unwatched session is idle after ttl 0")
	}
	if err := s.SendSnapshot("c1"); err == nil {
		t.Fatalf("SendSnapshot to an unsubscribed id should fail")
	}
}

func TestTiming_Delay(t *testing.T) {
	tm := DefaultTiming()
	cases := []struct {
		phase gossip.Phase
		diff  gossip.Difficulty
		want  time.Duration
	}{
		{gossip.PhaseTypeRinging, gossip.DifficultyEasy, 3300 * time.Millisecond},
		{gossip.PhaseTypeNpcCalls, gossip.DifficultyHard, 4000 * time.Millisecond},
		{gossip.PhaseTypeHangUp, gossip.DifficultyHard, time.Second},
		{gossip.PhaseTypeNpcHangUp, gossip.DifficultyHard, 2 * time.Second},
		{gossip.PhaseTypeReactAnim1, gossip.DifficultyEasy, 4 * time.Second},
		{gossip.PhaseTypeReactAnim2, gossip.DifficultyMedium, 3 * time.Second},
		{gossip.PhaseTypeReactAnim4, gossip.DifficultyHard, 2 * time.Second},
		{gossip.PhaseTypeNpcTurn, gossip.DifficultyHard, 500 * time.Millisecond},
		{gossip.PhaseTypeSelectCallee, gossip.DifficultyHard, 0},
	}
	for _, tc := range cases {
		if got := tm.Delay(tc.phase, tc.diff); got != tc.want {
			t.Fatalf("Delay(%s, %d) = %s, want %s", tc.phase, tc.diff, got, tc.want)
		}
	}
}
