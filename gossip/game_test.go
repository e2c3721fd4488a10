package gossip

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"gossip-lite/bounded"
)

func newTestGame(t *testing.T, cfg Config) *Game {
	t.Helper()
	if cfg.Seed == 0 {
		cfg.Seed = DefaultSeed
	}
	g, err := NewGame(cfg)
	if err != nil {
		t.Fatalf("NewGame err: %v", err)
	}
	return g
}

// step plays one move the way a patient player would: accept pending
// values, let animations finish, call the first free character.
func step(g *Game) bool {
	snap := g.Snapshot()
	switch {
	case snap.Ended:
		return false
	case snap.AwaitingResume:
		return g.Resume()
	case snap.Phase == PhaseTypeSelectCallee:
		for i := 0; i < len(snap.Characters); i++ {
			if g.SubmitSelection(i) {
				return true
			}
		}
		return false
	case snap.Phase == PhaseTypeSelectPredicate:
		for i := 0; i < len(snap.Characters); i++ {
			if g.SubmitSelection(i) {
				return true
			}
		}
		return false
	default:
		return g.ConfirmEnter()
	}
}

func playToEnd(t *testing.T, g *Game) int {
	t.Helper()
	steps := 0
	for !g.Ended() {
		if !step(g) {
			t.Fatalf("stuck in phase %s", g.Phase())
		}
		steps++
		if steps > 10000 {
			t.Fatalf("game did not finish")
		}
	}
	return steps
}

func TestNewGame_Defaults(t *testing.T) {
	g := newTestGame(t, Config{Characters: 4})
	snap := g.Snapshot()
	if snap.Phase != PhaseTypeSelectCallee {
		t.Fatalf("expected select_callee, got %s", snap.Phase)
	}
	if snap.MaxTurns != 3 {
		t.Fatalf("expected 3*(4-3)=3 turns, got %d", snap.MaxTurns)
	}
	if snap.Caller != 0 || snap.Callee != Nobody || snap.Predicate != Nobody {
		t.Fatalf("unexpected context caller=%d callee=%d predicate=%d", snap.Caller, snap.Callee, snap.Predicate)
	}
	if len(snap.Characters) != 4 || snap.Characters[0].Name != "Bara" {
		t.Fatalf("unexpected cast %+v", snap.Characters)
	}
	for i, pop := range snap.Popularity {
		if len(pop) != 1 {
			t.Fatalf("character %d: expected popularity for turn 0 only, got %d", i, len(pop))
		}
	}

	three := newTestGame(t, Config{Characters: 3})
	if three.Config().MaxTurns != 1 {
		t.Fatalf("expected at least one turn with three characters, got %d", three.Config().MaxTurns)
	}
}

func TestNewGame_RejectsInvalidConfig(t *testing.T) {
	cases := []Config{
		{Characters: 2},
		{Characters: 7},
		{Characters: 4, Player: 4},
		{Characters: 4, Difficulty: 3},
		{Characters: 4, MaxTurns: -1},
	}
	for _, cfg := range cases {
		if _, err := NewGame(cfg); err == nil {
			t.Fatalf("expected error for %+v", cfg)
		}
	}
}

func TestInitialize_AffinityShape(t *testing.T) {
	g := newTestGame(t, Config{Characters: 6, Difficulty: DifficultyHard})
	for i := 0; i < 6; i++ {
		if g.rel.affinity[i][i] != 0 {
			t.Fatalf("diagonal affinity %d = %v", i, g.rel.affinity[i][i])
		}
		for j := 0; j < 6; j++ {
			if v := g.rel.affinity[i][j]; v <= -1 || v >= 1 {
				t.Fatalf("affinity[%d][%d] = %v out of range", i, j, v)
			}
			if g.rel.perceived[i][i][j] != g.rel.affinity[i][j] {
				t.Fatalf("self-belief mismatch at %d,%d", i, j)
			}
		}
	}
}

func TestInitialize_EasyPerceivesTruth(t *testing.T) {
	g := newTestGame(t, Config{Characters: 5, Difficulty: DifficultyEasy})
	for p := 0; p < 5; p++ {
		for i := 0; i < 5; i++ {
			for j := 0; j < 5; j++ {
				if i == j {
					continue
				}
				if g.rel.perceived[p][i][j] != g.rel.affinity[i][j] {
					t.Fatalf("easy: perceived[%d][%d][%d]=%v, truth %v", p, i, j, g.rel.perceived[p][i][j], g.rel.affinity[i][j])
				}
			}
		}
	}
}

func TestInvalidCommands_AreNoOps(t *testing.T) {
	g := newTestGame(t, Config{Characters: 4})
	before := g.Snapshot()

	if g.SubmitSelection(0) {
		t.Fatalf("player must not call themself")
	}
	if g.SubmitSelection(9) {
		t.Fatalf("out of range selection accepted")
	}
	if g.ConfirmEnter() {
		t.Fatalf("enter accepted in select_callee")
	}
	if g.Resume() {
		t.Fatalf("resume accepted in select_callee")
	}
	if g.AdjustValue(1) {
		t.Fatalf("adjust accepted in select_callee")
	}
	if err := g.Apply(Event{Kind: 42}); err != ErrUnknownEvent {
		t.Fatalf("expected ErrUnknownEvent, got %v", err)
	}
	if diff := cmp.Diff(before, g.Snapshot()); diff != "" {
		t.Fatalf("rejected commands changed state (-before +after):\n%s", diff)
	}
}

func TestPlayerCall_Flow(t *testing.T) {
	g := newTestGame(t, Config{Characters: 4})

	if !g.SubmitSelection(1) {
		t.Fatalf("select callee rejected")
	}
	if p := g.Phase(); p != PhaseTypeRinging {
		t.Fatalf("expected ringing, got %s", p)
	}
	if g.SubmitSelection(2) {
		t.Fatalf("selection accepted while ringing")
	}
	if !g.Resume() {
		t.Fatalf("resume rejected while ringing")
	}
	if g.SubmitSelection(1) || g.SubmitSelection(0) {
		t.Fatalf("caller or callee accepted as predicate")
	}
	if !g.SubmitSelection(2) {
		t.Fatalf("select predicate rejected")
	}

	snap := g.Snapshot()
	if snap.Phase != PhaseTypeDeclareDirect {
		t.Fatalf("expected declare_direct, got %s", snap.Phase)
	}
	if want := bounded.BoundedToLevel(g.rel.affinity[0][2]); snap.PendingValue != want {
		t.Fatalf("pending %d, want player's own level %d", snap.PendingValue, want)
	}

	if !g.SubmitStatementValue(0) {
		t.Fatalf("value 0 rejected")
	}
	if g.AdjustValue(-1) {
		t.Fatalf("adjust below 0 accepted")
	}
	if g.SubmitStatementValue(bounded.Levels) {
		t.Fatalf("value %d accepted", bounded.Levels)
	}
	if !g.AdjustValue(1) || g.Snapshot().PendingValue != 1 {
		t.Fatalf("adjust +1 failed")
	}
	// adjust only steps one level at a time
	for _, delta := range []int{0, 2, -2, 5} {
		if g.AdjustValue(delta) {
			t.Fatalf("adjust %+d accepted", delta)
		}
	}
	if got := g.Snapshot().PendingValue; got != 1 {
		t.Fatalf("rejected adjusts changed pending value to %d", got)
	}

	if !g.ConfirmEnter() {
		t.Fatalf("enter rejected in declare_direct")
	}
	snap = g.Snapshot()
	if snap.Phase != PhaseTypeReactAnim1 || !snap.AwaitingResume {
		t.Fatalf("expected react_anim_1 awaiting resume, got %s", snap.Phase)
	}
	if snap.LastReaction == nil || snap.LastReaction.Listener != 1 || snap.LastReaction.Level != 1 {
		t.Fatalf("unexpected reaction %+v", snap.LastReaction)
	}
	if g.rel.affinity[0][2] != bounded.LevelToBounded(1) {
		t.Fatalf("player's direct statement must set their own affinity")
	}

	want := []Phase{
		PhaseTypeRespondDirect, PhaseTypeDeclareIndirect, PhaseTypeReactAnim2,
		PhaseTypeRespondIndirect, PhaseTypeHangUp,
	}
	moves := []func() bool{g.Resume, g.ConfirmEnter, g.ConfirmEnter, g.Resume, g.ConfirmEnter}
	for i, move := range moves {
		if !move() {
			t.Fatalf("move %d rejected in %s", i, g.Phase())
		}
		if p := g.Phase(); p != want[i] {
			t.Fatalf("move %d: expected %s, got %s", i, want[i], p)
		}
	}

	statements := g.Statements(0)
	if len(statements) != 4 {
		t.Fatalf("expected 4 statements in a player call, got %d", len(statements))
	}
	if !statements[0].Direct() || !statements[1].Direct() || statements[2].Direct() || statements[3].Direct() {
		t.Fatalf("unexpected statement kinds %+v", statements)
	}
	if statements[2].Source != 2 || statements[2].Predicate != 1 || statements[2].Listener != 1 {
		t.Fatalf("indirect statement should report 2's feelings toward 1, got %+v", statements[2])
	}
	if tail := g.Statements(3); len(tail) != 1 || tail[0].Seq != 3 {
		t.Fatalf("unexpected ledger tail %+v", tail)
	}
}

func TestFirstStatement_PleasesListenerWithoutSuspicion(t *testing.T) {
	g := newTestGame(t, Config{Characters: 4})
	if !g.SubmitSelection(1) || !g.Resume() || !g.SubmitSelection(2) {
		t.Fatalf("could not reach declare_direct")
	}

	// The listener's own prior is weighed in with weight 1 even when no
	// statement about the pair exists yet, so a first statement is only free
	// of suspicion when that prior agrees with it.
	top := bounded.LevelToBounded(8)
	g.rel.setAffinity(1, 2, top)
	g.rel.setPerceived(1, 0, 2, top)
	before := g.rel.affinity[1][0]

	if !g.SubmitStatementValue(8) || !g.ConfirmEnter() {
		t.Fatalf("declare rejected")
	}
	r := g.Snapshot().LastReaction
	if r == nil {
		t.Fatalf("missing reaction")
	}
	if r.Suspicion != 0 {
		t.Fatalf("expected no suspicion on first statement, got %d", r.Suspicion)
	}
	if after := g.rel.affinity[1][0]; after <= before {
		t.Fatalf("listener's affinity toward player did not grow: %v -> %v", before, after)
	}
	if r.Face != reactionFace(r.LikeWhatIHear, r.Suspicion) {
		t.Fatalf("face %d does not match table", r.Face)
	}
}

func TestFirstStatement_DisagreeingPriorIsSuspicious(t *testing.T) {
	g := newTestGame(t, Config{Characters: 4})
	if !g.SubmitSelection(1) || !g.Resume() || !g.SubmitSelection(2) {
		t.Fatalf("could not reach declare_direct")
	}

	bottom := bounded.LevelToBounded(0)
	g.rel.setAffinity(1, 2, bottom)
	g.rel.setPerceived(1, 0, 2, bottom)

	if !g.SubmitStatementValue(8) || !g.ConfirmEnter() {
		t.Fatalf("declare rejected")
	}
	r := g.Snapshot().LastReaction
	if r == nil {
		t.Fatalf("missing reaction")
	}
	if r.Suspicion == 0 {
		t.Fatalf("first statement against the listener's prior raised no suspicion")
	}
}

func TestTurnRotation_FourCharacters(t *testing.T) {
	g := newTestGame(t, Config{Characters: 4})
	for i := 0; i < 1000; i++ {
		snap := g.Snapshot()
		if snap.Turn == 1 {
			break
		}
		if snap.Turn != 0 {
			t.Fatalf("turn skipped to %d", snap.Turn)
		}
		if !step(g) {
			t.Fatalf("stuck in %s", snap.Phase)
		}
	}

	snap := g.Snapshot()
	if snap.Turn != 1 {
		t.Fatalf("expected turn 1, got %d", snap.Turn)
	}
	if snap.Phase != PhaseTypeSelectCallee || snap.Caller != snap.Player {
		t.Fatalf("expected the player to select a callee, got %s caller=%d", snap.Phase, snap.Caller)
	}
	for i, pop := range snap.Popularity {
		if len(pop) != 2 {
			t.Fatalf("character %d: expected popularity for 2 turns, got %d", i, len(pop))
		}
		var want float64
		for j := 0; j < 4; j++ {
			if j != i {
				want += g.rel.affinity[j][i] / 3
			}
		}
		if pop[1] != want {
			t.Fatalf("character %d: popularity %v, want %v", i, pop[1], want)
		}
	}
}

func TestNpcTurn_TicksBeforeRotating(t *testing.T) {
	g := newTestGame(t, Config{Characters: 6, NpcTurnTicks: 3})
	g.caller, g.callee, g.predicate = 1, 2, 3
	g.phase, g.subPhase = PhaseTypeNpcTurn, 0

	caller := g.caller
	for i := 1; i < 3; i++ {
		if !g.Resume() {
			t.Fatalf("tick %d rejected", i)
		}
		if g.caller != caller || g.subPhase != i {
			t.Fatalf("tick %d: caller %d subPhase %d", i, g.caller, g.subPhase)
		}
	}
	if !g.Resume() {
		t.Fatalf("last tick rejected")
	}
	if g.caller == caller {
		t.Fatalf("expected rotation after the last tick")
	}
}

func TestInstantNpcTurns_NeverPause(t *testing.T) {
	g := newTestGame(t, Config{Characters: 6, InstantNpcTurns: true})
	for !g.Ended() {
		if g.Phase() == PhaseTypeNpcTurn {
			t.Fatalf("npc_turn should be skipped with instant npc turns")
		}
		if !step(g) {
			t.Fatalf("stuck in %s", g.Phase())
		}
	}
}

func TestFullGame_EndsWithRanking(t *testing.T) {
	g := newTestGame(t, Config{Characters: 5, Difficulty: DifficultyMedium})
	playToEnd(t, g)

	snap := g.Snapshot()
	if snap.Phase != PhaseTypeGameOver || !snap.Ended {
		t.Fatalf("expected game over, got %s", snap.Phase)
	}
	if snap.Turn != snap.MaxTurns {
		t.Fatalf("ended on turn %d, max %d", snap.Turn, snap.MaxTurns)
	}
	if len(snap.Ranking) != 5 {
		t.Fatalf("expected 5 ranking rows, got %d", len(snap.Ranking))
	}
	for i := 1; i < len(snap.Ranking); i++ {
		if snap.Ranking[i-1].Delta < snap.Ranking[i].Delta {
			t.Fatalf("ranking not sorted: %+v", snap.Ranking)
		}
	}
	if g.Resume() || g.ConfirmEnter() || g.SubmitSelection(1) {
		t.Fatalf("commands accepted after game over")
	}
	if err := g.Apply(Event{Kind: EventTypeResume}); err != ErrGameOver {
		t.Fatalf("expected ErrGameOver, got %v", err)
	}

	g.Restart()
	snap = g.Snapshot()
	if snap.Phase != PhaseTypeSelectCallee || snap.Turn != 0 || snap.Statements != 0 || snap.Ranking != nil {
		t.Fatalf("restart did not reset the game: %+v", snap)
	}
}

func TestSelfBeliefInvariant_HoldsThroughoutPlay(t *testing.T) {
	g := newTestGame(t, Config{Characters: 6, Difficulty: DifficultyHard})
	for !g.Ended() {
		if !step(g) {
			t.Fatalf("stuck in %s", g.Phase())
		}
		for i := 0; i < 6; i++ {
			for j := 0; j < 6; j++ {
				if g.rel.perceived[i][i][j] != g.rel.affinity[i][j] {
					t.Fatalf("perceived[%d][%d][%d]=%v, affinity %v", i, i, j, g.rel.perceived[i][i][j], g.rel.affinity[i][j])
				}
				if v := g.rel.affinity[i][j]; v <= -1 || v >= 1 {
					t.Fatalf("affinity[%d][%d]=%v left (-1,1)", i, j, v)
				}
			}
		}
	}
}

func TestGame_DeterministicForSeed(t *testing.T) {
	a := newTestGame(t, Config{Characters: 6, Difficulty: DifficultyMedium, Seed: 99})
	b := newTestGame(t, Config{Characters: 6, Difficulty: DifficultyMedium, Seed: 99})
	playToEnd(t, a)
	playToEnd(t, b)
	if diff := cmp.Diff(a.Snapshot(), b.Snapshot()); diff != "" {
		t.Fatalf("same seed diverged (-a +b):\n%s", diff)
	}
	if diff := cmp.Diff(a.Statements(0), b.Statements(0)); diff != "" {
		t.Fatalf("same seed produced different ledgers (-a +b):\n%s", diff)
	}
}

func TestNpcAnswersPlayerHonestly(t *testing.T) {
	g := newTestGame(t, Config{Characters: 4})
	if !g.SubmitSelection(3) || !g.Resume() || !g.SubmitSelection(1) || !g.ConfirmEnter() || !g.Resume() {
		t.Fatalf("could not reach respond_direct")
	}
	want := bounded.BoundedToLevel(g.rel.affinity[3][1])
	if !g.ConfirmEnter() {
		t.Fatalf("respond_direct rejected")
	}
	statements := g.Statements(0)
	last := statements[len(statements)-1]
	if last.Speaker != 3 || last.Listener != 0 || last.Level != want {
		t.Fatalf("expected honest answer level %d from 3, got %+v", want, last)
	}
}
