package gossip

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"gossip-lite/bounded"
)

type Game struct {
	cfg Config
	rng *rand.Rand

	mu sync.Mutex

	cast       []Character
	rel        *relations
	ledger     *ledger
	popularity [][]float64 // [character][turn]

	// conversation context
	turn      int
	phase     Phase
	subPhase  int
	caller    int
	callee    int
	predicate int
	pending   int

	lastReaction *Reaction
	ranking      []RankEntry
}

func NewGame(cfg Config) (*Game, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	g := &Game{
		cfg:  cfg,
		rng:  rand.New(rand.NewSource(seed)),
		cast: append([]Character{}, cfg.Cast[:cfg.Characters]...),
	}
	g.initializeLocked()
	return g, nil
}

// Initialize starts a game on the default cast.
func Initialize(characterCount int, difficulty Difficulty, seed int64) (*Game, error) {
	return NewGame(Config{
		Characters: characterCount,
		Difficulty: difficulty,
		Seed:       seed,
	})
}

// Restart begins a fresh game with the same config. The RNG stream
// continues, so consecutive games differ.
func (g *Game) Restart() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.initializeLocked()
}

func (g *Game) initializeLocked() {
	n := g.cfg.Characters
	t := g.cfg.Tunables

	g.rel = newRelations(n)
	g.ledger = newLedger()
	g.popularity = make([][]float64, n)
	g.turn = 0
	g.phase = PhaseTypeSelectCallee
	g.subPhase = 0
	g.caller = g.cfg.Player
	g.callee = Nobody
	g.predicate = Nobody
	g.pending = 0
	g.lastReaction = nil
	g.ranking = nil

	// Affinities are semi-symmetric: a[j][i] wanders around a[i][j].
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			a := 2*g.rng.Float64() - 1
			g.rel.setAffinity(i, j, a)
			g.rel.setAffinity(j, i, bounded.Compose(g.rel.affinity[i][j], (2*g.rng.Float64()-1)*t.AsymmetryScale))
		}
	}

	// Perceptions start from the truth; difficulty decides how much noise
	// is mixed in (easy: none, hard: all).
	w := float64(g.cfg.Difficulty) - 1
	for p := 0; p < n; p++ {
		for i := 0; i < n; i++ {
			if i == p {
				continue
			}
			for j := 0; j < n; j++ {
				if j == i {
					continue
				}
				truth := g.rel.affinity[i][j]
				noisy := bounded.Compose(truth, (2*g.rng.Float64()-1)*t.PerceptionNoise)
				g.rel.setPerceived(p, i, j, bounded.Blend(truth, noisy, w))
			}
		}
	}

	g.recordPopularityLocked()
}

func (g *Game) Config() Config {
	return g.cfg
}

func (g *Game) Phase() Phase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phase
}

func (g *Game) Ended() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phase == PhaseTypeGameOver
}

// Statements returns the ledger tail starting at seq from.
func (g *Game) Statements(from int) []Statement {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ledger.since(from)
}

// Event is a trigger for the phase machine.
type Event struct {
	Kind EventKind
	Arg  int
}

// Apply delivers ev. Triggers the current phase does not accept leave the
// state untouched and return an error.
func (g *Game) Apply(ev Event) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.applyLocked(ev)
}

func (g *Game) applyLocked(ev Event) error {
	if _, ok := EventTypeDictionary[ev.Kind]; !ok {
		return ErrUnknownEvent
	}
	if g.phase == PhaseTypeGameOver {
		return ErrGameOver
	}
	tr, ok := transitions[transitionKey{g.phase, ev.Kind}]
	if !ok {
		return ErrInvalidState(fmt.Sprintf("%s not accepted in %s", ev.Kind, g.phase))
	}
	if tr.guard != nil && !tr.guard(g, ev.Arg) {
		return ErrInvalidState(fmt.Sprintf("%s %d rejected in %s", ev.Kind, ev.Arg, g.phase))
	}
	tr.apply(g, ev.Arg)
	return nil
}

// SubmitSelection picks a callee or a predicate, depending on the phase.
func (g *Game) SubmitSelection(i int) bool {
	return g.Apply(Event{Kind: EventTypeSelect, Arg: i}) == nil
}

func (g *Game) SubmitStatementValue(level int) bool {
	return g.Apply(Event{Kind: EventTypeSetValue, Arg: level}) == nil
}

func (g *Game) AdjustValue(delta int) bool {
	return g.Apply(Event{Kind: EventTypeAdjust, Arg: delta}) == nil
}

func (g *Game) ConfirmEnter() bool {
	return g.Apply(Event{Kind: EventTypeConfirm}) == nil
}

// Resume signals that the presentation for a waiting phase has finished.
func (g *Game) Resume() bool {
	return g.Apply(Event{Kind: EventTypeResume}) == nil
}
