package npc

import (
	"fmt"
	"math"
	"math/rand"

	"gossip-lite/bounded"
	"gossip-lite/gossip"
)

// View is a read-only projection of the game state visible to the player.
type View struct {
	Phase          gossip.Phase
	AwaitingResume bool
	Ended          bool
	Characters     int
	Player         int
	Caller         int
	Callee         int
	Predicate      int
	Pending        int
	// Own[j] is the player's own affinity level toward j.
	Own []int
	// Believed[i][j] is what the player thinks i feels about j.
	Believed [][]int
}

// Decision is what a Decider returns.
type Decision struct {
	Event gossip.Event
	Done  bool
}

// Decider plays the player's seat.
type Decider interface {
	// Decide is called whenever the game may accept a player command.
	Decide(view View) Decision
	// Name returns a human-readable identifier for debugging.
	Name() string
}

// PlayStyle tunes a RuleAutopilot.
type PlayStyle struct {
	Flattery   float64 `json:"flattery" yaml:"flattery"`     // 0 honest, 1 says whatever pleases
	Randomness float64 `json:"randomness" yaml:"randomness"` // level noise amplitude
}

// RuleAutopilot picks calls at random and shades its statements toward
// what the listener wants to hear.
type RuleAutopilot struct {
	Style PlayStyle
	rng   *rand.Rand

	lastPhase gossip.Phase
	valueSet  bool
}

func NewRuleAutopilot(style PlayStyle, seed int64) *RuleAutopilot {
	return &RuleAutopilot{
		Style:     style,
		rng:       rand.New(rand.NewSource(seed)),
		lastPhase: gossip.PhaseTypeGameOver,
	}
}

func (a *RuleAutopilot) Name() string {
	return fmt.Sprintf("rule(flattery=%.2f)", a.Style.Flattery)
}

// BuildView projects a snapshot for the player seat.
func BuildView(snap gossip.Snapshot) View {
	return View{
		Phase:          snap.Phase,
		AwaitingResume: snap.AwaitingResume,
		Ended:          snap.Ended,
		Characters:     len(snap.Characters),
		Player:         snap.Player,
		Caller:         snap.Caller,
		Callee:         snap.Callee,
		Predicate:      snap.Predicate,
		Pending:        snap.PendingValue,
		Own:            snap.AffinityLevels[snap.Player],
		Believed:       snap.PerceivedLevels,
	}
}

// Decide implements Decider.
func (a *RuleAutopilot) Decide(v View) Decision {
	if v.Phase != a.lastPhase {
		a.lastPhase = v.Phase
		a.valueSet = false
	}
	switch {
	case v.Ended:
		return Decision{Done: true}
	case v.AwaitingResume:
		return Decision{Event: gossip.Event{Kind: gossip.EventTypeResume}}
	}

	switch v.Phase {
	case gossip.PhaseTypeSelectCallee:
		return select1(a.pick(v.Characters, v.Player))
	case gossip.PhaseTypeSelectPredicate:
		return select1(a.pick(v.Characters, v.Caller, v.Callee))
	case gossip.PhaseTypeDeclareDirect, gossip.PhaseTypePlayerRespondsDirect,
		gossip.PhaseTypeDeclareIndirect, gossip.PhaseTypePlayerRespondsIndirect:
		if !a.valueSet {
			a.valueSet = true
			if want := a.statementLevel(v); want != v.Pending {
				return Decision{Event: gossip.Event{Kind: gossip.EventTypeSetValue, Arg: want}}
			}
		}
	}
	return Decision{Event: gossip.Event{Kind: gossip.EventTypeConfirm}}
}

func select1(i int) Decision {
	return Decision{Event: gossip.Event{Kind: gossip.EventTypeSelect, Arg: i}}
}

func (a *RuleAutopilot) pick(n int, exclude ...int) int {
	candidates := make([]int, 0, n)
outer:
	for i := 0; i < n; i++ {
		for _, e := range exclude {
			if i == e {
				continue outer
			}
		}
		candidates = append(candidates, i)
	}
	if len(candidates) == 0 {
		return gossip.Nobody
	}
	return candidates[a.rng.Intn(len(candidates))]
}

// statementLevel blends the honest answer with the one the listener would
// like best.
func (a *RuleAutopilot) statementLevel(v View) int {
	listener := v.Callee
	if v.Caller != v.Player {
		listener = v.Caller
	}

	var honest, pleasing int
	switch v.Phase {
	case gossip.PhaseTypeDeclareDirect, gossip.PhaseTypePlayerRespondsDirect:
		honest = v.Own[v.Predicate]
		pleasing = v.Believed[listener][v.Predicate]
	default:
		honest = v.Believed[v.Predicate][listener]
		pleasing = bounded.Levels - 1
	}

	level := float64(honest) + a.Style.Flattery*float64(pleasing-honest)
	if a.Style.Randomness > 0 {
		level += (a.rng.Float64()*2 - 1) * a.Style.Randomness
	}
	return bounded.ClampLevel(int(math.Round(level)))
}

// Run lets d play g until the game ends or maxSteps commands were sent.
func Run(g *gossip.Game, d Decider, maxSteps int) (int, error) {
	for steps := 0; steps < maxSteps; steps++ {
		decision := d.Decide(BuildView(g.Snapshot()))
		if decision.Done {
			return steps, nil
		}
		if err := g.Apply(decision.Event); err != nil {
			return steps, fmt.Errorf("%s: %w", d.Name(), err)
		}
	}
	return maxSteps, fmt.Errorf("%s: game not finished after %d steps", d.Name(), maxSteps)
}
