package npc

import (
	"fmt"

	"gossip-lite/gossip"
)

// Narrator renders statements, reactions and prompts as text for the cast
// of one game.
type Narrator struct {
	cast   []*Persona
	player int
}

func NewNarrator(cast []*Persona, player int) *Narrator {
	return &Narrator{cast: cast, player: player}
}

func (n *Narrator) name(i int) string {
	if i < 0 || i >= len(n.cast) {
		return "somebody"
	}
	return n.cast[i].Name
}

func (n *Narrator) persona(i int) *Persona {
	if i < 0 || i >= len(n.cast) {
		return &Persona{}
	}
	return n.cast[i]
}

func (n *Narrator) speaker(i int) string {
	if i == n.player {
		return "You say"
	}
	return n.name(i) + " says"
}

// Quote renders a ledger entry.
func (n *Narrator) Quote(s gossip.Statement) string {
	if s.Direct() {
		words := n.persona(s.Speaker).Describe(n.persona(s.Predicate).Gender, s.Level)
		return fmt.Sprintf("%s that %s is %s.", n.speaker(s.Speaker), n.name(s.Predicate), words)
	}
	words := n.persona(s.Source).Describe(n.persona(s.Listener).Gender, s.Level)
	return fmt.Sprintf("%s \"%s told me that you are %s.\"", n.speaker(s.Speaker), n.name(s.Source), words)
}

// React renders the listener's response to a statement.
func (n *Narrator) React(r gossip.Reaction) string {
	p := n.persona(r.Listener)
	line := p.indirectFeedback(r.Suspicion)
	if r.Direct {
		line = p.directFeedback(r.LikeWhatIHear, r.Suspicion)
	}
	if line == "" {
		return ""
	}
	return n.name(r.Listener) + " " + line
}

// Prompt is the banner shown for the current phase.
func (n *Narrator) Prompt(snap gossip.Snapshot) string {
	switch snap.Phase {
	case gossip.PhaseTypeSelectCallee:
		return "Select somebody to call"
	case gossip.PhaseTypeSelectPredicate:
		return "Select somebody to gossip about"
	case gossip.PhaseTypeDeclareDirect, gossip.PhaseTypePlayerRespondsDirect:
		other := snap.Callee
		if snap.Caller != snap.Player {
			other = snap.Caller
		}
		return fmt.Sprintf("Tell %s how you feel about %s", n.name(other), n.name(snap.Predicate))
	case gossip.PhaseTypeDeclareIndirect, gossip.PhaseTypePlayerRespondsIndirect:
		other := snap.Callee
		if snap.Caller != snap.Player {
			other = snap.Caller
		}
		return fmt.Sprintf("Tell %s how %s feels about them", n.name(other), n.name(snap.Predicate))
	case gossip.PhaseTypeHangUp:
		return "Goodbye!"
	case gossip.PhaseTypeNpcCalls:
		return n.name(snap.Caller) + " is calling"
	case gossip.PhaseTypeNpcHangUp:
		return "<Goodbye!>"
	case gossip.PhaseTypeNpcTurn:
		return fmt.Sprintf("%s is on the phone with %s", n.name(snap.Caller), n.name(snap.Callee))
	case gossip.PhaseTypeGameOver:
		if len(snap.Ranking) > 0 {
			return fmt.Sprintf("Game over. %s gained the most friends.", snap.Ranking[0].Name)
		}
		return "Game over."
	}
	return ""
}
