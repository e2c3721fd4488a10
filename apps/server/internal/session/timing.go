package session

import (
	"time"

	"gossip-lite/apps/server/internal/config"
	"gossip-lite/gossip"
)

// Timing holds the pause before each self-advancing phase resumes.
type Timing struct {
	Ring      time.Duration
	NpcCalls  time.Duration
	HangUp    time.Duration
	NpcHangUp time.Duration
	NpcTurn   time.Duration

	// Reaction is used on hard; easier games leave reactions up longer.
	Reaction       time.Duration
	ReactionEasy   time.Duration
	ReactionMedium time.Duration
}

func DefaultTiming() Timing {
	return Timing{
		Ring:      3300 * time.Millisecond,
		NpcCalls:  4000 * time.Millisecond,
		HangUp:    1000 * time.Millisecond,
		NpcHangUp: 2000 * time.Millisecond,
		NpcTurn:   500 * time.Millisecond,

		Reaction:       2000 * time.Millisecond,
		ReactionEasy:   4000 * time.Millisecond,
		ReactionMedium: 3000 * time.Millisecond,
	}
}

func TimingFromConfig(d config.Delays) Timing {
	return Timing{
		Ring:      d.Ring(),
		NpcCalls:  d.NpcCall(),
		HangUp:    d.HangUp(),
		NpcHangUp: d.NpcHangUp(),
		NpcTurn:   d.NpcTurn(),

		Reaction:       d.Reaction(),
		ReactionEasy:   d.ReactionEasy(),
		ReactionMedium: d.ReactionMedium(),
	}
}

// Delay returns how long phase p is shown before it resumes.
func (t Timing) Delay(p gossip.Phase, difficulty gossip.Difficulty) time.Duration {
	switch p {
	case gossip.PhaseTypeRinging:
		return t.Ring
	case gossip.PhaseTypeNpcCalls:
		return t.NpcCalls
	case gossip.PhaseTypeHangUp:
		return t.HangUp
	case gossip.PhaseTypeNpcHangUp:
		return t.NpcHangUp
	case gossip.PhaseTypeNpcTurn:
		return t.NpcTurn
	}
	if !p.IsReaction() {
		return 0
	}
	switch difficulty {
	case gossip.DifficultyEasy:
		return t.ReactionEasy
	case gossip.DifficultyMedium:
		return t.ReactionMedium
	default:
		return t.Reaction
	}
}
