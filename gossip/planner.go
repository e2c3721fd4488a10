package gossip

import "gossip-lite/bounded"

// deceptionBias is -1 for a fully honest statement and approaches 1 for a
// fully self-serving one. Speakers are more honest with friends.
func (g *Game) deceptionBias(speaker, listener int) float64 {
	bias := bounded.Compose(bounded.Clamp(g.cast[speaker].Dishonesty), -g.rel.affinity[speaker][listener])
	return bounded.Compose(bias, float64(g.cfg.Difficulty)*g.cfg.Tunables.DifficultyBiasScale)
}

// planDirectLocked decides what speaker tells listener about speaker's own
// feelings toward predicate, drifting toward what listener believes.
func (g *Game) planDirectLocked(speaker, listener, predicate int) int {
	truth := g.rel.affinity[speaker][predicate]
	lie := g.rel.perceived[speaker][listener][predicate]
	return bounded.BoundedToLevel(bounded.Blend(truth, lie, g.deceptionBias(speaker, listener)))
}

// planIndirectLocked decides what speaker tells listener about predicate's
// feelings toward listener, drifting toward speaker's own feelings.
func (g *Game) planIndirectLocked(speaker, listener, predicate int) int {
	truth := g.rel.perceived[speaker][predicate][listener]
	lie := g.rel.affinity[speaker][listener]
	return bounded.BoundedToLevel(bounded.Blend(truth, lie, g.deceptionBias(speaker, listener)))
}

// directToPlayerLocked is what npc tells the player about its own feelings
// toward predicate.
func (g *Game) directToPlayerLocked(npc, predicate int) int {
	if g.cfg.DeceivePlayer {
		return g.planDirectLocked(npc, g.cfg.Player, predicate)
	}
	return bounded.BoundedToLevel(g.rel.affinity[npc][predicate])
}

// indirectToPlayerLocked is what npc tells the player about predicate's
// feelings toward the player.
func (g *Game) indirectToPlayerLocked(npc, predicate int) int {
	if g.cfg.DeceivePlayer {
		return g.planIndirectLocked(npc, g.cfg.Player, predicate)
	}
	return bounded.BoundedToLevel(g.rel.perceived[npc][predicate][g.cfg.Player])
}
