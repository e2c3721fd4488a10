package gossip

// rotate hands the phone to the next character. NPC-to-NPC calls that need
// no resume are played back to back until the player is involved again.
func (g *Game) rotate(_ int) {
	n := g.cfg.Characters
	for {
		g.callee = Nobody
		g.predicate = Nobody
		g.subPhase = 0
		g.caller = (g.caller + 1) % n

		if g.caller == g.cfg.Player {
			g.turn++
			g.recordPopularityLocked()
			if g.turn >= g.cfg.MaxTurns {
				g.phase = PhaseTypeGameOver
				g.ranking = g.rankingLocked()
				return
			}
			g.phase = PhaseTypeSelectCallee
			return
		}

		if !g.runNpcTurnLocked() {
			return
		}
	}
}

// runNpcTurnLocked plays the current caller's turn. It returns true when the
// turn finished without waiting for a resume.
func (g *Game) runNpcTurnLocked() bool {
	g.callee = g.selectCalleeLocked()
	g.predicate = g.selectPredicateLocked()

	if g.callee == g.cfg.Player {
		g.phase = PhaseTypeNpcCalls
		return false
	}

	caller, callee, predicate := g.caller, g.callee, g.predicate
	g.declareDirectLocked(g.planDirectLocked(caller, callee, predicate), caller, callee, predicate)
	g.declareDirectLocked(g.planDirectLocked(callee, caller, predicate), callee, caller, predicate)
	g.declareIndirectLocked(g.planIndirectLocked(caller, callee, predicate), predicate, caller, callee)
	g.declareIndirectLocked(g.planIndirectLocked(callee, caller, predicate), predicate, callee, caller)

	g.phase = PhaseTypeNpcTurn
	g.subPhase = 0
	return g.cfg.NpcTurnTicks == 0
}
