package gossip

// selectCalleeLocked picks whoever the caller has been out of touch with the
// longest, with a random tie-break.
func (g *Game) selectCalleeLocked() int {
	size := g.ledger.len()
	best, bestScore := Nobody, 0.0
	for i := 0; i < g.cfg.Characters; i++ {
		if i == g.caller {
			continue
		}
		age := min(g.ledger.recency(g.caller, i, Anybody), g.ledger.recency(i, g.caller, Anybody))
		score := float64(age) + g.rng.Float64()
		if g.ledger.recency(g.caller, g.callee, i) < size+1 && score > bestScore {
			best, bestScore = i, score
		}
	}
	if best == Nobody {
		best = (g.caller + 1) % g.cfg.Characters
	}
	return best
}

// selectPredicateLocked picks the third party caller and callee have
// discussed least recently.
func (g *Game) selectPredicateLocked() int {
	best, bestScore := Nobody, 0.0
	for i := 0; i < g.cfg.Characters; i++ {
		if i == g.caller || i == g.callee {
			continue
		}
		age := min(g.ledger.recency(g.caller, g.callee, i), g.ledger.recency(g.callee, g.caller, i))
		score := float64(age) + g.rng.Float64()
		if best == Nobody || score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}
