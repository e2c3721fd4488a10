package gossip

import (
	"math"

	"gossip-lite/bounded"
)

// Reaction is the listener's response to a single statement.
type Reaction struct {
	Seq           int
	Speaker       int
	Listener      int
	Source        int
	Predicate     int
	Direct        bool
	Level         int
	Suspicion     int // 0..2
	LikeWhatIHear int // 0..2
	Face          int // affinity level shown on the listener's face
}

// reactionFaces is indexed [likeWhatIHear][suspicion].
var reactionFaces = [3][3]int{
	{0, 1, 2},
	{4, 3, 3},
	{7, 5, 2},
}

func reactionFace(like, suspicion int) int {
	return reactionFaces[clampIndex(like, 3)][clampIndex(suspicion, 3)]
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// weighTestimonyLocked folds every statement listener has heard from source
// about predicate into a trust-weighted consensus, punishes speakers that
// deviate from it and returns the listener's suspicion.
func (g *Game) weighTestimonyLocked(listener, source, predicate int) int {
	t := g.cfg.Tunables
	entries := g.ledger.testimony(listener, source, predicate)

	consensus := g.rel.perceived[listener][source][predicate]
	sumWeight := 1.0
	for _, e := range entries {
		trust := (g.rel.affinity[listener][e.Speaker] + 1) / 2
		if e.Direct() {
			trust = bounded.Compose(trust, trust)
		}
		sumWeight += trust
		consensus += trust * bounded.LevelToBounded(e.Level)
	}
	if sumWeight > 0 {
		consensus /= sumWeight
	}

	var suspect float64
	for _, e := range entries {
		deviation := math.Abs(consensus-bounded.LevelToBounded(e.Level)) * (1 - g.cast[listener].Gullibility)
		suspect += deviation
		g.rel.nudge(listener, e.Speaker, t.ConsensusBonus-deviation)
	}
	g.rel.setPerceived(listener, source, predicate, consensus)
	return clampIndex(int(t.SuspicionScale*suspect), 3)
}

// declareDirectLocked records speaker telling listener how speaker feels
// about predicate.
func (g *Game) declareDirectLocked(level, speaker, listener, predicate int) Reaction {
	t := g.cfg.Tunables
	level = bounded.ClampLevel(level)
	s := g.ledger.append(Statement{
		Turn:      g.turn,
		Speaker:   speaker,
		Listener:  listener,
		Source:    speaker,
		Predicate: predicate,
		Level:     level,
	})

	x := bounded.LevelToBounded(level)
	if speaker == g.cfg.Player {
		g.rel.setAffinity(speaker, predicate, x)
	}

	suspicion := g.weighTestimonyLocked(listener, speaker, predicate)
	disagreement := math.Abs(x-g.rel.affinity[listener][predicate]) / t.DisagreementScale
	g.rel.nudge(listener, speaker, t.DirectAgreementBonus-disagreement)

	return g.reactLocked(s, suspicion, disagreement)
}

// declareIndirectLocked records speaker telling listener how source feels
// about listener.
func (g *Game) declareIndirectLocked(level, source, speaker, listener int) Reaction {
	t := g.cfg.Tunables
	level = bounded.ClampLevel(level)
	s := g.ledger.append(Statement{
		Turn:      g.turn,
		Speaker:   speaker,
		Listener:  listener,
		Source:    source,
		Predicate: listener,
		Level:     level,
	})

	suspicion := g.weighTestimonyLocked(listener, source, listener)
	x := bounded.LevelToBounded(level)
	flattery := g.cast[listener].Vanity * (x - g.rel.perceived[listener][source][listener]) / t.FlatteryScale
	g.rel.nudge(listener, speaker, t.FlatteryBonus-flattery)

	return g.reactLocked(s, suspicion, flattery)
}

func (g *Game) reactLocked(s Statement, suspicion int, offence float64) Reaction {
	like := clampIndex((bounded.Levels-bounded.BoundedToLevel(offence))/3, 3)
	r := Reaction{
		Seq:           s.Seq,
		Speaker:       s.Speaker,
		Listener:      s.Listener,
		Source:        s.Source,
		Predicate:     s.Predicate,
		Direct:        s.Direct(),
		Level:         s.Level,
		Suspicion:     suspicion,
		LikeWhatIHear: like,
		Face:          reactionFace(like, suspicion),
	}
	g.lastReaction = &r
	return r
}
