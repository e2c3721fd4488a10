package gossip

type CharacterSnapshot struct {
	Index       int
	Name        string
	Player      bool
	Popularity  float64 // current turn
	Dishonesty  float64
	Gullibility float64
	Vanity      float64
}

type Snapshot struct {
	Turn     int
	MaxTurns int
	Phase    Phase
	SubPhase int
	Ended    bool

	Player    int
	Caller    int
	Callee    int
	Predicate int

	PendingValue   int
	AwaitingResume bool

	Characters []CharacterSnapshot

	// AffinityLevels[i][j] is how i truly feels about j.
	AffinityLevels [][]int
	// PerceivedLevels[i][j] is what the player believes i feels about j.
	PerceivedLevels [][]int

	LastReaction *Reaction
	Statements   int

	Popularity [][]float64 // [character][turn]
	Ranking    []RankEntry
}

func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := Snapshot{
		Turn:            g.turn,
		MaxTurns:        g.cfg.MaxTurns,
		Phase:           g.phase,
		SubPhase:        g.subPhase,
		Ended:           g.phase == PhaseTypeGameOver,
		Player:          g.cfg.Player,
		Caller:          g.caller,
		Callee:          g.callee,
		Predicate:       g.predicate,
		PendingValue:    g.pending,
		AwaitingResume:  g.phase.AwaitsResume(),
		AffinityLevels:  g.rel.affinityLevels(),
		PerceivedLevels: g.rel.perceivedLevels(g.cfg.Player),
		Statements:      g.ledger.len(),
		Popularity:      copyMatrix(g.popularity),
		Ranking:         append([]RankEntry(nil), g.ranking...),
	}
	if g.lastReaction != nil {
		r := *g.lastReaction
		s.LastReaction = &r
	}

	for i, c := range g.cast {
		pop := g.popularity[i]
		s.Characters = append(s.Characters, CharacterSnapshot{
			Index:       i,
			Name:        c.Name,
			Player:      i == g.cfg.Player,
			Popularity:  pop[len(pop)-1],
			Dishonesty:  c.Dishonesty,
			Gullibility: c.Gullibility,
			Vanity:      c.Vanity,
		})
	}
	return s
}
