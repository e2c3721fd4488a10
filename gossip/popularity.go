package gossip

import (
	"sort"

	"gossip-lite/bounded"
)

// RankEntry is one row of the end-of-game ranking.
type RankEntry struct {
	Character int
	Name      string
	First     float64
	Last      float64
	Delta     float64
	Level     int
}

// recordPopularityLocked stores every character's mean incoming affinity
// for the current turn.
func (g *Game) recordPopularityLocked() {
	n := g.cfg.Characters
	for i := 0; i < n; i++ {
		var sum float64
		for j := 0; j < n; j++ {
			if j != i {
				sum += g.rel.affinity[j][i] / float64(n-1)
			}
		}
		if len(g.popularity[i]) > g.turn {
			g.popularity[i][g.turn] = sum
			continue
		}
		g.popularity[i] = append(g.popularity[i], sum)
	}
}

// rankingLocked orders characters by popularity gained since turn 0.
func (g *Game) rankingLocked() []RankEntry {
	out := make([]RankEntry, 0, g.cfg.Characters)
	for i, history := range g.popularity {
		first, last := history[0], history[len(history)-1]
		out = append(out, RankEntry{
			Character: i,
			Name:      g.cast[i].Name,
			First:     first,
			Last:      last,
			Delta:     last - first,
			Level:     bounded.BoundedToLevel(bounded.Compose(last, -first)),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Delta > out[j].Delta })
	return out
}
