package npc

import (
	"fmt"

	"gossip-lite/gossip"
)

// ScenarioConfig is a named game preset.
type ScenarioConfig struct {
	ID         string            `json:"id" yaml:"id"`
	Title      string            `json:"title" yaml:"title"`
	Subtitle   string            `json:"subtitle" yaml:"subtitle"`
	CastIDs    []string          `json:"castIds" yaml:"castIds"` // empty => default seats
	Characters int               `json:"characters" yaml:"characters"`
	Difficulty gossip.Difficulty `json:"difficulty" yaml:"difficulty"`
	MaxTurns   int               `json:"maxTurns" yaml:"maxTurns"` // 0 => engine default
	Objective  Objective         `json:"objective" yaml:"objective"`
}

// Objective defines the win condition for a scenario.
type Objective struct {
	Type   string  `json:"type" yaml:"type"`     // "top_rank", "positive_delta", "min_level"
	Target float64 `json:"target" yaml:"target"` // rank, delta or level depending on Type
	Desc   string  `json:"desc" yaml:"desc"`
}

// Resolve builds the cast and engine config for the scenario.
func (s *ScenarioConfig) Resolve(reg *PersonaRegistry, seed int64) ([]*Persona, gossip.Config, error) {
	n := s.Characters
	if n == 0 {
		n = len(s.CastIDs)
	}
	cast, err := reg.Cast(n, s.CastIDs...)
	if err != nil {
		return nil, gossip.Config{}, fmt.Errorf("scenario %s: %w", s.ID, err)
	}
	cfg := gossip.Config{
		Characters: len(cast),
		Cast:       Characters(cast),
		Difficulty: s.Difficulty,
		MaxTurns:   s.MaxTurns,
		Seed:       seed,
	}
	return cast, cfg, nil
}

// IsComplete checks the objective against a finished game's ranking.
func (o Objective) IsComplete(ranking []gossip.RankEntry, player int) bool {
	for pos, row := range ranking {
		if row.Character != player {
			continue
		}
		switch o.Type {
		case "top_rank":
			return float64(pos+1) <= o.Target
		case "positive_delta":
			return row.Delta > o.Target
		case "min_level":
			return float64(row.Level) >= o.Target
		default:
			return false
		}
	}
	return false
}
