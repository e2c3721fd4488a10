package lobby

import (
	"fmt"

	"gossip-lite/apps/server/internal/session"
	"gossip-lite/gossip"
)

// applyScenario fills opts from a named scenario. Request fields other than
// the seed are ignored.
func (l *Lobby) applyScenario(opts *session.Options, req NewGameRequest) error {
	sc := l.scenarios.Get(req.Scenario)
	if sc == nil {
		return fmt.Errorf("scenario %q not found", req.Scenario)
	}
	cast, cfg, err := sc.Resolve(l.personas, req.Seed)
	if err != nil {
		return err
	}
	objective := sc.Objective
	opts.Cast = cast
	opts.Game = cfg
	opts.ScenarioID = sc.ID
	opts.Objective = &objective
	return nil
}

// ScenarioInfo is the public description of a scenario.
type ScenarioInfo struct {
	ID         string            `json:"id"`
	Title      string            `json:"title"`
	Subtitle   string            `json:"subtitle"`
	Characters int               `json:"characters"`
	Difficulty gossip.Difficulty `json:"difficulty"`
	Objective  string            `json:"objective"`
}

func (l *Lobby) Scenarios() []ScenarioInfo {
	all := l.scenarios.All()
	out := make([]ScenarioInfo, 0, len(all))
	for _, sc := range all {
		n := sc.Characters
		if n == 0 {
			n = len(sc.CastIDs)
		}
		out = append(out, ScenarioInfo{
			ID:         sc.ID,
			Title:      sc.Title,
			Subtitle:   sc.Subtitle,
			Characters: n,
			Difficulty: sc.Difficulty,
			Objective:  sc.Objective.Desc,
		})
	}
	return out
}
