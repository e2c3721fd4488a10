// Command gossip-sim plays games headlessly with the rule autopilot in the
// player's seat and prints the transcript and final standings.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"gossip-lite/gossip"
	"gossip-lite/gossip/npc"
	"gossip-lite/internal/logging"
)

type options struct {
	characters int
	difficulty int
	seed       int64
	games      int
	flattery   float64
	scenario   string
	castFile   string
	quiet      bool
	logLevel   string
}

func main() {
	var opts options
	flag.IntVar(&opts.characters, "characters", 4, "cast size (3..cast)")
	flag.IntVar(&opts.difficulty, "difficulty", 1, "0 easy, 1 medium, 2 hard")
	flag.Int64Var(&opts.seed, "seed", gossip.DefaultSeed, "rng seed of the first game")
	flag.IntVar(&opts.games, "games", 1, "number of games to play")
	flag.Float64Var(&opts.flattery, "flattery", 0.5, "autopilot flattery 0..1")
	flag.StringVar(&opts.scenario, "scenario", "", "scenario id (overrides characters and difficulty)")
	flag.StringVar(&opts.castFile, "cast", "", "persona file (.yaml or .json) replacing the default cast")
	flag.BoolVar(&opts.quiet, "quiet", false, "print standings only")
	flag.StringVar(&opts.logLevel, "log-level", "info", "log level")
	flag.Parse()

	logger := logging.New(opts.logLevel, os.Stderr).WithPrefix("Sim")
	if err := run(opts, os.Stdout); err != nil {
		logger.Fatal("simulation failed", "err", err)
	}
}

func run(opts options, out io.Writer) error {
	personas, err := loadPersonas(opts.castFile)
	if err != nil {
		return err
	}
	scenarios, err := npc.NewDefaultScenarioRegistry()
	if err != nil {
		return err
	}

	for i := 0; i < opts.games; i++ {
		seed := opts.seed + int64(i)
		cast, cfg, objective, err := gameSetup(opts, personas, scenarios, seed)
		if err != nil {
			return err
		}
		g, err := gossip.NewGame(cfg)
		if err != nil {
			return err
		}
		pilot := npc.NewRuleAutopilot(npc.PlayStyle{Flattery: opts.flattery, Randomness: 0.5}, seed)
		steps, err := npc.Run(g, pilot, 100000)
		if err != nil {
			return err
		}
		report(out, g, cast, objective, seed, steps, opts.quiet)
	}
	return nil
}

func loadPersonas(path string) (*npc.PersonaRegistry, error) {
	if path == "" {
		return npc.NewDefaultRegistry()
	}
	reg := npc.NewRegistry()
	if err := reg.LoadFromFile(path); err != nil {
		return nil, err
	}
	return reg, nil
}

func gameSetup(opts options, personas *npc.PersonaRegistry, scenarios *npc.ScenarioRegistry, seed int64) ([]*npc.Persona, gossip.Config, *npc.Objective, error) {
	if opts.scenario != "" {
		sc := scenarios.Get(opts.scenario)
		if sc == nil {
			return nil, gossip.Config{}, nil, fmt.Errorf("scenario %q not found", opts.scenario)
		}
		cast, cfg, err := sc.Resolve(personas, seed)
		if err != nil {
			return nil, gossip.Config{}, nil, err
		}
		cfg.InstantNpcTurns = true
		objective := sc.Objective
		return cast, cfg, &objective, nil
	}
	cast, err := personas.Cast(opts.characters)
	if err != nil {
		return nil, gossip.Config{}, nil, err
	}
	cfg := gossip.Config{
		Characters:      len(cast),
		Cast:            npc.Characters(cast),
		Difficulty:      gossip.Difficulty(opts.difficulty),
		InstantNpcTurns: true,
		Seed:            seed,
	}
	return cast, cfg, nil, nil
}

func report(out io.Writer, g *gossip.Game, cast []*npc.Persona, objective *npc.Objective, seed int64, steps int, quiet bool) {
	snap := g.Snapshot()
	narrator := npc.NewNarrator(cast, snap.Player)

	fmt.Fprintf(out, "== game seed=%d turns=%d statements=%d commands=%d\n", seed, snap.Turn, snap.Statements, steps)
	if !quiet {
		turn := -1
		for _, st := range g.Statements(0) {
			if st.Turn != turn {
				turn = st.Turn
				fmt.Fprintf(out, "-- turn %d\n", turn+1)
			}
			fmt.Fprintln(out, narrator.Quote(st))
		}
	}
	for pos, row := range snap.Ranking {
		marker := ""
		if row.Character == snap.Player {
			marker = " (you)"
		}
		fmt.Fprintf(out, "%d. %-6s %+.3f  %s%s\n", pos+1, row.Name, row.Delta, npc.LevelText(row.Level), marker)
	}
	if objective != nil && objective.Type != "" {
		status := "failed"
		if objective.IsComplete(snap.Ranking, snap.Player) {
			status = "complete"
		}
		fmt.Fprintf(out, "objective: %s [%s]\n", objective.Desc, status)
	}
}
