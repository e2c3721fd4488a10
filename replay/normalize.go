package replay

import (
	"fmt"
	"strings"

	"gossip-lite/gossip"
)

const commandAuto = "auto"

// Upper bound on resumes issued by one auto command; a full NPC turn needs
// NpcTurnTicks+1 of them.
const maxAutoResumes = 64

type normalizedCommand struct {
	auto  bool
	event gossip.Event
	label string
}

func normalizeSpec(spec ScriptSpec) (gossip.Config, []normalizedCommand, error) {
	cfg := gossip.Config{
		Characters:    spec.Characters,
		Difficulty:    gossip.Difficulty(spec.Difficulty),
		MaxTurns:      spec.MaxTurns,
		DeceivePlayer: spec.DeceivePlayer,
		Seed:          gossip.DefaultSeed,
	}
	if spec.Seed != nil {
		cfg.Seed = *spec.Seed
	}
	if spec.NpcTurnTicks != nil {
		if *spec.NpcTurnTicks == 0 {
			cfg.InstantNpcTurns = true
		} else {
			cfg.NpcTurnTicks = *spec.NpcTurnTicks
		}
	}
	if spec.Difficulty < int(gossip.DifficultyEasy) || spec.Difficulty > int(gossip.DifficultyHard) {
		return cfg, nil, &ReplayError{StepIndex: -1, Reason: "invalid_difficulty", Message: fmt.Sprintf("difficulty %d out of range", spec.Difficulty)}
	}

	cmds := make([]normalizedCommand, 0, len(spec.Commands))
	for i, c := range spec.Commands {
		nc, err := parseCommand(c)
		if err != nil {
			return cfg, nil, &ReplayError{StepIndex: int32(i), Reason: "invalid_command", Message: err.Error()}
		}
		cmds = append(cmds, nc)
	}
	return cfg, cmds, nil
}

func parseCommand(c CommandSpec) (normalizedCommand, error) {
	name := strings.ToLower(strings.TrimSpace(c.Type))
	if name == commandAuto {
		return normalizedCommand{auto: true, label: name}, nil
	}
	var kind gossip.EventKind
	found := false
	for k, v := range gossip.EventTypeDictionary {
		if v == name {
			kind, found = k, true
			break
		}
	}
	if !found {
		return normalizedCommand{}, fmt.Errorf("unknown command %q", c.Type)
	}
	ev := gossip.Event{Kind: kind}
	switch kind {
	case gossip.EventTypeSelect:
		ev.Arg = c.Target
	case gossip.EventTypeSetValue:
		ev.Arg = c.Level
	case gossip.EventTypeAdjust:
		ev.Arg = c.Delta
	}
	return normalizedCommand{event: ev, label: name}, nil
}
