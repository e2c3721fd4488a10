package replay

import (
	"fmt"

	"gossip-lite/gossip"
	"gossip-lite/wire"

	"google.golang.org/protobuf/types/known/structpb"
)

const defaultGameID = "replay_local"

const tapeVersion = 1

// GenerateTape runs the script against a fresh engine and records every observable
// change. The same script always yields the same tape.
func GenerateTape(spec ScriptSpec) (*Tape, error) {
	cfg, cmds, err := normalizeSpec(spec)
	if err != nil {
		return nil, err
	}
	game, err := gossip.NewGame(cfg)
	if err != nil {
		return nil, &ReplayError{StepIndex: -1, Reason: "engine_init_failed", Message: err.Error()}
	}

	b := newTapeBuilder(defaultGameID)
	if err := b.observe(-1, game); err != nil {
		return nil, err
	}

	for stepIdx, cmd := range cmds {
		step := int32(stepIdx)
		if game.Ended() {
			return nil, &ReplayError{
				StepIndex: step,
				Reason:    "game_over",
				Message:   "game is already over; no further commands are allowed",
				Expected:  expectedState(game),
			}
		}
		if cmd.auto {
			if err := b.autoResume(step, game); err != nil {
				return nil, err
			}
			continue
		}
		if err := game.Apply(cmd.event); err != nil {
			if spec.Strict {
				return nil, &ReplayError{
					StepIndex: step,
					Reason:    "command_rejected",
					Message:   fmt.Sprintf("%s: %v", cmd.label, err),
					Expected:  expectedState(game),
				}
			}
			if err := b.addRejected(step, game, cmd.label, err); err != nil {
				return nil, err
			}
			continue
		}
		if err := b.observe(step, game); err != nil {
			return nil, err
		}
	}

	return &Tape{
		TapeVersion: tapeVersion,
		GameID:      b.gameID,
		Player:      game.Config().Player,
		Events:      b.events,
	}, nil
}

func expectedState(g *gossip.Game) *ExpectedState {
	s := g.Snapshot()
	return &ExpectedState{
		Phase:          s.Phase.String(),
		AwaitingResume: s.AwaitingResume,
		Caller:         s.Caller,
		Callee:         s.Callee,
		Predicate:      s.Predicate,
	}
}

type tapeBuilder struct {
	gameID     string
	seq        uint64
	events     []TapeEvent
	statements int
	reaction   int
	phase      gossip.Phase
	started    bool
}

func newTapeBuilder(gameID string) *tapeBuilder {
	return &tapeBuilder{gameID: gameID, reaction: -1}
}

// autoResume resumes until the engine wants player input.
func (b *tapeBuilder) autoResume(step int32, g *gossip.Game) error {
	for i := 0; i < maxAutoResumes; i++ {
		if g.Ended() || !g.Phase().AwaitsResume() {
			return nil
		}
		if err := g.Apply(gossip.Event{Kind: gossip.EventTypeResume}); err != nil {
			return &ReplayError{StepIndex: step, Reason: "resume_failed", Message: err.Error(), Expected: expectedState(g)}
		}
		if err := b.observe(step, g); err != nil {
			return err
		}
	}
	return nil
}

// observe diffs the engine against what the tape has already recorded.
func (b *tapeBuilder) observe(step int32, g *gossip.Game) error {
	snap := g.Snapshot()
	phase := snap.Phase.String()

	for _, st := range g.Statements(b.statements) {
		payload, err := wire.StatementToStruct(st)
		if err != nil {
			return b.encodeErr(step, err)
		}
		if err := b.push(step, phase, wire.KindStatement, payload); err != nil {
			return err
		}
	}
	b.statements = snap.Statements

	if r := snap.LastReaction; r != nil && r.Seq != b.reaction {
		payload, err := wire.ReactionToStruct(*r)
		if err != nil {
			return b.encodeErr(step, err)
		}
		if err := b.push(step, phase, wire.KindReaction, payload); err != nil {
			return err
		}
		b.reaction = r.Seq
	}

	if b.started && snap.Phase != b.phase {
		payload := &structpb.Struct{Fields: map[string]*structpb.Value{
			"from": structpb.NewStringValue(b.phase.String()),
			"to":   structpb.NewStringValue(phase),
		}}
		if err := b.push(step, phase, wire.KindPhaseChange, payload); err != nil {
			return err
		}
	}
	b.phase, b.started = snap.Phase, true

	payload, err := wire.SnapshotToStruct(snap)
	if err != nil {
		return b.encodeErr(step, err)
	}
	if err := b.push(step, phase, wire.KindSnapshot, payload); err != nil {
		return err
	}

	if snap.Ended {
		payload, err := wire.RankingToStruct(snap.Ranking)
		if err != nil {
			return b.encodeErr(step, err)
		}
		return b.push(step, phase, wire.KindGameOver, payload)
	}
	return nil
}

func (b *tapeBuilder) addRejected(step int32, g *gossip.Game, label string, cause error) error {
	payload := wire.ErrorToStruct("command_rejected", fmt.Sprintf("%s: %v", label, cause))
	return b.push(step, g.Phase().String(), wire.KindError, payload)
}

func (b *tapeBuilder) push(step int32, phase, kind string, payload *structpb.Struct) error {
	b.seq++
	env := wire.Envelope(b.gameID, b.seq, 0, kind, payload)
	encoded, err := wire.EncodeB64(env)
	if err != nil {
		return b.encodeErr(step, err)
	}
	b.events = append(b.events, TapeEvent{
		Type:        kind,
		Seq:         b.seq,
		Step:        step,
		Phase:       phase,
		EnvelopeB64: encoded,
	})
	return nil
}

func (b *tapeBuilder) encodeErr(step int32, err error) error {
	return &ReplayError{StepIndex: step, Reason: "encode_failed", Message: err.Error()}
}
