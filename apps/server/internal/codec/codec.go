// Package codec builds the protojson frames the gateway sends to clients.
package codec

import (
	"time"

	"gossip-lite/gossip"
	"gossip-lite/gossip/npc"
	"gossip-lite/wire"

	"google.golang.org/protobuf/types/known/structpb"
)

// Encode wraps payload in a server envelope stamped with now.
func Encode(gameID string, seq uint64, now time.Time, kind string, payload *structpb.Struct) ([]byte, error) {
	return wire.EncodeJSON(wire.Envelope(gameID, seq, now.UnixMilli(), kind, payload))
}

// ErrorFrame never fails; an error payload has no unencodable fields.
func ErrorFrame(gameID string, seq uint64, now time.Time, code, message string) []byte {
	data, _ := Encode(gameID, seq, now, wire.KindError, wire.ErrorToStruct(code, message))
	return data
}

// SnapshotPayload adds the phase prompt to the snapshot when a narrator is
// available.
func SnapshotPayload(snap gossip.Snapshot, n *npc.Narrator) (*structpb.Struct, error) {
	s, err := wire.SnapshotToStruct(snap)
	if err != nil {
		return nil, err
	}
	if n != nil {
		s.Fields["prompt"] = structpb.NewStringValue(n.Prompt(snap))
	}
	return s, nil
}

func StatementPayload(st gossip.Statement, n *npc.Narrator) (*structpb.Struct, error) {
	s, err := wire.StatementToStruct(st)
	if err != nil {
		return nil, err
	}
	if n != nil {
		s.Fields["text"] = structpb.NewStringValue(n.Quote(st))
	}
	return s, nil
}

func ReactionPayload(r gossip.Reaction, n *npc.Narrator) (*structpb.Struct, error) {
	s, err := wire.ReactionToStruct(r)
	if err != nil {
		return nil, err
	}
	if n != nil {
		if text := n.React(r); text != "" {
			s.Fields["text"] = structpb.NewStringValue(text)
		}
	}
	return s, nil
}

// GameOverPayload carries the final ranking and, for scenario games, whether
// the objective was met.
func GameOverPayload(snap gossip.Snapshot, objective *npc.Objective) (*structpb.Struct, error) {
	s, err := wire.RankingToStruct(snap.Ranking)
	if err != nil {
		return nil, err
	}
	if objective != nil && objective.Type != "" {
		s.Fields["objective"] = structpb.NewStringValue(objective.Desc)
		s.Fields["objectiveMet"] = structpb.NewBoolValue(objective.IsComplete(snap.Ranking, snap.Player))
	}
	return s, nil
}
