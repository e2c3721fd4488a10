// Package wire converts engine state into protobuf well-known types so the
// replay tape and the realtime gateway share one envelope format.
package wire

import (
	"encoding/base64"
	"fmt"

	"gossip-lite/gossip"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Envelope payload kinds.
const (
	KindSnapshot    = "snapshot"
	KindStatement   = "statement"
	KindReaction    = "reaction"
	KindPhaseChange = "phaseChange"
	KindGameOver    = "gameOver"
	KindError       = "error"
)

// Envelope wraps a payload with routing fields. TsMs is left to the caller so
// tapes stay deterministic.
func Envelope(gameID string, seq uint64, tsMs int64, kind string, payload *structpb.Struct) *structpb.Struct {
	fields := map[string]*structpb.Value{
		"gameId": structpb.NewStringValue(gameID),
		"seq":    structpb.NewNumberValue(float64(seq)),
		"kind":   structpb.NewStringValue(kind),
	}
	if tsMs != 0 {
		fields["tsMs"] = structpb.NewNumberValue(float64(tsMs))
	}
	if payload != nil {
		fields[kind] = structpb.NewStructValue(payload)
	}
	return &structpb.Struct{Fields: fields}
}

// EncodeB64 is base64(proto.Marshal(env)) with deterministic field order.
func EncodeB64(env *structpb.Struct) (string, error) {
	raw, err := proto.MarshalOptions{Deterministic: true}.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("marshal envelope: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodeB64 reverses EncodeB64.
func DecodeB64(s string) (*structpb.Struct, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	out := &structpb.Struct{}
	if err := proto.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}
	return out, nil
}

// EncodeJSON renders the envelope as protojson for text transports.
func EncodeJSON(env *structpb.Struct) ([]byte, error) {
	return protojson.MarshalOptions{UseProtoNames: false}.Marshal(env)
}

func SnapshotToStruct(s gossip.Snapshot) (*structpb.Struct, error) {
	chars := make([]any, 0, len(s.Characters))
	for _, c := range s.Characters {
		chars = append(chars, map[string]any{
			"index":       c.Index,
			"name":        c.Name,
			"player":      c.Player,
			"popularity":  c.Popularity,
			"dishonesty":  c.Dishonesty,
			"gullibility": c.Gullibility,
			"vanity":      c.Vanity,
		})
	}
	ranking := make([]any, 0, len(s.Ranking))
	for _, r := range s.Ranking {
		ranking = append(ranking, rankMap(r))
	}

	m := map[string]any{
		"turn":            s.Turn,
		"maxTurns":        s.MaxTurns,
		"phase":           s.Phase.String(),
		"subPhase":        s.SubPhase,
		"ended":           s.Ended,
		"player":          s.Player,
		"caller":          s.Caller,
		"callee":          s.Callee,
		"predicate":       s.Predicate,
		"pendingValue":    s.PendingValue,
		"awaitingResume":  s.AwaitingResume,
		"statements":      s.Statements,
		"characters":      chars,
		"affinityLevels":  intGrid(s.AffinityLevels),
		"perceivedLevels": intGrid(s.PerceivedLevels),
		"popularity":      floatGrid(s.Popularity),
		"ranking":         ranking,
	}
	if s.LastReaction != nil {
		m["lastReaction"] = reactionMap(*s.LastReaction)
	}
	return structpb.NewStruct(m)
}

func StatementToStruct(st gossip.Statement) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"seq":       st.Seq,
		"turn":      st.Turn,
		"speaker":   st.Speaker,
		"listener":  st.Listener,
		"source":    st.Source,
		"predicate": st.Predicate,
		"level":     st.Level,
		"direct":    st.Direct(),
	})
}

func ReactionToStruct(r gossip.Reaction) (*structpb.Struct, error) {
	return structpb.NewStruct(reactionMap(r))
}

func RankingToStruct(ranking []gossip.RankEntry) (*structpb.Struct, error) {
	list := make([]any, 0, len(ranking))
	for _, r := range ranking {
		list = append(list, rankMap(r))
	}
	return structpb.NewStruct(map[string]any{"ranking": list})
}

func ErrorToStruct(code, message string) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"code":    structpb.NewStringValue(code),
		"message": structpb.NewStringValue(message),
	}}
}

func reactionMap(r gossip.Reaction) map[string]any {
	return map[string]any{
		"seq":           r.Seq,
		"speaker":       r.Speaker,
		"listener":      r.Listener,
		"source":        r.Source,
		"predicate":     r.Predicate,
		"direct":        r.Direct,
		"level":         r.Level,
		"suspicion":     r.Suspicion,
		"likeWhatIHear": r.LikeWhatIHear,
		"face":          r.Face,
	}
}

func rankMap(r gossip.RankEntry) map[string]any {
	return map[string]any{
		"character": r.Character,
		"name":      r.Name,
		"first":     r.First,
		"last":      r.Last,
		"delta":     r.Delta,
		"level":     r.Level,
	}
}

// structpb only accepts []any for lists.
func intGrid(g [][]int) []any {
	out := make([]any, len(g))
	for i, row := range g {
		r := make([]any, len(row))
		for j, v := range row {
			r[j] = v
		}
		out[i] = r
	}
	return out
}

func floatGrid(g [][]float64) []any {
	out := make([]any, len(g))
	for i, row := range g {
		r := make([]any, len(row))
		for j, v := range row {
			r[j] = v
		}
		out[i] = r
	}
	return out
}
