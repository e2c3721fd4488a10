package replay

type WireTape struct {
	TapeVersion int             `json:"tapeVersion"`
	GameID      string          `json:"gameId"`
	Player      int             `json:"player"`
	Events      []WireTapeEvent `json:"events"`
}

type WireTapeEvent struct {
	Type        string `json:"type"`
	Seq         uint64 `json:"seq"`
	Step        int32  `json:"step"`
	Phase       string `json:"phase"`
	EnvelopeB64 string `json:"envelopeB64"`
}

func ToWireTape(tape *Tape) *WireTape {
	if tape == nil {
		return nil
	}
	out := &WireTape{
		TapeVersion: tape.TapeVersion,
		GameID:      tape.GameID,
		Player:      tape.Player,
		Events:      make([]WireTapeEvent, 0, len(tape.Events)),
	}
	for _, e := range tape.Events {
		out.Events = append(out.Events, WireTapeEvent{
			Type:        e.Type,
			Seq:         e.Seq,
			Step:        e.Step,
			Phase:       e.Phase,
			EnvelopeB64: e.EnvelopeB64,
		})
	}
	return out
}
