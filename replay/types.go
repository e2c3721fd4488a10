package replay

// ScriptSpec describes a scripted game: engine options plus the player's
// command sequence.
type ScriptSpec struct {
	Characters    int           `json:"characters"`
	Difficulty    int           `json:"difficulty"`
	Seed          *int64        `json:"seed,omitempty"`
	MaxTurns      int           `json:"max_turns,omitempty"`
	NpcTurnTicks  *int          `json:"npc_turn_ticks,omitempty"`
	DeceivePlayer bool          `json:"deceive_player,omitempty"`
	Strict        bool          `json:"strict,omitempty"`
	Commands      []CommandSpec `json:"commands"`
}

// CommandSpec is one player input. Only the field matching Type is read.
type CommandSpec struct {
	Type   string `json:"type"`
	Target int    `json:"target,omitempty"`
	Level  int    `json:"level,omitempty"`
	Delta  int    `json:"delta,omitempty"`
}

type Tape struct {
	TapeVersion int         `json:"tape_version"`
	GameID      string      `json:"game_id"`
	Player      int         `json:"player"`
	Events      []TapeEvent `json:"events"`
}

type TapeEvent struct {
	Type        string `json:"type"`
	Seq         uint64 `json:"seq"`
	Step        int32  `json:"step"`
	Phase       string `json:"phase"`
	EnvelopeB64 string `json:"envelope_b64,omitempty"`
}
