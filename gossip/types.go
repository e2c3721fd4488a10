package gossip

const (
	// Nobody marks an empty conversation role.
	Nobody = -1
	// Anybody matches every predicate in recency lookups.
	Anybody = -2
)

// Phase is the conversation phase.
type Phase byte

const (
	PhaseTypeSelectCallee    Phase = 0
	PhaseTypeRinging         Phase = 1
	PhaseTypeSelectPredicate Phase = 2
	PhaseTypeDeclareDirect   Phase = 3
	PhaseTypeReactAnim1      Phase = 4
	PhaseTypeRespondDirect   Phase = 5
	PhaseTypeDeclareIndirect Phase = 6
	PhaseTypeReactAnim2      Phase = 7
	PhaseTypeRespondIndirect Phase = 8
	PhaseTypeHangUp          Phase = 9

	PhaseTypeNpcTurn                Phase = 10
	PhaseTypeNpcCalls               Phase = 11
	PhaseTypeNpcDeclaresDirect      Phase = 12
	PhaseTypePlayerRespondsDirect   Phase = 13
	PhaseTypeReactAnim3             Phase = 14
	PhaseTypeNpcDeclaresIndirect    Phase = 15
	PhaseTypePlayerRespondsIndirect Phase = 16
	PhaseTypeReactAnim4             Phase = 17
	PhaseTypeNpcHangUp              Phase = 18

	PhaseTypeGameOver Phase = 19
)

var PhaseTypeDictionary = map[Phase]string{
	PhaseTypeSelectCallee:           "select_callee",
	PhaseTypeRinging:                "ringing",
	PhaseTypeSelectPredicate:        "select_predicate",
	PhaseTypeDeclareDirect:          "declare_direct",
	PhaseTypeReactAnim1:             "react_anim_1",
	PhaseTypeRespondDirect:          "respond_direct",
	PhaseTypeDeclareIndirect:        "declare_indirect",
	PhaseTypeReactAnim2:             "react_anim_2",
	PhaseTypeRespondIndirect:        "respond_indirect",
	PhaseTypeHangUp:                 "hang_up",
	PhaseTypeNpcTurn:                "npc_turn",
	PhaseTypeNpcCalls:               "npc_calls",
	PhaseTypeNpcDeclaresDirect:      "npc_declares_direct",
	PhaseTypePlayerRespondsDirect:   "player_responds_direct",
	PhaseTypeReactAnim3:             "react_anim_3",
	PhaseTypeNpcDeclaresIndirect:    "npc_declares_indirect",
	PhaseTypePlayerRespondsIndirect: "player_responds_indirect",
	PhaseTypeReactAnim4:             "react_anim_4",
	PhaseTypeNpcHangUp:              "npc_hang_up",
	PhaseTypeGameOver:               "game_over",
}

func (p Phase) String() string {
	if s, ok := PhaseTypeDictionary[p]; ok {
		return s
	}
	return "unknown"
}

// AwaitsResume reports whether the phase only advances on Resume.
func (p Phase) AwaitsResume() bool {
	switch p {
	case PhaseTypeRinging, PhaseTypeReactAnim1, PhaseTypeReactAnim2, PhaseTypeHangUp,
		PhaseTypeNpcTurn, PhaseTypeNpcCalls, PhaseTypeReactAnim3, PhaseTypeReactAnim4, PhaseTypeNpcHangUp:
		return true
	}
	return false
}

// IsReaction reports whether the phase plays a listener's reaction.
func (p Phase) IsReaction() bool {
	switch p {
	case PhaseTypeReactAnim1, PhaseTypeReactAnim2, PhaseTypeReactAnim3, PhaseTypeReactAnim4:
		return true
	}
	return false
}

// EventKind is a trigger delivered to the phase machine.
type EventKind byte

const (
	EventTypeSelect   EventKind = 1
	EventTypeSetValue EventKind = 2
	EventTypeAdjust   EventKind = 3
	EventTypeConfirm  EventKind = 4
	EventTypeResume   EventKind = 5
)

var EventTypeDictionary = map[EventKind]string{
	EventTypeSelect:   "select",
	EventTypeSetValue: "value",
	EventTypeAdjust:   "adjust",
	EventTypeConfirm:  "enter",
	EventTypeResume:   "resume",
}

func (e EventKind) String() string {
	if s, ok := EventTypeDictionary[e]; ok {
		return s
	}
	return "unknown"
}

// Difficulty scales perception noise and NPC dishonesty.
type Difficulty int

const (
	DifficultyEasy   Difficulty = 0
	DifficultyMedium Difficulty = 1
	DifficultyHard   Difficulty = 2
)

var DifficultyDictionary = map[Difficulty]string{
	DifficultyEasy:   "easy",
	DifficultyMedium: "medium",
	DifficultyHard:   "hard",
}

// Default values of the stock cast and options.
const (
	DefaultSeed         int64 = 27
	DefaultNpcTurnTicks       = 4
	MinCharacters             = 3
)
