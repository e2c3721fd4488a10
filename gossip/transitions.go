package gossip

import "gossip-lite/bounded"

type transitionKey struct {
	phase Phase
	kind  EventKind
}

type transition struct {
	guard func(g *Game, arg int) bool // nil accepts every argument
	apply func(g *Game, arg int)
}

var transitions = map[transitionKey]transition{
	// player calls
	{PhaseTypeSelectCallee, EventTypeSelect}:      {guard: (*Game).canCall, apply: (*Game).dial},
	{PhaseTypeRinging, EventTypeResume}:           {apply: goTo(PhaseTypeSelectPredicate)},
	{PhaseTypeSelectPredicate, EventTypeSelect}:   {guard: (*Game).canGossipAbout, apply: (*Game).choosePredicate},
	{PhaseTypeDeclareDirect, EventTypeSetValue}:   valueSetter,
	{PhaseTypeDeclareDirect, EventTypeAdjust}:     valueAdjuster,
	{PhaseTypeDeclareDirect, EventTypeConfirm}:    {apply: (*Game).playerDeclaresDirect},
	{PhaseTypeReactAnim1, EventTypeResume}:        {apply: goTo(PhaseTypeRespondDirect)},
	{PhaseTypeRespondDirect, EventTypeConfirm}:    {apply: (*Game).calleeRespondsDirect},
	{PhaseTypeDeclareIndirect, EventTypeSetValue}: valueSetter,
	{PhaseTypeDeclareIndirect, EventTypeAdjust}:   valueAdjuster,
	{PhaseTypeDeclareIndirect, EventTypeConfirm}:  {apply: (*Game).playerDeclaresIndirect},
	{PhaseTypeReactAnim2, EventTypeResume}:        {apply: goTo(PhaseTypeRespondIndirect)},
	{PhaseTypeRespondIndirect, EventTypeConfirm}:  {apply: (*Game).calleeRespondsIndirect},
	{PhaseTypeHangUp, EventTypeResume}:            {apply: (*Game).rotate},

	// npc calls the player
	{PhaseTypeNpcCalls, EventTypeResume}:                  {apply: goTo(PhaseTypeNpcDeclaresDirect)},
	{PhaseTypeNpcDeclaresDirect, EventTypeConfirm}:        {apply: (*Game).callerDeclaresDirect},
	{PhaseTypePlayerRespondsDirect, EventTypeSetValue}:    valueSetter,
	{PhaseTypePlayerRespondsDirect, EventTypeAdjust}:      valueAdjuster,
	{PhaseTypePlayerRespondsDirect, EventTypeConfirm}:     {apply: (*Game).playerRespondsDirect},
	{PhaseTypeReactAnim3, EventTypeResume}:                {apply: goTo(PhaseTypeNpcDeclaresIndirect)},
	{PhaseTypeNpcDeclaresIndirect, EventTypeConfirm}:      {apply: (*Game).callerDeclaresIndirect},
	{PhaseTypePlayerRespondsIndirect, EventTypeSetValue}:  valueSetter,
	{PhaseTypePlayerRespondsIndirect, EventTypeAdjust}:    valueAdjuster,
	{PhaseTypePlayerRespondsIndirect, EventTypeConfirm}:   {apply: (*Game).playerRespondsIndirect},
	{PhaseTypeReactAnim4, EventTypeResume}:                {apply: goTo(PhaseTypeNpcHangUp)},
	{PhaseTypeNpcHangUp, EventTypeResume}:                 {apply: (*Game).rotate},

	// npc-to-npc calls
	{PhaseTypeNpcTurn, EventTypeResume}: {apply: (*Game).tickNpcTurn},
}

var (
	valueSetter = transition{
		guard: func(_ *Game, level int) bool { return level >= 0 && level < bounded.Levels },
		apply: func(g *Game, level int) { g.pending = level },
	}
	valueAdjuster = transition{
		guard: func(g *Game, delta int) bool {
			next := g.pending + delta
			return (delta == 1 || delta == -1) && next >= 0 && next < bounded.Levels
		},
		apply: func(g *Game, delta int) { g.pending += delta },
	}
)

func goTo(p Phase) func(g *Game, _ int) {
	return func(g *Game, _ int) { g.phase = p }
}

func (g *Game) validCharacter(i int) bool { return i >= 0 && i < g.cfg.Characters }

func (g *Game) canCall(target int) bool {
	return g.validCharacter(target) && target != g.caller
}

func (g *Game) dial(target int) {
	g.callee = target
	g.phase = PhaseTypeRinging
}

func (g *Game) canGossipAbout(target int) bool {
	return g.validCharacter(target) && target != g.caller && target != g.callee
}

func (g *Game) choosePredicate(target int) {
	g.predicate = target
	g.pending = bounded.BoundedToLevel(g.rel.affinity[g.caller][target])
	g.phase = PhaseTypeDeclareDirect
}

func (g *Game) playerDeclaresDirect(_ int) {
	g.declareDirectLocked(g.pending, g.cfg.Player, g.callee, g.predicate)
	g.phase = PhaseTypeReactAnim1
}

func (g *Game) calleeRespondsDirect(_ int) {
	player := g.cfg.Player
	g.declareDirectLocked(g.directToPlayerLocked(g.callee, g.predicate), g.callee, player, g.predicate)
	g.pending = bounded.BoundedToLevel(g.rel.perceived[player][g.predicate][g.callee])
	g.phase = PhaseTypeDeclareIndirect
}

func (g *Game) playerDeclaresIndirect(_ int) {
	g.declareIndirectLocked(g.pending, g.predicate, g.cfg.Player, g.callee)
	g.phase = PhaseTypeReactAnim2
}

func (g *Game) calleeRespondsIndirect(_ int) {
	g.declareIndirectLocked(g.indirectToPlayerLocked(g.callee, g.predicate), g.predicate, g.callee, g.cfg.Player)
	g.phase = PhaseTypeHangUp
}

func (g *Game) callerDeclaresDirect(_ int) {
	player := g.cfg.Player
	g.declareDirectLocked(g.directToPlayerLocked(g.caller, g.predicate), g.caller, player, g.predicate)
	g.pending = bounded.BoundedToLevel(g.rel.affinity[player][g.predicate])
	g.phase = PhaseTypePlayerRespondsDirect
}

func (g *Game) playerRespondsDirect(_ int) {
	g.declareDirectLocked(g.pending, g.cfg.Player, g.caller, g.predicate)
	g.phase = PhaseTypeReactAnim3
}

func (g *Game) callerDeclaresIndirect(_ int) {
	player := g.cfg.Player
	g.declareIndirectLocked(g.indirectToPlayerLocked(g.caller, g.predicate), g.predicate, g.caller, player)
	g.pending = bounded.BoundedToLevel(g.rel.perceived[player][g.predicate][g.caller])
	g.phase = PhaseTypePlayerRespondsIndirect
}

func (g *Game) playerRespondsIndirect(_ int) {
	g.declareIndirectLocked(g.pending, g.predicate, g.cfg.Player, g.caller)
	g.phase = PhaseTypeReactAnim4
}

func (g *Game) tickNpcTurn(_ int) {
	g.subPhase++
	if g.subPhase >= g.cfg.NpcTurnTicks {
		g.rotate(0)
	}
}
