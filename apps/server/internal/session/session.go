// Package session runs one game per actor goroutine and streams its state to
// subscribed connections.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gossip-lite/apps/server/internal/codec"
	"gossip-lite/apps/server/internal/ledger"
	"gossip-lite/gossip"
	"gossip-lite/gossip/npc"
	"gossip-lite/wire"

	"github.com/charmbracelet/log"
	"google.golang.org/protobuf/types/known/structpb"
)

// Event types for the actor message queue
type EventType int

const (
	EventCommand EventType = iota
	EventResume
	EventClose
)

type Event struct {
	Type    EventType
	Command gossip.Event
	// Generation ties a resume to the timer that produced it.
	Generation uint64
	Response   chan error
}

var ErrSessionClosed = errors.New("session closed")

// FinishHook runs on the actor goroutine once the game reaches game over.
type FinishHook func(id string, snap gossip.Snapshot, narrator *npc.Narrator)

type Options struct {
	ID         string
	Game       gossip.Config
	Cast       []*npc.Persona
	ScenarioID string
	Objective  *npc.Objective
	Timing     Timing
	Ledger     ledger.Service
	Logger     *log.Logger
	OnFinish   FinishHook
}

type Session struct {
	ID string

	mu         sync.RWMutex
	game       *gossip.Game
	difficulty gossip.Difficulty
	narrator   *npc.Narrator
	scenarioID string
	objective  *npc.Objective
	timing     Timing
	ledger     ledger.Service
	logger     *log.Logger
	onFinish   FinishHook

	events   chan Event
	done     chan struct{}
	closed   bool
	stopOnce sync.Once

	serverSeq  uint64
	generation uint64
	timer      *time.Timer
	lastActive time.Time

	// what has been streamed so far
	statements int
	reaction   int
	phase      gossip.Phase
	finished   bool

	subscribers map[string]func(data []byte)
}

func New(opts Options) (*Session, error) {
	game, err := gossip.NewGame(opts.Game)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", opts.ID, err)
	}
	if opts.Ledger == nil {
		return nil, fmt.Errorf("session %s: nil ledger", opts.ID)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	cfg := game.Config()

	s := &Session{
		ID:          opts.ID,
		game:        game,
		difficulty:  cfg.Difficulty,
		narrator:    npc.NewNarrator(opts.Cast, cfg.Player),
		scenarioID:  opts.ScenarioID,
		objective:   opts.Objective,
		timing:      opts.Timing,
		ledger:      opts.Ledger,
		logger:      logger.WithPrefix("Session").With("game", opts.ID),
		onFinish:    opts.OnFinish,
		events:      make(chan Event, 64),
		done:        make(chan struct{}),
		lastActive:  time.Now(),
		reaction:    -1,
		phase:       game.Phase(),
		subscribers: make(map[string]func([]byte)),
	}

	s.mu.Lock()
	s.scheduleLocked()
	s.mu.Unlock()

	go s.run()

	s.logger.Info("created", "characters", cfg.Characters, "difficulty", cfg.Difficulty, "turns", cfg.MaxTurns)
	return s, nil
}

func (s *Session) run() {
	for {
		select {
		case event := <-s.events:
			err := s.handleEvent(event)
			if event.Response != nil {
				event.Response <- err
			}
		case <-s.done:
			s.logger.Debug("actor stopped")
			return
		}
	}
}

func (s *Session) handleEvent(e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed && e.Type != EventClose {
		return ErrSessionClosed
	}

	switch e.Type {
	case EventCommand:
		if err := s.game.Apply(e.Command); err != nil {
			return err
		}
		s.lastActive = time.Now()
		s.afterChangeLocked()
		return nil
	case EventResume:
		if e.Generation != s.generation {
			s.logger.Debug("stale resume dropped", "generation", e.Generation, "current", s.generation)
			return nil
		}
		s.timer = nil
		if err := s.game.Apply(gossip.Event{Kind: gossip.EventTypeResume}); err != nil {
			s.logger.Warn("resume rejected", "phase", s.game.Phase(), "err", err)
			return err
		}
		s.afterChangeLocked()
		return nil
	case EventClose:
		s.stopLocked()
		return nil
	default:
		return fmt.Errorf("unknown event type: %d", e.Type)
	}
}

func (s *Session) afterChangeLocked() {
	s.publishLocked()
	s.scheduleLocked()
}

// scheduleLocked arms the resume timer for phases that advance on their own.
// Every call invalidates earlier timers.
func (s *Session) scheduleLocked() {
	s.generation++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	phase := s.game.Phase()
	if s.closed || !phase.AwaitsResume() {
		return
	}
	gen := s.generation
	s.timer = time.AfterFunc(s.timing.Delay(phase, s.difficulty), func() {
		s.post(Event{Type: EventResume, Generation: gen})
	})
}

// publishLocked streams everything that changed since the last call.
func (s *Session) publishLocked() {
	now := time.Now()
	snap := s.game.Snapshot()

	fresh := s.game.Statements(s.statements)
	for _, st := range fresh {
		payload, err := codec.StatementPayload(st, s.narrator)
		s.emitLocked(now, wire.KindStatement, payload, err)
	}
	s.statements = snap.Statements
	if len(fresh) > 0 {
		s.appendStatementsLocked(fresh)
	}

	if r := snap.LastReaction; r != nil && r.Seq != s.reaction {
		payload, err := codec.ReactionPayload(*r, s.narrator)
		s.emitLocked(now, wire.KindReaction, payload, err)
		s.reaction = r.Seq
	}

	if snap.Phase != s.phase {
		payload := &structpb.Struct{Fields: map[string]*structpb.Value{
			"from": structpb.NewStringValue(s.phase.String()),
			"to":   structpb.NewStringValue(snap.Phase.String()),
		}}
		s.emitLocked(now, wire.KindPhaseChange, payload, nil)
		s.phase = snap.Phase
	}

	payload, err := codec.SnapshotPayload(snap, s.narrator)
	s.emitLocked(now, wire.KindSnapshot, payload, err)

	if snap.Ended && !s.finished {
		payload, err := codec.GameOverPayload(snap, s.objective)
		s.emitLocked(now, wire.KindGameOver, payload, err)
		s.finishLocked(snap, now)
	}
}

func (s *Session) emitLocked(now time.Time, kind string, payload *structpb.Struct, buildErr error) {
	if buildErr != nil {
		s.logger.Error("build payload failed", "kind", kind, "err", buildErr)
		return
	}
	s.serverSeq++
	data, err := codec.Encode(s.ID, s.serverSeq, now, kind, payload)
	if err != nil {
		s.logger.Error("encode frame failed", "kind", kind, "seq", s.serverSeq, "err", err)
		return
	}
	for _, send := range s.subscribers {
		send(data)
	}
}

func (s *Session) appendStatementsLocked(statements []gossip.Statement) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.ledger.AppendStatements(ctx, s.ID, statements); err != nil {
		s.logger.Error("append statements failed", "from", statements[0].Seq, "count", len(statements), "err", err)
	}
}

func (s *Session) finishLocked(snap gossip.Snapshot, now time.Time) {
	s.finished = true
	result := ledger.ResultFromSnapshot(s.ID, snap, s.difficulty, now)
	result.ScenarioID = s.scenarioID
	if s.objective != nil && s.objective.Type != "" {
		met := s.objective.IsComplete(snap.Ranking, snap.Player)
		result.Objective = &met
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.ledger.RecordResult(ctx, result); err != nil {
		s.logger.Error("record result failed", "err", err)
	}
	s.logger.Info("game over", "turns", snap.Turn, "player_rank", result.PlayerRank)
	if s.onFinish != nil {
		s.onFinish(s.ID, snap, s.narrator)
	}
}

// post queues an event without waiting for the result.
func (s *Session) post(e Event) {
	select {
	case s.events <- e:
	case <-s.done:
	}
}

// SubmitEvent sends an event to the actor and waits for it to be handled.
func (s *Session) SubmitEvent(e Event) error {
	if e.Response == nil {
		e.Response = make(chan error, 1)
	}

	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return ErrSessionClosed
	}

	select {
	case s.events <- e:
	case <-s.done:
		return ErrSessionClosed
	}

	select {
	case err := <-e.Response:
		return err
	case <-s.done:
		return ErrSessionClosed
	}
}

// Command delivers a player command.
func (s *Session) Command(ev gossip.Event) error {
	return s.SubmitEvent(Event{Type: EventCommand, Command: ev})
}

// Subscribe registers send for every frame of this game and immediately
// sends it the current snapshot. send must not block.
func (s *Session) Subscribe(id string, send func(data []byte)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.subscribers[id] = send
	s.lastActive = time.Now()
	return s.sendSnapshotLocked(send)
}

func (s *Session) Unsubscribe(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subscribers, id)
	s.lastActive = time.Now()
}

// SendSnapshot resends the current snapshot to one subscriber.
func (s *Session) SendSnapshot(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	send, ok := s.subscribers[id]
	if !ok {
		return fmt.Errorf("%s is not subscribed to %s", id, s.ID)
	}
	return s.sendSnapshotLocked(send)
}

func (s *Session) sendSnapshotLocked(send func([]byte)) error {
	payload, err := codec.SnapshotPayload(s.game.Snapshot(), s.narrator)
	if err != nil {
		return err
	}
	s.serverSeq++
	data, err := codec.Encode(s.ID, s.serverSeq, time.Now(), wire.KindSnapshot, payload)
	if err != nil {
		return err
	}
	send(data)
	return nil
}

// Close stops the actor and any pending timer.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Session) stopLocked() {
	s.closed = true
	s.generation++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.stopOnce.Do(func() {
		close(s.done)
		s.logger.Info("closed", "statements", s.statements)
	})
}

// IsIdleFor reports whether nobody has watched or played the game for ttl.
func (s *Session) IsIdleFor(ttl time.Duration) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return true
	}
	if len(s.subscribers) > 0 {
		return false
	}
	return time.Since(s.lastActive) >= ttl
}

func (s *Session) IsClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// Snapshot returns current game state (thread-safe)
func (s *Session) Snapshot() gossip.Snapshot {
	return s.game.Snapshot()
}

// Narrator renders this game's text.
func (s *Session) Narrator() *npc.Narrator {
	return s.narrator
}
