// Package lobby owns the live game sessions and remembers how recently
// closed games ended.
package lobby

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"gossip-lite/apps/server/internal/codec"
	"gossip-lite/apps/server/internal/ledger"
	"gossip-lite/apps/server/internal/session"
	"gossip-lite/gossip"
	"gossip-lite/gossip/npc"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"google.golang.org/protobuf/encoding/protojson"
)

const defaultCharacters = 6

type Options struct {
	Ledger            ledger.Service
	Timing            session.Timing
	Personas          *npc.PersonaRegistry
	Scenarios         *npc.ScenarioRegistry
	IdleTTL           time.Duration
	FinishedCacheSize int
	Logger            *log.Logger
}

// NewGameRequest selects either a scenario or an ad-hoc cast.
type NewGameRequest struct {
	Scenario      string   `json:"scenario,omitempty"`
	Characters    int      `json:"characters,omitempty"`
	Cast          []string `json:"cast,omitempty"`
	Difficulty    int      `json:"difficulty"`
	MaxTurns      int      `json:"max_turns,omitempty"`
	Seed          int64    `json:"seed,omitempty"`
	DeceivePlayer bool     `json:"deceive_player,omitempty"`
}

// Lobby manages all sessions
type Lobby struct {
	mu       sync.RWMutex
	sessions map[string]*session.Session
	finished *lru.Cache[string, json.RawMessage]

	ledger    ledger.Service
	timing    session.Timing
	personas  *npc.PersonaRegistry
	scenarios *npc.ScenarioRegistry
	idleTTL   time.Duration
	logger    *log.Logger
}

func New(opts Options) (*Lobby, error) {
	if opts.Ledger == nil {
		return nil, fmt.Errorf("lobby: nil ledger")
	}
	if opts.Personas == nil {
		reg, err := npc.NewDefaultRegistry()
		if err != nil {
			return nil, fmt.Errorf("lobby: default personas: %w", err)
		}
		opts.Personas = reg
	}
	if opts.Scenarios == nil {
		reg, err := npc.NewDefaultScenarioRegistry()
		if err != nil {
			return nil, fmt.Errorf("lobby: default scenarios: %w", err)
		}
		opts.Scenarios = reg
	}
	if opts.FinishedCacheSize <= 0 {
		opts.FinishedCacheSize = 128
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	cache, err := lru.New[string, json.RawMessage](opts.FinishedCacheSize)
	if err != nil {
		return nil, fmt.Errorf("lobby: finished cache: %w", err)
	}
	return &Lobby{
		sessions:  make(map[string]*session.Session),
		finished:  cache,
		ledger:    opts.Ledger,
		timing:    opts.Timing,
		personas:  opts.Personas,
		scenarios: opts.Scenarios,
		idleTTL:   opts.IdleTTL,
		logger:    opts.Logger.WithPrefix("Lobby"),
	}, nil
}

// Create starts a new session.
func (l *Lobby) Create(req NewGameRequest) (*session.Session, error) {
	id := uuid.NewString()
	opts := session.Options{
		ID:     id,
		Timing: l.timing,
		Ledger: l.ledger,
		Logger: l.logger,
	}

	if req.Scenario != "" {
		if err := l.applyScenario(&opts, req); err != nil {
			return nil, err
		}
	} else {
		n := req.Characters
		if n == 0 {
			n = len(req.Cast)
		}
		if n == 0 {
			n = defaultCharacters
		}
		cast, err := l.personas.Cast(n, req.Cast...)
		if err != nil {
			return nil, err
		}
		opts.Cast = cast
		opts.Game = gossip.Config{
			Characters: len(cast),
			Cast:       npc.Characters(cast),
			Difficulty: gossip.Difficulty(req.Difficulty),
			MaxTurns:   req.MaxTurns,
			Seed:       req.Seed,
		}
	}
	opts.Game.DeceivePlayer = req.DeceivePlayer
	opts.OnFinish = l.cacheFinal

	s, err := session.New(opts)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.sessions[id] = s
	total := len(l.sessions)
	l.mu.Unlock()

	l.logger.Info("game created", "game", id, "scenario", opts.ScenarioID, "characters", len(opts.Cast), "total", total)
	return s, nil
}

func (l *Lobby) Get(id string) *session.Session {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sessions[id]
}

// ListGames returns the ids of live sessions, sorted.
func (l *Lobby) ListGames() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := make([]string, 0, len(l.sessions))
	for id := range l.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Final returns the encoded last snapshot of a finished or closed game.
func (l *Lobby) Final(id string) (json.RawMessage, bool) {
	return l.finished.Get(id)
}

// cacheFinal runs on the session goroutine while it holds the session lock,
// so it must not take l.mu.
func (l *Lobby) cacheFinal(id string, snap gossip.Snapshot, n *npc.Narrator) {
	payload, err := codec.SnapshotPayload(snap, n)
	if err != nil {
		l.logger.Error("encode final snapshot failed", "game", id, "err", err)
		return
	}
	data, err := protojson.Marshal(payload)
	if err != nil {
		l.logger.Error("encode final snapshot failed", "game", id, "err", err)
		return
	}
	l.finished.Add(id, data)
}

// Reap closes sessions idle for longer than the configured ttl and keeps
// their last snapshot.
func (l *Lobby) Reap() int {
	l.mu.RLock()
	live := make([]*session.Session, 0, len(l.sessions))
	for _, s := range l.sessions {
		live = append(live, s)
	}
	l.mu.RUnlock()

	// Session locks are never taken under l.mu.
	var idle []*session.Session
	for _, s := range live {
		if s.IsIdleFor(l.idleTTL) {
			idle = append(idle, s)
		}
	}
	if len(idle) == 0 {
		return 0
	}

	l.mu.Lock()
	for _, s := range idle {
		delete(l.sessions, s.ID)
	}
	l.mu.Unlock()

	for _, s := range idle {
		s.Close()
		if _, ok := l.finished.Peek(s.ID); !ok {
			l.cacheFinal(s.ID, s.Snapshot(), s.Narrator())
		}
	}
	l.logger.Info("reaped idle games", "count", len(idle))
	return len(idle)
}

// RunReaper reaps every interval until ctx is done.
func (l *Lobby) RunReaper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			l.Reap()
		}
	}
}

// Close stops every live session.
func (l *Lobby) Close() {
	l.mu.Lock()
	sessions := l.sessions
	l.sessions = make(map[string]*session.Session)
	l.mu.Unlock()
	for _, s := range sessions {
		s.Close()
	}
}
