// Package ledger persists the statements spoken in each game and the final
// standings of finished games.
package ledger

import (
	"context"
	"errors"
	"time"

	"gossip-lite/gossip"
)

const (
	defaultRecentLimit = 200
	maxPageLimit       = 100
)

var ErrNotFound = errors.New("not found")

type Service interface {
	Close() error
	AppendStatements(ctx context.Context, gameID string, statements []gossip.Statement) error
	RecordResult(ctx context.Context, result GameResult) error
	ListRecent(ctx context.Context, limit int) ([]HistoryItem, error)
	GetStatements(ctx context.Context, gameID string) ([]StatementItem, error)
}

type StatementItem struct {
	Seq       int  `json:"seq"`
	Turn      int  `json:"turn"`
	Speaker   int  `json:"speaker"`
	Listener  int  `json:"listener"`
	Source    int  `json:"source"`
	Predicate int  `json:"predicate"`
	Level     int  `json:"level"`
	Direct    bool `json:"direct"`
}

type RankItem struct {
	Character int     `json:"character"`
	Name      string  `json:"name"`
	Delta     float64 `json:"delta"`
	Level     int     `json:"level"`
}

// GameResult is written once, when a game reaches game over.
type GameResult struct {
	GameID     string     `json:"game_id"`
	ScenarioID string     `json:"scenario_id,omitempty"`
	PlayedAt   time.Time  `json:"played_at"`
	Characters int        `json:"characters"`
	Difficulty int        `json:"difficulty"`
	Turns      int        `json:"turns"`
	Player     int        `json:"player"`
	PlayerRank int        `json:"player_rank"`
	Objective  *bool      `json:"objective_met,omitempty"`
	Ranking    []RankItem `json:"ranking"`
}

type HistoryItem struct {
	GameResult
	Statements int `json:"statements"`
}

func statementItem(s gossip.Statement) StatementItem {
	return StatementItem{
		Seq:       s.Seq,
		Turn:      s.Turn,
		Speaker:   s.Speaker,
		Listener:  s.Listener,
		Source:    s.Source,
		Predicate: s.Predicate,
		Level:     s.Level,
		Direct:    s.Direct(),
	}
}

// ResultFromSnapshot summarizes a finished game. PlayerRank is 1-based.
func ResultFromSnapshot(gameID string, snap gossip.Snapshot, difficulty gossip.Difficulty, playedAt time.Time) GameResult {
	res := GameResult{
		GameID:     gameID,
		PlayedAt:   playedAt.UTC(),
		Characters: len(snap.Characters),
		Difficulty: int(difficulty),
		Turns:      snap.Turn,
		Player:     snap.Player,
		Ranking:    make([]RankItem, 0, len(snap.Ranking)),
	}
	for pos, r := range snap.Ranking {
		res.Ranking = append(res.Ranking, RankItem{Character: r.Character, Name: r.Name, Delta: r.Delta, Level: r.Level})
		if r.Character == snap.Player {
			res.PlayerRank = pos + 1
		}
	}
	return res
}

func clampLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > maxPageLimit {
		return maxPageLimit
	}
	return limit
}

type noopService struct{}

func (noopService) Close() error { return nil }

func (noopService) AppendStatements(context.Context, string, []gossip.Statement) error { return nil }

func (noopService) RecordResult(context.Context, GameResult) error { return nil }

func (noopService) ListRecent(context.Context, int) ([]HistoryItem, error) {
	return []HistoryItem{}, nil
}

func (noopService) GetStatements(context.Context, string) ([]StatementItem, error) {
	return nil, ErrNotFound
}
