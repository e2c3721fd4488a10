package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gossip-lite/gossip"
)

// sqlStore holds the queries shared by the sqlite and postgres backends.
// Queries are written with ? placeholders and rebound per driver.
type sqlStore struct {
	db          *sql.DB
	numbered    bool // $1, $2 ... placeholders
	recentLimit int
}

func (s *sqlStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqlStore) rebind(query string) string {
	if !s.numbered {
		return query
	}
	return rebindNumbered(query)
}

func rebindNumbered(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *sqlStore) AppendStatements(ctx context.Context, gameID string, statements []gossip.Statement) error {
	gameID = strings.TrimSpace(gameID)
	if gameID == "" || len(statements) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.rebind(`
INSERT INTO gossip_statement (
    game_id, seq, turn, speaker, listener, source, predicate, level, created_at_ms
)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (game_id, seq) DO NOTHING`))
	if err != nil {
		return err
	}
	defer stmt.Close()

	nowMs := time.Now().UTC().UnixMilli()
	for _, st := range statements {
		if _, err := stmt.ExecContext(ctx, gameID, st.Seq, st.Turn, st.Speaker, st.Listener, st.Source, st.Predicate, st.Level, nowMs); err != nil {
			return fmt.Errorf("insert statement %d: %w", st.Seq, err)
		}
	}
	return tx.Commit()
}

func (s *sqlStore) RecordResult(ctx context.Context, result GameResult) error {
	if strings.TrimSpace(result.GameID) == "" {
		return fmt.Errorf("empty game id")
	}
	ranking, err := json.Marshal(result.Ranking)
	if err != nil {
		return err
	}
	var objective any
	if result.Objective != nil {
		objective = *result.Objective
	}
	_, err = s.db.ExecContext(ctx, s.rebind(`
INSERT INTO gossip_game_result (
    game_id, scenario_id, played_at_ms, characters, difficulty, turns, player, player_rank, objective_met, ranking_json
)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (game_id) DO UPDATE SET
    played_at_ms = excluded.played_at_ms,
    turns = excluded.turns,
    player_rank = excluded.player_rank,
    objective_met = excluded.objective_met,
    ranking_json = excluded.ranking_json`),
		result.GameID, result.ScenarioID, result.PlayedAt.UTC().UnixMilli(), result.Characters, result.Difficulty,
		result.Turns, result.Player, result.PlayerRank, objective, string(ranking))
	return err
}

func (s *sqlStore) ListRecent(ctx context.Context, limit int) ([]HistoryItem, error) {
	limit = clampLimit(limit, 20)
	if s.recentLimit > 0 && limit > s.recentLimit {
		limit = s.recentLimit
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(`
SELECT r.game_id, r.scenario_id, r.played_at_ms, r.characters, r.difficulty, r.turns, r.player, r.player_rank,
       r.objective_met, r.ranking_json,
       (SELECT COUNT(*) FROM gossip_statement st WHERE st.game_id = r.game_id)
FROM gossip_game_result r
ORDER BY r.played_at_ms DESC, r.game_id ASC
LIMIT ?`), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]HistoryItem, 0, limit)
	for rows.Next() {
		var (
			item       HistoryItem
			playedAtMs int64
			objective  sql.NullBool
			rankingRaw string
		)
		if err := rows.Scan(&item.GameID, &item.ScenarioID, &playedAtMs, &item.Characters, &item.Difficulty,
			&item.Turns, &item.Player, &item.PlayerRank, &objective, &rankingRaw, &item.Statements); err != nil {
			return nil, err
		}
		item.PlayedAt = time.UnixMilli(playedAtMs).UTC()
		if objective.Valid {
			met := objective.Bool
			item.Objective = &met
		}
		if err := json.Unmarshal([]byte(rankingRaw), &item.Ranking); err != nil {
			return nil, fmt.Errorf("decode ranking of %s: %w", item.GameID, err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *sqlStore) GetStatements(ctx context.Context, gameID string) ([]StatementItem, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
SELECT seq, turn, speaker, listener, source, predicate, level
FROM gossip_statement
WHERE game_id = ?
ORDER BY seq ASC`), gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StatementItem
	for rows.Next() {
		var st gossip.Statement
		if err := rows.Scan(&st.Seq, &st.Turn, &st.Speaker, &st.Listener, &st.Source, &st.Predicate, &st.Level); err != nil {
			return nil, err
		}
		out = append(out, statementItem(st))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) > 0 {
		return out, nil
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx, s.rebind(`SELECT EXISTS (SELECT 1 FROM gossip_game_result WHERE game_id = ?)`), gameID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}
	return []StatementItem{}, nil
}

func execAll(ctx context.Context, db *sql.DB, statements []string) error {
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
