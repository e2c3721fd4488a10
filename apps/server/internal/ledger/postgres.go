package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

type PostgresService struct {
	*sqlStore
}

// NewPostgresService connects to dsn. With requireSchema the tables must
// already exist; otherwise they are created.
func NewPostgresService(dsn string, recentLimit int, requireSchema bool) (*PostgresService, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if requireSchema {
		var schemaReady bool
		if err := db.QueryRowContext(ctx, `
SELECT EXISTS (
    SELECT 1
    FROM information_schema.tables
    WHERE table_schema = 'public'
      AND table_name = 'gossip_statement'
)`).Scan(&schemaReady); err != nil {
			_ = db.Close()
			return nil, err
		}
		if !schemaReady {
			_ = db.Close()
			return nil, fmt.Errorf("ledger schema not initialized: missing table gossip_statement")
		}
	} else if err := execAll(ctx, db, postgresSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure postgres schema: %w", err)
	}

	return &PostgresService{&sqlStore{db: db, numbered: true, recentLimit: recentLimit}}, nil
}

var postgresSchema = []string{
	`
CREATE TABLE IF NOT EXISTS gossip_game_result (
    game_id TEXT PRIMARY KEY,
    scenario_id TEXT NOT NULL DEFAULT '',
    played_at_ms BIGINT NOT NULL,
    characters INTEGER NOT NULL,
    difficulty INTEGER NOT NULL,
    turns INTEGER NOT NULL,
    player INTEGER NOT NULL,
    player_rank INTEGER NOT NULL,
    objective_met BOOLEAN,
    ranking_json TEXT NOT NULL DEFAULT '[]'
)`,
	`CREATE INDEX IF NOT EXISTS idx_gossip_game_result_recent ON gossip_game_result(played_at_ms DESC)`,
	`
CREATE TABLE IF NOT EXISTS gossip_statement (
    id BIGSERIAL PRIMARY KEY,
    game_id TEXT NOT NULL,
    seq INTEGER NOT NULL,
    turn INTEGER NOT NULL,
    speaker INTEGER NOT NULL,
    listener INTEGER NOT NULL,
    source INTEGER NOT NULL,
    predicate INTEGER NOT NULL,
    level INTEGER NOT NULL,
    created_at_ms BIGINT NOT NULL,
    UNIQUE (game_id, seq)
)`,
	`CREATE INDEX IF NOT EXISTS idx_gossip_statement_game_seq ON gossip_statement(game_id, seq)`,
}
