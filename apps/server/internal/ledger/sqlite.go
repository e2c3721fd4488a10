package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const defaultLocalDBName = "gossip_local.db"

type SQLiteService struct {
	*sqlStore
}

func NewSQLiteService(dbPath string, recentLimit int) (*SQLiteService, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, fmt.Errorf("empty sqlite database path")
	}
	if dbPath != ":memory:" {
		parent := filepath.Dir(dbPath)
		if parent != "" && parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, err
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// one connection keeps :memory: databases alive and serializes writers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	pragmas := []string{
		`PRAGMA busy_timeout = 5000;`,
		`PRAGMA journal_mode = WAL;`,
		`PRAGMA foreign_keys = ON;`,
	}
	if err := execAll(ctx, db, pragmas); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := execAll(ctx, db, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure sqlite schema: %w", err)
	}

	return &SQLiteService{&sqlStore{db: db, recentLimit: recentLimit}}, nil
}

var sqliteSchema = []string{
	`
CREATE TABLE IF NOT EXISTS gossip_game_result (
    game_id TEXT PRIMARY KEY,
    scenario_id TEXT NOT NULL DEFAULT '',
    played_at_ms INTEGER NOT NULL,
    characters INTEGER NOT NULL,
    difficulty INTEGER NOT NULL,
    turns INTEGER NOT NULL,
    player INTEGER NOT NULL,
    player_rank INTEGER NOT NULL,
    objective_met INTEGER,
    ranking_json TEXT NOT NULL DEFAULT '[]'
)`,
	`CREATE INDEX IF NOT EXISTS idx_gossip_game_result_recent ON gossip_game_result(played_at_ms DESC)`,
	`
CREATE TABLE IF NOT EXISTS gossip_statement (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    game_id TEXT NOT NULL,
    seq INTEGER NOT NULL,
    turn INTEGER NOT NULL,
    speaker INTEGER NOT NULL,
    listener INTEGER NOT NULL,
    source INTEGER NOT NULL,
    predicate INTEGER NOT NULL,
    level INTEGER NOT NULL,
    created_at_ms INTEGER NOT NULL,
    UNIQUE (game_id, seq)
)`,
	`CREATE INDEX IF NOT EXISTS idx_gossip_statement_game_seq ON gossip_statement(game_id, seq)`,
}

func localDatabasePath(configured string) (string, error) {
	if p := strings.TrimSpace(configured); p != "" {
		return filepath.Clean(p), nil
	}
	userConfigDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(userConfigDir, "GossipLite", defaultLocalDBName), nil
}
