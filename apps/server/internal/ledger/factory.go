package ledger

import (
	"fmt"
	"strings"

	"gossip-lite/apps/server/internal/config"
)

// NewService picks a backend by mode and returns it with a label for logs.
func NewService(cfg config.Ledger) (Service, string, error) {
	limit := cfg.RecentLimit
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Mode)) {
	case "", "memory":
		return noopService{}, "memory-noop", nil
	case "local", "sqlite":
		path, err := localDatabasePath(cfg.LocalPath)
		if err != nil {
			return nil, "", err
		}
		svc, err := NewSQLiteService(path, limit)
		if err != nil {
			return nil, "", err
		}
		return svc, "sqlite", nil
	case "postgres":
		svc, err := NewPostgresService(cfg.DSN, limit, cfg.RequireSchema)
		if err != nil {
			return nil, "", err
		}
		return svc, "postgres", nil
	default:
		return nil, "", fmt.Errorf("unknown ledger mode %q", cfg.Mode)
	}
}
