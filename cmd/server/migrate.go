package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/soaringjerry/valoracion/internal/config"
	dbstore "github.com/soaringjerry/valoracion/internal/db"
)

// openStore connects to the configured database and creates the schema.
func openStore(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*dbstore.SQLStore, error) {
	dialect, err := dbstore.ParseDialect(cfg.DBDriver)
	if err != nil {
		return nil, err
	}
	if dialect == dbstore.SQLite {
		if path := sqliteFilePath(cfg.DBDSN); path != "" {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
	}

	conn, err := dbstore.Open(ctx, dialect, cfg.DBDSN)
	if err != nil {
		return nil, err
	}
	store, err := dbstore.NewSQLStore(conn, dialect, logger)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("init store: %w", err)
	}
	if err := store.Init(ctx, cfg.MigrationsDir); err != nil {
		store.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info().Str("dialect", string(dialect)).Msg("database ready")
	return store, nil
}

// sqliteFilePath returns the on-disk path of a sqlite DSN, or "" for
// in-memory databases.
func sqliteFilePath(dsn string) string {
	p := strings.TrimPrefix(dsn, "file:")
	query := ""
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p, query = p[:i], p[i+1:]
	}
	if p == "" || p == ":memory:" {
		return ""
	}
	if q, err := url.ParseQuery(query); err == nil && q.Get("mode") == "memory" {
		return ""
	}
	return p
}
