package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

//go:embed migrations/*/*.sql
var embeddedMigrations embed.FS

type migrationFile struct {
	name string
	data []byte
}

// RunMigrations creates the schema for the given dialect. Scripts are read
// from migrationsDir/<dialect> when that directory exists, otherwise from
// the embedded copies. Every script only uses CREATE ... IF NOT EXISTS, so
// running it against an initialised database is a no-op.
func RunMigrations(ctx context.Context, db *sql.DB, d Dialect, migrationsDir string) error {
	files, err := loadMigrations(d, migrationsDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no migrations for dialect %s", d)
	}
	for _, mf := range files {
		for i, stmt := range splitStatements(string(mf.data)) {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("exec migration %s statement %d: %w", mf.name, i+1, err)
			}
		}
	}
	return nil
}

// splitStatements breaks a script on semicolons; lib/pq and the mysql driver
// reject multi-statement Exec calls by default. The scripts contain no
// string literals or procedure bodies.
func splitStatements(script string) []string {
	var out []string
	for _, part := range strings.Split(script, ";") {
		if stmt := strings.TrimSpace(stripComments(part)); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

func stripComments(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), "--") {
			continue
		}
		kept = append(kept, l)
	}
	return strings.Join(kept, "\n")
}

func loadMigrations(d Dialect, dir string) ([]migrationFile, error) {
	var files []migrationFile
	if dir != "" {
		sub := filepath.Join(dir, string(d))
		entries, err := os.ReadDir(sub)
		if err == nil {
			for _, entry := range entries {
				if entry.IsDir() || filepath.Ext(entry.Name()) != ".sql" {
					continue
				}
				content, err := os.ReadFile(filepath.Join(sub, entry.Name()))
				if err != nil {
					return nil, fmt.Errorf("read migration %s: %w", entry.Name(), err)
				}
				files = append(files, migrationFile{name: entry.Name(), data: content})
			}
			sort.Slice(files, func(i, j int) bool { return files[i].name < files[j].name })
			return files, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read migrations: %w", err)
		}
	}

	// embed.FS paths always use forward slashes.
	root := path.Join("migrations", string(d))
	entries, err := embeddedMigrations.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read embedded migrations for %s: %w", d, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".sql" {
			continue
		}
		content, err := embeddedMigrations.ReadFile(path.Join(root, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read embedded migration %s: %w", entry.Name(), err)
		}
		files = append(files, migrationFile{name: entry.Name(), data: content})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].name < files[j].name })
	return files, nil
}
