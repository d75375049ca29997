package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestParseDialect(t *testing.T) {
	cases := map[string]Dialect{
		"":           SQLite,
		"sqlite":     SQLite,
		"SQLite3":    SQLite,
		"postgres":   Postgres,
		"postgresql": Postgres,
		"mysql":      MySQL,
		"mariadb":    MySQL,
	}
	for in, want := range cases {
		got, err := ParseDialect(in)
		if err != nil || got != want {
			t.Fatalf("ParseDialect(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseDialect("oracle"); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}

func TestRebind(t *testing.T) {
	q := "SELECT * FROM reviews WHERE q1 = ? AND q2 = ?"
	if got := SQLite.Rebind(q); got != q {
		t.Fatalf("sqlite rebind changed query: %s", got)
	}
	if got := MySQL.Rebind(q); got != q {
		t.Fatalf("mysql rebind changed query: %s", got)
	}
	want := "SELECT * FROM reviews WHERE q1 = $1 AND q2 = $2"
	if got := Postgres.Rebind(q); got != want {
		t.Fatalf("postgres rebind = %s", got)
	}
}

func TestEmbeddedMigrationsForEveryDialect(t *testing.T) {
	for _, d := range []Dialect{SQLite, Postgres, MySQL} {
		files, err := loadMigrations(d, "")
		if err != nil {
			t.Fatalf("%s: %v", d, err)
		}
		if len(files) == 0 {
			t.Fatalf("%s: no embedded migrations", d)
		}
		stmts := splitStatements(string(files[0].data))
		if len(stmts) < 2 {
			t.Fatalf("%s: expected at least two statements, got %d", d, len(stmts))
		}
	}
}

func TestMigrationsDirOverride(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, string(SQLite))
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	script := "-- local schema\nCREATE TABLE IF NOT EXISTS a (id INTEGER);\nCREATE TABLE IF NOT EXISTS b (id INTEGER);\n"
	if err := os.WriteFile(filepath.Join(sub, "001_local.sql"), []byte(script), 0o644); err != nil {
		t.Fatal(err)
	}
	files, err := loadMigrations(SQLite, dir)
	if err != nil {
		t.Fatalf("loadMigrations: %v", err)
	}
	if len(files) != 1 || files[0].name != "001_local.sql" {
		t.Fatalf("unexpected files %+v", files)
	}
	if got := splitStatements(string(files[0].data)); len(got) != 2 {
		t.Fatalf("split = %q", got)
	}

	// A directory without the dialect subfolder falls back to the embedded copy.
	files, err = loadMigrations(Postgres, dir)
	if err != nil || len(files) == 0 || files[0].name != "001_init.sql" {
		t.Fatalf("fallback: %+v, %v", files, err)
	}
}

func TestOpenRejectsEmptyDSN(t *testing.T) {
	if _, err := Open(context.Background(), SQLite, " "); err == nil {
		t.Fatalf("expected error")
	}
}
