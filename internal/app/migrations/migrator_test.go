package migrations

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"testing/fstest"

	"github.com/yigit/ssis/internal/db"
)

func openTestDB(t *testing.T) *db.Database {
	t.Helper()
	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "migrate.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func tableExists(t *testing.T, database *db.Database, name string) bool {
	t.Helper()
	var n int
	err := database.DB.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&n)
	if err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	return n == 1
}

func TestMigrateCreatesSchema(t *testing.T) {
	database := openTestDB(t)
	m := NewMigrator(database.DB, false)
	ctx := context.Background()

	applied, err := m.Migrate(ctx)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if applied != 1 {
		t.Fatalf("applied = %d, want 1", applied)
	}
	for _, table := range []string{"college", "program", "student", "schema_migrations"} {
		if !tableExists(t, database, table) {
			t.Fatalf("table %s missing", table)
		}
	}

	applied, err = m.Migrate(ctx)
	if err != nil {
		t.Fatalf("re-run migrate: %v", err)
	}
	if applied != 0 {
		t.Fatalf("second run applied = %d, want 0", applied)
	}

	versions, err := m.Applied(ctx)
	if err != nil {
		t.Fatalf("applied versions: %v", err)
	}
	if !reflect.DeepEqual(versions, []string{"001"}) {
		t.Fatalf("versions = %v, want [001]", versions)
	}
}

func TestMigrateFromFSOrdersFiles(t *testing.T) {
	database := openTestDB(t)
	m := NewMigrator(database.DB, false)

	fsys := fstest.MapFS{
		"002_index.sql": {Data: []byte("CREATE INDEX idx_items_name ON items (name);")},
		"001_items.sql": {Data: []byte("CREATE TABLE items (id TEXT PRIMARY KEY, name TEXT);\nINSERT INTO items VALUES ('a', 'first');")},
		"README.md":     {Data: []byte("not a migration")},
	}

	applied, err := m.MigrateFromFS(context.Background(), fsys)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if applied != 2 {
		t.Fatalf("applied = %d, want 2", applied)
	}

	var name string
	if err := database.DB.QueryRow("SELECT name FROM items WHERE id = 'a'").Scan(&name); err != nil {
		t.Fatalf("select: %v", err)
	}
	if name != "first" {
		t.Fatalf("name = %q, want first", name)
	}
}

func TestMigrateRollsBackFailedFile(t *testing.T) {
	database := openTestDB(t)
	m := NewMigrator(database.DB, false)

	fsys := fstest.MapFS{
		"001_broken.sql": {Data: []byte("CREATE TABLE ok (id TEXT);\nCREATE TABLE ok (id TEXT);")},
	}
	if _, err := m.MigrateFromFS(context.Background(), fsys); err == nil {
		t.Fatal("expected an error from a failing migration")
	}
	if tableExists(t, database, "ok") {
		t.Fatal("failed migration was not rolled back")
	}

	versions, err := m.Applied(context.Background())
	if err != nil {
		t.Fatalf("applied versions: %v", err)
	}
	if len(versions) != 0 {
		t.Fatalf("versions = %v, want none", versions)
	}
}

func TestSplitStatements(t *testing.T) {
	got := SplitStatements("CREATE TABLE a (x INT);\n\n  ;CREATE TABLE b (y INT);\n")
	want := []string{"CREATE TABLE a (x INT)", "CREATE TABLE b (y INT)"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("statements = %q, want %q", got, want)
	}
}
