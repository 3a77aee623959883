package sqlitemigrate

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func TestApplyRecordsMigration(t *testing.T) {
	db := openMemoryDB(t)
	migrations := fstest.MapFS{
		"001_blobs.sql": {Data: []byte("-- +migrate Up\nCREATE TABLE blobs(k TEXT PRIMARY KEY);\n-- +migrate Down\nDROP TABLE blobs;")},
	}
	if err := Apply(context.Background(), db, migrations, ""); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got := count(t, db, "SELECT COUNT(*) FROM schema_migrations"); got != 1 {
		t.Fatalf("migration rows = %d, want 1", got)
	}
	if !tableExists(t, db, "blobs") {
		t.Fatal("expected blobs table")
	}
	if err := Apply(context.Background(), db, migrations, ""); err != nil {
		t.Fatalf("reapply: %v", err)
	}
	if got := count(t, db, "SELECT COUNT(*) FROM schema_migrations"); got != 1 {
		t.Fatalf("migration rows after reapply = %d, want 1", got)
	}
}

func TestApplyLeavesFailedMigrationUnrecorded(t *testing.T) {
	db := openMemoryDB(t)
	bad := fstest.MapFS{"001_bad.sql": {Data: []byte("-- +migrate Up\nCREAT TABLE things(id INT);")}}
	if err := Apply(context.Background(), db, bad, ""); err == nil {
		t.Fatal("expected bad migration to fail")
	}
	if got := count(t, db, "SELECT COUNT(*) FROM schema_migrations"); got != 0 {
		t.Fatalf("migration rows = %d, want 0", got)
	}
	good := fstest.MapFS{"001_bad.sql": {Data: []byte("-- +migrate Up\nCREATE TABLE things(id INTEGER PRIMARY KEY);")}}
	if err := Apply(context.Background(), db, good, ""); err != nil {
		t.Fatalf("apply fixed: %v", err)
	}
}

func TestApplyKeysByRoot(t *testing.T) {
	db := openMemoryDB(t)
	migrations := fstest.MapFS{"kv/001_kv.sql": {Data: []byte("CREATE TABLE kv(k TEXT PRIMARY KEY);")}}
	if err := Apply(context.Background(), db, migrations, "kv"); err != nil {
		t.Fatalf("apply: %v", err)
	}
	var name string
	if err := db.QueryRow("SELECT name FROM schema_migrations").Scan(&name); err != nil {
		t.Fatalf("read name: %v", err)
	}
	if name != "kv/001_kv.sql" {
		t.Fatalf("name = %q, want kv/001_kv.sql", name)
	}
}

func TestApplyHonorsContext(t *testing.T) {
	db := openMemoryDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	migrations := fstest.MapFS{"001.sql": {Data: []byte("CREATE TABLE t(id INT);")}}
	if err := Apply(ctx, db, migrations, ""); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want canceled", err)
	}
}

func TestUpSection(t *testing.T) {
	tests := map[string]string{
		"CREATE TABLE a(x INT);":                                   "CREATE TABLE a(x INT);",
		"-- +migrate Up\nCREATE TABLE a(x INT);":                   "\nCREATE TABLE a(x INT);",
		"-- +migrate Up\nCREATE TABLE a(x INT);\n-- +migrate Down": "\nCREATE TABLE a(x INT);\n",
	}
	for in, want := range tests {
		if got := UpSection(in); got != want {
			t.Fatalf("UpSection(%q) = %q, want %q", in, got, want)
		}
	}
}

func openMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func count(t *testing.T, db *sql.DB, query string) int64 {
	t.Helper()
	var n int64
	if err := db.QueryRow(query).Scan(&n); err != nil {
		t.Fatalf("query %q: %v", query, err)
	}
	return n
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var found string
	err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name = ?", name).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false
	}
	if err != nil {
		t.Fatalf("check table %s: %v", name, err)
	}
	return found == name
}
