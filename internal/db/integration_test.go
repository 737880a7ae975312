//go:build integration
// +build integration

package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/tordrt/tablediff/internal/table"
)

// verifyTable checks headers and the value of one column per row
func verifyTable(t *testing.T, got *table.Table, wantHeaders []string, column string, wantValues []string) {
	t.Helper()

	if len(got.Headers) != len(wantHeaders) {
		t.Fatalf("Expected headers %v, got %v", wantHeaders, got.Headers)
	}
	for i, h := range wantHeaders {
		if got.Headers[i] != h {
			t.Errorf("Expected header[%d] = %s, got %s", i, h, got.Headers[i])
		}
	}
	if len(got.Rows) != len(wantValues) {
		t.Fatalf("Expected %d rows, got %d", len(wantValues), len(got.Rows))
	}
	for i, v := range wantValues {
		if got.Rows[i][column] != v {
			t.Errorf("Expected row[%d].%s = %q, got %q", i, column, v, got.Rows[i][column])
		}
	}
}

func TestSQLiteLoadTable(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "load.db")

	client, err := NewSQLiteClient(ctx, path)
	if err != nil {
		t.Fatalf("Failed to connect to SQLite: %v", err)
	}
	defer client.Close()

	_, err = client.GetDB().ExecContext(ctx, `
		CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT, score REAL);
		INSERT INTO users VALUES (1, ' alice ', 1.5), (2, NULL, 2);
	`)
	if err != nil {
		t.Fatalf("Failed to seed SQLite: %v", err)
	}

	got, err := client.LoadTable(ctx, "users")
	if err != nil {
		t.Fatalf("LoadTable failed: %v", err)
	}
	verifyTable(t, got, []string{"id", "name", "score"}, "name", []string{"alice", ""})

	got, err = client.LoadTable(ctx, "SELECT id FROM users WHERE id = 2")
	if err != nil {
		t.Fatalf("LoadTable query failed: %v", err)
	}
	verifyTable(t, got, []string{"id"}, "id", []string{"2"})
}

func TestPostgresLoadTable(t *testing.T) {
	url := os.Getenv("POSTGRES_TEST_URL")
	if url == "" {
		t.Skip("POSTGRES_TEST_URL not set")
	}
	ctx := context.Background()

	client, err := NewPostgresClient(ctx, url)
	if err != nil {
		t.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer func() { _ = client.Close(ctx) }()

	got, err := client.LoadTable(ctx, "SELECT 1 AS id, 'x'::text AS name, NULL::int AS empty")
	if err != nil {
		t.Fatalf("LoadTable failed: %v", err)
	}
	verifyTable(t, got, []string{"id", "name", "empty"}, "empty", []string{""})
	if got.Rows[0]["id"] != "1" {
		t.Errorf("Expected id 1, got %q", got.Rows[0]["id"])
	}
}

func TestMySQLLoadTable(t *testing.T) {
	dsn := os.Getenv("MYSQL_TEST_DSN")
	if dsn == "" {
		t.Skip("MYSQL_TEST_DSN not set")
	}
	ctx := context.Background()

	client, err := NewMySQLClient(ctx, dsn)
	if err != nil {
		t.Fatalf("Failed to connect to MySQL: %v", err)
	}
	defer client.Close()

	got, err := client.LoadTable(ctx, "SELECT 1 AS id, 'x' AS name")
	if err != nil {
		t.Fatalf("LoadTable failed: %v", err)
	}
	verifyTable(t, got, []string{"id", "name"}, "name", []string{"x"})
}
