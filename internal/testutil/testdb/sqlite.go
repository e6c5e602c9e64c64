package testdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Spok95/school-board-bot/internal/db"
	"github.com/jmoiron/sqlx"
)

// NewSQLite: мигрированная sqlite-база во временном каталоге теста.
func NewSQLite(t testing.TB) *sqlx.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "school.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	database, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = database.Close() })
	if err := db.Migrate(context.Background(), database, nil); err != nil {
		t.Fatal(err)
	}
	return database
}
