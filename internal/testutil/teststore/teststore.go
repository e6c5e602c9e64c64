// Package teststore: реестр сторов поверх засеянной sqlite-базы для тестов экранов.
package teststore

import (
	"context"
	"testing"
	"time"

	"github.com/Spok95/school-board-bot/internal/db"
	"github.com/Spok95/school-board-bot/internal/session"
	"github.com/Spok95/school-board-bot/internal/store"
	"github.com/Spok95/school-board-bot/internal/testutil/testdb"
	"github.com/jmoiron/sqlx"
)

type Env struct {
	DB       *sqlx.DB
	Registry *store.Registry
}

// New: база с демо-данными (db.Seed) и реестр на ней.
func New(t testing.TB) *Env {
	t.Helper()
	database := testdb.NewSQLite(t)
	if err := db.Seed(context.Background(), database, nil); err != nil {
		t.Fatal(err)
	}
	repo := db.NewRepository(database)
	reg := store.NewRegistry(store.Deps{
		Users:         repo,
		Announcements: repo,
		Courses:       repo,
		Sessions:      session.NewDBStore(database, time.Hour),
	})
	return &Env{DB: database, Registry: reg}
}

// LoggedIn: сторы чата с выполненным входом.
func (e *Env) LoggedIn(t testing.TB, chatID int64, email, password string) *store.Set {
	t.Helper()
	set := e.Registry.For(context.Background(), chatID)
	if _, err := set.Auth.Login(context.Background(), email, password); err != nil {
		t.Fatalf("login %s: %v", email, err)
	}
	return set
}
