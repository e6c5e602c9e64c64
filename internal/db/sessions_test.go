package db_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/Spok95/school-board-bot/internal/db"
	"github.com/Spok95/school-board-bot/internal/models"
	"github.com/Spok95/school-board-bot/internal/testutil/testdb"
)

func TestSessions_SaveLoadDelete(t *testing.T) {
	database := testdb.NewSQLite(t)
	ctx := context.Background()
	u1 := mustSeedUser(t, database, "A", "a@school.test", models.Student)
	u2 := mustSeedUser(t, database, "B", "b@school.test", models.Student)

	if _, ok, err := db.LoadSession(ctx, database, 42); err != nil || ok {
		t.Fatalf("expected no session, ok=%v err=%v", ok, err)
	}

	if err := db.SaveSession(ctx, database, 42, u1, time.Now().Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	// повторный вход в том же чате перезаписывает пользователя
	if err := db.SaveSession(ctx, database, 42, u2, time.Now().Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	got, ok, err := db.LoadSession(ctx, database, 42)
	if err != nil || !ok || got != u2 {
		t.Fatalf("LoadSession=%d,%v,%v; want %d", got, ok, err, u2)
	}

	if err := db.DeleteSession(ctx, database, 42); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := db.LoadSession(ctx, database, 42); ok {
		t.Fatal("session must be gone after delete")
	}
}

func TestSessions_ExpiredArePurged(t *testing.T) {
	database := testdb.NewSQLite(t)
	ctx := context.Background()
	u := mustSeedUser(t, database, "A", "a@school.test", models.Student)

	if err := db.SaveSession(ctx, database, 1, u, time.Now().Add(-time.Hour)); err != nil {
		t.Fatal(err)
	}
	if err := db.SaveSession(ctx, database, 2, u, time.Now().Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := db.LoadSession(ctx, database, 1); ok {
		t.Fatal("expired session must not load")
	}

	n, err := db.PurgeExpiredSessions(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("purged %d, want 1", n)
	}
	if _, ok, _ := db.LoadSession(ctx, database, 2); !ok {
		t.Fatal("live session must survive purge")
	}
}

func TestAudienceChats(t *testing.T) {
	database := testdb.NewSQLite(t)
	ctx := context.Background()
	teacher := mustSeedUser(t, database, "T", "t@school.test", models.Teacher)
	enrolled := mustSeedUser(t, database, "S1", "s1@school.test", models.Student)
	other := mustSeedUser(t, database, "S2", "s2@school.test", models.Student)
	course := mustCourse(t, database, "Math", teacher, enrolled)

	exp := time.Now().Add(time.Hour)
	for chat, uid := range map[int64]int64{10: teacher, 20: enrolled, 30: other} {
		if err := db.SaveSession(ctx, database, chat, uid, exp); err != nil {
			t.Fatal(err)
		}
	}
	if err := db.SaveSession(ctx, database, 40, other, time.Now().Add(-time.Hour)); err != nil {
		t.Fatal(err)
	}

	school, err := db.AudienceChats(ctx, database, sql.NullInt64{}, teacher)
	if err != nil {
		t.Fatal(err)
	}
	if len(school) != 2 || school[0] != 20 || school[1] != 30 {
		t.Fatalf("school-wide chats = %v", school)
	}

	scoped, err := db.AudienceChats(ctx, database, sql.NullInt64{Int64: course, Valid: true}, enrolled)
	if err != nil {
		t.Fatal(err)
	}
	if len(scoped) != 1 || scoped[0] != 10 {
		t.Fatalf("course chats = %v", scoped)
	}
}
