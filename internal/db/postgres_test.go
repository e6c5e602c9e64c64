//go:build testutil
// +build testutil

package db_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Spok95/school-board-bot/internal/db"
	"github.com/Spok95/school-board-bot/internal/models"
	"github.com/Spok95/school-board-bot/internal/testutil/testdb"
)

func TestPostgres_AnnouncementFlow(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	if err := db.Seed(ctx, h.DB, nil); err != nil {
		t.Fatal(err)
	}
	teacher, err := db.GetUserByEmail(ctx, h.DB, "teacher@school.test")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.CreateUser(ctx, h.DB, models.User{Name: "x", Email: "TEACHER@school.test", PasswordHash: "x", Role: models.Student}); !errors.Is(err, db.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	id := mustAnnounce(t, h.DB, "pg", teacher.ID, models.SchoolWide{}, time.Now())
	school, err := db.ListAnnouncements(ctx, h.DB, db.AnnouncementFilter{Scope: db.ScopeSchool, ViewerID: teacher.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(school) == 0 || school[0].Title != "pg" {
		t.Fatalf("newest school-wide must come first, got %v", titles(school))
	}
	if err := db.DeleteAnnouncement(ctx, h.DB, id, teacher.ID+1000); !errors.Is(err, db.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := db.DeleteAnnouncement(ctx, h.DB, id, teacher.ID); err != nil {
		t.Fatal(err)
	}
}
