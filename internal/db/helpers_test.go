package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/Spok95/school-board-bot/internal/db"
	"github.com/Spok95/school-board-bot/internal/models"
	"github.com/jmoiron/sqlx"
)

func mustSeedUser(t *testing.T, database *sqlx.DB, name, email string, role models.Role) int64 {
	t.Helper()
	id, err := db.CreateUser(context.Background(), database, models.User{
		Name: name, Email: email, PasswordHash: "x", Role: role,
	})
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func mustCourse(t *testing.T, database *sqlx.DB, title string, teacherID int64, students ...int64) int64 {
	t.Helper()
	ctx := context.Background()
	id, err := db.CreateCourse(ctx, database, title, teacherID)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range students {
		if err := db.Enroll(ctx, database, id, s); err != nil {
			t.Fatal(err)
		}
	}
	return id
}

func mustAnnounce(t *testing.T, database *sqlx.DB, title string, teacherID int64, aud models.Audience, at time.Time) int64 {
	t.Helper()
	id, err := db.CreateAnnouncement(context.Background(), database, models.Announcement{
		Title: title, Content: title + " body", TeacherID: teacherID, Audience: aud, CreatedAt: at,
	})
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func titles(xs []models.Announcement) []string {
	out := make([]string, 0, len(xs))
	for _, a := range xs {
		out = append(out, a.Title)
	}
	return out
}
