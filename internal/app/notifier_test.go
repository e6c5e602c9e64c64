package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Spok95/school-board-bot/internal/db"
	"github.com/Spok95/school-board-bot/internal/models"
	"github.com/Spok95/school-board-bot/internal/testutil/teststore"
	"github.com/Spok95/school-board-bot/internal/tg/tgtest"
)

func TestNotifier_CourseAudience(t *testing.T) {
	env := teststore.New(t)
	ctx := context.Background()
	teacher := env.LoggedIn(t, 700, "teacher@school.test", "teacher123")
	env.LoggedIn(t, 701, "student@school.test", "student123") // Mia: Mathematics, Physics
	env.LoggedIn(t, 702, "leo@school.test", "student123")     // Leo: Mathematics, Literature

	var literature int64
	if err := teacher.Courses.Fetch(ctx); err != nil {
		t.Fatal(err)
	}
	for _, c := range teacher.Courses.Courses() {
		if c.Title == "Literature" {
			literature = c.ID
		}
	}

	bot := &tgtest.Recorder{}
	n := NewNotifier(bot, db.NewRepository(env.DB), nil, time.UTC)
	err := n.Notify(ctx, models.Announcement{
		ID: 99, Title: "Essay due", Content: "Friday", CreatedAt: time.Now(),
		TeacherID: teacher.Auth.User().ID, Audience: models.CourseScoped{CourseID: literature},
	})
	if err != nil {
		t.Fatal(err)
	}

	texts := bot.Texts()
	if len(texts) != 1 {
		t.Fatalf("want only Leo notified, got %d: %v", len(texts), texts)
	}
	if !strings.Contains(texts[0], "Literature") || !strings.Contains(texts[0], "Essay due") {
		t.Fatalf("text = %q", texts[0])
	}
}

func TestNotifier_PublishFromStoreReachesQueue(t *testing.T) {
	env := teststore.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bot := &tgtest.Recorder{}
	n := NewNotifier(bot, db.NewRepository(env.DB), nil, time.UTC)
	go func() { _ = n.Run(ctx) }()

	teacher := env.LoggedIn(t, 710, "teacher@school.test", "teacher123")
	teacher.Announcements.OnPublished(n.Enqueue)
	env.LoggedIn(t, 711, "student@school.test", "student123")

	if _, err := teacher.Announcements.Create(ctx, "Assembly", "Hall at 9", nil); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(bot.Texts()) == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if got := bot.Texts(); len(got) != 1 || !strings.Contains(got[0], "School-wide") {
		t.Fatalf("texts = %v", got)
	}
}
