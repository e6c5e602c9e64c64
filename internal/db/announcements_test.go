package db_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/Spok95/school-board-bot/internal/db"
	"github.com/Spok95/school-board-bot/internal/models"
	"github.com/Spok95/school-board-bot/internal/testutil/testdb"
)

func TestListAnnouncements_Scopes(t *testing.T) {
	database := testdb.NewSQLite(t)
	ctx := context.Background()

	t1 := mustSeedUser(t, database, "T1", "t1@school.test", models.Teacher)
	t2 := mustSeedUser(t, database, "T2", "t2@school.test", models.Teacher)
	st := mustSeedUser(t, database, "S", "s@school.test", models.Student)

	math := mustCourse(t, database, "Math", t1, st)
	physics := mustCourse(t, database, "Physics", t2)

	base := time.Now().UTC().Truncate(time.Second).Add(-time.Hour)
	mustAnnounce(t, database, "school-old", t1, models.SchoolWide{}, base)
	mustAnnounce(t, database, "math", t1, models.CourseScoped{CourseID: math}, base.Add(time.Minute))
	mustAnnounce(t, database, "physics", t2, models.CourseScoped{CourseID: physics}, base.Add(2*time.Minute))
	mustAnnounce(t, database, "school-new", t2, models.SchoolWide{}, base.Add(3*time.Minute))

	cases := []struct {
		name   string
		filter db.AnnouncementFilter
		want   []string
	}{
		{"student_all", db.AnnouncementFilter{Scope: db.ScopeAll, ViewerID: st}, []string{"school-new", "math", "school-old"}},
		{"student_school", db.AnnouncementFilter{Scope: db.ScopeSchool, ViewerID: st}, []string{"school-new", "school-old"}},
		{"student_subject", db.AnnouncementFilter{Scope: db.ScopeSubject, ViewerID: st}, []string{"math"}},
		{"student_course_visible", db.AnnouncementFilter{Scope: db.ScopeCourse, ViewerID: st, CourseID: math}, []string{"math"}},
		{"student_course_hidden", db.AnnouncementFilter{Scope: db.ScopeCourse, ViewerID: st, CourseID: physics}, []string{}},
		{"teacher_subject_own_courses", db.AnnouncementFilter{Scope: db.ScopeSubject, ViewerID: t2}, []string{"physics"}},
		{"teacher_all", db.AnnouncementFilter{Scope: db.ScopeAll, ViewerID: t1}, []string{"school-new", "math", "school-old"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := db.ListAnnouncements(ctx, database, tc.filter)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(titles(got), tc.want) {
				t.Fatalf("got %v, want %v", titles(got), tc.want)
			}
		})
	}
}

func TestListAnnouncements_AudienceRoundTrip(t *testing.T) {
	database := testdb.NewSQLite(t)
	ctx := context.Background()

	tid := mustSeedUser(t, database, "T", "t@school.test", models.Teacher)
	cid := mustCourse(t, database, "Math", tid)
	at := time.Date(2025, time.March, 4, 10, 30, 0, 0, time.UTC)
	sid := mustAnnounce(t, database, "school", tid, models.SchoolWide{}, at)
	aid := mustAnnounce(t, database, "course", tid, models.CourseScoped{CourseID: cid}, at)

	school, err := db.GetAnnouncement(ctx, database, sid)
	if err != nil {
		t.Fatal(err)
	}
	if !school.IsSchoolWide() {
		t.Fatalf("expected school-wide audience, got %#v", school.Audience)
	}
	if !school.CreatedAt.Equal(at) {
		t.Fatalf("created_at=%v, want %v", school.CreatedAt, at)
	}

	course, err := db.GetAnnouncement(ctx, database, aid)
	if err != nil {
		t.Fatal(err)
	}
	if id, ok := course.CourseID(); !ok || id != cid {
		t.Fatalf("expected course %d, got %#v", cid, course.Audience)
	}

	if _, err := db.GetAnnouncement(ctx, database, aid+100); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteAnnouncement_OnlyAuthor(t *testing.T) {
	database := testdb.NewSQLite(t)
	ctx := context.Background()

	t1 := mustSeedUser(t, database, "T1", "t1@school.test", models.Teacher)
	t2 := mustSeedUser(t, database, "T2", "t2@school.test", models.Teacher)
	id := mustAnnounce(t, database, "by t2", t2, models.SchoolWide{}, time.Now())

	t.Run("other_teacher_forbidden", func(t *testing.T) {
		if err := db.DeleteAnnouncement(ctx, database, id, t1); !errors.Is(err, db.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
		if _, err := db.GetAnnouncement(ctx, database, id); err != nil {
			t.Fatalf("announcement must survive: %v", err)
		}
	})
	t.Run("author_deletes", func(t *testing.T) {
		if err := db.DeleteAnnouncement(ctx, database, id, t2); err != nil {
			t.Fatal(err)
		}
	})
	t.Run("missing_not_found", func(t *testing.T) {
		if err := db.DeleteAnnouncement(ctx, database, id, t2); !errors.Is(err, db.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}
