package store

import (
	"context"
	"errors"
	"testing"

	"github.com/Spok95/school-board-bot/internal/db"
	"github.com/Spok95/school-board-bot/internal/models"
)

var teacher = &models.User{ID: 10, Name: "T", Role: models.Teacher}

func TestFetch_StaleResponseDiscarded(t *testing.T) {
	repo := &fakeAnnouncements{}
	s := NewAnnouncementStore(repo, &fakeCourses{}, staticUser{teacher})

	slow := repo.push([]models.Announcement{ann(1, "old")}, nil)
	fast := repo.push([]models.Announcement{ann(2, "new")}, nil)

	ctx := context.Background()
	done := make(chan error, 1)
	go func() { done <- s.FetchAll(ctx) }()
	if !waitFor(func() bool { return repo.callCount() == 1 }) {
		t.Fatal("first fetch did not start")
	}

	go func() { done <- s.FetchSchool(ctx) }()
	if !waitFor(func() bool { return repo.callCount() == 2 }) {
		t.Fatal("second fetch did not start")
	}
	if !s.Loading() {
		t.Fatal("expected loading while fetches in flight")
	}

	close(fast)
	if err := <-done; err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	close(slow)
	if err := <-done; err != nil {
		t.Fatalf("first fetch: %v", err)
	}

	got := s.Announcements()
	if len(got) != 1 || got[0].Title != "new" {
		t.Fatalf("stale response applied: %+v", got)
	}
	if s.Loading() {
		t.Fatal("loading must be false after all fetches")
	}
	if repo.calls[1].Scope != db.ScopeSchool {
		t.Fatalf("scope = %v", repo.calls[1].Scope)
	}
}

func TestFetch_FailureKeepsPreviousList(t *testing.T) {
	repo := &fakeAnnouncements{}
	s := NewAnnouncementStore(repo, &fakeCourses{}, staticUser{teacher})
	ctx := context.Background()

	close(repo.push([]models.Announcement{ann(1, "a"), ann(2, "b")}, nil))
	if err := s.FetchAll(ctx); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	close(repo.push(nil, boom))
	if err := s.FetchSubject(ctx); !errors.Is(err, boom) {
		t.Fatalf("want boom, got %v", err)
	}
	if got := s.Announcements(); len(got) != 2 {
		t.Fatalf("list changed on failure: %+v", got)
	}
	if s.Loading() {
		t.Fatal("loading must be cleared after failure")
	}
}

func TestFetch_NotLoggedIn(t *testing.T) {
	s := NewAnnouncementStore(&fakeAnnouncements{}, &fakeCourses{}, staticUser{})
	if err := s.FetchAll(context.Background()); !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("want ErrNotLoggedIn, got %v", err)
	}
}

func TestFetchCourse_PassesCourseID(t *testing.T) {
	repo := &fakeAnnouncements{}
	s := NewAnnouncementStore(repo, &fakeCourses{}, staticUser{teacher})
	close(repo.push(nil, nil))
	if err := s.FetchCourse(context.Background(), 7); err != nil {
		t.Fatal(err)
	}
	if f := repo.calls[0]; f.Scope != db.ScopeCourse || f.CourseID != 7 || f.ViewerID != teacher.ID {
		t.Fatalf("filter = %+v", f)
	}
}

func TestAnnouncements_ReturnsCopy(t *testing.T) {
	repo := &fakeAnnouncements{}
	s := NewAnnouncementStore(repo, &fakeCourses{}, staticUser{teacher})
	close(repo.push([]models.Announcement{ann(1, "a")}, nil))
	_ = s.FetchAll(context.Background())

	got := s.Announcements()
	got[0].Title = "mutated"
	if s.Announcements()[0].Title != "a" {
		t.Fatal("store list mutated through returned slice")
	}
}

func TestDelete_StudentForbidden(t *testing.T) {
	repo := &fakeAnnouncements{}
	student := &models.User{ID: 20, Role: models.Student}
	s := NewAnnouncementStore(repo, &fakeCourses{}, staticUser{student})

	if err := s.Delete(context.Background(), 1); !errors.Is(err, ErrForbidden) {
		t.Fatalf("want ErrForbidden, got %v", err)
	}
	if len(repo.deleted) != 0 {
		t.Fatal("repo must not be called")
	}
}

func TestDelete_PropagatesRepoErrors(t *testing.T) {
	repo := &fakeAnnouncements{delErr: db.ErrForbidden}
	s := NewAnnouncementStore(repo, &fakeCourses{}, staticUser{teacher})
	if err := s.Delete(context.Background(), 5); !errors.Is(err, ErrForbidden) {
		t.Fatalf("want ErrForbidden, got %v", err)
	}

	repo.delErr = db.ErrNotFound
	if err := s.Delete(context.Background(), 5); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestCreate_CourseMustBeOwned(t *testing.T) {
	repo := &fakeAnnouncements{}
	courses := &fakeCourses{list: []models.Course{
		{ID: 1, Title: "Math", TeacherID: teacher.ID},
		{ID: 2, Title: "Physics", TeacherID: 99},
	}}
	s := NewAnnouncementStore(repo, courses, staticUser{teacher})
	ctx := context.Background()

	if _, err := s.Create(ctx, "Quiz", "Friday", models.CourseScoped{CourseID: 2}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign course: want ErrForbidden, got %v", err)
	}
	if _, err := s.Create(ctx, "  ", "x", nil); !errors.Is(err, ErrValidation) {
		t.Fatalf("empty title: want ErrValidation, got %v", err)
	}
	if _, err := s.Create(ctx, "Quiz", "Friday", models.CourseScoped{CourseID: 1}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Create(ctx, "News", "Hello", nil); err != nil {
		t.Fatal(err)
	}

	if len(repo.created) != 2 {
		t.Fatalf("created = %d", len(repo.created))
	}
	if id, ok := repo.created[0].CourseID(); !ok || id != 1 {
		t.Fatalf("audience = %+v", repo.created[0].Audience)
	}
	if !repo.created[1].IsSchoolWide() || repo.created[1].TeacherID != teacher.ID {
		t.Fatalf("second = %+v", repo.created[1])
	}
}

func TestCreate_CallsPublishedHook(t *testing.T) {
	repo := &fakeAnnouncements{}
	s := NewAnnouncementStore(repo, &fakeCourses{}, staticUser{teacher})
	var got []models.Announcement
	s.OnPublished(func(_ context.Context, a models.Announcement) { got = append(got, a) })

	id, err := s.Create(context.Background(), "News", "Hello", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != id || got[0].TeacherID != teacher.ID {
		t.Fatalf("hook got %+v", got)
	}

	if _, err := s.Create(context.Background(), "", "x", nil); err == nil {
		t.Fatal("expected validation error")
	}
	if len(got) != 1 {
		t.Fatal("hook must not fire on failure")
	}
}
