package store

import (
	"context"
	"testing"

	"github.com/Spok95/school-board-bot/internal/models"
)

func TestCourseStore(t *testing.T) {
	repo := &fakeCourses{list: []models.Course{
		{ID: 1, Title: "Mathematics", TeacherID: 10},
		{ID: 2, Title: "Physics", TeacherID: 11},
	}}
	s := NewCourseStore(repo, staticUser{teacher})
	if err := s.Fetch(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := s.Courses(); len(got) != 2 {
		t.Fatalf("courses = %+v", got)
	}
	if title, ok := s.Title(2); !ok || title != "Physics" {
		t.Fatalf("title = %q %v", title, ok)
	}
	if _, ok := s.Title(3); ok {
		t.Fatal("unknown id found")
	}
	if owned := s.Owned(10); len(owned) != 1 || owned[0].ID != 1 {
		t.Fatalf("owned = %+v", owned)
	}
}
