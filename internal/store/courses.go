package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/Spok95/school-board-bot/internal/ctxutil"
	"github.com/Spok95/school-board-bot/internal/models"
)

// CourseStore: курсы, видимые текущему пользователю.
type CourseStore struct {
	repo CourseRepo
	auth CurrentUser

	mu   sync.RWMutex
	list []models.Course
}

func NewCourseStore(repo CourseRepo, auth CurrentUser) *CourseStore {
	return &CourseStore{repo: repo, auth: auth}
}

func (s *CourseStore) Fetch(ctx context.Context) error {
	u := s.auth.User()
	if u == nil {
		return ErrNotLoggedIn
	}
	dbCtx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	list, err := s.repo.ListVisibleCourses(dbCtx, u.ID)
	if err != nil {
		return fmt.Errorf("fetch courses: %w", err)
	}
	s.mu.Lock()
	s.list = list
	s.mu.Unlock()
	return nil
}

func (s *CourseStore) Courses() []models.Course {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Course, len(s.list))
	copy(out, s.list)
	return out
}

func (s *CourseStore) Title(id int64) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.list {
		if c.ID == id {
			return c.Title, true
		}
	}
	return "", false
}

// Owned: курсы, которые ведёт пользователь (цели для нового объявления).
func (s *CourseStore) Owned(teacherID int64) []models.Course {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Course
	for _, c := range s.list {
		if c.TeacherID == teacherID {
			out = append(out, c)
		}
	}
	return out
}
