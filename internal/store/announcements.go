package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Spok95/school-board-bot/internal/ctxutil"
	"github.com/Spok95/school-board-bot/internal/db"
	"github.com/Spok95/school-board-bot/internal/metrics"
	"github.com/Spok95/school-board-bot/internal/models"
)

// CurrentUser: откуда стор узнаёт, кто сейчас вошёл.
type CurrentUser interface {
	User() *models.User
}

// AnnouncementStore держит последний загруженный список объявлений чата.
// Каждая выборка получает номер; ответ старше применённого отбрасывается.
type AnnouncementStore struct {
	repo      AnnouncementRepo
	courses   CourseRepo
	auth      CurrentUser
	published PublishedFunc

	mu       sync.Mutex
	list     []models.Announcement
	seq      uint64 // последний выданный номер
	applied  uint64 // номер выборки, чей результат сейчас в list
	inFlight int
}

// PublishedFunc вызывается после успешной публикации.
type PublishedFunc func(ctx context.Context, a models.Announcement)

func NewAnnouncementStore(repo AnnouncementRepo, courses CourseRepo, auth CurrentUser) *AnnouncementStore {
	return &AnnouncementStore{repo: repo, courses: courses, auth: auth}
}

// OnPublished подписывает хук на новые объявления.
func (s *AnnouncementStore) OnPublished(fn PublishedFunc) { s.published = fn }

func (s *AnnouncementStore) FetchAll(ctx context.Context) error {
	return s.fetch(ctx, db.ScopeAll, 0)
}

func (s *AnnouncementStore) FetchSchool(ctx context.Context) error {
	return s.fetch(ctx, db.ScopeSchool, 0)
}

func (s *AnnouncementStore) FetchSubject(ctx context.Context) error {
	return s.fetch(ctx, db.ScopeSubject, 0)
}

func (s *AnnouncementStore) FetchCourse(ctx context.Context, courseID int64) error {
	return s.fetch(ctx, db.ScopeCourse, courseID)
}

func (s *AnnouncementStore) fetch(ctx context.Context, scope db.Scope, courseID int64) error {
	u := s.auth.User()
	if u == nil {
		return ErrNotLoggedIn
	}

	s.mu.Lock()
	s.seq++
	mySeq := s.seq
	s.inFlight++
	s.mu.Unlock()

	dbCtx, cancel := ctxutil.WithDBTimeout(ctx)
	list, err := s.repo.ListAnnouncements(dbCtx, db.AnnouncementFilter{
		Scope:    scope,
		ViewerID: u.ID,
		CourseID: courseID,
	})
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight--

	if err != nil {
		metrics.StoreFetches.WithLabelValues(scope.String(), "error").Inc()
		return fmt.Errorf("fetch %s announcements: %w", scope, err)
	}
	if mySeq < s.applied {
		metrics.StoreFetches.WithLabelValues(scope.String(), "stale").Inc()
		return nil
	}
	s.applied = mySeq
	s.list = list
	metrics.StoreFetches.WithLabelValues(scope.String(), "ok").Inc()
	return nil
}

// Announcements: копия текущего списка.
func (s *AnnouncementStore) Announcements() []models.Announcement {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Announcement, len(s.list))
	copy(out, s.list)
	return out
}

func (s *AnnouncementStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight > 0
}

// Delete удаляет объявление от имени текущего пользователя.
// Список не трогает: экран сам перезапрашивает текущий фильтр.
func (s *AnnouncementStore) Delete(ctx context.Context, id int64) error {
	u := s.auth.User()
	if u == nil {
		return ErrNotLoggedIn
	}
	if !u.IsTeacher() {
		return ErrForbidden
	}

	dbCtx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return s.repo.DeleteAnnouncement(dbCtx, id, u.ID)
}

// Create публикует объявление. Только учитель; курс: только свой.
func (s *AnnouncementStore) Create(ctx context.Context, title, content string, audience models.Audience) (int64, error) {
	u := s.auth.User()
	if u == nil {
		return 0, ErrNotLoggedIn
	}
	if !u.IsTeacher() {
		return 0, ErrForbidden
	}
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" {
		return 0, fmt.Errorf("%w: title and content are required", ErrValidation)
	}
	if audience == nil {
		audience = models.SchoolWide{}
	}

	dbCtx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	if c, ok := audience.(models.CourseScoped); ok {
		course, err := s.courses.CourseByID(dbCtx, c.CourseID)
		if err != nil {
			return 0, err
		}
		if course.TeacherID != u.ID {
			return 0, ErrForbidden
		}
	}

	a := models.Announcement{
		Title:     title,
		Content:   content,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		TeacherID: u.ID,
		Audience:  audience,
	}
	id, err := s.repo.CreateAnnouncement(dbCtx, a)
	if err != nil {
		return 0, err
	}
	a.ID = id
	if s.published != nil {
		s.published(ctx, a)
	}
	return id, nil
}
