package store

import (
	"context"
	"sync"
	"time"

	"github.com/Spok95/school-board-bot/internal/db"
	"github.com/Spok95/school-board-bot/internal/models"
	"golang.org/x/crypto/bcrypt"
)

type fakeUsers struct {
	mu      sync.Mutex
	byID    map[int64]models.User
	nextID  int64
	creates int
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[int64]models.User{}}
}

func (f *fakeUsers) add(name, email, password string, role models.Role) models.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	u := models.User{ID: f.nextID, Name: name, Email: email, PasswordHash: string(hash), Role: role}
	f.byID[u.ID] = u
	return u
}

func (f *fakeUsers) CreateUser(_ context.Context, u models.User) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	for _, x := range f.byID {
		if x.Email == u.Email {
			return 0, db.ErrEmailTaken
		}
	}
	f.nextID++
	u.ID = f.nextID
	f.byID[u.ID] = u
	return u.ID, nil
}

func (f *fakeUsers) UserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, x := range f.byID {
		if x.Email == email {
			u := x
			return &u, nil
		}
	}
	return nil, db.ErrNotFound
}

func (f *fakeUsers) UserByID(_ context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	x, ok := f.byID[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &x, nil
}

type fakeSessions struct {
	mu sync.Mutex
	m  map[int64]int64
}

func newFakeSessions() *fakeSessions { return &fakeSessions{m: map[int64]int64{}} }

func (f *fakeSessions) Save(_ context.Context, chatID, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.m[chatID] = userID
	return nil
}

func (f *fakeSessions) Load(_ context.Context, chatID int64) (int64, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.m[chatID]
	return id, ok, nil
}

func (f *fakeSessions) Delete(_ context.Context, chatID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.m, chatID)
	return nil
}

// fakeAnnouncements отвечает из очереди ответов; release открывает конкретный вызов.
type fakeAnnouncements struct {
	mu      sync.Mutex
	calls   []db.AnnouncementFilter
	replies []reply
	deleted []int64
	created []models.Announcement
	delErr  error
}

type reply struct {
	list    []models.Announcement
	err     error
	release chan struct{}
}

func (f *fakeAnnouncements) push(list []models.Announcement, err error) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.replies = append(f.replies, reply{list: list, err: err, release: ch})
	return ch
}

func (f *fakeAnnouncements) ListAnnouncements(ctx context.Context, flt db.AnnouncementFilter) ([]models.Announcement, error) {
	f.mu.Lock()
	i := len(f.calls)
	f.calls = append(f.calls, flt)
	r := f.replies[i]
	f.mu.Unlock()

	select {
	case <-r.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return r.list, r.err
}

func (f *fakeAnnouncements) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeAnnouncements) CreateAnnouncement(_ context.Context, a models.Announcement) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, a)
	return int64(len(f.created)), nil
}

func (f *fakeAnnouncements) DeleteAnnouncement(_ context.Context, id, _ int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.delErr != nil {
		return f.delErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeCourses struct {
	list []models.Course
}

func (f *fakeCourses) ListVisibleCourses(_ context.Context, _ int64) ([]models.Course, error) {
	return f.list, nil
}

func (f *fakeCourses) CourseByID(_ context.Context, id int64) (*models.Course, error) {
	for _, c := range f.list {
		if c.ID == id {
			c := c
			return &c, nil
		}
	}
	return nil, db.ErrNotFound
}

type staticUser struct{ u *models.User }

func (s staticUser) User() *models.User { return s.u }

func ann(id int64, title string) models.Announcement {
	return models.Announcement{ID: id, Title: title, CreatedAt: time.Now(), Audience: models.SchoolWide{}}
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}
