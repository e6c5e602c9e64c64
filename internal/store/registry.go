package store

import (
	"context"
	"sync"

	"github.com/Spok95/school-board-bot/internal/metrics"
	"github.com/Spok95/school-board-bot/internal/session"
	"go.uber.org/zap"
)

type Deps struct {
	Users         UserRepo
	Announcements AnnouncementRepo
	Courses       CourseRepo
	Sessions      session.Store
	Log           *zap.Logger
	// Published: необязательный хук на новые объявления (рассылка).
	Published     PublishedFunc
}

// Set: сторы одного чата.
type Set struct {
	Auth          *AuthStore
	Announcements *AnnouncementStore
	Courses       *CourseStore

	restore sync.Once
}

// Registry раздаёт Set по chatID, создаёт при первом обращении.
type Registry struct {
	deps Deps

	mu   sync.Mutex
	sets map[int64]*Set
}

func NewRegistry(deps Deps) *Registry {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	return &Registry{deps: deps, sets: make(map[int64]*Set)}
}

// For возвращает сторы чата. При первом обращении поднимает сохранённую сессию.
func (r *Registry) For(ctx context.Context, chatID int64) *Set {
	r.mu.Lock()
	set, ok := r.sets[chatID]
	if !ok {
		auth := NewAuthStore(r.deps.Users, r.deps.Sessions, chatID)
		set = &Set{
			Auth:          auth,
			Announcements: NewAnnouncementStore(r.deps.Announcements, r.deps.Courses, auth),
			Courses:       NewCourseStore(r.deps.Courses, auth),
		}
		set.Announcements.OnPublished(r.deps.Published)
		r.sets[chatID] = set
		metrics.ActiveChats.Set(float64(len(r.sets)))
	}
	r.mu.Unlock()

	set.restore.Do(func() {
		if _, err := set.Auth.GetCurrentUser(ctx); err != nil {
			r.deps.Log.Warn("restore session failed", zap.Int64("chat_id", chatID), zap.Error(err))
		}
	})
	return set
}

// Forget выкидывает сторы чата (после logout память не держим).
func (r *Registry) Forget(chatID int64) {
	r.mu.Lock()
	delete(r.sets, chatID)
	metrics.ActiveChats.Set(float64(len(r.sets)))
	r.mu.Unlock()
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sets)
}
