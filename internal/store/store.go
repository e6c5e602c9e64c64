// Package store: контейнеры состояния между экранами бота и базой.
// На каждый чат свой набор сторов (Set), см. Registry.
package store

import (
	"context"
	"errors"

	"github.com/Spok95/school-board-bot/internal/db"
	"github.com/Spok95/school-board-bot/internal/models"
)

var (
	ErrNotFound           = db.ErrNotFound
	ErrForbidden          = db.ErrForbidden
	ErrEmailTaken         = db.ErrEmailTaken
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotLoggedIn        = errors.New("not logged in")
	ErrValidation         = errors.New("validation failed")
)

type UserRepo interface {
	CreateUser(ctx context.Context, u models.User) (int64, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id int64) (*models.User, error)
}

type AnnouncementRepo interface {
	ListAnnouncements(ctx context.Context, f db.AnnouncementFilter) ([]models.Announcement, error)
	CreateAnnouncement(ctx context.Context, a models.Announcement) (int64, error)
	DeleteAnnouncement(ctx context.Context, id, teacherID int64) error
}

type CourseRepo interface {
	ListVisibleCourses(ctx context.Context, viewerID int64) ([]models.Course, error)
	CourseByID(ctx context.Context, id int64) (*models.Course, error)
}
