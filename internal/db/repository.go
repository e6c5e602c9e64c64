package db

import (
	"context"

	"github.com/Spok95/school-board-bot/internal/models"
	"github.com/jmoiron/sqlx"
)

// Repository: те же функции пакета, но за интерфейсами, которые ждут сторы.
type Repository struct {
	db *sqlx.DB
}

func NewRepository(database *sqlx.DB) *Repository {
	return &Repository{db: database}
}

func (r *Repository) DB() *sqlx.DB { return r.db }

func (r *Repository) CreateUser(ctx context.Context, u models.User) (int64, error) {
	return CreateUser(ctx, r.db, u)
}

func (r *Repository) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return GetUserByEmail(ctx, r.db, email)
}

func (r *Repository) UserByID(ctx context.Context, id int64) (*models.User, error) {
	return GetUserByID(ctx, r.db, id)
}

func (r *Repository) ListAnnouncements(ctx context.Context, f AnnouncementFilter) ([]models.Announcement, error) {
	return ListAnnouncements(ctx, r.db, f)
}

func (r *Repository) CreateAnnouncement(ctx context.Context, a models.Announcement) (int64, error) {
	return CreateAnnouncement(ctx, r.db, a)
}

func (r *Repository) DeleteAnnouncement(ctx context.Context, id, teacherID int64) error {
	return DeleteAnnouncement(ctx, r.db, id, teacherID)
}

func (r *Repository) ListVisibleCourses(ctx context.Context, viewerID int64) ([]models.Course, error) {
	return ListVisibleCourses(ctx, r.db, viewerID)
}

func (r *Repository) CourseByID(ctx context.Context, id int64) (*models.Course, error) {
	return GetCourseByID(ctx, r.db, id)
}

func (r *Repository) AudienceChats(ctx context.Context, a models.Announcement) ([]int64, error) {
	return AudienceChats(ctx, r.db, audienceCourseID(a.Audience), a.TeacherID)
}
