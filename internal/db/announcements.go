package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Spok95/school-board-bot/internal/models"
	"github.com/jmoiron/sqlx"
)

// Scope: класс видимости при выборке объявлений.
type Scope int

const (
	ScopeAll Scope = iota
	ScopeSchool
	ScopeSubject
	ScopeCourse
)

func (s Scope) String() string {
	switch s {
	case ScopeAll:
		return "all"
	case ScopeSchool:
		return "school"
	case ScopeSubject:
		return "subject"
	case ScopeCourse:
		return "course"
	default:
		return fmt.Sprintf("scope(%d)", int(s))
	}
}

type AnnouncementFilter struct {
	Scope    Scope
	ViewerID int64
	CourseID int64 // только для ScopeCourse
}

type announcementRow struct {
	ID        int64         `db:"id"`
	Title     string        `db:"title"`
	Content   string        `db:"content"`
	CreatedAt time.Time     `db:"created_at"`
	TeacherID int64         `db:"teacher_id"`
	CourseID  sql.NullInt64 `db:"course_id"`
}

func (r announcementRow) model() models.Announcement {
	a := models.Announcement{
		ID:        r.ID,
		Title:     r.Title,
		Content:   r.Content,
		CreatedAt: r.CreatedAt,
		TeacherID: r.TeacherID,
		Audience:  models.SchoolWide{},
	}
	if r.CourseID.Valid {
		a.Audience = models.CourseScoped{CourseID: r.CourseID.Int64}
	}
	return a
}

func audienceCourseID(a models.Audience) sql.NullInt64 {
	if c, ok := a.(models.CourseScoped); ok {
		return sql.NullInt64{Int64: c.CourseID, Valid: true}
	}
	return sql.NullInt64{}
}

// ListAnnouncements: объявления, видимые пользователю, новые сверху.
func ListAnnouncements(ctx context.Context, database *sqlx.DB, f AnnouncementFilter) ([]models.Announcement, error) {
	var (
		where string
		args  []any
	)
	switch f.Scope {
	case ScopeAll:
		where = `course_id IS NULL OR course_id IN (` + visibleCoursesSQL + `)`
		args = []any{f.ViewerID, f.ViewerID}
	case ScopeSchool:
		where = `course_id IS NULL`
	case ScopeSubject:
		where = `course_id IN (` + visibleCoursesSQL + `)`
		args = []any{f.ViewerID, f.ViewerID}
	case ScopeCourse:
		where = `course_id = ? AND course_id IN (` + visibleCoursesSQL + `)`
		args = []any{f.CourseID, f.ViewerID, f.ViewerID}
	default:
		return nil, fmt.Errorf("unknown scope %v", f.Scope)
	}

	var rows []announcementRow
	err := database.SelectContext(ctx, &rows, database.Rebind(`
		SELECT id, title, content, created_at, teacher_id, course_id
		FROM announcements
		WHERE `+where+`
		ORDER BY created_at DESC, id DESC`), args...)
	if err != nil {
		return nil, fmt.Errorf("list announcements (%s): %w", f.Scope, err)
	}

	out := make([]models.Announcement, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, nil
}

func GetAnnouncement(ctx context.Context, database *sqlx.DB, id int64) (*models.Announcement, error) {
	var r announcementRow
	err := database.GetContext(ctx, &r, database.Rebind(`
		SELECT id, title, content, created_at, teacher_id, course_id
		FROM announcements WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get announcement %d: %w", id, err)
	}
	a := r.model()
	return &a, nil
}

func CreateAnnouncement(ctx context.Context, database *sqlx.DB, a models.Announcement) (int64, error) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now()
	}
	var id int64
	err := database.GetContext(ctx, &id, database.Rebind(`
		INSERT INTO announcements (title, content, created_at, teacher_id, course_id)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`),
		a.Title, a.Content, a.CreatedAt.UTC(), a.TeacherID, audienceCourseID(a.Audience))
	if err != nil {
		return 0, fmt.Errorf("insert announcement: %w", err)
	}
	return id, nil
}

// DeleteAnnouncement удаляет объявление только от имени автора.
// Нет записи → ErrNotFound, чужая запись → ErrForbidden.
func DeleteAnnouncement(ctx context.Context, database *sqlx.DB, id, teacherID int64) error {
	res, err := database.ExecContext(ctx, database.Rebind(`
		DELETE FROM announcements WHERE id = ? AND teacher_id = ?`), id, teacherID)
	if err != nil {
		return fmt.Errorf("delete announcement %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	var cnt int
	if err := database.GetContext(ctx, &cnt, database.Rebind(`
		SELECT COUNT(*) FROM announcements WHERE id = ?`), id); err != nil {
		return fmt.Errorf("check announcement %d: %w", id, err)
	}
	if cnt == 0 {
		return ErrNotFound
	}
	return ErrForbidden
}
