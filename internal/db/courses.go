package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Spok95/school-board-bot/internal/models"
	"github.com/jmoiron/sqlx"
)

// visibleCoursesSQL выбирает курсы, которые видит пользователь: свои (учитель) и те, где он записан (ученик).
// Два плейсхолдера, оба: id пользователя.
const visibleCoursesSQL = `
	SELECT id FROM courses WHERE teacher_id = ?
	UNION
	SELECT course_id FROM enrollments WHERE student_id = ?`

func CreateCourse(ctx context.Context, database *sqlx.DB, title string, teacherID int64) (int64, error) {
	var id int64
	err := database.GetContext(ctx, &id, database.Rebind(`
		INSERT INTO courses (title, teacher_id) VALUES (?, ?) RETURNING id`), title, teacherID)
	if err != nil {
		return 0, fmt.Errorf("insert course: %w", err)
	}
	return id, nil
}

// Enroll записывает ученика на курс; повторная запись не ошибка.
func Enroll(ctx context.Context, database *sqlx.DB, courseID, studentID int64) error {
	_, err := database.ExecContext(ctx, database.Rebind(`
		INSERT INTO enrollments (course_id, student_id) VALUES (?, ?)
		ON CONFLICT (course_id, student_id) DO NOTHING`), courseID, studentID)
	if err != nil {
		return fmt.Errorf("enroll %d into %d: %w", studentID, courseID, err)
	}
	return nil
}

func ListVisibleCourses(ctx context.Context, database *sqlx.DB, viewerID int64) ([]models.Course, error) {
	out := []models.Course{}
	err := database.SelectContext(ctx, &out, database.Rebind(`
		SELECT id, title, teacher_id
		FROM courses
		WHERE id IN (`+visibleCoursesSQL+`)
		ORDER BY title, id`), viewerID, viewerID)
	if err != nil {
		return nil, fmt.Errorf("list courses for %d: %w", viewerID, err)
	}
	return out, nil
}

func GetCourseByID(ctx context.Context, database *sqlx.DB, id int64) (*models.Course, error) {
	var c models.Course
	err := database.GetContext(ctx, &c, database.Rebind(`
		SELECT id, title, teacher_id FROM courses WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get course %d: %w", id, err)
	}
	return &c, nil
}
