package db

import (
	"context"
	"fmt"
	"time"

	"github.com/Spok95/school-board-bot/internal/models"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type seedUser struct {
	key      string
	name     string
	email    string
	password string
	role     models.Role
}

type seedAnnouncement struct {
	title   string
	content string
	author  string
	course  string // пусто: общешкольное
	ageDays int
}

var (
	demoUsers = []seedUser{
		{"t1", "Anna Johnson", "teacher@school.test", "teacher123", models.Teacher},
		{"t2", "Peter Smith", "physics@school.test", "teacher123", models.Teacher},
		{"s1", "Mia Brown", "student@school.test", "student123", models.Student},
		{"s2", "Leo Davis", "leo@school.test", "student123", models.Student},
	}
	demoCourses = []struct {
		title   string
		teacher string
		members []string
	}{
		{"Mathematics", "t1", []string{"s1", "s2"}},
		{"Physics", "t2", []string{"s1"}},
		{"Literature", "t1", []string{"s2"}},
	}
	demoAnnouncements = []seedAnnouncement{
		{"Welcome back!", "The new term starts on Monday. See you all at the assembly.", "t1", "", 10},
		{"Exam Week", "Final exams start next month, the timetable is on the board.", "t2", "", 3},
		{"Homework 3", "Solve problems 1-12 from chapter 4. Exam details will follow.", "t1", "Mathematics", 2},
		{"Lab safety", "Bring safety goggles to the next physics lab.", "t2", "Physics", 1},
		{"Reading list", "Pick one novel from the list for the spring essay.", "t1", "Literature", 0},
	}
)

// Seed наполняет пустую базу демо-данными. На непустой базе ничего не делает.
func Seed(ctx context.Context, database *sqlx.DB, log *zap.Logger) error {
	n, err := CountUsers(ctx, database)
	if err != nil {
		return fmt.Errorf("seed: count users: %w", err)
	}
	if n > 0 {
		return nil
	}

	tx, err := database.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	users := make(map[string]int64, len(demoUsers))
	for _, u := range demoUsers {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("seed: hash %s: %w", u.email, err)
		}
		var id int64
		err = tx.GetContext(ctx, &id, tx.Rebind(`
			INSERT INTO users (name, email, password_hash, role, created_at)
			VALUES (?, ?, ?, ?, ?) RETURNING id`),
			u.name, u.email, string(hash), string(u.role), now())
		if err != nil {
			return fmt.Errorf("seed: user %s: %w", u.email, err)
		}
		users[u.key] = id
	}

	courses := make(map[string]int64, len(demoCourses))
	for _, c := range demoCourses {
		var id int64
		if err := tx.GetContext(ctx, &id, tx.Rebind(`
			INSERT INTO courses (title, teacher_id) VALUES (?, ?) RETURNING id`),
			c.title, users[c.teacher]); err != nil {
			return fmt.Errorf("seed: course %s: %w", c.title, err)
		}
		courses[c.title] = id
		for _, m := range c.members {
			if _, err := tx.ExecContext(ctx, tx.Rebind(`
				INSERT INTO enrollments (course_id, student_id) VALUES (?, ?)`), id, users[m]); err != nil {
				return fmt.Errorf("seed: enroll %s: %w", m, err)
			}
		}
	}

	base := now()
	for _, a := range demoAnnouncements {
		var courseID any
		if a.course != "" {
			courseID = courses[a.course]
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO announcements (title, content, created_at, teacher_id, course_id)
			VALUES (?, ?, ?, ?, ?)`),
			a.title, a.content, base.Add(-time.Duration(a.ageDays)*24*time.Hour), users[a.author], courseID); err != nil {
			return fmt.Errorf("seed: announcement %q: %w", a.title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	if log != nil {
		log.Info("demo data seeded",
			zap.Int("users", len(demoUsers)),
			zap.Int("courses", len(demoCourses)),
			zap.Int("announcements", len(demoAnnouncements)))
	}
	return nil
}
