package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Spok95/school-board-bot/internal/models"
	"github.com/jmoiron/sqlx"
)

// NormalizeEmail: email храним в нижнем регистре без пробелов по краям.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser вставляет пользователя и возвращает его id.
// Занятый email → ErrEmailTaken.
func CreateUser(ctx context.Context, database *sqlx.DB, u models.User) (int64, error) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now()
	}
	var id int64
	err := database.GetContext(ctx, &id, database.Rebind(`
		INSERT INTO users (name, email, password_hash, role, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`),
		strings.TrimSpace(u.Name), NormalizeEmail(u.Email), u.PasswordHash, string(u.Role), u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrEmailTaken
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}
	return id, nil
}

func GetUserByEmail(ctx context.Context, database *sqlx.DB, email string) (*models.User, error) {
	var u models.User
	err := database.GetContext(ctx, &u, database.Rebind(`
		SELECT id, name, email, password_hash, role, created_at
		FROM users WHERE email = ?`), NormalizeEmail(email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &u, nil
}

func GetUserByID(ctx context.Context, database *sqlx.DB, id int64) (*models.User, error) {
	var u models.User
	err := database.GetContext(ctx, &u, database.Rebind(`
		SELECT id, name, email, password_hash, role, created_at
		FROM users WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return &u, nil
}

func CountUsers(ctx context.Context, database *sqlx.DB) (int, error) {
	var n int
	if err := database.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, err
	}
	return n, nil
}
