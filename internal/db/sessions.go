package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// SaveSession привязывает чат к пользователю до expiresAt (перезаписывает прежнюю привязку).
func SaveSession(ctx context.Context, database *sqlx.DB, chatID, userID int64, expiresAt time.Time) error {
	_, err := database.ExecContext(ctx, database.Rebind(`
		INSERT INTO sessions (chat_id, user_id, expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT (chat_id) DO UPDATE SET user_id = excluded.user_id, expires_at = excluded.expires_at`),
		chatID, userID, expiresAt.UTC().Truncate(time.Second))
	if err != nil {
		return fmt.Errorf("save session %d: %w", chatID, err)
	}
	return nil
}

// LoadSession возвращает пользователя чата, если сессия не истекла.
func LoadSession(ctx context.Context, database *sqlx.DB, chatID int64) (int64, bool, error) {
	var userID int64
	err := database.GetContext(ctx, &userID, database.Rebind(`
		SELECT user_id FROM sessions WHERE chat_id = ? AND expires_at > ?`), chatID, now())
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("load session %d: %w", chatID, err)
	}
	return userID, true, nil
}

func DeleteSession(ctx context.Context, database *sqlx.DB, chatID int64) error {
	if _, err := database.ExecContext(ctx, database.Rebind(`DELETE FROM sessions WHERE chat_id = ?`), chatID); err != nil {
		return fmt.Errorf("delete session %d: %w", chatID, err)
	}
	return nil
}

// PurgeExpiredSessions чистит истёкшие сессии, возвращает число удалённых.
func PurgeExpiredSessions(ctx context.Context, database *sqlx.DB) (int64, error) {
	res, err := database.ExecContext(ctx, database.Rebind(`DELETE FROM sessions WHERE expires_at <= ?`), now())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// AudienceChats: чаты с живой сессией, которым видно объявление (кроме автора).
// Общешкольное: всем; курсовое: ведущему курс и записанным ученикам.
func AudienceChats(ctx context.Context, database *sqlx.DB, courseID sql.NullInt64, exceptUserID int64) ([]int64, error) {
	q := `SELECT chat_id FROM sessions WHERE expires_at > ? AND user_id <> ?`
	args := []any{now(), exceptUserID}
	if courseID.Valid {
		q += ` AND user_id IN (
			SELECT teacher_id FROM courses WHERE id = ?
			UNION
			SELECT student_id FROM enrollments WHERE course_id = ?)`
		args = append(args, courseID.Int64, courseID.Int64)
	}
	q += ` ORDER BY chat_id`

	var chats []int64
	if err := database.SelectContext(ctx, &chats, database.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("audience chats: %w", err)
	}
	return chats, nil
}
