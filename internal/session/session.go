// Package session запоминает, какой пользователь вошёл в каком чате,
// чтобы после рестарта бота не логиниться заново.
package session

import (
	"context"
	"time"

	"github.com/Spok95/school-board-bot/internal/db"
	"github.com/jmoiron/sqlx"
)

type Store interface {
	Save(ctx context.Context, chatID, userID int64) error
	// Load возвращает ok=false, если сессии нет или она истекла.
	Load(ctx context.Context, chatID int64) (userID int64, ok bool, err error)
	Delete(ctx context.Context, chatID int64) error
}

// DBStore хранит сессии в таблице sessions.
type DBStore struct {
	db  *sqlx.DB
	ttl time.Duration
}

func NewDBStore(database *sqlx.DB, ttl time.Duration) *DBStore {
	return &DBStore{db: database, ttl: ttl}
}

func (s *DBStore) Save(ctx context.Context, chatID, userID int64) error {
	return db.SaveSession(ctx, s.db, chatID, userID, time.Now().Add(s.ttl))
}

func (s *DBStore) Load(ctx context.Context, chatID int64) (int64, bool, error) {
	return db.LoadSession(ctx, s.db, chatID)
}

func (s *DBStore) Delete(ctx context.Context, chatID int64) error {
	return db.DeleteSession(ctx, s.db, chatID)
}

// Purge удаляет истёкшие сессии; дергается фоновой задачей.
func (s *DBStore) Purge(ctx context.Context) (int64, error) {
	return db.PurgeExpiredSessions(ctx, s.db)
}
