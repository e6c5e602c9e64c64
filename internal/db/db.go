package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPgx      = "pgx"
	DriverPostgres = "postgres"
)

// Open открывает базу и проверяет соединение.
// Для sqlite каталог под файл создаётся автоматически.
func Open(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	if driver == DriverSQLite {
		if dir := sqliteDir(dsn); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create db dir: %w", err)
			}
		}
	}

	database, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		// sqlite пишет одним писателем; один коннект избавляет от SQLITE_BUSY
		database.SetMaxOpenConns(1)
	} else {
		database.SetMaxOpenConns(20)
		database.SetMaxIdleConns(5)
		database.SetConnMaxLifetime(5 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := database.PingContext(pingCtx); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return database, nil
}

// sqliteDir вытаскивает каталог из DSN вида "file:./data/school.db?_pragma=...".
func sqliteDir(dsn string) string {
	p := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	if p == "" || p == ":memory:" {
		return ""
	}
	dir := filepath.Dir(p)
	if dir == "." {
		return ""
	}
	return dir
}

// now возвращает текущее время, обрезанное до секунд: в sqlite время хранится строкой
// и сравнивается лексикографически.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
