package jobs

import (
	"context"
	"time"

	"github.com/Spok95/school-board-bot/internal/ctxutil"
	"github.com/Spok95/school-board-bot/internal/metrics"
	"go.uber.org/zap"
)

type Purger interface {
	Purge(ctx context.Context) (int64, error)
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

// PurgeSessions чистит истёкшие сессии (для redis не нужно: там TTL на ключах).
func PurgeSessions(p Purger, log *zap.Logger) Job {
	return func(ctx context.Context) error {
		dbCtx, cancel := ctxutil.WithDBTimeout(ctx)
		defer cancel()
		n, err := p.Purge(dbCtx)
		if err != nil {
			return err
		}
		if n > 0 && log != nil {
			log.Info("expired sessions purged", zap.Int64("count", n))
		}
		return nil
	}
}

// PingDB пишет латентность пинга базы в метрику.
func PingDB(db Pinger) Job {
	return func(ctx context.Context) error {
		dbCtx, cancel := ctxutil.WithDBTimeout(ctx)
		defer cancel()
		t0 := time.Now()
		if err := db.PingContext(dbCtx); err != nil {
			return err
		}
		metrics.ObserveDBPing(time.Since(t0))
		return nil
	}
}
