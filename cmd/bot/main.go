package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Spok95/school-board-bot/internal/app"
	"github.com/Spok95/school-board-bot/internal/config"
	"github.com/Spok95/school-board-bot/internal/db"
	"github.com/Spok95/school-board-bot/internal/jobs"
	"github.com/Spok95/school-board-bot/internal/logging"
	"github.com/Spok95/school-board-bot/internal/observability"
	"github.com/Spok95/school-board-bot/internal/session"
	"github.com/Spok95/school-board-bot/internal/store"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// version проставляется при сборке: -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Загрузка переменных окружения
	if err := godotenv.Load(); err != nil {
		log.Println("не удалось загрузить .env файл, используем переменные окружения")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("конфигурация: %v", err)
	}

	lg, err := logging.Init(cfg.LogLevel, cfg.Env, cfg.LogFile)
	if err != nil {
		log.Fatalf("логгер: %v", err)
	}
	defer lg.Closer()
	logger := lg.Base

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, version)
	if err != nil {
		logger.Warn("sentry init failed", zap.Error(err))
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		observability.CaptureErr(err)
		logger.Error("bot stopped with error", zap.Error(err))
		flush()
		lg.Closer()
		os.Exit(1)
	}
	logger.Info("bot stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	database, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close() }()

	if err := db.Migrate(ctx, database, logger); err != nil {
		return err
	}
	if cfg.SeedDemo {
		if err := db.Seed(ctx, database, logger); err != nil {
			return err
		}
	}

	runner := jobs.New(ctx, logger)

	var sessions session.Store
	switch cfg.SessionBackend {
	case config.SessionBackendRedis:
		rs := session.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.SessionTTL)
		defer func() { _ = rs.Close() }()
		if err := rs.Ping(ctx); err != nil {
			return err
		}
		sessions = rs
	default:
		ds := session.NewDBStore(database, cfg.SessionTTL)
		runner.Every(10*time.Minute, "session_purge", jobs.PurgeSessions(ds, logger))
		sessions = ds
	}
	runner.Every(30*time.Second, "db_ping", jobs.PingDB(database))

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return err
	}
	bot.Debug = cfg.Env != "prod"
	logger.Info("bot started",
		zap.String("username", bot.Self.UserName),
		zap.String("version", version),
		zap.String("db_driver", cfg.DBDriver),
		zap.String("sessions", cfg.SessionBackend),
	)

	repo := db.NewRepository(database)
	deps := store.Deps{
		Users:         repo,
		Announcements: repo,
		Courses:       repo,
		Sessions:      sessions,
		Log:           logger,
	}
	// адресатов ищем по таблице sessions, с redis-сессиями рассылки нет
	var notifier *app.Notifier
	if cfg.SessionBackend == config.SessionBackendDB {
		notifier = app.NewNotifier(bot, repo, logger, cfg.Location)
		deps.Published = notifier.Enqueue
	}
	reg := store.NewRegistry(deps)

	disp := app.NewDispatcher(bot, reg, logger, cfg.Location)
	httpSrv := app.NewHTTPServer(cfg.HTTPAddr, database, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return httpSrv.Run(gctx) })
	if notifier != nil {
		g.Go(func() error { return notifier.Run(gctx) })
	}
	g.Go(func() error {
		u := tgbotapi.NewUpdate(0)
		u.Timeout = 60
		updates := bot.GetUpdatesChan(u)
		go func() {
			<-gctx.Done()
			bot.StopReceivingUpdates()
		}()
		return disp.Run(gctx, updates)
	})
	return g.Wait()
}
