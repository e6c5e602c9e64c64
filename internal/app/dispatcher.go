package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Spok95/school-board-bot/internal/bot/auth"
	"github.com/Spok95/school-board-bot/internal/bot/handlers"
	"github.com/Spok95/school-board-bot/internal/bot/menu"
	"github.com/Spok95/school-board-bot/internal/bot/shared/fsmutil"
	"github.com/Spok95/school-board-bot/internal/ctxutil"
	"github.com/Spok95/school-board-bot/internal/logging"
	"github.com/Spok95/school-board-bot/internal/metrics"
	"github.com/Spok95/school-board-bot/internal/observability"
	"github.com/Spok95/school-board-bot/internal/store"
	"github.com/Spok95/school-board-bot/internal/tg"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Dispatcher разводит апдейты по экранам. Чаты обрабатываются параллельно,
// внутри одного чата: строго по очереди.
type Dispatcher struct {
	bot     tg.Sender
	reg     *store.Registry
	log     *zap.Logger
	loc     *time.Location
	limiter *ChatLimiter

	wg sync.WaitGroup
}

func NewDispatcher(bot tg.Sender, reg *store.Registry, log *zap.Logger, loc *time.Location) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Dispatcher{bot: bot, reg: reg, log: log, loc: loc, limiter: NewChatLimiter()}
}

// Run читает апдейты до отмены ctx и дожидается начатых обработчиков.
func (d *Dispatcher) Run(ctx context.Context, updates <-chan tgbotapi.Update) error {
	defer d.wg.Wait()
	for {
		select {
		case <-ctx.Done():
			return nil
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			d.wg.Add(1)
			go func() {
				defer d.wg.Done()
				d.Handle(ctx, upd)
			}()
		}
	}
}

func chatOf(upd tgbotapi.Update) (int64, bool) {
	switch {
	case upd.Message != nil && upd.Message.Chat != nil:
		return upd.Message.Chat.ID, true
	case upd.CallbackQuery != nil && upd.CallbackQuery.Message != nil && upd.CallbackQuery.Message.Chat != nil:
		return upd.CallbackQuery.Message.Chat.ID, true
	default:
		return 0, false
	}
}

// Handle обрабатывает один апдейт синхронно.
func (d *Dispatcher) Handle(ctx context.Context, upd tgbotapi.Update) {
	chatID, ok := chatOf(upd)
	if !ok {
		return
	}
	metrics.BotUpdates.Inc()

	reqID := uuid.NewString()
	log := d.log.With(zap.String("request_id", reqID), zap.Int64("chat_id", chatID), zap.Int("update_id", upd.UpdateID))
	ctx = ctxutil.WithChatID(ctx, chatID)
	ctx = ctxutil.WithRequestID(ctx, reqID)

	unlock := d.limiter.lock(chatID)
	defer unlock()

	defer func() {
		if r := recover(); r != nil {
			metrics.HandlerErrors.Inc()
			observability.CaptureErrCtx(ctx, fmt.Errorf("panic in handler: %v", r))
			log.Error("handler panic", zap.Any("panic", r), zap.Stack("stack"))
		}
	}()

	set := d.reg.For(ctx, chatID)
	if u := set.Auth.User(); u != nil {
		ctx = ctxutil.WithUserID(ctx, u.ID)
		log = log.With(zap.Int64("user_id", u.ID))
	}
	ctx = logging.WithLogger(ctx, log)

	start := time.Now()
	switch {
	case upd.Message != nil:
		ctx = ctxutil.WithOp(ctx, "message")
		d.handleMessage(ctx, set, upd.Message)
	case upd.CallbackQuery != nil:
		ctx = ctxutil.WithOp(ctx, "callback")
		d.handleCallback(ctx, set, upd.CallbackQuery)
	}
	log.Debug("update handled", zap.Duration("took", time.Since(start)))
}

func (d *Dispatcher) handleMessage(ctx context.Context, set *store.Set, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	// /start всегда сбрасывает начатые сценарии
	if text == "/start" {
		d.resetScenarios(chatID)
		handlers.HandleStart(d.bot, set, chatID)
		return
	}

	switch {
	case auth.LoginActive(chatID):
		auth.HandleLoginText(ctx, d.bot, set, msg)
		return
	case auth.SignupActive(chatID):
		auth.HandleSignupText(ctx, d.bot, set, msg)
		return
	case handlers.CreateActive(chatID):
		handlers.HandleCreateText(ctx, d.bot, set, msg)
		return
	case handlers.SearchActive(chatID):
		handlers.HandleSearchText(d.bot, set, msg, d.loc)
		return
	}

	switch text {
	case "/login", menu.BtnLogin:
		auth.StartLogin(d.bot, set, chatID)
		return
	case "/signup", menu.BtnSignup:
		auth.StartSignup(d.bot, set, chatID)
		return
	}

	if !set.Auth.IsLoggedIn() {
		m := tgbotapi.NewMessage(chatID, "⚠️ Please log in first.")
		m.ReplyMarkup = menu.GetMenu(nil)
		fsmutil.Reply(d.bot, m)
		return
	}

	switch text {
	case "/announcements", menu.BtnAnnouncements:
		handlers.ShowAnnouncements(ctx, d.bot, set, chatID, d.loc)
	case "/courses", menu.BtnCourses:
		handlers.ShowCourses(ctx, d.bot, set, chatID)
	case "/new", menu.BtnNewAnnouncement:
		handlers.StartCreateAnnouncement(d.bot, set, chatID)
	case "/export", menu.BtnExport:
		handlers.HandleExport(ctx, d.bot, set, chatID, d.loc)
	case "/logout", menu.BtnLogout:
		handlers.HandleLogout(ctx, d.bot, set, chatID)
		d.resetScenarios(chatID)
		d.reg.Forget(chatID)
	default:
		fsmutil.ReplyText(d.bot, chatID, "⚠️ Unknown command. Use /start")
	}
}

func (d *Dispatcher) handleCallback(ctx context.Context, set *store.Set, cb *tgbotapi.CallbackQuery) {
	data := cb.Data
	logging.L(ctx).Debug("callback", zap.String("data", data), zap.Int("message_id", cb.Message.MessageID))

	switch {
	case strings.HasPrefix(data, "signup_"):
		auth.HandleSignupCallback(d.bot, set, cb)
	case strings.HasPrefix(data, "ann_"):
		handlers.HandleBoardCallback(ctx, d.bot, set, cb, d.loc)
	case strings.HasPrefix(data, "course_"):
		handlers.HandleCourseCallback(ctx, d.bot, set, cb, d.loc)
	case strings.HasPrefix(data, "newann_"):
		handlers.HandleCreateCallback(ctx, d.bot, set, cb)
	default:
		fsmutil.AnswerCallback(d.bot, cb.ID, "")
	}
}

func (d *Dispatcher) resetScenarios(chatID int64) {
	auth.CancelLogin(chatID)
	auth.CancelSignup(chatID)
	handlers.CancelCreate(chatID)
	if handlers.SearchActive(chatID) {
		handlers.ResetBoard(chatID)
	}
}
