package handlers

import (
	"context"

	"github.com/Spok95/school-board-bot/internal/bot/shared/fsmutil"
	"github.com/Spok95/school-board-bot/internal/logging"
	"github.com/Spok95/school-board-bot/internal/store"
	"github.com/Spok95/school-board-bot/internal/tg"
	"go.uber.org/zap"
)

// HandleStart: меню для текущего состояния входа.
func HandleStart(bot tg.Sender, set *store.Set, chatID int64) {
	if u := set.Auth.User(); u != nil {
		reply(bot, set, chatID, "👋 Welcome back, "+u.Name+"! Choose an action:")
		return
	}
	reply(bot, set, chatID, "👋 Welcome to the School Board! Log in or sign up to continue.")
}

// HandleLogout разлогинивает чат и сбрасывает сценарии.
func HandleLogout(ctx context.Context, bot tg.Sender, set *store.Set, chatID int64) {
	if err := set.Auth.Logout(ctx); err != nil {
		// в памяти уже вышли, не удалась только очистка сохранённой сессии
		logging.L(ctx).Warn("logout: delete session", zap.Error(err))
	}
	ResetChat(chatID)
	reply(bot, set, chatID, "🚪 You have been logged out.")
}

// ResetChat сбрасывает все сценарии экрана объявлений.
func ResetChat(chatID int64) {
	ResetBoard(chatID)
	CancelCreate(chatID)
	fsmutil.ClearPending(chatID, "export")
}
