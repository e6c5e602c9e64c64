package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/Spok95/school-board-bot/internal/announcements"
	"github.com/Spok95/school-board-bot/internal/bot/shared/fsmutil"
	"github.com/Spok95/school-board-bot/internal/export"
	"github.com/Spok95/school-board-bot/internal/logging"
	"github.com/Spok95/school-board-bot/internal/metrics"
	"github.com/Spok95/school-board-bot/internal/store"
	"github.com/Spok95/school-board-bot/internal/tg"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// HandleExport выгружает в xlsx то, что сейчас на экране объявлений (с учётом поиска).
func HandleExport(ctx context.Context, bot tg.Sender, set *store.Set, chatID int64, loc *time.Location) {
	if !set.Auth.User().IsTeacher() {
		fsmutil.ReplyText(bot, chatID, "Only teachers can export announcements.")
		return
	}
	if !fsmutil.SetPending(chatID, "export") {
		fsmutil.ReplyText(bot, chatID, "⏳ Export is already running.")
		return
	}
	defer fsmutil.ClearPending(chatID, "export")

	st := board(chatID)
	if len(set.Announcements.Announcements()) == 0 {
		if err := fetchTab(ctx, set, st); err != nil {
			logging.L(ctx).Error("export fetch", zap.Error(err))
			fsmutil.ReplyText(bot, chatID, "❌ Export failed: "+userError(err))
			return
		}
	}
	if len(set.Courses.Courses()) == 0 {
		_ = set.Courses.Fetch(ctx)
	}

	list := announcements.Filter(set.Announcements.Announcements(), st.Query)
	data, err := export.AnnouncementsXLSX(list, set.Courses.Courses(), loc)
	if err != nil {
		logging.L(ctx).Error("export build", zap.Error(err))
		fsmutil.ReplyText(bot, chatID, "❌ Export failed: "+userError(err))
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  export.BuildAnnouncementsFilename(tabTitle(set, st), time.Now().In(loc)),
		Bytes: data,
	})
	doc.Caption = fmt.Sprintf("📥 %d announcement(s)", len(list))
	if _, err := tg.Send(bot, doc); err != nil {
		metrics.HandlerErrors.Inc()
		logging.L(ctx).Error("export send", zap.Error(err))
	}
}
