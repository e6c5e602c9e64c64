package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Spok95/school-board-bot/internal/bot/shared/fsmutil"
	"github.com/Spok95/school-board-bot/internal/logging"
	"github.com/Spok95/school-board-bot/internal/store"
	"github.com/Spok95/school-board-bot/internal/tg"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// ShowCourses показывает видимые курсы; по нажатию открываются объявления курса.
func ShowCourses(ctx context.Context, bot tg.Sender, set *store.Set, chatID int64) {
	user := set.Auth.User()
	if user == nil {
		fsmutil.ReplyText(bot, chatID, "Please log in first.")
		return
	}
	if err := set.Courses.Fetch(ctx); err != nil {
		logging.L(ctx).Error("fetch courses", zap.Error(err))
		fsmutil.ReplyText(bot, chatID, "❌ Failed to load courses: "+userError(err))
		return
	}
	courses := set.Courses.Courses()
	if len(courses) == 0 {
		fsmutil.ReplyText(bot, chatID, "No courses yet")
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, c := range courses {
		label := c.Title
		if c.TeacherID == user.ID {
			label += " · teaching"
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("course_%d", c.ID)),
		))
	}
	msg := tgbotapi.NewMessage(chatID, "📚 Your courses. Tap one to see its announcements:")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	fsmutil.Reply(bot, msg)
}

func HandleCourseCallback(ctx context.Context, bot tg.Sender, set *store.Set, cb *tgbotapi.CallbackQuery, loc *time.Location) {
	fsmutil.AnswerCallback(bot, cb.ID, "")
	id, err := strconv.ParseInt(strings.TrimPrefix(cb.Data, "course_"), 10, 64)
	if err != nil {
		return
	}
	ShowCourseAnnouncements(ctx, bot, set, cb.Message.Chat.ID, id, loc)
}
