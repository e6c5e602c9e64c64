package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Spok95/school-board-bot/internal/announcements"
	"github.com/Spok95/school-board-bot/internal/bot/menu"
	"github.com/Spok95/school-board-bot/internal/bot/shared/fsmutil"
	"github.com/Spok95/school-board-bot/internal/logging"
	"github.com/Spok95/school-board-bot/internal/models"
	"github.com/Spok95/school-board-bot/internal/store"
	"github.com/Spok95/school-board-bot/internal/tg"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type CreateFSMState string

const (
	StateCreateTitle   CreateFSMState = "create_title"
	StateCreateContent CreateFSMState = "create_content"
	StateCreateTarget  CreateFSMState = "create_target"
	StateCreateConfirm CreateFSMState = "create_confirm"
)

const (
	maxTitleLen   = 200
	maxContentLen = 3000
)

type createState struct {
	Step     CreateFSMState
	Title    string
	Content  string
	Audience models.Audience
}

var createStates = fsmutil.NewStates[createState]()

func CreateActive(chatID int64) bool { return createStates.Get(chatID) != nil }

func CancelCreate(chatID int64) { createStates.Delete(chatID) }

// StartCreateAnnouncement Начало публикации (только учителя)
func StartCreateAnnouncement(bot tg.Sender, set *store.Set, chatID int64) {
	if !set.Auth.User().IsTeacher() {
		fsmutil.ReplyText(bot, chatID, "Only teachers can publish announcements.")
		return
	}
	createStates.Set(chatID, &createState{Step: StateCreateTitle})
	fsmutil.ReplyText(bot, chatID, "📝 New announcement\nEnter the title (or \"cancel\"):")
}

// HandleCreateText Обработка текстовых шагов
func HandleCreateText(ctx context.Context, bot tg.Sender, set *store.Set, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	st := createStates.Get(chatID)
	if st == nil {
		return
	}
	text := strings.TrimSpace(msg.Text)
	if fsmutil.IsCancelText(text) {
		cancelCreate(bot, set, chatID)
		return
	}

	switch st.Step {
	case StateCreateTitle:
		if text == "" || len([]rune(text)) > maxTitleLen {
			fsmutil.ReplyText(bot, chatID, fmt.Sprintf("Title must be 1-%d characters. Enter the title:", maxTitleLen))
			return
		}
		st.Title = text
		st.Step = StateCreateContent
		createStates.Set(chatID, st)
		fsmutil.ReplyText(bot, chatID, "Enter the announcement text:")

	case StateCreateContent:
		if text == "" || len([]rune(text)) > maxContentLen {
			fsmutil.ReplyText(bot, chatID, fmt.Sprintf("Text must be 1-%d characters. Enter the announcement text:", maxContentLen))
			return
		}
		st.Content = text
		st.Step = StateCreateTarget
		createStates.Set(chatID, st)
		askTarget(ctx, bot, set, chatID)

	default:
		fsmutil.ReplyText(bot, chatID, "Please use the buttons above.")
	}
}

func askTarget(ctx context.Context, bot tg.Sender, set *store.Set, chatID int64) {
	if err := set.Courses.Fetch(ctx); err != nil {
		logging.L(ctx).Warn("fetch courses for target", zap.Error(err))
	}
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🏫 "+announcements.SchoolWideLabel, "newann_target_0")),
	}
	for _, c := range set.Courses.Owned(set.Auth.User().ID) {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📚 "+c.Title, fmt.Sprintf("newann_target_%d", c.ID)),
		))
	}
	rows = append(rows, fsmutil.BackCancelRow("newann_back", "newann_cancel"))

	msg := tgbotapi.NewMessage(chatID, "Who should see it?")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	fsmutil.Reply(bot, msg)
}

// HandleCreateCallback: выбор аудитории, подтверждение, назад/отмена
func HandleCreateCallback(ctx context.Context, bot tg.Sender, set *store.Set, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID
	data := cb.Data
	fsmutil.AnswerCallback(bot, cb.ID, "")
	fsmutil.DisableMarkup(bot, chatID, cb.Message.MessageID)

	st := createStates.Get(chatID)
	if st == nil {
		return
	}

	switch {
	case data == "newann_cancel":
		cancelCreate(bot, set, chatID)

	case data == "newann_back":
		switch st.Step {
		case StateCreateConfirm:
			st.Step = StateCreateTarget
			createStates.Set(chatID, st)
			askTarget(ctx, bot, set, chatID)
		default:
			st.Step = StateCreateContent
			createStates.Set(chatID, st)
			fsmutil.ReplyText(bot, chatID, "Enter the announcement text:")
		}

	case strings.HasPrefix(data, "newann_target_") && st.Step == StateCreateTarget:
		id, err := strconv.ParseInt(strings.TrimPrefix(data, "newann_target_"), 10, 64)
		if err != nil {
			return
		}
		st.Audience = models.SchoolWide{}
		if id > 0 {
			st.Audience = models.CourseScoped{CourseID: id}
		}
		st.Step = StateCreateConfirm
		createStates.Set(chatID, st)

		label := announcements.Label(models.Announcement{Audience: st.Audience}, set.Courses.Courses())
		msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("Publish this announcement?\n\n📌 %s\n🏷 %s\n\n%s", st.Title, label, st.Content))
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("✅ Publish", "newann_publish")),
			fsmutil.BackCancelRow("newann_back", "newann_cancel"),
		)
		fsmutil.Reply(bot, msg)

	case data == "newann_publish" && st.Step == StateCreateConfirm:
		createStates.Delete(chatID)
		id, err := set.Announcements.Create(ctx, st.Title, st.Content, st.Audience)
		if err != nil {
			logging.L(ctx).Warn("create announcement", zap.Error(err))
			text := "❌ Failed to publish announcement: " + userError(err)
			if errors.Is(err, store.ErrForbidden) {
				text = "❌ You can only post to the courses you teach."
			}
			reply(bot, set, chatID, text)
			return
		}
		logging.L(ctx).Info("announcement published", zap.Int64("id", id))
		reply(bot, set, chatID, "✅ Announcement published")
	}
}

func cancelCreate(bot tg.Sender, set *store.Set, chatID int64) {
	createStates.Delete(chatID)
	reply(bot, set, chatID, "Cancelled.")
}

// reply: сообщение с клавиатурой меню текущего пользователя.
func reply(bot tg.Sender, set *store.Set, chatID int64, text string) {
	m := tgbotapi.NewMessage(chatID, text)
	m.ReplyMarkup = menu.GetMenu(set.Auth.User())
	fsmutil.Reply(bot, m)
}
