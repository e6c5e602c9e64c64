package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Spok95/school-board-bot/internal/announcements"
	"github.com/Spok95/school-board-bot/internal/bot/shared/fsmutil"
	"github.com/Spok95/school-board-bot/internal/logging"
	"github.com/Spok95/school-board-bot/internal/models"
	"github.com/Spok95/school-board-bot/internal/store"
	"github.com/Spok95/school-board-bot/internal/tg"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type Tab string

const (
	TabAll     Tab = "all"
	TabSchool  Tab = "school"
	TabSubject Tab = "subject"
	TabCourse  Tab = "course"
)

const (
	MsgNoAnnouncements = "No announcements"
	MsgDeleted         = "Announcement deleted successfully"
	MsgDeleteFailed    = "Failed to delete announcement"

	previewLen = 160
	// запас до лимита Telegram в 4096 символов
	maxMessageLen = 3800
)

// boardState: что сейчас открыто на экране объявлений чата.
type boardState struct {
	Tab         Tab
	CourseID    int64
	Query       string
	AwaitSearch bool
}

var boardStates = fsmutil.NewStates[boardState]()

func board(chatID int64) *boardState {
	if st := boardStates.Get(chatID); st != nil {
		return st
	}
	st := &boardState{Tab: TabAll}
	boardStates.Set(chatID, st)
	return st
}

func SearchActive(chatID int64) bool {
	st := boardStates.Get(chatID)
	return st != nil && st.AwaitSearch
}

// ResetBoard забывает фильтр и поиск (после выхода).
func ResetBoard(chatID int64) { boardStates.Delete(chatID) }

// ShowAnnouncements открывает экран объявлений с фильтром «All».
func ShowAnnouncements(ctx context.Context, bot tg.Sender, set *store.Set, chatID int64, loc *time.Location) {
	st := board(chatID)
	st.Tab, st.CourseID, st.AwaitSearch = TabAll, 0, false
	refreshBoard(ctx, bot, set, chatID, loc)
}

// ShowCourseAnnouncements: объявления одного курса.
func ShowCourseAnnouncements(ctx context.Context, bot tg.Sender, set *store.Set, chatID, courseID int64, loc *time.Location) {
	st := board(chatID)
	st.Tab, st.CourseID, st.AwaitSearch = TabCourse, courseID, false
	refreshBoard(ctx, bot, set, chatID, loc)
}

func fetchTab(ctx context.Context, set *store.Set, st *boardState) error {
	switch st.Tab {
	case TabSchool:
		return set.Announcements.FetchSchool(ctx)
	case TabSubject:
		return set.Announcements.FetchSubject(ctx)
	case TabCourse:
		return set.Announcements.FetchCourse(ctx, st.CourseID)
	default:
		return set.Announcements.FetchAll(ctx)
	}
}

// refreshBoard перезапрашивает текущий фильтр и рисует список.
func refreshBoard(ctx context.Context, bot tg.Sender, set *store.Set, chatID int64, loc *time.Location) {
	if !set.Auth.IsLoggedIn() {
		fsmutil.ReplyText(bot, chatID, "Please log in first.")
		return
	}
	st := board(chatID)
	if err := set.Courses.Fetch(ctx); err != nil {
		// без курсов только подписи станут «Course»
		logging.L(ctx).Warn("fetch courses for labels", zap.Error(err))
	}
	if err := fetchTab(ctx, set, st); err != nil {
		logging.L(ctx).Error("fetch announcements", zap.String("tab", string(st.Tab)), zap.Error(err))
		fsmutil.ReplyText(bot, chatID, "❌ Failed to load announcements: "+userError(err))
		return
	}
	renderBoard(bot, set, chatID, loc)
}

func tabTitle(set *store.Set, st *boardState) string {
	switch st.Tab {
	case TabSchool:
		return "School-wide"
	case TabSubject:
		return "Subject"
	case TabCourse:
		if title, ok := set.Courses.Title(st.CourseID); ok {
			return title
		}
		return announcements.CourseLabel
	default:
		return "All"
	}
}

// renderBoard рисует последний загруженный список с учётом поиска, без запроса в базу.
func renderBoard(bot tg.Sender, set *store.Set, chatID int64, loc *time.Location) {
	st := board(chatID)
	user := set.Auth.User()
	courses := set.Courses.Courses()
	list := announcements.Filter(set.Announcements.Announcements(), st.Query)

	var head strings.Builder
	head.WriteString("📢 Announcements · " + tabTitle(set, st))
	if st.Query != "" {
		head.WriteString(fmt.Sprintf("\n🔍 Search: %q", st.Query))
	}
	head.WriteString("\n\n")

	var items []string
	for _, a := range list {
		items = append(items, formatItem(a, courses, loc))
	}
	if len(items) == 0 {
		items = append(items, MsgNoAnnouncements)
	}

	chunks := splitMessages(head.String(), items)
	for i, text := range chunks {
		msg := tgbotapi.NewMessage(chatID, text)
		if i == len(chunks)-1 {
			msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(boardRows(st, user, list)...)
		}
		fsmutil.Reply(bot, msg)
	}
}

func formatItem(a models.Announcement, courses []models.Course, loc *time.Location) string {
	return fmt.Sprintf("📌 %s\n🏷 %s · 📅 %s\n%s",
		a.Title,
		announcements.Label(a, courses),
		announcements.FormatDate(a.CreatedAt, loc),
		announcements.Preview(a.Content, previewLen),
	)
}

// splitMessages режет длинный список на несколько сообщений по границам объявлений.
func splitMessages(head string, items []string) []string {
	var (
		out []string
		cur = head
	)
	for _, it := range items {
		if cur != "" && cur != head && utf8.RuneCountInString(cur)+utf8.RuneCountInString(it)+2 > maxMessageLen {
			out = append(out, strings.TrimRight(cur, "\n"))
			cur = ""
		}
		cur += it + "\n\n"
	}
	return append(out, strings.TrimRight(cur, "\n"))
}

func tabButton(st *boardState, tab Tab, label string) tgbotapi.InlineKeyboardButton {
	if st.Tab == tab {
		label = "✅ " + label
	}
	return tgbotapi.NewInlineKeyboardButtonData(label, "ann_tab_"+string(tab))
}

func boardRows(st *boardState, user *models.User, list []models.Announcement) [][]tgbotapi.InlineKeyboardButton {
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tabButton(st, TabAll, "All"),
			tabButton(st, TabSchool, "School-wide"),
			tabButton(st, TabSubject, "Subject"),
		),
	}
	search := tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔍 Search", "ann_search"))
	if st.Query != "" {
		search = append(search, tgbotapi.NewInlineKeyboardButtonData("✖️ Clear search", "ann_search_clear"))
	}
	rows = append(rows, search)

	for _, a := range list {
		if !announcements.CanDelete(user, a) {
			continue
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Delete: "+announcements.Preview(a.Title, 30), fmt.Sprintf("ann_del_%d", a.ID)),
		))
	}
	return rows
}

// HandleSearchText: введённый текст поиска фильтрует уже загруженный список.
func HandleSearchText(bot tg.Sender, set *store.Set, msg *tgbotapi.Message, loc *time.Location) {
	chatID := msg.Chat.ID
	st := board(chatID)
	st.AwaitSearch = false
	if fsmutil.IsCancelText(msg.Text) {
		fsmutil.ReplyText(bot, chatID, "Search cancelled.")
		return
	}
	st.Query = strings.TrimSpace(msg.Text)
	renderBoard(bot, set, chatID, loc)
}

// HandleBoardCallback: вкладки, поиск и удаление.
func HandleBoardCallback(ctx context.Context, bot tg.Sender, set *store.Set, cb *tgbotapi.CallbackQuery, loc *time.Location) {
	chatID := cb.Message.Chat.ID
	data := cb.Data
	fsmutil.AnswerCallback(bot, cb.ID, "")
	st := board(chatID)

	switch {
	case strings.HasPrefix(data, "ann_tab_"):
		st.Tab = Tab(strings.TrimPrefix(data, "ann_tab_"))
		st.CourseID = 0
		refreshBoard(ctx, bot, set, chatID, loc)

	case data == "ann_search":
		st.AwaitSearch = true
		fsmutil.ReplyText(bot, chatID, "Type text to search in titles and content (or \"cancel\"):")

	case data == "ann_search_clear":
		st.Query = ""
		renderBoard(bot, set, chatID, loc)

	case strings.HasPrefix(data, "ann_delok_"):
		fsmutil.DisableMarkup(bot, chatID, cb.Message.MessageID)
		id, err := strconv.ParseInt(strings.TrimPrefix(data, "ann_delok_"), 10, 64)
		if err != nil {
			return
		}
		if err := set.Announcements.Delete(ctx, id); err != nil {
			logging.L(ctx).Warn("delete announcement", zap.Int64("id", id), zap.Error(err))
			fsmutil.ReplyText(bot, chatID, "❌ "+MsgDeleteFailed+": "+userError(err))
			return
		}
		fsmutil.ReplyText(bot, chatID, "✅ "+MsgDeleted)
		refreshBoard(ctx, bot, set, chatID, loc)

	case data == "ann_delno":
		fsmutil.DisableMarkup(bot, chatID, cb.Message.MessageID)
		fsmutil.ReplyText(bot, chatID, "Deletion cancelled.")

	case strings.HasPrefix(data, "ann_del_"):
		id, err := strconv.ParseInt(strings.TrimPrefix(data, "ann_del_"), 10, 64)
		if err != nil {
			return
		}
		a, ok := findAnnouncement(set, id)
		if !ok {
			fsmutil.ReplyText(bot, chatID, "Announcement not found. Refresh the list.")
			return
		}
		msg := tgbotapi.NewMessage(chatID, DeleteConfirmText(a.Title))
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Delete", fmt.Sprintf("ann_delok_%d", id)),
			tgbotapi.NewInlineKeyboardButtonData("Cancel", "ann_delno"),
		))
		fsmutil.Reply(bot, msg)
	}
}

func DeleteConfirmText(title string) string {
	return fmt.Sprintf("Are you sure you want to delete \"%s\"? This action cannot be undone.", title)
}

func findAnnouncement(set *store.Set, id int64) (models.Announcement, bool) {
	for _, a := range set.Announcements.Announcements() {
		if a.ID == id {
			return a, true
		}
	}
	return models.Announcement{}, false
}

// userError: короткий текст ошибки для чата, без внутренностей базы.
func userError(err error) string {
	switch {
	case errors.Is(err, store.ErrNotLoggedIn):
		return "please log in first"
	case errors.Is(err, store.ErrForbidden):
		return "you are not allowed to do this"
	case errors.Is(err, store.ErrNotFound):
		return "it no longer exists"
	case errors.Is(err, store.ErrValidation):
		return strings.TrimPrefix(err.Error(), store.ErrValidation.Error()+": ")
	case errors.Is(err, context.DeadlineExceeded):
		return "the server is taking too long, try again"
	default:
		return "something went wrong, try again later"
	}
}
