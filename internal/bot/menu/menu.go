package menu

import (
	"github.com/Spok95/school-board-bot/internal/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	BtnLogin           = "🔑 Log in"
	BtnSignup          = "📝 Sign up"
	BtnAnnouncements   = "📢 Announcements"
	BtnCourses         = "📚 Courses"
	BtnNewAnnouncement = "➕ New announcement"
	BtnExport          = "📥 Export"
	BtnLogout          = "🚪 Log out"
)

// GetMenu возвращает меню в зависимости от того, кто вошёл (nil: никто).
func GetMenu(u *models.User) tgbotapi.ReplyKeyboardMarkup {
	switch {
	case u == nil:
		return loggedOutMenu()
	case u.IsTeacher():
		return teacherMenu()
	default:
		return studentMenu()
	}
}

func loggedOutMenu() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnLogin),
			tgbotapi.NewKeyboardButton(BtnSignup),
		),
	)
}

func studentMenu() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnAnnouncements),
			tgbotapi.NewKeyboardButton(BtnCourses),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnLogout),
		),
	)
}

func teacherMenu() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnAnnouncements),
			tgbotapi.NewKeyboardButton(BtnCourses),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnNewAnnouncement),
			tgbotapi.NewKeyboardButton(BtnExport),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnLogout),
		),
	)
}
