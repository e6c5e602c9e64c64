package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/Spok95/school-board-bot/internal/bot/menu"
	"github.com/Spok95/school-board-bot/internal/bot/shared/fsmutil"
	"github.com/Spok95/school-board-bot/internal/logging"
	"github.com/Spok95/school-board-bot/internal/store"
	"github.com/Spok95/school-board-bot/internal/tg"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type LoginFSMState string

const (
	StateLoginEmail    LoginFSMState = "login_email"
	StateLoginPassword LoginFSMState = "login_password"
)

type loginState struct {
	Step  LoginFSMState
	Email string
}

var loginStates = fsmutil.NewStates[loginState]()

func LoginActive(chatID int64) bool { return loginStates.Get(chatID) != nil }

func CancelLogin(chatID int64) { loginStates.Delete(chatID) }

// StartLogin Начало входа: спрашиваем email
func StartLogin(bot tg.Sender, set *store.Set, chatID int64) {
	if set.Auth.IsLoggedIn() {
		msg := tgbotapi.NewMessage(chatID, "You are already logged in.")
		msg.ReplyMarkup = menu.GetMenu(set.Auth.User())
		fsmutil.Reply(bot, msg)
		return
	}
	CancelSignup(chatID)
	loginStates.Set(chatID, &loginState{Step: StateLoginEmail})

	msg := tgbotapi.NewMessage(chatID, "Enter your email:")
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	fsmutil.Reply(bot, msg)
}

// HandleLoginText Обработка шагов входа
func HandleLoginText(ctx context.Context, bot tg.Sender, set *store.Set, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	st := loginStates.Get(chatID)
	if st == nil {
		return
	}
	text := strings.TrimSpace(msg.Text)
	if fsmutil.IsCancelText(text) {
		loginStates.Delete(chatID)
		showMenu(bot, set, chatID, "Login cancelled.")
		return
	}

	switch st.Step {
	case StateLoginEmail:
		if text == "" {
			fsmutil.ReplyText(bot, chatID, "Email cannot be empty. Enter your email:")
			return
		}
		loginStates.Set(chatID, &loginState{Step: StateLoginPassword, Email: text})
		fsmutil.ReplyText(bot, chatID, "Enter your password:")

	case StateLoginPassword:
		// пароль в переписке не оставляем
		deleteMessage(bot, chatID, msg.MessageID)
		loginStates.Delete(chatID)

		u, err := set.Auth.Login(ctx, st.Email, msg.Text)
		if err != nil {
			reason := "Something went wrong, please try again later."
			switch {
			case errors.Is(err, store.ErrInvalidCredentials):
				reason = "Invalid email or password."
			case errors.Is(err, store.ErrValidation):
				reason = "Please enter both email and password."
			default:
				logging.L(ctx).Error("login failed", zap.Error(err))
			}
			showMenu(bot, set, chatID, "❌ Login Failed\n"+reason)
			return
		}
		showMenu(bot, set, chatID, "👋 Welcome, "+u.Name+"!")
	}
}

func showMenu(bot tg.Sender, set *store.Set, chatID int64, text string) {
	m := tgbotapi.NewMessage(chatID, text)
	m.ReplyMarkup = menu.GetMenu(set.Auth.User())
	fsmutil.Reply(bot, m)
}

func deleteMessage(bot tg.Sender, chatID int64, messageID int) {
	if messageID == 0 {
		return
	}
	_, _ = tg.Request(bot, tgbotapi.NewDeleteMessage(chatID, messageID))
}
