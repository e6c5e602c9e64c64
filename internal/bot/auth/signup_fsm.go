package auth

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/Spok95/school-board-bot/internal/bot/shared/fsmutil"
	"github.com/Spok95/school-board-bot/internal/logging"
	"github.com/Spok95/school-board-bot/internal/models"
	"github.com/Spok95/school-board-bot/internal/store"
	"github.com/Spok95/school-board-bot/internal/tg"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type SignupFSMState string

const (
	StateSignupRole     SignupFSMState = "signup_role"
	StateSignupName     SignupFSMState = "signup_name"
	StateSignupEmail    SignupFSMState = "signup_email"
	StateSignupPassword SignupFSMState = "signup_password"
	StateSignupConfirm  SignupFSMState = "signup_confirm"
)

const (
	MsgFillAllFields    = "Please fill in all fields"
	MsgPasswordMismatch = "Passwords do not match"
	MsgPasswordTooShort = "Password must be at least 6 characters"
	MsgSignupSuccess    = "Account created successfully! Please log in with your credentials."
)

type SignupForm struct {
	Role            models.Role
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

type signupState struct {
	Step SignupFSMState
	Form SignupForm
}

var signupStates = fsmutil.NewStates[signupState]()

func SignupActive(chatID int64) bool { return signupStates.Get(chatID) != nil }

func CancelSignup(chatID int64) { signupStates.Delete(chatID) }

// ValidateSignupForm проверяет форму до обращения к стору. Пустая строка: форма в порядке.
func ValidateSignupForm(f SignupForm) string {
	if strings.TrimSpace(f.Name) == "" || strings.TrimSpace(f.Email) == "" ||
		f.Password == "" || f.ConfirmPassword == "" {
		return MsgFillAllFields
	}
	if f.Password != f.ConfirmPassword {
		return MsgPasswordMismatch
	}
	if utf8.RuneCountInString(f.Password) < store.MinPasswordLen {
		return MsgPasswordTooShort
	}
	return ""
}

func signupRoleRows() [][]tgbotapi.InlineKeyboardButton {
	return [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎒 Student", "signup_role_student"),
			tgbotapi.NewInlineKeyboardButtonData("🧑‍🏫 Teacher", "signup_role_teacher"),
		),
		fsmutil.CancelRow("signup_cancel"),
	}
}

// StartSignup Начало регистрации: выбор роли (по умолчанию ученик)
func StartSignup(bot tg.Sender, set *store.Set, chatID int64) {
	if set.Auth.IsLoggedIn() {
		showMenu(bot, set, chatID, "You are already logged in. Log out first to create another account.")
		return
	}
	CancelLogin(chatID)
	signupStates.Set(chatID, &signupState{Step: StateSignupRole, Form: SignupForm{Role: models.Student}})

	rm := tgbotapi.NewMessage(chatID, "📝 Sign up")
	rm.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	fsmutil.Reply(bot, rm)

	msg := tgbotapi.NewMessage(chatID, "Who are you? (Student by default, or just type your full name)")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(signupRoleRows()...)
	fsmutil.Reply(bot, msg)
}

// HandleSignupCallback: выбор роли и отмена
func HandleSignupCallback(bot tg.Sender, set *store.Set, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID
	fsmutil.AnswerCallback(bot, cb.ID, "")
	fsmutil.DisableMarkup(bot, chatID, cb.Message.MessageID)

	st := signupStates.Get(chatID)
	if st == nil {
		return
	}
	switch cb.Data {
	case "signup_cancel":
		signupStates.Delete(chatID)
		showMenu(bot, set, chatID, "Sign up cancelled.")
		return
	case "signup_role_student":
		st.Form.Role = models.Student
	case "signup_role_teacher":
		st.Form.Role = models.Teacher
	default:
		return
	}
	if st.Step != StateSignupRole {
		return
	}
	st.Step = StateSignupName
	signupStates.Set(chatID, st)
	fsmutil.ReplyText(bot, chatID, "Enter your full name:")
}

// HandleSignupText Обработка шагов регистрации
func HandleSignupText(ctx context.Context, bot tg.Sender, set *store.Set, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	st := signupStates.Get(chatID)
	if st == nil {
		return
	}
	text := strings.TrimSpace(msg.Text)
	if fsmutil.IsCancelText(text) {
		signupStates.Delete(chatID)
		showMenu(bot, set, chatID, "Sign up cancelled.")
		return
	}

	switch st.Step {
	case StateSignupRole, StateSignupName:
		// на шаге роли текст: это уже имя, роль остаётся по умолчанию
		st.Form.Name = text
		st.Step = StateSignupEmail
		fsmutil.ReplyText(bot, chatID, "Enter your email:")

	case StateSignupEmail:
		st.Form.Email = text
		st.Step = StateSignupPassword
		fsmutil.ReplyText(bot, chatID, "Create a password (at least 6 characters):")

	case StateSignupPassword:
		deleteMessage(bot, chatID, msg.MessageID)
		st.Form.Password = msg.Text
		st.Step = StateSignupConfirm
		fsmutil.ReplyText(bot, chatID, "Confirm your password:")

	case StateSignupConfirm:
		deleteMessage(bot, chatID, msg.MessageID)
		st.Form.ConfirmPassword = msg.Text
		submitSignup(ctx, bot, set, chatID, st)
		return
	}
	signupStates.Set(chatID, st)
}

func submitSignup(ctx context.Context, bot tg.Sender, set *store.Set, chatID int64, st *signupState) {
	if problem := ValidateSignupForm(st.Form); problem != "" {
		switch problem {
		case MsgFillAllFields:
			st.Step = StateSignupName
			fsmutil.ReplyText(bot, chatID, "⚠️ "+problem+"\nEnter your full name:")
		default:
			st.Form.Password, st.Form.ConfirmPassword = "", ""
			st.Step = StateSignupPassword
			fsmutil.ReplyText(bot, chatID, "⚠️ "+problem+"\nCreate a password (at least 6 characters):")
		}
		signupStates.Set(chatID, st)
		return
	}

	_, err := set.Auth.Signup(ctx, store.SignupInput{
		Email:    st.Form.Email,
		Password: st.Form.Password,
		Name:     st.Form.Name,
		Role:     st.Form.Role,
	})
	if err != nil {
		var text string
		switch {
		case errors.Is(err, store.ErrEmailTaken):
			text = "❌ Signup Failed\nThis email is already registered.\nEnter another email:"
		case errors.Is(err, store.ErrValidation):
			text = "❌ Signup Failed\n" + strings.TrimPrefix(err.Error(), store.ErrValidation.Error()+": ") + "\nEnter your email:"
		default:
			logging.L(ctx).Error("signup failed", zap.Error(err))
			signupStates.Delete(chatID)
			showMenu(bot, set, chatID, "❌ Signup Failed\nSomething went wrong, please try again later.")
			return
		}
		st.Form.Password, st.Form.ConfirmPassword = "", ""
		st.Step = StateSignupEmail
		signupStates.Set(chatID, st)
		fsmutil.ReplyText(bot, chatID, text)
		return
	}

	signupStates.Delete(chatID)
	showMenu(bot, set, chatID, "✅ "+MsgSignupSuccess)
}
