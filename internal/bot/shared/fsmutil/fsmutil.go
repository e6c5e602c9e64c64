package fsmutil

import (
	"strings"
	"sync"

	"github.com/Spok95/school-board-bot/internal/metrics"
	"github.com/Spok95/school-board-bot/internal/tg"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// pending: простая защита от повторной обработки "тяжёлых" действий.
// Ключ: chatID; значение: произвольный ключ контекста (например "export").
var pending = struct {
	mu sync.Mutex
	m  map[int64]string
}{
	m: make(map[int64]string),
}

// SetPending помечает чат как "в обработке" для ключа key.
// Возвращает false, если уже что-то обрабатывается.
func SetPending(chatID int64, key string) bool {
	pending.mu.Lock()
	defer pending.mu.Unlock()

	if _, ok := pending.m[chatID]; ok {
		return false
	}
	pending.m[chatID] = key
	return true
}

// ClearPending снимает флаг "в обработке", если ключ совпал.
func ClearPending(chatID int64, key string) {
	pending.mu.Lock()
	defer pending.mu.Unlock()

	if cur, ok := pending.m[chatID]; ok && cur == key {
		delete(pending.m, chatID)
	}
}

// States: состояние сценария по chatID. Апдейты идут из разных горутин, поэтому под мьютексом.
type States[T any] struct {
	mu sync.Mutex
	m  map[int64]*T
}

func NewStates[T any]() *States[T] {
	return &States[T]{m: make(map[int64]*T)}
}

func (s *States[T]) Get(chatID int64) *T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[chatID]
}

func (s *States[T]) Set(chatID int64, v *T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[chatID] = v
}

func (s *States[T]) Delete(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, chatID)
}

// DisableMarkup "гасит" inline-клавиатуру у сообщения (one-shot клавиатура).
// Вызываем сразу после обработки callback'а, чтобы предотвратить повторные клики.
func DisableMarkup(bot tg.Sender, chatID int64, messageID int) {
	empty := tgbotapi.InlineKeyboardMarkup{InlineKeyboard: make([][]tgbotapi.InlineKeyboardButton, 0)}
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, empty)
	if _, err := tg.Request(bot, edit); err != nil {
		metrics.HandlerErrors.Inc()
	}
}

// BackCancelRow: готовая строка с кнопками "Назад" и "Отмена".
func BackCancelRow(backData, cancelData string) []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Back", backData),
		tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", cancelData),
	)
}

func CancelRow(cancelData string) []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", cancelData),
	)
}

// IsCancelText: проверка "текстовой" отмены на шагах, где пользователь вводит текст.
// Регистр и пробелы игнорим.
func IsCancelText(s string) bool {
	s = strings.TrimSpace(strings.ToLower(s))
	return s == "cancel" || s == "/cancel" || s == "❌ cancel" || s == "отмена"
}

// Reply: отправка с учётом ошибок в метриках.
func Reply(bot tg.Sender, msg tgbotapi.Chattable) tgbotapi.Message {
	m, err := tg.Send(bot, msg)
	if err != nil {
		metrics.HandlerErrors.Inc()
	}
	return m
}

func ReplyText(bot tg.Sender, chatID int64, text string) tgbotapi.Message {
	return Reply(bot, tgbotapi.NewMessage(chatID, text))
}

// AnswerCallback "размораживает" кнопку в клиенте.
func AnswerCallback(bot tg.Sender, cbID, text string) {
	if _, err := tg.Request(bot, tgbotapi.NewCallback(cbID, text)); err != nil {
		metrics.HandlerErrors.Inc()
	}
}
