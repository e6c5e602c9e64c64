// Package tgtest: записывающий Sender для тестов экранов.
package tgtest

import (
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Recorder struct {
	mu     sync.Mutex
	sent   []tgbotapi.Chattable
	nextID int
}

func (r *Recorder) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, c)
	r.nextID++
	return tgbotapi.Message{MessageID: r.nextID}, nil
}

func (r *Recorder) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (r *Recorder) All() []tgbotapi.Chattable {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]tgbotapi.Chattable, len(r.sent))
	copy(out, r.sent)
	return out
}

// Texts: тексты отправленных сообщений и правок, по порядку.
func (r *Recorder) Texts() []string {
	var out []string
	for _, c := range r.All() {
		switch m := c.(type) {
		case tgbotapi.MessageConfig:
			out = append(out, m.Text)
		case tgbotapi.EditMessageTextConfig:
			out = append(out, m.Text)
		}
	}
	return out
}

func (r *Recorder) Last() string {
	t := r.Texts()
	if len(t) == 0 {
		return ""
	}
	return t[len(t)-1]
}

// Documents: отправленные файлы.
func (r *Recorder) Documents() []tgbotapi.DocumentConfig {
	var out []tgbotapi.DocumentConfig
	for _, c := range r.All() {
		if d, ok := c.(tgbotapi.DocumentConfig); ok {
			out = append(out, d)
		}
	}
	return out
}

// Buttons: callback-данные всех inline-кнопок последнего сообщения с клавиатурой.
func (r *Recorder) Buttons() []string {
	all := r.All()
	for i := len(all) - 1; i >= 0; i-- {
		var mk *tgbotapi.InlineKeyboardMarkup
		switch m := all[i].(type) {
		case tgbotapi.MessageConfig:
			if k, ok := m.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup); ok {
				mk = &k
			}
		case tgbotapi.EditMessageTextConfig:
			mk = m.ReplyMarkup
		}
		if mk == nil {
			continue
		}
		var out []string
		for _, row := range mk.InlineKeyboard {
			for _, b := range row {
				if b.CallbackData != nil {
					out = append(out, *b.CallbackData)
				}
			}
		}
		return out
	}
	return nil
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = nil
}
