package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Spok95/school-board-bot/internal/announcements"
	"github.com/Spok95/school-board-bot/internal/metrics"
	"github.com/Spok95/school-board-bot/internal/models"
	"github.com/Spok95/school-board-bot/internal/tg"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// AudienceLookup ищет адресатов, то есть чаты с живой сессией, которым видно объявление.
type AudienceLookup interface {
	AudienceChats(ctx context.Context, a models.Announcement) ([]int64, error)
	CourseByID(ctx context.Context, id int64) (*models.Course, error)
}

// Notifier рассылает короткое уведомление о новом объявлении.
// Публикация не ждёт рассылку: Enqueue кладёт в очередь, Run разбирает.
type Notifier struct {
	bot   tg.Sender
	users AudienceLookup
	log   *zap.Logger
	loc   *time.Location
	queue chan models.Announcement
}

func NewNotifier(bot tg.Sender, users AudienceLookup, log *zap.Logger, loc *time.Location) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Notifier{bot: bot, users: users, log: log, loc: loc, queue: make(chan models.Announcement, 64)}
}

// Enqueue подходит как store.PublishedFunc. Очередь полна: уведомление теряется, объявление нет.
func (n *Notifier) Enqueue(_ context.Context, a models.Announcement) {
	select {
	case n.queue <- a:
	default:
		n.log.Warn("notify queue full, dropping", zap.Int64("announcement_id", a.ID))
	}
}

func (n *Notifier) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case a := <-n.queue:
			if err := n.Notify(ctx, a); err != nil {
				n.log.Warn("notify failed", zap.Int64("announcement_id", a.ID), zap.Error(err))
			}
		}
	}
}

// Notify шлёт уведомление всем адресатам, ошибки отправки отдельным чатам не прерывают рассылку.
func (n *Notifier) Notify(ctx context.Context, a models.Announcement) error {
	chats, err := n.users.AudienceChats(ctx, a)
	if err != nil {
		return err
	}
	if len(chats) == 0 {
		return nil
	}

	label := announcements.SchoolWideLabel
	if id, ok := a.CourseID(); ok {
		label = announcements.CourseLabel
		if c, err := n.users.CourseByID(ctx, id); err == nil {
			label = c.Title
		}
	}
	text := fmt.Sprintf("🔔 New announcement · %s\n\n📌 %s\n📅 %s\n%s\n\nOpen 📢 Announcements to read more.",
		label,
		a.Title,
		announcements.FormatDate(a.CreatedAt, n.loc),
		announcements.Preview(a.Content, 200),
	)

	sent := 0
	for _, chatID := range chats {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := tg.Send(n.bot, tgbotapi.NewMessage(chatID, text)); err != nil {
			metrics.HandlerErrors.Inc()
			n.log.Debug("notify chat failed", zap.Int64("chat_id", chatID), zap.Error(err))
			continue
		}
		sent++
	}
	n.log.Info("announcement notification sent",
		zap.Int64("announcement_id", a.ID),
		zap.Int("recipients", len(chats)),
		zap.Int("sent", sent),
	)
	return nil
}
