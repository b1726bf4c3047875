package telegram

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"time-tracker-bot/internal/auth"
	"time-tracker-bot/internal/conversation"
	"time-tracker-bot/internal/reminder"
	"time-tracker-bot/internal/session"
	"time-tracker-bot/internal/sheets"
	"time-tracker-bot/internal/storage"
)

const defaultIntervalMinutes = 30

// ActivityLog is the tabular store completed activities go to.
type ActivityLog interface {
	Append(ctx context.Context, name, category string, start, end time.Time, duration string) error
	Rows(ctx context.Context) ([]sheets.Row, error)
}

type Bot struct {
	api        *tgbotapi.BotAPI
	s          sender
	authSvc    *auth.Service
	sessions   *session.Registry
	conv       *conversation.Tracker
	reminders  *reminder.Scheduler
	goals      *storage.FileMap[string]
	records    *storage.FileMap[int]
	intervals  *storage.FileMap[int]
	activities ActivityLog
}

func New(
	botToken string,
	authSvc *auth.Service,
	goals *storage.FileMap[string],
	records *storage.FileMap[int],
	intervals *storage.FileMap[int],
	activities ActivityLog,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	b := &Bot{
		api:        api,
		s:          botAPISender{api: api},
		authSvc:    authSvc,
		sessions:   session.NewRegistry(),
		conv:       conversation.NewTracker(),
		goals:      goals,
		records:    records,
		intervals:  intervals,
		activities: activities,
	}
	b.reminders = reminder.New(b.sendReminder)
	return b, nil
}

// Start runs the long-poll loop. Updates are handled one at a time; only
// reminder callbacks run off this goroutine.
func (b *Bot) Start(ctx context.Context) {
	b.reminders.Start()
	defer b.reminders.Stop()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for update := range updates {
		if update.Message != nil {
			b.handleMessage(ctx, update.Message)
			continue
		}
		if update.CallbackQuery != nil {
			b.handleCallback(ctx, update.CallbackQuery)
			continue
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	if !b.authSvc.IsAllowed(msg.From.ID) {
		log.Printf("Unauthorized access attempt by user ID: %d, username: @%s", msg.From.ID, msg.From.UserName)
		b.sendMessage(msg.Chat.ID, accessDeniedMsg)
		return
	}
	if msg.IsCommand() {
		if msg.Command() == "start" {
			b.handleStartCommand(msg)
		}
		return
	}
	b.handleText(ctx, msg)
}

func (b *Bot) handleStartCommand(msg *tgbotapi.Message) {
	userID := msg.From.ID
	var text string
	if start, ok := b.sessions.Peek(userID); ok {
		text = "👋 Привет! У тебя уже запущена активность.\n\n" +
			"🕒 Начата: " + start.Format(sheets.TimeLayout) + "\n\n" +
			"🏆 Личный рекорд: " + b.bestLabel(userID) + "\n\nВыбери действие:"
	} else {
		text = "👋 Привет! Я бот для трекинга времени.\n" +
			"🏆 Личный рекорд: " + b.bestLabel(userID) + "\n\nВыбери действие:"
	}
	b.sendWithMenu(msg.Chat.ID, userID, text)
}

// sendReminder is the per-user reminder job callback. It runs on the cron
// goroutine, so it only touches mutex-guarded state.
func (b *Bot) sendReminder(userID int64) {
	if _, ok := b.sessions.Peek(userID); ok {
		b.sendMessage(userID, reminderActiveMsg)
	} else {
		b.sendMessage(userID, reminderIdleMsg)
	}
}

func (b *Bot) bestLabel(userID int64) string {
	if best, ok := b.records.Get(userID); ok {
		return strconv.Itoa(best)
	}
	return "ещё нет"
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.s.Send(msg); err != nil {
		log.Printf("failed to send message: %v", err)
	}
}

func (b *Bot) sendWithMenu(chatID, userID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = b.mainMenu(userID)
	if _, err := b.s.Send(msg); err != nil {
		log.Printf("failed to send message: %v", err)
	}
}

func (b *Bot) editMessage(chatID int64, messageID int, text string, markup *tgbotapi.InlineKeyboardMarkup) {
	var c tgbotapi.Chattable
	if markup != nil {
		c = tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, *markup)
	} else {
		c = tgbotapi.NewEditMessageText(chatID, messageID, text)
	}
	if _, err := b.s.Send(c); err != nil && !isNotModified(err) {
		log.Printf("failed to edit message: %v", err)
	}
}

// isNotModified matches the Telegram error for an edit that changes
// nothing visible. Such edits are idempotent and must not surface.
func isNotModified(err error) bool {
	return err != nil && strings.Contains(err.Error(), "message is not modified")
}
