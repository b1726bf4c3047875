package telegram

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"time-tracker-bot/internal/conversation"
	"time-tracker-bot/internal/report"
	"time-tracker-bot/internal/sheets"
)

// Callback payloads. cat_/set_interval_ carry the category label and the
// preset minutes directly.
const (
	cbStartActivity     = "start_activity"
	cbStopActivity      = "stop_activity"
	cbCurrentActivity   = "current_activity"
	cbDailyReport       = "daily_report"
	cbReminderSettings  = "reminder_settings"
	cbSetCustomInterval = "set_custom_interval"
	cbMyGoal            = "my_goal"
	cbPersonalBest      = "personal_best"
	catPrefix           = "cat_"
	setIntervalPrefix   = "set_interval_"
)

const (
	accessDeniedMsg       = "❌ У вас нет доступа к этому боту."
	alreadyActiveMsg      = "❗️ Активность уже запущена."
	startedMsg            = "✅ Активность начата! Нажмите \"Завершить активность\" когда закончите."
	noActiveMsg           = "❌ Нет активной активности."
	chooseCategoryMsg     = "Выберите категорию завершённой активности:"
	unexpectedCategoryMsg = "❗️ Неожиданный выбор категории."
	chooseIntervalMsg     = "🔔 Выбери интервал напоминаний:"
	customIntervalMsg     = "✏️ Введи интервал в минутах (1-180):"
	intervalRangeMsg      = "❌ Введи число от 1 до 180 минут."
	intervalNotNumberMsg  = "❌ Пожалуйста, введи корректное число."
	useMenuMsg            = "❗️ Пожалуйста, используй кнопки меню."
	reminderActiveMsg     = "🔔 Напоминание: активность всё ещё продолжается."
	reminderIdleMsg       = "🔔 Пора начать новую активность!"
)

var categories = []string{"💼 Работа", "🏋️ Спорт", "🌴 Отдых", "📚 Учёба", "🔧 Другое"}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if _, err := b.s.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Printf("failed to answer callback: %v", err)
	}
	if cb.Message == nil {
		return
	}
	userID := cb.From.ID
	chatID := cb.Message.Chat.ID
	messageID := cb.Message.MessageID

	if !b.authSvc.IsAllowed(userID) {
		log.Printf("Unauthorized callback from user ID: %d", userID)
		b.editMessage(chatID, messageID, accessDeniedMsg, nil)
		return
	}

	now := time.Now()

	switch {
	case cb.Data == cbStartActivity:
		b.handleStartActivity(chatID, messageID, userID, now)
	case cb.Data == cbStopActivity:
		b.handleStopActivity(chatID, messageID, userID, now)
	case strings.HasPrefix(cb.Data, catPrefix):
		b.handleCategory(chatID, messageID, userID, strings.TrimPrefix(cb.Data, catPrefix))
	case cb.Data == cbCurrentActivity:
		b.handleCurrentActivity(chatID, messageID, userID)
	case cb.Data == cbDailyReport:
		b.handleDailyReport(ctx, chatID, messageID, userID, now)
	case cb.Data == cbReminderSettings:
		kb := intervalKeyboard()
		b.editMessage(chatID, messageID, chooseIntervalMsg, &kb)
	case cb.Data == cbSetCustomInterval:
		b.conv.AwaitInterval(userID)
		b.editMessage(chatID, messageID, customIntervalMsg, nil)
	case strings.HasPrefix(cb.Data, setIntervalPrefix):
		minutes, err := strconv.Atoi(strings.TrimPrefix(cb.Data, setIntervalPrefix))
		if err != nil {
			log.Printf("⚠️ malformed interval payload: %q", cb.Data)
			return
		}
		b.applyInterval(chatID, messageID, userID, minutes)
	case cb.Data == cbMyGoal:
		b.handleMyGoal(chatID, messageID, userID)
	case cb.Data == cbPersonalBest:
		menu := b.mainMenu(userID)
		b.editMessage(chatID, messageID, fmt.Sprintf("🏆 Личный рекорд: %s сек", b.bestLabel(userID)), &menu)
	default:
		log.Printf("⚠️ unknown callback payload: %q", cb.Data)
	}
}

func (b *Bot) handleStartActivity(chatID int64, messageID int, userID int64, now time.Time) {
	if err := b.sessions.Start(userID, now); err != nil {
		menu := b.mainMenu(userID)
		b.editMessage(chatID, messageID, alreadyActiveMsg, &menu)
		return
	}
	menu := b.mainMenu(userID)
	b.editMessage(chatID, messageID, startedMsg, &menu)
	b.scheduleReminder(userID)
}

func (b *Bot) handleStopActivity(chatID int64, messageID int, userID int64, now time.Time) {
	start, err := b.sessions.Stop(userID)
	if err != nil {
		menu := b.mainMenu(userID)
		b.editMessage(chatID, messageID, noActiveMsg, &menu)
		return
	}
	b.reminders.Cancel(userID)
	b.conv.BeginStop(userID, start, now)
	kb := categoryKeyboard()
	b.editMessage(chatID, messageID, chooseCategoryMsg, &kb)
}

func (b *Bot) handleCategory(chatID int64, messageID int, userID int64, category string) {
	if err := b.conv.ChooseCategory(userID, category); err != nil {
		menu := b.mainMenu(userID)
		b.editMessage(chatID, messageID, unexpectedCategoryMsg, &menu)
		return
	}
	b.editMessage(chatID, messageID, fmt.Sprintf("Категория выбрана: %s. Введите название активности:", category), nil)
}

func (b *Bot) handleCurrentActivity(chatID int64, messageID int, userID int64) {
	menu := b.mainMenu(userID)
	if start, ok := b.sessions.Peek(userID); ok {
		b.editMessage(chatID, messageID, fmt.Sprintf("📅 Активность начата в %s", start.Format(sheets.TimeLayout)), &menu)
		return
	}
	b.editMessage(chatID, messageID, noActiveMsg, &menu)
}

func (b *Bot) handleDailyReport(ctx context.Context, chatID int64, messageID int, userID int64, now time.Time) {
	rows, err := b.activities.Rows(ctx)
	if err != nil {
		log.Printf("❌ failed to load activity rows: %v", err)
		menu := b.mainMenu(userID)
		b.editMessage(chatID, messageID, "⚠️ Не удалось получить отчёт.", &menu)
		return
	}
	menu := b.mainMenu(userID)
	b.editMessage(chatID, messageID, report.Daily(rows, now), &menu)
}

func (b *Bot) handleMyGoal(chatID int64, messageID int, userID int64) {
	goal := "не установлена"
	if g, ok := b.goals.Get(userID); ok {
		goal = g
	}
	menu := b.mainMenu(userID)
	b.editMessage(chatID, messageID, fmt.Sprintf("🎯 Текущая цель: %s\n\nОтправь новую цель одним сообщением.", goal), &menu)
	b.conv.SetAwaitingGoal(userID, true)
}

// applyInterval persists a preset interval and replaces the reminder job.
func (b *Bot) applyInterval(chatID int64, messageID int, userID int64, minutes int) {
	if err := b.intervals.Put(userID, minutes); err != nil {
		log.Printf("❌ failed to save interval: %v", err)
		b.editMessage(chatID, messageID, "⚠️ Не удалось сохранить настройки.", nil)
		return
	}
	menu := b.mainMenu(userID)
	b.editMessage(chatID, messageID, fmt.Sprintf("✅ Напоминания каждые %d минут установлены.", minutes), &menu)
	if err := b.reminders.Schedule(userID, minutes); err != nil {
		log.Printf("❌ failed to schedule reminder: %v", err)
	}
}

func (b *Bot) scheduleReminder(userID int64) {
	minutes := defaultIntervalMinutes
	if m, ok := b.intervals.Get(userID); ok {
		minutes = m
	}
	if err := b.reminders.Schedule(userID, minutes); err != nil {
		log.Printf("❌ failed to schedule reminder: %v", err)
	}
}

// handleText routes free text: the goal flag shadows everything, then the
// main conversation states, then the "use the menu" fallback.
func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	text := strings.TrimSpace(msg.Text)

	if b.conv.AwaitingGoal(userID) {
		b.conv.SetAwaitingGoal(userID, false)
		if err := b.goals.Put(userID, text); err != nil {
			log.Printf("❌ failed to save goal: %v", err)
			b.sendWithMenu(msg.Chat.ID, userID, "⚠️ Не удалось сохранить цель.")
			return
		}
		b.sendWithMenu(msg.Chat.ID, userID, fmt.Sprintf("🎯 Цель установлена: %s", text))
		return
	}

	if p, ok := b.conv.FinishNaming(userID); ok {
		b.completeActivity(ctx, msg.Chat.ID, userID, text, p)
		return
	}

	if b.conv.AwaitingInterval(userID) {
		b.handleCustomInterval(msg.Chat.ID, userID, text)
		return
	}

	b.sendWithMenu(msg.Chat.ID, userID, useMenuMsg)
}

func (b *Bot) completeActivity(ctx context.Context, chatID, userID int64, name string, p conversation.Pending) {
	category := p.Category
	if category == "" {
		category = "Другое"
	}
	durationSeconds := int(p.End.Sub(p.Start).Seconds())
	formatted := formatDuration(durationSeconds)

	if err := b.activities.Append(ctx, name, category, p.Start, p.End, formatted); err != nil {
		log.Printf("❌ failed to append activity: %v", err)
		b.sendWithMenu(chatID, userID, "⚠️ Не удалось записать активность.")
		return
	}

	best, _ := b.records.Get(userID)
	recordText := fmt.Sprintf("🏆 Личный рекорд: %d сек", best)
	if durationSeconds > best {
		if err := b.records.Put(userID, durationSeconds); err != nil {
			log.Printf("❌ failed to save record: %v", err)
		}
		recordText = "🏆 Это новый рекорд!"
	}

	b.sendWithMenu(chatID, userID, fmt.Sprintf("✅ Активность '%s' завершена.\nДлительность: %s\n%s", name, formatted, recordText))
}

// handleCustomInterval validates a typed interval. Non-numeric and
// out-of-range input keep the user in input mode so they can retry.
func (b *Bot) handleCustomInterval(chatID, userID int64, text string) {
	minutes, err := strconv.Atoi(text)
	if err != nil {
		b.sendMessage(chatID, intervalNotNumberMsg)
		return
	}
	if minutes < 1 || minutes > 180 {
		b.sendMessage(chatID, intervalRangeMsg)
		return
	}
	if err := b.intervals.Put(userID, minutes); err != nil {
		log.Printf("❌ failed to save interval: %v", err)
		b.sendMessage(chatID, "⚠️ Не удалось сохранить настройки.")
		return
	}
	b.conv.ClearInterval(userID)
	b.sendWithMenu(chatID, userID, fmt.Sprintf("✅ Напоминания каждые %d минут установлены.", minutes))
	if err := b.reminders.Schedule(userID, minutes); err != nil {
		log.Printf("❌ failed to schedule reminder: %v", err)
	}
}

// formatDuration renders whole seconds as minutes:seconds with the
// seconds zero-padded, e.g. 125 -> "2:05".
func formatDuration(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func (b *Bot) mainMenu(userID int64) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	if _, ok := b.sessions.Peek(userID); ok {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏹️ Завершить активность", cbStopActivity)))
	} else {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("▶️ Начать активность", cbStartActivity)))
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📅 Текущая активность", cbCurrentActivity)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📊 Отчёт за день", cbDailyReport)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔔 Настройки напоминаний", cbReminderSettings)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🎯 Моя цель", cbMyGoal)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🏆 Личный рекорд", cbPersonalBest)),
	)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func categoryKeyboard() tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(categories))
	for _, cat := range categories {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(cat, catPrefix+cat)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func intervalKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("15 мин", setIntervalPrefix+"15")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("30 мин", setIntervalPrefix+"30")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("60 мин", setIntervalPrefix+"60")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("✏️ Ввести свой интервал", cbSetCustomInterval)),
	)
}
