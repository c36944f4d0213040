package handler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/sarybala/bot/internal/domain"
	tg "github.com/sarybala/bot/internal/telegram"
)

func mainKeyboard() *models.ReplyKeyboardMarkup {
	return tg.ReplyKeyboard(
		[]string{btnSettings, btnClear},
		[]string{btnAbout},
	)
}

func (h *Handler) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}

	// First contact creates the settings row; remember the username while
	// we are at it.
	if _, err := h.store.GetSettings(ctx, msg.From.ID); err != nil {
		slog.Error("create settings on start", "error", err, "user_id", msg.From.ID)
	}
	if msg.From.Username != "" {
		if err := h.store.UpdateSetting(ctx, msg.From.ID, domain.FieldUsername, msg.From.Username); err != nil {
			slog.Error("store username", "error", err, "user_id", msg.From.ID)
		}
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: msg.Chat.ID,
		Text: fmt.Sprintf(
			"Привет, %s! 👋\n"+
				"Я Sary Bala - мультимодальный бот.\n\n"+
				"Отправляй:\n"+
				"📷 Фото\n"+
				"🎙 Голосовые\n"+
				"📝 Текст\n"+
				"🌊 Поддерживаю стриминг (эффект печати)\n\n"+
				"Нажми /settings или кнопку ниже для настроек.",
			msg.From.FirstName),
		ReplyMarkup: mainKeyboard(),
	})
}

func (h *Handler) handleClear(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}

	if err := h.store.ClearHistory(ctx, msg.From.ID); err != nil {
		slog.Error("clear history", "error", err, "user_id", msg.From.ID)
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: msg.Chat.ID,
			Text:   "❌ Не удалось очистить историю.",
		})
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: msg.Chat.ID,
		Text:   "История диалога очищена! 🧠✨",
	})
}

func (h *Handler) handleAbout(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}

	settings, err := h.store.GetSettings(ctx, msg.From.ID)
	if err != nil {
		slog.Error("get settings for about", "error", err, "user_id", msg.From.ID)
		return
	}

	streamStatus := "Выкл 🛑"
	if settings.StreamResponse {
		streamStatus = "Вкл 🌊"
	}
	toolsStatus := "Выкл"
	if settings.UseTools {
		toolsStatus = "Вкл 🛠"
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: msg.Chat.ID,
		Text: fmt.Sprintf(
			"🤖 *Sary Bala Bot*\n\n"+
				"Модель: `%s`\n"+
				"Температура: `%.1f`\n"+
				"Стриминг: %s\n"+
				"Инструменты: %s\n",
			settings.SelectedModel, settings.Temperature, streamStatus, toolsStatus),
		ParseMode: models.ParseModeMarkdownV1,
	})
}
