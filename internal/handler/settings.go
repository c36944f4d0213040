package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/sarybala/bot/internal/config"
	"github.com/sarybala/bot/internal/domain"
	tg "github.com/sarybala/bot/internal/telegram"
)

func (h *Handler) settingsKeyboard(settings domain.Settings) *models.InlineKeyboardMarkup {
	toolsMark := "❌"
	if settings.UseTools {
		toolsMark = "✅"
	}
	streamMark := "❌"
	if settings.StreamResponse {
		streamMark = "✅"
	}

	return tg.InlineKeyboard(
		tg.ButtonRow(tg.InlineButton(fmt.Sprintf("🤖 Модель: %s", settings.SelectedModel), "settings_model")),
		tg.ButtonRow(tg.InlineButton(fmt.Sprintf("🌡 Темп: %.1f", settings.Temperature), "settings_temp")),
		tg.ButtonRow(
			tg.InlineButton(fmt.Sprintf("🛠 Tools: %s", toolsMark), "settings_tools"),
			tg.InlineButton(fmt.Sprintf("🌊 Stream: %s", streamMark), "settings_stream"),
		),
		tg.ButtonRow(tg.InlineButton("📝 Системная инструкция", "settings_system")),
		tg.ButtonRow(tg.InlineButton("❌ Закрыть", "close_settings")),
	)
}

func (h *Handler) handleSettings(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}

	settings, err := h.store.GetSettings(ctx, msg.From.ID)
	if err != nil {
		slog.Error("get settings", "error", err, "user_id", msg.From.ID)
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      msg.Chat.ID,
		Text:        "🔧 Настройки бота:",
		ReplyMarkup: h.settingsKeyboard(settings),
	})
}

// renderSettings redraws the settings menu in place after a change.
func (h *Handler) renderSettings(ctx context.Context, b *bot.Bot, update *models.Update, text string) {
	msg := callbackMessage(update)
	if msg == nil {
		return
	}

	settings, err := h.store.GetSettings(ctx, update.CallbackQuery.From.ID)
	if err != nil {
		slog.Error("get settings", "error", err, "user_id", update.CallbackQuery.From.ID)
		return
	}

	b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      msg.Chat.ID,
		MessageID:   msg.ID,
		Text:        text,
		ReplyMarkup: h.settingsKeyboard(settings),
	})
}

func (h *Handler) handleSettingsModel(ctx context.Context, b *bot.Bot, update *models.Update) {
	answerCallback(ctx, b, update)
	msg := callbackMessage(update)
	if msg == nil {
		return
	}

	var rows [][]models.InlineKeyboardButton
	for _, id := range h.catalog.Models() {
		rows = append(rows, tg.ButtonRow(tg.InlineButton(id, "set_model_"+id)))
	}
	rows = append(rows, tg.ButtonRow(tg.InlineButton("🔙 Назад", "back_to_settings")))

	b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      msg.Chat.ID,
		MessageID:   msg.ID,
		Text:        "Выберите модель:",
		ReplyMarkup: tg.InlineKeyboard(rows...),
	})
}

func (h *Handler) handleSetModel(ctx context.Context, b *bot.Bot, update *models.Update) {
	answerCallback(ctx, b, update)
	modelID := strings.TrimPrefix(update.CallbackQuery.Data, "set_model_")

	if !h.catalog.Contains(modelID) {
		slog.Warn("selected model not in catalog", "model", modelID)
		return
	}

	userID := update.CallbackQuery.From.ID
	if err := h.store.UpdateSetting(ctx, userID, domain.FieldSelectedModel, modelID); err != nil {
		slog.Error("set model", "error", err, "user_id", userID)
		return
	}

	h.renderSettings(ctx, b, update, fmt.Sprintf("✅ Модель установлена: %s", modelID))
}

func (h *Handler) handleSettingsTemp(ctx context.Context, b *bot.Bot, update *models.Update) {
	answerCallback(ctx, b, update)
	msg := callbackMessage(update)
	if msg == nil {
		return
	}

	var row []models.InlineKeyboardButton
	for _, t := range config.TemperatureOptions {
		label := strconv.FormatFloat(t, 'g', -1, 64)
		row = append(row, tg.InlineButton(label, "set_temp_"+label))
	}

	b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    msg.Chat.ID,
		MessageID: msg.ID,
		Text:      "Выберите креативность (температуру):",
		ReplyMarkup: tg.InlineKeyboard(
			row,
			tg.ButtonRow(tg.InlineButton("🔙 Назад", "back_to_settings")),
		),
	})
}

func (h *Handler) handleSetTemp(ctx context.Context, b *bot.Bot, update *models.Update) {
	answerCallback(ctx, b, update)

	temp, err := strconv.ParseFloat(strings.TrimPrefix(update.CallbackQuery.Data, "set_temp_"), 64)
	if err != nil || temp < 0 || temp > 2 {
		return
	}

	userID := update.CallbackQuery.From.ID
	if err := h.store.UpdateSetting(ctx, userID, domain.FieldTemperature, temp); err != nil {
		slog.Error("set temperature", "error", err, "user_id", userID)
		return
	}

	h.renderSettings(ctx, b, update, fmt.Sprintf("✅ Температура установлена: %.1f", temp))
}

func (h *Handler) handleToggleTools(ctx context.Context, b *bot.Bot, update *models.Update) {
	answerCallback(ctx, b, update)
	userID := update.CallbackQuery.From.ID

	settings, err := h.store.GetSettings(ctx, userID)
	if err != nil {
		slog.Error("get settings", "error", err, "user_id", userID)
		return
	}

	newVal := !settings.UseTools
	if err := h.store.UpdateSetting(ctx, userID, domain.FieldUseTools, newVal); err != nil {
		slog.Error("toggle tools", "error", err, "user_id", userID)
		return
	}

	text := "Инструменты ВЫКЛ"
	if newVal {
		text = "Инструменты ВКЛ"
	}
	h.renderSettings(ctx, b, update, text)
}

func (h *Handler) handleToggleStream(ctx context.Context, b *bot.Bot, update *models.Update) {
	answerCallback(ctx, b, update)
	userID := update.CallbackQuery.From.ID

	settings, err := h.store.GetSettings(ctx, userID)
	if err != nil {
		slog.Error("get settings", "error", err, "user_id", userID)
		return
	}

	newVal := !settings.StreamResponse
	if err := h.store.UpdateSetting(ctx, userID, domain.FieldStreamResponse, newVal); err != nil {
		slog.Error("toggle stream", "error", err, "user_id", userID)
		return
	}

	text := "Потоковый ответ ВЫКЛЮЧЕН 🛑"
	if newVal {
		text = "Потоковый ответ ВКЛЮЧЕН 🌊"
	}
	h.renderSettings(ctx, b, update, text)
}

func (h *Handler) handleSettingsSystem(ctx context.Context, b *bot.Bot, update *models.Update) {
	answerCallback(ctx, b, update)
	msg := callbackMessage(update)
	if msg == nil {
		return
	}

	h.pendingInstruction.Store(update.CallbackQuery.From.ID, struct{}{})
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: msg.Chat.ID,
		Text:   "Введите новую системную инструкцию (роль бота):",
	})
}

func (h *Handler) handleBackToSettings(ctx context.Context, b *bot.Bot, update *models.Update) {
	answerCallback(ctx, b, update)
	h.renderSettings(ctx, b, update, "🔧 Настройки бота:")
}

func (h *Handler) handleCloseSettings(ctx context.Context, b *bot.Bot, update *models.Update) {
	answerCallback(ctx, b, update)
	msg := callbackMessage(update)
	if msg == nil {
		return
	}

	b.DeleteMessage(ctx, &bot.DeleteMessageParams{
		ChatID:    msg.Chat.ID,
		MessageID: msg.ID,
	})
}
