package handler

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Main reply keyboard labels.
const (
	btnSettings = "⚙️ Настройки"
	btnClear    = "🗑 Очистить память"
	btnAbout    = "ℹ️ О боте"
)

// Register registers all command and callback handlers on the bot instance.
func (h *Handler) Register() {
	// Commands
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, h.handleStart)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/settings", bot.MatchTypePrefix, h.handleSettings)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/clear", bot.MatchTypePrefix, h.handleClear)

	// Reply keyboard buttons
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, btnSettings, bot.MatchTypeExact, h.handleSettings)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, btnClear, bot.MatchTypeExact, h.handleClear)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, btnAbout, bot.MatchTypeExact, h.handleAbout)

	// Settings callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "settings_model", bot.MatchTypeExact, h.handleSettingsModel)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "settings_temp", bot.MatchTypeExact, h.handleSettingsTemp)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "settings_tools", bot.MatchTypeExact, h.handleToggleTools)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "settings_stream", bot.MatchTypeExact, h.handleToggleStream)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "settings_system", bot.MatchTypeExact, h.handleSettingsSystem)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "set_model_", bot.MatchTypePrefix, h.handleSetModel)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "set_temp_", bot.MatchTypePrefix, h.handleSetTemp)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "back_to_settings", bot.MatchTypeExact, h.handleBackToSettings)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "close_settings", bot.MatchTypeExact, h.handleCloseSettings)
}

func answerCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery != nil {
		b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: update.CallbackQuery.ID,
		})
	}
}

// callbackMessage extracts the message a callback query is attached to.
func callbackMessage(update *models.Update) *models.Message {
	if update.CallbackQuery == nil {
		return nil
	}
	return update.CallbackQuery.Message.Message
}
