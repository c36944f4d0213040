package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/sarybala/bot/internal/config"
	"github.com/sarybala/bot/internal/domain"
	"github.com/sarybala/bot/internal/service"
	tg "github.com/sarybala/bot/internal/telegram"
)

// HandleChat processes text and photo messages that did not match a command
// or keyboard button.
func (h *Handler) HandleChat(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || strings.HasPrefix(msg.Text, "/") {
		return
	}

	userID := msg.From.ID

	// The settings menu may have asked for a new system instruction.
	if _, ok := h.pendingInstruction.LoadAndDelete(userID); ok && msg.Text != "" {
		if err := h.store.UpdateSetting(ctx, userID, domain.FieldSystemInstruction, msg.Text); err != nil {
			slog.Error("update system instruction", "error", err, "user_id", userID)
			return
		}
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: msg.Chat.ID,
			Text:   "✅ Системная инструкция обновлена!",
		})
		return
	}

	prompt := msg.Text
	if prompt == "" {
		prompt = msg.Caption
	}

	var images []service.ImagePayload
	if len(msg.Photo) > 0 {
		photo := msg.Photo[len(msg.Photo)-1] // highest resolution
		data, _, err := tg.DownloadFile(ctx, b, photo.FileID)
		if err != nil {
			slog.Error("download photo", "error", err, "user_id", userID)
			b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: msg.Chat.ID,
				Text:   "Ошибка картинки 😞",
			})
			return
		}
		images = append(images, service.ImagePayload{
			Data: data,
			MIME: http.DetectContentType(data),
		})
		if prompt == "" {
			prompt = "Опиши это."
		}
	}

	if prompt == "" {
		return
	}

	h.runGeneration(ctx, b, msg, service.Request{
		UserID: userID,
		Prompt: prompt,
		Images: images,
	})
}

// runGeneration drives one generation call and reconciles its snapshots
// against the status message.
func (h *Handler) runGeneration(ctx context.Context, b *bot.Bot, msg *models.Message, req service.Request) {
	chatID := msg.Chat.ID

	stopTyping := tg.StartTyping(ctx, b, chatID)
	defer stopTyping()

	statusMsg, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "⏳ Думаю...",
	})
	if err != nil {
		slog.Error("send status message", "error", err, "chat_id", chatID)
		return
	}

	reqCtx, cancel := context.WithTimeout(ctx, config.RequestTimeout)
	defer cancel()

	snapshots := h.generator.Generate(reqCtx, req)

	rec := tg.NewReconciler(func(ctx context.Context, text string, final bool) error {
		return tg.EditStreaming(ctx, b, chatID, statusMsg.ID, text, final)
	})
	final := rec.Run(reqCtx, snapshots)

	if final.Err != nil {
		slog.Error("generation finished with error",
			"error", final.Err, "user_id", req.UserID)
	}
}
