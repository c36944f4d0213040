package handler

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/sarybala/bot/internal/service"
	tg "github.com/sarybala/bot/internal/telegram"
)

// HandleVoice processes voice and audio messages: the payload is downloaded
// to a temp file, relayed to the model and removed on every path.
func (h *Handler) HandleVoice(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}

	var fileID string
	switch {
	case msg.Voice != nil:
		fileID = msg.Voice.FileID
	case msg.Audio != nil:
		fileID = msg.Audio.FileID
	default:
		return
	}

	localPath, err := tg.DownloadToTemp(ctx, b, fileID)
	if err != nil {
		slog.Error("download audio", "error", err, "user_id", msg.From.ID)
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: msg.Chat.ID,
			Text:   "Ошибка обработки аудио 😞",
		})
		return
	}
	defer func() {
		if err := os.Remove(localPath); err != nil {
			slog.Warn("remove temp audio", "error", err, "path", localPath)
		}
	}()

	h.runGeneration(ctx, b, msg, service.Request{
		UserID:    msg.From.ID,
		Prompt:    msg.Caption,
		AudioPath: localPath,
	})
}
