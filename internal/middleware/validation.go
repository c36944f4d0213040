package middleware

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/sarybala/bot/internal/config"
)

// Validation returns middleware that rejects oversized input before it
// reaches the handlers.
func Validation() bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			msg := update.Message
			if msg == nil {
				next(ctx, b, update)
				return
			}

			if tooLong(msg) {
				slog.Warn("text too long", "chat_id", msg.Chat.ID)
				b.SendMessage(ctx, &bot.SendMessageParams{
					ChatID: msg.Chat.ID,
					Text: fmt.Sprintf("❌ Текст слишком длинный!\nМаксимум: %d символов.",
						config.MaxTextLength),
				})
				return
			}

			if tooBig(msg) {
				b.SendMessage(ctx, &bot.SendMessageParams{
					ChatID: msg.Chat.ID,
					Text: fmt.Sprintf("❌ Файл слишком большой!\nМаксимум: %dMB.",
						config.MaxFileSize/(1024*1024)),
				})
				return
			}

			next(ctx, b, update)
		}
	}
}

// tooLong checks both the message text and the media caption, since a
// caption becomes the prompt for photo and voice messages.
func tooLong(msg *models.Message) bool {
	return len([]rune(msg.Text)) > config.MaxTextLength ||
		len([]rune(msg.Caption)) > config.MaxTextLength
}

func tooBig(msg *models.Message) bool {
	if len(msg.Photo) > 0 {
		if photo := msg.Photo[len(msg.Photo)-1]; photo.FileSize > config.MaxFileSize {
			return true
		}
	}
	if msg.Voice != nil && msg.Voice.FileSize > config.MaxFileSize {
		return true
	}
	if msg.Audio != nil && msg.Audio.FileSize > config.MaxFileSize {
		return true
	}
	return false
}
