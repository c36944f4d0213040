package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/sarybala/bot/internal/config"
)

// cursor is appended to non-final streamed edits as the typing marker.
const cursor = " ▌"

// SendLongMessage sends a potentially long message, splitting it into parts.
// Falls back to plain text if Markdown parsing fails.
func SendLongMessage(ctx context.Context, b *bot.Bot, chatID int64, text string) error {
	text = FixMarkdown(text)
	parts := SplitMessage(text, config.MaxTelegramMessageLen)

	for _, part := range parts {
		params := &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      part,
			ParseMode: models.ParseModeMarkdownV1,
		}

		_, err := b.SendMessage(ctx, params)
		if err != nil {
			slog.Warn("markdown send failed, falling back to plain text", "error", err)
			params.ParseMode = ""
			if _, err = b.SendMessage(ctx, params); err != nil {
				return fmt.Errorf("send message: %w", err)
			}
		}
	}

	return nil
}

// EditStreaming replaces the displayed message text during generation.
// Intermediate edits carry the cursor marker and no formatting; the final
// edit renders repaired markdown, falling back to plain text on rejection.
func EditStreaming(ctx context.Context, b *bot.Bot, chatID int64, messageID int, text string, final bool) error {
	params := &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
	}

	if final {
		params.Text = truncate(FixMarkdown(text), config.MaxTelegramMessageLen)
		params.ParseMode = models.ParseModeMarkdownV1
	} else {
		params.Text = truncate(text, config.MaxTelegramMessageLen-len([]rune(cursor))) + cursor
	}

	_, err := b.EditMessageText(ctx, params)
	if err != nil && final {
		params.ParseMode = ""
		params.Text = truncate(text, config.MaxTelegramMessageLen)
		_, err = b.EditMessageText(ctx, params)
	}
	return err
}

func truncate(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen-3]) + "..."
}

// StartTyping sends the typing action on a ticker until the returned cancel
// function is called.
func StartTyping(ctx context.Context, b *bot.Bot, chatID int64) context.CancelFunc {
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		ticker := time.NewTicker(config.TypingInterval)
		defer ticker.Stop()
		b.SendChatAction(ctx, &bot.SendChatActionParams{
			ChatID: chatID,
			Action: models.ChatActionTyping,
		})
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				b.SendChatAction(ctx, &bot.SendChatActionParams{
					ChatID: chatID,
					Action: models.ChatActionTyping,
				})
			}
		}
	}()
	return cancel
}
