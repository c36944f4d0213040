package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"golang.org/x/time/rate"

	"github.com/sarybala/bot/internal/config"
)

// RateLimit returns middleware that enforces a per-chat request budget. Only
// messages are limited; callback queries pass through so the settings UI
// stays responsive.
func RateLimit() bot.Middleware {
	var limiters sync.Map // int64 -> *rate.Limiter

	limiterFor := func(chatID int64) *rate.Limiter {
		if l, ok := limiters.Load(chatID); ok {
			return l.(*rate.Limiter)
		}
		l, _ := limiters.LoadOrStore(chatID,
			rate.NewLimiter(rate.Every(config.RateLimitWindow/config.RateLimitRequests), config.RateLimitRequests))
		return l.(*rate.Limiter)
	}

	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			if update.Message == nil {
				next(ctx, b, update)
				return
			}

			chatID := update.Message.Chat.ID
			if !limiterFor(chatID).Allow() {
				slog.Warn("rate limit exceeded", "chat_id", chatID)
				b.SendMessage(ctx, &bot.SendMessageParams{
					ChatID: chatID,
					Text: fmt.Sprintf("⏳ Превышен лимит запросов!\nЛимит: %d запросов в %d сек.",
						config.RateLimitRequests, int(config.RateLimitWindow.Seconds())),
				})
				return
			}

			next(ctx, b, update)
		}
	}
}
