package main

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/joho/godotenv"

	sarybala "github.com/sarybala/bot"
	"github.com/sarybala/bot/internal/config"
	"github.com/sarybala/bot/internal/handler"
	"github.com/sarybala/bot/internal/middleware"
	"github.com/sarybala/bot/internal/service"
	"github.com/sarybala/bot/internal/store"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	// Model gateway and catalog; the process must not serve traffic
	// without a usable catalog.
	gateway, err := service.NewGeminiService(ctx, cfg.GeminiAPIKey)
	if err != nil {
		slog.Error("failed to create gemini client", "error", err)
		os.Exit(1)
	}

	catalog, err := service.LoadCatalog(ctx, gateway)
	if err != nil {
		slog.Error("failed to load model catalog", "error", err)
		os.Exit(1)
	}
	slog.Info("model catalog loaded", "models", len(catalog.Models()))

	registry := service.NewRegistry(cfg.RubeAPIURL, cfg.RubeAPIKey)
	generator := service.NewGenerator(st, gateway, catalog, registry)

	var h *handler.Handler

	opts := []bot.Option{
		bot.WithMiddlewares(
			middleware.Recover(),
			middleware.Logging(),
			middleware.RateLimit(),
			middleware.Validation(),
		),
		bot.WithDefaultHandler(func(ctx context.Context, b *bot.Bot, update *models.Update) {
			if h == nil || update.Message == nil {
				return
			}
			if update.Message.Voice != nil || update.Message.Audio != nil {
				h.HandleVoice(ctx, b, update)
				return
			}
			h.HandleChat(ctx, b, update)
		}),
	}

	b, err := bot.New(cfg.BotToken, opts...)
	if err != nil {
		slog.Error("failed to create bot", "error", err)
		os.Exit(1)
	}

	if cfg.DropPendingUpdates {
		b.DeleteWebhook(ctx, &bot.DeleteWebhookParams{DropPendingUpdates: true})
	}

	me, err := b.GetMe(ctx)
	if err != nil {
		slog.Error("failed to get bot info", "error", err)
		os.Exit(1)
	}

	h = handler.New(handler.Deps{
		Bot:       b,
		Cfg:       cfg,
		Store:     st,
		Generator: generator,
		Catalog:   catalog,
	})
	h.Register()

	slog.Info("starting bot", "username", me.Username, "id", me.ID)
	b.Start(ctx)

	slog.Info("bot stopped gracefully")
}

// openStore picks the backend: Postgres when DATABASE_URL is configured,
// a local SQLite file otherwise.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.DatabaseURL != "" {
		migrations, err := fs.Sub(sarybala.MigrationsFS, "migrations/postgres")
		if err != nil {
			return nil, err
		}
		slog.Info("using postgres store")
		return store.NewPostgres(ctx, cfg.DatabaseURL, migrations)
	}

	migrations, err := fs.Sub(sarybala.MigrationsFS, "migrations/sqlite")
	if err != nil {
		return nil, err
	}
	slog.Info("using sqlite store", "path", cfg.SQLitePath)
	return store.NewSQLite(ctx, cfg.SQLitePath, migrations)
}
