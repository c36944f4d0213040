// Package handler contains the Telegram-facing routes: commands, settings
// callbacks and the chat/photo/voice message flow that feeds the generator.
package handler

import (
	"sync"

	"github.com/go-telegram/bot"

	"github.com/sarybala/bot/internal/config"
	"github.com/sarybala/bot/internal/service"
	"github.com/sarybala/bot/internal/store"
)

// Handler holds all dependencies needed by command and callback handlers.
type Handler struct {
	bot       *bot.Bot
	cfg       *config.Config
	store     store.Store
	generator *service.Generator
	catalog   *service.Catalog

	// Users whose next text message is a new system instruction.
	pendingInstruction sync.Map // int64 -> struct{}
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Bot       *bot.Bot
	Cfg       *config.Config
	Store     store.Store
	Generator *service.Generator
	Catalog   *service.Catalog
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		bot:       deps.Bot,
		cfg:       deps.Cfg,
		store:     deps.Store,
		generator: deps.Generator,
		catalog:   deps.Catalog,
	}
}
