package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Core
	BotToken     string `env:"BOT_TOKEN,required"`
	GeminiAPIKey string `env:"GEMINI_API_KEY,required"`

	// Persistence: Postgres when set, SQLite file otherwise
	DatabaseURL string `env:"DATABASE_URL"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"bot_database.db"`

	// Rube external action broker (optional tool)
	RubeAPIKey string `env:"RUBE_API_KEY"`
	RubeAPIURL string `env:"RUBE_API_URL"`

	// Bot behavior
	DropPendingUpdates bool `env:"BOT_DROP_PENDING_UPDATES" envDefault:"true"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
