// Package store persists per-user settings and conversation history. Two
// backends are supported: PostgreSQL via pgx and a single-file SQLite
// database used when no DATABASE_URL is configured.
package store

import (
	"context"

	"github.com/sarybala/bot/internal/domain"
)

type Store interface {
	// GetSettings returns the settings row for userID, creating it with
	// defaults on first access.
	GetSettings(ctx context.Context, userID int64) (domain.Settings, error)

	// UpdateSetting writes a single whitelisted field. A field outside
	// domain.SettingField returns domain.ErrUnknownSetting and touches
	// nothing.
	UpdateSetting(ctx context.Context, userID int64, field domain.SettingField, value any) error

	// RecentTurns returns up to limit most recent non-empty turns for
	// userID in chronological (oldest-first) order.
	RecentTurns(ctx context.Context, userID int64, limit int) ([]domain.Turn, error)

	AppendTurn(ctx context.Context, userID int64, role domain.Role, content string, hasMedia bool) error

	ClearHistory(ctx context.Context, userID int64) error

	Close() error
}

// reverse flips a newest-first result set into chronological order.
func reverse(turns []domain.Turn) []domain.Turn {
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns
}
