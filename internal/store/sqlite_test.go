package store

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sarybala "github.com/sarybala/bot"
	"github.com/sarybala/bot/internal/domain"
)

func newTestSQLite(t *testing.T) *SQLite {
	t.Helper()

	migrations, err := fs.Sub(sarybala.MigrationsFS, "migrations/sqlite")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLite(context.Background(), path, migrations)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func TestSQLiteGetSettingsCreatesDefaults(t *testing.T) {
	t.Parallel()

	s := newTestSQLite(t)
	ctx := context.Background()

	st, err := s.GetSettings(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(42), st)

	// Second access returns the same row, not a reset.
	require.NoError(t, s.UpdateSetting(ctx, 42, domain.FieldTemperature, 1.5))
	st, err = s.GetSettings(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, 1.5, st.Temperature)
}

func TestSQLiteUpdateSetting(t *testing.T) {
	t.Parallel()

	s := newTestSQLite(t)
	ctx := context.Background()

	tests := []struct {
		field domain.SettingField
		value any
		check func(t *testing.T, st domain.Settings)
	}{
		{domain.FieldUsername, "alice", func(t *testing.T, st domain.Settings) {
			assert.Equal(t, "alice", st.Username)
		}},
		{domain.FieldSelectedModel, "gemini-2.5-pro", func(t *testing.T, st domain.Settings) {
			assert.Equal(t, "gemini-2.5-pro", st.SelectedModel)
		}},
		{domain.FieldSystemInstruction, "Отвечай кратко.", func(t *testing.T, st domain.Settings) {
			assert.Equal(t, "Отвечай кратко.", st.SystemInstruction)
		}},
		{domain.FieldMaxTokens, 4096, func(t *testing.T, st domain.Settings) {
			assert.Equal(t, 4096, st.MaxTokens)
		}},
		{domain.FieldUseTools, true, func(t *testing.T, st domain.Settings) {
			assert.True(t, st.UseTools)
		}},
		{domain.FieldStreamResponse, false, func(t *testing.T, st domain.Settings) {
			assert.False(t, st.StreamResponse)
		}},
	}

	for _, tt := range tests {
		t.Run(string(tt.field), func(t *testing.T) {
			require.NoError(t, s.UpdateSetting(ctx, 7, tt.field, tt.value))
			st, err := s.GetSettings(ctx, 7)
			require.NoError(t, err)
			tt.check(t, st)
		})
	}
}

func TestSQLiteUpdateSettingRejectsUnknownField(t *testing.T) {
	t.Parallel()

	s := newTestSQLite(t)
	ctx := context.Background()

	err := s.UpdateSetting(ctx, 1, domain.SettingField("selected_model; DROP TABLE users"), "x")
	assert.ErrorIs(t, err, domain.ErrUnknownSetting)

	// The table survived and the row was never created.
	st, err := s.GetSettings(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultModel, st.SelectedModel)
}

func TestSQLiteRecentTurns(t *testing.T) {
	t.Parallel()

	s := newTestSQLite(t)
	ctx := context.Background()

	_, err := s.GetSettings(ctx, 5)
	require.NoError(t, err)

	for i := 0; i < 6; i++ {
		require.NoError(t, s.AppendTurn(ctx, 5, domain.RoleUser, fmt.Sprintf("вопрос %d", i), false))
		require.NoError(t, s.AppendTurn(ctx, 5, domain.RoleModel, fmt.Sprintf("ответ %d", i), false))
	}
	// Empty content is excluded from the window.
	require.NoError(t, s.AppendTurn(ctx, 5, domain.RoleModel, "", false))

	turns, err := s.RecentTurns(ctx, 5, 4)
	require.NoError(t, err)
	require.Len(t, turns, 4)

	// Chronological order, most recent window.
	assert.Equal(t, "вопрос 4", turns[0].Content)
	assert.Equal(t, "ответ 4", turns[1].Content)
	assert.Equal(t, "вопрос 5", turns[2].Content)
	assert.Equal(t, "ответ 5", turns[3].Content)
	assert.Equal(t, domain.RoleUser, turns[0].Role)
	assert.False(t, turns[0].CreatedAt.IsZero())
}

func TestSQLiteClearHistoryIsPerUser(t *testing.T) {
	t.Parallel()

	s := newTestSQLite(t)
	ctx := context.Background()

	for _, userID := range []int64{1, 2} {
		_, err := s.GetSettings(ctx, userID)
		require.NoError(t, err)
		require.NoError(t, s.AppendTurn(ctx, userID, domain.RoleUser, "привет", false))
	}

	require.NoError(t, s.ClearHistory(ctx, 1))

	turns, err := s.RecentTurns(ctx, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, turns)

	turns, err = s.RecentTurns(ctx, 2, 10)
	require.NoError(t, err)
	assert.Len(t, turns, 1)
}
