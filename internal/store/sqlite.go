package store

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/sarybala/bot/internal/domain"
)

type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database file at path and applies
// migrations.
func NewSQLite(ctx context.Context, path string, migrationsFS fs.FS) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// The file is a single-writer database; let database/sql serialize
	// access instead of returning SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if err := runSQLiteMigrations(path, migrationsFS); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func runSQLiteMigrations(path string, migrationsFS fs.FS) error {
	d, err := iofs.New(migrationsFS, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", d, "sqlite://"+path)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("run migrations: %w", err)
	}

	version, dirty, _ := m.Version()
	slog.Info("migrations applied", "backend", "sqlite", "version", version, "dirty", dirty)
	return nil
}

func (s *SQLite) GetSettings(ctx context.Context, userID int64) (domain.Settings, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO users (user_id) VALUES (?)`, userID)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("ensure user row: %w", err)
	}

	var st domain.Settings
	err = s.db.QueryRowContext(ctx,
		`SELECT user_id, username, selected_model, system_instruction,
		        temperature, max_tokens, use_tools, stream_response
		 FROM users WHERE user_id = ?`, userID).
		Scan(&st.UserID, &st.Username, &st.SelectedModel, &st.SystemInstruction,
			&st.Temperature, &st.MaxTokens, &st.UseTools, &st.StreamResponse)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("get settings: %w", err)
	}
	return st, nil
}

var settingUpdatesSQLite = map[domain.SettingField]string{
	domain.FieldUsername:          `UPDATE users SET username = ? WHERE user_id = ?`,
	domain.FieldSelectedModel:     `UPDATE users SET selected_model = ? WHERE user_id = ?`,
	domain.FieldSystemInstruction: `UPDATE users SET system_instruction = ? WHERE user_id = ?`,
	domain.FieldTemperature:       `UPDATE users SET temperature = ? WHERE user_id = ?`,
	domain.FieldMaxTokens:         `UPDATE users SET max_tokens = ? WHERE user_id = ?`,
	domain.FieldUseTools:          `UPDATE users SET use_tools = ? WHERE user_id = ?`,
	domain.FieldStreamResponse:    `UPDATE users SET stream_response = ? WHERE user_id = ?`,
}

func (s *SQLite) UpdateSetting(ctx context.Context, userID int64, field domain.SettingField, value any) error {
	stmt, ok := settingUpdatesSQLite[field]
	if !ok {
		return domain.ErrUnknownSetting
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO users (user_id) VALUES (?)`, userID)
	if err != nil {
		return fmt.Errorf("ensure user row: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, stmt, value, userID); err != nil {
		return fmt.Errorf("update %s: %w", field, err)
	}
	return nil
}

func (s *SQLite) RecentTurns(ctx context.Context, userID int64, limit int) ([]domain.Turn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, role, content, has_media, created_at
		 FROM message_history
		 WHERE user_id = ? AND content <> ''
		 ORDER BY id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}
	defer rows.Close()

	var turns []domain.Turn
	for rows.Next() {
		var t domain.Turn
		if err := rows.Scan(&t.ID, &t.UserID, &t.Role, &t.Content, &t.HasMedia, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return reverse(turns), nil
}

func (s *SQLite) AppendTurn(ctx context.Context, userID int64, role domain.Role, content string, hasMedia bool) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO message_history (user_id, role, content, has_media)
		 VALUES (?, ?, ?, ?)`, userID, role, content, hasMedia)
	if err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	return nil
}

func (s *SQLite) ClearHistory(ctx context.Context, userID int64) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM message_history WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
