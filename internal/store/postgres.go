package store

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sarybala/bot/internal/domain"
)

type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to databaseURL, applies migrations and returns the
// ready store.
func NewPostgres(ctx context.Context, databaseURL string, migrationsFS fs.FS) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}

	cfg.MaxConns = 20
	cfg.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(databaseURL, migrationsFS); err != nil {
		pool.Close()
		return nil, err
	}

	return &Postgres{pool: pool}, nil
}

func runMigrations(databaseURL string, migrationsFS fs.FS) error {
	d, err := iofs.New(migrationsFS, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", d, databaseURL)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("run migrations: %w", err)
	}

	version, dirty, _ := m.Version()
	slog.Info("migrations applied", "version", version, "dirty", dirty)
	return nil
}

func (s *Postgres) GetSettings(ctx context.Context, userID int64) (domain.Settings, error) {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`, userID)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("ensure user row: %w", err)
	}

	var st domain.Settings
	err = s.pool.QueryRow(ctx,
		`SELECT user_id, username, selected_model, system_instruction,
		        temperature, max_tokens, use_tools, stream_response
		 FROM users WHERE user_id = $1`, userID).
		Scan(&st.UserID, &st.Username, &st.SelectedModel, &st.SystemInstruction,
			&st.Temperature, &st.MaxTokens, &st.UseTools, &st.StreamResponse)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("get settings: %w", err)
	}
	return st, nil
}

// settingUpdatesPg maps each allowed field to its fixed statement. The field
// name never reaches SQL as text, so a crafted field cannot turn into a
// free-form write.
var settingUpdatesPg = map[domain.SettingField]string{
	domain.FieldUsername:          `UPDATE users SET username = $2 WHERE user_id = $1`,
	domain.FieldSelectedModel:     `UPDATE users SET selected_model = $2 WHERE user_id = $1`,
	domain.FieldSystemInstruction: `UPDATE users SET system_instruction = $2 WHERE user_id = $1`,
	domain.FieldTemperature:       `UPDATE users SET temperature = $2 WHERE user_id = $1`,
	domain.FieldMaxTokens:         `UPDATE users SET max_tokens = $2 WHERE user_id = $1`,
	domain.FieldUseTools:          `UPDATE users SET use_tools = $2 WHERE user_id = $1`,
	domain.FieldStreamResponse:    `UPDATE users SET stream_response = $2 WHERE user_id = $1`,
}

func (s *Postgres) UpdateSetting(ctx context.Context, userID int64, field domain.SettingField, value any) error {
	stmt, ok := settingUpdatesPg[field]
	if !ok {
		return domain.ErrUnknownSetting
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`, userID)
	if err != nil {
		return fmt.Errorf("ensure user row: %w", err)
	}

	if _, err := s.pool.Exec(ctx, stmt, userID, value); err != nil {
		return fmt.Errorf("update %s: %w", field, err)
	}
	return nil
}

func (s *Postgres) RecentTurns(ctx context.Context, userID int64, limit int) ([]domain.Turn, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, role, content, has_media, created_at
		 FROM message_history
		 WHERE user_id = $1 AND content <> ''
		 ORDER BY id DESC LIMIT $2`, userID, limit)
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

func (s *Postgres) AppendTurn(ctx context.Context, userID int64, role domain.Role, content string, hasMedia bool) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO message_history (user_id, role, content, has_media)
		 VALUES ($1, $2, $3, $4)`, userID, role, content, hasMedia)
	if err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	return nil
}

func (s *Postgres) ClearHistory(ctx context.Context, userID int64) error {
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM message_history WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

func (s *Postgres) Close() error {
	s.pool.Close()
	return nil
}
