package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-telegram/bot"
	"github.com/google/uuid"
)

// DownloadFile downloads a Telegram file by its file id and returns the raw
// bytes plus the remote file path (useful for its extension).
func DownloadFile(ctx context.Context, b *bot.Bot, fileID string) ([]byte, string, error) {
	file, err := b.GetFile(ctx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return nil, "", fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", b.FileDownloadLink(file), nil)
	if err != nil {
		return nil, "", fmt.Errorf("create download request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read file data: %w", err)
	}

	return data, file.FilePath, nil
}

// DownloadToTemp downloads a Telegram file into the OS temp directory and
// returns the local path. The caller owns the file and must remove it.
func DownloadToTemp(ctx context.Context, b *bot.Bot, fileID string) (string, error) {
	data, remotePath, err := DownloadFile(ctx, b, fileID)
	if err != nil {
		return "", err
	}

	ext := filepath.Ext(remotePath)
	if ext == "" {
		ext = ".bin"
	}
	localPath := filepath.Join(os.TempDir(), uuid.NewString()+ext)

	if err := os.WriteFile(localPath, data, 0o600); err != nil {
		return "", fmt.Errorf("write temp file: %w", err)
	}
	return localPath, nil
}
