package middleware

import (
	"strings"
	"testing"

	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"

	"github.com/sarybala/bot/internal/config"
)

func TestTooLong(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("ы", config.MaxTextLength+1)
	ok := strings.Repeat("ы", config.MaxTextLength)

	tests := []struct {
		name string
		msg  *models.Message
		want bool
	}{
		{"short text", &models.Message{Text: "привет"}, false},
		{"text at limit", &models.Message{Text: ok}, false},
		{"text over limit", &models.Message{Text: long}, true},
		{"caption over limit", &models.Message{Caption: long}, true},
		{"caption at limit", &models.Message{Caption: ok}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tooLong(tt.msg))
		})
	}
}

func TestTooBig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		msg  *models.Message
		want bool
	}{
		{"no media", &models.Message{Text: "привет"}, false},
		{"small photo", &models.Message{
			Photo: []models.PhotoSize{{FileSize: 1024}},
		}, false},
		{"oversized photo", &models.Message{
			Photo: []models.PhotoSize{{FileSize: 1024}, {FileSize: config.MaxFileSize + 1}},
		}, true},
		{"oversized voice", &models.Message{
			Voice: &models.Voice{FileSize: config.MaxFileSize + 1},
		}, true},
		{"oversized audio", &models.Message{
			Audio: &models.Audio{FileSize: config.MaxFileSize + 1},
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tooBig(tt.msg))
		})
	}
}
