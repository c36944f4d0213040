package telegram

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitMessage(t *testing.T) {
	t.Parallel()

	t.Run("short text passes through", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, []string{"привет"}, SplitMessage("привет", 10))
	})

	t.Run("splits on rune boundaries", func(t *testing.T) {
		t.Parallel()
		parts := SplitMessage("абвгдежзик", 5)
		require.Equal(t, []string{"абвгд", "ежзик"}, parts)
		for _, p := range parts {
			assert.True(t, utf8.ValidString(p))
		}
	})

	t.Run("prefers newline split", func(t *testing.T) {
		t.Parallel()
		parts := SplitMessage("абвгдеж\nзи клмнопрст", 10)
		require.Len(t, parts, 3)
		assert.Equal(t, "абвгдеж\n", parts[0])
		assert.Equal(t, "зи клмнопр", parts[1])
		assert.Equal(t, "ст", parts[2])
	})

	t.Run("early newline in wide text does not shorten the chunk", func(t *testing.T) {
		t.Parallel()
		// The newline sits at rune 4 of 10 — in the first half, so the
		// chunk stays full-length even though the byte offset is larger.
		parts := SplitMessage("абвг\nдежзикл", 10)
		require.Equal(t, []string{"абвг\nдежзи", "кл"}, parts)
	})

	t.Run("reassembles losslessly", func(t *testing.T) {
		t.Parallel()
		text := strings.Repeat("строка текста\n", 100)
		parts := SplitMessage(text, 50)
		assert.Equal(t, text, strings.Join(parts, ""))
		for _, p := range parts {
			assert.LessOrEqual(t, utf8.RuneCountInString(p), 50)
		}
	})
}

func TestFixMarkdown(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "balanced text unchanged",
			in:   "обычный текст с `кодом` и ```\nблоком\n```",
			want: "обычный текст с `кодом` и ```\nблоком\n```",
		},
		{
			name: "unclosed fence closed",
			in:   "```go\nfunc main() {}",
			want: "```go\nfunc main() {}\n```",
		},
		{
			name: "unbalanced inline backtick closed",
			in:   "вызови `DoWork",
			want: "вызови `DoWork`",
		},
		{
			name: "backtick inside fence untouched",
			in:   "```\necho `date`\n```",
			want: "```\necho `date`\n```",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, FixMarkdown(tt.in))
		})
	}
}
