package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		expr string
		want string
	}{
		{"2 + 2", "4"},
		{"2 + 2 * 2", "6"},
		{"(2 + 2) * 2", "8"},
		{"10 / 4", "2.5"},
		{"10 % 3", "1"},
		{"2 ^ 10", "1024"},
		{"2 ^ 3 ^ 2", "512"}, // right-associative
		{"-5 + 3", "-2"},
		{"2 * -3", "-6"},
		{"-2 ^ 2", "-4"},
		{"2 ^ -3", "0.125"},
		{"-2 * 3", "-6"},
		{"-(2 + 3)", "-5"},
		{"--4", "4"},
		{"3.5 * 2", "7"},
		{"0.1 + 0.7", "0.7999999999999999"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			t.Parallel()
			got, err := Evaluate(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		expr string
	}{
		{"empty", ""},
		{"spaces only", "   "},
		{"division by zero", "1 / 0"},
		{"modulo by zero", "1 % 0"},
		{"unbalanced open", "(2 + 3"},
		{"unbalanced close", "2 + 3)"},
		{"dangling operator", "2 +"},
		{"letters", "2 + x"},
		{"injection attempt", "__import__('os')"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Evaluate(tt.expr)
			assert.Error(t, err)
		})
	}
}

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	r := NewRegistry("", "")

	t.Run("all capabilities registered", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, []string{"search", "calculator", "weather", "rube"}, r.Names())
		assert.Len(t, r.All(), 4)
	})

	t.Run("unknown names dropped", func(t *testing.T) {
		t.Parallel()
		tools := r.Resolve([]string{"calculator", "time_machine"})
		require.Len(t, tools, 1)
		assert.Equal(t, "calculator", tools[0].Declaration.Name)
	})

	t.Run("registration order preserved", func(t *testing.T) {
		t.Parallel()
		tools := r.Resolve([]string{"weather", "search"})
		require.Len(t, tools, 2)
		assert.Equal(t, "search", tools[0].Declaration.Name)
		assert.Equal(t, "weather", tools[1].Declaration.Name)
	})
}

func TestCalculatorToolReportsErrorsAsText(t *testing.T) {
	t.Parallel()

	r := NewRegistry("", "")
	tools := r.Resolve([]string{"calculator"})
	require.Len(t, tools, 1)

	out := tools[0].Call(context.Background(), map[string]any{"expression": "1 / 0"})
	assert.Contains(t, out, "Ошибка вычисления")

	out = tools[0].Call(context.Background(), map[string]any{"expression": "6 * 7"})
	assert.Equal(t, "42", out)
}
