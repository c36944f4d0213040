package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarybala/bot/internal/config"
	"github.com/sarybala/bot/internal/domain"
)

type listGateway struct {
	fakeGateway
	models []string
	err    error
}

func (g *listGateway) ListModels(context.Context) ([]string, error) {
	return g.models, g.err
}

func TestNewCatalogRejectsEmpty(t *testing.T) {
	t.Parallel()

	_, err := NewCatalog(nil)
	assert.ErrorIs(t, err, domain.ErrEmptyCatalog)
}

func TestLoadCatalogFallsBackOnListingFailure(t *testing.T) {
	t.Parallel()

	gw := &listGateway{err: errors.New("api unreachable")}
	c, err := LoadCatalog(context.Background(), gw)
	require.NoError(t, err)
	assert.Equal(t, config.FallbackModels, c.Models())
}

func TestCatalogFallback(t *testing.T) {
	t.Parallel()

	t.Run("prefers canonical default", func(t *testing.T) {
		t.Parallel()
		c := mustCatalog(t, "gemini-2.5-pro", domain.DefaultModel, "gemma-3-27b-it")
		assert.Equal(t, domain.DefaultModel, c.Fallback())
	})

	t.Run("first entry when default absent", func(t *testing.T) {
		t.Parallel()
		c := mustCatalog(t, "gemini-2.5-pro", "gemma-3-27b-it")
		assert.Equal(t, "gemini-2.5-pro", c.Fallback())
	})
}

func TestCatalogRefresh(t *testing.T) {
	t.Parallel()

	c := mustCatalog(t, domain.DefaultModel)

	require.NoError(t, c.Refresh([]string{"gemini-3-flash"}))
	assert.True(t, c.Contains("gemini-3-flash"))
	assert.False(t, c.Contains(domain.DefaultModel))

	// An empty refresh is rejected and leaves the catalog intact.
	assert.ErrorIs(t, c.Refresh(nil), domain.ErrEmptyCatalog)
	assert.Equal(t, []string{"gemini-3-flash"}, c.Models())
}
