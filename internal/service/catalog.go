package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sarybala/bot/internal/config"
	"github.com/sarybala/bot/internal/domain"
)

// Catalog is the process-wide set of invocable model identifiers. It is
// populated once at startup and read concurrently by every generation call;
// Refresh is the only writer after init.
type Catalog struct {
	mu     sync.RWMutex
	models []string
}

func NewCatalog(models []string) (*Catalog, error) {
	if len(models) == 0 {
		return nil, domain.ErrEmptyCatalog
	}
	return &Catalog{models: append([]string(nil), models...)}, nil
}

// LoadCatalog fetches the model list from the gateway, falling back to the
// hardcoded minimal set when the listing fails.
func LoadCatalog(ctx context.Context, gw ModelGateway) (*Catalog, error) {
	models, err := gw.ListModels(ctx)
	if err != nil || len(models) == 0 {
		slog.Warn("could not fetch models from API, using fallback list", "error", err)
		models = config.FallbackModels
	}
	return NewCatalog(models)
}

func (c *Catalog) Contains(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, m := range c.models {
		if m == id {
			return true
		}
	}
	return false
}

// Fallback returns the canonical default model when the catalog carries it,
// otherwise the first catalog entry.
func (c *Catalog) Fallback() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, m := range c.models {
		if m == domain.DefaultModel {
			return m
		}
	}
	return c.models[0]
}

func (c *Catalog) Models() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.models...)
}

// Refresh replaces the catalog contents. An empty list is rejected so
// concurrent readers never observe a catalog with zero models.
func (c *Catalog) Refresh(models []string) error {
	if len(models) == 0 {
		return domain.ErrEmptyCatalog
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.models = append([]string(nil), models...)
	return nil
}
