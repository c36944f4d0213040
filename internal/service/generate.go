package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sarybala/bot/internal/config"
	"github.com/sarybala/bot/internal/domain"
	"github.com/sarybala/bot/internal/store"
)

// Snapshot is the full accumulated response text at one point of a
// generation. Each snapshot is a prefix-extension of the previous one. A
// snapshot with Err set is terminal; its Text carries the message to show.
type Snapshot struct {
	Text string
	Err  error
}

// Request is one generation call built from an incoming update.
type Request struct {
	UserID    int64
	Prompt    string
	Images    []ImagePayload
	AudioPath string
}

// Generator orchestrates a generation call: it resolves the user settings,
// assembles the bounded conversation context, drives the model gateway in
// streaming or single-shot mode and persists the completed turn pair.
type Generator struct {
	store   store.Store
	gateway ModelGateway
	catalog *Catalog
	tools   *Registry

	// Media upload poll cadence.
	pollInterval time.Duration
	pollTimeout  time.Duration

	// Generations for the same user are serialized so overlapping calls
	// cannot interleave their history writes.
	locks sync.Map // int64 -> *sync.Mutex
}

func NewGenerator(st store.Store, gw ModelGateway, catalog *Catalog, tools *Registry) *Generator {
	return &Generator{
		store: st, gateway: gw, catalog: catalog, tools: tools,
		pollInterval: config.MediaPollInterval,
		pollTimeout:  config.MediaPollTimeout,
	}
}

// Generate runs one call and returns a channel of growing text snapshots.
// The channel is closed after the terminal snapshot; any failure is local to
// the call and delivered as a snapshot carrying the error.
func (g *Generator) Generate(ctx context.Context, req Request) <-chan Snapshot {
	out := make(chan Snapshot, 16)

	go func() {
		defer close(out)

		mu := g.userLock(req.UserID)
		mu.Lock()
		defer mu.Unlock()

		g.run(ctx, req, out)
	}()

	return out
}

func (g *Generator) userLock(userID int64) *sync.Mutex {
	mu, _ := g.locks.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (g *Generator) run(ctx context.Context, req Request, out chan<- Snapshot) {
	settings, err := g.store.GetSettings(ctx, req.UserID)
	if err != nil {
		out <- errSnapshot(err)
		return
	}

	model := settings.SelectedModel
	if !g.catalog.Contains(model) {
		fallback := g.catalog.Fallback()
		slog.Warn("model not in catalog, switching user to fallback",
			"user_id", req.UserID, "model", model, "fallback", fallback)
		if err := g.store.UpdateSetting(ctx, req.UserID, domain.FieldSelectedModel, fallback); err != nil {
			slog.Error("persist fallback model", "error", err, "user_id", req.UserID)
		}
		model = fallback
	}

	var tools []Tool
	if settings.UseTools {
		tools = g.tools.All()
	}

	// A turn that may invoke a function must run to completion before its
	// output is usable, so tools force single-shot mode.
	streaming := settings.StreamResponse && len(tools) == 0

	history, err := g.store.RecentTurns(ctx, req.UserID, config.HistoryLimit)
	if err != nil {
		out <- errSnapshot(err)
		return
	}

	in := GenerateInput{
		Model:             model,
		SystemInstruction: settings.SystemInstruction,
		Temperature:       settings.Temperature,
		MaxTokens:         settings.MaxTokens,
		Tools:             tools,
		History:           history,
		Prompt:            req.Prompt,
		Images:            req.Images,
	}

	if req.AudioPath != "" {
		ref, err := g.uploadAudio(ctx, req.AudioPath)
		if err != nil {
			out <- errSnapshot(err)
			return
		}
		in.Media = append(in.Media, ref)
		if in.Prompt == "" {
			in.Prompt = "Аудио сообщение"
		}
	}

	slog.Info("generation started",
		"user_id", req.UserID, "model", model,
		"streaming", streaming, "tools", len(tools), "history", len(history))

	var full strings.Builder
	if streaming {
		for chunk := range g.gateway.Stream(ctx, in) {
			if chunk.Err != nil {
				out <- errSnapshot(chunk.Err)
				return
			}
			full.WriteString(chunk.Text)
			out <- Snapshot{Text: full.String()}
		}
	} else {
		text, err := g.gateway.Complete(ctx, in)
		if err != nil {
			out <- errSnapshot(err)
			return
		}
		full.WriteString(text)
		out <- Snapshot{Text: full.String()}
	}

	hasMedia := len(req.Images) > 0 || req.AudioPath != ""
	if err := g.persistTurns(ctx, req.UserID, in.Prompt, full.String(), hasMedia); err != nil {
		// The response was already shown; surface the failure instead of
		// reporting silent success.
		slog.Error("persist turns", "error", err, "user_id", req.UserID)
		out <- Snapshot{Text: full.String(), Err: err}
	}
}

// uploadAudio transfers the payload and waits for the provider to finish
// processing it, bounded by the configured poll timeout.
func (g *Generator) uploadAudio(ctx context.Context, path string) (MediaRef, error) {
	ref, err := g.gateway.UploadMedia(ctx, path)
	if err != nil {
		return MediaRef{}, err
	}

	deadline := time.Now().Add(g.pollTimeout)
	for {
		state, err := g.gateway.MediaState(ctx, ref)
		if err != nil {
			return MediaRef{}, err
		}
		switch state {
		case MediaReady:
			return ref, nil
		case MediaFailed:
			return MediaRef{}, domain.ErrMediaFailed
		}

		if time.Now().After(deadline) {
			return MediaRef{}, domain.ErrMediaTimeout
		}
		select {
		case <-ctx.Done():
			return MediaRef{}, ctx.Err()
		case <-time.After(g.pollInterval):
		}
	}
}

// persistTurns writes the user turn and the model turn, in that order. It is
// called only after the full response is known, so history never holds a
// user turn without its paired model turn.
func (g *Generator) persistTurns(ctx context.Context, userID int64, prompt, response string, hasMedia bool) error {
	if err := g.store.AppendTurn(ctx, userID, domain.RoleUser, prompt, hasMedia); err != nil {
		return err
	}
	return g.store.AppendTurn(ctx, userID, domain.RoleModel, response, false)
}

func errSnapshot(err error) Snapshot {
	return Snapshot{Text: fmt.Sprintf("Ошибка API: %v", err), Err: err}
}
