package service

import (
	"context"

	"github.com/sarybala/bot/internal/domain"
)

// StreamChunk is one increment of model output. Err is set at most once, on
// the last chunk delivered.
type StreamChunk struct {
	Text string
	Err  error
}

// ImagePayload is raw image bytes passed inline with a request.
type ImagePayload struct {
	Data []byte
	MIME string
}

// MediaRef points at a payload uploaded to the model provider.
type MediaRef struct {
	Name string
	URI  string
	MIME string
}

type MediaState int

const (
	MediaProcessing MediaState = iota
	MediaReady
	MediaFailed
)

// GenerateInput carries everything needed for one model invocation.
type GenerateInput struct {
	Model             string
	SystemInstruction string
	Temperature       float64
	MaxTokens         int
	Tools             []Tool
	History           []domain.Turn
	Prompt            string
	Images            []ImagePayload
	Media             []MediaRef
}

// HasMedia reports whether the request carries non-text content. Media
// requests are issued as one multimodal call with the history flattened into
// a text preamble; text-only requests use the structured chat history.
func (in GenerateInput) HasMedia() bool {
	return len(in.Images) > 0 || len(in.Media) > 0
}

// ModelGateway abstracts the hosted LLM API.
type ModelGateway interface {
	// ListModels returns the identifiers of invocable models.
	ListModels(ctx context.Context) ([]string, error)

	// Stream runs a generation and delivers incremental text chunks. The
	// returned channel is closed when the stream ends.
	Stream(ctx context.Context, in GenerateInput) <-chan StreamChunk

	// Complete runs a generation to completion, resolving any tool calls
	// before returning the final text.
	Complete(ctx context.Context, in GenerateInput) (string, error)

	// UploadMedia transfers a local file to the provider.
	UploadMedia(ctx context.Context, path string) (MediaRef, error)

	// MediaState reports the processing state of an uploaded payload.
	MediaState(ctx context.Context, ref MediaRef) (MediaState, error)
}
