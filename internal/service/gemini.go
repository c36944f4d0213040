package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"google.golang.org/genai"

	"github.com/sarybala/bot/internal/domain"
)

// maxToolRounds bounds the function-call loop in Complete.
const maxToolRounds = 5

// GeminiService implements ModelGateway on top of the Gemini API.
type GeminiService struct {
	client *genai.Client
}

func NewGeminiService(ctx context.Context, apiKey string) (*GeminiService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is empty")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiService{client: client}, nil
}

func (s *GeminiService) ListModels(ctx context.Context) ([]string, error) {
	var ids []string
	for model, err := range s.client.Models.All(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list models: %w", err)
		}
		if !supportsGenerate(model) {
			continue
		}
		name := strings.TrimPrefix(model.Name, "models/")
		if strings.Contains(name, "gemini") || strings.Contains(name, "gemma") {
			ids = append(ids, name)
		}
	}

	// Newer generations first so the fallback picks something current.
	sort.Slice(ids, func(i, j int) bool {
		return modelSortKey(ids[i]) < modelSortKey(ids[j])
	})
	return ids, nil
}

func supportsGenerate(m *genai.Model) bool {
	for _, action := range m.SupportedActions {
		if action == "generateContent" {
			return true
		}
	}
	return false
}

func modelSortKey(id string) string {
	if strings.Contains(id, "3") {
		return id
	}
	return "z" + id
}

func (s *GeminiService) Stream(ctx context.Context, in GenerateInput) <-chan StreamChunk {
	out := make(chan StreamChunk, 16)

	go func() {
		defer close(out)

		contents := buildContents(in)
		cfg := buildConfig(in)

		for resp, err := range s.client.Models.GenerateContentStream(ctx, in.Model, contents, cfg) {
			if err != nil {
				out <- StreamChunk{Err: fmt.Errorf("generate stream: %w", err)}
				return
			}
			if text := resp.Text(); text != "" {
				out <- StreamChunk{Text: text}
			}
		}
	}()

	return out
}

func (s *GeminiService) Complete(ctx context.Context, in GenerateInput) (string, error) {
	contents := buildContents(in)
	cfg := buildConfig(in)

	tools := make(map[string]Tool, len(in.Tools))
	for _, t := range in.Tools {
		tools[t.Declaration.Name] = t
	}

	for round := 0; round < maxToolRounds; round++ {
		resp, err := s.client.Models.GenerateContent(ctx, in.Model, contents, cfg)
		if err != nil {
			return "", fmt.Errorf("generate content: %w", err)
		}

		calls := resp.FunctionCalls()
		if len(calls) == 0 {
			return resp.Text(), nil
		}

		if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
			contents = append(contents, resp.Candidates[0].Content)
		}

		parts := make([]*genai.Part, len(calls))
		for i, call := range calls {
			tool, ok := tools[call.Name]
			result := "неизвестный инструмент: " + call.Name
			if ok {
				result = tool.Call(ctx, call.Args)
			}
			slog.Info("tool invoked", "tool", call.Name)
			parts[i] = genai.NewPartFromFunctionResponse(call.Name, map[string]any{"result": result})
		}
		contents = append(contents, genai.NewContentFromParts(parts, genai.RoleUser))
	}

	return "", fmt.Errorf("tool call limit (%d rounds) exceeded", maxToolRounds)
}

func (s *GeminiService) UploadMedia(ctx context.Context, path string) (MediaRef, error) {
	file, err := s.client.Files.UploadFromPath(ctx, path, nil)
	if err != nil {
		return MediaRef{}, fmt.Errorf("upload media: %w", err)
	}
	return MediaRef{Name: file.Name, URI: file.URI, MIME: file.MIMEType}, nil
}

func (s *GeminiService) MediaState(ctx context.Context, ref MediaRef) (MediaState, error) {
	file, err := s.client.Files.Get(ctx, ref.Name, nil)
	if err != nil {
		return MediaFailed, fmt.Errorf("get media state: %w", err)
	}
	switch file.State {
	case genai.FileStateProcessing:
		return MediaProcessing, nil
	case genai.FileStateActive:
		return MediaReady, nil
	default:
		return MediaFailed, nil
	}
}

func buildConfig(in GenerateInput) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(in.Temperature)),
		MaxOutputTokens: int32(in.MaxTokens),
	}
	if in.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(in.SystemInstruction, genai.RoleUser)
	}
	if len(in.Tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, len(in.Tools))
		for i, t := range in.Tools {
			decls[i] = t.Declaration
		}
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}
	return cfg
}

// buildContents assembles the request payload. With media present the prior
// history travels as a flattened text preamble in a single multimodal turn;
// text-only requests keep the structured turn history.
func buildContents(in GenerateInput) []*genai.Content {
	if !in.HasMedia() {
		contents := make([]*genai.Content, 0, len(in.History)+1)
		for _, turn := range in.History {
			var role genai.Role = genai.RoleUser
			if turn.Role == domain.RoleModel {
				role = genai.RoleModel
			}
			contents = append(contents, genai.NewContentFromText(turn.Content, role))
		}
		return append(contents, genai.NewContentFromText(in.Prompt, genai.RoleUser))
	}

	var parts []*genai.Part
	for _, ref := range in.Media {
		parts = append(parts, genai.NewPartFromURI(ref.URI, ref.MIME))
	}
	for _, img := range in.Images {
		parts = append(parts, genai.NewPartFromBytes(img.Data, img.MIME))
	}
	parts = append(parts, genai.NewPartFromText(flattenHistory(in.History)+in.Prompt))

	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
}

func flattenHistory(history []domain.Turn) string {
	if len(history) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Предыдущий диалог:\n")
	for _, turn := range history {
		b.WriteString(string(turn.Role))
		b.WriteString(": ")
		b.WriteString(turn.Content)
		b.WriteByte('\n')
	}
	b.WriteString("\n")
	return b.String()
}
