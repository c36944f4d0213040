package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"google.golang.org/genai"
)

// Tool is a named capability exposed to the model for function calling.
// Call returns a human-readable result; failures are reported as text so the
// model can relay them instead of aborting the turn.
type Tool struct {
	Declaration *genai.FunctionDeclaration
	Call        func(ctx context.Context, args map[string]any) string
}

// Registry maps capability names to tools. It is populated once at startup
// and read-only afterwards.
type Registry struct {
	order []string
	tools map[string]Tool
}

// NewRegistry builds the registry with all built-in capabilities. The rube
// broker is registered even when unconfigured; it reports its missing
// configuration as a tool result.
func NewRegistry(rubeURL, rubeKey string) *Registry {
	r := &Registry{tools: make(map[string]Tool)}
	httpClient := &http.Client{Timeout: 10 * time.Second}

	r.register("search", Tool{
		Declaration: &genai.FunctionDeclaration{
			Name:        "search",
			Description: "Ищет информацию в интернете (DuckDuckGo). Полезно для актуальных новостей.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"query": {Type: genai.TypeString, Description: "Поисковый запрос"},
				},
				Required: []string{"query"},
			},
		},
		Call: func(ctx context.Context, args map[string]any) string {
			return searchInternet(ctx, httpClient, argString(args, "query"))
		},
	})

	r.register("calculator", Tool{
		Declaration: &genai.FunctionDeclaration{
			Name:        "calculator",
			Description: "Вычисляет математическое выражение. Например: '2 + 2 * 2'.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"expression": {Type: genai.TypeString, Description: "Выражение для вычисления"},
				},
				Required: []string{"expression"},
			},
		},
		Call: func(ctx context.Context, args map[string]any) string {
			result, err := Evaluate(argString(args, "expression"))
			if err != nil {
				return fmt.Sprintf("Ошибка вычисления: %v", err)
			}
			return result
		},
	})

	r.register("weather", Tool{
		Declaration: &genai.FunctionDeclaration{
			Name:        "weather",
			Description: "Возвращает погоду в указанном городе (эмуляция).",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"city": {Type: genai.TypeString, Description: "Название города"},
				},
				Required: []string{"city"},
			},
		},
		Call: func(ctx context.Context, args map[string]any) string {
			return getWeather(argString(args, "city"))
		},
	})

	r.register("rube", Tool{
		Declaration: &genai.FunctionDeclaration{
			Name:        "rube",
			Description: "Запрашивает информацию у внешнего брокера действий Rube.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"query": {Type: genai.TypeString, Description: "Запрос к Rube"},
				},
				Required: []string{"query"},
			},
		},
		Call: func(ctx context.Context, args map[string]any) string {
			return askRube(ctx, httpClient, rubeURL, rubeKey, argString(args, "query"))
		},
	})

	return r
}

func (r *Registry) register(name string, t Tool) {
	r.order = append(r.order, name)
	r.tools[name] = t
}

// Resolve returns the tools for the requested names in registration order.
// Unknown names are silently dropped.
func (r *Registry) Resolve(names []string) []Tool {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var out []Tool
	for _, name := range r.order {
		if want[name] {
			out = append(out, r.tools[name])
		}
	}
	return out
}

// All returns every registered tool in registration order.
func (r *Registry) All() []Tool {
	return r.Resolve(r.order)
}

// Names returns the registered capability names.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

func argString(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

func searchInternet(ctx context.Context, client *http.Client, query string) string {
	if query == "" {
		return "Пустой поисковый запрос."
	}

	req, err := http.NewRequestWithContext(ctx, "GET",
		"https://html.duckduckgo.com/html/?q="+url.QueryEscape(query), nil)
	if err != nil {
		return fmt.Sprintf("Ошибка поиска: %v", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64)")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Sprintf("Ошибка поиска: %v", err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return fmt.Sprintf("Ошибка поиска: %v", err)
	}

	var results []string
	doc.Find(".result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		title := strings.TrimSpace(s.Find(".result__a").Text())
		snippet := strings.TrimSpace(s.Find(".result__snippet").Text())
		href, _ := s.Find(".result__a").Attr("href")
		if title != "" {
			results = append(results, fmt.Sprintf("%s: %s (%s)", title, snippet, href))
		}
		return len(results) < 3
	})

	if len(results) == 0 {
		return "Ничего не найдено."
	}
	return strings.Join(results, "\n\n")
}

var cityTemps = map[string]int{
	"London":   15,
	"Moscow":   20,
	"Bishkek":  25,
	"New York": 18,
}

func getWeather(city string) string {
	temp, ok := cityTemps[city]
	if !ok {
		temp = 10 + rand.Intn(21)
	}
	return fmt.Sprintf("Погода в %s: %d°C, ясно.", city, temp)
}

func askRube(ctx context.Context, client *http.Client, apiURL, apiKey, query string) string {
	if apiURL == "" || apiKey == "" {
		return "Ошибка: Rube API не настроен."
	}

	payload, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return fmt.Sprintf("Ошибка Rube: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", apiURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Sprintf("Ошибка Rube: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Sprintf("Ошибка соединения с Rube: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Sprintf("Ошибка Rube API: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Sprintf("Ошибка Rube: %v", err)
	}

	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		return string(body)
	}
	if content, ok := data["content"].(string); ok {
		return content
	}
	if answer, ok := data["answer"].(string); ok {
		return answer
	}
	return string(body)
}
