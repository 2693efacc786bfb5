package hint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	"google.golang.org/genai"

	"github.com/odyssey-erp/orderdesk/internal/orders"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.0-flash"

// Generator produces a text completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Gemini generates completions with the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini client for apiKey.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("hint: gemini api key required")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("hint: create genai client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// Generate sends prompt and returns the response text.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(0)),
		ResponseMIMEType: "application/json",
	}
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("hint: gemini generation failed: %w", err)
	}
	return result.Text(), nil
}

// ColumnHinter asks a model which header holds product codes.
type ColumnHinter struct {
	gen Generator
}

// NewColumnHinter wraps a generator.
func NewColumnHinter(gen Generator) *ColumnHinter {
	return &ColumnHinter{gen: gen}
}

// SuggestCodeColumn returns the model's pick, or "" when it names no header.
func (h *ColumnHinter) SuggestCodeColumn(ctx context.Context, headers []string, sample []orders.Row) (string, error) {
	prompt, err := buildPrompt(headers, sample)
	if err != nil {
		return "", err
	}
	text, err := h.gen.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	column := parseSuggestion(text)
	for _, hdr := range headers {
		if hdr == column {
			return column, nil
		}
	}
	return "", nil
}

func buildPrompt(headers []string, sample []orders.Row) (string, error) {
	rawHeaders, err := json.Marshal(headers)
	if err != nil {
		return "", fmt.Errorf("hint: encode headers: %w", err)
	}
	lines := make([]string, 0, len(sample))
	for _, row := range sample {
		raw, err := json.Marshal(row)
		if err != nil {
			return "", fmt.Errorf("hint: encode sample: %w", err)
		}
		lines = append(lines, string(raw))
	}
	return fmt.Sprintf(
		"Analyze spreadsheet headers: %s. Sample data:\n%s\n"+
			"Identify the header holding Bonhoeffer product codes (alphanumeric product IDs). "+
			`Respond with JSON {"column": "<exact header name>"}, or {"column": ""} if none fits.`,
		rawHeaders, strings.Join(lines, "\n"),
	), nil
}

// parseSuggestion accepts the requested JSON, repairing it when needed, and
// falls back to a bare header name.
func parseSuggestion(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if strings.HasPrefix(text, "{") {
		var out struct {
			Column string `json:"column"`
		}
		repaired, err := jsonrepair.RepairJSON(text)
		if err == nil && json.Unmarshal([]byte(repaired), &out) == nil {
			return strings.TrimSpace(out.Column)
		}
	}
	return strings.Trim(text, "\"'`")
}
