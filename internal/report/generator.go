// Package report generates the paid growth assessment report: an AI-written
// plain-text analysis parsed into sections and rendered as a standalone HTML
// document.
package report

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"growthscore_backend/platform/apperr"
	"growthscore_backend/platform/config"
)

// TextGenerator produces the report body from a prompt.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// GeminiGenerator implements TextGenerator with the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a Gemini-backed report generator.
func NewGeminiGenerator(ctx context.Context, cfg config.GenAIConfig) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.GetGeminiAPIKey(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiGenerator{client: client, model: cfg.GetGeminiModel()}, nil
}

// GenerateText runs a single-turn generation and returns the text output.
func (g *GeminiGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", apperr.Upstream("report generation failed", err)
	}

	text := resp.Text()
	if text == "" {
		return "", apperr.Upstream("report generation returned no text", nil)
	}
	return text, nil
}
