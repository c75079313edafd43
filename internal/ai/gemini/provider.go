package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/ai"
	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/config"
)

type Provider struct {
	apiKey string
}

func NewProvider(cfg config.AIConfig) *Provider {
	return &Provider{apiKey: cfg.APIKey}
}

func (p *Provider) Name() string {
	return "gemini"
}

func (p *Provider) IsConfigured() bool {
	return p.apiKey != ""
}

func (p *Provider) Generate(ctx context.Context, model, prompt string) (string, error) {
	if !p.IsConfigured() {
		return "", fmt.Errorf("gemini provider is not configured (missing API key)")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(p.apiKey))
	if err != nil {
		return "", fmt.Errorf("failed to create gemini client: %w", err)
	}
	defer client.Close()

	generativeModel := client.GenerativeModel(model)
	var temperature float32 = 0.7
	generativeModel.Temperature = &temperature

	resp, err := generativeModel.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		if isQuotaError(err) {
			return "", fmt.Errorf("gemini quota error: %w", ai.ErrQuotaExhausted)
		}
		return "", fmt.Errorf("gemini generation error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from gemini")
	}

	var output string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			output += string(text)
		}
	}

	return output, nil
}

func isQuotaError(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == 429 {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "quota") ||
		strings.Contains(msg, "resource exhausted") ||
		strings.Contains(msg, "resourceexhausted") ||
		strings.Contains(msg, "429")
}
