package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"seo_article_writer/apperr"
)

// GenAILLM implements LLMClient with Google's Gemini API.
type GenAILLM struct {
	client *genai.Client
	model  string
}

func NewGenAILLM(ctx context.Context, cfg *LLMSettings) (*GenAILLM, error) {
	if cfg == nil {
		return nil, errors.New("llm config is nil")
	}
	if cfg.APIKey == "" {
		return nil, apperr.Config("generation api key missing", nil)
	}
	if cfg.Model == "" {
		return nil, apperr.Config("generation model is required", nil)
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GenAILLM{client: client, model: cfg.Model}, nil
}

func (g *GenAILLM) Complete(ctx context.Context, prompt Prompt) (string, error) {
	var config *genai.GenerateContentConfig
	if prompt.System != "" {
		config = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(prompt.System, genai.RoleUser),
		}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt.User), config)
	if err != nil {
		return "", apperr.Upstream("generation request failed", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", apperr.Upstream("generation api returned empty text", nil)
	}
	return text, nil
}
