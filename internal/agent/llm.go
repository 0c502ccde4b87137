package agent

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"chakancha/internal/logging"
)

// LLM generates text completions for the workflow's two model calls.
type LLM interface {
	// Complete returns the model's text for a single-turn prompt.
	Complete(ctx context.Context, prompt string, temperature float32, maxTokens int32) (string, error)
}

// GeminiLLM implements LLM with the Google GenAI SDK.
type GeminiLLM struct {
	client *genai.Client
	model  string
}

// NewGeminiLLM creates a Gemini-backed LLM client.
func NewGeminiLLM(apiKey, model string) (*GeminiLLM, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key required (set GEMINI_API_KEY)")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	logging.Chat("Gemini LLM initialized: model=%s", model)
	return &GeminiLLM{client: client, model: model}, nil
}

func (g *GeminiLLM) Complete(ctx context.Context, prompt string, temperature float32, maxTokens int32) (string, error) {
	timer := logging.StartTimer(logging.CategoryChat, "llm.Complete")
	defer timer.Stop()

	config := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(temperature),
		MaxOutputTokens:   maxTokens,
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}
