package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"

	"github.com/medvisionlab/chestray/internal/domain/report"
	"github.com/medvisionlab/chestray/internal/domain/scoring"
	"github.com/medvisionlab/chestray/internal/infra/ai/prompt"
)

const (
	maxTokens   = 2048
	temperature = 0.7
)

type Client struct {
	*openai.Client
	Model    string
	Language string
}

func NewClient(apiKey, model, language string) *Client {
	return &Client{Client: openai.NewClient(apiKey), Model: model, Language: language}
}

// Generate requests one radiology-style report for the scored predictions.
// Quota errors are surfaced as report.ErrQuotaExceeded so the caller can fall
// back to the deterministic template; everything else is wrapped as-is.
func (c *Client) Generate(ctx context.Context, preds []scoring.Prediction) (string, error) {
	model := c.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	req := openai.ChatCompletionRequest{
		Model:       model,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.GetSystemPrompt(c.Language)},
			{Role: openai.ChatMessageRoleUser, Content: prompt.GetUserPrompt(preds)},
		},
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return "", fmt.Errorf("%w: %v", report.ErrQuotaExceeded, err)
		}
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", report.ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
