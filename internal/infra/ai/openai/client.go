package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/bryanwahyu/tpa-risk/internal/domain/ai"
)

const (
	defaultModel     = "gpt-4o-mini"
	defaultMaxTokens = 4000
)

type Client struct {
	*openai.Client
	Model     string
	MaxTokens int
}

func NewClient(apiKey, model string, maxTokens int) *Client {
	return &Client{Client: openai.NewClient(apiKey), Model: model, MaxTokens: maxTokens}
}

// NewClientWithConfig allows pointing the client at a compatible gateway.
func NewClientWithConfig(cfg openai.ClientConfig, model string, maxTokens int) *Client {
	return &Client{Client: openai.NewClientWithConfig(cfg), Model: model, MaxTokens: maxTokens}
}

// Complete sends prompt as a single user turn and returns the first choice's text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	model := c.Model
	if model == "" {
		model = defaultModel
	}
	maxTokens := c.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if isReasoningModel(model) {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		if isQuotaError(err) {
			return "", fmt.Errorf("failed to create chat completion: %w", ai.ErrQuotaExceeded)
		}
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ai.ErrEmptyResponse
	}

	return resp.Choices[0].Message.Content, nil
}

func isReasoningModel(model string) bool {
	for _, p := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, p) {
			return true
		}
	}
	return false
}

func isQuotaError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return true
	}
	var reqErr *openai.RequestError
	return errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests
}
