package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/bryanwahyu/tpa-risk/internal/domain/ai"
)

const (
	DefaultModelID   = "anthropic.claude-3-5-haiku-20241022-v1:0"
	DefaultRegion    = "us-west-2"
	defaultMaxTokens = 4000
	anthropicVersion = "bedrock-2023-05-31"
)

// invoker is the slice of the bedrockruntime client this package uses.
type invoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

type Client struct {
	api       invoker
	ModelID   string
	MaxTokens int
}

// New loads AWS credentials from the standard chain (env, shared config, role).
func New(ctx context.Context, region, modelID string, maxTokens int) (*Client, error) {
	if region == "" {
		region = DefaultRegion
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &Client{api: bedrockruntime.NewFromConfig(cfg), ModelID: modelID, MaxTokens: maxTokens}, nil
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type messagesRequest struct {
	AnthropicVersion string    `json:"anthropic_version"`
	MaxTokens        int       `json:"max_tokens"`
	Messages         []message `json:"messages"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
}

// Complete sends prompt as a single user turn through InvokeModel.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	modelID := c.ModelID
	if modelID == "" {
		modelID = DefaultModelID
	}
	maxTokens := c.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	body, err := json.Marshal(messagesRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        maxTokens,
		Messages: []message{{
			Role:    "user",
			Content: []contentBlock{{Type: "text", Text: prompt}},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal bedrock request: %w", err)
	}

	out, err := c.api.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		var throttled *types.ThrottlingException
		var quota *types.ServiceQuotaExceededException
		if errors.As(err, &throttled) || errors.As(err, &quota) {
			return "", fmt.Errorf("failed to invoke model %s: %w", modelID, ai.ErrQuotaExceeded)
		}
		return "", fmt.Errorf("failed to invoke model %s: %w", modelID, err)
	}

	var resp messagesResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode bedrock response: %w", err)
	}
	for _, block := range resp.Content {
		if block.Type == "" || block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", ai.ErrEmptyResponse
}
