package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/tpa-risk/internal/domain/ai"
)

type fakeInvoker struct {
	got  *bedrockruntime.InvokeModelInput
	body string
	err  error
}

func (f *fakeInvoker) InvokeModel(_ context.Context, in *bedrockruntime.InvokeModelInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.got = in
	if f.err != nil {
		return nil, f.err
	}
	return &bedrockruntime.InvokeModelOutput{Body: []byte(f.body)}, nil
}

func TestClient_Complete(t *testing.T) {
	fake := &fakeInvoker{body: `{"id":"msg_1","type":"message","role":"assistant","content":[{"type":"text","text":"{\"top_risky_apps\":[]}"}],"stop_reason":"end_turn"}`}
	c := &Client{api: fake}

	text, err := c.Complete(context.Background(), "the prompt")

	require.NoError(t, err)
	assert.Equal(t, `{"top_risky_apps":[]}`, text)

	require.NotNil(t, fake.got)
	assert.Equal(t, DefaultModelID, aws.ToString(fake.got.ModelId))
	assert.Equal(t, "application/json", aws.ToString(fake.got.ContentType))
	assert.Equal(t, "application/json", aws.ToString(fake.got.Accept))

	var req messagesRequest
	require.NoError(t, json.Unmarshal(fake.got.Body, &req))
	assert.Equal(t, "bedrock-2023-05-31", req.AnthropicVersion)
	assert.Equal(t, 4000, req.MaxTokens)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, "user", req.Messages[0].Role)
	assert.Equal(t, []contentBlock{{Type: "text", Text: "the prompt"}}, req.Messages[0].Content)
}

func TestClient_Complete_CustomModel(t *testing.T) {
	fake := &fakeInvoker{body: `{"content":[{"type":"text","text":"ok"}]}`}
	c := &Client{api: fake, ModelID: "anthropic.claude-3-haiku-20240307-v1:0", MaxTokens: 1024}

	_, err := c.Complete(context.Background(), "p")
	require.NoError(t, err)

	var req messagesRequest
	require.NoError(t, json.Unmarshal(fake.got.Body, &req))
	assert.Equal(t, 1024, req.MaxTokens)
	assert.Equal(t, "anthropic.claude-3-haiku-20240307-v1:0", aws.ToString(fake.got.ModelId))
}

func TestClient_Complete_Errors(t *testing.T) {
	tests := []struct {
		name    string
		fake    *fakeInvoker
		wantIs  error
		wantMsg string
	}{
		{
			name:   "throttled",
			fake:   &fakeInvoker{err: &types.ThrottlingException{Message: aws.String("slow down")}},
			wantIs: ai.ErrQuotaExceeded,
		},
		{
			name:    "transport",
			fake:    &fakeInvoker{err: errors.New("connection reset")},
			wantMsg: "connection reset",
		},
		{
			name:    "undecodable body",
			fake:    &fakeInvoker{body: "<html>"},
			wantMsg: "failed to decode bedrock response",
		},
		{
			name:   "no text",
			fake:   &fakeInvoker{body: `{"content":[]}`},
			wantIs: ai.ErrEmptyResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := (&Client{api: tt.fake}).Complete(context.Background(), "p")
			require.Error(t, err)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}
