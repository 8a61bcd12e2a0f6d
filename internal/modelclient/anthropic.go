package modelclient

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicClient implements Client against the Anthropic Messages API.
type AnthropicClient struct {
	client anthropic.Client
	model  string
}

// NewAnthropicClient builds a client using apiKey, defaulting completions to
// model when a Request leaves Model empty.
func NewAnthropicClient(apiKey, model string) *AnthropicClient {
	return &AnthropicClient{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (c *AnthropicClient) Name() string { return "anthropic" }

// Complete sends req as a single Messages.New call. System prompts are
// passed via the API's dedicated system parameter rather than as a message,
// matching the Anthropic wire protocol; an attached screenshot is sent as a
// base64 image content block alongside the text block. req.ResponseSchema
// is not sent: no tool_use block is requested, and the reply comes back as
// plain text content.
func (c *AnthropicClient) Complete(ctx context.Context, req Request) (Response, error) {
	model := anthropic.Model(req.Model)
	if req.Model == "" {
		model = anthropic.Model(c.model)
	}

	maxTokens := int64(4096)
	if req.MaxTokens > 0 {
		maxTokens = int64(req.MaxTokens)
	}

	var system string
	messages := make([]anthropic.MessageParam, 0, len(req.Messages))
	for _, m := range req.Messages {
		if m.Role == "system" {
			system = m.Content
			continue
		}
		messages = append(messages, toAnthropicMessage(m))
	}

	params := anthropic.MessageNewParams{
		Model:     model,
		MaxTokens: maxTokens,
		Messages:  messages,
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return Response{}, fmt.Errorf("modelclient: anthropic completion: %w", err)
	}

	var content string
	for _, block := range resp.Content {
		if text := block.AsText(); text.Text != "" {
			content += text.Text
		}
	}

	return Response{
		Content: content,
		Usage: Usage{
			PromptTokens:     int(resp.Usage.InputTokens),
			CompletionTokens: int(resp.Usage.OutputTokens),
			TotalTokens:      int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
		},
	}, nil
}

func toAnthropicMessage(m Message) anthropic.MessageParam {
	role := anthropic.MessageParamRoleUser
	if m.Role == "assistant" {
		role = anthropic.MessageParamRoleAssistant
	}

	blocks := []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(m.Content)}
	if m.ImageBase64 != "" {
		blocks = append(blocks, anthropic.NewImageBlockBase64("image/png", m.ImageBase64))
	}

	return anthropic.MessageParam{Role: role, Content: blocks}
}
