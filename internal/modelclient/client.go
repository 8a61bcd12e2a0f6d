// Package modelclient implements the per-provider chat-with-tools wire
// protocol clients the model manager dispatches structured decision
// requests through. Grounded on the teacher's LLMProvider contract
// (internal/agent/provider_types.go) and providers.BaseProvider
// (internal/agent/providers/base.go): Complete returns content and usage,
// with no internal retry; retry/failover is exclusively the manager's job.
package modelclient

import "context"

// Message is one turn of the conversation sent to a provider.
type Message struct {
	Role    string // "system" | "user" | "assistant"
	Content string
	// ImageBase64 carries an optional base64-encoded screenshot attached to
	// this message, used when the Agent has useVision enabled.
	ImageBase64 string
}

// Request carries everything a provider needs for one completion call.
// A MaxTokens of 0 or less (-1 for unbounded, per spec.md section 6's
// configuration surface) makes the OpenAI-compatible clients omit the cap;
// the Anthropic client sends 4096 instead, since that API requires one.
type Request struct {
	Model          string
	Messages       []Message
	Temperature    float64
	MaxTokens      int
	ResponseSchema []byte // JSON Schema for the structured response; see each client's Complete for what is sent
}

// Usage reports token accounting for one completion call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Response is what every provider flavor normalizes its wire reply into.
type Response struct {
	Content string
	Usage   Usage
}

// Client is the shared contract internal/modelclient's three provider
// flavors (OpenAI-compatible, Google-Gemini-via-OpenAI-compat, Anthropic)
// each implement. Complete must not retry internally; classification and
// retry belong to internal/modelmanager, matching the teacher's explicit
// "providers.BaseProvider.Retry is not called by provider Complete methods"
// contract.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
	Name() string
}
