package modelclient

// NewGoogleClient builds a Client for Gemini models served through an
// OpenAI-compatible endpoint (Google's "openai/" compatibility layer),
// per spec.md section 6's "Google-Gemini-via-OpenAI-compat" flavor: the
// same wire protocol as OpenAIClient, with a different base URL and model
// id convention, so it is a thin constructor rather than a second
// implementation.
func NewGoogleClient(apiKey, apiBase, model string) *OpenAIClient {
	base := apiBase
	if base == "" {
		base = "https://generativelanguage.googleapis.com/v1beta/openai"
	}
	return NewOpenAIClient(apiKey, base, model)
}
