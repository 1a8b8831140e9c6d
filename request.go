package frame

// Request is one model call: the conversation window plus the tools the
// model may invoke. The provider uses its own defaults when fields are zero.
type Request struct {
	Model        string // model ID, provider-specific; empty = provider default
	SystemPrompt string
	Turns        []Turn
	Tools        []Tool
	MaxTokens    int // 0 = provider default
}
