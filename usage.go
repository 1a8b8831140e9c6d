package frame

// Usage tracks token consumption of one model call.
type Usage struct {
	InputTokens  int
	OutputTokens int
}
