package frame

import (
	"encoding/json"
	"time"
)

// Turn is one entry in a conversation. Human turns carry commands and tool
// results; agent turns carry text and tool calls.
type Turn struct {
	Role      Role
	Content   []ContentBlock
	Timestamp time.Time
}

// NewTextTurn returns a turn holding a single text block.
func NewTextTurn(role Role, text string, ts time.Time) Turn {
	return Turn{
		Role:      role,
		Content:   []ContentBlock{TextBlock{Text: text}},
		Timestamp: ts,
	}
}

// Text returns the last non-empty text block of the turn, or "".
func (t Turn) Text() string {
	var last string
	for _, b := range t.Content {
		if tb, ok := b.(TextBlock); ok && tb.Text != "" {
			last = tb.Text
		}
	}
	return last
}

// ToolCalls returns the tool call blocks of the turn in emitted order.
func (t Turn) ToolCalls() []ToolCallBlock {
	var calls []ToolCallBlock
	for _, b := range t.Content {
		if c, ok := b.(ToolCallBlock); ok {
			calls = append(calls, c)
		}
	}
	return calls
}

// ToolResults returns the tool result blocks of the turn in order.
func (t Turn) ToolResults() []ToolResultBlock {
	var results []ToolResultBlock
	for _, b := range t.Content {
		if r, ok := b.(ToolResultBlock); ok {
			results = append(results, r)
		}
	}
	return results
}

// IsCommand reports whether t is a human turn that starts an exchange, as
// opposed to a batch of tool results.
func (t Turn) IsCommand() bool {
	if t.Role != RoleHuman {
		return false
	}
	for _, b := range t.Content {
		if _, ok := b.(ToolResultBlock); ok {
			return false
		}
	}
	return true
}

// ContentBlock is a sealed interface representing a block of content.
// The unexported marker method prevents external implementations.
type ContentBlock interface {
	contentBlock()
}

// TextBlock contains text content.
type TextBlock struct {
	Text string
}

func (TextBlock) contentBlock() {}

// ToolCallBlock represents a tool invocation requested by the agent.
type ToolCallBlock struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

func (ToolCallBlock) contentBlock() {}

// ToolResultBlock carries the outcome of the tool call identified by
// ToolCallID.
type ToolResultBlock struct {
	ToolCallID string
	ToolName   string
	Content    string
	IsError    bool
}

func (ToolResultBlock) contentBlock() {}

// Reply is the assembled output of one model call.
type Reply struct {
	Content       []ContentBlock
	StopReason    StopReason
	RawStopReason string
	Usage         Usage
}

// Interface compliance checks.
var (
	_ ContentBlock = TextBlock{}
	_ ContentBlock = ToolCallBlock{}
	_ ContentBlock = ToolResultBlock{}
)
