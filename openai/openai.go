// Package openai implements [frame.Provider] for OpenAI-compatible Chat
// Completions APIs using github.com/sashabaranov/go-openai.
package openai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fwojciec/frame"
	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultModel     = "gpt-4o"
	defaultMaxTokens = 4000
)

// ConvertTurns converts frame Turns to chat messages. Tool results become
// one tool message each, correlated by call id.
// Exported for testing.
func ConvertTurns(systemPrompt string, turns []frame.Turn) []openai.ChatCompletionMessage {
	var result []openai.ChatCompletionMessage
	if systemPrompt != "" {
		result = append(result, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	for _, t := range turns {
		if t.Role == frame.RoleAgent {
			if msg, ok := assistantMessage(t); ok {
				result = append(result, msg)
			}
			continue
		}
		for _, r := range t.ToolResults() {
			result = append(result, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    r.Content,
				ToolCallID: r.ToolCallID,
			})
		}
		if text := joinText(t.Content); text != "" {
			result = append(result, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleUser,
				Content: text,
			})
		}
	}
	return result
}

func assistantMessage(t frame.Turn) (openai.ChatCompletionMessage, bool) {
	msg := openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleAssistant,
		Content: joinText(t.Content),
	}
	for _, c := range t.ToolCalls() {
		args := string(c.Arguments)
		if args == "" {
			args = "{}"
		}
		msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
			ID:       c.ID,
			Type:     openai.ToolTypeFunction,
			Function: openai.FunctionCall{Name: c.Name, Arguments: args},
		})
	}
	return msg, msg.Content != "" || len(msg.ToolCalls) > 0
}

func joinText(blocks []frame.ContentBlock) string {
	var parts []string
	for _, b := range blocks {
		if tb, ok := b.(frame.TextBlock); ok && tb.Text != "" {
			parts = append(parts, tb.Text)
		}
	}
	return strings.Join(parts, "\n\n")
}

// ConvertTools converts frame Tools to function tools.
// Exported for testing.
func ConvertTools(tools []frame.Tool) ([]openai.Tool, error) {
	if len(tools) == 0 {
		return nil, nil
	}
	result := make([]openai.Tool, len(tools))
	for i, t := range tools {
		if len(t.Parameters) > 0 && !json.Valid(t.Parameters) {
			return nil, fmt.Errorf("tool %s: invalid schema", t.Name)
		}
		result[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		}
	}
	return result, nil
}

func buildRequest(req frame.Request, model string) (openai.ChatCompletionRequest, error) {
	if req.Model != "" {
		model = req.Model
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}
	tools, err := ConvertTools(req.Tools)
	if err != nil {
		return openai.ChatCompletionRequest{}, err
	}
	return openai.ChatCompletionRequest{
		Model:         model,
		Messages:      ConvertTurns(req.SystemPrompt, req.Turns),
		MaxTokens:     maxTokens,
		Tools:         tools,
		Stream:        true,
		StreamOptions: &openai.StreamOptions{IncludeUsage: true},
	}, nil
}

func mapFinishReason(reason openai.FinishReason) frame.StopReason {
	switch reason {
	case openai.FinishReasonStop:
		return frame.StopEndTurn
	case openai.FinishReasonLength:
		return frame.StopLength
	case openai.FinishReasonToolCalls, openai.FinishReasonFunctionCall:
		return frame.StopToolUse
	default:
		return frame.StopUnknown
	}
}
