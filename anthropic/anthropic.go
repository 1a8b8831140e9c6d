// Package anthropic implements [frame.Provider] for the Anthropic Messages
// API using the official SDK. Replies are streamed and assembled block by
// block behind the pull-based [frame.Stream] interface.
package anthropic

import (
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/fwojciec/frame"
)

const (
	defaultModel     = "claude-sonnet-4-20250514"
	defaultMaxTokens = 4000
)

// buildParams converts a request into SDK parameters.
func buildParams(req frame.Request) (anthropic.MessageNewParams, error) {
	model := req.Model
	if model == "" {
		model = defaultModel
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	tools, err := convertTools(req.Tools)
	if err != nil {
		return anthropic.MessageNewParams{}, err
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages:  convertTurns(req.Turns),
		Tools:     tools,
	}
	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemPrompt}}
	}
	return params, nil
}

// convertTurns maps turns to API messages. Consecutive turns with the same
// role are merged because the API requires alternating roles; empty text
// blocks are dropped because the API rejects them.
func convertTurns(turns []frame.Turn) []anthropic.MessageParam {
	var result []anthropic.MessageParam
	for _, t := range turns {
		blocks := convertBlocks(t.Content)
		if len(blocks) == 0 {
			continue
		}
		role := anthropic.MessageParamRoleUser
		if t.Role == frame.RoleAgent {
			role = anthropic.MessageParamRoleAssistant
		}
		if n := len(result); n > 0 && result[n-1].Role == role {
			result[n-1].Content = append(result[n-1].Content, blocks...)
			continue
		}
		result = append(result, anthropic.MessageParam{Role: role, Content: blocks})
	}
	return result
}

func convertBlocks(blocks []frame.ContentBlock) []anthropic.ContentBlockParamUnion {
	result := make([]anthropic.ContentBlockParamUnion, 0, len(blocks))
	for _, b := range blocks {
		switch bl := b.(type) {
		case frame.TextBlock:
			if bl.Text == "" {
				continue
			}
			result = append(result, anthropic.NewTextBlock(bl.Text))
		case frame.ToolCallBlock:
			input := bl.Arguments
			if len(input) == 0 {
				input = json.RawMessage("{}")
			}
			result = append(result, anthropic.ContentBlockParamUnion{
				OfToolUse: &anthropic.ToolUseBlockParam{
					ID:    bl.ID,
					Name:  bl.Name,
					Input: input,
				},
			})
		case frame.ToolResultBlock:
			result = append(result, anthropic.NewToolResultBlock(bl.ToolCallID, bl.Content, bl.IsError))
		}
	}
	return result
}

// toolSchema is the subset of a JSON schema the API takes apart.
type toolSchema struct {
	Properties map[string]any `json:"properties"`
	Required   []string       `json:"required"`
}

func convertTools(tools []frame.Tool) ([]anthropic.ToolUnionParam, error) {
	if len(tools) == 0 {
		return nil, nil
	}
	result := make([]anthropic.ToolUnionParam, len(tools))
	for i, t := range tools {
		var schema toolSchema
		if len(t.Parameters) > 0 {
			if err := json.Unmarshal(t.Parameters, &schema); err != nil {
				return nil, fmt.Errorf("tool %s: invalid schema: %w", t.Name, err)
			}
		}
		if schema.Properties == nil {
			schema.Properties = map[string]any{}
		}
		result[i] = anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
			Name:        t.Name,
			Description: anthropic.String(t.Description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: schema.Properties,
				Required:   schema.Required,
			},
		}}
	}
	return result, nil
}

func mapStopReason(raw string) frame.StopReason {
	switch raw {
	case "end_turn", "stop_sequence":
		return frame.StopEndTurn
	case "max_tokens":
		return frame.StopLength
	case "tool_use":
		return frame.StopToolUse
	default:
		return frame.StopUnknown
	}
}
