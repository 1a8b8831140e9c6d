// Package gemini implements [frame.Provider] for the Google Gemini API.
//
// It wraps the google.golang.org/genai SDK, translating between frame's
// domain types and the Gemini API types. Streaming uses the SDK's iter.Seq2
// iterator, wrapped into the pull-based [frame.Stream] interface.
package gemini

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/frame"
	"google.golang.org/genai"
)

const (
	defaultModel     = "gemini-2.5-flash"
	defaultMaxTokens = 4000
)

// ConvertTurns converts frame Turns to genai Contents. Consecutive turns
// with the same role share one Content.
// Exported for testing.
func ConvertTurns(turns []frame.Turn) []*genai.Content {
	var result []*genai.Content
	for _, t := range turns {
		parts := convertParts(t.Content)
		if len(parts) == 0 {
			continue
		}
		role := "user"
		if t.Role == frame.RoleAgent {
			role = "model"
		}
		if n := len(result); n > 0 && result[n-1].Role == role {
			result[n-1].Parts = append(result[n-1].Parts, parts...)
			continue
		}
		result = append(result, &genai.Content{Role: role, Parts: parts})
	}
	return result
}

func convertParts(blocks []frame.ContentBlock) []*genai.Part {
	var parts []*genai.Part
	for _, b := range blocks {
		switch bl := b.(type) {
		case frame.TextBlock:
			if bl.Text == "" {
				continue
			}
			parts = append(parts, &genai.Part{Text: bl.Text})
		case frame.ToolCallBlock:
			// Arguments are validated JSON by the time they reach history.
			var args map[string]any
			_ = json.Unmarshal(bl.Arguments, &args)
			parts = append(parts, &genai.Part{
				FunctionCall: &genai.FunctionCall{ID: bl.ID, Name: bl.Name, Args: args},
			})
		case frame.ToolResultBlock:
			key := "output"
			if bl.IsError {
				key = "error"
			}
			parts = append(parts, &genai.Part{
				FunctionResponse: &genai.FunctionResponse{
					ID:       bl.ToolCallID,
					Name:     bl.ToolName,
					Response: map[string]any{key: bl.Content},
				},
			})
		}
	}
	return parts
}

// ConvertTools converts frame Tools to genai Tools.
// Exported for testing.
func ConvertTools(tools []frame.Tool) ([]*genai.Tool, error) {
	if len(tools) == 0 {
		return nil, nil
	}
	decls := make([]*genai.FunctionDeclaration, len(tools))
	for i, t := range tools {
		var schema map[string]any
		if len(t.Parameters) > 0 {
			if err := json.Unmarshal(t.Parameters, &schema); err != nil {
				return nil, fmt.Errorf("tool %s: invalid schema: %w", t.Name, err)
			}
		}
		decls[i] = &genai.FunctionDeclaration{
			Name:                 t.Name,
			Description:          t.Description,
			ParametersJsonSchema: schema,
		}
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}, nil
}

func buildConfig(req frame.Request) (*genai.GenerateContentConfig, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}
	tools, err := ConvertTools(req.Tools)
	if err != nil {
		return nil, err
	}
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
		Tools:           tools,
	}
	if req.SystemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemPrompt}},
		}
	}
	return config, nil
}

func mapFinishReason(reason genai.FinishReason) frame.StopReason {
	switch reason {
	case genai.FinishReasonStop:
		return frame.StopEndTurn
	case genai.FinishReasonMaxTokens:
		return frame.StopLength
	default:
		return frame.StopUnknown
	}
}
