// Package json encodes conversation turns and provides a JSON file backend
// for the session store.
package json

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fwojciec/frame"
)

// turnDTO is the JSON representation of a Turn.
type turnDTO struct {
	Role      string         `json:"role"`
	Content   []contentBlock `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
}

// contentBlock is the JSON representation of a ContentBlock with a type discriminator.
type contentBlock struct {
	Type       string           `json:"type"`
	Text       *string          `json:"text,omitempty"`
	ID         *string          `json:"id,omitempty"`
	Name       *string          `json:"name,omitempty"`
	Arguments  *json.RawMessage `json:"arguments,omitempty"`
	ToolCallID *string          `json:"tool_call_id,omitempty"`
	Content    *string          `json:"content,omitempty"`
	IsError    *bool            `json:"is_error,omitempty"`
}

// MarshalSessions serializes the whole session map as {sessionId: [turn...]}.
func MarshalSessions(sessions map[string][]frame.Turn) ([]byte, error) {
	out := make(map[string][]turnDTO, len(sessions))
	for id, turns := range sessions {
		dtos := make([]turnDTO, len(turns))
		for i, t := range turns {
			dto, err := marshalTurn(t)
			if err != nil {
				return nil, fmt.Errorf("session %q turn %d: %w", id, i, err)
			}
			dtos[i] = dto
		}
		out[id] = dtos
	}
	return json.Marshal(out)
}

// UnmarshalSessions deserializes a session map produced by MarshalSessions.
func UnmarshalSessions(data []byte) (map[string][]frame.Turn, error) {
	var in map[string][]turnDTO
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("unmarshal sessions: %w", err)
	}
	sessions := make(map[string][]frame.Turn, len(in))
	for id, dtos := range in {
		turns := make([]frame.Turn, len(dtos))
		for i, dto := range dtos {
			t, err := unmarshalTurn(dto)
			if err != nil {
				return nil, fmt.Errorf("session %q turn %d: %w", id, i, err)
			}
			turns[i] = t
		}
		sessions[id] = turns
	}
	return sessions, nil
}

// MarshalTurn serializes a single Turn.
func MarshalTurn(t frame.Turn) ([]byte, error) {
	dto, err := marshalTurn(t)
	if err != nil {
		return nil, err
	}
	return json.Marshal(dto)
}

// UnmarshalTurn deserializes a single Turn produced by MarshalTurn.
func UnmarshalTurn(data []byte) (frame.Turn, error) {
	var dto turnDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return frame.Turn{}, fmt.Errorf("unmarshal turn: %w", err)
	}
	return unmarshalTurn(dto)
}

func marshalTurn(t frame.Turn) (turnDTO, error) {
	switch t.Role {
	case frame.RoleHuman, frame.RoleAgent:
	default:
		return turnDTO{}, fmt.Errorf("unknown role: %q", t.Role)
	}
	blocks, err := marshalContentBlocks(t.Content)
	if err != nil {
		return turnDTO{}, err
	}
	return turnDTO{Role: string(t.Role), Content: blocks, Timestamp: t.Timestamp}, nil
}

func unmarshalTurn(dto turnDTO) (frame.Turn, error) {
	role := frame.Role(dto.Role)
	switch role {
	case frame.RoleHuman, frame.RoleAgent:
	default:
		return frame.Turn{}, fmt.Errorf("unknown role: %q", dto.Role)
	}
	blocks, err := unmarshalContentBlocks(dto.Content)
	if err != nil {
		return frame.Turn{}, err
	}
	return frame.Turn{Role: role, Content: blocks, Timestamp: dto.Timestamp}, nil
}

func marshalContentBlocks(blocks []frame.ContentBlock) ([]contentBlock, error) {
	result := make([]contentBlock, len(blocks))
	for i, b := range blocks {
		cb, err := marshalContentBlock(b)
		if err != nil {
			return nil, fmt.Errorf("content block %d: %w", i, err)
		}
		result[i] = cb
	}
	return result, nil
}

func marshalContentBlock(b frame.ContentBlock) (contentBlock, error) {
	switch v := b.(type) {
	case frame.TextBlock:
		return contentBlock{Type: "text", Text: &v.Text}, nil
	case frame.ToolCallBlock:
		args := v.Arguments
		if len(args) == 0 {
			args = json.RawMessage("{}")
		}
		return contentBlock{Type: "tool_call", ID: &v.ID, Name: &v.Name, Arguments: &args}, nil
	case frame.ToolResultBlock:
		return contentBlock{
			Type:       "tool_result",
			ToolCallID: &v.ToolCallID,
			Name:       &v.ToolName,
			Content:    &v.Content,
			IsError:    &v.IsError,
		}, nil
	default:
		return contentBlock{}, fmt.Errorf("unknown content block type: %T", b)
	}
}

func unmarshalContentBlocks(dtos []contentBlock) ([]frame.ContentBlock, error) {
	result := make([]frame.ContentBlock, len(dtos))
	for i, dto := range dtos {
		b, err := unmarshalContentBlock(dto)
		if err != nil {
			return nil, fmt.Errorf("content block %d: %w", i, err)
		}
		result[i] = b
	}
	return result, nil
}

func unmarshalContentBlock(dto contentBlock) (frame.ContentBlock, error) {
	switch dto.Type {
	case "text":
		return frame.TextBlock{Text: deref(dto.Text)}, nil
	case "tool_call":
		var args json.RawMessage
		if dto.Arguments != nil {
			args = *dto.Arguments
		}
		return frame.ToolCallBlock{ID: deref(dto.ID), Name: deref(dto.Name), Arguments: args}, nil
	case "tool_result":
		var isError bool
		if dto.IsError != nil {
			isError = *dto.IsError
		}
		return frame.ToolResultBlock{
			ToolCallID: deref(dto.ToolCallID),
			ToolName:   deref(dto.Name),
			Content:    deref(dto.Content),
			IsError:    isError,
		}, nil
	default:
		return nil, fmt.Errorf("unknown content block type: %q", dto.Type)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
