package frame

import "fmt"

// ValidateTurn checks that a turn's content blocks are valid for its role.
func ValidateTurn(t Turn) error {
	switch t.Role {
	case RoleHuman:
		return validateBlocks(t.Content, t.Role, allowText|allowToolResult)
	case RoleAgent:
		return validateBlocks(t.Content, t.Role, allowText|allowToolCall)
	default:
		return fmt.Errorf("unknown role %q: %w", t.Role, ErrValidation)
	}
}

// ValidateWindow checks every turn and the pairing of tool calls with
// results: each call of an agent turn must be answered exactly once by the
// human turn that immediately follows it, and no result may appear without
// a call.
func ValidateWindow(turns []Turn) error {
	var pending map[string]bool
	for i, t := range turns {
		if err := ValidateTurn(t); err != nil {
			return fmt.Errorf("turn %d: %w", i, err)
		}
		results := t.ToolResults()
		if len(pending) > 0 {
			if t.Role != RoleHuman {
				return fmt.Errorf("turn %d: %d tool calls not answered: %w", i, len(pending), ErrUnmatchedToolCall)
			}
			for _, r := range results {
				if !pending[r.ToolCallID] {
					return fmt.Errorf("turn %d: result for %q has no pending call: %w", i, r.ToolCallID, ErrUnmatchedToolCall)
				}
				delete(pending, r.ToolCallID)
			}
			if len(pending) > 0 {
				return fmt.Errorf("turn %d: %d tool calls not answered: %w", i, len(pending), ErrUnmatchedToolCall)
			}
		} else if len(results) > 0 {
			return fmt.Errorf("turn %d: result for %q has no pending call: %w", i, results[0].ToolCallID, ErrUnmatchedToolCall)
		}

		pending = nil
		for _, c := range t.ToolCalls() {
			if pending == nil {
				pending = make(map[string]bool)
			}
			if pending[c.ID] {
				return fmt.Errorf("turn %d: duplicate tool call id %q: %w", i, c.ID, ErrUnmatchedToolCall)
			}
			pending[c.ID] = true
		}
	}
	if len(pending) > 0 {
		return fmt.Errorf("%d tool calls not answered: %w", len(pending), ErrUnmatchedToolCall)
	}
	return nil
}

type blockAllow uint8

const (
	allowText blockAllow = 1 << iota
	allowToolCall
	allowToolResult
)

func validateBlocks(blocks []ContentBlock, role Role, allowed blockAllow) error {
	for _, b := range blocks {
		switch b.(type) {
		case TextBlock:
			if allowed&allowText == 0 {
				return fmt.Errorf("TextBlock not allowed in %s turn: %w", role, ErrValidation)
			}
		case ToolCallBlock:
			if allowed&allowToolCall == 0 {
				return fmt.Errorf("ToolCallBlock not allowed in %s turn: %w", role, ErrValidation)
			}
		case ToolResultBlock:
			if allowed&allowToolResult == 0 {
				return fmt.Errorf("ToolResultBlock not allowed in %s turn: %w", role, ErrValidation)
			}
		default:
			return fmt.Errorf("unknown content block type %T in %s turn: %w", b, role, ErrValidation)
		}
	}
	return nil
}
