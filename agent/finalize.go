package agent

import (
	"github.com/fwojciec/frame"
	"github.com/rs/zerolog"
)

// DefaultMessage is reported when the model never produced any text.
const DefaultMessage = "Changes applied successfully"

// Result is the outcome of one command.
type Result struct {
	// Message is the rendered narrative.
	Message string
	// Text is the narrative as the model wrote it.
	Text string
	// Changes lists side effects in the order they happened.
	Changes    []string
	Iterations int
}

// Finalize renders the narrative and packages it with the change list. An
// empty narrative is replaced by DefaultMessage; a render failure falls back
// to the raw text. A nil renderer returns the text unchanged.
func Finalize(r frame.Renderer, narrative string, changes []string) (*Result, error) {
	if narrative == "" {
		narrative = DefaultMessage
	}
	if changes == nil {
		changes = []string{}
	}
	result := &Result{Message: narrative, Text: narrative, Changes: changes}
	if r == nil {
		return result, nil
	}
	rendered, err := r.Render(narrative)
	if err != nil {
		return result, err
	}
	result.Message = rendered
	return result, nil
}

func (l *Loop) finalize(logger *zerolog.Logger, narrative string, changes []string, iterations int) *Result {
	result, err := Finalize(l.renderer, narrative, changes)
	if err != nil {
		logger.Warn().Err(err).Msg("render narrative, using raw text")
	}
	result.Iterations = iterations
	return result
}
