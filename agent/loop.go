// Package agent orchestrates one human command: it drives the model through
// tool calls until a plain answer arrives, then records the exchange.
package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fwojciec/frame"
	"github.com/fwojciec/frame/fs"
	"github.com/fwojciec/frame/orientation"
	"github.com/rs/zerolog"
)

// DefaultMaxIterations bounds the number of model calls per command.
const DefaultMaxIterations = 10

// Loop runs commands against a Provider, a ToolExecutor and a Store.
type Loop struct {
	provider frame.Provider
	executor frame.ToolExecutor
	store    frame.Store

	renderer      frame.Renderer
	source        orientation.Source
	tools         []frame.Tool
	maxIterations int
	model         string
	maxTokens     int
	systemPrompt  string
	now           func() time.Time

	locks sessionLocks
}

// Option configures a Loop.
type Option func(*Loop)

// WithRenderer sets the renderer applied to the final narrative. Without one
// the narrative is returned as is.
func WithRenderer(r frame.Renderer) Option {
	return func(l *Loop) { l.renderer = r }
}

// WithOrientation sets where project snapshots come from. Without one the
// orientation message lists no files.
func WithOrientation(s orientation.Source) Option {
	return func(l *Loop) { l.source = s }
}

// WithTools overrides the tools published to the model.
func WithTools(tools []frame.Tool) Option {
	return func(l *Loop) { l.tools = tools }
}

// WithMaxIterations sets the model call cap per command.
func WithMaxIterations(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.maxIterations = n
		}
	}
}

// WithModel sets the model ID sent with every request. Empty means the
// provider default.
func WithModel(model string) Option {
	return func(l *Loop) { l.model = model }
}

// WithMaxTokens sets the per-reply token limit. Zero means the provider
// default.
func WithMaxTokens(n int) Option {
	return func(l *Loop) { l.maxTokens = n }
}

// WithSystemPrompt sets the system prompt sent with every request.
func WithSystemPrompt(prompt string) Option {
	return func(l *Loop) { l.systemPrompt = prompt }
}

// WithClock overrides the time source used for turn timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Loop) { l.now = now }
}

// New creates a Loop.
func New(provider frame.Provider, executor frame.ToolExecutor, store frame.Store, opts ...Option) *Loop {
	l := &Loop{
		provider:      provider,
		executor:      executor,
		store:         store,
		tools:         fs.Tools(),
		maxIterations: DefaultMaxIterations,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// RunOption configures a single Run invocation.
type RunOption func(*runConfig)

type runConfig struct {
	onEvent func(frame.Event)
}

// WithEventHandler sets a callback that receives each streaming event and
// tool result during the run. If nil or not set, events are discarded.
func WithEventHandler(h func(frame.Event)) RunOption {
	return func(c *runConfig) {
		c.onEvent = h
	}
}

// Run executes command in the session identified by sessionID.
//
// The command is recorded before the first model call and stays recorded
// whatever happens next. Turns produced by the loop are committed when the
// model gives a final answer or when the iteration cap is reached; on a model
// or protocol failure they are discarded. The session is trimmed and the
// store persisted after every command.
//
// On failure Run may return a non-nil Result alongside the error carrying the
// changes already applied. Hitting the cap returns a complete Result and an
// error wrapping frame.ErrMaxIterations.
func (l *Loop) Run(ctx context.Context, sessionID, command string, opts ...RunOption) (*Result, error) {
	var cfg runConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("session id is required: %w", frame.ErrValidation)
	}
	if strings.TrimSpace(command) == "" {
		return nil, fmt.Errorf("command is required: %w", frame.ErrValidation)
	}

	unlock, err := l.locks.lock(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("wait for session: %w", err)
	}
	defer unlock()

	logger := zerolog.Ctx(ctx).With().Str("session", sessionID).Logger()

	history := l.store.GetOrCreate(sessionID).Turns
	human := frame.NewTextTurn(frame.RoleHuman, command, l.now())
	l.store.Append(sessionID, human)
	defer l.finish(ctx, sessionID, &logger)

	var (
		pending   []frame.Turn
		narrative string
		changes   []string
	)
	for iteration := 1; iteration <= l.maxIterations; iteration++ {
		partial := &Result{Changes: changes, Iterations: iteration - 1}
		if err := ctx.Err(); err != nil {
			return partial, err
		}

		window, err := l.window(ctx, history, command, pending)
		if err != nil {
			return partial, err
		}

		reply, err := l.complete(ctx, window, &cfg)
		if err != nil {
			partial.Iterations = iteration
			return partial, err
		}

		turn := frame.Turn{Role: frame.RoleAgent, Content: reply.Content, Timestamp: l.now()}
		if err := frame.ValidateTurn(turn); err != nil {
			partial.Iterations = iteration
			return partial, fmt.Errorf("malformed reply: %w", err)
		}
		pending = append(pending, turn)
		if text := turn.Text(); text != "" {
			narrative = text
		}

		calls := turn.ToolCalls()
		logger.Debug().
			Int("iteration", iteration).
			Int("tool_calls", len(calls)).
			Str("stop_reason", string(reply.StopReason)).
			Int("input_tokens", reply.Usage.InputTokens).
			Int("output_tokens", reply.Usage.OutputTokens).
			Msg("model replied")

		if len(calls) == 0 {
			if reply.StopReason == frame.StopToolUse {
				logger.Warn().Int("iteration", iteration).Msg("tool_use stop without tool calls, finishing")
			}
			l.store.Append(sessionID, pending...)
			return l.finalize(&logger, narrative, changes, iteration), nil
		}

		results := make([]frame.ContentBlock, 0, len(calls))
		for _, call := range calls {
			result, change := l.execute(ctx, call, &logger)
			results = append(results, result)
			if change != "" {
				changes = append(changes, change)
			}
			if cfg.onEvent != nil {
				cfg.onEvent(frame.EventToolResult{Result: result, Change: change})
			}
		}
		pending = append(pending, frame.Turn{Role: frame.RoleHuman, Content: results, Timestamp: l.now()})
	}

	// Executed tool calls are paired with their results and their side
	// effects are real, so they are kept.
	l.store.Append(sessionID, pending...)
	logger.Warn().Int("max_iterations", l.maxIterations).Msg("iteration cap reached")
	result := l.finalize(&logger, narrative, changes, l.maxIterations)
	return result, fmt.Errorf("command stopped after %d model calls: %w", l.maxIterations, frame.ErrMaxIterations)
}

// window assembles the turns sent to the model: a fresh orientation, the
// stored history, the command, then the turns of this run so far.
func (l *Loop) window(ctx context.Context, history []frame.Turn, command string, pending []frame.Turn) ([]frame.Turn, error) {
	var snap orientation.Snapshot
	if l.source != nil {
		var err error
		snap, err = l.source.Snapshot(ctx)
		if err != nil {
			return nil, fmt.Errorf("snapshot project: %w", err)
		}
	}

	turns := make([]frame.Turn, 0, len(history)+len(pending)+2)
	if len(history) == 0 {
		turns = append(turns, orientation.Build(snap, command))
	} else {
		turns = append(turns, orientation.Build(snap, ""))
		turns = append(turns, history...)
		turns = append(turns, frame.NewTextTurn(frame.RoleHuman, command, time.Time{}))
	}
	turns = append(turns, pending...)

	if err := frame.ValidateWindow(turns); err != nil {
		return nil, fmt.Errorf("invalid window: %w", err)
	}
	return turns, nil
}

// complete performs one model call and returns the assembled reply.
func (l *Loop) complete(ctx context.Context, window []frame.Turn, cfg *runConfig) (frame.Reply, error) {
	req := frame.Request{
		Model:        l.model,
		SystemPrompt: l.systemPrompt,
		Turns:        window,
		Tools:        l.tools,
		MaxTokens:    l.maxTokens,
	}

	stream, err := l.provider.Stream(ctx, req)
	if err != nil {
		return frame.Reply{}, fmt.Errorf("model call: %w", err)
	}
	defer stream.Close()

	for {
		evt, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return frame.Reply{}, fmt.Errorf("model stream: %w", err)
		}
		if cfg.onEvent != nil {
			cfg.onEvent(evt)
		}
	}

	reply, err := stream.Message()
	if err != nil {
		return frame.Reply{}, fmt.Errorf("model reply: %w", err)
	}
	switch reply.StopReason {
	case frame.StopError, frame.StopAborted:
		return frame.Reply{}, fmt.Errorf("model reply ended with %s", reply.StopReason)
	}
	return reply, nil
}

// execute runs one tool call. Infrastructure failures become error results
// and are listed as changes.
func (l *Loop) execute(ctx context.Context, call frame.ToolCallBlock, logger *zerolog.Logger) (frame.ToolResultBlock, string) {
	result, err := l.executor.Execute(ctx, call.Name, call.Arguments)
	if err != nil {
		msg := fmt.Sprintf("Error running %s: %s", call.Name, err)
		result = &frame.ToolResult{Content: msg, IsError: true, Change: msg}
	}
	change := result.Change

	logger.Info().
		Str("tool", call.Name).
		Str("call_id", call.ID).
		Bool("is_error", result.IsError).
		Msg("tool executed")

	return frame.ToolResultBlock{
		ToolCallID: call.ID,
		ToolName:   call.Name,
		Content:    result.Content,
		IsError:    result.IsError,
	}, change
}

// finish trims the session and persists the store. Persistence failures are
// logged, never returned.
func (l *Loop) finish(ctx context.Context, sessionID string, logger *zerolog.Logger) {
	l.store.Trim(sessionID)
	if err := l.store.Persist(context.WithoutCancel(ctx)); err != nil {
		logger.Error().Err(err).Msg("persist sessions")
	}
}
