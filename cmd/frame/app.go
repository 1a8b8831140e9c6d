package main

import (
	"context"
	"fmt"
	"io"

	"github.com/fwojciec/frame"
	"github.com/fwojciec/frame/agent"
	"github.com/fwojciec/frame/fs"
	framejson "github.com/fwojciec/frame/json"
	"github.com/fwojciec/frame/memory"
	"github.com/fwojciec/frame/orientation"
	"github.com/fwojciec/frame/sqlite"
	"github.com/rs/zerolog"
)

// app wires the store, the tools and the loop for one process.
type app struct {
	loop   *agent.Loop
	store  *memory.Store
	closer io.Closer
}

func (a *app) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// openBackend returns the configured persistence backend and, for sqlite,
// the handle to close on exit.
func openBackend(cfg config) (frame.Backend, io.Closer, error) {
	switch cfg.Store {
	case "sqlite":
		db, err := sqlite.Open(cfg.DB)
		if err != nil {
			return nil, nil, err
		}
		return db, db, nil
	default:
		return framejson.NewFile(cfg.StateFile), nil, nil
	}
}

func newApp(ctx context.Context, cfg config, provider frame.Provider, renderer frame.Renderer, logger zerolog.Logger) (*app, error) {
	backend, closer, err := openBackend(cfg)
	if err != nil {
		return nil, err
	}

	store := memory.New(
		memory.WithBackend(backend),
		memory.WithMaxPairs(cfg.MaxPairs),
		memory.WithLogger(logger),
	)
	// Unreadable state starts an empty store; Load has already logged why.
	_ = store.Load(ctx)

	dir, err := orientation.NewDir(cfg.Root, cfg.Orient...)
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, fmt.Errorf("orientation: %w", err)
	}

	loop := agent.New(provider, fs.NewExecutor(cfg.Root), store,
		agent.WithRenderer(renderer),
		agent.WithOrientation(dir),
		agent.WithModel(cfg.Model),
		agent.WithMaxTokens(cfg.MaxTokens),
		agent.WithMaxIterations(cfg.MaxIterations),
		agent.WithSystemPrompt(cfg.SystemPrompt),
	)
	logger.Info().
		Str("root", cfg.Root).
		Str("store", cfg.Store).
		Int("sessions", store.Sessions()).
		Msg("session store ready")
	return &app{loop: loop, store: store, closer: closer}, nil
}
