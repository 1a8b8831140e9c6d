// Package memory provides the in-process session store. All sessions live in
// a map guarded by a RWMutex; an optional Backend makes them durable.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/fwojciec/frame"
	"github.com/rs/zerolog"
)

// DefaultMaxPairs is the number of exchanges kept per session by Trim.
const DefaultMaxPairs = 20

// Compile-time interface check.
var _ frame.Store = (*Store)(nil)

// Store implements frame.Store.
type Store struct {
	mu       sync.RWMutex
	sessions map[string][]frame.Turn

	// saveMu serializes backend writes so two Persist calls never interleave.
	saveMu   sync.Mutex
	backend  frame.Backend
	maxPairs int
	logger   zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithBackend makes Persist and Load go through b.
func WithBackend(b frame.Backend) Option {
	return func(s *Store) { s.backend = b }
}

// WithMaxPairs sets how many exchanges Trim keeps. Zero or less disables
// trimming.
func WithMaxPairs(n int) Option {
	return func(s *Store) { s.maxPairs = n }
}

// WithLogger sets the logger used for load failures.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		sessions: make(map[string][]frame.Turn),
		maxPairs: DefaultMaxPairs,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory map with the backend's contents. On failure the
// store is left empty and the error is logged and returned; callers may
// continue serving.
func (s *Store) Load(ctx context.Context) error {
	if s.backend == nil {
		return nil
	}
	sessions, err := s.backend.Load(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("session state unreadable, starting empty")
		s.mu.Lock()
		s.sessions = make(map[string][]frame.Turn)
		s.mu.Unlock()
		return fmt.Errorf("load sessions: %w", err)
	}
	if sessions == nil {
		sessions = make(map[string][]frame.Turn)
	}
	s.mu.Lock()
	s.sessions = sessions
	s.mu.Unlock()
	s.logger.Info().Int("sessions", len(sessions)).Msg("sessions loaded")
	return nil
}

// GetOrCreate returns a copy of the session, creating it on first use.
func (s *Store) GetOrCreate(id string) frame.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns, ok := s.sessions[id]
	if !ok {
		turns = []frame.Turn{}
		s.sessions[id] = turns
	}
	return frame.Session{ID: id, Turns: clone(turns)}
}

// Append adds turns to the end of the session, creating it if needed.
func (s *Store) Append(id string, turns ...frame.Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[id] = append(s.sessions[id], turns...)
}

// Trim keeps the most recent exchanges of the session. An exchange starts at
// a human command and runs up to the next one, so tool calls and their
// results are never separated.
func (s *Store) Trim(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns, ok := s.sessions[id]
	if !ok {
		return
	}
	s.sessions[id] = TrimExchanges(turns, s.maxPairs)
}

// Persist writes a snapshot of every session through the backend.
func (s *Store) Persist(ctx context.Context) error {
	if s.backend == nil {
		return nil
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	if err := s.backend.Save(ctx, s.snapshot()); err != nil {
		return fmt.Errorf("persist sessions: %w", err)
	}
	return nil
}

// Sessions returns the number of sessions held.
func (s *Store) Sessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Store) snapshot() map[string][]frame.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]frame.Turn, len(s.sessions))
	for id, turns := range s.sessions {
		out[id] = clone(turns)
	}
	return out
}

// TrimExchanges returns the suffix of turns holding the last keep exchanges.
// Turns are returned unchanged when keep is not positive or there are at most
// keep exchanges.
func TrimExchanges(turns []frame.Turn, keep int) []frame.Turn {
	if keep <= 0 {
		return turns
	}
	var starts []int
	for i, t := range turns {
		if t.IsCommand() {
			starts = append(starts, i)
		}
	}
	if len(starts) <= keep {
		return turns
	}
	return clone(turns[starts[len(starts)-keep]:])
}

func clone(turns []frame.Turn) []frame.Turn {
	out := make([]frame.Turn, len(turns))
	copy(out, turns)
	return out
}
