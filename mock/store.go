package mock

import (
	"context"

	"github.com/fwojciec/frame"
)

// Interface compliance checks.
var (
	_ frame.Store   = (*Store)(nil)
	_ frame.Backend = (*Backend)(nil)
)

// Store is a test double for frame.Store.
type Store struct {
	GetOrCreateFn func(id string) frame.Session
	AppendFn      func(id string, turns ...frame.Turn)
	TrimFn        func(id string)
	PersistFn     func(ctx context.Context) error
}

// GetOrCreate delegates to GetOrCreateFn.
func (s *Store) GetOrCreate(id string) frame.Session {
	return s.GetOrCreateFn(id)
}

// Append delegates to AppendFn.
func (s *Store) Append(id string, turns ...frame.Turn) {
	s.AppendFn(id, turns...)
}

// Trim delegates to TrimFn.
func (s *Store) Trim(id string) {
	s.TrimFn(id)
}

// Persist delegates to PersistFn.
func (s *Store) Persist(ctx context.Context) error {
	return s.PersistFn(ctx)
}

// Backend is a test double for frame.Backend.
type Backend struct {
	LoadFn func(ctx context.Context) (map[string][]frame.Turn, error)
	SaveFn func(ctx context.Context, sessions map[string][]frame.Turn) error
}

// Load delegates to LoadFn.
func (b *Backend) Load(ctx context.Context) (map[string][]frame.Turn, error) {
	return b.LoadFn(ctx)
}

// Save delegates to SaveFn.
func (b *Backend) Save(ctx context.Context, sessions map[string][]frame.Turn) error {
	return b.SaveFn(ctx, sessions)
}
