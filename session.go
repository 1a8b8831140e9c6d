package frame

import "context"

// Session is the ordered conversation history for one client-supplied id.
type Session struct {
	ID    string
	Turns []Turn
}

// Store owns all sessions. Implementations must be safe for concurrent use.
type Store interface {
	// GetOrCreate returns a copy of the session, creating it empty on first
	// use.
	GetOrCreate(id string) Session
	// Append adds turns to the end of the session in order.
	Append(id string, turns ...Turn)
	// Trim drops the oldest exchanges beyond the configured bound.
	Trim(id string)
	// Persist writes every session to durable storage.
	Persist(ctx context.Context) error
}

// Backend is durable storage for the whole session map.
type Backend interface {
	Load(ctx context.Context) (map[string][]Turn, error)
	Save(ctx context.Context, sessions map[string][]Turn) error
}
