// Package http exposes the collaboration loop over HTTP and serves the
// project's static files.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/frame"
	"github.com/fwojciec/frame/agent"
	"github.com/rs/zerolog"
)

// DefaultAddr matches the port the collaboration page expects.
const DefaultAddr = ":3000"

// maxBodyBytes caps the size of a collaborate request body.
const maxBodyBytes = 1 << 20

// Runner executes one command in a session.
type Runner interface {
	Run(ctx context.Context, sessionID, command string, opts ...agent.RunOption) (*agent.Result, error)
}

// Interface compliance check.
var _ Runner = (*agent.Loop)(nil)

// CollaborateRequest is the body of POST /collaborate.
type CollaborateRequest struct {
	Command   string `json:"command"`
	SessionID string `json:"sessionId"`
}

// CollaborateResponse is the body returned by POST /collaborate.
type CollaborateResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Changes []string `json:"changes,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// Handler routes collaboration requests, health checks and static files.
type Handler struct {
	runner Runner
	root   string
	logger zerolog.Logger
	mux    *http.ServeMux
	next   http.Handler
}

// HandlerOption configures a [Handler].
type HandlerOption func(*Handler)

// WithLogger sets the base logger. Each request gets a child logger carrying
// a request id.
func WithLogger(logger zerolog.Logger) HandlerOption {
	return func(h *Handler) { h.logger = logger }
}

// NewHandler creates a Handler serving static files from root.
func NewHandler(runner Runner, root string, opts ...HandlerOption) *Handler {
	h := &Handler{
		runner: runner,
		root:   root,
		logger: zerolog.Nop(),
		mux:    http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.mux.HandleFunc("/collaborate", h.handleCollaborate)
	h.mux.HandleFunc("/healthz", h.handleHealth)
	h.mux.Handle("/", http.FileServer(http.Dir(root)))
	h.next = logRequests(h.logger, h.mux)
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.next.ServeHTTP(w, r)
}

func (h *Handler) handleCollaborate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, CollaborateResponse{Error: "method not allowed"})
		return
	}

	var req CollaborateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, CollaborateResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return
	}
	if strings.TrimSpace(req.Command) == "" {
		writeJSON(w, http.StatusBadRequest, CollaborateResponse{Error: "No command provided"})
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		writeJSON(w, http.StatusBadRequest, CollaborateResponse{Error: "No sessionId provided"})
		return
	}

	logger := zerolog.Ctx(r.Context())
	logger.Info().Str("session", req.SessionID).Str("command", req.Command).Msg("received command")

	result, err := h.runner.Run(r.Context(), req.SessionID, req.Command, agent.WithEventHandler(func(evt frame.Event) {
		if e, ok := evt.(frame.EventToolResult); ok {
			logger.Debug().Str("tool", e.Result.ToolName).Bool("is_error", e.Result.IsError).Msg("tool executed")
		}
	}))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, frame.ErrValidation) {
			status = http.StatusBadRequest
		}
		logger.Error().Err(err).Str("session", req.SessionID).Msg("command failed")
		resp := CollaborateResponse{Error: err.Error()}
		if result != nil {
			resp.Message = result.Message
			resp.Changes = result.Changes
		}
		writeJSON(w, status, resp)
		return
	}

	logger.Info().Str("session", req.SessionID).Strs("changes", result.Changes).Msg("applied changes")
	writeJSON(w, http.StatusOK, CollaborateResponse{
		Success: true,
		Message: result.Message,
		Changes: result.Changes,
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Server wraps an http.Server with listener management.
type Server struct {
	server *http.Server
	ln     net.Listener
}

// NewServer creates a Server for handler on addr.
func NewServer(addr string, handler http.Handler) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	return &Server{server: &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}}
}

// Open starts listening. Serve must be called to accept connections.
func (s *Server) Open() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.server.Addr, err)
	}
	s.ln = ln
	return nil
}

// Addr returns the bound address, or the configured one before Open.
func (s *Server) Addr() string {
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.server.Addr
}

// Serve accepts connections until Shutdown. It returns nil after a clean
// shutdown.
func (s *Server) Serve() error {
	if s.ln == nil {
		if err := s.Open(); err != nil {
			return err
		}
	}
	if err := s.server.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
