// Package server exposes the research agent over HTTP: a single POST
// endpoint that starts runs and resumes suspended ones.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/randalmurphal/researchflow/pkg/agent"
)

// DefaultTheme is used when a start request names no theme.
const DefaultTheme = "Space debris collection business"

// AgentService is the part of the agent facade the server needs.
type AgentService interface {
	Start(ctx context.Context, theme, threadID string) (*agent.Result, error)
	Resume(ctx context.Context, decision, threadID string) (*agent.Result, error)
}

// AgentRequest is the request body for POST /agent.
type AgentRequest struct {
	// Action is "start" or "resume".
	Action string `json:"action"`
	// ThreadID continues an existing thread. Minted when absent on start.
	ThreadID string `json:"thread_id,omitempty"`
	// Theme is the research subject for start.
	Theme string `json:"theme,omitempty"`
	// Decision is the approval input for resume: y, n or retry.
	Decision string `json:"decision,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server handles the HTTP surface.
type Server struct {
	svc    AgentService
	logger *slog.Logger
}

// New creates a Server.
func New(svc AgentService, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{svc: svc, logger: logger}
}

// Handler returns the HTTP handler with routing and CORS applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/agent", s.handleAgent)
	return withCORS(mux)
}

// handleAgent dispatches start/resume requests.
func (s *Server) handleAgent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req AgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	threadID := req.ThreadID
	if threadID == "" {
		threadID = agent.NewThreadID()
	}

	s.logger.Info("agent request",
		slog.String("action", req.Action),
		slog.String("thread_id", threadID),
	)

	var (
		result *agent.Result
		err    error
	)
	switch req.Action {
	case "start":
		theme := req.Theme
		if theme == "" {
			theme = DefaultTheme
		}
		result, err = s.svc.Start(r.Context(), theme, threadID)
	case "resume":
		result, err = s.svc.Resume(r.Context(), req.Decision, threadID)
	default:
		writeError(w, http.StatusBadRequest, "action must be start or resume")
		return
	}

	if err != nil {
		if errors.Is(err, agent.ErrUnknownThread) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.logger.Error("agent request failed",
			slog.String("thread_id", threadID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "agent run failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// withCORS allows browser clients from any origin. Development posture,
// matching a UI served from a different port.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
