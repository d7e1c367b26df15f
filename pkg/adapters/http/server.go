// Package http exposes the dialogue engine over a JSON API. Each session
// lives server-side; clients post raw utterances and receive the next prompt.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/cardflow"
	"github.com/aretw0/cardflow/internal/logging"
	"github.com/aretw0/cardflow/pkg/domain"
	"github.com/aretw0/cardflow/pkg/session"

	_ "embed"
)

//go:embed openapi.yaml
var openAPISpec []byte

// Server wires the engine and session manager into HTTP handlers.
type Server struct {
	engine   *cardflow.Engine
	sessions *session.Manager
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler builds the HTTP handler for the given engine and sessions.
func NewHandler(engine *cardflow.Engine, sessions *session.Manager, opts ...Option) http.Handler {
	s := &Server{
		engine:   engine,
		sessions: sessions,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()

	r.Get("/healthz", s.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(openAPISpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.createSession)
		r.Get("/", s.listSessions)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Delete("/", s.deleteSession)
			r.Post("/input", s.postInput)
		})
	})

	return r
}

// sessionResponse is the wire view of a dialogue turn.
type sessionResponse struct {
	SessionID  string           `json:"session_id"`
	UserID     string           `json:"user_id"`
	Prompt     string           `json:"prompt"`
	Awaiting   domain.Awaiting  `json:"awaiting"`
	Outcome    domain.Outcome   `json:"outcome,omitempty"`
	Done       bool             `json:"done"`
	Transcript []domain.Message `json:"transcript,omitempty"`
}

type createSessionRequest struct {
	UserID string `json:"user_id"`
}

type inputRequest struct {
	Text string `json:"text"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": cardflow.Version})
}

// createSession starts a dialogue for a user and runs the first decision, so
// the response already carries the opening prompt.
func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var body createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	state := s.engine.NewSession(body.UserID)
	var done bool
	err := s.sessions.WithLock(r.Context(), state.SessionID, func(ctx context.Context) error {
		state, done = s.engine.Decide(ctx, state)
		return s.sessions.Store().Save(ctx, state.SessionID, state)
	})
	if err != nil {
		s.logger.Error("failed to create session", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	s.logger.Info("session created", "session_id", state.SessionID, "user_id", body.UserID)
	writeJSON(w, http.StatusCreated, toResponse(state, done))
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.sessions.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	state, err := s.sessions.Load(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	writeJSON(w, http.StatusOK, toResponse(state, state.Outcome.Terminal()))
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if err := s.sessions.Delete(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// postInput folds one utterance into the session and advances the dialogue.
// The reduce and decide run under the session lock as a single turn.
func (s *Server) postInput(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")

	var body inputRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var (
		state *domain.State
		done  bool
	)
	err := s.sessions.WithLock(r.Context(), id, func(ctx context.Context) error {
		var err error
		state, err = s.sessions.Store().Load(ctx, id)
		if err != nil {
			return err
		}
		if state.Outcome.Terminal() {
			return errSessionFinished
		}

		state = s.engine.Reduce(ctx, state, body.Text)
		state, done = s.engine.Decide(ctx, state)
		return s.sessions.Store().Save(ctx, id, state)
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSessionNotFound):
			writeError(w, http.StatusNotFound, "session not found")
		case errors.Is(err, errSessionFinished):
			writeError(w, http.StatusConflict, "session already finished")
		default:
			s.logger.Error("failed to process input", "session_id", id, "err", err)
			writeError(w, http.StatusInternalServerError, "failed to process input")
		}
		return
	}

	writeJSON(w, http.StatusOK, toResponse(state, done))
}

var errSessionFinished = errors.New("session already finished")

func toResponse(state *domain.State, done bool) sessionResponse {
	return sessionResponse{
		SessionID:  state.SessionID,
		UserID:     state.UserID,
		Prompt:     state.Prompt,
		Awaiting:   state.Awaiting,
		Outcome:    state.Outcome,
		Done:       done,
		Transcript: state.Transcript,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Cardflow API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`
