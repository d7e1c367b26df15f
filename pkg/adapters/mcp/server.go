// Package mcp exposes the dialogue engine as a Model Context Protocol
// server, so AI agents can drive card replacement sessions as tools.
package mcp

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/cardflow"
	"github.com/aretw0/cardflow/pkg/domain"
	"github.com/aretw0/cardflow/pkg/session"
)

// TurnResponse is the structured result of every dialogue tool.
type TurnResponse struct {
	SessionID string          `json:"session_id" jsonschema_description:"Identifier to pass back on the next reply"`
	Prompt    string          `json:"prompt" jsonschema_description:"The question to relay to the user"`
	Awaiting  domain.Awaiting `json:"awaiting" jsonschema_description:"Which answer the dialogue expects next"`
	Outcome   domain.Outcome  `json:"outcome,omitempty" jsonschema_description:"Terminal outcome, empty while in flight"`
	Done      bool            `json:"done" jsonschema_description:"True once the session has finished"`
}

// Server wraps the engine and session manager as an MCP server.
type Server struct {
	engine    *cardflow.Engine
	sessions  *session.Manager
	mcpServer *server.MCPServer
}

// NewServer creates the MCP server and registers the dialogue tools.
func NewServer(engine *cardflow.Engine, sessions *session.Manager) *Server {
	s := &Server{
		engine:    engine,
		sessions:  sessions,
		mcpServer: server.NewMCPServer("cardflow-mcp", cardflow.Version),
	}
	s.registerTools()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server over Server-Sent Events on the given port and
// shuts down when ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{Addr: addr, Handler: mux}

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	startTool := mcp.NewTool("start_replacement",
		mcp.WithDescription("Start a card replacement dialogue for a user and get the opening prompt."),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("Account identifier of the cardholder")),
		mcp.WithOutputSchema[TurnResponse](),
	)
	s.mcpServer.AddTool(startTool, mcp.NewStructuredToolHandler(s.handleStart))

	replyTool := mcp.NewTool("reply",
		mcp.WithDescription("Send the user's answer to an in-flight replacement dialogue."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session returned by start_replacement")),
		mcp.WithString("text", mcp.Required(), mcp.Description("The user's raw answer")),
		mcp.WithOutputSchema[TurnResponse](),
	)
	s.mcpServer.AddTool(replyTool, mcp.NewStructuredToolHandler(s.handleReply))

	getTool := mcp.NewTool("get_session",
		mcp.WithDescription("Inspect the current state of a replacement dialogue without advancing it."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		mcp.WithOutputSchema[TurnResponse](),
	)
	s.mcpServer.AddTool(getTool, mcp.NewStructuredToolHandler(s.handleGet))
}

type startArgs struct {
	UserID string `mapstructure:"user_id"`
}

type replyArgs struct {
	SessionID string `mapstructure:"session_id"`
	Text      string `mapstructure:"text"`
}

type getArgs struct {
	SessionID string `mapstructure:"session_id"`
}

func (s *Server) handleStart(ctx context.Context, request mcp.CallToolRequest, raw map[string]any) (TurnResponse, error) {
	var args startArgs
	if err := mapstructure.Decode(raw, &args); err != nil {
		return TurnResponse{}, fmt.Errorf("invalid arguments: %w", err)
	}
	if args.UserID == "" {
		return TurnResponse{}, fmt.Errorf("user_id is required")
	}

	state := s.engine.NewSession(args.UserID)
	var done bool
	err := s.sessions.WithLock(ctx, state.SessionID, func(ctx context.Context) error {
		state, done = s.engine.Decide(ctx, state)
		return s.sessions.Store().Save(ctx, state.SessionID, state)
	})
	if err != nil {
		return TurnResponse{}, fmt.Errorf("start session: %w", err)
	}
	return toTurn(state, done), nil
}

func (s *Server) handleReply(ctx context.Context, request mcp.CallToolRequest, raw map[string]any) (TurnResponse, error) {
	var args replyArgs
	if err := mapstructure.Decode(raw, &args); err != nil {
		return TurnResponse{}, fmt.Errorf("invalid arguments: %w", err)
	}
	if args.SessionID == "" {
		return TurnResponse{}, fmt.Errorf("session_id is required")
	}

	var (
		state *domain.State
		done  bool
	)
	err := s.sessions.WithLock(ctx, args.SessionID, func(ctx context.Context) error {
		var err error
		state, err = s.sessions.Store().Load(ctx, args.SessionID)
		if err != nil {
			return err
		}
		if state.Outcome.Terminal() {
			return fmt.Errorf("session %s already finished with outcome %s", args.SessionID, state.Outcome)
		}

		state = s.engine.Reduce(ctx, state, args.Text)
		state, done = s.engine.Decide(ctx, state)
		return s.sessions.Store().Save(ctx, args.SessionID, state)
	})
	if err != nil {
		return TurnResponse{}, err
	}
	return toTurn(state, done), nil
}

func (s *Server) handleGet(ctx context.Context, request mcp.CallToolRequest, raw map[string]any) (TurnResponse, error) {
	var args getArgs
	if err := mapstructure.Decode(raw, &args); err != nil {
		return TurnResponse{}, fmt.Errorf("invalid arguments: %w", err)
	}

	state, err := s.sessions.Load(ctx, args.SessionID)
	if err != nil {
		return TurnResponse{}, err
	}
	return toTurn(state, state.Outcome.Terminal()), nil
}

func toTurn(state *domain.State, done bool) TurnResponse {
	return TurnResponse{
		SessionID: state.SessionID,
		Prompt:    state.Prompt,
		Awaiting:  state.Awaiting,
		Outcome:   state.Outcome,
		Done:      done,
	}
}
