// Package runner drives the dialogue loop over plain reader/writer IO, which
// keeps frontends (CLI, TUI, tests) decoupled from the decision core.
package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/cardflow"
	"github.com/aretw0/cardflow/pkg/domain"
	"github.com/aretw0/cardflow/pkg/ports"
)

// ContentRenderer transforms prompt text before it is written, e.g. markdown
// to ANSI for terminal frontends. A render failure falls back to the raw text.
type ContentRenderer func(string) (string, error)

// Runner executes the decide/read/reduce loop until the dialogue reaches a
// terminal outcome or the input stream ends.
type Runner struct {
	// Input and Output default to Stdin/Stdout.
	Input  io.Reader
	Output io.Writer

	// Renderer, when set, post-processes each prompt before writing.
	Renderer ContentRenderer

	// Store, when set together with a session ID, persists the state after
	// every turn so an interrupted dialogue can resume.
	Store ports.StateStore

	// Logger is used for debug logging. Nil means silent.
	Logger *slog.Logger
}

// NewRunner creates a Runner bound to standard IO.
func NewRunner() *Runner {
	return &Runner{
		Input:  os.Stdin,
		Output: os.Stdout,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// Run loops the engine from the given state. A nil state starts a fresh
// dialogue for userID. It returns the final state; the error is nil when the
// dialogue ended normally, including an input stream that simply closed.
func (r *Runner) Run(ctx context.Context, eng *cardflow.Engine, state *domain.State, userID string) (*domain.State, error) {
	if state == nil {
		state = eng.NewSession(userID)
	}

	in := bufio.NewReader(r.resolveInput())
	out := r.resolveOutput()

	for {
		var done bool
		state, done = eng.Decide(ctx, state)

		if err := r.writePrompt(out, state.Prompt); err != nil {
			return state, fmt.Errorf("write prompt: %w", err)
		}
		if err := r.saveState(ctx, state); err != nil {
			return state, fmt.Errorf("persist state: %w", err)
		}
		if done {
			return state, nil
		}

		fmt.Fprint(out, "> ")
		line, err := in.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				r.logger().Debug("input stream closed", "session_id", state.SessionID)
				return state, nil
			}
			return state, fmt.Errorf("read input: %w", err)
		}
		if strings.TrimSpace(line) == "/quit" {
			return state, nil
		}

		state = eng.Reduce(ctx, state, line)
		if err := r.saveState(ctx, state); err != nil {
			return state, fmt.Errorf("persist state: %w", err)
		}
	}
}

func (r *Runner) writePrompt(out io.Writer, prompt string) error {
	if prompt == "" {
		return nil
	}
	text := prompt
	if r.Renderer != nil {
		if rendered, err := r.Renderer(prompt); err == nil {
			text = rendered
		}
	}
	_, err := fmt.Fprintln(out, strings.TrimRight(text, "\n"))
	return err
}

func (r *Runner) saveState(ctx context.Context, state *domain.State) error {
	if r.Store == nil || state.SessionID == "" {
		return nil
	}
	if err := r.Store.Save(ctx, state.SessionID, state); err != nil {
		return err
	}
	r.logger().Debug("state saved", "session_id", state.SessionID, "awaiting", state.Awaiting)
	return nil
}

func (r *Runner) resolveInput() io.Reader {
	if r.Input != nil {
		return r.Input
	}
	return os.Stdin
}

func (r *Runner) resolveOutput() io.Writer {
	if r.Output != nil {
		return r.Output
	}
	return os.Stdout
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
