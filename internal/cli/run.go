package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/cardflow/internal/config"
	"github.com/aretw0/cardflow/internal/presentation/tui"
	"github.com/aretw0/cardflow/pkg/domain"
	"github.com/aretw0/cardflow/pkg/runner"
)

// RunOptions carries the flags of the run command.
type RunOptions struct {
	ConfigPath string
	UserID     string
	SessionID  string
	Headless   bool
	Debug      bool
}

// RunSession executes one interactive replacement dialogue on the terminal.
func RunSession(opts RunOptions) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	logger := NewLogger(cfg, opts.Debug)

	interactive := tui.Interactive() && !opts.Headless
	if interactive {
		tui.PrintBanner()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	directory, closeDir, err := NewDirectory(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDir()

	manager, closeStore, err := NewSessionManager(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	engine, err := NewEngine(directory, logger)
	if err != nil {
		return err
	}

	var state *domain.State
	if opts.SessionID != "" {
		state, err = manager.LoadOrStart(ctx, opts.SessionID, opts.UserID)
		if err != nil {
			return fmt.Errorf("resume session: %w", err)
		}
		logger.Info("session active", "session_id", opts.SessionID, "user_id", state.UserID)
	}

	r := runner.NewRunner()
	r.Logger = logger
	r.Store = manager.Store()
	if interactive {
		r.Renderer = tui.NewRenderer()
	}

	final, err := r.Run(ctx, engine, state, opts.UserID)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("dialogue interrupted", "session_id", finalSessionID(final))
			return nil
		}
		return err
	}

	logger.Info("dialogue finished",
		"session_id", finalSessionID(final),
		"outcome", final.Outcome,
	)
	return nil
}

func finalSessionID(state *domain.State) string {
	if state == nil {
		return ""
	}
	return state.SessionID
}
