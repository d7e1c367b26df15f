// Package cli wires configuration into engines, stores, and runners for the
// cardflow commands.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/cardflow"
	"github.com/aretw0/cardflow/internal/config"
	"github.com/aretw0/cardflow/internal/logging"
	"github.com/aretw0/cardflow/pkg/adapters/memory"
	redisadapter "github.com/aretw0/cardflow/pkg/adapters/redis"
	"github.com/aretw0/cardflow/pkg/adapters/sqlite"
	"github.com/aretw0/cardflow/pkg/ports"
	"github.com/aretw0/cardflow/pkg/session"
)

// noopClose is returned for backends without resources to release.
func noopClose() error { return nil }

// NewLogger builds the application logger for the configured level. Logs go
// to stderr so they never interleave with dialogue output on stdout.
func NewLogger(cfg *config.Config, debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	switch cfg.Log.Level {
	case "debug":
		return logging.New(slog.LevelDebug)
	case "warn":
		return logging.New(slog.LevelWarn)
	case "error":
		return logging.New(slog.LevelError)
	default:
		return logging.New(slog.LevelInfo)
	}
}

// NewDirectory builds the configured account directory backend. The returned
// close function releases backend resources.
func NewDirectory(ctx context.Context, cfg *config.Config) (ports.Directory, func() error, error) {
	switch cfg.Directory.Backend {
	case "sqlite":
		dir, err := sqlite.Open(cfg.Directory.SQLite.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite directory: %w", err)
		}
		if cfg.Directory.Seed != "" {
			if err := dir.SeedFromFile(ctx, cfg.Directory.Seed); err != nil {
				_ = dir.Close()
				return nil, nil, fmt.Errorf("seed sqlite directory: %w", err)
			}
		}
		return dir, dir.Close, nil

	default: // memory
		if cfg.Directory.Seed != "" {
			dir, err := memory.NewDirectoryFromFile(cfg.Directory.Seed)
			if err != nil {
				return nil, nil, fmt.Errorf("seed memory directory: %w", err)
			}
			return dir, noopClose, nil
		}
		return memory.NewDirectory(), noopClose, nil
	}
}

// NewSessionManager builds session persistence for the configured backend.
// Redis deployments also get a distributed locker on the same connection.
func NewSessionManager(cfg *config.Config, logger *slog.Logger) (*session.Manager, func() error, error) {
	switch cfg.Sessions.Backend {
	case "redis":
		store := redisadapter.New(
			cfg.Sessions.Redis.Addr,
			cfg.Sessions.Redis.Password,
			cfg.Sessions.Redis.DB,
			redisadapter.WithTTL(cfg.Sessions.Redis.TTL),
		)
		locker := redisadapter.NewLocker(store.Client(), "")
		manager := session.NewManager(store,
			session.WithLocker(locker),
			session.WithLogger(logger),
		)
		return manager, store.Close, nil

	default: // memory
		manager := session.NewManager(memory.NewStore(), session.WithLogger(logger))
		return manager, noopClose, nil
	}
}

// NewEngine builds the dialogue engine over the configured directory.
func NewEngine(directory ports.Directory, logger *slog.Logger, opts ...cardflow.Option) (*cardflow.Engine, error) {
	opts = append([]cardflow.Option{cardflow.WithLogger(logger)}, opts...)
	return cardflow.New(directory, opts...)
}
