// Package config loads runtime configuration for the cardflow binaries.
// Values come from an optional YAML file, overridden by CARDFLOW_* environment
// variables (double underscore maps to nesting, e.g. CARDFLOW_SERVER__PORT).
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "CARDFLOW_"

// Config is the root configuration for the server and CLI.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Directory DirectoryConfig `koanf:"directory"`
	Sessions  SessionsConfig  `koanf:"sessions"`
	Log       LogConfig       `koanf:"log"`
}

type ServerConfig struct {
	Port int `koanf:"port"`
}

// DirectoryConfig selects and configures the account directory backend.
type DirectoryConfig struct {
	Backend string       `koanf:"backend"` // memory, sqlite
	Seed    string       `koanf:"seed"`    // optional YAML accounts fixture
	SQLite  SQLiteConfig `koanf:"sqlite"`
}

type SQLiteConfig struct {
	Path string `koanf:"path"`
}

// SessionsConfig selects and configures session persistence.
type SessionsConfig struct {
	Backend string      `koanf:"backend"` // memory, redis
	Redis   RedisConfig `koanf:"redis"`
}

type RedisConfig struct {
	Addr     string        `koanf:"addr"`
	Password string        `koanf:"password"`
	DB       int           `koanf:"db"`
	TTL      time.Duration `koanf:"ttl"`
}

type LogConfig struct {
	Level string `koanf:"level"` // debug, info, warn, error
}

// Load reads configuration from path (skipped when empty or missing) and the
// environment, falling back to defaults for anything unset.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("load config file %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	setDefaults(k)

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(k *koanf.Koanf) {
	defaults := map[string]any{
		"server.port":           8080,
		"directory.backend":     "memory",
		"directory.sqlite.path": "cardflow.db",
		"sessions.backend":      "memory",
		"sessions.redis.addr":   "localhost:6379",
		"sessions.redis.ttl":    "24h",
		"log.level":             "info",
	}
	for key, value := range defaults {
		if !k.Exists(key) {
			k.Set(key, value)
		}
	}
}

func (c *Config) validate() error {
	switch c.Directory.Backend {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("unknown directory backend %q (expected memory or sqlite)", c.Directory.Backend)
	}
	switch c.Sessions.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown sessions backend %q (expected memory or redis)", c.Sessions.Backend)
	}
	return nil
}
