package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/multierr"
)

// Identity store kinds.
const (
	StoreFile     = "file"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	WSURL      string `env:"WS_URL" envDefault:"ws://localhost:8080/ws"`
	APIURL     string `env:"API_URL" envDefault:"http://localhost:8080"`
	Room       string `env:"ROOM" envDefault:"007"`
	PlayerID   string `env:"PLAYER_ID"`
	PlayerName string `env:"PLAYER_NAME"`

	Heartbeat     time.Duration `env:"HEARTBEAT" envDefault:"25s"`
	ReconnectBase time.Duration `env:"RECONNECT_BASE" envDefault:"1s"`
	ReconnectMax  time.Duration `env:"RECONNECT_MAX" envDefault:"8s"`
	HopDelay      time.Duration `env:"HOP_DELAY" envDefault:"80ms"`
	WriteTimeout  time.Duration `env:"WRITE_TIMEOUT" envDefault:"3s"`
	HTTPTimeout   time.Duration `env:"HTTP_TIMEOUT" envDefault:"8s"`
	MaxPlayers    int           `env:"MAX_PLAYERS" envDefault:"10"`

	DebugAddr string `env:"DEBUG_ADDR" envDefault:"127.0.0.1:8090"`

	IdentityStore string `env:"IDENTITY_STORE" envDefault:"file"`
	IdentityFile  string `env:"IDENTITY_FILE"`
	IdentityDSN   string `env:"IDENTITY_DSN"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

const Prefix = "MONOPOLY_"

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: Prefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads optional dotenv files, then the environment. Variables already
// set in the process win over dotenv values.
func Load(files ...string) (Config, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var err error
	if c.WSURL == "" {
		err = multierr.Append(err, errors.New("ws url is required"))
	}
	if c.Room == "" {
		err = multierr.Append(err, errors.New("room is required"))
	}
	if c.ReconnectBase <= 0 || c.ReconnectMax < c.ReconnectBase {
		err = multierr.Append(err, fmt.Errorf("reconnect window %s..%s is invalid", c.ReconnectBase, c.ReconnectMax))
	}
	if c.Heartbeat <= 0 {
		err = multierr.Append(err, errors.New("heartbeat must be positive"))
	}
	if c.MaxPlayers <= 0 {
		err = multierr.Append(err, errors.New("max players must be positive"))
	}
	switch c.IdentityStore {
	case StoreFile, StoreMemory:
	case StorePostgres:
		if c.IdentityDSN == "" {
			err = multierr.Append(err, errors.New("postgres identity store needs a dsn"))
		}
	default:
		err = multierr.Append(err, fmt.Errorf("unknown identity store %q", c.IdentityStore))
	}
	return err
}

// IdentityPath is where the file store keeps the identity.
func (c Config) IdentityPath() string {
	if c.IdentityFile != "" {
		return c.IdentityFile
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "monopoly-client", "identity.json")
}
