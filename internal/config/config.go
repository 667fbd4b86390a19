// Package config loads process configuration from the environment and the
// tuning profile from TOML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the process configuration.
type Config struct {
	Addr     string `env:"NOELVORTEX_ADDR" envDefault:":8080"`
	DataDir  string `env:"NOELVORTEX_DATA_DIR" envDefault:"~/.noelvortex"`
	WebDir   string `env:"NOELVORTEX_WEB_DIR"`
	PhotoDir string `env:"NOELVORTEX_PHOTO_DIR"`

	CameraID     int `env:"NOELVORTEX_CAMERA_ID" envDefault:"0"`
	CameraWidth  int `env:"NOELVORTEX_CAMERA_WIDTH" envDefault:"320"`
	CameraHeight int `env:"NOELVORTEX_CAMERA_HEIGHT" envDefault:"240"`
	CameraFPS    int `env:"NOELVORTEX_CAMERA_FPS" envDefault:"30"`

	MaxHands      int    `env:"NOELVORTEX_MAX_HANDS" envDefault:"2"`
	GestureScript string `env:"NOELVORTEX_GESTURE_SCRIPT"`

	HookDir     string        `env:"NOELVORTEX_HOOK_DIR"`
	HookTimeout time.Duration `env:"NOELVORTEX_HOOK_TIMEOUT" envDefault:"5s"`

	TuningFile string `env:"NOELVORTEX_TUNING_FILE"`
	Tray       bool   `env:"NOELVORTEX_TRAY" envDefault:"false"`
	LogLevel   string `env:"NOELVORTEX_LOG_LEVEL" envDefault:"info"`
}

// Load reads the optional .env files, then the environment. Missing .env
// files are not an error.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				slog.Debug("No .env file", "path", f)
				continue
			}
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
		slog.Debug("Loaded .env file", "path", f)
	}

	cfg := &Config{}
	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}
	cfg.DataDir = ExpandHome(cfg.DataDir)
	if cfg.PhotoDir == "" {
		cfg.PhotoDir = filepath.Join(cfg.DataDir, "photos")
	}
	cfg.PhotoDir = ExpandHome(cfg.PhotoDir)
	if cfg.HookDir == "" {
		cfg.HookDir = filepath.Join(cfg.DataDir, "hooks")
	}
	cfg.HookDir = ExpandHome(cfg.HookDir)
	cfg.TuningFile = ExpandHome(cfg.TuningFile)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.CameraWidth <= 0 || c.CameraHeight <= 0 {
		return fmt.Errorf("invalid camera size %dx%d", c.CameraWidth, c.CameraHeight)
	}
	if c.CameraFPS <= 0 {
		return fmt.Errorf("invalid camera fps %d", c.CameraFPS)
	}
	if c.MaxHands < 1 || c.MaxHands > 2 {
		return fmt.Errorf("max hands must be 1 or 2, got %d", c.MaxHands)
	}
	if c.HookTimeout < 0 {
		return fmt.Errorf("invalid hook timeout %s", c.HookTimeout)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// DBPath returns the SQLite database location.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "noelvortex.db")
}

// ParseLevel maps a level name to slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
