// Package env keeps names of environment variables with special significance
// to Rook, and loads session defaults from them and from the config file.
package env

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	xenv "github.com/xyproto/env/v2"
	"gopkg.in/yaml.v3"
)

// Environment variables with special significance to Rook.
const (
	DEBUG           = "DEBUG"
	NO_COLOR        = "NO_COLOR"
	TIMEOUT_MS      = "TIMEOUT_MS"
	MEMORY_MB       = "MEMORY_MB"
	SEED            = "SEED"
	ROOK_HISTORY_DB = "ROOK_HISTORY_DB"
	XDG_CONFIG_HOME = "XDG_CONFIG_HOME"
	XDG_DATA_HOME   = "XDG_DATA_HOME"
	HOME            = "HOME"
)

// Lookups go to the process environment every time, so that they see
// variables set after startup.
func init() { xenv.Unload() }

// Defaults used when neither the config file nor the environment say
// otherwise.
const (
	DefaultTimeout     = 5 * time.Second
	DefaultMemoryMB    = 100
	DefaultMaxDepth    = 1000
	DefaultHistorySize = 1000
	DefaultMode        = "normal"
)

// Settings are the session defaults.
type Settings struct {
	Debug   bool
	NoColor bool
	Timeout time.Duration
	// MemoryMB is the cap on tracked heap usage, in MiB.
	MemoryMB    int
	MaxDepth    int
	HistorySize int
	Mode        string
	// Seed is meaningful only when Deterministic is true.
	Seed          uint64
	Deterministic bool
	HistoryDB     string
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		Timeout:     DefaultTimeout,
		MemoryMB:    DefaultMemoryMB,
		MaxDepth:    DefaultMaxDepth,
		HistorySize: DefaultHistorySize,
		Mode:        DefaultMode,
	}
}

// fileConfig is the schema of config.yaml. Pointer fields distinguish absent
// keys from zero values.
type fileConfig struct {
	TimeoutMS   *int    `yaml:"timeout_ms"`
	MemoryMB    *int    `yaml:"memory_mb"`
	MaxDepth    *int    `yaml:"max_depth"`
	HistorySize *int    `yaml:"history_size"`
	Mode        *string `yaml:"mode"`
	Debug       *bool   `yaml:"debug"`
	Color       *bool   `yaml:"color"`
	Seed        *uint64 `yaml:"seed"`
	HistoryDB   *string `yaml:"history_db"`
}

// ConfigPath returns the default path of the config file.
func ConfigPath() (string, error) {
	if dir := xenv.Str(XDG_CONFIG_HOME); dir != "" {
		return filepath.Join(dir, "rook", "config.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "rook", "config.yaml"), nil
}

// RCPath returns the path of rc.rook, which interactive sessions evaluate on
// startup. It lives next to the config file.
func RCPath() (string, error) {
	p, err := ConfigPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(p), "rc.rook"), nil
}

// DebugEnabled reports whether DEBUG is set to a true value.
func DebugEnabled() bool { return xenv.Bool(DEBUG) }

// DataDir returns the directory for persistent data such as the history
// database.
func DataDir() (string, error) {
	if dir := xenv.Str(XDG_DATA_HOME); dir != "" {
		return filepath.Join(dir, "rook"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot get home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "rook"), nil
}

// Load builds Settings from the built-in defaults, then the config file at
// configPath (skipped if empty or missing), then the environment.
func Load(configPath string) (Settings, error) {
	s := Default()
	if configPath != "" {
		if err := applyFile(&s, configPath); err != nil {
			return s, err
		}
	}
	if err := applyEnv(&s); err != nil {
		return s, err
	}
	return s, nil
}

func applyFile(s *Settings, path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	} else if err != nil {
		return err
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if fc.TimeoutMS != nil {
		s.Timeout = time.Duration(*fc.TimeoutMS) * time.Millisecond
	}
	if fc.MemoryMB != nil {
		s.MemoryMB = *fc.MemoryMB
	}
	if fc.MaxDepth != nil {
		s.MaxDepth = *fc.MaxDepth
	}
	if fc.HistorySize != nil {
		s.HistorySize = *fc.HistorySize
	}
	if fc.Mode != nil {
		s.Mode = *fc.Mode
	}
	if fc.Debug != nil {
		s.Debug = *fc.Debug
	}
	if fc.Color != nil {
		s.NoColor = !*fc.Color
	}
	if fc.Seed != nil {
		s.Seed, s.Deterministic = *fc.Seed, true
	}
	if fc.HistoryDB != nil {
		s.HistoryDB = *fc.HistoryDB
	}
	return nil
}

func applyEnv(s *Settings) error {
	if xenv.Has(DEBUG) {
		s.Debug = xenv.Bool(DEBUG)
	}
	// NO_COLOR disables colors when present, regardless of its value.
	if xenv.Has(NO_COLOR) {
		s.NoColor = true
	}
	if xenv.Has(TIMEOUT_MS) {
		s.Timeout = time.Duration(xenv.Int(TIMEOUT_MS, int(s.Timeout/time.Millisecond))) * time.Millisecond
	}
	if xenv.Has(MEMORY_MB) {
		s.MemoryMB = xenv.Int(MEMORY_MB, s.MemoryMB)
	}
	if xenv.Has(SEED) {
		seed, err := strconv.ParseUint(xenv.Str(SEED), 10, 64)
		if err != nil {
			return fmt.Errorf("bad value for %s: %w", SEED, err)
		}
		s.Seed, s.Deterministic = seed, true
	}
	if xenv.Has(ROOK_HISTORY_DB) {
		s.HistoryDB = xenv.Str(ROOK_HISTORY_DB)
	}
	return nil
}
