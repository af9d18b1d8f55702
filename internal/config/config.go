package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/scribe/internal/codec"
	"github.com/dshills/scribe/internal/config/loader"
	"github.com/dshills/scribe/internal/engine"
	"github.com/dshills/scribe/internal/logging"
)

// Config holds every scribe setting.
type Config struct {
	History  HistoryConfig  `toml:"history"`
	Document DocumentConfig `toml:"document"`
	Markdown MarkdownConfig `toml:"markdown"`
	Logging  LoggingConfig  `toml:"logging"`
	Script   ScriptConfig   `toml:"script"`
}

// HistoryConfig configures undo history.
type HistoryConfig struct {
	// Limit is the maximum number of undo entries. Zero disables history.
	Limit int `toml:"limit"`
}

// DocumentConfig configures document limits.
type DocumentConfig struct {
	// MaxLength caps the document length in characters.
	MaxLength int `toml:"maxLength"`
}

// MarkdownConfig configures Markdown export.
type MarkdownConfig struct {
	// Fallback is "drop" or "html".
	Fallback string `toml:"fallback"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// ScriptConfig configures the Lua scripting sandbox.
type ScriptConfig struct {
	// Timeout is a duration such as "5s". Empty or "0" means no limit.
	Timeout string `toml:"timeout"`
	// MaxCalls bounds document API calls per run. Zero means unlimited.
	MaxCalls int `toml:"maxCalls"`
}

// Script defaults.
const (
	DefaultScriptTimeout  = 5 * time.Second
	DefaultScriptMaxCalls = 1_000_000
)

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		History:  HistoryConfig{Limit: engine.DefaultHistoryLimit},
		Document: DocumentConfig{MaxLength: engine.DefaultMaxLength},
		Markdown: MarkdownConfig{Fallback: "drop"},
		Logging:  LoggingConfig{Level: "info"},
		Script:   ScriptConfig{Timeout: DefaultScriptTimeout.String(), MaxCalls: DefaultScriptMaxCalls},
	}
}

// DefaultPath returns the user config file path, or "" when the user
// config directory is unknown.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "scribe", "config.toml")
}

// Load resolves settings from defaults, the TOML file at path and the
// environment. A missing file is not an error; an empty path skips the
// file layer.
func Load(path string) (*Config, error) {
	return LoadFS(loader.DefaultFS(), path)
}

// LoadFS is Load over a custom file system.
func LoadFS(fsys loader.FileSystem, path string) (*Config, error) {
	var layers []loader.Loader
	if path != "" {
		layers = append(layers, loader.NewTOMLLoaderWithFS(fsys, path))
	}
	layers = append(layers, loader.NewEnvLoader())
	return load(layers...)
}

func load(layers ...loader.Loader) (*Config, error) {
	merged := make(map[string]any)
	for _, l := range layers {
		m, err := l.Load()
		if err != nil {
			return nil, err
		}
		merged = loader.DeepMerge(merged, m)
	}

	cfg := Default()
	if err := cfg.decode(merged); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode applies a settings map over cfg, rejecting unknown keys.
func (c *Config) decode(m map[string]any) error {
	if len(m) == 0 {
		return nil
	}
	data, err := toml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	err = dec.Decode(c)
	if err == nil {
		return nil
	}

	var strict *toml.StrictMissingError
	if errors.As(err, &strict) {
		errs := make([]error, 0, len(strict.Errors))
		for i := range strict.Errors {
			errs = append(errs, &ValidationError{
				Path:    strings.Join(strict.Errors[i].Key(), "."),
				Message: "unknown setting",
				Code:    ErrCodeUnknownSetting,
			})
		}
		return errors.Join(errs...)
	}

	verr := &ValidationError{Message: err.Error(), Code: ErrCodeTypeMismatch}
	var derr *toml.DecodeError
	if errors.As(err, &derr) {
		verr.Path = strings.Join(derr.Key(), ".")
	}
	return verr
}

// Validate checks every setting and returns all failures joined.
func (c *Config) Validate() error {
	var errs []error
	if c.History.Limit < 0 {
		errs = append(errs, &ValidationError{Path: "history.limit", Message: "must not be negative", Value: c.History.Limit, Code: ErrCodeOutOfRange})
	}
	if c.Document.MaxLength <= 0 {
		errs = append(errs, &ValidationError{Path: "document.maxLength", Message: "must be positive", Value: c.Document.MaxLength, Code: ErrCodeOutOfRange})
	}
	if _, err := codec.ParseFallback(c.Markdown.Fallback); err != nil {
		errs = append(errs, &ValidationError{Path: "markdown.fallback", Message: `must be "drop" or "html"`, Value: c.Markdown.Fallback, Code: ErrCodeInvalidEnum})
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, &ValidationError{Path: "logging.level", Message: "must be debug, info, warn or error", Value: c.Logging.Level, Code: ErrCodeInvalidEnum})
	}
	if d, err := c.ScriptTimeout(); err != nil || d < 0 {
		errs = append(errs, &ValidationError{Path: "script.timeout", Message: "must be a non-negative duration", Value: c.Script.Timeout, Code: ErrCodeOutOfRange})
	}
	if c.Script.MaxCalls < 0 {
		errs = append(errs, &ValidationError{Path: "script.maxCalls", Message: "must not be negative", Value: c.Script.MaxCalls, Code: ErrCodeOutOfRange})
	}
	return errors.Join(errs...)
}

// ScriptTimeout parses Script.Timeout. Empty means no limit.
func (c *Config) ScriptTimeout() (time.Duration, error) {
	if c.Script.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(c.Script.Timeout)
}

// Logger builds a logger at the configured level writing to w.
func (c *Config) Logger(w io.Writer) *logging.Logger {
	cfg := logging.DefaultConfig()
	cfg.Output = w
	if level, err := logging.ParseLevel(c.Logging.Level); err == nil {
		cfg.Level = level
	}
	return logging.New(cfg)
}

// EngineOptions returns the document options for these settings.
func (c *Config) EngineOptions(log *logging.Logger) []engine.Option {
	opts := []engine.Option{
		engine.WithHistoryLimit(c.History.Limit),
		engine.WithMaxLength(c.Document.MaxLength),
		engine.WithLogger(log),
	}
	if f, err := codec.ParseFallback(c.Markdown.Fallback); err == nil {
		opts = append(opts, engine.WithMarkdownFallback(f))
	}
	return opts
}
