// Package config reads and writes pushdate.toml.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

// FileName is the default config file name.
const FileName = "pushdate.toml"

var ErrUnknownKey = errors.New("unknown config key")

// Config holds the settings shared by every pushdate command.
type Config struct {
	// Store is the commit object store directory.
	Store string `toml:"store" validate:"required"`
	// PushLog is the SQLite push log path.
	PushLog string `toml:"pushlog" validate:"required"`
	// Repository keys push events in the push log.
	Repository  string `toml:"repository,omitempty"`
	Format      string `toml:"format" validate:"oneof=text json yaml"`
	LogLevel    string `toml:"log_level" validate:"oneof=debug info warn error"`
	Concurrency int    `toml:"concurrency" validate:"min=1,max=64"`
	// Deadline, when set, restricts reports to the history pushed by then.
	Deadline string `toml:"deadline,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	// Timezone is used to print times in text reports.
	Timezone string `toml:"timezone,omitempty" validate:"omitempty,timezone"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Store:       filepath.Join(".pushdate", "objects"),
		PushLog:     filepath.Join(".pushdate", "pushlog.db"),
		Format:      "text",
		LogLevel:    "info",
		Concurrency: 4,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s fails %q (got %v)", fe.Field(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Read reads the config at path on top of Default. A missing file returns
// the defaults. Relative store and push log paths are resolved against the
// directory of path.
func Read(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.resolve(filepath.Dir(path))
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("read config: decode %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("read config: %s: %w: %s", path, ErrUnknownKey, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("read config: %s: %w", path, err)
	}
	cfg.resolve(filepath.Dir(path))
	return cfg, nil
}

func (c *Config) resolve(dir string) {
	if !filepath.IsAbs(c.Store) {
		c.Store = filepath.Join(dir, c.Store)
	}
	if !filepath.IsAbs(c.PushLog) {
		c.PushLog = filepath.Join(dir, c.PushLog)
	}
}

// Write validates cfg and writes it to path atomically.
func Write(path string, cfg *Config) error {
	if cfg == nil {
		cfg = Default()
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("write config: encode: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".config-tmp-*")
	if err != nil {
		return fmt.Errorf("write config: tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write config: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write config: close: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write config: rename: %w", err)
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// DeadlineTime returns the parsed deadline; ok is false when none is set.
func (c *Config) DeadlineTime() (t time.Time, ok bool, err error) {
	if c.Deadline == "" {
		return time.Time{}, false, nil
	}
	t, err = time.Parse(time.RFC3339, c.Deadline)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("config: deadline: %w", err)
	}
	return t, true, nil
}

// Location returns the timezone for printed times, UTC when unset.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone: %w", err)
	}
	return loc, nil
}
