// Package config loads the databook CLI settings from a TOML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	EnvConfig   = "DATABOOK_CONFIG"
	EnvPath     = "DATABOOK_PATH"
	EnvBucket   = "DATABOOK_BUCKET"
	EnvLogLevel = "DATABOOK_LOG_LEVEL"
	EnvNoSync   = "DATABOOK_NOSYNC"
)

type Config struct {
	Path     string
	Bucket   string
	LogLevel string
	NoSync   bool
	Compress bool
	MmapSize int
}

type fileConfig struct {
	Path       string `toml:"path"`
	Bucket     string `toml:"bucket"`
	LogLevel   string `toml:"log_level"`
	NoSync     bool   `toml:"no_sync"`
	Compress   bool   `toml:"compress"`
	MmapSizeMB int    `toml:"mmap_size_mb"`
}

func Default() Config {
	return Config{
		Path:     "databook.db",
		Bucket:   "trees",
		LogLevel: "info",
	}
}

// Load reads the file at path on top of the defaults, then applies
// environment overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.decodeFile(path); err != nil {
			return Config{}, err
		}
	}
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) decodeFile(path string) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load databook config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("load databook config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("path") {
		c.Path = strings.TrimSpace(raw.Path)
	}
	if meta.IsDefined("bucket") {
		c.Bucket = strings.TrimSpace(raw.Bucket)
	}
	if meta.IsDefined("log_level") {
		c.LogLevel = strings.ToLower(strings.TrimSpace(raw.LogLevel))
	}
	if meta.IsDefined("no_sync") {
		c.NoSync = raw.NoSync
	}
	if meta.IsDefined("compress") {
		c.Compress = raw.Compress
	}
	if meta.IsDefined("mmap_size_mb") {
		c.MmapSize = raw.MmapSizeMB * 1024 * 1024
	}
	return nil
}

// ApplyEnv overrides settings from the DATABOOK_* variables. Blank and
// unparsable values are ignored.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvPath)); v != "" {
		c.Path = v
	}
	if v := strings.TrimSpace(getenv(EnvBucket)); v != "" {
		c.Bucket = v
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v, ok := parseBool(getenv(EnvNoSync)); ok {
		c.NoSync = v
	}
}

func (c Config) Validate() error {
	var errs []error
	if c.Path == "" {
		errs = append(errs, errors.New("path is required"))
	}
	if c.Bucket == "" {
		errs = append(errs, errors.New("bucket is required"))
	}
	if !validLevel(c.LogLevel) {
		errs = append(errs, fmt.Errorf("invalid log_level %q", c.LogLevel))
	}
	if c.MmapSize < 0 {
		errs = append(errs, fmt.Errorf("invalid mmap_size_mb %d", c.MmapSize/(1024*1024)))
	}
	if len(errs) > 0 {
		return fmt.Errorf("databook config: %w", errors.Join(errs...))
	}
	return nil
}

func validLevel(s string) bool {
	switch s {
	case "trace", "debug", "info", "warn", "warning", "error", "disabled", "off":
		return true
	default:
		return false
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
