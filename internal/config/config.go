// Package config loads and saves the board client's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/erazemk/najdeno/internal/board"
)

// Defaults.
const (
	DefaultServer        = "http://localhost:8080"
	DefaultLoadMoreDelay = time.Second
)

// Config is the client configuration file.
type Config struct {
	Server        string        `yaml:"server"`
	PageSize      int           `yaml:"page_size"`
	Lookahead     int           `yaml:"lookahead"`
	LoadMoreDelay time.Duration `yaml:"load_more_delay"`
	LogFile       string        `yaml:"log_file,omitempty"`
	Token         string        `yaml:"token,omitempty"`
	Username      string        `yaml:"username,omitempty"`
	UserID        int64         `yaml:"user_id,omitempty"`
	Role          string        `yaml:"role,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Server:        DefaultServer,
		PageSize:      board.DefaultPageSize,
		Lookahead:     board.DefaultLookahead,
		LoadMoreDelay: DefaultLoadMoreDelay,
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/najdeno/config.yaml, falling back
// to the OS user config directory.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		var err error
		dir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("finding config directory: %w", err)
		}
	}
	return filepath.Join(dir, "najdeno", "config.yaml"), nil
}

// Load reads the config at path. A missing file yields the defaults.
// Keys absent from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the client cannot run with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("server must be an http(s) URL, got %q", c.Server)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	}
	if c.Lookahead <= 0 {
		return fmt.Errorf("lookahead must be positive, got %d", c.Lookahead)
	}
	if c.LoadMoreDelay < 0 {
		return fmt.Errorf("load_more_delay must not be negative, got %s", c.LoadMoreDelay)
	}
	return nil
}

// Save writes the config to path, creating parent directories. The file
// holds a bearer token, so it is written owner-only.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing config: %w", err)
	}
	return nil
}

// SetSession records a signed-in identity. An empty token signs out.
func (c *Config) SetSession(token string, userID int64, username, role string) {
	c.Token = token
	c.UserID = userID
	c.Username = username
	c.Role = role
	if token == "" {
		c.UserID = 0
		c.Role = ""
	}
}

// BoardOptions returns the pagination settings for a coordinator.
func (c *Config) BoardOptions() board.Options {
	return board.Options{PageSize: c.PageSize, Lookahead: c.Lookahead}
}
