package config

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/payment-frontend/internal/declarations/paymentbackend"
	"github.com/vango-dev/payment-frontend/internal/errors"
	"github.com/vango-dev/payment-frontend/pkg/actor"
)

const (
	// DefaultFileName is looked up in the working directory when no path is given.
	DefaultFileName = "payfront.yaml"

	// DefaultAddr is the default listen address.
	DefaultAddr = ":8080"

	// DefaultSessionTTL is how long an unattached page session is kept.
	DefaultSessionTTL = 2 * time.Minute

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "PAYFRONT_"
)

// Config is the complete payment-frontend configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Canister CanisterConfig `yaml:"canister"`
	Page     PageConfig     `yaml:"page"`
	Log      LogConfig      `yaml:"log"`

	// path is the file the config was loaded from, if any.
	path string
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `yaml:"addr"`

	// SessionTTL is how long a rendered page waits for its live connection
	// before the session is dropped.
	SessionTTL time.Duration `yaml:"sessionTTL"`

	// Dev relaxes the WebSocket origin check.
	Dev bool `yaml:"dev"`
}

// CanisterConfig selects the backend canister and replica.
type CanisterConfig struct {
	// ID is the textual canister id. Empty means the generated default.
	ID string `yaml:"id"`

	// Host is the replica or gateway URL.
	Host string `yaml:"host"`

	// Timeout bounds each replica request.
	Timeout time.Duration `yaml:"timeout"`

	// FetchRootKey trusts the root key the replica reports. Required for a
	// local replica; must be off against mainnet.
	FetchRootKey bool `yaml:"fetchRootKey"`
}

// PageConfig controls the served page.
type PageConfig struct {
	// Shell is an HTML file containing the mount element. Empty uses the
	// built-in shell.
	Shell string `yaml:"shell"`

	// ShowConnect renders the connect button next to the app.
	ShowConnect bool `yaml:"showConnect"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`

	// Format is text or json.
	Format string `yaml:"format"`
}

// New returns a configuration with defaults applied.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:       DefaultAddr,
			SessionTTL: DefaultSessionTTL,
		},
		Canister: CanisterConfig{
			Host:         actor.DefaultHost,
			Timeout:      actor.DefaultTimeout,
			FetchRootKey: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from path and applies environment overrides.
// An empty path reads DefaultFileName if it exists and otherwise uses the
// defaults. The result is not validated: callers apply their flags first,
// then call Validate.
func Load(path string) (*Config, error) {
	cfg := New()

	explicit := path != ""
	if !explicit {
		path = DefaultFileName
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := cfg.decode(data); err != nil {
			return nil, err
		}
		cfg.path = path
	case explicit || !os.IsNotExist(err):
		return nil, errors.New("E021").WithDetail(path).Wrap(err)
	}

	if err := ApplyEnvOverrides(cfg, os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && err != io.EOF {
		return errors.New("E020").WithDetail("parse YAML").Wrap(err)
	}
	return nil
}

// Path returns the file the configuration was loaded from, or "".
func (c *Config) Path() string {
	return c.path
}

// ApplyEnvOverrides overrides fields from PAYFRONT_* variables read
// through getenv. Unset or blank variables are ignored.
func ApplyEnvOverrides(c *Config, getenv func(string) string) error {
	lookup := func(name string) (string, bool) {
		v := strings.TrimSpace(getenv(EnvPrefix + name))
		return v, v != ""
	}

	if v, ok := lookup("ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := lookup("SESSION_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return envError("SESSION_TTL", err)
		}
		c.Server.SessionTTL = d
	}
	if v, ok := lookup("DEV"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return envError("DEV", err)
		}
		c.Server.Dev = b
	}
	if v, ok := lookup("CANISTER_ID"); ok {
		c.Canister.ID = v
	}
	if v, ok := lookup("REPLICA_HOST"); ok {
		c.Canister.Host = v
	}
	if v, ok := lookup("REPLICA_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return envError("REPLICA_TIMEOUT", err)
		}
		c.Canister.Timeout = d
	}
	if v, ok := lookup("FETCH_ROOT_KEY"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return envError("FETCH_ROOT_KEY", err)
		}
		c.Canister.FetchRootKey = b
	}
	if v, ok := lookup("PAGE_SHELL"); ok {
		c.Page.Shell = v
	}
	if v, ok := lookup("SHOW_CONNECT"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return envError("SHOW_CONNECT", err)
		}
		c.Page.ShowConnect = b
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := lookup("LOG_FORMAT"); ok {
		c.Log.Format = v
	}
	return nil
}

func envError(name string, err error) error {
	return errors.New("E020").WithDetailf("%s%s", EnvPrefix, name).Wrap(err)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("E020").WithDetail("server.addr must not be empty")
	}
	if c.Server.SessionTTL <= 0 {
		return errors.New("E020").WithDetailf("server.sessionTTL must be positive, got %s", c.Server.SessionTTL)
	}
	if c.Canister.ID != "" {
		if _, err := actor.Decode(c.Canister.ID); err != nil {
			return errors.New("E020").WithDetail("canister.id").Wrap(err)
		}
	}
	if !strings.HasPrefix(c.Canister.Host, "http://") && !strings.HasPrefix(c.Canister.Host, "https://") {
		return errors.New("E020").
			WithDetailf("canister.host must be an http(s) URL, got %q", c.Canister.Host)
	}
	if c.Canister.Timeout <= 0 {
		return errors.New("E020").WithDetailf("canister.timeout must be positive, got %s", c.Canister.Timeout)
	}
	if _, err := c.Log.level(); err != nil {
		return errors.New("E020").WithDetail("log.level").Wrap(err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New("E020").
			WithDetailf("log.format must be text or json, got %q", c.Log.Format).
			WithSuggestion("Set log.format to \"text\" or \"json\"")
	}
	return nil
}

// CanisterID returns the configured canister id, falling back to the
// generated default.
func (c *Config) CanisterID() string {
	if c.Canister.ID != "" {
		return c.Canister.ID
	}
	return paymentbackend.CanisterID()
}

// AgentConfig returns the replica agent settings.
func (c *Config) AgentConfig() actor.AgentConfig {
	return actor.AgentConfig{
		Host:         c.Canister.Host,
		Timeout:      c.Canister.Timeout,
		FetchRootKey: c.Canister.FetchRootKey,
	}
}

func (l LogConfig) level() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(l.Level))
	return level, err
}

// NewLogger builds the process logger writing to w.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, err := l.level()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
