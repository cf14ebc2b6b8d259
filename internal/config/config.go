// Package config loads runtime settings for the KanMind API.
//
// Settings are applied in layers, later layers winning:
//
//  1. Default()
//  2. an optional YAML file (--config or KANMIND_CONFIG), including the
//     section matching its environment (development, staging, production)
//  3. KANMIND_* environment variables
//  4. command-line flags bound with BindFlags
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment represents the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// insecureSecret is the development signing secret. Validate refuses it in
// production.
const insecureSecret = "development-insecure-secret-change-me"

// Config is the master configuration.
type Config struct {
	Environment Environment    `yaml:"environment"`
	Server      ServerConfig   `yaml:"server"`
	Database    DatabaseConfig `yaml:"database"`
	Auth        AuthConfig     `yaml:"auth"`
	Throttle    ThrottleConfig `yaml:"throttle"`
	Log         LogConfig      `yaml:"log"`

	Development *Overrides `yaml:"development,omitempty"`
	Staging     *Overrides `yaml:"staging,omitempty"`
	Production  *Overrides `yaml:"production,omitempty"`
}

// Overrides holds the per-environment sections of the config file. Only
// non-zero values are applied.
type Overrides struct {
	Server   *ServerConfig   `yaml:"server,omitempty"`
	Database *DatabaseConfig `yaml:"database,omitempty"`
	Log      *LogConfig      `yaml:"log,omitempty"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// AllowedOrigins is echoed in CORS responses. "*" allows any origin.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DatabaseConfig selects and tunes the relational store.
type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	// LogLevel is the gorm statement log level: silent, error, warn or info.
	LogLevel     string `yaml:"log_level"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

// AuthConfig configures password hashing and API tokens.
type AuthConfig struct {
	TokenSecret   string `yaml:"token_secret"`
	TokenIssuer   string `yaml:"token_issuer"`
	TokenAudience string `yaml:"token_audience"`
	// TokenTTL of zero means tokens never expire.
	TokenTTL   time.Duration `yaml:"token_ttl"`
	BcryptCost int           `yaml:"bcrypt_cost"`
}

// ThrottleConfig limits registration and login attempts per client.
type ThrottleConfig struct {
	AuthAttempts int           `yaml:"auth_attempts"`
	Window       time.Duration `yaml:"window"`
}

// LogConfig configures the application logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used before any file, environment
// variable or flag is applied.
func Default() *Config {
	return &Config{
		Environment: Development,
		Server: ServerConfig{
			Addr:            ":8008",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			AllowedOrigins:  []string{"*"},
		},
		Database: DatabaseConfig{
			Driver:       "sqlite",
			DSN:          "kanmind.db",
			LogLevel:     "warn",
			MaxOpenConns: 10,
		},
		Auth: AuthConfig{
			TokenSecret:   insecureSecret,
			TokenIssuer:   "kanmind-api",
			TokenAudience: "kanmind-clients",
			BcryptCost:    12,
		},
		Throttle: ThrottleConfig{
			AuthAttempts: 20,
			Window:       time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadFile reads path into a copy of the defaults and applies the section
// for the configured environment.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	cfg.applyEnvironmentOverrides()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvironmentOverrides() {
	var o *Overrides
	switch c.Environment {
	case Development:
		o = c.Development
	case Staging:
		o = c.Staging
	case Production:
		o = c.Production
	}
	if o == nil {
		return
	}

	if o.Server != nil {
		if o.Server.Addr != "" {
			c.Server.Addr = o.Server.Addr
		}
		if o.Server.ReadTimeout > 0 {
			c.Server.ReadTimeout = o.Server.ReadTimeout
		}
		if o.Server.WriteTimeout > 0 {
			c.Server.WriteTimeout = o.Server.WriteTimeout
		}
		if o.Server.ShutdownTimeout > 0 {
			c.Server.ShutdownTimeout = o.Server.ShutdownTimeout
		}
		if len(o.Server.AllowedOrigins) > 0 {
			c.Server.AllowedOrigins = o.Server.AllowedOrigins
		}
	}
	if o.Database != nil {
		if o.Database.Driver != "" {
			c.Database.Driver = o.Database.Driver
		}
		if o.Database.DSN != "" {
			c.Database.DSN = o.Database.DSN
		}
		if o.Database.LogLevel != "" {
			c.Database.LogLevel = o.Database.LogLevel
		}
		if o.Database.MaxOpenConns > 0 {
			c.Database.MaxOpenConns = o.Database.MaxOpenConns
		}
	}
	if o.Log != nil {
		if o.Log.Level != "" {
			c.Log.Level = o.Log.Level
		}
		if o.Log.Format != "" {
			c.Log.Format = o.Log.Format
		}
	}
}

// ApplyEnv overlays KANMIND_* environment variables. lookup is os.LookupEnv
// outside of tests.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	var errs []error

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}

	if v, ok := lookup("KANMIND_ENV"); ok && v != "" {
		c.Environment = Environment(v)
	}
	str("KANMIND_ADDR", &c.Server.Addr)
	if v, ok := lookup("KANMIND_ALLOWED_ORIGINS"); ok && v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}
	str("KANMIND_DB_DRIVER", &c.Database.Driver)
	str("KANMIND_DB_DSN", &c.Database.DSN)
	str("KANMIND_DB_LOG_LEVEL", &c.Database.LogLevel)
	num("KANMIND_DB_MAX_OPEN_CONNS", &c.Database.MaxOpenConns)
	str("KANMIND_TOKEN_SECRET", &c.Auth.TokenSecret)
	str("KANMIND_TOKEN_ISSUER", &c.Auth.TokenIssuer)
	str("KANMIND_TOKEN_AUDIENCE", &c.Auth.TokenAudience)
	dur("KANMIND_TOKEN_TTL", &c.Auth.TokenTTL)
	num("KANMIND_BCRYPT_COST", &c.Auth.BcryptCost)
	num("KANMIND_THROTTLE_AUTH_ATTEMPTS", &c.Throttle.AuthAttempts)
	dur("KANMIND_THROTTLE_WINDOW", &c.Throttle.Window)
	str("KANMIND_LOG_LEVEL", &c.Log.Level)
	str("KANMIND_LOG_FORMAT", &c.Log.Format)

	return errors.Join(errs...)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	switch c.Environment {
	case Development, Staging, Production:
	default:
		errs = append(errs, fmt.Errorf("invalid environment: %q", c.Environment))
	}
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database.dsn is required"))
	}
	switch c.Database.LogLevel {
	case "silent", "error", "warn", "info":
	default:
		errs = append(errs, fmt.Errorf("database.log_level must be silent, error, warn or info, got %q", c.Database.LogLevel))
	}
	if c.Auth.TokenSecret == "" {
		errs = append(errs, errors.New("auth.token_secret is required"))
	}
	if c.Environment == Production && c.Auth.TokenSecret == insecureSecret {
		errs = append(errs, errors.New("auth.token_secret must be changed in production"))
	}
	if c.Auth.TokenTTL < 0 {
		errs = append(errs, errors.New("auth.token_ttl must not be negative"))
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("auth.bcrypt_cost must be between 4 and 31, got %d", c.Auth.BcryptCost))
	}
	if c.Throttle.AuthAttempts < 0 {
		errs = append(errs, errors.New("throttle.auth_attempts must not be negative"))
	}
	if c.Throttle.AuthAttempts > 0 && c.Throttle.Window <= 0 {
		errs = append(errs, errors.New("throttle.window must be positive when throttling is enabled"))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}
