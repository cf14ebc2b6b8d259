package config

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

// Flags holds the command-line overrides registered by BindFlags.
type Flags struct {
	set *pflag.FlagSet

	ConfigPath string
	Addr       string
	DBDriver   string
	DBDSN      string
	LogLevel   string
	LogFormat  string
}

// BindFlags registers the configuration flags on fs.
func BindFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{set: fs}
	fs.StringVar(&f.ConfigPath, "config", "", "path to a YAML config file (env: KANMIND_CONFIG)")
	fs.StringVar(&f.Addr, "addr", "", "HTTP listen address")
	fs.StringVar(&f.DBDriver, "db-driver", "", "database driver: sqlite or postgres")
	fs.StringVar(&f.DBDSN, "db-dsn", "", "database DSN or sqlite file path")
	fs.StringVar(&f.LogLevel, "log-level", "", "log level: debug, info, warn or error")
	fs.StringVar(&f.LogFormat, "log-format", "", "log format: text or json")
	return f
}

// apply copies the flags the user actually set onto c.
func (f *Flags) apply(c *Config) {
	if f.set.Changed("addr") {
		c.Server.Addr = f.Addr
	}
	if f.set.Changed("db-driver") {
		c.Database.Driver = f.DBDriver
	}
	if f.set.Changed("db-dsn") {
		c.Database.DSN = f.DBDSN
	}
	if f.set.Changed("log-level") {
		c.Log.Level = f.LogLevel
	}
	if f.set.Changed("log-format") {
		c.Log.Format = f.LogFormat
	}
}

// Load builds the effective configuration from defaults, the optional config
// file, the environment and the parsed flags, then validates it.
func Load(f *Flags, lookup func(string) (string, bool)) (*Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	path := f.ConfigPath
	if path == "" {
		path, _ = lookup("KANMIND_CONFIG")
	}

	cfg := Default()
	if path != "" {
		loaded, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := cfg.ApplyEnv(lookup); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	f.apply(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
