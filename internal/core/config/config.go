package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "CALLSTATS_"

// Config represents the top-level application config.
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Local       LocalConfig       `koanf:"local"`
	Remote      RemoteConfig      `koanf:"remote"`
	Sync        SyncConfig        `koanf:"sync"`
	Ingestion   IngestionConfig   `koanf:"ingestion"`
	Aggregation AggregationConfig `koanf:"aggregation"`
	Enrichment  EnrichmentConfig  `koanf:"enrichment"`
	Log         LogConfig         `koanf:"log"`
}

type ServerConfig struct {
	Port          int    `koanf:"port"`
	Host          string `koanf:"host"`
	MaxBodySizeMB int    `koanf:"max_body_size_mb"`
	Mode          string `koanf:"mode"` // debug | release
}

// LocalConfig locates the SQLite store.
type LocalConfig struct {
	Path string `koanf:"path"`
}

// RemoteConfig is the shared counter backend. Enabled is the sync kill switch.
type RemoteConfig struct {
	Enabled      bool   `koanf:"enabled"`
	DSN          string `koanf:"dsn"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxIdleConns int    `koanf:"max_idle_conns"`
	AutoMigrate  bool   `koanf:"auto_migrate"`
	DocumentID   string `koanf:"document_id"`
	MaxAttempts  int    `koanf:"max_attempts"`
	Timeout      string `koanf:"timeout"`
}

type SyncConfig struct {
	// IdentityID overrides the generated installation ID.
	IdentityID string `koanf:"identity_id"`
	Interval   string `koanf:"interval"`
}

type IngestionConfig struct {
	MaxBatch int `koanf:"max_batch"`
	// ImportFile is imported into the call log on startup when set.
	ImportFile string `koanf:"import_file"`
}

type AggregationConfig struct {
	Workers int `koanf:"workers"`
}

type EnrichmentConfig struct {
	ContactsFile  string `koanf:"contacts_file"`
	Workers       int    `koanf:"workers"`
	LookupTimeout string `koanf:"lookup_timeout"`
}

type LogConfig struct {
	Level string `koanf:"level"` // debug | info | warn | error
}

// SyncInterval returns the parsed refresh interval ("15m", "1d"). Call after Validate.
func (c *Config) SyncInterval() time.Duration {
	d, _ := parseDuration(c.Sync.Interval)
	return d
}

// RemoteTimeout returns the parsed bound on one sync attempt.
func (c *Config) RemoteTimeout() time.Duration {
	d, _ := parseDuration(c.Remote.Timeout)
	return d
}

// LookupTimeout returns the parsed per-lookup deadline.
func (c *Config) LookupTimeout() time.Duration {
	d, _ := parseDuration(c.Enrichment.LookupTimeout)
	return d
}

// LogLevel maps log.level onto slog.
func (c *Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d (must be 1-65535)", c.Server.Port)
	}
	if strings.TrimSpace(c.Server.Host) == "" {
		return fmt.Errorf("server.host is required")
	}
	if c.Server.MaxBodySizeMB <= 0 {
		return fmt.Errorf("server.max_body_size_mb must be > 0")
	}
	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("invalid server.mode %q (must be debug or release)", c.Server.Mode)
	}

	if strings.TrimSpace(c.Local.Path) == "" {
		return fmt.Errorf("local.path is required")
	}

	if c.Remote.Enabled {
		if strings.TrimSpace(c.Remote.DSN) == "" {
			return fmt.Errorf("remote.dsn is required when remote.enabled is true")
		}
		if c.Remote.MaxOpenConns <= 0 {
			return fmt.Errorf("remote.max_open_conns must be > 0")
		}
		if c.Remote.MaxIdleConns <= 0 {
			return fmt.Errorf("remote.max_idle_conns must be > 0")
		}
		if strings.TrimSpace(c.Remote.DocumentID) == "" {
			return fmt.Errorf("remote.document_id is required")
		}
	}
	if c.Remote.MaxAttempts <= 0 {
		return fmt.Errorf("remote.max_attempts must be > 0")
	}
	if err := positiveDuration("remote.timeout", c.Remote.Timeout); err != nil {
		return err
	}

	if err := positiveDuration("sync.interval", c.Sync.Interval); err != nil {
		return err
	}

	if c.Ingestion.MaxBatch <= 0 {
		return fmt.Errorf("ingestion.max_batch must be > 0")
	}
	if c.Ingestion.ImportFile != "" {
		if _, err := os.Stat(c.Ingestion.ImportFile); err != nil {
			return fmt.Errorf("ingestion.import_file %q is not accessible: %w", c.Ingestion.ImportFile, err)
		}
	}

	if c.Aggregation.Workers <= 0 {
		return fmt.Errorf("aggregation.workers must be > 0")
	}

	if c.Enrichment.Workers <= 0 {
		return fmt.Errorf("enrichment.workers must be > 0")
	}
	if err := positiveDuration("enrichment.lookup_timeout", c.Enrichment.LookupTimeout); err != nil {
		return err
	}
	if c.Enrichment.ContactsFile != "" {
		if _, err := os.Stat(c.Enrichment.ContactsFile); err != nil {
			return fmt.Errorf("enrichment.contacts_file %q is not accessible: %w", c.Enrichment.ContactsFile, err)
		}
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log.level %q (must be debug, info, warn or error)", c.Log.Level)
	}

	return nil
}

func positiveDuration(name, value string) error {
	d, err := parseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	if d <= 0 {
		return fmt.Errorf("%s must be > 0", name)
	}
	return nil
}

// parseDuration is time.ParseDuration plus a whole-day form ("2d").
func parseDuration(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if days, ok := strings.CutSuffix(value, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("day count %q is not an integer", days)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(value)
}

// Load reads config from defaults, the YAML file, then CALLSTATS_* env vars
// (a double underscore separates sections: CALLSTATS_REMOTE__DSN). envFiles
// are loaded into the environment first; missing ones are skipped.
func Load(configPath string, envFiles ...string) (*Config, error) {
	for _, path := range envFiles {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", path, err)
		}
	}

	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.port":               8080,
		"server.host":               "0.0.0.0",
		"server.max_body_size_mb":   4,
		"server.mode":               "release",
		"local.path":                "./data/callstats.db",
		"remote.enabled":            false,
		"remote.dsn":                "",
		"remote.max_open_conns":     5,
		"remote.max_idle_conns":     5,
		"remote.auto_migrate":       true,
		"remote.document_id":        "global",
		"remote.max_attempts":       5,
		"remote.timeout":            "30s",
		"sync.identity_id":          "",
		"sync.interval":             "15m",
		"ingestion.max_batch":       5000,
		"ingestion.import_file":     "",
		"aggregation.workers":       4,
		"enrichment.contacts_file":  "",
		"enrichment.workers":        8,
		"enrichment.lookup_timeout": "2s",
		"log.level":                 "info",
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
