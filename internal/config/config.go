package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	API         APIConfig     `toml:"api"`
	Session     SessionConfig `toml:"session"`
	Storage     StorageConfig `toml:"storage"`
	Logging     LoggingConfig `toml:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

// APIConfig points the portal at the OpenVault REST API.
type APIConfig struct {
	URL string `toml:"url"`
	// Timeout is a duration string such as "10s".
	Timeout string `toml:"timeout"`
	// CacheTTL is how long GET responses are reused. "0s" disables caching.
	CacheTTL string `toml:"cache_ttl"`
}

// SessionConfig contains token storage settings.
type SessionConfig struct {
	TokenKey string `toml:"token_key"`
}

// StorageConfig contains storage layer settings.
type StorageConfig struct {
	Backend string      `toml:"backend"`
	Bolt    BoltConfig  `toml:"bolt"`
	Redis   RedisConfig `toml:"redis"`
}

// BoltConfig contains bbolt-specific settings.
type BoltConfig struct {
	Path string `toml:"path"`
}

// RedisConfig contains Redis-specific settings.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Format     string   `toml:"format"`
	Outputs    []string `toml:"outputs"`
	FilePath   string   `toml:"file_path"`
	MaxSizeMB  int      `toml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups"`
}

// IsDevMode reports whether the portal runs with the dev environment.
func (c *Config) IsDevMode() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "dev")
}

// BaseURL returns the URL the portal is reachable on.
func (c *Config) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", c.Server.Host, c.Server.Port)
}

// APITimeout parses API.Timeout, falling back to 10s.
func (c *Config) APITimeout() time.Duration {
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// APICacheTTL parses API.CacheTTL. Invalid or negative values disable caching.
func (c *Config) APICacheTTL() time.Duration {
	d, err := time.ParseDuration(c.API.CacheTTL)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// Validate returns a list of human-readable configuration problems.
// An empty list means the configuration is usable.
func (c *Config) Validate() []string {
	var issues []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		issues = append(issues, fmt.Sprintf("server.port must be between 1 and 65535 (got %d)", c.Server.Port))
	}

	if strings.TrimSpace(c.API.URL) == "" {
		issues = append(issues, "api.url is required (OPENVAULT_API_URL)")
	} else if u, err := url.Parse(c.API.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		issues = append(issues, fmt.Sprintf("api.url must be an absolute http(s) URL (got %q)", c.API.URL))
	}

	if c.API.Timeout != "" {
		if _, err := time.ParseDuration(c.API.Timeout); err != nil {
			issues = append(issues, fmt.Sprintf("api.timeout is not a valid duration (got %q)", c.API.Timeout))
		}
	}

	if strings.TrimSpace(c.Session.TokenKey) == "" {
		issues = append(issues, "session.token_key must not be empty")
	}

	switch strings.ToLower(c.Storage.Backend) {
	case "bolt", "":
		if strings.TrimSpace(c.Storage.Bolt.Path) == "" {
			issues = append(issues, "storage.bolt.path is required for the bolt backend")
		}
	case "redis":
		if strings.TrimSpace(c.Storage.Redis.Addr) == "" {
			issues = append(issues, "storage.redis.addr is required for the redis backend")
		}
	case "memory":
	default:
		issues = append(issues, fmt.Sprintf("storage.backend must be one of bolt, redis, memory (got %q)", c.Storage.Backend))
	}

	return issues
}

// LoadFromFile loads configuration with priority: defaults -> file -> env.
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies OPENVAULT_* environment variable overrides to config.
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("OPENVAULT_ENV"); env != "" {
		config.Environment = env
	}
	if port := os.Getenv("OPENVAULT_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("OPENVAULT_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if apiURL := os.Getenv("OPENVAULT_API_URL"); apiURL != "" {
		config.API.URL = strings.TrimRight(apiURL, "/")
	}
	if timeout := os.Getenv("OPENVAULT_API_TIMEOUT"); timeout != "" {
		config.API.Timeout = timeout
	}
	if ttl := os.Getenv("OPENVAULT_API_CACHE_TTL"); ttl != "" {
		config.API.CacheTTL = ttl
	}
	if key := os.Getenv("OPENVAULT_TOKEN_KEY"); key != "" {
		config.Session.TokenKey = key
	}
	if backend := os.Getenv("OPENVAULT_STORAGE_BACKEND"); backend != "" {
		config.Storage.Backend = backend
	}
	if boltPath := os.Getenv("OPENVAULT_BOLT_PATH"); boltPath != "" {
		config.Storage.Bolt.Path = boltPath
	}
	if addr := os.Getenv("OPENVAULT_REDIS_ADDR"); addr != "" {
		config.Storage.Redis.Addr = addr
	}
	if pw := os.Getenv("OPENVAULT_REDIS_PASSWORD"); pw != "" {
		config.Storage.Redis.Password = pw
	}
	if db := os.Getenv("OPENVAULT_REDIS_DB"); db != "" {
		if n, err := strconv.Atoi(db); err == nil {
			config.Storage.Redis.DB = n
		}
	}
	if level := os.Getenv("OPENVAULT_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("OPENVAULT_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config.
func ApplyFlagOverrides(config *Config, port int, host string, apiURL string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
	if apiURL != "" {
		config.API.URL = strings.TrimRight(apiURL, "/")
	}
}
