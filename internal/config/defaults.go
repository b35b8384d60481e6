package config

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "prod",
		Server: ServerConfig{
			Port: 4251,
			Host: "localhost",
		},
		API: APIConfig{
			URL:      "http://localhost:8080/api",
			Timeout:  "10s",
			CacheTTL: "15s",
		},
		Session: SessionConfig{
			TokenKey: "auth_token",
		},
		Storage: StorageConfig{
			Backend: "bolt",
			Bolt: BoltConfig{
				Path: "./data/openvault.db",
			},
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "openvault:",
			},
		},
		Logging: LoggingConfig{
			Level:   "info",
			Format:  "text",
			Outputs: []string{"console", "file"},
		},
	}
}
