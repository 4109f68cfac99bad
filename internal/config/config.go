package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	DatabasePath      string        `mapstructure:"database_path" yaml:"database_path"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`

	JWTSecret   string        `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	JWTIssuer   string        `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`
	JWTAudience string        `mapstructure:"jwt_audience" yaml:"jwt_audience"`
	JWTTTL      time.Duration `mapstructure:"jwt_ttl" yaml:"jwt_ttl"`

	// RedisAddr enables the redis-backed chat registry when non-empty.
	RedisAddr string `mapstructure:"redis_addr" yaml:"redis_addr"`

	KhaltiBaseURL   string `mapstructure:"khalti_base_url" yaml:"khalti_base_url"`
	KhaltiSecretKey string `mapstructure:"khalti_secret_key" yaml:"khalti_secret_key"`

	ResetTokenTTL time.Duration `mapstructure:"reset_token_ttl" yaml:"reset_token_ttl"`
	ResetBaseURL  string        `mapstructure:"reset_base_url" yaml:"reset_base_url"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		DatabasePath:      "hirehub.db",
		LogLevel:          "info",
		JWTSecret:         "change-me",
		JWTIssuer:         "hirehub",
		JWTAudience:       "hirehub-api",
		JWTTTL:            24 * time.Hour,
		KhaltiBaseURL:     "https://khalti.com/api/v2",
		ResetTokenTTL:     time.Hour,
		ResetBaseURL:      "http://localhost:8080/reset",
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.DatabasePath != "" {
		c.DatabasePath = other.DatabasePath
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.JWTSecret != "" {
		c.JWTSecret = other.JWTSecret
	}
	if other.RedisAddr != "" {
		c.RedisAddr = other.RedisAddr
	}
	if other.KhaltiSecretKey != "" {
		c.KhaltiSecretKey = other.KhaltiSecretKey
	}
}
