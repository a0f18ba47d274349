// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig                  `mapstructure:"app"`
	Server        ServerConfig               `mapstructure:"server"`
	Database      DatabaseConfig             `mapstructure:"database"`
	Auth          AuthConfig                 `mapstructure:"auth"`
	Push          PushConfig                 `mapstructure:"push"`
	RateLimits    map[string]RateLimitPolicy `mapstructure:"rate_limits"`
	Notifications NotificationConfig         `mapstructure:"notifications"`
	Logging       LoggingConfig              `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Host            string   `mapstructure:"host"`
	Port            int      `mapstructure:"port"`
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	ShutdownTimeout int      `mapstructure:"shutdown_timeout"` // milliseconds
}

// Address returns the host:port listen address.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Driver string      `mapstructure:"driver"` // "mongo" or "memory"
	Mongo  MongoConfig `mapstructure:"mongo"`
	Redis  RedisConfig `mapstructure:"redis"`
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
	Timeout  int    `mapstructure:"timeout"` // milliseconds
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig holds settings for bearer-token verification.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
	Audience  string `mapstructure:"audience"`
}

// PushConfig holds settings for the push delivery channel.
type PushConfig struct {
	Provider  string `mapstructure:"provider"` // "fcm" or "noop"
	Endpoint  string `mapstructure:"endpoint"`
	ServerKey string `mapstructure:"server_key"`
	Timeout   int    `mapstructure:"timeout"` // milliseconds
}

// RateLimitPolicy is a fixed-window throttling policy.
type RateLimitPolicy struct {
	WindowMS    int64 `mapstructure:"window_ms"`
	MaxRequests int   `mapstructure:"max_requests"`
}

// NotificationConfig holds dispatch fanout settings.
type NotificationConfig struct {
	MulticastLimit     int `mapstructure:"multicast_limit"`      // max tokens per push batch
	DirectoryChunkSize int `mapstructure:"directory_chunk_size"` // max ids per store lookup
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
