package config

import (
	"errors"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Backend  BackendConfig
	Payphone PayphoneConfig
	Session  SessionConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port string
	Host string
	Env  string
}

// Addr is the listen address built from host and port
func (c ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// IsProduction reports whether the server runs with ENV=production
func (c ServerConfig) IsProduction() bool {
	return c.Env == "production"
}

type BackendConfig struct {
	URL     string
	Timeout time.Duration
}

type PayphoneConfig struct {
	PublicKey string
	StoreID   string
	Currency  string
}

type SessionConfig struct {
	Secret string
	Name   string
	// StateTTL is how long browser state kept in Redis survives without
	// being written
	StateTTL time.Duration
}

type RedisConfig struct {
	// URL enables the Redis client state backend when set
	URL string
}

// Enabled reports whether a Redis URL was configured
func (c RedisConfig) Enabled() bool {
	return c.URL != ""
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level string
}

func Load() (*Config, error) {
	// Load .env files if they exist (try .env.local first, then .env)
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Host: getEnv("HOST", "localhost"),
			Env:  getEnv("ENV", "development"),
		},
		Backend: BackendConfig{
			URL:     strings.TrimRight(getEnv("BACKEND_URL", "http://localhost:3000"), "/"),
			Timeout: getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),
		},
		Payphone: PayphoneConfig{
			PublicKey: getEnv("PAYPHONE_PUBLIC_KEY", ""),
			StoreID:   getEnv("PAYPHONE_STORE_ID", ""),
			Currency:  getEnv("PAYPHONE_CURRENCY", "USD"),
		},
		Session: SessionConfig{
			Secret:   getEnv("SESSION_SECRET", "your-secret-key-change-in-production"),
			Name:     getEnv("SESSION_NAME", "eventos_state"),
			StateTTL: getEnvAsDuration("STATE_TTL", 7*24*time.Hour),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate rejects configurations the server cannot start with
func (c *Config) Validate() error {
	u, err := url.Parse(c.Backend.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("BACKEND_URL must be an absolute URL")
	}

	if c.Server.IsProduction() && c.Session.Secret == "your-secret-key-change-in-production" {
		return errors.New("SESSION_SECRET must be set in production")
	}

	if len(c.Session.Secret) < 32 && c.Server.IsProduction() {
		return errors.New("SESSION_SECRET must be at least 32 characters in production")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("45s") or a bare number of seconds
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if seconds := getEnvAsInt(key, -1); seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var list []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}
