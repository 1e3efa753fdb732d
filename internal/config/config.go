package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server       ServerConfig
	Redis        RedisConfig
	Store        StoreConfig
	Preview      PreviewConfig
	Render       RenderConfig
	ManifestPath string
	LogLevel     string
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port         int
	ReadTimeout  int
	WriteTimeout int
}

// RedisConfig holds Redis-related configuration
type RedisConfig struct {
	Enabled       bool
	Addr          string
	Password      string
	DB            int
	ConsumerGroup string
	ConsumerName  string
	SnapshotKey   string // hash holding the shared snapshot
	UpdatesStream string // stream the foreground app appends to after saving
	IntentChannel string // channel the foreground app listens on
}

// StoreConfig selects where the snapshot is read from
type StoreConfig struct {
	Backend  string // memory, disk or redis
	DiskPath string
}

// PreviewConfig controls preview image generation
type PreviewConfig struct {
	Enabled bool
	Width   int
	Height  int
}

// RenderConfig controls the update fan-out
type RenderConfig struct {
	Workers int
	Timeout int // seconds per render pass
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (optional)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 10),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 10),
		},
		Redis: RedisConfig{
			Enabled:       getEnvAsBool("REDIS_ENABLED", false),
			Addr:          getRedisAddr(),
			Password:      getEnv("REDIS_PASSWORD", ""),
			DB:            getEnvAsInt("REDIS_DB", 0),
			ConsumerGroup: getEnv("REDIS_CONSUMER_GROUP", "api-widget"),
			ConsumerName:  getEnv("REDIS_CONSUMER_NAME", ""),
			SnapshotKey:   getEnv("REDIS_SNAPSHOT_KEY", "widget:snapshot"),
			UpdatesStream: getEnv("REDIS_UPDATES_STREAM", "widget:snapshot_updates"),
			IntentChannel: getEnv("REDIS_INTENT_CHANNEL", "widget:intents"),
		},
		Store: StoreConfig{
			Backend:  strings.ToLower(getEnv("STORE_BACKEND", "memory")),
			DiskPath: getEnv("STORE_DISK_PATH", "/var/lib/api-widget"),
		},
		Preview: PreviewConfig{
			Enabled: getEnvAsBool("PREVIEW_ENABLED", true),
			Width:   getEnvAsInt("PREVIEW_WIDTH", 64),
			Height:  getEnvAsInt("PREVIEW_HEIGHT", 32),
		},
		Render: RenderConfig{
			Workers: getEnvAsInt("RENDER_WORKERS", 4),
			Timeout: getEnvAsInt("RENDER_TIMEOUT", 5),
		},
		ManifestPath: getEnv("WIDGET_MANIFEST_PATH", "/etc/api-widget"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
	}

	// The redis store cannot work without the Redis connection
	if cfg.Store.Backend == "redis" {
		cfg.Redis.Enabled = true
	}

	return cfg, nil
}

// getRedisAddr resolves REDIS_URL (with or without redis://), then REDIS_ADDR
func getRedisAddr() string {
	if url := os.Getenv("REDIS_URL"); url != "" {
		return strings.TrimPrefix(url, "redis://")
	}
	return getEnv("REDIS_ADDR", "localhost:6379")
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as int or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvAsBool gets an environment variable as bool or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
