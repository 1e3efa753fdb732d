package config

import (
	"os"
	"testing"
)

func TestGetEnv(t *testing.T) {
	t.Run("returns value when set", func(t *testing.T) {
		os.Setenv("TEST_GET_ENV_KEY", "myvalue")
		defer os.Unsetenv("TEST_GET_ENV_KEY")

		if got := getEnv("TEST_GET_ENV_KEY", "default"); got != "myvalue" {
			t.Errorf("got %q, want myvalue", got)
		}
	})

	t.Run("returns default when unset", func(t *testing.T) {
		os.Unsetenv("TEST_GET_ENV_KEY_MISSING")
		if got := getEnv("TEST_GET_ENV_KEY_MISSING", "fallback"); got != "fallback" {
			t.Errorf("got %q, want fallback", got)
		}
	})
}

func TestGetEnvAsInt(t *testing.T) {
	t.Run("valid int", func(t *testing.T) {
		os.Setenv("TEST_INT", "42")
		defer os.Unsetenv("TEST_INT")

		if got := getEnvAsInt("TEST_INT", 10); got != 42 {
			t.Errorf("got %d, want 42", got)
		}
	})

	t.Run("invalid int returns default", func(t *testing.T) {
		os.Setenv("TEST_INT_BAD", "not_a_number")
		defer os.Unsetenv("TEST_INT_BAD")

		if got := getEnvAsInt("TEST_INT_BAD", 99); got != 99 {
			t.Errorf("got %d, want 99", got)
		}
	})

	t.Run("unset returns default", func(t *testing.T) {
		os.Unsetenv("TEST_INT_MISSING")
		if got := getEnvAsInt("TEST_INT_MISSING", 7); got != 7 {
			t.Errorf("got %d, want 7", got)
		}
	})
}

func TestGetEnvAsBool(t *testing.T) {
	t.Run("valid bool", func(t *testing.T) {
		os.Setenv("TEST_BOOL", "true")
		defer os.Unsetenv("TEST_BOOL")

		if got := getEnvAsBool("TEST_BOOL", false); !got {
			t.Errorf("got %v, want true", got)
		}
	})

	t.Run("invalid bool returns default", func(t *testing.T) {
		os.Setenv("TEST_BOOL_BAD", "maybe")
		defer os.Unsetenv("TEST_BOOL_BAD")

		if got := getEnvAsBool("TEST_BOOL_BAD", true); !got {
			t.Errorf("got %v, want true", got)
		}
	})
}

func TestLoad(t *testing.T) {
	keys := []string{"STORE_BACKEND", "REDIS_ENABLED", "RENDER_WORKERS", "PREVIEW_ENABLED"}
	orig := make(map[string]string, len(keys))
	for _, k := range keys {
		orig[k] = os.Getenv(k)
	}
	defer func() {
		for k, v := range orig {
			setOrUnset(k, v)
		}
	}()

	t.Run("defaults", func(t *testing.T) {
		for _, k := range keys {
			os.Unsetenv(k)
		}
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.Store.Backend != "memory" {
			t.Errorf("Store.Backend = %q, want memory", cfg.Store.Backend)
		}
		if cfg.Redis.Enabled {
			t.Error("Redis should be disabled by default")
		}
		if cfg.Render.Workers != 4 {
			t.Errorf("Render.Workers = %d, want 4", cfg.Render.Workers)
		}
		if !cfg.Preview.Enabled {
			t.Error("Preview should be enabled by default")
		}
		if cfg.Redis.SnapshotKey != "widget:snapshot" {
			t.Errorf("Redis.SnapshotKey = %q", cfg.Redis.SnapshotKey)
		}
	})

	t.Run("redis backend forces redis on", func(t *testing.T) {
		os.Setenv("STORE_BACKEND", "Redis")
		os.Unsetenv("REDIS_ENABLED")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.Store.Backend != "redis" {
			t.Errorf("Store.Backend = %q, want redis", cfg.Store.Backend)
		}
		if !cfg.Redis.Enabled {
			t.Error("Redis should be enabled for the redis backend")
		}
	})
}

func TestGetRedisAddr(t *testing.T) {
	// Save and clear all redis env vars
	origURL := os.Getenv("REDIS_URL")
	origAddr := os.Getenv("REDIS_ADDR")
	defer func() {
		setOrUnset("REDIS_URL", origURL)
		setOrUnset("REDIS_ADDR", origAddr)
	}()

	t.Run("REDIS_URL with redis:// prefix", func(t *testing.T) {
		os.Setenv("REDIS_URL", "redis://myhost:6380")
		os.Unsetenv("REDIS_ADDR")

		if got := getRedisAddr(); got != "myhost:6380" {
			t.Errorf("got %q, want myhost:6380", got)
		}
	})

	t.Run("REDIS_URL without prefix", func(t *testing.T) {
		os.Setenv("REDIS_URL", "otherhost:1234")
		os.Unsetenv("REDIS_ADDR")

		if got := getRedisAddr(); got != "otherhost:1234" {
			t.Errorf("got %q, want otherhost:1234", got)
		}
	})

	t.Run("REDIS_ADDR fallback", func(t *testing.T) {
		os.Unsetenv("REDIS_URL")
		os.Setenv("REDIS_ADDR", "addr-host:9999")

		if got := getRedisAddr(); got != "addr-host:9999" {
			t.Errorf("got %q, want addr-host:9999", got)
		}
	})

	t.Run("default when nothing set", func(t *testing.T) {
		os.Unsetenv("REDIS_URL")
		os.Unsetenv("REDIS_ADDR")

		if got := getRedisAddr(); got != "localhost:6379" {
			t.Errorf("got %q, want localhost:6379", got)
		}
	})
}

func setOrUnset(key, val string) {
	if val == "" {
		os.Unsetenv(key)
	} else {
		os.Setenv(key, val)
	}
}
