package config

import (
	"bytes"
	"log"
	"strings"
	"testing"
	"time"
)

func TestRequireEnv(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		value     string
		shouldSet bool
		wantPanic bool
	}{
		{
			name:      "variable set",
			key:       "TEST_VAR",
			value:     "test_value",
			shouldSet: true,
			wantPanic: false,
		},
		{
			name:      "variable not set",
			key:       "TEST_VAR_MISSING",
			shouldSet: false,
			wantPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.shouldSet {
				t.Setenv(tt.key, tt.value)
			}

			if tt.wantPanic {
				defer func() {
					if r := recover(); r == nil {
						t.Errorf("requireEnv() should have panicked")
					}
				}()
			}

			result := requireEnv(tt.key)
			if !tt.wantPanic && result != tt.value {
				t.Errorf("requireEnv() = %v, want %v", result, tt.value)
			}
		})
	}
}

func TestMustDuration(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      time.Duration
		expected time.Duration
	}{
		{
			name:     "valid duration",
			key:      "TEST_DURATION",
			value:    "5s",
			def:      1 * time.Second,
			expected: 5 * time.Second,
		},
		{
			name:     "invalid duration uses default",
			key:      "TEST_DURATION_INVALID",
			value:    "invalid",
			def:      10 * time.Second,
			expected: 10 * time.Second,
		},
		{
			name:     "missing variable uses default",
			key:      "TEST_DURATION_MISSING",
			value:    "",
			def:      15 * time.Second,
			expected: 15 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv(tt.key, tt.value)
			}

			result := mustDuration(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("mustDuration() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMustBool(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      bool
		expected bool
	}{
		{name: "true value", key: "TEST_BOOL", value: "true", def: false, expected: true},
		{name: "false value", key: "TEST_BOOL_FALSE", value: "false", def: true, expected: false},
		{name: "invalid value uses default", key: "TEST_BOOL_INVALID", value: "invalid", def: true, expected: true},
		{name: "missing variable uses default", key: "TEST_BOOL_MISSING", value: "", def: false, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv(tt.key, tt.value)
			}

			result := mustBool(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("mustBool() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestSplitAndTrim(t *testing.T) {
	result := splitAndTrim(` a.example.com , "b.example.com",, 'c' `)
	expected := []string{"a.example.com", "b.example.com", "c"}

	if len(result) != len(expected) {
		t.Fatalf("splitAndTrim() length = %v, want %v", len(result), len(expected))
	}
	for i := range result {
		if result[i] != expected[i] {
			t.Errorf("splitAndTrim()[%d] = %v, want %v", i, result[i], expected[i])
		}
	}
}

func TestNormalizeBasePath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"/Bookmark", "/Bookmark"},
		{"Bookmark", "/Bookmark"},
		{"/Bookmark/", "/Bookmark"},
		{"", "/"},
		{"/", "/"},
		{" /api/v1/bookmarks/ ", "/api/v1/bookmarks"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := normalizeBasePath(tt.input); got != tt.expected {
				t.Errorf("normalizeBasePath(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func validConfig() *Config {
	return &Config{
		Store:        StoreMemory,
		StoreTimeout: time.Second,
		AuthMode:     AuthJWT,
		JWTSecret:    strings.Repeat("s", MinJWTSecretLength),
		UserHeader:   "X-User-ID",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid memory config", mutate: func(c *Config) {}},
		{
			name:    "unknown store",
			mutate:  func(c *Config) { c.Store = "mongo" },
			wantErr: "unknown SHELF_STORE",
		},
		{
			name:    "redis without address",
			mutate:  func(c *Config) { c.Store = StoreRedis; c.RedisPasswordRequired = false },
			wantErr: "SHELF_REDIS_ADDR",
		},
		{
			name: "redis password required but empty",
			mutate: func(c *Config) {
				c.Store = StoreRedis
				c.RedisAddr = "localhost:6379"
				c.RedisPasswordRequired = true
			},
			wantErr: "SHELF_REDIS_PASSWORD",
		},
		{
			name:    "sqlite without path",
			mutate:  func(c *Config) { c.Store = StoreSQLite },
			wantErr: "SHELF_SQLITE_PATH",
		},
		{
			name:    "short jwt secret",
			mutate:  func(c *Config) { c.JWTSecret = "short" },
			wantErr: "SHELF_JWT_SECRET",
		},
		{
			name:    "header mode without header",
			mutate:  func(c *Config) { c.AuthMode = AuthHeader; c.UserHeader = "" },
			wantErr: "SHELF_USER_HEADER",
		},
		{
			name:    "unknown auth mode",
			mutate:  func(c *Config) { c.AuthMode = "oauth" },
			wantErr: "unknown SHELF_AUTH_MODE",
		},
		{
			name:    "seed file without seed user",
			mutate:  func(c *Config) { c.SeedFile = "/tmp/bookmarks.yaml" },
			wantErr: "SHELF_SEED_USER",
		},
		{
			name:    "non positive store timeout",
			mutate:  func(c *Config) { c.StoreTimeout = 0 },
			wantErr: "SHELF_STORE_TIMEOUT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMemoryHeaderMode(t *testing.T) {
	t.Setenv("SHELF_STORE", "memory")
	t.Setenv("SHELF_AUTH_MODE", "header")
	t.Setenv("SHELF_BASE_PATH", "bookmarks/")
	t.Setenv("SHELF_STORE_TIMEOUT", "750ms")

	cfg := Load()

	if cfg.Store != StoreMemory {
		t.Errorf("Store = %v, want memory", cfg.Store)
	}
	if cfg.BasePath != "/bookmarks" {
		t.Errorf("BasePath = %v, want /bookmarks", cfg.BasePath)
	}
	if cfg.StoreTimeout != 750*time.Millisecond {
		t.Errorf("StoreTimeout = %v, want 750ms", cfg.StoreTimeout)
	}
	if cfg.UserHeader != "X-User-ID" {
		t.Errorf("UserHeader = %v, want X-User-ID", cfg.UserHeader)
	}
}

func TestLoadDebugLeavesLoggingToCaller(t *testing.T) {
	t.Setenv("SHELF_STORE", "memory")
	t.Setenv("SHELF_AUTH_MODE", "header")
	t.Setenv("SHELF_LOG_LEVEL", "debug")

	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(prev) })

	cfg := Load()

	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %v, want debug", cfg.LogLevel)
	}
	if buf.Len() != 0 {
		t.Errorf("Load() wrote to the standard logger: %q", buf.String())
	}
}

func TestLoadPanicsWithoutJWTSecret(t *testing.T) {
	t.Setenv("SHELF_STORE", "memory")
	t.Setenv("SHELF_AUTH_MODE", "jwt")
	t.Setenv("SHELF_JWT_SECRET", "")

	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Load() should have panicked")
		}
	}()
	Load()
}

func TestRedactedHidesSecrets(t *testing.T) {
	cfg := validConfig()
	cfg.RedisPassword = "hunter2"
	red := cfg.Redacted()

	if red.JWTSecret == cfg.JWTSecret || red.RedisPassword == "hunter2" {
		t.Errorf("Redacted() leaked secrets: %+v", red)
	}
	if cfg.RedisPassword != "hunter2" {
		t.Error("Redacted() must not mutate the receiver")
	}
}
