package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends.
const (
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Authentication modes.
const (
	AuthJWT    = "jwt"    // HS256 bearer tokens, principal = "sub" claim
	AuthHeader = "header" // principal set by a trusted upstream proxy
)

// MinJWTSecretLength is the shortest HS256 secret accepted.
const MinJWTSecretLength = 32

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request deadline enforced by the router
	BasePath        string        // mount point of the bookmark API (ex: "/Bookmark")

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Storage
	Store        string        // "redis" | "sqlite" | "memory"
	StoreTimeout time.Duration // bound on every storage call
	SQLitePath   string        // database file for the sqlite store

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	// Identity
	AuthMode   string // "jwt" | "header"
	JWTSecret  string // HS256 signing secret (jwt mode)
	JWTIssuer  string // optional, enforced when set
	UserHeader string // header carrying the principal (header mode)

	// Seeding
	SeedFile     string        // optional bookmarks.yaml imported on startup
	SeedUser     string        // owner of the seeded bookmarks
	SeedInterval time.Duration // re-import period, 0 => startup only

	// Access restrictions
	AllowedHosts []string // optional, restrict the API to specific Host headers
	AllowedCIDRS []string // optional, restrict healthz/readyz to specific IPs/CIDRs
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
	RateBurst    int      // token bucket size per client IP
	RatePerMin   int      // token refill per client IP per minute
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("SHELF_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("SHELF_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("SHELF_REQUEST_TIMEOUT", 5*time.Second),
		BasePath:        normalizeBasePath(getenv("SHELF_BASE_PATH", "/Bookmark")),

		// Logging
		LogLevel:  getenv("SHELF_LOG_LEVEL", "info"),
		PrettyLog: mustBool("SHELF_PRETTY_LOG", true),

		// Storage
		Store:        strings.ToLower(getenv("SHELF_STORE", StoreRedis)),
		StoreTimeout: mustDuration("SHELF_STORE_TIMEOUT", 3*time.Second),
		SQLitePath:   getenv("SHELF_SQLITE_PATH", "/data/shelf.db"),

		// Redis settings
		RedisUser:             getenv("SHELF_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("SHELF_REDIS_PASSWORD_REQUIRED", true),
		RedisPassword:         getenv("SHELF_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("SHELF_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Identity
		AuthMode:   strings.ToLower(getenv("SHELF_AUTH_MODE", AuthJWT)),
		JWTIssuer:  getenv("SHELF_JWT_ISSUER", ""),
		UserHeader: getenv("SHELF_USER_HEADER", "X-User-ID"),

		// Seeding
		SeedFile:     getenv("SHELF_SEED_FILE", ""),
		SeedUser:     getenv("SHELF_SEED_USER", ""),
		SeedInterval: mustDuration("SHELF_SEED_INTERVAL", 0),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("SHELF_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("SHELF_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("SHELF_TRUST_PROXY", false),
		RateBurst:    getenvInt("SHELF_RATE_BURST", 30),
		RatePerMin:   getenvInt("SHELF_RATE_PER_MIN", 120),
	}

	// Backend-specific required settings
	if cfg.Store == StoreRedis {
		cfg.RedisAddr = requireEnv("SHELF_REDIS_ADDR")
	}
	if cfg.AuthMode == AuthJWT {
		cfg.JWTSecret = requireEnv("SHELF_JWT_SECRET")
	}

	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("❌ FATAL: %v", err))
	}

	return cfg
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	var errs []error

	switch c.Store {
	case StoreRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("SHELF_REDIS_ADDR is required when SHELF_STORE=redis"))
		}
		if c.RedisPasswordRequired && c.RedisPassword == "" {
			errs = append(errs, errors.New("SHELF_REDIS_PASSWORD is required when SHELF_REDIS_PASSWORD_REQUIRED=true"))
		}
	case StoreSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SHELF_SQLITE_PATH is required when SHELF_STORE=sqlite"))
		}
	case StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown SHELF_STORE %q (want redis, sqlite or memory)", c.Store))
	}

	switch c.AuthMode {
	case AuthJWT:
		if len(c.JWTSecret) < MinJWTSecretLength {
			errs = append(errs, fmt.Errorf("SHELF_JWT_SECRET must be at least %d characters", MinJWTSecretLength))
		}
	case AuthHeader:
		if c.UserHeader == "" {
			errs = append(errs, errors.New("SHELF_USER_HEADER is required when SHELF_AUTH_MODE=header"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown SHELF_AUTH_MODE %q (want jwt or header)", c.AuthMode))
	}

	if c.SeedFile != "" && c.SeedUser == "" {
		errs = append(errs, errors.New("SHELF_SEED_USER is required when SHELF_SEED_FILE is set"))
	}
	if c.StoreTimeout <= 0 {
		errs = append(errs, fmt.Errorf("SHELF_STORE_TIMEOUT must be > 0, got %v", c.StoreTimeout))
	}

	return errors.Join(errs...)
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	cp := *c
	if cp.RedisPassword != "" {
		cp.RedisPassword = "***REDACTED***"
	}
	if cp.RedisUser != "" {
		cp.RedisUser = "***REDACTED***"
	}
	if cp.JWTSecret != "" {
		cp.JWTSecret = "***REDACTED***"
	}
	return cp
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

// normalizeBasePath makes sure the mount point starts with "/" and has no
// trailing slash. "" and "/" both mean the root.
//
//	"Bookmark"   -> "/Bookmark"
//	"/Bookmark/" -> "/Bookmark"
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	p = strings.TrimRight(p, "/")
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
