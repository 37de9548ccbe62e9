package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends.
const (
	StoreSheets = "sheets"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request deadline (default: 10s)
	HealthInterval  time.Duration // store probe interval for /infra (default: 1m)

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Auth
	AdminPassword string // the single admin password
	SessionSecret string // HMAC key for session tokens

	// Records
	Store           string // "sheets" | "redis" | "memory"
	SeedFile        string // optional YAML fixtures (memory always, redis when empty)
	DefaultCategory string // category given to new bookmarks without one
	AutoCover       bool   // look up og:image on create when coverUrl is empty
	CoverTimeout    time.Duration

	// Google Sheets
	GoogleSheetID        string // spreadsheet id from its URL
	GoogleServiceAccount string // service account key JSON (inline)
	GoogleServiceFile    string // or a path to it

	// Redis
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold  int           // warn after this many attempts

	// Rate limit on login and fetch-cover
	LoginBurst        int
	LoginRefillPerMin int

	CORSOrigins  []string // optional, browser origins allowed to call /api
	AllowedHosts []string // optional, restrict /api to specific Host headers
	AllowedCIDRS []string // optional, restrict /healthz and /readyz (e.g. "10.0.0.0/8, 1.2.3.4")
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("SHELF_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("SHELF_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("SHELF_REQUEST_TIMEOUT", 10*time.Second),
		HealthInterval:  mustDuration("SHELF_HEALTH_INTERVAL", time.Minute),

		// Logging
		LogLevel:  getenv("SHELF_LOG_LEVEL", "info"),
		PrettyLog: mustBool("SHELF_PRETTY_LOG", true),

		// Auth
		AdminPassword: requireEnv("SHELF_ADMIN_PASSWORD"),
		SessionSecret: requireEnv("SHELF_SESSION_SECRET"),

		// Records
		Store:           strings.ToLower(getenv("SHELF_STORE", StoreSheets)),
		SeedFile:        getenv("SHELF_SEED_FILE", ""),
		DefaultCategory: getenv("SHELF_DEFAULT_CATEGORY", "Book"),
		AutoCover:       mustBool("SHELF_AUTO_COVER", true),
		CoverTimeout:    mustDuration("SHELF_COVER_TIMEOUT", 6*time.Second),

		// Rate limit
		LoginBurst:        getenvInt("SHELF_LOGIN_BURST", 5),
		LoginRefillPerMin: getenvInt("SHELF_LOGIN_REFILL_PER_MIN", 10),

		// Access restrictions
		CORSOrigins:  splitAndTrim(getenv("SHELF_CORS_ORIGINS", "")),
		AllowedHosts: splitAndTrim(getenv("SHELF_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("SHELF_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("SHELF_TRUST_PROXY", true),
	}

	switch cfg.Store {
	case StoreSheets:
		cfg.GoogleSheetID = requireEnv("SHELF_GOOGLE_SHEET_ID")
		cfg.GoogleServiceAccount = getenv("SHELF_GOOGLE_SERVICE_ACCOUNT_KEY", "")
		cfg.GoogleServiceFile = getenv("SHELF_GOOGLE_SERVICE_ACCOUNT_KEY_FILE", "")
		if cfg.GoogleServiceAccount == "" && cfg.GoogleServiceFile == "" {
			panic("❌ FATAL: SHELF_GOOGLE_SERVICE_ACCOUNT_KEY or SHELF_GOOGLE_SERVICE_ACCOUNT_KEY_FILE is required when SHELF_STORE=sheets")
		}
	case StoreRedis:
		cfg.RedisAddr = requireEnv("SHELF_REDIS_ADDR")
		cfg.RedisUser = getenv("SHELF_REDIS_USERNAME", "")
		cfg.RedisPassword = getenv("SHELF_REDIS_PASSWORD", "")
		cfg.RedisDB = getenvInt("SHELF_REDIS_DB", 0)
		cfg.RedisDT = mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second)
		cfg.RedisRT = mustDuration("REDIS_READ_TIMEOUT", 3*time.Second)
		cfg.RedisWT = mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second)
		cfg.RedisMaxWait = mustDuration("REDIS_MAX_WAIT", 10*time.Second)
		cfg.RedisPingTimeout = mustDuration("REDIS_PING_TIMEOUT", 5*time.Second)
		cfg.RedisPoolSize = getenvInt("REDIS_POOL_SIZE", 10)
		cfg.RedisConnectTimeout = mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second)
		cfg.RedisRetryInterval = mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second)
		cfg.RedisWarnThreshold = getenvInt("REDIS_WARN_THRESHOLD", 3)
	case StoreMemory:
	default:
		panic(fmt.Sprintf("❌ FATAL: SHELF_STORE must be %q, %q or %q, got %q", StoreSheets, StoreRedis, StoreMemory, cfg.Store))
	}

	if cfg.LoginBurst <= 0 || cfg.LoginRefillPerMin <= 0 {
		panic("❌ FATAL: SHELF_LOGIN_BURST and SHELF_LOGIN_REFILL_PER_MIN must be > 0")
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.AdminPassword = "***REDACTED***"
		cfgCopy.SessionSecret = "***REDACTED***"
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.GoogleServiceAccount != "" {
			cfgCopy.GoogleServiceAccount = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// ServiceAccountKey returns the Google service account JSON, inline value first.
func (c *Config) ServiceAccountKey() ([]byte, error) {
	if c.GoogleServiceAccount != "" {
		return []byte(c.GoogleServiceAccount), nil
	}
	if c.GoogleServiceFile == "" {
		return nil, fmt.Errorf("no service account key configured")
	}
	data, err := os.ReadFile(c.GoogleServiceFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read service account key: %w", err)
	}
	return data, nil
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
