package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIBaseURL string

	RefreshInterval          time.Duration
	ApprovalsRefreshInterval time.Duration
	DedupeWindow             time.Duration
	RetryCount               int
	PrefetchDelay            time.Duration

	CacheBackend string
	RedisURL     string
	CachePrefix  string
	CacheTTL     time.Duration

	// mock API server settings
	Port           string
	JWTSecret      string
	JWTExpiry      string
	AllowedOrigins []string
}

func Load() *Config {
	// load .env variables; absence is fine, the defaults below carry us
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Error loading .env file: %v", err)
	}

	baseURL := os.Getenv("API_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:5173"
	}

	backend := os.Getenv("CACHE_BACKEND")
	if backend == "" {
		backend = "memory"
	}

	return &Config{
		APIBaseURL:               baseURL,
		RefreshInterval:          durationEnv("REFRESH_INTERVAL", 60*time.Second),
		ApprovalsRefreshInterval: durationEnv("APPROVALS_REFRESH_INTERVAL", 10*time.Second),
		DedupeWindow:             durationEnv("DEDUPE_WINDOW", 2*time.Second),
		RetryCount:               intEnv("RETRY_COUNT", 2),
		PrefetchDelay:            durationEnv("PREFETCH_DELAY", 150*time.Millisecond),
		CacheBackend:             backend,
		RedisURL:                 os.Getenv("REDIS_URL"),
		CachePrefix:              envOr("CACHE_PREFIX", "leave:"),
		CacheTTL:                 durationEnv("CACHE_TTL", 10*time.Minute),
		Port:                     port,
		JWTSecret:                os.Getenv("JWT_SECRET"),
		JWTExpiry:                os.Getenv("JWT_EXPIRY"),
		AllowedOrigins:           strings.Split(allowedOrigins, ","),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("Invalid duration for %s: %v, using %s", key, err, fallback)
		return fallback
	}
	return d
}

func intEnv(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Invalid integer for %s: %v, using %d", key, err, fallback)
		return fallback
	}
	return n
}
