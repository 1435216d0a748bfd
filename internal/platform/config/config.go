package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string

	// DatabaseURL is optional; stores fall back to memory when empty.
	DatabaseURL string

	Redis RedisConfig
	Geo   GeoConfig
	Kafka KafkaConfig

	// NotFoundURL is where unresolved slugs are redirected. Unknown and
	// disabled slugs must be indistinguishable, so both land here.
	NotFoundURL string

	RateLimit RateLimitConfig
}

// RateLimitConfig tunes the per-IP fixed window applied to public routes.
type RateLimitConfig struct {
	Window      time.Duration
	MaxRequests int
	Disabled    bool
}

// RedisConfig tunes the optional shared cache used by the geo cache and
// rate limiter when running more than one instance.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// GeoConfig configures the outbound IP-to-country lookup.
type GeoConfig struct {
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// KafkaConfig configures the optional click-event stream. Empty brokers
// disable publishing entirely.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr:          envOr("LINKDECK_ADDR", ":8080"),
		JWTSigningKey: envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Geo: GeoConfig{
			BaseURL:  envOr("GEO_LOOKUP_URL", "https://ipapi.co"),
			Timeout:  envDuration("GEO_LOOKUP_TIMEOUT", 2*time.Second),
			CacheTTL: envDuration("GEO_CACHE_TTL", 24*time.Hour),
		},
		Kafka: KafkaConfig{
			Brokers: splitNonEmpty(os.Getenv("KAFKA_BROKERS")),
			Topic:   envOr("KAFKA_CLICK_TOPIC", "linkdeck.clicks"),
		},
		NotFoundURL: envOr("NOT_FOUND_URL", "/404"),
		RateLimit: RateLimitConfig{
			Window:      envDuration("RATE_LIMIT_WINDOW", time.Minute),
			MaxRequests: envInt("RATE_LIMIT_MAX_REQUESTS", 120),
			Disabled:    os.Getenv("RATE_LIMIT_DISABLED") == "true",
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
