package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for our application
type Config struct {
	// Server configuration
	Port           string
	GinMode        string
	APIVersion     string
	APIPrefix      string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int

	// Static bearer token guarding booking routes (empty disables the check)
	APIToken string

	// Redis configuration
	Redis RedisConfig

	// Rate limiting
	RateLimit RateLimitConfig

	// Reservation service
	Upstream UpstreamConfig

	// Seat search and booking defaults
	Seats SeatsConfig

	// Booking events
	Kafka KafkaConfig

	// Logging
	LogLevel string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
	Addr     string

	// TTL values for different operations
	BookingGuardTTL time.Duration
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled         bool          `json:"enabled"`
	WindowDuration  time.Duration `json:"window_duration"`
	DefaultRequests int           `json:"default_requests"`
	LookupRequests  int           `json:"lookup_requests"`
	BookingRequests int           `json:"booking_requests"`
	HealthRequests  int           `json:"health_requests"`
	WhitelistedIPs  []string      `json:"whitelisted_ips"`
}

// UpstreamConfig holds reservation service client configuration
type UpstreamConfig struct {
	BaseURL           string
	UserAgent         string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// SeatsConfig holds the seat search and booking defaults
type SeatsConfig struct {
	StructureID      string
	ExcludedTypes    []int
	SeatPattern      string
	FavoriteSeats    []int
	ResourceType     int
	Email            string
	MaxLookupMinutes int
}

// KafkaConfig holds booking event publisher configuration
type KafkaConfig struct {
	Enabled     bool
	Brokers     []string
	BookedTopic string
	GroupID     string
}

// Load loads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		// Server configuration
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		APIVersion:     getEnv("API_VERSION", "v1"),
		APIPrefix:      getEnv("API_PREFIX", "/api"),
		ReadTimeout:    getDurationEnv("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:   getDurationEnv("WRITE_TIMEOUT", 60*time.Second),
		IdleTimeout:    getDurationEnv("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes: getIntEnv("MAX_HEADER_BYTES", 1<<20), // 1 MB
		APIToken:       getEnv("API_TOKEN", ""),

		// Redis configuration
		Redis: RedisConfig{
			Enabled:  getBoolEnv("REDIS_ENABLED", true),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),

			BookingGuardTTL: getDurationEnv("REDIS_BOOKING_GUARD_TTL", 2*time.Minute),
		},

		// Rate limiting
		RateLimit: RateLimitConfig{
			Enabled:         getBoolEnv("RATE_LIMIT_ENABLED", true),
			WindowDuration:  getDurationEnv("RATE_LIMIT_WINDOW_DURATION", 60*time.Second),
			DefaultRequests: getIntEnv("RATE_LIMIT_DEFAULT_REQUESTS", 60),
			LookupRequests:  getIntEnv("RATE_LIMIT_LOOKUP_REQUESTS", 30),
			BookingRequests: getIntEnv("RATE_LIMIT_BOOKING_REQUESTS", 5),
			HealthRequests:  getIntEnv("RATE_LIMIT_HEALTH_REQUESTS", 120),
			WhitelistedIPs:  getStringSliceEnv("RATE_LIMIT_WHITELISTED_IPS", []string{}),
		},

		// Reservation service
		Upstream: UpstreamConfig{
			BaseURL:           getEnv("UPSTREAM_BASE_URL", "https://reservation.affluences.com"),
			UserAgent:         getEnv("UPSTREAM_USER_AGENT", ""),
			Timeout:           getDurationEnv("UPSTREAM_TIMEOUT", 15*time.Second),
			RequestsPerSecond: getFloatEnv("UPSTREAM_REQUESTS_PER_SECOND", 5),
			Burst:             getIntEnv("UPSTREAM_BURST", 2),
		},

		// Seat search and booking defaults
		Seats: SeatsConfig{
			StructureID:      getEnv("STRUCTURE_ID", ""),
			ExcludedTypes:    getIntSliceEnv("EXCLUDED_RESOURCE_TYPES", []int{1, 2860, 4415}), // group rooms, PhD seats, laptops
			SeatPattern:      getEnv("SEAT_PATTERN", "Posto a sedere ([0-9]+)"),
			FavoriteSeats:    getIntSliceEnv("FAVORITE_SEATS", nil),
			ResourceType:     getIntEnv("SEAT_RESOURCE_TYPE", 972),
			Email:            getEnv("BOOKING_EMAIL", ""),
			MaxLookupMinutes: getIntEnv("MAX_LOOKUP_MINUTES", 240),
		},

		// Booking events
		Kafka: KafkaConfig{
			Enabled:     getBoolEnv("KAFKA_ENABLED", false),
			Brokers:     getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
			BookedTopic: getEnv("KAFKA_BOOKED_TOPIC", "seat-booked"),
			GroupID:     getEnv("KAFKA_GROUP_ID", "seatkeeper-booking-feed"),
		},

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	// Build composite values
	cfg.Redis.Addr = cfg.Redis.Host + ":" + cfg.Redis.Port

	return cfg
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getIntEnv gets an integer environment variable with a fallback value
func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return fallback
}

// getFloatEnv gets a float environment variable with a fallback value
func getFloatEnv(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

// getDurationEnv gets a duration environment variable with a fallback value
func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return fallback
}

// getBoolEnv gets a boolean environment variable with a fallback value
func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

// getStringSliceEnv gets a comma-separated string environment variable as a slice
func getStringSliceEnv(key string, fallback []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		var result []string
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}

// getIntSliceEnv gets a comma-separated integer list; any bad entry yields the fallback
func getIntSliceEnv(key string, fallback []int) []int {
	parts := getStringSliceEnv(key, nil)
	if len(parts) == 0 {
		return fallback
	}
	result := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return fallback
		}
		result = append(result, n)
	}
	return result
}

// ParseIntList parses a comma-separated list of integers such as "11,46,47"
func ParseIntList(s string) ([]int, error) {
	var result []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, nil
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return ":" + c.Port
}

// GetAPIBasePath returns the API base path
func (c *Config) GetAPIBasePath() string {
	return c.APIPrefix + "/" + c.APIVersion
}
