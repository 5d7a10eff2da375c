package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	BaseURL     string // Public base URL used to build short links
	RedisURL    string
	JWTSecret   string // Secret key for JWT token signing
	JWTTTL      int    // JWT token expiration time in hours

	RateLimitRPS           float64 // Rate limit for general API endpoints (requests per second)
	RateLimitBurst         int     // Burst size for rate limiting
	RateLimitAuthRPS       float64 // Rate limit for auth endpoints (stricter)
	RateLimitAuthBurst     int     // Burst size for auth endpoints
	RateLimitGenerateRPS   float64 // Rate limit for URL generation (stricter)
	RateLimitGenerateBurst int     // Burst size for URL generation

	GeoAPIURL         string // ipwho.is-style lookup endpoint
	GeoMockPrivateIPs bool   // Map loopback/private IPs to a fixed mock pool (demo behavior)
	ClickQueueSize    int    // Buffer size of the background click sink
	ClickWorkers      int    // Number of click sink workers
	DefaultCredits    int    // Generation credits granted on registration
}

func Load() *Config {
	// Try to load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or defaults")
	}

	return &Config{
		DatabaseURL: getEnv("DATABASE_URL", ""),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
		RedisURL:    getEnv("REDIS_URL", ""),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		JWTTTL:      getEnvInt("JWT_TTL_HOURS", 24),

		RateLimitRPS:           getEnvFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:         getEnvInt("RATE_LIMIT_BURST", 20),
		RateLimitAuthRPS:       getEnvFloat("RATE_LIMIT_AUTH_RPS", 5),
		RateLimitAuthBurst:     getEnvInt("RATE_LIMIT_AUTH_BURST", 10),
		RateLimitGenerateRPS:   getEnvFloat("RATE_LIMIT_GENERATE_RPS", 2),
		RateLimitGenerateBurst: getEnvInt("RATE_LIMIT_GENERATE_BURST", 5),

		GeoAPIURL:         getEnv("GEO_API_URL", "https://ipwho.is/"),
		GeoMockPrivateIPs: getEnvBool("GEO_MOCK_PRIVATE_IPS", true),
		ClickQueueSize:    getEnvInt("CLICK_QUEUE_SIZE", 1024),
		ClickWorkers:      getEnvInt("CLICK_WORKERS", 2),
		DefaultCredits:    getEnvInt("DEFAULT_CREDITS", 10),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
