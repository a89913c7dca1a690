package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	ListenAddr string

	SoapEndpoint     string
	SoapCacheTTL     time.Duration
	SoapRateLimit    int
	SoapRateWindow   time.Duration
	RateSweepPeriod  time.Duration
	CleanupInterval  time.Duration
	CleanupThreshold int

	ResourceFreshness  time.Duration
	SchematicFreshness time.Duration

	HTTPRateLimit  int
	HTTPRateWindow time.Duration

	MailBucket  string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string

	PostgresUser     string
	PostgresPassword string
	PostgresHost     string
	PostgresPort     string
	PostgresDatabase string
	PostgresSSLMode  string
}

func Load() *Config {
	return &Config{
		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),

		SoapEndpoint:     mustGetEnv("SOAP_ENDPOINT"),
		SoapCacheTTL:     getEnvDuration("SOAP_CACHE_TTL", 24*time.Hour),
		SoapRateLimit:    getEnvInt("SOAP_RATE_LIMIT", 60),
		SoapRateWindow:   getEnvDuration("SOAP_RATE_WINDOW", time.Minute),
		RateSweepPeriod:  getEnvDuration("RATE_SWEEP_PERIOD", 5*time.Minute),
		CleanupInterval:  getEnvDuration("CACHE_CLEANUP_INTERVAL", time.Hour),
		CleanupThreshold: getEnvInt("CACHE_CLEANUP_THRESHOLD", 10),

		ResourceFreshness:  getEnvDuration("RESOURCE_FRESHNESS", 6*time.Hour),
		SchematicFreshness: getEnvDuration("SCHEMATIC_FRESHNESS", 24*time.Hour),

		HTTPRateLimit:  getEnvInt("HTTP_RATE_LIMIT", 100),
		HTTPRateWindow: getEnvDuration("HTTP_RATE_WINDOW", time.Minute),

		MailBucket:  getEnv("MAIL_BUCKET", "craft-tracker-mail"),
		S3Region:    getEnv("AWS_REGION", "us-east-1"),
		S3Endpoint:  getEnv("S3_ENDPOINT", ""),
		S3AccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
		S3SecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),

		PostgresUser:     getEnv("POSTGRES_USER", "tracker"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "password"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresDatabase: getEnv("POSTGRES_DATABASE", "craft_tracker"),
		PostgresSSLMode:  getEnv("POSTGRES_SSL_MODE", "disable"),
	}
}

func mustGetEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		panic("Missing required environment variable: " + key)
	}
	return value
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
