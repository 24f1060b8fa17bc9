package app

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	BootstrapToken string // Optional: token required to perform bootstrap

	DatabaseFile        string        // Optional: path to SQLite database file (default: ./warden.db)
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)

	// Identity provider selection: "gip" verifies Google Identity
	// Platform tokens, "dev" runs the in-memory provider.
	IdentityProvider string
	GIPProjectID     string // Required in gip mode
	GIPAPIKey        string // Required in gip mode

	// Lockout policy knobs.
	MaxFailedAttempts int           // Failures before a timed lock (default: 2)
	LockDuration      time.Duration // Timed lock length (default: 1m)
	MaxLockoutsPerDay int           // Lock episodes before admin unlock required (default: 3)

	DefaultRoleName           string // Role assigned on self-service signup (default: user)
	AllowImplicitRoleCreation bool   // Create unknown roles referenced by user writes (default: false)

	HousekeepingInterval time.Duration // Sweep interval (default: 1m)
	DeletedUserRetention time.Duration // Soft-deleted rows kept this long (default: 30 days)
}

func LoadConfig() Config {
	// A .env file is a development convenience; missing is fine.
	_ = godotenv.Load()

	return Config{
		BootstrapToken: os.Getenv("BOOTSTRAP_TOKEN"),

		DatabaseFile:        getEnvOrDefault("WARDEN_DATABASE_FILE", "warden.db"),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),

		IdentityProvider: getEnvOrDefault("WARDEN_IDENTITY_PROVIDER", "gip"),
		GIPProjectID:     os.Getenv("WARDEN_GIP_PROJECT_ID"),
		GIPAPIKey:        os.Getenv("WARDEN_GIP_API_KEY"),

		MaxFailedAttempts: getEnvIntOrDefault("WARDEN_MAX_FAILED_ATTEMPTS", 2),
		LockDuration:      getEnvDurationOrDefault("WARDEN_LOCK_DURATION", time.Minute),
		MaxLockoutsPerDay: getEnvIntOrDefault("WARDEN_MAX_LOCKOUTS_PER_DAY", 3),

		DefaultRoleName:           getEnvOrDefault("WARDEN_DEFAULT_ROLE", "user"),
		AllowImplicitRoleCreation: getEnvBoolOrDefault("WARDEN_ALLOW_IMPLICIT_ROLES", false),

		HousekeepingInterval: getEnvDurationOrDefault("WARDEN_HOUSEKEEPING_INTERVAL", time.Minute),
		DeletedUserRetention: getEnvDurationOrDefault("WARDEN_DELETED_USER_RETENTION", 30*24*time.Hour),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
