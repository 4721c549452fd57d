package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application's configuration values.
type Config struct {
	HostIP         string        // Host IP for the server
	RESTPort       int           // Port for the REST API
	DBHost         string        // Hostname or IP address for the database
	DBPort         int           // Port number for the database
	DBUser         string        // Username for the database
	DBPassword     string        // Password for the database
	DBName         string        // Name of the database
	RedisAddr      string        // Address of the Redis server holding the leaderboard
	RedisPassword  string        // Password for the Redis server
	LeaderboardTTL time.Duration // How long a leaderboard entry is kept
	GinMode        string        // Mode for the Gin framework (e.g., release, debug, test)
	JWTSecret      string        // Secret key for JWT signing
	JWTIssuer      string        // Issuer claim for JWTs
	TickInterval   time.Duration // Pause between simulation ticks
	MaxTicks       int           // Hard stop for a simulation session
	Retention      time.Duration // How long a finished session stays readable
	MaxGridSide    int           // Largest accepted grid width or height
	MaxAgents      int           // Largest accepted agent count per session
	LogLevel       string        // Minimum log level: debug, info, warn, error
}

// Envs holds the application's configuration loaded from environment variables.
var Envs = initConfig()

// initConfig initializes and returns the application configuration.
// It loads environment variables from a .env file.
func initConfig() Config {
	// Load .env file if available
	if err := godotenv.Load(); err != nil {
		log.Printf("[APP] [INFO] .env file not found or could not be loaded: %v", err)
	}

	// Populate the Config struct with required environment variables
	return Config{
		DBHost:         mustGetEnv("DB_HOST"),
		DBPort:         mustGetEnvAsInt("DB_PORT"),
		DBUser:         mustGetEnv("DB_USER"),
		DBPassword:     mustGetEnv("DB_PASS"),
		DBName:         mustGetEnv("DB_NAME"),
		RedisAddr:      getEnvWithDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnvWithDefault("REDIS_PASSWORD", ""),
		LeaderboardTTL: getEnvAsDurationWithDefault("LEADERBOARD_TTL", 24*time.Hour),
		GinMode:        getEnvWithDefault("GIN_MODE", "release"),
		JWTSecret:      mustGetEnv("JWT_SECRET"),
		JWTIssuer:      mustGetEnv("JWT_ISSUER"),
		HostIP:         mustGetEnv("HOST_IP"),
		RESTPort:       mustGetEnvAsInt("REST_PORT"),
		TickInterval:   getEnvAsDurationWithDefault("TICK_INTERVAL", 200*time.Millisecond),
		MaxTicks:       getEnvAsIntWithDefault("MAX_TICKS", 10000),
		Retention:      getEnvAsDurationWithDefault("SESSION_RETENTION", 5*time.Minute),
		MaxGridSide:    getEnvAsIntWithDefault("MAX_GRID_SIDE", 128),
		MaxAgents:      getEnvAsIntWithDefault("MAX_AGENTS", 64),
		LogLevel:       getEnvWithDefault("LOG_LEVEL", "info"),
	}
}

// mustGetEnv retrieves the value of an environment variable or logs a fatal error if not set.
func mustGetEnv(key string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		log.Fatalf("[APP] [FATAL] Environment variable %s is not set", key)
	}
	return value
}

// mustGetEnvAsInt retrieves the value of an environment variable as an integer or logs a fatal error if not set or cannot be parsed.
func mustGetEnvAsInt(key string) int {
	valueStr := mustGetEnv(key)
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Fatalf("[APP] [FATAL] Environment variable %s must be an integer: %v", key, err)
	}
	return value
}

// getEnvWithDefault retrieves the value of an environment variable or returns a default value if not set.
func getEnvWithDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsIntWithDefault(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Fatalf("[APP] [FATAL] Environment variable %s must be an integer: %v", key, err)
	}
	return value
}

// getEnvAsDurationWithDefault parses values such as "250ms" or "24h".
func getEnvAsDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Fatalf("[APP] [FATAL] Environment variable %s must be a duration: %v", key, err)
	}
	return value
}
