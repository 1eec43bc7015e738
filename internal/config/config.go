package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	AppEnv string
	Port   string

	DBDriver   string
	PGHost     string
	PGPort     string
	PGUser     string
	PGPassword string
	PGDB       string
	PGSSLMode  string
	SQLitePath string

	CacheBackend      string
	CacheWarmInterval time.Duration
	RedisHost         string
	RedisPort         string
	RedisPassword     string
	RedisDB           int

	AdminJWTSecret string

	SQLMaxRows   int
	SQLTimeout   time.Duration
	SQLRatePerS  float64
	SQLRateBurst int

	CORSOrigins []string
	DataDir     string
}

// Load reads the .env file (if any) and returns a populated Config.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		AppEnv: getEnv("APP_ENV", "development"),
		Port:   getEnv("PORT", "8080"),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
		PGHost:     getEnv("PG_HOST", "localhost"),
		PGPort:     getEnv("PG_PORT", "5432"),
		PGUser:     getEnv("PG_USER", "statboard"),
		PGPassword: getEnv("PG_PASSWORD", ""),
		PGDB:       getEnv("PG_DB", "airtraffic"),
		PGSSLMode:  getEnv("PG_SSLMODE", "disable"),
		SQLitePath: getEnv("SQLITE_PATH", "airtraffic.db"),

		CacheBackend:      strings.ToLower(getEnv("CACHE_BACKEND", CacheMemory)),
		CacheWarmInterval: time.Duration(getEnvInt("CACHE_WARM_MINUTES", 30)) * time.Minute,
		RedisHost:         getEnv("REDIS_HOST", "localhost"),
		RedisPort:         getEnv("REDIS_PORT", "6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           getEnvInt("REDIS_DB", 0),

		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),

		SQLMaxRows:   getEnvInt("SQL_MAX_ROWS", 1000),
		SQLTimeout:   time.Duration(getEnvInt("SQL_TIMEOUT_MS", 5000)) * time.Millisecond,
		SQLRatePerS:  getEnvFloat("SQL_RATE_PER_SEC", 1),
		SQLRateBurst: getEnvInt("SQL_RATE_BURST", 5),

		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:8081")),
		DataDir:     getEnv("DATA_DIR", "./data"),
	}
}

// PostgresDSN returns the PostgreSQL connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDB, c.PGSSLMode)
}

// RedisAddr returns host:port for the Redis client.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return f
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
