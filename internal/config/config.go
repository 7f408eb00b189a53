package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App struct {
		ENV string
	}

	Log struct {
		Level     string
		Format    string
		Component string
		Source    bool
	}

	DB struct {
		Driver   string
		DSN      string
		Host     string
		Port     string
		User     string
		Password string
		Name     string
		LogSQL   bool
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	HTTP struct {
		Host            string
		Port            string
		AllowedOrigins  []string
		ShutdownTimeout time.Duration
	}

	Auth struct {
		Secret     string
		TokenTTL   time.Duration
		BcryptCost int
	}
}

// New builds the configuration from the environment. A .env file in the
// working directory is loaded first when present; real env vars win.
func New() *Config {
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.App.ENV = getEnvDefault("APP_ENV", "development")

	// Logger
	cfg.Log.Level = getEnvDefault("LOG_LEVEL", "info")
	cfg.Log.Format = getEnvDefault("LOG_FORMAT", "text")
	cfg.Log.Component = getEnvDefault("LOG_COMPONENT", "http_server")
	cfg.Log.Source = isTruthy(os.Getenv("LOG_SOURCE"))

	// Database
	cfg.DB.Driver = strings.ToLower(getEnvDefault("DB_DRIVER", "postgres"))
	cfg.DB.LogSQL = isTruthy(os.Getenv("DB_LOG_SQL"))
	cfg.DB.DSN = os.Getenv("DB_DSN")
	if cfg.DB.DSN == "" {
		cfg.DB.Host = getEnvDefault("DB_HOST", "localhost")
		cfg.DB.Port = getEnvDefault("DB_PORT", defaultPort(cfg.DB.Driver))
		cfg.DB.User = getEnvDefault("DB_USER", "postgres")
		cfg.DB.Password = getEnvDefault("DB_PASSWORD", "postgres")
		cfg.DB.Name = getEnvDefault("DB_NAME", "udinder")
		cfg.DB.DSN = buildDSN(cfg)
	}

	// Redis (empty address disables event publishing)
	cfg.Redis.Addr = strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	cfg.Redis.Password = getEnvDefault("REDIS_PASSWORD", "")
	if dbStr := getEnvDefault("REDIS_DB", "0"); dbStr != "" {
		if dbInt, err := strconv.Atoi(dbStr); err == nil {
			cfg.Redis.DB = dbInt
		}
	}

	// HTTP
	cfg.HTTP.Host = getEnvDefault("HTTP_HOST", "0.0.0.0")
	cfg.HTTP.Port = getEnvDefault("HTTP_PORT", "8000")
	cfg.HTTP.AllowedOrigins = splitList(getEnvDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5500"))
	cfg.HTTP.ShutdownTimeout = getDurationDefault("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second)

	// Auth
	cfg.Auth.Secret = getEnvDefault("JWT_SECRET", "udinder-dev-secret")
	cfg.Auth.TokenTTL = getDurationDefault("JWT_TTL", 30*time.Minute)
	cfg.Auth.BcryptCost = getIntDefault("BCRYPT_COST", 10)

	return cfg
}

// Addr returns host:port for the HTTP listener.
func (c *Config) Addr() string {
	return c.HTTP.Host + ":" + c.HTTP.Port
}

func buildDSN(cfg *Config) string {
	switch cfg.DB.Driver {
	case "mysql":
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
			cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name,
		)
	case "sqlite":
		return cfg.DB.Name + ".db"
	default:
		return fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name,
		)
	}
}

func defaultPort(driver string) string {
	if driver == "mysql" {
		return "3306"
	}
	return "5432"
}

func getEnvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getIntDefault(k string, def int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(k))); err == nil {
		return v
	}
	return def
}

func getDurationDefault(k string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(strings.TrimSpace(os.Getenv(k))); err == nil && d > 0 {
		return d
	}
	return def
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
