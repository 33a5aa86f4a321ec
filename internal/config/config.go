package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// DevJWTSecret signs tokens when JWT_SECRET is unset outside production.
const DevJWTSecret = "shophub-dev-secret-change-me"

var AppEnv Config

type Config struct {
	Env                string
	Port               string
	MongoURI           string
	DBName             string
	StoreDriver        string
	JWTSecret          string
	TokenTTL           time.Duration
	PlatformFee        decimal.Decimal
	LoginRatePerMinute int
	LogLevel           string
	TemplatesGlob      string
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "dev" || c.Env == "test"
}

func (c Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// UsingDevSecret reports whether tokens are signed with the built-in key.
func (c Config) UsingDevSecret() bool {
	return c.JWTSecret == DevJWTSecret
}

func Load() error {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	cfg, err := FromEnv()
	if err != nil {
		return err
	}
	AppEnv = cfg
	return nil
}

// FromEnv builds a Config from the process environment without touching .env files.
func FromEnv() (Config, error) {
	cfg := Config{
		Env:                strings.ToLower(getEnvOrDefault("APP_ENV", "development")),
		Port:               getEnvOrDefault("PORT", "3000"),
		MongoURI:           getEnvOrDefault("MONGO_URI", "mongodb://127.0.0.1:27017"),
		DBName:             getEnvOrDefault("DB_NAME", "ecommerce"),
		StoreDriver:        strings.ToLower(getEnvOrDefault("STORE_DRIVER", "mongo")),
		JWTSecret:          getEnvOrDefault("JWT_SECRET", ""),
		TokenTTL:           getDurationEnv("TOKEN_TTL_HOURS", 24, time.Hour),
		PlatformFee:        getDecimalEnv("PLATFORM_FEE", decimal.NewFromInt(20)),
		LoginRatePerMinute: getIntEnv("LOGIN_RATE_PER_MINUTE", 10),
		LogLevel:           getEnvOrDefault("LOG_LEVEL", ""),
		TemplatesGlob:      getEnvOrDefault("TEMPLATES_GLOB", "templates/*.html"),
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return Config{}, errors.New("JWT_SECRET is required in production")
		}
		cfg.JWTSecret = DevJWTSecret
	}

	switch cfg.StoreDriver {
	case "mongo", "memory":
	default:
		return Config{}, errors.New("STORE_DRIVER must be mongo or memory")
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	return time.Duration(getIntEnv(key, defaultValue)) * unit
}

func getDecimalEnv(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := decimal.NewFromString(value); err == nil && !parsed.IsNegative() {
			return parsed
		}
	}
	return defaultValue
}
