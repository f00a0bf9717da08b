package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

type Config struct {
	Port           string
	Store          string
	MongoURI       string
	DBName         string
	SecretKey      string
	SessionSecret  string
	MollieAPIKey   string
	MollieBaseURL  string
	AppURL         string
	AllowedOrigins []string
	RestaurantName string
	Location       *time.Location
}

// LoadEnv reads .env when present. A missing file is not an error.
func LoadEnv(path string) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Printf("%s file does not exist, using process environment", path)
		return
	}
	if err := godotenv.Load(path); err != nil {
		log.Printf("Error loading %s file: %v", path, err)
	}
}

// Load builds the configuration from the environment.
func Load() (Config, error) {
	cfg := Config{
		Port:           getEnvOrDefault("PORT", "8000"),
		Store:          getEnvOrDefault("STORE", StoreMongo),
		MongoURI:       getEnvOrDefault("DB", "mongodb://localhost:27017"),
		DBName:         getEnvOrDefault("DB_NAME", "restaurant"),
		SecretKey:      os.Getenv("SECRET_KEY"),
		SessionSecret:  getEnvOrDefault("SESSION_SECRET", "change-me"),
		MollieAPIKey:   os.Getenv("MOLLIE_API_KEY"),
		MollieBaseURL:  getEnvOrDefault("MOLLIE_BASE_URL", "https://api.mollie.com/v2"),
		AppURL:         strings.TrimRight(os.Getenv("APP_URL"), "/"),
		AllowedOrigins: splitList(getEnvOrDefault("ALLOWED_ORIGINS", "http://localhost:3000")),
		RestaurantName: getEnvOrDefault("RESTAURANT_NAME", "La Pizza Zevenaar"),
	}

	loc, err := time.LoadLocation(getEnvOrDefault("TIMEZONE", "Europe/Amsterdam"))
	if err != nil {
		return cfg, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	cfg.Location = loc

	switch cfg.Store {
	case StoreMongo:
		if cfg.SecretKey == "" {
			return cfg, errors.New("SECRET_KEY is not set in the environment variables")
		}
	case StoreMemory:
		if cfg.SecretKey == "" {
			cfg.SecretKey = "dev-secret"
		}
	default:
		return cfg, fmt.Errorf("unknown STORE %q, expected %s or %s", cfg.Store, StoreMongo, StoreMemory)
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
