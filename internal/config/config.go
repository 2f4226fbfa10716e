package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Port        int
	LogLevel    string
	LogFormat   string
	Environment string
	DBUser      string
	DBPassword  string
	DBHost      string
	DBPort      string
	DBName      string
	CatalogFile string

	// APIKey guards every non-public route.
	APIKey string
	// TrustedProxies are peer IPs whose X-Forwarded-For header is honored.
	TrustedProxies []string

	// RewardCooldown is the minimum gap between qualifying reward rolls
	// for a single user.
	RewardCooldown time.Duration
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:    getEnv("LOG_LEVEL", "INFO"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),
		Environment: getEnv("ENVIRONMENT", "dev"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  getEnv("DB_PASSWORD", "postgres"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBName:      getEnv("DB_NAME", "dropforge"),
		CatalogFile: getEnv("CATALOG_FILE", "configs/catalog.json"),
		APIKey:      getEnv("API_KEY", ""),
	}

	if proxies := getEnv("TRUSTED_PROXIES", ""); proxies != "" {
		for _, p := range strings.Split(proxies, ",") {
			cfg.TrustedProxies = append(cfg.TrustedProxies, strings.TrimSpace(p))
		}
	}

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT value: %w", err)
	}
	cfg.Port = port

	cooldownStr := getEnv("REWARD_COOLDOWN", "24h")
	cooldown, err := time.ParseDuration(cooldownStr)
	if err != nil {
		return nil, fmt.Errorf("invalid REWARD_COOLDOWN value: %w", err)
	}
	cfg.RewardCooldown = cooldown

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// GetDBConnString returns the PostgreSQL connection string
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}
