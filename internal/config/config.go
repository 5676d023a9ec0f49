package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Data      DataConfig
	Portfolio PortfolioConfig
	Quotes    QuotesConfig
	CORS      CORSConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DataConfig holds the location of the transaction feed
type DataConfig struct {
	TransactionsPath string
}

// PortfolioConfig holds portfolio calculation settings
type PortfolioConfig struct {
	BaseCurrency string
}

// QuotesConfig holds quote fetching settings
type QuotesConfig struct {
	TTL time.Duration
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	quoteTTL, err := time.ParseDuration(getEnv("QUOTE_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid QUOTE_TTL: %w", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Data: DataConfig{
			TransactionsPath: getEnv("TRANSACTIONS_PATH", "./data/transactions.csv"),
		},
		Portfolio: PortfolioConfig{
			BaseCurrency: strings.ToUpper(getEnv("BASE_CURRENCY", "USD")),
		},
		Quotes: QuotesConfig{
			TTL: quoteTTL,
		},
		CORS: CORSConfig{
			AllowedOrigins: strings.Split(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost"), ","),
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
