package config

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool
	JWTSecret    string
	JWTIssuer    string

	// PostingMaxAttempts bounds the posting engine's retry loop on write
	// conflicts.
	PostingMaxAttempts int

	// RateLimit is a limiter format string like "100-M" (100 requests per minute).
	RateLimit string

	// DisplayCurrency is the ISO 4217 code used to format report amounts.
	DisplayCurrency string

	CORSAllowedOrigins []string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_ISSUER", "stay-ledger-app")
	viper.SetDefault("POSTING_MAX_ATTEMPTS", 3)
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("DISPLAY_CURRENCY", "EUR")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	cfg.PostingMaxAttempts = viper.GetInt("POSTING_MAX_ATTEMPTS")
	if cfg.PostingMaxAttempts <= 0 {
		log.Printf("Warning: Invalid POSTING_MAX_ATTEMPTS (%d). Defaulting to 3.\n", cfg.PostingMaxAttempts)
		cfg.PostingMaxAttempts = 3
	}

	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	cfg.DisplayCurrency = viper.GetString("DISPLAY_CURRENCY")

	origins := viper.GetString("CORS_ALLOWED_ORIGINS")
	for _, origin := range strings.Split(origins, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	return cfg, nil
}
