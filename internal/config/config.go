package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates every tunable part of the application.
type Config struct {
	App     AppConfig
	DB      DBConfig
	Log     LogConfig
	Auth    AuthConfig
	Billing BillingConfig
	Swagger SwaggerConfig
}

// AppConfig contains settings related to the HTTP server.
type AppConfig struct {
	Port    string
	Env     string
	BaseURL string
}

// DBConfig represents PostgreSQL connection settings.
type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN builds the postgres connection string from the individual fields.
func (db DBConfig) DSN() string {
	host := db.Host
	if host == "" {
		host = "localhost"
	}

	port := db.Port
	if port == "" {
		port = "5432"
	}

	sslMode := db.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		db.User,
		db.Password,
		host,
		port,
		db.Name,
		sslMode,
	)
}

// LogConfig controls logger behavior.
type LogConfig struct {
	Level string
}

// AuthConfig holds the key used to verify bearer tokens issued by the
// identity provider.
type AuthConfig struct {
	JWTSecret string
}

// BillingConfig configures the Stripe integration.
type BillingConfig struct {
	SecretKey  string
	BaseURL    string
	PriceID    string
	SuccessURL string
	CancelURL  string
	Timeout    time.Duration
}

// SwaggerConfig configures the generated documentation.
type SwaggerConfig struct {
	Host string
}

// Load reads environment variables and validates the final configuration.
func Load() (Config, error) {
	cfg := Config{
		App: AppConfig{
			Port:    getEnv("APP_PORT", "8080"),
			Env:     getEnv("APP_ENV", "dev"),
			BaseURL: getEnv("APP_BASE_URL", "http://localhost:8080"),
		},
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", ""),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", ""),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Log: LogConfig{
			Level: strings.ToLower(getEnv("LOG_LEVEL", "info")),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("AUTH_JWT_SECRET", ""),
		},
		Billing: BillingConfig{
			SecretKey:  getEnv("STRIPE_SECRET_KEY", ""),
			BaseURL:    getEnv("STRIPE_BASE_URL", "https://api.stripe.com"),
			PriceID:    getEnv("STRIPE_PRICE_ID", ""),
			SuccessURL: getEnv("STRIPE_SUCCESS_URL", ""),
			CancelURL:  getEnv("STRIPE_CANCEL_URL", ""),
			Timeout:    getEnvDuration("STRIPE_TIMEOUT", 10*time.Second),
		},
		Swagger: SwaggerConfig{
			Host: getEnv("SWAGGER_HOST", ""),
		},
	}

	if cfg.Swagger.Host == "" {
		cfg.Swagger.Host = fmt.Sprintf("localhost:%s", cfg.App.Port)
	}
	if cfg.Billing.SuccessURL == "" {
		cfg.Billing.SuccessURL = cfg.App.BaseURL + "/payments?checkout=success"
	}
	if cfg.Billing.CancelURL == "" {
		cfg.Billing.CancelURL = cfg.App.BaseURL + "/payments?checkout=cancelled"
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (cfg Config) validate() error {
	var missing []string

	if cfg.DB.User == "" {
		missing = append(missing, "DB_USER")
	}
	if cfg.DB.Password == "" {
		missing = append(missing, "DB_PASSWORD")
	}
	if cfg.DB.Name == "" {
		missing = append(missing, "DB_NAME")
	}
	if cfg.Auth.JWTSecret == "" {
		missing = append(missing, "AUTH_JWT_SECRET")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	return nil
}

func getEnv(key, fallback string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	return value
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
