// Package config loads the service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/markjakearzadon/trashmate-gobackend/internal/pricing"
)

// CompletionPolicy decides who may complete a pickup request and from which state.
type CompletionPolicy string

const (
	// CompletionStrict allows only the assigned collector to complete an assigned request.
	CompletionStrict CompletionPolicy = "strict"
	// CompletionLenient lets any collector complete a pending or assigned request.
	CompletionLenient CompletionPolicy = "lenient"
)

// Config holds the values for the application. It is built once and not
// mutated afterwards.
type Config struct {
	Port     int
	MongoURI string
	MongoDB  string

	JWTSecret string
	TokenTTL  time.Duration

	StripeSecretKey string
	StripeBaseURL   string
	Currency        string

	CompletionPolicy CompletionPolicy
	InvoiceWindow    int
	Tariff           pricing.Tariff
	InvoiceRates     pricing.RateTable

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	Photos struct {
		Bucket string
		Region string
		URLTTL time.Duration
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load reads .env (if present) and the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Error loading .env: %s", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(k, def string) string {
		if v := getenv(k); v != "" {
			return v
		}
		return def
	}

	var cfg Config
	var err error

	if cfg.Port, err = strconv.Atoi(get("PORT", "8080")); err != nil {
		return Config{}, errors.New("invalid PORT env variable")
	}

	cfg.MongoURI = getenv("MONGOURI")
	if cfg.MongoURI == "" {
		return Config{}, errors.New("MONGOURI environment variable not set")
	}
	cfg.MongoDB = get("MONGO_DB", "wastecollect")

	cfg.JWTSecret = getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET required")
	}
	if cfg.TokenTTL, err = time.ParseDuration(get("TOKEN_TTL", "1h")); err != nil || cfg.TokenTTL <= 0 {
		return Config{}, fmt.Errorf("invalid TOKEN_TTL %q", getenv("TOKEN_TTL"))
	}

	cfg.StripeSecretKey = getenv("STRIPE_SECRET_KEY")
	if cfg.StripeSecretKey == "" {
		return Config{}, errors.New("STRIPE_SECRET_KEY required")
	}
	cfg.StripeBaseURL = get("STRIPE_BASE_URL", "https://api.stripe.com")
	cfg.Currency = get("PAYMENT_CURRENCY", "lkr")

	cfg.CompletionPolicy = CompletionPolicy(get("COMPLETION_POLICY", string(CompletionStrict)))
	if cfg.CompletionPolicy != CompletionStrict && cfg.CompletionPolicy != CompletionLenient {
		return Config{}, fmt.Errorf("invalid COMPLETION_POLICY %q, must be strict or lenient", cfg.CompletionPolicy)
	}
	if cfg.InvoiceWindow, err = strconv.Atoi(get("INVOICE_WINDOW", "4")); err != nil || cfg.InvoiceWindow < 1 {
		return Config{}, errors.New("invalid INVOICE_WINDOW env variable")
	}
	cfg.Tariff = pricing.DefaultTariff()
	cfg.InvoiceRates = pricing.DefaultInvoiceRates()

	cfg.Redis.Addr = getenv("REDIS_ADDR")
	cfg.Redis.Password = getenv("REDIS_PASSWORD")
	if cfg.Redis.DB, err = strconv.Atoi(get("REDIS_DB", "0")); err != nil {
		return Config{}, errors.New("invalid REDIS_DB env variable")
	}

	cfg.Photos.Bucket = getenv("S3_BUCKET")
	cfg.Photos.Region = get("AWS_REGION", "us-east-1")
	if cfg.Photos.URLTTL, err = time.ParseDuration(get("PHOTO_URL_TTL", "5m")); err != nil {
		return Config{}, fmt.Errorf("invalid PHOTO_URL_TTL %q", getenv("PHOTO_URL_TTL"))
	}

	cfg.Log.Level = get("LOG_LEVEL", "info")
	cfg.Log.Format = get("LOG_FORMAT", "json")

	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return "0.0.0.0:" + strconv.Itoa(c.Port)
}
