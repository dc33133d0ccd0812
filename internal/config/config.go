package config

import (
	"crypto/rsa"
	"log"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rithick-11/food-recommendation-system/internal/adapters/repository"
	"github.com/rithick-11/food-recommendation-system/internal/core/services"
)

// PlaceholderGeminiKey is the value shipped in example env files; it counts as no key
const PlaceholderGeminiKey = "your-gemini-api-key-here"

// Config holds all configuration for the meal plan service
type Config struct {
	// JWT configuration - public key from the identity service
	JWTPublicKey *rsa.PublicKey

	// Database configuration
	DatabaseURL string
	AutoMigrate bool

	// RabbitMQ configuration; an empty URL disables messaging
	RabbitMQURL         string
	AccountQueueName    string
	MealPlanEventsQueue string

	// Server configuration
	Port   string
	AppEnv string

	// Generation backend
	Gemini     repository.GeminiConfig
	Generation services.BackendConfig
}

// Load reads configuration from environment variables
// Public key is loaded from /etc/identity/public.pem (mounted via ConfigMap)
func Load() *Config {
	publicKeyPath := os.Getenv("PUBLIC_KEY_PATH")
	if publicKeyPath == "" {
		publicKeyPath = "/etc/identity/public.pem"
	}
	publicKey, err := loadPublicKey(publicKeyPath)
	if err != nil {
		panic("Failed to load public key: " + err.Error())
	}

	dbURL := DatabaseURL()
	if dbURL == "" {
		panic("DB_CONNECTION_STRING environment variable is required")
	}

	accountQueue := os.Getenv("ACCOUNT_QUEUE_NAME")
	if accountQueue == "" {
		accountQueue = "accounts.registered"
	}

	eventsQueue := os.Getenv("MEALPLAN_EVENTS_QUEUE_NAME")
	if eventsQueue == "" {
		eventsQueue = "meal_plan_events"
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "production"
	}

	gemini := geminiFromEnv()

	return &Config{
		JWTPublicKey:        publicKey,
		DatabaseURL:         dbURL,
		AutoMigrate:         os.Getenv("AUTO_MIGRATE") == "true",
		RabbitMQURL:         os.Getenv("RABBITMQ_URL"),
		AccountQueueName:    accountQueue,
		MealPlanEventsQueue: eventsQueue,
		Port:                port,
		AppEnv:              appEnv,
		Gemini:              gemini,
		Generation:          generationFromEnv(appEnv, gemini.APIKey),
	}
}

// DatabaseURL returns DB_CONNECTION_STRING, shared by the API and the migrate binary
func DatabaseURL() string {
	return os.Getenv("DB_CONNECTION_STRING")
}

func geminiFromEnv() repository.GeminiConfig {
	cfg := repository.GeminiConfig{
		APIKey:  strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		Model:   os.Getenv("GEMINI_MODEL"),
		BaseURL: os.Getenv("GEMINI_BASE_URL"),
	}
	if cfg.Model == "" {
		cfg.Model = repository.DefaultGeminiModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = repository.DefaultGeminiBaseURL
	}

	cfg.Timeout = 30 * time.Second
	if val := os.Getenv("GEMINI_TIMEOUT"); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil || d <= 0 {
			log.Printf("Invalid GEMINI_TIMEOUT %q, using %s", val, cfg.Timeout)
		} else {
			cfg.Timeout = d
		}
	}
	return cfg
}

// generationFromEnv decides which path meal plan generation takes.
// Mock mode is only honoured in development.
func generationFromEnv(appEnv, apiKey string) services.BackendConfig {
	return services.BackendConfig{
		Available:  apiKey != "" && apiKey != PlaceholderGeminiKey,
		MockForced: appEnv == "development" && os.Getenv("USE_MOCK_MEAL_PLANS") == "true",
	}
}

// loadPublicKey loads an RSA public key from a PEM file
func loadPublicKey(path string) (*rsa.PublicKey, error) {
	keyData, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(keyData)
	if err != nil {
		return nil, err
	}
	return publicKey, nil
}
