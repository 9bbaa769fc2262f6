package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port      string
	JWTKey    string
	SaltRound int

	JWTRefreshKey     string
	JWTExpiryHours    int
	RefreshExpiryDays int

	WebhookSecret   string
	DefaultCurrency string

	FlwPublicKey          string
	FlwSecretKey          string
	FlwBaseURL            string
	GatewayTimeoutSeconds int

	ClientOrigin string

	EmailSender string
	Password    string // SMTP Password
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:      getEnv("PORT", "3000"),
		JWTKey:    getEnv("JWT_SECRET_KEY", "defaultSecret"),
		SaltRound: getEnvInt("SALT_ROUND", 10),

		JWTRefreshKey:     getEnv("JWT_REFRESH_SECRET_KEY", "defaultRefreshSecret"),
		JWTExpiryHours:    getEnvInt("JWT_EXPIRY_HOURS", 24),
		RefreshExpiryDays: getEnvInt("JWT_REFRESH_EXPIRY_DAYS", 7),

		WebhookSecret:   getEnv("PAYMENT_WEBHOOK_SECRET", "dev_webhook_secret"),
		DefaultCurrency: getEnv("PAYMENT_DEFAULT_CURRENCY", "USD"),

		FlwPublicKey:          getEnv("FLW_PUBLIC_KEY", ""),
		FlwSecretKey:          getEnv("FLW_SECRET_KEY", ""),
		FlwBaseURL:            getEnv("FLW_BASE_URL", "https://api.flutterwave.com/v3"),
		GatewayTimeoutSeconds: getEnvInt("GATEWAY_TIMEOUT_SECONDS", 15),

		ClientOrigin: getEnv("CLIENT_ORIGIN", "http://localhost:3000"),

		EmailSender: getEnv("EMAIL_SENDER", ""),
		Password:    getEnv("PASSWORD", ""),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.WebhookSecret == "dev_webhook_secret" {
		log.Println("Warning: Using default PAYMENT_WEBHOOK_SECRET. Update it in your environment.")
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}
