package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DatabaseURL string

	// Kafka
	KafkaBrokers string
	OrderTopic   string

	// API Configuration
	APIPort string
	APIHost string

	// Bsale API
	BsaleAPIURL string

	// Store identity, used in consumption notes sent to Bsale
	StoreName string

	// Path to the JSON file with the sync settings
	SettingsPath string

	// Environment
	Env      string
	LogLevel string
	Timezone string
}

func Load() (*Config, error) {
	// Load .env file
	godotenv.Load()

	return &Config{
		DatabaseURL:  getEnv("DATABASE_URL", "sqlite://wcbsale.db"),
		KafkaBrokers: getEnv("KAFKA_BROKERS", "localhost:9092"),
		OrderTopic:   getEnv("ORDER_TOPIC", "order-events"),
		APIPort:      getEnv("API_PORT", "8080"),
		APIHost:      getEnv("API_HOST", "0.0.0.0"),
		BsaleAPIURL:  getEnv("BSALE_API_URL", "https://api.bsale.io/v1/"),
		StoreName:    getEnv("STORE_NAME", "My Store"),
		SettingsPath: getEnv("SETTINGS_PATH", "settings.json"),
		Env:          getEnv("ENV", "development"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		Timezone:     getEnv("TIMEZONE", "UTC"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
