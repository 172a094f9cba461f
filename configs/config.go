// config.go - Configuration loaded from environment variables

package configs

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var (
	// Server Configuration
	PORT            string
	DATA_DIR        string
	ALLOWED_ORIGINS string

	// SimpleTex API Configuration
	SIMPLETEX_API_BASE string

	// SiliconFlow API Configuration
	SILICONFLOW_API_BASE    string
	SILICONFLOW_PRICING_URL string

	// HTTP client settings
	RECOGNIZE_TIMEOUT int // Timeout for recognition calls in seconds
	PROBE_TIMEOUT     int // Timeout for validation/balance probes in seconds

	// Rate limiting for outbound SiliconFlow calls
	SF_RATE_LIMIT_TOKENS int // Max burst of chat-completion requests
	SF_RATE_LIMIT_REFILL int // Seconds between token refills
)

// LoadConfig loads configuration from environment variables
func LoadConfig() {
	// Load .env file if exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	PORT = getEnv("PORT", "8080")
	DATA_DIR = getEnv("DATA_DIR", "data")
	ALLOWED_ORIGINS = getEnv("ALLOWED_ORIGINS", "*")

	SIMPLETEX_API_BASE = getEnv("SIMPLETEX_API_BASE", "https://server.simpletex.net/api")

	SILICONFLOW_API_BASE = getEnv("SILICONFLOW_API_BASE", "https://api.siliconflow.cn/v1")
	SILICONFLOW_PRICING_URL = getEnv("SILICONFLOW_PRICING_URL", "https://siliconflow.cn/pricing")

	RECOGNIZE_TIMEOUT = getEnvInt("RECOGNIZE_TIMEOUT", 120)
	PROBE_TIMEOUT = getEnvInt("PROBE_TIMEOUT", 15)

	// SiliconFlow free-tier vision models allow roughly 1000 RPM; one request
	// per second with a small burst keeps well under that.
	SF_RATE_LIMIT_TOKENS = getEnvInt("SF_RATE_LIMIT_TOKENS", 10)
	SF_RATE_LIMIT_REFILL = getEnvInt("SF_RATE_LIMIT_REFILL", 1)

	log.Println("✓ Configuration loaded successfully")
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
