package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	HTTPPort    string
	LogLevel    string

	// Provider credentials and model names. A missing key disables that
	// provider; with no keys at all the service runs on the mock provider.
	GoogleAPIKey    string
	GeminiModel     string
	OpenAIAPIKey    string
	OpenAIModel     string
	AnthropicAPIKey string
	AnthropicModel  string

	// Generation resilience settings.
	LLMTimeoutSeconds       int
	LLMMaxAttempts          int
	LLMRetryMinWaitSeconds  int
	LLMRetryMaxWaitSeconds  int
	BreakerFailureThreshold int
	BreakerTimeoutSeconds   int

	// Safety settings.
	MaxQueryLength  int
	BlockedKeywords []string

	// Search settings.
	MaxSearchResults int
}

var AppConfig Config

func LoadConfig() {
	err := godotenv.Load() // Load .env file if it exists
	if err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = Config{
		DatabaseURL: getEnv("DATABASE_URL", "phonescout.db"),
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "INFO"),

		GoogleAPIKey:    getEnv("GOOGLE_API_KEY", ""),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:     getEnv("OPENAI_MODEL", "gpt-4-turbo-preview"),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  getEnv("ANTHROPIC_MODEL", "claude-3-sonnet-20240229"),

		LLMTimeoutSeconds:       getEnvAsInt("LLM_TIMEOUT", 30),
		LLMMaxAttempts:          getEnvAsInt("LLM_MAX_RETRIES", 3),
		LLMRetryMinWaitSeconds:  getEnvAsInt("LLM_RETRY_MIN_WAIT", 1),
		LLMRetryMaxWaitSeconds:  getEnvAsInt("LLM_RETRY_MAX_WAIT", 10),
		BreakerFailureThreshold: getEnvAsInt("BREAKER_FAILURE_THRESHOLD", 5),
		BreakerTimeoutSeconds:   getEnvAsInt("BREAKER_TIMEOUT", 60),

		MaxQueryLength:  getEnvAsInt("MAX_QUERY_LENGTH", 500),
		BlockedKeywords: getEnvAsList("BLOCKED_KEYWORDS", defaultBlockedKeywords),

		MaxSearchResults: getEnvAsInt("MAX_SEARCH_RESULTS", 10),
	}

	if AppConfig.GoogleAPIKey == "" && AppConfig.OpenAIAPIKey == "" && AppConfig.AnthropicAPIKey == "" {
		log.Println("Warning: no LLM provider keys configured, answers will come from the mock provider")
	}
}

var defaultBlockedKeywords = []string{
	"system prompt", "ignore instructions", "api key",
	"reveal", "hack", "jailbreak", "bypass",
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
