package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// API Configuration
	APIPort        string
	APIHost        string
	APIEnvironment string

	// Public base URL used in Twilio webhook callbacks (ngrok in development)
	PublicBaseURL string

	// Database
	DatabasePath string

	// Redis
	RedisURL string

	// LLM (Groq or OpenAI compatible)
	LLMAPIKey      string
	LLMBaseURL     string
	LLMModel       string
	LLMTemperature float64
	LLMTimeout     time.Duration

	// Twilio
	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioPhoneNumber string

	// SendGrid
	SendGridAPIKey string
	EmailFrom      string
	EmailFromName  string

	// Dialogue
	SessionHistoryCap int
	SessionIdleTTL    time.Duration

	// Rate Limiting
	RateLimitRequestsPerMinute int
	RateLimitBurst             int

	// Sentry
	SentryDSN         string
	SentryEnvironment string

	// Logging
	LogLevel  string
	LogFormat string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		// API
		APIPort:        getEnv("API_PORT", "3010"),
		APIHost:        getEnv("API_HOST", "0.0.0.0"),
		APIEnvironment: getEnv("API_ENVIRONMENT", "development"),
		PublicBaseURL:  getEnv("PUBLIC_BASE_URL", "http://localhost:3010"),

		// Database
		DatabasePath: getEnv("DATABASE_PATH", "./outreach.db"),

		// Redis
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),

		// LLM
		LLMAPIKey:      getEnv("GROQ_API_KEY", ""),
		LLMBaseURL:     getEnv("LLM_BASE_URL", "https://api.groq.com/openai/v1"),
		LLMModel:       getEnv("LLM_MODEL", "llama3-70b-8192"),
		LLMTemperature: getEnvAsFloat("LLM_TEMPERATURE", 0.75),
		LLMTimeout:     time.Duration(getEnvAsInt("LLM_TIMEOUT_SECONDS", 12)) * time.Second,

		// Twilio
		TwilioAccountSID:  getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:   getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioPhoneNumber: getEnv("TWILIO_PHONE_NUMBER", ""),

		// SendGrid
		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
		EmailFrom:      getEnv("EMAIL_FROM", "outreach@grsix.ai"),
		EmailFromName:  getEnv("EMAIL_FROM_NAME", "GRSIX AI"),

		// Dialogue
		SessionHistoryCap: getEnvAsInt("SESSION_HISTORY_CAP", 20),
		SessionIdleTTL:    time.Duration(getEnvAsInt("SESSION_IDLE_TTL_MINUTES", 30)) * time.Minute,

		// Rate Limiting
		RateLimitRequestsPerMinute: getEnvAsInt("RATE_LIMIT_REQUESTS_PER_MINUTE", 60),
		RateLimitBurst:             getEnvAsInt("RATE_LIMIT_BURST", 10),

		// Sentry
		SentryDSN:         getEnv("SENTRY_DSN", ""),
		SentryEnvironment: getEnv("SENTRY_ENVIRONMENT", "development"),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}
