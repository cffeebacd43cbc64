package config

import (
	"os"
	"strconv"
)

type Config struct {
	HTTPAddr    string
	PostgresDSN string
	LogLevel    string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AnthropicAPIKey string
	AnthropicModel  string
	OpenAIAPIKey    string
	OpenAIModel     string

	EmailSigningKey string
	AuthSigningKey  string
	FrontendBaseURL string
	BackendBaseURL  string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	DigestCron string

	ReportRateLimit      int
	ReportRateWindowSecs int
	RateLimitMaxKeys     int
}

func FromEnv() Config {
	return Config{
		HTTPAddr:    envDefault("HTTP_ADDR", ":8080"),
		PostgresDSN: os.Getenv("POSTGRES_DSN"),
		LogLevel:    envDefault("LOG_LEVEL", "info"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envIntDefault("REDIS_DB", 0),

		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:  os.Getenv("ANTHROPIC_MODEL"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:     os.Getenv("OPENAI_MODEL"),

		EmailSigningKey: os.Getenv("EMAIL_SIGNING_KEY"),
		AuthSigningKey:  os.Getenv("AUTH_SIGNING_KEY"),
		FrontendBaseURL: envDefault("FRONTEND_BASE_URL", "https://tendorai.com"),
		BackendBaseURL:  envDefault("BACKEND_BASE_URL", "https://api.tendorai.com"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     envIntDefault("SMTP_PORT", 587),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     envDefault("SMTP_FROM", "reports@tendorai.com"),

		DigestCron: envDefault("DIGEST_CRON", "0 8 * * 1"),

		ReportRateLimit:      envIntDefault("REPORT_RATE_LIMIT", 5),
		ReportRateWindowSecs: envIntDefault("REPORT_RATE_WINDOW_SECONDS", 3600),
		RateLimitMaxKeys:     envIntDefault("RATE_LIMIT_MAX_KEYS", 10000),
	}
}

func envDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
