package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config - структура для хранения конфигурации приложения
type Config struct {
	// Пустой DATABASE_URL означает, что инциденты живут в памяти процесса
	DatabaseURL string `env:"DATABASE_URL"`
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Redis Config
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// OpenRouter Config
	OpenRouterAPIKey  string `env:"OPENROUTER_API_KEY"`
	OpenRouterModel   string `env:"OPENROUTER_MODEL" envDefault:"openai/gpt-4o-mini"`
	OpenRouterURL     string `env:"OPENROUTER_URL" envDefault:"https://openrouter.ai/api/v1/chat/completions"`
	OpenRouterReferer string `env:"OPENROUTER_REFERER"`

	// Decision Config
	DecisionTimeout     time.Duration `env:"DECISION_TIMEOUT" envDefault:"60s"`
	DecisionMaxTokens   int           `env:"DECISION_MAX_TOKENS" envDefault:"1024"`
	DecisionTemperature float64       `env:"DECISION_TEMPERATURE" envDefault:"0.1"`

	// Geo Task Config
	GeoTaskRetryDelay time.Duration `env:"GEO_TASK_RETRY_DELAY" envDefault:"5s"`
	GeoTaskStatusTTL  time.Duration `env:"GEO_TASK_STATUS_TTL" envDefault:"24h"`

	// Risk Config
	DefaultRadiusKm float64 `env:"DEFAULT_RADIUS_KM" envDefault:"5"`
	RiskWindowHours int     `env:"RISK_WINDOW_HOURS" envDefault:"168"`

	// Results Archive Config
	ResultsDir string `env:"RESULTS_DIR" envDefault:"data/results"`

	// API Keys for authentication
	APIKeys []string `env:"API_KEYS"`
}

// LoadConfig загружает конфигурацию из переменных окружения и .env файла
func LoadConfig() (*Config, error) {
	// Загрузка переменных окружения из .env файла (если есть)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("ошибка загрузки файла .env: %w", err)
	}

	cfg := &Config{
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		HTTPPort:            getEnv("HTTP_PORT", "8080"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		RedisAddr:           getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:           os.Getenv("REDIS_PASSWORD"),
		RedisDB:             getEnvAsInt("REDIS_DB", 0),
		OpenRouterAPIKey:    os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterModel:     getEnv("OPENROUTER_MODEL", "openai/gpt-4o-mini"),
		OpenRouterURL:       getEnv("OPENROUTER_URL", "https://openrouter.ai/api/v1/chat/completions"),
		OpenRouterReferer:   os.Getenv("OPENROUTER_REFERER"),
		DecisionTimeout:     getEnvAsDuration("DECISION_TIMEOUT", 60*time.Second),
		DecisionMaxTokens:   getEnvAsInt("DECISION_MAX_TOKENS", 1024),
		DecisionTemperature: getEnvAsFloat("DECISION_TEMPERATURE", 0.1),
		GeoTaskRetryDelay:   getEnvAsDuration("GEO_TASK_RETRY_DELAY", 5*time.Second),
		GeoTaskStatusTTL:    getEnvAsDuration("GEO_TASK_STATUS_TTL", 24*time.Hour),
		DefaultRadiusKm:     getEnvAsFloat("DEFAULT_RADIUS_KM", 5),
		RiskWindowHours:     getEnvAsInt("RISK_WINDOW_HOURS", 168),
		ResultsDir:          getEnv("RESULTS_DIR", "data/results"),
	}

	// Загрузка API ключей
	apiKeysStr := os.Getenv("API_KEYS")
	if apiKeysStr != "" {
		cfg.APIKeys = strings.Split(apiKeysStr, ",")
		for i, key := range cfg.APIKeys {
			cfg.APIKeys[i] = strings.TrimSpace(key)
		}
	}

	if cfg.OpenRouterAPIKey == "" {
		return nil, fmt.Errorf("OPENROUTER_API_KEY environment variable is required")
	}

	return cfg, nil
}

// getEnv возвращает значение переменной окружения или значение по умолчанию
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt возвращает значение переменной окружения как int или значение по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsFloat возвращает значение переменной окружения как float64 или значение по умолчанию
func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvAsDuration возвращает значение переменной окружения как time.Duration или значение по умолчанию
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
	}
	return defaultValue
}
