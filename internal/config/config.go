package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	ServerAddr string
	LogMode    string

	DBDSN         string
	JWTSecret     string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// AI provider
	AIProvider        string
	OllamaBaseURL     string
	OllamaModel       string
	OpenRouterBaseURL string
	OpenRouterAPIKey  string
	OpenRouterModel   string
	OpenRouterSiteURL string
	OpenRouterAppName string

	// Per-identity request limiting
	RateLimitBackend string // "memory" or "redis"
	RateLimitMax     int
	RateLimitWindow  time.Duration

	// Context aggregation fan-in bound
	ContextFetchTimeout time.Duration

	// Telemetry (rabbitMQ); empty URL disables publishing
	RabbitURL   string
	RabbitQueue string
}

func Load() Config {
	// DSN demo:
	// app:apppass@tcp(127.0.0.1:3306)/career_assistant?charset=utf8mb4&parseTime=true&loc=Local
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=Local",
			"app", "apppass", "127.0.0.1", "3306", "career_assistant",
		)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-change-me"
	}

	addr := os.Getenv("SERVER_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "dev"
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "127.0.0.1:6379"
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	// AI provider config
	aiProvider := os.Getenv("AI_PROVIDER")
	if aiProvider == "" {
		aiProvider = "openrouter"
	}

	ollamaBaseURL := os.Getenv("OLLAMA_BASE_URL")
	if ollamaBaseURL == "" {
		ollamaBaseURL = "http://localhost:11434"
	}

	ollamaModel := os.Getenv("OLLAMA_MODEL")
	if ollamaModel == "" {
		ollamaModel = "llama3:latest"
	}

	openRouterBaseURL := os.Getenv("OPENROUTER_BASE_URL")
	if openRouterBaseURL == "" {
		openRouterBaseURL = "https://openrouter.ai/api/v1"
	}
	openRouterModel := os.Getenv("OPENROUTER_MODEL")
	if openRouterModel == "" {
		openRouterModel = "openai/gpt-4o-mini"
	}

	rlBackend := os.Getenv("RATE_LIMIT_BACKEND")
	if rlBackend == "" {
		rlBackend = "memory"
	}
	rlMax := 10
	if v := os.Getenv("RATE_LIMIT_MAX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			rlMax = n
		}
	}
	rlWindow := time.Minute
	if v := os.Getenv("RATE_LIMIT_WINDOW_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			rlWindow = time.Duration(n) * time.Second
		}
	}

	ctxTimeout := 5 * time.Second
	if v := os.Getenv("CONTEXT_FETCH_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			ctxTimeout = time.Duration(n) * time.Second
		}
	}

	rabbitQueue := os.Getenv("RABBIT_QUEUE")
	if rabbitQueue == "" {
		rabbitQueue = "assistant_telemetry"
	}

	return Config{
		ServerAddr: addr,
		LogMode:    logMode,

		DBDSN:     dsn,
		JWTSecret: secret,

		RedisAddr:     redisAddr,
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,

		AIProvider:        aiProvider,
		OllamaBaseURL:     ollamaBaseURL,
		OllamaModel:       ollamaModel,
		OpenRouterBaseURL: openRouterBaseURL,
		OpenRouterAPIKey:  os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterModel:   openRouterModel,
		OpenRouterSiteURL: os.Getenv("OPENROUTER_SITE_URL"),
		OpenRouterAppName: os.Getenv("OPENROUTER_APP_NAME"),

		RateLimitBackend: rlBackend,
		RateLimitMax:     rlMax,
		RateLimitWindow:  rlWindow,

		ContextFetchTimeout: ctxTimeout,

		RabbitURL:   os.Getenv("RABBIT_URL"),
		RabbitQueue: rabbitQueue,
	}
}
