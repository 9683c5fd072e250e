package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Rareminds-eym/skillpassport-sub002/internal/ai"
	"github.com/Rareminds-eym/skillpassport-sub002/internal/assistant"
	"github.com/Rareminds-eym/skillpassport-sub002/internal/config"
	"github.com/Rareminds-eym/skillpassport-sub002/internal/db"
	"github.com/Rareminds-eym/skillpassport-sub002/internal/httpapi"
	"github.com/Rareminds-eym/skillpassport-sub002/internal/httpapi/handlers"
	"github.com/Rareminds-eym/skillpassport-sub002/internal/logger"
	"github.com/Rareminds-eym/skillpassport-sub002/internal/store"
	"github.com/Rareminds-eym/skillpassport-sub002/internal/store/rabbitmq"
	"github.com/Rareminds-eym/skillpassport-sub002/internal/store/redisstore"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	gdb := db.Connect(cfg.DBDSN)
	if err := store.AutoMigrate(gdb); err != nil {
		log.Fatal("auto migrate failed", "err", err)
	}
	repo := store.NewRepo(gdb)

	// Provider registry (route by configured provider + model)
	reg := ai.NewRegistry()
	reg.Register("ollama", func(ctx context.Context, model string) (ai.Provider, error) {
		_ = ctx
		m := strings.TrimSpace(model)
		if m == "" {
			m = cfg.OllamaModel
		}
		return ai.NewOllamaProvider(cfg.OllamaBaseURL, m), nil
	})
	reg.Register("openrouter", func(ctx context.Context, model string) (ai.Provider, error) {
		_ = ctx
		m := strings.TrimSpace(model)
		if m == "" {
			m = cfg.OpenRouterModel
		}
		return ai.NewOpenRouterProvider(cfg.OpenRouterBaseURL, cfg.OpenRouterAPIKey, m,
			cfg.OpenRouterSiteURL, cfg.OpenRouterAppName), nil
	})

	model := cfg.OpenRouterModel
	if strings.EqualFold(cfg.AIProvider, "ollama") {
		model = cfg.OllamaModel
	}

	var limiter assistant.Limiter
	switch strings.ToLower(cfg.RateLimitBackend) {
	case "redis":
		rds := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := rds.Ping(context.Background()); err != nil {
			log.Fatal("redis ping failed", "addr", cfg.RedisAddr, "err", err)
		}
		defer rds.Close()
		limiter = assistant.NewCounterLimiter(rds, cfg.RateLimitMax, cfg.RateLimitWindow)
	default:
		limiter = assistant.NewWindowLimiter(cfg.RateLimitMax, cfg.RateLimitWindow, nil)
	}

	svcOpts := assistant.ServiceOptions{
		Store:        repo,
		Registry:     reg,
		Provider:     cfg.AIProvider,
		Model:        model,
		Log:          log,
		FetchTimeout: cfg.ContextFetchTimeout,
	}
	if cfg.RabbitURL != "" {
		pub, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
		if err != nil {
			log.Fatal("rabbit connect failed", "err", err)
		}
		defer pub.Close()
		svcOpts.Telemetry = pub
	}
	svc := assistant.NewService(svcOpts)

	h := handlers.NewHandler(cfg, svc, repo, limiter, log)
	router := httpapi.NewRouter(h)

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("server listening", "addr", cfg.ServerAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", "err", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "err", err)
	}
}
