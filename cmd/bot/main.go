// SageMind - supportive mental health companion bot
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ashureev/sagemind/internal/api"
	"github.com/ashureev/sagemind/internal/bot"
	"github.com/ashureev/sagemind/internal/classify"
	"github.com/ashureev/sagemind/internal/config"
	"github.com/ashureev/sagemind/internal/reply"
	"github.com/ashureev/sagemind/internal/store"
	"github.com/ashureev/sagemind/internal/telegram"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting bot", "mode", cfg.Mode, "port", cfg.Port, "classifier", cfg.ClassifierProvider)

	// Initialize the session store.
	var repo store.Repository
	if cfg.DBPath != "" {
		repo, err = store.NewSQLite(cfg.DBPath)
		if err != nil {
			slog.Error("Failed to initialize session database", "error", err)
			os.Exit(1)
		}
		slog.Info("Session store ready", "backend", "sqlite", "path", cfg.DBPath)
	} else {
		repo = store.NewMemory()
		slog.Info("Session store ready", "backend", "memory")
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close session store", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Session store health check failed", "error", err)
		os.Exit(1)
	}

	// Initialize the sentiment classifier.
	var classifier classify.Classifier
	switch cfg.ClassifierProvider {
	case config.ProviderHTTP:
		classifier = classify.NewHTTP(cfg.ClassifierAddr, nil)
	default:
		classifier = classify.NewOpenAI(cfg.OpenAIAPIKey, cfg.SentimentModel)
	}

	selector := reply.NewSelector(nil)
	dispatcher := bot.NewDispatcher(repo, classifier, selector, cfg.FlowTimeout, logger)

	client, err := telegram.NewClient(cfg.BotToken, "", nil, logger)
	if err != nil {
		slog.Error("Failed to initialize Telegram client", "error", err)
		os.Exit(1)
	}

	// Setup router.
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)

	healthHandler := api.NewHealthHandler(repo)
	healthHandler.RegisterHealth(r)

	if cfg.Mode == config.ModeWebhook {
		webhook := telegram.NewWebhook(client, dispatcher.Handle, nil, logger)
		webhook.RegisterRoutes(r)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pollerDone := make(chan struct{})
	if cfg.Mode == config.ModePolling {
		poller := telegram.NewPoller(client, dispatcher.Handle, cfg.PollTimeoutSec, logger)
		go func() {
			defer close(pollerDone)
			if err := poller.Run(ctx); err != nil {
				slog.Error("Poller stopped with error", "error", err)
			}
		}()
	} else {
		close(pollerDone)
	}

	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	<-pollerDone
	slog.Info("Bot stopped successfully")
}
