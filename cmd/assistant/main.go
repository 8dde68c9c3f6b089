package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"portfolio-assistant-go/internal/cache"
	"portfolio-assistant-go/internal/classifier"
	"portfolio-assistant-go/internal/config"
	"portfolio-assistant-go/internal/database"
	"portfolio-assistant-go/internal/intent"
	"portfolio-assistant-go/internal/logger"
	"portfolio-assistant-go/internal/orchestrator"
	"portfolio-assistant-go/internal/store"
)

func main() {
	// Load application configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	// Initialize database
	db, err := database.NewDatabase(&cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connection successful and schema migrated.")

	// Lookup cache; disabled when no address is configured.
	lookupCache := cache.New(&cfg.Redis, log)
	if cfg.Redis.Addr != "" {
		if err := lookupCache.Ping(context.Background()); err != nil {
			log.Warn("Redis unreachable, continuing without cache", zap.Error(err))
		} else {
			log.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
		}
	}

	tradeStore := store.NewTradeStore(db, log)
	conversationStore := store.NewConversationStore(db)
	aliasStore := store.NewAliasStore(db, lookupCache, log)

	// AI-assisted classification is optional; without it an unmatched
	// reply is simply rendered as plain text.
	var cls classifier.ClassifierInterface
	if cfg.Classifier.Enabled {
		cls = classifier.NewClient(&cfg.Classifier, log)
		log.Info("Classifier enabled", zap.String("model", cfg.Classifier.Model))
	}

	engine := orchestrator.New(
		tradeStore,
		intent.NewResolver(log),
		cls,
		aliasStore,
		lookupCache,
		log,
		cfg.Assistant.DisplayDayShift,
	)

	// Setup HTTP server
	mux := http.NewServeMux()
	apiHandler := NewAPIHandler(log, engine, tradeStore, conversationStore, aliasStore, cfg.Assistant.DefaultAccountID)

	mux.HandleFunc("/api/status", apiHandler.StatusHandler)
	mux.HandleFunc("/api/resolve", apiHandler.ResolveHandler)
	mux.HandleFunc("/api/trades", apiHandler.TradesHandler)
	mux.HandleFunc("/api/conversations", apiHandler.ConversationsHandler)
	mux.HandleFunc("/api/messages", apiHandler.MessagesHandler)
	mux.HandleFunc("/api/symbols", apiHandler.SymbolsHandler)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
		<-sigchan
		log.Info("Shutdown signal received, gracefully shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Error("Server shutdown failed", zap.Error(err))
		}
	}()

	log.Info("Starting API server", zap.String("address", addr))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("API server failed", zap.Error(err))
	}
	log.Info("Assistant has been shut down.")
}
