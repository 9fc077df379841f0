package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"chatrelay-backend/internal/api"
	"chatrelay-backend/internal/config"
	"chatrelay-backend/internal/handlers"
	"chatrelay-backend/internal/responder"
	"chatrelay-backend/internal/services"
	"chatrelay-backend/internal/store"
	"chatrelay-backend/internal/store/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	log.Println("Starting ChatRelay Backend...")

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	log.Println("Configuration loaded successfully.")

	// 2. Initialize Store (persistence is optional; the relay runs without it)
	chatStore, closeStore := initStore(cfg)
	defer closeStore()

	// 3. Initialize Dependencies (Responder, Services, Handlers)
	responderClient := responder.NewClient(cfg)
	log.Println("Responder client initialized.")

	chatService := services.NewChatService(chatStore, responderClient, cfg)
	log.Println("ChatService initialized.")

	chatHandler := handlers.NewChatHandlers(chatService, cfg)
	log.Println("ChatHandler initialized.")

	// 4. Setup Router & Inject Dependencies
	router := api.NewRouter(api.RouterDependencies{
		ChatHandler: chatHandler,
		Config:      cfg,
	})
	log.Println("HTTP router configured.")

	// 5. Configure and Start HTTP Server
	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
		// WriteTimeout must outlast the 30s responder call budget.
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Channel to listen for OS signals for graceful shutdown
	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)

	// Run server in a goroutine so it doesn't block
	go func() {
		log.Printf("Server starting and listening on port %s", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: Could not listen on %s: %v\n", cfg.HTTPPort, err)
		}
		log.Println("Server listener routine stopped.")
	}()

	// Wait for interrupt signal
	<-stopChan
	log.Println("Shutdown signal received, initiating graceful shutdown...")

	// Create a deadline context for shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Attempt graceful shutdown
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("WARN: Server graceful shutdown failed: %v", err)
	}

	log.Println("Server shutdown complete.")
}

// initStore connects to Postgres when the database configuration is complete
// and reachable, and falls back to the no-op store otherwise. A database
// problem at startup is a warning, never a crash: the relay keeps working as
// a pass-through without durable history.
func initStore(cfg *config.Config) (store.Store, func()) {
	noop := func() (store.Store, func()) {
		return store.NewNoopStore(), func() {}
	}

	if missing := cfg.MissingDatabaseVars(); len(missing) > 0 {
		log.Printf("WARN: Database not configured. Missing variables: %s", strings.Join(missing, ", "))
		log.Println("WARN: Chat messages will not be saved. Configure the database to enable persistence.")
		return noop()
	}

	dbCtx, dbCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer dbCancel()

	dbpool, err := pgxpool.New(dbCtx, cfg.DatabaseURL())
	if err != nil {
		log.Printf("WARN: Unable to create database connection pool: %v", err)
		log.Println("WARN: Continuing without database connection...")
		return noop()
	}

	if err := dbpool.Ping(dbCtx); err != nil {
		dbpool.Close()
		log.Printf("WARN: Unable to ping database: %v", err)
		log.Println("WARN: Continuing without database connection...")
		return noop()
	}

	pgStore := postgres.NewPostgresStore(dbpool)
	if err := pgStore.InitSchema(dbCtx); err != nil {
		dbpool.Close()
		log.Printf("WARN: Failed to initialize database schema: %v", err)
		log.Println("WARN: Continuing without database connection...")
		return noop()
	}

	log.Println("Database connection pool established and schema initialized.")
	return pgStore, dbpool.Close
}
