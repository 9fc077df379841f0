package api

import (
	"net/http"
	"time"

	"chatrelay-backend/internal/config"
	"chatrelay-backend/internal/handlers"
	"chatrelay-backend/internal/models"
	"chatrelay-backend/pkg/httputil"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterDependencies holds all the dependencies required by the router setup.
type RouterDependencies struct {
	ChatHandler *handlers.ChatHandlers
	Config      *config.Config
}

// NewRouter creates and configures the main Chi router for the application.
func NewRouter(deps RouterDependencies) *chi.Mux {
	r := chi.NewRouter()

	// --- Base Middleware Stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	// The request timeout must outlast the 30s responder call budget.
	r.Use(middleware.Timeout(60 * time.Second))

	// --- CORS Configuration ---
	// The chat UI is served from arbitrary origins and sends no credentials.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.RespondJSON(w, http.StatusOK, models.HealthResponse{
			Status:    "ok",
			Timestamp: time.Now().UTC(),
		})
	})

	// Reports which config values are present without echoing them.
	r.Get("/api/debug/config", func(w http.ResponseWriter, r *http.Request) {
		cfg := deps.Config
		httputil.RespondJSON(w, http.StatusOK, models.DebugConfigResponse{
			HasWebhookURL: cfg.WebhookURL != "",
			WebhookURL:    config.Presence(cfg.WebhookURL),
			HasDBHost:     cfg.DBHost != "",
			HasDBUser:     cfg.DBUser != "",
			HasDBPassword: cfg.DBPassword != "",
			HasDBName:     cfg.DBName != "",
			Environment:   cfg.Environment,
		})
	})

	// --- Chat Routes ---
	r.Route("/api/chat", func(r chi.Router) {
		if deps.ChatHandler == nil {
			panic("ChatHandler dependency is nil in router setup")
		}
		r.Post("/send", deps.ChatHandler.HandleSendMessage)
		r.Get("/history/{sessionID}", deps.ChatHandler.HandleGetHistory)
	})

	return r
}
