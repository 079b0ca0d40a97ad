package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ANIRUDDH-VIJAY/Synapse/internal/chat"
	"github.com/ANIRUDDH-VIJAY/Synapse/internal/config"
	"github.com/ANIRUDDH-VIJAY/Synapse/internal/database"
	"github.com/ANIRUDDH-VIJAY/Synapse/internal/gemini"
	"github.com/ANIRUDDH-VIJAY/Synapse/internal/handlers"
	"github.com/ANIRUDDH-VIJAY/Synapse/internal/middleware"
	"github.com/ANIRUDDH-VIJAY/Synapse/internal/store"
)

func main() {
	// Logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Database
	ctx := context.Background()
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	// Gemini client and fallback responder
	generator, err := gemini.New(ctx, cfg.GeminiAPIKey)
	if err != nil {
		log.Fatalf("failed to create gemini client: %v", err)
	}
	responder := chat.NewResponder(generator, cfg.Models, cfg.GenerateTimeout, logger)

	// Handlers
	h := handlers.New(store.New(db.Pool), responder, logger)

	// Router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Health(r.Context()); err != nil {
			http.Error(w, "unhealthy", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	})

	// API routes
	r.Route("/api/threads", func(r chi.Router) {
		r.Get("/", h.ListThreads)
		r.Post("/", h.CreateThread)
		r.Route("/{threadID}", func(r chi.Router) {
			r.Get("/", h.GetThread)
			r.Patch("/", h.RenameThread)
			r.Delete("/", h.DeleteThread)
			r.Get("/messages", h.ListMessages)
			r.Post("/messages", h.PostMessage)
		})
	})

	// Server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute, // generation can outlive a normal request
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting",
			"port", cfg.Port,
			"environment", cfg.Environment,
			"models", cfg.Models,
		)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-shutdown
	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}

	logger.Info("shutdown complete")
}
