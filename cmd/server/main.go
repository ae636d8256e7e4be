package main

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"

	"cinescope/internal/env"
	"cinescope/internal/handlers"
	"cinescope/internal/kv"
	"cinescope/internal/logger"
	"cinescope/internal/tmdb"
	"cinescope/internal/web"
	"cinescope/internal/wishlist"

	_ "github.com/joho/godotenv/autoload"
)

const defaultPort = "8080"

func main() {
	slog.SetDefault(logger.New(slog.LevelDebug))
	if err := run(); err != nil {
		fmt.Println("Error:", err.Error())
		os.Exit(1)
	}
}

func run() error {
	apiKey := os.Getenv("TMDB_API_KEY")
	if apiKey == "" {
		return errors.New("TMDB_API_KEY is required")
	}
	dbPath := envOr("DB_PATH", "/app/data/cinescope.db")

	db, err := kv.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("Failed to close DB", logger.Error(err))
		}
	}()

	client := tmdb.New(tmdb.Config{
		APIKey:       apiKey,
		BaseURL:      os.Getenv("TMDB_BASE_URL"),
		ImageBaseURL: os.Getenv("TMDB_IMAGE_BASE"),
	})

	app, err := handlers.New(&handlers.Config{
		TMDB:     client,
		Wishlist: wishlist.NewStore(db),
	})
	if err != nil {
		return fmt.Errorf("failed to init handlers: %w", err)
	}

	r := chi.NewRouter()
	r.Use(httplog.RequestLogger(slog.Default(), &httplog.Options{
		Level:         slog.LevelInfo,
		RecoverPanics: true,
	}))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins(),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Route("/api", app.RegisterRoutes)

	dist, err := web.Dist()
	if err != nil {
		return fmt.Errorf("failed to load embedded frontend: %w", err)
	}
	spa, err := handlers.SPA(dist)
	if err != nil {
		return fmt.Errorf("failed to init spa handler: %w", err)
	}
	r.NotFound(spa.ServeHTTP)

	addr := ":" + envOr("PORT", defaultPort)
	log.Printf("listening on %s", addr)
	server := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func corsOrigins() []string {
	if env.Current == env.Production {
		return []string{envOr("ALLOWED_ORIGIN", "https://cinescope.example.com")}
	}
	return []string{"http://localhost:*", "http://127.0.0.1:*"}
}

func envOr(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
