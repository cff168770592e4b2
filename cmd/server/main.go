package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/nelson-ong-97/trending-repos/internal/api"
	"github.com/nelson-ong-97/trending-repos/internal/config"
	"github.com/nelson-ong-97/trending-repos/internal/db"
	"github.com/nelson-ong-97/trending-repos/internal/github"
	"github.com/nelson-ong-97/trending-repos/internal/trending"
)

// @title Trending Repos API
// @version 1.0
// @description API for syncing and serving trending GitHub repositories
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the sync secret.
func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
	})
	logger.SetOutput(os.Stdout)

	// Load configuration with defaults
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate minimum required config
	if cfg.DBConnectionString == "" || cfg.GitHubToken == "" {
		logger.Fatal("Missing required configuration (DB_CONNECTION_STRING and GITHUB_TOKEN must be set)")
	}

	// Initialize database
	store, err := db.NewPostgresStore(cfg.DBConnectionString)
	if err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Run migrations with retry logic
	if err := retry(3, 5*time.Second, func() error {
		return store.Migrate()
	}); err != nil {
		logger.Fatalf("Failed to run migrations after retries: %v", err)
	}

	// Initialize the GitHub source, with a best-effort search cache when
	// Redis is configured
	var source trending.Source
	client := github.NewClient(cfg.GitHubToken, logger, github.WithBaseURL(cfg.GitHubAPIURL))
	source = client
	if cfg.RedisAddr != "" {
		cache := github.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
		source = github.NewCachedClient(client, cache, config.DefaultGitHubConfig().Cache.SearchTTL, logger)
		logger.Infof("Search cache enabled via Redis at %s", cfg.RedisAddr)
	}

	// Initialize services
	syncer := trending.NewSyncer(store, source, logger)
	queryService := trending.NewQueryService(store, logger)
	handler := api.NewHandler(queryService, syncer, cfg.SyncSecret, logger)
	router := api.SetupRouter(handler)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	// Start scheduled background sync
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go syncer.Start(ctx, cfg.SyncInterval)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}
	logger.Info("Server exited properly")
}

// retry retries a function up to a certain number of attempts with a delay between attempts
func retry(attempts int, sleep time.Duration, fn func() error) error {
	if err := fn(); err != nil {
		if attempts--; attempts > 0 {
			time.Sleep(sleep)
			return retry(attempts, sleep, fn)
		}
		return err
	}
	return nil
}
