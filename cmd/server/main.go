package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/Stattrackrr/stattrackr-sub000/internal/api"
	"github.com/Stattrackrr/stattrackr-sub000/internal/api/middleware"
	"github.com/Stattrackrr/stattrackr-sub000/internal/models"
	"github.com/Stattrackrr/stattrackr-sub000/internal/nba"
	"github.com/Stattrackrr/stattrackr-sub000/internal/providers"
	"github.com/Stattrackrr/stattrackr-sub000/internal/services"
	"github.com/Stattrackrr/stattrackr-sub000/pkg/config"
	"github.com/Stattrackrr/stattrackr-sub000/pkg/database"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Setup logging
	logger := logrus.StandardLogger()
	if cfg.IsDevelopment() {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	// Connect to database
	db, err := database.NewConnection(cfg.DatabaseURL, database.Options{
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		PrepareStmt:     cfg.DBPrepareStmt,
		Development:     cfg.IsDevelopment(),
	})
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := models.AutoMigrate(db.DB); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}
	if err := models.SeedTeams(db.DB, nba.TeamNames()); err != nil {
		logrus.Warnf("Failed to seed team table: %v", err)
	}

	// Connect to Redis
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logrus.Fatalf("Failed to parse Redis URL: %v", err)
	}
	redisClient := redis.NewClient(opt)
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logrus.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Initialize services
	cacheService := services.NewCacheService(redisClient)

	statsProvider := providers.NewBallDontLieClient(
		cfg.BallDontLieAPIKey,
		cfg.BallDontLieBaseURL,
		cfg.ProviderRateLimit,
		cfg.CircuitBreakerThreshold,
		cfg.ExternalAPITimeout,
		cacheService,
		logger,
	)
	oddsProvider := providers.NewOddsAPIClient(
		cfg.OddsAPIKey,
		cfg.OddsAPIBaseURL,
		cfg.ProviderRateLimit,
		cfg.CircuitBreakerThreshold,
		cfg.ExternalAPITimeout,
		cacheService,
		logger,
	)

	statsService := services.NewStatsService(statsProvider, cacheService, logger, cfg.DefaultSeasonsBack)
	oddsService := services.NewOddsService(statsProvider, oddsProvider, cacheService, logger)

	refreshInterval, err := time.ParseDuration(cfg.RefreshInterval)
	if err != nil {
		logrus.Warnf("Invalid refresh interval, using default 15m: %v", err)
		refreshInterval = 15 * time.Minute
	}

	refresher := services.NewRefresher(db.DB, statsService, cacheService, logger, refreshInterval, cfg.SkipInitialRefresh)
	if cfg.EnableBackgroundJobs {
		if err := refresher.Start(); err != nil {
			logrus.Errorf("Failed to start refresher: %v", err)
		}
		defer refresher.Stop()
	}

	limiter := middleware.NewRateLimiter(float64(cfg.ClientRateLimit), cfg.ClientRateBurst)
	defer limiter.Stop()

	// Setup router
	router := api.NewRouter(cfg, api.Services{
		DB:          db.DB,
		Stats:       statsService,
		Odds:        oddsService,
		Refresher:   refresher,
		RateLimiter: limiter,
		Logger:      logger,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logrus.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}
