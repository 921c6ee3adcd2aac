package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/epeers/fundledger/config"
	_ "github.com/epeers/fundledger/docs"
	"github.com/epeers/fundledger/internal/cache"
	"github.com/epeers/fundledger/internal/database"
	"github.com/epeers/fundledger/internal/handlers"
	"github.com/epeers/fundledger/internal/middleware"
	"github.com/epeers/fundledger/internal/repository"
	"github.com/epeers/fundledger/internal/services"
	"github.com/epeers/fundledger/internal/valuation"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title        Fund Ledger API
// @version      1.0
// @description  Tracks a pooled fund's participants, ownership and daily returns, and values each participant's stake per trading day.
// @BasePath     /

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	configureLogging(cfg)

	// Create context for initialization
	ctx := context.Background()

	if cfg.RunMigrations {
		if err := database.Migrate(cfg.PGURL); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	// Initialize database connection
	db, err := database.New(ctx, cfg.PGURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize caches
	memCache := cache.NewMemoryCache(cfg.CalendarCacheTTL)

	// Initialize repositories
	participantRepo := repository.NewParticipantRepository(db.Pool)
	monthlyValueRepo := repository.NewMonthlyValueRepository(db.Pool)
	returnRepo := repository.NewReturnRepository(db.Pool)
	calendarRepo := repository.NewCalendarRepository(db.Pool)
	settingsRepo := repository.NewSettingsRepository(db.Pool)

	// Initialize services
	calendarSvc := services.NewCalendarService(calendarRepo, memCache)
	settingsSvc := services.NewSettingsService(settingsRepo)
	participantSvc := services.NewParticipantService(participantRepo, monthlyValueRepo, settingsRepo, db, cfg.RebalanceMode)
	ledgerSvc := services.NewLedgerService(
		participantRepo,
		monthlyValueRepo,
		returnRepo,
		settingsRepo,
		calendarSvc,
		valuation.AllocationMode(cfg.AllocationMode),
		cfg.LedgerWorkers,
	)
	returnSvc := services.NewReturnService(returnRepo, participantRepo, ledgerSvc)

	// Initialize handlers
	h := handlers.Handlers{
		Participants: handlers.NewParticipantHandler(participantSvc),
		Returns:      handlers.NewReturnHandler(returnSvc),
		Ledger:       handlers.NewLedgerHandler(ledgerSvc, participantSvc),
		Admin:        handlers.NewAdminHandler(settingsSvc, calendarSvc),
	}

	// Setup Gin router
	router := gin.New()
	// rate limiting keys on ClientIP, so forwarding headers are not trusted
	if err := router.SetTrustedProxies(nil); err != nil {
		log.Fatalf("Failed to configure trusted proxies: %v", err)
	}
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.AccessLog(),
		middleware.Metrics(),
		middleware.ValidateUser(),
		middleware.RateLimit(cfg.RateLimit),
	)

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	handlers.RegisterRoutes(router, h, participantSvc)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Give outstanding requests 5 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}

func configureLogging(cfg *config.Config) {
	if cfg.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warnf("Unknown LOG_LEVEL %q, using info", cfg.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)
	if os.Getenv(gin.EnvGinMode) == "" {
		gin.SetMode(gin.ReleaseMode)
	}
}
