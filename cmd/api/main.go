package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"daily-bonus-api/internal/cache"
	"daily-bonus-api/internal/client"
	"daily-bonus-api/internal/config"
	"daily-bonus-api/internal/handler"
	"daily-bonus-api/internal/middleware"
	"daily-bonus-api/internal/repository"
	"daily-bonus-api/internal/router"
	"daily-bonus-api/internal/service"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting daily-bonus-api...")

	// Load configuration
	cfg := config.MustLoad()
	log.Printf("Environment: %s", cfg.App.Environment)

	// Initialize the claim-state store. The cache is the only persistence the
	// bonus engine has; without it the service cannot run.
	var store cache.Store
	switch cfg.Cache.Type {
	case "memory":
		memStore := cache.NewMemoryStore()
		defer memStore.Close()
		store = memStore
		log.Println("Memory store initialized (single-instance mode)")
	default: // redis
		redisStore, err := cache.NewRedisStore(cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddress(),
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			log.Fatalf("Failed to initialize Redis store: %v", err)
		}
		defer redisStore.Close()
		store = redisStore
		log.Println("Redis store initialized")
	}

	// Initialize claim audit log based on config (optional)
	var claimLog repository.ClaimLogRepository
	switch cfg.ClaimLog.Type {
	case "none":
		log.Println("Claim audit log disabled")
	case "postgres", "postgresql":
		pgRepo, err := repository.NewPostgresClaimLogRepository(cfg.ClaimLog.PostgresDSN())
		if err != nil {
			log.Printf("Warning: PostgreSQL claim log initialization failed: %v", err)
		} else {
			defer pgRepo.Close()
			claimLog = pgRepo
			log.Println("PostgreSQL claim log initialized")
		}
	case "mysql":
		myRepo, err := repository.NewMySQLClaimLogRepository(cfg.ClaimLog.MySQLDSN())
		if err != nil {
			log.Printf("Warning: MySQL claim log initialization failed: %v", err)
		} else {
			defer myRepo.Close()
			claimLog = myRepo
			log.Println("MySQL claim log initialized")
		}
	default: // sqlite
		sqliteRepo, err := repository.NewSQLiteClaimLogRepository(cfg.ClaimLog.Path)
		if err != nil {
			log.Printf("Warning: SQLite claim log initialization failed: %v", err)
		} else {
			defer sqliteRepo.Close()
			claimLog = sqliteRepo
			log.Println("SQLite claim log initialized")
		}
	}

	// Claim log retention pruning
	var retention *service.RetentionScheduler
	if claimLog != nil {
		retention = service.NewRetentionScheduler(claimLog, service.RetentionConfig{
			Retention: cfg.ClaimLog.Retention,
			Interval:  cfg.ClaimLog.CleanupInterval,
		})
		retention.Start()
	}

	// Collaborating microservice clients
	playerClient := client.NewPlayerClient(cfg.Services.PlayerURL, cfg.Services.Timeout)
	currencyClient := client.NewCurrencyClient(cfg.Services.CurrencyURL, cfg.Services.Timeout)

	// Initialize services
	bonusService := service.NewBonusService(store, cfg.Bonus.ClaimTTL)
	identityService := service.NewIdentityService(playerClient, store, cfg.Bonus.IdentityCacheTTL)

	// Initialize handlers
	healthHandler := handler.New(cfg.App.Version)
	bonusHandler := handler.NewBonusHandler(bonusService, currencyClient, claimLog, cfg.Bonus.RewardMultiplier)
	adminHandler := handler.NewAdminHandler(claimLog, cfg.Cache.Type, cfg.ClaimLog.Type)

	// Create auth middleware with injected dependencies
	authMiddleware := middleware.NewAuthMiddleware(middleware.AuthConfig{
		Identity: identityService,
		AdminKey: cfg.App.AdminKey,
	})

	// Create router
	r := router.New(router.Config{
		Handler:        healthHandler,
		BonusHandler:   bonusHandler,
		AdminHandler:   adminHandler,
		AuthMiddleware: authMiddleware,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	if retention != nil {
		retention.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
