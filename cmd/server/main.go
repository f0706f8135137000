package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"goshop/internal/config"
	"goshop/internal/handlers"
	"goshop/internal/middleware"
	"goshop/internal/repositories/mongodb"
	"goshop/internal/services"
	"goshop/internal/utils"
	"goshop/pkg/cache"
	"goshop/pkg/database"
	"goshop/pkg/logger"
	"goshop/pkg/storage"
	"goshop/routes"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments set variables directly
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:   logger.LogLevel(cfg.App.LogLevel),
		Format:  "json",
		Output:  "stdout",
		AppName: cfg.App.Name,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	auditLogger, err := logger.NewAuditLogger(&logger.Config{
		Level:   "info",
		Output:  "stdout",
		AppName: cfg.App.Name,
	})
	if err != nil {
		log.Fatalf("Failed to initialize audit logger: %v", err)
	}

	db, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		appLogger.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer db.Close()

	migrator := database.NewMigrator(db.Database)
	if err := migrator.Up(); err != nil {
		appLogger.Fatalf("Failed to run migrations: %v", err)
	}

	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		appLogger.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisCache.Close()

	proofStore, err := newProofStore(cfg.Storage)
	if err != nil {
		appLogger.Fatalf("Failed to initialize proof storage: %v", err)
	}

	// Repositories
	cacheService := services.NewCacheService(redisCache)
	userRepo := mongodb.NewUserRepository(db.Database, cacheService)
	packageRepo := mongodb.NewUpgradePackageRepository(db.Database, cacheService)
	upgradeRepo := mongodb.NewUserUpgradeRepository(db.Database)
	transactionRepo := mongodb.NewTransactionRepository(db.Database)
	purchaseRepo := mongodb.NewPurchaseRepository(db.Database)
	revenueRepo := mongodb.NewRevenueRepository(db.Database)
	sequenceRepo := mongodb.NewSequenceRepository(db.Database)

	// Services
	txRunner := services.NewTxRunner(db)
	revenueService, err := services.NewRevenueService(cfg.Revenue, revenueRepo, appLogger)
	if err != nil {
		appLogger.Fatalf("Failed to initialize revenue service: %v", err)
	}
	upgradeService := services.NewUpgradeService(userRepo, packageRepo, upgradeRepo, sequenceRepo, revenueService, txRunner, appLogger)
	settlementService := services.NewSettlementService(upgradeRepo, purchaseRepo, packageRepo, transactionRepo, sequenceRepo, proofStore, cfg.Storage.Proof, cacheService, txRunner, appLogger, auditLogger)
	packageService := services.NewPackageService(packageRepo, appLogger)
	purchaseService := services.NewPurchaseService(purchaseRepo, userRepo)
	userService := services.NewUserService(userRepo)

	// HTTP surface
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.Security.CORSAllowedOrigins))
	router.Use(middleware.LoggingMiddleware(appLogger))

	v1 := router.Group("/api/v1")
	routes.Setup(v1, cfg.Security.JWTSecret, &routes.Handlers{
		Upgrade:    handlers.NewUpgradeHandler(upgradeService),
		Settlement: handlers.NewSettlementHandler(settlementService),
		Package:    handlers.NewPackageHandler(packageService),
		Revenue:    handlers.NewRevenueHandler(revenueService),
		Purchase:   handlers.NewPurchaseHandler(purchaseService),
		User:       handlers.NewUserHandler(userService),
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": utils.AppVersion,
		})
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	go func() {
		appLogger.Infof("Starting server on port %d", cfg.App.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Errorf("Forced shutdown: %v", err)
	}
}

func newProofStore(cfg *config.StorageConfig) (storage.ProofStore, error) {
	switch cfg.Provider {
	case "s3":
		return storage.NewAWSS3Storage(cfg.AWS.Region, cfg.AWS.Bucket, cfg.AWS.CDNDomain)
	case "gcs":
		return storage.NewGCPStorage(cfg.GCP.CredentialsFile, cfg.GCP.Bucket, cfg.GCP.CDNDomain)
	default:
		return storage.NewLocalStorage(cfg.Local.BasePath, cfg.Local.BaseURL)
	}
}
