package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catalog-backend/cache"
	"catalog-backend/config"
	"catalog-backend/database"
	"catalog-backend/firebase"
	"catalog-backend/logger"
	"catalog-backend/middleware"
	"catalog-backend/routes"
	"catalog-backend/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load environment variables
	if err := config.LoadEnv(); err != nil {
		log.Fatal("Error loading .env file:", err)
	}

	zl, err := logger.New(config.GetEnv("APP_ENV", "development"))
	if err != nil {
		log.Fatal("Failed to build logger:", err)
	}
	defer zl.Sync()

	// Validate critical environment variables
	if err := config.ValidateEnv(zl); err != nil {
		zl.Fatal("environment validation failed", zap.Error(err))
	}

	// Initialize database
	db, err := database.Connect()
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		zl.Fatal("failed to run migrations", zap.Error(err))
	}

	runner := database.NewTxRunner(db, zl.Named("tx"))
	runner.Isolation = database.ParseIsolation(config.GetEnv("TX_ISOLATION", "serializable"))
	runner.Timeout = config.GetEnvDuration("TX_TIMEOUT", 10*time.Second)

	// Create default admin user if not exists
	if err := database.CreateDefaultAdmin(context.Background(), runner, zl); err != nil {
		zl.Warn("could not create default admin", zap.Error(err))
	}

	// Redis is optional; without it the tree is rebuilt on every request
	var treeCache *cache.TreeCache
	if url := os.Getenv("REDIS_URL"); url != "" {
		client, err := cache.Connect(url)
		if err != nil {
			zl.Warn("redis unavailable, category tree cache disabled", zap.Error(err))
		} else {
			defer client.Close()
			treeCache = cache.NewTreeCache(client, config.GetEnvDuration("TREE_CACHE_TTL", cache.DefaultTreeTTL), zl.Named("cache"))
		}
	}

	// firebase init
	app, err := firebase.Init(context.Background(), zl)
	if err != nil {
		zl.Warn("firebase init failed, image uploads will fail", zap.Error(err))
	}
	storage := firebase.NewStorage(app, os.Getenv("FIREBASE_STORAGE_BUCKET"), zl.Named("storage"))

	authLimiter := middleware.NewRateLimiter(config.GetEnvInt("AUTH_RATE_LIMIT", 10), time.Minute)
	defer authLimiter.Stop()

	if config.GetEnv("APP_ENV", "development") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin router
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(zl.Named("http")))

	// Limit multipart form memory to 10MB
	r.MaxMultipartMemory = 10 << 20

	// CORS configuration - filter out empty strings from AllowOrigins
	var origins []string
	for _, o := range []string{os.Getenv("FRONTEND_URL"), os.Getenv("ADMIN_URL")} {
		if o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
		zl.Warn("no CORS origins configured, defaulting to http://localhost:3000")
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Client-Device", "X-Client-Browser"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// Setup routes
	routes.SetupRoutes(r, routes.Deps{
		Runner:      runner,
		Categories:  services.NewCategoryService(runner, treeCache, zl.Named("categories")),
		Users:       services.NewUserService(runner, zl.Named("users")),
		Storage:     storage,
		AuthLimiter: authLimiter,
		Log:         zl,
	})

	// Start server with graceful shutdown
	port := config.GetEnv("PORT", "8080")
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// Run server in a goroutine
	go func() {
		zl.Info("server starting", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zl.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zl.Info("shutting down server")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("server forced to shutdown", zap.Error(err))
	}

	// Close database connection
	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			zl.Error("error closing database connection", zap.Error(err))
		} else {
			zl.Info("database connection closed")
		}
	}

	zl.Info("server exited gracefully")
}
