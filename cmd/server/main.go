package main

import (
	"context"                         // context package is needed for Redis operations
	"marketplace/internal/api"        // Custom package for API handlers
	"marketplace/internal/cache"      // Response cache
	"marketplace/internal/chat"       // Chat relay
	"marketplace/internal/checkout"   // Checkout service
	"marketplace/internal/config"     // Custom package for configuration
	"marketplace/internal/db"         // Database connection
	"marketplace/internal/logging"    // Logger setup
	"marketplace/internal/middleware" // Custom package for middleware
	"marketplace/internal/payment"    // Hosted payment API client
	"marketplace/internal/storage"    // Upload storage
	"time"                            // CORS max age

	"github.com/gin-contrib/cors"  // CORS middleware
	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// uploadsPrefix is the URL path uploaded images are served under
const uploadsPrefix = "/uploads"

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration
	logging.Setup(cfg)         // Setup logger

	if cfg.JWTSecret == "" {
		logrus.Fatal("JWT_SECRET must be set")
	}

	// Connect to the database
	gdb, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}
	// SQLite is used for local runs, migrate it on start
	if cfg.DBDriver == config.DriverSQLite {
		if err := db.AutoMigrate(gdb); err != nil {
			logrus.Fatalf("migration failed: %v", err)
		}
	}

	// Redis backs the cache and the chat relay when configured
	var store cache.Cache
	var hub chat.Hub
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		// Test Redis connection
		if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
			logrus.Fatalf("failed to connect to Redis: %v", err)
		}
		store = cache.NewRedis(redisClient)
		hub = chat.NewRedisHub(redisClient)
	} else {
		logrus.Warn("REDIS_ADDR not set, using in-process cache and chat relay")
		store = cache.NewMemory()
		hub = chat.NewLocalHub()
	}

	// Card payments go to the hosted payment API when configured
	var payments payment.Client = payment.Noop{}
	if cfg.PaymentAPIURL != "" {
		payments = payment.NewHTTPClient(cfg.PaymentAPIURL, cfg.PaymentAPIKey)
	} else {
		logrus.Warn("PAYMENT_API_URL not set, card charges always succeed")
	}

	files, err := storage.NewLocalStore(cfg.UploadDir, uploadsPrefix, cfg.MaxUploadBytes())
	if err != nil {
		logrus.Fatalf("failed to prepare upload dir: %v", err)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: !containsWildcard(cfg.CORSOrigins),
		MaxAge:           12 * time.Hour,
	}))
	r.MaxMultipartMemory = cfg.MaxUploadBytes()

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	r.Static(uploadsPrefix, cfg.UploadDir) // Product images
	api.SetupRoutes(r, api.Deps{
		DB:        gdb,
		Cache:     store,
		Hub:       hub,
		Checkout:  checkout.NewService(gdb, payments, cfg.PlatformFeeRate),
		Files:     files,
		JWTSecret: cfg.JWTSecret,
	})

	logrus.WithFields(logrus.Fields{
		"port":     cfg.AppPort,
		"driver":   cfg.DBDriver,
		"fee_rate": cfg.PlatformFeeRate,
	}).Info("Server running") // Log server start
	if err := r.Run(":" + cfg.AppPort); err != nil {
		logrus.Fatalf("server stopped: %v", err)
	}
}

// containsWildcard reports whether any origin is allowed; credentials cannot be combined with "*"
func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
