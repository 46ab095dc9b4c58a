package main

import (
	"context"  // context package is needed for Redis operations
	"log"      // log package is needed for logging
	"net/http" // HTTP status codes

	"barangapp/internal/api"        // Custom package for API handlers
	"barangapp/internal/config"     // Custom package for configuration
	"barangapp/internal/middleware" // Custom package for middleware

	"github.com/gin-contrib/cors"  // CORS middleware
	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Setup Data Source Name (DSN) and connect to the database
	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// CORS for the frontend, all origins allowed
	r.Use(cors.Default())

	// Serve uploaded images back from a static path prefix
	r.Static("/uploads", cfg.UploadDir)

	// Health check endpoint
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Server berjalan dengan baik"})
	})

	// Auth routes
	authGroup := r.Group("/api/auth")
	authGroup.POST("/register", api.RegisterHandler(db))          // Registration endpoint
	authGroup.POST("/login", api.LoginHandler(db, cfg.JWTSecret)) // Login endpoint

	// Barang routes
	barangGroup := r.Group("/api/barang")
	// Read endpoints tolerate anonymous callers
	barangGroup.GET("", middleware.OptionalUser(db, cfg.JWTSecret), api.ListBarangHandler(db, redisClient))    // List endpoint
	barangGroup.GET("/:id", middleware.OptionalUser(db, cfg.JWTSecret), api.GetBarangHandler(db, redisClient)) // Detail endpoint
	// Mutating endpoints are admin only
	barangGroup.POST("", middleware.RequireAdmin(db, cfg.JWTSecret), api.CreateBarangHandler(db, redisClient, cfg.UploadDir))    // Create endpoint
	barangGroup.PUT("/:id", middleware.RequireAdmin(db, cfg.JWTSecret), api.UpdateBarangHandler(db, redisClient, cfg.UploadDir)) // Update endpoint
	barangGroup.DELETE("/:id", middleware.RequireAdmin(db, cfg.JWTSecret), api.DeleteBarangHandler(db, redisClient))             // Delete endpoint

	// JSON body for unmatched routes
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Rute tidak ditemukan"})
	})

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
