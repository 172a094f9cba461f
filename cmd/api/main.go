// main.go - The entry point and router setup.

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sniptex/sniptex_server/configs"
	"github.com/sniptex/sniptex_server/internal/api"
	"github.com/sniptex/sniptex_server/internal/ratelimit"
	"github.com/sniptex/sniptex_server/internal/recognizer"
	"github.com/sniptex/sniptex_server/internal/settings"
	"github.com/sniptex/sniptex_server/internal/usage"
)

func main() {
	// Step 0: Load configuration from environment variables
	configs.LoadConfig()

	// Step 0.5: Set production mode
	if ginMode := os.Getenv("GIN_MODE"); ginMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Step 1: Create the data directory and open the stores
	if err := os.MkdirAll(configs.DATA_DIR, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}
	store, err := settings.NewStore(configs.DATA_DIR)
	if err != nil {
		log.Fatalf("Failed to open settings store: %v", err)
	}
	tracker := usage.NewTracker(configs.DATA_DIR)

	// Step 2: Wire the recognition pipeline
	limiter := ratelimit.NewRateLimiter(
		configs.SF_RATE_LIMIT_TOKENS,
		time.Duration(configs.SF_RATE_LIMIT_REFILL)*time.Second,
	)
	rec := recognizer.New(store, tracker, limiter)
	handler := api.NewHandler(store, tracker, rec)

	// Step 3: Initialize the Gin router
	router := gin.Default()

	// Add CORS middleware - the UI runs on a different origin in development
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", configs.ALLOWED_ORIGINS)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// Root endpoint for SSL verification
	router.GET("/", func(c *gin.Context) {
		c.String(200, "ok")
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "sniptex-server",
			"version": "1.0.0",
		})
	})

	// Step 4: Define the API routes
	router.GET("/api/v1/settings", handler.GetSettings)
	router.POST("/api/v1/settings", handler.SaveSettings)
	router.POST("/api/v1/test/simpletex", handler.TestSimpleTex)
	router.POST("/api/v1/test/siliconflow", handler.TestSiliconFlow)
	router.GET("/api/v1/models", handler.GetAvailableModels)
	router.GET("/api/v1/balance", handler.GetSfBalance)
	router.POST("/api/v1/recognize", handler.Recognize)
	router.POST("/api/v1/open-url", handler.OpenExternalURL)

	// Step 5: Setup HTTP server with timeouts
	srv := &http.Server{
		Addr:           ":" + configs.PORT,
		Handler:        router,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   5 * time.Minute, // Formula mode makes two provider calls
		MaxHeaderBytes: 1 << 20,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on :%s", configs.PORT)
		log.Println("API Endpoints:")
		log.Println("  GET  /api/v1/settings")
		log.Println("  POST /api/v1/settings")
		log.Println("  POST /api/v1/test/simpletex")
		log.Println("  POST /api/v1/test/siliconflow")
		log.Println("  GET  /api/v1/models")
		log.Println("  GET  /api/v1/balance")
		log.Println("  POST /api/v1/recognize")
		log.Println("  POST /api/v1/open-url")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Setup graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
