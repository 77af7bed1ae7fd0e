package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"bacbo-analyst-backend/internal/config"
	"bacbo-analyst-backend/internal/handlers"
	"bacbo-analyst-backend/internal/middleware"
	"bacbo-analyst-backend/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var (
		store   services.UserStore
		ledger  services.PaymentLedger
		limiter services.RateLimiter
	)

	if cfg.RedisAddr != "" {
		redisService, err := services.NewRedisService(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisService.Close()

		store = redisService
		ledger = redisService
		limiter = redisService
	} else {
		log.Println("REDIS_ADDR not set, running on the in-memory store")
		memory := services.NewMemoryUserStore()
		store = memory
		ledger = memory
	}

	sessions := services.NewSessionStore()
	entitlements := services.NewEntitlementService(store)
	engine := services.NewSignalEngine()
	machine := services.NewConversationStateMachine(sessions, entitlements, engine)

	jwtService := services.NewJWTService(cfg)

	feedHandler := handlers.NewFeedHandler(machine, limiter)
	paymentHandler := handlers.NewPaymentHandler(machine, ledger, feedHandler)
	statusHandler := handlers.NewStatusHandler(entitlements, sessions)
	authHandler := handlers.NewAuthHandler(jwtService, cfg.BotToken)

	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			if evicted := sessions.EvictStale(24 * time.Hour); evicted > 0 {
				log.Printf("Evicted %d stale sessions", evicted)
			}
		}
	}()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/", func(c *gin.Context) {
		c.String(200, "Bac Bo Auto Analyst running")
	})

	router.GET("/auth", authHandler.Authenticate)
	router.POST("/webhooks/payment", paymentHandler.HandleWebhook)

	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware(jwtService))
	{
		protected.GET("/me", statusHandler.GetCurrentUser)
		protected.POST("/sessions/reset", statusHandler.ResetSession)
		protected.GET("/feed", feedHandler.HandleFeed)
	}

	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
