package main

import (
	"log"
	"net/http"
	"time"

	"quiz-session-service/internal/config"
	"quiz-session-service/internal/controller"
	"quiz-session-service/internal/db"
	"quiz-session-service/internal/event"
	"quiz-session-service/internal/handlers"
	"quiz-session-service/internal/interaction"
	"quiz-session-service/internal/repository"
	"quiz-session-service/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system env")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := db.InitMongo(cfg.MongoURI); err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer db.CloseMongo()
	database := db.Client.Database(cfg.MongoDatabase)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()

	// Telemetry is optional: without a broker the engine runs, it just
	// publishes nothing.
	var publisher *event.EventPublisher
	if cfg.RabbitURI != "" && cfg.RabbitExchange != "" {
		publisher, err = event.NewEventPublisher(cfg.RabbitURI, cfg.RabbitExchange)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()
	} else {
		log.Println("RabbitMQ not configured, telemetry events will not be published")
	}

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "X-User-ID", "accept", "origin", "Cache-Control", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	sessionRepo := repository.NewSessionRepository(database)
	questionRepo := repository.NewQuestionRepository(database)
	sessionService := service.NewSessionService(sessionRepo, questionRepo, publisher)
	registry := controller.NewRegistry(sessionService)
	sidecar := interaction.NewSidecarStore(rdb)

	sessionHandler := handlers.NewSessionHandler(sessionService, registry)
	interactionHandler := handlers.NewInteractionHandler(sidecar)

	public := r.Group("/public/quiz")
	{
		public.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"service":   "quiz-session-service",
				"status":    "healthy",
				"timestamp": time.Now(),
			})
		})
	}

	protected := r.Group("/protected/quiz")
	protected.Use(func(c *gin.Context) {
		if c.GetHeader("X-User-ID") == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
				"code":  "MISSING_USER_ID",
			})
			c.Abort()
			return
		}
		c.Next()
	})
	{
		protected.POST("/session", sessionHandler.CreateSession)
		protected.GET("/sessions", sessionHandler.ListSessions)
		protected.GET("/session/:id", sessionHandler.GetSession)
		protected.POST("/session/:id/answer", sessionHandler.SubmitAnswer)
		protected.POST("/session/:id/advance", sessionHandler.Advance)
		protected.POST("/session/:id/previous", sessionHandler.Previous)
		protected.POST("/session/:id/finish", sessionHandler.Finish)
		protected.POST("/session/:id/swipe", sessionHandler.Swipe)
		protected.GET("/session/:id/live", sessionHandler.Live)

		protected.PUT("/session/:id/confidence", interactionHandler.SetConfidence)
		protected.PUT("/session/:id/bookmark", interactionHandler.SetBookmark)
		protected.PUT("/session/:id/preferences", interactionHandler.SetPreferences)
		protected.GET("/session/:id/interaction", interactionHandler.GetSnapshot)
	}

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
