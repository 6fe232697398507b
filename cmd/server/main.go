package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"reverselearn/internal/cache"
	"reverselearn/internal/config"
	"reverselearn/internal/repository"
	"reverselearn/internal/service"
	"reverselearn/internal/transport/rest"
	"reverselearn/internal/transport/ws"
)

// @title AI Reverse Learning API
// @version 1.0
// @description Explain a topic to a simulated AI audience and get feedback
// @host localhost:8080
// @BasePath /v1
func main() {
	log.Println("started")
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if cfg.AI.IsEnabled() {
		log.Printf("Completion API: %s (deployment %s)", cfg.AI.Endpoint, cfg.AI.Deployment)
	} else {
		log.Println("Completion API: NOT SET (using mock audience)")
	}
	if cfg.Speech.IsEnabled() {
		log.Printf("Speech API: %s", cfg.Speech.Endpoint)
	} else {
		log.Println("Speech API: NOT SET (using simulated transcripts)")
	}

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database(cfg.Mongo.Database)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Initialize WebSocket hub for presentation telemetry
	wsHub := ws.NewHub()
	log.Println("Metrics hub started")

	// Initialize repositories
	userRepo := repository.NewUserRepo(db)
	chatRepo := repository.NewChatRepo(db)

	// Initialize caches
	explainStates := cache.NewExplainStateCache(rdb)

	// Initialize services
	authSvc := service.NewAuthService(userRepo, cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)
	completionSvc := service.NewCompletionService(&cfg.AI)
	analyzeSvc := service.NewAnalyzeService(completionSvc, explainStates)
	transcribeSvc := service.NewTranscriptionService(&cfg.Speech)
	chatSvc := service.NewChatService(chatRepo)

	// Create router with container
	container := &rest.Container{
		AuthService:          authSvc,
		AnalyzeService:       analyzeSvc,
		TranscriptionService: transcribeSvc,
		ChatService:          chatSvc,
		WSHub:                wsHub,
	}

	router := rest.NewRouter(container)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Server.Port)
		log.Println("Endpoints:")
		log.Println("  POST /v1/auth/signup")
		log.Println("  POST /v1/auth/login")
		log.Println("  POST /v1/analyze")
		log.Println("  POST /v1/transcribe")
		log.Println("  GET/POST /v1/chats")
		log.Println("  DELETE /v1/chats/{chatId}")
		log.Println("  WS  /v1/ws/metrics")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
