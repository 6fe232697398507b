package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"reverselearn/internal/service"
	"reverselearn/internal/transport/rest/handler"
	"reverselearn/internal/transport/rest/middleware"
	"reverselearn/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService          *service.AuthService
	AnalyzeService       *service.AnalyzeService
	TranscriptionService *service.TranscriptionService
	ChatService          *service.ChatService
	WSHub                *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	analyzeHandler := handler.NewAnalyzeHandler(c.AnalyzeService)
	transcribeHandler := handler.NewTranscribeHandler(c.TranscriptionService)
	chatsHandler := handler.NewChatsHandler(c.ChatService)
	wsHandler := ws.NewHandler(c.WSHub)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/signup", authHandler.Signup).Methods("POST", "OPTIONS")
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/analyze", analyzeHandler.Analyze).Methods("POST", "OPTIONS")
	v1.HandleFunc("/transcribe", transcribeHandler.Transcribe).Methods("POST", "OPTIONS")

	// Telemetry WebSocket (the client streams pose frames, the hub pushes
	// back a metrics report every window)
	v1.HandleFunc("/ws/metrics", wsHandler.MetricsWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Saved chats (require user auth)
	userRoutes := v1.NewRoute().Subrouter()
	userRoutes.Use(authMW.RequireUser)

	userRoutes.HandleFunc("/chats", chatsHandler.List).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/chats", chatsHandler.Save).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/chats/{chatId}", chatsHandler.Delete).Methods("DELETE", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
