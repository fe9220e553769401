package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/jwtauth/v5"

	"github.com/shiftsync/shiftsync_backend/config"
	"github.com/shiftsync/shiftsync_backend/db"
	"github.com/shiftsync/shiftsync_backend/internal/handlers"
	adminHandlers "github.com/shiftsync/shiftsync_backend/internal/handlers/admin"
	authHandlers "github.com/shiftsync/shiftsync_backend/internal/handlers/auth"
	shiftHandlers "github.com/shiftsync/shiftsync_backend/internal/handlers/shift"
	"github.com/shiftsync/shiftsync_backend/internal/middleware"
	"github.com/shiftsync/shiftsync_backend/internal/pkg/response"
	"github.com/shiftsync/shiftsync_backend/internal/services/audit"
	authService "github.com/shiftsync/shiftsync_backend/internal/services/auth"
	"github.com/shiftsync/shiftsync_backend/internal/services/realtime"
	shiftService "github.com/shiftsync/shiftsync_backend/internal/services/shift"
	"github.com/shiftsync/shiftsync_backend/internal/store"
)

func main() {
	cfg := config.NewConfig()
	database := db.InitDB(cfg.DatabaseDSN)
	defer database.Close()

	redisClient := config.NewRedisClient()
	defer redisClient.Close()

	jwtAuth := jwtauth.New("HS256", []byte(cfg.JwtSecret), nil)
	jwtService := authService.NewJWTService(cfg.JwtSecret)

	shiftStore := store.NewRedisStore(redisClient)
	hub := realtime.NewHub()
	auditLogger := audit.NewLogger(database)
	workflow := shiftService.NewWorkflow(shiftStore, auditLogger, hub)
	aggregator := shiftService.NewAggregator(shiftStore)

	authHandler := authHandlers.NewAuthHandler(database, jwtService)
	shiftHandler := shiftHandlers.NewShiftHandler(workflow)
	analyticsHandler := shiftHandlers.NewAnalyticsHandler(aggregator)

	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	router.Use(jwtauth.Verifier(jwtAuth))
	router.Use(middleware.AddUserToContext())

	// Public routes
	router.Post("/api/auth/register", authHandler.RegisterHandler)
	router.Post("/api/auth/login", authHandler.LoginHandler)
	router.Get("/ws", handlers.WebSocketHandler(hub))
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Authenticated routes
	router.Group(func(r chi.Router) {
		r.Use(jwtauth.Authenticator(jwtAuth))

		r.Get("/api/profile", authHandler.GetProfile)
		r.Get("/api/shifts", shiftHandler.ListHandler)
		r.Put("/api/shifts/{id}/request", shiftHandler.RequestClaimHandler)
		r.Put("/api/shifts/{id}/drop", shiftHandler.DropHandler)
		r.Put("/api/shifts/{id}/request-drop", shiftHandler.RequestDropHandler)

		// Manager routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.ManagerOnly())

			r.Post("/api/shifts", shiftHandler.CreateHandler)
			r.Put("/api/shifts/{id}", shiftHandler.UpdateHandler)
			r.Delete("/api/shifts/{id}", shiftHandler.DeleteHandler)
			r.Put("/api/shifts/{id}/review", shiftHandler.ReviewClaimHandler)
			r.Put("/api/shifts/{id}/review-drop", shiftHandler.ReviewDropHandler)
			r.Get("/api/analytics", analyticsHandler.GetAnalyticsHandler)
			r.Get("/api/analytics/export", analyticsHandler.ExportAnalyticsHandler)
			r.Get("/api/admin/audit-logs", adminHandlers.ListAuditLogsHandler(database))
		})
	})

	serverAddress := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("🚀 Server starting on %s", serverAddress)
	log.Fatal(http.ListenAndServe(serverAddress, router))
}
