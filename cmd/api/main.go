package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rithick-11/food-recommendation-system/internal/adapters/handler"
	"github.com/rithick-11/food-recommendation-system/internal/adapters/middleware"
	"github.com/rithick-11/food-recommendation-system/internal/adapters/report"
	"github.com/rithick-11/food-recommendation-system/internal/adapters/repository"
	"github.com/rithick-11/food-recommendation-system/internal/config"
	"github.com/rithick-11/food-recommendation-system/internal/core/domain"
	"github.com/rithick-11/food-recommendation-system/internal/core/ports"
	"github.com/rithick-11/food-recommendation-system/internal/core/services"
	"github.com/rithick-11/food-recommendation-system/internal/dbmigrate"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Connect to database with retry logic
	db, err := config.ConnectDatabase(cfg.DatabaseURL, 5, 2*time.Second)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if cfg.AutoMigrate {
		if err := dbmigrate.RunDB("up", db); err != nil {
			log.Fatalf("Failed to apply migrations: %v", err)
		}
		log.Println("Database migrations applied")
	}

	// Initialize repositories
	sqlRepo := repository.NewSQLRepository(db)

	// Generation pipeline
	var backend ports.GenerationBackend
	if cfg.Generation.Available {
		backend = repository.NewGeminiBackend(cfg.Gemini)
	}
	log.Printf("Meal plan generation mode: %s", cfg.Generation.Mode())

	generationMetrics := handler.NewGenerationMetrics(prometheus.DefaultRegisterer)
	orchestrator := services.NewOrchestrator(backend, cfg.Generation, services.NewFallbackGenerator(), generationMetrics)

	// Event publisher is optional; generation never depends on it
	var publisher ports.MealPlanEventPublisher
	if cfg.RabbitMQURL != "" {
		rabbitMQPublisher, err := repository.NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.MealPlanEventsQueue)
		if err != nil {
			log.Printf("RabbitMQ publisher unavailable, meal plan events disabled: %v", err)
		} else {
			defer rabbitMQPublisher.Close()
			publisher = rabbitMQPublisher
		}
	}

	// Initialize services
	accountService := services.NewAccountService(sqlRepo)
	profileService := services.NewProfileService(sqlRepo, sqlRepo)
	mealPlanService := services.NewMealPlanService(orchestrator, sqlRepo, sqlRepo, publisher, report.NewPDFRenderer())

	// Account provisioning from the identity service
	consumerCtx, consumerCancel := context.WithCancel(context.Background())
	defer consumerCancel()
	if cfg.RabbitMQURL != "" {
		accountConsumer, err := repository.NewAccountConsumer(cfg.RabbitMQURL, cfg.AccountQueueName, accountService)
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ account consumer: %v", err)
		}
		defer accountConsumer.Close()

		// Each replica runs its own consumer; RabbitMQ round-robins deliveries
		go func() {
			if err := accountConsumer.StartConsuming(consumerCtx); err != nil {
				log.Printf("Account consumer error: %v", err)
			}
		}()
		log.Println("Account consumer started in background, listening for account registrations")
	} else {
		log.Println("RABBITMQ_URL not set, account consumer disabled")
	}

	// Initialize handlers
	mealPlanHandler := handler.NewMealPlanHandler(mealPlanService)
	profileHandler := handler.NewProfileHandler(profileService)
	adminHandler := handler.NewAdminHandler(accountService)
	healthHandler := handler.NewHealthHandler(db, cfg.Generation)

	// Initialize JWT middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTPublicKey)
	defer authMiddleware.Stop()

	patient := func(next http.HandlerFunc) http.HandlerFunc {
		return authMiddleware.RequireRole(domain.RolePatient, next)
	}
	doctor := func(next http.HandlerFunc) http.HandlerFunc {
		return authMiddleware.RequireApprovedDoctor(accountService, next)
	}
	admin := func(next http.HandlerFunc) http.HandlerFunc {
		return authMiddleware.RequireRole(domain.RoleAdmin, next)
	}

	// Setup HTTP router
	mux := http.NewServeMux()

	// Health endpoints (OpenShift compatible, no auth required)
	mux.HandleFunc("GET /metrics", handler.Metrics)
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("GET /health/ready", healthHandler.Ready)
	mux.HandleFunc("GET /health/live", healthHandler.Live)
	mux.HandleFunc("GET /health/generation", healthHandler.Generation)

	// Patient endpoints
	mux.HandleFunc("GET /api/profile/me", patient(profileHandler.GetMyProfile))
	mux.HandleFunc("POST /api/profile/me", patient(profileHandler.SaveMyProfile))
	mux.HandleFunc("POST /api/mealplan/generate", patient(mealPlanHandler.GenerateMyMealPlan))
	mux.HandleFunc("GET /api/mealplan/me", patient(mealPlanHandler.GetMyMealPlan))
	mux.HandleFunc("GET /api/mealplan/me/history", patient(mealPlanHandler.GetMyMealPlanHistory))
	mux.HandleFunc("GET /api/mealplan/me/pdf", patient(mealPlanHandler.DownloadMyMealPlanPDF))

	// Doctor endpoints - approved doctors only
	mux.HandleFunc("GET /api/doctor/patients", doctor(profileHandler.ListPatients))
	mux.HandleFunc("GET /api/doctor/profile/{patient_id}", doctor(profileHandler.GetPatientProfile))
	mux.HandleFunc("PUT /api/doctor/profile/{patient_id}", doctor(profileHandler.UpdatePatientProfile))
	mux.HandleFunc("POST /api/mealplan/generate/{patient_id}", doctor(mealPlanHandler.GenerateMealPlanForPatient))
	mux.HandleFunc("GET /api/mealplan/{patient_id}", doctor(mealPlanHandler.GetPatientMealPlan))
	mux.HandleFunc("GET /api/mealplan/{patient_id}/history", doctor(mealPlanHandler.GetPatientMealPlanHistory))
	mux.HandleFunc("GET /api/mealplan/{patient_id}/pdf", doctor(mealPlanHandler.DownloadPatientMealPlanPDF))

	// Admin endpoints
	mux.HandleFunc("GET /api/admin/doctors", admin(adminHandler.ListDoctors))
	mux.HandleFunc("GET /api/admin/doctors/pending", admin(adminHandler.ListPendingDoctors))
	mux.HandleFunc("PUT /api/admin/doctors/{doctor_id}/approve", admin(adminHandler.ApproveDoctor))
	mux.HandleFunc("PUT /api/admin/doctors/{doctor_id}/reject", admin(adminHandler.RejectDoctor))

	// Wrap mux with metrics middleware to track all HTTP requests
	loggedRouter := middleware.MetricsMiddleware(mux)

	// Backend calls can take up to the Gemini timeout
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      loggedRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Gemini.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Starting meal plan service on :%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Cancel consumer context first to stop processing new messages
	consumerCancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
