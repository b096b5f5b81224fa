package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/physiotwin/backend/internal/db"
	"github.com/physiotwin/backend/internal/handlers"
	"github.com/physiotwin/backend/internal/logger"
	"github.com/physiotwin/backend/internal/middleware"
	"github.com/physiotwin/backend/internal/repos"
	"github.com/physiotwin/backend/internal/server"
	"github.com/physiotwin/backend/internal/services"
	"github.com/physiotwin/backend/internal/utils"
)

func main() {
	log, err := logger.New(os.Getenv("LOG_MODE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	dbService, err := db.New(log)
	if err != nil {
		log.Fatal("Failed to connect to database", "error", err)
	}
	if err := dbService.AutoMigrateAll(); err != nil {
		log.Fatal("Failed to run migrations", "error", err)
	}
	gdb := dbService.DB()

	userRepo := repos.NewUserRepo(gdb, log)
	userTokenRepo := repos.NewUserTokenRepo(gdb, log)
	sessionRepo := repos.NewSessionRepo(gdb, log)
	alertRepo := repos.NewAlertRepo(gdb, log)
	rxRepo := repos.NewPrescriptionRepo(gdb, log)

	jwtSecret := utils.GetEnv("JWT_SECRET_KEY", "", log)
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET_KEY is required")
	}
	accessTTL := time.Duration(utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 30, log)) * time.Minute
	refreshTTL := time.Duration(utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 720, log)) * time.Hour

	authService := services.NewAuthService(gdb, log, userRepo, userTokenRepo, jwtSecret, accessTTL, refreshTTL)
	rxService := services.NewPrescriptionService(gdb, log, rxRepo)
	sessionService := services.NewSessionService(gdb, log, sessionRepo, alertRepo, userRepo)
	alertService := services.NewAlertService(gdb, log, alertRepo)
	progressService := services.NewProgressService(gdb, log, userRepo, sessionRepo, alertRepo, rxService)
	reportService := services.NewReportService(log, sessionService, userRepo)

	if utils.GetEnvAsBool("SEED_DEMO_DATA", false, log) {
		seedService := services.NewSeedService(gdb, log, userRepo, sessionRepo, alertRepo, rxRepo)
		if err := seedService.Seed(context.Background()); err != nil {
			log.Fatal("Failed to seed demo data", "error", err)
		}
	}

	authMiddleware := middleware.NewAuthMiddleware(log, authService)
	authHandler := handlers.NewAuthHandler(authService)
	sessionHandler := handlers.NewSessionHandler(sessionService, reportService)
	patientHandler := handlers.NewPatientHandler(progressService, rxService)
	therapistHandler := handlers.NewTherapistHandler(progressService, sessionService, alertService, rxService)

	router := server.NewRouter(log, authMiddleware, authHandler, sessionHandler, patientHandler, therapistHandler)
	engine := router.Engine()

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Starting server", "port", port)
	if err := engine.Run(":" + port); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}
