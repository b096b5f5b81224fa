package server

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/physiotwin/backend/internal/handlers"
	"github.com/physiotwin/backend/internal/logger"
	"github.com/physiotwin/backend/internal/middleware"
	"github.com/physiotwin/backend/internal/utils"
)

type Router struct {
	log              *logger.Logger
	authMiddleware   *middleware.AuthMiddleware
	authHandler      *handlers.AuthHandler
	sessionHandler   *handlers.SessionHandler
	patientHandler   *handlers.PatientHandler
	therapistHandler *handlers.TherapistHandler
}

func NewRouter(
	log *logger.Logger,
	authMiddleware *middleware.AuthMiddleware,
	authHandler *handlers.AuthHandler,
	sessionHandler *handlers.SessionHandler,
	patientHandler *handlers.PatientHandler,
	therapistHandler *handlers.TherapistHandler,
) *Router {
	return &Router{
		log:              log.With("component", "Router"),
		authMiddleware:   authMiddleware,
		authHandler:      authHandler,
		sessionHandler:   sessionHandler,
		patientHandler:   patientHandler,
		therapistHandler: therapistHandler,
	}
}

func (r *Router) Engine() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())

	origins := strings.Split(utils.GetEnv("CORS_ORIGINS", "http://localhost:5173", r.log), ",")
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	engine.GET("/healthcheck", handlers.HealthCheck)

	api := engine.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", r.authHandler.Register)
		auth.POST("/login", r.authHandler.Login)
		auth.POST("/refresh", r.authHandler.Refresh)
		auth.POST("/logout", r.authMiddleware.RequireAuth(), r.authHandler.Logout)
	}

	authed := api.Group("")
	authed.Use(r.authMiddleware.RequireAuth())
	{
		authed.POST("/sessions", r.sessionHandler.Ingest)
		authed.GET("/sessions/:session_id/export.json", r.sessionHandler.ExportJSON)
		authed.GET("/sessions/:session_id/export.pdf", r.sessionHandler.ExportPDF)

		authed.GET("/patient/summary", r.patientHandler.Summary)
		authed.GET("/patient/progress", r.patientHandler.Progress)
		authed.GET("/patient/sessions", r.sessionHandler.List)
		authed.GET("/prescription/:exercise_key", r.patientHandler.Prescription)
	}

	therapist := api.Group("/therapist")
	therapist.Use(r.authMiddleware.RequireAuth(), r.authMiddleware.RequireTherapist())
	{
		therapist.GET("/patients", r.therapistHandler.Patients)
		therapist.GET("/patients/:patient_id/sessions", r.therapistHandler.PatientSessions)
		therapist.GET("/patients/:patient_id/alerts", r.therapistHandler.PatientAlerts)
		therapist.PUT("/alerts/:alert_id/review", r.therapistHandler.ReviewAlert)
		therapist.GET("/prescriptions/:patient_id/:exercise_key", r.therapistHandler.GetPrescription)
		therapist.PUT("/prescriptions/:patient_id/:exercise_key", r.therapistHandler.UpdatePrescription)
	}

	return engine
}
