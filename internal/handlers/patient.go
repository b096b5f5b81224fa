package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/physiotwin/backend/internal/requestdata"
	"github.com/physiotwin/backend/internal/services"
)

type PatientHandler struct {
	progressService services.ProgressService
	rxService       services.PrescriptionService
}

func NewPatientHandler(progressService services.ProgressService, rxService services.PrescriptionService) *PatientHandler {
	return &PatientHandler{progressService: progressService, rxService: rxService}
}

func (ph *PatientHandler) Summary(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	summary, err := ph.progressService.PatientSummary(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, summary)
}

func (ph *PatientHandler) Progress(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	progress, err := ph.progressService.PatientProgress(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, progress)
}

// Prescription returns the caller's own active constraints for an exercise,
// creating the row from defaults on first access. Read-only for patients.
func (ph *PatientHandler) Prescription(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	exerciseKey := c.Param("exercise_key")
	rx, err := ph.rxService.GetOrCreate(c.Request.Context(), rd.UserID, exerciseKey)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, rx)
}
