package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/physiotwin/backend/internal/requestdata"
	"github.com/physiotwin/backend/internal/services"
)

type TherapistHandler struct {
	progressService services.ProgressService
	sessionService  services.SessionService
	alertService    services.AlertService
	rxService       services.PrescriptionService
}

func NewTherapistHandler(
	progressService services.ProgressService,
	sessionService services.SessionService,
	alertService services.AlertService,
	rxService services.PrescriptionService,
) *TherapistHandler {
	return &TherapistHandler{
		progressService: progressService,
		sessionService:  sessionService,
		alertService:    alertService,
		rxService:       rxService,
	}
}

func (th *TherapistHandler) Patients(c *gin.Context) {
	items, err := th.progressService.TherapistPatients(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"patients": items})
}

func (th *TherapistHandler) PatientSessions(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("patient_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid patient id"})
		return
	}
	sessions, err := th.sessionService.ListForTherapist(c.Request.Context(), patientID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"sessions": sessions})
}

func (th *TherapistHandler) PatientAlerts(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("patient_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid patient id"})
		return
	}
	alerts, err := th.alertService.ListForPatient(c.Request.Context(), patientID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"alerts": alerts})
}

func (th *TherapistHandler) ReviewAlert(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	alertID, err := uuid.Parse(c.Param("alert_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert id"})
		return
	}

	var req struct {
		Status string  `json:"status"`
		Note   *string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	alert, err := th.alertService.Review(c.Request.Context(), rd.UserID, alertID, req.Status, req.Note)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, alert)
}

func (th *TherapistHandler) GetPrescription(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("patient_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid patient id"})
		return
	}
	rx, err := th.rxService.GetOrCreate(c.Request.Context(), patientID, c.Param("exercise_key"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, rx)
}

// UpdatePrescription applies a therapist edit to the safe-range constraints.
// The service bumps the protocol version only when a versioned field changes.
func (th *TherapistHandler) UpdatePrescription(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("patient_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid patient id"})
		return
	}

	var patch services.PrescriptionPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	rx, err := th.rxService.Update(c.Request.Context(), patientID, c.Param("exercise_key"), patch)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, rx)
}
