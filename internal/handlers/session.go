package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/physiotwin/backend/internal/requestdata"
	"github.com/physiotwin/backend/internal/services"
)

type SessionHandler struct {
	sessionService services.SessionService
	reportService  services.ReportService
}

func NewSessionHandler(sessionService services.SessionService, reportService services.ReportService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService, reportService: reportService}
}

// Ingest accepts a finished session upload from the exercise runtime. The
// triage verdict, if any, rides back in the same response so the client can
// surface it immediately.
func (sh *SessionHandler) Ingest(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())

	var in services.SessionCreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	session, alert, err := sh.sessionService.Ingest(c.Request.Context(), rd.UserID, in)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"session": session, "alert": alert})
}

func (sh *SessionHandler) List(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	items, err := sh.sessionService.ListForPatient(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"sessions": items})
}

func (sh *SessionHandler) ExportJSON(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}
	export, err := sh.reportService.ExportJSON(c.Request.Context(), rd, sessionID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, export)
}

func (sh *SessionHandler) ExportPDF(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}
	pdfBytes, err := sh.reportService.ExportPDF(c.Request.Context(), rd, sessionID)
	if err != nil {
		RespondError(c, err)
		return
	}
	filename := fmt.Sprintf("session_%s.pdf", sessionID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
