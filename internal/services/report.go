package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"

	"github.com/physiotwin/backend/internal/clinical"
	"github.com/physiotwin/backend/internal/logger"
	"github.com/physiotwin/backend/internal/repos"
	"github.com/physiotwin/backend/internal/requestdata"
)

// Disclaimer printed on every export; the system is decision support, not a
// diagnostic device.
const exportDisclaimer = "Decision support only. Does not replace clinical judgment. Not diagnostic or prescriptive."

const pdfEventLimit = 30

type ReportService interface {
	ExportJSON(ctx context.Context, requester *requestdata.RequestData, sessionID uuid.UUID) (*SessionExport, error)
	ExportPDF(ctx context.Context, requester *requestdata.RequestData, sessionID uuid.UUID) ([]byte, error)
}

type SessionExport struct {
	Disclaimer string            `json:"disclaimer"`
	Session    SessionExportBody `json:"session"`
}

// SessionExportBody carries the stored record verbatim, including the raw
// angle-sample and event logs.
type SessionExportBody struct {
	ID              uuid.UUID       `json:"id"`
	PatientID       uuid.UUID       `json:"patient_id"`
	PatientName     string          `json:"patient_name"`
	ExerciseKey     string          `json:"exercise_key"`
	CreatedAt       string          `json:"created_at"`
	PainBefore      int             `json:"pain_before"`
	PainAfter       int             `json:"pain_after"`
	RepsCompleted   int             `json:"reps_completed"`
	AvgKneeAngleDeg float64         `json:"avg_knee_angle_deg"`
	RiskEvents      int             `json:"risk_events"`
	AdherenceScore  int             `json:"adherence_score"`
	AIConfidencePct int             `json:"ai_confidence_pct"`
	AngleSamples    json.RawMessage `json:"angle_samples"`
	Events          json.RawMessage `json:"events"`
}

type reportService struct {
	log            *logger.Logger
	sessionService SessionService
	userRepo       repos.UserRepo
}

func NewReportService(log *logger.Logger, sessionService SessionService, userRepo repos.UserRepo) ReportService {
	return &reportService{
		log:            log.With("service", "ReportService"),
		sessionService: sessionService,
		userRepo:       userRepo,
	}
}

func (rs *reportService) ExportJSON(ctx context.Context, requester *requestdata.RequestData, sessionID uuid.UUID) (*SessionExport, error) {
	session, err := rs.sessionService.Get(ctx, requester, sessionID)
	if err != nil {
		return nil, err
	}

	patientName := ""
	if patient, err := rs.userRepo.GetByID(ctx, nil, session.UserID); err == nil {
		patientName = patient.Name
	}

	return &SessionExport{
		Disclaimer: exportDisclaimer,
		Session: SessionExportBody{
			ID:              session.ID,
			PatientID:       session.UserID,
			PatientName:     patientName,
			ExerciseKey:     session.ExerciseKey,
			CreatedAt:       session.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
			PainBefore:      session.PainBefore,
			PainAfter:       session.PainAfter,
			RepsCompleted:   session.RepsCompleted,
			AvgKneeAngleDeg: session.AvgKneeAngleDeg,
			RiskEvents:      session.RiskEvents,
			AdherenceScore:  session.AdherenceScore,
			AIConfidencePct: session.AIConfidencePct,
			AngleSamples:    json.RawMessage(session.AngleSamples),
			Events:          json.RawMessage(session.Events),
		},
	}, nil
}

func (rs *reportService) ExportPDF(ctx context.Context, requester *requestdata.RequestData, sessionID uuid.UUID) ([]byte, error) {
	export, err := rs.ExportJSON(ctx, requester, sessionID)
	if err != nil {
		return nil, err
	}
	sess := export.Session

	pdf := fpdf.New("P", "mm", "Letter", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("PhysioTwin Clinical - Session Report", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "PhysioTwin Clinical - Session Report")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(90, 90, 90)
	pdf.Cell(0, 6, export.Disclaimer)
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 7, "Session Summary")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	lines := []string{
		fmt.Sprintf("Session ID: %s", sess.ID),
		fmt.Sprintf("Patient: %s (%s)", orDash(sess.PatientName), sess.PatientID),
		fmt.Sprintf("Exercise: %s", sess.ExerciseKey),
		fmt.Sprintf("Timestamp: %s", sess.CreatedAt),
		fmt.Sprintf("Pain (before/after): %d / %d", sess.PainBefore, sess.PainAfter),
		fmt.Sprintf("Reps completed: %d", sess.RepsCompleted),
		tr(fmt.Sprintf("Avg knee angle: %.1f°", sess.AvgKneeAngleDeg)),
		fmt.Sprintf("Risk events: %d", sess.RiskEvents),
		fmt.Sprintf("Adherence score: %d / 100", sess.AdherenceScore),
		fmt.Sprintf("AI confidence: %d%%", sess.AIConfidencePct),
	}
	for _, line := range lines {
		pdf.Cell(0, 5, line)
		pdf.Ln(5)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 7, "Event Log (excerpt)")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 9)
	events := clinical.ParseEvents(sess.Events)
	if len(events) > pdfEventLimit {
		events = events[:pdfEventLimit]
	}
	for _, e := range events {
		line := fmt.Sprintf("%s | %s | %s | %s", e.TS, e.Severity, e.Type, e.Message)
		if len(line) > 120 {
			line = line[:120]
		}
		pdf.Cell(0, 4, tr(line))
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
