package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/physiotwin/backend/internal/apierr"
	"github.com/physiotwin/backend/internal/requestdata"
	"github.com/physiotwin/backend/internal/types"
)

func newReportServiceForTest(t *testing.T) (*testEnv, SessionService, ReportService) {
	t.Helper()
	env := newTestEnv(t)
	sessionService := NewSessionService(env.db, env.log, env.sessionRepo, env.alertRepo, env.userRepo)
	reportService := NewReportService(env.log, sessionService, env.userRepo)
	return env, sessionService, reportService
}

func TestExportJSONCarriesLogsVerbatim(t *testing.T) {
	env, sessionService, reportService := newReportServiceForTest(t)
	patient := env.createUser(t, types.RolePatient)

	in := validInput()
	in.AngleSamples = json.RawMessage(`[{"t":0,"deg":150.5},{"t":1,"deg":152.0}]`)
	in.Events = json.RawMessage(`[{"ts":"2026-08-01T10:00:00Z","severity":"info","type":"rep_complete","message":"Rep 1 complete"}]`)

	session, _, err := sessionService.Ingest(context.Background(), patient.ID, in)
	require.NoError(t, err)

	rd := &requestdata.RequestData{UserID: patient.ID, Role: types.RolePatient}
	export, err := reportService.ExportJSON(context.Background(), rd, session.ID)
	require.NoError(t, err)

	assert.Contains(t, export.Disclaimer, "Decision support only")
	assert.Equal(t, session.ID, export.Session.ID)
	assert.Equal(t, patient.ID, export.Session.PatientID)
	assert.Equal(t, patient.Name, export.Session.PatientName)
	assert.JSONEq(t, string(in.AngleSamples), string(export.Session.AngleSamples))
	assert.JSONEq(t, string(in.Events), string(export.Session.Events))
}

func TestExportHonorsAccessControl(t *testing.T) {
	env, sessionService, reportService := newReportServiceForTest(t)
	owner := env.createUser(t, types.RolePatient)
	other := env.createUser(t, types.RolePatient)

	session, _, err := sessionService.Ingest(context.Background(), owner.ID, validInput())
	require.NoError(t, err)

	rd := &requestdata.RequestData{UserID: other.ID, Role: types.RolePatient}
	_, err = reportService.ExportJSON(context.Background(), rd, session.ID)
	require.Error(t, err)
	assert.Equal(t, apierr.CodeForbidden, apierr.From(err).Code)

	_, err = reportService.ExportPDF(context.Background(), rd, session.ID)
	require.Error(t, err)
	assert.Equal(t, apierr.CodeForbidden, apierr.From(err).Code)
}

func TestExportPDFRendersDocument(t *testing.T) {
	env, sessionService, reportService := newReportServiceForTest(t)
	patient := env.createUser(t, types.RolePatient)

	in := validInput()
	in.Events = json.RawMessage(`[{"ts":"2026-08-01T10:00:00Z","severity":"warning","type":"deviation","message":"Deviation 12 deg"}]`)
	session, _, err := sessionService.Ingest(context.Background(), patient.ID, in)
	require.NoError(t, err)

	rd := &requestdata.RequestData{UserID: patient.ID, Role: types.RolePatient}
	pdfBytes, err := reportService.ExportPDF(context.Background(), rd, session.ID)
	require.NoError(t, err)
	require.NotEmpty(t, pdfBytes)
	assert.Equal(t, "%PDF", string(pdfBytes[:4]))
}
