package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/physiotwin/backend/internal/apierr"
	"github.com/physiotwin/backend/internal/types"
)

func newAlertServiceForTest(t *testing.T) (*testEnv, AlertService) {
	t.Helper()
	env := newTestEnv(t)
	return env, NewAlertService(env.db, env.log, env.alertRepo)
}

func (e *testEnv) createAlert(t *testing.T, userID uuid.UUID, level string) *types.RiskAlert {
	t.Helper()
	alert := &types.RiskAlert{
		ID:        uuid.New(),
		UserID:    userID,
		Level:     level,
		Message:   "Deviation detected. Clinician review recommended.",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, e.alertRepo.Create(context.Background(), nil, alert))
	return alert
}

func TestReviewSetsAllFieldsTogether(t *testing.T) {
	env, svc := newAlertServiceForTest(t)
	patient := env.createUser(t, types.RolePatient)
	therapist := env.createUser(t, types.RoleTherapist)
	alert := env.createAlert(t, patient.ID, types.AlertLevelYellow)

	note := "Reviewed in clinic, mild compensation only."
	reviewed, err := svc.Review(context.Background(), therapist.ID, alert.ID, types.ReviewApproved, &note)
	require.NoError(t, err)

	require.NotNil(t, reviewed.ReviewStatus)
	assert.Equal(t, types.ReviewApproved, *reviewed.ReviewStatus)
	require.NotNil(t, reviewed.ReviewedBy)
	assert.Equal(t, therapist.ID, *reviewed.ReviewedBy)
	require.NotNil(t, reviewed.ReviewedAt)
	require.NotNil(t, reviewed.ReviewNote)
	assert.Equal(t, note, *reviewed.ReviewNote)

	// The write is persisted, not just returned.
	stored, err := env.alertRepo.GetByID(context.Background(), nil, alert.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ReviewStatus)
	assert.Equal(t, types.ReviewApproved, *stored.ReviewStatus)
}

func TestReviewWithoutNote(t *testing.T) {
	env, svc := newAlertServiceForTest(t)
	patient := env.createUser(t, types.RolePatient)
	therapist := env.createUser(t, types.RoleTherapist)
	alert := env.createAlert(t, patient.ID, types.AlertLevelRed)

	reviewed, err := svc.Review(context.Background(), therapist.ID, alert.ID, types.ReviewRejected, nil)
	require.NoError(t, err)
	assert.Nil(t, reviewed.ReviewNote)
	require.NotNil(t, reviewed.ReviewStatus)
	assert.Equal(t, types.ReviewRejected, *reviewed.ReviewStatus)
}

func TestReviewRejectsUnknownStatus(t *testing.T) {
	env, svc := newAlertServiceForTest(t)
	patient := env.createUser(t, types.RolePatient)
	therapist := env.createUser(t, types.RoleTherapist)
	alert := env.createAlert(t, patient.ID, types.AlertLevelYellow)

	_, err := svc.Review(context.Background(), therapist.ID, alert.ID, "escalated", nil)
	require.Error(t, err)
	assert.Equal(t, apierr.CodeInvalidReviewStatus, apierr.From(err).Code)

	// Rejected review must leave the alert untouched.
	stored, err := env.alertRepo.GetByID(context.Background(), nil, alert.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ReviewStatus)
	assert.Nil(t, stored.ReviewedBy)
	assert.Nil(t, stored.ReviewedAt)
}

func TestReviewRequiresReviewerIdentity(t *testing.T) {
	env, svc := newAlertServiceForTest(t)
	patient := env.createUser(t, types.RolePatient)
	alert := env.createAlert(t, patient.ID, types.AlertLevelYellow)

	_, err := svc.Review(context.Background(), uuid.Nil, alert.ID, types.ReviewNoted, nil)
	require.Error(t, err)
	assert.Equal(t, apierr.CodeValidation, apierr.From(err).Code)
}

func TestReviewUnknownAlert(t *testing.T) {
	env, svc := newAlertServiceForTest(t)
	therapist := env.createUser(t, types.RoleTherapist)

	_, err := svc.Review(context.Background(), therapist.ID, uuid.New(), types.ReviewApproved, nil)
	require.Error(t, err)
	assert.Equal(t, apierr.CodeNotFound, apierr.From(err).Code)
}

func TestListForPatientNewestFirst(t *testing.T) {
	env, svc := newAlertServiceForTest(t)
	patient := env.createUser(t, types.RolePatient)

	old := &types.RiskAlert{
		ID: uuid.New(), UserID: patient.ID, Level: types.AlertLevelYellow,
		Message: "old", CreatedAt: time.Now().UTC().Add(-48 * time.Hour),
	}
	require.NoError(t, env.alertRepo.Create(context.Background(), nil, old))
	recent := env.createAlert(t, patient.ID, types.AlertLevelRed)

	alerts, err := svc.ListForPatient(context.Background(), patient.ID)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, recent.ID, alerts[0].ID)
	assert.Equal(t, old.ID, alerts[1].ID)
}
