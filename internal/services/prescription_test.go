package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/physiotwin/backend/internal/apierr"
	"github.com/physiotwin/backend/internal/types"
)

func newPrescriptionServiceForTest(t *testing.T) (*testEnv, PrescriptionService) {
	t.Helper()
	env := newTestEnv(t)
	return env, NewPrescriptionService(env.db, env.log, env.rxRepo)
}

func validPatch() PrescriptionPatch {
	return PrescriptionPatch{
		SafeMinDeg:  150,
		SafeMaxDeg:  185,
		RepLimit:    10,
		DurationSec: 300,
	}
}

func TestGetOrCreateSeedsDefaults(t *testing.T) {
	env, svc := newPrescriptionServiceForTest(t)
	patient := env.createUser(t, types.RolePatient)

	rx, err := svc.GetOrCreate(context.Background(), patient.ID, "knee_extension_seated")
	require.NoError(t, err)
	assert.Equal(t, 150, rx.SafeMinDeg)
	assert.Equal(t, 185, rx.SafeMaxDeg)
	assert.Equal(t, 10, rx.RepLimit)
	assert.Equal(t, 300, rx.DurationSec)
	assert.Equal(t, 15, rx.DeviationStopDeg)
	assert.Equal(t, 1, rx.ProtocolVersion)
	assert.False(t, rx.IsLocked)

	again, err := svc.GetOrCreate(context.Background(), patient.ID, "knee_extension_seated")
	require.NoError(t, err)
	assert.Equal(t, rx.ID, again.ID, "second access returns the same row")
}

func TestGetOrCreateUnknownExerciseUsesFallback(t *testing.T) {
	env, svc := newPrescriptionServiceForTest(t)
	patient := env.createUser(t, types.RolePatient)

	rx, err := svc.GetOrCreate(context.Background(), patient.ID, "mystery_exercise")
	require.NoError(t, err)
	assert.Equal(t, 60, rx.SafeMinDeg)
	assert.Equal(t, 170, rx.SafeMaxDeg)
	assert.Equal(t, 8, rx.RepLimit)
}

func TestUpdateBumpsVersionOnChange(t *testing.T) {
	env, svc := newPrescriptionServiceForTest(t)
	patient := env.createUser(t, types.RolePatient)

	patch := validPatch()
	patch.RepLimit = 12

	rx, err := svc.Update(context.Background(), patient.ID, "knee_extension_seated", patch)
	require.NoError(t, err)
	assert.Equal(t, 2, rx.ProtocolVersion)
	assert.Equal(t, 12, rx.RepLimit)
}

func TestUpdateIdenticalValuesIsVersionNoOp(t *testing.T) {
	env, svc := newPrescriptionServiceForTest(t)
	patient := env.createUser(t, types.RolePatient)

	// First write matches the seeded defaults exactly.
	rx, err := svc.Update(context.Background(), patient.ID, "knee_extension_seated", validPatch())
	require.NoError(t, err)
	assert.Equal(t, 1, rx.ProtocolVersion, "identical values must not bump the version")

	// A replay of a real change bumps once, then stays put.
	patch := validPatch()
	patch.SafeMaxDeg = 190
	rx, err = svc.Update(context.Background(), patient.ID, "knee_extension_seated", patch)
	require.NoError(t, err)
	assert.Equal(t, 2, rx.ProtocolVersion)

	rx, err = svc.Update(context.Background(), patient.ID, "knee_extension_seated", patch)
	require.NoError(t, err)
	assert.Equal(t, 2, rx.ProtocolVersion, "replayed edit must not inflate the audit trail")
}

func TestUpdateLockToggleBumpsVersion(t *testing.T) {
	env, svc := newPrescriptionServiceForTest(t)
	patient := env.createUser(t, types.RolePatient)

	locked := true
	patch := validPatch()
	patch.IsLocked = &locked

	rx, err := svc.Update(context.Background(), patient.ID, "knee_extension_seated", patch)
	require.NoError(t, err)
	assert.True(t, rx.IsLocked)
	assert.Equal(t, 2, rx.ProtocolVersion)

	// Absent IsLocked leaves the lock as-is.
	rx, err = svc.Update(context.Background(), patient.ID, "knee_extension_seated", validPatch())
	require.NoError(t, err)
	assert.True(t, rx.IsLocked)
	assert.Equal(t, 2, rx.ProtocolVersion)
}

func TestUpdateTemplateKeyChangeBumpsVersion(t *testing.T) {
	env, svc := newPrescriptionServiceForTest(t)
	patient := env.createUser(t, types.RolePatient)

	tpl := "acl_rehab_week_4"
	patch := validPatch()
	patch.TemplateKey = &tpl

	rx, err := svc.Update(context.Background(), patient.ID, "knee_extension_seated", patch)
	require.NoError(t, err)
	require.NotNil(t, rx.TemplateKey)
	assert.Equal(t, tpl, *rx.TemplateKey)
	assert.Equal(t, 2, rx.ProtocolVersion)
}

func TestUpdateRejectsInvalidRanges(t *testing.T) {
	env, svc := newPrescriptionServiceForTest(t)
	patient := env.createUser(t, types.RolePatient)

	cases := []struct {
		name   string
		mutate func(*PrescriptionPatch)
	}{
		{"min below 60", func(p *PrescriptionPatch) { p.SafeMinDeg = 59 }},
		{"max above 200", func(p *PrescriptionPatch) { p.SafeMaxDeg = 201 }},
		{"zero reps", func(p *PrescriptionPatch) { p.RepLimit = 0 }},
		{"duration too short", func(p *PrescriptionPatch) { p.DurationSec = 29 }},
		{"min not below max", func(p *PrescriptionPatch) { p.SafeMinDeg = 185; p.SafeMaxDeg = 185 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			patch := validPatch()
			tc.mutate(&patch)
			_, err := svc.Update(context.Background(), patient.ID, "knee_extension_seated", patch)
			require.Error(t, err)
			assert.Equal(t, apierr.CodeValidation, apierr.From(err).Code)
		})
	}
}
