package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	svc := NewSeedService(env.db, env.log, env.userRepo, env.sessionRepo, env.alertRepo, env.rxRepo)

	require.NoError(t, svc.Seed(context.Background()))
	require.NoError(t, svc.Seed(context.Background()))

	patient, err := env.userRepo.GetByEmail(context.Background(), nil, DemoPatientEmail)
	require.NoError(t, err)

	count, err := env.sessionRepo.CountByUser(context.Background(), nil, patient.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count, "reseeding must not duplicate sessions")

	rx, err := env.rxRepo.Get(context.Background(), nil, patient.ID, "knee_extension_seated")
	require.NoError(t, err)
	assert.Equal(t, 1, rx.ProtocolVersion)

	_, err = env.userRepo.GetByEmail(context.Background(), nil, DemoTherapistEmail)
	assert.NoError(t, err)
}
