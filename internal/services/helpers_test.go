package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/physiotwin/backend/internal/logger"
	"github.com/physiotwin/backend/internal/repos"
	"github.com/physiotwin/backend/internal/types"
)

// testEnv wires the repo layer over an in-memory sqlite so service tests run
// against real SQL without a server.
type testEnv struct {
	db          *gorm.DB
	log         *logger.Logger
	userRepo    repos.UserRepo
	tokenRepo   repos.UserTokenRepo
	sessionRepo repos.SessionRepo
	alertRepo   repos.AlertRepo
	rxRepo      repos.PrescriptionRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log, err := logger.New("test")
	require.NoError(t, err)

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// One connection, or each pooled conn would see its own empty :memory: db.
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, gdb.AutoMigrate(
		&types.User{},
		&types.UserToken{},
		&types.ExerciseSession{},
		&types.RiskAlert{},
		&types.ExercisePrescription{},
	))

	return &testEnv{
		db:          gdb,
		log:         log,
		userRepo:    repos.NewUserRepo(gdb, log),
		tokenRepo:   repos.NewUserTokenRepo(gdb, log),
		sessionRepo: repos.NewSessionRepo(gdb, log),
		alertRepo:   repos.NewAlertRepo(gdb, log),
		rxRepo:      repos.NewPrescriptionRepo(gdb, log),
	}
}

func (e *testEnv) createUser(t *testing.T, role string) *types.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("Password123!"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &types.User{
		ID:       uuid.New(),
		Email:    uuid.NewString() + "@example.com",
		Name:     "Test " + role,
		Role:     role,
		Password: string(hashed),
	}
	require.NoError(t, e.userRepo.Create(context.Background(), nil, user))
	return user
}

type sessionSeed struct {
	painBefore int
	painAfter  int
	reps       int
	angle      float64
	risk       int
	adherence  int
	createdAt  time.Time
	events     string
}

func (e *testEnv) createSession(t *testing.T, userID uuid.UUID, seed sessionSeed) *types.ExerciseSession {
	t.Helper()
	events := seed.events
	if events == "" {
		events = "[]"
	}
	session := &types.ExerciseSession{
		ID:              uuid.New(),
		UserID:          userID,
		ExerciseKey:     "knee_extension_seated",
		PainBefore:      seed.painBefore,
		PainAfter:       seed.painAfter,
		RepsCompleted:   seed.reps,
		AvgKneeAngleDeg: seed.angle,
		RiskEvents:      seed.risk,
		AdherenceScore:  seed.adherence,
		AIConfidencePct: 90,
		AngleSamples:    datatypes.JSON("[]"),
		Events:          datatypes.JSON(events),
		CreatedAt:       seed.createdAt,
	}
	require.NoError(t, e.sessionRepo.Create(context.Background(), nil, session))
	return session
}
