package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/physiotwin/backend/internal/clinical"
	"github.com/physiotwin/backend/internal/logger"
	"github.com/physiotwin/backend/internal/repos"
	"github.com/physiotwin/backend/internal/types"
)

const (
	DemoPassword       = "Password123!"
	DemoPatientEmail   = "demo.patient@physiotwin.ai"
	DemoTherapistEmail = "demo.therapist@physiotwin.ai"
)

// SeedService provisions an idempotent demo dataset so a fresh instance is
// immediately usable.
type SeedService interface {
	Seed(ctx context.Context) error
}

type seedService struct {
	db          *gorm.DB
	log         *logger.Logger
	userRepo    repos.UserRepo
	sessionRepo repos.SessionRepo
	alertRepo   repos.AlertRepo
	rxRepo      repos.PrescriptionRepo
}

func NewSeedService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	sessionRepo repos.SessionRepo,
	alertRepo repos.AlertRepo,
	rxRepo repos.PrescriptionRepo,
) SeedService {
	return &seedService{
		db:          db,
		log:         log.With("service", "SeedService"),
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		alertRepo:   alertRepo,
		rxRepo:      rxRepo,
	}
}

func (s *seedService) Seed(ctx context.Context) error {
	patient, err := s.ensureUser(ctx, DemoPatientEmail, "Demo Patient", types.RolePatient, 72)
	if err != nil {
		return err
	}
	if _, err := s.ensureUser(ctx, DemoTherapistEmail, "Demo Therapist", types.RoleTherapist, 0); err != nil {
		return err
	}
	if err := s.ensurePrescription(ctx, patient.ID); err != nil {
		return err
	}
	if err := s.ensureSessions(ctx, patient.ID); err != nil {
		return err
	}
	s.log.Info("Demo data seeded")
	return nil
}

func (s *seedService) ensureUser(ctx context.Context, email, name, role string, recoveryScore int) (*types.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, nil, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load demo user: %w", err)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash demo password: %w", err)
	}
	user = &types.User{
		ID:            uuid.New(),
		Email:         email,
		Name:          name,
		Role:          role,
		Password:      string(hashed),
		RecoveryScore: recoveryScore,
	}
	if err := s.userRepo.Create(ctx, nil, user); err != nil {
		return nil, fmt.Errorf("create demo user: %w", err)
	}
	return user, nil
}

func (s *seedService) ensurePrescription(ctx context.Context, patientID uuid.UUID) error {
	if _, err := s.rxRepo.Get(ctx, nil, patientID, "knee_extension_seated"); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("load demo prescription: %w", err)
	}
	defaults := clinical.DefaultConstraints("knee_extension_seated")
	rx := &types.ExercisePrescription{
		ID:               uuid.New(),
		PatientID:        patientID,
		ExerciseKey:      "knee_extension_seated",
		SafeMinDeg:       defaults.SafeMinDeg,
		SafeMaxDeg:       defaults.SafeMaxDeg,
		RepLimit:         defaults.RepLimit,
		DurationSec:      defaults.DurationSec,
		DeviationStopDeg: clinical.DeviationStopDeg,
		ProtocolVersion:  1,
		UpdatedAt:        time.Now().UTC(),
	}
	if err := s.rxRepo.Create(ctx, nil, rx); err != nil {
		return fmt.Errorf("create demo prescription: %w", err)
	}
	return nil
}

func (s *seedService) ensureSessions(ctx context.Context, patientID uuid.UUID) error {
	count, err := s.sessionRepo.CountByUser(ctx, nil, patientID)
	if err != nil {
		return fmt.Errorf("count demo sessions: %w", err)
	}
	if count > 0 {
		return nil
	}

	base := time.Now().UTC().AddDate(0, 0, -7)
	seeds := []struct {
		painBefore, painAfter, reps int
		angle                       float64
		risk, adherence, confidence int
	}{
		{5, 4, 8, 158.0, 1, 68, 82},
		{4, 3, 10, 164.0, 0, 78, 86},
		{3, 3, 10, 169.0, 0, 82, 90},
	}
	for i, seed := range seeds {
		session := &types.ExerciseSession{
			ID:              uuid.New(),
			UserID:          patientID,
			ExerciseKey:     "knee_extension_seated",
			PainBefore:      seed.painBefore,
			PainAfter:       seed.painAfter,
			RepsCompleted:   seed.reps,
			AvgKneeAngleDeg: seed.angle,
			RiskEvents:      seed.risk,
			AdherenceScore:  seed.adherence,
			AIConfidencePct: seed.confidence,
			AngleSamples:    datatypes.JSON("[]"),
			Events:          datatypes.JSON("[]"),
			CreatedAt:       base.AddDate(0, 0, i*2),
		}
		if err := s.sessionRepo.Create(ctx, nil, session); err != nil {
			return fmt.Errorf("create demo session: %w", err)
		}
	}

	alert := &types.RiskAlert{
		ID:        uuid.New(),
		UserID:    patientID,
		Level:     types.AlertLevelYellow,
		Message:   "Mild compensation detected last session.",
		CreatedAt: time.Now().UTC().AddDate(0, 0, -2),
	}
	if err := s.alertRepo.Create(ctx, nil, alert); err != nil {
		return fmt.Errorf("create demo alert: %w", err)
	}
	return nil
}
