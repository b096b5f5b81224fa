package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/physiotwin/backend/internal/apierr"
	"github.com/physiotwin/backend/internal/clinical"
	"github.com/physiotwin/backend/internal/logger"
	"github.com/physiotwin/backend/internal/repos"
	"github.com/physiotwin/backend/internal/types"
)

type PrescriptionService interface {
	GetOrCreate(ctx context.Context, patientID uuid.UUID, exerciseKey string) (*types.ExercisePrescription, error)
	Update(ctx context.Context, patientID uuid.UUID, exerciseKey string, patch PrescriptionPatch) (*types.ExercisePrescription, error)
}

// PrescriptionPatch is a therapist edit. IsLocked and TemplateKey are only
// applied when present; absence means leave unchanged.
type PrescriptionPatch struct {
	SafeMinDeg  int     `json:"safe_min_deg"`
	SafeMaxDeg  int     `json:"safe_max_deg"`
	RepLimit    int     `json:"rep_limit"`
	DurationSec int     `json:"duration_sec"`
	IsLocked    *bool   `json:"is_locked"`
	TemplateKey *string `json:"template_key"`
}

type prescriptionService struct {
	db     *gorm.DB
	log    *logger.Logger
	rxRepo repos.PrescriptionRepo
}

func NewPrescriptionService(db *gorm.DB, log *logger.Logger, rxRepo repos.PrescriptionRepo) PrescriptionService {
	return &prescriptionService{
		db:     db,
		log:    log.With("service", "PrescriptionService"),
		rxRepo: rxRepo,
	}
}

// GetOrCreate returns the prescription for a (patient, exercise) pair,
// creating it from the clinical defaults on first access. The unique index on
// the pair makes concurrent first access safe: the loser of the insert race
// re-reads the winner's row.
func (ps *prescriptionService) GetOrCreate(ctx context.Context, patientID uuid.UUID, exerciseKey string) (*types.ExercisePrescription, error) {
	rx, err := ps.rxRepo.Get(ctx, nil, patientID, exerciseKey)
	if err == nil {
		return rx, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load prescription: %w", err)
	}

	defaults := clinical.DefaultConstraints(exerciseKey)
	rx = &types.ExercisePrescription{
		ID:               uuid.New(),
		PatientID:        patientID,
		ExerciseKey:      exerciseKey,
		SafeMinDeg:       defaults.SafeMinDeg,
		SafeMaxDeg:       defaults.SafeMaxDeg,
		RepLimit:         defaults.RepLimit,
		DurationSec:      defaults.DurationSec,
		DeviationStopDeg: clinical.DeviationStopDeg,
		ProtocolVersion:  1,
		IsLocked:         false,
		UpdatedAt:        time.Now().UTC(),
	}
	if createErr := ps.rxRepo.Create(ctx, nil, rx); createErr != nil {
		// Lost a concurrent-create race on the unique index.
		if existing, readErr := ps.rxRepo.Get(ctx, nil, patientID, exerciseKey); readErr == nil {
			return existing, nil
		}
		return nil, fmt.Errorf("create prescription: %w", createErr)
	}
	ps.log.Info("Prescription created from defaults",
		"patient_id", patientID.String(), "exercise_key", exerciseKey)
	return rx, nil
}

// Update applies a therapist edit under a row lock and bumps the protocol
// version by exactly one when any versioned field actually changes. Identical
// values are a no-op on the version, so replays do not inflate the audit
// trail. Version bump and field writes commit together or not at all.
func (ps *prescriptionService) Update(ctx context.Context, patientID uuid.UUID, exerciseKey string, patch PrescriptionPatch) (*types.ExercisePrescription, error) {
	if err := validatePrescriptionPatch(patch); err != nil {
		return nil, err
	}

	// Ensure the row exists before entering the locked update.
	if _, err := ps.GetOrCreate(ctx, patientID, exerciseKey); err != nil {
		return nil, err
	}

	var updated *types.ExercisePrescription
	err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rx, err := ps.rxRepo.GetLocked(ctx, tx, patientID, exerciseKey)
		if err != nil {
			return fmt.Errorf("lock prescription: %w", err)
		}

		before := versionedFields(rx)

		rx.SafeMinDeg = patch.SafeMinDeg
		rx.SafeMaxDeg = patch.SafeMaxDeg
		rx.RepLimit = patch.RepLimit
		rx.DurationSec = patch.DurationSec
		if patch.IsLocked != nil {
			rx.IsLocked = *patch.IsLocked
		}
		if patch.TemplateKey != nil {
			rx.TemplateKey = patch.TemplateKey
		}

		if before != versionedFields(rx) {
			rx.ProtocolVersion++
			rx.UpdatedAt = time.Now().UTC()
		}

		if err := ps.rxRepo.Save(ctx, tx, rx); err != nil {
			return fmt.Errorf("save prescription: %w", err)
		}
		updated = rx
		return nil
	})
	if err != nil {
		return nil, err
	}

	ps.log.Info("Prescription updated",
		"patient_id", patientID.String(),
		"exercise_key", exerciseKey,
		"protocol_version", updated.ProtocolVersion)
	return updated, nil
}

// versionedFields snapshots the six fields whose change bumps the protocol
// version. Comparable by value, so a plain != detects any difference.
type rxSnapshot struct {
	safeMinDeg  int
	safeMaxDeg  int
	repLimit    int
	durationSec int
	isLocked    bool
	templateKey string
}

func versionedFields(rx *types.ExercisePrescription) rxSnapshot {
	snap := rxSnapshot{
		safeMinDeg:  rx.SafeMinDeg,
		safeMaxDeg:  rx.SafeMaxDeg,
		repLimit:    rx.RepLimit,
		durationSec: rx.DurationSec,
		isLocked:    rx.IsLocked,
	}
	if rx.TemplateKey != nil {
		snap.templateKey = *rx.TemplateKey
	}
	return snap
}

func validatePrescriptionPatch(patch PrescriptionPatch) error {
	if patch.SafeMinDeg < 60 || patch.SafeMinDeg > 200 {
		return apierr.Validation("safe_min_deg must be in [60,200], got %d", patch.SafeMinDeg)
	}
	if patch.SafeMaxDeg < 60 || patch.SafeMaxDeg > 200 {
		return apierr.Validation("safe_max_deg must be in [60,200], got %d", patch.SafeMaxDeg)
	}
	if patch.RepLimit < 1 || patch.RepLimit > 200 {
		return apierr.Validation("rep_limit must be in [1,200], got %d", patch.RepLimit)
	}
	if patch.DurationSec < 30 || patch.DurationSec > 3600 {
		return apierr.Validation("duration_sec must be in [30,3600], got %d", patch.DurationSec)
	}
	if patch.SafeMinDeg >= patch.SafeMaxDeg {
		return apierr.Validation("safe_min_deg must be less than safe_max_deg")
	}
	return nil
}
