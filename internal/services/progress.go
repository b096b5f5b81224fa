package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/physiotwin/backend/internal/clinical"
	"github.com/physiotwin/backend/internal/logger"
	"github.com/physiotwin/backend/internal/repos"
	"github.com/physiotwin/backend/internal/types"
)

const (
	summarySessionWindow = 14
	summaryAlertLimit    = 10
	progressSessionLimit = 60
	defaultNextExercise  = "knee_extension_seated"
)

type ProgressService interface {
	PatientSummary(ctx context.Context, userID uuid.UUID) (*PatientSummary, error)
	PatientProgress(ctx context.Context, userID uuid.UUID) (*clinical.Progress, error)
	TherapistPatients(ctx context.Context) ([]TherapistPatientItem, error)
}

type NextExercise struct {
	Key        string `json:"key"`
	Name       string `json:"name"`
	TargetReps int    `json:"target_reps"`
}

type AlertSummaryItem struct {
	ID        uuid.UUID `json:"id"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	CreatedAt string    `json:"created_at"`
}

type PatientSummary struct {
	RecoveryScore     int                  `json:"recovery_score"`
	PainTrend         []clinical.PainPoint `json:"pain_trend"`
	CompletedSessions int64                `json:"completed_sessions"`
	NextExercise      NextExercise         `json:"next_exercise"`
	Alerts            []AlertSummaryItem   `json:"alerts"`
}

type TherapistPatientItem struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	RecoveryScore int       `json:"recovery_score"`
	LastSessionAt *string   `json:"last_session_at"`
	RiskAlerts    int64     `json:"risk_alerts"`
}

type progressService struct {
	db          *gorm.DB
	log         *logger.Logger
	userRepo    repos.UserRepo
	sessionRepo repos.SessionRepo
	alertRepo   repos.AlertRepo
	rxService   PrescriptionService
}

func NewProgressService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	sessionRepo repos.SessionRepo,
	alertRepo repos.AlertRepo,
	rxService PrescriptionService,
) ProgressService {
	return &progressService{
		db:          db,
		log:         log.With("service", "ProgressService"),
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		alertRepo:   alertRepo,
		rxService:   rxService,
	}
}

func (ps *progressService) PatientSummary(ctx context.Context, userID uuid.UUID) (*PatientSummary, error) {
	user, err := ps.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	sessions, err := ps.sessionRepo.ListByUser(ctx, nil, userID, summarySessionWindow, false)
	if err != nil {
		return nil, fmt.Errorf("load summary window: %w", err)
	}
	alerts, err := ps.alertRepo.ListByUser(ctx, nil, userID, summaryAlertLimit)
	if err != nil {
		return nil, fmt.Errorf("load alerts: %w", err)
	}
	completed, err := ps.sessionRepo.CountByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("count sessions: %w", err)
	}
	rx, err := ps.rxService.GetOrCreate(ctx, userID, defaultNextExercise)
	if err != nil {
		return nil, err
	}

	alertItems := make([]AlertSummaryItem, 0, len(alerts))
	for _, a := range alerts {
		alertItems = append(alertItems, AlertSummaryItem{
			ID:        a.ID,
			Level:     a.Level,
			Message:   a.Message,
			CreatedAt: a.CreatedAt.UTC().Format("2006-01-02"),
		})
	}

	return &PatientSummary{
		RecoveryScore:     user.RecoveryScore,
		PainTrend:         clinical.PainTrend(sessions),
		CompletedSessions: completed,
		NextExercise: NextExercise{
			Key:        defaultNextExercise,
			Name:       clinical.ExerciseName(defaultNextExercise),
			TargetReps: rx.RepLimit,
		},
		Alerts: alertItems,
	}, nil
}

func (ps *progressService) PatientProgress(ctx context.Context, userID uuid.UUID) (*clinical.Progress, error) {
	sessions, err := ps.sessionRepo.ListByUser(ctx, nil, userID, progressSessionLimit, true)
	if err != nil {
		return nil, fmt.Errorf("load progress window: %w", err)
	}
	progress := clinical.BuildProgress(sessions)
	return &progress, nil
}

// TherapistPatients builds the oversight dashboard: one row per patient with
// the derived score, last session date and alert count. Per-patient lookups
// fan out concurrently; row order stays deterministic.
func (ps *progressService) TherapistPatients(ctx context.Context) ([]TherapistPatientItem, error) {
	patients, err := ps.userRepo.ListByRole(ctx, nil, types.RolePatient)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}

	items := make([]TherapistPatientItem, len(patients))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, p := range patients {
		g.Go(func() error {
			last, err := ps.sessionRepo.LatestByUser(gctx, nil, p.ID)
			if err != nil {
				return fmt.Errorf("latest session for %s: %w", p.ID, err)
			}
			alertCount, err := ps.alertRepo.CountByUser(gctx, nil, p.ID)
			if err != nil {
				return fmt.Errorf("alert count for %s: %w", p.ID, err)
			}
			item := TherapistPatientItem{
				ID:            p.ID,
				Name:          p.Name,
				RecoveryScore: p.RecoveryScore,
				RiskAlerts:    alertCount,
			}
			if last != nil {
				d := last.CreatedAt.UTC().Format("2006-01-02")
				item.LastSessionAt = &d
			}
			mu.Lock()
			items[i] = item
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}
