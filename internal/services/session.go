package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/physiotwin/backend/internal/apierr"
	"github.com/physiotwin/backend/internal/clinical"
	"github.com/physiotwin/backend/internal/logger"
	"github.com/physiotwin/backend/internal/repos"
	"github.com/physiotwin/backend/internal/requestdata"
	"github.com/physiotwin/backend/internal/types"
)

const (
	patientSessionListLimit   = 60
	therapistSessionListLimit = 120
)

type SessionService interface {
	Ingest(ctx context.Context, userID uuid.UUID, in SessionCreateInput) (*types.ExerciseSession, *types.RiskAlert, error)
	Get(ctx context.Context, requester *requestdata.RequestData, sessionID uuid.UUID) (*types.ExerciseSession, error)
	ListForPatient(ctx context.Context, userID uuid.UUID) ([]SessionListItem, error)
	ListForTherapist(ctx context.Context, patientID uuid.UUID) ([]*types.ExerciseSession, error)
}

// SessionCreateInput is the payload the exercise runtime uploads when a
// session finishes. Angle samples and events are stored verbatim.
type SessionCreateInput struct {
	ExerciseKey     string          `json:"exercise_key"`
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

type SessionListItem struct {
	*types.ExerciseSession
	IsPartial bool `json:"is_partial"`
}

type sessionService struct {
	db          *gorm.DB
	log         *logger.Logger
	sessionRepo repos.SessionRepo
	alertRepo   repos.AlertRepo
	userRepo    repos.UserRepo
}

func NewSessionService(
	db *gorm.DB,
	log *logger.Logger,
	sessionRepo repos.SessionRepo,
	alertRepo repos.AlertRepo,
	userRepo repos.UserRepo,
) SessionService {
	return &sessionService{
		db:          db,
		log:         log.With("service", "SessionService"),
		sessionRepo: sessionRepo,
		alertRepo:   alertRepo,
		userRepo:    userRepo,
	}
}

// Ingest durably stores a session, then runs triage and recovery scoring over
// the persisted history, all inside one transaction so the new row is visible
// to the history reads. Triage may create at most one reviewable alert; it
// never touches prescriptions.
func (ss *sessionService) Ingest(ctx context.Context, userID uuid.UUID, in SessionCreateInput) (*types.ExerciseSession, *types.RiskAlert, error) {
	if err := validateSessionInput(in); err != nil {
		return nil, nil, err
	}

	session := &types.ExerciseSession{
		ID:              uuid.New(),
		UserID:          userID,
		ExerciseKey:     in.ExerciseKey,
		PainBefore:      in.PainBefore,
		PainAfter:       in.PainAfter,
		RepsCompleted:   in.RepsCompleted,
		AvgKneeAngleDeg: in.AvgKneeAngleDeg,
		RiskEvents:      in.RiskEvents,
		AdherenceScore:  in.AdherenceScore,
		AIConfidencePct: in.AIConfidencePct,
		AngleSamples:    datatypes.JSON(normalizeJSONArray(in.AngleSamples)),
		Events:          datatypes.JSON(normalizeJSONArray(in.Events)),
		CreatedAt:       time.Now().UTC(),
	}

	var alert *types.RiskAlert
	err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ss.sessionRepo.Create(ctx, tx, session); err != nil {
			return fmt.Errorf("create session: %w", err)
		}

		finding := clinical.Classify(clinical.TriageInput{
			PainBefore: session.PainBefore,
			PainAfter:  session.PainAfter,
			RiskEvents: session.RiskEvents,
			Events:     clinical.ParseEvents(session.Events),
		})
		if finding != nil {
			alert = &types.RiskAlert{
				ID:        uuid.New(),
				UserID:    userID,
				Level:     finding.Level,
				Message:   finding.Message,
				CreatedAt: time.Now().UTC(),
			}
			if err := ss.alertRepo.Create(ctx, tx, alert); err != nil {
				return fmt.Errorf("create alert: %w", err)
			}
		}

		history, err := ss.sessionRepo.ListByUser(ctx, tx, userID, clinical.RecoveryWindow, false)
		if err != nil {
			return fmt.Errorf("load history: %w", err)
		}
		score := clinical.RecoveryScore(history)
		if err := ss.userRepo.UpdateRecoveryScore(ctx, tx, userID, score); err != nil {
			return fmt.Errorf("update recovery score: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	if alert != nil {
		ss.log.Info("Session ingested with alert",
			"session_id", session.ID.String(), "user_id", userID.String(), "level", alert.Level)
	} else {
		ss.log.Debug("Session ingested", "session_id", session.ID.String(), "user_id", userID.String())
	}
	return session, alert, nil
}

func (ss *sessionService) Get(ctx context.Context, requester *requestdata.RequestData, sessionID uuid.UUID) (*types.ExerciseSession, error) {
	session, err := ss.sessionRepo.GetByID(ctx, nil, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("session")
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !canAccessSession(requester, session) {
		return nil, apierr.Forbidden("not allowed to access this session")
	}
	return session, nil
}

func (ss *sessionService) ListForPatient(ctx context.Context, userID uuid.UUID) ([]SessionListItem, error) {
	sessions, err := ss.sessionRepo.ListByUser(ctx, nil, userID, patientSessionListLimit, false)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	items := make([]SessionListItem, 0, len(sessions))
	for _, s := range sessions {
		items = append(items, SessionListItem{
			ExerciseSession: s,
			IsPartial:       clinical.IsPartialSession(s.Events),
		})
	}
	return items, nil
}

func (ss *sessionService) ListForTherapist(ctx context.Context, patientID uuid.UUID) ([]*types.ExerciseSession, error) {
	sessions, err := ss.sessionRepo.ListByUser(ctx, nil, patientID, therapistSessionListLimit, false)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// Owners see their own sessions; therapists see everything.
func canAccessSession(requester *requestdata.RequestData, session *types.ExerciseSession) bool {
	if requester == nil {
		return false
	}
	return requester.IsTherapist() || requester.UserID == session.UserID
}

func validateSessionInput(in SessionCreateInput) error {
	if in.ExerciseKey == "" {
		return apierr.Validation("exercise_key is required")
	}
	checks := []struct {
		name   string
		val    int
		lo, hi int
	}{
		{"pain_before", in.PainBefore, 0, 10},
		{"pain_after", in.PainAfter, 0, 10},
		{"reps_completed", in.RepsCompleted, 0, 200},
		{"risk_events", in.RiskEvents, 0, 1000},
		{"adherence_score", in.AdherenceScore, 0, 100},
		{"ai_confidence_pct", in.AIConfidencePct, 0, 100},
	}
	for _, c := range checks {
		if c.val < c.lo || c.val > c.hi {
			return apierr.Validation("%s must be in [%d,%d], got %d", c.name, c.lo, c.hi, c.val)
		}
	}
	if in.AvgKneeAngleDeg < 0 || in.AvgKneeAngleDeg > 250 {
		return apierr.Validation("avg_knee_angle_deg must be in [0,250], got %v", in.AvgKneeAngleDeg)
	}
	return nil
}

// normalizeJSONArray keeps the stored log a valid JSON document so exports
// can return it verbatim. Absent or invalid input degrades to [].
func normalizeJSONArray(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || !json.Valid(raw) {
		return json.RawMessage("[]")
	}
	return raw
}
