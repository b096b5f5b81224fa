package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/physiotwin/backend/internal/apierr"
	"github.com/physiotwin/backend/internal/logger"
	"github.com/physiotwin/backend/internal/repos"
	"github.com/physiotwin/backend/internal/types"
)

const therapistAlertListLimit = 200

type AlertService interface {
	ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*types.RiskAlert, error)
	Review(ctx context.Context, reviewerID, alertID uuid.UUID, status string, note *string) (*types.RiskAlert, error)
}

type alertService struct {
	db        *gorm.DB
	log       *logger.Logger
	alertRepo repos.AlertRepo
}

func NewAlertService(db *gorm.DB, log *logger.Logger, alertRepo repos.AlertRepo) AlertService {
	return &alertService{
		db:        db,
		log:       log.With("service", "AlertService"),
		alertRepo: alertRepo,
	}
}

func (as *alertService) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*types.RiskAlert, error) {
	alerts, err := as.alertRepo.ListByUser(ctx, nil, patientID, therapistAlertListLimit)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	return alerts, nil
}

// Review records the clinician verdict on an alert. The review fields are
// all-or-nothing: status, reviewer and timestamp are written together, and a
// review without a reviewer identity is rejected outright.
func (as *alertService) Review(ctx context.Context, reviewerID, alertID uuid.UUID, status string, note *string) (*types.RiskAlert, error) {
	if !types.ValidReviewStatus(status) {
		return nil, apierr.InvalidReviewStatus(status)
	}
	if reviewerID == uuid.Nil {
		return nil, apierr.Validation("reviewer identity is required")
	}

	alert, err := as.alertRepo.GetByID(ctx, nil, alertID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("alert")
		}
		return nil, fmt.Errorf("load alert: %w", err)
	}

	now := time.Now().UTC()
	alert.ReviewStatus = &status
	alert.ReviewNote = note
	alert.ReviewedBy = &reviewerID
	alert.ReviewedAt = &now

	if err := as.alertRepo.Save(ctx, nil, alert); err != nil {
		return nil, fmt.Errorf("save review: %w", err)
	}
	as.log.Info("Alert reviewed", "alert_id", alertID.String(), "status", status)
	return alert, nil
}
