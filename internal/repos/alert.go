package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/physiotwin/backend/internal/logger"
	"github.com/physiotwin/backend/internal/types"
)

type AlertRepo interface {
	Create(ctx context.Context, tx *gorm.DB, alert *types.RiskAlert) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.RiskAlert, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.RiskAlert, error)
	CountByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
	Save(ctx context.Context, tx *gorm.DB, alert *types.RiskAlert) error
}

type alertRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAlertRepo(db *gorm.DB, baseLog *logger.Logger) AlertRepo {
	return &alertRepo{db: db, log: baseLog.With("repo", "AlertRepo")}
}

func (r *alertRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *alertRepo) Create(ctx context.Context, tx *gorm.DB, alert *types.RiskAlert) error {
	return r.conn(tx).WithContext(ctx).Create(alert).Error
}

func (r *alertRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.RiskAlert, error) {
	var alert types.RiskAlert
	err := r.conn(tx).WithContext(ctx).Where("id = ?", id).First(&alert).Error
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *alertRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.RiskAlert, error) {
	q := r.conn(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var results []*types.RiskAlert
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *alertRepo) CountByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.conn(tx).WithContext(ctx).
		Model(&types.RiskAlert{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *alertRepo) Save(ctx context.Context, tx *gorm.DB, alert *types.RiskAlert) error {
	return r.conn(tx).WithContext(ctx).Save(alert).Error
}
