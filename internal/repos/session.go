package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/physiotwin/backend/internal/logger"
	"github.com/physiotwin/backend/internal/types"
)

type SessionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, session *types.ExerciseSession) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ExerciseSession, error)
	// ListByUser returns sessions for one patient ordered by created_at.
	// ascending=false yields newest first. limit <= 0 means no limit.
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int, ascending bool) ([]*types.ExerciseSession, error)
	CountByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
	LatestByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.ExerciseSession, error)
}

type sessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSessionRepo(db *gorm.DB, baseLog *logger.Logger) SessionRepo {
	return &sessionRepo{db: db, log: baseLog.With("repo", "SessionRepo")}
}

func (r *sessionRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *sessionRepo) Create(ctx context.Context, tx *gorm.DB, session *types.ExerciseSession) error {
	return r.conn(tx).WithContext(ctx).Create(session).Error
}

func (r *sessionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ExerciseSession, error) {
	var session types.ExerciseSession
	err := r.conn(tx).WithContext(ctx).Where("id = ?", id).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int, ascending bool) ([]*types.ExerciseSession, error) {
	order := "created_at DESC"
	if ascending {
		order = "created_at ASC"
	}
	q := r.conn(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order(order)
	if limit > 0 {
		q = q.Limit(limit)
	}
	var results []*types.ExerciseSession
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *sessionRepo) CountByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.conn(tx).WithContext(ctx).
		Model(&types.ExerciseSession{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *sessionRepo) LatestByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.ExerciseSession, error) {
	var session types.ExerciseSession
	err := r.conn(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&session).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}
