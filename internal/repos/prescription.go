package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/physiotwin/backend/internal/logger"
	"github.com/physiotwin/backend/internal/types"
)

type PrescriptionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rx *types.ExercisePrescription) error
	Get(ctx context.Context, tx *gorm.DB, patientID uuid.UUID, exerciseKey string) (*types.ExercisePrescription, error)
	// GetLocked loads the row with a row-level write lock so a concurrent
	// versioned update cannot read the same "before" state. Must run inside a
	// transaction; on sqlite the lock clause degrades to a plain read, which
	// is safe because sqlite serializes writers.
	GetLocked(ctx context.Context, tx *gorm.DB, patientID uuid.UUID, exerciseKey string) (*types.ExercisePrescription, error)
	Save(ctx context.Context, tx *gorm.DB, rx *types.ExercisePrescription) error
}

type prescriptionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPrescriptionRepo(db *gorm.DB, baseLog *logger.Logger) PrescriptionRepo {
	return &prescriptionRepo{db: db, log: baseLog.With("repo", "PrescriptionRepo")}
}

func (r *prescriptionRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *prescriptionRepo) Create(ctx context.Context, tx *gorm.DB, rx *types.ExercisePrescription) error {
	return r.conn(tx).WithContext(ctx).Create(rx).Error
}

func (r *prescriptionRepo) Get(ctx context.Context, tx *gorm.DB, patientID uuid.UUID, exerciseKey string) (*types.ExercisePrescription, error) {
	var rx types.ExercisePrescription
	err := r.conn(tx).WithContext(ctx).
		Where("patient_id = ? AND exercise_key = ?", patientID, exerciseKey).
		First(&rx).Error
	if err != nil {
		return nil, err
	}
	return &rx, nil
}

func (r *prescriptionRepo) GetLocked(ctx context.Context, tx *gorm.DB, patientID uuid.UUID, exerciseKey string) (*types.ExercisePrescription, error) {
	q := r.conn(tx).WithContext(ctx)
	if q.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var rx types.ExercisePrescription
	err := q.Where("patient_id = ? AND exercise_key = ?", patientID, exerciseKey).
		First(&rx).Error
	if err != nil {
		return nil, err
	}
	return &rx, nil
}

func (r *prescriptionRepo) Save(ctx context.Context, tx *gorm.DB, rx *types.ExercisePrescription) error {
	return r.conn(tx).WithContext(ctx).Save(rx).Error
}
