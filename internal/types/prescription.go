package types

import (
	"time"

	"github.com/google/uuid"
)

// ExercisePrescription holds the clinician-set safe operating bounds for one
// (patient, exercise) pair. Automated logic never writes these rows; every
// change goes through the versioned therapist update path.
type ExercisePrescription struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PatientID   uuid.UUID `gorm:"uniqueIndex:idx_rx_patient_exercise;not null;column:patient_id" json:"patient_id"`
	ExerciseKey string    `gorm:"uniqueIndex:idx_rx_patient_exercise;not null;column:exercise_key" json:"exercise_key"`

	SafeMinDeg  int `gorm:"not null;column:safe_min_deg" json:"safe_min_deg"`
	SafeMaxDeg  int `gorm:"not null;column:safe_max_deg" json:"safe_max_deg"`
	RepLimit    int `gorm:"not null;column:rep_limit" json:"rep_limit"`
	DurationSec int `gorm:"not null;column:duration_sec" json:"duration_sec"`

	// Hard stop threshold; fixed at 15 and not exposed for edit.
	DeviationStopDeg int `gorm:"not null;default:15;column:deviation_stop_deg" json:"deviation_stop_deg"`

	// Audit trail: +1 on every therapist edit that changes a versioned field.
	ProtocolVersion int     `gorm:"not null;default:1;column:protocol_version" json:"protocol_version"`
	IsLocked        bool    `gorm:"not null;default:false;column:is_locked" json:"is_locked"`
	TemplateKey     *string `gorm:"column:template_key" json:"template_key"`

	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (ExercisePrescription) TableName() string {
	return "exercise_prescription"
}
