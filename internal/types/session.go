package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ExerciseSession is the immutable record of one completed (or partially
// completed) exercise run. Rows are only ever created; alerting, scoring and
// export read them verbatim.
type ExerciseSession struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"index;not null" json:"user_id"`
	User   *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`

	ExerciseKey string `gorm:"index;not null;column:exercise_key" json:"exercise_key"`

	PainBefore      int     `gorm:"not null;column:pain_before" json:"pain_before"`
	PainAfter       int     `gorm:"not null;column:pain_after" json:"pain_after"`
	RepsCompleted   int     `gorm:"not null;column:reps_completed" json:"reps_completed"`
	AvgKneeAngleDeg float64 `gorm:"not null;column:avg_knee_angle_deg" json:"avg_knee_angle_deg"`
	RiskEvents      int     `gorm:"not null;column:risk_events" json:"risk_events"`
	AdherenceScore  int     `gorm:"not null;column:adherence_score" json:"adherence_score"`
	AIConfidencePct int     `gorm:"not null;default:0;column:ai_confidence_pct" json:"ai_confidence_pct"`

	// Opaque runtime logs, stored verbatim for export and review.
	AngleSamples datatypes.JSON `gorm:"column:angle_samples" json:"angle_samples"`
	Events       datatypes.JSON `gorm:"column:events" json:"events"`

	CreatedAt time.Time `gorm:"index;not null" json:"created_at"`
}

func (ExerciseSession) TableName() string {
	return "exercise_session"
}
