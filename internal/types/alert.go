package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	AlertLevelYellow = "yellow"
	AlertLevelRed    = "red"

	ReviewApproved = "approved"
	ReviewRejected = "rejected"
	ReviewNoted    = "noted"
)

// RiskAlert is a reviewable flag raised by triage when a session is ingested.
// It is the only entity automated classification may write: prescriptions stay
// untouched until a clinician acts.
type RiskAlert struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"index;not null" json:"user_id"`
	User   *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`

	Level   string `gorm:"not null;column:level" json:"level"`
	Message string `gorm:"not null;column:message" json:"message"`

	// Review fields are all-or-nothing: a set status implies reviewer and
	// timestamp are set too. Nil status means not reviewed yet.
	ReviewStatus *string    `gorm:"column:review_status" json:"review_status"`
	ReviewNote   *string    `gorm:"column:review_note" json:"review_note"`
	ReviewedBy   *uuid.UUID `gorm:"type:uuid;column:reviewed_by" json:"reviewed_by"`
	ReviewedAt   *time.Time `gorm:"column:reviewed_at" json:"reviewed_at"`

	CreatedAt time.Time `gorm:"index;not null" json:"created_at"`
}

func (RiskAlert) TableName() string {
	return "risk_alert"
}

func ValidReviewStatus(status string) bool {
	switch status {
	case ReviewApproved, ReviewRejected, ReviewNoted:
		return true
	default:
		return false
	}
}
