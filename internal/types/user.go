package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	RolePatient   = "patient"
	RoleTherapist = "therapist"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email    string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Name     string    `gorm:"not null;column:name" json:"name"`
	Role     string    `gorm:"not null;column:role" json:"role"`
	Password string    `gorm:"not null;column:password" json:"-"`

	// Derived from the 10 newest sessions on every ingestion; never set by hand.
	RecoveryScore int `gorm:"not null;default:0;column:recovery_score" json:"recovery_score"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string {
	return "user"
}
