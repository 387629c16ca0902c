package models

import "time"

// EmailConfirmation stores confirmation tokens for new signups.
type EmailConfirmation struct {
	BaseModel

	ProfileID   string     `gorm:"type:uuid;not null;index" json:"profile_id"`
	TokenHash   string     `gorm:"not null" json:"-"`
	ExpiresAt   time.Time  `gorm:"index" json:"expires_at"`
	ConfirmedAt *time.Time `json:"confirmed_at"`
}
