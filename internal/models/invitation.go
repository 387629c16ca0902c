package models

import "time"

// Invitation states.
const (
	InviteStatusPending  = "pending"
	InviteStatusAccepted = "accepted"
	InviteStatusExpired  = "expired"
	InviteStatusRevoked  = "revoked"
)

// Invitation is an email invite into a team. The raw token is the sole
// join credential and only ever leaves the system inside the invite
// email; the database stores its SHA-256 digest.
//
// At most one pending invitation may exist per (team, email) pair,
// enforced by a partial unique index created in migrations.
type Invitation struct {
	BaseModel

	TeamID       string     `gorm:"type:uuid;not null;index" json:"team_id"`
	InviteeEmail string     `gorm:"not null;index" json:"invitee_email"`
	TokenHash    string     `gorm:"uniqueIndex;not null" json:"-"`
	Status       string     `gorm:"not null;default:pending;index" json:"status"`
	ExpiresAt    time.Time  `gorm:"index" json:"expires_at"`
	AcceptedAt   *time.Time `json:"accepted_at"`

	Team *Team `gorm:"foreignKey:TeamID" json:"team,omitempty"`
}
