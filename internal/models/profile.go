package models

import "time"

// Role is the closed set of authorization levels a profile can hold.
// All role-dependent branching goes through Role methods and the
// middleware role gate; raw string comparisons are not used elsewhere.
type Role string

const (
	// RolePlayer is the default role assigned at signup.
	RolePlayer Role = "player"
	// RoleAdmin unlocks league management.
	RoleAdmin Role = "admin"
)

// Valid reports whether the role belongs to the closed set.
func (r Role) Valid() bool {
	switch r {
	case RolePlayer, RoleAdmin:
		return true
	}
	return false
}

// IsAdmin reports whether the role grants league management access.
func (r Role) IsAdmin() bool { return r == RoleAdmin }

// Profile is the platform identity record created at signup.
type Profile struct {
	BaseModel

	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	Role     Role   `gorm:"not null;default:player;index" json:"role"`

	// Per-platform gamer handles shown on team rosters.
	Discord     string `json:"discord"`
	Activision  string `json:"activision"`
	Xbox        string `json:"xbox"`
	Playstation string `json:"playstation"`

	EmailConfirmedAt *time.Time `json:"email_confirmed_at"`
	LastLoginAt      *time.Time `json:"last_login_at"`

	Sessions []Session `gorm:"foreignKey:ProfileID" json:"-"`
}

// RosterProfile is the profile subset exposed on team rosters.
type RosterProfile struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Discord     string `json:"discord"`
	Activision  string `json:"activision"`
	Xbox        string `json:"xbox"`
	Playstation string `json:"playstation"`
}

// Roster returns the reduced view of the profile used on rosters.
func (p *Profile) Roster() RosterProfile {
	return RosterProfile{
		ID:          p.ID,
		Username:    p.Username,
		Discord:     p.Discord,
		Activision:  p.Activision,
		Xbox:        p.Xbox,
		Playstation: p.Playstation,
	}
}
