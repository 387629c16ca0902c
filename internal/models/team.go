package models

// Team is owned by its captain and optionally assigned to a league.
// Team names are intentionally not unique.
type Team struct {
	BaseModel

	Name    string `gorm:"not null" json:"name"`
	Game    string `gorm:"not null" json:"game"`
	OwnerID string `gorm:"type:uuid;not null;index" json:"owner_id"`

	// LeagueID is nullable: deleting a league detaches its teams
	// instead of deleting them.
	LeagueID *string `gorm:"type:uuid;index" json:"league_id"`

	Owner       *Profile         `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	League      *League          `gorm:"foreignKey:LeagueID" json:"league,omitempty"`
	Memberships []TeamMembership `gorm:"foreignKey:TeamID" json:"memberships,omitempty"`
}

// Membership roles within a team.
const (
	MembershipRoleCaptain = "captain"
	MembershipRoleMember  = "member"
)

// TeamMembership links a profile to a team. The (team, profile) pair is
// unique at the storage layer.
type TeamMembership struct {
	BaseModel

	TeamID    string `gorm:"type:uuid;not null;uniqueIndex:idx_team_profile" json:"team_id"`
	ProfileID string `gorm:"type:uuid;not null;uniqueIndex:idx_team_profile" json:"profile_id"`
	Role      string `gorm:"not null;default:member" json:"role"`

	Profile *Profile `gorm:"foreignKey:ProfileID" json:"profile,omitempty"`
}
