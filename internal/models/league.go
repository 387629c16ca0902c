package models

// League groups teams into a competition bracket.
type League struct {
	BaseModel

	Name         string `gorm:"not null" json:"name"`
	Description  string `json:"description"`
	SkillBracket string `json:"skill_bracket"`

	Teams []Team `gorm:"foreignKey:LeagueID" json:"teams,omitempty"`
}
