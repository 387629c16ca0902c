package database

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/codgrandprix/server/internal/models"
	"github.com/codgrandprix/server/pkg/crypto"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Profile{},
		&models.League{},
		&models.Team{},
		&models.TeamMembership{},
		&models.Invitation{},
		&models.Session{},
		&models.EmailConfirmation{},
	); err != nil {
		return err
	}

	return ensurePendingInviteIndex(db)
}

// ensurePendingInviteIndex installs the partial unique index that makes
// "at most one pending invitation per (team, email)" a storage-level
// guarantee. SQLite and Postgres support partial indexes; MySQL does
// not, so there the invite service's pre-check inside the insert
// transaction carries the invariant on its own.
func ensurePendingInviteIndex(db *gorm.DB) error {
	switch db.Dialector.Name() {
	case "sqlite", "postgres":
		return db.Exec(
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_invitations_pending
			 ON invitations (team_id, invitee_email)
			 WHERE status = 'pending'`,
		).Error
	default:
		return nil
	}
}

// SeedAdmin guarantees a bootstrap admin profile exists. It is a no-op
// when email or password is blank, or when the profile already exists
// (an existing profile is promoted if it lost the admin role).
func SeedAdmin(db *gorm.DB, username, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || strings.TrimSpace(password) == "" {
		return nil
	}
	if username = strings.TrimSpace(username); username == "" {
		username = "admin"
	}

	var existing models.Profile
	err := db.Where("email = ?", email).First(&existing).Error
	switch {
	case err == nil:
		if existing.Role.IsAdmin() {
			return nil
		}
		return db.Model(&existing).Update("role", models.RoleAdmin).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		// fall through to create
	default:
		return fmt.Errorf("seed admin: lookup: %w", err)
	}

	hashed, err := crypto.HashPassword(password)
	if err != nil {
		return fmt.Errorf("seed admin: hash password: %w", err)
	}

	admin := models.Profile{
		Username: username,
		Email:    email,
		Password: hashed,
		Role:     models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("seed admin: create: %w", err)
	}
	return nil
}
