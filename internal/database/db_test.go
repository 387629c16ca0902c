package database

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codgrandprix/server/internal/models"
)

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	require.Error(t, err)
}

func TestOpenDefaultsToSQLiteInMemory(t *testing.T) {
	db, err := Open(Config{})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	require.True(t, db.Migrator().HasTable(&models.Team{}))
	require.True(t, db.Migrator().HasTable(&models.Invitation{}))
}

func TestBuildPostgresDSN(t *testing.T) {
	dsn, err := buildPostgresDSN(Config{User: "codgp", Name: "leagues", Password: "s3cret"})
	require.NoError(t, err)
	require.Contains(t, dsn, "host=localhost")
	require.Contains(t, dsn, "dbname=leagues")
	require.Contains(t, dsn, "sslmode=disable")

	_, err = buildPostgresDSN(Config{})
	require.Error(t, err)
}

func TestBuildMySQLDSN(t *testing.T) {
	dsn, err := buildMySQLDSN(Config{User: "codgp", Name: "leagues"})
	require.NoError(t, err)
	require.Contains(t, dsn, "@tcp(127.0.0.1:3306)/leagues")
	require.Contains(t, dsn, "parseTime=True")
}

func TestPendingInviteIndexBlocksDuplicates(t *testing.T) {
	db, err := Open(Config{})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	owner := models.Profile{Username: "idx-owner", Email: "idx-owner@example.com", Password: "hash"}
	require.NoError(t, db.Create(&owner).Error)

	team := models.Team{Name: "Rogues", Game: "cod", OwnerID: owner.ID}
	require.NoError(t, db.Create(&team).Error)

	first := models.Invitation{TeamID: team.ID, InviteeEmail: "p@example.com", TokenHash: "h1", Status: models.InviteStatusPending}
	require.NoError(t, db.Create(&first).Error)

	dup := models.Invitation{TeamID: team.ID, InviteeEmail: "p@example.com", TokenHash: "h2", Status: models.InviteStatusPending}
	require.Error(t, db.Create(&dup).Error)

	// a non-pending row for the same pair is allowed
	accepted := models.Invitation{TeamID: team.ID, InviteeEmail: "p@example.com", TokenHash: "h3", Status: models.InviteStatusAccepted}
	require.NoError(t, db.Create(&accepted).Error)
}

func TestSeedAdmin(t *testing.T) {
	db, err := Open(Config{})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	require.NoError(t, SeedAdmin(db, "boss", "boss@example.com", "Secret123!"))

	var admin models.Profile
	require.NoError(t, db.Where("email = ?", "boss@example.com").First(&admin).Error)
	require.Equal(t, models.RoleAdmin, admin.Role)

	// idempotent
	require.NoError(t, SeedAdmin(db, "boss", "boss@example.com", "Secret123!"))

	var count int64
	require.NoError(t, db.Model(&models.Profile{}).Where("email = ?", "boss@example.com").Count(&count).Error)
	require.EqualValues(t, 1, count)

	// blank credentials are a no-op
	require.NoError(t, SeedAdmin(db, "", "", ""))
}
