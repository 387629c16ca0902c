package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codgrandprix/server/internal/models"
)

func TestCreateTeamEnrollsCaptain(t *testing.T) {
	db := openServiceTestDB(t)
	owner := createTestProfile(t, db, "team-create-owner")

	service, err := NewTeamService(db)
	require.NoError(t, err)

	team, err := service.Create(context.Background(), owner.ID, CreateTeamInput{
		Name: "Shadow Company",
		Game: "Black Ops 6",
	})
	require.NoError(t, err)
	assert.Equal(t, owner.ID, team.OwnerID)
	assert.Nil(t, team.LeagueID)

	loaded, err := service.GetByID(context.Background(), team.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Memberships, 1)
	assert.Equal(t, models.MembershipRoleCaptain, loaded.Memberships[0].Role)
	assert.Equal(t, owner.ID, loaded.Memberships[0].ProfileID)
	require.NotNil(t, loaded.Memberships[0].Profile)
	assert.Equal(t, owner.Username, loaded.Memberships[0].Profile.Username)
}

func TestCreateTeamValidation(t *testing.T) {
	db := openServiceTestDB(t)
	owner := createTestProfile(t, db, "team-validate-owner")

	service, err := NewTeamService(db)
	require.NoError(t, err)

	_, err = service.Create(context.Background(), owner.ID, CreateTeamInput{Name: " ", Game: "Black Ops 6"})
	require.Error(t, err)

	_, err = service.Create(context.Background(), owner.ID, CreateTeamInput{Name: "No Game"})
	require.Error(t, err)
}

func TestListForProfile(t *testing.T) {
	db := openServiceTestDB(t)
	owner := createTestProfile(t, db, "team-list-owner")
	member := createTestProfile(t, db, "team-list-member")

	service, err := NewTeamService(db)
	require.NoError(t, err)

	owned, err := service.Create(context.Background(), owner.ID, CreateTeamInput{Name: "Owned", Game: "Black Ops 6"})
	require.NoError(t, err)

	joined := createTestTeam(t, db, member, "Joined")
	require.NoError(t, db.Create(&models.TeamMembership{
		TeamID:    joined.ID,
		ProfileID: owner.ID,
		Role:      models.MembershipRoleMember,
	}).Error)

	teams, err := service.ListForProfile(context.Background(), owner.ID)
	require.NoError(t, err)
	require.Len(t, teams, 2)

	ids := []string{teams[0].ID, teams[1].ID}
	assert.Contains(t, ids, owned.ID)
	assert.Contains(t, ids, joined.ID)

	none, err := service.ListForProfile(context.Background(), "00000000-0000-0000-0000-000000000000")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDisbandCascades(t *testing.T) {
	db := openServiceTestDB(t)
	owner := createTestProfile(t, db, "disband-owner")
	memberA := createTestProfile(t, db, "disband-member-a")
	memberB := createTestProfile(t, db, "disband-member-b")

	service, err := NewTeamService(db)
	require.NoError(t, err)

	team, err := service.Create(context.Background(), owner.ID, CreateTeamInput{Name: "Doomed", Game: "Black Ops 6"})
	require.NoError(t, err)

	for _, m := range []*models.Profile{memberA, memberB} {
		require.NoError(t, db.Create(&models.TeamMembership{
			TeamID:    team.ID,
			ProfileID: m.ID,
			Role:      models.MembershipRoleMember,
		}).Error)
	}
	require.NoError(t, db.Create(&models.Invitation{
		TeamID:       team.ID,
		InviteeEmail: "disband-invitee@example.com",
		TokenHash:    "disband-hash-1",
		Status:       models.InviteStatusPending,
	}).Error)
	require.NoError(t, db.Create(&models.Invitation{
		TeamID:       team.ID,
		InviteeEmail: "disband-invitee-2@example.com",
		TokenHash:    "disband-hash-2",
		Status:       models.InviteStatusAccepted,
	}).Error)

	require.NoError(t, service.Disband(context.Background(), owner.ID, team.ID))

	var teamCount, membershipCount, inviteCount int64
	require.NoError(t, db.Model(&models.Team{}).Where("id = ?", team.ID).Count(&teamCount).Error)
	require.NoError(t, db.Model(&models.TeamMembership{}).Where("team_id = ?", team.ID).Count(&membershipCount).Error)
	require.NoError(t, db.Model(&models.Invitation{}).Where("team_id = ?", team.ID).Count(&inviteCount).Error)
	assert.Zero(t, teamCount)
	assert.Zero(t, membershipCount)
	assert.Zero(t, inviteCount)
}

func TestDisbandRequiresOwner(t *testing.T) {
	db := openServiceTestDB(t)
	owner := createTestProfile(t, db, "disband-real-owner")
	intruder := createTestProfile(t, db, "disband-intruder")
	team := createTestTeam(t, db, owner, "Guarded")

	service, err := NewTeamService(db)
	require.NoError(t, err)

	err = service.Disband(context.Background(), intruder.ID, team.ID)
	assert.ErrorIs(t, err, ErrNotTeamOwner)

	// Team is untouched.
	var count int64
	require.NoError(t, db.Model(&models.Team{}).Where("id = ?", team.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	err = service.Disband(context.Background(), owner.ID, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrTeamNotFound)
}
