package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codgrandprix/server/internal/models"
)

func TestCreateLeague(t *testing.T) {
	db := openServiceTestDB(t)

	service, err := NewLeagueService(db)
	require.NoError(t, err)

	league, err := service.Create(context.Background(), CreateLeagueInput{
		Name:         "Friday Night GP",
		Description:  "Weekly amateur bracket",
		SkillBracket: "amateur",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, league.ID)
	assert.Equal(t, "Friday Night GP", league.Name)

	_, err = service.Create(context.Background(), CreateLeagueInput{Name: "  "})
	require.Error(t, err)
}

func TestListWithTeams(t *testing.T) {
	db := openServiceTestDB(t)
	owner := createTestProfile(t, db, "league-list-owner")
	teamA := createTestTeam(t, db, owner, "List Alpha")
	teamB := createTestTeam(t, db, owner, "List Bravo")

	service, err := NewLeagueService(db)
	require.NoError(t, err)

	league, err := service.Create(context.Background(), CreateLeagueInput{Name: "List League"})
	require.NoError(t, err)

	_, err = service.AssignTeam(context.Background(), league.ID, teamA.ID)
	require.NoError(t, err)
	_, err = service.AssignTeam(context.Background(), league.ID, teamB.ID)
	require.NoError(t, err)

	leagues, err := service.ListWithTeams(context.Background())
	require.NoError(t, err)

	var found *models.League
	for i := range leagues {
		if leagues[i].ID == league.ID {
			found = &leagues[i]
			break
		}
	}
	require.NotNil(t, found)
	assert.Len(t, found.Teams, 2)
}

func TestAssignTeamMovesBetweenLeagues(t *testing.T) {
	db := openServiceTestDB(t)
	owner := createTestProfile(t, db, "league-move-owner")
	team := createTestTeam(t, db, owner, "Mover")

	service, err := NewLeagueService(db)
	require.NoError(t, err)

	leagueA, err := service.Create(context.Background(), CreateLeagueInput{Name: "Move League A"})
	require.NoError(t, err)
	leagueB, err := service.Create(context.Background(), CreateLeagueInput{Name: "Move League B"})
	require.NoError(t, err)

	_, err = service.AssignTeam(context.Background(), leagueA.ID, team.ID)
	require.NoError(t, err)

	moved, err := service.AssignTeam(context.Background(), leagueB.ID, team.ID)
	require.NoError(t, err)
	require.NotNil(t, moved.LeagueID)
	assert.Equal(t, leagueB.ID, *moved.LeagueID)

	// League A no longer lists the team.
	loadedA, err := service.GetByID(context.Background(), leagueA.ID)
	require.NoError(t, err)
	assert.Empty(t, loadedA.Teams)

	_, err = service.AssignTeam(context.Background(), "00000000-0000-0000-0000-000000000000", team.ID)
	assert.ErrorIs(t, err, ErrLeagueNotFound)

	_, err = service.AssignTeam(context.Background(), leagueA.ID, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrTeamNotFound)
}

func TestRemoveTeamDetaches(t *testing.T) {
	db := openServiceTestDB(t)
	owner := createTestProfile(t, db, "league-detach-owner")
	team := createTestTeam(t, db, owner, "Detacher")

	service, err := NewLeagueService(db)
	require.NoError(t, err)

	league, err := service.Create(context.Background(), CreateLeagueInput{Name: "Detach League"})
	require.NoError(t, err)

	_, err = service.AssignTeam(context.Background(), league.ID, team.ID)
	require.NoError(t, err)

	detached, err := service.RemoveTeam(context.Background(), team.ID)
	require.NoError(t, err)
	assert.Nil(t, detached.LeagueID)
}

func TestDeleteLeagueKeepsTeams(t *testing.T) {
	db := openServiceTestDB(t)
	owner := createTestProfile(t, db, "league-delete-owner")
	teams := []*models.Team{
		createTestTeam(t, db, owner, "Survivor One"),
		createTestTeam(t, db, owner, "Survivor Two"),
		createTestTeam(t, db, owner, "Survivor Three"),
	}

	service, err := NewLeagueService(db)
	require.NoError(t, err)

	league, err := service.Create(context.Background(), CreateLeagueInput{Name: "Doomed League"})
	require.NoError(t, err)
	for _, team := range teams {
		_, err = service.AssignTeam(context.Background(), league.ID, team.ID)
		require.NoError(t, err)
	}

	require.NoError(t, service.Delete(context.Background(), league.ID))

	_, err = service.GetByID(context.Background(), league.ID)
	assert.ErrorIs(t, err, ErrLeagueNotFound)

	// Every team survives with its league reference cleared.
	for _, team := range teams {
		var stored models.Team
		require.NoError(t, db.Take(&stored, "id = ?", team.ID).Error)
		assert.Nil(t, stored.LeagueID)
	}

	assert.ErrorIs(t, service.Delete(context.Background(), league.ID), ErrLeagueNotFound)
}
