package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codgrandprix/server/internal/handlers/testutil"
	"github.com/codgrandprix/server/internal/models"
)

// TestSeasonFlow walks the whole product loop: an admin opens a league,
// a player signs up, builds a team, gets it assigned, and eventually
// disbands it.
func TestSeasonFlow(t *testing.T) {
	env := testutil.NewEnv(t)
	admin := env.CreateAdmin(t, "flow-admin")
	adminToken := env.Login(t, admin)

	// Player joins the platform.
	rec := env.Do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]any{
		"username": "flow-captain",
		"email":    "flow-captain@example.com",
		"password": "super secret pass",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var signup struct {
		AccessToken string `json:"access_token"`
	}
	testutil.Decode(t, rec, &signup)
	playerToken := signup.AccessToken

	// Admin opens the league.
	rec = env.Do(t, http.MethodPost, "/api/v1/admin/leagues", adminToken, map[string]any{
		"name":          "Season One",
		"skill_bracket": "open",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var league models.League
	testutil.Decode(t, rec, &league)

	// Player builds a team.
	rec = env.Do(t, http.MethodPost, "/api/v1/teams", playerToken, map[string]any{
		"name": "Flow State", "game": "Black Ops 6",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var team models.Team
	testutil.Decode(t, rec, &team)

	// Admin assigns it.
	rec = env.Do(t, http.MethodPost, "/api/v1/admin/leagues/"+league.ID+"/teams", adminToken, map[string]any{
		"team_id": team.ID,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// The public standings show the team.
	rec = env.Do(t, http.MethodGet, "/api/v1/leagues", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var leagues []models.League
	testutil.Decode(t, rec, &leagues)
	require.Len(t, leagues, 1)
	require.Len(t, leagues[0].Teams, 1)
	assert.Equal(t, "Flow State", leagues[0].Teams[0].Name)

	// The captain disbands; the standings empty out.
	rec = env.Do(t, http.MethodDelete, "/api/v1/teams/"+team.ID, playerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.Do(t, http.MethodGet, "/api/v1/leagues", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	leagues = nil
	testutil.Decode(t, rec, &leagues)
	require.Len(t, leagues, 1)
	assert.Empty(t, leagues[0].Teams)

	rec = env.Do(t, http.MethodGet, "/api/v1/teams/"+team.ID, playerToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
