package handlers_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codgrandprix/server/internal/handlers/testutil"
	"github.com/codgrandprix/server/internal/models"
)

func TestTeamLifecycleOverHTTP(t *testing.T) {
	env := testutil.NewEnv(t)
	owner := env.CreateProfile(t, "h-team-owner")
	token := env.Login(t, owner)

	// Create.
	rec := env.Do(t, http.MethodPost, "/api/v1/teams", token, map[string]any{
		"name": "HTTP Squad",
		"game": "Black Ops 6",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created models.Team
	testutil.Decode(t, rec, &created)
	assert.Equal(t, owner.ID, created.OwnerID)

	// Read back with roster.
	rec = env.Do(t, http.MethodGet, "/api/v1/teams/"+created.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var detail struct {
		models.Team
		Roster []struct {
			Role    string               `json:"role"`
			Profile models.RosterProfile `json:"profile"`
		} `json:"roster"`
	}
	testutil.Decode(t, rec, &detail)
	require.Len(t, detail.Roster, 1)
	assert.Equal(t, models.MembershipRoleCaptain, detail.Roster[0].Role)
	assert.Equal(t, owner.Username, detail.Roster[0].Profile.Username)

	// List.
	rec = env.Do(t, http.MethodGet, "/api/v1/teams", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listed []models.Team
	testutil.Decode(t, rec, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)

	// Disband.
	rec = env.Do(t, http.MethodDelete, "/api/v1/teams/"+created.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.Do(t, http.MethodGet, "/api/v1/teams/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDisbandRejectsNonOwnerOverHTTP(t *testing.T) {
	env := testutil.NewEnv(t)
	owner := env.CreateProfile(t, "h-db-owner")
	intruder := env.CreateProfile(t, "h-db-intruder")
	ownerToken := env.Login(t, owner)
	intruderToken := env.Login(t, intruder)

	rec := env.Do(t, http.MethodPost, "/api/v1/teams", ownerToken, map[string]any{
		"name": "Guarded", "game": "Black Ops 6",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var team models.Team
	testutil.Decode(t, rec, &team)

	rec = env.Do(t, http.MethodDelete, "/api/v1/teams/"+team.ID, intruderToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Still there for the owner.
	rec = env.Do(t, http.MethodGet, "/api/v1/teams/"+team.ID, ownerToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestInviteAndAcceptOverHTTP(t *testing.T) {
	env := testutil.NewEnv(t)
	owner := env.CreateProfile(t, "h-inv-owner")
	joiner := env.CreateProfile(t, "h-inv-joiner")
	ownerToken := env.Login(t, owner)
	joinerToken := env.Login(t, joiner)

	rec := env.Do(t, http.MethodPost, "/api/v1/teams", ownerToken, map[string]any{
		"name": "Inviters", "game": "Black Ops 6",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var team models.Team
	testutil.Decode(t, rec, &team)

	rec = env.Do(t, http.MethodPost, "/api/v1/teams/"+team.ID+"/invites", ownerToken, map[string]any{
		"email": joiner.Email,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// Duplicate pending invite is rejected.
	rec = env.Do(t, http.MethodPost, "/api/v1/teams/"+team.ID+"/invites", ownerToken, map[string]any{
		"email": joiner.Email,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Pull the token out of the invite email.
	sent := env.Mailer.Sent()
	require.NotEmpty(t, sent)
	body := sent[len(sent)-1].Body
	idx := strings.Index(body, "token=")
	require.GreaterOrEqual(t, idx, 0)
	inviteToken := body[idx+len("token="):]
	if end := strings.IndexAny(inviteToken, "\n \t"); end >= 0 {
		inviteToken = inviteToken[:end]
	}

	rec = env.Do(t, http.MethodPost, "/api/v1/invites/accept", joinerToken, map[string]any{
		"token": inviteToken,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// The roster now carries both members.
	rec = env.Do(t, http.MethodGet, "/api/v1/teams/"+team.ID, ownerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var detail struct {
		Roster []struct {
			Role string `json:"role"`
		} `json:"roster"`
	}
	testutil.Decode(t, rec, &detail)
	assert.Len(t, detail.Roster, 2)

	// Spent tokens cannot be replayed.
	rec = env.Do(t, http.MethodPost, "/api/v1/invites/accept", joinerToken, map[string]any{
		"token": inviteToken,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
