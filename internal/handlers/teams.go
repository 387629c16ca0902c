package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codgrandprix/server/internal/middleware"
	"github.com/codgrandprix/server/internal/models"
	"github.com/codgrandprix/server/internal/services"
	"github.com/codgrandprix/server/pkg/response"
)

// TeamHandler exposes team lifecycle and invite issuing.
type TeamHandler struct {
	teams   *services.TeamService
	invites *services.InviteService
}

// NewTeamHandler constructs a TeamHandler.
func NewTeamHandler(teams *services.TeamService, invites *services.InviteService) *TeamHandler {
	return &TeamHandler{teams: teams, invites: invites}
}

type createTeamRequest struct {
	Name string `json:"name" validate:"required,min=2,max=64"`
	Game string `json:"game" validate:"required,min=2,max=64"`
}

// Create registers a team owned by the caller.
func (h *TeamHandler) Create(c *gin.Context) {
	req, ok := bindAndValidate[createTeamRequest](c)
	if !ok {
		return
	}

	team, err := h.teams.Create(c.Request.Context(), middleware.ProfileID(c), services.CreateTeamInput{
		Name: req.Name,
		Game: req.Game,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, team)
}

// List returns every team the caller belongs to.
func (h *TeamHandler) List(c *gin.Context) {
	teams, err := h.teams.ListForProfile(c.Request.Context(), middleware.ProfileID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, teamViews(teams))
}

// Get returns a single team with its roster.
func (h *TeamHandler) Get(c *gin.Context) {
	team, err := h.teams.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, teamView(*team))
}

// Disband deletes the caller's team and its dependents.
func (h *TeamHandler) Disband(c *gin.Context) {
	err := h.teams.Disband(c.Request.Context(), middleware.ProfileID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"disbanded": true})
}

type inviteRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// Invite emails a join link for the caller's team.
func (h *TeamHandler) Invite(c *gin.Context) {
	req, ok := bindAndValidate[inviteRequest](c)
	if !ok {
		return
	}

	invite, err := h.invites.Invite(c.Request.Context(), middleware.ProfileID(c), c.Param("id"), req.Email)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, invite)
}

// rosterEntry is the membership view exposed on team payloads.
type rosterEntry struct {
	Role    string               `json:"role"`
	Profile models.RosterProfile `json:"profile"`
}

// teamDetail is the API shape for a team with its roster.
type teamDetail struct {
	models.Team
	Roster []rosterEntry `json:"roster"`
}

func teamView(team models.Team) teamDetail {
	roster := make([]rosterEntry, 0, len(team.Memberships))
	for _, m := range team.Memberships {
		if m.Profile == nil {
			continue
		}
		roster = append(roster, rosterEntry{
			Role:    m.Role,
			Profile: m.Profile.Roster(),
		})
	}

	team.Memberships = nil
	return teamDetail{Team: team, Roster: roster}
}

func teamViews(teams []models.Team) []teamDetail {
	views := make([]teamDetail, 0, len(teams))
	for _, team := range teams {
		views = append(views, teamView(team))
	}
	return views
}
