package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codgrandprix/server/internal/services"
	"github.com/codgrandprix/server/pkg/response"
)

// LeagueHandler exposes the public league view and admin management.
type LeagueHandler struct {
	leagues *services.LeagueService
}

// NewLeagueHandler constructs a LeagueHandler.
func NewLeagueHandler(leagues *services.LeagueService) *LeagueHandler {
	return &LeagueHandler{leagues: leagues}
}

// List returns every league with its teams. Public, no session needed.
func (h *LeagueHandler) List(c *gin.Context) {
	leagues, err := h.leagues.ListWithTeams(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, leagues)
}

type createLeagueRequest struct {
	Name         string `json:"name" validate:"required,min=2,max=64"`
	Description  string `json:"description" validate:"omitempty,max=512"`
	SkillBracket string `json:"skill_bracket" validate:"omitempty,max=64"`
}

// Create registers a league. Admin gated at the router.
func (h *LeagueHandler) Create(c *gin.Context) {
	req, ok := bindAndValidate[createLeagueRequest](c)
	if !ok {
		return
	}

	league, err := h.leagues.Create(c.Request.Context(), services.CreateLeagueInput{
		Name:         req.Name,
		Description:  req.Description,
		SkillBracket: req.SkillBracket,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, league)
}

// Delete removes a league, detaching its teams.
func (h *LeagueHandler) Delete(c *gin.Context) {
	if err := h.leagues.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

type assignTeamRequest struct {
	TeamID string `json:"team_id" validate:"required,uuid"`
}

// AssignTeam places a team into the league.
func (h *LeagueHandler) AssignTeam(c *gin.Context) {
	req, ok := bindAndValidate[assignTeamRequest](c)
	if !ok {
		return
	}

	team, err := h.leagues.AssignTeam(c.Request.Context(), c.Param("id"), req.TeamID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, team)
}

// RemoveTeam detaches a team from its league.
func (h *LeagueHandler) RemoveTeam(c *gin.Context) {
	team, err := h.leagues.RemoveTeam(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, team)
}
