package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codgrandprix/server/internal/middleware"
	"github.com/codgrandprix/server/internal/models"
	"github.com/codgrandprix/server/internal/services"
	"github.com/codgrandprix/server/pkg/response"
)

// ProfileHandler exposes profile reads and mutations.
type ProfileHandler struct {
	profiles *services.ProfileService
}

// NewProfileHandler constructs a ProfileHandler.
func NewProfileHandler(profiles *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Get returns the caller's own profile.
func (h *ProfileHandler) Get(c *gin.Context) {
	profile, err := h.profiles.GetByID(c.Request.Context(), middleware.ProfileID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, profile)
}

type updateProfileRequest struct {
	Username    *string `json:"username" validate:"omitempty,min=3,max=32"`
	Discord     *string `json:"discord" validate:"omitempty,max=64"`
	Activision  *string `json:"activision" validate:"omitempty,max=64"`
	Xbox        *string `json:"xbox" validate:"omitempty,max=64"`
	Playstation *string `json:"playstation" validate:"omitempty,max=64"`
}

// Update mutates the caller's own profile.
func (h *ProfileHandler) Update(c *gin.Context) {
	req, ok := bindAndValidate[updateProfileRequest](c)
	if !ok {
		return
	}

	profile, err := h.profiles.Update(c.Request.Context(), middleware.ProfileID(c), services.UpdateInput{
		Username:    req.Username,
		Discord:     req.Discord,
		Activision:  req.Activision,
		Xbox:        req.Xbox,
		Playstation: req.Playstation,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, profile)
}

type setRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=player admin"`
}

// SetRole changes another profile's role. Admin gated at the router.
func (h *ProfileHandler) SetRole(c *gin.Context) {
	req, ok := bindAndValidate[setRoleRequest](c)
	if !ok {
		return
	}

	profile, err := h.profiles.SetRole(c.Request.Context(), c.Param("id"), models.Role(req.Role))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, profile)
}
