package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codgrandprix/server/internal/middleware"
	"github.com/codgrandprix/server/internal/services"
	"github.com/codgrandprix/server/pkg/response"
)

// InviteHandler exposes invitation redemption.
type InviteHandler struct {
	invites *services.InviteService
}

// NewInviteHandler constructs an InviteHandler.
func NewInviteHandler(invites *services.InviteService) *InviteHandler {
	return &InviteHandler{invites: invites}
}

type acceptInviteRequest struct {
	Token string `json:"token" validate:"required"`
}

// Accept redeems an invite token for the caller.
func (h *InviteHandler) Accept(c *gin.Context) {
	req, ok := bindAndValidate[acceptInviteRequest](c)
	if !ok {
		return
	}

	membership, err := h.invites.Accept(c.Request.Context(), middleware.ProfileID(c), req.Token)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, membership)
}
