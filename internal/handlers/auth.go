package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/codgrandprix/server/internal/auth"
	"github.com/codgrandprix/server/internal/middleware"
	"github.com/codgrandprix/server/internal/services"
	apperrors "github.com/codgrandprix/server/pkg/errors"
	"github.com/codgrandprix/server/pkg/logger"
	"github.com/codgrandprix/server/pkg/metrics"
	"github.com/codgrandprix/server/pkg/response"
)

// AuthHandler exposes the signup, login and session endpoints.
type AuthHandler struct {
	profiles *services.ProfileService
	sessions *auth.SessionService
	log      *zap.Logger
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(profiles *services.ProfileService, sessions *auth.SessionService) *AuthHandler {
	return &AuthHandler{
		profiles: profiles,
		sessions: sessions,
		log:      logger.WithModule("handlers.auth"),
	}
}

type signupRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// Signup registers a new profile and starts its first session.
func (h *AuthHandler) Signup(c *gin.Context) {
	req, ok := bindAndValidate[signupRequest](c)
	if !ok {
		return
	}

	profile, err := h.profiles.Register(c.Request.Context(), services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	tokens, _, err := h.sessions.CreateSession(profile.ID, sessionMetadata(c))
	if err != nil {
		h.log.Error("create session after signup", zap.Error(err))
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"profile":       profile,
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login verifies credentials and issues a token pair.
func (h *AuthHandler) Login(c *gin.Context) {
	req, ok := bindAndValidate[loginRequest](c)
	if !ok {
		return
	}

	profile, err := h.profiles.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		response.Error(c, err)
		return
	}

	tokens, _, err := h.sessions.CreateSession(profile.ID, sessionMetadata(c))
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		h.log.Error("create session after login", zap.Error(err))
		response.Error(c, err)
		return
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()

	response.Success(c, http.StatusOK, gin.H{
		"profile":       profile,
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Refresh rotates a refresh token for a new token pair.
func (h *AuthHandler) Refresh(c *gin.Context) {
	req, ok := bindAndValidate[refreshRequest](c)
	if !ok {
		return
	}

	tokens, _, err := h.sessions.RefreshSession(req.RefreshToken)
	if err != nil {
		// Every refresh failure collapses to 401 so callers cannot
		// probe token state.
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
	})
}

// Logout revokes the session behind the presented access token.
func (h *AuthHandler) Logout(c *gin.Context) {
	sessionID := middleware.SessionID(c)
	if sessionID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	if err := h.sessions.RevokeSession(sessionID); err != nil {
		h.log.Warn("revoke session", zap.String("session_id", sessionID), zap.Error(err))
	}

	response.Success(c, http.StatusOK, gin.H{"logged_out": true})
}

// Me returns the authenticated profile.
func (h *AuthHandler) Me(c *gin.Context) {
	profile, err := h.profiles.GetByID(c.Request.Context(), middleware.ProfileID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, profile)
}

// ConfirmEmail consumes the confirmation token from the email link.
func (h *AuthHandler) ConfirmEmail(c *gin.Context) {
	token := c.Query("token")

	profile, err := h.profiles.ConfirmEmail(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"confirmed": true,
		"profile":   profile,
	})
}

func sessionMetadata(c *gin.Context) auth.SessionMetadata {
	return auth.SessionMetadata{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}
