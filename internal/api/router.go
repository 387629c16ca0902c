package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/codgrandprix/server/internal/auth"
	"github.com/codgrandprix/server/internal/handlers"
	"github.com/codgrandprix/server/internal/middleware"
	"github.com/codgrandprix/server/internal/models"
	"github.com/codgrandprix/server/internal/services"
)

// Dependencies collects everything the router needs.
type Dependencies struct {
	DB       *gorm.DB
	JWT      *auth.JWTService
	Sessions *auth.SessionService
	Profiles *services.ProfileService
	Teams    *services.TeamService
	Invites  *services.InviteService
	Leagues  *services.LeagueService

	// Prometheus exposes GET /metrics when true.
	Prometheus bool
}

// NewRouter wires the full HTTP surface. Routes split into three
// tiers: public, session gated, and admin gated.
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.Recovery(),
		middleware.Logger(),
		middleware.Metrics(),
		middleware.CORS(),
	)
	router.NoRoute(middleware.NotFoundHandler)

	healthHandler := handlers.NewHealthHandler(deps.DB)
	authHandler := handlers.NewAuthHandler(deps.Profiles, deps.Sessions)
	profileHandler := handlers.NewProfileHandler(deps.Profiles)
	teamHandler := handlers.NewTeamHandler(deps.Teams, deps.Invites)
	inviteHandler := handlers.NewInviteHandler(deps.Invites)
	leagueHandler := handlers.NewLeagueHandler(deps.Leagues)

	router.GET("/health", healthHandler.Check)
	if deps.Prometheus {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	v1 := router.Group("/api/v1")

	// Public tier: no session required.
	v1.POST("/auth/signup", authHandler.Signup)
	v1.POST("/auth/login", authHandler.Login)
	v1.POST("/auth/refresh", authHandler.Refresh)
	v1.GET("/auth/confirm-email", authHandler.ConfirmEmail)
	v1.GET("/leagues", leagueHandler.List)

	// Session tier: a valid access token is required before any
	// handler runs.
	session := v1.Group("")
	session.Use(middleware.Auth(deps.JWT))
	{
		session.POST("/auth/logout", authHandler.Logout)
		session.GET("/auth/me", authHandler.Me)
		session.GET("/profile", profileHandler.Get)
		session.PATCH("/profile", profileHandler.Update)

		session.POST("/teams", teamHandler.Create)
		session.GET("/teams", teamHandler.List)
		session.GET("/teams/:id", teamHandler.Get)
		session.DELETE("/teams/:id", teamHandler.Disband)
		session.POST("/teams/:id/invites", teamHandler.Invite)

		session.POST("/invites/accept", inviteHandler.Accept)
	}

	// Admin tier: session plus the admin role, re-read from storage on
	// every request.
	admin := v1.Group("/admin")
	admin.Use(middleware.Auth(deps.JWT), middleware.RequireRole(deps.DB, models.RoleAdmin))
	{
		admin.POST("/leagues", leagueHandler.Create)
		admin.DELETE("/leagues/:id", leagueHandler.Delete)
		admin.POST("/leagues/:id/teams", leagueHandler.AssignTeam)
		admin.DELETE("/teams/:id/league", leagueHandler.RemoveTeam)
		admin.PUT("/profiles/:id/role", profileHandler.SetRole)
	}

	return router
}
