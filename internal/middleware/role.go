package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/codgrandprix/server/internal/models"
	apperrors "github.com/codgrandprix/server/pkg/errors"
	"github.com/codgrandprix/server/pkg/metrics"
	"github.com/codgrandprix/server/pkg/response"
)

// RequireRole is the single authorization decision point for role-gated
// routes. It re-derives the caller's role from the profile row on every
// request and fails closed: a missing profile or a lookup error denies
// access the same way a wrong role does.
func RequireRole(db *gorm.DB, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		profileID := ProfileID(c)
		if profileID == "" {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		var profile models.Profile
		err := db.WithContext(c.Request.Context()).
			Select("role").
			Take(&profile, "id = ?", profileID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			metrics.RoleChecks.WithLabelValues(string(role), "denied").Inc()
			response.Error(c, apperrors.ErrForbidden)
			c.Abort()
			return
		case err != nil:
			metrics.RoleChecks.WithLabelValues(string(role), "error").Inc()
			response.Error(c, apperrors.ErrForbidden)
			c.Abort()
			return
		}

		if profile.Role != role {
			metrics.RoleChecks.WithLabelValues(string(role), "denied").Inc()
			response.Error(c, apperrors.ErrForbidden)
			c.Abort()
			return
		}

		metrics.RoleChecks.WithLabelValues(string(role), "allowed").Inc()
		c.Next()
	}
}
