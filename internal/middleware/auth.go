package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/codgrandprix/server/internal/auth"
	"github.com/codgrandprix/server/pkg/errors"
	"github.com/codgrandprix/server/pkg/response"
)

const (
	CtxClaimsKey    = "authClaims"
	CtxProfileIDKey = "profileID"
	CtxSessionIDKey = "sessionID"
)

// Auth enforces JWT authentication using the supplied JWT service.
// Every failure mode is normalised to 401 and aborts before any handler
// runs, so gated views never execute data effects for anonymous callers.
func Auth(jwt *iauth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if len(authz) < 8 || !strings.EqualFold(authz[:7], "Bearer ") {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		token := strings.TrimSpace(authz[7:])
		claims, err := jwt.ValidateAccessToken(token)
		if err != nil {
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		c.Set(CtxClaimsKey, claims)
		c.Set(CtxProfileIDKey, claims.ProfileID)
		if claims.SessionID != "" {
			c.Set(CtxSessionIDKey, claims.SessionID)
		}

		c.Next()
	}
}

// ProfileID extracts the authenticated profile id from the request context.
func ProfileID(c *gin.Context) string {
	v, ok := c.Get(CtxProfileIDKey)
	if !ok {
		return ""
	}
	id, _ := v.(string)
	return id
}

// SessionID extracts the authenticated session id from the request context.
func SessionID(c *gin.Context) string {
	v, ok := c.Get(CtxSessionIDKey)
	if !ok {
		return ""
	}
	id, _ := v.(string)
	return id
}
