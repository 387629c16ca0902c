package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/codgrandprix/server/internal/database/testutil"
	"github.com/codgrandprix/server/internal/models"
)

func newRoleRouter(t *testing.T) (*gin.Engine, *gorm.DB, *int) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t)

	hits := 0
	r := gin.New()
	r.GET("/admin", func(c *gin.Context) {
		// stand-in for Auth(): inject the caller identity
		if id := c.Query("as"); id != "" {
			c.Set(CtxProfileIDKey, id)
		}
		c.Next()
	}, RequireRole(db, models.RoleAdmin), func(c *gin.Context) {
		hits++
		c.String(http.StatusOK, "ok")
	})

	return r, db, &hits
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestRequireRoleDeniesAnonymous(t *testing.T) {
	r, _, hits := newRoleRouter(t)

	w := get(r, "/admin")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Zero(t, *hits)
}

func TestRequireRoleDeniesNonAdmin(t *testing.T) {
	r, db, hits := newRoleRouter(t)

	player := models.Profile{Username: "role-player", Email: "role-player@example.com", Password: "hash", Role: models.RolePlayer}
	require.NoError(t, db.Create(&player).Error)

	w := get(r, "/admin?as="+player.ID)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Zero(t, *hits, "admin body must not execute for non-admin sessions")
}

func TestRequireRoleFailsClosedOnMissingProfile(t *testing.T) {
	r, _, hits := newRoleRouter(t)

	w := get(r, "/admin?as=00000000-0000-0000-0000-000000000000")
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Zero(t, *hits)
}

func TestRequireRoleAdmitsAdmin(t *testing.T) {
	r, db, hits := newRoleRouter(t)

	admin := models.Profile{Username: "role-admin", Email: "role-admin@example.com", Password: "hash", Role: models.RoleAdmin}
	require.NoError(t, db.Create(&admin).Error)

	w := get(r, "/admin?as="+admin.ID)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, *hits)
}
