package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/codgrandprix/server/internal/api"
	"github.com/codgrandprix/server/internal/auth"
	dbtestutil "github.com/codgrandprix/server/internal/database/testutil"
	"github.com/codgrandprix/server/internal/models"
	"github.com/codgrandprix/server/internal/services"
	"github.com/codgrandprix/server/pkg/crypto"
	"github.com/codgrandprix/server/pkg/mail"
)

// RecordingMailer captures outbound mail instead of delivering it.
type RecordingMailer struct {
	mu       sync.Mutex
	Messages []mail.Message
}

func (m *RecordingMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, msg)
	return nil
}

// Sent returns a copy of the captured messages.
func (m *RecordingMailer) Sent() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.Message(nil), m.Messages...)
}

// Env is a fully wired HTTP stack over an in-memory database.
type Env struct {
	DB     *gorm.DB
	Router *gin.Engine
	Mailer *RecordingMailer
}

// NewEnv builds the wired router with all services over a fresh
// in-memory database.
func NewEnv(t *testing.T) *Env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := dbtestutil.MustOpenTestDB(t)
	mailer := &RecordingMailer{}

	jwtService, err := auth.NewJWTService(auth.JWTConfig{
		Secret: "handler-test-secret",
		Issuer: "codgrandprix-test",
	})
	require.NoError(t, err)

	sessionService, err := auth.NewSessionService(db, jwtService, auth.SessionConfig{})
	require.NoError(t, err)

	profileService, err := services.NewProfileService(db, mailer,
		services.WithConfirmationBaseURL("https://codgp.test"))
	require.NoError(t, err)

	teamService, err := services.NewTeamService(db)
	require.NoError(t, err)

	inviteService, err := services.NewInviteService(db, mailer,
		services.WithInviteBaseURL("https://codgp.test"))
	require.NoError(t, err)

	leagueService, err := services.NewLeagueService(db)
	require.NoError(t, err)

	router := api.NewRouter(api.Dependencies{
		DB:       db,
		JWT:      jwtService,
		Sessions: sessionService,
		Profiles: profileService,
		Teams:    teamService,
		Invites:  inviteService,
		Leagues:  leagueService,

		Prometheus: true,
	})

	return &Env{DB: db, Router: router, Mailer: mailer}
}

// CreateProfile inserts a player profile directly into storage.
func (e *Env) CreateProfile(t *testing.T, username string) *models.Profile {
	t.Helper()
	return e.createProfile(t, username, models.RolePlayer)
}

// CreateAdmin inserts an admin profile directly into storage.
func (e *Env) CreateAdmin(t *testing.T, username string) *models.Profile {
	t.Helper()
	return e.createProfile(t, username, models.RoleAdmin)
}

func (e *Env) createProfile(t *testing.T, username string, role models.Role) *models.Profile {
	t.Helper()

	hashed, err := crypto.HashPassword("correct horse battery staple")
	require.NoError(t, err)

	profile := &models.Profile{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Password: hashed,
		Role:     role,
	}
	require.NoError(t, e.DB.Create(profile).Error)
	return profile
}

// Login performs the login request for a fixture profile and returns
// the access token.
func (e *Env) Login(t *testing.T, profile *models.Profile) string {
	t.Helper()

	rec := e.Do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email":    profile.Email,
		"password": "correct horse battery staple",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Data.AccessToken)
	return body.Data.AccessToken
}

// Do performs an HTTP request against the wired router. An empty token
// sends no Authorization header.
func (e *Env) Do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.Router.ServeHTTP(rec, req)
	return rec
}

// Decode unmarshals the data portion of an API response into out.
func Decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.True(t, envelope.Success, rec.Body.String())
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}
