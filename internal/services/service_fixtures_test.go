package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/codgrandprix/server/internal/database/testutil"
	"github.com/codgrandprix/server/internal/models"
	"github.com/codgrandprix/server/pkg/crypto"
	"github.com/codgrandprix/server/pkg/mail"
)

// recordingMailer captures outbound messages instead of delivering them.
type recordingMailer struct {
	mu       sync.Mutex
	messages []mail.Message
	err      error
}

func (m *recordingMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msg)
	return nil
}

func (m *recordingMailer) sent() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.Message(nil), m.messages...)
}

func createTestProfile(t *testing.T, db *gorm.DB, name string) *models.Profile {
	t.Helper()

	hashed, err := crypto.HashPassword("correct horse battery staple")
	require.NoError(t, err)

	profile := &models.Profile{
		Username: name,
		Email:    fmt.Sprintf("%s@example.com", name),
		Password: hashed,
		Role:     models.RolePlayer,
	}
	require.NoError(t, db.Create(profile).Error)
	return profile
}

func createTestTeam(t *testing.T, db *gorm.DB, owner *models.Profile, name string) *models.Team {
	t.Helper()

	team := &models.Team{
		Name:    name,
		Game:    "Black Ops 6",
		OwnerID: owner.ID,
	}
	require.NoError(t, db.Create(team).Error)
	require.NoError(t, db.Create(&models.TeamMembership{
		TeamID:    team.ID,
		ProfileID: owner.ID,
		Role:      models.MembershipRoleCaptain,
	}).Error)
	return team
}

func openServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testutil.MustOpenTestDB(t)
}
