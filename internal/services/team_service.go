package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/codgrandprix/server/internal/models"
	apperrors "github.com/codgrandprix/server/pkg/errors"
)

var (
	// ErrTeamNotFound indicates the requested team does not exist.
	ErrTeamNotFound = apperrors.New("TEAM_NOT_FOUND", "Team not found", http.StatusNotFound)
	// ErrNotTeamOwner indicates the caller does not own the team.
	ErrNotTeamOwner = apperrors.New("NOT_TEAM_OWNER", "Only the team owner may perform this action", http.StatusForbidden)
)

// TeamService owns team lifecycle and roster reads.
type TeamService struct {
	db *gorm.DB
}

// NewTeamService constructs a TeamService.
func NewTeamService(db *gorm.DB) (*TeamService, error) {
	if db == nil {
		return nil, errors.New("team service: db is required")
	}
	return &TeamService{db: db}, nil
}

// CreateTeamInput captures the team creation form.
type CreateTeamInput struct {
	Name string
	Game string
}

// Create registers a team owned by ownerID. The owner is enrolled as
// captain in the same transaction; a team never exists without its
// captain membership.
func (s *TeamService) Create(ctx context.Context, ownerID string, input CreateTeamInput) (*models.Team, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	game := strings.TrimSpace(input.Game)
	if name == "" || game == "" {
		return nil, apperrors.NewBadRequest("team name and game are required")
	}

	team := &models.Team{
		Name:    name,
		Game:    game,
		OwnerID: ownerID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(team).Error; err != nil {
			return fmt.Errorf("team service: create team: %w", err)
		}

		membership := models.TeamMembership{
			TeamID:    team.ID,
			ProfileID: ownerID,
			Role:      models.MembershipRoleCaptain,
		}
		if err := tx.Create(&membership).Error; err != nil {
			return fmt.Errorf("team service: create captain membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return team, nil
}

// GetByID loads a team with its roster and league preloaded.
func (s *TeamService) GetByID(ctx context.Context, id string) (*models.Team, error) {
	ctx = ensureContext(ctx)

	var team models.Team
	err := s.db.WithContext(ctx).
		Preload("Memberships.Profile").
		Preload("League").
		Take(&team, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTeamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("team service: get team: %w", err)
	}

	return &team, nil
}

// ListForProfile returns every team the profile belongs to, owner or
// member alike, with rosters preloaded.
func (s *TeamService) ListForProfile(ctx context.Context, profileID string) ([]models.Team, error) {
	ctx = ensureContext(ctx)

	var teamIDs []string
	err := s.db.WithContext(ctx).
		Model(&models.TeamMembership{}).
		Where("profile_id = ?", profileID).
		Pluck("team_id", &teamIDs).Error
	if err != nil {
		return nil, fmt.Errorf("team service: list memberships: %w", err)
	}
	if len(teamIDs) == 0 {
		return []models.Team{}, nil
	}

	var teams []models.Team
	err = s.db.WithContext(ctx).
		Preload("Memberships.Profile").
		Preload("League").
		Where("id IN ?", teamIDs).
		Order("created_at ASC").
		Find(&teams).Error
	if err != nil {
		return nil, fmt.Errorf("team service: list teams: %w", err)
	}

	return teams, nil
}

// Disband deletes a team together with its memberships and
// invitations. Only the owner may disband; the cascade runs in a
// single transaction so a failed step leaves the team intact.
func (s *TeamService) Disband(ctx context.Context, callerID, teamID string) error {
	ctx = ensureContext(ctx)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var team models.Team
		err := tx.Take(&team, "id = ?", teamID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeamNotFound
		}
		if err != nil {
			return fmt.Errorf("team service: load team: %w", err)
		}

		if team.OwnerID != callerID {
			return ErrNotTeamOwner
		}

		if err := tx.Where("team_id = ?", teamID).Delete(&models.TeamMembership{}).Error; err != nil {
			return fmt.Errorf("team service: delete memberships: %w", err)
		}
		if err := tx.Where("team_id = ?", teamID).Delete(&models.Invitation{}).Error; err != nil {
			return fmt.Errorf("team service: delete invitations: %w", err)
		}
		if err := tx.Delete(&team).Error; err != nil {
			return fmt.Errorf("team service: delete team: %w", err)
		}
		return nil
	})
}
