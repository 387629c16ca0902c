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

// ErrLeagueNotFound indicates the requested league does not exist.
var ErrLeagueNotFound = apperrors.New("LEAGUE_NOT_FOUND", "League not found", http.StatusNotFound)

// LeagueService owns league administration and the public league view.
type LeagueService struct {
	db *gorm.DB
}

// NewLeagueService constructs a LeagueService.
func NewLeagueService(db *gorm.DB) (*LeagueService, error) {
	if db == nil {
		return nil, errors.New("league service: db is required")
	}
	return &LeagueService{db: db}, nil
}

// CreateLeagueInput captures the league creation form.
type CreateLeagueInput struct {
	Name         string
	Description  string
	SkillBracket string
}

// Create registers a league. Name is the only required field.
func (s *LeagueService) Create(ctx context.Context, input CreateLeagueInput) (*models.League, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("league name is required")
	}

	league := &models.League{
		Name:         name,
		Description:  strings.TrimSpace(input.Description),
		SkillBracket: strings.TrimSpace(input.SkillBracket),
	}
	if err := s.db.WithContext(ctx).Create(league).Error; err != nil {
		return nil, fmt.Errorf("league service: create league: %w", err)
	}

	return league, nil
}

// GetByID loads a league with its teams preloaded.
func (s *LeagueService) GetByID(ctx context.Context, id string) (*models.League, error) {
	ctx = ensureContext(ctx)

	var league models.League
	err := s.db.WithContext(ctx).
		Preload("Teams").
		Take(&league, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLeagueNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("league service: get league: %w", err)
	}

	return &league, nil
}

// ListWithTeams returns every league with its assigned teams. This is
// the public standings view and requires no session.
func (s *LeagueService) ListWithTeams(ctx context.Context) ([]models.League, error) {
	ctx = ensureContext(ctx)

	var leagues []models.League
	err := s.db.WithContext(ctx).
		Preload("Teams").
		Order("created_at ASC").
		Find(&leagues).Error
	if err != nil {
		return nil, fmt.Errorf("league service: list leagues: %w", err)
	}
	if leagues == nil {
		leagues = []models.League{}
	}

	return leagues, nil
}

// AssignTeam places a team into a league. A team already assigned
// elsewhere is moved, not duplicated.
func (s *LeagueService) AssignTeam(ctx context.Context, leagueID, teamID string) (*models.Team, error) {
	ctx = ensureContext(ctx)

	var league models.League
	err := s.db.WithContext(ctx).Take(&league, "id = ?", leagueID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLeagueNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("league service: load league: %w", err)
	}

	var team models.Team
	err = s.db.WithContext(ctx).Take(&team, "id = ?", teamID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTeamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("league service: load team: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&team).Update("league_id", leagueID).Error; err != nil {
		return nil, fmt.Errorf("league service: assign team: %w", err)
	}
	team.LeagueID = &leagueID

	return &team, nil
}

// RemoveTeam detaches a team from whatever league it is in.
func (s *LeagueService) RemoveTeam(ctx context.Context, teamID string) (*models.Team, error) {
	ctx = ensureContext(ctx)

	var team models.Team
	err := s.db.WithContext(ctx).Take(&team, "id = ?", teamID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTeamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("league service: load team: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&team).Update("league_id", nil).Error; err != nil {
		return nil, fmt.Errorf("league service: detach team: %w", err)
	}
	team.LeagueID = nil

	return &team, nil
}

// Delete removes a league. Teams assigned to it survive with their
// league reference cleared; both steps run in one transaction.
func (s *LeagueService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var league models.League
		err := tx.Take(&league, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLeagueNotFound
		}
		if err != nil {
			return fmt.Errorf("league service: load league: %w", err)
		}

		if err := tx.Model(&models.Team{}).
			Where("league_id = ?", id).
			Update("league_id", nil).Error; err != nil {
			return fmt.Errorf("league service: detach teams: %w", err)
		}
		if err := tx.Delete(&league).Error; err != nil {
			return fmt.Errorf("league service: delete league: %w", err)
		}
		return nil
	})
}
