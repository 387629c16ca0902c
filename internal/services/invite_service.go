package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/codgrandprix/server/internal/models"
	"github.com/codgrandprix/server/pkg/crypto"
	apperrors "github.com/codgrandprix/server/pkg/errors"
	"github.com/codgrandprix/server/pkg/logger"
	"github.com/codgrandprix/server/pkg/mail"
	"github.com/codgrandprix/server/pkg/metrics"
)

const (
	defaultInviteExpiry     = 72 * time.Hour
	defaultInviteTokenBytes = 48
)

var (
	// ErrDuplicateInvite indicates a pending invite already exists for
	// the same team and email.
	ErrDuplicateInvite = apperrors.New("DUPLICATE_INVITE", "A pending invite already exists for this email", http.StatusConflict)
	// ErrInviteNotFound indicates no invitation matches the token.
	ErrInviteNotFound = apperrors.New("INVITE_NOT_FOUND", "Invitation not found", http.StatusNotFound)
	// ErrInviteExpired indicates the invitation can no longer be accepted.
	ErrInviteExpired = apperrors.New("INVITE_EXPIRED", "Invitation has expired", http.StatusGone)
	// ErrAlreadyMember indicates the accepting profile already belongs
	// to the team.
	ErrAlreadyMember = apperrors.New("ALREADY_MEMBER", "Profile is already a member of this team", http.StatusConflict)
)

// InviteOption customises InviteService behaviour.
type InviteOption func(*InviteService)

// WithInviteClock injects a custom time source, primarily for tests.
func WithInviteClock(clock func() time.Time) InviteOption {
	return func(s *InviteService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithInviteExpiry overrides the pending invite lifetime.
func WithInviteExpiry(d time.Duration) InviteOption {
	return func(s *InviteService) {
		if d > 0 {
			s.expiry = d
		}
	}
}

// WithInviteBaseURL sets the base URL used in invite links.
func WithInviteBaseURL(url string) InviteOption {
	return func(s *InviteService) {
		s.baseURL = strings.TrimRight(url, "/")
	}
}

// InviteService owns the email invitation flow: issuing invites,
// redeeming tokens, and expiring stale rows.
type InviteService struct {
	db      *gorm.DB
	mailer  mail.Mailer
	baseURL string
	expiry  time.Duration
	now     func() time.Time
}

// NewInviteService constructs an InviteService.
func NewInviteService(db *gorm.DB, mailer mail.Mailer, opts ...InviteOption) (*InviteService, error) {
	if db == nil {
		return nil, errors.New("invite service: db is required")
	}

	service := &InviteService{
		db:     db,
		mailer: mailer,
		expiry: defaultInviteExpiry,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

// Invite issues a pending invitation for email to join teamID and
// emails the join link. Only the team owner may invite. Duplicate
// pending invites are rejected by a pre-check inside the insert
// transaction, backstopped by the partial unique index where the
// driver supports one.
func (s *InviteService) Invite(ctx context.Context, callerID, teamID, email string) (*models.Invitation, error) {
	ctx = ensureContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, apperrors.NewBadRequest("invitee email is required")
	}

	var team models.Team
	err := s.db.WithContext(ctx).Take(&team, "id = ?", teamID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTeamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("invite service: load team: %w", err)
	}
	if team.OwnerID != callerID {
		return nil, ErrNotTeamOwner
	}

	rawToken, err := crypto.GenerateToken(defaultInviteTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("invite service: generate token: %w", err)
	}

	invite := &models.Invitation{
		TeamID:       teamID,
		InviteeEmail: email,
		TokenHash:    crypto.HashToken(rawToken),
		Status:       models.InviteStatusPending,
		ExpiresAt:    s.now().Add(s.expiry),
	}
	// MySQL has no partial unique index, so the pending check runs
	// inside the insert transaction on every driver. The index still
	// backstops concurrent inserts where it exists.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pending int64
		countErr := tx.Model(&models.Invitation{}).
			Where("team_id = ? AND invitee_email = ? AND status = ?", teamID, email, models.InviteStatusPending).
			Count(&pending).Error
		if countErr != nil {
			return fmt.Errorf("count pending invites: %w", countErr)
		}
		if pending > 0 {
			return ErrDuplicateInvite
		}
		return tx.Create(invite).Error
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateInvite) || isUniqueConstraintError(err) {
			metrics.InvitesSent.WithLabelValues("duplicate").Inc()
			return nil, ErrDuplicateInvite
		}
		metrics.InvitesSent.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("invite service: create invite: %w", err)
	}

	metrics.InvitesSent.WithLabelValues("sent").Inc()

	if s.mailer != nil {
		msg := mail.Message{
			To:      []string{email},
			Subject: fmt.Sprintf("You've been invited to join %s", team.Name),
			Body: fmt.Sprintf(
				"You have been invited to join the team %q.\n\nAccept the invite with the link below:\n%s\n\nThe invite expires in %s.\n",
				team.Name, s.inviteLink(rawToken), s.expiry,
			),
		}
		if mailErr := s.mailer.Send(ctx, msg); mailErr != nil && !errors.Is(mailErr, mail.ErrSMTPDisabled) {
			logger.Warn("invite email delivery failed",
				zap.String("invite_id", invite.ID),
				zap.Error(mailErr),
			)
		}
	}

	return invite, nil
}

// Accept redeems a raw invite token for profileID and enrolls them as
// a team member. The token is single use: the status flip and the
// membership insert share one transaction.
func (s *InviteService) Accept(ctx context.Context, profileID, token string) (*models.TeamMembership, error) {
	ctx = ensureContext(ctx)

	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperrors.NewBadRequest("token is required")
	}

	var membership models.TeamMembership
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invite models.Invitation
		err := tx.Where("token_hash = ?", crypto.HashToken(token)).Take(&invite).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInviteNotFound
		}
		if err != nil {
			return fmt.Errorf("invite service: load invite: %w", err)
		}

		if invite.Status != models.InviteStatusPending {
			return ErrInviteNotFound
		}
		now := s.now()
		if invite.ExpiresAt.Before(now) {
			return ErrInviteExpired
		}

		updates := map[string]any{
			"status":      models.InviteStatusAccepted,
			"accepted_at": now,
		}
		if err := tx.Model(&invite).Updates(updates).Error; err != nil {
			return fmt.Errorf("invite service: mark accepted: %w", err)
		}

		membership = models.TeamMembership{
			TeamID:    invite.TeamID,
			ProfileID: profileID,
			Role:      models.MembershipRoleMember,
		}
		if err := tx.Create(&membership).Error; err != nil {
			if isUniqueConstraintError(err) {
				return ErrAlreadyMember
			}
			return fmt.Errorf("invite service: create membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &membership, nil
}

// ExpireStale marks pending invitations past their expiry as expired
// and returns the number of rows updated. Run periodically by the
// maintenance cleaner.
func (s *InviteService) ExpireStale(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Model(&models.Invitation{}).
		Where("status = ? AND expires_at < ?", models.InviteStatusPending, s.now()).
		Update("status", models.InviteStatusExpired)
	if result.Error != nil {
		return 0, fmt.Errorf("invite service: expire stale invites: %w", result.Error)
	}

	return result.RowsAffected, nil
}

func (s *InviteService) inviteLink(token string) string {
	if s.baseURL == "" {
		return token
	}
	return fmt.Sprintf("%s/invites/accept?token=%s", s.baseURL, token)
}
