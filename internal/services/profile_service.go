package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/codgrandprix/server/internal/models"
	"github.com/codgrandprix/server/pkg/crypto"
	apperrors "github.com/codgrandprix/server/pkg/errors"
	"github.com/codgrandprix/server/pkg/mail"
)

const (
	defaultConfirmationExpiry     = 24 * time.Hour
	defaultConfirmationTokenBytes = 48
)

var (
	// ErrProfileNotFound indicates the requested profile does not exist.
	ErrProfileNotFound = apperrors.New("PROFILE_NOT_FOUND", "Profile not found", http.StatusNotFound)
	// ErrEmailTaken signals the email address is already registered.
	ErrEmailTaken = apperrors.New("EMAIL_TAKEN", "Email address already registered", http.StatusConflict)
	// ErrConfirmationNotFound indicates no confirmation matches the token.
	ErrConfirmationNotFound = apperrors.New("CONFIRMATION_NOT_FOUND", "Confirmation token not found", http.StatusNotFound)
	// ErrConfirmationExpired indicates the confirmation token has expired.
	ErrConfirmationExpired = apperrors.New("CONFIRMATION_EXPIRED", "Confirmation token expired", http.StatusGone)
)

// ProfileOption customises ProfileService behaviour.
type ProfileOption func(*ProfileService)

// WithConfirmationBaseURL sets the base URL used in confirmation links.
func WithConfirmationBaseURL(url string) ProfileOption {
	return func(s *ProfileService) {
		s.baseURL = strings.TrimRight(url, "/")
	}
}

// WithProfileClock injects a custom time source, primarily for tests.
func WithProfileClock(clock func() time.Time) ProfileOption {
	return func(s *ProfileService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// ProfileService owns signup, login verification, and profile mutation.
type ProfileService struct {
	db      *gorm.DB
	mailer  mail.Mailer
	baseURL string
	now     func() time.Time
}

// NewProfileService constructs a ProfileService with the provided dependencies.
func NewProfileService(db *gorm.DB, mailer mail.Mailer, opts ...ProfileOption) (*ProfileService, error) {
	if db == nil {
		return nil, errors.New("profile service: db is required")
	}

	service := &ProfileService{
		db:     db,
		mailer: mailer,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

// RegisterInput captures the signup form.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Register creates an unconfirmed profile and dispatches the
// confirmation email. Email delivery is best effort: a disabled mailer
// does not fail the signup.
func (s *ProfileService) Register(ctx context.Context, input RegisterInput) (*models.Profile, error) {
	ctx = ensureContext(ctx)

	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if username == "" || email == "" || input.Password == "" {
		return nil, apperrors.NewBadRequest("username, email and password are required")
	}

	hashed, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("profile service: hash password: %w", err)
	}

	profile := &models.Profile{
		Username: username,
		Email:    email,
		Password: hashed,
		Role:     models.RolePlayer,
	}

	rawToken, err := crypto.GenerateToken(defaultConfirmationTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("profile service: generate confirmation token: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(profile).Error; err != nil {
			if isUniqueConstraintError(err) {
				return ErrEmailTaken
			}
			return fmt.Errorf("profile service: create profile: %w", err)
		}

		confirmation := models.EmailConfirmation{
			ProfileID: profile.ID,
			TokenHash: crypto.HashToken(rawToken),
			ExpiresAt: s.now().Add(defaultConfirmationExpiry),
		}
		if err := tx.Create(&confirmation).Error; err != nil {
			return fmt.Errorf("profile service: create confirmation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.mailer != nil {
		msg := mail.Message{
			To:      []string{email},
			Subject: "Confirm your Grand Prix account",
			Body: fmt.Sprintf(
				"Welcome to the Grand Prix!\n\nConfirm your email address with the link below:\n%s\n\nThe link expires in 24 hours.\n",
				s.confirmationLink(rawToken),
			),
		}
		if mailErr := s.mailer.Send(ctx, msg); mailErr != nil && !errors.Is(mailErr, mail.ErrSMTPDisabled) {
			return nil, fmt.Errorf("profile service: send confirmation email: %w", mailErr)
		}
	}

	return profile, nil
}

// Authenticate verifies email and password, recording the login time.
func (s *ProfileService) Authenticate(ctx context.Context, email, password string) (*models.Profile, error) {
	ctx = ensureContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperrors.ErrInvalidCredentials
	}

	var profile models.Profile
	err := s.db.WithContext(ctx).Where("email = ?", email).Take(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("profile service: find profile: %w", err)
	}

	if !crypto.VerifyPassword(profile.Password, password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	now := s.now()
	if err := s.db.WithContext(ctx).Model(&profile).Update("last_login_at", now).Error; err != nil {
		return nil, fmt.Errorf("profile service: record login: %w", err)
	}
	profile.LastLoginAt = &now

	return &profile, nil
}

// ConfirmEmail consumes a confirmation token and marks the profile confirmed.
func (s *ProfileService) ConfirmEmail(ctx context.Context, token string) (*models.Profile, error) {
	ctx = ensureContext(ctx)

	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperrors.NewBadRequest("token is required")
	}

	var confirmation models.EmailConfirmation
	err := s.db.WithContext(ctx).
		Where("token_hash = ?", crypto.HashToken(token)).
		Take(&confirmation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrConfirmationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("profile service: find confirmation: %w", err)
	}

	now := s.now()
	if confirmation.ConfirmedAt != nil {
		return nil, ErrConfirmationNotFound
	}
	if confirmation.ExpiresAt.Before(now) {
		return nil, ErrConfirmationExpired
	}

	var profile models.Profile
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.EmailConfirmation{}).
			Where("id = ?", confirmation.ID).
			Update("confirmed_at", now).Error; err != nil {
			return fmt.Errorf("profile service: mark confirmation: %w", err)
		}
		if err := tx.Model(&models.Profile{}).
			Where("id = ?", confirmation.ProfileID).
			Update("email_confirmed_at", now).Error; err != nil {
			return fmt.Errorf("profile service: mark profile: %w", err)
		}
		return tx.Take(&profile, "id = ?", confirmation.ProfileID).Error
	})
	if err != nil {
		return nil, err
	}

	return &profile, nil
}

// GetByID loads a profile.
func (s *ProfileService) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	ctx = ensureContext(ctx)

	var profile models.Profile
	err := s.db.WithContext(ctx).Take(&profile, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("profile service: get profile: %w", err)
	}

	return &profile, nil
}

// UpdateInput describes mutable profile fields. Nil pointers leave the
// current value untouched.
type UpdateInput struct {
	Username    *string
	Discord     *string
	Activision  *string
	Xbox        *string
	Playstation *string
}

// Update applies profile mutations for the owning user.
func (s *ProfileService) Update(ctx context.Context, id string, input UpdateInput) (*models.Profile, error) {
	ctx = ensureContext(ctx)

	profile, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Username != nil {
		if name := strings.TrimSpace(*input.Username); name != "" && name != profile.Username {
			updates["username"] = name
		}
	}
	if input.Discord != nil {
		updates["discord"] = strings.TrimSpace(*input.Discord)
	}
	if input.Activision != nil {
		updates["activision"] = strings.TrimSpace(*input.Activision)
	}
	if input.Xbox != nil {
		updates["xbox"] = strings.TrimSpace(*input.Xbox)
	}
	if input.Playstation != nil {
		updates["playstation"] = strings.TrimSpace(*input.Playstation)
	}

	if len(updates) == 0 {
		return profile, nil
	}

	if err := s.db.WithContext(ctx).Model(profile).Updates(updates).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewBadRequest("username already taken")
		}
		return nil, fmt.Errorf("profile service: update profile: %w", err)
	}

	return s.GetByID(ctx, id)
}

// SetRole changes a profile's role. Admin-only; the role must belong to
// the closed set.
func (s *ProfileService) SetRole(ctx context.Context, id string, role models.Role) (*models.Profile, error) {
	ctx = ensureContext(ctx)

	if !role.Valid() {
		return nil, apperrors.NewBadRequest("unknown role")
	}

	profile, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(profile).Update("role", role).Error; err != nil {
		return nil, fmt.Errorf("profile service: set role: %w", err)
	}
	profile.Role = role

	return profile, nil
}

func (s *ProfileService) confirmationLink(token string) string {
	if s.baseURL == "" {
		return token
	}
	return fmt.Sprintf("%s/confirm-email?token=%s", s.baseURL, token)
}
