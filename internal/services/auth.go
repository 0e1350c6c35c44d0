package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jackc/pgx/v5"

	"studymate-backend/internal/models"
	"studymate-backend/internal/repository"
)

// SessionTTL is how long a login stays valid; the session cookie uses the same max-age.
const SessionTTL = 7 * 24 * time.Hour

type userRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}

type sessionRepository interface {
	Create(ctx context.Context, s *models.Session) error
	GetByToken(ctx context.Context, token string) (*models.Session, error)
	DeleteByToken(ctx context.Context, token string) (int64, error)
}

// AuthService binds externally issued session tokens to users.
//
// The identity in a login payload is trusted: an upstream identity provider
// is assumed to have authenticated the user before the token reaches us.
type AuthService struct {
	users    userRepository
	sessions sessionRepository
	logger   *log.Logger
	now      func() time.Time
}

func NewAuthService(users userRepository, sessions sessionRepository, logger *log.Logger) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Login resolves the user by email, creating it on first sight, and stores a
// new session for the supplied token. Existing users are returned unchanged.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.User, error) {
	if fields := validateLogin(req); len(fields) > 0 {
		return nil, NewValidationError(fields)
	}
	data := req.UserData

	user, err := s.users.GetByEmail(ctx, data.Email)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		user, err = s.createUser(ctx, data)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	now := s.now()
	session := &models.Session{
		UserID:       user.ID,
		SessionToken: req.SessionToken,
		ExpiresAt:    now.Add(SessionTTL),
		CreatedAt:    now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return user, nil
}

func (s *AuthService) createUser(ctx context.Context, data models.LoginUserData) (*models.User, error) {
	user := &models.User{
		ID:      data.ID,
		Email:   data.Email,
		Name:    data.Name,
		Picture: data.Picture,
	}

	err := s.users.Create(ctx, user)
	if err == nil {
		s.logger.Info("user created", "user_id", user.ID)
		return user, nil
	}
	if !repository.IsUniqueViolation(err) {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Lost a race with a concurrent first login for the same email, or the
	// id is taken by a different email.
	existing, lookupErr := s.users.GetByEmail(ctx, data.Email)
	if lookupErr == nil {
		return existing, nil
	}
	if errors.Is(lookupErr, pgx.ErrNoRows) {
		return nil, NewValidationError(map[string]string{
			"user_data.id": "User id is already registered with another email",
		})
	}
	return nil, fmt.Errorf("failed to reload user: %w", lookupErr)
}

func validateLogin(req models.LoginRequest) map[string]string {
	fields := make(map[string]string)
	if strings.TrimSpace(req.SessionToken) == "" {
		fields["session_token"] = "Session token is required"
	}
	if strings.TrimSpace(req.UserData.ID) == "" {
		fields["user_data.id"] = "User id is required"
	}
	if strings.TrimSpace(req.UserData.Email) == "" {
		fields["user_data.email"] = "Email is required"
	}
	if strings.TrimSpace(req.UserData.Name) == "" {
		fields["user_data.name"] = "Name is required"
	}
	return fields
}

// Authenticate resolves a session token to its user. An expired session is
// deleted before the failure is returned.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrNoSessionToken
	}

	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if session.Expired(s.now()) {
		if _, err := s.sessions.DeleteByToken(ctx, token); err != nil {
			s.logger.Warn("failed to delete expired session", "session_id", session.ID, "err", err)
		}
		return nil, ErrSessionExpired
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	return user, nil
}

// Logout removes every session stored under token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if _, err := s.sessions.DeleteByToken(ctx, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
