package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/codebuddy/server/internal/auth"
	"github.com/codebuddy/server/internal/domain"
)

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// Register creates a user account and returns a signed token.
func (s *Service) Register(ctx context.Context, email, name, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: a valid email is required", ErrValidation)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		UserID:       uuid.New().String(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	if err := s.store.AwardBadge(ctx, user.UserID, "early-adopter"); err != nil {
		log.Warn().Str("user_id", user.UserID).Err(err).Msg("failed to award signup badge")
	}

	token, err := s.tokens.Issue(user.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &AuthResult{Token: token, User: user}, nil
}

// Login verifies credentials and returns a signed token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.store.GetUserByEmail(ctx, email)
	if err == ErrNotFound {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &AuthResult{Token: token, User: user}, nil
}

// ProfileResult bundles a user with their progress.
type ProfileResult struct {
	User              *domain.User       `json:"user"`
	Badges            []domain.UserBadge `json:"badges"`
	TotalSessions     int                `json:"total_sessions"`
	CompletedSessions int                `json:"completed_sessions"`
}

// Profile returns the user's account plus badges and session counts.
func (s *Service) Profile(ctx context.Context, userID string) (*ProfileResult, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	badges, err := s.store.ListUserBadges(ctx, userID)
	if err != nil {
		return nil, err
	}
	total, err := s.store.CountSessions(ctx, userID)
	if err != nil {
		return nil, err
	}
	completed, err := s.store.CountCompletedSessions(ctx, userID)
	if err != nil {
		return nil, err
	}
	if badges == nil {
		badges = []domain.UserBadge{}
	}
	return &ProfileResult{User: user, Badges: badges, TotalSessions: total, CompletedSessions: completed}, nil
}
