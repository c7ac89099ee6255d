// Package store provides persistent storage for sessions, users, questions
// and badges.
package store

import (
	"context"
	"errors"

	"github.com/codebuddy/server/internal/domain"
)

var (
	// ErrNotFound is returned when a record does not exist or belongs to a
	// different owner. The two cases are indistinguishable on purpose.
	ErrNotFound = errors.New("not found")

	// ErrSessionNotActive is returned when a mutation targets a session that
	// has already reached a terminal status.
	ErrSessionNotActive = errors.New("session not active")

	// ErrEmailTaken is returned when registering with an existing email.
	ErrEmailTaken = errors.New("email already registered")
)

// Store is the persistence interface used by the service layer.
type Store interface {
	// Sessions
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, sessionID, userID string) (*domain.Session, error)
	// AppendTurn appends messages to an active session owned by userID.
	// The whole turn commits atomically or not at all.
	AppendTurn(ctx context.Context, sessionID, userID string, msgs []domain.Message) error
	// CompleteSession transitions an active session to completed, stamping
	// completed_at exactly once and attaching the summary.
	CompleteSession(ctx context.Context, sessionID, userID string, summary *domain.SessionSummary) error
	// CancelSession transitions an active session to cancelled.
	CancelSession(ctx context.Context, sessionID, userID string) error
	ListSessions(ctx context.Context, userID string, page, pageSize int) ([]domain.Session, error)
	CountSessions(ctx context.Context, userID string) (int, error)
	CountCompletedSessions(ctx context.Context, userID string) (int, error)

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// Questions and topics
	CreateQuestion(ctx context.Context, q *domain.Question) error
	GetQuestion(ctx context.Context, questionID string) (*domain.Question, error)
	ListQuestions(ctx context.Context, topicID string, difficulty domain.Difficulty) ([]domain.Question, error)
	ListTopics(ctx context.Context) ([]domain.Topic, error)

	// Badges
	ListBadges(ctx context.Context) ([]domain.Badge, error)
	AwardBadge(ctx context.Context, userID, badgeID string) error
	ListUserBadges(ctx context.Context, userID string) ([]domain.UserBadge, error)

	Close() error
}
