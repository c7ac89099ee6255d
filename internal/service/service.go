// Package service implements the application logic: the interview session
// orchestrator plus user, question and badge operations.
package service

import (
	"errors"

	"github.com/codebuddy/server/internal/config"
	"github.com/codebuddy/server/internal/generator"
	"github.com/codebuddy/server/internal/metrics"
	"github.com/codebuddy/server/internal/store"
)

// ErrValidation marks malformed or missing input.
var ErrValidation = errors.New("validation failed")

// Re-exported store errors so transport code maps them without importing the
// store package everywhere.
var (
	ErrNotFound         = store.ErrNotFound
	ErrSessionNotActive = store.ErrSessionNotActive
	ErrEmailTaken       = store.ErrEmailTaken
)

// ErrInvalidCredentials is returned on failed login.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Broadcaster pushes payloads to the subscribers of a session channel.
// Delivery is best-effort; failures never affect persisted state.
type Broadcaster interface {
	BroadcastJSON(sessionID string, v interface{}, excludeConnID string) error
}

// Service holds the application dependencies.
type Service struct {
	store   store.Store
	gen     *generator.Generator
	hub     Broadcaster
	metrics *metrics.Metrics
	config  *config.Config
	tokens  TokenIssuer

	locks sessionLocks
}

// TokenIssuer issues access tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// New creates a service. hub and m may be nil in tests.
func New(st store.Store, gen *generator.Generator, hub Broadcaster, m *metrics.Metrics, cfg *config.Config, tokens TokenIssuer) *Service {
	return &Service{
		store:   st,
		gen:     gen,
		hub:     hub,
		metrics: m,
		config:  cfg,
		tokens:  tokens,
		locks:   newSessionLocks(),
	}
}
