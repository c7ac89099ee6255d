package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/codebuddy/server/internal/domain"
)

// StartResult is returned by StartSession.
type StartResult struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
}

// StartSession creates a new active session whose first message is the
// generated opening question. If persistence fails no session exists.
func (s *Service) StartSession(ctx context.Context, userID, dom, difficulty string) (*StartResult, error) {
	dom = strings.TrimSpace(dom)
	if dom == "" {
		return nil, fmt.Errorf("%w: domain is required", ErrValidation)
	}

	diff := domain.ParseDifficulty(difficulty)
	question := s.gen.Question(ctx, dom, nil, diff)

	now := time.Now().UTC()
	session := &domain.Session{
		SessionID:  uuid.New().String(),
		UserID:     userID,
		Domain:     dom,
		Difficulty: diff,
		Status:     domain.SessionStatusActive,
		Messages: []domain.Message{
			{
				MessageID: uuid.New().String(),
				Speaker:   domain.SpeakerAI,
				Content:   question,
				CreatedAt: now,
			},
		},
		CreatedAt: now,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if s.metrics != nil {
		s.metrics.SessionsStarted.Inc()
	}
	log.Info().Str("session_id", session.SessionID).Str("domain", dom).Msg("interview started")
	return &StartResult{SessionID: session.SessionID, Question: question}, nil
}

// RespondResult is returned by Respond.
type RespondResult struct {
	Feedback     string   `json:"feedback"`
	FollowUp     string   `json:"follow_up,omitempty"`
	Score        int      `json:"score"`
	Strengths    []string `json:"strengths,omitempty"`
	Improvements []string `json:"improvements,omitempty"`
}

// aiMessageEvent is what subscribers of the session channel receive for each
// AI message produced by a turn.
type aiMessageEvent struct {
	Type    string         `json:"type"`
	Message domain.Message `json:"message"`
}

// Respond appends the user's answer, evaluates it against the most recent AI
// question, and appends the feedback (and follow-up, when present) in one
// atomic turn. excludeConnID names the responder's own WebSocket connection,
// which is skipped during broadcast; pass "" for REST callers.
func (s *Service) Respond(ctx context.Context, sessionID, userID, content string, isAudio bool, excludeConnID string) (*RespondResult, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: response is required", ErrValidation)
	}

	release := s.locks.acquire(sessionID)
	defer release()

	session, err := s.store.GetSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session.Status != domain.SessionStatusActive {
		return nil, ErrSessionNotActive
	}

	lastQuestion := ""
	if last := session.LastAIMessage(); last != nil {
		lastQuestion = last.Content
	}

	eval := s.gen.Evaluate(ctx, lastQuestion, content, session.Domain, session.Difficulty)

	now := time.Now().UTC()
	turn := []domain.Message{
		{
			MessageID: uuid.New().String(),
			Speaker:   domain.SpeakerUser,
			Content:   content,
			IsAudio:   isAudio,
			CreatedAt: now,
		},
		{
			MessageID: uuid.New().String(),
			Speaker:   domain.SpeakerAI,
			Content:   eval.Feedback,
			CreatedAt: now,
		},
	}
	if eval.FollowUp != "" {
		turn = append(turn, domain.Message{
			MessageID: uuid.New().String(),
			Speaker:   domain.SpeakerAI,
			Content:   eval.FollowUp,
			CreatedAt: now,
		})
	}

	if err := s.store.AppendTurn(ctx, sessionID, userID, turn); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.TurnsTotal.Inc()
	}
	s.broadcastAIMessages(sessionID, turn[1:], excludeConnID)

	return &RespondResult{
		Feedback:     eval.Feedback,
		FollowUp:     eval.FollowUp,
		Score:        eval.Score,
		Strengths:    eval.Strengths,
		Improvements: eval.Improvements,
	}, nil
}

func (s *Service) broadcastAIMessages(sessionID string, msgs []domain.Message, excludeConnID string) {
	if s.hub == nil {
		return
	}
	for _, msg := range msgs {
		if err := s.hub.BroadcastJSON(sessionID, aiMessageEvent{Type: "ai_message", Message: msg}, excludeConnID); err != nil {
			log.Warn().Str("session_id", sessionID).Err(err).Msg("broadcast failed")
		}
	}
}

// EndSession summarizes the transcript and transitions the session to
// completed. Summarization cannot block the transition: the generator always
// returns a summary, canned if necessary.
func (s *Service) EndSession(ctx context.Context, sessionID, userID string) (*domain.SessionSummary, error) {
	release := s.locks.acquire(sessionID)
	defer release()

	session, err := s.store.GetSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session.Status != domain.SessionStatusActive {
		return nil, ErrSessionNotActive
	}

	summary := s.gen.Summarize(ctx, session.Messages, session.Domain)
	if err := s.store.CompleteSession(ctx, sessionID, userID, &summary); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.SessionsCompleted.Inc()
	}
	s.awardCompletionBadges(ctx, userID)
	log.Info().Str("session_id", sessionID).Msg("interview completed")
	return &summary, nil
}

// CancelSession transitions an active session to cancelled without a summary.
func (s *Service) CancelSession(ctx context.Context, sessionID, userID string) error {
	release := s.locks.acquire(sessionID)
	defer release()

	if err := s.store.CancelSession(ctx, sessionID, userID); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.SessionsCancelled.Inc()
	}
	return nil
}

// HistoryResult is one page of a user's sessions.
type HistoryResult struct {
	Sessions   []domain.Session `json:"sessions"`
	Total      int              `json:"total"`
	TotalPages int              `json:"total_pages"`
}

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

// SessionHistory lists the owner's sessions, most recent first.
func (s *Service) SessionHistory(ctx context.Context, userID string, page, pageSize int) (*HistoryResult, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	sessions, err := s.store.ListSessions(ctx, userID, page, pageSize)
	if err != nil {
		return nil, err
	}
	total, err := s.store.CountSessions(ctx, userID)
	if err != nil {
		return nil, err
	}
	totalPages := (total + pageSize - 1) / pageSize
	if sessions == nil {
		sessions = []domain.Session{}
	}
	return &HistoryResult{Sessions: sessions, Total: total, TotalPages: totalPages}, nil
}

// GetSession returns a session with its full transcript, owner-scoped.
func (s *Service) GetSession(ctx context.Context, sessionID, userID string) (*domain.Session, error) {
	return s.store.GetSession(ctx, sessionID, userID)
}
