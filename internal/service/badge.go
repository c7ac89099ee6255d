package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/codebuddy/server/internal/domain"
)

// ListBadges lists every badge the system can award.
func (s *Service) ListBadges(ctx context.Context) ([]domain.Badge, error) {
	badges, err := s.store.ListBadges(ctx)
	if err != nil {
		return nil, err
	}
	if badges == nil {
		badges = []domain.Badge{}
	}
	return badges, nil
}

// awardCompletionBadges grants interview-count badges after a session
// completes. Best-effort: a failed award never fails the completion.
func (s *Service) awardCompletionBadges(ctx context.Context, userID string) {
	completed, err := s.store.CountCompletedSessions(ctx, userID)
	if err != nil {
		log.Warn().Str("user_id", userID).Err(err).Msg("failed to count completed sessions")
		return
	}

	award := func(badgeID string) {
		if err := s.store.AwardBadge(ctx, userID, badgeID); err != nil {
			log.Warn().Str("user_id", userID).Str("badge_id", badgeID).Err(err).Msg("failed to award badge")
		}
	}
	if completed >= 1 {
		award("first-interview")
	}
	if completed >= 5 {
		award("five-interviews")
	}
}
