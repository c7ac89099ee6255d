package service

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/codebuddy/server/internal/domain"
)

// DailyQuestion returns the question of the day: a deterministic pick over
// the question set keyed by the UTC date, so every request on the same day
// agrees without a rotation job.
func (s *Service) DailyQuestion(ctx context.Context, now time.Time) (*domain.Question, error) {
	questions, err := s.store.ListQuestions(ctx, "", "")
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, ErrNotFound
	}

	h := fnv.New32a()
	h.Write([]byte(now.UTC().Format("2006-01-02")))
	idx := int(h.Sum32()) % len(questions)
	if idx < 0 {
		idx += len(questions)
	}
	return &questions[idx], nil
}

// ListQuestions lists questions, optionally filtered by topic and difficulty.
func (s *Service) ListQuestions(ctx context.Context, topicID, difficulty string) ([]domain.Question, error) {
	var diff domain.Difficulty
	if difficulty != "" {
		diff = domain.ParseDifficulty(difficulty)
	}
	questions, err := s.store.ListQuestions(ctx, topicID, diff)
	if err != nil {
		return nil, err
	}
	if questions == nil {
		questions = []domain.Question{}
	}
	return questions, nil
}

// GetQuestion returns a question by ID.
func (s *Service) GetQuestion(ctx context.Context, questionID string) (*domain.Question, error) {
	return s.store.GetQuestion(ctx, questionID)
}

// ListTopics lists all topics.
func (s *Service) ListTopics(ctx context.Context) ([]domain.Topic, error) {
	topics, err := s.store.ListTopics(ctx)
	if err != nil {
		return nil, err
	}
	if topics == nil {
		topics = []domain.Topic{}
	}
	return topics, nil
}
