package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/codebuddy/server/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestUser(t *testing.T, s *SQLiteStore, email string) *domain.User {
	t.Helper()
	user := &domain.User{
		UserID:       uuid.New().String(),
		Email:        email,
		Name:         "Test User",
		PasswordHash: "x",
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return user
}

func newTestSession(t *testing.T, s *SQLiteStore, userID string) *domain.Session {
	t.Helper()
	session := &domain.Session{
		SessionID:  uuid.New().String(),
		UserID:     userID,
		Domain:     "frontend",
		Difficulty: domain.DifficultyEasy,
		Status:     domain.SessionStatusActive,
		Messages: []domain.Message{
			{MessageID: uuid.New().String(), Speaker: domain.SpeakerAI, Content: "Opening question", CreatedAt: time.Now().UTC()},
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := s.CreateSession(context.Background(), session); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	return session
}

func TestSessionCreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	user := newTestUser(t, s, "a@example.com")
	session := newTestSession(t, s, user.UserID)

	got, err := s.GetSession(ctx, session.SessionID, user.UserID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.Status != domain.SessionStatusActive {
		t.Fatalf("expected active, got %s", got.Status)
	}
	if len(got.Messages) != 1 || got.Messages[0].Speaker != domain.SpeakerAI {
		t.Fatalf("expected single ai message, got %+v", got.Messages)
	}
}

func TestGetSessionOwnership(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	owner := newTestUser(t, s, "owner@example.com")
	other := newTestUser(t, s, "other@example.com")
	session := newTestSession(t, s, owner.UserID)

	if _, err := s.GetSession(ctx, session.SessionID, other.UserID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for wrong owner, got %v", err)
	}
	if _, err := s.GetSession(ctx, "missing", owner.UserID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for missing session, got %v", err)
	}
}

func TestAppendTurnPreservesOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	user := newTestUser(t, s, "a@example.com")
	session := newTestSession(t, s, user.UserID)

	now := time.Now().UTC()
	turn := []domain.Message{
		{MessageID: uuid.New().String(), Speaker: domain.SpeakerUser, Content: "I use flexbox", CreatedAt: now},
		{MessageID: uuid.New().String(), Speaker: domain.SpeakerAI, Content: "Good answer", CreatedAt: now},
	}
	if err := s.AppendTurn(ctx, session.SessionID, user.UserID, turn); err != nil {
		t.Fatalf("AppendTurn failed: %v", err)
	}

	got, err := s.GetSession(ctx, session.SessionID, user.UserID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if len(got.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(got.Messages))
	}
	// Insertion order survives identical timestamps.
	if got.Messages[1].Speaker != domain.SpeakerUser || got.Messages[2].Speaker != domain.SpeakerAI {
		t.Fatalf("unexpected message order: %+v", got.Messages)
	}
}

func TestAppendTurnGuards(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	user := newTestUser(t, s, "a@example.com")
	session := newTestSession(t, s, user.UserID)

	msg := []domain.Message{{MessageID: uuid.New().String(), Speaker: domain.SpeakerUser, Content: "hi", CreatedAt: time.Now().UTC()}}

	if err := s.AppendTurn(ctx, "missing", user.UserID, msg); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := s.CompleteSession(ctx, session.SessionID, user.UserID, &domain.SessionSummary{Summary: "done"}); err != nil {
		t.Fatalf("CompleteSession failed: %v", err)
	}
	if err := s.AppendTurn(ctx, session.SessionID, user.UserID, msg); err != ErrSessionNotActive {
		t.Fatalf("expected ErrSessionNotActive, got %v", err)
	}

	// Nothing leaked into the transcript from the failed appends.
	got, err := s.GetSession(ctx, session.SessionID, user.UserID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if len(got.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(got.Messages))
	}
}

func TestCompleteSessionOnce(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	user := newTestUser(t, s, "a@example.com")
	session := newTestSession(t, s, user.UserID)

	summary := &domain.SessionSummary{Summary: "well done", OverallScore: 80}
	if err := s.CompleteSession(ctx, session.SessionID, user.UserID, summary); err != nil {
		t.Fatalf("CompleteSession failed: %v", err)
	}

	got, err := s.GetSession(ctx, session.SessionID, user.UserID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.Status != domain.SessionStatusCompleted {
		t.Fatalf("expected completed, got %s", got.Status)
	}
	if got.CompletedAt == nil {
		t.Fatalf("expected completed_at set")
	}
	if got.FinalFeedback == nil || got.FinalFeedback.OverallScore != 80 {
		t.Fatalf("unexpected final feedback: %+v", got.FinalFeedback)
	}
	first := *got.CompletedAt

	if err := s.CompleteSession(ctx, session.SessionID, user.UserID, summary); err != ErrSessionNotActive {
		t.Fatalf("expected ErrSessionNotActive on second complete, got %v", err)
	}
	got, err = s.GetSession(ctx, session.SessionID, user.UserID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if !got.CompletedAt.Equal(first) {
		t.Fatalf("completed_at changed on second complete")
	}
}

func TestCancelSession(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	user := newTestUser(t, s, "a@example.com")
	session := newTestSession(t, s, user.UserID)

	if err := s.CancelSession(ctx, session.SessionID, user.UserID); err != nil {
		t.Fatalf("CancelSession failed: %v", err)
	}
	got, err := s.GetSession(ctx, session.SessionID, user.UserID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.Status != domain.SessionStatusCancelled {
		t.Fatalf("expected cancelled, got %s", got.Status)
	}
	if err := s.CancelSession(ctx, session.SessionID, user.UserID); err != ErrSessionNotActive {
		t.Fatalf("expected ErrSessionNotActive, got %v", err)
	}
}

func TestListSessionsPagination(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	user := newTestUser(t, s, "a@example.com")

	base := time.Now().UTC().Add(-time.Hour)
	var ids []string
	for i := 0; i < 5; i++ {
		session := &domain.Session{
			SessionID:  uuid.New().String(),
			UserID:     user.UserID,
			Domain:     "backend",
			Difficulty: domain.DifficultyMedium,
			Status:     domain.SessionStatusActive,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.CreateSession(ctx, session); err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
		ids = append(ids, session.SessionID)
	}

	page, err := s.ListSessions(ctx, user.UserID, 1, 2)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(page))
	}
	// Most recent first.
	if page[0].SessionID != ids[4] || page[1].SessionID != ids[3] {
		t.Fatalf("unexpected order: %s, %s", page[0].SessionID, page[1].SessionID)
	}

	total, err := s.CountSessions(ctx, user.UserID)
	if err != nil {
		t.Fatalf("CountSessions failed: %v", err)
	}
	if total != 5 {
		t.Fatalf("expected 5 sessions, got %d", total)
	}
}

func TestUserUniqueEmail(t *testing.T) {
	s := newTestStore(t)
	newTestUser(t, s, "dup@example.com")

	err := s.CreateUser(context.Background(), &domain.User{
		UserID:       uuid.New().String(),
		Email:        "dup@example.com",
		Name:         "Other",
		PasswordHash: "x",
		CreatedAt:    time.Now().UTC(),
	})
	if err != ErrEmailTaken {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestSeededContent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	topics, err := s.ListTopics(ctx)
	if err != nil {
		t.Fatalf("ListTopics failed: %v", err)
	}
	if len(topics) == 0 {
		t.Fatalf("expected seeded topics")
	}

	questions, err := s.ListQuestions(ctx, "frontend", "")
	if err != nil {
		t.Fatalf("ListQuestions failed: %v", err)
	}
	for _, q := range questions {
		if q.TopicID != "frontend" {
			t.Fatalf("unexpected topic in filter result: %+v", q)
		}
	}
	if len(questions) == 0 {
		t.Fatalf("expected seeded frontend questions")
	}

	badges, err := s.ListBadges(ctx)
	if err != nil {
		t.Fatalf("ListBadges failed: %v", err)
	}
	if len(badges) == 0 {
		t.Fatalf("expected seeded badges")
	}
}

func TestAwardBadgeIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	user := newTestUser(t, s, "a@example.com")

	if err := s.AwardBadge(ctx, user.UserID, "first-interview"); err != nil {
		t.Fatalf("AwardBadge failed: %v", err)
	}
	if err := s.AwardBadge(ctx, user.UserID, "first-interview"); err != nil {
		t.Fatalf("second AwardBadge failed: %v", err)
	}
	earned, err := s.ListUserBadges(ctx, user.UserID)
	if err != nil {
		t.Fatalf("ListUserBadges failed: %v", err)
	}
	if len(earned) != 1 {
		t.Fatalf("expected 1 badge, got %d", len(earned))
	}
}
