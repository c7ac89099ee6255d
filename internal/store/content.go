package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/codebuddy/server/internal/domain"
)

// CreateQuestion creates a new question.
func (s *SQLiteStore) CreateQuestion(ctx context.Context, q *domain.Question) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO questions (question_id, topic_id, title, body, difficulty, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		q.QuestionID, q.TopicID, q.Title, q.Body, q.Difficulty, q.CreatedAt)
	return err
}

// GetQuestion retrieves a question by ID.
func (s *SQLiteStore) GetQuestion(ctx context.Context, questionID string) (*domain.Question, error) {
	var q domain.Question
	err := s.db.QueryRowContext(ctx,
		`SELECT question_id, topic_id, title, body, difficulty, created_at FROM questions WHERE question_id = ?`,
		questionID).Scan(&q.QuestionID, &q.TopicID, &q.Title, &q.Body, &q.Difficulty, &q.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// ListQuestions lists questions, optionally filtered by topic and difficulty.
func (s *SQLiteStore) ListQuestions(ctx context.Context, topicID string, difficulty domain.Difficulty) ([]domain.Question, error) {
	query := `SELECT question_id, topic_id, title, body, difficulty, created_at FROM questions`
	var conds []string
	var args []interface{}
	if topicID != "" {
		conds = append(conds, "topic_id = ?")
		args = append(args, topicID)
	}
	if difficulty != "" {
		conds = append(conds, "difficulty = ?")
		args = append(args, difficulty)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at ASC, rowid ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.QuestionID, &q.TopicID, &q.Title, &q.Body, &q.Difficulty, &q.CreatedAt); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// ListTopics lists all topics.
func (s *SQLiteStore) ListTopics(ctx context.Context) ([]domain.Topic, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT topic_id, name, description FROM topics ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []domain.Topic
	for rows.Next() {
		var t domain.Topic
		var desc sql.NullString
		if err := rows.Scan(&t.TopicID, &t.Name, &desc); err != nil {
			return nil, err
		}
		t.Description = desc.String
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

// ListBadges lists all badges.
func (s *SQLiteStore) ListBadges(ctx context.Context) ([]domain.Badge, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT badge_id, name, description, icon FROM badges ORDER BY badge_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var badges []domain.Badge
	for rows.Next() {
		var b domain.Badge
		var icon sql.NullString
		if err := rows.Scan(&b.BadgeID, &b.Name, &b.Description, &icon); err != nil {
			return nil, err
		}
		b.Icon = icon.String
		badges = append(badges, b)
	}
	return badges, rows.Err()
}

// AwardBadge records that a user earned a badge. Awarding the same badge
// twice is a no-op.
func (s *SQLiteStore) AwardBadge(ctx context.Context, userID, badgeID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO user_badges (user_id, badge_id, earned_at) VALUES (?, ?, ?)`,
		userID, badgeID, time.Now().UTC())
	return err
}

// ListUserBadges lists the badges a user has earned.
func (s *SQLiteStore) ListUserBadges(ctx context.Context, userID string) ([]domain.UserBadge, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, badge_id, earned_at FROM user_badges WHERE user_id = ? ORDER BY earned_at ASC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var earned []domain.UserBadge
	for rows.Next() {
		var ub domain.UserBadge
		if err := rows.Scan(&ub.UserID, &ub.BadgeID, &ub.EarnedAt); err != nil {
			return nil, err
		}
		earned = append(earned, ub)
	}
	return earned, rows.Err()
}

// seedContent loads the built-in topics, questions and badges on first run.
func (s *SQLiteStore) seedContent() error {
	ctx := context.Background()

	topics := []domain.Topic{
		{TopicID: "frontend", Name: "Frontend", Description: "HTML, CSS, JavaScript and browser APIs"},
		{TopicID: "backend", Name: "Backend", Description: "Servers, databases and APIs"},
		{TopicID: "algorithms", Name: "Algorithms", Description: "Data structures and algorithmic problem solving"},
		{TopicID: "system-design", Name: "System Design", Description: "Architecture and scalability"},
	}
	for _, t := range topics {
		if _, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO topics (topic_id, name, description) VALUES (?, ?, ?)`,
			t.TopicID, t.Name, t.Description); err != nil {
			return err
		}
	}

	questions := []domain.Question{
		{QuestionID: "q-flexbox", TopicID: "frontend", Title: "Centering with Flexbox", Body: "How would you center an element horizontally and vertically using flexbox?", Difficulty: domain.DifficultyEasy},
		{QuestionID: "q-event-loop", TopicID: "frontend", Title: "The Event Loop", Body: "Explain how the browser event loop schedules tasks and microtasks.", Difficulty: domain.DifficultyMedium},
		{QuestionID: "q-rest-idempotency", TopicID: "backend", Title: "Idempotent Endpoints", Body: "Which HTTP methods should be idempotent, and how do you enforce that server-side?", Difficulty: domain.DifficultyMedium},
		{QuestionID: "q-index-tradeoffs", TopicID: "backend", Title: "Database Indexes", Body: "What are the trade-offs of adding an index to a write-heavy table?", Difficulty: domain.DifficultyHard},
		{QuestionID: "q-two-sum", TopicID: "algorithms", Title: "Two Sum", Body: "Given an array and a target, return indices of two numbers that add up to the target.", Difficulty: domain.DifficultyEasy},
		{QuestionID: "q-lru", TopicID: "algorithms", Title: "LRU Cache", Body: "Design a data structure with O(1) get and put that evicts the least recently used entry.", Difficulty: domain.DifficultyHard},
		{QuestionID: "q-url-shortener", TopicID: "system-design", Title: "URL Shortener", Body: "Design a URL shortening service handling 100M redirects per day.", Difficulty: domain.DifficultyMedium},
	}
	for _, q := range questions {
		if _, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO questions (question_id, topic_id, title, body, difficulty, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			q.QuestionID, q.TopicID, q.Title, q.Body, q.Difficulty, time.Now().UTC()); err != nil {
			return err
		}
	}

	badges := []domain.Badge{
		{BadgeID: "first-interview", Name: "First Interview", Description: "Completed your first mock interview", Icon: "🎤"},
		{BadgeID: "five-interviews", Name: "Interview Regular", Description: "Completed five mock interviews", Icon: "🏅"},
		{BadgeID: "early-adopter", Name: "Early Adopter", Description: "Joined CodeBuddy", Icon: "🌱"},
	}
	for _, b := range badges {
		if _, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO badges (badge_id, name, description, icon) VALUES (?, ?, ?, ?)`,
			b.BadgeID, b.Name, b.Description, b.Icon); err != nil {
			return err
		}
	}
	return nil
}
