package domain

import "time"

// User is a registered learner. PasswordHash never leaves the server.
type User struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Topic groups coding questions.
type Topic struct {
	TopicID     string `json:"topic_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Question is a daily-practice coding question.
type Question struct {
	QuestionID string     `json:"question_id"`
	TopicID    string     `json:"topic_id"`
	Title      string     `json:"title"`
	Body       string     `json:"body"`
	Difficulty Difficulty `json:"difficulty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Badge is an achievement a user can earn.
type Badge struct {
	BadgeID     string `json:"badge_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon,omitempty"`
}

// UserBadge records that a user earned a badge.
type UserBadge struct {
	UserID   string    `json:"user_id"`
	BadgeID  string    `json:"badge_id"`
	EarnedAt time.Time `json:"earned_at"`
}
