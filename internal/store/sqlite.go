package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/codebuddy/server/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	if err := s.seedContent(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed content: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			domain TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			status TEXT NOT NULL,
			final_feedback TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			completed_at DATETIME,
			FOREIGN KEY (user_id) REFERENCES users(user_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS messages (
			message_id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			speaker TEXT NOT NULL,
			content TEXT NOT NULL,
			is_audio INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (session_id) REFERENCES sessions(session_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS topics (
			topic_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS questions (
			question_id TEXT PRIMARY KEY,
			topic_id TEXT NOT NULL,
			title TEXT NOT NULL,
			body TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (topic_id) REFERENCES topics(topic_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_questions_topic ON questions(topic_id, difficulty)`,
		`CREATE TABLE IF NOT EXISTS badges (
			badge_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL,
			icon TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS user_badges (
			user_id TEXT NOT NULL,
			badge_id TEXT NOT NULL,
			earned_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, badge_id),
			FOREIGN KEY (user_id) REFERENCES users(user_id),
			FOREIGN KEY (badge_id) REFERENCES badges(badge_id)
		)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateSession creates a new session together with its initial messages.
func (s *SQLiteStore) CreateSession(ctx context.Context, session *domain.Session) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	feedback, err := marshalSummary(session.FinalFeedback)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (session_id, user_id, domain, difficulty, status, final_feedback, created_at, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		session.SessionID, session.UserID, session.Domain, session.Difficulty,
		session.Status, feedback, session.CreatedAt, session.CompletedAt)
	if err != nil {
		return err
	}
	for i := range session.Messages {
		if err := insertMessage(ctx, tx, session.SessionID, &session.Messages[i]); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetSession retrieves a session by ID, scoped to its owner. A missing
// session and a session owned by someone else both return ErrNotFound.
func (s *SQLiteStore) GetSession(ctx context.Context, sessionID, userID string) (*domain.Session, error) {
	session, err := scanSession(s.db.QueryRowContext(ctx,
		`SELECT session_id, user_id, domain, difficulty, status, final_feedback, created_at, completed_at
		 FROM sessions WHERE session_id = ? AND user_id = ?`,
		sessionID, userID))
	if err != nil {
		return nil, err
	}

	messages, err := s.getMessages(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	session.Messages = messages
	return session, nil
}

func (s *SQLiteStore) getMessages(ctx context.Context, sessionID string) ([]domain.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT message_id, speaker, content, is_audio, created_at
		 FROM messages WHERE session_id = ? ORDER BY rowid ASC`,
		sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(&msg.MessageID, &msg.Speaker, &msg.Content, &msg.IsAudio, &msg.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// AppendTurn appends a whole turn of messages to an active session. The
// status check and all inserts run in one transaction, so a failed turn
// leaves no partial writes behind.
func (s *SQLiteStore) AppendTurn(ctx context.Context, sessionID, userID string, msgs []domain.Message) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var status domain.SessionStatus
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM sessions WHERE session_id = ? AND user_id = ?`,
		sessionID, userID).Scan(&status)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if status != domain.SessionStatusActive {
		return ErrSessionNotActive
	}

	for i := range msgs {
		if err := insertMessage(ctx, tx, sessionID, &msgs[i]); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func insertMessage(ctx context.Context, tx *sql.Tx, sessionID string, msg *domain.Message) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO messages (message_id, session_id, speaker, content, is_audio, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		msg.MessageID, sessionID, msg.Speaker, msg.Content, msg.IsAudio, msg.CreatedAt)
	return err
}

// CompleteSession transitions an active session to completed. The status
// guard in the WHERE clause makes the transition single-shot: completed_at is
// stamped at most once.
func (s *SQLiteStore) CompleteSession(ctx context.Context, sessionID, userID string, summary *domain.SessionSummary) error {
	feedback, err := marshalSummary(summary)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET status = ?, completed_at = ?, final_feedback = ?
		 WHERE session_id = ? AND user_id = ? AND status = ?`,
		domain.SessionStatusCompleted, time.Now().UTC(), feedback,
		sessionID, userID, domain.SessionStatusActive)
	if err != nil {
		return err
	}
	return s.checkTransition(ctx, res, sessionID, userID)
}

// CancelSession transitions an active session to cancelled.
func (s *SQLiteStore) CancelSession(ctx context.Context, sessionID, userID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET status = ? WHERE session_id = ? AND user_id = ? AND status = ?`,
		domain.SessionStatusCancelled, sessionID, userID, domain.SessionStatusActive)
	if err != nil {
		return err
	}
	return s.checkTransition(ctx, res, sessionID, userID)
}

// checkTransition distinguishes a missing session from one already in a
// terminal state after a guarded UPDATE affected no rows.
func (s *SQLiteStore) checkTransition(ctx context.Context, res sql.Result, sessionID, userID string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}
	var status string
	err = s.db.QueryRowContext(ctx,
		`SELECT status FROM sessions WHERE session_id = ? AND user_id = ?`,
		sessionID, userID).Scan(&status)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return ErrSessionNotActive
}

// ListSessions returns a page of the owner's sessions, most recent first.
// Transcripts are not loaded; use GetSession for the full message list.
func (s *SQLiteStore) ListSessions(ctx context.Context, userID string, page, pageSize int) ([]domain.Session, error) {
	if page < 1 {
		page = 1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, user_id, domain, difficulty, status, final_feedback, created_at, completed_at
		 FROM sessions WHERE user_id = ?
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ? OFFSET ?`,
		userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	return sessions, rows.Err()
}

// CountSessions returns the total number of sessions owned by userID.
func (s *SQLiteStore) CountSessions(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sessions WHERE user_id = ?`, userID).Scan(&n)
	return n, err
}

// CountCompletedSessions returns how many sessions userID has completed.
func (s *SQLiteStore) CountCompletedSessions(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sessions WHERE user_id = ? AND status = ?`,
		userID, domain.SessionStatusCompleted).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*domain.Session, error) {
	var session domain.Session
	var feedback sql.NullString
	var completedAt sql.NullTime
	err := row.Scan(&session.SessionID, &session.UserID, &session.Domain,
		&session.Difficulty, &session.Status, &feedback, &session.CreatedAt, &completedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if feedback.Valid && feedback.String != "" {
		var summary domain.SessionSummary
		if err := json.Unmarshal([]byte(feedback.String), &summary); err != nil {
			return nil, fmt.Errorf("corrupt final_feedback for %s: %w", session.SessionID, err)
		}
		session.FinalFeedback = &summary
	}
	if completedAt.Valid {
		session.CompletedAt = &completedAt.Time
	}
	return &session, nil
}

func marshalSummary(summary *domain.SessionSummary) (sql.NullString, error) {
	if summary == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(summary)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}
