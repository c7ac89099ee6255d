package domain

import "time"

// Session is one interview attempt by one user: an ordered transcript plus a
// status. Messages are append-only and never reordered.
type Session struct {
	SessionID     string          `json:"session_id"`
	UserID        string          `json:"user_id"`
	Domain        string          `json:"domain"`
	Difficulty    Difficulty      `json:"difficulty"`
	Status        SessionStatus   `json:"status"`
	Messages      []Message       `json:"messages"`
	FinalFeedback *SessionSummary `json:"final_feedback,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
}

// LastAIMessage returns the most recent ai message, or nil if none exists.
func (s *Session) LastAIMessage() *Message {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Speaker == SpeakerAI {
			return &s.Messages[i]
		}
	}
	return nil
}

// Message is a single transcript entry.
type Message struct {
	MessageID string    `json:"message_id"`
	Speaker   Speaker   `json:"speaker"`
	Content   string    `json:"content"`
	IsAudio   bool      `json:"is_audio,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Evaluation is the structured result of evaluating one answer.
type Evaluation struct {
	Feedback     string   `json:"feedback"`
	Score        int      `json:"score"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
	FollowUp     string   `json:"follow_up,omitempty"`
}

// SessionSummary is the final feedback attached when a session completes.
type SessionSummary struct {
	Summary             string   `json:"summary"`
	OverallScore        int      `json:"overall_score"`
	TechnicalScore      int      `json:"technical_score"`
	CommunicationScore  int      `json:"communication_score"`
	Strengths           []string `json:"strengths"`
	AreasForImprovement []string `json:"areas_for_improvement"`
}
