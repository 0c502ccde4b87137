package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Conversation is one chat session.
type Conversation struct {
	SessionID    string            `json:"session_id"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	UserMetadata map[string]string `json:"user_metadata,omitempty"`
	MessageCount int               `json:"message_count"`
	Language     string            `json:"language"`
	Status       string            `json:"status"`
}

// Message is a single turn inside a conversation.
type Message struct {
	MessageID string            `json:"message_id"`
	SessionID string            `json:"session_id"`
	Role      string            `json:"role"`
	Content   string            `json:"content"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Feedback is a thumbs up or down on a conversation or specific message.
type Feedback struct {
	FeedbackID string    `json:"feedback_id"`
	SessionID  string    `json:"session_id"`
	MessageID  string    `json:"message_id,omitempty"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// GetOrCreateConversation returns the conversation for sessionID, creating it
// on first use. A blank sessionID gets a fresh UUID.
func (s *Store) GetOrCreateConversation(sessionID string) (*Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	conv, err := s.getConversation(sessionID)
	if err == nil {
		return conv, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	_, err = s.db.Exec(`INSERT INTO conversations (session_id) VALUES (?)`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return s.getConversation(sessionID)
}

// GetConversation fetches an existing conversation. sql.ErrNoRows is
// returned when the session does not exist.
func (s *Store) GetConversation(sessionID string) (*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getConversation(sessionID)
}

func (s *Store) getConversation(sessionID string) (*Conversation, error) {
	row := s.db.QueryRow(`
		SELECT session_id, created_at, updated_at, user_metadata, message_count, language, status
		FROM conversations WHERE session_id = ?`, sessionID)

	var conv Conversation
	var metadata string
	err := row.Scan(&conv.SessionID, &conv.CreatedAt, &conv.UpdatedAt,
		&metadata, &conv.MessageCount, &conv.Language, &conv.Status)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(metadata), &conv.UserMetadata); err != nil {
		conv.UserMetadata = nil
	}
	return &conv, nil
}

// AddMessage appends a message to a conversation and bumps its message count.
func (s *Store) AddMessage(sessionID, role, content string, metadata map[string]string) (*Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta := "{}"
	if len(metadata) > 0 {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return nil, fmt.Errorf("marshal message metadata: %w", err)
		}
		meta = string(raw)
	}

	msg := &Message{
		MessageID: uuid.NewString(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
		Metadata:  metadata,
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO messages (message_id, session_id, role, content, timestamp, metadata)
		VALUES (?, ?, ?, ?, ?, ?)`,
		msg.MessageID, msg.SessionID, msg.Role, msg.Content, msg.Timestamp, meta)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}

	_, err = tx.Exec(`
		UPDATE conversations
		SET message_count = message_count + 1, updated_at = CURRENT_TIMESTAMP
		WHERE session_id = ?`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("bump message count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit message: %w", err)
	}
	return msg, nil
}

// RecentMessages returns up to limit messages from the conversation, oldest
// first.
func (s *Store) RecentMessages(sessionID string, limit int) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(`
		SELECT message_id, session_id, role, content, timestamp, metadata
		FROM (
			SELECT message_id, session_id, role, content, timestamp, metadata
			FROM messages WHERE session_id = ?
			ORDER BY timestamp DESC, rowid DESC LIMIT ?
		) ORDER BY timestamp ASC, rowid ASC`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var msg Message
		var metadata string
		if err := rows.Scan(&msg.MessageID, &msg.SessionID, &msg.Role,
			&msg.Content, &msg.Timestamp, &metadata); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		if err := json.Unmarshal([]byte(metadata), &msg.Metadata); err != nil {
			msg.Metadata = nil
		}
		out = append(out, msg)
	}
	return out, rows.Err()
}

// AddFeedback records a rating for a conversation. Rating must be 1 or -1.
func (s *Store) AddFeedback(sessionID, messageID string, rating int, comment string) (*Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rating != 1 && rating != -1 {
		return nil, fmt.Errorf("rating must be 1 or -1, got %d", rating)
	}

	fb := &Feedback{
		FeedbackID: uuid.NewString(),
		SessionID:  sessionID,
		MessageID:  messageID,
		Rating:     rating,
		Comment:    comment,
		Timestamp:  time.Now().UTC(),
	}

	var msgID sql.NullString
	if messageID != "" {
		msgID = sql.NullString{String: messageID, Valid: true}
	}
	var cmt sql.NullString
	if comment != "" {
		cmt = sql.NullString{String: comment, Valid: true}
	}

	_, err := s.db.Exec(`
		INSERT INTO feedback (feedback_id, session_id, message_id, rating, comment, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)`,
		fb.FeedbackID, fb.SessionID, msgID, fb.Rating, cmt, fb.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("insert feedback: %w", err)
	}
	return fb, nil
}

// FeedbackCounts returns the number of positive and negative ratings for a
// conversation.
func (s *Store) FeedbackCounts(sessionID string) (positive, negative int64, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT rating, COUNT(*) FROM feedback
		WHERE session_id = ? GROUP BY rating`, sessionID)
	if err != nil {
		return 0, 0, fmt.Errorf("feedback counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rating int
		var count int64
		if err := rows.Scan(&rating, &count); err != nil {
			return 0, 0, err
		}
		if rating > 0 {
			positive = count
		} else {
			negative = count
		}
	}
	return positive, negative, rows.Err()
}
