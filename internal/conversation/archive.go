package conversation

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ArchiveStore persists conversation transcripts to PostgreSQL for long-term
// history. All methods are nil-safe no-ops when no database is configured.
type ArchiveStore struct {
	db *sql.DB
}

// NewArchiveStore creates an archive store. Returns nil when db is nil so the
// archive can be wired unconditionally.
func NewArchiveStore(db *sql.DB) *ArchiveStore {
	if db == nil {
		return nil
	}
	return &ArchiveStore{db: db}
}

// ConversationRecord represents an archived conversation.
type ConversationRecord struct {
	ID                    uuid.UUID
	SessionID             string
	Stage                 string
	UserEmail             string
	MessageCount          int
	UserMessageCount      int
	AssistantMessageCount int
	StartedAt             time.Time
	LastMessageAt         *time.Time
	EndedAt               *time.Time
}

// MessageRecord represents an archived message.
type MessageRecord struct {
	ID        uuid.UUID
	SessionID string
	Role      string
	Content   string
	Stage     string
	CreatedAt time.Time
}

// EnsureConversation creates the conversation row for a session if missing
// and refreshes its stage. Returns the conversation UUID.
func (s *ArchiveStore) EnsureConversation(ctx context.Context, sess *Session) (uuid.UUID, error) {
	if s == nil || s.db == nil {
		return uuid.Nil, nil
	}

	var existingID uuid.UUID
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM conversations WHERE session_id = $1`,
		sess.SessionID,
	).Scan(&existingID)

	if err == nil {
		s.db.ExecContext(ctx,
			`UPDATE conversations SET stage = $1, user_email = $2, updated_at = $3 WHERE id = $4`,
			string(sess.Stage), sess.UserEmail, time.Now(), existingID,
		)
		return existingID, nil
	}
	if err != sql.ErrNoRows {
		return uuid.Nil, fmt.Errorf("conversation: failed to check existing: %w", err)
	}

	newID := uuid.New()
	now := time.Now()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO conversations (
			id, session_id, stage, user_email,
			message_count, user_message_count, assistant_message_count,
			started_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, newID, sess.SessionID, string(sess.Stage), sess.UserEmail,
		0, 0, 0, now, now, now,
	)
	if err != nil {
		// Another process may have created it concurrently.
		if strings.Contains(err.Error(), "duplicate key") {
			return s.EnsureConversation(ctx, sess)
		}
		return uuid.Nil, fmt.Errorf("conversation: failed to create: %w", err)
	}
	return newID, nil
}

// AppendMessage persists a message and bumps conversation counters.
func (s *ArchiveStore) AppendMessage(ctx context.Context, sess *Session, msg Message) error {
	if s == nil || s.db == nil {
		return nil
	}

	if _, err := s.EnsureConversation(ctx, sess); err != nil {
		return err
	}

	now := time.Now()
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO conversation_messages (
			id, session_id, role, content, stage, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`, uuid.New(), sess.SessionID, msg.Role, msg.Content, string(sess.Stage), now)
	if err != nil {
		return fmt.Errorf("conversation: failed to insert message: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("conversation: failed to read insert result: %w", err)
	}
	if rowsAffected == 0 {
		return nil
	}

	counterColumn := "user_message_count"
	if msg.Role == "assistant" {
		counterColumn = "assistant_message_count"
	}

	_, err = s.db.ExecContext(ctx, fmt.Sprintf(`
		UPDATE conversations SET
			message_count = message_count + 1,
			%s = %s + 1,
			last_message_at = $1,
			updated_at = $1
		WHERE session_id = $2
	`, counterColumn, counterColumn), now, sess.SessionID)
	if err != nil {
		return fmt.Errorf("conversation: failed to update counters: %w", err)
	}
	return nil
}

// EndConversation marks a session's conversation as ended.
func (s *ArchiveStore) EndConversation(ctx context.Context, sessionID string) error {
	if s == nil || s.db == nil {
		return nil
	}

	now := time.Now()
	_, err := s.db.ExecContext(ctx, `
		UPDATE conversations SET
			stage = 'conversation_ended',
			ended_at = $1,
			updated_at = $1
		WHERE session_id = $2 AND ended_at IS NULL
	`, now, sessionID)
	return err
}

// GetMessages retrieves archived messages for a session in order.
func (s *ArchiveStore) GetMessages(ctx context.Context, sessionID string, limit int) ([]MessageRecord, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}

	query := `
		SELECT id, session_id, role, content, stage, created_at
		FROM conversation_messages
		WHERE session_id = $1
		ORDER BY created_at ASC
	`
	args := []any{sessionID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("conversation: failed to get messages: %w", err)
	}
	defer rows.Close()

	var messages []MessageRecord
	for rows.Next() {
		var msg MessageRecord
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Role, &msg.Content, &msg.Stage, &msg.CreatedAt); err != nil {
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}
