package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/haidang/referral-hub/internal/apperror"
	"github.com/haidang/referral-hub/internal/model"
	"github.com/haidang/referral-hub/internal/repository"
)

// compile-time check that *DB implements repository.MessageRepository
var _ repository.MessageRepository = (*DB)(nil)

// Conversations always have exactly two participants, stored as two columns
// so membership checks stay plain SQL instead of JSON scans.

func (db *DB) CreateMessage(ctx context.Context, msg *model.Message) error {
	msg.ID = xid.New().String()
	msg.Timestamp = time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO messages (id, conversation_id, sender_id, recipient_id, content, timestamp, read)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		msg.ID, msg.ConversationID, msg.SenderID, msg.RecipientID,
		msg.Content, msg.Timestamp, msg.Read,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating message: %w", err)
	}
	return nil
}

func (db *DB) GetMessageByID(ctx context.Context, id string) (*model.Message, error) {
	var m model.Message
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, conversation_id, sender_id, recipient_id, content, timestamp, read
		 FROM messages WHERE id = ?`, id,
	).Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.RecipientID,
		&m.Content, &m.Timestamp, &m.Read)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("message", id)
		}
		return nil, fmt.Errorf("sqlite: getting message %s: %w", id, err)
	}
	return &m, nil
}

func (db *DB) ListMessagesByConversation(ctx context.Context, conversationID string) ([]model.Message, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, conversation_id, sender_id, recipient_id, content, timestamp, read
		 FROM messages WHERE conversation_id = ? ORDER BY timestamp`,
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing messages: %w", err)
	}
	defer rows.Close()

	messages := []model.Message{}
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.RecipientID,
			&m.Content, &m.Timestamp, &m.Read); err != nil {
			return nil, fmt.Errorf("sqlite: scanning message row: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating messages: %w", err)
	}
	return messages, nil
}

func scanConversation(scan func(dest ...any) error) (*model.Conversation, error) {
	var c model.Conversation
	var a, b string
	err := scan(&c.ID, &a, &b, &c.LastMessage, &c.LastMessageAt, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	c.Participants = []string{a, b}
	return &c, nil
}

func (db *DB) GetConversationByID(ctx context.Context, id string) (*model.Conversation, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, participant_a, participant_b, last_message, last_message_at, created_at
		 FROM conversations WHERE id = ?`, id)
	c, err := scanConversation(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("conversation", id)
		}
		return nil, fmt.Errorf("sqlite: getting conversation %s: %w", id, err)
	}
	return c, nil
}

func (db *DB) ListConversationsByUser(ctx context.Context, userID string) ([]model.Conversation, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, participant_a, participant_b, last_message, last_message_at, created_at
		 FROM conversations
		 WHERE participant_a = ? OR participant_b = ?
		 ORDER BY last_message_at DESC`,
		userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing conversations: %w", err)
	}
	defer rows.Close()

	conversations := []model.Conversation{}
	for rows.Next() {
		c, err := scanConversation(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning conversation row: %w", err)
		}
		conversations = append(conversations, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating conversations: %w", err)
	}
	return conversations, nil
}

func (db *DB) UpsertConversation(ctx context.Context, conv *model.Conversation) error {
	if len(conv.Participants) != 2 {
		return apperror.ValidationFailed("participants", "conversation requires exactly two participants")
	}
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = time.Now().UTC()
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO conversations (id, participant_a, participant_b, last_message, last_message_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		     last_message = excluded.last_message,
		     last_message_at = excluded.last_message_at`,
		conv.ID, conv.Participants[0], conv.Participants[1],
		conv.LastMessage, conv.LastMessageAt, conv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upserting conversation %s: %w", conv.ID, err)
	}
	return nil
}

func (db *DB) MarkConversationRead(ctx context.Context, conversationID, recipientID string) (int, error) {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE messages SET read = 1
		 WHERE conversation_id = ? AND recipient_id = ? AND read = 0`,
		conversationID, recipientID,
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: marking conversation %s read: %w", conversationID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return int(affected), nil
}

func (db *DB) CountUnreadMessages(ctx context.Context, userID string) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*)
		 FROM messages m
		 JOIN conversations c ON m.conversation_id = c.id
		 WHERE (c.participant_a = ? OR c.participant_b = ?)
		   AND m.read = 0 AND m.sender_id != ?`,
		userID, userID, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting unread messages: %w", err)
	}
	return count, nil
}

// DeleteConversation removes the conversation row; messages cascade via the
// foreign key.
func (db *DB) DeleteConversation(ctx context.Context, conversationID string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM conversations WHERE id = ?`, conversationID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting conversation %s: %w", conversationID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("conversation", conversationID)
	}
	return nil
}
