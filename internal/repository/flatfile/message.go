package flatfile

import (
	"context"
	"time"

	"github.com/rs/xid"

	"github.com/haidang/referral-hub/internal/apperror"
	"github.com/haidang/referral-hub/internal/model"
)

func (s *Store) CreateMessage(ctx context.Context, msg *model.Message) error {
	l := s.fileLock(messagesFile)
	l.Lock()
	defer l.Unlock()

	messages, err := load[model.Message](s, messagesFile)
	if err != nil {
		return err
	}

	msg.ID = xid.New().String()
	msg.Timestamp = time.Now().UTC()

	messages = append(messages, *msg)
	return save(s, messagesFile, messages)
}

func (s *Store) GetMessageByID(ctx context.Context, id string) (*model.Message, error) {
	l := s.fileLock(messagesFile)
	l.Lock()
	defer l.Unlock()

	messages, err := load[model.Message](s, messagesFile)
	if err != nil {
		return nil, err
	}
	for i := range messages {
		if messages[i].ID == id {
			m := messages[i]
			return &m, nil
		}
	}
	return nil, apperror.NotFound("message", id)
}

func (s *Store) ListMessagesByConversation(ctx context.Context, conversationID string) ([]model.Message, error) {
	l := s.fileLock(messagesFile)
	l.Lock()
	defer l.Unlock()

	messages, err := load[model.Message](s, messagesFile)
	if err != nil {
		return nil, err
	}
	filtered := make([]model.Message, 0, len(messages))
	for _, m := range messages {
		if m.ConversationID == conversationID {
			filtered = append(filtered, m)
		}
	}
	return filtered, nil
}

func (s *Store) GetConversationByID(ctx context.Context, id string) (*model.Conversation, error) {
	l := s.fileLock(conversationsFile)
	l.Lock()
	defer l.Unlock()

	conversations, err := load[model.Conversation](s, conversationsFile)
	if err != nil {
		return nil, err
	}
	for i := range conversations {
		if conversations[i].ID == id {
			c := conversations[i]
			return &c, nil
		}
	}
	return nil, apperror.NotFound("conversation", id)
}

func (s *Store) ListConversationsByUser(ctx context.Context, userID string) ([]model.Conversation, error) {
	l := s.fileLock(conversationsFile)
	l.Lock()
	defer l.Unlock()

	conversations, err := load[model.Conversation](s, conversationsFile)
	if err != nil {
		return nil, err
	}
	filtered := make([]model.Conversation, 0, len(conversations))
	for _, c := range conversations {
		if c.HasParticipant(userID) {
			filtered = append(filtered, c)
		}
	}
	return filtered, nil
}

// UpsertConversation replaces the record matching conv.ID or appends a new
// one. CreatedAt is assigned on first insert only.
func (s *Store) UpsertConversation(ctx context.Context, conv *model.Conversation) error {
	l := s.fileLock(conversationsFile)
	l.Lock()
	defer l.Unlock()

	conversations, err := load[model.Conversation](s, conversationsFile)
	if err != nil {
		return err
	}
	for i := range conversations {
		if conversations[i].ID == conv.ID {
			conv.CreatedAt = conversations[i].CreatedAt
			conversations[i] = *conv
			return save(s, conversationsFile, conversations)
		}
	}
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = time.Now().UTC()
	}
	conversations = append(conversations, *conv)
	return save(s, conversationsFile, conversations)
}

func (s *Store) MarkConversationRead(ctx context.Context, conversationID, recipientID string) (int, error) {
	l := s.fileLock(messagesFile)
	l.Lock()
	defer l.Unlock()

	messages, err := load[model.Message](s, messagesFile)
	if err != nil {
		return 0, err
	}
	updated := 0
	for i := range messages {
		m := &messages[i]
		if m.ConversationID == conversationID && m.RecipientID == recipientID && !m.Read {
			m.Read = true
			updated++
		}
	}
	if updated == 0 {
		return 0, nil
	}
	return updated, save(s, messagesFile, messages)
}

// CountUnreadMessages counts unread messages sent to userID across every
// conversation they participate in.
func (s *Store) CountUnreadMessages(ctx context.Context, userID string) (int, error) {
	conversations, err := s.ListConversationsByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	member := make(map[string]bool, len(conversations))
	for _, c := range conversations {
		member[c.ID] = true
	}

	l := s.fileLock(messagesFile)
	l.Lock()
	defer l.Unlock()

	messages, err := load[model.Message](s, messagesFile)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, m := range messages {
		if member[m.ConversationID] && !m.Read && m.SenderID != userID {
			count++
		}
	}
	return count, nil
}

func (s *Store) DeleteConversation(ctx context.Context, conversationID string) error {
	cl := s.fileLock(conversationsFile)
	cl.Lock()
	conversations, err := load[model.Conversation](s, conversationsFile)
	if err != nil {
		cl.Unlock()
		return err
	}
	kept := conversations[:0]
	for _, c := range conversations {
		if c.ID != conversationID {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(conversations) {
		cl.Unlock()
		return apperror.NotFound("conversation", conversationID)
	}
	if err := save(s, conversationsFile, kept); err != nil {
		cl.Unlock()
		return err
	}
	cl.Unlock()

	ml := s.fileLock(messagesFile)
	ml.Lock()
	defer ml.Unlock()
	messages, err := load[model.Message](s, messagesFile)
	if err != nil {
		return err
	}
	remaining := messages[:0]
	for _, m := range messages {
		if m.ConversationID != conversationID {
			remaining = append(remaining, m)
		}
	}
	return save(s, messagesFile, remaining)
}
