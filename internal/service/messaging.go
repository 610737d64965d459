package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/haidang/referral-hub/internal/apperror"
	"github.com/haidang/referral-hub/internal/model"
	"github.com/haidang/referral-hub/internal/repository"
)

// MessagingService manages two-party conversations between users, plus the
// notification feed (served from recent activities).
type MessagingService struct {
	messages   repository.MessageRepository
	users      repository.UserRepository
	activities *ActivityService
	logger     *slog.Logger
}

func NewMessagingService(
	messages repository.MessageRepository,
	users repository.UserRepository,
	activities *ActivityService,
	logger *slog.Logger,
) *MessagingService {
	return &MessagingService{messages: messages, users: users, activities: activities, logger: logger}
}

// conversationID derives a stable id from the two participants so repeated
// sends between the same pair land in one thread.
func conversationID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + ":" + b
}

// Conversations lists the user's threads, newest activity first, each
// enriched with the counterpart's display name.
func (s *MessagingService) Conversations(ctx context.Context, userID string) ([]model.ConversationView, error) {
	convs, err := s.messages.ListConversationsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing conversations: %w", err)
	}

	views := make([]model.ConversationView, 0, len(convs))
	for _, c := range convs {
		views = append(views, model.ConversationView{
			Conversation: c,
			DisplayName:  s.displayName(ctx, c.OtherParticipant(userID)),
		})
	}

	sort.SliceStable(views, func(i, j int) bool {
		return views[i].LastMessageAt.After(views[j].LastMessageAt)
	})
	return views, nil
}

// displayName resolves a user id to a name, falling back to the raw id when
// the account is gone.
func (s *MessagingService) displayName(ctx context.Context, userID string) string {
	if userID == "" {
		return ""
	}
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return userID
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// Messages returns a conversation's messages oldest-first. Only a
// participant may read the thread.
func (s *MessagingService) Messages(ctx context.Context, conversationID, userID string) ([]model.Message, error) {
	conv, err := s.messages.GetConversationByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(userID) {
		return nil, apperror.Forbidden("you are not part of this conversation")
	}

	msgs, err := s.messages.ListMessagesByConversation(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})
	return msgs, nil
}

// Send delivers a message from senderID to recipientID, creating the
// conversation on first contact and refreshing its last-message summary.
func (s *MessagingService) Send(ctx context.Context, senderID, recipientID, content string) (*model.Message, error) {
	content = strings.TrimSpace(content)
	switch {
	case recipientID == "":
		return nil, apperror.ValidationFailed("recipientId", "recipientId is required")
	case content == "":
		return nil, apperror.ValidationFailed("content", "message content is required")
	case recipientID == senderID:
		return nil, apperror.ValidationFailed("recipientId", "cannot message yourself")
	}

	if _, err := s.users.GetUserByID(ctx, recipientID); err != nil {
		return nil, err
	}

	// The conversation row must exist before the message: the message table
	// references it.
	now := time.Now().UTC()
	conv := &model.Conversation{
		ID:            conversationID(senderID, recipientID),
		Participants:  []string{senderID, recipientID},
		LastMessage:   content,
		LastMessageAt: now,
	}
	if err := s.messages.UpsertConversation(ctx, conv); err != nil {
		return nil, fmt.Errorf("updating conversation: %w", err)
	}

	msg := &model.Message{
		ConversationID: conv.ID,
		SenderID:       senderID,
		RecipientID:    recipientID,
		Content:        content,
	}
	if err := s.messages.CreateMessage(ctx, msg); err != nil {
		s.logger.Error("failed to send message",
			slog.String("recipientId", recipientID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("sending message: %w", err)
	}

	return msg, nil
}

// MarkRead marks every message addressed to userID in the given message's
// conversation as read, returning how many flipped.
func (s *MessagingService) MarkRead(ctx context.Context, messageID, userID string) (int, error) {
	msg, err := s.messages.GetMessageByID(ctx, messageID)
	if err != nil {
		return 0, err
	}
	conv, err := s.messages.GetConversationByID(ctx, msg.ConversationID)
	if err != nil {
		return 0, err
	}
	if !conv.HasParticipant(userID) {
		return 0, apperror.Forbidden("you are not part of this conversation")
	}
	return s.messages.MarkConversationRead(ctx, conv.ID, userID)
}

// UnreadCount returns how many unread messages are addressed to userID.
func (s *MessagingService) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.messages.CountUnreadMessages(ctx, userID)
}

// DeleteConversation removes a thread and its messages. Participants only.
func (s *MessagingService) DeleteConversation(ctx context.Context, conversationID, userID string) error {
	conv, err := s.messages.GetConversationByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if !conv.HasParticipant(userID) {
		return apperror.Forbidden("you are not part of this conversation")
	}
	if err := s.messages.DeleteConversation(ctx, conversationID); err != nil {
		return fmt.Errorf("deleting conversation: %w", err)
	}
	s.logger.Info("conversation deleted", slog.String("id", conversationID))
	return nil
}

// Notification is a feed item shown in the messaging panel's bell. Entries
// are derived from the activity log rather than stored separately.
type Notification struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Read      bool   `json:"read"`
}

// Notifications returns the most recent feed entries rendered as
// notifications.
func (s *MessagingService) Notifications(ctx context.Context, limit int) ([]Notification, error) {
	if limit < 1 {
		limit = 20
	}
	acts, _, err := s.activities.List(ctx, limit, 0)
	if err != nil {
		return nil, err
	}

	notes := make([]Notification, 0, len(acts))
	for _, a := range acts {
		notes = append(notes, Notification{
			ID:        a.ID,
			Type:      a.Type,
			Message:   a.Description,
			Timestamp: a.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return notes, nil
}
