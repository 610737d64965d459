// Package repository declares the storage interfaces the services program
// against. Two backends implement them: repository/sqlite (the default,
// embedded SQLite with real atomicity) and repository/flatfile (the legacy
// JSON-array-per-file layout, kept for local fixtures and data compatibility).
package repository

import (
	"context"

	"github.com/haidang/referral-hub/internal/model"
)

// ListOptions paginates list reads. Zero values mean "backend default".
type ListOptions struct {
	Limit  int
	Offset int
}

// UserRepository stores accounts. GetUserByEmail matches case-insensitively;
// emails are the human-facing key for login and password reset.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, id string) error
}

// JobRepository stores postings, including their embedded comment threads.
// UpdateJob persists the whole record; comment and savedBy mutations go
// through it.
type JobRepository interface {
	CreateJob(ctx context.Context, job *model.Job) error
	GetJobByID(ctx context.Context, id string) (*model.Job, error)
	ListJobs(ctx context.Context) ([]model.Job, error)
	ListJobsByStatus(ctx context.Context, status model.JobStatus) ([]model.Job, error)
	UpdateJob(ctx context.Context, job *model.Job) error
	DeleteJob(ctx context.Context, id string) error
	ResetJobs(ctx context.Context) error
}

// ReferralRepository stores candidate submissions. Visibility partitioning,
// filtering and pagination are service concerns; ListReferrals returns the
// full set.
type ReferralRepository interface {
	CreateReferral(ctx context.Context, ref *model.Referral) error
	GetReferralByID(ctx context.Context, id string) (*model.Referral, error)
	ListReferrals(ctx context.Context) ([]model.Referral, error)
	UpdateReferral(ctx context.Context, ref *model.Referral) error
	DeleteReferral(ctx context.Context, id string) error
	ResetReferrals(ctx context.Context) error
}

// ActivityRepository stores the global audit feed. AppendActivity assigns id
// and timestamp, prepends the entry, and trims the log to
// model.ActivityLogCap entries. The cap is a backend invariant, not a
// caller courtesy. ListActivities returns a page (newest first) plus the
// total count.
type ActivityRepository interface {
	AppendActivity(ctx context.Context, activity *model.Activity) error
	ListActivities(ctx context.Context, opts ListOptions) ([]model.Activity, int, error)
}

// MessageRepository stores conversations and their messages.
type MessageRepository interface {
	CreateMessage(ctx context.Context, msg *model.Message) error
	GetMessageByID(ctx context.Context, id string) (*model.Message, error)
	ListMessagesByConversation(ctx context.Context, conversationID string) ([]model.Message, error)
	GetConversationByID(ctx context.Context, id string) (*model.Conversation, error)
	ListConversationsByUser(ctx context.Context, userID string) ([]model.Conversation, error)
	UpsertConversation(ctx context.Context, conv *model.Conversation) error
	// MarkConversationRead marks every unread message addressed to
	// recipientID in the conversation as read and returns how many changed.
	MarkConversationRead(ctx context.Context, conversationID, recipientID string) (int, error)
	CountUnreadMessages(ctx context.Context, userID string) (int, error)
	// DeleteConversation removes the conversation and all its messages.
	DeleteConversation(ctx context.Context, conversationID string) error
}

// Store aggregates every entity repository behind one handle so the server
// can be wired against a single backend value.
type Store interface {
	UserRepository
	JobRepository
	ReferralRepository
	ActivityRepository
	MessageRepository
	Close() error
}
