package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/haidang/referral-hub/internal/apperror"
	"github.com/haidang/referral-hub/internal/authz"
	"github.com/haidang/referral-hub/internal/model"
	"github.com/haidang/referral-hub/internal/repository"
)

// CommentService manages the comment threads embedded in each job record.
// Comments prepend (newest first); replies append under their parent.
type CommentService struct {
	jobs       repository.JobRepository
	activities *ActivityService
	logger     *slog.Logger
}

func NewCommentService(jobs repository.JobRepository, activities *ActivityService, logger *slog.Logger) *CommentService {
	return &CommentService{jobs: jobs, activities: activities, logger: logger}
}

// List returns the job's comments, newest first.
func (s *CommentService) List(ctx context.Context, jobID string) ([]model.Comment, error) {
	job, err := s.jobs.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Comments == nil {
		return []model.Comment{}, nil
	}
	return job.Comments, nil
}

// NewComment carries the fields a caller supplies when posting.
type NewComment struct {
	Text       string `json:"text"`
	Author     string `json:"author"`
	AuthorRole string `json:"authorRole"`
	UserID     string `json:"userId"`
}

// Add prepends a comment to the job's thread.
func (s *CommentService) Add(ctx context.Context, jobID string, in NewComment) (*model.Comment, error) {
	in.Text = strings.TrimSpace(in.Text)
	switch {
	case in.Text == "":
		return nil, apperror.ValidationFailed("text", "comment text is required")
	case in.Author == "":
		return nil, apperror.ValidationFailed("author", "author is required")
	case in.UserID == "":
		return nil, apperror.ValidationFailed("userId", "userId is required")
	}

	job, err := s.jobs.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	comment := model.Comment{
		ID:         xid.New().String(),
		Text:       in.Text,
		Author:     in.Author,
		AuthorRole: model.Role(in.AuthorRole),
		UserID:     in.UserID,
		Timestamp:  time.Now().UTC(),
		Replies:    []model.Reply{},
	}
	job.Comments = append([]model.Comment{comment}, job.Comments...)

	if err := s.jobs.UpdateJob(ctx, job); err != nil {
		s.logger.Error("failed to add comment",
			slog.String("jobId", jobID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("adding comment: %w", err)
	}

	s.activities.Log(ctx, model.ActivityComment,
		fmt.Sprintf("%s commented on %q", in.Author, job.Title),
		map[string]any{
			"jobId":      job.ID,
			"jobTitle":   job.Title,
			"commentId":  comment.ID,
			"author":     in.Author,
			"authorRole": in.AuthorRole,
		})

	return &comment, nil
}

// Edit replaces a comment's text. Only the comment's owner or an admin may
// edit; an edit stamps EditedAt.
func (s *CommentService) Edit(ctx context.Context, jobID, commentID, text string, actor authz.Actor) (*model.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperror.ValidationFailed("text", "comment text is required")
	}

	job, err := s.jobs.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	idx := findComment(job.Comments, commentID)
	if idx < 0 {
		return nil, apperror.NotFound("comment", commentID)
	}
	if !authz.Can(actor, authz.EditComment, job.Comments[idx].UserID) {
		return nil, apperror.Forbidden("you can only edit your own comments")
	}

	now := time.Now().UTC()
	job.Comments[idx].Text = text
	job.Comments[idx].EditedAt = &now

	if err := s.jobs.UpdateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("editing comment: %w", err)
	}
	return &job.Comments[idx], nil
}

// Delete removes a comment (and its replies). Owner or admin only.
func (s *CommentService) Delete(ctx context.Context, jobID, commentID string, actor authz.Actor) error {
	job, err := s.jobs.GetJobByID(ctx, jobID)
	if err != nil {
		return err
	}

	idx := findComment(job.Comments, commentID)
	if idx < 0 {
		return apperror.NotFound("comment", commentID)
	}
	removed := job.Comments[idx]
	if !authz.Can(actor, authz.DeleteComment, removed.UserID) {
		return apperror.Forbidden("you can only delete your own comments")
	}

	job.Comments = append(job.Comments[:idx], job.Comments[idx+1:]...)
	if err := s.jobs.UpdateJob(ctx, job); err != nil {
		return fmt.Errorf("deleting comment: %w", err)
	}

	s.activities.Log(ctx, model.ActivityDeleteComment,
		fmt.Sprintf("%s deleted a comment on %q", removed.Author, job.Title),
		map[string]any{
			"jobId":     job.ID,
			"jobTitle":  job.Title,
			"commentId": commentID,
			"author":    removed.Author,
		})

	return nil
}

// AddReply appends a reply under a comment. Replying is an admin action.
func (s *CommentService) AddReply(ctx context.Context, jobID, commentID string, in NewComment, actor authz.Actor) (*model.Reply, error) {
	if !authz.Can(actor, authz.AddReply, "") {
		return nil, apperror.Forbidden("only admins can reply to comments")
	}
	in.Text = strings.TrimSpace(in.Text)
	if in.Text == "" {
		return nil, apperror.ValidationFailed("text", "reply text is required")
	}

	job, err := s.jobs.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	idx := findComment(job.Comments, commentID)
	if idx < 0 {
		return nil, apperror.NotFound("comment", commentID)
	}

	reply := model.Reply{
		ID:         xid.New().String(),
		Text:       in.Text,
		Author:     in.Author,
		AuthorRole: model.Role(in.AuthorRole),
		UserID:     in.UserID,
		Timestamp:  time.Now().UTC(),
	}
	job.Comments[idx].Replies = append(job.Comments[idx].Replies, reply)

	if err := s.jobs.UpdateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("adding reply: %w", err)
	}

	s.activities.Log(ctx, model.ActivityReply,
		fmt.Sprintf("%s replied to a comment on %q", in.Author, job.Title),
		map[string]any{
			"jobId":     job.ID,
			"jobTitle":  job.Title,
			"commentId": commentID,
			"replyId":   reply.ID,
			"author":    in.Author,
		})

	return &reply, nil
}

// DeleteReply removes a reply. Owner or admin only.
func (s *CommentService) DeleteReply(ctx context.Context, jobID, commentID, replyID string, actor authz.Actor) error {
	job, err := s.jobs.GetJobByID(ctx, jobID)
	if err != nil {
		return err
	}

	ci := findComment(job.Comments, commentID)
	if ci < 0 {
		return apperror.NotFound("comment", commentID)
	}

	replies := job.Comments[ci].Replies
	ri := -1
	for i, r := range replies {
		if r.ID == replyID {
			ri = i
			break
		}
	}
	if ri < 0 {
		return apperror.NotFound("reply", replyID)
	}
	if !authz.Can(actor, authz.DeleteReply, replies[ri].UserID) {
		return apperror.Forbidden("you can only delete your own replies")
	}

	job.Comments[ci].Replies = append(replies[:ri], replies[ri+1:]...)
	if err := s.jobs.UpdateJob(ctx, job); err != nil {
		return fmt.Errorf("deleting reply: %w", err)
	}
	return nil
}

func findComment(comments []model.Comment, id string) int {
	for i, c := range comments {
		if c.ID == id {
			return i
		}
	}
	return -1
}
