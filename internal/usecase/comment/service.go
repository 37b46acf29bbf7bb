// Package comment provides blog comment submission and moderation.
package comment

import (
	"context"
	"fmt"
	"strings"

	"tlwd-backend/internal/domain/entity"
	"tlwd-backend/internal/repository"
)

// PostType is the content type comments attach to.
const PostType = "blog"

var (
	ErrPostNotFound    = &entity.NotFoundError{Resource: "Blog post"}
	ErrCommentNotFound = &entity.NotFoundError{Resource: "Comment"}
)

type Service struct {
	Repo  repository.CommentRepository
	Posts repository.ContentRepository
}

// Submit stores a pending comment on an existing post.
func (s *Service) Submit(ctx context.Context, postID, user, email, text string) (*entity.Comment, error) {
	user, text = strings.TrimSpace(user), strings.TrimSpace(text)
	email = entity.NormalizeEmail(email)
	if err := entity.RequireFields("All fields are required", "user", user, "email", email, "text", text); err != nil {
		return nil, err
	}
	if err := entity.ValidateEmail("email", email); err != nil {
		return nil, err
	}
	post, err := s.Posts.Get(ctx, PostType, postID)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	c := &entity.Comment{PostID: post.ID, User: user, Email: email, Text: text, Status: entity.CommentPending}
	if err := s.Repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return c, nil
}

// Approved lists the comments shown publicly under a post, newest first.
func (s *Service) Approved(ctx context.Context, postID string) ([]*entity.Comment, error) {
	items, err := s.Repo.ListByPost(ctx, postID, entity.CommentApproved)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return items, nil
}

// ListForPost lists every comment of a post for moderation.
func (s *Service) ListForPost(ctx context.Context, postID string) ([]*entity.Comment, error) {
	items, err := s.Repo.ListByPost(ctx, postID, "")
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return items, nil
}

// Approve publishes a comment. The comment must belong to postID.
func (s *Service) Approve(ctx context.Context, postID, commentID string) (*entity.Comment, error) {
	c, err := s.get(ctx, postID, commentID)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.UpdateStatus(ctx, c.ID, entity.CommentApproved); err != nil {
		return nil, fmt.Errorf("approve comment: %w", err)
	}
	c.Status = entity.CommentApproved
	return c, nil
}

func (s *Service) Delete(ctx context.Context, postID, commentID string) error {
	c, err := s.get(ctx, postID, commentID)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, c.ID); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

// DeleteForPost is the blog delete hook.
func (s *Service) DeleteForPost(ctx context.Context, post *entity.ContentRecord) error {
	if _, err := s.Repo.DeleteByPost(ctx, post.ID); err != nil {
		return fmt.Errorf("delete post comments: %w", err)
	}
	return nil
}

func (s *Service) get(ctx context.Context, postID, commentID string) (*entity.Comment, error) {
	c, err := s.Repo.Get(ctx, commentID)
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	if c == nil || c.PostID != postID {
		return nil, ErrCommentNotFound
	}
	return c, nil
}
