package service

import (
	"context"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
	"inkwell/internal/validation"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	storyRepo   repository.StoryRepository
}

type CreateCommentInput struct {
	StoryID uint
	UserID  uint
	Text    string
}

type UpdateCommentInput struct {
	CommentID uint
	UserID    uint
	Text      string
}

type DeleteCommentInput struct {
	CommentID uint
	UserID    uint
}

func NewCommentService(commentRepo repository.CommentRepository, storyRepo repository.StoryRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		storyRepo:   storyRepo,
	}
}

// CreateComment adds a comment to a story. On validation failure the unsaved
// draft is returned with the error.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if err := Authorize(in.UserID, 0, AnyAuthenticated); err != nil {
		return nil, err
	}
	if _, err := s.storyRepo.GetByID(ctx, in.StoryID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		StoryID: in.StoryID,
		UserID:  in.UserID,
		Text:    in.Text,
	}
	if msgs := validation.Comment(in.Text); len(msgs) > 0 {
		observability.ValidationFailures.WithLabelValues("comment").Inc()
		return comment, models.NewValidationErrors(msgs)
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return comment, models.NewInternalError(err)
	}
	cache.InvalidateStory(ctx, in.StoryID)

	created, err := s.commentRepo.GetByID(ctx, comment.ID)
	if err != nil {
		return comment, nil
	}
	return created, nil
}

// UpdateComment replaces the text of the caller's own comment.
func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	if err := Authorize(in.UserID, 0, AnyAuthenticated); err != nil {
		return nil, err
	}
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(in.UserID, comment.UserID, OwnerOnly); err != nil {
		return nil, err
	}

	if msgs := validation.Comment(in.Text); len(msgs) > 0 {
		observability.ValidationFailures.WithLabelValues("comment").Inc()
		draft := *comment
		draft.Text = in.Text
		return &draft, models.NewValidationErrors(msgs)
	}

	comment.Text = in.Text
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		if models.ErrorCode(err) != "" {
			return nil, err
		}
		return nil, models.NewInternalError(err)
	}
	cache.InvalidateStory(ctx, comment.StoryID)
	return comment, nil
}

// DeleteComment removes the caller's own comment and returns its story id.
func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) (uint, error) {
	if err := Authorize(in.UserID, 0, AnyAuthenticated); err != nil {
		return 0, err
	}
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return 0, err
	}
	if err := Authorize(in.UserID, comment.UserID, OwnerOnly); err != nil {
		return 0, err
	}

	if err := s.commentRepo.Delete(ctx, comment.ID); err != nil {
		if models.ErrorCode(err) != "" {
			return 0, err
		}
		return 0, models.NewInternalError(err)
	}
	cache.InvalidateStory(ctx, comment.StoryID)
	return comment.StoryID, nil
}

// GetComment loads a single comment.
func (s *CommentService) GetComment(ctx context.Context, commentID uint) (*models.Comment, error) {
	return s.commentRepo.GetByID(ctx, commentID)
}
